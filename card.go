package rygonet

import (
	"regexp"
	"strings"
)

// parseCard parses one card's aligned lines into a Unit. The line array is
// built once by the preprocessing passes and then only read; all parsing
// state lives in explicit cursors. Returns nil when the card has no
// recognizable header or stat line.
func parseCard(lineBoxes []LineBox) *Unit {
	lines := make([]LineBox, 0, len(lineBoxes))
	for _, lb := range lineBoxes {
		text := normQuotes(lb.Text)
		if strings.TrimSpace(text) == "" || footerNoiseRe.MatchString(text) {
			continue
		}
		lb.Text = text
		lines = append(lines, lb)
	}
	if len(lines) == 0 {
		return nil
	}

	// When the PDF text layer contributed italics we can tell special rules
	// from weapons directly; without it we fall back to merging heuristics.
	hasFormatting := false
	for _, lb := range lines {
		if lb.Italic {
			hasFormatting = true
			break
		}
	}

	if !hasFormatting {
		lines = mergeSplitUnitType(lines)
	}
	lines = mergeWeaponNameFragments(lines)

	texts := make([]string, len(lines))
	for i, lb := range lines {
		texts[i] = lb.Text
	}

	unitName, points, headerIdx, ok := parseHeader(texts)
	if !ok {
		return nil
	}

	// Stat line sits within a few lines of the header. With formatting, a
	// bare "Inf"/"Vec"/"Air" line may carry the rest of the stats on the
	// next line.
	var stats Stats
	var unitClass string
	statIdx := -1
	descriptiveCategory := ""
	for i := headerIdx + 1; i < min(headerIdx+10, len(lines)); i++ {
		s, uc, matched := parseStatLine(texts[i])
		if !matched && hasFormatting && i+1 < len(lines) &&
			bareUnitTypeRe.MatchString(strings.TrimSpace(texts[i])) {
			s, uc, matched = parseStatLine(texts[i] + texts[i+1])
		}
		if matched {
			if i > headerIdx+1 {
				descriptiveCategory = texts[i-1]
			}
			stats, unitClass = s, uc
			statIdx = i
			break
		}
	}
	if statIdx < 0 {
		return nil
	}

	cursor := statIdx + 1
	if hasFormatting && bareUnitTypeRe.MatchString(strings.TrimSpace(texts[statIdx])) {
		// Stat line was split across two lines; skip its second half.
		cursor = statIdx + 2
	}

	// Collect special rules up to the first separator or weapon. Italic
	// lines are rules; non-italic lines are buffered since they may be
	// description fragments.
	var specialRules []string
	var tempRules []string
	for cursor < len(lines) && !isWeaponLine(lines, cursor) {
		if separatorRe.MatchString(strings.TrimSpace(lines[cursor].Text)) {
			cursor++
			break
		}
		ln := strings.TrimSpace(strings.Trim(lines[cursor].Text, "_"))
		if ln != "" {
			if lines[cursor].Italic {
				if strings.Contains(ln, ",") {
					specialRules = append(specialRules, splitRulesSmart(ln)...)
				} else {
					specialRules = append(specialRules, ln)
				}
			} else {
				tempRules = append(tempRules, ln)
			}
		}
		cursor++
	}

	// Alignment sometimes fuses an italic rule with the weapon name that
	// follows it on the card. Split those lines before weapon parsing.
	lines = splitMergedRuleWeaponLines(lines, cursor)

	description := ""
	rules, desc := separateRulesFromDescription(tempRules)
	specialRules = append(specialRules, rules...)
	description = desc

	// A description block may follow the rules: text, separator, weapons.
	if cursor < len(lines) && !matchWeaponName(lines[cursor].Text) {
		descLines, next, found := peekDescriptionBlock(lines, cursor)
		if found {
			description = strings.Join(descLines, " ")
			cursor = next
		} else if len(descLines) > 0 && next < 0 {
			// Lines before the card's end with no weapon after them are
			// uncommented rule lists unless they read like a sentence.
			for _, ln := range descLines {
				if !(len(strings.Fields(ln)) > 5 && !strings.Contains(ln, ",")) {
					specialRules = append(specialRules, ln)
				}
			}
		}
	}

	weapons := parseWeapons(lines, cursor, descriptiveCategory)

	merged := dedupePreserveOrder(mergeFragmentedRules(specialRules))
	unitRules := make([]SpecialRule, 0, len(merged))
	for _, r := range merged {
		unitRules = append(unitRules, SpecialRule{Name: r})
	}

	return &Unit{
		ID:                  slugify(unitName),
		Name:                unitName,
		UnitClass:           unitClass,
		Points:              points,
		Stats:               stats,
		DescriptiveCategory: descriptiveCategory,
		SpecialRules:        unitRules,
		Description:         description,
		Weapons:             weapons,
		Options:             []Option{},
	}
}

// isWeaponLine reports whether line idx is a weapon name, using italics to
// rule out special rules that happen to match the weapon-name shape.
func isWeaponLine(lines []LineBox, idx int) bool {
	if idx < 0 || idx >= len(lines) {
		return false
	}
	return matchWeaponName(lines[idx].Text) && !lines[idx].Italic
}

// mergeSplitUnitType rejoins a bare "Inf"/"Vec"/"Air" line with a following
// "(S), ..." class-flag line. Only used when no formatting is available.
func mergeSplitUnitType(lines []LineBox) []LineBox {
	var merged []LineBox
	for i := 0; i < len(lines); {
		if i+1 < len(lines) &&
			bareUnitTypeRe.MatchString(strings.TrimSpace(lines[i].Text)) &&
			classFlagOpenRe.MatchString(strings.TrimSpace(lines[i+1].Text)) {
			merged = append(merged, LineBox{Text: lines[i].Text + strings.TrimSpace(lines[i+1].Text)})
			i += 2
			continue
		}
		merged = append(merged, lines[i])
		i++
	}
	return merged
}

// mergeWeaponNameFragments rejoins weapon names that OCR split across short
// lines, such as "1M1V" / "Target Bearing" / "Transmitter". The first three
// lines are left alone so the header never merges with the category line.
func mergeWeaponNameFragments(lines []LineBox) []LineBox {
	var merged []LineBox
	i := 0
	for i < len(lines) {
		line := lines[i].Text
		if i >= 3 && i+1 < len(lines) &&
			len(line) < 30 &&
			!strings.Contains(line, ",") &&
			!profileDetectRe.MatchString(line) &&
			!statRe.MatchString(line) &&
			!titleCaseRuleRe.MatchString(line) {

			fragments := []string{line}
			j := i + 1
			for j < len(lines) && j < i+4 {
				next := lines[j].Text
				if profileDetectRe.MatchString(next) || statRe.MatchString(next) || len(next) > 30 {
					break
				}
				if len(next) < 30 && !strings.Contains(next, ",") {
					fragments = append(fragments, next)
					j++
				} else {
					break
				}
			}

			if len(fragments) > 1 {
				joined := strings.Join(fragments, " ")
				if matchWeaponName(joined) {
					merged = append(merged, LineBox{Text: joined, Italic: lines[i].Italic})
					i = j
					continue
				}
			}
		}
		merged = append(merged, lines[i])
		i++
	}
	return merged
}

// splitMergedRuleWeaponLines splits italic lines that contain a weapon code
// into an italic rule line and a non-italic weapon line. Lines before from
// are already consumed and stay untouched so the cursor keeps its meaning.
func splitMergedRuleWeaponLines(lines []LineBox, from int) []LineBox {
	if from > len(lines) {
		from = len(lines)
	}
	out := make([]LineBox, 0, len(lines))
	out = append(out, lines[:from]...)
	for _, lb := range lines[from:] {
		if lb.Italic {
			if start := findWeaponCodeStart(lb.Text); start > 0 {
				rulePart := strings.TrimSpace(lb.Text[:start])
				weaponPart := strings.TrimSpace(lb.Text[start:])
				if rulePart != "" && weaponPart != "" {
					out = append(out,
						LineBox{Text: rulePart, Italic: true},
						LineBox{Text: weaponPart})
					continue
				}
			}
		}
		out = append(out, lb)
	}
	return out
}

var singleRulePatternRe = regexp.MustCompile(`^[A-Z][a-z]+(?:\s*\([^)]+\))?$`)

var sentenceStarters = map[string]bool{
	"All": true, "The": true, "Each": true, "When": true,
	"If": true, "Any": true, "This": true,
}

// separateRulesFromDescription splits buffered non-italic lines into special
// rules and a description. The description starts where the remaining lines
// read like a sentence: long enough, ending in a period or parenthesis, and
// opening with something that is not a rule name.
func separateRulesFromDescription(tempRules []string) (rules []string, description string) {
	descStart := -1
	for i, text := range tempRules {
		if i+3 >= len(tempRules) {
			continue
		}
		combined := strings.Join(tempRules[i:], " ")
		isSentence := len(combined) > 20 &&
			(strings.HasSuffix(combined, ".") || strings.HasSuffix(combined, ")"))
		isNotRule := !singleRulePatternRe.MatchString(text)
		if isSentence && (isNotRule || sentenceStarters[text]) {
			descStart = i
			break
		}
	}

	if descStart < 0 {
		return tempRules, ""
	}
	return tempRules[:descStart], strings.Join(tempRules[descStart:], " ")
}

// peekDescriptionBlock looks for the pattern "text, separator, weapon" after
// the rules section. When found it returns the description lines and the
// cursor position past the separator. When text exists but no weapon follows
// the second separator, next is -1 so the caller can treat the lines as
// overflow rules.
func peekDescriptionBlock(lines []LineBox, cursor int) (descLines []string, next int, found bool) {
	peek := cursor
	foundSeparator := false
	foundWeaponAfter := false

	for peek < len(lines) {
		text := strings.TrimSpace(lines[peek].Text)
		if separatorRe.MatchString(text) {
			foundSeparator = true
			peek++
			for peek < len(lines) {
				after := strings.TrimSpace(lines[peek].Text)
				if separatorRe.MatchString(after) || after == "" {
					peek++
					continue
				}
				if matchWeaponName(lines[peek].Text) {
					foundWeaponAfter = true
				}
				break
			}
			break
		}
		if matchWeaponName(lines[peek].Text) {
			break
		}
		if ln := strings.TrimSpace(strings.Trim(lines[peek].Text, "_")); ln != "" {
			descLines = append(descLines, ln)
		}
		peek++
	}

	if foundSeparator && foundWeaponAfter && len(descLines) > 0 {
		return descLines, peek, true
	}
	if len(descLines) > 0 && !foundWeaponAfter {
		return descLines, -1, false
	}
	return nil, cursor, false
}
