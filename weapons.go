package rygonet

import (
	"regexp"
	"strconv"
	"strings"
)

const unnamedWeapon = "(Unnamed weapon)"

var (
	embeddedAmmoRe = regexp.MustCompile(`(?i)\s*Ammo\s+\d+\s*`)
	ammoLineRe     = regexp.MustCompile(`^(?i)Ammo\s+(\d+)$`)
	spaceRunRe     = regexp.MustCompile(`\s+`)
	radiusMarkerRe = regexp.MustCompile(`^\([0-9]+"?\)$`)
)

// embeddedRuleNames are special rules that bleed into weapon name lines.
var embeddedRuleNames = []string{"Turret", "No CC", "Multi-Gun"}

// parseWeapons walks the remaining card lines collecting weapons. Each
// weapon is a name line followed by a profile line and optional rule lines;
// ">"-prefixed ammunition variants fold into their base weapon as shot
// types.
func parseWeapons(lines []LineBox, cursor int, descriptiveCategory string) []Weapon {
	var weapons []Weapon

	for cursor < len(lines) {
		ln := lines[cursor].Text

		// "Radius (2\") > 82mm Chemical-SP" is a rule glued onto an ammo
		// variant; strip the rule. "2K52 152mm Howitzer > 152mm HEAT" is a
		// weapon plus variant and stays whole.
		cleanedLn := ln
		if strings.Contains(ln, ">") && !strings.HasPrefix(strings.TrimSpace(ln), ">") {
			parts := strings.SplitN(ln, ">", 2)
			potentialAmmo := ">" + strings.TrimSpace(parts[1])
			if matchWeaponName(potentialAmmo) && !matchWeaponName(strings.TrimSpace(parts[0])) {
				cleanedLn = potentialAmmo
			}
		}

		isName := matchWeaponName(cleanedLn)
		isItalicLine := lines[cursor].Italic

		var weaponTitle string
		var embeddedRules []string
		var profile map[string]string

		switch {
		case !isName && profileDetectRe.MatchString(ln):
			// A profile with no name line: a secondary weapon whose name was
			// misclassified, or a mortar named only by its ammo variants.
			profile = matchSubexps(profileRe, ln)
			if profile == nil {
				cursor++
				continue
			}
			weaponTitle = reclaimWeaponName(weapons)
			if weaponTitle == unnamedWeapon {
				weaponTitle = nameFromVariantAhead(lines, cursor+1, descriptiveCategory)
			}
			cursor++

		case isName && !isItalicLine:
			weaponTitle, embeddedRules = cleanWeaponTitle(cleanedLn)
			cursor++
			if cursor >= len(lines) {
				return weapons
			}
			profile = matchSubexps(profileRe, lines[cursor].Text)
			if profile == nil {
				// Name without a profile, for instance a stray fragment.
				cursor++
				continue
			}
			cursor++

		default:
			// Italic weapon-shaped lines are special rules, everything else
			// is noise between weapons.
			cursor++
			continue
		}

		var wRules []string
		if trailing := strings.TrimSpace(profile["trailing"]); trailing != "" {
			wRules = append(wRules, splitRulesSmart(trailing)...)
		}

		// Collect rule lines below the profile until the next weapon.
		ammoFromLine := -1
		for cursor < len(lines) && !isWeaponLine(lines, cursor) {
			ruleLn := strings.TrimSpace(strings.Trim(lines[cursor].Text, "_"))
			italic := lines[cursor].Italic

			if m := ammoLineRe.FindStringSubmatch(ruleLn); m != nil {
				ammoFromLine, _ = strconv.Atoi(m[1])
				cursor++
				continue
			}

			if ruleLn != "" && !profileDetectRe.MatchString(ruleLn) {
				if strings.HasPrefix(ruleLn, ">") && matchWeaponName(ruleLn) {
					// An ammo variant the italic check hid; handled as its
					// own weapon entry on the next pass.
					break
				}
				if italic || strings.Contains(ruleLn, ",") {
					for _, part := range splitRulesSmart(ruleLn) {
						if strings.HasPrefix(part, ">") && matchWeaponName(part) {
							continue
						}
						wRules = append(wRules, part)
					}
				}
				cursor++
			} else if profileDetectRe.MatchString(ruleLn) {
				break
			} else {
				cursor++
			}
		}

		rangeVal := normalizeRange(profile["range"])

		accuracy, ok := parseAccuracy(profile["acc"])
		if !ok {
			// Unreadable accuracy means the profile is OCR garbage.
			continue
		}
		strength, _ := parseStrength(profile["str"])

		target := strings.ReplaceAll(profile["target"], " ", "")
		if target == "" {
			target = "All"
		}
		dice, _ := strconv.Atoi(profile["dmg"])

		weapon := Weapon{
			Name:     weaponTitle,
			Target:   target,
			Range:    rangeVal,
			Accuracy: accuracy,
			Strength: strength,
			Dice:     dice,
		}
		if profile["ammo"] != "" {
			n, _ := strconv.Atoi(profile["ammo"])
			weapon.Ammo = &n
		} else if ammoFromLine >= 0 {
			weapon.Ammo = &ammoFromLine
		}

		if weapon.Name == unnamedWeapon {
			weapon.Name, wRules = nameFromVariantRules(wRules, descriptiveCategory)
		}

		if len(embeddedRules) > 0 {
			wRules = append(embeddedRules, wRules...)
		}
		if len(wRules) > 0 {
			weapon.SpecialRules = dedupePreserveOrder(mergeFragmentedRules(wRules))
		}

		switch {
		case strings.Contains(weapon.Name, ">") && !strings.HasPrefix(weapon.Name, ">"):
			// Combined "base > variant" name: the profile belongs to the
			// variant, attached to the base weapon as a shot type.
			weapons = attachCombinedVariant(weapons, weapon)

		case strings.HasPrefix(weapon.Name, ">") && len(weapons) > 0:
			weapons = attachAmmoVariant(weapons, weapon)

		default:
			weapons = append(weapons, weapon)
		}
	}

	return weapons
}

// reclaimWeaponName checks whether the previous weapon's last special rule
// is actually the name of the profile being parsed, which happens when a
// secondary weapon name was collected as a rule. It removes and returns the
// rule, or the unnamed placeholder.
func reclaimWeaponName(weapons []Weapon) string {
	if len(weapons) == 0 {
		return unnamedWeapon
	}
	last := &weapons[len(weapons)-1]
	if len(last.SpecialRules) == 0 {
		return unnamedWeapon
	}
	lastRule := last.SpecialRules[len(last.SpecialRules)-1]
	if !matchWeaponName(lastRule) {
		return unnamedWeapon
	}

	title := lastRule
	if strings.Contains(title, ">") && !strings.HasPrefix(title, ">") {
		parts := strings.SplitN(title, ">", 2)
		potentialAmmo := ">" + strings.TrimSpace(parts[1])
		if matchWeaponName(potentialAmmo) {
			title = potentialAmmo
		}
	}

	last.SpecialRules = last.SpecialRules[:len(last.SpecialRules)-1]
	if len(last.SpecialRules) == 0 {
		last.SpecialRules = nil
	}
	return title
}

// nameFromVariantAhead names an unnamed profile from the caliber of an
// ammunition variant on a following line, producing names like
// "82mm Automatic Mortar" when the card's category mentions a mortar.
func nameFromVariantAhead(lines []LineBox, from int, descriptiveCategory string) string {
	for i := from; i < len(lines); i++ {
		next := strings.TrimSpace(lines[i].Text)
		if next == "" || separatorRe.MatchString(next) {
			continue
		}
		if strings.HasPrefix(next, ">") {
			if caliber := caliberRe.FindString(next); caliber != "" {
				return mortarName(caliber, descriptiveCategory)
			}
			return unnamedWeapon
		}
		if profileDetectRe.MatchString(next) {
			return unnamedWeapon
		}
	}
	return unnamedWeapon
}

// nameFromVariantRules names an unnamed weapon from an ammo variant that was
// collected into its rule list, removing the variant from the rules.
func nameFromVariantRules(rules []string, descriptiveCategory string) (string, []string) {
	for i, rule := range rules {
		if !strings.HasPrefix(rule, ">") {
			continue
		}
		caliber := caliberRe.FindString(rule)
		if caliber == "" {
			continue
		}
		out := make([]string, 0, len(rules)-1)
		out = append(out, rules[:i]...)
		out = append(out, rules[i+1:]...)
		return mortarName(caliber, descriptiveCategory), out
	}
	return unnamedWeapon, rules
}

// mortarName builds a weapon name from a caliber and the card's descriptive
// category: "TOWED AUTOMATIC MORTAR" plus "82mm" gives "82mm Automatic
// Mortar".
func mortarName(caliber, descriptiveCategory string) string {
	if descriptiveCategory == "" || !strings.Contains(strings.ToUpper(descriptiveCategory), "MORTAR") {
		return caliber + " Mortar"
	}
	mortarType := ""
	for _, word := range strings.Fields(strings.ToLower(descriptiveCategory)) {
		if word != "towed" && word != "mortar" && word != "self-propelled" {
			mortarType = titleWord(word) + " "
		}
	}
	return caliber + " " + mortarType + "Mortar"
}

func titleWord(w string) string {
	if w == "" {
		return w
	}
	return strings.ToUpper(w[:1]) + w[1:]
}

// cleanWeaponTitle strips embedded stats from a weapon name line: "Ammo N"
// tokens are dropped (the profile carries ammo) and known rules such as
// Turret or No CC are moved to the rule list. The ">" variant suffix, when
// present, is left untouched.
func cleanWeaponTitle(title string) (string, []string) {
	var embedded []string

	title = embeddedAmmoRe.ReplaceAllString(title, " ")

	if strings.Contains(title, ">") && !strings.HasPrefix(title, ">") {
		parts := strings.SplitN(title, ">", 2)
		base := parts[0]
		base, embedded = extractEmbeddedRules(base)
		title = strings.TrimSpace(base) + " >" + parts[1]
	} else {
		title, embedded = extractEmbeddedRules(title)
	}

	return strings.TrimSpace(spaceRunRe.ReplaceAllString(title, " ")), embedded
}

func extractEmbeddedRules(s string) (string, []string) {
	var found []string
	for _, rule := range embeddedRuleNames {
		re := regexp.MustCompile(`\s*\b` + regexp.QuoteMeta(rule) + `\b\s*`)
		if re.MatchString(s) {
			found = append(found, rule)
			s = re.ReplaceAllString(s, " ")
		}
	}
	return s, found
}

// normalizeRange converts a profile range token to inches, mapping the
// recurring misreads of 0 and 40.
func normalizeRange(r string) int {
	switch strings.ToLower(r) {
	case "o":
		return 0
	case "e", "eo", "4o":
		return 40
	}
	n, _ := strconv.Atoi(r)
	return n
}

// attachCombinedVariant handles a weapon whose name holds both the base
// weapon and an ammo variant. The profile becomes a shot type on the base
// weapon, which is created from the same profile when it does not exist yet.
func attachCombinedVariant(weapons []Weapon, weapon Weapon) []Weapon {
	parts := strings.SplitN(weapon.Name, ">", 2)
	baseName := strings.TrimSpace(parts[0])
	variantName := strings.TrimSpace(parts[1])

	baseIdx := -1
	for i := len(weapons) - 1; i >= 0; i-- {
		if weapons[i].Name == baseName {
			baseIdx = i
			break
		}
	}
	if baseIdx < 0 {
		base := weapon
		base.Name = baseName
		weapons = append(weapons, base)
		baseIdx = len(weapons) - 1
	}

	weapons[baseIdx].ShotTypes = append(weapons[baseIdx].ShotTypes, makeShotType(variantName, weapon))
	return weapons
}

// attachAmmoVariant folds a ">"-prefixed weapon into the most recent base
// weapon with a matching caliber, or the most recent non-variant weapon when
// the variant names no caliber. Variants with no possible base are dropped.
func attachAmmoVariant(weapons []Weapon, weapon Weapon) []Weapon {
	caliber := caliberRe.FindString(weapon.Name)

	baseIdx := -1
	for i := len(weapons) - 1; i >= 0; i-- {
		if strings.HasPrefix(weapons[i].Name, ">") {
			continue
		}
		if caliber != "" {
			if caliberRe.FindString(weapons[i].Name) == caliber {
				baseIdx = i
				break
			}
		} else {
			baseIdx = i
			break
		}
	}
	if baseIdx < 0 {
		return weapons
	}

	shotName := strings.TrimSpace(strings.TrimPrefix(weapon.Name, ">"))
	weapons[baseIdx].ShotTypes = append(weapons[baseIdx].ShotTypes, makeShotType(shotName, weapon))
	return weapons
}

// makeShotType copies a parsed profile into a shot type. All stats are
// carried since variants can differ from the base weapon in every field.
func makeShotType(name string, weapon Weapon) ShotType {
	rangeVal := weapon.Range
	acc := weapon.Accuracy
	dice := weapon.Dice
	st := ShotType{
		Name:     name,
		Target:   weapon.Target,
		Range:    &rangeVal,
		Accuracy: &acc,
		Strength: weapon.Strength,
		Dice:     &dice,
	}
	if len(weapon.SpecialRules) > 0 {
		st.SpecialRules = fixRadiusRules(name, weapon.SpecialRules)
	}
	return st
}

// fixRadiusRules rebuilds Smoke and Chemical-SP rules that lost their name:
// a shot type "82mm Smoke" with an orphaned "(3)" rule becomes "Smoke (3")".
func fixRadiusRules(shotName string, rules []string) []string {
	if !strings.HasSuffix(shotName, "Smoke") && !strings.HasSuffix(shotName, "Chemical-SP") {
		return rules
	}
	words := strings.Fields(shotName)
	ammoType := words[len(words)-1]

	fixed := make([]string, 0, len(rules))
	for _, rule := range rules {
		if radiusMarkerRe.MatchString(rule) {
			radius := rule
			if !strings.Contains(rule, `"`) {
				radius = strings.Replace(rule, ")", `")`, 1)
			}
			fixed = append(fixed, ammoType+" "+radius)
		} else {
			fixed = append(fixed, rule)
		}
	}
	return fixed
}
