package rygonet

import (
	"regexp"
	"strings"
)

// OCR glyph confusions are corrected at two granularities: word level, before
// line reconstruction, and line level, once spatial context is available.
// Both passes are idempotent so that merge steps can safely re-run them.

var (
	currencySpotRe  = regexp.MustCompile(`\$(\d+)"`)
	movementZeroRe  = regexp.MustCompile(`^MO"`)
	letterOZeroRe   = regexp.MustCompile(`\bO(\d)`)
	trailingElRe    = regexp.MustCompile(`(\d)l"`)
	mergedGlyphs    = strings.NewReplacer("|", "I", "}", ")", "{", "(")
	rangeWordFixups = map[string]string{
		`Re"`:  `R40"`,
		`Reo"`: `R40"`,
		`Ro"`:  `R0"`,
		`R4o"`: `R40"`,
	}
)

// fixWordText corrects glyph confusions that are recognizable from a single
// token: stray currency glyphs before digits, zero/letter-O confusion
// (except inside the movement-zero token MO"), merged bracket characters,
// and a handful of literal range misreads.
func fixWordText(text string) string {
	// $ is often misread for S in stat tokens: $32" -> S32".
	text = currencySpotRe.ReplaceAllString(text, `S$1"`)

	if !movementZeroRe.MatchString(text) {
		text = letterOZeroRe.ReplaceAllString(text, "0$1")
	}

	// 8l" -> 8" (l misread after a digit).
	text = trailingElRe.ReplaceAllString(text, `$1"`)

	text = mergedGlyphs.Replace(text)

	if fixed, ok := rangeWordFixups[text]; ok {
		return fixed
	}
	return text
}

var (
	currencyStrengthRe  = regexp.MustCompile(`\$(\d+)/`)
	currencyTrailingRe  = regexp.MustCompile(`,\s*\$(\d+)`)
	statPrefixQuotedRe  = regexp.MustCompile(`\b([HSMR])\s+(\d+)"`)
	statPrefixPlainRe   = regexp.MustCompile(`\b([QCAD])\s+(\d+)`)
	toughnessPrefixRe   = regexp.MustCompile(`\bT\s+(\d)`)
	evasionElRe         = regexp.MustCompile(`\bEl\b`)
	evasionEORe         = regexp.MustCompile(`\bEO\b`)
	evasionSplitRe      = regexp.MustCompile(`\bE\s+(\d)`)
	accuracyAtRe        = regexp.MustCompile(`(,\s*)At(\+)`)
	ptsSpellingRe       = regexp.MustCompile(`(?i)(\d+)\s*p[tl]s\b`)
	classFlagSpaceRe    = regexp.MustCompile(`(Inf|Vec|Air)\s+\(([SWCML]+|CAP|CAS)\)`)
	rangeLineFixups     = []struct{ re *regexp.Regexp; repl string }{
		// Longer misreads first so Reo" is not half-fixed by the Re" rule.
		{regexp.MustCompile(`Reo"`), `R40"`},
		{regexp.MustCompile(`R4o"`), `R40"`},
		{regexp.MustCompile(`Re"`), `R40"`},
		{regexp.MustCompile(`Ro"`), `R0"`},
	}
	wordConfusions = strings.NewReplacer(" lnf ", " Inf ", " Alr ", " Air ")
)

// fixLineText corrects OCR errors that need line context: stat-line and
// weapon-profile prefix letters rejoined to their digits, evasion-letter
// confusions, range misreads, "pts" spelling, and stray spaces before
// unit-class parenthetical flags.
func fixLineText(line string) string {
	// $ -> S in spotting, strength and trailing-strength positions.
	line = currencySpotRe.ReplaceAllString(line, `S$1"`)
	line = currencyStrengthRe.ReplaceAllString(line, `S$1/`)
	line = currencyTrailingRe.ReplaceAllString(line, `, S$1`)

	// Reattach stat and profile prefix letters that OCR split from their
	// digits: "M 4"" -> "M4"", "Q 3" -> "Q3".
	line = statPrefixQuotedRe.ReplaceAllString(line, `$1$2"`)
	line = statPrefixPlainRe.ReplaceAllString(line, `$1$2`)
	line = toughnessPrefixRe.ReplaceAllString(line, `T$1`)

	// Evasion confusions: El -> E4, EO -> E0.
	line = evasionElRe.ReplaceAllString(line, "E4")
	line = evasionEORe.ReplaceAllString(line, "E0")
	line = evasionSplitRe.ReplaceAllString(line, "E$1")

	// "At++" is "A++" with a phantom t.
	line = accuracyAtRe.ReplaceAllString(line, `${1}A${2}`)

	for _, fix := range rangeLineFixups {
		line = fix.re.ReplaceAllString(line, fix.repl)
	}

	line = wordConfusions.Replace(line)

	line = ptsSpellingRe.ReplaceAllString(line, "$1 pts")

	// "Inf (S)" -> "Inf(S)" so the stat grammar sees one token.
	line = classFlagSpaceRe.ReplaceAllString(line, "$1($2)")

	return line
}
