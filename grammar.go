package rygonet

import (
	"regexp"
	"strconv"
	"strings"
)

// Card text grammar. Cards follow a fixed layout: a header line with name and
// points, an optional descriptive category, the stat line, italic special
// rules, an optional description block, then weapon names each followed by a
// profile line. All matching is tolerant of the OCR artifacts that survive
// the correction passes.

var headerRe = regexp.MustCompile(`^(?i)(?P<name>.+?)\s*-\s*(?P<pts>\d+(?:/\d+)?)\s*pts$`)

var statRe = regexp.MustCompile(`^(?i)(?P<unitType>Inf|Vec|Air)` +
	`(?:\s*\((?P<classFlag>[SWCMLH]+|CAP|CAS)\))?` +
	`(?:\s*,\s*)?` +
	`(?:H(?P<height>\d+))?` +
	`(?:\s*,\s*)?` +
	`(?:[S$](?P<spot>\d+)")?` +
	`(?:\s*,\s*)?` +
	`M(?P<move>\d+|O)"` +
	`(?:\s*,\s*)?` +
	`Q(?P<quality>\d+|\*)` +
	`(?:\s*,\s*T(?P<tfront>[^/,]+)(?:/(?P<tside>[^/,]+)/(?P<trear>[^,\s]+))?)?` +
	`(?:\s*,\s*E(?P<evasion>\d+))?` +
	`(?:\s*,\s*C(?P<command>\d+))?` +
	`(?:\s*,?\s*(?P<tail>.*))?$`)

var profileRe = regexp.MustCompile(`^(?i)(?P<target>All|Inf|Vec|Air|Gnd|Inf/Vec)?\s*,?\s*` +
	`R(?P<range>\d+|O|e|eo|o|4o)"\s*,?\s*` +
	`A(?P<acc>[^,]+)\s*,?\s*` +
	`(?:S(?P<str>[^,]+)\s*,?\s*)?` +
	`D(?P<dmg>\d+)` +
	`(?:\s*,?\s*Ammo\s*(?P<ammo>\d+))?` +
	`(?:\s*,?\s*(?P<trailing>.*))?$`)

// profileDetectRe is a looser test for "looks like a weapon profile", used
// when deciding whether a line can be merged or collected as a rule.
var profileDetectRe = regexp.MustCompile(`(?i)(?:All|Inf|Vec|Air|Gnd|Inf/Vec)?\s*,?\s*R\d+"\s*,?\s*A[^,]+\s*,?\s*(?:S[^,]+\s*,?\s*)?D\d+`)

// footerNoiseRe matches publisher footer text that bleeds into card crops.
var footerNoiseRe = regexp.MustCompile(`(?i)\bFIRELOCK\b|\bM\.D\.C\.\b|FEDERAL STATES-ARMY|DREKFORT`)

var (
	separatorRe    = regexp.MustCompile(`^_+$`)
	bareUnitTypeRe = regexp.MustCompile(`^(Inf|Vec|Air)$`)
	classFlagOpenRe = regexp.MustCompile(`^\([SWCML]+|CAP|CAS\)`)
	titleCaseRuleRe = regexp.MustCompile(`^[A-Z][a-z]+(?:\s+[A-Z][a-z]+)*(?:,.*)?$`)
	caliberRe       = regexp.MustCompile(`\d+mm`)
)

// matchSubexps returns the named submatches of re against s, or nil when
// there is no match.
func matchSubexps(re *regexp.Regexp, s string) map[string]string {
	m := re.FindStringSubmatch(s)
	if m == nil {
		return nil
	}
	groups := make(map[string]string)
	for i, name := range re.SubexpNames() {
		if name != "" && i < len(m) {
			groups[name] = m[i]
		}
	}
	return groups
}

// matchWeaponName reports whether a line looks like a weapon name. Three
// forms qualify: "CODE name" where the code token contains a digit
// ("6G1 7.76mm Rifle"), a proper name with an mm caliber ("Pequod SA
// 11.5mm"), and ">"-prefixed ammunition variants.
func matchWeaponName(line string) bool {
	if m := weaponCodeNameRe.FindStringSubmatch(line); m != nil && containsDigit(m[1]) {
		return true
	}
	if weaponCaliberRe.MatchString(line) {
		return true
	}
	return ammoVariantRe.MatchString(line)
}

var (
	weaponCodeNameRe = regexp.MustCompile(`^([0-9A-Z][0-9A-Z\-]*)\s+(.+)$`)
	weaponCaliberRe  = regexp.MustCompile(`^[A-Z][A-Za-z]+\s+.*\d+\.?\d*\s*mm`)
	ammoVariantRe    = regexp.MustCompile(`^>\s*.+$`)
)

func containsDigit(s string) bool {
	return strings.ContainsAny(s, "0123456789")
}

func isCodeStart(b byte) bool {
	return b >= '0' && b <= '9' || b >= 'A' && b <= 'Z'
}

func isCodeChar(b byte) bool {
	return isCodeStart(b) || b == '-'
}

// findWeaponCodeStart locates a weapon code token inside a line: an
// uppercase/digit run containing a digit, followed by whitespace and more
// text. It returns the byte offset of the code or -1. Used to split lines
// where alignment merged an italic rule with the weapon name that follows.
func findWeaponCodeStart(line string) int {
	for i := 0; i < len(line); i++ {
		if !isCodeStart(line[i]) {
			continue
		}
		j := i
		hasDigit := false
		for j < len(line) && isCodeChar(line[j]) {
			if line[j] >= '0' && line[j] <= '9' {
				hasDigit = true
			}
			j++
		}
		if !hasDigit || j >= len(line) || line[j] != ' ' {
			continue
		}
		k := j
		for k < len(line) && line[k] == ' ' {
			k++
		}
		if k < len(line) {
			return i
		}
	}
	return -1
}

// parseHeader scans the first lines of a card for the unit name and points
// cost. Besides the standard "NAME - N pts" form it recognizes the three
// ways OCR splits a header across lines.
func parseHeader(lines []string) (name string, points Points, headerIdx int, ok bool) {
	limit := min(5, len(lines))
	for i := 0; i < limit; i++ {
		if g := matchSubexps(headerRe, lines[i]); g != nil {
			return cleanUnitName(strings.TrimSpace(g["name"])), parsePoints(g["pts"]), i, true
		}
	}

	// Name, "-" and "N pts" on three separate lines.
	ptsOnlyRe := regexp.MustCompile(`(?i)(\d+)\s*pts`)
	for i := 0; i < min(3, len(lines)-2); i++ {
		if strings.TrimSpace(lines[i+1]) == "-" && strings.Contains(strings.ToLower(lines[i+2]), "pts") {
			if m := ptsOnlyRe.FindStringSubmatch(lines[i+2]); m != nil {
				n, _ := strconv.Atoi(m[1])
				return cleanUnitName(strings.TrimSpace(lines[i])), Points{Value: n}, i + 2, true
			}
		}
	}

	// Name line followed by a "- N pts" line.
	dashPtsRe := regexp.MustCompile(`^(?i)\s*-\s*(\d+(?:/\d+)?)\s*pts\s*$`)
	for i := 1; i < min(4, len(lines)-1); i++ {
		if m := dashPtsRe.FindStringSubmatch(lines[i]); m != nil {
			return cleanUnitName(strings.TrimSpace(lines[i-1])), parsePoints(m[1]), i, true
		}
	}

	// "NAME - N" line followed by a lone "pts" line.
	namePtsRe := regexp.MustCompile(`^(.+?)\s*-\s*(\d+(?:/\d+)?)\s*$`)
	for i := 0; i < min(4, len(lines)-1); i++ {
		if strings.ToLower(strings.TrimSpace(lines[i+1])) == "pts" {
			if m := namePtsRe.FindStringSubmatch(lines[i]); m != nil {
				return cleanUnitName(strings.TrimSpace(m[1])), parsePoints(m[2]), i + 1, true
			}
		}
	}

	return "", Points{}, 0, false
}

// parseStatLine parses a stat line into the stats block and the combined
// unit class string such as "Inf(S)" or "Air(CAP)".
func parseStatLine(line string) (Stats, string, bool) {
	g := matchSubexps(statRe, line)
	if g == nil {
		return Stats{}, "", false
	}

	unitClass := g["unitType"]
	if g["classFlag"] != "" {
		unitClass = unitClass + "(" + g["classFlag"] + ")"
	}

	var stats Stats

	// Movement "O" is a zero misread.
	if g["move"] == "O" {
		stats.Movement = 0
	} else {
		stats.Movement, _ = strconv.Atoi(g["move"])
	}

	// Quality "*" marks drone units with no own quality.
	if g["quality"] == "*" {
		stats.Quality = TokenScalar("*")
	} else {
		n, _ := strconv.Atoi(g["quality"])
		stats.Quality = IntScalar(n)
	}

	if g["height"] != "" {
		n, _ := strconv.Atoi(g["height"])
		stats.Height = &n
	}
	if g["spot"] != "" {
		n, _ := strconv.Atoi(g["spot"])
		stats.SpottingDistance = &n
	}
	if g["command"] != "" {
		n, _ := strconv.Atoi(g["command"])
		stats.Command = &n
	}
	if g["evasion"] != "" {
		n, _ := strconv.Atoi(g["evasion"])
		stats.Evasion = &n
	}

	if g["tfront"] != "" {
		if g["tside"] != "" && g["trear"] != "" {
			stats.Toughness = &Toughness{Sides: &ToughnessSides{
				Front: parseToughnessValue(g["tfront"]),
				Side:  parseToughnessValue(g["tside"]),
				Rear:  parseToughnessValue(g["trear"]),
			}}
		} else {
			// Single value for fixed-wing aircraft.
			stats.Toughness = &Toughness{Value: parseToughnessValue(g["tfront"])}
		}
	}

	return stats, unitClass, true
}
