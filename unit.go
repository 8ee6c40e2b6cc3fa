package rygonet

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// SpecialRule is a named special rule at the unit level.
type SpecialRule struct {
	Name string `json:"name"`
}

// Option is a placeholder for unit purchase options; rosters always carry an
// empty list so the schema stays stable.
type Option struct {
	Name string `json:"name"`
}

// Stats is a unit's core stat block.
type Stats struct {
	Movement         int        `json:"movement"`
	Quality          Scalar     `json:"quality"`
	Height           *int       `json:"height,omitempty"`
	SpottingDistance *int       `json:"spottingDistance,omitempty"`
	Command          *int       `json:"command,omitempty"`
	Evasion          *int       `json:"evasion,omitempty"`
	Toughness        *Toughness `json:"toughness,omitempty"`
}

// ShotType is an ammunition variant nested under its parent weapon. Variants
// can have completely different stats from the base weapon, so the full
// profile is carried.
type ShotType struct {
	Name         string    `json:"name"`
	Target       string    `json:"target,omitempty"`
	Range        *int      `json:"range,omitempty"`
	Accuracy     *Accuracy `json:"accuracy,omitempty"`
	Strength     *Strength `json:"strength,omitempty"`
	Dice         *int      `json:"dice,omitempty"`
	SpecialRules []string  `json:"specialRules,omitempty"`
}

// Weapon is one weapon profile on a unit card.
type Weapon struct {
	Name         string     `json:"name"`
	Target       string     `json:"target"`
	Range        int        `json:"range"`
	Accuracy     Accuracy   `json:"accuracy"`
	Strength     *Strength  `json:"strength,omitempty"`
	Dice         int        `json:"dice"`
	Ammo         *int       `json:"ammo"`
	SpecialRules []string   `json:"specialRules,omitempty"`
	ShotTypes    []ShotType `json:"shotTypes,omitempty"`
}

// Unit is one parsed card: identity, classification, stat block, rules and
// weapons.
type Unit struct {
	ID                  string        `json:"id"`
	Name                string        `json:"name"`
	UnitClass           string        `json:"unitClass"`
	Points              Points        `json:"points"`
	Stats               Stats         `json:"stats"`
	DescriptiveCategory string        `json:"descriptiveCategory,omitempty"`
	SpecialRules        []SpecialRule `json:"specialRules"`
	Description         string        `json:"description,omitempty"`
	Weapons             []Weapon      `json:"weapons,omitempty"`
	Category            string        `json:"category,omitempty"`
	Subcategory         string        `json:"subcategory,omitempty"`
	Options             []Option      `json:"options"`
}

// Faction identifies the army book a roster was extracted from.
type Faction struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Version     string `json:"version,omitempty"`
	Description string `json:"description,omitempty"`
}

// Roster is the complete output of one extraction run.
type Roster struct {
	Faction Faction `json:"faction"`
	Units   []Unit  `json:"units"`
}

// normQuotes converts curly quotes to straight quotes.
func normQuotes(s string) string {
	r := strings.NewReplacer(
		"“", `"`, "”", `"`,
		"‘", "'", "’", "'",
	)
	return r.Replace(s)
}

var (
	nicknameQueryRe = regexp.MustCompile(`"([A-Z][A-Z\-]+)\?"`)
	strayQueryRe    = regexp.MustCompile(`\?"`)
	slugSeparatorRe = regexp.MustCompile(`[^a-z0-9]+`)
)

// cleanUnitName removes OCR artifacts from unit names, such as a spurious
// "?" before the closing quote of a nickname.
func cleanUnitName(name string) string {
	cleaned := nicknameQueryRe.ReplaceAllString(name, `"$1"`)
	if cleaned == name {
		cleaned = strayQueryRe.ReplaceAllString(name, `"`)
	}
	return cleaned
}

var asciiFold = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// slugify converts a display name to a URL-friendly id.
func slugify(s string) string {
	folded, _, err := transform.String(asciiFold, s)
	if err == nil {
		s = folded
	}
	// Drop any remaining non-ASCII runes.
	s = strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		return r
	}, s)
	s = strings.ToLower(s)
	s = slugSeparatorRe.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// dedupePreserveOrder removes duplicate strings while keeping first-seen
// order.
func dedupePreserveOrder(items []string) []string {
	seen := make(map[string]bool, len(items))
	result := make([]string, 0, len(items))
	for _, item := range items {
		if seen[item] {
			continue
		}
		seen[item] = true
		result = append(result, item)
	}
	return result
}
