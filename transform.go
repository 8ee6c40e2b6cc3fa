package rygonet

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Importer for the community armybuilder unit libraries. The libraries are
// JavaScript files exporting one JSON-shaped array per faction; the importer
// converts them to the same roster schema the PDF extractor produces.

type libraryUnit struct {
	Name    string          `json:"name"`
	Value   int             `json:"value"`
	Type    libraryType     `json:"type"`
	Stats   []any           `json:"stats"`
	Tags    []libraryTag    `json:"tags"`
	Weapons []libraryWeapon `json:"weapons"`
}

type libraryType struct {
	Super []string `json:"super"`
	Sub   []string `json:"sub"`
}

type libraryTag struct {
	Rule   string `json:"rule"`
	Params string `json:"params"`
}

type libraryWeapon struct {
	WeaponName string          `json:"weaponName"`
	WeaponAmmo any             `json:"weaponAmmo"`
	Attacks    []libraryAttack `json:"attacks"`
}

type libraryAttack struct {
	AttackName     string   `json:"attackName"`
	AttackTargets  string   `json:"attackTargets"`
	AttackRange    string   `json:"attackRange"`
	AttackAccuracy string   `json:"attackAccuracy"`
	AttackStrength string   `json:"attackStrength"`
	AttackDice     any      `json:"attackDice"`
	AttackTags     []string `json:"attackTags"`
}

var (
	libraryArrayRe    = regexp.MustCompile(`(?s)const \w+list = (\[.*?\n\])\s*export`)
	trailingCommaRe   = regexp.MustCompile(`,(\s*[}\]])`)
	libraryNameRe     = regexp.MustCompile(`(\w+Library)\.js`)
	statValueRe       = regexp.MustCompile(`[A-Z](\d+)`)
	rangeSpanRe       = regexp.MustCompile(`^(\d+)-(\d+)$`)
)

// libraryFactions maps library file names to faction metadata.
var libraryFactions = map[string]Faction{
	"federalLibrary": {
		ID: "fsa", Name: "Federal States-Army",
		Description: "Federal States military forces",
	},
	"luparLibrary": {
		ID: "lupar", Name: "Lupar Realms",
		Description: "Lupar Realms military forces",
	},
	"rygolicLibrary": {
		ID: "rygolic", Name: "Rygolic Empire",
		Description: "Rygolic Empire military forces",
	},
	"santagriLibrary": {
		ID: "santagri", Name: "Santagri",
		Description: "Santagri military forces",
	},
}

// FactionForLibrary derives faction metadata from a library file path or
// URL, such as ".../federalLibrary.js".
func FactionForLibrary(path string) (Faction, error) {
	m := libraryNameRe.FindStringSubmatch(path)
	if m == nil {
		return Faction{}, errors.Errorf("could not extract faction name from %q", path)
	}
	faction, ok := libraryFactions[m[1]]
	if !ok {
		return Faction{}, errors.Errorf("unknown library %q", m[1])
	}
	faction.Version = "Imported from firelock-198X-armybuilder"
	return faction, nil
}

// TransformLibrary converts an armybuilder library JS file into a roster.
func TransformLibrary(jsContent []byte, faction Faction) (*Roster, error) {
	m := libraryArrayRe.FindSubmatch(jsContent)
	if m == nil {
		return nil, errors.New("could not find list array in library file")
	}
	// JS tolerates trailing commas, JSON does not.
	raw := trailingCommaRe.ReplaceAll(m[1], []byte("$1"))

	var source []libraryUnit
	if err := json.Unmarshal(raw, &source); err != nil {
		return nil, errors.Wrap(err, "failed to parse library array")
	}

	units := make([]Unit, 0, len(source))
	for _, su := range source {
		units = append(units, transformLibraryUnit(su))
	}

	return &Roster{Faction: faction, Units: units}, nil
}

func transformLibraryUnit(su libraryUnit) Unit {
	unit := Unit{
		ID:           libraryID(su.Name),
		Name:         strings.ToUpper(su.Name),
		UnitClass:    libraryUnitClass(su.Type),
		Points:       Points{Value: su.Value},
		Stats:        libraryStats(su.Stats),
		SpecialRules: []SpecialRule{},
		Options:      []Option{},
	}

	for _, tag := range su.Tags {
		// Long sentence-like tags are the unit's ability text, not a rule.
		if len(tag.Rule) > 50 || strings.HasSuffix(tag.Rule, ".") {
			unit.Description = tag.Rule
			continue
		}
		name := tag.Rule
		if tag.Params != "" {
			name = name + " (" + tag.Params + ")"
		}
		unit.SpecialRules = append(unit.SpecialRules, SpecialRule{Name: name})
	}

	for _, sw := range su.Weapons {
		unit.Weapons = append(unit.Weapons, transformLibraryWeapon(sw))
	}

	unit.Category = libraryCategory(unit)
	return unit
}

// libraryID builds a unit id the way the library's consumers expect: spaces
// to hyphens, quotes dropped.
func libraryID(name string) string {
	id := strings.ToLower(name)
	id = strings.ReplaceAll(id, " ", "-")
	id = strings.ReplaceAll(id, `"`, "")
	id = strings.ReplaceAll(id, "'", "")
	return id
}

// libraryUnitClass maps the library's super/sub type arrays onto unit class
// strings.
func libraryUnitClass(t libraryType) string {
	superType := ""
	if len(t.Super) > 0 {
		superType = t.Super[0]
	}
	has := func(sub string) bool {
		for _, s := range t.Sub {
			if s == sub {
				return true
			}
		}
		return false
	}

	switch superType {
	case "Infantry":
		if has("Squad") {
			return "Inf(S)"
		}
		return "Inf"
	case "Vehicle":
		if has("Wheeled") || has("Watercraft") {
			return "Vec (W)"
		}
		if has("Carriage") {
			return "Vec (C)"
		}
		return "Vec"
	case "Helicopter":
		return "Vec"
	case "Aircraft":
		if has("CAS") {
			return "Air (CAS)"
		}
		if has("CAP") {
			return "Air (CAP)"
		}
		return "Air"
	}
	return "Vec"
}

// libraryCategory categorizes a transformed unit by class; command units
// carrying the Brigade rule belong to TACOMS.
func libraryCategory(unit Unit) string {
	for _, sr := range unit.SpecialRules {
		if strings.HasPrefix(sr.Name, "Brigade") {
			return "TACOMS"
		}
	}
	switch {
	case strings.HasPrefix(unit.UnitClass, "Inf"):
		return "Infantry"
	case strings.HasPrefix(unit.UnitClass, "Vec"):
		return "Vehicles"
	case strings.HasPrefix(unit.UnitClass, "Air"):
		return "Aircraft"
	}
	return "Vehicles"
}

// libraryStats converts the library's positional stats array
// [Height, Spotting, Movement, Quality, Toughness, Command].
func libraryStats(arr []any) Stats {
	statAt := func(idx, fallback int) Scalar {
		if idx >= len(arr) {
			return IntScalar(fallback)
		}
		return parseLibraryStat(arr[idx], fallback)
	}

	height := scalarToInt(statAt(0, 1), 1)
	spotting := scalarToInt(statAt(1, 0), 0)
	movement := scalarToInt(statAt(2, 0), 0)
	command := scalarToInt(statAt(5, 0), 0)

	// Only quality may stay "*"; drones have no quality of their own.
	quality := statAt(3, 4)

	stats := Stats{
		Movement:         movement,
		Quality:          quality,
		Height:           &height,
		SpottingDistance: &spotting,
		Command:          &command,
	}
	stats.Toughness = libraryToughness(arr)
	return stats
}

// parseLibraryStat extracts the value from a stat token like `H2`, `M8"`,
// `Q3` or `Q*`.
func parseLibraryStat(v any, fallback int) Scalar {
	switch t := v.(type) {
	case float64:
		return IntScalar(int(t))
	case string:
		if strings.Contains(t, "*") {
			return TokenScalar("*")
		}
		if m := statValueRe.FindStringSubmatch(t); m != nil {
			n, _ := strconv.Atoi(m[1])
			return IntScalar(n)
		}
		if strings.HasSuffix(t, "-") {
			return TokenScalar(t)
		}
	}
	return IntScalar(fallback)
}

func scalarToInt(s Scalar, fallback int) int {
	if s.IsToken() {
		return fallback
	}
	return s.Num
}

func libraryToughness(arr []any) *Toughness {
	ones := &Toughness{Sides: &ToughnessSides{
		Front: IntScalar(1), Side: IntScalar(1), Rear: IntScalar(1),
	}}
	if len(arr) < 5 {
		return ones
	}

	switch t := arr[4].(type) {
	case float64:
		return &Toughness{Value: IntScalar(int(t))}
	case string:
		tough := strings.TrimPrefix(t, "T")
		if strings.Contains(tough, "/") {
			parts := strings.SplitN(tough, "/", 3)
			if len(parts) == 3 {
				return &Toughness{Sides: &ToughnessSides{
					Front: parseToughnessValue(parts[0]),
					Side:  parseToughnessValue(parts[1]),
					Rear:  parseToughnessValue(parts[2]),
				}}
			}
			return ones
		}
		return &Toughness{Value: parseToughnessValue(tough)}
	}
	return ones
}

func transformLibraryWeapon(sw libraryWeapon) Weapon {
	weapon := Weapon{Name: sw.WeaponName}
	if weapon.Name == "" {
		weapon.Name = "Unknown Weapon"
	}
	weapon.Ammo = libraryAmmo(sw.WeaponAmmo)

	if len(sw.Attacks) == 0 {
		weapon.Target = "All"
		return weapon
	}

	first := sw.Attacks[0]
	weapon.Target = attackTarget(first)
	weapon.Range = libraryRange(first.AttackRange)
	weapon.Accuracy = libraryAccuracy(first.AttackAccuracy)
	weapon.Strength = libraryStrength(first.AttackStrength)
	weapon.Dice = libraryDice(first.AttackDice)

	if len(sw.Attacks) == 1 {
		if len(first.AttackTags) > 0 {
			weapon.SpecialRules = first.AttackTags
		}
		return weapon
	}

	// Multiple attack modes become shot types. The weapon keeps the first
	// attack's stats; shot types repeat target and range only when they
	// differ.
	for _, attack := range sw.Attacks {
		name := attack.AttackName
		if name == "" {
			name = "Standard"
		}
		shot := ShotType{Name: name}

		if target := attackTarget(attack); target != weapon.Target {
			shot.Target = target
		}
		if r := libraryRange(attack.AttackRange); r != weapon.Range {
			shot.Range = &r
		}
		acc := libraryAccuracy(attack.AttackAccuracy)
		shot.Accuracy = &acc
		shot.Strength = libraryStrength(attack.AttackStrength)
		dice := libraryDice(attack.AttackDice)
		shot.Dice = &dice
		if len(attack.AttackTags) > 0 {
			shot.SpecialRules = attack.AttackTags
		}
		weapon.ShotTypes = append(weapon.ShotTypes, shot)
	}
	return weapon
}

func attackTarget(a libraryAttack) string {
	if a.AttackTargets == "" {
		return "All"
	}
	return a.AttackTargets
}

func libraryAmmo(v any) *int {
	switch t := v.(type) {
	case float64:
		if t == 0 {
			return nil
		}
		n := int(t)
		return &n
	case string:
		if t == "" {
			return nil
		}
		n, err := strconv.Atoi(t)
		if err != nil {
			return nil
		}
		return &n
	}
	return nil
}

// libraryRange parses range tokens like `R8"`, `R12-60"` (maximum wins) and
// `R∞` (unlimited, flattened to 0).
func libraryRange(r string) int {
	r = strings.TrimPrefix(r, "R")
	r = strings.ReplaceAll(r, `"`, "")
	r = strings.TrimSpace(r)
	if r == "" || r == "∞" {
		return 0
	}
	if m := rangeSpanRe.FindStringSubmatch(r); m != nil {
		lo, _ := strconv.Atoi(m[1])
		hi, _ := strconv.Atoi(m[2])
		return max(lo, hi)
	}
	n, _ := strconv.Atoi(r)
	return n
}

func libraryAccuracy(acc string) Accuracy {
	acc = strings.TrimSpace(strings.TrimPrefix(acc, "A"))
	if acc == "" {
		return Accuracy{Value: IntScalar(4)}
	}
	if parsed, ok := parseAccuracy(acc); ok {
		return parsed
	}
	return Accuracy{Value: TokenScalar(acc)}
}

func libraryStrength(sv string) *Strength {
	sv = strings.TrimSpace(strings.TrimPrefix(sv, "S"))
	if sv == "" {
		return &Strength{Value: IntScalar(0)}
	}
	if parsed, ok := parseStrength(sv); ok && parsed != nil {
		return parsed
	}
	return &Strength{Value: TokenScalar(sv)}
}

func libraryDice(v any) int {
	switch t := v.(type) {
	case float64:
		return int(t)
	case string:
		d := strings.TrimSpace(strings.TrimPrefix(t, "D"))
		n, _ := strconv.Atoi(d)
		return n
	}
	return 1
}
