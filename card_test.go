package rygonet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cardLines(lines ...LineBox) []LineBox { return lines }

func plain(text string) LineBox  { return LineBox{Text: text} }
func italic(text string) LineBox { return LineBox{Text: text, Italic: true} }

func TestParseCardRifleSquad(t *testing.T) {
	unit := parseCard(cardLines(
		plain("RIFLE SQUAD - 25 pts"),
		plain("LINE INFANTRY"),
		plain(`Inf(S), M4", Q4, T1/1/1, C1`),
		italic("Fearless, Paradrop"),
		plain("6G1 7.76mm Rifle"),
		plain(`Inf, R16", A4+, S1, D1`),
	))
	require.NotNil(t, unit)

	assert.Equal(t, "rifle-squad", unit.ID)
	assert.Equal(t, "RIFLE SQUAD", unit.Name)
	assert.Equal(t, "Inf(S)", unit.UnitClass)
	assert.Equal(t, Points{Value: 25}, unit.Points)
	assert.Equal(t, "LINE INFANTRY", unit.DescriptiveCategory)

	assert.Equal(t, 4, unit.Stats.Movement)
	assert.Equal(t, IntScalar(4), unit.Stats.Quality)
	require.NotNil(t, unit.Stats.Toughness)
	require.NotNil(t, unit.Stats.Toughness.Sides)

	assert.Equal(t, []SpecialRule{{Name: "Fearless"}, {Name: "Paradrop"}}, unit.SpecialRules)

	require.Len(t, unit.Weapons, 1)
	w := unit.Weapons[0]
	assert.Equal(t, "6G1 7.76mm Rifle", w.Name)
	assert.Equal(t, "Inf", w.Target)
	assert.Equal(t, 16, w.Range)
	assert.Equal(t, Accuracy{Value: IntScalar(4)}, w.Accuracy)
	require.NotNil(t, w.Strength)
	assert.Equal(t, IntScalar(1), w.Strength.Value)
	assert.Equal(t, 1, w.Dice)
	assert.Nil(t, w.Ammo)

	assert.Equal(t, []Option{}, unit.Options)
}

// A "base > variant" weapon name carries the variant as a shot type on a
// base weapon created from the same profile.
func TestParseCardHowitzerVariant(t *testing.T) {
	unit := parseCard(cardLines(
		plain("2K52 BATTERY - 60 pts"),
		plain(`Vec(W), M8", Q4, T6/4/4, C2`),
		italic("Slow"),
		plain("2K52 152mm Howitzer"),
		plain(`Gnd, R60", A5+, S8/9, D2, Ammo 3`),
		plain("> 152mm HEAT"),
		plain(`Vec, R60", A5+, S14, D1`),
	))
	require.NotNil(t, unit)

	assert.Equal(t, "Vec(W)", unit.UnitClass)
	assert.Empty(t, unit.DescriptiveCategory)
	assert.Equal(t, []SpecialRule{{Name: "Slow"}}, unit.SpecialRules)

	require.Len(t, unit.Weapons, 1)
	w := unit.Weapons[0]
	assert.Equal(t, "2K52 152mm Howitzer", w.Name)
	require.NotNil(t, w.Strength)
	require.NotNil(t, w.Strength.Pair)
	assert.Equal(t, IntScalar(8), w.Strength.Pair.Normal)
	assert.Equal(t, IntScalar(9), w.Strength.Pair.HalfRange)
	require.NotNil(t, w.Ammo)
	assert.Equal(t, 3, *w.Ammo)

	require.Len(t, w.ShotTypes, 1)
	st := w.ShotTypes[0]
	assert.Equal(t, "152mm HEAT", st.Name)
	assert.Equal(t, "Vec", st.Target)
	require.NotNil(t, st.Range)
	assert.Equal(t, 60, *st.Range)
	require.NotNil(t, st.Strength)
	assert.Equal(t, IntScalar(14), st.Strength.Value)
}

// Non-italic lines after the rules are split into rule names and a
// description once the remainder reads like a sentence.
func TestParseCardRulesAndDescription(t *testing.T) {
	unit := parseCard(cardLines(
		plain("ENGINEER SQUAD - 30 pts"),
		plain(`Inf(S), M4", Q4, T1/1/1, C1`),
		italic("Fearless"),
		plain("Entrench"),
		plain("These soldiers clear obstacles"),
		plain("and demolish fortifications"),
		plain("under fire from the enemy"),
		plain("and lay bridges."),
	))
	require.NotNil(t, unit)

	assert.Equal(t, []SpecialRule{{Name: "Fearless"}, {Name: "Entrench"}}, unit.SpecialRules)
	assert.Equal(t,
		"These soldiers clear obstacles and demolish fortifications under fire from the enemy and lay bridges.",
		unit.Description)
	assert.Empty(t, unit.Weapons)
}

// The "text, separator, weapon" pattern after the rules is the unit's
// flavour description.
func TestParseCardDescriptionBlock(t *testing.T) {
	unit := parseCard(cardLines(
		plain("SUPPLY TRUCK - 20 pts"),
		plain(`Vec(W), H2, S24", M10", Q5, T2/2/2`),
		italic("Transport (4, Inf only)"),
		plain("________"),
		plain("A general purpose logistics vehicle"),
		plain("used by every battalion."),
		plain("________"),
		plain("MG3 12.7mm HMG"),
		plain(`All, R24", A4+, S2, D2`),
	))
	require.NotNil(t, unit)

	assert.Equal(t, []SpecialRule{{Name: "Transport (4, Inf only)"}}, unit.SpecialRules)
	assert.Equal(t, "A general purpose logistics vehicle used by every battalion.", unit.Description)

	require.Len(t, unit.Weapons, 1)
	assert.Equal(t, "MG3 12.7mm HMG", unit.Weapons[0].Name)
	assert.Equal(t, "All", unit.Weapons[0].Target)
}

func TestParseCardFooterNoiseDropped(t *testing.T) {
	unit := parseCard(cardLines(
		plain("RIFLE SQUAD - 25 pts"),
		plain(`Inf(S), M4", Q4, T1/1/1, C1`),
		plain("FIRELOCK GAMES 198X"),
	))
	require.NotNil(t, unit)
	assert.Empty(t, unit.SpecialRules)
}

func TestParseCardRejectsGarbage(t *testing.T) {
	assert.Nil(t, parseCard(nil))
	assert.Nil(t, parseCard(cardLines(plain("random noise"), plain("more noise"))))
	// Header but no stat line.
	assert.Nil(t, parseCard(cardLines(plain("RIFLE SQUAD - 25 pts"), plain("no stats here"))))
}

func TestMergeSplitUnitType(t *testing.T) {
	merged := mergeSplitUnitType(cardLines(
		plain("RIFLE SQUAD - 25 pts"),
		plain("Inf"),
		plain(`(S), M4", Q4, T1/1/1`),
	))
	require.Len(t, merged, 2)
	assert.Equal(t, `Inf(S), M4", Q4, T1/1/1`, merged[1].Text)
}

func TestSplitMergedRuleWeaponLines(t *testing.T) {
	lines := cardLines(
		italic("Fearless"),
		italic("Defensive CC 6L1 85mm RPG"),
	)
	out := splitMergedRuleWeaponLines(lines, 1)
	require.Len(t, out, 3)
	assert.Equal(t, "Fearless", out[0].Text)
	assert.Equal(t, "Defensive CC", out[1].Text)
	assert.True(t, out[1].Italic)
	assert.Equal(t, "6L1 85mm RPG", out[2].Text)
	assert.False(t, out[2].Italic)

	// Lines before the cursor stay untouched.
	out = splitMergedRuleWeaponLines(lines, 2)
	assert.Len(t, out, 2)
}

func TestSeparateRulesFromDescription(t *testing.T) {
	rules, desc := separateRulesFromDescription([]string{
		"Entrench",
		"All members of this unit carry",
		"demolition charges and may",
		"destroy one obstacle per turn",
		"when in base contact.",
	})
	assert.Equal(t, []string{"Entrench"}, rules)
	assert.Equal(t,
		"All members of this unit carry demolition charges and may destroy one obstacle per turn when in base contact.",
		desc)

	rules, desc = separateRulesFromDescription([]string{"Fearless", "Entrench"})
	assert.Equal(t, []string{"Fearless", "Entrench"}, rules)
	assert.Empty(t, desc)
}
