package rygonet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Fixture in the armybuilder library format: a JS module exporting one
// JSON-shaped array, trailing commas included.
const libraryFixture = `import { helpers } from "./helpers.js"

const federallist = [
  {
    "name": "Rifle Squad",
    "value": 25,
    "type": {"super": ["Infantry"], "sub": ["Squad"]},
    "stats": ["H1", "S0", "M4\"", "Q4", "T1/1/1", "C1"],
    "tags": [
      {"rule": "Fearless", "params": ""},
      {"rule": "Brigade", "params": "2"},
      {"rule": "A hardy squad of regulars that forms the backbone of the army.", "params": ""},
    ],
    "weapons": [
      {
        "weaponName": "6G1 Rifle",
        "weaponAmmo": 0,
        "attacks": [
          {"attackName": "", "attackTargets": "Inf", "attackRange": "R16\"", "attackAccuracy": "A4+", "attackStrength": "S1", "attackDice": "D1", "attackTags": []},
        ],
      },
      {
        "weaponName": "Grenade Launcher",
        "weaponAmmo": "3",
        "attacks": [
          {"attackName": "Frag", "attackTargets": "Inf", "attackRange": "R12-24\"", "attackAccuracy": "A5+", "attackStrength": "S2", "attackDice": 2, "attackTags": ["Indirect"]},
          {"attackName": "Smoke", "attackTargets": "Gnd", "attackRange": "R24\"", "attackAccuracy": "", "attackStrength": "", "attackDice": 1, "attackTags": []},
        ],
      },
    ],
  },
]
export default federallist
`

func TestTransformLibrary(t *testing.T) {
	faction := Faction{ID: "fsa", Name: "Federal States-Army"}
	roster, err := TransformLibrary([]byte(libraryFixture), faction)
	require.NoError(t, err)
	assert.Equal(t, faction, roster.Faction)
	require.Len(t, roster.Units, 1)

	unit := roster.Units[0]
	assert.Equal(t, "rifle-squad", unit.ID)
	assert.Equal(t, "RIFLE SQUAD", unit.Name)
	assert.Equal(t, "Inf(S)", unit.UnitClass)
	assert.Equal(t, Points{Value: 25}, unit.Points)

	assert.Equal(t, 4, unit.Stats.Movement)
	assert.Equal(t, IntScalar(4), unit.Stats.Quality)
	require.NotNil(t, unit.Stats.Height)
	assert.Equal(t, 1, *unit.Stats.Height)
	require.NotNil(t, unit.Stats.SpottingDistance)
	assert.Equal(t, 0, *unit.Stats.SpottingDistance)
	require.NotNil(t, unit.Stats.Command)
	assert.Equal(t, 1, *unit.Stats.Command)
	require.NotNil(t, unit.Stats.Toughness)
	require.NotNil(t, unit.Stats.Toughness.Sides)
	assert.Equal(t, IntScalar(1), unit.Stats.Toughness.Sides.Front)

	assert.Equal(t, []SpecialRule{{Name: "Fearless"}, {Name: "Brigade (2)"}}, unit.SpecialRules)
	assert.Equal(t, "A hardy squad of regulars that forms the backbone of the army.", unit.Description)

	// Brigade units belong to TACOMS regardless of class.
	assert.Equal(t, "TACOMS", unit.Category)

	require.Len(t, unit.Weapons, 2)

	rifle := unit.Weapons[0]
	assert.Equal(t, "6G1 Rifle", rifle.Name)
	assert.Nil(t, rifle.Ammo, "ammo 0 means no ammo limit")
	assert.Equal(t, "Inf", rifle.Target)
	assert.Equal(t, 16, rifle.Range)
	assert.Equal(t, Accuracy{Value: IntScalar(4)}, rifle.Accuracy)
	require.NotNil(t, rifle.Strength)
	assert.Equal(t, IntScalar(1), rifle.Strength.Value)
	assert.Equal(t, 1, rifle.Dice)
	assert.Empty(t, rifle.ShotTypes)

	gl := unit.Weapons[1]
	assert.Equal(t, "Grenade Launcher", gl.Name)
	require.NotNil(t, gl.Ammo)
	assert.Equal(t, 3, *gl.Ammo)
	assert.Equal(t, 24, gl.Range, "span ranges flatten to the maximum")
	require.Len(t, gl.ShotTypes, 2)

	frag := gl.ShotTypes[0]
	assert.Equal(t, "Frag", frag.Name)
	assert.Empty(t, frag.Target, "matching target is not repeated")
	assert.Nil(t, frag.Range, "matching range is not repeated")
	assert.Equal(t, []string{"Indirect"}, frag.SpecialRules)

	smoke := gl.ShotTypes[1]
	assert.Equal(t, "Smoke", smoke.Name)
	assert.Equal(t, "Gnd", smoke.Target)
	require.NotNil(t, smoke.Accuracy)
	assert.Equal(t, IntScalar(4), smoke.Accuracy.Value, "missing accuracy defaults to 4")
	require.NotNil(t, smoke.Strength)
	assert.Equal(t, IntScalar(0), smoke.Strength.Value)
}

func TestTransformLibraryNoArray(t *testing.T) {
	_, err := TransformLibrary([]byte("export default {}"), Faction{})
	assert.Error(t, err)
}

func TestFactionForLibrary(t *testing.T) {
	faction, err := FactionForLibrary("vendor/armybuilder/federalLibrary.js")
	require.NoError(t, err)
	assert.Equal(t, "fsa", faction.ID)
	assert.Equal(t, "Federal States-Army", faction.Name)
	assert.Equal(t, "Imported from firelock-198X-armybuilder", faction.Version)

	faction, err = FactionForLibrary("rygolicLibrary.js")
	require.NoError(t, err)
	assert.Equal(t, "rygolic", faction.ID)

	_, err = FactionForLibrary("notes.txt")
	assert.Error(t, err)
	_, err = FactionForLibrary("mysteryLibrary.js")
	assert.Error(t, err)
}

func TestLibraryUnitClass(t *testing.T) {
	tests := []struct {
		superType string
		sub       []string
		want      string
	}{
		{"Infantry", []string{"Squad"}, "Inf(S)"},
		{"Infantry", nil, "Inf"},
		{"Vehicle", []string{"Wheeled"}, "Vec (W)"},
		{"Vehicle", []string{"Watercraft"}, "Vec (W)"},
		{"Vehicle", []string{"Carriage"}, "Vec (C)"},
		{"Vehicle", []string{"Tracked"}, "Vec"},
		{"Helicopter", nil, "Vec"},
		{"Aircraft", []string{"CAS"}, "Air (CAS)"},
		{"Aircraft", []string{"CAP"}, "Air (CAP)"},
		{"Aircraft", nil, "Air"},
		{"", nil, "Vec"},
	}
	for _, tt := range tests {
		got := libraryUnitClass(libraryType{Super: []string{tt.superType}, Sub: tt.sub})
		assert.Equal(t, tt.want, got, "super %q sub %v", tt.superType, tt.sub)
	}
}

func TestLibraryRange(t *testing.T) {
	assert.Equal(t, 16, libraryRange(`R16"`))
	assert.Equal(t, 24, libraryRange(`R12-24"`))
	assert.Equal(t, 0, libraryRange("R∞"))
	assert.Equal(t, 0, libraryRange(""))
}

func TestLibraryAmmo(t *testing.T) {
	assert.Nil(t, libraryAmmo(float64(0)))
	assert.Nil(t, libraryAmmo(""))
	assert.Nil(t, libraryAmmo("n/a"))
	require.NotNil(t, libraryAmmo(float64(4)))
	assert.Equal(t, 4, *libraryAmmo(float64(4)))
	require.NotNil(t, libraryAmmo("6"))
	assert.Equal(t, 6, *libraryAmmo("6"))
}
