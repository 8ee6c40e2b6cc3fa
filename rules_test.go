package rygonet

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitRulesSmart(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{`Heavy Weapon, Smoke (3"), Slow`, []string{"Heavy Weapon", `Smoke (3")`, "Slow"}},
		{"Transport (2, Inf only)", []string{"Transport (2, Inf only)"}},
		{"Fearless, Transport (2, Inf only), Slow", []string{"Fearless", "Transport (2, Inf only)", "Slow"}},
		{"Fearless", []string{"Fearless"}},
		{"", nil},
		{" , ", nil},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, splitRulesSmart(tt.input), "input %q", tt.input)
	}
}

func TestMergeFragmentedRules(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  []string
	}{
		{
			"two words and parenthetical",
			[]string{"Light", "Indirect", "(1)"},
			[]string{"Light Indirect (1)"},
		},
		{
			"word and parenthetical",
			[]string{"Brigade", "(2)"},
			[]string{"Brigade (2)"},
		},
		{
			"lone parenthetical reattaches",
			[]string{`Smoke (3")`, "(4)"},
			[]string{`Smoke (3") (4)`},
		},
		{
			"no fragments",
			[]string{"Fearless", "Paradrop"},
			[]string{"Fearless", "Paradrop"},
		},
		{
			"leading parenthetical with nothing before stays",
			[]string{"(1)", "Fearless"},
			[]string{"(1)", "Fearless"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, mergeFragmentedRules(tt.input))
		})
	}
}

func TestDedupePreserveOrder(t *testing.T) {
	got := dedupePreserveOrder([]string{"b", "a", "b", "c", "a"})
	assert.Equal(t, []string{"b", "a", "c"}, got)
}
