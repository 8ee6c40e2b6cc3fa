package rygonet

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFixWordText(t *testing.T) {
	tests := []struct{ in, want string }{
		{`$32"`, `S32"`},
		{"O2", "02"},
		{`MO"`, `MO"`},
		{`8l"`, `8"`},
		{"|", "I"},
		{"{3}", "(3)"},
		{`Re"`, `R40"`},
		{`Reo"`, `R40"`},
		{`R4o"`, `R40"`},
		{`Ro"`, `R0"`},
		{"Rifle", "Rifle"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, fixWordText(tt.in), "input %q", tt.in)
	}
}

func TestFixLineText(t *testing.T) {
	tests := []struct{ in, want string }{
		{`Inf(S), H2, $32", M4", Q3`, `Inf(S), H2, S32", M4", Q3`},
		{`Inf (S), M4", Q3`, `Inf(S), M4", Q3`},
		{`Air (CAP), M10", Q3`, `Air(CAP), M10", Q3`},
		{`M 4", Q 3, T1/1/1`, `M4", Q3, T1/1/1`},
		{`Vec(W), M8", Q4, El, C2`, `Vec(W), M8", Q4, E4, C2`},
		{`Vec(W), M8", Q4, EO, C2`, `Vec(W), M8", Q4, E0, C2`},
		{`Gnd, Reo", A4+, D2`, `Gnd, R40", A4+, D2`},
		{`Gnd, Re", A4+, D2`, `Gnd, R40", A4+, D2`},
		{`Gnd, Ro", A4+, D2`, `Gnd, R0", A4+, D2`},
		{`Gnd, R6", At++/++, D2`, `Gnd, R6", A++/++, D2`},
		{"RIFLE SQUAD - 25 pls", "RIFLE SQUAD - 25 pts"},
		{"RIFLE SQUAD - 25pts", "RIFLE SQUAD - 25 pts"},
		{"the lnf and Alr units", "the Inf and Air units"},
		{`All, R24", A4+, S8/9, D2`, `All, R24", A4+, S8/9, D2`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, fixLineText(tt.in), "input %q", tt.in)
	}
}

// Corrections must be stable under re-application since merge passes can run
// lines through the corrector again.
func TestFixLineTextIdempotent(t *testing.T) {
	inputs := []string{
		`Inf (S), H2, $32", M4", Q3, T1/1/1, C1`,
		`Gnd, Reo", At++/++, D2`,
		`Vec(W), M8", Q4, El, C2`,
		"RIFLE SQUAD - 25 pls",
		`All, R24", A4+, S8/9, D2, Ammo 3`,
	}
	for _, in := range inputs {
		once := fixLineText(in)
		assert.Equal(t, once, fixLineText(once), "input %q", in)
	}
}

func TestFixWordTextIdempotent(t *testing.T) {
	inputs := []string{`$32"`, "O2", `Re"`, "|", `8l"`}
	for _, in := range inputs {
		once := fixWordText(in)
		assert.Equal(t, once, fixWordText(once), "input %q", in)
	}
}
