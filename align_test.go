package rygonet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeForMatching(t *testing.T) {
	tests := []struct{ in, want string }{
		{`Inf(S), M4", Q4`, "infs m4 q4"},
		{"  Fearless,   Paradrop ", "fearless paradrop"},
		{"___", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizeForMatching(tt.in), "input %q", tt.in)
	}
}

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, similarity("fearless", "fearless"))
	assert.Greater(t, similarity("fearless paradrop", "fearless parodrop"), 0.9)
	assert.Less(t, similarity("fearless", "r16 a4 s1 d1"), 0.4)
}

func TestAlignFormatting(t *testing.T) {
	ocrLines := []string{
		"RIFLE SQUAD - 25 pts",
		`Inf(S), M4", Q4, T1/1/1`,
		"Fearless, Paradrop",
		"6G1 7.76mm Rifle",
	}
	pdfLines := []LineBox{
		{Text: "RIFLE SQUAD - 25 pts", Bold: true},
		{Text: `Inf(S), M4", Q4, T1/1/1`},
		{Text: "Fearless, Paradrop", Italic: true},
		{Text: "6G1 7.76mm Rifle"},
	}

	aligned := alignFormatting(ocrLines, pdfLines, 0.6)
	require.Len(t, aligned, 4)
	assert.True(t, aligned[0].Bold)
	assert.False(t, aligned[0].Italic)
	assert.True(t, aligned[2].Italic)
	assert.False(t, aligned[3].Italic)
	for i, line := range aligned {
		assert.Equal(t, ocrLines[i], line.Text, "OCR text is the source of truth")
	}
}

// Each PDF line may donate its formatting to at most one OCR line.
func TestAlignFormattingClaimsOnce(t *testing.T) {
	ocrLines := []string{"Fearless", "Fearless"}
	pdfLines := []LineBox{{Text: "Fearless", Italic: true}}

	aligned := alignFormatting(ocrLines, pdfLines, 0.6)
	require.Len(t, aligned, 2)
	assert.True(t, aligned[0].Italic)
	assert.False(t, aligned[1].Italic)
}

func TestAlignFormattingNoMatchBelowThreshold(t *testing.T) {
	aligned := alignFormatting([]string{"completely different text"},
		[]LineBox{{Text: "zq", Italic: true}}, 0.6)
	require.Len(t, aligned, 1)
	assert.False(t, aligned[0].Italic)
}

func TestAlignFormattingDeterministic(t *testing.T) {
	ocrLines := []string{"alpha beta", "gamma delta", ""}
	pdfLines := []LineBox{
		{Text: "gamma delta", Italic: true},
		{Text: "alpha beta", Bold: true},
	}
	first := alignFormatting(ocrLines, pdfLines, 0.6)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, alignFormatting(ocrLines, pdfLines, 0.6))
	}
}
