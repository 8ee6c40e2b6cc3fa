package rygonet

import (
	"regexp"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

var nonWordRe = regexp.MustCompile(`[^\w\s]`)
var wsRunRe = regexp.MustCompile(`\s+`)

// normalizeForMatching strips punctuation, collapses whitespace and lowers
// case so that OCR noise does not dominate the similarity score.
func normalizeForMatching(s string) string {
	s = nonWordRe.ReplaceAllString(s, "")
	s = wsRunRe.ReplaceAllString(s, " ")
	return strings.ToLower(strings.TrimSpace(s))
}

// similarity returns a character-level ratio in [0, 1] between two
// normalized strings.
func similarity(a, b string) float64 {
	m := difflib.NewMatcher(strings.Split(a, ""), strings.Split(b, ""))
	return m.Ratio()
}

// alignFormatting transfers bold and italic flags from PDF-native lines onto
// OCR lines. OCR text is the source of truth for content; the PDF text layer
// only contributes formatting. Each OCR line greedily claims the unused PDF
// line with the highest similarity above the threshold; lines with no match
// keep their text with no formatting.
func alignFormatting(ocrLines []string, pdfLines []LineBox, threshold float64) []LineBox {
	used := make([]bool, len(pdfLines))
	aligned := make([]LineBox, 0, len(ocrLines))

	normalized := make([]string, len(pdfLines))
	for i, pl := range pdfLines {
		normalized[i] = normalizeForMatching(pl.Text)
	}

	for _, line := range ocrLines {
		norm := normalizeForMatching(line)
		if norm == "" {
			aligned = append(aligned, LineBox{Text: line})
			continue
		}

		bestIdx := -1
		bestRatio := threshold
		for i, pdfNorm := range normalized {
			if used[i] || pdfNorm == "" {
				continue
			}
			if ratio := similarity(norm, pdfNorm); ratio > bestRatio {
				bestRatio = ratio
				bestIdx = i
			}
		}

		if bestIdx >= 0 {
			used[bestIdx] = true
			aligned = append(aligned, LineBox{
				Text:   line,
				Bold:   pdfLines[bestIdx].Bold,
				Italic: pdfLines[bestIdx].Italic,
			})
		} else {
			aligned = append(aligned, LineBox{Text: line})
		}
	}
	return aligned
}
