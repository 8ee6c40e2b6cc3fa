package rygonet

import (
	"sort"
	"strings"
)

// reconstructLines groups OCR words into text lines by vertical position.
// Words whose vertical centers fall within tolerance of a line's running
// average join that line; each finished line is sorted left to right, joined
// with spaces and passed through the line-level OCR corrector.
func reconstructLines(words []WordBox, tolerance float64) []string {
	if len(words) == 0 {
		return nil
	}

	sorted := make([]WordBox, len(words))
	copy(sorted, words)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].CenterY() != sorted[j].CenterY() {
			return sorted[i].CenterY() < sorted[j].CenterY()
		}
		return sorted[i].Box.X0 < sorted[j].Box.X0
	})

	var groups [][]WordBox
	current := []WordBox{sorted[0]}
	currentSum := sorted[0].CenterY()

	for _, word := range sorted[1:] {
		avg := currentSum / float64(len(current))
		if word.CenterY()-avg <= tolerance {
			current = append(current, word)
			currentSum += word.CenterY()
		} else {
			groups = append(groups, current)
			current = []WordBox{word}
			currentSum = word.CenterY()
		}
	}
	groups = append(groups, current)

	lines := make([]string, 0, len(groups))
	for _, group := range groups {
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].Box.X0 < group[j].Box.X0
		})
		parts := make([]string, 0, len(group))
		for _, word := range group {
			parts = append(parts, word.Text)
		}
		lines = append(lines, fixLineText(strings.Join(parts, " ")))
	}
	return lines
}
