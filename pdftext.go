package rygonet

import (
	"regexp"
	"sort"
	"strings"

	"github.com/klippa-app/go-pdfium"
	"github.com/klippa-app/go-pdfium/references"
	"github.com/klippa-app/go-pdfium/requests"
	"github.com/pkg/errors"
)

// extractCharsInRegion extracts all PDF-native characters that fall inside
// the given region. Coordinates are converted from PDF space (origin
// bottom-left) to top-left origin so they compare directly with OCR boxes.
func extractCharsInRegion(instance pdfium.Pdfium, page references.FPDF_PAGE, region Rect, pageHeight float64) ([]CharBox, error) {
	textPage, err := instance.FPDFText_LoadPage(&requests.FPDFText_LoadPage{
		Page: requests.Page{
			ByReference: &page,
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to load text page")
	}
	defer instance.FPDFText_ClosePage(&requests.FPDFText_ClosePage{
		TextPage: textPage.TextPage,
	})

	charCount, err := instance.FPDFText_CountChars(&requests.FPDFText_CountChars{
		TextPage: textPage.TextPage,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to count characters")
	}

	chars := make([]CharBox, 0, charCount.Count)
	for i := 0; i < charCount.Count; i++ {
		unicodeRes, err := instance.FPDFText_GetUnicode(&requests.FPDFText_GetUnicode{
			TextPage: textPage.TextPage,
			Index:    i,
		})
		if err != nil || unicodeRes.Unicode == 0 {
			continue
		}

		charBox, err := instance.FPDFText_GetCharBox(&requests.FPDFText_GetCharBox{
			TextPage: textPage.TextPage,
			Index:    i,
		})
		if err != nil {
			continue
		}

		box := Rect{
			X0: charBox.Left,
			Y0: pageHeight - charBox.Top,
			X1: charBox.Right,
			Y1: pageHeight - charBox.Bottom,
		}

		if box.X0 < region.X0 || box.X0 > region.X1 || box.Y0 < region.Y0 || box.Y0 > region.Y1 {
			continue
		}

		fontName := ""
		fontInfo, err := instance.FPDFText_GetFontInfo(&requests.FPDFText_GetFontInfo{
			TextPage: textPage.TextPage,
			Index:    i,
		})
		if err == nil {
			fontName = fontInfo.FontName
		}

		chars = append(chars, CharBox{
			Text:     rune(unicodeRes.Unicode),
			Box:      box,
			FontName: fontName,
		})
	}

	return chars, nil
}

var underscoreRunRe = regexp.MustCompile(`^_+$`)

// groupCharsIntoLines groups PDF characters into formatted lines. Characters
// whose tops fall within tolerance of a line's first character share the
// line; a line is italic when a strict majority of its characters use an
// italic or oblique font face. Pure underscore runs (layout rules on the
// cards) are dropped.
func groupCharsIntoLines(chars []CharBox, tolerance float64) []LineBox {
	if len(chars) == 0 {
		return nil
	}

	sorted := make([]CharBox, len(chars))
	copy(sorted, chars)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Box.Y0 != sorted[j].Box.Y0 {
			return sorted[i].Box.Y0 < sorted[j].Box.Y0
		}
		return sorted[i].Box.X0 < sorted[j].Box.X0
	})

	var groups [][]CharBox
	current := []CharBox{sorted[0]}
	for _, ch := range sorted[1:] {
		if ch.Box.Y0-current[0].Box.Y0 <= tolerance {
			current = append(current, ch)
		} else {
			groups = append(groups, current)
			current = []CharBox{ch}
		}
	}
	groups = append(groups, current)

	lines := make([]LineBox, 0, len(groups))
	for _, group := range groups {
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].Box.X0 < group[j].Box.X0
		})

		var sb strings.Builder
		italicCount := 0
		for _, ch := range group {
			sb.WriteRune(ch.Text)
			if isItalicFont(ch.FontName) {
				italicCount++
			}
		}

		text := strings.TrimSpace(sb.String())
		if text == "" || underscoreRunRe.MatchString(text) {
			continue
		}

		lines = append(lines, LineBox{
			Text:   text,
			Italic: italicCount*2 > len(group),
		})
	}
	return lines
}

func isItalicFont(fontName string) bool {
	return strings.Contains(fontName, "Italic") ||
		strings.Contains(fontName, "italic") ||
		strings.Contains(fontName, "Oblique")
}
