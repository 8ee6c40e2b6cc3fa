package rygonet

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/klippa-app/go-pdfium"
	"github.com/klippa-app/go-pdfium/enums"
	"github.com/klippa-app/go-pdfium/references"
	"github.com/klippa-app/go-pdfium/requests"
	"github.com/pkg/errors"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var qurTitleRe = regexp.MustCompile(`(?i)quick\s+unit\s+reference`)

// isReferencePage reports whether a page is a quick unit reference page, the
// only pages that carry stat cards.
func isReferencePage(instance pdfium.Pdfium, page references.FPDF_PAGE) (bool, error) {
	textPage, err := instance.FPDFText_LoadPage(&requests.FPDFText_LoadPage{
		Page: requests.Page{
			ByReference: &page,
		},
	})
	if err != nil {
		return false, errors.Wrap(err, "failed to load text page")
	}
	defer instance.FPDFText_ClosePage(&requests.FPDFText_ClosePage{
		TextPage: textPage.TextPage,
	})

	charCount, err := instance.FPDFText_CountChars(&requests.FPDFText_CountChars{
		TextPage: textPage.TextPage,
	})
	if err != nil {
		return false, errors.Wrap(err, "failed to count characters")
	}
	if charCount.Count == 0 {
		return false, nil
	}

	text, err := instance.FPDFText_GetText(&requests.FPDFText_GetText{
		TextPage:   textPage.TextPage,
		StartIndex: 0,
		Count:      charCount.Count,
	})
	if err != nil {
		return false, errors.Wrap(err, "failed to get page text")
	}

	return qurTitleRe.MatchString(text.Text), nil
}

// findCardRects locates card outlines on a page. Cards are drawn as
// rectangular path objects; anything smaller than the minimum card size is a
// table rule or decoration. Results are sorted top to bottom, left to right.
func findCardRects(instance pdfium.Pdfium, page references.FPDF_PAGE, pageHeight, minWidth, minHeight float64) ([]Rect, error) {
	objCount, err := instance.FPDFPage_CountObjects(&requests.FPDFPage_CountObjects{
		Page: requests.Page{
			ByReference: &page,
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to count page objects")
	}

	var rects []Rect
	for i := 0; i < objCount.Count; i++ {
		obj, err := instance.FPDFPage_GetObject(&requests.FPDFPage_GetObject{
			Page: requests.Page{
				ByReference: &page,
			},
			Index: i,
		})
		if err != nil {
			continue
		}

		objType, err := instance.FPDFPageObj_GetType(&requests.FPDFPageObj_GetType{
			PageObject: obj.PageObject,
		})
		if err != nil || objType.Type != enums.FPDF_PAGEOBJ_PATH {
			continue
		}

		// A card outline needs at least the four segments of a rectangle.
		segs, err := instance.FPDFPath_CountSegments(&requests.FPDFPath_CountSegments{
			PageObject: obj.PageObject,
		})
		if err != nil || segs.Count < 4 {
			continue
		}

		bounds, err := instance.FPDFPageObj_GetBounds(&requests.FPDFPageObj_GetBounds{
			PageObject: obj.PageObject,
		})
		if err != nil {
			continue
		}

		rect := Rect{
			X0: float64(bounds.Left),
			Y0: pageHeight - float64(bounds.Top),
			X1: float64(bounds.Right),
			Y1: pageHeight - float64(bounds.Bottom),
		}
		if rect.Width() > minWidth && rect.Height() > minHeight {
			rects = append(rects, rect)
		}
	}

	sort.SliceStable(rects, func(i, j int) bool {
		if rects[i].Y0 != rects[j].Y0 {
			return rects[i].Y0 < rects[j].Y0
		}
		return rects[i].X0 < rects[j].X0
	})
	return rects, nil
}

// findHeadings collects section heading candidates on a page: words of more
// than two characters that are all uppercase or set in a bold face.
func findHeadings(instance pdfium.Pdfium, page references.FPDF_PAGE, pageHeight float64) ([]Heading, error) {
	chars, err := extractCharsInRegion(instance, page, Rect{X0: 0, Y0: 0, X1: 1e9, Y1: 1e9}, pageHeight)
	if err != nil {
		return nil, err
	}

	var headings []Heading
	for _, word := range groupCharsIntoWords(chars) {
		text := strings.TrimSpace(word.Text)
		if len(text) > 2 && (isAllUpper(text) || strings.Contains(word.FontName, "Bold")) {
			headings = append(headings, Heading{Text: text, Box: word.Box})
		}
	}
	return headings, nil
}

// pdfWord is a whitespace-delimited run of PDF characters.
type pdfWord struct {
	Text     string
	Box      Rect
	FontName string
}

// groupCharsIntoWords splits PDF characters on whitespace, keeping the first
// character's font for the word.
func groupCharsIntoWords(chars []CharBox) []pdfWord {
	var words []pdfWord
	var current []CharBox
	flush := func() {
		if len(current) == 0 {
			return
		}
		var sb strings.Builder
		box := current[0].Box
		for _, ch := range current {
			sb.WriteRune(ch.Text)
			box.X0 = min(box.X0, ch.Box.X0)
			box.Y0 = min(box.Y0, ch.Box.Y0)
			box.X1 = max(box.X1, ch.Box.X1)
			box.Y1 = max(box.Y1, ch.Box.Y1)
		}
		words = append(words, pdfWord{Text: sb.String(), Box: box, FontName: current[0].FontName})
		current = nil
	}
	for _, ch := range chars {
		if unicode.IsSpace(ch.Text) {
			flush()
			continue
		}
		current = append(current, ch)
	}
	flush()
	return words
}

func isAllUpper(s string) bool {
	hasLetter := false
	for _, r := range s {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) {
			hasLetter = true
		}
	}
	return hasLetter
}

// headingForCard finds the heading that applies to a card: the nearest
// heading strictly above the card that overlaps it horizontally.
func headingForCard(headings []Heading, card Rect) string {
	best := ""
	bestDistance := -1.0

	for _, h := range headings {
		if h.Box.Y1 > card.Y0 {
			continue
		}
		distance := card.Y0 - h.Box.Y1
		if horizontalOverlap(card, h.Box) > 0 && (bestDistance < 0 || distance < bestDistance) {
			bestDistance = distance
			best = h.Text
		}
	}
	return best
}

var titleCaser = cases.Title(language.English)

// splitCategorySubcategory splits a heading like "INFANTRY - Line Squads"
// into a title-cased category and a verbatim subcategory.
func splitCategorySubcategory(heading string) (string, string) {
	if heading == "" {
		return "", ""
	}
	if cat, subcat, found := strings.Cut(heading, " - "); found {
		return titleCaser.String(strings.TrimSpace(cat)), strings.TrimSpace(subcat)
	}
	return titleCaser.String(strings.TrimSpace(heading)), ""
}

// validCategories are the section names that may appear as page headings.
var validCategories = map[string]bool{
	"TACOMS": true, "Infantry": true, "Vehicles": true, "Aircraft": true,
	"Emplacements": true, "Support": true, "Scenario": true,
}

// categorize assigns a unit's category and subcategory. The heading above
// the card is used when it agrees with the unit class; otherwise the class
// decides, since heading detection can latch onto the wrong header.
func categorize(unitClass, heading string) (string, string) {
	cat, subcat := splitCategorySubcategory(heading)

	inferred := "Infantry"
	switch {
	case strings.Contains(unitClass, "Inf"):
		inferred = "Infantry"
	case strings.Contains(unitClass, "Vec"):
		inferred = "Vehicles"
	case strings.Contains(unitClass, "Air"):
		inferred = "Aircraft"
	}

	if cat == "" || !validCategories[cat] {
		return inferred, subcat
	}

	matches := (cat == "Infantry" && strings.Contains(unitClass, "Inf")) ||
		(cat == "Vehicles" && strings.Contains(unitClass, "Vec")) ||
		(cat == "Aircraft" && strings.Contains(unitClass, "Air")) ||
		cat == "TACOMS" || cat == "Emplacements" || cat == "Support" || cat == "Scenario"
	if !matches {
		// Heading was wrong; drop its subcategory too.
		return inferred, ""
	}
	return cat, subcat
}
