package rygonet

import (
	"image"

	"github.com/klippa-app/go-pdfium"
	"github.com/klippa-app/go-pdfium/references"
	"github.com/klippa-app/go-pdfium/requests"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Config controls extraction behavior.
type Config struct {
	// DPI is the render resolution for OCR. Card text is small, so OCR
	// accuracy drops quickly below 300.
	DPI int

	// MinWordConfidence drops OCR words below this confidence (0-100).
	MinWordConfidence float64

	// OCRLineTolerance groups OCR words into lines, in rendered pixels.
	OCRLineTolerance float64

	// PDFLineTolerance groups PDF characters into lines, in points.
	PDFLineTolerance float64

	// MatchThreshold is the minimum similarity for transferring formatting
	// from a PDF line onto an OCR line.
	MatchThreshold float64

	// MinCardWidth and MinCardHeight filter page rectangles, in points.
	// Anything smaller is a table rule, not a card.
	MinCardWidth  float64
	MinCardHeight float64
}

// DefaultConfig returns the default extraction configuration.
func DefaultConfig() Config {
	return Config{
		DPI:               350,
		MinWordConfidence: 30,
		OCRLineTolerance:  5.0,
		PDFLineTolerance:  2.0,
		MatchThreshold:    0.6,
		MinCardWidth:      100,
		MinCardHeight:     100,
	}
}

// Extractor extracts unit stat cards from army book PDFs using pdfium for
// geometry and the PDF text layer, and OCR for card text content.
type Extractor struct {
	instance   pdfium.Pdfium
	ocr        OCREngine
	rasterizer Rasterizer
	config     Config
	logger     *zap.Logger
}

// NewExtractor creates an extractor with the default configuration and a
// Tesseract OCR engine.
func NewExtractor(instance pdfium.Pdfium) *Extractor {
	return NewExtractorWithConfig(instance, DefaultConfig())
}

// NewExtractorWithConfig creates an extractor with a custom configuration.
func NewExtractorWithConfig(instance pdfium.Pdfium, config Config) *Extractor {
	return &Extractor{
		instance:   instance,
		ocr:        NewTesseractEngine(),
		rasterizer: newPdfiumRasterizer(instance),
		config:     config,
		logger:     zap.NewNop(),
	}
}

// SetLogger replaces the extractor's logger. The default discards all logs.
func (e *Extractor) SetLogger(logger *zap.Logger) {
	e.logger = logger
}

// SetOCREngine replaces the OCR engine.
func (e *Extractor) SetOCREngine(engine OCREngine) {
	e.ocr = engine
}

// SetRasterizer replaces the page rasterizer.
func (e *Extractor) SetRasterizer(r Rasterizer) {
	e.rasterizer = r
}

// ExtractFile extracts all units from the quick unit reference pages of a
// PDF. Units are deduplicated by id across the whole run, first occurrence
// winning.
func (e *Extractor) ExtractFile(filePath string) ([]Unit, error) {
	doc, err := e.instance.OpenDocument(&requests.OpenDocument{
		FilePath: &filePath,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to open PDF document")
	}
	defer e.instance.FPDF_CloseDocument(&requests.FPDF_CloseDocument{
		Document: doc.Document,
	})

	pageCount, err := e.instance.FPDF_GetPageCount(&requests.FPDF_GetPageCount{
		Document: doc.Document,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get page count")
	}

	var units []Unit
	seen := make(map[string]bool)
	referencePages := 0

	for pageIndex := 0; pageIndex < pageCount.PageCount; pageIndex++ {
		pageUnits, isReference, err := e.extractPage(doc.Document, pageIndex)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to extract page %d", pageIndex)
		}
		if isReference {
			referencePages++
		}
		for _, unit := range pageUnits {
			if unit.ID == "" || seen[unit.ID] {
				continue
			}
			seen[unit.ID] = true
			units = append(units, unit)
		}
	}

	if referencePages == 0 {
		return nil, errors.New("no quick unit reference pages found")
	}

	e.logger.Info("extraction complete",
		zap.Int("referencePages", referencePages),
		zap.Int("units", len(units)))
	return units, nil
}

// extractPage extracts all cards on one page, returning whether the page was
// a reference page at all.
func (e *Extractor) extractPage(doc references.FPDF_DOCUMENT, pageIndex int) ([]Unit, bool, error) {
	loaded, err := e.instance.FPDF_LoadPage(&requests.FPDF_LoadPage{
		Document: doc,
		Index:    pageIndex,
	})
	if err != nil {
		return nil, false, errors.Wrap(err, "failed to load page")
	}
	page := loaded.Page
	defer e.instance.FPDF_ClosePage(&requests.FPDF_ClosePage{
		Page: page,
	})

	isRef, err := isReferencePage(e.instance, page)
	if err != nil {
		return nil, false, err
	}
	if !isRef {
		return nil, false, nil
	}

	pageHeight, err := e.instance.FPDF_GetPageHeightF(&requests.FPDF_GetPageHeightF{
		Page: requests.Page{
			ByReference: &page,
		},
	})
	if err != nil {
		return nil, true, errors.Wrap(err, "failed to get page height")
	}
	height := float64(pageHeight.PageHeight)

	headings, err := findHeadings(e.instance, page, height)
	if err != nil {
		return nil, true, err
	}

	cards, err := findCardRects(e.instance, page, height, e.config.MinCardWidth, e.config.MinCardHeight)
	if err != nil {
		return nil, true, err
	}
	if len(cards) == 0 {
		e.logger.Warn("no card boxes found on reference page", zap.Int("page", pageIndex))
		return nil, true, nil
	}
	e.logger.Info("processing reference page",
		zap.Int("page", pageIndex),
		zap.Int("cards", len(cards)))

	rendered, err := e.rasterizer.RenderPage(page, e.config.DPI)
	if err != nil {
		return nil, true, err
	}
	scale := float64(e.config.DPI) / 72.0

	var units []Unit
	for i, card := range cards {
		lineBoxes, err := e.extractCardLines(page, card, rendered, scale, height)
		if err != nil {
			return nil, true, errors.Wrapf(err, "failed to extract card %d", i)
		}
		if len(lineBoxes) == 0 {
			e.logger.Warn("no text in card", zap.Int("page", pageIndex), zap.Int("card", i))
			continue
		}

		unit := parseCard(lineBoxes)
		if unit == nil {
			e.logger.Warn("failed to parse card", zap.Int("page", pageIndex), zap.Int("card", i))
			continue
		}

		unit.Category, unit.Subcategory = categorize(unit.UnitClass, headingForCard(headings, card))
		e.logger.Debug("parsed card", zap.String("unit", unit.Name))
		units = append(units, *unit)
	}
	return units, true, nil
}

// extractCardLines produces the formatted text lines of one card: OCR words
// from the rendered crop become lines, and the PDF text layer contributes
// bold and italic flags via alignment.
func (e *Extractor) extractCardLines(page references.FPDF_PAGE, card Rect, rendered image.Image, scale, pageHeight float64) ([]LineBox, error) {
	crop := cropRegion(rendered, card, scale)

	words, err := e.ocr.RecognizeWords(crop)
	if err != nil {
		return nil, errors.Wrap(err, "failed to recognize card text")
	}
	words = filterWords(words, e.config.MinWordConfidence)
	ocrLines := reconstructLines(words, e.config.OCRLineTolerance)
	if len(ocrLines) == 0 {
		return nil, nil
	}

	chars, err := extractCharsInRegion(e.instance, page, card, pageHeight)
	if err != nil {
		return nil, errors.Wrap(err, "failed to extract card text layer")
	}
	pdfLines := groupCharsIntoLines(chars, e.config.PDFLineTolerance)

	return alignFormatting(ocrLines, pdfLines, e.config.MatchThreshold), nil
}

// BuildRoster extracts a PDF and wraps the units with faction metadata.
func (e *Extractor) BuildRoster(filePath string, faction Faction) (*Roster, error) {
	units, err := e.ExtractFile(filePath)
	if err != nil {
		return nil, err
	}
	return &Roster{Faction: faction, Units: units}, nil
}
