package rygonet

import (
	"bytes"
	"image"
	"image/png"

	"github.com/otiai10/gosseract/v2"
	"github.com/pkg/errors"
)

// OCREngine recognizes words with positions and confidence in a card image.
type OCREngine interface {
	RecognizeWords(img image.Image) ([]WordBox, error)
}

// TesseractEngine implements OCREngine using the gosseract client. Each call
// uses a fresh client; card crops are small, so client setup is not the
// dominant cost.
type TesseractEngine struct {
	clientFactory func() *gosseract.Client
}

// NewTesseractEngine constructs a Tesseract-backed OCR engine.
func NewTesseractEngine() *TesseractEngine {
	return &TesseractEngine{clientFactory: gosseract.NewClient}
}

// RecognizeWords runs OCR in single-block mode on the grayscaled image and
// returns every recognized word with its pixel bounding box and confidence.
func (e *TesseractEngine) RecognizeWords(img image.Image) ([]WordBox, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, grayscale(img)); err != nil {
		return nil, errors.Wrap(err, "failed to encode image")
	}

	client := e.clientFactory()
	defer client.Close()

	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return nil, errors.Wrap(err, "failed to set image")
	}
	// Cards are a single uniform block of text.
	if err := client.SetPageSegMode(gosseract.PSM_SINGLE_BLOCK); err != nil {
		return nil, errors.Wrap(err, "failed to set page segmentation mode")
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get bounding boxes")
	}

	words := make([]WordBox, 0, len(boxes))
	for _, b := range boxes {
		words = append(words, WordBox{
			Text: b.Word,
			Box: Rect{
				X0: float64(b.Box.Min.X),
				Y0: float64(b.Box.Min.Y),
				X1: float64(b.Box.Max.X),
				Y1: float64(b.Box.Max.Y),
			},
			Confidence: b.Confidence,
		})
	}
	return words, nil
}

// filterWords drops low-confidence words and applies word-level OCR fixes.
// Words below minConfidence are usually border fragments and dot leaders.
func filterWords(words []WordBox, minConfidence float64) []WordBox {
	filtered := make([]WordBox, 0, len(words))
	for _, w := range words {
		if w.Confidence < minConfidence {
			continue
		}
		w.Text = fixWordText(w.Text)
		if w.Text == "" {
			continue
		}
		filtered = append(filtered, w)
	}
	return filtered
}
