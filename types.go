package rygonet

// Rect represents a bounding box in PDF coordinates.
type Rect struct {
	X0 float64 // Left
	Y0 float64 // Top (after conversion from PDF coordinates)
	X1 float64 // Right
	Y1 float64 // Bottom (after conversion from PDF coordinates)
}

// Width returns the width of the rectangle.
func (r Rect) Width() float64 {
	return r.X1 - r.X0
}

// Height returns the height of the rectangle.
func (r Rect) Height() float64 {
	return r.Y1 - r.Y0
}

// CenterY returns the vertical center of the rectangle.
func (r Rect) CenterY() float64 {
	return (r.Y0 + r.Y1) / 2
}

// Contains reports whether the point (x, y) lies inside the rectangle.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X0 && x <= r.X1 && y >= r.Y0 && y <= r.Y1
}

// horizontalOverlap returns the width of the horizontal intersection of two
// rectangles, negative when they do not overlap.
func horizontalOverlap(a, b Rect) float64 {
	return min(a.X1, b.X1) - max(a.X0, b.X0)
}

// WordBox is a single OCR word with its bounding box and the engine's
// confidence score (0-100). Word boxes are ephemeral: produced per OCR call
// and consumed immediately by line reconstruction.
type WordBox struct {
	Text       string
	Box        Rect
	Confidence float64
}

// CenterY returns the vertical center of the word.
func (w WordBox) CenterY() float64 {
	return w.Box.CenterY()
}

// CharBox is a single PDF-native character with its position and font face.
type CharBox struct {
	Text     rune
	Box      Rect
	FontName string
}

// LineBox is a line of text with formatting flags. Lines produced by the
// aligner carry OCR text with PDF-derived formatting.
type LineBox struct {
	Text   string
	Bold   bool
	Italic bool
}

// Heading is a section heading candidate found on a reference page.
type Heading struct {
	Text string
	Box  Rect
}

// CardRegion is one rectangular card area on a reference page, together with
// the heading text that applies to it. Regions are created by the card
// locator, consumed once by extraction and then discarded.
type CardRegion struct {
	PageIndex int
	Box       Rect
	Heading   string
}
