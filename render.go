package rygonet

import (
	"image"

	"github.com/klippa-app/go-pdfium"
	"github.com/klippa-app/go-pdfium/references"
	"github.com/klippa-app/go-pdfium/requests"
	"github.com/pkg/errors"
)

// Rasterizer renders a PDF page to an image at a given DPI.
type Rasterizer interface {
	RenderPage(page references.FPDF_PAGE, dpi int) (image.Image, error)
}

// pdfiumRasterizer renders pages through a pdfium instance.
type pdfiumRasterizer struct {
	instance pdfium.Pdfium
}

func newPdfiumRasterizer(instance pdfium.Pdfium) *pdfiumRasterizer {
	return &pdfiumRasterizer{instance: instance}
}

func (r *pdfiumRasterizer) RenderPage(page references.FPDF_PAGE, dpi int) (image.Image, error) {
	rendered, err := r.instance.RenderPageInDPI(&requests.RenderPageInDPI{
		Page: requests.Page{
			ByReference: &page,
		},
		DPI: dpi,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to render page")
	}
	return rendered.Result.Image, nil
}

// cropRegion cuts the card region out of a rendered page image. The region is
// given in PDF points; scale converts points to rendered pixels (dpi / 72).
func cropRegion(img image.Image, region Rect, scale float64) image.Image {
	bounds := img.Bounds()
	crop := image.Rect(
		clampInt(int(region.X0*scale), bounds.Min.X, bounds.Max.X),
		clampInt(int(region.Y0*scale), bounds.Min.Y, bounds.Max.Y),
		clampInt(int(region.X1*scale), bounds.Min.X, bounds.Max.X),
		clampInt(int(region.Y1*scale), bounds.Min.Y, bounds.Max.Y),
	)

	type subImager interface {
		SubImage(r image.Rectangle) image.Image
	}
	if si, ok := img.(subImager); ok {
		return si.SubImage(crop)
	}

	out := image.NewRGBA(image.Rect(0, 0, crop.Dx(), crop.Dy()))
	for y := crop.Min.Y; y < crop.Max.Y; y++ {
		for x := crop.Min.X; x < crop.Max.X; x++ {
			out.Set(x-crop.Min.X, y-crop.Min.Y, img.At(x, y))
		}
	}
	return out
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// grayscale converts an image to 8-bit grayscale before OCR.
func grayscale(img image.Image) *image.Gray {
	bounds := img.Bounds()
	gray := image.NewGray(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			gray.Set(x, y, img.At(x, y))
		}
	}
	return gray
}
