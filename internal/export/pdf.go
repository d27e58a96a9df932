// Package export writes the composited canvas to document formats.
package export

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"log"

	"github.com/jung-kurt/gofpdf"
)

// pxToMM converts canvas pixels to millimetres at 96 dpi.
const pxToMM = 25.4 / 96

// ExportPDF writes img onto a single page sized to the canvas.
func ExportPDF(path string, img image.Image) error {
	p, err := buildPDF(img)
	if err != nil {
		return err
	}
	if err := p.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("writing pdf %s: %w", path, err)
	}
	log.Printf("[RENDER] Exported PDF to %s", path)
	return nil
}

func buildPDF(img image.Image) (*gofpdf.Fpdf, error) {
	b := img.Bounds()
	w, h := float64(b.Dx())*pxToMM, float64(b.Dy())*pxToMM

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding canvas: %w", err)
	}

	p := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           gofpdf.SizeType{Wd: w, Ht: h},
	})
	p.SetMargins(0, 0, 0)
	p.SetAutoPageBreak(false, 0)
	p.AddPage()

	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	p.RegisterImageOptionsReader("canvas", opts, &buf)
	p.ImageOptions("canvas", 0, 0, w, h, false, opts, 0, "")
	if err := p.Error(); err != nil {
		return nil, fmt.Errorf("building pdf: %w", err)
	}
	return p, nil
}
