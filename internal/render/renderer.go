// Package render composites a scene onto a gg drawing context: background,
// every visible layer bottom to top, then the selection chrome of the live
// canvas.
package render

import (
	"fmt"
	"image"
	"io"
	"log"
	"math"

	"ProductCanvas/internal/state"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/cache"
)

// Renderer draws scenes. It is safe for use from one goroutine at a time
// per context; the image buffer cache is shared.
type Renderer struct {
	fonts *Fonts
	bufs  *cache.ShardedCache[string, *gg.ImageBuf]
}

func NewRenderer(fonts *Fonts) *Renderer {
	return &Renderer{
		fonts: fonts,
		bufs:  cache.NewSharded[string, *gg.ImageBuf](4, cache.StringHasher),
	}
}

func (r *Renderer) Fonts() *Fonts {
	return r.fonts
}

// Draw repaints the whole context from s. Text layers have their extent
// refreshed from the font metrics first. chrome adds the selection box and
// handles of the selected layer.
func (r *Renderer) Draw(dc *gg.Context, s *state.Scene, chrome bool) {
	s.FitText(r.fonts.Measure)

	r.drawBackground(dc, s.Background(), float64(dc.Width()), float64(dc.Height()))
	layers := s.Layers()
	for i := range layers {
		if !layers[i].Visible {
			continue
		}
		r.drawLayer(dc, &layers[i])
	}

	if !chrome {
		return
	}
	if sel, ok := s.Selected(); ok && sel.Visible {
		drawChrome(dc, sel)
	}
}

// Render draws s into a new width x height raster.
func (r *Renderer) Render(s *state.Scene, width, height int, chrome bool) image.Image {
	dc := gg.NewContext(width, height)
	defer dc.Close()
	r.Draw(dc, s, chrome)
	return dc.Image()
}

// ExportPNG writes the final composite of s as PNG. Selection chrome is
// never part of it.
func (r *Renderer) ExportPNG(w io.Writer, s *state.Scene, width, height int) error {
	dc := gg.NewContext(width, height)
	defer dc.Close()
	r.Draw(dc, s, false)
	if err := dc.EncodePNG(w); err != nil {
		return fmt.Errorf("encoding png: %w", err)
	}
	log.Printf("[RENDER] Exported %dx%d PNG with %d layers", width, height, s.Len())
	return nil
}

func (r *Renderer) drawLayer(dc *gg.Context, l *state.Layer) {
	if l.Shadow.Enabled && l.Shadow.Opacity > 0 {
		r.drawShadow(dc, l)
	}
	switch c := l.Content.(type) {
	case *state.ImageContent:
		r.drawImage(dc, l.Geometry, c)
	case *state.TextContent:
		r.drawText(dc, l.Geometry, c, gg.Hex(c.Color))
	case *state.ShapeContent:
		drawShape(dc, l.Geometry, c, nil)
	}
}

func (r *Renderer) imageBuf(source string, img image.Image) *gg.ImageBuf {
	if source == "" {
		return gg.ImageBufFromImage(img)
	}
	return r.bufs.GetOrCreate(source, func() *gg.ImageBuf {
		return gg.ImageBufFromImage(img)
	})
}

func (r *Renderer) drawImage(dc *gg.Context, g state.Geometry, c *state.ImageContent) {
	if c.Bitmap == nil {
		return
	}
	if g.Rotation != 0 {
		blit(dc, c.Bitmap, g)
		return
	}
	dc.DrawImageEx(r.imageBuf(c.Source, c.Bitmap), gg.DrawImageOptions{
		X:         g.X,
		Y:         g.Y,
		DstWidth:  g.Width,
		DstHeight: g.Height,
	})
}

// drawText places the top of the line box at g.Y; the baseline sits one
// ascent below it.
func (r *Renderer) drawText(dc *gg.Context, g state.Geometry, tc *state.TextContent, col gg.RGBA) {
	if tc.Text == "" {
		return
	}
	face := r.fonts.Face(tc)
	ascent := face.Metrics().Ascent
	if g.Rotation == 0 {
		dc.SetFont(face)
		dc.SetFillBrush(gg.Solid(col))
		dc.DrawString(tc.Text, g.X, g.Y+ascent)
		return
	}

	w, h := int(math.Ceil(g.Width)), int(math.Ceil(g.Height))
	if w <= 0 || h <= 0 {
		return
	}
	off := gg.NewContext(w, h)
	defer off.Close()
	off.SetFont(face)
	off.SetFillBrush(gg.Solid(col))
	off.DrawString(tc.Text, 0, ascent)
	g.Width, g.Height = float64(w), float64(h)
	blit(dc, off.Image(), g)
}

func (r *Renderer) drawBackground(dc *gg.Context, b state.Background, w, h float64) {
	switch b.Kind {
	case state.BackgroundGradient:
		dc.ClearWithColor(gg.White)
		dc.SetFillBrush(gg.NewLinearGradientBrush(0, 0, 0, h).
			AddColorStop(0, gg.Hex(b.Color)).
			AddColorStop(1, gg.Hex(b.Color2)))
		dc.DrawRectangle(0, 0, w, h)
		fill(dc)
		return
	case state.BackgroundImage:
		if b.Bitmap != nil {
			dc.ClearWithColor(gg.White)
			ib := b.Bitmap.Bounds()
			iw, ih := float64(ib.Dx()), float64(ib.Dy())
			scale := max(w/iw, h/ih)
			dw, dh := iw*scale, ih*scale
			dc.DrawImageEx(r.imageBuf(b.Source, b.Bitmap), gg.DrawImageOptions{
				X:         (w - dw) / 2,
				Y:         (h - dh) / 2,
				DstWidth:  dw,
				DstHeight: dh,
			})
			return
		}
	}
	col := gg.White
	if b.Color != "" {
		col = gg.Hex(b.Color)
	}
	dc.ClearWithColor(col)
}

func fill(dc *gg.Context) {
	if err := dc.Fill(); err != nil {
		log.Printf("[RENDER] Fill failed: %v", err)
	}
}

func stroke(dc *gg.Context) {
	if err := dc.Stroke(); err != nil {
		log.Printf("[RENDER] Stroke failed: %v", err)
	}
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// rotated runs fn with the context rotated about g's center.
func rotated(dc *gg.Context, g state.Geometry, fn func()) {
	dc.Push()
	defer dc.Pop()
	if g.Rotation != 0 {
		cx, cy := g.Center()
		dc.RotateAbout(radians(g.Rotation), cx, cy)
	}
	fn()
}
