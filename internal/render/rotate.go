package render

import (
	"image"
	"math"

	"ProductCanvas/internal/geom"
	"ProductCanvas/internal/state"

	"github.com/gogpu/gg"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

// blit draws src stretched into g's box and rotated about its center. gg
// positions bitmaps and glyphs without applying rotation, so the transform
// is resolved here with an affine resample into a scratch raster covering
// the rotated bounds.
func blit(dc *gg.Context, src image.Image, g state.Geometry) {
	sb := src.Bounds()
	if sb.Empty() || g.Width <= 0 || g.Height <= 0 {
		return
	}
	minX, minY, maxX, maxY := geom.Bounds(g)
	ox, oy := math.Floor(minX), math.Floor(minY)
	dst := image.NewRGBA(image.Rect(0, 0, int(math.Ceil(maxX-ox)), int(math.Ceil(maxY-oy))))

	xdraw.BiLinear.Transform(dst, layerToCanvas(g, sb, ox, oy), src, sb, xdraw.Over, nil)

	dc.Push()
	dc.Identity()
	dc.DrawImage(gg.ImageBufFromImage(dst), ox, oy)
	dc.Pop()
}

// layerToCanvas maps source pixel coordinates onto the scratch raster whose
// origin is (ox, oy) on the canvas.
func layerToCanvas(g state.Geometry, sb image.Rectangle, ox, oy float64) f64.Aff3 {
	sx := g.Width / float64(sb.Dx())
	sy := g.Height / float64(sb.Dy())
	cx, cy := g.Center()
	sin, cos := math.Sincos(radians(g.Rotation))
	px := g.X - sx*float64(sb.Min.X) - cx
	py := g.Y - sy*float64(sb.Min.Y) - cy
	return f64.Aff3{
		cos * sx, -sin * sy, cos*px - sin*py + cx - ox,
		sin * sx, cos * sy, sin*px + cos*py + cy - oy,
	}
}
