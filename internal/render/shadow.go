package render

import (
	"ProductCanvas/internal/state"

	"github.com/gogpu/gg"
)

const maxShadowBlur = 30.0

// shadowPasses is how many silhouettes approximate a blur radius.
func shadowPasses(blur float64) int {
	return 1 + int(min(max(blur, 0), maxShadowBlur)/6)
}

// drawShadow paints the layer silhouette offset by the shadow offset. Blur
// is approximated by stacking progressively larger, fainter silhouettes.
// The offset is in canvas space, independent of the layer rotation.
func (r *Renderer) drawShadow(dc *gg.Context, l *state.Layer) {
	sh := l.Shadow
	g := l.Geometry
	g.X += sh.OffsetX
	g.Y += sh.OffsetY

	if tc := l.Text(); tc != nil {
		r.drawText(dc, g, tc, gg.RGBA{A: sh.Opacity / 100})
		return
	}

	passes := shadowPasses(sh.Blur)
	col := gg.RGBA{A: sh.Opacity / 100 / float64(passes)}
	for i := range passes {
		spread := 0.0
		if passes > 1 {
			spread = min(sh.Blur, maxShadowBlur) / 2 * float64(i) / float64(passes-1)
		}
		pg := g
		pg.X -= spread
		pg.Y -= spread
		pg.Width += 2 * spread
		pg.Height += 2 * spread

		if sc := l.Shape(); sc != nil {
			drawShape(dc, pg, sc, &col)
			continue
		}
		rotated(dc, pg, func() {
			dc.DrawRectangle(pg.X, pg.Y, pg.Width, pg.Height)
			dc.SetFillBrush(gg.Solid(col))
			fill(dc)
		})
	}
}
