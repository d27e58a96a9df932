package render

import (
	"ProductCanvas/internal/geom"
	"ProductCanvas/internal/state"

	"github.com/gogpu/gg"
)

var (
	chromeColor  = gg.Hex("#3b82f6")
	handleFill   = gg.White
	chromeStroke = 1.5
)

// drawChrome outlines the selected layer. Handles are only drawn when they
// can be grabbed, so a locked layer shows the outline alone.
func drawChrome(dc *gg.Context, l state.Layer) {
	g := l.Geometry
	active := geom.HandlesActive(l)

	rotated(dc, g, func() {
		dc.SetStrokeBrush(gg.Solid(chromeColor))
		dc.SetLineWidth(chromeStroke)
		dc.DrawRectangle(g.X, g.Y, g.Width, g.Height)
		stroke(dc)
		if !active {
			return
		}

		top := geom.Handles(g)[geom.HandleTop]
		rh := geom.RotateHandle(g)
		dc.DrawLine(top.X, top.Y, rh.X, rh.Y)
		stroke(dc)

		half := geom.HandleDrawSize / 2
		for _, p := range geom.Handles(g) {
			if !geom.Resizable(l) {
				break
			}
			dc.DrawRectangle(p.X-half, p.Y-half, geom.HandleDrawSize, geom.HandleDrawSize)
			handle(dc)
		}
		dc.DrawCircle(rh.X, rh.Y, geom.RotateHandleRadius-2)
		handle(dc)
	})
}

func handle(dc *gg.Context) {
	dc.SetFillBrush(gg.Solid(handleFill))
	if err := dc.FillPreserve(); err != nil {
		fill(dc)
		return
	}
	dc.SetStrokeBrush(gg.Solid(chromeColor))
	stroke(dc)
}
