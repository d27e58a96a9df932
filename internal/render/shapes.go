package render

import (
	"math"

	"ProductCanvas/internal/state"

	"github.com/gogpu/gg"
)

const (
	starInnerRatio = 0.5
	minLineWidth   = 4.0
)

// drawShape fills (and optionally strokes) the shape inside g. A non-nil
// override paints the whole silhouette in that color with no stroke; the
// shadow passes use it.
func drawShape(dc *gg.Context, g state.Geometry, c *state.ShapeContent, override *gg.RGBA) {
	fillCol := gg.Hex(c.Fill)
	if override != nil {
		fillCol = *override
	}

	rotated(dc, g, func() {
		switch c.Shape {
		case state.ShapeLine, state.ShapeArrow:
			drawLine(dc, g, c, fillCol)
			return
		case state.ShapeCircle:
			cx, cy := g.Center()
			dc.DrawEllipse(cx, cy, g.Width/2, g.Height/2)
		case state.ShapeStar:
			starPath(dc, g, c.StarPoints)
		case state.ShapeTriangle:
			cx, _ := g.Center()
			dc.MoveTo(cx, g.Y)
			dc.LineTo(g.X+g.Width, g.Y+g.Height)
			dc.LineTo(g.X, g.Y+g.Height)
			dc.ClosePath()
		default:
			dc.DrawRectangle(g.X, g.Y, g.Width, g.Height)
		}
		dc.SetFillBrush(gg.Solid(fillCol))
		if override != nil || c.StrokeWidth <= 0 {
			fill(dc)
			return
		}
		if err := dc.FillPreserve(); err != nil {
			fill(dc)
			return
		}
		dc.SetStrokeBrush(gg.Solid(gg.Hex(c.Stroke)))
		dc.SetLineWidth(c.StrokeWidth)
		stroke(dc)
	})
}

// starPath alternates outer and inner vertices, first point straight up.
func starPath(dc *gg.Context, g state.Geometry, points int) {
	if points < 2 {
		points = state.DefaultStarPoints
	}
	cx, cy := g.Center()
	rx, ry := g.Width/2, g.Height/2
	n := points * 2
	for i := range n {
		f := 1.0
		if i%2 == 1 {
			f = starInnerRatio
		}
		a := -math.Pi/2 + float64(i)*math.Pi/float64(points)
		x, y := cx+math.Cos(a)*rx*f, cy+math.Sin(a)*ry*f
		if i == 0 {
			dc.MoveTo(x, y)
		} else {
			dc.LineTo(x, y)
		}
	}
	dc.ClosePath()
}

// drawLine strokes the horizontal center line of the box in the fill color.
// Arrows end in a filled head occupying the right end of the box.
func drawLine(dc *gg.Context, g state.Geometry, c *state.ShapeContent, col gg.RGBA) {
	_, cy := g.Center()
	end := g.X + g.Width
	head := 0.0
	if c.Shape == state.ShapeArrow {
		head = min(g.Width/3, g.Height)
	}

	dc.SetStrokeBrush(gg.Solid(col))
	dc.SetLineWidth(max(c.StrokeWidth, minLineWidth))
	dc.DrawLine(g.X, cy, end-head, cy)
	stroke(dc)

	if head == 0 {
		return
	}
	dc.MoveTo(end-head, g.Y)
	dc.LineTo(end, cy)
	dc.LineTo(end-head, g.Y+g.Height)
	dc.ClosePath()
	dc.SetFillBrush(gg.Solid(col))
	fill(dc)
}
