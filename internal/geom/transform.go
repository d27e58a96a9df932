package geom

import (
	"math"

	"ProductCanvas/internal/state"

	"github.com/gogpu/gg"
)

// Drag translates start by the pointer travel since the grab. No clamping:
// layers may be placed partly or wholly off the canvas.
func Drag(start state.Geometry, grab, p gg.Point) state.Geometry {
	g := start
	g.X += p.X - grab.X
	g.Y += p.Y - grab.Y
	return g
}

// Resize moves the grabbed handle by delta, given in the layer's unrotated
// frame, keeping the opposite edge or corner fixed. Both sides are floored
// at MinSize. A positive aspect (width/height) locks the ratio: horizontal
// motion drives height, except the top and bottom handles which drive width.
func Resize(start state.Geometry, h Handle, delta gg.Point, aspect float64) state.Geometry {
	right, bottom := start.X+start.Width, start.Y+start.Height
	w, ht := start.Width, start.Height
	switch {
	case h.movesLeft():
		w -= delta.X
	case h.movesRight():
		w += delta.X
	}
	switch {
	case h.movesTop():
		ht -= delta.Y
	case h.movesBottom():
		ht += delta.Y
	}
	w, ht = math.Max(w, MinSize), math.Max(ht, MinSize)

	if aspect > 0 {
		if h == HandleTop || h == HandleBottom {
			w = ht * aspect
		} else {
			ht = w / aspect
		}
		w, ht = floorKeepingRatio(w, ht, aspect)
	}

	g := start
	g.Width, g.Height = w, ht
	if h.movesLeft() {
		g.X = right - w
	}
	if h.movesTop() {
		g.Y = bottom - ht
	}
	return g
}

func floorKeepingRatio(w, h, aspect float64) (float64, float64) {
	if w < MinSize {
		w, h = MinSize, MinSize/aspect
	}
	if h < MinSize {
		w, h = MinSize*aspect, MinSize
	}
	return w, h
}

// WithWidth sets the width directly, as a property field would. With a
// positive aspect the height follows.
func WithWidth(g state.Geometry, w, aspect float64) state.Geometry {
	g.Width = math.Max(w, MinSize)
	if aspect > 0 {
		g.Height = g.Width / aspect
		g.Width, g.Height = floorKeepingRatio(g.Width, g.Height, aspect)
	}
	return g
}

// WithHeight is the vertical counterpart of WithWidth.
func WithHeight(g state.Geometry, h, aspect float64) state.Geometry {
	g.Height = math.Max(h, MinSize)
	if aspect > 0 {
		g.Width = g.Height * aspect
		g.Width, g.Height = floorKeepingRatio(g.Width, g.Height, aspect)
	}
	return g
}

// AspectOf returns width/height, or zero for a degenerate box.
func AspectOf(g state.Geometry) float64 {
	if g.Height <= 0 || g.Width <= 0 {
		return 0
	}
	return g.Width / g.Height
}

// NormalizeDegrees folds any angle into [0, 360).
func NormalizeDegrees(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}

// WithRotation sets the rotation from a slider value.
func WithRotation(g state.Geometry, deg float64) state.Geometry {
	g.Rotation = NormalizeDegrees(deg)
	return g
}

// RotateToward points the layer's top at p: a pointer straight above the
// center yields 0 degrees.
func RotateToward(start state.Geometry, p gg.Point) state.Geometry {
	cx, cy := start.Center()
	deg := math.Atan2(p.Y-cy, p.X-cx)*180/math.Pi + 90
	return WithRotation(start, math.Round(deg))
}

// LocalDelta converts pointer travel on the canvas into the layer's
// unrotated frame.
func LocalDelta(g state.Geometry, from, to gg.Point) gg.Point {
	d := to.Sub(from)
	if g.Rotation == 0 {
		return d
	}
	return d.Rotate(-radians(g.Rotation))
}
