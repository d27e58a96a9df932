// Package geom holds the hit-testing and transform math of the editor:
// handle placement, pointer-to-layer resolution, drag, resize and rotate.
package geom

import (
	"math"

	"ProductCanvas/internal/state"

	"github.com/gogpu/gg"
)

// Handle identifies one of the eight resize handles, in drawing order
// clockwise from the top-left corner.
type Handle int

const (
	HandleTopLeft Handle = iota
	HandleTop
	HandleTopRight
	HandleRight
	HandleBottomRight
	HandleBottom
	HandleBottomLeft
	HandleLeft
)

const (
	// HandleHitSize is the side of the square hit zone around a handle.
	HandleHitSize = 12.0
	// HandleDrawSize is the side of the square drawn for a handle.
	HandleDrawSize = 8.0
	// RotateHandleDistance is how far above the top edge the rotation
	// handle sits.
	RotateHandleDistance = 25.0
	RotateHandleRadius   = 8.0
	// MinSize is the smallest width or height a resize can produce.
	MinSize = 20.0
)

func (h Handle) String() string {
	return [...]string{"top-left", "top", "top-right", "right",
		"bottom-right", "bottom", "bottom-left", "left"}[h]
}

func (h Handle) movesLeft() bool {
	return h == HandleTopLeft || h == HandleLeft || h == HandleBottomLeft
}

func (h Handle) movesRight() bool {
	return h == HandleTopRight || h == HandleRight || h == HandleBottomRight
}

func (h Handle) movesTop() bool {
	return h == HandleTopLeft || h == HandleTop || h == HandleTopRight
}

func (h Handle) movesBottom() bool {
	return h == HandleBottomLeft || h == HandleBottom || h == HandleBottomRight
}

// Handles returns the eight handle centers in the layer's unrotated frame.
func Handles(g state.Geometry) [8]gg.Point {
	l, t := g.X, g.Y
	r, b := g.X+g.Width, g.Y+g.Height
	cx, cy := g.Center()
	return [8]gg.Point{
		gg.Pt(l, t), gg.Pt(cx, t), gg.Pt(r, t), gg.Pt(r, cy),
		gg.Pt(r, b), gg.Pt(cx, b), gg.Pt(l, b), gg.Pt(l, cy),
	}
}

// RotateHandle returns the rotation handle center in the unrotated frame.
func RotateHandle(g state.Geometry) gg.Point {
	cx, _ := g.Center()
	return gg.Pt(cx, g.Y-RotateHandleDistance)
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// ToLocal maps a canvas point into the layer's unrotated frame.
func ToLocal(g state.Geometry, p gg.Point) gg.Point {
	if g.Rotation == 0 {
		return p
	}
	c := gg.Pt(g.Center())
	return p.Sub(c).Rotate(-radians(g.Rotation)).Add(c)
}

// ToCanvas maps a point in the layer's unrotated frame onto the canvas.
func ToCanvas(g state.Geometry, p gg.Point) gg.Point {
	if g.Rotation == 0 {
		return p
	}
	c := gg.Pt(g.Center())
	return p.Sub(c).Rotate(radians(g.Rotation)).Add(c)
}

// Corners returns the rotated box corners on the canvas, clockwise from
// the top-left.
func Corners(g state.Geometry) [4]gg.Point {
	h := Handles(g)
	return [4]gg.Point{
		ToCanvas(g, h[HandleTopLeft]),
		ToCanvas(g, h[HandleTopRight]),
		ToCanvas(g, h[HandleBottomRight]),
		ToCanvas(g, h[HandleBottomLeft]),
	}
}

// Bounds returns the axis-aligned box enclosing the rotated layer.
func Bounds(g state.Geometry) (minX, minY, maxX, maxY float64) {
	c := Corners(g)
	minX, minY = c[0].X, c[0].Y
	maxX, maxY = minX, minY
	for _, p := range c[1:] {
		minX, maxX = min(minX, p.X), max(maxX, p.X)
		minY, maxY = min(minY, p.Y), max(maxY, p.Y)
	}
	return minX, minY, maxX, maxY
}
