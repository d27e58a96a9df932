package geom

import (
	"testing"

	"ProductCanvas/internal/state"

	"github.com/gogpu/gg"
	"github.com/stretchr/testify/assert"
)

func TestResizeBottomRightKeepsPosition(t *testing.T) {
	start := state.Geometry{X: 100, Y: 150, Width: 100, Height: 100}
	got := Resize(start, HandleBottomRight, gg.Pt(50, 30), 0)
	assert.Equal(t, state.Geometry{X: 100, Y: 150, Width: 150, Height: 130}, got)
}

func TestResizeAnchorsOppositeSide(t *testing.T) {
	start := state.Geometry{X: 100, Y: 100, Width: 100, Height: 100}

	tests := []struct {
		handle Handle
		delta  gg.Point
		want   state.Geometry
	}{
		{HandleTopLeft, gg.Pt(10, 20), state.Geometry{X: 110, Y: 120, Width: 90, Height: 80}},
		{HandleTop, gg.Pt(30, -10), state.Geometry{X: 100, Y: 90, Width: 100, Height: 110}},
		{HandleTopRight, gg.Pt(10, 10), state.Geometry{X: 100, Y: 110, Width: 110, Height: 90}},
		{HandleRight, gg.Pt(-40, 99), state.Geometry{X: 100, Y: 100, Width: 60, Height: 100}},
		{HandleBottom, gg.Pt(5, 25), state.Geometry{X: 100, Y: 100, Width: 100, Height: 125}},
		{HandleBottomLeft, gg.Pt(-10, 10), state.Geometry{X: 90, Y: 100, Width: 110, Height: 110}},
		{HandleLeft, gg.Pt(50, 0), state.Geometry{X: 150, Y: 100, Width: 50, Height: 100}},
	}
	for _, tt := range tests {
		t.Run(tt.handle.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, Resize(start, tt.handle, tt.delta, 0))
		})
	}
}

func TestResizeNeverGoesBelowFloor(t *testing.T) {
	start := state.Geometry{X: 100, Y: 100, Width: 80, Height: 60}
	deltas := []gg.Point{{X: 500, Y: 500}, {X: -500, Y: -500}, {X: 79, Y: -1000}, {X: -1e6, Y: 1e6}}
	for h := HandleTopLeft; h <= HandleLeft; h++ {
		for _, d := range deltas {
			for _, aspect := range []float64{0, 80.0 / 60, 0.1, 10} {
				g := Resize(start, h, d, aspect)
				assert.GreaterOrEqual(t, g.Width, MinSize, "%s %v aspect %v", h, d, aspect)
				assert.GreaterOrEqual(t, g.Height, MinSize, "%s %v aspect %v", h, d, aspect)
			}
		}
	}
}

func TestResizeFloorKeepsFarEdgeFixed(t *testing.T) {
	start := state.Geometry{X: 100, Y: 100, Width: 100, Height: 100}
	g := Resize(start, HandleTopLeft, gg.Pt(500, 500), 0)
	assert.Equal(t, state.Geometry{X: 180, Y: 180, Width: 20, Height: 20}, g)
}

func TestResizeWithAspectLock(t *testing.T) {
	start := state.Geometry{X: 0, Y: 0, Width: 200, Height: 100}
	aspect := AspectOf(start)

	g := Resize(start, HandleBottomRight, gg.Pt(100, 0), aspect)
	assert.Equal(t, 300.0, g.Width)
	assert.Equal(t, 150.0, g.Height)

	g = Resize(start, HandleBottom, gg.Pt(0, 50), aspect)
	assert.Equal(t, 300.0, g.Width)
	assert.Equal(t, 150.0, g.Height)

	g = Resize(start, HandleTopLeft, gg.Pt(100, 0), aspect)
	assert.Equal(t, state.Geometry{X: 100, Y: 50, Width: 100, Height: 50}, g)
}

func TestWithWidthAndHeightFollowAspect(t *testing.T) {
	start := state.Geometry{Width: 120, Height: 80}
	aspect := AspectOf(start)

	g := WithWidth(start, 300, aspect)
	assert.InDelta(t, 300/aspect, g.Height, 1e-9)

	g = WithHeight(start, 40, aspect)
	assert.InDelta(t, 40*aspect, g.Width, 1e-9)

	g = WithWidth(start, 300, 0)
	assert.Equal(t, 80.0, g.Height, "unlocked width leaves height alone")
}

func TestDragIsUnclamped(t *testing.T) {
	start := state.Geometry{X: 10, Y: 10, Width: 50, Height: 50}
	g := Drag(start, gg.Pt(20, 20), gg.Pt(-100, 5))
	assert.Equal(t, -110.0, g.X)
	assert.Equal(t, -5.0, g.Y)
}

func TestRotation(t *testing.T) {
	assert.Equal(t, 0.0, NormalizeDegrees(360))
	assert.Equal(t, 350.0, NormalizeDegrees(-10))
	assert.Equal(t, 45.0, WithRotation(state.Geometry{}, 405).Rotation)

	g := state.Geometry{X: 0, Y: 0, Width: 100, Height: 100}
	assert.Equal(t, 0.0, RotateToward(g, gg.Pt(50, -100)).Rotation)
	assert.Equal(t, 90.0, RotateToward(g, gg.Pt(200, 50)).Rotation)
	assert.Equal(t, 180.0, RotateToward(g, gg.Pt(50, 200)).Rotation)
	assert.Equal(t, 270.0, RotateToward(g, gg.Pt(-100, 50)).Rotation)
}

func TestLocalDeltaUndoesRotation(t *testing.T) {
	g := state.Geometry{Width: 10, Height: 10, Rotation: 90}
	d := LocalDelta(g, gg.Pt(0, 0), gg.Pt(0, 10))
	assert.InDelta(t, 10, d.X, 1e-9)
	assert.InDelta(t, 0, d.Y, 1e-9)
}
