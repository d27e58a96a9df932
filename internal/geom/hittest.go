package geom

import (
	"ProductCanvas/internal/state"

	"github.com/gogpu/gg"
)

// Target is what a pointer-down landed on.
type Target int

const (
	TargetNone Target = iota
	TargetBody
	TargetResize
	TargetRotate
)

func (t Target) String() string {
	switch t {
	case TargetBody:
		return "body"
	case TargetResize:
		return "resize"
	case TargetRotate:
		return "rotate"
	}
	return "none"
}

// Hit is the result of HitTest. Handle is only meaningful for TargetResize.
type Hit struct {
	Target  Target
	LayerID int
	Handle  Handle
}

// HandlesActive reports whether l shows transform handles when selected.
func HandlesActive(l state.Layer) bool {
	return l.Visible && !l.Locked
}

// Resizable reports whether l's resize handles are live. Text is sized by
// its glyphs, so a text layer only gets the rotation handle.
func Resizable(l state.Layer) bool {
	return HandlesActive(l) && l.Kind() != state.KindText
}

// HitHandle checks the selected layer's resize and rotation handles. They
// take priority over every layer body, including ones drawn above.
func HitHandle(l state.Layer, p gg.Point) (Hit, bool) {
	if !HandlesActive(l) {
		return Hit{}, false
	}
	local := ToLocal(l.Geometry, p)
	half := HandleHitSize / 2
	for i, h := range Handles(l.Geometry) {
		if !Resizable(l) {
			break
		}
		if local.X >= h.X-half && local.X <= h.X+half &&
			local.Y >= h.Y-half && local.Y <= h.Y+half {
			return Hit{Target: TargetResize, LayerID: l.ID, Handle: Handle(i)}, true
		}
	}
	if local.Distance(RotateHandle(l.Geometry)) <= RotateHandleRadius {
		return Hit{Target: TargetRotate, LayerID: l.ID}, true
	}
	return Hit{}, false
}

// HitTest resolves a pointer position against the scene. layers is in
// z-order (bottom first) and selectedID is zero when nothing is selected.
// Bodies are tested topmost first in each layer's unrotated frame.
func HitTest(layers []state.Layer, selectedID int, p gg.Point) Hit {
	if selectedID != 0 {
		for _, l := range layers {
			if l.ID != selectedID {
				continue
			}
			if hit, ok := HitHandle(l, p); ok {
				return hit
			}
			break
		}
	}
	for i := len(layers) - 1; i >= 0; i-- {
		l := layers[i]
		if !l.Visible {
			continue
		}
		local := ToLocal(l.Geometry, p)
		if l.Geometry.Contains(local.X, local.Y) {
			return Hit{Target: TargetBody, LayerID: l.ID}
		}
	}
	return Hit{Target: TargetNone}
}
