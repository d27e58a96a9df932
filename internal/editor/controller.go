package editor

import (
	"log"

	"ProductCanvas/internal/geom"
	"ProductCanvas/internal/state"

	"github.com/gogpu/gg"
)

// Mode is the pointer gesture in progress.
type Mode int

const (
	ModeIdle Mode = iota
	ModeDragging
	ModeResizing
	ModeRotating
)

func (m Mode) String() string {
	switch m {
	case ModeDragging:
		return "dragging"
	case ModeResizing:
		return "resizing"
	case ModeRotating:
		return "rotating"
	}
	return "idle"
}

type gesture struct {
	mode   Mode
	id     int
	handle geom.Handle
	grab   gg.Point
	start  state.Geometry
}

// Mode returns the gesture in progress.
func (e *Editor) Mode() Mode {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.gesture.mode
}

// Hover reports what a pointer-down at p would grab, for cursor feedback.
func (e *Editor) Hover(p gg.Point) geom.Hit {
	return geom.HitTest(e.scene.Layers(), e.scene.SelectedID(), p)
}

// PointerDown starts a gesture at canvas point p. Handles of the selected
// layer win over any body. A body hit selects the layer and starts a drag
// unless it is locked; a miss clears the selection.
func (e *Editor) PointerDown(p gg.Point) Mode {
	hit := geom.HitTest(e.scene.Layers(), e.scene.SelectedID(), p)

	next := gesture{mode: ModeIdle, id: hit.LayerID, handle: hit.Handle, grab: p}
	switch hit.Target {
	case geom.TargetNone:
		e.scene.Select(0)
	case geom.TargetBody:
		e.scene.Select(hit.LayerID)
		if l, ok := e.scene.Get(hit.LayerID); ok && !l.Locked {
			next.mode = ModeDragging
			next.start = l.Geometry
		}
	case geom.TargetResize, geom.TargetRotate:
		if l, ok := e.scene.Get(hit.LayerID); ok {
			next.mode = ModeResizing
			if hit.Target == geom.TargetRotate {
				next.mode = ModeRotating
			}
			next.start = l.Geometry
		}
	}

	e.mu.Lock()
	e.gesture = next
	e.mu.Unlock()
	return next.mode
}

// PointerMove updates the layer under the gesture. Nothing is committed
// mid-gesture.
func (e *Editor) PointerMove(p gg.Point) bool {
	e.mu.Lock()
	gs := e.gesture
	e.mu.Unlock()

	var g state.Geometry
	switch gs.mode {
	case ModeDragging:
		g = geom.Drag(gs.start, gs.grab, p)
	case ModeResizing:
		delta := geom.LocalDelta(gs.start, gs.grab, p)
		g = geom.Resize(gs.start, gs.handle, delta, e.lockedAspect())
	case ModeRotating:
		g = geom.RotateToward(gs.start, p)
	default:
		return false
	}
	return e.scene.Update(gs.id, func(l *state.Layer) { l.Geometry = g })
}

// PointerUp ends the gesture, committing history when it changed the
// layer. It reports whether a commit happened.
func (e *Editor) PointerUp(p gg.Point) bool {
	e.PointerMove(p)
	gs := e.endGesture()
	if gs.mode == ModeIdle {
		return false
	}
	l, ok := e.scene.Get(gs.id)
	if !ok || l.Geometry == gs.start {
		return false
	}
	log.Printf("[EDITOR] %s layer %d finished", gs.mode, gs.id)
	e.commit()
	return true
}

// PointerLeave cancels the gesture: the layer returns to where it started
// and nothing is committed.
func (e *Editor) PointerLeave() {
	gs := e.endGesture()
	if gs.mode == ModeIdle {
		return
	}
	e.scene.Update(gs.id, func(l *state.Layer) { l.Geometry = gs.start })
}

func (e *Editor) endGesture() gesture {
	e.mu.Lock()
	defer e.mu.Unlock()
	gs := e.gesture
	e.gesture = gesture{}
	return gs
}
