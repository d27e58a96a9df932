package state

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func move(s *Scene, id int, x, y float64) {
	s.Update(id, func(l *Layer) {
		l.Geometry.X = x
		l.Geometry.Y = y
	})
}

func TestUndoRedoRestoresEveryState(t *testing.T) {
	s := NewScene()
	h := NewHistory(0)
	h.Commit(s)

	a := s.AddLayer(NewShapeLayer(ShapeRectangle, ""))
	h.Commit(s)
	move(s, a.ID, 300, 310)
	h.Commit(s)
	s.AddLayer(NewShapeLayer(ShapeStar, ""))
	h.Commit(s)
	final := s.Layers()

	const edits = 3
	for i := 0; i < edits; i++ {
		snap, ok := h.Undo()
		require.True(t, ok)
		s.Replace(snap.Layers)
	}
	assert.Zero(t, s.Len())
	_, ok := h.Undo()
	assert.False(t, ok, "undo at the oldest entry is a no-op")

	for i := 0; i < edits; i++ {
		snap, ok := h.Redo()
		require.True(t, ok)
		s.Replace(snap.Layers)
	}
	assert.Equal(t, final, s.Layers())
	_, ok = h.Redo()
	assert.False(t, ok, "redo at the newest entry is a no-op")
}

func TestCommitAfterUndoDropsRedoBranch(t *testing.T) {
	s := NewScene()
	h := NewHistory(0)
	h.Commit(s)
	a := s.AddLayer(NewShapeLayer(ShapeRectangle, ""))
	h.Commit(s)
	move(s, a.ID, 10, 10)
	h.Commit(s)

	snap, ok := h.Undo()
	require.True(t, ok)
	s.Replace(snap.Layers)
	move(s, a.ID, 50, 50)
	h.Commit(s)

	assert.False(t, h.CanRedo())
	_, ok = h.Redo()
	assert.False(t, ok)
	got, _ := s.Get(a.ID)
	assert.Equal(t, 50.0, got.Geometry.X)
}

func TestUnsettledStepDoesNotMoveCommitPoint(t *testing.T) {
	s := NewScene()
	h := NewHistory(0)
	h.Commit(s)
	a := s.AddLayer(NewShapeLayer(ShapeRectangle, ""))
	h.Commit(s)
	move(s, a.ID, 300, 300)
	h.Commit(s)

	_, target, ok := h.StepBack()
	require.True(t, ok)
	assert.Equal(t, 1, target)
	assert.True(t, h.CanRedo())

	// The scene still shows the newest entry, so the commit keeps it.
	move(s, a.ID, 700, 700)
	h.Commit(s)
	assert.Equal(t, 4, h.Len())
	assert.False(t, h.CanRedo())

	snap, ok := h.Undo()
	require.True(t, ok)
	assert.Equal(t, 300.0, snap.Layers[0].Geometry.X)
}

func TestCancelReturnsCursorToShownEntry(t *testing.T) {
	s := NewScene()
	h := NewHistory(0)
	h.Commit(s)
	s.AddLayer(NewShapeLayer(ShapeRectangle, ""))
	h.Commit(s)

	_, _, ok := h.StepBack()
	require.True(t, ok)
	assert.False(t, h.CanUndo())
	h.Cancel()
	assert.True(t, h.CanUndo())
	assert.False(t, h.CanRedo())

	_, target, ok := h.StepBack()
	require.True(t, ok)
	h.Settle(target)
	assert.False(t, h.CanUndo())
	assert.True(t, h.CanRedo())
}

func TestHistoryLimitAgesOutOldest(t *testing.T) {
	s := NewScene()
	h := NewHistory(3)
	a := s.AddLayer(NewShapeLayer(ShapeRectangle, ""))
	for i := 0; i < 5; i++ {
		move(s, a.ID, float64(i), 0)
		h.Commit(s)
	}
	assert.Equal(t, 3, h.Len())

	var xs []float64
	for {
		snap, ok := h.Undo()
		if !ok {
			break
		}
		xs = append(xs, snap.Layers[0].Geometry.X)
	}
	assert.Equal(t, []float64{3, 2}, xs)
}

func TestSnapshotsDropBitmapsButKeepSources(t *testing.T) {
	s := NewScene()
	h := NewHistory(0)
	bmp := image.NewRGBA(image.Rect(0, 0, 4, 4))
	s.AddLayer(NewImageLayer("data:image/png;base64,AAAA", bmp, 200))
	h.Commit(s)
	s.AddLayer(NewShapeLayer(ShapeCircle, ""))
	h.Commit(s)

	snap, ok := h.Undo()
	require.True(t, ok)
	require.Len(t, snap.Layers, 1)
	assert.Nil(t, snap.Layers[0].Image().Bitmap)
	assert.Equal(t, []string{"data:image/png;base64,AAAA"}, snap.Sources())

	live, _ := s.Get(1)
	assert.NotNil(t, live.Image().Bitmap, "capturing must not touch the live layer")
}

func TestCopyPasteMakesFreshOffsetLayer(t *testing.T) {
	s := NewScene()
	h := NewHistory(0)
	h.Commit(s)
	s.AddLayer(NewShapeLayer(ShapeRectangle, ""))
	src := s.AddLayer(NewShapeLayer(ShapeTriangle, "#00ff00"))
	h.Commit(s)

	require.True(t, h.Copy(s, src.ID))
	first, ok := h.Paste(s)
	require.True(t, ok)
	second, ok := h.Paste(s)
	require.True(t, ok)

	assert.NotEqual(t, src.ID, first.ID)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, src.Geometry.X+20, first.Geometry.X)
	assert.Equal(t, src.Geometry.Y+20, first.Geometry.Y)
	assert.Equal(t, src.Geometry.Width, first.Geometry.Width)
	assert.Equal(t, src.Shape(), first.Shape())
	assert.Equal(t, src.Shadow, first.Shadow)
	assert.Equal(t, src.Name+" (copy)", first.Name)
	assert.Equal(t, 4, s.Len())
	assert.Equal(t, second.ID, s.SelectedID())
	assert.True(t, h.CanUndo())
}

func TestPasteWithEmptyClipboardIsNoop(t *testing.T) {
	s := NewScene()
	h := NewHistory(0)
	h.Commit(s)
	_, ok := h.Paste(s)
	assert.False(t, ok)
	assert.Equal(t, 1, h.Len())
	assert.False(t, h.Copy(s, 5))
	assert.False(t, h.HasClipboard())
}
