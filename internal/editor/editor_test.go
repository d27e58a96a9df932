package editor

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"sync/atomic"
	"testing"

	"ProductCanvas/internal/imaging"
	"ProductCanvas/internal/state"

	"github.com/gogpu/gg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngFile(t *testing.T, name string, w, h int) imaging.File {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < w*h; i++ {
		img.Set(i%w, i/w, color.NRGBA{R: 20, G: 120, B: 220, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return imaging.File{Name: name, Data: buf.Bytes()}
}

func geometryOf(t *testing.T, e *Editor, id int) state.Geometry {
	t.Helper()
	l, ok := e.Scene().Get(id)
	require.True(t, ok)
	return l.Geometry
}

func TestResizeFromBottomRightHandle(t *testing.T) {
	e := New()
	l := e.AddShape(state.ShapeRectangle, "")
	require.Equal(t, state.Geometry{X: 100, Y: 150, Width: 100, Height: 100}, l.Geometry)

	assert.Equal(t, ModeResizing, e.PointerDown(gg.Pt(200, 250)))
	e.PointerMove(gg.Pt(250, 280))
	assert.True(t, e.PointerUp(gg.Pt(250, 280)))

	assert.Equal(t, state.Geometry{X: 100, Y: 150, Width: 150, Height: 130}, geometryOf(t, e, l.ID))
	assert.Equal(t, ModeIdle, e.Mode())
}

func TestCopyPastePlacesOffsetCopyOnTop(t *testing.T) {
	e := New()
	e.AddShape(state.ShapeCircle, "#ff0000")
	l2 := e.AddShape(state.ShapeStar, "#00ff00")

	require.True(t, e.Copy(l2.ID))
	pasted, ok := e.Paste()
	require.True(t, ok)

	layers := e.Scene().Layers()
	require.Len(t, layers, 3)
	top := layers[2]
	assert.Equal(t, pasted.ID, top.ID)
	assert.NotEqual(t, l2.ID, top.ID)
	assert.Equal(t, l2.Geometry.X+20, top.Geometry.X)
	assert.Equal(t, l2.Geometry.Y+20, top.Geometry.Y)
	assert.Equal(t, l2.Shape(), top.Shape())
	assert.Equal(t, top.ID, e.Scene().SelectedID())
}

func TestPasteWithEmptyClipboard(t *testing.T) {
	e := New()
	_, ok := e.Paste()
	assert.False(t, ok)
	assert.Equal(t, 0, e.Scene().Len())
}

func TestDragThenUndoRedoWithShortcuts(t *testing.T) {
	ctx := context.Background()
	e := New()
	l := e.AddShape(state.ShapeRectangle, "")
	entries := e.History().Len()

	assert.Equal(t, ModeDragging, e.PointerDown(gg.Pt(150, 200)))
	e.PointerMove(gg.Pt(155, 205))
	e.PointerMove(gg.Pt(160, 210))
	assert.Equal(t, entries, e.History().Len(), "no commit mid-drag")
	require.True(t, e.PointerUp(gg.Pt(160, 210)))
	assert.Equal(t, entries+1, e.History().Len())

	handled, err := e.HandleKey(ctx, Key{Name: KeyZ, Ctrl: true}, false)
	require.NoError(t, err)
	require.True(t, handled)
	g := geometryOf(t, e, l.ID)
	assert.Equal(t, 100.0, g.X)
	assert.Equal(t, 150.0, g.Y)

	handled, err = e.HandleKey(ctx, Key{Name: KeyY, Ctrl: true}, false)
	require.NoError(t, err)
	require.True(t, handled)
	g = geometryOf(t, e, l.ID)
	assert.Equal(t, 110.0, g.X)
	assert.Equal(t, 160.0, g.Y)

	_, err = e.HandleKey(ctx, Key{Name: KeyZ, Ctrl: true}, false)
	require.NoError(t, err)
	_, err = e.HandleKey(ctx, Key{Name: KeyZ, Ctrl: true, Shift: true}, false)
	require.NoError(t, err)
	assert.Equal(t, 110.0, geometryOf(t, e, l.ID).X)
}

func TestShortcutsIgnoredWhileTyping(t *testing.T) {
	e := New()
	l := e.AddShape(state.ShapeRectangle, "")

	handled, err := e.HandleKey(context.Background(), Key{Name: KeyDelete}, true)
	require.NoError(t, err)
	assert.False(t, handled)
	_, ok := e.Scene().Get(l.ID)
	assert.True(t, ok)

	handled, err = e.HandleKey(context.Background(), Key{Name: KeyDelete}, false)
	require.NoError(t, err)
	assert.True(t, handled)
	assert.Equal(t, 0, e.Scene().Len())
}

func TestClickWithoutMovingDoesNotCommit(t *testing.T) {
	e := New()
	e.AddShape(state.ShapeRectangle, "")
	entries := e.History().Len()

	e.PointerDown(gg.Pt(150, 200))
	assert.False(t, e.PointerUp(gg.Pt(150, 200)))
	assert.Equal(t, entries, e.History().Len())
}

func TestPointerLeaveCancelsGesture(t *testing.T) {
	e := New()
	l := e.AddShape(state.ShapeRectangle, "")
	entries := e.History().Len()

	e.PointerDown(gg.Pt(150, 200))
	e.PointerMove(gg.Pt(400, 400))
	require.Equal(t, 350.0, geometryOf(t, e, l.ID).X)

	e.PointerLeave()
	assert.Equal(t, l.Geometry, geometryOf(t, e, l.ID))
	assert.Equal(t, entries, e.History().Len())
	assert.Equal(t, ModeIdle, e.Mode())
}

func TestLockedLayerSelectsWithoutDragging(t *testing.T) {
	e := New()
	l := e.AddShape(state.ShapeRectangle, "")
	e.Select(0)
	require.True(t, e.SetLocked(l.ID, true))

	assert.Equal(t, ModeIdle, e.PointerDown(gg.Pt(150, 200)))
	assert.Equal(t, l.ID, e.Scene().SelectedID())
	assert.False(t, e.PointerMove(gg.Pt(300, 300)))
	assert.Equal(t, 100.0, geometryOf(t, e, l.ID).X)

	// Locked selection exposes no handles either.
	assert.Equal(t, ModeIdle, e.PointerDown(gg.Pt(200, 250)))
}

func TestPointerDownOnEmptyCanvasClearsSelection(t *testing.T) {
	e := New()
	e.AddShape(state.ShapeRectangle, "")
	assert.Equal(t, ModeIdle, e.PointerDown(gg.Pt(900, 900)))
	assert.Equal(t, 0, e.Scene().SelectedID())
}

func TestRotateHandle(t *testing.T) {
	e := New()
	l := e.AddShape(state.ShapeRectangle, "")

	// Rotation handle sits 25px above the top center (150, 150).
	assert.Equal(t, ModeRotating, e.PointerDown(gg.Pt(150, 125)))
	e.PointerMove(gg.Pt(300, 200))
	assert.True(t, e.PointerUp(gg.Pt(300, 200)))
	assert.Equal(t, 90.0, geometryOf(t, e, l.ID).Rotation)
}

func TestAspectLockOnSizeFields(t *testing.T) {
	e := New()
	l := e.AddShape(state.ShapeRectangle, "")
	require.True(t, e.SetHeight(l.ID, 50))
	e.Select(0)
	e.Select(l.ID)
	e.SetAspectLock(true)

	require.True(t, e.SetWidth(l.ID, 300))
	g := geometryOf(t, e, l.ID)
	assert.InDelta(t, 150, g.Height, 1e-9)

	require.True(t, e.SetHeight(l.ID, 40))
	g = geometryOf(t, e, l.ID)
	assert.InDelta(t, 80, g.Width, 1e-9)
	assert.InDelta(t, 2, g.Width/g.Height, 1e-9)
}

func TestAspectLockDuringResizeGesture(t *testing.T) {
	e := New()
	l := e.AddShape(state.ShapeRectangle, "")
	e.SetAspectLock(true)

	e.PointerDown(gg.Pt(200, 250))
	e.PointerUp(gg.Pt(260, 255))
	g := geometryOf(t, e, l.ID)
	assert.Equal(t, g.Width, g.Height)
	assert.Equal(t, 160.0, g.Width)
}

func TestUndoAllThenRedoAllRestoresScene(t *testing.T) {
	ctx := context.Background()
	e := New()
	a := e.AddShape(state.ShapeRectangle, "")
	b := e.AddText("Sale", state.TextContent{FontSize: 32})
	e.SetPosition(a.ID, 10, 20)
	e.SetRotation(b.ID, 30)
	c, _ := e.Duplicate(a.ID)
	e.MoveDown(c.ID)
	e.Remove(a.ID)
	e.SetVisible(b.ID, false)
	want := e.Scene().Layers()

	edits := e.History().Len() - 1
	for range edits {
		ok, err := e.Undo(ctx)
		require.NoError(t, err)
		require.True(t, ok)
	}
	assert.Equal(t, 0, e.Scene().Len())
	ok, err := e.Undo(ctx)
	require.NoError(t, err)
	assert.False(t, ok, "undo at the oldest entry is a no-op")

	for range edits {
		ok, err := e.Redo(ctx)
		require.NoError(t, err)
		require.True(t, ok)
	}
	assert.Equal(t, want, e.Scene().Layers())
	ok, err = e.Redo(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNewEditAfterUndoDropsRedo(t *testing.T) {
	ctx := context.Background()
	e := New()
	l := e.AddShape(state.ShapeRectangle, "")
	e.SetPosition(l.ID, 0, 0)

	_, err := e.Undo(ctx)
	require.NoError(t, err)
	e.SetPosition(l.ID, 50, 50)

	ok, err := e.Redo(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 50.0, geometryOf(t, e, l.ID).X)
}

func TestDuplicateIsOffsetAndCommitted(t *testing.T) {
	e := New()
	l := e.AddShape(state.ShapeTriangle, "")
	entries := e.History().Len()

	d, ok := e.Duplicate(l.ID)
	require.True(t, ok)
	assert.Equal(t, l.Geometry.X+20, d.Geometry.X)
	assert.Equal(t, l.Name+" (copy)", d.Name)
	assert.Equal(t, entries+1, e.History().Len())
}

func TestUnchangedPropertyEditIsNotCommitted(t *testing.T) {
	e := New()
	l := e.AddShape(state.ShapeRectangle, "")
	entries := e.History().Len()

	assert.False(t, e.SetVisible(l.ID, true))
	assert.False(t, e.SetPosition(l.ID, l.Geometry.X, l.Geometry.Y))
	assert.Equal(t, entries, e.History().Len())
	assert.False(t, e.SetVisible(999, false))
}

func TestAddImagesSkipsFailures(t *testing.T) {
	e := New()
	files := []imaging.File{
		pngFile(t, "a.png", 400, 100),
		{Name: "broken.png", Data: []byte("not an image")},
		pngFile(t, "b.png", 50, 50),
	}
	entries := e.History().Len()

	added, failed := e.AddImages(context.Background(), files)
	require.Len(t, added, 2)
	require.Len(t, failed, 1)
	assert.True(t, errors.Is(failed[0], imaging.ErrDecode))
	var de *imaging.DecodeError
	require.ErrorAs(t, failed[0], &de)
	assert.Equal(t, "broken.png", de.Name)

	assert.Equal(t, "a.png", added[0].Name)
	assert.Equal(t, 200.0, added[0].Geometry.Width)
	assert.Equal(t, 50.0, added[0].Geometry.Height)
	assert.Equal(t, entries+1, e.History().Len())
}

func TestUndoRedecodesImages(t *testing.T) {
	ctx := context.Background()
	e := New()
	l, err := e.AddImage(ctx, pngFile(t, "p.png", 10, 10))
	require.NoError(t, err)
	e.SetPosition(l.ID, 0, 0)

	ok, err := e.Undo(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	got, _ := e.Scene().Get(l.ID)
	require.NotNil(t, got.Image())
	assert.NotNil(t, got.Image().Bitmap)
}

type gatedImages struct {
	*imaging.Decoder
	calls   atomic.Int32
	entered chan struct{}
	release chan struct{}
}

func (g *gatedImages) ResolveAll(ctx context.Context, sources []string) (map[string]image.Image, error) {
	if g.calls.Add(1) == 1 {
		close(g.entered)
		<-g.release
	}
	return g.Decoder.ResolveAll(ctx, sources)
}

func TestSlowReplayCannotOverwriteNewerOne(t *testing.T) {
	ctx := context.Background()
	images := &gatedImages{
		Decoder: imaging.NewDecoder(),
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	e := New(WithImages(images))
	l, err := e.AddImage(ctx, pngFile(t, "p.png", 10, 10))
	require.NoError(t, err)
	e.SetPosition(l.ID, 300, 300)
	e.SetPosition(l.ID, 500, 500)

	type result struct {
		ok  bool
		err error
	}
	first := make(chan result, 1)
	go func() {
		ok, err := e.Undo(ctx)
		first <- result{ok, err}
	}()
	<-images.entered

	ok, err := e.Undo(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 100.0, geometryOf(t, e, l.ID).X)

	close(images.release)
	r := <-first
	require.NoError(t, r.err)
	assert.False(t, r.ok)
	assert.Equal(t, 100.0, geometryOf(t, e, l.ID).X)
	assert.True(t, e.History().CanRedo())
}

func TestEditDuringReplayKeepsHistory(t *testing.T) {
	ctx := context.Background()
	images := &gatedImages{
		Decoder: imaging.NewDecoder(),
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	e := New(WithImages(images))
	l, err := e.AddImage(ctx, pngFile(t, "p.png", 10, 10))
	require.NoError(t, err)
	e.SetPosition(l.ID, 300, 300)

	done := make(chan bool, 1)
	go func() {
		ok, err := e.Undo(ctx)
		assert.NoError(t, err)
		done <- ok
	}()
	<-images.entered

	require.True(t, e.SetPosition(l.ID, 700, 700))
	close(images.release)
	assert.False(t, <-done, "undo overtaken by an edit is dropped")
	assert.Equal(t, 700.0, geometryOf(t, e, l.ID).X)
	assert.False(t, e.History().CanRedo())

	ok, err := e.Undo(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 300.0, geometryOf(t, e, l.ID).X)

	ok, err = e.Undo(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 100.0, geometryOf(t, e, l.ID).X)
}

type flakyImages struct {
	*imaging.Decoder
	fail atomic.Bool
}

func (f *flakyImages) ResolveAll(ctx context.Context, sources []string) (map[string]image.Image, error) {
	if f.fail.Load() {
		return nil, imaging.ErrDecode
	}
	return f.Decoder.ResolveAll(ctx, sources)
}

func TestFailedReplayLeavesHistoryInPlace(t *testing.T) {
	ctx := context.Background()
	images := &flakyImages{Decoder: imaging.NewDecoder()}
	e := New(WithImages(images))
	l, err := e.AddImage(ctx, pngFile(t, "p.png", 10, 10))
	require.NoError(t, err)
	e.SetPosition(l.ID, 300, 300)

	images.fail.Store(true)
	ok, err := e.Undo(ctx)
	assert.ErrorIs(t, err, imaging.ErrDecode)
	assert.False(t, ok)
	assert.Equal(t, 300.0, geometryOf(t, e, l.ID).X)
	assert.True(t, e.History().CanUndo())
	assert.False(t, e.History().CanRedo())

	images.fail.Store(false)
	ok, err = e.Undo(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 100.0, geometryOf(t, e, l.ID).X)
}

func TestPasteDuringReplayWins(t *testing.T) {
	ctx := context.Background()
	images := &gatedImages{
		Decoder: imaging.NewDecoder(),
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	e := New(WithImages(images))
	l, err := e.AddImage(ctx, pngFile(t, "p.png", 10, 10))
	require.NoError(t, err)
	require.True(t, e.Copy(l.ID))

	done := make(chan bool, 1)
	go func() {
		ok, _ := e.Undo(ctx)
		done <- ok
	}()
	<-images.entered

	pasted, ok := e.Paste()
	require.True(t, ok)
	close(images.release)
	assert.False(t, <-done)
	assert.Equal(t, 2, e.Scene().Len())

	ok, err = e.Undo(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	_, found := e.Scene().Get(pasted.ID)
	assert.False(t, found)
	assert.Equal(t, 1, e.Scene().Len())
}

func TestDocumentSaveAndLoad(t *testing.T) {
	ctx := context.Background()
	src := New(WithCanvasSize(800, 600))
	img, err := src.AddImage(ctx, pngFile(t, "p.png", 30, 20))
	require.NoError(t, err)
	src.AddText("Hello", state.TextContent{})
	src.SetBackground(state.Background{Kind: state.BackgroundGradient, Color: "#ffffff", Color2: "#000000"})

	var buf bytes.Buffer
	require.NoError(t, state.EncodeDocument(&buf, src.Document()))
	doc, err := state.DecodeDocument(&buf)
	require.NoError(t, err)

	dst := New()
	require.NoError(t, dst.Load(ctx, doc))
	assert.Equal(t, src.ID(), dst.ID())
	w, h := dst.Size()
	assert.Equal(t, 800, w)
	assert.Equal(t, 600, h)
	assert.Equal(t, state.BackgroundGradient, dst.Scene().Background().Kind)
	require.Equal(t, 2, dst.Scene().Len())
	got, _ := dst.Scene().Get(img.ID)
	assert.NotNil(t, got.Image().Bitmap)
	assert.False(t, dst.History().CanUndo())

	// Fresh ids continue past the loaded ones.
	added := dst.AddShape(state.ShapeRectangle, "")
	assert.Greater(t, added.ID, 2)
}

func TestLoadRejectsSizelessDocument(t *testing.T) {
	e := New()
	assert.ErrorIs(t, e.Load(context.Background(), state.Document{}), ErrEmptyDocument)
}
