// Package editor is one editing session: a scene, its history and
// clipboard, and the pointer and keyboard interaction bound to them.
package editor

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"sync"

	"ProductCanvas/internal/geom"
	"ProductCanvas/internal/imaging"
	"ProductCanvas/internal/state"
)

const (
	DefaultCanvasSize   = 1000
	DefaultImageMaxSide = 200
)

// ImageSource decodes uploads and reloads image sources on replay.
// *imaging.Decoder is the production implementation.
type ImageSource interface {
	Load(ctx context.Context, f imaging.File) (imaging.Loaded, error)
	LoadBatch(ctx context.Context, files []imaging.File) ([]imaging.Loaded, []error)
	ResolveAll(ctx context.Context, sources []string) (map[string]image.Image, error)
}

type Option func(*Editor)

func WithHistoryLimit(n int) Option {
	return func(e *Editor) { e.historyLimit = n }
}

// WithPasteOffset sets the delta applied to pasted and duplicated layers.
func WithPasteOffset(d float64) Option {
	return func(e *Editor) { e.offset = d }
}

func WithImages(src ImageSource) Option {
	return func(e *Editor) { e.images = src }
}

func WithCanvasSize(w, h int) Option {
	return func(e *Editor) { e.width, e.height = w, h }
}

// WithImageMaxSide bounds the initial size of uploaded images.
func WithImageMaxSide(px float64) Option {
	return func(e *Editor) { e.maxSide = px }
}

// Editor owns every piece of mutable session state; two editors share
// nothing.
type Editor struct {
	id      string
	scene   *state.Scene
	history *state.History
	images  ImageSource

	historyLimit  int
	offset        float64
	maxSide       float64
	width, height int

	mu         sync.Mutex
	aspectLock bool
	aspect     float64
	gesture    gesture

	// replayMu orders history replays against each other and against
	// commits. generation grows on every commit and replay request; a
	// replay whose generation is stale by the time its images decode is
	// dropped.
	replayMu   sync.Mutex
	generation uint64
}

// New creates an editor with an empty scene. History starts with that
// empty scene as its baseline, so the first edit can be undone.
func New(opts ...Option) *Editor {
	e := &Editor{
		id:           state.NewDocumentID(),
		scene:        state.NewScene(),
		historyLimit: state.DefaultHistoryLimit,
		offset:       state.DefaultPasteOffset,
		maxSide:      DefaultImageMaxSide,
		width:        DefaultCanvasSize,
		height:       DefaultCanvasSize,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.images == nil {
		e.images = imaging.NewDecoder()
	}
	e.history = state.NewHistory(e.historyLimit)
	e.history.SetPasteOffset(e.offset)
	e.history.Commit(e.scene)

	e.scene.Subscribe(func(c state.Change) {
		switch c.Kind {
		case state.ChangeSelected, state.ChangeAdded, state.ChangeRemoved, state.ChangeReplaced:
			e.captureAspect()
		}
	})
	log.Printf("[EDITOR] Session %s started (%dx%d)", e.id, e.width, e.height)
	return e
}

// Scene subscribers run while replays and document loads hold the replay
// lock, so they must only read; edits from a subscriber deadlock.
func (e *Editor) Scene() *state.Scene     { return e.scene }
func (e *Editor) History() *state.History { return e.history }

func (e *Editor) ID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.id
}

// Size returns the canvas size in pixels.
func (e *Editor) Size() (int, int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.width, e.height
}

func (e *Editor) commit() {
	e.replayMu.Lock()
	e.generation++
	e.history.Commit(e.scene)
	e.replayMu.Unlock()
}

func (e *Editor) captureAspect() {
	sel, ok := e.scene.Selected()
	e.mu.Lock()
	defer e.mu.Unlock()
	e.aspect = 0
	if ok {
		e.aspect = geom.AspectOf(sel.Geometry)
	}
}

// SetAspectLock toggles ratio-preserving size edits. The ratio is the
// selected layer's width/height when it was selected.
func (e *Editor) SetAspectLock(on bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.aspectLock = on
}

func (e *Editor) AspectLock() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.aspectLock
}

// lockedAspect returns the ratio to keep, or zero when the lock is off.
func (e *Editor) lockedAspect() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.aspectLock {
		return 0
	}
	return e.aspect
}

// AddImage decodes one upload and adds it as a layer.
func (e *Editor) AddImage(ctx context.Context, f imaging.File) (state.Layer, error) {
	loaded, err := e.images.Load(ctx, f)
	if err != nil {
		return state.Layer{}, err
	}
	l := e.scene.AddLayer(e.imageLayer(loaded))
	e.commit()
	return l, nil
}

// AddImages decodes a batch in parallel. Items that fail to decode are
// skipped and reported; the rest are added in order under one history
// entry.
func (e *Editor) AddImages(ctx context.Context, files []imaging.File) ([]state.Layer, []error) {
	loaded, failed := e.images.LoadBatch(ctx, files)
	added := make([]state.Layer, 0, len(loaded))
	for _, ld := range loaded {
		added = append(added, e.scene.AddLayer(e.imageLayer(ld)))
	}
	if len(added) > 0 {
		e.commit()
	}
	if len(failed) > 0 {
		log.Printf("[EDITOR] %d of %d images failed to decode", len(failed), len(files))
	}
	return added, failed
}

func (e *Editor) imageLayer(ld imaging.Loaded) state.Layer {
	l := state.NewImageLayer(ld.Source, ld.Bitmap, e.maxSide)
	l.Name = ld.Name
	return l
}

// AddText adds a text layer styled by style; zero fields take defaults.
func (e *Editor) AddText(text string, style state.TextContent) state.Layer {
	l := e.scene.AddLayer(state.NewTextLayer(text, style))
	e.commit()
	return l
}

func (e *Editor) AddShape(shape state.ShapeType, fill string) state.Layer {
	l := e.scene.AddLayer(state.NewShapeLayer(shape, fill))
	e.commit()
	return l
}

func (e *Editor) Remove(id int) bool {
	if !e.scene.RemoveLayer(id) {
		return false
	}
	e.commit()
	return true
}

// RemoveSelected removes the selected layer, if any.
func (e *Editor) RemoveSelected() bool {
	id := e.scene.SelectedID()
	return id != 0 && e.Remove(id)
}

func (e *Editor) MoveUp(id int) bool {
	if !e.scene.MoveUp(id) {
		return false
	}
	e.commit()
	return true
}

func (e *Editor) MoveDown(id int) bool {
	if !e.scene.MoveDown(id) {
		return false
	}
	e.commit()
	return true
}

// Duplicate copies the layer on top, offset like a paste.
func (e *Editor) Duplicate(id int) (state.Layer, bool) {
	l, ok := e.scene.Duplicate(id, e.offset, e.offset)
	if ok {
		e.commit()
	}
	return l, ok
}

func (e *Editor) Select(id int) {
	e.scene.Select(id)
}

func (e *Editor) Copy(id int) bool {
	return e.history.Copy(e.scene, id)
}

// CopySelected copies the selected layer, if any.
func (e *Editor) CopySelected() bool {
	id := e.scene.SelectedID()
	return id != 0 && e.Copy(id)
}

// Paste inserts the clipboard layer. An empty clipboard is a no-op.
func (e *Editor) Paste() (state.Layer, bool) {
	e.replayMu.Lock()
	defer e.replayMu.Unlock()
	e.generation++
	return e.history.Paste(e.scene)
}

// Undo steps history back and replays the entry once its images decode.
// At the oldest entry it reports false.
func (e *Editor) Undo(ctx context.Context) (bool, error) {
	return e.replay(ctx, "undo", e.history.StepBack)
}

// Redo is the forward counterpart of Undo.
func (e *Editor) Redo(ctx context.Context) (bool, error) {
	return e.replay(ctx, "redo", e.history.StepForward)
}

// replay moves the history cursor, decodes the target entry's images and
// then shows it. History only settles on the entry when it is shown, so a
// commit made while a replay decodes builds on what is on screen and the
// replay is dropped.
func (e *Editor) replay(ctx context.Context, op string, step func() (state.Snapshot, int, bool)) (bool, error) {
	e.replayMu.Lock()
	snap, target, ok := step()
	if !ok {
		e.replayMu.Unlock()
		return false, nil
	}
	e.generation++
	gen := e.generation
	e.replayMu.Unlock()

	imgs, err := e.images.ResolveAll(ctx, snap.Sources())

	e.replayMu.Lock()
	defer e.replayMu.Unlock()
	if gen != e.generation {
		log.Printf("[EDITOR] Dropped stale %s", op)
		return false, nil
	}
	if err != nil {
		e.history.Cancel()
		return false, fmt.Errorf("replaying %s: %w", op, err)
	}
	attachBitmaps(snap.Layers, imgs)
	e.scene.Replace(snap.Layers)
	e.history.Settle(target)
	return true, nil
}

func attachBitmaps(layers []state.Layer, imgs map[string]image.Image) {
	for i := range layers {
		if img := layers[i].Image(); img != nil {
			img.Bitmap = imgs[img.Source]
		}
	}
}

// update applies fn to the layer and commits if anything changed.
func (e *Editor) update(id int, fn func(*state.Layer)) bool {
	before, ok := e.scene.Get(id)
	if !ok {
		return false
	}
	var after state.Layer
	e.scene.Update(id, func(l *state.Layer) {
		fn(l)
		after = l.Clone()
	})
	if sameLayer(before, after) {
		return false
	}
	e.commit()
	return true
}

func sameLayer(a, b state.Layer) bool {
	if a.Name != b.Name || a.Geometry != b.Geometry || a.Visible != b.Visible ||
		a.Locked != b.Locked || a.Shadow != b.Shadow {
		return false
	}
	switch ca := a.Content.(type) {
	case *state.ImageContent:
		cb := b.Image()
		return cb != nil && ca.Source == cb.Source
	case *state.TextContent:
		cb := b.Text()
		return cb != nil && *ca == *cb
	case *state.ShapeContent:
		cb := b.Shape()
		return cb != nil && *ca == *cb
	}
	return false
}

// SetWidth sets the width from a property field, honoring the aspect lock.
func (e *Editor) SetWidth(id int, w float64) bool {
	aspect := e.lockedAspect()
	return e.update(id, func(l *state.Layer) {
		l.Geometry = geom.WithWidth(l.Geometry, w, aspect)
	})
}

// SetHeight sets the height from a property field, honoring the aspect lock.
func (e *Editor) SetHeight(id int, h float64) bool {
	aspect := e.lockedAspect()
	return e.update(id, func(l *state.Layer) {
		l.Geometry = geom.WithHeight(l.Geometry, h, aspect)
	})
}

func (e *Editor) SetPosition(id int, x, y float64) bool {
	return e.update(id, func(l *state.Layer) {
		l.Geometry.X, l.Geometry.Y = x, y
	})
}

// SetRotation sets the rotation in degrees, folded into [0, 360).
func (e *Editor) SetRotation(id int, deg float64) bool {
	return e.update(id, func(l *state.Layer) {
		l.Geometry = geom.WithRotation(l.Geometry, deg)
	})
}

func (e *Editor) SetVisible(id int, visible bool) bool {
	return e.update(id, func(l *state.Layer) { l.Visible = visible })
}

func (e *Editor) SetLocked(id int, locked bool) bool {
	return e.update(id, func(l *state.Layer) { l.Locked = locked })
}

func (e *Editor) Rename(id int, name string) bool {
	return e.update(id, func(l *state.Layer) { l.Name = name })
}

func (e *Editor) SetShadow(id int, s state.Shadow) bool {
	return e.update(id, func(l *state.Layer) { l.Shadow = s })
}

// SetText replaces a text layer's content and style. Other kinds are
// left alone.
func (e *Editor) SetText(id int, tc state.TextContent) bool {
	return e.update(id, func(l *state.Layer) {
		if l.Text() != nil {
			l.Content = &tc
		}
	})
}

// SetShapeStyle replaces a shape layer's style. Other kinds are left alone.
func (e *Editor) SetShapeStyle(id int, sc state.ShapeContent) bool {
	return e.update(id, func(l *state.Layer) {
		if l.Shape() != nil {
			l.Content = &sc
		}
	})
}

// SetBackground replaces the background. Backgrounds are not part of
// history.
func (e *Editor) SetBackground(b state.Background) {
	e.scene.SetBackground(b)
}

// SetBackgroundImage decodes f and uses it cover-fit as the background.
func (e *Editor) SetBackgroundImage(ctx context.Context, f imaging.File) error {
	loaded, err := e.images.Load(ctx, f)
	if err != nil {
		return err
	}
	e.scene.SetBackground(state.Background{
		Kind:   state.BackgroundImage,
		Color:  e.scene.Background().Color,
		Source: loaded.Source,
		Bitmap: loaded.Bitmap,
	})
	return nil
}

// Document captures the session for saving.
func (e *Editor) Document() state.Document {
	w, h := e.Size()
	return state.Document{
		ID:         e.ID(),
		Width:      w,
		Height:     h,
		Background: e.scene.Background(),
		Layers:     e.scene.Layers(),
	}
}

// ErrEmptyDocument is returned by Load for a document without a canvas size.
var ErrEmptyDocument = errors.New("document has no canvas size")

// Load replaces the session with a saved document. All images are decoded
// before anything changes; history restarts at the loaded state.
func (e *Editor) Load(ctx context.Context, d state.Document) error {
	if d.Width <= 0 || d.Height <= 0 {
		return ErrEmptyDocument
	}
	imgs, err := e.images.ResolveAll(ctx, d.Sources())
	if err != nil {
		return fmt.Errorf("loading document %s: %w", d.ID, err)
	}
	attachBitmaps(d.Layers, imgs)
	if d.Background.Kind == state.BackgroundImage {
		d.Background.Bitmap = imgs[d.Background.Source]
	}

	e.replayMu.Lock()
	defer e.replayMu.Unlock()
	e.generation++
	e.mu.Lock()
	if d.ID != "" {
		e.id = d.ID
	}
	e.width, e.height = d.Width, d.Height
	e.mu.Unlock()
	e.scene.Replace(d.Layers)
	e.scene.Select(0)
	e.scene.SetBackground(d.Background)
	e.history.Reset(e.scene)
	log.Printf("[EDITOR] Loaded document %s with %d layers", d.ID, len(d.Layers))
	return nil
}
