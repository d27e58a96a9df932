package state

import (
	"log"
	"sync"
)

// Staggered default placement for newly added layers.
const (
	gridOriginX = 100
	gridOriginY = 150
	gridColumns = 3

	imageStepX = 220
	imageStepY = 200
	shapeStepX = 150
	shapeStepY = 130
)

// ChangeKind describes what a scene mutation touched.
type ChangeKind int

const (
	ChangeAdded ChangeKind = iota
	ChangeRemoved
	ChangeUpdated
	ChangeReordered
	ChangeSelected
	ChangeReplaced
	ChangeBackground
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeAdded:
		return "added"
	case ChangeRemoved:
		return "removed"
	case ChangeUpdated:
		return "updated"
	case ChangeReordered:
		return "reordered"
	case ChangeSelected:
		return "selected"
	case ChangeReplaced:
		return "replaced"
	case ChangeBackground:
		return "background"
	}
	return "unknown"
}

// Change is delivered to subscribers after every scene mutation.
// LayerID is zero for scene-wide changes.
type Change struct {
	Kind    ChangeKind
	LayerID int
}

// Scene is the ordered layer collection. Index 0 is drawn first (bottom);
// sequence order is the only z-order. Selection is either zero (none) or
// the id of a layer present in the sequence.
type Scene struct {
	mu         sync.RWMutex
	ids        Sequence
	layers     []*Layer
	selected   int
	background Background
	listeners  []func(Change)
}

// NewScene creates an empty scene with a white background.
func NewScene() *Scene {
	return &Scene{
		layers:     make([]*Layer, 0),
		background: DefaultBackground(),
	}
}

// Subscribe registers fn to receive change notifications. fn runs on the
// goroutine that performed the mutation, after the scene lock is released.
func (s *Scene) Subscribe(fn func(Change)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

func (s *Scene) notify(c Change) {
	s.mu.RLock()
	listeners := make([]func(Change), len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.RUnlock()
	for _, fn := range listeners {
		fn(c)
	}
}

func (s *Scene) indexOf(id int) int {
	for i, l := range s.layers {
		if l.ID == id {
			return i
		}
	}
	return -1
}

func staggeredPosition(kind Kind, count int) (float64, float64) {
	col, row := count%gridColumns, count/gridColumns
	if kind == KindImage {
		return float64(gridOriginX + col*imageStepX), float64(gridOriginY + row*imageStepY)
	}
	return float64(gridOriginX + col*shapeStepX), float64(gridOriginY + row*shapeStepY)
}

// AddLayer assigns the next id and a staggered position to l, appends it on
// top and selects it.
func (s *Scene) AddLayer(l Layer) Layer {
	s.mu.Lock()
	l = l.Clone()
	l.ID = s.ids.Next()
	l.Geometry.X, l.Geometry.Y = staggeredPosition(l.Kind(), len(s.layers))
	if l.Name == "" {
		l.Name = defaultName(&l, l.ID)
	}
	s.layers = append(s.layers, &l)
	s.selected = l.ID
	out := l.Clone()
	s.mu.Unlock()

	log.Printf("[SCENE] Added %s layer %d at (%.0f, %.0f)", l.Kind(), l.ID, l.Geometry.X, l.Geometry.Y)
	s.notify(Change{Kind: ChangeAdded, LayerID: out.ID})
	return out
}

// Insert appends l on top under a fresh id, keeping its position, and
// selects it. Used for duplicate and paste.
func (s *Scene) Insert(l Layer) Layer {
	s.mu.Lock()
	l = l.Clone()
	l.ID = s.ids.Next()
	if l.Name == "" {
		l.Name = defaultName(&l, l.ID)
	}
	s.layers = append(s.layers, &l)
	s.selected = l.ID
	out := l.Clone()
	s.mu.Unlock()

	log.Printf("[SCENE] Inserted %s layer %d", l.Kind(), l.ID)
	s.notify(Change{Kind: ChangeAdded, LayerID: out.ID})
	return out
}

// RemoveLayer deletes the layer. If it was selected, selection falls back
// to the new topmost layer, or none when the scene is empty.
func (s *Scene) RemoveLayer(id int) bool {
	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	s.layers = append(s.layers[:i], s.layers[i+1:]...)
	if s.selected == id {
		s.selected = 0
		if n := len(s.layers); n > 0 {
			s.selected = s.layers[n-1].ID
		}
	}
	s.mu.Unlock()

	log.Printf("[SCENE] Removed layer %d", id)
	s.notify(Change{Kind: ChangeRemoved, LayerID: id})
	return true
}

// MoveUp swaps the layer with its upper neighbor. No-op at the top.
func (s *Scene) MoveUp(id int) bool {
	return s.swap(id, +1)
}

// MoveDown swaps the layer with its lower neighbor. No-op at the bottom.
func (s *Scene) MoveDown(id int) bool {
	return s.swap(id, -1)
}

func (s *Scene) swap(id, dir int) bool {
	s.mu.Lock()
	i := s.indexOf(id)
	j := i + dir
	if i < 0 || j < 0 || j >= len(s.layers) {
		s.mu.Unlock()
		return false
	}
	s.layers[i], s.layers[j] = s.layers[j], s.layers[i]
	s.mu.Unlock()

	s.notify(Change{Kind: ChangeReordered, LayerID: id})
	return true
}

// Duplicate copies the layer's visual properties under a fresh id, offset
// by (dx, dy), and places it on top.
func (s *Scene) Duplicate(id int, dx, dy float64) (Layer, bool) {
	src, ok := s.Get(id)
	if !ok {
		return Layer{}, false
	}
	src.Geometry.X += dx
	src.Geometry.Y += dy
	src.Name += " (copy)"
	return s.Insert(src), true
}

// Get returns a copy of the layer with the given id.
func (s *Scene) Get(id int) (Layer, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexOf(id); i >= 0 {
		return s.layers[i].Clone(), true
	}
	return Layer{}, false
}

// Selected returns a copy of the selected layer.
func (s *Scene) Selected() (Layer, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.selected == 0 {
		return Layer{}, false
	}
	if i := s.indexOf(s.selected); i >= 0 {
		return s.layers[i].Clone(), true
	}
	return Layer{}, false
}

// SelectedID returns the selected id, or zero.
func (s *Scene) SelectedID() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected
}

// Select makes id the selection. Zero, or an id not in the scene, clears it.
func (s *Scene) Select(id int) {
	s.mu.Lock()
	if s.indexOf(id) < 0 {
		id = 0
	}
	changed := s.selected != id
	s.selected = id
	s.mu.Unlock()

	if changed {
		s.notify(Change{Kind: ChangeSelected, LayerID: id})
	}
}

// Update applies fn to the live layer. The id cannot be changed by fn.
func (s *Scene) Update(id int, fn func(*Layer)) bool {
	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	fn(s.layers[i])
	s.layers[i].ID = id
	s.mu.Unlock()

	s.notify(Change{Kind: ChangeUpdated, LayerID: id})
	return true
}

// Layers returns copies of all layers, bottom first.
func (s *Scene) Layers() []Layer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Layer, len(s.layers))
	for i, l := range s.layers {
		out[i] = l.Clone()
	}
	return out
}

// Len returns the number of layers.
func (s *Scene) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.layers)
}

// Replace swaps in a whole new layer sequence at once. Selection survives
// if the selected id is still present.
func (s *Scene) Replace(layers []Layer) {
	s.mu.Lock()
	next := make([]*Layer, len(layers))
	for i := range layers {
		l := layers[i].Clone()
		s.ids.Observe(l.ID)
		next[i] = &l
	}
	s.layers = next
	if s.indexOf(s.selected) < 0 {
		s.selected = 0
	}
	s.mu.Unlock()

	s.notify(Change{Kind: ChangeReplaced})
}

// FitText recomputes every text layer's extent: width from measure,
// height from the font size.
func (s *Scene) FitText(measure func(*TextContent) float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range s.layers {
		if t := l.Text(); t != nil {
			l.Geometry.Width = measure(t)
			l.Geometry.Height = t.FontSize * LineHeightFactor
		}
	}
}

// Background returns the current background.
func (s *Scene) Background() Background {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.background
}

// SetBackground replaces the background. It is not part of history.
func (s *Scene) SetBackground(b Background) {
	s.mu.Lock()
	s.background = b
	s.mu.Unlock()
	s.notify(Change{Kind: ChangeBackground})
}
