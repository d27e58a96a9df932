package state

import (
	"log"
	"sync"
)

const (
	DefaultHistoryLimit = 50
	DefaultPasteOffset  = 20
)

// Snapshot is one history entry: a deep copy of the layer sequence with
// image bitmaps dropped. Replaying it requires decoding each image source.
type Snapshot struct {
	Layers []Layer
}

// Sources lists the image sources a replay has to decode, in layer order.
func (s Snapshot) Sources() []string {
	var out []string
	for i := range s.Layers {
		if img := s.Layers[i].Image(); img != nil {
			out = append(out, img.Source)
		}
	}
	return out
}

// Clone returns a copy that shares nothing mutable with s.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{Layers: make([]Layer, len(s.Layers))}
	for i, l := range s.Layers {
		out.Layers[i] = l.Clone()
	}
	return out
}

// History is a linear undo/redo stack of snapshots plus a one-slot
// clipboard. Committing after an undo discards the redo branch.
//
// index is the entry the scene shows. cursor is where pending undo and
// redo requests have moved to; it only differs from index while a replay
// is still decoding. Commits always build on index.
type History struct {
	mu        sync.Mutex
	entries   []Snapshot
	index     int
	cursor    int
	limit     int
	offset    float64
	clipboard *Layer
}

// NewHistory creates an empty history keeping at most limit entries.
func NewHistory(limit int) *History {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &History{
		entries: make([]Snapshot, 0, limit),
		index:   -1,
		cursor:  -1,
		limit:   limit,
		offset:  DefaultPasteOffset,
	}
}

// SetPasteOffset changes the delta applied to pasted layers.
func (h *History) SetPasteOffset(d float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.offset = d
}

func capture(s *Scene) Snapshot {
	layers := s.Layers()
	snap := Snapshot{Layers: make([]Layer, len(layers))}
	for i, l := range layers {
		snap.Layers[i] = l.stripped()
	}
	return snap
}

// Commit records the scene's current layer sequence. Entries after the
// current position are dropped; past the limit the oldest entry ages out.
func (h *History) Commit(s *Scene) {
	snap := capture(s)

	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries[:h.index+1], snap)
	if len(h.entries) > h.limit {
		h.entries = h.entries[len(h.entries)-h.limit:]
	}
	h.index = len(h.entries) - 1
	h.cursor = h.index
	log.Printf("[HISTORY] Commit %d/%d (%d layers)", h.index+1, len(h.entries), len(snap.Layers))
}

// Reset discards every entry and records s as the only one.
func (h *History) Reset(s *Scene) {
	h.mu.Lock()
	h.entries = h.entries[:0]
	h.index = -1
	h.cursor = -1
	h.mu.Unlock()
	h.Commit(s)
}

// StepBack moves the cursor back one entry and returns that entry with
// its position. The scene still shows the old entry until Settle.
// At the oldest entry it reports false.
func (h *History) StepBack() (Snapshot, int, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cursor <= 0 {
		return Snapshot{}, 0, false
	}
	h.cursor--
	return h.entries[h.cursor].Clone(), h.cursor, true
}

// StepForward is the redo counterpart of StepBack.
func (h *History) StepForward() (Snapshot, int, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cursor >= len(h.entries)-1 {
		return Snapshot{}, 0, false
	}
	h.cursor++
	return h.entries[h.cursor].Clone(), h.cursor, true
}

// Settle records that the scene now shows entry i.
func (h *History) Settle(i int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if i < 0 || i >= len(h.entries) {
		return
	}
	h.index, h.cursor = i, i
	log.Printf("[HISTORY] At %d/%d", h.index+1, len(h.entries))
}

// Cancel drops pending steps, moving the cursor back to the shown entry.
func (h *History) Cancel() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cursor = h.index
}

// Undo steps back one entry, settles on it and returns it. At the oldest
// entry it reports false and changes nothing.
func (h *History) Undo() (Snapshot, bool) {
	snap, i, ok := h.StepBack()
	if ok {
		h.Settle(i)
	}
	return snap, ok
}

// Redo steps forward one entry, settles on it and returns it. At the
// newest entry it reports false and changes nothing.
func (h *History) Redo() (Snapshot, bool) {
	snap, i, ok := h.StepForward()
	if ok {
		h.Settle(i)
	}
	return snap, ok
}

func (h *History) CanUndo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cursor > 0
}

func (h *History) CanRedo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cursor < len(h.entries)-1
}

// Len returns the number of stored entries.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

// Copy captures the layer into the clipboard, replacing what was there.
func (h *History) Copy(s *Scene, id int) bool {
	l, ok := s.Get(id)
	if !ok {
		return false
	}
	l.ID = 0

	h.mu.Lock()
	defer h.mu.Unlock()
	h.clipboard = &l
	log.Printf("[HISTORY] Copied layer %d", id)
	return true
}

// HasClipboard reports whether Paste would do anything.
func (h *History) HasClipboard() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.clipboard != nil
}

// Paste inserts a fresh copy of the clipboard layer on top, offset from the
// copied position, and commits. The clipboard is left intact.
func (h *History) Paste(s *Scene) (Layer, bool) {
	h.mu.Lock()
	if h.clipboard == nil {
		h.mu.Unlock()
		return Layer{}, false
	}
	l := h.clipboard.Clone()
	offset := h.offset
	h.mu.Unlock()

	l.Geometry.X += offset
	l.Geometry.Y += offset
	l.Name += " (copy)"
	out := s.Insert(l)
	h.Commit(s)
	return out, true
}
