package editor

import (
	"context"
)

// Key names as delivered by the desktop toolkit.
const (
	KeyDelete = "Delete"
	KeyZ      = "Z"
	KeyY      = "Y"
	KeyC      = "C"
	KeyV      = "V"
)

// Key is one key press with its modifiers. Ctrl covers the platform's
// shortcut modifier.
type Key struct {
	Name  string
	Ctrl  bool
	Shift bool
}

// HandleKey runs the shortcut bound to k. Shortcuts are ignored while a
// text input has focus. It reports whether k was a shortcut.
func (e *Editor) HandleKey(ctx context.Context, k Key, inputFocused bool) (bool, error) {
	if inputFocused {
		return false, nil
	}
	switch {
	case k.Name == KeyDelete && !k.Ctrl:
		e.RemoveSelected()
	case k.Ctrl && k.Name == KeyZ && k.Shift, k.Ctrl && k.Name == KeyY:
		_, err := e.Redo(ctx)
		return true, err
	case k.Ctrl && k.Name == KeyZ:
		_, err := e.Undo(ctx)
		return true, err
	case k.Ctrl && k.Name == KeyC:
		e.CopySelected()
	case k.Ctrl && k.Name == KeyV:
		e.Paste()
	default:
		return false, nil
	}
	return true, nil
}
