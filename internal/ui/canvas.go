package ui

import (
	"context"
	"image/color"
	"sync"

	"ProductCanvas/internal/editor"
	"ProductCanvas/internal/geom"
	"ProductCanvas/internal/render"
	"ProductCanvas/internal/state"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
	"github.com/gogpu/gg"
)

// CanvasWidget shows the editor's scene, fit into the widget, and turns
// pointer input into editor gestures. A read-only widget ignores input and
// draws no selection chrome.
type CanvasWidget struct {
	widget.BaseWidget

	editor   *editor.Editor
	renderer *render.Renderer
	readOnly bool

	mu      sync.Mutex
	image   *canvas.Image
	last    gg.Point
	pressed bool
	cursor  desktop.Cursor
}

var _ fyne.Widget = (*CanvasWidget)(nil)
var _ fyne.Draggable = (*CanvasWidget)(nil)
var _ desktop.Mouseable = (*CanvasWidget)(nil)
var _ desktop.Hoverable = (*CanvasWidget)(nil)
var _ desktop.Cursorable = (*CanvasWidget)(nil)

func NewCanvasWidget(ed *editor.Editor, r *render.Renderer, readOnly bool) *CanvasWidget {
	c := &CanvasWidget{
		editor:   ed,
		renderer: r,
		readOnly: readOnly,
		cursor:   desktop.DefaultCursor,
	}
	c.image = canvas.NewImageFromImage(nil)
	c.image.FillMode = canvas.ImageFillContain
	c.ExtendBaseWidget(c)

	ed.Scene().Subscribe(func(state.Change) {
		fyne.Do(c.Redraw)
	})
	c.Redraw()
	return c
}

// Redraw renders the scene again. Selection chrome is shown unless the
// widget is read-only.
func (c *CanvasWidget) Redraw() {
	w, h := c.editor.Size()
	c.image.Image = c.renderer.Render(c.editor.Scene(), w, h, !c.readOnly)
	c.image.Refresh()
}

// toCanvas maps a widget position onto scene coordinates, undoing the
// contain fit.
func (c *CanvasWidget) toCanvas(pos fyne.Position) gg.Point {
	cw, ch := c.editor.Size()
	size := c.Size()
	if size.Width <= 0 || size.Height <= 0 {
		return gg.Pt(float64(pos.X), float64(pos.Y))
	}
	scale := min(float64(size.Width)/float64(cw), float64(size.Height)/float64(ch))
	offX := (float64(size.Width) - float64(cw)*scale) / 2
	offY := (float64(size.Height) - float64(ch)*scale) / 2
	return gg.Pt((float64(pos.X)-offX)/scale, (float64(pos.Y)-offY)/scale)
}

func (c *CanvasWidget) MouseDown(e *desktop.MouseEvent) {
	if c.readOnly || e.Button != desktop.MouseButtonPrimary {
		return
	}
	p := c.toCanvas(e.Position)
	c.mu.Lock()
	c.pressed = true
	c.last = p
	c.mu.Unlock()
	c.editor.PointerDown(p)
}

func (c *CanvasWidget) Dragged(e *fyne.DragEvent) {
	if c.readOnly {
		return
	}
	p := c.toCanvas(e.Position)
	c.mu.Lock()
	c.last = p
	c.mu.Unlock()
	c.editor.PointerMove(p)
}

func (c *CanvasWidget) DragEnd() {
	c.release()
}

func (c *CanvasWidget) MouseUp(e *desktop.MouseEvent) {
	if e.Button == desktop.MouseButtonPrimary {
		c.release()
	}
}

func (c *CanvasWidget) release() {
	c.mu.Lock()
	p, pressed := c.last, c.pressed
	c.pressed = false
	c.mu.Unlock()
	if pressed && !c.readOnly {
		c.editor.PointerUp(p)
	}
}

func (c *CanvasWidget) MouseIn(*desktop.MouseEvent) {}

func (c *CanvasWidget) MouseMoved(e *desktop.MouseEvent) {
	if c.readOnly {
		return
	}
	hit := c.editor.Hover(c.toCanvas(e.Position))
	c.mu.Lock()
	c.cursor = cursorFor(hit)
	c.mu.Unlock()
}

// MouseOut cancels a gesture in progress.
func (c *CanvasWidget) MouseOut() {
	c.mu.Lock()
	c.pressed = false
	c.cursor = desktop.DefaultCursor
	c.mu.Unlock()
	if !c.readOnly {
		c.editor.PointerLeave()
	}
}

func (c *CanvasWidget) Cursor() desktop.Cursor {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cursor
}

func cursorFor(hit geom.Hit) desktop.Cursor {
	switch hit.Target {
	case geom.TargetBody:
		return desktop.PointerCursor
	case geom.TargetRotate:
		return desktop.CrosshairCursor
	case geom.TargetResize:
		switch hit.Handle {
		case geom.HandleLeft, geom.HandleRight:
			return desktop.HResizeCursor
		case geom.HandleTop, geom.HandleBottom:
			return desktop.VResizeCursor
		}
		return desktop.CrosshairCursor
	}
	return desktop.DefaultCursor
}

// keyFor converts a toolkit shortcut into an editor key.
func keyFor(name fyne.KeyName, mod fyne.KeyModifier) editor.Key {
	return editor.Key{
		Name:  string(name),
		Ctrl:  mod&(fyne.KeyModifierControl|fyne.KeyModifierSuper) != 0,
		Shift: mod&fyne.KeyModifierShift != 0,
	}
}

// handleKey runs a shortcut off the UI goroutine, since undo and redo may
// wait on image decoding. Only a focused text entry suppresses it.
func handleKey(ctx context.Context, w fyne.Window, ed *editor.Editor, k editor.Key) {
	_, focused := w.Canvas().Focused().(*widget.Entry)
	go func() {
		if _, err := ed.HandleKey(ctx, k, focused); err != nil {
			fyne.Do(func() { showError(w, err) })
		}
	}()
}

func (c *CanvasWidget) CreateRenderer() fyne.WidgetRenderer {
	bg := canvas.NewRectangle(color.NRGBA{R: 229, G: 231, B: 235, A: 255})
	return &canvasWidgetRenderer{widget: c, background: bg}
}

type canvasWidgetRenderer struct {
	widget     *CanvasWidget
	background *canvas.Rectangle
}

func (r *canvasWidgetRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.background, r.widget.image}
}

func (r *canvasWidgetRenderer) Layout(size fyne.Size) {
	r.background.Resize(size)
	r.widget.image.Resize(size)
}

func (r *canvasWidgetRenderer) MinSize() fyne.Size {
	return fyne.NewSize(400, 400)
}

func (r *canvasWidgetRenderer) Refresh() {
	r.background.Refresh()
	r.widget.image.Refresh()
}

func (r *canvasWidgetRenderer) Destroy() {}
