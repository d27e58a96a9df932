package ui

import (
	"context"

	"ProductCanvas/internal/editor"
	"ProductCanvas/internal/render"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
)

// App is the editor window.
type App struct {
	ctx      context.Context
	fyneApp  fyne.App
	window   fyne.Window
	editor   *editor.Editor
	renderer *render.Renderer
	canvas   *CanvasWidget
	status   *widget.Label

	fill string
	font string
}

// RunApp opens the editor window and blocks until it closes. shareLink is
// shown in the status bar when the live preview is on.
func RunApp(ctx context.Context, ed *editor.Editor, r *render.Renderer, font, shareLink string) {
	a := &App{
		ctx:      ctx,
		fyneApp:  app.NewWithID("com.productcanvas.editor"),
		editor:   ed,
		renderer: r,
		fill:     "#3b82f6",
		font:     font,
	}
	a.window = a.fyneApp.NewWindow("Product Canvas")
	a.window.Resize(fyne.NewSize(1400, 900))

	a.status = widget.NewLabel("Ready")
	if shareLink != "" {
		a.status.SetText("Live preview: " + shareLink)
	}
	a.canvas = NewCanvasWidget(ed, r, false)
	panel := a.newLayerPanel()

	split := container.NewHSplit(a.canvas, panel.content())
	split.Offset = 0.72
	content := container.NewBorder(a.newToolbar(), a.status, nil, nil, split)

	a.bindKeys()
	a.window.SetOnDropped(a.dropImages)
	a.window.SetContent(content)
	a.window.ShowAndRun()
}

func (a *App) runKey(k editor.Key) {
	handleKey(a.ctx, a.window, a.editor, k)
}

// replay runs an undo or redo from a button. Unlike the shortcuts it works
// while an input has focus.
func (a *App) replay(step func(context.Context) (bool, error)) {
	go func() {
		if _, err := step(a.ctx); err != nil {
			fyne.Do(func() { showError(a.window, err) })
		}
	}()
}

// bindKeys routes the editing shortcuts to the editor. Inputs with focus
// keep their own copy, paste and undo.
func (a *App) bindKeys() {
	c := a.window.Canvas()
	bind := func(s fyne.Shortcut, name fyne.KeyName, mod fyne.KeyModifier) {
		c.AddShortcut(s, func(fyne.Shortcut) { a.runKey(keyFor(name, mod)) })
	}
	bind(&fyne.ShortcutCopy{}, fyne.KeyC, fyne.KeyModifierShortcutDefault)
	bind(&fyne.ShortcutPaste{}, fyne.KeyV, fyne.KeyModifierShortcutDefault)
	bind(&fyne.ShortcutUndo{}, fyne.KeyZ, fyne.KeyModifierShortcutDefault)
	bind(&fyne.ShortcutRedo{}, fyne.KeyY, fyne.KeyModifierShortcutDefault)
	bind(&desktop.CustomShortcut{KeyName: fyne.KeyY, Modifier: fyne.KeyModifierShortcutDefault},
		fyne.KeyY, fyne.KeyModifierShortcutDefault)
	bind(&desktop.CustomShortcut{KeyName: fyne.KeyZ, Modifier: fyne.KeyModifierShortcutDefault | fyne.KeyModifierShift},
		fyne.KeyZ, fyne.KeyModifierShortcutDefault|fyne.KeyModifierShift)

	c.SetOnTypedKey(func(e *fyne.KeyEvent) {
		if e.Name == fyne.KeyDelete {
			a.runKey(editor.Key{Name: editor.KeyDelete})
		}
	})
}

func (a *App) setStatus(text string) {
	fyne.Do(func() { a.status.SetText(text) })
}

func showError(w fyne.Window, err error) {
	dialog.ShowError(err, w)
}

// RunViewer opens a read-only window following a remote editor. connect
// runs on its own goroutine and reports progress through status.
func RunViewer(ed *editor.Editor, r *render.Renderer, connect func(status func(string))) {
	fyneApp := app.NewWithID("com.productcanvas.viewer")
	w := fyneApp.NewWindow("Product Canvas Viewer")
	w.Resize(fyne.NewSize(1000, 900))

	status := widget.NewLabel("Connecting...")
	view := NewCanvasWidget(ed, r, true)
	w.SetContent(container.NewBorder(nil, status, nil, nil, view))

	go connect(func(text string) {
		fyne.Do(func() { status.SetText(text) })
	})
	w.ShowAndRun()
}
