package ui

import (
	"fmt"
	"slices"
	"strconv"

	"ProductCanvas/internal/state"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// layerPanel lists layers top first and edits the selected one. It only
// reads scene state when notified and writes through the editor.
type layerPanel struct {
	app    *App
	layers []state.Layer // top first
	list   *widget.List

	syncing bool

	name     *widget.Entry
	x, y     *widget.Entry
	w, h     *widget.Entry
	rotation *widget.Slider
	aspect   *widget.Check
	visible  *widget.Check
	locked   *widget.Check

	shadow        *widget.Check
	shadowBlur    *widget.Slider
	shadowOpacity *widget.Slider

	text     *widget.Entry
	fontSize *widget.Entry
	bold     *widget.Check
	font     *widget.Select

	stroke      *widget.Entry
	strokeWidth *widget.Entry
	starPoints  *widget.Entry

	textBox  *fyne.Container
	shapeBox *fyne.Container
}

func (a *App) newLayerPanel() *layerPanel {
	p := &layerPanel{app: a}

	p.list = widget.NewList(
		func() int { return len(p.layers) },
		func() fyne.CanvasObject {
			return container.NewHBox(widget.NewIcon(theme.VisibilityIcon()), widget.NewLabel("layer"))
		},
		func(i widget.ListItemID, o fyne.CanvasObject) {
			row := o.(*fyne.Container)
			l := p.layers[i]
			icon := theme.VisibilityIcon()
			if !l.Visible {
				icon = theme.VisibilityOffIcon()
			}
			row.Objects[0].(*widget.Icon).SetResource(icon)
			label := l.Name
			if l.Locked {
				label += " (locked)"
			}
			row.Objects[1].(*widget.Label).SetText(label)
		},
	)
	p.list.OnSelected = func(i widget.ListItemID) {
		if p.syncing || i >= len(p.layers) {
			return
		}
		a.editor.Select(p.layers[i].ID)
	}

	p.name = p.entry(func(id int, v string) { a.editor.Rename(id, v) })
	p.x = p.number(func(id int, v float64) {
		if l, ok := a.editor.Scene().Get(id); ok {
			a.editor.SetPosition(id, v, l.Geometry.Y)
		}
	})
	p.y = p.number(func(id int, v float64) {
		if l, ok := a.editor.Scene().Get(id); ok {
			a.editor.SetPosition(id, l.Geometry.X, v)
		}
	})
	p.w = p.number(func(id int, v float64) { a.editor.SetWidth(id, v) })
	p.h = p.number(func(id int, v float64) { a.editor.SetHeight(id, v) })

	p.rotation = widget.NewSlider(0, 359)
	p.rotation.OnChangeEnded = func(v float64) {
		p.withSelected(func(id int) { a.editor.SetRotation(id, v) })
	}
	p.aspect = widget.NewCheck("Lock aspect ratio", func(on bool) { a.editor.SetAspectLock(on) })
	p.visible = p.check("Visible", func(id int, on bool) { a.editor.SetVisible(id, on) })
	p.locked = p.check("Locked", func(id int, on bool) { a.editor.SetLocked(id, on) })

	p.shadow = p.check("Shadow", func(id int, on bool) { p.editShadow(id, func(s *state.Shadow) { s.Enabled = on }) })
	p.shadowBlur = widget.NewSlider(0, 50)
	p.shadowBlur.OnChangeEnded = func(v float64) {
		p.withSelected(func(id int) { p.editShadow(id, func(s *state.Shadow) { s.Blur = v }) })
	}
	p.shadowOpacity = widget.NewSlider(0, 100)
	p.shadowOpacity.OnChangeEnded = func(v float64) {
		p.withSelected(func(id int) { p.editShadow(id, func(s *state.Shadow) { s.Opacity = v }) })
	}

	p.text = p.entry(func(id int, v string) { p.editText(id, func(tc *state.TextContent) { tc.Text = v }) })
	p.fontSize = p.number(func(id int, v float64) {
		p.editText(id, func(tc *state.TextContent) { tc.FontSize = max(v, 1) })
	})
	p.bold = p.check("Bold", func(id int, on bool) {
		p.editText(id, func(tc *state.TextContent) {
			tc.FontWeight = state.WeightNormal
			if on {
				tc.FontWeight = state.WeightBold
			}
		})
	})
	p.font = widget.NewSelect(a.renderer.Fonts().Families(), func(v string) {
		p.withSelected(func(id int) { p.editText(id, func(tc *state.TextContent) { tc.FontFamily = v }) })
	})

	p.stroke = p.entry(func(id int, v string) { p.editShape(id, func(sc *state.ShapeContent) { sc.Stroke = v }) })
	p.strokeWidth = p.number(func(id int, v float64) {
		p.editShape(id, func(sc *state.ShapeContent) { sc.StrokeWidth = max(v, 0) })
	})
	p.starPoints = p.number(func(id int, v float64) {
		p.editShape(id, func(sc *state.ShapeContent) { sc.StarPoints = max(int(v), 2) })
	})
	return p
}

func (p *layerPanel) content() fyne.CanvasObject {
	ed := p.app.editor
	order := container.NewGridWithColumns(4,
		widget.NewButtonWithIcon("", theme.MoveUpIcon(), func() { p.withSelected(func(id int) { ed.MoveUp(id) }) }),
		widget.NewButtonWithIcon("", theme.MoveDownIcon(), func() { p.withSelected(func(id int) { ed.MoveDown(id) }) }),
		widget.NewButtonWithIcon("", theme.ContentCopyIcon(), func() { p.withSelected(func(id int) { ed.Duplicate(id) }) }),
		widget.NewButtonWithIcon("", theme.DeleteIcon(), func() { p.withSelected(func(id int) { ed.Remove(id) }) }),
	)

	p.textBox = container.NewVBox(
		widget.NewLabel("Text"), p.text,
		widget.NewForm(
			widget.NewFormItem("Size", p.fontSize),
			widget.NewFormItem("Font", p.font),
		),
		p.bold,
	)
	p.shapeBox = container.NewVBox(
		widget.NewForm(
			widget.NewFormItem("Stroke", p.stroke),
			widget.NewFormItem("Width", p.strokeWidth),
			widget.NewFormItem("Points", p.starPoints),
		),
	)

	props := container.NewVBox(
		widget.NewForm(
			widget.NewFormItem("Name", p.name),
			widget.NewFormItem("X", p.x),
			widget.NewFormItem("Y", p.y),
			widget.NewFormItem("Width", p.w),
			widget.NewFormItem("Height", p.h),
		),
		p.aspect,
		widget.NewLabel("Rotation"), p.rotation,
		container.NewHBox(p.visible, p.locked),
		p.shadow,
		widget.NewLabel("Shadow blur"), p.shadowBlur,
		widget.NewLabel("Shadow opacity"), p.shadowOpacity,
		p.textBox,
		p.shapeBox,
	)
	p.refresh()
	ed.Scene().Subscribe(func(state.Change) {
		fyne.Do(p.refresh)
	})

	top := container.NewBorder(widget.NewLabel("Layers"), order, nil, nil, p.list)
	return container.NewVSplit(top, container.NewVScroll(props))
}

func (p *layerPanel) withSelected(fn func(id int)) {
	if p.syncing {
		return
	}
	if id := p.app.editor.Scene().SelectedID(); id != 0 {
		fn(id)
	}
}

func (p *layerPanel) entry(submit func(id int, v string)) *widget.Entry {
	e := widget.NewEntry()
	e.OnSubmitted = func(v string) {
		p.withSelected(func(id int) { submit(id, v) })
	}
	return e
}

func (p *layerPanel) number(submit func(id int, v float64)) *widget.Entry {
	return p.entry(func(id int, v string) {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			p.app.setStatus(fmt.Sprintf("%q is not a number", v))
			p.refresh()
			return
		}
		submit(id, f)
	})
}

func (p *layerPanel) check(label string, changed func(id int, on bool)) *widget.Check {
	return widget.NewCheck(label, func(on bool) {
		p.withSelected(func(id int) { changed(id, on) })
	})
}

func (p *layerPanel) editShadow(id int, fn func(*state.Shadow)) {
	if l, ok := p.app.editor.Scene().Get(id); ok {
		s := l.Shadow
		fn(&s)
		p.app.editor.SetShadow(id, s)
	}
}

func (p *layerPanel) editText(id int, fn func(*state.TextContent)) {
	if l, ok := p.app.editor.Scene().Get(id); ok && l.Text() != nil {
		tc := *l.Text()
		fn(&tc)
		p.app.editor.SetText(id, tc)
	}
}

func (p *layerPanel) editShape(id int, fn func(*state.ShapeContent)) {
	if l, ok := p.app.editor.Scene().Get(id); ok && l.Shape() != nil {
		sc := *l.Shape()
		fn(&sc)
		p.app.editor.SetShapeStyle(id, sc)
	}
}

// refresh pulls the current scene into the controls. Control callbacks are
// muted meanwhile so the sync does not write back.
func (p *layerPanel) refresh() {
	p.syncing = true
	defer func() { p.syncing = false }()

	ed := p.app.editor
	p.layers = ed.Scene().Layers()
	slices.Reverse(p.layers)
	p.list.Refresh()
	p.aspect.SetChecked(ed.AspectLock())

	sel, ok := ed.Scene().Selected()
	if !ok {
		p.list.UnselectAll()
		p.textBox.Hide()
		p.shapeBox.Hide()
		return
	}
	for i, l := range p.layers {
		if l.ID == sel.ID {
			p.list.Select(i)
		}
	}

	g := sel.Geometry
	p.name.SetText(sel.Name)
	p.x.SetText(strconv.FormatFloat(g.X, 'f', 0, 64))
	p.y.SetText(strconv.FormatFloat(g.Y, 'f', 0, 64))
	p.w.SetText(strconv.FormatFloat(g.Width, 'f', 0, 64))
	p.h.SetText(strconv.FormatFloat(g.Height, 'f', 0, 64))
	p.rotation.SetValue(g.Rotation)
	p.visible.SetChecked(sel.Visible)
	p.locked.SetChecked(sel.Locked)
	p.shadow.SetChecked(sel.Shadow.Enabled)
	p.shadowBlur.SetValue(sel.Shadow.Blur)
	p.shadowOpacity.SetValue(sel.Shadow.Opacity)

	p.textBox.Hide()
	p.shapeBox.Hide()
	switch c := sel.Content.(type) {
	case *state.TextContent:
		p.text.SetText(c.Text)
		p.fontSize.SetText(strconv.FormatFloat(c.FontSize, 'f', -1, 64))
		p.bold.SetChecked(c.FontWeight == state.WeightBold)
		p.font.SetSelected(c.FontFamily)
		p.textBox.Show()
	case *state.ShapeContent:
		p.stroke.SetText(c.Stroke)
		p.strokeWidth.SetText(strconv.FormatFloat(c.StrokeWidth, 'f', -1, 64))
		p.starPoints.SetText(strconv.Itoa(c.StarPoints))
		p.shapeBox.Show()
	}
}
