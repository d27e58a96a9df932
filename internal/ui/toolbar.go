package ui

import (
	"fmt"
	"image/color"
	"strings"

	"ProductCanvas/internal/state"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// palette is offered for shape fills and text colors.
var palette = []string{"#222222", "#ef4444", "#22c55e", "#3b82f6", "#eab308", "#ffffff"}

type colorSwatch struct {
	widget.BaseWidget
	Color    color.Color
	OnTapped func(color.Color)
}

func newColorSwatch(c color.Color, tapped func(color.Color)) *colorSwatch {
	s := &colorSwatch{Color: c, OnTapped: tapped}
	s.ExtendBaseWidget(s)
	return s
}

func (s *colorSwatch) CreateRenderer() fyne.WidgetRenderer {
	rect := canvas.NewRectangle(s.Color)
	rect.SetMinSize(fyne.NewSize(28, 28))

	border := canvas.NewRectangle(color.Transparent)
	border.StrokeColor = color.Gray{Y: 150}
	border.StrokeWidth = 1

	return widget.NewSimpleRenderer(container.NewStack(rect, border))
}

func (s *colorSwatch) Tapped(_ *fyne.PointEvent) {
	if s.OnTapped != nil {
		s.OnTapped(s.Color)
	}
}

func parseHex(hex string) color.Color {
	var r, g, b uint8
	if _, err := fmt.Sscanf(strings.TrimPrefix(hex, "#"), "%02x%02x%02x", &r, &g, &b); err != nil {
		return color.Black
	}
	return color.NRGBA{R: r, G: g, B: b, A: 255}
}

func hexOf(c color.Color) string {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return fmt.Sprintf("#%02x%02x%02x", n.R, n.G, n.B)
}

func shapeLabel(s state.ShapeType) string {
	return strings.ToUpper(string(s[:1])) + string(s[1:])
}

// newToolbar builds the top bar: file and edit actions, layer creation and
// the color palette.
func (a *App) newToolbar() fyne.CanvasObject {
	tb := widget.NewToolbar(
		widget.NewToolbarAction(theme.FolderOpenIcon(), a.openDocument),
		widget.NewToolbarAction(theme.DocumentSaveIcon(), a.saveDocument),
		widget.NewToolbarAction(theme.DownloadIcon(), a.exportPNG),
		widget.NewToolbarAction(theme.DocumentPrintIcon(), a.exportPDF),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.ContentUndoIcon(), func() { a.replay(a.editor.Undo) }),
		widget.NewToolbarAction(theme.ContentRedoIcon(), func() { a.replay(a.editor.Redo) }),
		widget.NewToolbarAction(theme.ContentCopyIcon(), func() { a.editor.CopySelected() }),
		widget.NewToolbarAction(theme.ContentPasteIcon(), func() { a.editor.Paste() }),
		widget.NewToolbarAction(theme.DeleteIcon(), func() { a.editor.RemoveSelected() }),
	)

	labels := make([]string, len(state.ShapeTypes))
	for i, s := range state.ShapeTypes {
		labels[i] = shapeLabel(s)
	}
	shapes := widget.NewSelect(labels, nil)
	shapes.OnChanged = func(label string) {
		for _, s := range state.ShapeTypes {
			if shapeLabel(s) == label {
				a.editor.AddShape(s, a.fill)
				shapes.ClearSelected()
			}
		}
	}
	shapes.PlaceHolder = "Add shape"

	text := widget.NewButtonWithIcon("Text", theme.ContentAddIcon(), func() {
		a.editor.AddText("Your text", state.TextContent{FontFamily: a.font})
	})
	image := widget.NewButtonWithIcon("Images", theme.FileImageIcon(), a.openImages)

	onColor := func(c color.Color) {
		a.fill = hexOf(c)
		a.applyColor(a.fill)
	}
	swatches := container.NewHBox()
	for _, hex := range palette {
		swatches.Add(newColorSwatch(parseHex(hex), onColor))
	}

	background := widget.NewSelect([]string{"White", "Gradient", "Image..."}, func(v string) {
		switch v {
		case "White":
			a.editor.SetBackground(state.DefaultBackground())
		case "Gradient":
			a.editor.SetBackground(state.Background{Kind: state.BackgroundGradient, Color: "#ffffff", Color2: a.fill})
		case "Image...":
			a.openBackground()
		}
	})
	background.PlaceHolder = "Background"

	return container.NewHBox(
		tb,
		widget.NewSeparator(),
		text,
		image,
		container.New(layout.NewGridWrapLayout(fyne.NewSize(140, 36)), shapes),
		widget.NewSeparator(),
		widget.NewLabel("Color:"),
		swatches,
		container.New(layout.NewGridWrapLayout(fyne.NewSize(140, 36)), background),
		layout.NewSpacer(),
	)
}

// applyColor recolors the selected shape fill or text.
func (a *App) applyColor(hex string) {
	sel, ok := a.editor.Scene().Selected()
	if !ok {
		return
	}
	switch c := sel.Content.(type) {
	case *state.ShapeContent:
		sc := *c
		sc.Fill = hex
		a.editor.SetShapeStyle(sel.ID, sc)
	case *state.TextContent:
		tc := *c
		tc.Color = hex
		a.editor.SetText(sel.ID, tc)
	}
}
