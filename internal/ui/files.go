package ui

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"ProductCanvas/internal/export"
	"ProductCanvas/internal/imaging"
	"ProductCanvas/internal/state"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
)

var imageExtensions = []string{".png", ".jpg", ".jpeg", ".gif", ".webp", ".bmp"}

func readURI(r fyne.URIReadCloser) (imaging.File, error) {
	defer r.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		return imaging.File{}, fmt.Errorf("reading %s: %w", r.URI().Name(), err)
	}
	return imaging.File{Name: r.URI().Name(), Data: data}, nil
}

func (a *App) openImages() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		f, err := readURI(reader)
		if err != nil {
			showError(a.window, err)
			return
		}
		a.addImages([]imaging.File{f})
	}, a.window)
	fd.SetFilter(storage.NewExtensionFileFilter(imageExtensions))
	fd.Show()
}

// addImages decodes off the UI goroutine and reports each failed file.
func (a *App) addImages(files []imaging.File) {
	go func() {
		added, failed := a.editor.AddImages(a.ctx, files)
		if len(failed) == 0 {
			a.setStatus(fmt.Sprintf("Added %d image(s)", len(added)))
			return
		}
		msgs := make([]string, len(failed))
		for i, err := range failed {
			msgs[i] = err.Error()
		}
		a.setStatus(fmt.Sprintf("Added %d image(s), %d failed", len(added), len(failed)))
		fyne.Do(func() { showError(a.window, errors.New(strings.Join(msgs, "\n"))) })
	}()
}

// dropImages handles files dropped onto the window as a batch upload.
func (a *App) dropImages(_ fyne.Position, uris []fyne.URI) {
	var files []imaging.File
	for _, u := range uris {
		r, err := storage.Reader(u)
		if err != nil {
			log.Printf("[UI] Cannot open dropped %s: %v", u.Name(), err)
			continue
		}
		f, err := readURI(r)
		if err != nil {
			log.Printf("[UI] %v", err)
			continue
		}
		files = append(files, f)
	}
	if len(files) > 0 {
		a.addImages(files)
	}
}

func (a *App) openBackground() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		f, err := readURI(reader)
		if err != nil {
			showError(a.window, err)
			return
		}
		go func() {
			if err := a.editor.SetBackgroundImage(a.ctx, f); err != nil {
				fyne.Do(func() { showError(a.window, err) })
			}
		}()
	}, a.window)
	fd.SetFilter(storage.NewExtensionFileFilter(imageExtensions))
	fd.Show()
}

func (a *App) saveDocument() {
	fd := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		defer writer.Close()
		doc := a.editor.Document()
		if err := state.EncodeDocument(writer, doc); err != nil {
			showError(a.window, err)
			return
		}
		a.setStatus(fmt.Sprintf("Saved %d layers to %s", len(doc.Layers), writer.URI().Name()))
	}, a.window)
	fd.SetFileName("canvas.json")
	fd.Show()
}

func (a *App) openDocument() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		defer reader.Close()
		doc, err := state.DecodeDocument(reader)
		if err != nil {
			showError(a.window, err)
			return
		}
		a.setStatus("Loading " + reader.URI().Name() + "...")
		go func() {
			if err := a.editor.Load(a.ctx, doc); err != nil {
				fyne.Do(func() { showError(a.window, err) })
				return
			}
			a.setStatus(fmt.Sprintf("Loaded %d layers", len(doc.Layers)))
		}()
	}, a.window)
	fd.SetFilter(storage.NewExtensionFileFilter([]string{".json"}))
	fd.Show()
}

func (a *App) exportPNG() {
	fd := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		defer writer.Close()
		w, h := a.editor.Size()
		var buf bytes.Buffer
		if err := a.renderer.ExportPNG(&buf, a.editor.Scene(), w, h); err != nil {
			showError(a.window, err)
			return
		}
		if _, err := writer.Write(buf.Bytes()); err != nil {
			showError(a.window, err)
			return
		}
		a.setStatus("Exported " + writer.URI().Name())
	}, a.window)
	fd.SetFileName("canvas.png")
	fd.Show()
}

func (a *App) exportPDF() {
	fd := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		path := writer.URI().Path()
		writer.Close()
		if filepath.Ext(path) != ".pdf" {
			_ = os.Remove(path)
			path += ".pdf"
		}
		w, h := a.editor.Size()
		img := a.renderer.Render(a.editor.Scene(), w, h, false)
		if err := export.ExportPDF(path, img); err != nil {
			showError(a.window, err)
			return
		}
		a.setStatus("Exported " + filepath.Base(path))
	}, a.window)
	fd.SetFileName("canvas.pdf")
	fd.Show()
}
