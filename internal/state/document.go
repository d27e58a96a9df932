package state

import (
	"encoding/json"
	"fmt"
	"io"
)

// layerJSON is the wire form of a Layer: a kind tag plus exactly one payload.
type layerJSON struct {
	ID       int           `json:"id"`
	Kind     string        `json:"kind"`
	Name     string        `json:"name"`
	Geometry Geometry      `json:"geometry"`
	Visible  bool          `json:"visible"`
	Locked   bool          `json:"locked"`
	Shadow   Shadow        `json:"shadow"`
	Image    *ImageContent `json:"image,omitempty"`
	Text     *TextContent  `json:"text,omitempty"`
	Shape    *ShapeContent `json:"shape,omitempty"`
}

func (l Layer) MarshalJSON() ([]byte, error) {
	w := layerJSON{
		ID:       l.ID,
		Name:     l.Name,
		Geometry: l.Geometry,
		Visible:  l.Visible,
		Locked:   l.Locked,
		Shadow:   l.Shadow,
	}
	switch c := l.Content.(type) {
	case *ImageContent:
		w.Image = c
	case *TextContent:
		w.Text = c
	case *ShapeContent:
		w.Shape = c
	default:
		return nil, fmt.Errorf("layer %d: %w", l.ID, ErrUnknownKind)
	}
	w.Kind = l.Content.Kind().String()
	return json.Marshal(w)
}

func (l *Layer) UnmarshalJSON(data []byte) error {
	var w layerJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	kind, err := ParseKind(w.Kind)
	if err != nil {
		return fmt.Errorf("layer %d: %w", w.ID, err)
	}
	*l = Layer{
		ID:       w.ID,
		Name:     w.Name,
		Geometry: w.Geometry,
		Visible:  w.Visible,
		Locked:   w.Locked,
		Shadow:   w.Shadow,
	}
	switch kind {
	case KindImage:
		l.Content = w.Image
	case KindText:
		l.Content = w.Text
	case KindShape:
		l.Content = w.Shape
	}
	if l.Content == nil || isNilContent(l.Content) {
		return fmt.Errorf("layer %d: missing %s payload", w.ID, kind)
	}
	return nil
}

func isNilContent(c Content) bool {
	switch v := c.(type) {
	case *ImageContent:
		return v == nil
	case *TextContent:
		return v == nil
	case *ShapeContent:
		return v == nil
	}
	return true
}

// Document is the saved form of an editor session. Images travel as data
// URLs and must be decoded again after loading.
type Document struct {
	ID         string     `json:"id"`
	Width      int        `json:"width"`
	Height     int        `json:"height"`
	Background Background `json:"background"`
	Layers     []Layer    `json:"layers"`
}

// Sources lists every image source the document references.
func (d Document) Sources() []string {
	out := Snapshot{Layers: d.Layers}.Sources()
	if d.Background.Kind == BackgroundImage && d.Background.Source != "" {
		out = append(out, d.Background.Source)
	}
	return out
}

// EncodeDocument writes d as indented JSON.
func EncodeDocument(w io.Writer, d Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("encoding document: %w", err)
	}
	return nil
}

// DecodeDocument reads a document written by EncodeDocument.
func DecodeDocument(r io.Reader) (Document, error) {
	var d Document
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return Document{}, fmt.Errorf("decoding document: %w", err)
	}
	return d, nil
}
