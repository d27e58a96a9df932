package render

import (
	"fmt"
	"slices"
	"sync"

	"ProductCanvas/internal/state"

	"github.com/gogpu/gg/text"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/goregular"
)

type family struct {
	regular *text.FontSource
	bold    *text.FontSource
}

// Fonts resolves a text layer's family and weight to a face. Families
// that are not registered fall back to state.DefaultFontFamily.
type Fonts struct {
	mu       sync.RWMutex
	families map[string]family
}

// NewFonts registers the bundled Go font families.
func NewFonts() (*Fonts, error) {
	f := &Fonts{families: make(map[string]family)}
	if err := f.Register(state.DefaultFontFamily, goregular.TTF, gobold.TTF); err != nil {
		return nil, err
	}
	if err := f.Register("Go Mono", gomono.TTF, gomonobold.TTF); err != nil {
		return nil, err
	}
	return f, nil
}

// Register adds a family from TrueType data. bold may be nil, in which
// case the regular face is used for both weights.
func (f *Fonts) Register(name string, regular, bold []byte) error {
	reg, err := text.NewFontSource(regular)
	if err != nil {
		return fmt.Errorf("loading %s regular: %w", name, err)
	}
	fam := family{regular: reg, bold: reg}
	if bold != nil {
		if fam.bold, err = text.NewFontSource(bold); err != nil {
			return fmt.Errorf("loading %s bold: %w", name, err)
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.families[name] = fam
	return nil
}

// Families lists the registered family names, sorted.
func (f *Fonts) Families() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	names := make([]string, 0, len(f.families))
	for name := range f.families {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Face returns the face for a text layer's style.
func (f *Fonts) Face(tc *state.TextContent) text.Face {
	f.mu.RLock()
	fam, ok := f.families[tc.FontFamily]
	if !ok {
		fam = f.families[state.DefaultFontFamily]
	}
	f.mu.RUnlock()

	src := fam.regular
	if tc.FontWeight == state.WeightBold {
		src = fam.bold
	}
	return src.Face(tc.FontSize)
}

// Measure returns the advance width of the layer's text.
func (f *Fonts) Measure(tc *state.TextContent) float64 {
	if tc.Text == "" {
		return 0
	}
	return f.Face(tc).Advance(tc.Text)
}
