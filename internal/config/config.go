// Package config holds the settings of an editor instance, read from an
// optional TOML file and overridden by command-line flags.
package config

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"strings"

	"ProductCanvas/internal/state"

	"github.com/BurntSushi/toml"
)

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("invalid config")

type Canvas struct {
	Width      int    `toml:"width"`
	Height     int    `toml:"height"`
	Background string `toml:"background"`
	Font       string `toml:"font"`
}

type History struct {
	Limit       int     `toml:"limit"`
	PasteOffset float64 `toml:"paste_offset"`
}

type Preview struct {
	Enabled   bool `toml:"enabled"`
	Port      int  `toml:"port"`
	Advertise bool `toml:"advertise"`
}

type Config struct {
	Canvas       Canvas  `toml:"canvas"`
	History      History `toml:"history"`
	Preview      Preview `toml:"preview"`
	ImageMaxSide float64 `toml:"image_max_side"`
	Debug        bool    `toml:"debug"`

	// Render is only set from flags.
	Render RenderJob `toml:"-"`
}

// RenderJob asks for a headless render of a saved document.
type RenderJob struct {
	Document string
	Output   string
}

func Default() Config {
	return Config{
		Canvas: Canvas{
			Width:      1000,
			Height:     1000,
			Background: "#ffffff",
			Font:       state.DefaultFontFamily,
		},
		History: History{
			Limit:       state.DefaultHistoryLimit,
			PasteOffset: state.DefaultPasteOffset,
		},
		Preview: Preview{
			Enabled:   true,
			Port:      8888,
			Advertise: true,
		},
		ImageMaxSide: 200,
	}
}

// Load reads path over the defaults. Keys the file sets override them;
// unknown keys are logged and ignored.
func Load(path string) (Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("reading config %s: %w", path, err)
	}
	if keys := md.Undecoded(); len(keys) > 0 {
		names := make([]string, len(keys))
		for i, k := range keys {
			names[i] = k.String()
		}
		log.Printf("[CONFIG] Ignoring unknown keys in %s: %s", path, strings.Join(names, ", "))
	}
	return cfg, nil
}

// Validate reports the first setting that cannot work.
func (c Config) Validate() error {
	switch {
	case c.Canvas.Width <= 0 || c.Canvas.Height <= 0:
		return fmt.Errorf("%w: canvas size %dx%d", ErrInvalid, c.Canvas.Width, c.Canvas.Height)
	case c.History.Limit <= 0:
		return fmt.Errorf("%w: history limit %d", ErrInvalid, c.History.Limit)
	case c.Preview.Port <= 0 || c.Preview.Port > 65535:
		return fmt.Errorf("%w: preview port %d", ErrInvalid, c.Preview.Port)
	case c.ImageMaxSide <= 0:
		return fmt.Errorf("%w: image max side %g", ErrInvalid, c.ImageMaxSide)
	case !strings.HasPrefix(c.Canvas.Background, "#"):
		return fmt.Errorf("%w: background %q is not a hex color", ErrInvalid, c.Canvas.Background)
	}
	return nil
}

// Bind registers flags that override c after parsing.
func (c *Config) Bind(fs *flag.FlagSet) {
	fs.IntVar(&c.Canvas.Width, "width", c.Canvas.Width, "canvas width in pixels")
	fs.IntVar(&c.Canvas.Height, "height", c.Canvas.Height, "canvas height in pixels")
	fs.StringVar(&c.Canvas.Background, "background", c.Canvas.Background, "canvas background color")
	fs.IntVar(&c.History.Limit, "history", c.History.Limit, "number of undo steps kept")
	fs.IntVar(&c.Preview.Port, "port", c.Preview.Port, "live preview port")
	fs.BoolVar(&c.Preview.Enabled, "preview", c.Preview.Enabled, "serve a live preview to viewers")
	fs.BoolVar(&c.Preview.Advertise, "mdns", c.Preview.Advertise, "advertise the preview over mDNS")
	fs.BoolVar(&c.Debug, "debug", c.Debug, "verbose rendering logs")
}

// Parse builds the final config from args: defaults, then the file named
// by -config (if any), then the remaining flags. It returns the positional
// arguments left over.
func Parse(name string, args []string) (Config, []string, error) {
	path := configPath(args)
	cfg := Default()
	if path != "" {
		loaded, err := Load(path)
		if err != nil {
			return Config{}, nil, err
		}
		cfg = loaded
	}

	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.String("config", path, "TOML config file")
	cfg.Bind(fs)
	render := fs.String("render", "", "render a saved document to PNG and exit")
	out := fs.String("o", "out.png", "output path for -render")
	if err := fs.Parse(args); err != nil {
		return Config{}, nil, err
	}
	cfg.Render = RenderJob{Document: *render, Output: *out}
	if err := cfg.Validate(); err != nil {
		return Config{}, nil, err
	}
	return cfg, fs.Args(), nil
}

// configPath finds -config ahead of the full parse, since the file has to
// be read before the other flags override it.
func configPath(args []string) string {
	for i, a := range args {
		if a == "--" || !strings.HasPrefix(a, "-") {
			return ""
		}
		name, val, hasVal := strings.Cut(strings.TrimLeft(a, "-"), "=")
		if name != "config" {
			continue
		}
		if hasVal {
			return val
		}
		if i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}
