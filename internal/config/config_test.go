package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "canvas.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
image_max_side = 320

[canvas]
width = 1200
background = "#f3f4f6"

[history]
limit = 10
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 1200, cfg.Canvas.Width)
	assert.Equal(t, 1000, cfg.Canvas.Height)
	assert.Equal(t, "#f3f4f6", cfg.Canvas.Background)
	assert.Equal(t, 10, cfg.History.Limit)
	assert.Equal(t, 20.0, cfg.History.PasteOffset)
	assert.Equal(t, 320.0, cfg.ImageMaxSide)
	assert.True(t, cfg.Preview.Enabled)
}

func TestLoadReportsBadFile(t *testing.T) {
	_, err := Load(writeConfig(t, "[canvas\nwidth = "))
	assert.Error(t, err)
	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero width", func(c *Config) { c.Canvas.Width = 0 }},
		{"negative height", func(c *Config) { c.Canvas.Height = -5 }},
		{"no history", func(c *Config) { c.History.Limit = 0 }},
		{"port out of range", func(c *Config) { c.Preview.Port = 70000 }},
		{"image max side", func(c *Config) { c.ImageMaxSide = 0 }},
		{"background", func(c *Config) { c.Canvas.Background = "white" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalid)
		})
	}
}

func TestFlagsOverrideFile(t *testing.T) {
	path := writeConfig(t, "[canvas]\nwidth = 640\nheight = 480\n")
	cfg, rest, err := Parse("test", []string{"-height", "360", "-config", path, "-mdns=false", "productcanvas://10.0.0.2:8888"})
	require.NoError(t, err)
	assert.Equal(t, 640, cfg.Canvas.Width)
	assert.Equal(t, 360, cfg.Canvas.Height)
	assert.False(t, cfg.Preview.Advertise)
	assert.Equal(t, []string{"productcanvas://10.0.0.2:8888"}, rest)
}

func TestParseRenderJob(t *testing.T) {
	cfg, _, err := Parse("test", []string{"-render", "doc.json", "-o", "shot.png"})
	require.NoError(t, err)
	assert.Equal(t, RenderJob{Document: "doc.json", Output: "shot.png"}, cfg.Render)
}

func TestParseRejectsInvalid(t *testing.T) {
	_, _, err := Parse("test", []string{"-width", "0"})
	assert.ErrorIs(t, err, ErrInvalid)
}
