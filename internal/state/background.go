package state

import "image"

type BackgroundKind string

const (
	BackgroundSolid    BackgroundKind = "solid"
	BackgroundGradient BackgroundKind = "gradient"
	BackgroundImage    BackgroundKind = "image"
)

// Background is painted before any layer. Gradient runs top to bottom from
// Color to Color2; Image is drawn cover-fit.
type Background struct {
	Kind   BackgroundKind `json:"kind"`
	Color  string         `json:"color"`
	Color2 string         `json:"color2,omitempty"`
	Source string         `json:"source,omitempty"`
	Bitmap image.Image    `json:"-"`
}

func DefaultBackground() Background {
	return Background{Kind: BackgroundSolid, Color: "#ffffff"}
}
