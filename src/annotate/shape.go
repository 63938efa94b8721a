// Package annotate implements the raster annotation editor: an ordered list
// of tagged shapes drawn over a captured image, placed with press/drag/release
// mouse interactions and a live preview.
package annotate

import (
	"fmt"
	"image"
	"image/color"
	"strconv"
	"strings"
)

// Kind tags a shape record.
type Kind int

const (
	Line Kind = iota
	Rect
	Circle
	Triangle
	Text
)

func (k Kind) String() string {
	switch k {
	case Line:
		return "line"
	case Rect:
		return "rect"
	case Circle:
		return "circle"
	case Triangle:
		return "triangle"
	case Text:
		return "text"
	default:
		return "unknown"
	}
}

// Shape is one layer of the annotation.
//
// Line runs From→To. Rect and Triangle fill the box spanned by From and To
// (the triangle's apex is the top-center of the box, its base the bottom
// edge). Circle is centered on From with radius |To-From|. Text is drawn with
// its top-left corner at From.
type Shape struct {
	Kind  Kind
	From  image.Point
	To    image.Point
	Color color.RGBA
	Width float64
	Text  string
	Size  float64
}

// Box returns the normalized rectangle spanned by From and To.
func (s Shape) Box() image.Rectangle {
	return image.Rectangle{Min: s.From, Max: s.To}.Canon()
}

// Radius is the circle radius in pixels.
func (s Shape) Radius() float64 {
	d := s.To.Sub(s.From)
	return hypot(float64(d.X), float64(d.Y))
}

// Degenerate reports shapes that would draw nothing visible and are not
// committed by the editor.
func (s Shape) Degenerate() bool {
	switch s.Kind {
	case Line, Circle:
		return s.From == s.To
	case Rect, Triangle:
		b := s.Box()
		return b.Dx() == 0 || b.Dy() == 0
	case Text:
		return strings.TrimSpace(s.Text) == ""
	default:
		return true
	}
}

// Style is the pen applied to new shapes.
type Style struct {
	Color    color.RGBA
	Width    float64
	FontSize float64
}

func DefaultStyle() Style {
	return Style{Color: Palette["red"], Width: 3, FontSize: 20}
}

// Palette lists the named colors offered by the editor.
var Palette = map[string]color.RGBA{
	"red":     {R: 0xe5, G: 0x1c, B: 0x23, A: 0xff},
	"orange":  {R: 0xff, G: 0x98, B: 0x00, A: 0xff},
	"yellow":  {R: 0xff, G: 0xeb, B: 0x3b, A: 0xff},
	"green":   {R: 0x43, G: 0xa0, B: 0x47, A: 0xff},
	"blue":    {R: 0x1e, G: 0x88, B: 0xe5, A: 0xff},
	"magenta": {R: 0xd8, G: 0x1b, B: 0x60, A: 0xff},
	"black":   {A: 0xff},
	"white":   {R: 0xff, G: 0xff, B: 0xff, A: 0xff},
}

// PaletteNames returns palette keys in display order.
func PaletteNames() []string {
	return []string{"red", "orange", "yellow", "green", "blue", "magenta", "black", "white"}
}

// ParseColor accepts a palette name, #rgb, #rrggbb or #rrggbbaa.
func ParseColor(s string) (color.RGBA, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if c, ok := Palette[s]; ok {
		return c, nil
	}
	hex := strings.TrimPrefix(s, "#")
	if hex == s {
		return color.RGBA{}, fmt.Errorf("unknown color %q", s)
	}
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	if len(hex) != 8 {
		return color.RGBA{}, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return color.RGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}
