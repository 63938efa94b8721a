package region

import (
	"errors"
	"fmt"
	"image"
	"strconv"
	"strings"

	"github.com/kbinani/screenshot"
)

// SlopFormat is the output format requested from the selector: x y w h.
const SlopFormat = "%x %y %w %h"

// ErrCancelled means the user dismissed the selector without picking a region.
var ErrCancelled = errors.New("selection cancelled")

// Rect is a screen region in absolute virtual-screen pixels.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

func (r Rect) Empty() bool { return r.Width <= 0 || r.Height <= 0 }

// Geometry renders the region in X geometry form, WxH+X+Y.
func (r Rect) Geometry() string {
	return fmt.Sprintf("%dx%d+%d+%d", r.Width, r.Height, r.X, r.Y)
}

// VideoSize renders WxH for the encoder's -video_size.
func (r Rect) VideoSize() string {
	return fmt.Sprintf("%dx%d", r.Width, r.Height)
}

// Offset renders X,Y as appended to an x11grab display name.
func (r Rect) Offset() string {
	return fmt.Sprintf("%d,%d", r.X, r.Y)
}

func (r Rect) Image() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

func (r Rect) String() string { return r.Geometry() }

// Even rounds width and height down to even numbers; libx264 with yuv420p
// rejects odd frame dimensions.
func (r Rect) Even() Rect {
	r.Width -= r.Width % 2
	r.Height -= r.Height % 2
	return r
}

func FromImage(b image.Rectangle) Rect {
	return Rect{X: b.Min.X, Y: b.Min.Y, Width: b.Dx(), Height: b.Dy()}
}

// Parse reads selector output of the form "x y w h". Blank output means the
// selection was cancelled.
func Parse(out string) (Rect, error) {
	fields := strings.Fields(out)
	if len(fields) == 0 {
		return Rect{}, ErrCancelled
	}
	if len(fields) != 4 {
		return Rect{}, fmt.Errorf("unexpected selector output %q: want 4 fields, got %d", out, len(fields))
	}

	var vals [4]int
	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return Rect{}, fmt.Errorf("unexpected selector output %q: %w", out, err)
		}
		vals[i] = n
	}

	r := Rect{X: vals[0], Y: vals[1], Width: vals[2], Height: vals[3]}
	if r.Width < 0 || r.Height < 0 {
		return Rect{}, fmt.Errorf("invalid region dimensions: width=%d, height=%d", r.Width, r.Height)
	}
	return r, nil
}

// DisplayBounds returns the union of all active display bounds.
func DisplayBounds() (image.Rectangle, error) {
	n := screenshot.NumActiveDisplays()
	if n == 0 {
		return image.Rectangle{}, fmt.Errorf("no active displays found")
	}
	union := screenshot.GetDisplayBounds(0)
	for i := 1; i < n; i++ {
		union = union.Union(screenshot.GetDisplayBounds(i))
	}
	return union, nil
}

// ClampToDisplays trims r to the virtual screen. When no displays are
// reported r is returned unchanged.
func ClampToDisplays(r Rect) Rect {
	bounds, err := DisplayBounds()
	if err != nil {
		return r
	}
	return Clamp(r, bounds)
}

func Clamp(r Rect, bounds image.Rectangle) Rect {
	return FromImage(r.Image().Intersect(bounds))
}

// ParseGeometry reads the X geometry form WxH+X+Y produced by Geometry.
func ParseGeometry(s string) (Rect, error) {
	var r Rect
	n, err := fmt.Sscanf(strings.TrimSpace(s), "%dx%d+%d+%d", &r.Width, &r.Height, &r.X, &r.Y)
	if err != nil || n != 4 {
		return Rect{}, fmt.Errorf("invalid geometry %q: want WxH+X+Y", s)
	}
	if r.Empty() {
		return Rect{}, fmt.Errorf("invalid geometry %q: empty region", s)
	}
	return r, nil
}
