package screenshot

import (
	"context"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/kbinani/screenshot"
	"github.com/rs/zerolog/log"
	xdraw "golang.org/x/image/draw"

	"screen-tool/src/execx"
	"screen-tool/src/logutil"
	"screen-tool/src/region"
)

// Format is the encoding of a saved capture.
type Format int

const (
	PNG Format = iota
	JPEG
)

// Save-dialog filter labels.
const (
	FilterPNG  = "PNG (*.png)"
	FilterJPEG = "JPEG (*.jpg)"
)

const jpegQuality = 92

func (f Format) Ext() string {
	if f == JPEG {
		return ".jpg"
	}
	return ".png"
}

func (f Format) String() string {
	if f == JPEG {
		return "jpeg"
	}
	return "png"
}

// FormatFromFilter maps a save-dialog filter label to a format.
func FormatFromFilter(filter string) Format {
	if filter == FilterJPEG {
		return JPEG
	}
	return PNG
}

// ParseFormat accepts png, jpg and jpeg.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "png", "":
		return PNG, nil
	case "jpg", "jpeg":
		return JPEG, nil
	default:
		return PNG, fmt.Errorf("unsupported image format %q", s)
	}
}

// FormatFromPath guesses the format from the file extension, defaulting to PNG.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return JPEG
	default:
		return PNG
	}
}

// EnsureExtension appends the format's extension when the chosen path does
// not already carry it.
func EnsureExtension(path string, f Format) string {
	ext := strings.ToLower(filepath.Ext(path))
	switch f {
	case JPEG:
		if ext == ".jpg" || ext == ".jpeg" {
			return path
		}
	default:
		if ext == ".png" {
			return path
		}
	}
	return path + f.Ext()
}

// Grabber writes the pixels of a screen region to path.
type Grabber interface {
	Grab(ctx context.Context, r region.Rect, path string) error
}

// MaimGrabber delegates to `maim -g WxH+X+Y path`.
type MaimGrabber struct {
	Runner  execx.Runner
	Command string
}

func NewMaimGrabber(runner execx.Runner, command string) *MaimGrabber {
	if command == "" {
		command = "maim"
	}
	return &MaimGrabber{Runner: runner, Command: command}
}

func (g *MaimGrabber) Grab(ctx context.Context, r region.Rect, path string) error {
	if r.Empty() {
		return fmt.Errorf("invalid region dimensions: width=%d, height=%d", r.Width, r.Height)
	}
	args := []string{"-g", r.Geometry()}
	if FormatFromPath(path) == JPEG {
		args = append(args, "-f", "jpg", "-m", "9")
	}
	args = append(args, path)
	if err := g.Runner.Run(ctx, g.Command, args...); err != nil {
		return fmt.Errorf("failed to capture region: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("grabber produced no file: %w", err)
	}
	log.Info().Str("region", r.Geometry()).Str("path", logutil.SanitizeForLog(path)).Msg("capture saved")
	return nil
}

// NewGrabber returns the in-process grabber for "builtin" and maim otherwise.
func NewGrabber(kind string, runner execx.Runner, command string) Grabber {
	if kind == "builtin" {
		return NewBuiltinGrabber()
	}
	return NewMaimGrabber(runner, command)
}

// BuiltinGrabber captures in-process with kbinani/screenshot.
type BuiltinGrabber struct {
	capture func(image.Rectangle) (*image.RGBA, error)
}

func NewBuiltinGrabber() *BuiltinGrabber {
	return &BuiltinGrabber{capture: screenshot.CaptureRect}
}

func (g *BuiltinGrabber) Grab(ctx context.Context, r region.Rect, path string) error {
	if r.Empty() {
		return fmt.Errorf("invalid region dimensions: width=%d, height=%d", r.Width, r.Height)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	img, err := g.capture(r.Image())
	if err != nil {
		return fmt.Errorf("failed to capture region: %w", err)
	}
	if err := Save(path, img); err != nil {
		return err
	}
	log.Info().Str("region", r.Geometry()).Str("path", logutil.SanitizeForLog(path)).Msg("capture saved")
	return nil
}

// Save encodes img to path using the format implied by its extension.
func Save(path string, img image.Image) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return Encode(f, img, FormatFromPath(path))
}

func Encode(w io.Writer, img image.Image, f Format) error {
	var err error
	switch f {
	case JPEG:
		err = jpeg.Encode(w, img, &jpeg.Options{Quality: jpegQuality})
	default:
		err = png.Encode(w, img)
	}
	if err != nil {
		return fmt.Errorf("failed to encode image as %s: %w", f, err)
	}
	return nil
}

// Load decodes a PNG or JPEG file into an RGBA image.
func Load(path string) (*image.RGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return ToRGBA(img), nil
}

func ToRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Bounds().Min == (image.Point{}) {
		return rgba
	}
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return rgba
}

// Thumbnail scales img to fit in a size x size square, keeping aspect ratio.
func Thumbnail(img image.Image, size int) *image.RGBA {
	if size <= 0 {
		size = 200
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return image.NewRGBA(image.Rect(0, 0, 0, 0))
	}
	tw, th := size, size
	if w > h {
		th = max(1, h*size/w)
	} else {
		tw = max(1, w*size/h)
	}
	dst := image.NewRGBA(image.Rect(0, 0, tw, th))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
	return dst
}
