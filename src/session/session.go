package session

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	"screen-tool/src/logutil"
	"screen-tool/src/region"
	"screen-tool/src/screenshot"
)

var ErrCancelled = errors.New("operation cancelled")

// Destination is where the user asked a capture to be written. Filter is the
// save-dialog filter label that was active, if any.
type Destination struct {
	Path   string
	Filter string
}

// PathChooser asks for an output path. suggested is a full default path;
// filters are the dialog filter labels in display order. Returning ok=false
// means the user dismissed the dialog.
type PathChooser func(ctx context.Context, suggested string, filters []string) (Destination, bool, error)

// ImageWriter receives PNG bytes after a successful capture.
type ImageWriter interface {
	WriteImage(png []byte) error
}

// AudioDetector picks the audio source to record, if any.
type AudioDetector interface {
	Detect(ctx context.Context) (string, error)
}

// AutoPath returns a chooser that accepts the suggested path without prompting.
func AutoPath() PathChooser {
	return func(ctx context.Context, suggested string, filters []string) (Destination, bool, error) {
		f := ""
		if len(filters) > 0 {
			f = filters[0]
		}
		return Destination{Path: suggested, Filter: f}, true, nil
	}
}

// DefaultName builds a timestamped file name such as screenshot-20250102-150405.png.
func DefaultName(prefix, ext string, now time.Time) string {
	return fmt.Sprintf("%s-%s%s", prefix, now.Format("20060102-150405"), ext)
}

type CaptureOptions struct {
	Selector region.Selector
	Choose   PathChooser
	Grabber  screenshot.Grabber
	// Clipboard, when set, receives the capture as PNG.
	Clipboard ImageWriter
	Dir       string
	Format    screenshot.Format
	Now       func() time.Time
}

type CaptureResult struct {
	Path   string
	Region region.Rect
	Format screenshot.Format
	Copied bool
}

// Capture runs one screenshot: select a region, choose where to save it,
// grab it, and optionally copy it to the clipboard.
func Capture(ctx context.Context, opts CaptureOptions) (CaptureResult, error) {
	if opts.Selector == nil {
		return CaptureResult{}, errors.New("Selector is required")
	}
	if opts.Grabber == nil {
		return CaptureResult{}, errors.New("Grabber is required")
	}
	choose := opts.Choose
	if choose == nil {
		choose = AutoPath()
	}

	r, cancelled, err := opts.Selector.Select(ctx)
	if err != nil {
		return CaptureResult{}, fmt.Errorf("region selection failed: %w", err)
	}
	if cancelled {
		return CaptureResult{}, ErrCancelled
	}

	filters := []string{screenshot.FilterPNG, screenshot.FilterJPEG}
	if opts.Format == screenshot.JPEG {
		filters[0], filters[1] = filters[1], filters[0]
	}
	suggested := filepath.Join(opts.Dir, DefaultName("screenshot", opts.Format.Ext(), now(opts.Now)))
	dest, ok, err := choose(ctx, suggested, filters)
	if err != nil {
		return CaptureResult{}, err
	}
	if !ok || dest.Path == "" {
		log.Info().Msg("save dialog dismissed")
		return CaptureResult{}, ErrCancelled
	}

	format := screenshot.FormatFromPath(dest.Path)
	if dest.Filter != "" {
		format = screenshot.FormatFromFilter(dest.Filter)
	}
	path := screenshot.EnsureExtension(dest.Path, format)

	if err := opts.Grabber.Grab(ctx, r, path); err != nil {
		log.Error().Err(err).Str("path", logutil.SanitizeForLog(path)).Msg("capture failed")
		return CaptureResult{}, fmt.Errorf("capture failed: %w", err)
	}
	log.Info().Str("path", logutil.SanitizeForLog(path)).Str("region", r.Geometry()).Str("format", format.String()).Msg("capture saved")

	res := CaptureResult{Path: path, Region: r, Format: format}
	if opts.Clipboard != nil {
		if err := copyToClipboard(opts.Clipboard, path, format); err != nil {
			log.Warn().Err(err).Msg("failed to copy capture to clipboard")
		} else {
			res.Copied = true
		}
	}
	return res, nil
}

func copyToClipboard(w ImageWriter, path string, format screenshot.Format) error {
	if format == screenshot.PNG {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		return w.WriteImage(data)
	}
	img, err := screenshot.Load(path)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := screenshot.Encode(&buf, img, screenshot.PNG); err != nil {
		return err
	}
	return w.WriteImage(buf.Bytes())
}

func now(fn func() time.Time) time.Time {
	if fn == nil {
		return time.Now()
	}
	return fn()
}
