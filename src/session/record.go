package session

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	"screen-tool/src/recorder"
	"screen-tool/src/region"
)

// RecordController drives the record button: the first toggle selects a
// region and starts the encoder, the next one stops it.
type RecordController struct {
	Recorder *recorder.Recorder
	Selector region.Selector
	Choose   PathChooser
	// Audio is consulted on every start; nil or a failed lookup records video only.
	Audio AudioDetector
	// Base carries the encoder settings. Region, Path and AudioSource are
	// filled in per recording.
	Base         recorder.Options
	DisableAudio bool
	Dir          string
	Now          func() time.Time
}

// ToggleResult reports what a toggle did.
type ToggleResult struct {
	Started  bool
	Path     string
	Region   region.Rect
	Audio    string
	Duration time.Duration
}

// Toggle stops an active recording, or starts a new one.
func (c *RecordController) Toggle(ctx context.Context) (ToggleResult, error) {
	if c.Recorder.Recording() {
		res, err := c.Recorder.Stop()
		if err != nil {
			return ToggleResult{}, err
		}
		return ToggleResult{Path: res.Path, Duration: res.Duration}, nil
	}
	return c.Start(ctx)
}

// Start selects a region, asks for a path, and launches the encoder.
func (c *RecordController) Start(ctx context.Context) (ToggleResult, error) {
	if c.Recorder == nil || c.Selector == nil {
		return ToggleResult{}, errors.New("Recorder and Selector are required")
	}
	if c.Recorder.Recording() {
		return ToggleResult{}, recorder.ErrAlreadyRecording
	}
	choose := c.Choose
	if choose == nil {
		choose = AutoPath()
	}

	r, cancelled, err := c.Selector.Select(ctx)
	if err != nil {
		return ToggleResult{}, fmt.Errorf("region selection failed: %w", err)
	}
	if cancelled {
		return ToggleResult{}, ErrCancelled
	}

	suggested := filepath.Join(c.Dir, DefaultName("recording", ".mp4", now(c.Now)))
	dest, ok, err := choose(ctx, suggested, []string{recorder.FilterMP4})
	if err != nil {
		return ToggleResult{}, err
	}
	if !ok || dest.Path == "" {
		log.Info().Msg("save dialog dismissed")
		return ToggleResult{}, ErrCancelled
	}

	opts := c.Base
	opts.Region = r.Even()
	opts.Path = recorder.EnsureVideoExtension(dest.Path)
	opts.AudioSource = c.detectAudio(ctx)

	if err := c.Recorder.Start(ctx, opts); err != nil {
		return ToggleResult{}, err
	}
	return ToggleResult{Started: true, Path: opts.Path, Region: opts.Region, Audio: opts.AudioSource}, nil
}

// Stop ends the active recording, if any.
func (c *RecordController) Stop() (ToggleResult, error) {
	res, err := c.Recorder.Stop()
	if err != nil {
		return ToggleResult{}, err
	}
	return ToggleResult{Path: res.Path, Duration: res.Duration}, nil
}

func (c *RecordController) detectAudio(ctx context.Context) string {
	if c.DisableAudio || c.Audio == nil {
		return ""
	}
	src, err := c.Audio.Detect(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("recording without audio")
		return ""
	}
	return src
}
