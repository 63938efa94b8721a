package runtimeinit

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"screen-tool/src/audio"
	"screen-tool/src/clipboard"
	"screen-tool/src/config"
	"screen-tool/src/execx"
	"screen-tool/src/logutil"
	"screen-tool/src/recorder"
	"screen-tool/src/region"
	"screen-tool/src/screenshot"
	"screen-tool/src/session"
)

type Options struct {
	LoadOptions config.LoadOptions
	Verbose     bool
	// InitClipboard tries to open the clipboard. Failure is logged, not fatal.
	InitClipboard bool
}

// Runtime holds the components shared by the GUI and the CLI.
type Runtime struct {
	Config    *config.Config
	Runner    execx.Runner
	Selector  *region.SlopSelector
	Grabber   screenshot.Grabber
	Audio     *audio.Lister
	Recorder  *recorder.Recorder
	Clipboard session.ImageWriter
}

// Bootstrap loads configuration, installs logging and builds the runtime.
func Bootstrap(opts Options) (*Runtime, error) {
	cfg, err := config.LoadWithOptions(opts.LoadOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logutil.Setup(logutil.Options{
		EnableFileLogging: cfg.EnableFileLogging,
		Verbose:           opts.Verbose,
		Level:             cfg.LogLevel,
	})

	// slop, maim and pactl target the same display ffmpeg records from.
	rt := New(cfg, execx.NewRunner("DISPLAY="+cfg.Display))
	if opts.InitClipboard {
		if err := clipboard.Init(); err != nil {
			log.Warn().Err(err).Msg("clipboard unavailable")
		} else if cfg.CopyToClipboard {
			rt.Clipboard = clipboard.Writer{}
		}
	}

	log.Info().
		Str("grabber", cfg.Grabber).
		Str("display", cfg.Display).
		Str("output_dir", cfg.OutputDir).
		Bool("audio", !cfg.DisableAudio).
		Msg("screen tool initialized")
	return rt, nil
}

// New wires the components for cfg around runner.
func New(cfg *config.Config, runner execx.Runner) *Runtime {
	return &Runtime{
		Config:   cfg,
		Runner:   runner,
		Selector: region.NewSlopSelector(runner, cfg.SelectorCommand),
		Grabber:  screenshot.NewGrabber(cfg.Grabber, runner, cfg.GrabberCommand),
		Audio:    audio.NewLister(runner, cfg.AudioListerCommand, cfg.AudioSource),
		Recorder: recorder.New(runner, cfg.EncoderCommand),
	}
}

// CaptureOptions returns capture settings for the configured tools.
func (rt *Runtime) CaptureOptions(choose session.PathChooser) session.CaptureOptions {
	return session.CaptureOptions{
		Selector:  rt.Selector,
		Choose:    choose,
		Grabber:   rt.Grabber,
		Clipboard: rt.Clipboard,
		Dir:       rt.Config.OutputDir,
	}
}

// RecordController returns a controller bound to the shared recorder.
func (rt *Runtime) RecordController(choose session.PathChooser) *session.RecordController {
	cfg := rt.Config
	return &session.RecordController{
		Recorder: rt.Recorder,
		Selector: rt.Selector,
		Choose:   choose,
		Audio:    rt.Audio,
		Base: recorder.Options{
			Display:      cfg.Display,
			Framerate:    cfg.Framerate,
			VideoCodec:   cfg.VideoCodec,
			Preset:       cfg.Preset,
			AudioCodec:   cfg.AudioCodec,
			AudioBitrate: cfg.AudioBitrate,
			ExtraArgs:    cfg.EncoderExtraArgs,
		},
		DisableAudio: cfg.DisableAudio,
		Dir:          cfg.OutputDir,
	}
}
