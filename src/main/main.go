package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"screen-tool/src/config"
	"screen-tool/src/eventloop"
	"screen-tool/src/gui"
	"screen-tool/src/hotkey"
	"screen-tool/src/recorder"
	"screen-tool/src/runtimeinit"
	"screen-tool/src/session"
)

const AppID = "io.github.screen-tool"

type mainOptions struct {
	envFile   string
	outputDir string
	logLevel  string
	verbose   bool
}

func main() {
	opts := &mainOptions{}
	cmd := newRootCmd(opts, runApp)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd(opts *mainOptions, run func(*mainOptions) error) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "screen-tool",
		Short:         "Screenshot, screen recording and annotation tool",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(opts)
		},
	}
	cmd.Flags().StringVar(&opts.envFile, "env", "", "Path to .env file (highest precedence)")
	cmd.Flags().StringVar(&opts.outputDir, "output-dir", "", "Default directory for captures and recordings")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Verbose output to stderr")
	return cmd
}

func (o *mainOptions) runtimeOptions() runtimeinit.Options {
	return runtimeinit.Options{
		LoadOptions: config.LoadOptions{
			EnvFileOverride:   o.envFile,
			OutputDirOverride: o.outputDir,
			LogLevelOverride:  o.logLevel,
		},
		Verbose:       o.verbose,
		InitClipboard: true,
	}
}

func runApp(opts *mainOptions) error {
	rt, err := runtimeinit.Bootstrap(opts.runtimeOptions())
	if err != nil {
		return err
	}
	cfg := rt.Config

	fyneApp := app.NewWithID(AppID)
	ui := gui.New(fyneApp, gui.Options{
		PreviewSize: cfg.PreviewSize,
		OutputDir:   cfg.OutputDir,
		Elapsed:     rt.Recorder.Elapsed,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rc := rt.RecordController(ui.ChoosePath)
	loop := eventloop.New(eventloop.Options{
		Capture: func(ctx context.Context) (session.CaptureResult, error) {
			return session.Capture(ctx, rt.CaptureOptions(ui.ChoosePath))
		},
		Record:    rc,
		Notifier:  ui.Notifier(),
		OnCapture: ui.CaptureDone,
		OnRecord: func(res session.ToggleResult) {
			ui.RecordToggled(res)
			if res.Started {
				go watchRecording(ctx, rt.Recorder, ui.RecordingFailed)
			}
		},
		OnBusy: ui.SetBusy,
	})
	ui.SetTriggers(loop)

	hk := hotkey.NewListener()
	if err := loop.BindHotkeys(hk, cfg.CaptureHotkey, cfg.RecordHotkey); err != nil {
		return err
	}
	if err := hk.Start(); err != nil {
		log.Warn().Err(err).Msg("global hotkeys unavailable, use the window or tray")
	}

	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		if err := loop.Run(ctx); err != nil && ctx.Err() == nil {
			log.Error().Err(err).Msg("event loop stopped")
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case sig := <-sigCh:
			log.Info().Str("signal", sig.String()).Msg("shutting down")
			stopRecording(rt.Recorder)
			fyne.Do(fyneApp.Quit)
		case <-ctx.Done():
		}
	}()

	if ui.EnableTray() {
		log.Info().Msg("system tray enabled")
	}
	log.Info().
		Str("capture_hotkey", cfg.CaptureHotkey).
		Str("record_hotkey", cfg.RecordHotkey).
		Msg("screen tool ready")
	ui.ShowAndRun()

	stopRecording(rt.Recorder)
	hk.Stop()
	cancel()
	select {
	case <-loopDone:
	case <-time.After(2 * time.Second):
		log.Warn().Msg("event loop did not stop in time")
	}
	log.Info().Msg("screen tool exited")
	return nil
}

// watchRecording reports an encoder that exits while still recording.
func watchRecording(ctx context.Context, rec *recorder.Recorder, failed func(error)) {
	done := rec.Done()
	if done == nil {
		return
	}
	select {
	case <-done:
		if rec.State() == recorder.StateFailed {
			failed(rec.Err())
		}
	case <-ctx.Done():
	}
}

// stopRecording finalizes an in-progress recording so the file stays playable.
func stopRecording(rec *recorder.Recorder) {
	if !rec.Recording() {
		return
	}
	res, err := rec.Stop()
	if err != nil {
		log.Warn().Err(err).Msg("failed to stop recording on exit")
		return
	}
	log.Info().Str("path", res.Path).Msg("recording saved on exit")
}
