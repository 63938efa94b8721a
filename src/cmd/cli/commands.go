package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"screen-tool/src/annotate"
	"screen-tool/src/audio"
	"screen-tool/src/clipboard"
	"screen-tool/src/region"
	"screen-tool/src/screenshot"
	"screen-tool/src/session"
)

// fixedPath returns a chooser that always answers path. An empty path keeps
// the suggested one.
func fixedPath(path, filter string) session.PathChooser {
	if path == "" {
		return session.AutoPath()
	}
	return func(ctx context.Context, suggested string, filters []string) (session.Destination, bool, error) {
		return session.Destination{Path: path, Filter: filter}, true, nil
	}
}

func selectorFor(geometry string, interactive region.Selector) (region.Selector, error) {
	if geometry == "" {
		return interactive, nil
	}
	r, err := region.ParseGeometry(geometry)
	if err != nil {
		return nil, err
	}
	return region.FixedSelector(r), nil
}

type shotOptions struct {
	out       string
	format    string
	geometry  string
	clipboard bool
}

func newShotCmd(g *globalOptions, boot bootstrapFunc) *cobra.Command {
	opts := &shotOptions{}
	cmd := &cobra.Command{
		Use:   "shot",
		Short: "Select a region and save a screenshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShot(cmd, g, opts, boot)
		},
	}
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "Output file (default: timestamped name in the output dir)")
	cmd.Flags().StringVar(&opts.format, "format", "png", "Image format when --out has no extension: png or jpg")
	cmd.Flags().StringVar(&opts.geometry, "geometry", "", "Capture WxH+X+Y instead of selecting interactively")
	cmd.Flags().BoolVar(&opts.clipboard, "clipboard", false, "Also copy the capture to the clipboard")
	return cmd
}

func runShot(cmd *cobra.Command, g *globalOptions, opts *shotOptions, boot bootstrapFunc) error {
	format, err := screenshot.ParseFormat(opts.format)
	if err != nil {
		return err
	}
	rt, err := boot(g.runtimeOptions())
	if err != nil {
		return err
	}
	sel, err := selectorFor(opts.geometry, rt.Selector)
	if err != nil {
		return err
	}

	filter := ""
	if opts.out != "" && filepath.Ext(opts.out) == "" {
		filter = filterFor(format)
	}
	co := rt.CaptureOptions(fixedPath(opts.out, filter))
	co.Selector = sel
	co.Format = format
	if opts.clipboard {
		if err := clipboard.Init(); err != nil {
			return err
		}
		co.Clipboard = clipboard.Writer{}
	}

	res, err := session.Capture(cmd.Context(), co)
	if errors.Is(err, session.ErrCancelled) {
		fmt.Fprintln(cmd.ErrOrStderr(), "Capture cancelled")
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), res.Path)
	if res.Copied {
		fmt.Fprintln(cmd.ErrOrStderr(), "Copied to clipboard")
	}
	return nil
}

func filterFor(f screenshot.Format) string {
	if f == screenshot.JPEG {
		return screenshot.FilterJPEG
	}
	return screenshot.FilterPNG
}

type recordOptions struct {
	out         string
	duration    time.Duration
	geometry    string
	noAudio     bool
	audioSource string
}

func newRecordCmd(g *globalOptions, boot bootstrapFunc) *cobra.Command {
	opts := &recordOptions{}
	cmd := &cobra.Command{
		Use:   "record",
		Short: "Record a region until interrupted or the duration elapses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runRecord(ctx, cmd, g, opts, boot)
		},
	}
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "Output MP4 file (default: timestamped name in the output dir)")
	cmd.Flags().DurationVarP(&opts.duration, "duration", "d", 0, "Stop after this long (0 waits for Ctrl+C)")
	cmd.Flags().StringVar(&opts.geometry, "geometry", "", "Record WxH+X+Y instead of selecting interactively")
	cmd.Flags().BoolVar(&opts.noAudio, "no-audio", false, "Record video only")
	cmd.Flags().StringVar(&opts.audioSource, "audio-source", "", "Pulse source to record instead of the detected monitor")
	return cmd
}

func runRecord(ctx context.Context, cmd *cobra.Command, g *globalOptions, opts *recordOptions, boot bootstrapFunc) error {
	if opts.duration < 0 {
		return fmt.Errorf("invalid duration %s", opts.duration)
	}
	rt, err := boot(g.runtimeOptions())
	if err != nil {
		return err
	}
	sel, err := selectorFor(opts.geometry, rt.Selector)
	if err != nil {
		return err
	}

	rc := rt.RecordController(fixedPath(opts.out, ""))
	rc.Selector = sel
	if opts.noAudio {
		rc.DisableAudio = true
	}
	if opts.audioSource != "" {
		rc.Audio = audio.NewLister(rt.Runner, rt.Config.AudioListerCommand, opts.audioSource)
	}

	started, err := rc.Start(ctx)
	if errors.Is(err, session.ErrCancelled) {
		fmt.Fprintln(cmd.ErrOrStderr(), "Recording cancelled")
		return nil
	}
	if err != nil {
		return err
	}
	if started.Audio == "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "Recording %s to %s (no audio)\n", started.Region, started.Path)
	} else {
		fmt.Fprintf(cmd.ErrOrStderr(), "Recording %s to %s (audio: %s)\n", started.Region, started.Path, started.Audio)
	}

	var timeout <-chan time.Time
	if opts.duration > 0 {
		timer := time.NewTimer(opts.duration)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case <-ctx.Done():
		log.Info().Msg("interrupted, stopping recording")
	case <-timeout:
		log.Info().Dur("duration", opts.duration).Msg("duration reached")
	case <-rt.Recorder.Done():
		return fmt.Errorf("recording failed: %w", rt.Recorder.Err())
	}

	res, err := rc.Stop()
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), res.Path)
	fmt.Fprintf(cmd.ErrOrStderr(), "Recorded %ds\n", int(res.Duration.Seconds()))
	return nil
}

type annotateOptions struct {
	in       string
	out      string
	shapes   []string
	color    string
	width    float64
	fontSize float64
}

func newAnnotateCmd(g *globalOptions, boot bootstrapFunc) *cobra.Command {
	opts := &annotateOptions{}
	def := annotate.DefaultStyle()
	cmd := &cobra.Command{
		Use:   "annotate",
		Short: "Draw shapes and text onto an image",
		Long: `Draw shapes and text onto an image. Each --shape takes one of:

  line:X1,Y1,X2,Y2[:COLOR[:WIDTH]]
  rect:X1,Y1,X2,Y2[:COLOR[:WIDTH]]
  triangle:X1,Y1,X2,Y2[:COLOR[:WIDTH]]
  circle:CX,CY,R[:COLOR[:WIDTH]]
  free:X1,Y1,X2,Y2,...[:COLOR[:WIDTH]]
  text:X,Y:MESSAGE
  text:X,Y:COLOR:SIZE:MESSAGE`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnnotate(cmd, g, opts, boot)
		},
	}
	cmd.Flags().StringVarP(&opts.in, "in", "i", "", "Source image")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "Output image (default: NAME-annotated next to the source)")
	cmd.Flags().StringArrayVarP(&opts.shapes, "shape", "s", nil, "Shape to draw (repeatable)")
	cmd.Flags().StringVar(&opts.color, "color", "red", "Default color: palette name or #rrggbb")
	cmd.Flags().Float64Var(&opts.width, "width", def.Width, "Default stroke width")
	cmd.Flags().Float64Var(&opts.fontSize, "font-size", def.FontSize, "Default text size")
	_ = cmd.MarkFlagRequired("in")
	return cmd
}

func runAnnotate(cmd *cobra.Command, g *globalOptions, opts *annotateOptions, boot bootstrapFunc) error {
	if len(opts.shapes) == 0 {
		return errors.New("at least one --shape is required")
	}
	c, err := annotate.ParseColor(opts.color)
	if err != nil {
		return err
	}
	if opts.width <= 0 || opts.fontSize <= 0 {
		return errors.New("width and font size must be positive")
	}
	style := annotate.Style{Color: c, Width: opts.width, FontSize: opts.fontSize}

	var shapes []annotate.Shape
	for _, desc := range opts.shapes {
		parsed, err := annotate.ParseShapes(desc, style)
		if err != nil {
			return err
		}
		shapes = append(shapes, parsed...)
	}

	if _, err := boot(g.runtimeOptions()); err != nil {
		return err
	}
	img, err := screenshot.Load(opts.in)
	if err != nil {
		return err
	}

	ed := annotate.NewEditor(img)
	added := 0
	for _, s := range shapes {
		if ed.Add(s) {
			added++
		} else {
			log.Warn().Str("kind", s.Kind.String()).Msg("skipping empty shape")
		}
	}

	out := opts.out
	if out == "" {
		out = annotatedPath(opts.in)
	}
	if err := ed.Save(out); err != nil {
		return err
	}
	log.Info().Str("path", out).Int("shapes", added).Msg("annotation saved")
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}

func annotatedPath(in string) string {
	ext := filepath.Ext(in)
	if ext == "" {
		ext = ".png"
	}
	return in[:len(in)-len(filepath.Ext(in))] + "-annotated" + ext
}

func newSourcesCmd(g *globalOptions, boot bootstrapFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "sources",
		Short: "List audio sources; monitors are marked with *",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := boot(g.runtimeOptions())
			if err != nil {
				return err
			}
			sources, err := rt.Audio.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(sources) == 0 {
				fmt.Fprintln(cmd.ErrOrStderr(), "No audio sources")
				return nil
			}
			w := cmd.OutOrStdout()
			for _, s := range sources {
				mark := " "
				if s.Monitor() {
					mark = "*"
				}
				fmt.Fprintf(w, "%s %s\t%s\n", mark, s.Name, s.State)
			}
			return nil
		},
	}
}
