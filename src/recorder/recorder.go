package recorder

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"screen-tool/src/execx"
	"screen-tool/src/logutil"
	"screen-tool/src/region"
)

var (
	ErrAlreadyRecording = errors.New("recording already in progress")
	ErrNotRecording     = errors.New("no active recording to stop")
)

// FilterMP4 is the save-dialog filter label for recordings.
const FilterMP4 = "MP4 (*.mp4)"

const defaultStopGrace = 5 * time.Second

// State represents the lifecycle of the encoder child process.
type State int

const (
	StateStopped State = iota
	StateStarting
	StateRecording
	StateStopping
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StateStarting:
		return "starting"
	case StateRecording:
		return "recording"
	case StateStopping:
		return "stopping"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Options describe one recording.
type Options struct {
	Display      string
	Region       region.Rect
	Framerate    int
	VideoCodec   string
	Preset       string
	AudioSource  string
	AudioCodec   string
	AudioBitrate string
	ExtraArgs    []string
	Path         string
}

// Args builds the encoder command line: x11grab for the region, an optional
// pulse input, H.264 video and AAC audio.
func Args(o Options) []string {
	display := o.Display
	if display == "" {
		display = ":0.0"
	}
	framerate := o.Framerate
	if framerate <= 0 {
		framerate = 30
	}

	args := []string{
		"-y",
		"-video_size", o.Region.VideoSize(),
		"-framerate", strconv.Itoa(framerate),
		"-f", "x11grab", "-i", display + "+" + o.Region.Offset(),
	}
	if o.AudioSource != "" {
		args = append(args, "-f", "pulse", "-i", o.AudioSource)
	}
	args = append(args, "-c:v", orDefault(o.VideoCodec, "libx264"), "-preset", orDefault(o.Preset, "ultrafast"))
	if o.AudioSource != "" {
		args = append(args, "-c:a", orDefault(o.AudioCodec, "aac"), "-b:a", orDefault(o.AudioBitrate, "128k"))
	}
	args = append(args, o.ExtraArgs...)
	return append(args, o.Path)
}

// EnsureVideoExtension appends .mp4 when missing.
func EnsureVideoExtension(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".mp4") {
		return path
	}
	return path + ".mp4"
}

// Result describes a finished recording.
type Result struct {
	Path     string
	Duration time.Duration
}

// Recorder owns at most one encoder process at a time.
type Recorder struct {
	runner    execx.Runner
	command   string
	stopGrace time.Duration
	now       func() time.Time

	mu      sync.Mutex
	state   State
	proc    execx.Process
	path    string
	started time.Time
	done    chan struct{}
	lastErr error
}

func New(runner execx.Runner, command string) *Recorder {
	if command == "" {
		command = "ffmpeg"
	}
	return &Recorder{
		runner:    runner,
		command:   command,
		stopGrace: defaultStopGrace,
		now:       time.Now,
	}
}

// SetStopGrace sets how long Stop waits after interrupting before it kills.
func (r *Recorder) SetStopGrace(d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopGrace = d
}

// Start launches the encoder for opts. The region is rounded to even
// dimensions first.
func (r *Recorder) Start(ctx context.Context, opts Options) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	if r.state == StateStarting || r.state == StateRecording || r.state == StateStopping {
		r.mu.Unlock()
		log.Warn().Str("reason", "already_in_progress").Msg("recording start failed")
		return ErrAlreadyRecording
	}

	opts.Region = opts.Region.Even()
	if opts.Region.Empty() {
		r.mu.Unlock()
		return fmt.Errorf("invalid region dimensions: width=%d, height=%d", opts.Region.Width, opts.Region.Height)
	}
	if opts.Path == "" {
		r.mu.Unlock()
		return errors.New("recording path is required")
	}
	r.state = StateStarting
	r.lastErr = nil
	r.mu.Unlock()

	args := Args(opts)
	proc, err := r.runner.Start(r.command, args...)

	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		r.state = StateFailed
		r.lastErr = err
		log.Error().Err(err).Str("path", logutil.SanitizeForLog(opts.Path)).Msg("recording start failed")
		return fmt.Errorf("failed to start %s: %w", r.command, err)
	}

	r.state = StateRecording
	r.proc = proc
	r.path = opts.Path
	r.started = r.now()
	r.done = make(chan struct{})
	go r.watch(proc, r.done)

	log.Info().
		Str("path", logutil.SanitizeForLog(opts.Path)).
		Str("region", opts.Region.Geometry()).
		Bool("audio", opts.AudioSource != "").
		Int("pid", proc.Pid()).
		Msg("recording started")
	return nil
}

// watch notices the encoder exiting on its own.
func (r *Recorder) watch(proc execx.Process, done chan struct{}) {
	err := proc.Wait()

	r.mu.Lock()
	defer r.mu.Unlock()
	defer close(done)
	if r.proc != proc || r.state != StateRecording {
		return
	}
	r.state = StateFailed
	r.proc = nil
	if err == nil {
		err = errors.New("encoder exited unexpectedly")
	}
	r.lastErr = err
	log.Error().Err(err).Str("path", logutil.SanitizeForLog(r.path)).Msg("encoder exited while recording")
}

// Stop interrupts the encoder so it finalizes the file and waits for it. If
// it has not exited after the stop grace period it is killed.
func (r *Recorder) Stop() (Result, error) {
	r.mu.Lock()
	if r.state != StateRecording || r.proc == nil {
		r.mu.Unlock()
		log.Warn().Str("reason", "no_active_recording").Msg("recording stop failed")
		return Result{}, ErrNotRecording
	}
	r.state = StateStopping
	proc, done, grace := r.proc, r.done, r.stopGrace
	res := Result{Path: r.path, Duration: r.now().Sub(r.started)}
	r.mu.Unlock()

	log.Info().Int("pid", proc.Pid()).Msg("stopping recording")
	if err := proc.Interrupt(); err != nil {
		log.Warn().Err(err).Msg("interrupt failed, killing encoder")
		_ = proc.Kill()
	}

	select {
	case <-done:
	case <-time.After(grace):
		log.Warn().Dur("grace", grace).Msg("encoder did not stop in time, killing")
		_ = proc.Kill()
		<-done
	}

	r.mu.Lock()
	r.state = StateStopped
	r.proc = nil
	r.path = ""
	r.mu.Unlock()

	log.Info().Str("file", logutil.SanitizeForLog(res.Path)).Dur("duration", res.Duration).Msg("recording stopped")
	return res, nil
}

func (r *Recorder) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *Recorder) Recording() bool {
	return r.State() == StateRecording
}

// Elapsed is the time since the current recording started, or zero.
func (r *Recorder) Elapsed() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != StateRecording && r.state != StateStopping {
		return 0
	}
	return r.now().Sub(r.started)
}

// Done is closed when the current encoder process exits, for any reason.
// It returns nil when nothing was ever started.
func (r *Recorder) Done() <-chan struct{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.done
}

// Err returns the error that put the recorder in the failed state.
func (r *Recorder) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastErr
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
