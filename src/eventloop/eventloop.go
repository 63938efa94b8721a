package eventloop

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"screen-tool/src/notification"
	"screen-tool/src/session"
	"screen-tool/src/worker"
)

const appTitle = "Screen Tool"

// CaptureFunc runs one interactive capture.
type CaptureFunc func(ctx context.Context) (session.CaptureResult, error)

// Toggler starts or stops a recording.
type Toggler interface {
	Toggle(ctx context.Context) (session.ToggleResult, error)
}

// Registrar binds a hotkey combination to a callback.
type Registrar interface {
	Register(combo string, cb func()) error
}

type Options struct {
	Capture  CaptureFunc
	Record   Toggler
	Notifier notification.Notifier
	// OnCapture and OnRecord run on the loop goroutine after a job succeeds.
	OnCapture func(session.CaptureResult)
	OnRecord  func(session.ToggleResult)
	// OnBusy reports when a job starts and finishes.
	OnBusy func(busy bool)
}

// Loop is the single-threaded coordinator for hotkey and menu triggered
// captures and recordings. Only one job runs at a time.
type Loop struct {
	opts      Options
	pool      *worker.Pool
	busy      bool
	results   chan result
	captureCh chan struct{}
	recordCh  chan struct{}
}

type result struct {
	kind    string
	capture session.CaptureResult
	toggle  session.ToggleResult
	err     error
}

func New(opts Options) *Loop {
	if opts.Notifier == nil {
		opts.Notifier = notification.Log{}
	}
	return &Loop{
		opts:      opts,
		pool:      worker.New(1),
		results:   make(chan result, 1),
		captureCh: make(chan struct{}, 4),
		recordCh:  make(chan struct{}, 4),
	}
}

// TriggerCapture requests a capture. It never blocks; excess requests are dropped.
func (l *Loop) TriggerCapture() {
	select {
	case l.captureCh <- struct{}{}:
	default:
	}
}

// TriggerRecord requests a recording toggle.
func (l *Loop) TriggerRecord() {
	select {
	case l.recordCh <- struct{}{}:
	default:
	}
}

// BindHotkeys registers the capture and record combinations. Empty
// combinations are skipped.
func (l *Loop) BindHotkeys(reg Registrar, captureCombo, recordCombo string) error {
	if captureCombo != "" {
		if err := reg.Register(captureCombo, l.TriggerCapture); err != nil {
			return fmt.Errorf("capture hotkey: %w", err)
		}
	}
	if recordCombo != "" {
		if err := reg.Register(recordCombo, l.TriggerRecord); err != nil {
			return fmt.Errorf("record hotkey: %w", err)
		}
	}
	return nil
}

// Run processes triggers until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	defer l.pool.Close()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.captureCh:
			l.handleCapture(ctx)
		case <-l.recordCh:
			l.handleRecord(ctx)
		case res := <-l.results:
			l.handleResult(res)
		}
	}
}

func (l *Loop) setBusy(b bool) {
	l.busy = b
	if l.opts.OnBusy != nil {
		l.opts.OnBusy(b)
	}
}

func (l *Loop) handleCapture(ctx context.Context) {
	if l.opts.Capture == nil {
		return
	}
	l.submit(ctx, "capture", func(ctx context.Context) result {
		res, err := l.opts.Capture(ctx)
		return result{kind: "capture", capture: res, err: err}
	})
}

func (l *Loop) handleRecord(ctx context.Context) {
	if l.opts.Record == nil {
		return
	}
	l.submit(ctx, "record", func(ctx context.Context) result {
		res, err := l.opts.Record.Toggle(ctx)
		return result{kind: "record", toggle: res, err: err}
	})
}

func (l *Loop) submit(ctx context.Context, name string, run func(ctx context.Context) result) {
	if l.busy {
		log.Info().Str("job", name).Msg("busy, skipping")
		l.opts.Notifier.Notify(appTitle, "Busy, please retry")
		return
	}

	l.setBusy(true)
	submitted := l.pool.Submit(ctx, worker.Job{Name: name, Run: func(ctx context.Context) {
		res := result{kind: name}
		// Every submitted job must post a result or the loop stays busy.
		defer func() {
			if r := recover(); r != nil {
				log.Error().Interface("panic", r).Str("job", name).Msg("job panicked")
				res = result{kind: name, err: fmt.Errorf("panic: %v", r)}
			}
			select {
			case l.results <- res:
			case <-ctx.Done():
			}
		}()
		res = run(ctx)
	}})
	if !submitted {
		l.setBusy(false)
		l.opts.Notifier.Notify(appTitle, "Busy, please retry")
	}
}

func (l *Loop) handleResult(res result) {
	defer l.setBusy(false)

	if errors.Is(res.err, session.ErrCancelled) {
		log.Info().Str("job", res.kind).Msg("cancelled by user")
		return
	}
	if res.err != nil {
		log.Error().Err(res.err).Str("job", res.kind).Msg("job failed")
		l.opts.Notifier.Notify(failureTitle(res.kind), res.err.Error())
		return
	}

	switch res.kind {
	case "capture":
		msg := "Capture saved: " + res.capture.Path
		if res.capture.Copied {
			msg += " (copied to clipboard)"
		}
		l.opts.Notifier.Notify(appTitle, msg)
		if l.opts.OnCapture != nil {
			l.opts.OnCapture(res.capture)
		}
	case "record":
		if res.toggle.Started {
			l.opts.Notifier.Notify(appTitle, "Recording started: "+res.toggle.Path)
		} else {
			l.opts.Notifier.Notify(appTitle, fmt.Sprintf("Recording finished: %s (%ds)", res.toggle.Path, int(res.toggle.Duration.Seconds())))
		}
		if l.opts.OnRecord != nil {
			l.opts.OnRecord(res.toggle)
		}
	}
}

func failureTitle(kind string) string {
	if kind == "record" {
		return "Recording failed"
	}
	return "Capture failed"
}
