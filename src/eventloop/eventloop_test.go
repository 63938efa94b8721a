package eventloop

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"screen-tool/src/notification"
	"screen-tool/src/session"
)

type note struct{ title, message string }

func collect(ch chan note) notification.Notifier {
	return notification.Func(func(title, message string) { ch <- note{title, message} })
}

type toggler struct {
	results []session.ToggleResult
	calls   int
}

func (t *toggler) Toggle(ctx context.Context) (session.ToggleResult, error) {
	res := t.results[t.calls%len(t.results)]
	t.calls++
	return res, nil
}

func runLoop(t *testing.T, l *Loop) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.ErrorIs(t, err, context.Canceled)
		case <-time.After(2 * time.Second):
			t.Error("loop did not stop")
		}
	})
}

func next(t *testing.T, ch chan note) note {
	t.Helper()
	select {
	case n := <-ch:
		return n
	case <-time.After(2 * time.Second):
		t.Fatal("no notification")
		return note{}
	}
}

func TestCaptureNotifiesAndCallsBack(t *testing.T) {
	notes := make(chan note, 4)
	captured := make(chan session.CaptureResult, 1)
	l := New(Options{
		Capture: func(ctx context.Context) (session.CaptureResult, error) {
			return session.CaptureResult{Path: "/tmp/shot.png", Copied: true}, nil
		},
		Notifier:  collect(notes),
		OnCapture: func(r session.CaptureResult) { captured <- r },
	})
	runLoop(t, l)

	l.TriggerCapture()
	n := next(t, notes)
	assert.Equal(t, appTitle, n.title)
	assert.Equal(t, "Capture saved: /tmp/shot.png (copied to clipboard)", n.message)
	assert.Equal(t, "/tmp/shot.png", (<-captured).Path)
}

func TestCaptureFailureAndCancel(t *testing.T) {
	notes := make(chan note, 4)
	errs := make(chan error, 2)
	idle := make(chan bool, 8)
	l := New(Options{
		Capture: func(ctx context.Context) (session.CaptureResult, error) {
			return session.CaptureResult{}, <-errs
		},
		Notifier: collect(notes),
		OnBusy: func(b bool) {
			if !b {
				idle <- true
			}
		},
	})
	runLoop(t, l)

	errs <- session.ErrCancelled
	l.TriggerCapture()
	<-idle
	assert.Empty(t, notes, "cancel is silent")

	errs <- errors.New("maim: exit status 1")
	l.TriggerCapture()
	n := next(t, notes)
	assert.Equal(t, "Capture failed", n.title)
	assert.Equal(t, "maim: exit status 1", n.message)
}

func TestPanickingJobReleasesLoop(t *testing.T) {
	notes := make(chan note, 4)
	calls := 0
	l := New(Options{
		Capture: func(ctx context.Context) (session.CaptureResult, error) {
			calls++
			if calls == 1 {
				panic("nil image")
			}
			return session.CaptureResult{Path: "b.png"}, nil
		},
		Notifier: collect(notes),
	})
	runLoop(t, l)

	l.TriggerCapture()
	n := next(t, notes)
	assert.Equal(t, "Capture failed", n.title)
	assert.Equal(t, "panic: nil image", n.message)

	l.TriggerCapture()
	assert.Equal(t, "Capture saved: b.png", next(t, notes).message)
}

func TestBusySkipsSecondTrigger(t *testing.T) {
	notes := make(chan note, 4)
	release := make(chan struct{})
	started := make(chan struct{}, 1)
	var busy []bool
	busyCh := make(chan bool, 8)
	l := New(Options{
		Capture: func(ctx context.Context) (session.CaptureResult, error) {
			started <- struct{}{}
			<-release
			return session.CaptureResult{Path: "a.png"}, nil
		},
		Notifier: collect(notes),
		OnBusy:   func(b bool) { busyCh <- b },
	})
	runLoop(t, l)

	l.TriggerCapture()
	<-started
	l.TriggerCapture()
	assert.Equal(t, "Busy, please retry", next(t, notes).message)

	close(release)
	assert.Equal(t, "Capture saved: a.png", next(t, notes).message)
	busy = append(busy, <-busyCh, <-busyCh)
	assert.Equal(t, []bool{true, false}, busy)
}

func TestRecordToggleMessages(t *testing.T) {
	notes := make(chan note, 4)
	toggles := make(chan session.ToggleResult, 2)
	tg := &toggler{results: []session.ToggleResult{
		{Started: true, Path: "/tmp/rec.mp4"},
		{Path: "/tmp/rec.mp4", Duration: 12*time.Second + 400*time.Millisecond},
	}}
	l := New(Options{Record: tg, Notifier: collect(notes), OnRecord: func(r session.ToggleResult) { toggles <- r }})
	runLoop(t, l)

	l.TriggerRecord()
	assert.Equal(t, "Recording started: /tmp/rec.mp4", next(t, notes).message)
	assert.True(t, (<-toggles).Started)

	l.TriggerRecord()
	assert.Equal(t, "Recording finished: /tmp/rec.mp4 (12s)", next(t, notes).message)
	assert.False(t, (<-toggles).Started)
}

type fakeRegistrar struct {
	combos []string
	err    error
}

func (r *fakeRegistrar) Register(combo string, cb func()) error {
	if r.err != nil {
		return r.err
	}
	r.combos = append(r.combos, combo)
	return nil
}

func TestBindHotkeys(t *testing.T) {
	l := New(Options{})
	reg := &fakeRegistrar{}
	require.NoError(t, l.BindHotkeys(reg, "Ctrl+Shift+S", ""))
	assert.Equal(t, []string{"Ctrl+Shift+S"}, reg.combos)

	bad := &fakeRegistrar{err: errors.New("unknown key")}
	err := l.BindHotkeys(bad, "", "Ctrl+Nope")
	assert.ErrorContains(t, err, "record hotkey")
}

func TestTriggersNeverBlock(t *testing.T) {
	l := New(Options{})
	for i := 0; i < 10; i++ {
		l.TriggerCapture()
		l.TriggerRecord()
	}
	assert.Len(t, l.captureCh, cap(l.captureCh))
}
