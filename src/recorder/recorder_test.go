package recorder

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"screen-tool/src/execx/execxtest"
	"screen-tool/src/region"
)

func testOptions(path string) Options {
	return Options{
		Display:      ":0.0",
		Region:       region.Rect{X: 10, Y: 20, Width: 641, Height: 480},
		Framerate:    30,
		AudioSource:  "sink.monitor",
		AudioBitrate: "128k",
		Path:         path,
	}
}

func TestArgsWithAudio(t *testing.T) {
	got := strings.Join(Args(testOptions("/tmp/out.mp4")), " ")
	want := "-y -video_size 641x480 -framerate 30 -f x11grab -i :0.0+10,20 " +
		"-f pulse -i sink.monitor -c:v libx264 -preset ultrafast -c:a aac -b:a 128k /tmp/out.mp4"
	assert.Equal(t, want, got)
}

func TestArgsVideoOnly(t *testing.T) {
	opts := testOptions("/tmp/out.mp4")
	opts.AudioSource = ""
	opts.ExtraArgs = []string{"-crf", "23"}
	got := strings.Join(Args(opts), " ")
	assert.Equal(t, "-y -video_size 641x480 -framerate 30 -f x11grab -i :0.0+10,20 -c:v libx264 -preset ultrafast -crf 23 /tmp/out.mp4", got)
	assert.NotContains(t, got, "pulse")
}

func TestArgsDefaults(t *testing.T) {
	got := Args(Options{Region: region.Rect{Width: 2, Height: 2}, Path: "o.mp4"})
	assert.Contains(t, got, ":0.0+0,0")
	assert.Contains(t, got, "30")
}

func TestEnsureVideoExtension(t *testing.T) {
	assert.Equal(t, "clip.mp4", EnsureVideoExtension("clip"))
	assert.Equal(t, "clip.MP4", EnsureVideoExtension("clip.MP4"))
	assert.Equal(t, "clip.mkv.mp4", EnsureVideoExtension("clip.mkv"))
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "recording", StateRecording.String())
	assert.Equal(t, "unknown", State(42).String())
}

func TestStartStop(t *testing.T) {
	runner := execxtest.NewRunner()
	rec := New(runner, "")
	clock := time.Unix(1000, 0)
	rec.now = func() time.Time { return clock }

	require.NoError(t, rec.Start(context.Background(), testOptions("/tmp/out.mp4")))
	assert.True(t, rec.Recording())
	assert.Equal(t, StateRecording, rec.State())

	calls := runner.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "ffmpeg", calls[0].Name)
	assert.Contains(t, calls[0].Args, "640x480", "region is rounded to even size")

	clock = clock.Add(7 * time.Second)
	assert.Equal(t, 7*time.Second, rec.Elapsed())

	res, err := rec.Stop()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/out.mp4", res.Path)
	assert.Equal(t, 7*time.Second, res.Duration)
	assert.Equal(t, StateStopped, rec.State())
	assert.Zero(t, rec.Elapsed())

	proc := runner.Started()[0]
	assert.Equal(t, 1, proc.Interrupts())
	assert.False(t, proc.Killed())
}

func TestStartTwiceFails(t *testing.T) {
	rec := New(execxtest.NewRunner(), "ffmpeg")
	require.NoError(t, rec.Start(context.Background(), testOptions("a.mp4")))
	defer rec.Stop()

	err := rec.Start(context.Background(), testOptions("b.mp4"))
	assert.ErrorIs(t, err, ErrAlreadyRecording)
}

func TestStopWithoutRecording(t *testing.T) {
	_, err := New(execxtest.NewRunner(), "ffmpeg").Stop()
	assert.ErrorIs(t, err, ErrNotRecording)
}

func TestStartValidation(t *testing.T) {
	rec := New(execxtest.NewRunner(), "ffmpeg")

	opts := testOptions("a.mp4")
	opts.Region = region.Rect{Width: 1, Height: 1}
	assert.Error(t, rec.Start(context.Background(), opts), "1x1 rounds to empty")

	assert.Error(t, rec.Start(context.Background(), testOptions("")))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, rec.Start(ctx, testOptions("a.mp4")), context.Canceled)
	assert.Equal(t, StateStopped, rec.State())
}

func TestStartFailure(t *testing.T) {
	runner := execxtest.NewRunner()
	runner.StartErr = errors.New("ffmpeg: not found")
	rec := New(runner, "ffmpeg")

	err := rec.Start(context.Background(), testOptions("a.mp4"))
	assert.ErrorContains(t, err, "not found")
	assert.Equal(t, StateFailed, rec.State())
	assert.Error(t, rec.Err())

	runner.StartErr = nil
	assert.NoError(t, rec.Start(context.Background(), testOptions("a.mp4")), "can retry after failure")
	_, _ = rec.Stop()
}

func TestStopKillsAfterGrace(t *testing.T) {
	runner := execxtest.NewRunner()
	rec := New(runner, "ffmpeg")
	rec.SetStopGrace(10 * time.Millisecond)

	require.NoError(t, rec.Start(context.Background(), testOptions("a.mp4")))
	proc := runner.Started()[0]
	proc.IgnoreInterrupt = true

	_, err := rec.Stop()
	require.NoError(t, err)
	assert.True(t, proc.Killed())
	assert.Equal(t, StateStopped, rec.State())
}

func TestEncoderExitMarksFailed(t *testing.T) {
	runner := execxtest.NewRunner()
	rec := New(runner, "ffmpeg")

	require.NoError(t, rec.Start(context.Background(), testOptions("a.mp4")))
	done := rec.Done()
	runner.Started()[0].Exit(errors.New("exit status 1"))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Done was not closed")
	}
	assert.Equal(t, StateFailed, rec.State())
	assert.ErrorContains(t, rec.Err(), "exit status 1")

	_, err := rec.Stop()
	assert.ErrorIs(t, err, ErrNotRecording)
}
