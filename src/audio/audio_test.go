package audio

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"screen-tool/src/execx/execxtest"
)

const pactlOutput = "0\talsa_input.pci-0000_00_1f.3.analog-stereo\tmodule-alsa-card.c\ts16le 2ch 44100Hz\tSUSPENDED\n" +
	"1\talsa_output.pci-0000_00_1f.3-platform-skl_hda_dsp_generic.HiFi__hw_sofhdadsp__sink.monitor\tmodule-alsa-card.c\ts16le 2ch 48000Hz\tRUNNING\n" +
	"2\tbluez_sink.monitor\tmodule-bluez5-device.c\ts16le 2ch 44100Hz\tIDLE\n"

func TestParseSources(t *testing.T) {
	sources := ParseSources(pactlOutput + "\n\ngarbage\n")
	require.Len(t, sources, 3)

	assert.Equal(t, "0", sources[0].Index)
	assert.Equal(t, "alsa_input.pci-0000_00_1f.3.analog-stereo", sources[0].Name)
	assert.Equal(t, "module-alsa-card.c", sources[0].Driver)
	assert.Equal(t, "s16le 2ch 44100Hz", sources[0].Spec)
	assert.Equal(t, "SUSPENDED", sources[0].State)
	assert.False(t, sources[0].Monitor())
	assert.True(t, sources[1].Monitor())
}

func TestPickMonitorTakesFirst(t *testing.T) {
	s, ok := PickMonitor(ParseSources(pactlOutput))
	require.True(t, ok)
	assert.Equal(t, "alsa_output.pci-0000_00_1f.3-platform-skl_hda_dsp_generic.HiFi__hw_sofhdadsp__sink.monitor", s.Name)

	_, ok = PickMonitor(ParseSources("0\tmic\tmodule-alsa-card.c\ts16le 1ch 16000Hz\tIDLE\n"))
	assert.False(t, ok)
}

func TestDetect(t *testing.T) {
	runner := execxtest.NewRunner().On("pactl", execxtest.Response{Output: []byte(pactlOutput)})
	l := NewLister(runner, "", "")

	name, err := l.Detect(context.Background())
	require.NoError(t, err)
	assert.Contains(t, name, ".monitor")
	assert.Equal(t, "pactl list short sources", runner.Calls()[0].Line())
}

func TestDetectOverrideSkipsLister(t *testing.T) {
	runner := execxtest.NewRunner()
	l := NewLister(runner, "pactl", "my.monitor")

	name, err := l.Detect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "my.monitor", name)
	assert.Empty(t, runner.Calls())
}

func TestDetectNoSource(t *testing.T) {
	runner := execxtest.NewRunner().On("pactl", execxtest.Response{Output: []byte("")})
	_, err := NewLister(runner, "pactl", "").Detect(context.Background())
	assert.ErrorIs(t, err, ErrNoSource)
}

func TestDetectListerFails(t *testing.T) {
	runner := execxtest.NewRunner().On("pactl", execxtest.Response{Err: errors.New("connection refused")})
	_, err := NewLister(runner, "pactl", "").Detect(context.Background())
	assert.ErrorContains(t, err, "connection refused")
	assert.NotErrorIs(t, err, ErrNoSource)
}
