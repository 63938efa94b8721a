package hotkey

import (
	"testing"

	hook "github.com/robotn/gohook"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		combo string
		want  []string
	}{
		{"Ctrl+Shift+S", []string{"ctrl", "shift", "s"}},
		{"control + alt + p", []string{"ctrl", "alt", "p"}},
		{"Super+F12", []string{"cmd", "f12"}},
		{"Escape", []string{"esc"}},
	}
	for _, tt := range tests {
		t.Run(tt.combo, func(t *testing.T) {
			got, err := Parse(tt.combo)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseErrors(t *testing.T) {
	for _, combo := range []string{"", "Ctrl+", "Ctrl+Hyper", "Ctrl+ctrl+S"} {
		_, err := Parse(combo)
		assert.Error(t, err, combo)
	}
}

func keyDown(name string) hook.Event {
	return hook.Event{Kind: hook.KeyDown, Keycode: hook.Keycode[name]}
}
func keyUp(name string) hook.Event { return hook.Event{Kind: hook.KeyUp, Keycode: hook.Keycode[name]} }

func TestDispatchFiresOnFullCombination(t *testing.T) {
	l := NewListener()
	fired := 0
	require.NoError(t, l.Register("Ctrl+Shift+S", func() { fired++ }))

	l.dispatch(keyDown("ctrl"))
	l.dispatch(keyDown("s"))
	assert.Equal(t, 0, fired)

	l.dispatch(keyDown("shift"))
	assert.Equal(t, 1, fired)

	// states reset after a match; repeating one key alone does not refire
	l.dispatch(keyDown("s"))
	assert.Equal(t, 1, fired)
}

func TestDispatchReleaseClearsState(t *testing.T) {
	l := NewListener()
	fired := 0
	require.NoError(t, l.Register("Ctrl+R", func() { fired++ }))

	l.dispatch(keyDown("ctrl"))
	l.dispatch(keyUp("ctrl"))
	l.dispatch(keyDown("r"))
	assert.Equal(t, 0, fired)

	l.dispatch(keyDown("ctrl"))
	assert.Equal(t, 1, fired)
}

func TestDispatchSeparatesBindings(t *testing.T) {
	l := NewListener()
	var got []string
	require.NoError(t, l.Register("Ctrl+Shift+S", func() { got = append(got, "capture") }))
	require.NoError(t, l.Register("Ctrl+Shift+R", func() { got = append(got, "record") }))

	l.dispatch(keyDown("ctrl"))
	l.dispatch(keyDown("shift"))
	l.dispatch(keyDown("r"))
	assert.Equal(t, []string{"record"}, got)
}

func TestDispatchIgnoresMouse(t *testing.T) {
	l := NewListener()
	fired := false
	require.NoError(t, l.Register("S", func() { fired = true }))
	l.dispatch(hook.Event{Kind: hook.MouseDown, Keycode: hook.Keycode["s"]})
	assert.False(t, fired)
}

func TestRegisterRejectsUnknownKey(t *testing.T) {
	assert.Error(t, NewListener().Register("Ctrl+Nope", func() {}))
}

func TestStopWithoutStart(t *testing.T) {
	NewListener().Stop()
}
