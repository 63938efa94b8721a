package tray

import (
	"testing"

	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMenu(t *testing.T) {
	var got []string
	m := Menu("Screen Tool", Actions{
		Capture: func() { got = append(got, "capture") },
		Record:  func() { got = append(got, "record") },
		Show:    func() { got = append(got, "show") },
		Quit:    func() { got = append(got, "quit") },
	})

	require.Len(t, m.Items, 5)
	assert.Equal(t, "Capture Area", m.Items[0].Label)
	assert.True(t, m.Items[2].IsSeparator)
	assert.True(t, m.Items[4].IsQuit)

	for _, item := range m.Items {
		if item.Action != nil {
			item.Action()
		}
	}
	assert.Equal(t, []string{"capture", "record", "show", "quit"}, got)
}

func TestSetupMatchesDriver(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()
	_, isDesktop := a.(desktop.App)
	assert.Equal(t, isDesktop, Setup(a, "Screen Tool", Actions{}))
}

func TestIcon(t *testing.T) {
	assert.Equal(t, "screen-tool.svg", Icon.Name())
	assert.Contains(t, string(Icon.Content()), "<svg")
}
