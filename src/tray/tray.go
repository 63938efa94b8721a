package tray

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"github.com/rs/zerolog/log"
)

// Actions are the callbacks behind the tray menu items.
type Actions struct {
	Capture func()
	Record  func()
	Show    func()
	Quit    func()
}

// Menu builds the tray menu: Capture, Record, Show, then Quit.
func Menu(title string, a Actions) *fyne.Menu {
	quit := fyne.NewMenuItem("Quit", a.Quit)
	quit.IsQuit = true
	return fyne.NewMenu(title,
		fyne.NewMenuItem("Capture Area", a.Capture),
		fyne.NewMenuItem("Record / Stop", a.Record),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Show Window", a.Show),
		quit,
	)
}

// Setup installs the tray menu when the driver supports one. It reports
// whether a tray is available.
func Setup(app fyne.App, title string, a Actions) bool {
	desk, ok := app.(desktop.App)
	if !ok {
		log.Info().Msg("system tray not supported by this driver")
		return false
	}
	desk.SetSystemTrayMenu(Menu(title, a))
	desk.SetSystemTrayIcon(Icon)
	log.Debug().Msg("system tray initialized")
	return true
}
