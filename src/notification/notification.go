package notification

import (
	"fyne.io/fyne/v2"
	"github.com/rs/zerolog/log"
)

const maxBodyLength = 200

// Notifier reports short user-facing messages.
type Notifier interface {
	Notify(title, message string)
}

// Func adapts a function to Notifier.
type Func func(title, message string)

func (f Func) Notify(title, message string) { f(title, message) }

// Log writes notifications to the log only, for headless runs.
type Log struct{}

func (Log) Notify(title, message string) {
	log.Info().Str("title", title).Str("message", Truncate(message)).Msg("notification")
}

// Fyne shows desktop notifications through the running app.
type Fyne struct {
	App fyne.App
}

func (n Fyne) Notify(title, message string) {
	Log{}.Notify(title, message)
	if n.App == nil {
		return
	}
	n.App.SendNotification(fyne.NewNotification(title, Truncate(message)))
}

// Multi fans a notification out to several notifiers.
type Multi []Notifier

func (m Multi) Notify(title, message string) {
	for _, n := range m {
		if n != nil {
			n.Notify(title, message)
		}
	}
}

// Truncate shortens text to 200 characters for display.
func Truncate(text string) string {
	r := []rune(text)
	if len(r) <= maxBodyLength {
		return text
	}
	return string(r[:maxBodyLength]) + "..."
}
