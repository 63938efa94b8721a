package gui

import (
	"fmt"
	"time"

	"fyne.io/fyne/v2"
)

// TimerText formats the recording timer label in whole seconds.
func TimerText(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	return fmt.Sprintf("Recording time: %ds", int(d/time.Second))
}

// startTimer refreshes the timer label once a second. Main goroutine only.
func (g *App) startTimer() {
	g.stopTimer()
	if g.opts.Elapsed == nil {
		return
	}
	stop := make(chan struct{})
	g.timerStop = stop
	elapsed := g.opts.Elapsed

	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				text := TimerText(elapsed())
				fyne.Do(func() {
					select {
					case <-stop:
					default:
						g.timer.SetText(text)
					}
				})
			}
		}
	}()
}

func (g *App) stopTimer() {
	if g.timerStop != nil {
		close(g.timerStop)
		g.timerStop = nil
	}
}
