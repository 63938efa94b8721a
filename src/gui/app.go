package gui

import (
	"image"
	"path/filepath"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
	"github.com/rs/zerolog/log"

	"screen-tool/src/logutil"
	"screen-tool/src/notification"
	"screen-tool/src/screenshot"
	"screen-tool/src/session"
	"screen-tool/src/tray"
)

const (
	Title = "Screen Tool"

	labelCapture     = "Capture Area"
	labelRecord      = "Select Area and Record"
	labelStopRecord  = "Stop Recording"
	labelAnnotate    = "Annotate…"
	labelFinished    = "Recording finished"
	labelNoCapture   = "No capture yet"
	defaultPreviewPx = 200
)

// Triggers starts work on the event loop.
type Triggers interface {
	TriggerCapture()
	TriggerRecord()
}

type Options struct {
	PreviewSize int
	OutputDir   string
	// Elapsed reports the running recording time for the timer label.
	Elapsed func() time.Duration
}

// App is the main window: capture and record buttons, a preview of the
// last capture, and the recording timer.
type App struct {
	fyne     fyne.App
	window   fyne.Window
	opts     Options
	triggers Triggers
	notifier notification.Notifier

	captureBtn  *widget.Button
	recordBtn   *widget.Button
	annotateBtn *widget.Button
	preview     *canvas.Image
	status      *widget.Label
	timer       *widget.Label

	lastCapture string
	recording   bool
	timerStop   chan struct{}
}

func New(a fyne.App, opts Options) *App {
	if opts.PreviewSize <= 0 {
		opts.PreviewSize = defaultPreviewPx
	}
	g := &App{
		fyne:     a,
		window:   a.NewWindow(Title),
		opts:     opts,
		notifier: notification.Fyne{App: a},
	}
	g.build()
	return g
}

func (g *App) build() {
	g.preview = canvas.NewImageFromImage(nil)
	g.preview.FillMode = canvas.ImageFillContain
	g.preview.ScaleMode = canvas.ImageScaleSmooth
	size := float32(g.opts.PreviewSize)
	g.preview.SetMinSize(fyne.NewSize(size, size))

	g.status = widget.NewLabel(labelNoCapture)
	g.status.Wrapping = fyne.TextWrapWord
	g.timer = widget.NewLabel("")

	g.captureBtn = widget.NewButton(labelCapture, func() {
		if g.triggers != nil {
			g.triggers.TriggerCapture()
		}
	})
	g.recordBtn = widget.NewButton(labelRecord, func() {
		if g.triggers != nil {
			g.triggers.TriggerRecord()
		}
	})
	g.annotateBtn = widget.NewButton(labelAnnotate, g.chooseAnnotation)

	g.window.SetContent(container.NewVBox(
		g.preview,
		g.status,
		g.captureBtn,
		g.recordBtn,
		g.timer,
		g.annotateBtn,
	))
	g.window.SetIcon(tray.Icon)
	g.window.Resize(fyne.NewSize(size+120, size+220))
	g.window.SetMaster()
}

// SetTriggers connects the buttons to the event loop.
func (g *App) SetTriggers(t Triggers) { g.triggers = t }

func (g *App) Window() fyne.Window { return g.window }

// Notifier returns a notifier that shows desktop notifications.
func (g *App) Notifier() notification.Notifier { return g.notifier }

// EnableTray installs the tray menu. With a tray, closing the main window
// hides it instead of quitting.
func (g *App) EnableTray() bool {
	ok := tray.Setup(g.fyne, Title, tray.Actions{
		Capture: g.captureBtn.OnTapped,
		Record:  g.recordBtn.OnTapped,
		Show:    g.window.Show,
		Quit:    g.fyne.Quit,
	})
	if ok {
		g.window.SetCloseIntercept(g.window.Hide)
	}
	return ok
}

// ShowAndRun shows the main window and blocks until the app quits.
func (g *App) ShowAndRun() {
	g.window.ShowAndRun()
}

// SetBusy disables the action buttons while a job runs. Safe from any goroutine.
func (g *App) SetBusy(busy bool) {
	fyne.Do(func() { g.applyBusy(busy) })
}

func (g *App) applyBusy(busy bool) {
	if busy {
		g.captureBtn.Disable()
		g.recordBtn.Disable()
		return
	}
	g.captureBtn.Enable()
	g.recordBtn.Enable()
}

// CaptureDone shows the saved capture in the preview. Safe from any goroutine.
func (g *App) CaptureDone(res session.CaptureResult) {
	var thumb image.Image
	if img, err := screenshot.Load(res.Path); err != nil {
		log.Warn().Err(err).Str("path", logutil.SanitizeForLog(res.Path)).Msg("failed to load capture for preview")
	} else {
		thumb = screenshot.Thumbnail(img, g.opts.PreviewSize)
	}
	fyne.Do(func() { g.applyCapture(res.Path, thumb) })
}

func (g *App) applyCapture(path string, thumb image.Image) {
	g.lastCapture = path
	g.status.SetText("Capture saved: " + path)
	g.preview.Image = thumb
	g.preview.Refresh()
}

// RecordToggled flips the record button and the timer. Safe from any goroutine.
func (g *App) RecordToggled(res session.ToggleResult) {
	fyne.Do(func() { g.applyRecord(res.Started, res.Path) })
}

// RecordingFailed resets the recording controls after the encoder died.
func (g *App) RecordingFailed(err error) {
	fyne.Do(func() {
		g.applyRecord(false, "")
		g.timer.SetText("Recording failed: " + err.Error())
	})
}

func (g *App) applyRecord(started bool, path string) {
	g.recording = started
	if started {
		g.recordBtn.SetText(labelStopRecord)
		g.timer.SetText(TimerText(0))
		g.status.SetText("Recording to " + path)
		g.startTimer()
		return
	}
	g.stopTimer()
	g.recordBtn.SetText(labelRecord)
	g.timer.SetText(labelFinished)
	if path != "" {
		g.status.SetText("Recording saved: " + path)
	}
}

func (g *App) chooseAnnotation() {
	d := dialog.NewFileOpen(func(r fyne.URIReadCloser, err error) {
		if err != nil {
			dialog.ShowError(err, g.window)
			return
		}
		if r == nil {
			return
		}
		path := r.URI().Path()
		_ = r.Close()
		g.OpenAnnotator(path)
	}, g.window)
	d.SetFilter(storage.NewExtensionFileFilter([]string{".png", ".jpg", ".jpeg"}))
	dir := g.opts.OutputDir
	if g.lastCapture != "" {
		dir = filepath.Dir(g.lastCapture)
	}
	if loc, err := storage.ListerForURI(storage.NewFileURI(dir)); err == nil {
		d.SetLocation(loc)
	}
	d.Show()
}

// OpenAnnotator loads path and opens an annotation window for it.
func (g *App) OpenAnnotator(path string) {
	img, err := screenshot.Load(path)
	if err != nil {
		dialog.ShowError(err, g.window)
		return
	}
	NewAnnotator(g.fyne, path, img, g.notifier).Show()
}
