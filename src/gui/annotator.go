package gui

import (
	"fmt"
	"image"
	"path/filepath"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
	"github.com/rs/zerolog/log"

	"screen-tool/src/annotate"
	"screen-tool/src/logutil"
	"screen-tool/src/notification"
	"screen-tool/src/screenshot"
)

// Annotator is a window for drawing shapes and text over one image.
type Annotator struct {
	window   fyne.Window
	editor   *annotate.Editor
	canvas   *AnnotationCanvas
	notifier notification.Notifier
	source   string

	tool     *widget.Select
	color    *widget.Select
	width    *widget.Slider
	fontSize *widget.Slider
	text     *widget.Entry
}

func NewAnnotator(app fyne.App, source string, img image.Image, n notification.Notifier) *Annotator {
	if n == nil {
		n = notification.Log{}
	}
	a := &Annotator{
		window:   app.NewWindow("Annotate - " + filepath.Base(source)),
		editor:   annotate.NewEditor(img),
		notifier: n,
		source:   source,
	}
	a.canvas = NewAnnotationCanvas(a.editor)
	a.canvas.TextSource = func() string { return a.text.Text }
	a.build()
	return a
}

func (a *Annotator) build() {
	style := annotate.DefaultStyle()

	a.tool = widget.NewSelect(annotate.ToolNames(), func(name string) {
		if t, ok := annotate.ParseTool(name); ok {
			a.editor.SetTool(t)
		}
	})
	a.tool.SetSelected(a.editor.Tool().String())

	a.width = widget.NewSlider(1, 20)
	a.width.Step = 1
	a.width.SetValue(style.Width)
	a.width.OnChanged = func(float64) { a.applyStyle() }

	a.fontSize = widget.NewSlider(8, 96)
	a.fontSize.Step = 2
	a.fontSize.SetValue(style.FontSize)
	a.fontSize.OnChanged = func(float64) { a.applyStyle() }

	a.color = widget.NewSelect(annotate.PaletteNames(), func(string) { a.applyStyle() })
	a.color.SetSelected("red")

	a.text = widget.NewEntry()
	a.text.SetPlaceHolder("Text to place")

	toolbar := container.NewVBox(
		container.NewGridWithColumns(4,
			widget.NewLabel("Tool"), a.tool,
			widget.NewLabel("Color"), a.color,
		),
		container.NewGridWithColumns(4,
			widget.NewLabel("Width"), a.width,
			widget.NewLabel("Font size"), a.fontSize,
		),
		container.NewBorder(nil, nil, widget.NewLabel("Text"), nil, a.text),
	)
	buttons := container.NewHBox(
		widget.NewButton("Clear", a.editor.Clear),
		widget.NewButton("Save", a.save),
	)

	a.window.SetContent(container.NewBorder(toolbar, buttons, nil, nil, container.NewScroll(a.canvas)))
	b := a.editor.Bounds()
	a.window.Resize(fyne.NewSize(min(float32(b.Dx())+40, 1200), min(float32(b.Dy())+200, 900)))
}

func (a *Annotator) applyStyle() {
	c, err := annotate.ParseColor(a.color.Selected)
	if err != nil {
		c = annotate.DefaultStyle().Color
	}
	a.editor.SetStyle(annotate.Style{Color: c, Width: a.width.Value, FontSize: a.fontSize.Value})
}

func (a *Annotator) Show() { a.window.Show() }

// AnnotatedName suggests "<name>-annotated<ext>" next to the source image.
func AnnotatedName(source string) string {
	ext := filepath.Ext(source)
	if ext == "" {
		ext = ".png"
	}
	return strings.TrimSuffix(filepath.Base(source), filepath.Ext(source)) + "-annotated" + ext
}

func (a *Annotator) save() {
	d := dialog.NewFileSave(func(w fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, a.window)
			return
		}
		if w == nil {
			return
		}
		defer w.Close()

		path := w.URI().Path()
		format := screenshot.FormatFromPath(path)
		if err := screenshot.Encode(w, a.editor.Render(), format); err != nil {
			log.Error().Err(err).Str("path", logutil.SanitizeForLog(path)).Msg("failed to save annotation")
			dialog.ShowError(fmt.Errorf("save failed: %w", err), a.window)
			return
		}
		log.Info().Str("path", logutil.SanitizeForLog(path)).Int("shapes", len(a.editor.Shapes())).Msg("annotation saved")
		a.notifier.Notify(Title, "Annotation saved: "+path)
	}, a.window)

	d.SetFileName(AnnotatedName(a.source))
	d.SetFilter(storage.NewExtensionFileFilter(FilterExtensions([]string{screenshot.FilterPNG, screenshot.FilterJPEG})))
	if loc, err := storage.ListerForURI(storage.NewFileURI(filepath.Dir(a.source))); err == nil {
		d.SetLocation(loc)
	}
	d.Show()
}
