package gui

import (
	"image"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"screen-tool/src/annotate"
)

// AnnotationCanvas shows the editor's rendering and forwards mouse
// press, drag and release to it in image coordinates.
type AnnotationCanvas struct {
	widget.BaseWidget

	editor *annotate.Editor
	image  *canvas.Image
	// TextSource supplies the string placed by the text tool.
	TextSource func() string

	pressed bool
	last    image.Point
}

var (
	_ desktop.Mouseable = (*AnnotationCanvas)(nil)
	_ fyne.Draggable    = (*AnnotationCanvas)(nil)
)

func NewAnnotationCanvas(e *annotate.Editor) *AnnotationCanvas {
	c := &AnnotationCanvas{editor: e}
	c.image = canvas.NewImageFromImage(e.Render())
	c.image.FillMode = canvas.ImageFillStretch
	c.image.ScaleMode = canvas.ImageScalePixels
	b := e.Bounds()
	c.image.SetMinSize(fyne.NewSize(float32(b.Dx()), float32(b.Dy())))
	e.OnChange(c.redraw)
	c.ExtendBaseWidget(c)
	return c
}

func (c *AnnotationCanvas) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(c.image)
}

func (c *AnnotationCanvas) MinSize() fyne.Size {
	return c.image.MinSize()
}

func (c *AnnotationCanvas) redraw() {
	c.image.Image = c.editor.Render()
	c.image.Refresh()
}

// toImage maps a widget position to pixel coordinates of the edited image.
func (c *AnnotationCanvas) toImage(pos fyne.Position) image.Point {
	return ToImagePoint(pos, c.Size(), c.editor.Bounds())
}

// ToImagePoint scales pos within a widget of the given size onto bounds.
func ToImagePoint(pos fyne.Position, size fyne.Size, bounds image.Rectangle) image.Point {
	if size.Width <= 0 || size.Height <= 0 {
		return image.Pt(bounds.Min.X+int(pos.X), bounds.Min.Y+int(pos.Y))
	}
	x := bounds.Min.X + int(pos.X*float32(bounds.Dx())/size.Width)
	y := bounds.Min.Y + int(pos.Y*float32(bounds.Dy())/size.Height)
	return image.Pt(x, y)
}

func (c *AnnotationCanvas) MouseDown(ev *desktop.MouseEvent) {
	if ev.Button != desktop.MouseButtonPrimary {
		return
	}
	p := c.toImage(ev.Position)
	if c.editor.Tool() == annotate.ToolText {
		text := ""
		if c.TextSource != nil {
			text = c.TextSource()
		}
		c.editor.PlaceText(p, text)
		return
	}
	c.pressed = true
	c.last = p
	c.editor.Press(p)
}

func (c *AnnotationCanvas) Dragged(ev *fyne.DragEvent) {
	if !c.pressed {
		return
	}
	c.last = c.toImage(ev.Position)
	c.editor.Drag(c.last)
}

func (c *AnnotationCanvas) MouseUp(ev *desktop.MouseEvent) {
	if !c.pressed {
		return
	}
	c.pressed = false
	c.editor.Release(c.toImage(ev.Position))
}

// DragEnd finishes a drag whose release was not delivered as a mouse up.
func (c *AnnotationCanvas) DragEnd() {
	if !c.pressed {
		return
	}
	c.pressed = false
	c.editor.Release(c.last)
}
