package annotate

import (
	"image"
	"image/draw"

	"screen-tool/src/screenshot"
)

// Tool selects what a press/drag/release gesture produces.
type Tool int

const (
	ToolFreehand Tool = iota
	ToolLine
	ToolRect
	ToolCircle
	ToolTriangle
	ToolText
)

var toolNames = []string{"Freehand", "Line", "Rectangle", "Circle", "Triangle", "Text"}

func (t Tool) String() string {
	if int(t) < 0 || int(t) >= len(toolNames) {
		return "Unknown"
	}
	return toolNames[t]
}

// ToolNames lists tools in toolbar order.
func ToolNames() []string {
	return append([]string(nil), toolNames...)
}

// ParseTool is the inverse of Tool.String.
func ParseTool(name string) (Tool, bool) {
	for i, n := range toolNames {
		if n == name {
			return Tool(i), true
		}
	}
	return ToolFreehand, false
}

func (t Tool) kind() Kind {
	switch t {
	case ToolRect:
		return Rect
	case ToolCircle:
		return Circle
	case ToolTriangle:
		return Triangle
	case ToolText:
		return Text
	default:
		return Line
	}
}

// dragTool reports tools that show a live preview between press and release.
func (t Tool) dragTool() bool {
	return t == ToolLine || t == ToolRect || t == ToolCircle || t == ToolTriangle
}

// Editor is the annotation state machine. It is not safe for concurrent use;
// the UI drives it from its event goroutine.
type Editor struct {
	base  *image.RGBA
	layer *image.RGBA

	tool  Tool
	style Style

	shapes []Shape

	active     bool
	last       image.Point
	freeStroke int
	preview    Shape
	hasPreview bool

	onChange func()
}

func NewEditor(base image.Image) *Editor {
	rgba := screenshot.ToRGBA(base)
	e := &Editor{base: rgba, style: DefaultStyle()}
	e.resetLayer()
	return e
}

// OnChange registers a callback fired whenever the rendered image changes.
func (e *Editor) OnChange(fn func()) { e.onChange = fn }

func (e *Editor) changed() {
	if e.onChange != nil {
		e.onChange()
	}
}

func (e *Editor) Bounds() image.Rectangle { return e.base.Bounds() }

func (e *Editor) Tool() Tool { return e.tool }

// SetTool switches tools, abandoning any gesture in progress.
func (e *Editor) SetTool(t Tool) {
	if e.active {
		e.Cancel()
	}
	e.tool = t
}

func (e *Editor) Style() Style { return e.style }

func (e *Editor) SetStyle(s Style) {
	if s.Width <= 0 {
		s.Width = DefaultStyle().Width
	}
	if s.FontSize <= 0 {
		s.FontSize = DefaultStyle().FontSize
	}
	e.style = s
}

func (e *Editor) newShape(k Kind, from, to image.Point) Shape {
	return Shape{Kind: k, From: from, To: to, Color: e.style.Color, Width: e.style.Width, Size: e.style.FontSize}
}

// Press starts a gesture at p.
func (e *Editor) Press(p image.Point) {
	switch {
	case e.tool == ToolText:
		return
	case e.tool == ToolFreehand:
		e.active = true
		e.last = p
		e.freeStroke = 0
	case e.tool.dragTool():
		e.active = true
		e.preview = e.newShape(e.tool.kind(), p, p)
		e.hasPreview = true
		e.changed()
	}
}

// Drag continues the gesture. Freehand commits a line segment per move;
// drag tools only update the preview.
func (e *Editor) Drag(p image.Point) {
	if !e.active {
		return
	}
	if e.tool == ToolFreehand {
		if p == e.last {
			return
		}
		e.commit(e.newShape(Line, e.last, p))
		e.last = p
		e.freeStroke++
		return
	}
	e.preview.To = p
	e.changed()
}

// Release ends the gesture, committing the preview shape unless it is
// degenerate. A freehand click without movement leaves a dot.
func (e *Editor) Release(p image.Point) {
	if !e.active {
		return
	}
	if e.tool == ToolFreehand {
		if p != e.last {
			e.commit(e.newShape(Line, e.last, p))
		} else if e.freeStroke == 0 {
			e.commit(e.newShape(Line, p, p))
		}
		e.endGesture()
		return
	}

	e.preview.To = p
	shape := e.preview
	e.endGesture()
	if shape.Degenerate() {
		e.changed()
		return
	}
	e.commit(shape)
}

// Cancel abandons the gesture in progress. Freehand segments already drawn stay.
func (e *Editor) Cancel() {
	wasPreview := e.hasPreview
	e.endGesture()
	if wasPreview {
		e.changed()
	}
}

func (e *Editor) endGesture() {
	e.active = false
	e.hasPreview = false
	e.preview = Shape{}
	e.freeStroke = 0
}

// Active reports whether a gesture is in progress.
func (e *Editor) Active() bool { return e.active }

// PlaceText adds a text shape with its top-left corner at p.
func (e *Editor) PlaceText(p image.Point, text string) bool {
	s := e.newShape(Text, p, p)
	s.Text = text
	if s.Degenerate() {
		return false
	}
	e.commit(s)
	return true
}

// Add appends a prebuilt shape, for scripted annotation.
func (e *Editor) Add(s Shape) bool {
	if s.Degenerate() {
		return false
	}
	e.commit(s)
	return true
}

func (e *Editor) commit(s Shape) {
	e.shapes = append(e.shapes, s)
	Paint(e.layer, s)
	e.changed()
}

// Shapes returns the committed shapes, bottom layer first.
func (e *Editor) Shapes() []Shape {
	return append([]Shape(nil), e.shapes...)
}

// Preview returns the shape being dragged, if any.
func (e *Editor) Preview() (Shape, bool) {
	return e.preview, e.hasPreview
}

// Clear removes every shape.
func (e *Editor) Clear() {
	e.endGesture()
	e.shapes = nil
	e.resetLayer()
	e.changed()
}

func (e *Editor) resetLayer() {
	e.layer = image.NewRGBA(e.base.Bounds())
	draw.Draw(e.layer, e.layer.Bounds(), e.base, e.base.Bounds().Min, draw.Src)
}

// Render returns the base image with every committed shape painted in
// order and the preview on top.
func (e *Editor) Render() *image.RGBA {
	out := image.NewRGBA(e.layer.Bounds())
	copy(out.Pix, e.layer.Pix)
	if e.hasPreview {
		Paint(out, e.preview)
	}
	return out
}

// Save renders the annotation and writes it to path, encoded by extension.
func (e *Editor) Save(path string) error {
	return screenshot.Save(path, e.Render())
}
