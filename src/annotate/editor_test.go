package annotate

import (
	"image"
	"image/color"
	"image/draw"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"screen-tool/src/screenshot"
)

var white = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}

func whiteImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(white), image.Point{}, draw.Src)
	return img
}

func painted(img *image.RGBA, x, y int) bool {
	return img.RGBAAt(x, y) != white
}

func TestDragToolShowsPreviewUntilRelease(t *testing.T) {
	e := NewEditor(whiteImage(100, 100))
	e.SetTool(ToolRect)

	e.Press(image.Pt(10, 10))
	e.Drag(image.Pt(30, 30))

	p, ok := e.Preview()
	require.True(t, ok)
	assert.Equal(t, Rect, p.Kind)
	assert.Equal(t, image.Pt(30, 30), p.To)
	assert.Empty(t, e.Shapes(), "preview must not enter the shape list")
	assert.True(t, painted(e.Render(), 10, 20), "preview is rendered")

	e.Drag(image.Pt(50, 40))
	e.Release(image.Pt(50, 40))

	_, ok = e.Preview()
	assert.False(t, ok)
	shapes := e.Shapes()
	require.Len(t, shapes, 1)
	assert.Equal(t, image.Rect(10, 10, 50, 40), shapes[0].Box())
	assert.False(t, e.Active())
}

func TestReleaseDropsDegenerateShapes(t *testing.T) {
	for _, tool := range []Tool{ToolLine, ToolRect, ToolCircle, ToolTriangle} {
		e := NewEditor(whiteImage(50, 50))
		e.SetTool(tool)
		e.Press(image.Pt(5, 5))
		e.Release(image.Pt(5, 5))
		assert.Empty(t, e.Shapes(), tool.String())
	}

	e := NewEditor(whiteImage(50, 50))
	e.SetTool(ToolRect)
	e.Press(image.Pt(5, 5))
	e.Release(image.Pt(5, 40))
	assert.Empty(t, e.Shapes(), "zero-width rectangle")
}

func TestFreehandCommitsSegments(t *testing.T) {
	e := NewEditor(whiteImage(100, 100))
	e.SetTool(ToolFreehand)

	e.Press(image.Pt(10, 10))
	e.Drag(image.Pt(20, 10))
	e.Drag(image.Pt(20, 10))
	e.Drag(image.Pt(30, 20))
	e.Release(image.Pt(40, 20))

	shapes := e.Shapes()
	require.Len(t, shapes, 3)
	for _, s := range shapes {
		assert.Equal(t, Line, s.Kind)
	}
	assert.Equal(t, image.Pt(10, 10), shapes[0].From)
	assert.Equal(t, image.Pt(20, 10), shapes[1].From)
	assert.Equal(t, image.Pt(40, 20), shapes[2].To)
	_, ok := e.Preview()
	assert.False(t, ok, "freehand has no preview")
}

func TestFreehandClickLeavesDot(t *testing.T) {
	e := NewEditor(whiteImage(40, 40))
	e.SetTool(ToolFreehand)
	e.SetStyle(Style{Color: Palette["black"], Width: 6})

	e.Press(image.Pt(20, 20))
	e.Release(image.Pt(20, 20))

	shapes := e.Shapes()
	require.Len(t, shapes, 1)
	assert.Equal(t, shapes[0].From, shapes[0].To)
	assert.True(t, painted(e.Render(), 20, 20))
}

func TestEventsWithoutPressAreIgnored(t *testing.T) {
	e := NewEditor(whiteImage(40, 40))
	e.SetTool(ToolLine)
	e.Drag(image.Pt(5, 5))
	e.Release(image.Pt(30, 30))
	assert.Empty(t, e.Shapes())

	e.SetTool(ToolFreehand)
	e.Drag(image.Pt(5, 5))
	e.Release(image.Pt(30, 30))
	assert.Empty(t, e.Shapes())
}

func TestCancelDropsPreview(t *testing.T) {
	e := NewEditor(whiteImage(40, 40))
	e.SetTool(ToolCircle)
	e.Press(image.Pt(20, 20))
	e.Drag(image.Pt(30, 20))
	e.Cancel()

	_, ok := e.Preview()
	assert.False(t, ok)
	e.Release(image.Pt(30, 20))
	assert.Empty(t, e.Shapes())
}

func TestSetToolCancelsGesture(t *testing.T) {
	e := NewEditor(whiteImage(40, 40))
	e.SetTool(ToolLine)
	e.Press(image.Pt(1, 1))
	e.SetTool(ToolRect)
	assert.False(t, e.Active())
	_, ok := e.Preview()
	assert.False(t, ok)
}

func TestTextTool(t *testing.T) {
	e := NewEditor(whiteImage(200, 60))
	e.SetTool(ToolText)

	e.Press(image.Pt(5, 5))
	e.Release(image.Pt(5, 5))
	assert.Empty(t, e.Shapes(), "press does not place text")

	assert.False(t, e.PlaceText(image.Pt(5, 5), "   "))
	require.True(t, e.PlaceText(image.Pt(5, 5), "Hello"))

	shapes := e.Shapes()
	require.Len(t, shapes, 1)
	assert.Equal(t, Text, shapes[0].Kind)
	assert.Equal(t, "Hello", shapes[0].Text)
	assert.Equal(t, DefaultStyle().FontSize, shapes[0].Size)

	out := e.Render()
	b := TextBounds(shapes[0])
	assert.False(t, b.Empty())
	found := false
	for y := b.Min.Y; y < b.Max.Y && !found; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if painted(out, x, y) {
				found = true
				break
			}
		}
	}
	assert.True(t, found, "text pixels inside the measured box")
}

func TestLayerOrder(t *testing.T) {
	e := NewEditor(whiteImage(60, 60))
	red, blue := Palette["red"], Palette["blue"]

	e.SetStyle(Style{Color: red, Width: 8})
	e.SetTool(ToolLine)
	e.Press(image.Pt(0, 30))
	e.Release(image.Pt(60, 30))

	e.SetStyle(Style{Color: blue, Width: 8})
	e.Press(image.Pt(30, 0))
	e.Release(image.Pt(30, 60))

	shapes := e.Shapes()
	require.Len(t, shapes, 2)
	assert.Equal(t, red, shapes[0].Color)
	assert.Equal(t, blue, shapes[1].Color)
	assert.Equal(t, blue, e.Render().RGBAAt(30, 30), "later shapes draw on top")
}

func TestRenderShapes(t *testing.T) {
	e := NewEditor(whiteImage(120, 120))
	e.SetStyle(Style{Color: Palette["black"], Width: 3})

	e.SetTool(ToolRect)
	e.Press(image.Pt(10, 10))
	e.Release(image.Pt(50, 40))

	e.SetTool(ToolCircle)
	e.Press(image.Pt(80, 80))
	e.Release(image.Pt(100, 80))

	e.SetTool(ToolTriangle)
	e.Press(image.Pt(10, 70))
	e.Release(image.Pt(50, 110))

	out := e.Render()
	assert.True(t, painted(out, 10, 25), "rect left edge")
	assert.False(t, painted(out, 30, 25), "rect interior")
	assert.True(t, painted(out, 100, 80), "circle rim")
	assert.False(t, painted(out, 80, 80), "circle center")
	assert.True(t, painted(out, 30, 110), "triangle base")
	assert.False(t, painted(out, 30, 100), "triangle interior")
	assert.False(t, painted(out, 12, 72), "outside triangle near box corner")
}

func TestRenderDoesNotMutateBase(t *testing.T) {
	base := whiteImage(30, 30)
	e := NewEditor(base)
	e.SetTool(ToolLine)
	e.Press(image.Pt(0, 0))
	e.Release(image.Pt(29, 29))
	_ = e.Render()
	assert.False(t, painted(base, 15, 15))
}

func TestClear(t *testing.T) {
	changes := 0
	e := NewEditor(whiteImage(30, 30))
	e.OnChange(func() { changes++ })
	e.SetTool(ToolLine)
	e.Press(image.Pt(0, 0))
	e.Release(image.Pt(29, 29))
	require.Len(t, e.Shapes(), 1)

	e.Clear()
	assert.Empty(t, e.Shapes())
	assert.False(t, painted(e.Render(), 15, 15))
	assert.GreaterOrEqual(t, changes, 3)
}

func TestSave(t *testing.T) {
	e := NewEditor(whiteImage(20, 10))
	e.Add(Shape{Kind: Line, From: image.Pt(0, 5), To: image.Pt(19, 5), Color: Palette["green"], Width: 2})
	path := filepath.Join(t.TempDir(), "annotated.png")

	require.NoError(t, e.Save(path))
	img, err := screenshot.Load(path)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 20, 10), img.Bounds())
	assert.True(t, painted(img, 10, 5))
}

func TestSetStyleDefaults(t *testing.T) {
	e := NewEditor(whiteImage(1, 1))
	e.SetStyle(Style{Color: Palette["blue"]})
	assert.Equal(t, DefaultStyle().Width, e.Style().Width)
	assert.Equal(t, DefaultStyle().FontSize, e.Style().FontSize)
	assert.Equal(t, Palette["blue"], e.Style().Color)
}

func TestToolNames(t *testing.T) {
	for i, name := range ToolNames() {
		tool, ok := ParseTool(name)
		require.True(t, ok)
		assert.Equal(t, Tool(i), tool)
	}
	_, ok := ParseTool("Spray")
	assert.False(t, ok)
	assert.Equal(t, "Unknown", Tool(99).String())
}
