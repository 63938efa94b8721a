package annotate

import (
	"image"
	"image/draw"
	"math"
	"strings"
	"sync"

	"github.com/srwiley/rasterx"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

const circleSegments = 96

// Paint draws one shape onto dst.
func Paint(dst draw.Image, s Shape) {
	switch s.Kind {
	case Line:
		if s.From == s.To {
			fillCircle(dst, s, pt(s.From), math.Max(s.Width/2, 0.5))
			return
		}
		stroke(dst, s, false, pt(s.From), pt(s.To))
	case Rect:
		b := s.Box()
		stroke(dst, s, true,
			pt(b.Min),
			pt(image.Pt(b.Max.X, b.Min.Y)),
			pt(b.Max),
			pt(image.Pt(b.Min.X, b.Max.Y)))
	case Triangle:
		b := s.Box()
		apex := fixed.Point26_6{X: fixed.Int26_6((b.Min.X + b.Max.X) * 32), Y: fixed.I(b.Min.Y)}
		stroke(dst, s, true, apex, pt(image.Pt(b.Max.X, b.Max.Y)), pt(image.Pt(b.Min.X, b.Max.Y)))
	case Circle:
		stroke(dst, s, true, circlePoints(s.From, s.Radius())...)
	case Text:
		drawText(dst, s)
	}
}

func newStroker(dst draw.Image, s Shape) *rasterx.Stroker {
	b := dst.Bounds()
	scanner := rasterx.NewScannerGV(b.Dx(), b.Dy(), dst, b)
	stroker := rasterx.NewStroker(b.Dx(), b.Dy(), scanner)
	width := s.Width
	if width <= 0 {
		width = 1
	}
	stroker.SetStroke(fixed.Int26_6(width*64), fixed.I(4), rasterx.RoundCap, rasterx.RoundCap, rasterx.RoundGap, rasterx.Round)
	stroker.SetColor(s.Color)
	return stroker
}

func stroke(dst draw.Image, s Shape, closed bool, points ...fixed.Point26_6) {
	if len(points) < 2 {
		return
	}
	stroker := newStroker(dst, s)
	stroker.Start(points[0])
	for _, p := range points[1:] {
		stroker.Line(p)
	}
	stroker.Stop(closed)
	stroker.Draw()
}

func fillCircle(dst draw.Image, s Shape, center fixed.Point26_6, r float64) {
	b := dst.Bounds()
	scanner := rasterx.NewScannerGV(b.Dx(), b.Dy(), dst, b)
	filler := rasterx.NewFiller(b.Dx(), b.Dy(), scanner)
	filler.SetColor(s.Color)
	c := image.Pt(int(center.X>>6), int(center.Y>>6))
	points := circlePoints(c, r)
	filler.Start(points[0])
	for _, p := range points[1:] {
		filler.Line(p)
	}
	filler.Stop(true)
	filler.Draw()
}

func circlePoints(c image.Point, r float64) []fixed.Point26_6 {
	points := make([]fixed.Point26_6, circleSegments)
	for i := range points {
		a := 2 * math.Pi * float64(i) / circleSegments
		points[i] = fixed.Point26_6{
			X: fixed.Int26_6((float64(c.X) + r*math.Cos(a)) * 64),
			Y: fixed.Int26_6((float64(c.Y) + r*math.Sin(a)) * 64),
		}
	}
	return points
}

func pt(p image.Point) fixed.Point26_6 {
	return fixed.P(p.X, p.Y)
}

func hypot(x, y float64) float64 { return math.Hypot(x, y) }

var (
	fontOnce sync.Once
	fontData *opentype.Font
	faces    sync.Map // float64 size -> font.Face
)

// faceFor returns a Go Regular face at size points (72 DPI, so points are
// pixels), or the fixed 7x13 bitmap face when the font cannot be loaded.
func faceFor(size float64) font.Face {
	if size <= 0 {
		size = DefaultStyle().FontSize
	}
	if f, ok := faces.Load(size); ok {
		return f.(font.Face)
	}
	fontOnce.Do(func() {
		fontData, _ = opentype.Parse(goregular.TTF)
	})
	if fontData == nil {
		return basicfont.Face7x13
	}
	face, err := opentype.NewFace(fontData, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return basicfont.Face7x13
	}
	actual, _ := faces.LoadOrStore(size, face)
	return actual.(font.Face)
}

func drawText(dst draw.Image, s Shape) {
	face := faceFor(s.Size)
	m := face.Metrics()
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(s.Color),
		Face: face,
	}
	y := fixed.I(s.From.Y) + m.Ascent
	for _, line := range strings.Split(s.Text, "\n") {
		d.Dot = fixed.Point26_6{X: fixed.I(s.From.X), Y: y}
		d.DrawString(line)
		y += m.Height
	}
}

// TextBounds measures the pixel box a text shape occupies.
func TextBounds(s Shape) image.Rectangle {
	face := faceFor(s.Size)
	m := face.Metrics()
	lines := strings.Split(s.Text, "\n")
	var w fixed.Int26_6
	for _, line := range lines {
		if adv := font.MeasureString(face, line); adv > w {
			w = adv
		}
	}
	h := m.Height.Mul(fixed.I(len(lines)))
	return image.Rect(s.From.X, s.From.Y, s.From.X+w.Ceil(), s.From.Y+h.Ceil())
}
