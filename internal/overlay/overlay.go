// Package overlay turns declarative text boxes into pre-rendered layers that
// are composited onto every frame of a run.
package overlay

import (
	"image"
	"image/color"
	"image/draw"
	"log"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"reelgen/internal/config"
	"reelgen/internal/logx"
)

// Prepared is the resolved geometry of one text box. It is immutable once
// built.
type Prepared struct {
	Lines      []string
	LineX      []int // left edge of each centred line
	Origin     image.Point
	BoxWidth   int
	LineHeight int
	Ascent     int
	Descent    int

	TextColor     color.RGBA
	HasBackground bool
	Background    color.RGBA
	BackgroundBox image.Rectangle
	CornerRadius  int

	layer *image.RGBA
}

// Bounds is the area of the canvas the prepared layer may touch.
func (p *Prepared) Bounds() image.Rectangle {
	return p.layer.Bounds()
}

// Prepare resolves every usable box against a canvas of the given width.
// Boxes with blank text, an unloadable font or no wrapped lines are skipped
// and logged.
func Prepare(boxes []config.TextBox, canvasWidth int, logger *log.Logger) []*Prepared {
	logger = logx.OrDiscard(logger)
	fonts := newFontCache()

	var out []*Prepared
	for i, box := range boxes {
		text := strings.TrimSpace(box.Text)
		if text == "" {
			logger.Printf("text box %d: empty text, skipped", i)
			continue
		}
		size := box.Size
		if size <= 0 {
			size = 12
		}
		face, err := fonts.face(box.FontPath, size)
		if err != nil {
			logger.Printf("text box %d: %v, skipped", i, err)
			continue
		}
		p := prepareOne(box, text, face, canvasWidth, logger, i)
		face.Close()
		if p == nil {
			continue
		}
		out = append(out, p)
	}
	return out
}

func prepareOne(box config.TextBox, text string, face font.Face, canvasWidth int, logger *log.Logger, idx int) *Prepared {
	boxWidth := box.BoxWidth
	if boxWidth <= 0 {
		boxWidth = canvasWidth
	}
	lines := Wrap(text, face, boxWidth)
	if len(lines) == 0 {
		logger.Printf("text box %d: no lines after wrapping, skipped", idx)
		return nil
	}

	textColor, err := ParseHex(box.Color)
	if err != nil {
		logger.Printf("text box %d: %v, using white", idx, err)
		textColor = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	}

	metrics := face.Metrics()
	ascent := metrics.Ascent.Ceil()
	descent := metrics.Descent.Ceil()
	lineHeight := ascent + descent

	x := (canvasWidth - boxWidth) / 2
	y := box.Y

	p := &Prepared{
		Lines:        lines,
		LineX:        make([]int, len(lines)),
		Origin:       image.Pt(x, y),
		BoxWidth:     boxWidth,
		LineHeight:   lineHeight,
		Ascent:       ascent,
		Descent:      descent,
		TextColor:    textColor,
		CornerRadius: box.CornerRadius,
	}

	lastBaseline := y + (len(lines)-1)*lineHeight
	textBounds := image.Rect(x, y-ascent, x+boxWidth, lastBaseline+descent)
	for i, line := range lines {
		w := font.MeasureString(face, line).Ceil()
		p.LineX[i] = x + (boxWidth-w)/2
		baseline := y + i*lineHeight
		textBounds = textBounds.Union(image.Rect(p.LineX[i], baseline-ascent, p.LineX[i]+w, baseline+descent))
	}

	if strings.TrimSpace(box.Background) != "" {
		bg, err := ParseHex(box.Background)
		if err != nil {
			logger.Printf("text box %d: background %v, drawing without box", idx, err)
		} else {
			p.HasBackground = true
			p.Background = bg
			pad := box.Padding
			// Overlong words may run past boxWidth; the box grows to hold them.
			p.BackgroundBox = textBounds.Inset(-pad)
		}
	}

	bounds := textBounds
	if p.HasBackground {
		bounds = bounds.Union(p.BackgroundBox)
	}
	p.layer = image.NewRGBA(bounds)
	if p.HasBackground {
		fillRoundedRect(p.layer, p.BackgroundBox, p.CornerRadius, p.Background)
	}
	drawer := &font.Drawer{
		Dst:  p.layer,
		Src:  image.NewUniform(textColor),
		Face: face,
	}
	for i, line := range lines {
		drawer.Dot = fixed.P(p.LineX[i], y+i*lineHeight)
		drawer.DrawString(line)
	}
	return p
}

// Apply composites every prepared box onto dst in order.
func Apply(dst draw.Image, boxes []*Prepared) {
	for _, p := range boxes {
		draw.Draw(dst, p.layer.Bounds(), p.layer, p.layer.Bounds().Min, draw.Over)
	}
}

const kappa = 0.5522847498 // cubic Bezier approximation of a quarter circle

// fillRoundedRect rasterizes an anti-aliased rounded rectangle into dst,
// whose bounds may be offset from the origin.
func fillRoundedRect(dst *image.RGBA, r image.Rectangle, radius int, c color.RGBA) {
	r = r.Canon()
	if r.Empty() {
		return
	}
	rad := float32(radius)
	if half := float32(min(r.Dx(), r.Dy())) / 2; rad > half {
		rad = half
	}
	if rad < 0 {
		rad = 0
	}

	b := dst.Bounds()
	ox, oy := float32(b.Min.X), float32(b.Min.Y)
	x0, y0 := float32(r.Min.X)-ox, float32(r.Min.Y)-oy
	x1, y1 := float32(r.Max.X)-ox, float32(r.Max.Y)-oy
	k := rad * kappa

	z := vector.NewRasterizer(b.Dx(), b.Dy())
	z.MoveTo(x0+rad, y0)
	z.LineTo(x1-rad, y0)
	z.CubeTo(x1-rad+k, y0, x1, y0+rad-k, x1, y0+rad)
	z.LineTo(x1, y1-rad)
	z.CubeTo(x1, y1-rad+k, x1-rad+k, y1, x1-rad, y1)
	z.LineTo(x0+rad, y1)
	z.CubeTo(x0+rad-k, y1, x0, y1-rad+k, x0, y1-rad)
	z.LineTo(x0, y0+rad)
	z.CubeTo(x0, y0+rad-k, x0+rad-k, y0, x0+rad, y0)
	z.ClosePath()
	z.Draw(dst, b, image.NewUniform(c), image.Point{})
}
