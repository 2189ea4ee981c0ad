package render

import (
	"image"
	"image/color"
	"math"

	"legend-matcher/pkg/geometry"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Dash pattern for connector lines, in pixels.
const (
	dashOn  = 6
	dashOff = 4
)

// Rasterize paints a draw list onto a new w×h RGBA image. sheet is the legend
// image drawn for OpImage commands; it may be nil.
func Rasterize(list DrawList, w, h int, sheet image.Image) *image.RGBA {
	output := image.NewRGBA(image.Rect(0, 0, w, h))
	for _, c := range list {
		switch c.Op {
		case OpFill:
			draw.Draw(output, rectInt(c.Rect), image.NewUniform(c.Color), image.Point{}, draw.Src)
		case OpImage:
			if sheet != nil {
				draw.ApproxBiLinear.Scale(output, rectInt(c.Rect), sheet, sheet.Bounds(), draw.Over, nil)
			}
		case OpStroke:
			strokeRect(output, rectInt(c.Rect), c.Color, thickness(c.Width))
		case OpText:
			drawText(output, c.Text, int(math.Round(c.From.X)), int(math.Round(c.From.Y)), c.Color)
		case OpLine:
			drawLine(output, c.From, c.To, c.Color, thickness(c.Width), c.Dashed)
		}
	}
	return output
}

func rectInt(r geometry.Rect) image.Rectangle {
	return image.Rect(
		int(math.Round(r.X)),
		int(math.Round(r.Y)),
		int(math.Round(r.X+r.Width)),
		int(math.Round(r.Y+r.Height)),
	)
}

func thickness(w float64) int {
	t := int(math.Round(w))
	if t < 1 {
		return 1
	}
	return t
}

// strokeRect draws a rectangle outline t pixels thick, inside r.
func strokeRect(output *image.RGBA, r image.Rectangle, col color.RGBA, t int) {
	bounds := output.Bounds()
	set := func(x, y int) {
		if image.Pt(x, y).In(bounds) {
			output.SetRGBA(x, y, col)
		}
	}
	for i := 0; i < t; i++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			set(x, r.Min.Y+i)
			set(x, r.Max.Y-1-i)
		}
		for y := r.Min.Y; y < r.Max.Y; y++ {
			set(r.Min.X+i, y)
			set(r.Max.X-1-i, y)
		}
	}
}

// drawLine steps along the segment one pixel at a time, stamping a t×t square
// at each step. Dashed lines skip dashOff pixels after every dashOn.
func drawLine(output *image.RGBA, from, to geometry.Point2D, col color.RGBA, t int, dashed bool) {
	bounds := output.Bounds()
	length := from.Distance(to)
	steps := int(math.Ceil(length))
	if steps == 0 {
		steps = 1
	}
	half := t / 2
	for i := 0; i <= steps; i++ {
		if dashed && i%(dashOn+dashOff) >= dashOn {
			continue
		}
		f := float64(i) / float64(steps)
		x := int(math.Round(from.X + (to.X-from.X)*f))
		y := int(math.Round(from.Y + (to.Y-from.Y)*f))
		for dy := -half; dy < t-half; dy++ {
			for dx := -half; dx < t-half; dx++ {
				if image.Pt(x+dx, y+dy).In(bounds) {
					output.SetRGBA(x+dx, y+dy, col)
				}
			}
		}
	}
}

// drawText draws s with its baseline-left at (x, y) using the 7x13 bitmap face.
func drawText(output *image.RGBA, s string, x, y int, col color.RGBA) {
	if s == "" {
		return
	}
	d := font.Drawer{
		Dst:  output,
		Src:  image.NewUniform(col),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}
