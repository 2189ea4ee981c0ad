// Package recognize turns raw detector output (word boxes, contour outlines)
// into the recognized symbol and text regions of a legend drawing.
package recognize

import (
	"fmt"
	"image"
	"math"
	"sort"
	"strings"

	"legend-matcher/internal/legend"
	"legend-matcher/pkg/geometry"
)

// Word is a single OCR word with its confidence in [0, 1].
type Word struct {
	Text       string
	Box        geometry.Rect
	Confidence float64
}

// Outline is a closed contour found on the sheet.
type Outline struct {
	Box    geometry.Rect
	Points []image.Point
	// Solidity is contour area / bounding box area, used as a confidence proxy.
	Solidity float64
}

// NewOutline builds an outline from a contour, its simplified polygon and
// the contour area. It reports false for degenerate contours with an empty
// bounding box.
func NewOutline(contour, approx []image.Point, area float64) (Outline, bool) {
	pts := make([]geometry.Point2D, len(contour))
	for i, p := range contour {
		pts[i] = geometry.Point2D{X: float64(p.X), Y: float64(p.Y)}
	}
	box := geometry.BoundingBox(pts)
	if box.Area() <= 0 {
		return Outline{}, false
	}
	return Outline{
		Box:      box,
		Points:   approx,
		Solidity: area / box.Area(),
	}, true
}

// Params filters candidate regions.
type Params struct {
	MinSymbolArea  float64
	MaxSymbolArea  float64
	MaxAspectRatio float64
	MinConfidence  float64
	LineTolerance  float64
}

// MergeWords joins words that sit on the same text line and are separated by
// at most two line tolerances into labels. The label confidence is the lowest
// word confidence. Labels are returned in reading order.
func MergeWords(words []Word, tol float64) []Word {
	ws := make([]Word, 0, len(words))
	for _, w := range words {
		w.Text = strings.TrimSpace(w.Text)
		if w.Text != "" {
			ws = append(ws, w)
		}
	}
	sort.SliceStable(ws, func(i, j int) bool {
		ci, cj := ws[i].Box.Center(), ws[j].Box.Center()
		if math.Abs(ci.Y-cj.Y) > tol {
			return ci.Y < cj.Y
		}
		return ws[i].Box.X < ws[j].Box.X
	})

	var labels []Word
	for _, w := range ws {
		if n := len(labels); n > 0 {
			last := &labels[n-1]
			sameLine := math.Abs(last.Box.Center().Y-w.Box.Center().Y) <= tol
			gap := w.Box.X - (last.Box.X + last.Box.Width)
			if sameLine && gap >= -tol && gap <= 2*tol {
				last.Text += " " + w.Text
				last.Box = last.Box.Union(w.Box)
				last.Confidence = math.Min(last.Confidence, w.Confidence)
				continue
			}
		}
		labels = append(labels, w)
	}
	return labels
}

// FilterSymbols keeps outlines whose size and aspect ratio fit a legend
// symbol and that do not overlap any text label.
func FilterSymbols(outlines []Outline, labels []Word, p Params) []Outline {
	var out []Outline
	for _, o := range outlines {
		area := o.Box.Area()
		if area < p.MinSymbolArea || area > p.MaxSymbolArea {
			continue
		}
		if o.Box.Width <= 0 || o.Box.Height <= 0 {
			continue
		}
		aspect := o.Box.Width / o.Box.Height
		if aspect < 1 {
			aspect = 1 / aspect
		}
		if aspect > p.MaxAspectRatio {
			continue
		}
		overlapsText := false
		for _, l := range labels {
			if o.Box.Intersects(l.Box) {
				overlapsText = true
				break
			}
		}
		if !overlapsText {
			out = append(out, o)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Box.Y != out[j].Box.Y {
			return out[i].Box.Y < out[j].Box.Y
		}
		return out[i].Box.X < out[j].Box.X
	})
	return out
}

// ShapePath encodes contour points as SVG path data relative to the box's
// top-left corner.
func ShapePath(points []image.Point, box geometry.Rect) string {
	if len(points) == 0 {
		return ""
	}
	var b strings.Builder
	for i, p := range points {
		cmd := "L"
		if i == 0 {
			cmd = "M"
		}
		fmt.Fprintf(&b, "%s%g,%g ", cmd, float64(p.X)-box.X, float64(p.Y)-box.Y)
	}
	b.WriteString("Z")
	return b.String()
}

// Assemble builds a drawing from filtered outlines and merged labels,
// assigning sequential ids (sym-001, txt-001, ...).
func Assemble(id, name string, size geometry.Size, outlines []Outline, labels []Word, p Params) *legend.Drawing {
	d := &legend.Drawing{
		ID:     id,
		Name:   name,
		Width:  size.Width,
		Height: size.Height,
	}
	for _, l := range labels {
		if l.Confidence < p.MinConfidence {
			continue
		}
		d.Texts = append(d.Texts, legend.RecognizedText{
			ID:         fmt.Sprintf("txt-%03d", len(d.Texts)+1),
			X:          l.Box.X,
			Y:          l.Box.Y,
			Width:      l.Box.Width,
			Height:     l.Box.Height,
			Text:       l.Text,
			Confidence: clamp01(l.Confidence),
		})
	}
	for i, o := range outlines {
		d.Symbols = append(d.Symbols, legend.RecognizedSymbol{
			ID:         fmt.Sprintf("sym-%03d", i+1),
			X:          o.Box.X,
			Y:          o.Box.Y,
			Width:      o.Box.Width,
			Height:     o.Box.Height,
			Shape:      ShapePath(o.Points, o.Box),
			Confidence: clamp01(o.Solidity),
		})
	}
	return d
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
