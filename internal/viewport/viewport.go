// Package viewport implements the zoom/pan transform of the legend canvas.
//
// Screen and canvas coordinates are related by
//
//	screen = (canvas + pan) * zoom
//
// so pan is expressed in canvas units. See geometry.ScreenToCanvas.
package viewport

import (
	"math"

	"legend-matcher/pkg/geometry"
)

const (
	MinZoom = 0.1
	MaxZoom = 5.0

	// ZoomStep is the factor applied by ZoomIn and ZoomOut.
	ZoomStep = 1.2

	// Per-tick factors for wheel zoom.
	WheelZoomIn  = 1.1
	WheelZoomOut = 0.9

	DefaultPadding = 50.0
)

// State is a snapshot of the viewport transform.
type State struct {
	Zoom float64          `json:"zoom"`
	Pan  geometry.Point2D `json:"pan"`
}

// Viewport owns the zoom level and pan offset of one canvas.
type Viewport struct {
	zoom float64
	pan  geometry.Point2D

	dragging  bool
	dragLast  geometry.Point2D
	onChanged func(State)
}

// New returns a viewport at zoom 1 with no pan.
func New() *Viewport {
	return &Viewport{zoom: 1}
}

// OnChange sets a callback invoked after every transform change.
func (v *Viewport) OnChange(callback func(State)) {
	v.onChanged = callback
}

// State returns the current transform.
func (v *Viewport) State() State {
	return State{Zoom: v.zoom, Pan: v.pan}
}

// Restore sets the transform from a snapshot. Zoom is clamped.
func (v *Viewport) Restore(s State) {
	v.zoom = clamp(s.Zoom)
	v.pan = s.Pan
	v.changed()
}

// Zoom returns the current zoom level.
func (v *Viewport) Zoom() float64 {
	return v.zoom
}

// Pan returns the current pan offset in canvas units.
func (v *Viewport) Pan() geometry.Point2D {
	return v.pan
}

// ZoomIn multiplies the zoom by ZoomStep.
func (v *Viewport) ZoomIn() {
	v.zoom = clamp(v.zoom * ZoomStep)
	v.changed()
}

// ZoomOut divides the zoom by ZoomStep.
func (v *Viewport) ZoomOut() {
	v.zoom = clamp(v.zoom / ZoomStep)
	v.changed()
}

// ZoomAtPoint applies one wheel tick at the pointer position (px, py) in
// canvas-element coordinates. A positive deltaSign zooms out, a negative one
// zooms in, matching wheel delta conventions. The canvas point under the
// pointer stays fixed.
func (v *Viewport) ZoomAtPoint(px, py float64, deltaSign float64) {
	if deltaSign == 0 {
		return
	}
	factor := WheelZoomIn
	if deltaSign > 0 {
		factor = WheelZoomOut
	}

	pointer := geometry.NewPoint2D(px, py)
	anchor := v.ScreenToCanvas(pointer)
	newZoom := clamp(v.zoom * factor)

	v.pan = geometry.Point2D{
		X: px/newZoom - anchor.X,
		Y: py/newZoom - anchor.Y,
	}
	v.zoom = newZoom
	v.changed()
}

// FitToView scales the drawing to fit the viewport with padding on each side,
// never enlarging beyond 1:1, and centers it. Degenerate sizes are ignored.
func (v *Viewport) FitToView(drawing, view geometry.Size, padding float64) {
	if drawing.Empty() || view.Empty() {
		return
	}

	scale := math.Min((view.Width-2*padding)/drawing.Width, (view.Height-2*padding)/drawing.Height)
	scale = math.Min(scale, 1.0)
	if scale <= 0 {
		scale = MinZoom
	}
	scale = clamp(scale)

	offsetX := (view.Width - drawing.Width*scale) / 2
	offsetY := (view.Height - drawing.Height*scale) / 2

	v.zoom = scale
	v.pan = geometry.Point2D{X: offsetX / scale, Y: offsetY / scale}
	v.changed()
}

// Reset returns to zoom 1 with no pan.
func (v *Viewport) Reset() {
	v.zoom = 1
	v.pan = geometry.Point2D{}
	v.dragging = false
	v.changed()
}

// PanBy translates the view by a screen-space delta.
func (v *Viewport) PanBy(dx, dy float64) {
	v.pan = v.pan.Add(geometry.Point2D{X: dx / v.zoom, Y: dy / v.zoom})
	v.changed()
}

// BeginDrag starts a drag-pan at screen position p.
func (v *Viewport) BeginDrag(p geometry.Point2D) {
	v.dragging = true
	v.dragLast = p
}

// DragTo pans by the movement since the last drag position. It does nothing
// unless a drag is active.
func (v *Viewport) DragTo(p geometry.Point2D) {
	if !v.dragging {
		return
	}
	d := p.Sub(v.dragLast)
	v.dragLast = p
	v.PanBy(d.X, d.Y)
}

// EndDrag finishes the active drag.
func (v *Viewport) EndDrag() {
	v.dragging = false
}

// Dragging reports whether a drag-pan is active.
func (v *Viewport) Dragging() bool {
	return v.dragging
}

// ScreenToCanvas converts a canvas-element position to drawing coordinates.
func (v *Viewport) ScreenToCanvas(p geometry.Point2D) geometry.Point2D {
	return geometry.ScreenToCanvas(p, geometry.Point2D{}, v.pan, v.zoom)
}

// CanvasToScreen converts drawing coordinates to a canvas-element position.
func (v *Viewport) CanvasToScreen(p geometry.Point2D) geometry.Point2D {
	return geometry.CanvasToScreen(p, geometry.Point2D{}, v.pan, v.zoom)
}

func (v *Viewport) changed() {
	if v.onChanged != nil {
		v.onChanged(v.State())
	}
}

func clamp(zoom float64) float64 {
	if math.IsNaN(zoom) || zoom < MinZoom {
		return MinZoom
	}
	if zoom > MaxZoom {
		return MaxZoom
	}
	return zoom
}
