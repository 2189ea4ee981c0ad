// Package canvas provides the legend canvas widget: a raster view of a legend
// drawing with its recognized regions, click selection, drag pan and wheel
// zoom.
package canvas

import (
	"image"
	"sync"

	"legend-matcher/internal/app"
	"legend-matcher/internal/matching"
	"legend-matcher/internal/render"
	"legend-matcher/pkg/geometry"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"
)

// LegendCanvas draws the active session of an app.State.
type LegendCanvas struct {
	widget.BaseWidget

	state  *app.State
	raster *fynecanvas.Raster

	// Last layout size, used to refit on resize.
	lastSize fyne.Size

	mu         sync.Mutex
	lastOutput *image.RGBA

	onHit func(hit matching.Hit)
}

// NewLegendCanvas creates a canvas bound to state. It refreshes on every
// state event that changes what is drawn.
func NewLegendCanvas(state *app.State) *LegendCanvas {
	lc := &LegendCanvas{state: state}

	lc.raster = fynecanvas.NewRaster(lc.draw)
	lc.raster.ScaleMode = fynecanvas.ImageScalePixels
	lc.raster.SetMinSize(fyne.NewSize(400, 300))

	refresh := func(interface{}) { lc.Refresh() }
	for _, ev := range []app.EventType{
		app.EventSelectionChanged,
		app.EventMatchesChanged,
		app.EventViewportChanged,
		app.EventVisibilityChanged,
	} {
		state.On(ev, refresh)
	}
	state.On(app.EventDrawingChanged, func(interface{}) {
		if state.Config.Canvas.FitOnLoad {
			lc.FitToView()
		}
		lc.Refresh()
	})

	lc.ExtendBaseWidget(lc)
	return lc
}

// OnHit sets a callback invoked after each click with what was hit.
func (lc *LegendCanvas) OnHit(callback func(hit matching.Hit)) {
	lc.onHit = callback
}

// ZoomIn zooms in one step.
func (lc *LegendCanvas) ZoomIn() {
	lc.state.ZoomIn()
}

// ZoomOut zooms out one step.
func (lc *LegendCanvas) ZoomOut() {
	lc.state.ZoomOut()
}

// FitToView fits the drawing into the current widget size.
func (lc *LegendCanvas) FitToView() {
	size := lc.Size()
	if size.Width <= 0 || size.Height <= 0 {
		return
	}
	lc.state.FitToView(lc.pixelSize(size))
}

// ResetView returns to zoom 1 with no pan.
func (lc *LegendCanvas) ResetView() {
	lc.state.ResetView()
}

// RenderedOutput returns the last rendered frame.
func (lc *LegendCanvas) RenderedOutput() *image.RGBA {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	return lc.lastOutput
}

// Tapped selects the region under the pointer.
func (lc *LegendCanvas) Tapped(ev *fyne.PointEvent) {
	// Workaround for Fyne bug: reject clicks outside widget bounds
	size := lc.Size()
	if ev.Position.X < 0 || ev.Position.Y < 0 ||
		ev.Position.X > size.Width || ev.Position.Y > size.Height {
		return
	}

	hit := lc.state.Click(lc.toPixels(ev.Position))
	if lc.onHit != nil {
		lc.onHit(hit)
	}
}

// Dragged pans the view.
func (lc *LegendCanvas) Dragged(ev *fyne.DragEvent) {
	start := lc.toPixels(ev.Position.Subtract(ev.Dragged))
	lc.state.Drag(start, lc.toPixels(ev.Position))
}

// DragEnd finishes a pan.
func (lc *LegendCanvas) DragEnd() {
	lc.state.EndDrag()
}

// Scrolled zooms around the pointer. Wheel up zooms in.
func (lc *LegendCanvas) Scrolled(ev *fyne.ScrollEvent) {
	if ev.Scrolled.DY == 0 {
		return
	}
	lc.state.ZoomAtPoint(lc.toPixels(ev.Position), float64(-ev.Scrolled.DY))
}

// CreateRenderer implements fyne.Widget.
func (lc *LegendCanvas) CreateRenderer() fyne.WidgetRenderer {
	return &legendCanvasRenderer{canvas: lc}
}

func (lc *LegendCanvas) draw(w, h int) image.Image {
	sc := lc.state.Scene(geometry.NewSize(float64(w), float64(h)))
	out := render.Rasterize(render.Render(sc), w, h, lc.state.Sheet())

	lc.mu.Lock()
	lc.lastOutput = out
	lc.mu.Unlock()
	return out
}

// scale returns device pixels per Fyne unit.
func (lc *LegendCanvas) scale() float64 {
	if a := fyne.CurrentApp(); a != nil {
		if c := a.Driver().CanvasForObject(lc); c != nil {
			return float64(c.Scale())
		}
	}
	return 1
}

func (lc *LegendCanvas) toPixels(p fyne.Position) geometry.Point2D {
	s := lc.scale()
	return geometry.Point2D{X: float64(p.X) * s, Y: float64(p.Y) * s}
}

func (lc *LegendCanvas) pixelSize(size fyne.Size) geometry.Size {
	s := lc.scale()
	return geometry.NewSize(float64(size.Width)*s, float64(size.Height)*s)
}

type legendCanvasRenderer struct {
	canvas *LegendCanvas
}

func (r *legendCanvasRenderer) Layout(size fyne.Size) {
	r.canvas.raster.Resize(size)
	if size != r.canvas.lastSize {
		r.canvas.lastSize = size
		r.canvas.FitToView()
	}
}

func (r *legendCanvasRenderer) MinSize() fyne.Size {
	return r.canvas.raster.MinSize()
}

func (r *legendCanvasRenderer) Refresh() {
	r.canvas.raster.Refresh()
}

func (r *legendCanvasRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.canvas.raster}
}

func (r *legendCanvasRenderer) Destroy() {}
