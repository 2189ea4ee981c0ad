package viewport

import (
	"math/rand"
	"testing"

	"legend-matcher/pkg/geometry"

	"github.com/stretchr/testify/assert"
)

func TestZoomStaysClamped(t *testing.T) {
	v := New()
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 500; i++ {
		switch rng.Intn(4) {
		case 0:
			v.ZoomIn()
		case 1:
			v.ZoomOut()
		case 2:
			v.ZoomAtPoint(rng.Float64()*800, rng.Float64()*600, -1)
		case 3:
			v.ZoomAtPoint(rng.Float64()*800, rng.Float64()*600, 1)
		}
		assert.GreaterOrEqual(t, v.Zoom(), MinZoom)
		assert.LessOrEqual(t, v.Zoom(), MaxZoom)
	}
}

func TestZoomInOutSteps(t *testing.T) {
	v := New()
	v.ZoomIn()
	assert.InDelta(t, 1.2, v.Zoom(), 1e-12)
	v.ZoomOut()
	v.ZoomOut()
	assert.InDelta(t, 1/1.2, v.Zoom(), 1e-12)

	for i := 0; i < 50; i++ {
		v.ZoomIn()
	}
	assert.Equal(t, MaxZoom, v.Zoom())
}

func TestZoomAtPointKeepsPointerAnchored(t *testing.T) {
	v := New()
	v.PanBy(37, -12)

	pointers := []geometry.Point2D{{X: 120, Y: 80}, {X: 400, Y: 300}, {X: 0, Y: 0}}
	for _, p := range pointers {
		for _, sign := range []float64{-1, 1, -1, -1, 1} {
			before := v.ScreenToCanvas(p)
			v.ZoomAtPoint(p.X, p.Y, sign)
			after := v.ScreenToCanvas(p)
			assert.InDelta(t, before.X, after.X, 1e-9)
			assert.InDelta(t, before.Y, after.Y, 1e-9)
		}
	}
}

func TestZoomAtPointDirection(t *testing.T) {
	v := New()
	v.ZoomAtPoint(10, 10, -3)
	assert.InDelta(t, 1.1, v.Zoom(), 1e-12)

	v.Reset()
	v.ZoomAtPoint(10, 10, 2)
	assert.InDelta(t, 0.9, v.Zoom(), 1e-12)

	v.ZoomAtPoint(10, 10, 0)
	assert.InDelta(t, 0.9, v.Zoom(), 1e-12)
}

func TestFitToView(t *testing.T) {
	v := New()
	drawing := geometry.NewSize(800, 600)
	view := geometry.NewSize(500, 400)

	v.FitToView(drawing, view, DefaultPadding)
	first := v.State()

	// (500-100)/800 = 0.5, (400-100)/600 = 0.5
	assert.InDelta(t, 0.5, first.Zoom, 1e-12)

	// Drawing is centered on screen.
	topLeft := v.CanvasToScreen(geometry.Point2D{})
	bottomRight := v.CanvasToScreen(geometry.NewPoint2D(800, 600))
	assert.InDelta(t, 50, topLeft.X, 1e-9)
	assert.InDelta(t, 50, topLeft.Y, 1e-9)
	assert.InDelta(t, view.Width-bottomRight.X, topLeft.X, 1e-9)
	assert.InDelta(t, view.Height-bottomRight.Y, topLeft.Y, 1e-9)

	v.FitToView(drawing, view, DefaultPadding)
	assert.Equal(t, first, v.State(), "fit is idempotent")
}

func TestFitToViewNeverEnlarges(t *testing.T) {
	v := New()
	v.FitToView(geometry.NewSize(100, 100), geometry.NewSize(1000, 1000), DefaultPadding)
	assert.Equal(t, 1.0, v.Zoom())
	assert.Equal(t, geometry.NewPoint2D(450, 450), v.Pan())
}

func TestFitToViewIgnoresDegenerateSizes(t *testing.T) {
	v := New()
	v.ZoomIn()
	before := v.State()
	v.FitToView(geometry.NewSize(0, 100), geometry.NewSize(500, 500), DefaultPadding)
	v.FitToView(geometry.NewSize(100, 100), geometry.NewSize(500, 0), DefaultPadding)
	assert.Equal(t, before, v.State())
}

func TestResetView(t *testing.T) {
	v := New()
	v.ZoomIn()
	v.PanBy(10, 20)
	v.Reset()
	assert.Equal(t, State{Zoom: 1}, v.State())
}

func TestDragPanIsGated(t *testing.T) {
	v := New()
	v.DragTo(geometry.NewPoint2D(50, 50))
	assert.Equal(t, geometry.Point2D{}, v.Pan(), "move without press does nothing")

	v.BeginDrag(geometry.NewPoint2D(10, 10))
	v.DragTo(geometry.NewPoint2D(30, 5))
	v.DragTo(geometry.NewPoint2D(40, 15))
	assert.True(t, v.Dragging())
	assert.Equal(t, geometry.NewPoint2D(30, 5), v.Pan())

	v.EndDrag()
	v.DragTo(geometry.NewPoint2D(100, 100))
	assert.Equal(t, geometry.NewPoint2D(30, 5), v.Pan())
}

func TestOnChangeNotifies(t *testing.T) {
	v := New()
	var got []State
	v.OnChange(func(s State) { got = append(got, s) })
	v.ZoomIn()
	v.Reset()
	assert.Len(t, got, 2)
	assert.Equal(t, State{Zoom: 1}, got[1])
}
