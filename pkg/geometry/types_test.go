package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRectContainsInclusive(t *testing.T) {
	r := NewRect(10, 20, 30, 40)

	assert.True(t, r.Contains(NewPoint2D(10, 20)), "top-left corner")
	assert.True(t, r.Contains(NewPoint2D(40, 60)), "bottom-right corner")
	assert.True(t, r.Contains(NewPoint2D(25, 40)))
	assert.False(t, r.Contains(NewPoint2D(9.99, 30)))
	assert.False(t, r.Contains(NewPoint2D(25, 60.01)))
	assert.True(t, r.Contains(NewPoint2D(40, 20)), "corner is inside")
}

func TestScreenToCanvasRoundTrip(t *testing.T) {
	origin := NewPoint2D(12, 34)
	pan := NewPoint2D(-50, 25)
	zoom := 1.7

	screen := NewPoint2D(300, 200)
	c := ScreenToCanvas(screen, origin, pan, zoom)
	back := CanvasToScreen(c, origin, pan, zoom)

	assert.InDelta(t, screen.X, back.X, 1e-9)
	assert.InDelta(t, screen.Y, back.Y, 1e-9)
}

func TestScreenToCanvasFormula(t *testing.T) {
	c := ScreenToCanvas(NewPoint2D(100, 80), Point2D{}, NewPoint2D(10, 20), 2)
	assert.Equal(t, NewPoint2D(40, 20), c)
}

func TestBoundingBox(t *testing.T) {
	bb := BoundingBox([]Point2D{{X: 3, Y: 9}, {X: -1, Y: 2}, {X: 5, Y: 4}})
	assert.Equal(t, NewRect(-1, 2, 6, 7), bb)
	assert.Equal(t, Rect{}, BoundingBox(nil))
}
