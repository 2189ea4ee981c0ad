package recognize

import (
	"image"
	"testing"

	"legend-matcher/pkg/geometry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testParams = Params{
	MinSymbolArea:  100,
	MaxSymbolArea:  10000,
	MaxAspectRatio: 3,
	MinConfidence:  0.5,
	LineTolerance:  6,
}

func TestMergeWordsJoinsLines(t *testing.T) {
	words := []Word{
		{Text: "Valve", Box: geometry.NewRect(160, 62, 50, 16), Confidence: 0.9},
		{Text: "Check", Box: geometry.NewRect(110, 200, 50, 16), Confidence: 0.8},
		{Text: "Gate", Box: geometry.NewRect(110, 60, 44, 18), Confidence: 0.95},
		{Text: "Valve", Box: geometry.NewRect(166, 201, 50, 16), Confidence: 0.7},
		{Text: "  ", Box: geometry.NewRect(0, 0, 5, 5), Confidence: 0.1},
	}

	labels := MergeWords(words, testParams.LineTolerance)
	require.Len(t, labels, 2)
	assert.Equal(t, "Gate Valve", labels[0].Text)
	assert.Equal(t, geometry.NewRect(110, 60, 100, 18), labels[0].Box)
	assert.Equal(t, 0.9, labels[0].Confidence)
	assert.Equal(t, "Check Valve", labels[1].Text)
	assert.Equal(t, 0.7, labels[1].Confidence)
}

func TestMergeWordsKeepsDistantWordsApart(t *testing.T) {
	words := []Word{
		{Text: "A", Box: geometry.NewRect(0, 0, 10, 10), Confidence: 1},
		{Text: "B", Box: geometry.NewRect(200, 0, 10, 10), Confidence: 1},
	}
	assert.Len(t, MergeWords(words, 6), 2)
}

func TestFilterSymbols(t *testing.T) {
	outlines := []Outline{
		{Box: geometry.NewRect(50, 120, 40, 40)},  // kept, second in order
		{Box: geometry.NewRect(50, 50, 40, 40)},   // kept, first in order
		{Box: geometry.NewRect(0, 0, 5, 5)},       // too small
		{Box: geometry.NewRect(0, 300, 200, 20)},  // too elongated
		{Box: geometry.NewRect(105, 55, 40, 40)},  // overlaps a label
		{Box: geometry.NewRect(0, 0, 500, 500)},   // too large
	}
	labels := []Word{{Text: "Gate Valve", Box: geometry.NewRect(110, 60, 100, 18)}}

	got := FilterSymbols(outlines, labels, testParams)
	require.Len(t, got, 2)
	assert.Equal(t, 50.0, got[0].Box.Y)
	assert.Equal(t, 120.0, got[1].Box.Y)
}

func TestShapePath(t *testing.T) {
	pts := []image.Point{{X: 50, Y: 50}, {X: 90, Y: 50}, {X: 90, Y: 90}}
	assert.Equal(t, "M0,0 L40,0 L40,40 Z", ShapePath(pts, geometry.NewRect(50, 50, 40, 40)))
	assert.Equal(t, "", ShapePath(nil, geometry.Rect{}))
}

func TestAssemble(t *testing.T) {
	outlines := []Outline{{Box: geometry.NewRect(50, 50, 40, 40), Solidity: 0.8}}
	labels := []Word{
		{Text: "Gate Valve", Box: geometry.NewRect(110, 60, 100, 18), Confidence: 0.9},
		{Text: "noise", Box: geometry.NewRect(400, 400, 20, 10), Confidence: 0.2},
	}

	d := Assemble("legend-x", "Scan", geometry.NewSize(800, 600), outlines, labels, testParams)
	require.NoError(t, d.Validate())
	require.Len(t, d.Symbols, 1)
	require.Len(t, d.Texts, 1)
	assert.Equal(t, "sym-001", d.Symbols[0].ID)
	assert.Equal(t, "txt-001", d.Texts[0].ID)
	assert.Equal(t, "Gate Valve", d.Texts[0].Text)
	assert.Equal(t, 0.8, d.Symbols[0].Confidence)
}

func TestNewOutline(t *testing.T) {
	contour := []image.Point{{X: 10, Y: 20}, {X: 50, Y: 20}, {X: 50, Y: 60}, {X: 30, Y: 70}, {X: 10, Y: 60}}
	approx := contour[:4]

	o, ok := NewOutline(contour, approx, 1400)
	require.True(t, ok)
	assert.Equal(t, geometry.NewRect(10, 20, 40, 50), o.Box)
	assert.Equal(t, approx, o.Points)
	assert.InDelta(t, 0.7, o.Solidity, 1e-9)

	_, ok = NewOutline([]image.Point{{X: 5, Y: 5}, {X: 5, Y: 40}}, nil, 0)
	assert.False(t, ok, "a vertical line has no area")
	_, ok = NewOutline(nil, nil, 0)
	assert.False(t, ok)
}
