package render

import (
	"image"
	"image/color"
	"testing"

	"legend-matcher/internal/legend"
	"legend-matcher/internal/matching"
	"legend-matcher/internal/viewport"
	"legend-matcher/pkg/colorutil"
	"legend-matcher/pkg/geometry"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleScene(t *testing.T) Scene {
	t.Helper()
	d, err := legend.SampleCatalog().Get("legend-001")
	require.NoError(t, err)
	sym, _ := d.Symbol("sym-001")
	txt, _ := d.Text("txt-001")
	return Scene{
		Drawing:    d,
		Matches:    []legend.SymbolMatch{legend.NewMatch(d, sym, txt)},
		Selection:  matching.Selection{SymbolID: "sym-002", TextID: "txt-003"},
		Viewport:   viewport.State{Zoom: 1},
		Visibility: matching.AllVisible(),
		Size:       geometry.NewSize(800, 600),
	}
}

func strokeColor(t *testing.T, list DrawList, ref string) color.RGBA {
	t.Helper()
	strokes := list.ForRef(ref).Filter(OpStroke)
	require.Len(t, strokes, 1, "stroke for %s", ref)
	return strokes[0].Color
}

func TestRenderOrderAndColors(t *testing.T) {
	list := Render(sampleScene(t))

	require.NotEmpty(t, list)
	assert.Equal(t, OpFill, list[0].Op)
	assert.Equal(t, OpImage, list[1].Op)
	assert.Equal(t, OpLine, list[len(list)-1].Op)

	assert.Equal(t, colorutil.Green, strokeColor(t, list, "sym-001"))
	assert.Equal(t, colorutil.Blue, strokeColor(t, list, "sym-002"))
	assert.Equal(t, colorutil.Gray, strokeColor(t, list, "sym-003"))
	assert.Equal(t, colorutil.Green, strokeColor(t, list, "txt-001"))
	assert.Equal(t, colorutil.Gray, strokeColor(t, list, "txt-002"))
	assert.Equal(t, colorutil.Amber, strokeColor(t, list, "txt-003"))
}

func TestRenderLabels(t *testing.T) {
	list := Render(sampleScene(t))

	symLabels := list.ForRef("sym-001").Filter(OpText)
	require.Len(t, symLabels, 1)
	assert.Equal(t, "95%", symLabels[0].Text)

	txtLabels := list.ForRef("txt-002").Filter(OpText)
	require.Len(t, txtLabels, 2)
	assert.Equal(t, "Globe Valve", txtLabels[0].Text)
	assert.Equal(t, "96%", txtLabels[1].Text)
}

func TestRenderConnectorBetweenCenters(t *testing.T) {
	sc := sampleScene(t)
	sc.Viewport = viewport.State{Zoom: 2, Pan: geometry.NewPoint2D(10, 0)}
	lines := Render(sc).Filter(OpLine)

	want := DrawList{{
		Op:     OpLine,
		From:   geometry.NewPoint2D((70+10)*2, 70*2),
		To:     geometry.NewPoint2D((160+10)*2, 70*2),
		Color:  colorutil.Green,
		Width:  connectorWidth,
		Dashed: true,
		Ref:    "sym-001|txt-001",
	}}
	if diff := cmp.Diff(want, lines); diff != "" {
		t.Errorf("connector mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderVisibilityToggles(t *testing.T) {
	sc := sampleScene(t)

	sc.Visibility = matching.Visibility{ShowTexts: true, ShowMatched: true}
	list := Render(sc)
	assert.Empty(t, list.ForRef("sym-002"))
	assert.NotEmpty(t, list.ForRef("txt-002"))

	sc.Visibility = matching.Visibility{ShowSymbols: true, ShowMatched: true}
	list = Render(sc)
	assert.Empty(t, list.ForRef("txt-002"))
	assert.NotEmpty(t, list.ForRef("sym-002"))

	sc.Visibility = matching.Visibility{ShowSymbols: true, ShowTexts: true}
	list = Render(sc)
	assert.Empty(t, list.ForRef("sym-001"), "matched symbol hidden")
	assert.Empty(t, list.ForRef("txt-001"), "matched text hidden")
	assert.Empty(t, list.Filter(OpLine))
	assert.NotEmpty(t, list.ForRef("sym-003"))
}

func TestRenderIsPure(t *testing.T) {
	sc := sampleScene(t)
	before := sc.Matches[0]
	first := Render(sc)
	second := Render(sc)
	assert.Equal(t, first, second)
	assert.Equal(t, before, sc.Matches[0])
}

func TestRenderWithoutDrawing(t *testing.T) {
	list := Render(Scene{Size: geometry.NewSize(10, 10)})
	require.Len(t, list, 1)
	assert.Equal(t, OpFill, list[0].Op)
}

func TestSceneFromSession(t *testing.T) {
	d, err := legend.SampleCatalog().Get("legend-001")
	require.NoError(t, err)
	s := matching.NewSession(d, nil)
	s.SelectSymbol("sym-003")

	sc := SceneFromSession(s, geometry.NewSize(640, 480))
	assert.Equal(t, d, sc.Drawing)
	assert.Equal(t, "sym-003", sc.Selection.SymbolID)
	assert.Equal(t, colorutil.Blue, strokeColor(t, Render(sc), "sym-003"))
}

func TestRasterizePaintsStrokes(t *testing.T) {
	img := Rasterize(Render(sampleScene(t)), 800, 600, nil)

	assert.Equal(t, colorutil.Background, img.RGBAAt(700, 590))
	assert.Equal(t, colorutil.Blue, img.RGBAAt(50, 125), "left edge of selected sym-002")
	assert.Equal(t, colorutil.Green, img.RGBAAt(60, 50), "top edge of matched sym-001")
}

func TestRasterizeScalesSheet(t *testing.T) {
	sc := sampleScene(t)
	sc.Viewport = viewport.State{Zoom: 0.5}

	sheet := image.NewRGBA(image.Rect(0, 0, 80, 60))
	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	for i := range sheet.Pix {
		sheet.Pix[i] = 255
	}

	img := Rasterize(Render(sc), 800, 600, sheet)
	assert.Equal(t, white, img.RGBAAt(390, 290), "inside the scaled sheet")
	assert.Equal(t, colorutil.Background, img.RGBAAt(700, 590), "outside the scaled sheet")
}
