package matching

import (
	"errors"
	"testing"

	"legend-matcher/internal/legend"
	"legend-matcher/internal/viewport"
	"legend-matcher/pkg/geometry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDrawing(t *testing.T) *legend.Drawing {
	t.Helper()
	d, err := legend.SampleCatalog().Get("legend-001")
	require.NoError(t, err)
	return d
}

// recorder collects committed batches.
type recorder struct {
	batches [][]legend.SymbolMatch
	err     error
}

func (r *recorder) AddSymbols(m []legend.SymbolMatch) error {
	if r.err != nil {
		return r.err
	}
	r.batches = append(r.batches, m)
	return nil
}

func TestHitTestOrder(t *testing.T) {
	d := &legend.Drawing{
		ID:      "overlap",
		Symbols: []legend.RecognizedSymbol{{ID: "s1", X: 0, Y: 0, Width: 10, Height: 10}, {ID: "s2", X: 5, Y: 5, Width: 10, Height: 10}},
		Texts:   []legend.RecognizedText{{ID: "t1", X: 0, Y: 0, Width: 20, Height: 20}},
	}

	assert.Equal(t, Hit{Kind: HitSymbol, ID: "s1"}, HitTest(d, geometry.NewPoint2D(7, 7)), "first symbol wins")
	assert.Equal(t, Hit{Kind: HitSymbol, ID: "s2"}, HitTest(d, geometry.NewPoint2D(12, 12)))
	assert.Equal(t, Hit{Kind: HitText, ID: "t1"}, HitTest(d, geometry.NewPoint2D(18, 2)))
	assert.Equal(t, Hit{}, HitTest(d, geometry.NewPoint2D(50, 50)))
	assert.Equal(t, Hit{}, HitTest(nil, geometry.Point2D{}))
}

func TestSelectionToggling(t *testing.T) {
	s := NewSession(sampleDrawing(t), nil)

	s.SelectSymbol("sym-001")
	assert.Equal(t, SymbolSelected, s.Phase())
	s.SelectSymbol("sym-001")
	assert.Equal(t, Idle, s.Phase())

	s.SelectSymbol("sym-001")
	s.SelectSymbol("sym-002")
	assert.Equal(t, Selection{SymbolID: "sym-002"}, s.Selection())

	s.SelectText("txt-003")
	assert.Equal(t, BothSelected, s.Phase())
	s.SelectSymbol("sym-001")
	assert.Equal(t, "txt-003", s.Selection().TextID, "symbol changes leave text alone")
	s.SelectSymbol("sym-001")
	assert.Equal(t, TextSelected, s.Phase())
	s.SelectText("txt-002")
	assert.Equal(t, Selection{TextID: "txt-002"}, s.Selection())
}

func TestClickResolvesThroughViewport(t *testing.T) {
	s := NewSession(sampleDrawing(t), nil)
	s.Viewport().Restore(viewport.State{Zoom: 2, Pan: geometry.NewPoint2D(10, 10)})

	// sym-001 spans (50,50)-(90,90); canvas (60,60) -> screen (140,140).
	hit := s.Click(geometry.NewPoint2D(140, 140))
	assert.Equal(t, Hit{Kind: HitSymbol, ID: "sym-001"}, hit)
	assert.Equal(t, SymbolSelected, s.Phase())

	// txt-001 spans (110,60)-(210,80); canvas (150,70) -> screen (320,160).
	hit = s.Click(geometry.NewPoint2D(320, 160))
	assert.Equal(t, HitText, hit.Kind)
	assert.Equal(t, BothSelected, s.Phase())

	hit = s.Click(geometry.NewPoint2D(5, 5))
	assert.Equal(t, HitNone, hit.Kind)
	assert.Equal(t, Idle, s.Phase(), "empty click clears both")
}

func TestCreateMatchRequiresBothSelections(t *testing.T) {
	s := NewSession(sampleDrawing(t), nil)
	s.SelectSymbol("sym-001")
	before := s.Snapshot()

	_, ok := s.CreateMatch()
	assert.False(t, ok)
	assert.Equal(t, before, s.Snapshot(), "state unchanged")
	assert.False(t, s.CanCreateMatch())
}

func TestDuplicatePairIsNotAdded(t *testing.T) {
	s := NewSession(sampleDrawing(t), nil)

	s.SelectSymbol("sym-001")
	s.SelectText("txt-001")
	_, ok := s.CreateMatch()
	require.True(t, ok)

	s.SelectSymbol("sym-001")
	s.SelectText("txt-001")
	assert.False(t, s.CanCreateMatch())
	_, ok = s.CreateMatch()
	assert.False(t, ok)
	assert.Len(t, s.Matches(), 1)
	assert.Equal(t, BothSelected, s.Phase(), "rejected duplicate keeps selection")

	// The same symbol may still pair with a different label.
	s.SelectText("txt-002")
	_, ok = s.CreateMatch()
	assert.True(t, ok)
	assert.Len(t, s.Matches(), 2)
}

func TestRemoveMatchKeepsSelection(t *testing.T) {
	s := NewSession(sampleDrawing(t), nil)
	s.SelectSymbol("sym-002")
	s.SelectText("txt-002")
	_, ok := s.CreateMatch()
	require.True(t, ok)
	assert.True(t, s.IsMatchedSymbol("sym-002"))
	assert.True(t, s.IsMatchedText("txt-002"))

	s.SelectSymbol("sym-003")
	assert.True(t, s.RemoveMatch("sym-002", "txt-002"))
	assert.False(t, s.RemoveMatch("sym-002", "txt-002"))
	assert.Empty(t, s.Matches())
	assert.Equal(t, Selection{SymbolID: "sym-003"}, s.Selection())
	assert.False(t, s.IsMatchedSymbol("sym-002"))
}

func TestUpdateMatch(t *testing.T) {
	s := NewSession(sampleDrawing(t), nil)
	s.SelectSymbol("sym-001")
	s.SelectText("txt-001")
	m, ok := s.CreateMatch()
	require.True(t, ok)

	changes := 0
	s.OnChange(func() { changes++ })

	m.Category = "Valves"
	m.Subcategory = "Isolation"
	m.Tags = []string{"gate-valve", "isolation"}
	assert.True(t, s.UpdateMatch(m))
	assert.Equal(t, 1, changes)

	got := s.Matches()
	require.Len(t, got, 1)
	assert.Equal(t, "Valves", got[0].Category)
	assert.Equal(t, "Isolation", got[0].Subcategory)
	assert.Equal(t, []string{"gate-valve", "isolation"}, got[0].Tags)

	m.TextID = "txt-002"
	assert.False(t, s.UpdateMatch(m), "pair must already be matched")
	assert.Equal(t, 1, changes)
}

func TestCommitEmpty(t *testing.T) {
	s := NewSession(sampleDrawing(t), nil)
	rec := &recorder{}
	assert.ErrorIs(t, s.Commit(rec), ErrNothingToCommit)
	assert.Empty(t, rec.batches)
}

func TestCommitAndReset(t *testing.T) {
	s := NewSession(sampleDrawing(t), nil)
	for _, pair := range [][2]string{{"sym-001", "txt-001"}, {"sym-002", "txt-002"}} {
		s.SelectSymbol(pair[0])
		s.SelectText(pair[1])
		_, ok := s.CreateMatch()
		require.True(t, ok)
	}
	s.Viewport().ZoomIn()
	s.Viewport().PanBy(40, 40)

	rec := &recorder{}
	require.NoError(t, s.Commit(rec))

	require.Len(t, rec.batches, 1)
	batch := rec.batches[0]
	require.Len(t, batch, 2)
	assert.True(t, batch[0].Pairs("sym-001", "txt-001"))
	assert.True(t, batch[1].Pairs("sym-002", "txt-002"))

	assert.Empty(t, s.Matches())
	assert.Equal(t, Idle, s.Phase())
	assert.Equal(t, viewport.State{Zoom: 1}, s.Viewport().State())
}

func TestCommitFailureKeepsState(t *testing.T) {
	s := NewSession(sampleDrawing(t), nil)
	s.SelectSymbol("sym-001")
	s.SelectText("txt-001")
	_, ok := s.CreateMatch()
	require.True(t, ok)

	rec := &recorder{err: errors.New("disk full")}
	err := s.Commit(rec)
	require.Error(t, err)
	assert.Len(t, s.Matches(), 1)
}

func TestCommittedBatchIsDetached(t *testing.T) {
	s := NewSession(sampleDrawing(t), nil)
	s.SelectSymbol("sym-003")
	s.SelectText("txt-003")
	_, ok := s.CreateMatch()
	require.True(t, ok)

	rec := &recorder{}
	require.NoError(t, s.Commit(rec))
	got := rec.batches[0]

	got[0].Tags[0] = "changed"
	s.SelectSymbol("sym-003")
	s.SelectText("txt-003")
	m, ok := s.CreateMatch()
	require.True(t, ok)
	assert.Equal(t, []string{"check-valve"}, m.Tags)
}

func TestSetDrawingResetsEverything(t *testing.T) {
	cat := legend.SampleCatalog()
	first, _ := cat.Get("legend-001")
	second, _ := cat.Get("legend-002")

	s := NewSession(first, nil)
	s.SelectSymbol("sym-001")
	s.SelectText("txt-001")
	s.CreateMatch()
	s.SelectSymbol("sym-002")
	s.Viewport().ZoomIn()

	s.SetDrawing(second)
	assert.Equal(t, second, s.Drawing())
	assert.Empty(t, s.Matches())
	assert.Equal(t, Idle, s.Phase())
	assert.Equal(t, 1.0, s.Viewport().Zoom())
}

func TestSnapshotRestore(t *testing.T) {
	d := sampleDrawing(t)
	s := NewSession(d, nil)
	s.SelectSymbol("sym-001")
	s.SelectText("txt-001")
	s.CreateMatch()
	s.SetVisibility(Visibility{ShowSymbols: true})
	s.Viewport().ZoomIn()
	snap := s.Snapshot()
	snap.Matches = append(snap.Matches, legend.SymbolMatch{SymbolID: "sym-999", TextID: "txt-001"})

	restored := NewSession(d, nil)
	require.NoError(t, restored.Restore(snap))
	assert.Len(t, restored.Matches(), 1, "unknown symbol dropped")
	assert.Equal(t, Visibility{ShowSymbols: true}, restored.Visibility())
	assert.InDelta(t, 1.2, restored.Viewport().Zoom(), 1e-12)

	other := NewSession(&legend.Drawing{ID: "other"}, nil)
	assert.Error(t, other.Restore(snap))
}

func TestEndToEndLegendScenario(t *testing.T) {
	d := sampleDrawing(t)
	s := NewSession(d, nil)
	changes := 0
	s.OnChange(func() { changes++ })

	s.SelectSymbol("sym-001")
	assert.Equal(t, SymbolSelected, s.Phase())
	s.SelectText("txt-001")
	assert.Equal(t, BothSelected, s.Phase())

	m, ok := s.CreateMatch()
	require.True(t, ok)
	assert.Equal(t, "sym-001", m.SymbolID)
	assert.Equal(t, "txt-001", m.TextID)
	assert.Equal(t, "Gate Valve", m.SymbolName)
	assert.Equal(t, Idle, s.Phase())

	rec := &recorder{}
	require.NoError(t, s.Commit(rec))
	require.Len(t, rec.batches, 1)
	assert.Equal(t, []legend.SymbolMatch{m}, rec.batches[0])
	assert.Empty(t, s.Matches())
	assert.Greater(t, changes, 0)
}
