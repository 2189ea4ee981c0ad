package panels

import (
	"testing"

	"legend-matcher/internal/app"
	"legend-matcher/internal/config"
	"legend-matcher/internal/legend"
	"legend-matcher/internal/library"
	"legend-matcher/internal/matching"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newState(t *testing.T) *app.State {
	t.Helper()
	a := test.NewApp()
	t.Cleanup(a.Quit)
	state := app.NewState(config.Default(), legend.SampleCatalog(), library.New(nil), "", nil)
	require.NoError(t, state.SelectDrawing("legend-001"))
	return state
}

func TestSelectionText(t *testing.T) {
	d, err := legend.SampleCatalog().Get("legend-001")
	require.NoError(t, err)

	assert.Equal(t, "No drawing selected", selectionText(nil, matching.Selection{}))
	assert.Equal(t, "Symbol: none\nText: none", selectionText(d, matching.Selection{}))
	assert.Equal(t, "Symbol: sym-002 (88%)\nText: \"Gate Valve\" (98%)",
		selectionText(d, matching.Selection{SymbolID: "sym-002", TextID: "txt-001"}))
}

func TestEntryLabel(t *testing.T) {
	e := &library.Entry{Name: "Gate Valve", Category: "Uncategorized", Subcategory: "Pending", Tags: []string{"gate-valve"}}
	assert.Equal(t, "Gate Valve [Uncategorized/Pending] #gate-valve", entryLabel(e))
	e.Tags = nil
	assert.Equal(t, "Gate Valve [Uncategorized/Pending]", entryLabel(e))
}

func TestFilterEntries(t *testing.T) {
	d, err := legend.SampleCatalog().Get("legend-001")
	require.NoError(t, err)
	lib := library.New(nil)
	lib.AddMatches(d, []legend.SymbolMatch{
		legend.NewMatch(d, d.Symbols[0], d.Texts[0]),
		legend.NewMatch(d, d.Symbols[2], d.Texts[2]),
	})

	assert.Len(t, filterEntries(lib, "  "), 2)
	got := filterEntries(lib, "check")
	require.Len(t, got, 1)
	assert.Equal(t, "Check Valve", got[0].Name)
	assert.Len(t, filterEntries(lib, "Gate Valve"), 1, "name and tag hits are not duplicated")
	assert.Empty(t, filterEntries(lib, "pump"))
}

func TestMatchPanelButtons(t *testing.T) {
	state := newState(t)
	mp := NewMatchPanel(state)

	assert.True(t, mp.createButton.Disabled())
	assert.True(t, mp.commitButton.Disabled())

	state.SelectSymbol("sym-001")
	state.SelectText("txt-001")
	assert.False(t, mp.createButton.Disabled())

	test.Tap(mp.createButton)
	require.Len(t, mp.matches, 1)
	assert.Equal(t, "Gate Valve", mp.matches[0].SymbolName)
	assert.False(t, mp.commitButton.Disabled())
	assert.Equal(t, "1 pending", mp.countLabel.Text)

	test.Tap(mp.commitButton)
	assert.Empty(t, mp.matches)
	assert.Equal(t, 1, state.Library.Len())
	assert.Equal(t, "Committed 1 symbols to the library", mp.countLabel.Text)
}

func TestClassified(t *testing.T) {
	m := legend.SymbolMatch{
		SymbolID: "sym-001", TextID: "txt-001", SymbolName: "Gate Valve",
		Category: "Uncategorized", Subcategory: "Pending", Tags: []string{"gate-valve"},
	}

	got := classified(m, "  ", "Valves", "Isolation", "Gate Valve, isolation,, ")
	assert.Equal(t, "Gate Valve", got.SymbolName, "blank name is kept")
	assert.Equal(t, "Valves", got.Category)
	assert.Equal(t, "Isolation", got.Subcategory)
	assert.Equal(t, []string{"gate-valve", "isolation"}, got.Tags)

	assert.Nil(t, classified(m, "", "", "", "").Tags)
}

func TestMatchPanelClassify(t *testing.T) {
	state := newState(t)
	mp := NewMatchPanel(state)

	state.SelectSymbol("sym-002")
	state.SelectText("txt-002")
	require.True(t, state.CreateMatch())
	require.Len(t, mp.matches, 1)

	assert.True(t, mp.classify(mp.matches[0], "Globe Valve", "Valves", "Control", "globe"))
	require.Len(t, mp.matches, 1, "list refreshed from the session")
	assert.Equal(t, "Valves", mp.matches[0].Category)
	assert.Equal(t, []string{"globe"}, state.Matches()[0].Tags)

	gone := mp.matches[0]
	require.True(t, state.RemoveMatch(gone.SymbolID, gone.TextID))
	assert.False(t, mp.classify(gone, "", "Valves", "", ""))
}

func TestDrawingPanelSync(t *testing.T) {
	state := newState(t)
	dp := NewDrawingPanel(state, nil)

	assert.Equal(t, 0, dp.drawingSelect.SelectedIndex())
	assert.Contains(t, dp.summaryLabel.Text, "3 symbols")

	dp.showTexts.SetChecked(false)
	assert.False(t, state.Visibility().ShowTexts)

	dp.drawingSelect.SetSelectedIndex(1)
	assert.Equal(t, "legend-002", state.Drawing().ID)
}
