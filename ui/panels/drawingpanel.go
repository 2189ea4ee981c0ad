package panels

import (
	"sync"
	"sync/atomic"

	"legend-matcher/internal/app"
	"legend-matcher/internal/legend"
	"legend-matcher/internal/matching"
	"legend-matcher/ui/canvas"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// DrawingPanel selects the legend drawing and the visible region kinds.
type DrawingPanel struct {
	state     *app.State
	canvas    *canvas.LegendCanvas
	container fyne.CanvasObject

	drawingSelect  *widget.Select
	summaryLabel   *widget.Label
	selectionLabel *widget.Label
	statusLabel    *widget.Label

	showSymbols *widget.Check
	showTexts   *widget.Check
	showMatched *widget.Check

	// Set while widgets are updated from state, so their callbacks do not
	// write back.
	syncing atomic.Bool

	mu  sync.Mutex
	ids []string
}

// NewDrawingPanel creates the drawing panel.
func NewDrawingPanel(state *app.State, cvs *canvas.LegendCanvas) *DrawingPanel {
	dp := &DrawingPanel{
		state:  state,
		canvas: cvs,
	}

	dp.summaryLabel = widget.NewLabel("")
	dp.summaryLabel.Wrapping = fyne.TextWrapWord
	dp.selectionLabel = widget.NewLabel(selectionText(nil, matching.Selection{}))
	dp.statusLabel = widget.NewLabel("")
	dp.statusLabel.Wrapping = fyne.TextWrapWord

	dp.drawingSelect = widget.NewSelect(nil, func(selected string) {
		if dp.syncing.Load() {
			return
		}
		id, ok := dp.idAt(dp.drawingSelect.SelectedIndex())
		if !ok {
			return
		}
		if err := state.SelectDrawing(id); err != nil {
			dp.statusLabel.SetText(err.Error())
		}
	})
	dp.drawingSelect.PlaceHolder = "Select a legend drawing"

	onVisibility := func(bool) {
		if dp.syncing.Load() {
			return
		}
		state.SetVisibility(matching.Visibility{
			ShowSymbols: dp.showSymbols.Checked,
			ShowTexts:   dp.showTexts.Checked,
			ShowMatched: dp.showMatched.Checked,
		})
	}
	dp.showSymbols = widget.NewCheck("Show symbols", onVisibility)
	dp.showTexts = widget.NewCheck("Show texts", onVisibility)
	dp.showMatched = widget.NewCheck("Show matched", onVisibility)

	fitButton := widget.NewButton("Fit to View", func() {
		cvs.FitToView()
	})

	dp.container = container.NewVBox(
		widget.NewLabelWithStyle("Legend Drawing", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		dp.drawingSelect,
		dp.summaryLabel,
		widget.NewSeparator(),
		widget.NewLabelWithStyle("Visibility", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		dp.showSymbols,
		dp.showTexts,
		dp.showMatched,
		fitButton,
		widget.NewSeparator(),
		widget.NewLabelWithStyle("Selection", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		dp.selectionLabel,
		dp.statusLabel,
	)

	state.On(app.EventCatalogChanged, func(interface{}) { dp.syncCatalog() })
	state.On(app.EventDrawingChanged, func(interface{}) { dp.syncDrawing() })
	state.On(app.EventVisibilityChanged, func(interface{}) { dp.syncVisibility() })
	state.On(app.EventDraftLoaded, func(interface{}) { dp.syncVisibility() })
	state.On(app.EventSelectionChanged, func(interface{}) {
		dp.selectionLabel.SetText(selectionText(state.Drawing(), state.Selection()))
	})

	dp.syncCatalog()
	dp.syncVisibility()
	return dp
}

// Container returns the panel container.
func (dp *DrawingPanel) Container() fyne.CanvasObject {
	return dp.container
}

func (dp *DrawingPanel) syncCatalog() {
	cat := dp.state.Catalog()
	dp.mu.Lock()
	dp.ids = cat.IDs()
	dp.mu.Unlock()

	dp.syncing.Store(true)
	dp.drawingSelect.Options = cat.Names()
	dp.drawingSelect.Refresh()
	dp.syncing.Store(false)
	dp.syncDrawing()
}

func (dp *DrawingPanel) syncDrawing() {
	d := dp.state.Drawing()
	dp.syncing.Store(true)
	defer dp.syncing.Store(false)

	if d == nil {
		dp.drawingSelect.ClearSelected()
		dp.summaryLabel.SetText("")
	} else {
		if i := dp.indexOf(d.ID); i >= 0 {
			dp.drawingSelect.SetSelectedIndex(i)
		}
		dp.summaryLabel.SetText(drawingSummary(d))
	}
	dp.selectionLabel.SetText(selectionText(d, dp.state.Selection()))
	dp.statusLabel.SetText(imageStatus(d, dp.state))
}

func (dp *DrawingPanel) syncVisibility() {
	v := dp.state.Visibility()
	dp.syncing.Store(true)
	dp.showSymbols.SetChecked(v.ShowSymbols)
	dp.showTexts.SetChecked(v.ShowTexts)
	dp.showMatched.SetChecked(v.ShowMatched)
	dp.syncing.Store(false)
}

func (dp *DrawingPanel) idAt(i int) (string, bool) {
	dp.mu.Lock()
	defer dp.mu.Unlock()
	if i < 0 || i >= len(dp.ids) {
		return "", false
	}
	return dp.ids[i], true
}

func (dp *DrawingPanel) indexOf(id string) int {
	dp.mu.Lock()
	defer dp.mu.Unlock()
	for i, v := range dp.ids {
		if v == id {
			return i
		}
	}
	return -1
}

func imageStatus(d *legend.Drawing, state *app.State) string {
	if d == nil || d.ImagePath == "" || state.Sheet() != nil {
		return ""
	}
	return "Legend image could not be loaded: " + d.ImagePath
}
