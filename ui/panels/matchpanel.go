package panels

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"legend-matcher/internal/app"
	"legend-matcher/internal/legend"
	"legend-matcher/internal/matching"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// MatchPanel lists pending matches and drives create, commit and reset.
type MatchPanel struct {
	state     *app.State
	window    fyne.Window
	container fyne.CanvasObject

	list *widget.List

	// State events can arrive from the catalog watcher goroutine.
	mu      sync.Mutex
	matches []legend.SymbolMatch

	countLabel   *widget.Label
	createButton *widget.Button
	commitButton *widget.Button
	resetButton  *widget.Button
}

// NewMatchPanel creates the match panel.
func NewMatchPanel(state *app.State) *MatchPanel {
	mp := &MatchPanel{state: state}

	mp.countLabel = widget.NewLabel("")

	mp.list = widget.NewList(
		func() int {
			mp.mu.Lock()
			defer mp.mu.Unlock()
			return len(mp.matches)
		},
		func() fyne.CanvasObject {
			edit := widget.NewButtonWithIcon("", theme.DocumentCreateIcon(), nil)
			edit.Importance = widget.LowImportance
			remove := widget.NewButtonWithIcon("", theme.DeleteIcon(), nil)
			remove.Importance = widget.LowImportance
			return container.NewBorder(nil, nil, nil, container.NewHBox(edit, remove), widget.NewLabel(""))
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			m, ok := mp.matchAt(id)
			if !ok {
				return
			}
			row := obj.(*fyne.Container)
			row.Objects[0].(*widget.Label).SetText(matchLabel(m))
			buttons := row.Objects[1].(*fyne.Container).Objects
			buttons[0].(*widget.Button).OnTapped = func() { mp.showClassify(m) }
			buttons[1].(*widget.Button).OnTapped = func() {
				state.RemoveMatch(m.SymbolID, m.TextID)
			}
		},
	)

	mp.createButton = widget.NewButtonWithIcon("Create Match", theme.ContentAddIcon(), func() {
		state.CreateMatch()
	})
	mp.createButton.Importance = widget.HighImportance
	mp.commitButton = widget.NewButtonWithIcon("Commit to Library", theme.DocumentSaveIcon(), mp.onCommit)
	mp.resetButton = widget.NewButtonWithIcon("Reset", theme.ContentClearIcon(), func() {
		state.ResetAll()
	})

	top := container.NewVBox(
		widget.NewLabelWithStyle("Pending Matches", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		mp.countLabel,
		mp.createButton,
	)
	bottom := container.NewGridWithColumns(2, mp.commitButton, mp.resetButton)
	mp.container = container.NewBorder(top, bottom, nil, nil, mp.list)

	sync := func(interface{}) { mp.sync() }
	state.On(app.EventMatchesChanged, sync)
	state.On(app.EventSelectionChanged, sync)
	state.On(app.EventDrawingChanged, sync)

	mp.sync()
	return mp
}

// Container returns the panel container.
func (mp *MatchPanel) Container() fyne.CanvasObject {
	return mp.container
}

// SetWindow sets the parent window for dialogs.
func (mp *MatchPanel) SetWindow(w fyne.Window) {
	mp.window = w
}

func (mp *MatchPanel) sync() {
	matches := mp.state.Matches()
	mp.mu.Lock()
	mp.matches = matches
	mp.mu.Unlock()

	mp.list.Refresh()
	mp.countLabel.SetText(fmt.Sprintf("%d pending", len(matches)))

	if mp.state.CanCreateMatch() {
		mp.createButton.Enable()
	} else {
		mp.createButton.Disable()
	}
	if len(matches) > 0 {
		mp.commitButton.Enable()
	} else {
		mp.commitButton.Disable()
	}
}

func (mp *MatchPanel) matchAt(id widget.ListItemID) (legend.SymbolMatch, bool) {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	if id < 0 || id >= len(mp.matches) {
		return legend.SymbolMatch{}, false
	}
	return mp.matches[id], true
}

func (mp *MatchPanel) onCommit() {
	n, err := mp.state.Commit()
	switch {
	case errors.Is(err, matching.ErrNothingToCommit):
		if mp.window != nil {
			dialog.ShowInformation("Nothing to Commit", "Create at least one symbol match first.", mp.window)
		}
	case err != nil:
		if mp.window != nil {
			dialog.ShowError(err, mp.window)
		}
	default:
		mp.countLabel.SetText(fmt.Sprintf("Committed %d symbols to the library", n))
	}
}

// showClassify opens a form to name and classify a pending match.
func (mp *MatchPanel) showClassify(m legend.SymbolMatch) {
	if mp.window == nil {
		return
	}
	name := widget.NewEntry()
	name.SetText(m.SymbolName)
	category := widget.NewEntry()
	category.SetText(m.Category)
	subcategory := widget.NewEntry()
	subcategory.SetText(m.Subcategory)
	tags := widget.NewEntry()
	tags.SetText(strings.Join(m.Tags, ", "))
	tags.SetPlaceHolder("comma separated")

	items := []*widget.FormItem{
		widget.NewFormItem("Name", name),
		widget.NewFormItem("Category", category),
		widget.NewFormItem("Subcategory", subcategory),
		widget.NewFormItem("Tags", tags),
	}
	dialog.ShowForm("Classify Symbol", "Save", "Cancel", items, func(ok bool) {
		if ok {
			mp.classify(m, name.Text, category.Text, subcategory.Text, tags.Text)
		}
	}, mp.window)
}

// classify applies edited fields to a pending match.
func (mp *MatchPanel) classify(m legend.SymbolMatch, name, category, subcategory, tags string) bool {
	return mp.state.UpdateMatch(classified(m, name, category, subcategory, tags))
}
