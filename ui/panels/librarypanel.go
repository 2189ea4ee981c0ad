package panels

import (
	"fmt"
	"strings"

	"legend-matcher/internal/app"
	"legend-matcher/internal/library"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// LibraryPanel shows the symbol library.
type LibraryPanel struct {
	state     *app.State
	window    fyne.Window
	container fyne.CanvasObject

	filter     *widget.Entry
	list       *widget.List
	entries    []*library.Entry
	countLabel *widget.Label
}

// NewLibraryPanel creates the library panel.
func NewLibraryPanel(state *app.State) *LibraryPanel {
	lp := &LibraryPanel{state: state}

	lp.countLabel = widget.NewLabel("")
	lp.filter = widget.NewEntry()
	lp.filter.SetPlaceHolder("Filter by name or tag")
	lp.filter.OnChanged = func(string) { lp.sync() }

	lp.list = widget.NewList(
		func() int { return len(lp.entries) },
		func() fyne.CanvasObject {
			remove := widget.NewButtonWithIcon("", theme.DeleteIcon(), nil)
			remove.Importance = widget.LowImportance
			return container.NewBorder(nil, nil, nil, remove, widget.NewLabel(""))
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			if id >= len(lp.entries) {
				return
			}
			e := lp.entries[id]
			row := obj.(*fyne.Container)
			row.Objects[0].(*widget.Label).SetText(entryLabel(e))
			row.Objects[1].(*widget.Button).OnTapped = func() { lp.confirmRemove(e) }
		},
	)

	top := container.NewVBox(
		widget.NewLabelWithStyle("Symbol Library", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		lp.filter,
		lp.countLabel,
	)
	lp.container = container.NewBorder(top, nil, nil, nil, lp.list)

	state.On(app.EventLibraryChanged, func(interface{}) { lp.sync() })

	lp.sync()
	return lp
}

// Container returns the panel container.
func (lp *LibraryPanel) Container() fyne.CanvasObject {
	return lp.container
}

// SetWindow sets the parent window for dialogs.
func (lp *LibraryPanel) SetWindow(w fyne.Window) {
	lp.window = w
}

func (lp *LibraryPanel) sync() {
	lp.entries = filterEntries(lp.state.Library, lp.filter.Text)
	lp.list.Refresh()
	lp.countLabel.SetText(fmt.Sprintf("%d of %d symbols", len(lp.entries), lp.state.Library.Len()))
}

func (lp *LibraryPanel) confirmRemove(e *library.Entry) {
	remove := func() {
		if err := lp.state.RemoveLibraryEntry(e.ID); err != nil && lp.window != nil {
			dialog.ShowError(err, lp.window)
		}
	}
	if lp.window == nil {
		remove()
		return
	}
	dialog.ShowConfirm("Remove Symbol", fmt.Sprintf("Remove %q from the library?", e.Name), func(ok bool) {
		if ok {
			remove()
		}
	}, lp.window)
}

// filterEntries returns entries whose name contains query or that carry it
// as a tag. An empty query returns everything.
func filterEntries(lib *library.Library, query string) []*library.Entry {
	query = strings.TrimSpace(query)
	if query == "" {
		return lib.Entries()
	}

	q := strings.ToLower(query)
	seen := make(map[string]bool)
	var out []*library.Entry
	for _, e := range lib.Entries() {
		if strings.Contains(strings.ToLower(e.Name), q) {
			out = append(out, e)
			seen[e.ID] = true
		}
	}
	for _, e := range lib.FindByTag(query) {
		if !seen[e.ID] {
			out = append(out, e)
		}
	}
	return out
}
