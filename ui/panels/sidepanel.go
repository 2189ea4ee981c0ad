// Package panels provides UI panels for the application.
package panels

import (
	"legend-matcher/internal/app"
	"legend-matcher/ui/canvas"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
)

// SidePanel provides the main side panel with tabbed sections.
type SidePanel struct {
	state     *app.State
	container *container.AppTabs

	drawingPanel *DrawingPanel
	matchPanel   *MatchPanel
	libraryPanel *LibraryPanel
}

// NewSidePanel creates a new side panel.
func NewSidePanel(state *app.State, cvs *canvas.LegendCanvas) *SidePanel {
	sp := &SidePanel{state: state}

	sp.drawingPanel = NewDrawingPanel(state, cvs)
	sp.matchPanel = NewMatchPanel(state)
	sp.libraryPanel = NewLibraryPanel(state)

	sp.container = container.NewAppTabs(
		container.NewTabItem("Drawing", sp.drawingPanel.Container()),
		container.NewTabItem("Matches", sp.matchPanel.Container()),
		container.NewTabItem("Library", sp.libraryPanel.Container()),
	)

	return sp
}

// Container returns the panel container.
func (sp *SidePanel) Container() fyne.CanvasObject {
	return sp.container
}

// SetWindow sets the parent window for dialogs.
func (sp *SidePanel) SetWindow(w fyne.Window) {
	sp.matchPanel.SetWindow(w)
	sp.libraryPanel.SetWindow(w)
}

// DrawingPanel returns the drawing selector panel.
func (sp *SidePanel) DrawingPanel() *DrawingPanel {
	return sp.drawingPanel
}

// MatchPanel returns the pending-matches panel.
func (sp *SidePanel) MatchPanel() *MatchPanel {
	return sp.matchPanel
}
