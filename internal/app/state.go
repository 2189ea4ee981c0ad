// Package app provides application state and events for the legend matcher.
package app

import (
	"errors"
	"fmt"
	goimage "image"
	"os"
	"path/filepath"
	"sync"

	"legend-matcher/internal/config"
	"legend-matcher/internal/legend"
	"legend-matcher/internal/library"
	"legend-matcher/internal/logging"
	"legend-matcher/internal/matching"
	"legend-matcher/internal/project"
	"legend-matcher/internal/render"
	"legend-matcher/internal/sheet"
	"legend-matcher/internal/viewport"
	"legend-matcher/pkg/geometry"

	"go.uber.org/zap"
)

// State holds the catalog, the symbol library and the active matching session.
//
// All methods are safe for concurrent use. The Fyne event loop, its render
// loop, the catalog watcher and background recognition all call in, so every
// access to the session goes through lock. Listeners run after the lock is
// released and may call back into State.
type State struct {
	Config      *config.Config
	Library     *library.Library
	LibraryPath string

	lock    sync.Mutex // guards catalog, session, sheet and pending
	catalog *legend.Catalog
	session *matching.Session
	sheet   goimage.Image
	pending []pendingEvent

	sheets *sheet.Cache
	logger *zap.Logger

	// Event listeners
	mu        sync.RWMutex
	listeners map[EventType][]EventListener
}

// EventType identifies different application events.
type EventType int

const (
	EventDrawingChanged EventType = iota
	EventSelectionChanged
	EventMatchesChanged
	EventViewportChanged
	EventVisibilityChanged
	EventCommitted
	EventLibraryChanged
	EventDraftSaved
	EventDraftLoaded
	EventCatalogChanged
)

// EventListener is called when an event occurs.
type EventListener func(data interface{})

type pendingEvent struct {
	event EventType
	data  interface{}
}

// NewState creates the application state. No drawing is selected yet.
func NewState(cfg *config.Config, cat *legend.Catalog, lib *library.Library, libraryPath string, logger *zap.Logger) *State {
	if cfg == nil {
		cfg = config.Default()
	}
	if cat == nil {
		cat = &legend.Catalog{}
	}
	logger = logging.OrNop(logger)
	s := &State{
		Config:      cfg,
		Library:     lib,
		LibraryPath: libraryPath,
		catalog:     cat,
		session:     matching.NewSession(nil, logger),
		sheets:      sheet.NewCache(),
		logger:      logger,
		listeners:   make(map[EventType][]EventListener),
	}
	// Viewport changes only happen inside update, with lock held.
	s.session.Viewport().OnChange(func(vs viewport.State) {
		s.queue(EventViewportChanged, vs)
	})
	return s
}

// On registers an event listener for the specified event type.
func (s *State) On(event EventType, listener EventListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[event] = append(s.listeners[event], listener)
}

// Emit triggers all listeners for the specified event type.
func (s *State) Emit(event EventType, data interface{}) {
	s.mu.RLock()
	listeners := s.listeners[event]
	s.mu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}

// update runs fn with the lock held, then emits the events fn queued.
func (s *State) update(fn func()) {
	s.lock.Lock()
	fn()
	events := s.pending
	s.pending = nil
	s.lock.Unlock()

	for _, e := range events {
		s.Emit(e.event, e.data)
	}
}

// queue records an event for delivery when update returns. Lock must be held.
func (s *State) queue(event EventType, data interface{}) {
	s.pending = append(s.pending, pendingEvent{event: event, data: data})
}

// Catalog returns the current catalog. A catalog is never modified after it
// is published; AddDrawing and ReloadCatalog replace it.
func (s *State) Catalog() *legend.Catalog {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.catalog
}

// Drawing returns the selected drawing, or nil.
func (s *State) Drawing() *legend.Drawing {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.session.Drawing()
}

// Sheet returns the decoded image of the selected drawing, or nil when the
// drawing has no image or it could not be loaded.
func (s *State) Sheet() goimage.Image {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.sheet
}

// Selection returns the current selection.
func (s *State) Selection() matching.Selection {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.session.Selection()
}

// Phase returns the selection phase.
func (s *State) Phase() matching.Phase {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.session.Phase()
}

// CanCreateMatch reports whether CreateMatch would add a match.
func (s *State) CanCreateMatch() bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.session.CanCreateMatch()
}

// Matches returns a copy of the pending matches.
func (s *State) Matches() []legend.SymbolMatch {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.session.Matches()
}

// Visibility returns the canvas visibility flags.
func (s *State) Visibility() matching.Visibility {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.session.Visibility()
}

// Viewport returns the current zoom and pan.
func (s *State) Viewport() viewport.State {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.session.Viewport().State()
}

// Snapshot returns a copy of the session.
func (s *State) Snapshot() matching.Snapshot {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.session.Snapshot()
}

// Scene captures what the canvas should draw at the given pixel size.
func (s *State) Scene(size geometry.Size) render.Scene {
	s.lock.Lock()
	defer s.lock.Unlock()
	return render.SceneFromSession(s.session, size)
}

// SelectDrawing switches the session to the drawing with the given id. All
// pending matches, the selection and the viewport are reset.
func (s *State) SelectDrawing(id string) error {
	var err error
	s.update(func() {
		err = s.selectDrawingLocked(id)
	})
	return err
}

func (s *State) selectDrawingLocked(id string) error {
	d, err := s.catalog.Get(id)
	if err != nil {
		return err
	}
	if cur := s.session.Drawing(); cur != nil && cur.ID == d.ID {
		return nil
	}
	s.loadDrawingLocked(d)
	return nil
}

// loadDrawingLocked makes d the session drawing and loads its image.
func (s *State) loadDrawingLocked(d *legend.Drawing) {
	var img goimage.Image
	if d.ImagePath != "" {
		sh, err := s.sheets.Get(d.ImagePath)
		if err != nil {
			s.logger.Warn("Legend image unavailable", zap.String("path", d.ImagePath), zap.Error(err))
		} else {
			img = sh.Image
		}
	}
	s.sheet = img

	s.session.SetDrawing(d)
	s.logger.Info("Drawing selected", zap.String("drawing", d.ID), zap.String("name", d.Name))
	s.queue(EventDrawingChanged, d)
}

// AddDrawing adds (or replaces) a drawing in the catalog and selects it.
func (s *State) AddDrawing(d *legend.Drawing) error {
	var err error
	s.update(func() {
		next := &legend.Catalog{Drawings: append([]*legend.Drawing(nil), s.catalog.Drawings...)}
		if err = next.Add(d); err != nil {
			return
		}
		s.catalog = next
		s.queue(EventCatalogChanged, next)
		s.loadDrawingLocked(d)
	})
	return err
}

// FitToView fits the selected drawing into a view of the given size using the
// configured padding.
func (s *State) FitToView(view geometry.Size) {
	s.update(func() {
		d := s.session.Drawing()
		if d == nil {
			return
		}
		s.session.Viewport().FitToView(d.Size(), view, s.Config.Canvas.FitPadding)
	})
}

// ZoomIn zooms in one step.
func (s *State) ZoomIn() {
	s.update(func() { s.session.Viewport().ZoomIn() })
}

// ZoomOut zooms out one step.
func (s *State) ZoomOut() {
	s.update(func() { s.session.Viewport().ZoomOut() })
}

// ZoomAtPoint zooms around a pointer position. See viewport.ZoomAtPoint.
func (s *State) ZoomAtPoint(p geometry.Point2D, deltaSign float64) {
	s.update(func() { s.session.Viewport().ZoomAtPoint(p.X, p.Y, deltaSign) })
}

// ResetView returns to zoom 1 with no pan.
func (s *State) ResetView() {
	s.update(func() { s.session.Viewport().Reset() })
}

// Drag pans the view to follow the pointer. start is where the drag began
// and is only used when no drag is in progress.
func (s *State) Drag(start, to geometry.Point2D) {
	s.update(func() {
		vp := s.session.Viewport()
		if !vp.Dragging() {
			vp.BeginDrag(start)
		}
		vp.DragTo(to)
	})
}

// Dragging reports whether a pan is in progress.
func (s *State) Dragging() bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.session.Viewport().Dragging()
}

// EndDrag finishes a pan.
func (s *State) EndDrag() {
	s.update(func() { s.session.Viewport().EndDrag() })
}

// Click hit-tests a point in canvas-element coordinates and updates the
// selection.
func (s *State) Click(p geometry.Point2D) matching.Hit {
	var hit matching.Hit
	s.update(func() {
		hit = s.session.Click(p)
		s.queue(EventSelectionChanged, s.session.Selection())
	})
	return hit
}

// SelectSymbol toggles the symbol selection.
func (s *State) SelectSymbol(id string) {
	s.update(func() {
		s.session.SelectSymbol(id)
		s.queue(EventSelectionChanged, s.session.Selection())
	})
}

// SelectText toggles the text selection.
func (s *State) SelectText(id string) {
	s.update(func() {
		s.session.SelectText(id)
		s.queue(EventSelectionChanged, s.session.Selection())
	})
}

// ClearSelection deselects both region kinds.
func (s *State) ClearSelection() {
	s.update(func() {
		s.session.ClearSelection()
		s.queue(EventSelectionChanged, s.session.Selection())
	})
}

// CreateMatch pairs the selected symbol and text.
func (s *State) CreateMatch() bool {
	var ok bool
	s.update(func() {
		var m legend.SymbolMatch
		if m, ok = s.session.CreateMatch(); !ok {
			return
		}
		s.queue(EventMatchesChanged, m)
		s.queue(EventSelectionChanged, s.session.Selection())
	})
	return ok
}

// RemoveMatch removes a pending match.
func (s *State) RemoveMatch(symbolID, textID string) bool {
	var ok bool
	s.update(func() {
		if ok = s.session.RemoveMatch(symbolID, textID); ok {
			s.queue(EventMatchesChanged, nil)
		}
	})
	return ok
}

// UpdateMatch reclassifies a pending match.
func (s *State) UpdateMatch(m legend.SymbolMatch) bool {
	var ok bool
	s.update(func() {
		if ok = s.session.UpdateMatch(m); ok {
			s.queue(EventMatchesChanged, m)
		}
	})
	return ok
}

// SetVisibility updates the canvas visibility flags.
func (s *State) SetVisibility(v matching.Visibility) {
	s.update(func() {
		s.session.SetVisibility(v)
		s.queue(EventVisibilityChanged, v)
	})
}

// Commit adds the pending matches to the library and saves it. On a save
// failure the library is left as it was and the matches stay pending so the
// commit can be retried.
func (s *State) Commit() (int, error) {
	var (
		n   int
		err error
	)
	s.update(func() {
		pending := len(s.session.Matches())
		if err = s.session.Commit(s.Library.Sink(s.session.Drawing(), s.LibraryPath)); err != nil {
			return
		}
		n = pending
		s.queue(EventCommitted, n)
		s.queue(EventLibraryChanged, nil)
		s.queue(EventMatchesChanged, nil)
		s.queue(EventSelectionChanged, s.session.Selection())
	})
	if err != nil && !errors.Is(err, matching.ErrNothingToCommit) {
		s.logger.Error("Commit failed", zap.Error(err))
	}
	return n, err
}

// ResetAll discards pending matches and the selection and resets the viewport.
func (s *State) ResetAll() {
	s.update(func() {
		s.session.ResetAll()
		s.queue(EventMatchesChanged, nil)
		s.queue(EventSelectionChanged, s.session.Selection())
	})
}

// RemoveLibraryEntry deletes a library entry and saves the library.
func (s *State) RemoveLibraryEntry(id string) error {
	if !s.Library.Remove(id) {
		return fmt.Errorf("library entry %s not found", id)
	}
	if s.LibraryPath != "" {
		if err := s.Library.Save(s.LibraryPath); err != nil {
			return err
		}
	}
	s.Emit(EventLibraryChanged, nil)
	return nil
}

// DraftDir returns the configured draft directory, defaulting to a drafts
// folder in the user config dir.
func (s *State) DraftDir() (string, error) {
	if s.Config.DraftDir != "" {
		return s.Config.DraftDir, nil
	}
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine config directory: %w", err)
	}
	return filepath.Join(configDir, "legend-matcher", "drafts"), nil
}

// SaveDraft writes the session to path. An empty path uses the draft
// location for the current drawing.
func (s *State) SaveDraft(path string) (string, error) {
	s.lock.Lock()
	d := s.session.Drawing()
	snap := s.session.Snapshot()
	s.lock.Unlock()

	if d == nil {
		return "", fmt.Errorf("no drawing selected")
	}
	if path == "" {
		dir, err := s.DraftDir()
		if err != nil {
			return "", err
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("cannot create draft directory: %w", err)
		}
		path = project.DraftPath(dir, d.ID)
	}

	// An existing draft keeps its creation time.
	draft, err := project.Load(path)
	if err != nil || draft.Session.DrawingID != d.ID {
		draft = project.New(d.Name, snap)
	} else {
		draft.Update(snap)
	}
	if err := draft.Save(path); err != nil {
		return "", fmt.Errorf("failed to save draft: %w", err)
	}
	s.logger.Info("Draft saved", zap.String("path", path), zap.Int("matches", len(snap.Matches)))
	s.Emit(EventDraftSaved, path)
	return path, nil
}

// LoadDraft selects the draft's drawing and restores its session.
func (s *State) LoadDraft(path string) error {
	draft, err := project.Load(path)
	if err != nil {
		return err
	}

	s.update(func() {
		if err = s.selectDrawingLocked(draft.Session.DrawingID); err != nil {
			err = fmt.Errorf("draft %s: %w", path, err)
			return
		}
		if err = s.session.Restore(draft.Session); err != nil {
			return
		}
		s.logger.Info("Draft loaded", zap.String("path", path), zap.Int("matches", len(s.session.Matches())))
		s.queue(EventDraftLoaded, path)
		s.queue(EventMatchesChanged, nil)
		s.queue(EventSelectionChanged, s.session.Selection())
	})
	return err
}

// ReloadCatalog re-reads the catalog from path. When the selected drawing is
// still present its pending matches carry over, except those whose regions
// disappeared. Otherwise the session is cleared.
func (s *State) ReloadCatalog(path string) error {
	cat, err := legend.LoadCatalog(path)
	if err != nil {
		return err
	}

	s.update(func() {
		s.catalog = cat
		s.logger.Info("Catalog reloaded", zap.String("path", path), zap.Int("drawings", len(cat.Drawings)))
		s.queue(EventCatalogChanged, cat)

		cur := s.session.Drawing()
		if cur == nil {
			return
		}
		d, getErr := cat.Get(cur.ID)
		if getErr != nil {
			s.session.SetDrawing(nil)
			s.sheet = nil
			s.queue(EventDrawingChanged, (*legend.Drawing)(nil))
			s.queue(EventMatchesChanged, nil)
			return
		}

		snap := s.session.Snapshot()
		s.loadDrawingLocked(d)
		if err = s.session.Restore(snap); err != nil {
			return
		}
		s.queue(EventMatchesChanged, nil)
		s.queue(EventSelectionChanged, s.session.Selection())
	})
	return err
}
