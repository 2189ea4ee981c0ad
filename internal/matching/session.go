// Package matching implements the selection and matching state machine used
// to pair recognized symbols with their text labels.
//
// A Session is not safe for concurrent use. Callers that share one across
// goroutines must serialize access.
package matching

import (
	"errors"
	"fmt"

	"legend-matcher/internal/legend"
	"legend-matcher/internal/logging"
	"legend-matcher/internal/viewport"
	"legend-matcher/pkg/geometry"

	"go.uber.org/zap"
)

// ErrNothingToCommit is returned by Commit when no matches are pending.
var ErrNothingToCommit = errors.New("no symbol matches to commit")

// Phase is the selection state of a session.
type Phase int

const (
	Idle Phase = iota
	SymbolSelected
	TextSelected
	BothSelected
)

func (p Phase) String() string {
	switch p {
	case SymbolSelected:
		return "symbol-selected"
	case TextSelected:
		return "text-selected"
	case BothSelected:
		return "both-selected"
	default:
		return "idle"
	}
}

// Selection holds at most one selected symbol and one selected text.
// Empty strings mean nothing of that kind is selected.
type Selection struct {
	SymbolID string `json:"symbol_id,omitempty"`
	TextID   string `json:"text_id,omitempty"`
}

// Visibility controls which regions the canvas draws.
type Visibility struct {
	ShowSymbols bool `json:"show_symbols"`
	ShowTexts   bool `json:"show_texts"`
	ShowMatched bool `json:"show_matched"`
}

// AllVisible shows every region kind.
func AllVisible() Visibility {
	return Visibility{ShowSymbols: true, ShowTexts: true, ShowMatched: true}
}

// Sink receives a committed batch of matches. The batch is handed over in a
// single call; the sink owns the slice afterwards.
type Sink interface {
	AddSymbols(matches []legend.SymbolMatch) error
}

// Snapshot is a read-only copy of the session state, used by the renderer and
// for draft persistence.
type Snapshot struct {
	DrawingID  string               `json:"drawing_id"`
	Selection  Selection            `json:"selection"`
	Matches    []legend.SymbolMatch `json:"matches"`
	Viewport   viewport.State       `json:"viewport"`
	Visibility Visibility           `json:"visibility"`
}

// Session is one editing session over a legend drawing.
type Session struct {
	drawing    *legend.Drawing
	selection  Selection
	matches    []legend.SymbolMatch
	view       *viewport.Viewport
	visibility Visibility
	logger     *zap.Logger

	onChange func()
}

// NewSession creates a session for drawing d (which may be nil until a
// drawing is chosen).
func NewSession(d *legend.Drawing, logger *zap.Logger) *Session {
	s := &Session{
		drawing:    d,
		view:       viewport.New(),
		visibility: AllVisible(),
		logger:     logging.OrNop(logger),
	}
	return s
}

// OnChange sets a callback invoked after any state change that affects
// rendering.
func (s *Session) OnChange(callback func()) {
	s.onChange = callback
	s.view.OnChange(func(viewport.State) { s.changed() })
}

// Drawing returns the current drawing.
func (s *Session) Drawing() *legend.Drawing {
	return s.drawing
}

// Viewport returns the session's viewport controller.
func (s *Session) Viewport() *viewport.Viewport {
	return s.view
}

// Selection returns the current selection.
func (s *Session) Selection() Selection {
	return s.selection
}

// Phase derives the state machine phase from the selection.
func (s *Session) Phase() Phase {
	switch {
	case s.selection.SymbolID != "" && s.selection.TextID != "":
		return BothSelected
	case s.selection.SymbolID != "":
		return SymbolSelected
	case s.selection.TextID != "":
		return TextSelected
	default:
		return Idle
	}
}

// CanCreateMatch reports whether CreateMatch would add an entry.
func (s *Session) CanCreateMatch() bool {
	return s.Phase() == BothSelected && !s.hasPair(s.selection.SymbolID, s.selection.TextID)
}

// Matches returns a copy of the pending matches.
func (s *Session) Matches() []legend.SymbolMatch {
	return cloneMatches(s.matches)
}

// Visibility returns the current visibility flags.
func (s *Session) Visibility() Visibility {
	return s.visibility
}

// SetVisibility replaces the visibility flags.
func (s *Session) SetVisibility(v Visibility) {
	s.visibility = v
	s.changed()
}

// SetDrawing switches to another drawing and resets all session state.
func (s *Session) SetDrawing(d *legend.Drawing) {
	s.drawing = d
	s.logger.Info("Legend drawing selected", zap.String("drawing", drawingID(d)))
	s.ResetAll()
}

// Click resolves a pointer position (canvas-element coordinates) and applies
// the matching selection transition. It returns what was hit.
func (s *Session) Click(screen geometry.Point2D) Hit {
	p := s.view.ScreenToCanvas(screen)
	hit := HitTest(s.drawing, p)

	switch hit.Kind {
	case HitSymbol:
		s.SelectSymbol(hit.ID)
	case HitText:
		s.SelectText(hit.ID)
	default:
		s.logger.Debug("Click missed all regions", zap.Float64("x", p.X), zap.Float64("y", p.Y))
		s.ClearSelection()
	}
	return hit
}

// SelectSymbol selects a symbol, or deselects it when it is already
// selected. The text selection is never affected.
func (s *Session) SelectSymbol(id string) {
	if s.selection.SymbolID == id {
		s.selection.SymbolID = ""
	} else {
		s.selection.SymbolID = id
	}
	s.changed()
}

// SelectText selects a text label, or deselects it when it is already
// selected. The symbol selection is never affected.
func (s *Session) SelectText(id string) {
	if s.selection.TextID == id {
		s.selection.TextID = ""
	} else {
		s.selection.TextID = id
	}
	s.changed()
}

// ClearSelection deselects both kinds.
func (s *Session) ClearSelection() {
	s.selection = Selection{}
	s.changed()
}

// CreateMatch pairs the selected symbol with the selected text. It is a
// no-op returning false unless both are selected and the pair is not
// already matched. On success the selection is cleared.
func (s *Session) CreateMatch() (legend.SymbolMatch, bool) {
	if s.Phase() != BothSelected || s.drawing == nil {
		return legend.SymbolMatch{}, false
	}
	symID, txtID := s.selection.SymbolID, s.selection.TextID
	if s.hasPair(symID, txtID) {
		s.logger.Debug("Match already exists", zap.String("symbol", symID), zap.String("text", txtID))
		return legend.SymbolMatch{}, false
	}

	sym, ok := s.drawing.Symbol(symID)
	if !ok {
		return legend.SymbolMatch{}, false
	}
	txt, ok := s.drawing.Text(txtID)
	if !ok {
		return legend.SymbolMatch{}, false
	}

	m := legend.NewMatch(s.drawing, sym, txt)
	s.matches = append(s.matches, m)
	s.selection = Selection{}
	s.logger.Info("Symbol matched",
		zap.String("symbol", symID),
		zap.String("text", txtID),
		zap.String("name", m.SymbolName))
	s.changed()
	return m, true
}

// RemoveMatch deletes the match for the pair, reporting whether one existed.
// The selection is unaffected.
func (s *Session) RemoveMatch(symbolID, textID string) bool {
	for i, m := range s.matches {
		if m.Pairs(symbolID, textID) {
			s.matches = append(s.matches[:i], s.matches[i+1:]...)
			s.changed()
			return true
		}
	}
	return false
}

// UpdateMatch replaces the classification fields of an existing match,
// identified by its symbol and text ids. It reports whether the pair exists.
func (s *Session) UpdateMatch(updated legend.SymbolMatch) bool {
	for i, m := range s.matches {
		if m.Pairs(updated.SymbolID, updated.TextID) {
			updated.Tags = append([]string(nil), updated.Tags...)
			s.matches[i] = updated
			s.changed()
			return true
		}
	}
	return false
}

// IsMatchedSymbol reports whether any pending match uses the symbol.
func (s *Session) IsMatchedSymbol(id string) bool {
	for _, m := range s.matches {
		if m.SymbolID == id {
			return true
		}
	}
	return false
}

// IsMatchedText reports whether any pending match uses the text.
func (s *Session) IsMatchedText(id string) bool {
	for _, m := range s.matches {
		if m.TextID == id {
			return true
		}
	}
	return false
}

// Commit hands every pending match to sink in one call and then resets the
// session. With no pending matches it returns ErrNothingToCommit and does not
// call sink. If sink fails the session is left untouched.
func (s *Session) Commit(sink Sink) error {
	if len(s.matches) == 0 {
		return ErrNothingToCommit
	}

	batch := cloneMatches(s.matches)
	if err := sink.AddSymbols(batch); err != nil {
		return fmt.Errorf("failed to commit %d matches: %w", len(batch), err)
	}

	s.logger.Info("Committed symbol matches",
		zap.String("drawing", drawingID(s.drawing)),
		zap.Int("count", len(batch)))
	s.ResetAll()
	return nil
}

// ResetAll clears matches, selection and viewport.
func (s *Session) ResetAll() {
	s.matches = nil
	s.selection = Selection{}
	s.view.Reset()
	s.changed()
}

// Snapshot returns a copy of the session state.
func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		DrawingID:  drawingID(s.drawing),
		Selection:  s.selection,
		Matches:    cloneMatches(s.matches),
		Viewport:   s.view.State(),
		Visibility: s.visibility,
	}
}

// Restore loads a previously saved snapshot. The snapshot must belong to the
// current drawing; matches referencing unknown regions are dropped.
func (s *Session) Restore(snap Snapshot) error {
	if s.drawing == nil || snap.DrawingID != s.drawing.ID {
		return fmt.Errorf("snapshot is for drawing %q, session has %q", snap.DrawingID, drawingID(s.drawing))
	}

	s.matches = nil
	for _, m := range snap.Matches {
		if _, ok := s.drawing.Symbol(m.SymbolID); !ok {
			s.logger.Warn("Dropping match with unknown symbol", zap.String("symbol", m.SymbolID))
			continue
		}
		if _, ok := s.drawing.Text(m.TextID); !ok {
			s.logger.Warn("Dropping match with unknown text", zap.String("text", m.TextID))
			continue
		}
		if s.hasPair(m.SymbolID, m.TextID) {
			continue
		}
		s.matches = append(s.matches, m)
	}
	s.selection = Selection{}
	s.visibility = snap.Visibility
	s.view.Restore(snap.Viewport)
	s.changed()
	return nil
}

func (s *Session) hasPair(symbolID, textID string) bool {
	for _, m := range s.matches {
		if m.Pairs(symbolID, textID) {
			return true
		}
	}
	return false
}

func (s *Session) changed() {
	if s.onChange != nil {
		s.onChange()
	}
}

func cloneMatches(in []legend.SymbolMatch) []legend.SymbolMatch {
	if len(in) == 0 {
		return nil
	}
	out := make([]legend.SymbolMatch, len(in))
	for i, m := range in {
		m.Tags = append([]string(nil), m.Tags...)
		out[i] = m
	}
	return out
}

func drawingID(d *legend.Drawing) string {
	if d == nil {
		return ""
	}
	return d.ID
}
