// Package library stores committed symbol matches as symbol-library entries.
package library

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"legend-matcher/internal/legend"
	"legend-matcher/internal/logging"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Entry is one symbol in the library.
type Entry struct {
	ID          string    `json:"id"`
	DrawingID   string    `json:"drawing_id"`
	SymbolID    string    `json:"symbol_id"`
	TextID      string    `json:"text_id"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Subcategory string    `json:"subcategory"`
	Description string    `json:"description,omitempty"`
	Tags        []string  `json:"tags"`
	Shape       string    `json:"shape,omitempty"`
	Added       time.Time `json:"added"`
}

// Key identifies the legend region pair an entry came from.
func (e *Entry) Key() string {
	return e.DrawingID + "/" + e.SymbolID + "/" + e.TextID
}

// Library is an in-memory symbol library that can be persisted as JSON.
// It is safe for concurrent use.
type Library struct {
	mu      sync.RWMutex
	entries []*Entry
	logger  *zap.Logger
	now     func() time.Time
}

type fileFormat struct {
	Version int      `json:"version"`
	Entries []*Entry `json:"entries"`
}

// New creates an empty library.
func New(logger *zap.Logger) *Library {
	return &Library{
		logger: logging.OrNop(logger),
		now:    time.Now,
	}
}

// Sink returns a commit sink that files matches under drawing d and, when
// path is not empty, saves the library there.
func (lib *Library) Sink(d *legend.Drawing, path string) *DrawingSink {
	return &DrawingSink{lib: lib, drawing: d, path: path}
}

// DrawingSink adds committed matches from one drawing to a library.
type DrawingSink struct {
	lib     *Library
	drawing *legend.Drawing
	path    string
}

// AddSymbols commits the batch. See Library.Commit.
func (s *DrawingSink) AddSymbols(matches []legend.SymbolMatch) error {
	_, err := s.lib.Commit(s.drawing, matches, s.path)
	return err
}

// AddMatches adds one entry per match. An entry for the same drawing, symbol
// and text is replaced, keeping its id.
func (lib *Library) AddMatches(d *legend.Drawing, matches []legend.SymbolMatch) []*Entry {
	lib.mu.Lock()
	defer lib.mu.Unlock()
	return lib.addLocked(d, matches)
}

// Commit adds the matches and saves the library to path in one step. If the
// save fails the entries are restored to what they were before the call.
// An empty path only adds.
func (lib *Library) Commit(d *legend.Drawing, matches []legend.SymbolMatch, path string) ([]*Entry, error) {
	lib.mu.Lock()
	defer lib.mu.Unlock()

	before := append([]*Entry(nil), lib.entries...)
	added := lib.addLocked(d, matches)
	if path == "" {
		return added, nil
	}
	if err := lib.saveLocked(path); err != nil {
		lib.entries = before
		lib.logger.Warn("Library commit rolled back", zap.String("path", path), zap.Error(err))
		return nil, err
	}
	return added, nil
}

func (lib *Library) addLocked(d *legend.Drawing, matches []legend.SymbolMatch) []*Entry {
	drawingID := ""
	if d != nil {
		drawingID = d.ID
	}

	added := make([]*Entry, 0, len(matches))
	for _, m := range matches {
		e := &Entry{
			ID:          uuid.NewString(),
			DrawingID:   drawingID,
			SymbolID:    m.SymbolID,
			TextID:      m.TextID,
			Name:        m.SymbolName,
			Category:    m.Category,
			Subcategory: m.Subcategory,
			Description: m.Description,
			Tags:        append([]string(nil), m.Tags...),
			Added:       lib.now(),
		}
		if d != nil {
			if sym, ok := d.Symbol(m.SymbolID); ok {
				e.Shape = sym.Shape
			}
		}

		replaced := false
		for i, existing := range lib.entries {
			if existing.Key() == e.Key() {
				e.ID = existing.ID
				lib.entries[i] = e
				replaced = true
				break
			}
		}
		if !replaced {
			lib.entries = append(lib.entries, e)
		}
		added = append(added, e)
	}
	lib.sortLocked()

	lib.logger.Info("Symbols added to library",
		zap.String("drawing", drawingID),
		zap.Int("count", len(added)),
		zap.Int("total", len(lib.entries)))
	return added
}

// Remove deletes an entry by id, reporting whether it existed.
func (lib *Library) Remove(id string) bool {
	lib.mu.Lock()
	defer lib.mu.Unlock()
	for i, e := range lib.entries {
		if e.ID == id {
			lib.entries = append(lib.entries[:i], lib.entries[i+1:]...)
			return true
		}
	}
	return false
}

// Get returns the entry with the given id, or nil.
func (lib *Library) Get(id string) *Entry {
	lib.mu.RLock()
	defer lib.mu.RUnlock()
	for _, e := range lib.entries {
		if e.ID == id {
			return e
		}
	}
	return nil
}

// Entries returns the entries sorted by name.
func (lib *Library) Entries() []*Entry {
	lib.mu.RLock()
	defer lib.mu.RUnlock()
	return append([]*Entry(nil), lib.entries...)
}

// ForDrawing returns the entries that came from a drawing.
func (lib *Library) ForDrawing(drawingID string) []*Entry {
	lib.mu.RLock()
	defer lib.mu.RUnlock()
	var out []*Entry
	for _, e := range lib.entries {
		if e.DrawingID == drawingID {
			out = append(out, e)
		}
	}
	return out
}

// FindByTag returns entries carrying the tag (normalized before comparing).
func (lib *Library) FindByTag(tag string) []*Entry {
	tag = legend.NormalizeTag(tag)
	lib.mu.RLock()
	defer lib.mu.RUnlock()
	var out []*Entry
	for _, e := range lib.entries {
		for _, t := range e.Tags {
			if t == tag {
				out = append(out, e)
				break
			}
		}
	}
	return out
}

// Len returns the number of entries.
func (lib *Library) Len() int {
	lib.mu.RLock()
	defer lib.mu.RUnlock()
	return len(lib.entries)
}

func (lib *Library) sortLocked() {
	sort.SliceStable(lib.entries, func(i, j int) bool {
		return strings.ToLower(lib.entries[i].Name) < strings.ToLower(lib.entries[j].Name)
	})
}

// DefaultPath returns ~/.config/legend-matcher/symbol_library.json, creating
// the directory if needed.
func DefaultPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine config directory: %w", err)
		}
		configDir = filepath.Join(home, ".config")
	}

	appDir := filepath.Join(configDir, "legend-matcher")
	if err := os.MkdirAll(appDir, 0755); err != nil {
		return "", fmt.Errorf("cannot create config directory: %w", err)
	}
	return filepath.Join(appDir, "symbol_library.json"), nil
}

// Save writes the library to path as JSON.
func (lib *Library) Save(path string) error {
	lib.mu.RLock()
	defer lib.mu.RUnlock()
	return lib.saveLocked(path)
}

func (lib *Library) saveLocked(path string) error {
	data, err := json.MarshalIndent(fileFormat{Version: 1, Entries: lib.entries}, "", "  ")
	if err != nil {
		return fmt.Errorf("cannot serialize symbol library: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("cannot create library directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("cannot write symbol library: %w", err)
	}

	lib.logger.Info("Saved symbol library", zap.String("path", path), zap.Int("entries", len(lib.entries)))
	return nil
}

// Load reads a library from path. A missing file yields an empty library.
func Load(path string, logger *zap.Logger) (*Library, error) {
	lib := New(logger)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return lib, nil
		}
		return lib, fmt.Errorf("cannot read symbol library: %w", err)
	}

	var f fileFormat
	if err := json.Unmarshal(data, &f); err != nil {
		return lib, fmt.Errorf("cannot parse symbol library: %w", err)
	}
	lib.entries = f.Entries
	lib.sortLocked()

	lib.logger.Info("Loaded symbol library", zap.String("path", path), zap.Int("entries", len(lib.entries)))
	return lib, nil
}
