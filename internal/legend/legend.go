// Package legend defines legend drawings, their recognized regions, and the
// symbol matches a user builds from them.
package legend

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"legend-matcher/pkg/geometry"
)

// Defaults applied to freshly created matches until the entry is classified.
const (
	DefaultCategory    = "Uncategorized"
	DefaultSubcategory = "Pending"
)

// ErrInvalidDrawing is returned when a drawing fails validation.
var ErrInvalidDrawing = errors.New("invalid legend drawing")

// RecognizedSymbol is a detected symbol region on a legend sheet.
type RecognizedSymbol struct {
	ID         string  `json:"id" yaml:"id"`
	X          float64 `json:"x" yaml:"x"`
	Y          float64 `json:"y" yaml:"y"`
	Width      float64 `json:"width" yaml:"width"`
	Height     float64 `json:"height" yaml:"height"`
	Shape      string  `json:"shape,omitempty" yaml:"shape,omitempty"` // opaque path data
	Confidence float64 `json:"confidence" yaml:"confidence"`
}

// Bounds returns the symbol's bounding box.
func (s RecognizedSymbol) Bounds() geometry.Rect {
	return geometry.NewRect(s.X, s.Y, s.Width, s.Height)
}

// RecognizedText is a detected text label on a legend sheet.
type RecognizedText struct {
	ID         string  `json:"id" yaml:"id"`
	X          float64 `json:"x" yaml:"x"`
	Y          float64 `json:"y" yaml:"y"`
	Width      float64 `json:"width" yaml:"width"`
	Height     float64 `json:"height" yaml:"height"`
	Text       string  `json:"text" yaml:"text"`
	Confidence float64 `json:"confidence" yaml:"confidence"`
}

// Bounds returns the label's bounding box.
func (t RecognizedText) Bounds() geometry.Rect {
	return geometry.NewRect(t.X, t.Y, t.Width, t.Height)
}

// Drawing is a legend sheet image together with its recognized regions.
// Drawings are read-only once loaded.
type Drawing struct {
	ID        string             `json:"id" yaml:"id"`
	Name      string             `json:"name" yaml:"name"`
	ImagePath string             `json:"image,omitempty" yaml:"image,omitempty"`
	Width     float64            `json:"width" yaml:"width"`
	Height    float64            `json:"height" yaml:"height"`
	Symbols   []RecognizedSymbol `json:"symbols" yaml:"symbols"`
	Texts     []RecognizedText   `json:"texts" yaml:"texts"`
}

// Size returns the drawing's pixel dimensions.
func (d *Drawing) Size() geometry.Size {
	return geometry.NewSize(d.Width, d.Height)
}

// Symbol returns the symbol with the given id.
func (d *Drawing) Symbol(id string) (RecognizedSymbol, bool) {
	for _, s := range d.Symbols {
		if s.ID == id {
			return s, true
		}
	}
	return RecognizedSymbol{}, false
}

// Text returns the text label with the given id.
func (d *Drawing) Text(id string) (RecognizedText, bool) {
	for _, t := range d.Texts {
		if t.ID == id {
			return t, true
		}
	}
	return RecognizedText{}, false
}

// Validate checks ids are present and unique, sizes are non-negative and
// confidences lie in [0, 1].
func (d *Drawing) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidDrawing)
	}
	if d.Width < 0 || d.Height < 0 || math.IsNaN(d.Width) || math.IsNaN(d.Height) {
		return fmt.Errorf("%w: %s has invalid size", ErrInvalidDrawing, d.ID)
	}

	seen := make(map[string]bool, len(d.Symbols)+len(d.Texts))
	check := func(kind, id string, w, h, conf float64) error {
		if id == "" {
			return fmt.Errorf("%w: %s has a %s without id", ErrInvalidDrawing, d.ID, kind)
		}
		if seen[id] {
			return fmt.Errorf("%w: %s has duplicate region id %q", ErrInvalidDrawing, d.ID, id)
		}
		seen[id] = true
		if w < 0 || h < 0 || math.IsNaN(w) || math.IsNaN(h) {
			return fmt.Errorf("%w: %s %q has invalid size", ErrInvalidDrawing, kind, id)
		}
		if conf < 0 || conf > 1 || math.IsNaN(conf) {
			return fmt.Errorf("%w: %s %q confidence %.3f out of range", ErrInvalidDrawing, kind, id, conf)
		}
		return nil
	}

	for _, s := range d.Symbols {
		if err := check("symbol", s.ID, s.Width, s.Height, s.Confidence); err != nil {
			return err
		}
	}
	for _, t := range d.Texts {
		if err := check("text", t.ID, t.Width, t.Height, t.Confidence); err != nil {
			return err
		}
	}
	return nil
}

// SymbolMatch pairs one recognized symbol with one recognized text label.
// It references both by id and owns neither.
type SymbolMatch struct {
	SymbolID    string   `json:"symbol_id" yaml:"symbol_id"`
	TextID      string   `json:"text_id" yaml:"text_id"`
	SymbolName  string   `json:"symbol_name" yaml:"symbol_name"`
	Category    string   `json:"category" yaml:"category"`
	Subcategory string   `json:"subcategory" yaml:"subcategory"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Tags        []string `json:"tags" yaml:"tags"`
}

// Pairs reports whether the match links symbolID and textID.
func (m SymbolMatch) Pairs(symbolID, textID string) bool {
	return m.SymbolID == symbolID && m.TextID == textID
}

// NewMatch builds a match for a symbol and the text that names it, using the
// pending-classification defaults. A blank label gets no tags.
func NewMatch(d *Drawing, sym RecognizedSymbol, txt RecognizedText) SymbolMatch {
	name := strings.TrimSpace(txt.Text)
	desc := ""
	if d != nil {
		label := d.Name
		if label == "" {
			label = d.ID
		}
		desc = fmt.Sprintf("Matched from legend %s", label)
	}
	var tags []string
	if tag := NormalizeTag(name); tag != "" {
		tags = []string{tag}
	}
	return SymbolMatch{
		SymbolID:    sym.ID,
		TextID:      txt.ID,
		SymbolName:  name,
		Category:    DefaultCategory,
		Subcategory: DefaultSubcategory,
		Description: desc,
		Tags:        tags,
	}
}

// NormalizeTag lowercases text and collapses runs of whitespace to single
// hyphens, e.g. "Gate  Valve" -> "gate-valve".
func NormalizeTag(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), "-")
}
