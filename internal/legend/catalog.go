package legend

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrDrawingNotFound is returned when a catalog has no drawing with an id.
var ErrDrawingNotFound = errors.New("legend drawing not found")

// Catalog is an ordered set of legend drawings.
type Catalog struct {
	Drawings []*Drawing `json:"drawings" yaml:"drawings"`
}

// Get returns the drawing with the given id.
func (c *Catalog) Get(id string) (*Drawing, error) {
	for _, d := range c.Drawings {
		if d.ID == id {
			return d, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrDrawingNotFound, id)
}

// IDs returns the drawing ids in catalog order.
func (c *Catalog) IDs() []string {
	ids := make([]string, len(c.Drawings))
	for i, d := range c.Drawings {
		ids[i] = d.ID
	}
	return ids
}

// Names returns "name (id)" labels in catalog order, for pickers.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.Drawings))
	for i, d := range c.Drawings {
		names[i] = fmt.Sprintf("%s (%s)", d.Name, d.ID)
	}
	return names
}

// Add appends a drawing after validating it. A drawing with the same id is
// replaced in place.
func (c *Catalog) Add(d *Drawing) error {
	if err := d.Validate(); err != nil {
		return err
	}
	for i, existing := range c.Drawings {
		if existing.ID == d.ID {
			c.Drawings[i] = d
			return nil
		}
	}
	c.Drawings = append(c.Drawings, d)
	return nil
}

// Validate validates every drawing and rejects duplicate ids.
func (c *Catalog) Validate() error {
	seen := make(map[string]bool, len(c.Drawings))
	for _, d := range c.Drawings {
		if err := d.Validate(); err != nil {
			return err
		}
		if seen[d.ID] {
			return fmt.Errorf("%w: duplicate drawing id %q", ErrInvalidDrawing, d.ID)
		}
		seen[d.ID] = true
	}
	return nil
}

// LoadCatalog reads a catalog from a .json, .yaml or .yml file. A file may
// hold either a catalog ({drawings: [...]}) or a single drawing. Relative
// image paths are resolved against the file's directory.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	unmarshal := json.Unmarshal
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		unmarshal = yaml.Unmarshal
	case ".json":
	default:
		return nil, fmt.Errorf("unsupported catalog format %q", filepath.Ext(path))
	}

	var cat Catalog
	if err := unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("failed to parse catalog %s: %w", path, err)
	}
	if len(cat.Drawings) == 0 {
		var single Drawing
		if err := unmarshal(data, &single); err != nil {
			return nil, fmt.Errorf("failed to parse drawing %s: %w", path, err)
		}
		if single.ID != "" {
			cat.Drawings = []*Drawing{&single}
		}
	}

	dir := filepath.Dir(path)
	for _, d := range cat.Drawings {
		if d.ImagePath != "" && !filepath.IsAbs(d.ImagePath) {
			d.ImagePath = filepath.Join(dir, d.ImagePath)
		}
	}

	if err := cat.Validate(); err != nil {
		return nil, err
	}
	return &cat, nil
}

// SaveDrawing writes a single drawing as JSON or YAML depending on the
// extension of path.
func SaveDrawing(d *Drawing, path string) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(d)
	default:
		data, err = json.MarshalIndent(d, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("cannot serialize drawing: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
