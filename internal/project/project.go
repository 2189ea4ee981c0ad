// Package project persists in-progress matching drafts (.legendproj files).
package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"legend-matcher/internal/matching"
)

// Extension is the draft file extension.
const Extension = ".legendproj"

// File is a saved matching draft for one legend drawing.
type File struct {
	Version  int               `json:"version"`
	Name     string            `json:"name"`
	Created  time.Time         `json:"created"`
	Modified time.Time         `json:"modified"`
	Session  matching.Snapshot `json:"session"`
}

// New creates a draft file from a session snapshot.
func New(name string, snap matching.Snapshot) *File {
	now := time.Now()
	return &File{
		Version:  1,
		Name:     name,
		Created:  now,
		Modified: now,
		Session:  snap,
	}
}

// Update replaces the stored snapshot.
func (p *File) Update(snap matching.Snapshot) {
	p.Session = snap
	p.Modified = time.Now()
}

// Load loads a draft from path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var proj File
	if err := json.Unmarshal(data, &proj); err != nil {
		return nil, fmt.Errorf("failed to parse draft %s: %w", path, err)
	}
	if proj.Version != 1 {
		return nil, fmt.Errorf("unsupported draft version %d", proj.Version)
	}
	return &proj, nil
}

// Save writes the draft to path.
func (p *File) Save(path string) error {
	p.Modified = time.Now()

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// DraftPath returns the default draft location for a drawing inside dir.
func DraftPath(dir, drawingID string) string {
	return filepath.Join(dir, drawingID+Extension)
}
