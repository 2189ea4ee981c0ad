package project

import (
	"os"
	"path/filepath"
	"testing"

	"legend-matcher/internal/legend"
	"legend-matcher/internal/matching"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDraftResumesSession(t *testing.T) {
	d, err := legend.SampleCatalog().Get("legend-001")
	require.NoError(t, err)

	s := matching.NewSession(d, nil)
	s.SelectSymbol("sym-001")
	s.SelectText("txt-001")
	_, ok := s.CreateMatch()
	require.True(t, ok)
	s.Viewport().ZoomIn()

	dir := t.TempDir()
	path := DraftPath(dir, d.ID)
	require.NoError(t, New("valves", s.Snapshot()).Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "valves", loaded.Name)

	resumed := matching.NewSession(d, nil)
	require.NoError(t, resumed.Restore(loaded.Session))
	assert.Equal(t, s.Matches(), resumed.Matches())
	assert.InDelta(t, s.Viewport().Zoom(), resumed.Viewport().Zoom(), 1e-12)
}

func TestLoadRejectsUnknownVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x"+Extension)
	require.NoError(t, os.WriteFile(path, []byte(`{"version": 9}`), 0644))
	_, err := Load(path)
	assert.Error(t, err)
}
