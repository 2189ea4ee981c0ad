package prefs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMissingFileGivesDefaults(t *testing.T) {
	p := LoadFrom(filepath.Join(t.TempDir(), "preferences.json"))
	assert.Equal(t, "", p.String(KeyLastDrawing))
	assert.True(t, p.Bool(KeyShowSymbols, true))
	assert.Equal(t, 0.25, p.FloatWithFallback(KeySplitOffset, 0.25))
}

func TestSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "preferences.json")
	p := LoadFrom(path)
	p.SetString(KeyLastDrawing, "legend-002")
	p.SetBool(KeyShowMatched, false)
	p.SetFloat(KeySplitOffset, 0.3)
	require.NoError(t, p.Save())

	q := LoadFrom(path)
	assert.Equal(t, path, q.Path())
	assert.Equal(t, "legend-002", q.String(KeyLastDrawing))
	assert.False(t, q.Bool(KeyShowMatched, true))
	assert.Equal(t, 0.3, q.Float(KeySplitOffset))
}

func TestCorruptFileIgnored(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preferences.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))
	p := LoadFrom(path)
	assert.Equal(t, "", p.String(KeyLastDrawing))
}
