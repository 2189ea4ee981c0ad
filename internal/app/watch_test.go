package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileWatcherMissingFile(t *testing.T) {
	assert.Nil(t, NewFileWatcher(filepath.Join(t.TempDir(), "nope.yaml"), time.Second))
}

func TestFileWatcherPoll(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte("drawings: []\n"), 0644))

	w := NewFileWatcher(path, time.Hour)
	require.NotNil(t, w)

	var changed []string
	w.OnChange(func(p string) { changed = append(changed, p) })

	assert.False(t, w.poll())

	later := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(path, later, later))
	assert.True(t, w.poll())
	assert.False(t, w.poll(), "baseline advances after a change")
	assert.Equal(t, []string{w.Path()}, changed)
}

func TestFileWatcherStartStop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	w := NewFileWatcher(path, 10*time.Millisecond)
	require.NotNil(t, w)
	w.Start()
	w.Stop()
	w.Stop()
}
