package sheet

import (
	"encoding/binary"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.SetRGBA(1, 1, color.RGBA{R: 200, A: 255})
	path := filepath.Join(t.TempDir(), "legend.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
	return path
}

func TestLoadPNG(t *testing.T) {
	path := writePNG(t, 40, 30)
	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "png", s.Format)
	assert.Equal(t, 40.0, s.Size().Width)
	assert.Equal(t, 30.0, s.Size().Height)
	assert.Zero(t, s.DPI)
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.png"))
	assert.Error(t, err)
}

func TestCacheReusesSheet(t *testing.T) {
	path := writePNG(t, 4, 4)
	c := NewCache()
	a, err := c.Get(path)
	require.NoError(t, err)
	b, err := c.Get(path)
	require.NoError(t, err)
	assert.Same(t, a, b)
}

func TestIsSupported(t *testing.T) {
	assert.True(t, IsSupported("a/B.TIF"))
	assert.True(t, IsSupported("x.jpeg"))
	assert.False(t, IsSupported("x.gif"))
}

// tiffHeader builds a little-endian header with one IFD holding XResolution
// (300/1) and ResolutionUnit.
func tiffHeader(unit uint16) []byte {
	le := binary.LittleEndian
	buf := make([]byte, 8+2+2*12+8)
	copy(buf, "II")
	le.PutUint16(buf[2:], 42)
	le.PutUint32(buf[4:], 8)
	le.PutUint16(buf[8:], 2)

	ratOff := uint32(8 + 2 + 2*12)
	e := buf[10:]
	le.PutUint16(e[0:], 282)
	le.PutUint16(e[2:], 5)
	le.PutUint32(e[4:], 1)
	le.PutUint32(e[8:], ratOff)

	e = buf[22:]
	le.PutUint16(e[0:], 296)
	le.PutUint16(e[2:], 3)
	le.PutUint32(e[4:], 1)
	le.PutUint16(e[8:], unit)

	le.PutUint32(buf[ratOff:], 300)
	le.PutUint32(buf[ratOff+4:], 1)
	return buf
}

func TestTIFFDPI(t *testing.T) {
	dpi, err := tiffDPI(tiffHeader(2))
	require.NoError(t, err)
	assert.Equal(t, 300.0, dpi)

	dpi, err = tiffDPI(tiffHeader(3))
	require.NoError(t, err)
	assert.InDelta(t, 762.0, dpi, 1e-9)

	_, err = tiffDPI([]byte("GIF89a.."))
	assert.Error(t, err)
}
