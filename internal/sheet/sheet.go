// Package sheet loads legend sheet images (TIFF, PNG, JPEG).
package sheet

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"legend-matcher/pkg/geometry"

	_ "golang.org/x/image/tiff"
)

// Sheet is a decoded legend image.
type Sheet struct {
	Path   string
	Image  image.Image
	Format string
	DPI    float64 // 0 when the file carries no resolution
}

// Size returns the image size in pixels.
func (s *Sheet) Size() geometry.Size {
	if s.Image == nil {
		return geometry.Size{}
	}
	b := s.Image.Bounds()
	return geometry.NewSize(float64(b.Dx()), float64(b.Dy()))
}

// Load decodes the image at path.
func Load(path string) (*Sheet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", path, err)
	}

	s := &Sheet{Path: path, Image: img, Format: format}
	if format == "tiff" {
		if dpi, err := tiffDPI(data); err == nil {
			s.DPI = dpi
		}
	}
	return s, nil
}

// IsSupported checks the file extension against the decodable formats.
func IsSupported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tiff", ".tif", ".png", ".jpg", ".jpeg":
		return true
	}
	return false
}

// Cache keeps decoded sheets by path so switching drawings does not decode
// the same file twice. It is safe for concurrent use.
type Cache struct {
	mu     sync.Mutex
	sheets map[string]*Sheet
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{sheets: make(map[string]*Sheet)}
}

// Get returns the cached sheet for path, loading it on first use.
func (c *Cache) Get(path string) (*Sheet, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if s, ok := c.sheets[path]; ok {
		return s, nil
	}
	s, err := Load(path)
	if err != nil {
		return nil, err
	}
	c.sheets[path] = s
	return s, nil
}

// tiffDPI reads XResolution/YResolution/ResolutionUnit from the first IFD.
func tiffDPI(data []byte) (float64, error) {
	if len(data) < 8 {
		return 0, fmt.Errorf("short TIFF header")
	}

	var order binary.ByteOrder
	switch string(data[:2]) {
	case "II":
		order = binary.LittleEndian
	case "MM":
		order = binary.BigEndian
	default:
		return 0, fmt.Errorf("not a valid TIFF file")
	}

	rational := func(off uint32) float64 {
		if int(off)+8 > len(data) {
			return 0
		}
		num := order.Uint32(data[off : off+4])
		den := order.Uint32(data[off+4 : off+8])
		if den == 0 {
			return 0
		}
		return float64(num) / float64(den)
	}

	ifd := order.Uint32(data[4:8])
	if int(ifd)+2 > len(data) {
		return 0, fmt.Errorf("IFD offset out of range")
	}
	n := int(order.Uint16(data[ifd : ifd+2]))

	var xRes, yRes float64
	unit := uint16(2) // inches
	for i := 0; i < n; i++ {
		off := int(ifd) + 2 + i*12
		if off+12 > len(data) {
			break
		}
		entry := data[off : off+12]
		tag := order.Uint16(entry[0:2])
		typ := order.Uint16(entry[2:4])
		switch {
		case tag == 282 && typ == 5:
			xRes = rational(order.Uint32(entry[8:12]))
		case tag == 283 && typ == 5:
			yRes = rational(order.Uint32(entry[8:12]))
		case tag == 296 && typ == 3:
			unit = order.Uint16(entry[8:10])
		}
	}

	dpi := xRes
	if dpi == 0 {
		dpi = yRes
	}
	if dpi == 0 {
		return 0, fmt.Errorf("no resolution tags found")
	}
	if unit == 3 {
		dpi *= 2.54
	}
	return dpi, nil
}
