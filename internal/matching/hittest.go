package matching

import (
	"legend-matcher/internal/legend"
	"legend-matcher/pkg/geometry"
)

// HitKind identifies what a canvas click landed on.
type HitKind int

const (
	HitNone HitKind = iota
	HitSymbol
	HitText
)

func (k HitKind) String() string {
	switch k {
	case HitSymbol:
		return "symbol"
	case HitText:
		return "text"
	default:
		return "none"
	}
}

// Hit is the result of resolving a canvas point against a drawing.
type Hit struct {
	Kind HitKind
	ID   string
}

// HitTest resolves a point in drawing coordinates. Symbols are scanned before
// texts and the first region in array order that contains the point wins;
// overlapping regions are not disambiguated further.
func HitTest(d *legend.Drawing, p geometry.Point2D) Hit {
	if d == nil {
		return Hit{}
	}
	for _, s := range d.Symbols {
		if s.Bounds().Contains(p) {
			return Hit{Kind: HitSymbol, ID: s.ID}
		}
	}
	for _, t := range d.Texts {
		if t.Bounds().Contains(p) {
			return Hit{Kind: HitText, ID: t.ID}
		}
	}
	return Hit{}
}
