// Package render turns a matching session snapshot into a list of draw
// commands. Render is pure: it reads the scene and never mutates it.
package render

import (
	"fmt"
	"image/color"
	"math"

	"legend-matcher/internal/legend"
	"legend-matcher/internal/matching"
	"legend-matcher/internal/viewport"
	"legend-matcher/pkg/colorutil"
	"legend-matcher/pkg/geometry"
)

// Op is the kind of a draw command.
type Op int

const (
	OpFill   Op = iota // filled rectangle
	OpImage            // legend sheet placed at Rect
	OpStroke           // rectangle outline
	OpText             // text with its baseline-left at From
	OpLine             // straight line From -> To
)

func (o Op) String() string {
	switch o {
	case OpFill:
		return "fill"
	case OpImage:
		return "image"
	case OpStroke:
		return "stroke"
	case OpText:
		return "text"
	case OpLine:
		return "line"
	default:
		return fmt.Sprintf("op(%d)", int(o))
	}
}

// Command is one drawing instruction in screen coordinates.
type Command struct {
	Op     Op
	Rect   geometry.Rect
	From   geometry.Point2D
	To     geometry.Point2D
	Text   string
	Color  color.RGBA
	Width  float64 // stroke/line width in pixels
	Dashed bool
	Ref    string // region id the command belongs to, if any
}

// DrawList is an ordered list of commands; later commands paint over earlier ones.
type DrawList []Command

// Scene is everything the renderer reads.
type Scene struct {
	Drawing    *legend.Drawing
	Matches    []legend.SymbolMatch
	Selection  matching.Selection
	Viewport   viewport.State
	Visibility matching.Visibility
	Size       geometry.Size // canvas element size in pixels
}

// SceneFromSession captures the session state for a canvas of the given size.
func SceneFromSession(s *matching.Session, size geometry.Size) Scene {
	snap := s.Snapshot()
	return Scene{
		Drawing:    s.Drawing(),
		Matches:    snap.Matches,
		Selection:  snap.Selection,
		Viewport:   snap.Viewport,
		Visibility: snap.Visibility,
		Size:       size,
	}
}

const (
	strokeWidth    = 2.0
	connectorWidth = 1.5
	labelGap       = 4.0
)

// Render produces the draw list for a scene: background, sheet image, symbol
// boxes with confidence, text boxes with their text and confidence, then
// dashed connectors between matched pairs.
func Render(sc Scene) DrawList {
	list := DrawList{{
		Op:    OpFill,
		Rect:  geometry.NewRect(0, 0, sc.Size.Width, sc.Size.Height),
		Color: colorutil.Background,
	}}

	d := sc.Drawing
	if d == nil {
		return list
	}

	zoom := sc.Viewport.Zoom
	if zoom <= 0 {
		zoom = 1
	}
	toScreen := func(r geometry.Rect) geometry.Rect {
		tl := geometry.CanvasToScreen(r.TopLeft(), geometry.Point2D{}, sc.Viewport.Pan, zoom)
		return geometry.NewRect(tl.X, tl.Y, r.Width*zoom, r.Height*zoom)
	}

	list = append(list, Command{
		Op:   OpImage,
		Rect: toScreen(geometry.NewRect(0, 0, d.Width, d.Height)),
		Ref:  d.ID,
	})

	matchedSymbols := make(map[string]bool, len(sc.Matches))
	matchedTexts := make(map[string]bool, len(sc.Matches))
	for _, m := range sc.Matches {
		matchedSymbols[m.SymbolID] = true
		matchedTexts[m.TextID] = true
	}

	if sc.Visibility.ShowSymbols {
		for _, s := range d.Symbols {
			matched := matchedSymbols[s.ID]
			if matched && !sc.Visibility.ShowMatched {
				continue
			}
			col := colorutil.Gray
			switch {
			case sc.Selection.SymbolID == s.ID:
				col = colorutil.Blue
			case matched:
				col = colorutil.Green
			}
			r := toScreen(s.Bounds())
			list = append(list,
				Command{Op: OpStroke, Rect: r, Color: col, Width: strokeWidth, Ref: s.ID},
				Command{Op: OpText, From: geometry.NewPoint2D(r.X, r.Y-labelGap), Text: percent(s.Confidence), Color: col, Ref: s.ID},
			)
		}
	}

	if sc.Visibility.ShowTexts {
		for _, t := range d.Texts {
			matched := matchedTexts[t.ID]
			if matched && !sc.Visibility.ShowMatched {
				continue
			}
			col := colorutil.Gray
			switch {
			case sc.Selection.TextID == t.ID:
				col = colorutil.Amber
			case matched:
				col = colorutil.Green
			}
			r := toScreen(t.Bounds())
			list = append(list,
				Command{Op: OpStroke, Rect: r, Color: col, Width: strokeWidth, Ref: t.ID},
				Command{Op: OpText, From: geometry.NewPoint2D(r.X, r.Y-labelGap), Text: t.Text, Color: col, Ref: t.ID},
				Command{Op: OpText, From: geometry.NewPoint2D(r.X+r.Width+labelGap, r.Y+r.Height), Text: percent(t.Confidence), Color: col, Ref: t.ID},
			)
		}
	}

	if sc.Visibility.ShowMatched {
		for _, m := range sc.Matches {
			s, ok := d.Symbol(m.SymbolID)
			if !ok {
				continue
			}
			t, ok := d.Text(m.TextID)
			if !ok {
				continue
			}
			list = append(list, Command{
				Op:     OpLine,
				From:   toScreen(s.Bounds()).Center(),
				To:     toScreen(t.Bounds()).Center(),
				Color:  colorutil.Green,
				Width:  connectorWidth,
				Dashed: true,
				Ref:    m.SymbolID + "|" + m.TextID,
			})
		}
	}

	return list
}

// Filter returns the commands whose op is op.
func (l DrawList) Filter(op Op) DrawList {
	var out DrawList
	for _, c := range l {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

// ForRef returns the commands attached to a region id.
func (l DrawList) ForRef(ref string) DrawList {
	var out DrawList
	for _, c := range l {
		if c.Ref == ref {
			out = append(out, c)
		}
	}
	return out
}

func percent(conf float64) string {
	return fmt.Sprintf("%d%%", int(math.Round(conf*100)))
}
