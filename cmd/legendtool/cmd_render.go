package main

import (
	"fmt"
	"image"
	"image/png"
	"os"

	"legend-matcher/internal/library"
	"legend-matcher/internal/matching"
	"legend-matcher/internal/render"
	"legend-matcher/internal/sheet"
	"legend-matcher/pkg/geometry"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newRenderCmd(c *cli) *cobra.Command {
	var (
		drawingID   string
		out         string
		width       int
		height      int
		withLibrary bool
		hideMatched bool
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a legend drawing to PNG",
		Long: `Render a legend drawing the way the canvas shows it: the sheet image,
recognized symbol and text boxes with their confidence, and dashed
connectors between pairs already in the symbol library.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := c.drawing(drawingID)
			if err != nil {
				return err
			}

			s := matching.NewSession(d, c.logger)
			if withLibrary {
				lib, _, err := c.library()
				if err != nil {
					return err
				}
				applyLibrary(s, lib)
			}
			vis := matching.AllVisible()
			vis.ShowMatched = !hideMatched
			s.SetVisibility(vis)

			size := geometry.NewSize(float64(width), float64(height))
			if width <= 0 || height <= 0 {
				pad := c.cfg.Canvas.FitPadding
				size = geometry.NewSize(d.Width+2*pad, d.Height+2*pad)
			}
			s.Viewport().FitToView(d.Size(), size, c.cfg.Canvas.FitPadding)

			var bg *sheet.Sheet
			if d.ImagePath != "" {
				if bg, err = sheet.Load(d.ImagePath); err != nil {
					c.logger.Warn("Rendering without sheet image", zap.String("path", d.ImagePath), zap.Error(err))
				}
			}

			img := render.Rasterize(render.Render(render.SceneFromSession(s, size)),
				int(size.Width), int(size.Height), sheetImage(bg))

			f, err := os.Create(out)
			if err != nil {
				return err
			}
			defer f.Close()
			if err := png.Encode(f, img); err != nil {
				return fmt.Errorf("failed to encode %s: %w", out, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s: %dx%d, %d matched -> %s\n",
				d.ID, img.Bounds().Dx(), img.Bounds().Dy(), len(s.Matches()), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&drawingID, "drawing", "d", "", "drawing id (default first in catalog)")
	cmd.Flags().StringVarP(&out, "out", "o", "legend.png", "output PNG")
	cmd.Flags().IntVar(&width, "width", 0, "image width (default drawing width plus padding)")
	cmd.Flags().IntVar(&height, "height", 0, "image height (default drawing height plus padding)")
	cmd.Flags().BoolVar(&withLibrary, "with-library", true, "show library entries of this drawing as matched pairs")
	cmd.Flags().BoolVar(&hideMatched, "hide-matched", false, "hide matched regions and connectors")
	return cmd
}

// applyLibrary recreates the library's pairs for the session's drawing as
// pending matches, so the renderer draws them as matched.
func applyLibrary(s *matching.Session, lib *library.Library) {
	d := s.Drawing()
	for _, e := range lib.ForDrawing(d.ID) {
		if _, ok := d.Symbol(e.SymbolID); !ok {
			continue
		}
		if _, ok := d.Text(e.TextID); !ok {
			continue
		}
		s.ClearSelection()
		s.SelectSymbol(e.SymbolID)
		s.SelectText(e.TextID)
		s.CreateMatch()
	}
	s.ClearSelection()
}

func sheetImage(s *sheet.Sheet) image.Image {
	if s == nil {
		return nil
	}
	return s.Image
}
