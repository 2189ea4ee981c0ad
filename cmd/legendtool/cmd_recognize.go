package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"legend-matcher/internal/legend"
	"legend-matcher/internal/recognize/engine"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newRecognizeCmd(c *cli) *cobra.Command {
	var out, name string

	cmd := &cobra.Command{
		Use:   "recognize <image>",
		Short: "Detect symbols and text labels on a legend sheet",
		Long: `Run contour detection and OCR over a legend sheet image and write the
recognized drawing as JSON or YAML (chosen by the output extension).

The output defaults to <image>.legend.json next to the image.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if out == "" {
				out = strings.TrimSuffix(path, filepath.Ext(path)) + ".legend.json"
			}

			rec, err := engine.New(c.cfg.Recognition, c.logger)
			if err != nil {
				return err
			}
			defer rec.Close()

			d, err := rec.RecognizeFile(cmd.Context(), path)
			if err != nil {
				return fmt.Errorf("recognition failed: %w", err)
			}
			if name != "" {
				d.Name = name
			}
			if err := legend.SaveDrawing(d, out); err != nil {
				return err
			}

			c.logger.Info("Recognized drawing written", zap.String("path", out))
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d symbols, %d texts -> %s\n", d.ID, len(d.Symbols), len(d.Texts), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (.json, .yaml or .yml)")
	cmd.Flags().StringVar(&name, "name", "", "display name for the drawing")
	return cmd
}
