package main

import (
	"fmt"
	"strings"

	"legend-matcher/internal/legend"
	"legend-matcher/internal/matching"
	"legend-matcher/internal/project"

	"github.com/spf13/cobra"
)

func newMatchCmd(c *cli) *cobra.Command {
	var (
		drawingID string
		pairs     []string
		commit    bool
		draft     string
	)

	cmd := &cobra.Command{
		Use:   "match",
		Short: "Pair symbols with text labels and commit them to the library",
		Long: `Pair recognized symbols with their text labels without the desktop UI.

Each --pair is symbolId:textId. Pairs are applied in order through the same
selection workflow as the canvas; a pair that already exists is skipped.
With --commit the batch is added to the symbol library; with --draft it is
saved as a .legendproj draft that the desktop app can resume.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := c.drawing(drawingID)
			if err != nil {
				return err
			}

			s := matching.NewSession(d, c.logger)
			for _, p := range pairs {
				symID, txtID, err := parsePair(d, p)
				if err != nil {
					return err
				}
				s.ClearSelection()
				s.SelectSymbol(symID)
				s.SelectText(txtID)
				if _, ok := s.CreateMatch(); !ok {
					fmt.Fprintf(cmd.ErrOrStderr(), "skipping duplicate pair %s\n", p)
				}
			}

			w := cmd.OutOrStdout()
			for _, m := range s.Matches() {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s/%s\n", m.SymbolID, m.TextID, m.SymbolName, m.Category, m.Subcategory)
			}

			if draft != "" {
				f := project.New(d.Name, s.Snapshot())
				if err := f.Save(draft); err != nil {
					return err
				}
				fmt.Fprintf(w, "draft saved to %s\n", draft)
			}

			if !commit {
				return nil
			}
			lib, path, err := c.library()
			if err != nil {
				return err
			}
			n := len(s.Matches())
			if err := s.Commit(lib.Sink(d, path)); err != nil {
				return err
			}
			fmt.Fprintf(w, "committed %d symbols to %s\n", n, path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&drawingID, "drawing", "d", "", "drawing id (default first in catalog)")
	cmd.Flags().StringArrayVarP(&pairs, "pair", "p", nil, "symbolId:textId pair (repeatable)")
	cmd.Flags().BoolVar(&commit, "commit", false, "commit the matches to the symbol library")
	cmd.Flags().StringVar(&draft, "draft", "", "save the matches as a draft file")
	return cmd
}

// parsePair splits "sym:txt" and checks both regions exist on d.
func parsePair(d *legend.Drawing, p string) (string, string, error) {
	symID, txtID, ok := strings.Cut(p, ":")
	symID, txtID = strings.TrimSpace(symID), strings.TrimSpace(txtID)
	if !ok || symID == "" || txtID == "" {
		return "", "", fmt.Errorf("invalid pair %q, want symbolId:textId", p)
	}
	if _, found := d.Symbol(symID); !found {
		return "", "", fmt.Errorf("drawing %s has no symbol %q", d.ID, symID)
	}
	if _, found := d.Text(txtID); !found {
		return "", "", fmt.Errorf("drawing %s has no text %q", d.ID, txtID)
	}
	return symID, txtID, nil
}
