package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"legend-matcher/internal/library"

	"github.com/spf13/cobra"
)

func newLibraryCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "library",
		Short: "Inspect and edit the symbol library",
	}
	cmd.AddCommand(newLibraryListCmd(c), newLibraryRemoveCmd(c))
	return cmd
}

func newLibraryListCmd(c *cli) *cobra.Command {
	var tag, drawingID string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List library entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, _, err := c.library()
			if err != nil {
				return err
			}

			entries := lib.Entries()
			if tag != "" {
				entries = lib.FindByTag(tag)
			}
			if drawingID != "" {
				entries = filterDrawing(entries, drawingID)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tDRAWING\tSYMBOL\tTEXT\tTAGS")
			for _, e := range entries {
				fmt.Fprintf(tw, "%s\t%s\t%s/%s\t%s\t%s\t%s\t%s\n",
					e.ID, e.Name, e.Category, e.Subcategory, e.DrawingID, e.SymbolID, e.TextID, strings.Join(e.Tags, ","))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&tag, "tag", "", "only entries with this tag")
	cmd.Flags().StringVarP(&drawingID, "drawing", "d", "", "only entries from this drawing")
	return cmd
}

func newLibraryRemoveCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>...",
		Short: "Remove library entries by id",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, path, err := c.library()
			if err != nil {
				return err
			}
			for _, id := range args {
				if !lib.Remove(id) {
					return fmt.Errorf("library entry %s not found", id)
				}
			}
			if err := lib.Save(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d entries, %d left\n", len(args), lib.Len())
			return nil
		},
	}
}

func filterDrawing(entries []*library.Entry, drawingID string) []*library.Entry {
	var out []*library.Entry
	for _, e := range entries {
		if e.DrawingID == drawingID {
			out = append(out, e)
		}
	}
	return out
}
