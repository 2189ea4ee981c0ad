// Command legendtool recognizes legend sheets, renders them and manages the
// symbol library without the desktop UI.
package main

import (
	"fmt"
	"os"

	"legend-matcher/internal/config"
	"legend-matcher/internal/legend"
	"legend-matcher/internal/library"
	"legend-matcher/internal/logging"
	"legend-matcher/internal/version"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// cli holds the flags and lazily built dependencies shared by all commands.
type cli struct {
	configPath  string
	catalogPath string
	libraryPath string
	debug       bool

	cfg    *config.Config
	logger *zap.Logger
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:           "legendtool",
		Short:         "Legend sheet recognition and symbol library tool",
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.logger != nil {
				_ = c.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default ./legend-matcher.yaml or user config dir)")
	root.PersistentFlags().StringVar(&c.catalogPath, "catalog", "", "legend catalog (.json/.yaml); built-in samples when empty")
	root.PersistentFlags().StringVar(&c.libraryPath, "library", "", "symbol library file")
	root.PersistentFlags().BoolVar(&c.debug, "debug", false, "enable debug logging")

	root.AddCommand(
		newRecognizeCmd(c),
		newRenderCmd(c),
		newMatchCmd(c),
		newLibraryCmd(c),
	)
	return root
}

// setup loads configuration and applies flag overrides.
func (c *cli) setup() error {
	var err error
	if c.configPath != "" {
		c.cfg, err = config.Load(c.configPath)
	} else {
		c.cfg, err = config.LoadDefault()
	}
	if err != nil {
		return err
	}

	if c.catalogPath != "" {
		c.cfg.CatalogPath = c.catalogPath
	}
	if c.libraryPath != "" {
		c.cfg.LibraryPath = c.libraryPath
	}
	if c.debug {
		c.cfg.Debug = true
	}

	c.logger, err = logging.New(c.cfg.Debug)
	return err
}

func (c *cli) catalog() (*legend.Catalog, error) {
	if c.cfg.CatalogPath == "" {
		return legend.SampleCatalog(), nil
	}
	return legend.LoadCatalog(c.cfg.CatalogPath)
}

func (c *cli) drawing(id string) (*legend.Drawing, error) {
	cat, err := c.catalog()
	if err != nil {
		return nil, err
	}
	if id == "" {
		ids := cat.IDs()
		if len(ids) == 0 {
			return nil, fmt.Errorf("catalog is empty")
		}
		id = ids[0]
	}
	return cat.Get(id)
}

// library loads the configured library and returns it with its path.
func (c *cli) library() (*library.Library, string, error) {
	path := c.cfg.LibraryPath
	if path == "" {
		var err error
		if path, err = library.DefaultPath(); err != nil {
			return nil, "", err
		}
	}
	lib, err := library.Load(path, c.logger)
	if err != nil {
		return nil, "", err
	}
	return lib, path, nil
}
