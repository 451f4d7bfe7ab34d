package main

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/Faultbox/sffkit/internal/assets"
	"github.com/Faultbox/sffkit/internal/config"
	"github.com/Faultbox/sffkit/internal/logger"
	"github.com/Faultbox/sffkit/pkg/sff"
)

// setup loads the configuration for a command and initializes logging.
func setup(c *cli.Context) (*config.Config, error) {
	o := config.Overrides{
		Debug:     c.Bool("debug"),
		LogLevel:  c.String("log-level"),
		LogFile:   c.String("log-file"),
		Workers:   c.Int("workers"),
		NoCache:   c.Bool("no-cache"),
		OutputDir: c.String("out"),
		Format:    c.String("format"),
	}
	if p := c.Int("palette"); c.IsSet("palette") && p >= 0 {
		o.Palette = &p
	}

	cfg, err := config.Load(c.String("config"), o)
	if err != nil {
		return nil, err
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}
	logger.Debug("configuration loaded")
	return cfg, nil
}

// firstArg returns the command's positional argument or a usage error.
func firstArg(c *cli.Context) (string, error) {
	if c.NArg() < 1 {
		return "", fmt.Errorf("usage: %s %s %s", c.App.Name, c.Command.Name, c.Command.ArgsUsage)
	}
	return c.Args().First(), nil
}

// newManager returns an asset manager rooted at dir.
func newManager(dir string) (*assets.Manager, error) {
	m, err := assets.NewManager()
	if err != nil {
		return nil, err
	}
	if err := m.AddDir(dir); err != nil {
		m.Close()
		return nil, err
	}
	return m, nil
}

// openStore reads and parses the container name from m.
func openStore(cfg *config.Config, m *assets.Manager, name string, palettes []sff.Palette) (*sff.Store, error) {
	data, err := m.Load(name)
	if err != nil {
		return nil, err
	}
	return sff.Load(bytes.NewReader(data), palettes,
		sff.WithLogger(logger.Named("sff")),
		sff.WithWorkers(cfg.Decode.Workers),
		sff.WithCache(cfg.Decode.Cache),
		sff.WithMaxPixels(cfg.Decode.MaxPixels),
	)
}

// readACTs reads palette files named on the command line. Unlike character
// palettes, every listed file must be readable.
func readACTs(paths []string) ([]sff.Palette, error) {
	pals := sff.LoadPalettes(func(n int) (io.ReadCloser, error) {
		if n > len(paths) {
			return nil, os.ErrNotExist
		}
		return os.Open(paths[n-1])
	})
	if len(pals) < len(paths) {
		if len(paths) > sff.MaxPaletteFiles {
			return nil, fmt.Errorf("at most %d palette files are supported", sff.MaxPaletteFiles)
		}
		return nil, fmt.Errorf("reading palette %s: not a readable %d-byte ACT file", paths[len(pals)], sff.ACTSize)
	}
	return pals, nil
}
