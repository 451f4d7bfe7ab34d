// sfftool is a CLI utility for working with MUGEN SFF sprite containers.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/urfave/cli/v2"

	"github.com/Faultbox/sffkit/internal/logger"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newApp(os.Stdout).RunContext(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		logger.Sync()
		os.Exit(1)
	}
	logger.Sync()
}

func newApp(out io.Writer) *cli.App {
	app := cli.NewApp()
	app.Name = "sfftool"
	app.Usage = "MUGEN SFF sprite container utility"
	app.Version = version
	app.Writer = out
	app.ErrWriter = os.Stderr

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			EnvVars: []string{"SFFTOOL_CONFIG"},
			Usage:   "path to config file",
		},
		&cli.BoolFlag{
			Name:  "debug",
			Usage: "enable debug logging",
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "log level (debug, info, warn, error)",
		},
		&cli.StringFlag{
			Name:  "log-file",
			Usage: "also write logs to a rotating file",
		},
		&cli.IntFlag{
			Name:  "workers",
			Usage: "concurrent sprite decodes (0 = config value)",
		},
		&cli.BoolFlag{
			Name:  "no-cache",
			Usage: "disable the decoded sprite cache",
		},
	}

	app.Commands = []*cli.Command{
		{
			Name:      "info",
			Usage:     "Show container information",
			ArgsUsage: "FILE.sff",
			Action:    cmdInfo,
		},
		{
			Name:      "list",
			Aliases:   []string{"ls"},
			Usage:     "List sprites",
			ArgsUsage: "FILE.sff",
			Flags: []cli.Flag{
				&cli.IntFlag{Name: "group", Aliases: []string{"g"}, Value: -1, Usage: "only list this group"},
				&cli.IntFlag{Name: "n", Usage: "limit output to N sprites (0 = all)"},
			},
			Action: cmdList,
		},
		{
			Name:      "extract",
			Aliases:   []string{"x"},
			Usage:     "Decode sprites and write them as images",
			ArgsUsage: "FILE.sff",
			Flags:     extractFlags(),
			Action:    cmdExtract,
		},
		{
			Name:      "palettes",
			Usage:     "Write the container's palettes as ACT files",
			ArgsUsage: "FILE.sff",
			Flags: []cli.Flag{
				&cli.StringSliceFlag{Name: "act", Usage: "external V1 palette file (repeatable)"},
				&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "output directory"},
			},
			Action: cmdPalettes,
		},
		{
			Name:      "char",
			Usage:     "Load a character through its .def file",
			ArgsUsage: "CHAR.def",
			Flags: append(extractFlags(),
				&cli.BoolFlag{Name: "extract", Usage: "also write the character's sprites"},
			),
			Action: cmdChar,
		},
		{
			Name:  "config",
			Usage: "Write the effective configuration as YAML",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "path", Usage: "destination (default: user config directory)"},
			},
			Action: cmdConfig,
		},
	}

	return app
}

func extractFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringSliceFlag{Name: "act", Usage: "external V1 palette file (repeatable)"},
		&cli.IntFlag{Name: "palette", Aliases: []string{"p"}, Value: -1, Usage: "palette selector (-1 = config value)"},
		&cli.BoolFlag{Name: "all-palettes", Usage: "extract once per available palette"},
		&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "output directory"},
		&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Usage: "image format (png, bmp)"},
		&cli.IntFlag{Name: "scale", Value: 1, Usage: "nearest-neighbour upscale factor"},
	}
}
