package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"sort"
	"text/tabwriter"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/Faultbox/sffkit/internal/chardef"
	"github.com/Faultbox/sffkit/internal/config"
	"github.com/Faultbox/sffkit/internal/export"
	"github.com/Faultbox/sffkit/internal/logger"
	"github.com/Faultbox/sffkit/pkg/sff"
)

func cmdInfo(c *cli.Context) error {
	path, err := firstArg(c)
	if err != nil {
		return err
	}
	cfg, err := setup(c)
	if err != nil {
		return err
	}
	m, err := newManager(filepath.Dir(path))
	if err != nil {
		return err
	}
	defer m.Close()

	store, err := openStore(cfg, m, filepath.Base(path), nil)
	if err != nil {
		return err
	}
	printInfo(c.App.Writer, path, store)
	return nil
}

func printInfo(w io.Writer, path string, store *sff.Store) {
	ct := store.Container()

	groups := make(map[uint16]struct{})
	formats := make(map[sff.Format]int)
	linked := 0
	for i := range ct.Sprites {
		s := &ct.Sprites[i]
		groups[s.Group] = struct{}{}
		if s.Link != 0 && s.DataLen() == 0 {
			linked++
			continue
		}
		formats[s.Format]++
	}

	fmt.Fprintf(w, "File:     %s\n", path)
	if ct.V2 != nil {
		fmt.Fprintf(w, "Version:  %s (compatible with %s)\n", ct.Version, ct.V2.Compat)
	} else {
		fmt.Fprintf(w, "Version:  %s\n", ct.Version)
	}
	fmt.Fprintf(w, "Sprites:  %d (%d linked)\n", store.Len(), linked)
	fmt.Fprintf(w, "Groups:   %d\n", len(groups))
	if ct.V1 != nil {
		fmt.Fprintf(w, "Shared:   %t\n", ct.V1.SharedPalette)
	} else {
		fmt.Fprintf(w, "Palettes: %d\n", store.Palettes())
		fmt.Fprintf(w, "Blocks:   literal %d bytes, translated %d bytes\n", len(ct.V2.Literal), len(ct.V2.Translated))
	}

	type formatStat struct {
		f     sff.Format
		count int
	}
	var stats []formatStat
	for f, n := range formats {
		stats = append(stats, formatStat{f, n})
	}
	sort.Slice(stats, func(i, j int) bool {
		return stats[i].count > stats[j].count
	})
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Sprites by format:")
	for _, s := range stats {
		fmt.Fprintf(w, "  %-8s %d\n", s.f, s.count)
	}
}

func cmdList(c *cli.Context) error {
	path, err := firstArg(c)
	if err != nil {
		return err
	}
	cfg, err := setup(c)
	if err != nil {
		return err
	}
	m, err := newManager(filepath.Dir(path))
	if err != nil {
		return err
	}
	defer m.Close()

	store, err := openStore(cfg, m, filepath.Base(path), nil)
	if err != nil {
		return err
	}

	group, limit := c.Int("group"), c.Int("n")
	tw := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "GROUP\tIMAGE\tSIZE\tAXIS\tFORMAT\tLINK")
	count := 0
	for _, k := range store.Keys() {
		if group >= 0 && int(k.Group) != group {
			continue
		}
		if limit > 0 && count >= limit {
			break
		}
		s, err := store.Sprite(int(k.Group), int(k.Image))
		if err != nil {
			return err
		}
		link := "-"
		if s.Link != 0 && s.DataLen() == 0 {
			link = fmt.Sprint(s.Link)
		}
		w, h := s.Size()
		fmt.Fprintf(tw, "%d\t%d\t%dx%d\t%d,%d\t%s\t%s\n", k.Group, k.Image, w, h, s.AxisX, s.AxisY, s.Format, link)
		count++
	}
	return tw.Flush()
}

func cmdExtract(c *cli.Context) error {
	path, err := firstArg(c)
	if err != nil {
		return err
	}
	cfg, err := setup(c)
	if err != nil {
		return err
	}
	pals, err := readACTs(c.StringSlice("act"))
	if err != nil {
		return err
	}
	m, err := newManager(filepath.Dir(path))
	if err != nil {
		return err
	}
	defer m.Close()

	store, err := openStore(cfg, m, filepath.Base(path), pals)
	if err != nil {
		return err
	}
	return extract(c.Context, c.App.Writer, cfg, store, c.Bool("all-palettes"), c.Int("scale"))
}

// extract decodes every sprite with the configured palette (or with each
// palette) and writes them below the configured output directory.
func extract(ctx context.Context, w io.Writer, cfg *config.Config, store *sff.Store, allPalettes bool, scale int) error {
	e, err := export.New(cfg.Export.OutputDir, export.Options{
		Format:         cfg.Export.Format,
		Scale:          scale,
		SkipDuplicates: cfg.Export.SkipDuplicates,
	}, logger.Named("export"))
	if err != nil {
		return err
	}

	selectors := []int{cfg.Decode.Palette}
	if allPalettes {
		selectors = selectors[:0]
		for i := 0; i < max(store.Palettes(), 1); i++ {
			selectors = append(selectors, i)
		}
	}

	keys := store.Keys()
	for _, sel := range selectors {
		imgs, err := store.LoadAll(ctx, sel)
		if err != nil {
			return fmt.Errorf("decoding with palette %d: %w", sel, err)
		}

		written, dups := 0, 0
		for _, k := range keys {
			img, ok := imgs[k]
			if !ok {
				continue
			}
			_, isNew, err := e.WriteSprite(k, sel, img)
			if err != nil {
				return err
			}
			if isNew {
				written++
			} else {
				dups++
			}
		}
		if p, err := store.Palette(sel); err == nil {
			if _, err := e.WritePalette(sel, p); err != nil {
				return err
			}
		}

		hits, misses := store.CacheStats()
		logger.Info("palette extracted",
			zap.Int("palette", sel), zap.Int("written", written), zap.Int("duplicates", dups),
			zap.Int64("cacheHits", hits), zap.Int64("cacheMisses", misses))
		fmt.Fprintf(w, "palette %d: %d written, %d duplicates, %d undecodable\n",
			sel, written, dups, len(keys)-len(imgs))
	}
	fmt.Fprintf(w, "output: %s\n", cfg.Export.OutputDir)
	return nil
}

func cmdPalettes(c *cli.Context) error {
	path, err := firstArg(c)
	if err != nil {
		return err
	}
	cfg, err := setup(c)
	if err != nil {
		return err
	}
	pals, err := readACTs(c.StringSlice("act"))
	if err != nil {
		return err
	}
	m, err := newManager(filepath.Dir(path))
	if err != nil {
		return err
	}
	defer m.Close()

	store, err := openStore(cfg, m, filepath.Base(path), pals)
	if err != nil {
		return err
	}
	e, err := export.New(cfg.Export.OutputDir, export.Options{Format: cfg.Export.Format}, logger.Named("export"))
	if err != nil {
		return err
	}

	if store.Palettes() == 0 {
		fmt.Fprintln(c.App.Writer, "no palettes")
		return nil
	}
	for i := 0; i < store.Palettes(); i++ {
		p, err := store.Palette(i)
		if err != nil {
			return err
		}
		out, err := e.WritePalette(i, p)
		if err != nil {
			return err
		}
		fmt.Fprintln(c.App.Writer, out)
	}
	return nil
}

func cmdChar(c *cli.Context) error {
	path, err := firstArg(c)
	if err != nil {
		return err
	}
	cfg, err := setup(c)
	if err != nil {
		return err
	}
	m, err := newManager(filepath.Dir(path))
	if err != nil {
		return err
	}
	defer m.Close()

	defName := filepath.Base(path)
	data, err := m.Load(defName)
	if err != nil {
		return err
	}
	def, err := chardef.Parse(data)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	pals := sff.LoadPalettes(func(n int) (io.ReadCloser, error) {
		p := def.PalettePath(defName, n)
		if p == "" {
			return nil, fs.ErrNotExist
		}
		return m.Open(p)
	})
	if len(pals) == 0 {
		pals, err = readACTs(c.StringSlice("act"))
		if err != nil {
			return err
		}
	}

	store, err := openStore(cfg, m, def.SpritePath(defName), pals)
	if err != nil {
		return err
	}
	if !c.IsSet("palette") && len(def.PaletteDefaults) > 0 {
		cfg.Decode.Palette = def.DefaultPalette()
	}

	w := c.App.Writer
	fmt.Fprintf(w, "Name:     %s\n", def.DisplayName)
	if def.Author != "" {
		fmt.Fprintf(w, "Author:   %s\n", def.Author)
	}
	fmt.Fprintf(w, "Sprite:   %s (SFF %s, %d sprites)\n", def.SpritePath(defName), store.Container().Version, store.Len())
	fmt.Fprintf(w, "Palettes: %d\n", store.Palettes())

	if !c.Bool("extract") {
		return nil
	}
	err = extract(c.Context, w, cfg, store, c.Bool("all-palettes"), c.Int("scale"))
	if errors.Is(err, sff.ErrPaletteNotFound) {
		return fmt.Errorf("%w (character has %d palettes)", err, store.Palettes())
	}
	return err
}

func cmdConfig(c *cli.Context) error {
	cfg, err := setup(c)
	if err != nil {
		return err
	}
	path := c.String("path")
	if path == "" {
		if path, err = cfg.Save(); err != nil {
			return err
		}
	} else if err := cfg.SaveTo(path); err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, path)
	return nil
}
