package sff

// resolveLink follows link indices from sprite i until it reaches a record
// that owns pixel data. Only zero-length records with a non-zero link are
// followed. The chain is bounded by the table size.
func (c *Container) resolveLink(i int) (int, error) {
	for hops := 0; hops <= len(c.Sprites); hops++ {
		s := &c.Sprites[i]
		if s.Link == 0 || s.DataLen() != 0 {
			return i, nil
		}
		next := int(s.Link)
		if next >= len(c.Sprites) {
			return 0, ErrBrokenLink
		}
		i = next
	}
	return 0, ErrLinkCycle
}

// resolvePalette picks the palette used to draw sprite i, whose pixel data
// is owned by sprite owner. external holds caller-supplied V1 palettes.
func (c *Container) resolvePalette(i, owner, selector int, external []Palette) (*Palette, error) {
	switch {
	case c.V1 != nil:
		return c.resolveV1Palette(i, selector, external)
	case c.V2 != nil:
		return c.resolveV2Palette(owner, selector)
	}
	return nil, ErrPaletteNotFound
}

// resolveV1Palette walks backwards (wrapping at 0) from sprite i past every
// sprite that declares it shares the previous palette, then uses the embedded
// palette of the sprite it stops at when there is one.
func (c *Container) resolveV1Palette(i, selector int, external []Palette) (*Palette, error) {
	if c.V1.SharedPalette && c.Sprites[i].SharedPalette {
		return externalPalette(external, selector)
	}

	n := len(c.Sprites)
	p := i
	for step := 0; step < n && c.Sprites[p].SharedPalette; step++ {
		p--
		if p < 0 {
			p += n
		}
	}

	if pal, ok := embeddedPalette(c.Sprites[p].Data); ok {
		return pal, nil
	}
	return externalPalette(external, selector)
}

// externalPalette returns the selected caller palette. With no palettes
// loaded every sprite falls back to an all-black table.
func externalPalette(external []Palette, selector int) (*Palette, error) {
	if len(external) == 0 {
		return &Palette{}, nil
	}
	if selector < 0 || selector >= len(external) {
		return nil, ErrPaletteNotFound
	}
	return &external[selector], nil
}

// resolveV2Palette uses the sprite's own palette index when it has one and
// the caller's selector otherwise.
func (c *Container) resolveV2Palette(owner, selector int) (*Palette, error) {
	idx := int(c.Sprites[owner].Palette)
	if idx == 0 {
		idx = selector
	}
	return c.v2Palette(idx)
}

// v2Palette reads palette table entry idx, following one palette link.
func (c *Container) v2Palette(idx int) (*Palette, error) {
	pals := c.V2.Palettes
	if idx < 0 || idx >= len(pals) {
		return nil, ErrPaletteNotFound
	}
	rec := &pals[idx]
	if rec.Link != 0 {
		if int(rec.Link) >= len(pals) {
			return nil, ErrPaletteNotFound
		}
		rec = &pals[rec.Link]
	}
	return readV2Palette(c.V2.Literal, rec), nil
}
