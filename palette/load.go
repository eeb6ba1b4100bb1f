package palette

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrEmptyPalette is returned when a palette document holds no colors.
var ErrEmptyPalette = errors.New("palette: no colors")

//go:embed palettes.yaml
var defaultYaml []byte

var defaultPalette Palette

func init() {
	var err error
	defaultPalette, err = Load(bytes.NewReader(defaultYaml))
	if err != nil {
		panic(fmt.Errorf("embedded palettes.yaml: %w", err))
	}
}

// Default returns the embedded LEGO palette.
func Default() Palette {
	return defaultPalette.Clone()
}

type paletteYaml struct {
	Name   string
	Colors []string
}

// Load parses a palette document. Each color is a "id, #rrggbb, name[, short]"
// string; ids must be unique and non-negative.
func Load(r io.Reader) (Palette, error) {
	var doc paletteYaml
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode palette: %w", err)
	}
	if len(doc.Colors) == 0 {
		return nil, ErrEmptyPalette
	}
	seen := make(map[int]bool, len(doc.Colors))
	p := make(Palette, 0, len(doc.Colors))
	for i, line := range doc.Colors {
		c, err := parseColor(line)
		if err != nil {
			return nil, fmt.Errorf("palette %q color %d: %w", doc.Name, i, err)
		}
		if seen[c.ID] {
			return nil, fmt.Errorf("palette %q: duplicate color id %d", doc.Name, c.ID)
		}
		seen[c.ID] = true
		p = append(p, c)
	}
	return p, nil
}

func parseColor(line string) (Color, error) {
	a := strings.Split(line, ",")
	if len(a) < 3 {
		return Color{}, fmt.Errorf("want \"id, #rrggbb, name\", got %q", line)
	}
	id, err := strconv.Atoi(strings.TrimSpace(a[0]))
	if err != nil {
		return Color{}, fmt.Errorf("id: %w", err)
	}
	if id < 0 {
		return Color{}, fmt.Errorf("negative id %d", id)
	}
	hex := strings.TrimPrefix(strings.TrimSpace(a[1]), "#")
	rgb, err := strconv.ParseUint(hex, 16, 24)
	if err != nil {
		return Color{}, fmt.Errorf("rgb %q: %w", a[1], err)
	}
	c := New(id, strings.TrimSpace(a[2]), byte(rgb>>16), byte(rgb>>8), byte(rgb))
	if len(a) > 3 {
		c.Short = strings.TrimSpace(a[3])
	}
	return c, nil
}
