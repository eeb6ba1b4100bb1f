package utils

import (
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"os"
	"slices"

	"github.com/setanarut/snotmosaic/palette"
)

// SortPaletteByBrightness orders colors from darkest to brightest by
// relative luminance.
func SortPaletteByBrightness(p palette.Palette) {
	slices.SortStableFunc(p, func(a, b palette.Color) int {
		ri, gi, bi := a.Colorful().LinearRgb()
		rj, gj, bj := b.Colorful().LinearRgb()
		yi := 0.2126*ri + 0.7152*gi + 0.0722*bi
		yj := 0.2126*rj + 0.7152*gj + 0.0722*bj
		if yi < yj {
			return -1
		}
		if yi > yj {
			return 1
		}
		return 0
	})
}

// ReadImage decodes a PNG or JPEG file.
func ReadImage(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

func SaveImage(img image.Image, filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}

// PaletteImage lays out p as a strip of tileSize squares.
func PaletteImage(p palette.Palette, tileSize int) (*image.RGBA, error) {
	if len(p) == 0 {
		return nil, palette.ErrEmptyPalette
	}
	if tileSize <= 0 {
		tileSize = 64
	}
	img := image.NewRGBA(image.Rect(0, 0, tileSize*len(p), tileSize))
	for i, c := range p {
		rgb := c.RGB
		rgb.A = 255
		x0 := i * tileSize
		for y := 0; y < tileSize; y++ {
			for x := x0; x < x0+tileSize; x++ {
				img.SetRGBA(x, y, rgb)
			}
		}
	}
	return img, nil
}

func SavePalette(p palette.Palette, tileSize int, filename string) error {
	img, err := PaletteImage(p, tileSize)
	if err != nil {
		return err
	}
	return SaveImage(img, filename)
}
