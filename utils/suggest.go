package utils

import (
	"image"
	"image/color"
	"log"
	"math"
	"slices"

	"github.com/cenkalti/dominantcolor"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"

	"github.com/setanarut/snotmosaic/palette"
)

type PaletteMethod int

const (
	PaletteMethodDominantColor PaletteMethod = iota
	PaletteMethodKMeans
)

func (m PaletteMethod) String() string {
	switch m {
	case PaletteMethodKMeans:
		return "kmeans"
	default:
		return "dominantcolor"
	}
}

// ParsePaletteMethod maps "kmeans" and "dominantcolor" to their method.
func ParsePaletteMethod(s string) PaletteMethod {
	if s == PaletteMethodKMeans.String() {
		return PaletteMethodKMeans
	}
	return PaletteMethodDominantColor
}

type weightedColor struct {
	Col    color.RGBA
	Weight float64
}

// SuggestPalette picks at most k colors of available that reproduce img
// well: image colors are extracted with method, snapped to their nearest
// available color, and the most used, mutually distinct results are kept.
// The suggestion is sorted from darkest to brightest.
func SuggestPalette(img image.Image, available palette.Palette, k int, method PaletteMethod) palette.Palette {
	if k <= 0 || len(available) == 0 {
		return nil
	}
	var cands []weightedColor
	switch method {
	case PaletteMethodKMeans:
		cands = kmeansCandidates(img, k)
		if len(cands) == 0 {
			log.Println("palette warning: kmeans returned no clusters, falling back to dominantcolor")
			cands = dominantCandidates(img, k)
		}
	default:
		cands = dominantCandidates(img, k)
	}

	// Several image colors may snap to the same brick color.
	lookup := palette.NewLookup(available)
	weights := make(map[int]float64)
	var snapped palette.Palette
	for _, c := range cands {
		p := lookup.Nearest(c.Col)
		if _, ok := weights[p.ID]; !ok {
			snapped = append(snapped, p)
		}
		weights[p.ID] += c.Weight
	}
	out := selectDiverse(snapped, weights, k)
	SortPaletteByBrightness(out)
	return out
}

func dominantCandidates(img image.Image, k int) []weightedColor {
	found := dominantcolor.FindWeight(img, max(24, k*8))
	if len(found) == 0 {
		// Last resort: avoid an empty suggestion.
		return []weightedColor{{Col: color.RGBA{R: 128, G: 128, B: 128, A: 255}, Weight: 1}}
	}
	out := make([]weightedColor, 0, len(found))
	for _, c := range found {
		out = append(out, weightedColor{Col: c.RGBA, Weight: max(c.Weight, 1e-6)})
	}
	return out
}

func kmeansCandidates(img image.Image, k int) []weightedColor {
	b := img.Bounds()
	width, height := b.Dx(), b.Dy()
	if width == 0 || height == 0 {
		return nil
	}

	// Subsample to keep kmeans tractable on large images.
	maxSamples := 12000
	step := 1
	if width*height > maxSamples {
		step = int(math.Sqrt(float64(width*height)/float64(maxSamples))) + 1
	}

	dataset := make(clusters.Observations, 0, min(width*height, maxSamples))
	for y := b.Min.Y; y < b.Max.Y; y += step {
		for x := b.Min.X; x < b.Max.X; x += step {
			r16, g16, b16, a16 := img.At(x, y).RGBA()
			if a16 == 0 {
				continue
			}
			dataset = append(dataset, clusters.Coordinates{
				float64(r16) / 65535.0,
				float64(g16) / 65535.0,
				float64(b16) / 65535.0,
			})
		}
	}
	if len(dataset) == 0 {
		return nil
	}

	workK := min(max(k*4, k+2), len(dataset))
	cc, err := kmeans.New().Partition(dataset, workK)
	if err != nil || len(cc) == 0 {
		return nil
	}

	// Most populated clusters first.
	slices.SortFunc(cc, func(a, b clusters.Cluster) int {
		return len(b.Observations) - len(a.Observations)
	})

	out := make([]weightedColor, 0, len(cc))
	for _, c := range cc {
		if len(c.Center) < 3 || len(c.Observations) == 0 {
			continue
		}
		col := colorful.Color{R: c.Center[0], G: c.Center[1], B: c.Center[2]}.Clamped()
		r, g, bb := col.RGB255()
		out = append(out, weightedColor{
			Col:    color.RGBA{R: r, G: g, B: bb, A: 255},
			Weight: float64(len(c.Observations)),
		})
	}
	return out
}

// selectDiverse seeds with the heaviest color and then greedily adds the
// color farthest, in Lab, from those already chosen, favoring heavy ones.
func selectDiverse(cands palette.Palette, weights map[int]float64, k int) palette.Palette {
	if k <= 0 || len(cands) == 0 {
		return nil
	}
	type item struct {
		lab [3]float64
		w   float64
	}
	items := make([]item, len(cands))
	maxW := 0.0
	for i, c := range cands {
		l, a, b := c.Colorful().Lab()
		w := max(weights[c.ID], 1e-6)
		maxW = max(maxW, w)
		items[i] = item{lab: [3]float64{l, a, b}, w: w}
	}
	k = min(k, len(items))

	bestSeed := 0
	for i := 1; i < len(items); i++ {
		if items[i].w > items[bestSeed].w {
			bestSeed = i
		}
	}
	selectedIdx := make([]int, 0, k)
	selectedIdx = append(selectedIdx, bestSeed)
	selected := make([]bool, len(items))
	selected[bestSeed] = true

	for len(selectedIdx) < k {
		bestIdx := -1
		bestScore := -1.0
		for i := range items {
			if selected[i] {
				continue
			}
			minD2 := math.MaxFloat64
			for _, s := range selectedIdx {
				d0 := items[i].lab[0] - items[s].lab[0]
				d1 := items[i].lab[1] - items[s].lab[1]
				d2 := items[i].lab[2] - items[s].lab[2]
				minD2 = min(minD2, d0*d0+d1*d1+d2*d2)
			}
			score := math.Sqrt(minD2) * (0.55 + 0.45*math.Sqrt(items[i].w/maxW))
			if score > bestScore {
				bestScore = score
				bestIdx = i
			}
		}
		if bestIdx < 0 {
			break
		}
		selected[bestIdx] = true
		selectedIdx = append(selectedIdx, bestIdx)
	}

	out := make(palette.Palette, 0, len(selectedIdx))
	for _, idx := range selectedIdx {
		out = append(out, cands[idx])
	}
	return out
}
