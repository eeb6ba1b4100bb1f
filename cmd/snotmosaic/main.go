package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/setanarut/snotmosaic"
	"github.com/setanarut/snotmosaic/palette"
	"github.com/setanarut/snotmosaic/quantize"
	"github.com/setanarut/snotmosaic/utils"
)

var (
	outfile     string
	paletteFile string
	typeName    string
	width       int
	height      int
	pp          int
	smooth      bool
	workers     int
	suggest     int
	method      string
	sheetSize   int
	labels      bool
	quiet       bool
	verbose     bool
	help        bool
)

func initAndParseFlags() {
	flag.StringVar(&outfile, "o", "", "out")
	flag.StringVar(&outfile, "out", "", "specify out.png, by default it appends _mosaic to the input name")
	flag.StringVar(&paletteFile, "p", "", "palette")
	flag.StringVar(&paletteFile, "palette", "", "palette yaml file, by default the built-in brick colors")
	flag.StringVar(&typeName, "t", snotmosaic.SnotBlock.String(), "type")
	flag.StringVar(&typeName, "type", snotmosaic.SnotBlock.String(), "construction type: top, bricks, plates, vplates or snot")
	flag.IntVar(&width, "width", 0, "basic unit width in pixels, by default derived from the image")
	flag.IntVar(&height, "height", 0, "basic unit height in pixels, by default derived from the image")
	flag.IntVar(&pp, "pp", 100, "error propagation percentage, 0 disables dithering")
	flag.BoolVar(&smooth, "smooth", false, "resample smoothly instead of retaining colors")
	flag.IntVar(&workers, "workers", runtime.NumCPU(), "block rows decided concurrently")
	flag.IntVar(&suggest, "suggest", 0, "restrict the palette to this many colors suggested from the image")
	flag.StringVar(&method, "method", utils.PaletteMethodDominantColor.String(), "suggestion method: dominantcolor or kmeans")
	flag.IntVar(&sheetSize, "sheet", 0, "also render a build sheet this many pixels wide")
	flag.BoolVar(&labels, "labels", true, "put color ids on the build sheet studs")
	flag.BoolVar(&quiet, "q", false, "quiet")
	flag.BoolVar(&quiet, "quiet", false, "quiet, only display errors")
	flag.BoolVar(&verbose, "v", false, "verbose")
	flag.BoolVar(&verbose, "verbose", false, "verbose output")
	flag.BoolVar(&help, "h", false, "help")
	flag.BoolVar(&help, "help", false, "help")
	flag.Parse()
}

func main() {
	t0 := time.Now()
	initAndParseFlags()
	if help || flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] image.png\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
		return
	}
	if !verbose {
		snotmosaic.SetLogger(nil)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := run(ctx, flag.Arg(0)); err != nil {
		log.Fatalf("snotmosaic: %v", err)
	}
	if !quiet {
		fmt.Printf("elapsed: %v\n", time.Since(t0))
	}
}

func loadPalette(img image.Image) (palette.Palette, error) {
	colors := palette.Default()
	if paletteFile != "" {
		f, err := os.Open(paletteFile)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		if colors, err = palette.Load(f); err != nil {
			return nil, fmt.Errorf("palette %s: %w", paletteFile, err)
		}
	}
	if suggest > 0 {
		colors = utils.SuggestPalette(img, colors, suggest, utils.ParsePaletteMethod(method))
		if verbose {
			for _, c := range colors {
				fmt.Printf("suggested %v %s\n", c, c.Name)
			}
		}
	}
	return colors, nil
}

func options(size image.Point) (snotmosaic.Options, error) {
	typ, err := snotmosaic.ParseType(typeName)
	if err != nil {
		return snotmosaic.Options{}, err
	}
	opt := snotmosaic.OptionsFromSize(size)
	opt.Type = typ
	if width > 0 {
		opt.Width = width
	}
	if height > 0 {
		opt.Height = height
	}
	opt.PropagationPercentage = pp
	opt.Workers = workers
	if smooth {
		opt.Quality = quantize.Smooth
	}
	return opt, nil
}

func destination(infile, suffix string) string {
	base := strings.TrimSuffix(infile, filepath.Ext(infile))
	if outfile != "" {
		base = strings.TrimSuffix(outfile, filepath.Ext(outfile))
		suffix = strings.TrimPrefix(suffix, "_mosaic")
	}
	return base + suffix + ".png"
}

func run(ctx context.Context, infile string) error {
	img, err := utils.ReadImage(infile)
	if err != nil {
		return err
	}
	colors, err := loadPalette(img)
	if err != nil {
		return err
	}
	opt, err := options(img.Bounds().Size())
	if err != nil {
		return err
	}
	t, err := snotmosaic.New(colors, opt)
	if err != nil {
		return err
	}
	t.SetProgress(quantize.ContextProgress{
		Ctx: ctx,
		OnReport: func(done float64) {
			if verbose {
				fmt.Printf("\r%3.0f%%", done*100)
			}
		},
	})

	mosaic, err := t.Apply(img)
	if verbose {
		fmt.Println()
	}
	if err != nil {
		return fmt.Errorf("Apply failed: %w", err)
	}
	out := destination(infile, "_mosaic")
	if err = utils.SaveImage(mosaic, out); err != nil {
		return fmt.Errorf("SaveImage failed: %w", err)
	}
	if !quiet {
		fmt.Printf("%s %v: %s\n", t.Type(), t.BasicUnitSize(), out)
	}

	if sheetSize > 0 {
		size := t.TransformedSize(img.Bounds().Size())
		toSize := image.Pt(sheetSize, sheetSize*size.Y/max(size.X, 1))
		cmds, _, err := t.DrawAll(toSize, snotmosaic.DrawOptions{Instructions: true, Outlines: true, Labels: labels})
		if err != nil {
			return fmt.Errorf("DrawAll failed: %w", err)
		}
		sheet := destination(infile, "_sheet")
		if err = utils.SaveImage(utils.RenderCommands(cmds, toSize), sheet); err != nil {
			return fmt.Errorf("SaveImage failed: %w", err)
		}
		if !quiet {
			fmt.Printf("build sheet: %s\n", sheet)
		}
	}

	if !quiet {
		legend := palette.Legend(t.Colors())
		palette.UpdateLegend(legend, t.UsedColorCounts())
		total := 0
		for _, c := range legend {
			if c.Count == 0 {
				continue
			}
			total += c.Count
			fmt.Printf("%5d x %-4s %s\n", c.Count, c.Identifier(), c.Name)
		}
		fmt.Printf("%5d studs\n", total)
	}
	return nil
}
