package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"gioui.org/app"

	"github.com/sc-workshop/AtlasGenerator"
	"github.com/sc-workshop/AtlasGenerator/utils"
)

const helpBanner = `
┌─┐┌┬┐┬  ┌─┐┌─┐┌─┐┌─┐┌┐┌
├─┤ │ │  ├─┤└─┐│ ┬├┤ │││
┴ ┴ ┴ ┴─┘┴ ┴└─┘└─┘└─┘┘└┘

Sprite atlas generator.
    Version: %s

`

// Version indicates the current build version, set via -ldflags at
// release time.
var Version string

func main() {
	log.SetFlags(0)

	var (
		outDir         = flag.String("out", "", "Output directory for the generated atlas(es)")
		force          = flag.Bool("force", false, "Overwrite an existing output directory")
		debug          = flag.Bool("debug", false, "Print per-item packing diagnostics")
		itemDebug      = flag.Bool("item-debug", false, "Print 9-slice region counts for sliced items")
		preview        = flag.Bool("preview", false, "Open a GUI window to inspect the packed atlas(es)")
		maxWidth       = flag.Int("width", 2048, "Max atlas page width")
		maxHeight      = flag.Int("height", 2048, "Max atlas page height")
		scale          = flag.Float64("scale", 1.0, "Rescale factor applied to every sprite before packing")
		extrude        = flag.Int("extrude", 2, "Border pixels replicated around every packed sprite")
		alphaThreshold = flag.Int("alpha-threshold", 1, "Minimum alpha value (0-255) considered opaque")
		parallel       = flag.Bool("parallel", false, "Generate polygons concurrently across items")
		accuracy       = flag.Float64("accuracy", 0.6, "Packer occupancy grid resolution (0,1]")
		format         = flag.String("format", "png", "Atlas page image format: png or bmp")
		workers        = flag.Int("conc", 0, "Number of files to decode concurrently (0 = NumCPU)")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, helpBanner, Version)
		fmt.Fprintln(os.Stderr, "Usage: atlasgen -out <out_dir> [flags] <path>...")
		flag.PrintDefaults()
	}
	flag.Parse()

	paths := flag.Args()
	if *outDir == "" || len(paths) == 0 {
		flag.Usage()
		log.Fatal(utils.DecorateText("\nPlease provide an output directory (-out) and at least one input path!", utils.ErrorMessage))
	}

	imgFormat, err := atlasgen.ParseAtlasImageFormat(*format)
	if err != nil {
		log.Fatal(utils.DecorateText(err.Error(), utils.ErrorMessage))
	}

	cfg := atlasgen.NewConfig(
		*maxWidth, *maxHeight, *scale, *extrude,
		uint8(*alphaThreshold), *parallel, *accuracy, nil,
	)

	proc := atlasgen.NewProcessor(cfg, *outDir, *force, *debug, *itemDebug, *preview, *workers, imgFormat)

	if *preview {
		// gio needs to run on the main OS thread, so the pipeline runs
		// in a goroutine and the preview window is opened from Run
		// once generation completes, while app.Main() blocks here.
		errc := make(chan error, 1)
		go func() { errc <- proc.Run(paths) }()
		app.Main()
		if err := <-errc; err != nil {
			log.Fatal(utils.DecorateText(err.Error(), utils.ErrorMessage))
		}
		return
	}

	if err := proc.Run(paths); err != nil {
		log.Fatal(utils.DecorateText(err.Error(), utils.ErrorMessage))
	}
}
