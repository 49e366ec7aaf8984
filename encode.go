package atlasgen

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"strings"

	"golang.org/x/image/bmp"

	"github.com/sc-workshop/AtlasGenerator/raster"
)

// AtlasImageFormat is one of the output encodings an atlas page can be
// written as. PNG is the default (lossless); BMP is offered as an
// uncompressed alternative.
type AtlasImageFormat int

const (
	FormatPNG AtlasImageFormat = iota
	FormatBMP
)

// ParseAtlasImageFormat maps a CLI -format flag value to an
// AtlasImageFormat.
func ParseAtlasImageFormat(s string) (AtlasImageFormat, error) {
	switch strings.ToLower(s) {
	case "", "png":
		return FormatPNG, nil
	case "bmp":
		return FormatBMP, nil
	default:
		return FormatPNG, fmt.Errorf("atlasgen: unsupported atlas format %q", s)
	}
}

func (f AtlasImageFormat) ext() string {
	if f == FormatBMP {
		return ".bmp"
	}
	return ".png"
}

// encodeAtlasPage writes an atlas page to path in format, converting
// the raster.Image's packed pixel buffer to a standard library
// image.Image first since neither png nor bmp know about gocv's Mat
// layout.
func encodeAtlasPage(img raster.Image, path string, format AtlasImageFormat) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	nrgba := toNRGBA(img)
	switch format {
	case FormatBMP:
		return bmp.Encode(f, nrgba)
	default:
		return png.Encode(f, nrgba)
	}
}

// toNRGBA expands any supported raster.Image depth to a standard
// library *image.NRGBA for encoding.
func toNRGBA(img raster.Image) *image.NRGBA {
	w, h := img.Width(), img.Height()
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	depth := img.Depth()

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			px := img.At(x, y)
			var c color.NRGBA
			switch depth {
			case raster.L8:
				c = color.NRGBA{R: px[0], G: px[0], B: px[0], A: 255}
			case raster.LA8:
				c = color.NRGBA{R: px[0], G: px[0], B: px[0], A: px[1]}
			case raster.RGB8:
				c = color.NRGBA{R: px[0], G: px[1], B: px[2], A: 255}
			default: // RGBA8
				c = color.NRGBA{R: px[0], G: px[1], B: px[2], A: px[3]}
			}
			dst.SetNRGBA(x, y, c)
		}
	}
	return dst
}
