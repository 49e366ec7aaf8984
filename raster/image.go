// Package raster wraps the pixel buffers the rest of the module operates
// on. It is a thin layer over gocv.Mat: every sprite and atlas page is
// backed by a cv::Mat-equivalent buffer, and gocv gives the same
// CV_8UC1/2/3/4 storage layout without reinventing pixel access.
package raster

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

// PixelDepth mirrors the texture formats Config accepts: grayscale,
// grayscale+alpha, RGB and RGBA, each stored as 8 bits per channel.
type PixelDepth int

const (
	L8 PixelDepth = iota + 1
	LA8
	RGB8
	RGBA8
)

// Channels returns the number of channels this depth packs per pixel.
func (d PixelDepth) Channels() int {
	switch d {
	case L8:
		return 1
	case LA8:
		return 2
	case RGB8:
		return 3
	case RGBA8:
		return 4
	default:
		return 0
	}
}

// HasAlpha reports whether the last channel of this depth is alpha.
func (d PixelDepth) HasAlpha() bool {
	return d == LA8 || d == RGBA8
}

func (d PixelDepth) String() string {
	switch d {
	case L8:
		return "L8"
	case LA8:
		return "LA8"
	case RGB8:
		return "RGB8"
	case RGBA8:
		return "RGBA8"
	default:
		return "unknown"
	}
}

func (d PixelDepth) matType() gocv.MatType {
	switch d {
	case L8:
		return gocv.MatTypeCV8UC1
	case LA8:
		return gocv.MatTypeCV8UC2
	case RGB8:
		return gocv.MatTypeCV8UC3
	case RGBA8:
		return gocv.MatTypeCV8UC4
	default:
		return gocv.MatTypeCV8UC4
	}
}

func depthFromChannels(n int) (PixelDepth, error) {
	switch n {
	case 1:
		return L8, nil
	case 2:
		return LA8, nil
	case 3:
		return RGB8, nil
	case 4:
		return RGBA8, nil
	default:
		return 0, fmt.Errorf("raster: unsupported channel count %d", n)
	}
}

// Image is a decoded sprite or atlas page: a width x height grid of
// PixelDepth-sized pixels, backed by a gocv.Mat for the interpolation,
// border-extrusion and channel-extraction primitives the generator needs.
type Image struct {
	mat   gocv.Mat
	depth PixelDepth
}

// New allocates a black (zero-filled) buffer of the given size and depth.
func New(width, height int, depth PixelDepth) Image {
	return Image{
		mat:   gocv.NewMatWithSize(height, width, depth.matType()),
		depth: depth,
	}
}

// FromBytes wraps a tightly packed row-major, interleaved-channel pixel
// buffer (the layout image/draw and disintegration/imaging both produce).
func FromBytes(width, height int, depth PixelDepth, data []byte) (Image, error) {
	want := width * height * depth.Channels()
	if len(data) != want {
		return Image{}, fmt.Errorf("raster: expected %d bytes for %dx%d %s, got %d", want, width, height, depth, len(data))
	}
	return Image{
		mat:   gocv.NewMatFromBytes(height, width, depth.matType(), data),
		depth: depth,
	}, nil
}

// Close releases the underlying native buffer. Call it once an Image is no
// longer needed; the atlas builder does this for each temporary extruded
// copy once it has been blitted into its atlas page.
func (im *Image) Close() error {
	if im.mat.Ptr() == nil {
		return nil
	}
	return im.mat.Close()
}

func (im Image) Width() int  { return im.mat.Cols() }
func (im Image) Height() int { return im.mat.Rows() }
func (im Image) Depth() PixelDepth { return im.depth }
func (im Image) Empty() bool { return im.mat.Empty() }

// Bounds returns the image rectangle in image/draw's coordinate space,
// origin at the top-left corner.
func (im Image) Bounds() image.Rectangle {
	return image.Rect(0, 0, im.Width(), im.Height())
}

// At returns the raw channel bytes of the pixel at (x, y), top-left
// origin. The slice is a copy; mutate via Set.
func (im Image) At(x, y int) []byte {
	n := im.depth.Channels()
	px := make([]byte, n)
	for c := 0; c < n; c++ {
		px[c] = im.mat.GetUCharAt3(y, x, c)
	}
	return px
}

// Set overwrites the pixel at (x, y) with px, which must have exactly
// Depth().Channels() bytes.
func (im *Image) Set(x, y int, px []byte) {
	for c, v := range px {
		im.mat.SetUCharAt3(y, x, c, v)
	}
}

// Alpha returns the alpha channel value at (x, y), or 255 for depths that
// carry no alpha (treated as fully opaque).
func (im Image) Alpha(x, y int) uint8 {
	switch im.depth {
	case LA8:
		return im.mat.GetUCharAt3(y, x, 1)
	case RGBA8:
		return im.mat.GetUCharAt3(y, x, 3)
	default:
		return 255
	}
}

// ExtractChannel returns a single-channel L8 Image holding channel coi
// (0-indexed) of im, using cv::extractChannel to pull the alpha plane
// out of an RGBA/LA source before normalize_mask.
func (im Image) ExtractChannel(coi int) Image {
	dst := gocv.NewMatWithSize(im.Height(), im.Width(), gocv.MatTypeCV8UC1)
	gocv.ExtractChannel(im.mat, &dst, coi)
	return Image{mat: dst, depth: L8}
}

// AlphaChannel extracts the alpha plane (channel 3 for RGBA8, channel 1
// for LA8); alpha lives in the last channel of both depths.
func (im Image) AlphaChannel() (Image, bool) {
	switch im.depth {
	case RGBA8:
		return im.ExtractChannel(3), true
	case LA8:
		return im.ExtractChannel(1), true
	default:
		return Image{}, false
	}
}

// Crop returns a new, independent Image holding the pixels inside r.
func (im Image) Crop(r image.Rectangle) Image {
	region := im.mat.Region(image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Max.Y))
	return Image{mat: region.Clone(), depth: im.depth}
}

// Resize returns a copy scaled to width x height. Pixel art sprites are
// resized with nearest-neighbor interpolation (cv::INTER_NEAREST) so
// scaled polygons stay crisp.
func (im Image) Resize(width, height int) Image {
	if width == im.Width() && height == im.Height() {
		return im.Crop(im.Bounds())
	}
	dst := gocv.NewMat()
	gocv.Resize(im.mat, &dst, image.Pt(width, height), 0, 0, gocv.InterpolationNearestNeighbor)
	return Image{mat: dst, depth: im.depth}
}

// CopyMakeBorder pads im on every side by n pixels, replicating the
// border pixels outward. This is the extrusion step: Config.Extrude
// pixels of border are baked around every item as it's blitted, so
// texture filtering at runtime doesn't bleed in neighboring items.
func (im Image) CopyMakeBorder(n int) Image {
	if n <= 0 {
		return im.Crop(im.Bounds())
	}
	dst := gocv.NewMat()
	gocv.CopyMakeBorder(im.mat, &dst, n, n, n, n, gocv.BorderReplicate, color.RGBA{})
	return Image{mat: dst, depth: im.depth}
}

// ToBytes returns the tightly packed, row-major, interleaved-channel
// pixel buffer backing im, suitable for handing to image/draw or an
// encoder.
func (im Image) ToBytes() []byte {
	return im.mat.ToBytes()
}

// Hash returns a content hash over the image's depth, dimensions and
// pixel bytes. generator.go uses this for item de-duplication: two
// items whose images hash equal are treated as the same sprite the way
// Item::operator== falls back to a hash comparison when the two Item
// pointers differ.
func (im Image) Hash() [32]byte {
	h := sha256.New()
	var hdr [12]byte
	binary.LittleEndian.PutUint32(hdr[0:4], uint32(im.depth))
	binary.LittleEndian.PutUint32(hdr[4:8], uint32(im.Width()))
	binary.LittleEndian.PutUint32(hdr[8:12], uint32(im.Height()))
	h.Write(hdr[:])
	h.Write(im.ToBytes())
	var sum [32]byte
	copy(sum[:], h.Sum(nil))
	return sum
}

// AlphaBound returns the tight bounding box of pixels whose alpha is
// above threshold, or ok=false if every pixel is at or below it (a
// fully transparent image, which item.go turns into a 1x1 rectangle).
// For an L8 image (an extracted alpha mask) the single channel is read
// as the alpha value. This runs right after normalize_mask, before
// contour walking ever sees the image.
func (im Image) AlphaBound(threshold uint8) (r image.Rectangle, ok bool) {
	minX, minY := im.Width(), im.Height()
	maxX, maxY := -1, -1
	for y := 0; y < im.Height(); y++ {
		for x := 0; x < im.Width(); x++ {
			a := im.Alpha(x, y)
			if im.depth == L8 {
				a = im.mat.GetUCharAt(y, x)
			}
			if a <= threshold {
				continue
			}
			if x < minX {
				minX = x
			}
			if y < minY {
				minY = y
			}
			if x > maxX {
				maxX = x
			}
			if y > maxY {
				maxY = y
			}
		}
	}
	if maxX < minX || maxY < minY {
		return image.Rectangle{}, false
	}
	return image.Rect(minX, minY, maxX+1, maxY+1), true
}

// NormalizeMask rewrites every pixel of an L8 mask to 0 or 255 depending
// on whether it exceeds threshold, matching Item::normalize_mask's binary
// thresholding of the extracted alpha plane before contour walking.
func (im *Image) NormalizeMask(threshold uint8) {
	if im.depth != L8 {
		panic("raster: NormalizeMask requires an L8 image")
	}
	for y := 0; y < im.Height(); y++ {
		for x := 0; x < im.Width(); x++ {
			v := im.mat.GetUCharAt(y, x)
			if v > threshold {
				im.mat.SetUCharAt(y, x, 255)
			} else {
				im.mat.SetUCharAt(y, x, 0)
			}
		}
	}
}

// PremultiplyAlpha scales each color channel by alpha/255: colors
// under fully or partially transparent pixels are darkened toward
// black so that bilinear filtering at atlas edges doesn't leak bright
// fully-transparent colors into visible neighbors.
func (im *Image) PremultiplyAlpha() {
	if !im.depth.HasAlpha() {
		return
	}
	colorChans := im.depth.Channels() - 1
	for y := 0; y < im.Height(); y++ {
		for x := 0; x < im.Width(); x++ {
			a := int(im.Alpha(x, y))
			for c := 0; c < colorChans; c++ {
				v := int(im.mat.GetUCharAt3(y, x, c))
				im.mat.SetUCharAt3(y, x, c, uint8(v*a/255))
			}
		}
	}
}

// Validate reports whether im is non-empty, no larger than maxDim on
// either side (an oversized single sprite can never be packed), and of a
// supported channel count. minDim is accepted but not checked.
func Validate(im Image, minDim, maxDim int) error {
	w, h := im.Width(), im.Height()
	if w < 1 || h < 1 {
		return fmt.Errorf("raster: empty image (%dx%d)", w, h)
	}
	if w > maxDim || h > maxDim {
		return fmt.Errorf("raster: image %dx%d exceeds max dimension %d", w, h, maxDim)
	}
	if _, err := depthFromChannels(im.Depth().Channels()); err != nil {
		return fmt.Errorf("raster: %w", err)
	}
	_ = minDim // no floor is enforced on sprites or atlas pages.
	return nil
}
