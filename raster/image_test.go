package raster

import (
	"image"
	"testing"
)

func solidRGBA(w, h int, r, g, b, a byte) []byte {
	buf := make([]byte, w*h*4)
	for i := 0; i < w*h; i++ {
		buf[i*4+0] = r
		buf[i*4+1] = g
		buf[i*4+2] = b
		buf[i*4+3] = a
	}
	return buf
}

func TestFromBytesRejectsShortBuffer(t *testing.T) {
	if _, err := FromBytes(4, 4, RGBA8, make([]byte, 10)); err == nil {
		t.Fatal("expected an error for a buffer shorter than width*height*channels")
	}
}

func TestSetAtRoundTrip(t *testing.T) {
	im := New(4, 4, RGBA8)
	defer im.Close()

	im.Set(1, 2, []byte{10, 20, 30, 255})
	got := im.At(1, 2)
	want := []byte{10, 20, 30, 255}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("pixel mismatch at channel %d: got %v want %v", i, got, want)
		}
	}
}

func TestAlphaDefaultsToOpaqueWithoutAlphaChannel(t *testing.T) {
	im := New(2, 2, RGB8)
	defer im.Close()
	if a := im.Alpha(0, 0); a != 255 {
		t.Fatalf("expected opaque default alpha for RGB8, got %d", a)
	}
}

func TestAlphaBoundFindsTightBox(t *testing.T) {
	im, err := FromBytes(4, 4, RGBA8, solidRGBA(4, 4, 0, 0, 0, 0))
	if err != nil {
		t.Fatal(err)
	}
	defer im.Close()
	im.Set(1, 1, []byte{255, 255, 255, 255})
	im.Set(2, 2, []byte{255, 255, 255, 255})

	r, ok := im.AlphaBound(0)
	if !ok {
		t.Fatal("expected an alpha bound since two pixels are opaque")
	}
	want := image.Rect(1, 1, 3, 3)
	if r != want {
		t.Fatalf("expected %v, got %v", want, r)
	}
}

func TestAlphaBoundEmptyWhenFullyTransparent(t *testing.T) {
	im, err := FromBytes(2, 2, RGBA8, solidRGBA(2, 2, 0, 0, 0, 0))
	if err != nil {
		t.Fatal(err)
	}
	defer im.Close()
	if _, ok := im.AlphaBound(0); ok {
		t.Fatal("expected no bound for a fully transparent image")
	}
}

func TestNormalizeMaskThresholds(t *testing.T) {
	mask := New(3, 1, L8)
	defer mask.Close()
	mask.Set(0, 0, []byte{0})
	mask.Set(1, 0, []byte{128})
	mask.Set(2, 0, []byte{255})

	mask.NormalizeMask(100)
	if v := mask.At(0, 0)[0]; v != 0 {
		t.Fatalf("expected 0 to stay 0, got %d", v)
	}
	if v := mask.At(1, 0)[0]; v != 255 {
		t.Fatalf("expected 128 to threshold up to 255, got %d", v)
	}
	if v := mask.At(2, 0)[0]; v != 255 {
		t.Fatalf("expected 255 to stay 255, got %d", v)
	}
}

func TestPremultiplyAlphaScalesColor(t *testing.T) {
	im, err := FromBytes(1, 1, RGBA8, []byte{200, 100, 50, 128})
	if err != nil {
		t.Fatal(err)
	}
	defer im.Close()
	im.PremultiplyAlpha()

	px := im.At(0, 0)
	if px[3] != 128 {
		t.Fatalf("alpha channel must be left untouched, got %d", px[3])
	}
	if px[0] != byte(200*128/255) || px[1] != byte(100*128/255) || px[2] != byte(50*128/255) {
		t.Fatalf("unexpected premultiplied color: %v", px)
	}
}

func TestPremultiplyAlphaNoopWithoutAlpha(t *testing.T) {
	im := New(1, 1, RGB8)
	defer im.Close()
	im.Set(0, 0, []byte{10, 20, 30})
	im.PremultiplyAlpha()
	px := im.At(0, 0)
	if px[0] != 10 || px[1] != 20 || px[2] != 30 {
		t.Fatalf("RGB8 has no alpha channel, pixels must be untouched, got %v", px)
	}
}

func TestHashStableAndSensitiveToContent(t *testing.T) {
	a, _ := FromBytes(2, 2, RGBA8, solidRGBA(2, 2, 1, 2, 3, 255))
	b, _ := FromBytes(2, 2, RGBA8, solidRGBA(2, 2, 1, 2, 3, 255))
	c, _ := FromBytes(2, 2, RGBA8, solidRGBA(2, 2, 9, 9, 9, 255))
	defer a.Close()
	defer b.Close()
	defer c.Close()

	if a.Hash() != b.Hash() {
		t.Fatal("identical pixel buffers must hash equal")
	}
	if a.Hash() == c.Hash() {
		t.Fatal("different pixel buffers must hash differently")
	}
}

func TestDepthChannels(t *testing.T) {
	cases := map[PixelDepth]int{L8: 1, LA8: 2, RGB8: 3, RGBA8: 4}
	for depth, want := range cases {
		if got := depth.Channels(); got != want {
			t.Fatalf("%v: expected %d channels, got %d", depth, want, got)
		}
	}
}

func TestValidateRejectsOversizedImage(t *testing.T) {
	im := New(20, 20, RGBA8)
	defer im.Close()
	if err := Validate(im, 1, 16); err == nil {
		t.Fatal("expected an error for an image larger than maxDim")
	}
	if err := Validate(im, 1, 64); err != nil {
		t.Fatalf("expected no error within bounds, got %v", err)
	}
}
