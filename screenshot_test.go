package spritekit

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func TestSanitizeLabel(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"idle", "idle"},
		{"Walk Cycle", "Walk_Cycle"},
		{"a/b\\c", "a_b_c"},
		{"v1.2-final", "v1.2-final"},
		{"  ", "unlabeled"},
		{"", "unlabeled"},
	}
	for _, tt := range tests {
		if got := sanitizeLabel(tt.in); got != tt.want {
			t.Errorf("sanitizeLabel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestUnpremultiply(t *testing.T) {
	pixels := []byte{
		255, 0, 0, 255, // opaque red
		64, 32, 0, 128, // half alpha
		0, 0, 0, 0, // clear
	}
	img := unpremultiply(pixels, 3, 1)
	if got := img.NRGBAAt(0, 0); got != (color.NRGBA{R: 255, A: 255}) {
		t.Errorf("opaque = %v", got)
	}
	if got := img.NRGBAAt(1, 0); got != (color.NRGBA{R: 127, G: 63, A: 128}) {
		t.Errorf("half alpha = %v", got)
	}
	if got := img.NRGBAAt(2, 0); got.A != 0 {
		t.Errorf("clear = %v", got)
	}
}

func TestSaveAtlas(t *testing.T) {
	s := newTestSprite(t, RawSequence{0x1000, 0x0001})
	s.Image("idle.png").Pixels = testPixels(8, 8)
	path := filepath.Join(t.TempDir(), "atlas.png")
	if err := s.SaveAtlas(path, nil); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	l := s.Layout()
	if img.Bounds() != image.Rect(0, 0, l.Width, l.Height) {
		t.Errorf("atlas bounds = %v, layout %dx%d", img.Bounds(), l.Width, l.Height)
	}
}

func TestSavePNGBadPath(t *testing.T) {
	err := SavePNG(filepath.Join(t.TempDir(), "missing", "x.png"), image.NewNRGBA(image.Rect(0, 0, 1, 1)))
	if err == nil {
		t.Error("SavePNG into a missing directory succeeded")
	}
}
