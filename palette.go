package spritekit

import (
	"image"
	"image/color"

	xdraw "golang.org/x/image/draw"
)

// Palette is a named color table referenced by rasters and SetPalette.
type Palette struct {
	Filename  string
	FrontOnly bool // no back-facing variant
	// Disabled palettes stay in the sprite so bindings are not orphaned, but
	// are excluded from the live list SetPalette indexes into.
	Disabled bool
	Colors   color.Palette // nil until an asset is applied

	listIndex int
}

// NewPalette returns an unresolved palette for filename.
func NewPalette(filename string) *Palette {
	return &Palette{Filename: filename, listIndex: -1}
}

// Resolved reports whether the color table has been loaded.
func (p *Palette) Resolved() bool {
	return p != nil && len(p.Colors) > 0
}

// Index returns the live index used by SetPalette, or -1 when disabled.
func (p *Palette) Index() int {
	return p.listIndex
}

func (p *Palette) String() string {
	return p.Filename
}

// fallbackColors stands in for a palette that failed to load: a transparent
// index 0 followed by a gray ramp.
var fallbackColors = func() color.Palette {
	pal := make(color.Palette, 256)
	pal[0] = color.NRGBA{}
	for i := 1; i < len(pal); i++ {
		v := uint8(i)
		pal[i] = color.NRGBA{R: v, G: v, B: v, A: 255}
	}
	return pal
}()

// colorsFor returns a full 256-entry table for p, padding short tables with
// transparent entries so every 8-bit index resolves.
func colorsFor(p *Palette) color.Palette {
	if !p.Resolved() {
		return fallbackColors
	}
	if len(p.Colors) >= 256 {
		return p.Colors
	}
	pal := make(color.Palette, 256)
	copy(pal, p.Colors)
	for i := len(p.Colors); i < len(pal); i++ {
		pal[i] = color.NRGBA{}
	}
	return pal
}

// Colorize renders an indexed image through pal. The source pixels are shared,
// not copied.
func Colorize(img *image.Paletted, pal *Palette) *image.NRGBA {
	src := &image.Paletted{
		Pix:     img.Pix,
		Stride:  img.Stride,
		Rect:    img.Rect,
		Palette: colorsFor(pal),
	}
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	xdraw.Copy(dst, image.Point{}, src, b, xdraw.Src, nil)
	return dst
}
