package spritekit

import (
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	xdraw "golang.org/x/image/draw"
)

// unusedAlpha is the opacity of atlas images no raster references.
const unusedAlpha = 0x66

// ComposeAtlas draws every resolved image into a new RGBA surface at its
// atlas position. Each image is colored through pal, or through its bound
// palette when pal is nil. Images for which inUse returns false are drawn
// translucent. inUse may be nil.
func ComposeAtlas(layout *AtlasLayout, images []*ImageAsset, pal *Palette, inUse func(*ImageAsset) bool) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, layout.Width, layout.Height))
	dim := image.NewUniform(color.Alpha{A: unusedAlpha})
	for _, ia := range images {
		if !ia.Resolved() {
			continue
		}
		e, ok := layout.Lookup(ia.Filename)
		if !ok {
			continue
		}
		p := pal
		if p == nil {
			p = ia.BoundPalette
		}
		src := Colorize(ia.Pixels, p)
		at := image.Pt(e.X, e.Y)
		r := image.Rectangle{Min: at, Max: at.Add(src.Bounds().Size())}
		if inUse == nil || inUse(ia) {
			xdraw.Copy(dst, at, src, src.Bounds(), xdraw.Over, nil)
		} else {
			xdraw.DrawMask(dst, r, src, image.Point{}, dim, image.Point{}, xdraw.Over)
		}
	}
	return dst
}

// TextureSet owns the GPU atlas pages of one activated sprite: one page per
// palette it has been drawn with, built on first use.
type TextureSet struct {
	layout *AtlasLayout
	images []*ImageAsset
	inUse  func(*ImageAsset) bool

	bound *ebiten.Image
	pages map[*Palette]*ebiten.Image
}

// NewTextureSet returns a texture set over layout. No GPU work happens until
// a page is requested.
func NewTextureSet(layout *AtlasLayout, images []*ImageAsset, inUse func(*ImageAsset) bool) *TextureSet {
	return &TextureSet{
		layout: layout,
		images: images,
		inUse:  inUse,
		pages:  make(map[*Palette]*ebiten.Image),
	}
}

// Layout returns the atlas the pages are built from.
func (t *TextureSet) Layout() *AtlasLayout {
	return t.layout
}

// Page returns the atlas page colored through pal. A nil pal gives the page
// where every image uses its bound palette. Returns nil for an empty atlas.
func (t *TextureSet) Page(pal *Palette) *ebiten.Image {
	if t.layout.Width == 0 || t.layout.Height == 0 {
		return nil
	}
	if pal == nil {
		if t.bound == nil {
			t.bound = ebiten.NewImageFromImage(ComposeAtlas(t.layout, t.images, nil, t.inUse))
		}
		return t.bound
	}
	if page, ok := t.pages[pal]; ok {
		return page
	}
	page := ebiten.NewImageFromImage(ComposeAtlas(t.layout, t.images, pal, t.inUse))
	t.pages[pal] = page
	debugf("textures: built page for palette %q", pal.Filename)
	return page
}

// Dispose releases every page. The set must not be used afterwards.
func (t *TextureSet) Dispose() {
	if t.bound != nil {
		t.bound.Deallocate()
		t.bound = nil
	}
	for pal, page := range t.pages {
		page.Deallocate()
		delete(t.pages, pal)
	}
}
