package spritekit

import (
	"fmt"
	"image"
)

// ImageAsset is one indexed image file shared by any raster faces naming it.
type ImageAsset struct {
	Filename string
	Pixels   *image.Paletted // nil until loaded
	// BoundPalette is the palette of the first raster face using the image.
	BoundPalette *Palette
}

// Resolved reports whether pixel data is present.
func (ia *ImageAsset) Resolved() bool {
	return ia != nil && ia.Pixels != nil
}

// Size returns the pixel dimensions, zero when unresolved.
func (ia *ImageAsset) Size() Size {
	if !ia.Resolved() {
		return Size{}
	}
	b := ia.Pixels.Bounds()
	return Size{Width: b.Dx(), Height: b.Dy()}
}

// RasterFace is one image+palette pair of a raster.
type RasterFace struct {
	Filename string
	Palette  *Palette
	Image    *ImageAsset
}

// Raster is a renderable unit selected by SetImage.
type Raster struct {
	Name  string
	Front RasterFace
	// Back is only used when the sprite has back-facing rasters. Exactly one
	// of Back.Filename and BackSize is set in that case.
	Back     RasterFace
	BackSize *Size

	listIndex int
}

// Index returns the raster's position in its sprite.
func (r *Raster) Index() int {
	return r.listIndex
}

// Face returns the face to draw. The back face is used only when requested
// and actually has an image.
func (r *Raster) Face(back bool) *RasterFace {
	if back && r.Back.Filename != "" {
		return &r.Back
	}
	return &r.Front
}

func (r *Raster) check(hasBack bool) error {
	if r.Front.Filename == "" {
		return fmt.Errorf("raster %q has no front image", r.Name)
	}
	if r.Front.Palette == nil {
		return fmt.Errorf("raster %q has no front palette", r.Name)
	}
	if !hasBack {
		if r.Back.Filename != "" || r.BackSize != nil {
			return fmt.Errorf("raster %q has back data on a sprite without back faces", r.Name)
		}
		return nil
	}
	if (r.Back.Filename != "") == (r.BackSize != nil) {
		return fmt.Errorf("raster %q needs exactly one of back image or back size", r.Name)
	}
	if r.Back.Palette == nil {
		return fmt.Errorf("raster %q has no back palette", r.Name)
	}
	return nil
}
