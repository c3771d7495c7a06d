package spritekit

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
)

// TextureRegion describes a sub-rectangle within an atlas page, in pixels
// from the page's top-left corner.
type TextureRegion struct {
	Page   uint16 // atlas page index
	X, Y   uint16 // top-left corner of the sub-image rect within the page
	Width  uint16
	Height uint16
}

// PackOptions controls AtlasPacker. The zero value is not useful; start from
// DefaultPackOptions.
type PackOptions struct {
	// Padding is the gap in pixels around every tile and the atlas border.
	Padding int
	// SelectPadding grows each tile when picking.
	SelectPadding float64
	// Alignment rounds the row width up to a multiple of this value.
	Alignment int
	// AspectRatio is the target height/width ratio of the atlas.
	AspectRatio float64
}

// DefaultPackOptions returns the padding and alignment the sprite editor uses.
func DefaultPackOptions() PackOptions {
	return PackOptions{
		Padding:       8,
		SelectPadding: 1,
		Alignment:     8,
		AspectRatio:   1,
	}
}

// AtlasImage is one packing input.
type AtlasImage struct {
	Name   string
	Width  int
	Height int
}

// AtlasEntry is one placed image.
type AtlasEntry struct {
	Name   string
	X, Y   int  // top-left pixel within the atlas surface
	Bounds Rect // same rectangle in centered atlas coordinates
}

// AtlasLayout is the result of PackAtlas. Entries keep input order.
type AtlasLayout struct {
	Width, Height int
	Entries       []AtlasEntry
	// Skipped lists zero-sized inputs that were not placed.
	Skipped []string

	selectPadding float64
	index         map[string]int
}

// PackAtlas lays images out in rows whose width approximates a square of the
// total padded area. Zero-sized images are logged and skipped.
func PackAtlas(images []AtlasImage, opts PackOptions) *AtlasLayout {
	pad := opts.Padding
	layout := &AtlasLayout{
		selectPadding: opts.SelectPadding,
		index:         make(map[string]int, len(images)),
	}

	valid := make([]AtlasImage, 0, len(images))
	totalArea := 0
	widest := 0
	for _, img := range images {
		if img.Width <= 0 || img.Height <= 0 {
			warnf("atlas: %s %q is %dx%d, not placed", ErrPackingDegenerate, img.Name, img.Width, img.Height)
			layout.Skipped = append(layout.Skipped, img.Name)
			continue
		}
		valid = append(valid, img)
		totalArea += (img.Width + pad) * (img.Height + pad)
		widest = max(widest, img.Width)
	}
	if len(valid) == 0 {
		return layout
	}

	aspect := opts.AspectRatio
	if aspect <= 0 {
		aspect = 1
	}
	rowWidth := int(math.Ceil(math.Sqrt(float64(totalArea) / aspect)))
	rowWidth = max(rowWidth, widest+2*pad)
	if a := opts.Alignment; a > 1 {
		rowWidth = (rowWidth + a - 1) / a * a
	}

	x, y := pad, pad
	tallest := 0
	for _, img := range valid {
		if x > pad && x+img.Width+pad > rowWidth {
			y += tallest + pad
			x = pad
			tallest = 0
		}
		layout.index[img.Name] = len(layout.Entries)
		layout.Entries = append(layout.Entries, AtlasEntry{Name: img.Name, X: x, Y: y, Bounds: Rect{
			Width:  float64(img.Width),
			Height: float64(img.Height),
		}})
		x += img.Width + pad
		tallest = max(tallest, img.Height)
	}

	layout.Width = rowWidth
	layout.Height = y + tallest + pad

	halfW := float64(layout.Width) / 2
	halfH := float64(layout.Height) / 2
	for i := range layout.Entries {
		e := &layout.Entries[i]
		e.Bounds.X = float64(e.X) - halfW
		e.Bounds.Y = float64(e.Y) - halfH
	}
	debugf("atlas: packed %d images into %dx%d", len(layout.Entries), layout.Width, layout.Height)
	return layout
}

// Lookup returns the entry placed for name.
func (l *AtlasLayout) Lookup(name string) (AtlasEntry, bool) {
	i, ok := l.index[name]
	if !ok {
		return AtlasEntry{}, false
	}
	return l.Entries[i], true
}

// Region returns the pixel region of name on page 0.
func (l *AtlasLayout) Region(name string) (TextureRegion, bool) {
	e, ok := l.Lookup(name)
	if !ok {
		return TextureRegion{}, false
	}
	return TextureRegion{
		X:      uint16(e.X),
		Y:      uint16(e.Y),
		Width:  uint16(e.Bounds.Width),
		Height: uint16(e.Bounds.Height),
	}, true
}

// Pick returns the first entry, in placement order, whose selection rectangle
// contains the centered atlas point (x, y).
func (l *AtlasLayout) Pick(x, y float64) (AtlasEntry, bool) {
	for _, e := range l.Entries {
		if e.Bounds.Expand(l.selectPadding).Contains(x, y) {
			return e, true
		}
	}
	return AtlasEntry{}, false
}

// Ray is a pick ray in atlas space; the atlas lies in the z = 0 plane.
type Ray struct {
	Origin    [3]float64
	Direction [3]float64
}

// PickRay intersects r with the atlas plane and picks at the hit point.
func (l *AtlasLayout) PickRay(r Ray) (AtlasEntry, bool) {
	dz := r.Direction[2]
	if dz == 0 {
		return AtlasEntry{}, false
	}
	t := -r.Origin[2] / dz
	if t < 0 {
		return AtlasEntry{}, false
	}
	return l.Pick(r.Origin[0]+t*r.Direction[0], r.Origin[1]+t*r.Direction[1])
}

// --- TexturePacker JSON ---

type jsonRect struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

type jsonSize struct {
	W int `json:"w"`
	H int `json:"h"`
}

type jsonFrame struct {
	Frame            jsonRect `json:"frame"`
	Rotated          bool     `json:"rotated"`
	Trimmed          bool     `json:"trimmed"`
	SpriteSourceSize jsonRect `json:"spriteSourceSize"`
	SourceSize       jsonSize `json:"sourceSize"`
}

type jsonMeta struct {
	Image string   `json:"image"`
	Size  jsonSize `json:"size"`
}

type jsonTexturePage struct {
	Image  string               `json:"image"`
	Frames map[string]jsonFrame `json:"frames"`
}

// MarshalTexturePacker writes the layout in TexturePacker hash format so other
// tools can consume the atlas image.
func (l *AtlasLayout) MarshalTexturePacker(imageName string) ([]byte, error) {
	doc := struct {
		Frames map[string]jsonFrame `json:"frames"`
		Meta   jsonMeta             `json:"meta"`
	}{
		Frames: make(map[string]jsonFrame, len(l.Entries)),
		Meta:   jsonMeta{Image: imageName, Size: jsonSize{W: l.Width, H: l.Height}},
	}
	for _, e := range l.Entries {
		w, h := int(e.Bounds.Width), int(e.Bounds.Height)
		doc.Frames[e.Name] = jsonFrame{
			Frame:            jsonRect{X: e.X, Y: e.Y, W: w, H: h},
			SpriteSourceSize: jsonRect{W: w, H: h},
			SourceSize:       jsonSize{W: w, H: h},
		}
	}
	return json.MarshalIndent(doc, "", "  ")
}

// LoadRegions parses TexturePacker JSON into named regions. Supports both the
// hash format (single "frames" object) and the array format ("textures" array
// with per-page frame lists).
func LoadRegions(jsonData []byte) (map[string]TextureRegion, error) {
	var top struct {
		Frames   json.RawMessage `json:"frames"`
		Textures json.RawMessage `json:"textures"`
	}
	if err := json.Unmarshal(jsonData, &top); err != nil {
		return nil, fmt.Errorf("spritekit: failed to parse atlas JSON: %w", err)
	}

	regions := make(map[string]TextureRegion)
	switch {
	case top.Textures != nil:
		var textures []jsonTexturePage
		if err := json.Unmarshal(top.Textures, &textures); err != nil {
			return nil, fmt.Errorf("spritekit: failed to parse atlas textures array: %w", err)
		}
		for i, tex := range textures {
			for name, f := range tex.Frames {
				regions[name] = frameToRegion(f, uint16(i))
			}
		}
	case top.Frames != nil:
		var frames map[string]jsonFrame
		if err := json.Unmarshal(top.Frames, &frames); err != nil {
			return nil, fmt.Errorf("spritekit: failed to parse atlas frames: %w", err)
		}
		for name, f := range frames {
			regions[name] = frameToRegion(f, 0)
		}
	default:
		return nil, fmt.Errorf("spritekit: atlas JSON has neither \"frames\" nor \"textures\" key")
	}
	return regions, nil
}

func frameToRegion(f jsonFrame, page uint16) TextureRegion {
	return TextureRegion{
		Page:   page,
		X:      uint16(f.Frame.X),
		Y:      uint16(f.Frame.Y),
		Width:  uint16(f.Frame.W),
		Height: uint16(f.Frame.H),
	}
}

// SortedNames returns the placed names in lexical order.
func (l *AtlasLayout) SortedNames() []string {
	names := make([]string, 0, len(l.Entries))
	for _, e := range l.Entries {
		names = append(names, e.Name)
	}
	sort.Strings(names)
	return names
}
