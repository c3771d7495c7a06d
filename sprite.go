package spritekit

import (
	"errors"
	"fmt"
)

// TextureState tracks whether a sprite's GPU textures exist.
type TextureState uint8

const (
	TexturesUnloaded TextureState = iota
	TexturesLoaded
)

// Sprite is the aggregate root of one animated sprite: palettes, rasters,
// animations and the atlas built from their images. It is not safe for
// concurrent use; background asset loading hands results back through
// ApplyAssets.
type Sprite struct {
	Name string
	// Source is the directory assets are resolved against.
	Source string
	// MaxComponents caps components per animation; 0 means unlimited.
	MaxComponents int
	// Variations names alternative palette sets; NumVariations counts them
	// even when unnamed.
	Variations    []string
	NumVariations int
	HasBack       bool
	// Packing controls MakeAtlas. NewSprite starts from DefaultPackOptions.
	Packing PackOptions

	Palettes   []*Palette
	Rasters    []*Raster
	Animations []*Animation

	images     []*ImageAsset
	imageIndex map[string]int

	layout   *AtlasLayout
	textures *TextureSet
	state    TextureState

	lastQuads []placedQuad
	bounds    Rect
}

// NewSprite returns an empty sprite.
func NewSprite(name string) *Sprite {
	return &Sprite{Name: name, Packing: DefaultPackOptions(), imageIndex: make(map[string]int)}
}

// --- palettes ---

// AddPalette appends a palette and returns it.
func (s *Sprite) AddPalette(filename string) *Palette {
	p := NewPalette(filename)
	s.Palettes = append(s.Palettes, p)
	s.RecalculateIndices()
	return p
}

// PaletteByFilename returns the first palette with filename, or nil.
func (s *Sprite) PaletteByFilename(filename string) *Palette {
	for _, p := range s.Palettes {
		if p.Filename == filename {
			return p
		}
	}
	return nil
}

// LivePalettes returns the non-disabled palettes in SetPalette index order.
func (s *Sprite) LivePalettes() []*Palette {
	live := make([]*Palette, 0, len(s.Palettes))
	for _, p := range s.Palettes {
		if !p.Disabled {
			live = append(live, p)
		}
	}
	return live
}

// LivePalette returns the palette a SetPalette(index) selects, or nil.
func (s *Sprite) LivePalette(index int) *Palette {
	live := s.LivePalettes()
	if index < 0 || index >= len(live) {
		return nil
	}
	return live[index]
}

// SetPaletteDisabled toggles whether p is in the live list. Indices of later
// palettes shift, so sequences selecting them by index are rechecked by Bind.
func (s *Sprite) SetPaletteDisabled(p *Palette, disabled bool) {
	p.Disabled = disabled
	s.RecalculateIndices()
	s.invalidateTextures()
}

// --- rasters ---

// AddRaster appends a raster with a front face and returns it.
func (s *Sprite) AddRaster(name, filename string, pal *Palette) *Raster {
	r := &Raster{Name: name, Front: RasterFace{Filename: filename, Palette: pal}}
	s.Rasters = append(s.Rasters, r)
	s.RecalculateIndices()
	s.syncImages()
	return r
}

// RemoveRaster deletes the raster at index. Sequences still selecting it
// become dangling and are reported by Bind.
func (s *Sprite) RemoveRaster(index int) error {
	if index < 0 || index >= len(s.Rasters) {
		return fmt.Errorf("spritekit: raster index %d out of range [0, %d)", index, len(s.Rasters))
	}
	s.Rasters = append(s.Rasters[:index], s.Rasters[index+1:]...)
	s.RecalculateIndices()
	s.syncImages()
	return nil
}

// Images returns the sprite's image assets in first-reference order.
func (s *Sprite) Images() []*ImageAsset {
	return s.images
}

// Image returns the asset for filename, or nil.
func (s *Sprite) Image(filename string) *ImageAsset {
	i, ok := s.imageIndex[filename]
	if !ok {
		return nil
	}
	return s.images[i]
}

// AddImage registers an image file that no raster uses yet. It is packed into
// the atlas and drawn dimmed until a raster references it.
func (s *Sprite) AddImage(filename string) *ImageAsset {
	if ia := s.Image(filename); ia != nil {
		return ia
	}
	ia := &ImageAsset{Filename: filename}
	s.imageIndex[filename] = len(s.images)
	s.images = append(s.images, ia)
	s.invalidateLayout()
	return ia
}

// syncImages binds every raster face to its image asset, creating
// placeholders for new filenames, and rebinds image palettes.
func (s *Sprite) syncImages() {
	if s.imageIndex == nil {
		s.imageIndex = make(map[string]int)
	}
	for _, ia := range s.images {
		ia.BoundPalette = nil
	}
	bind := func(f *RasterFace) {
		if f.Filename == "" {
			f.Image = nil
			return
		}
		ia := s.AddImage(f.Filename)
		f.Image = ia
		if ia.BoundPalette == nil {
			ia.BoundPalette = f.Palette
		}
	}
	for _, r := range s.Rasters {
		bind(&r.Front)
		if s.HasBack {
			bind(&r.Back)
		}
	}
	s.invalidateLayout()
}

// InUse reports whether any raster face draws ia.
func (s *Sprite) InUse(ia *ImageAsset) bool {
	for _, r := range s.Rasters {
		if r.Front.Image == ia || (s.HasBack && r.Back.Image == ia) {
			return true
		}
	}
	return false
}

// --- animations ---

// AddAnimation appends an empty animation and returns it.
func (s *Sprite) AddAnimation(name string) *Animation {
	a := &Animation{Name: name, maxComponents: s.MaxComponents}
	s.Animations = append(s.Animations, a)
	return a
}

// RemoveAnimation deletes the animation at index.
func (s *Sprite) RemoveAnimation(index int) error {
	if index < 0 || index >= len(s.Animations) {
		return fmt.Errorf("spritekit: animation index %d out of range [0, %d)", index, len(s.Animations))
	}
	s.Animations = append(s.Animations[:index], s.Animations[index+1:]...)
	return nil
}

// Animation returns the animation at index.
func (s *Sprite) Animation(index int) (*Animation, error) {
	if index < 0 || index >= len(s.Animations) {
		return nil, fmt.Errorf("spritekit: animation index %d out of range [0, %d)", index, len(s.Animations))
	}
	return s.Animations[index], nil
}

// ResetAnimation rewinds every component of the animation at index.
func (s *Sprite) ResetAnimation(index int) error {
	a, err := s.Animation(index)
	if err != nil {
		return err
	}
	return a.Reset()
}

// UpdateAnimation advances the animation at index by one tick.
func (s *Sprite) UpdateAnimation(index int) error {
	a, err := s.Animation(index)
	if err != nil {
		return err
	}
	return a.Tick()
}

// RecalculateIndices refreshes cached list positions after edits.
func (s *Sprite) RecalculateIndices() {
	for i, r := range s.Rasters {
		r.listIndex = i
	}
	live := 0
	for _, p := range s.Palettes {
		if p.Disabled {
			p.listIndex = -1
			continue
		}
		p.listIndex = live
		live++
	}
	for _, a := range s.Animations {
		a.maxComponents = s.MaxComponents
	}
}

// AssignDefaultNames names every unnamed animation and component after its
// hex index (Anim_%02X, Comp_%02X). Names already set, such as those read
// from a sprite document, are kept; clear them first to renumber everything.
func (s *Sprite) AssignDefaultNames() {
	for i, a := range s.Animations {
		if a.Name == "" {
			a.Name = fmt.Sprintf("Anim_%02X", i)
		}
		for j, c := range a.Components {
			if c.Name == "" {
				c.Name = fmt.Sprintf("Comp_%02X", j)
			}
		}
	}
}

// --- editor conversion ---

// PrepareForEditor names everything, refreshes indices and builds keyframes
// and trajectories for every component.
func (s *Sprite) PrepareForEditor() error {
	s.AssignDefaultNames()
	s.RecalculateIndices()
	var errs []error
	for i, a := range s.Animations {
		for j, c := range a.Components {
			if err := c.Generate(); err != nil {
				errs = append(errs, fmt.Errorf("animation %s component %s (%02X/%02X): %w", a.Name, c.Name, i, j, err))
			}
		}
	}
	return errors.Join(errs...)
}

// ConvertToKeyframes replaces each component's keyframes with ones decoded
// from its sequence.
func (s *Sprite) ConvertToKeyframes() error {
	return s.eachComponent(func(c *Component) error { return c.ConvertToKeyframes() })
}

// ConvertToCommands re-encodes each component's keyframes into its sequence.
func (s *Sprite) ConvertToCommands() error {
	return s.eachComponent(func(c *Component) error { return c.ConvertToCommands() })
}

func (s *Sprite) eachComponent(fn func(*Component) error) error {
	var errs []error
	for i, a := range s.Animations {
		for j, c := range a.Components {
			if err := fn(c); err != nil {
				errs = append(errs, fmt.Errorf("animation %02X component %02X: %w", i, j, err))
			}
		}
	}
	return errors.Join(errs...)
}

// --- binding ---

// Bind checks structure and cross-references: raster faces, bytecode of every
// component, and that SetImage, SetPalette and component parents point at
// existing entries. All problems are joined into one error; errors.Is matches
// ErrMalformedBytecode and ErrDanglingReference through it.
func (s *Sprite) Bind() error {
	s.RecalculateIndices()
	s.syncImages()

	var errs []error
	for _, r := range s.Rasters {
		if err := r.check(s.HasBack); err != nil {
			errs = append(errs, err)
		}
		for _, f := range []*RasterFace{&r.Front, &r.Back} {
			if f.Palette != nil && s.paletteIndex(f.Palette) < 0 {
				errs = append(errs, fmt.Errorf("raster %q uses palette %q not in sprite", r.Name, f.Palette.Filename))
			}
		}
	}

	live := len(s.LivePalettes())
	for ai, a := range s.Animations {
		if s.MaxComponents > 0 && len(a.Components) > s.MaxComponents {
			errs = append(errs, fmt.Errorf("animation %02X has %d components, limit %d", ai, len(a.Components), s.MaxComponents))
		}
		for ci, c := range a.Components {
			prog, err := DecodeSequence(c.Sequence)
			if err != nil {
				errs = append(errs, fmt.Errorf("animation %02X component %02X: %w", ai, ci, err))
				continue
			}
			for _, ins := range prog {
				limit := -1
				index := ins.Value
				switch ins.Op {
				case OpSetImage:
					if index != NoImage && index >= len(s.Rasters) {
						limit = len(s.Rasters)
					}
				case OpSetPalette:
					if index >= live {
						limit = live
					}
				case OpSetParent:
					if p := ins.Parent(); p.Kind == ParentComponent && p.Index >= len(a.Components) {
						index, limit = p.Index, len(a.Components)
					}
				}
				if limit >= 0 {
					errs = append(errs, &DanglingReferenceError{
						Animation: ai,
						Component: ci,
						Offset:    ins.Offset,
						Op:        ins.Op,
						Index:     index,
						Limit:     limit,
					})
				}
			}
		}
	}
	if len(errs) == 0 {
		debugf("bind: sprite %q ok (%d rasters, %d palettes, %d animations)", s.Name, len(s.Rasters), live, len(s.Animations))
		return nil
	}
	return fmt.Errorf("spritekit: sprite %q: %w", s.Name, errors.Join(errs...))
}

func (s *Sprite) paletteIndex(p *Palette) int {
	for i, q := range s.Palettes {
		if q == p {
			return i
		}
	}
	return -1
}

// --- atlas ---

// MakeAtlas packs every resolved image with s.Packing. Unresolved images are
// left out until their pixels arrive.
func (s *Sprite) MakeAtlas() *AtlasLayout {
	imgs := make([]AtlasImage, 0, len(s.images))
	for _, ia := range s.images {
		if !ia.Resolved() {
			continue
		}
		sz := ia.Size()
		imgs = append(imgs, AtlasImage{Name: ia.Filename, Width: sz.Width, Height: sz.Height})
	}
	s.layout = PackAtlas(imgs, s.Packing)
	return s.layout
}

// Layout returns the current atlas, packing it if needed.
func (s *Sprite) Layout() *AtlasLayout {
	if s.layout == nil {
		s.MakeAtlas()
	}
	return s.layout
}

// PickImage returns the image under the centered atlas point (x, y).
func (s *Sprite) PickImage(x, y float64) *ImageAsset {
	e, ok := s.Layout().Pick(x, y)
	if !ok {
		return nil
	}
	return s.Image(e.Name)
}

func (s *Sprite) invalidateLayout() {
	s.layout = nil
	s.invalidateTextures()
}

// --- texture lifecycle ---

// TextureState reports whether Activate has built GPU textures.
func (s *Sprite) TextureState() TextureState {
	return s.state
}

// Textures returns the active texture set, or nil when unloaded.
func (s *Sprite) Textures() *TextureSet {
	return s.textures
}

// Activate builds GPU textures for the current atlas. It is a no-op when
// textures are already loaded. Must be called on the render goroutine.
func (s *Sprite) Activate() *TextureSet {
	if s.state == TexturesLoaded {
		return s.textures
	}
	s.textures = NewTextureSet(s.Layout(), s.images, s.InUse)
	s.state = TexturesLoaded
	debugf("textures: sprite %q loaded %dx%d atlas", s.Name, s.layout.Width, s.layout.Height)
	return s.textures
}

// Release disposes GPU textures. The sprite stays usable and can be
// activated again.
func (s *Sprite) Release() {
	if s.textures != nil {
		s.textures.Dispose()
		debugf("textures: sprite %q released", s.Name)
	}
	s.textures = nil
	s.state = TexturesUnloaded
}

// invalidateTextures drops textures built from stale data. A loaded sprite
// is reactivated lazily by the next Activate.
func (s *Sprite) invalidateTextures() {
	if s.state == TexturesLoaded {
		s.Release()
	}
}
