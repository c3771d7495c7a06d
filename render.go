package spritekit

import (
	"fmt"
	"image"
	"sort"

	"github.com/hajimehoshi/ebiten/v2"
)

// Renderer draws one textured quad. region is a rectangle of the sprite's
// atlas, pal the palette it is drawn through, and transform maps the
// region's local pixel space (origin at its top-left) to the target.
type Renderer interface {
	DrawQuad(region TextureRegion, pal *Palette, transform [6]float64)
}

// RenderOptions adjusts one Render call. The zero value draws front faces
// with each component's own palette at the origin.
type RenderOptions struct {
	// Back draws back faces where rasters have them.
	Back bool
	// Palette overrides every palette choice when non-nil.
	Palette *Palette
	// View is applied after each component's own transform; the zero value
	// means identity.
	View [6]float64
}

// placedQuad records one drawn component for picking.
type placedQuad struct {
	component int
	transform [6]float64
	w, h      float64
}

type drawItem struct {
	component int
	zIndex    int
	depth     int
	region    TextureRegion
	pal       *Palette
	transform [6]float64
	w, h      float64
}

// Render draws the current pose of every component of the animation at
// index. Components are sorted by ZIndex, then by pose depth, then by list
// order. Components without an image, or whose image is not yet in the
// atlas, are skipped but still act as parents.
func (s *Sprite) Render(r Renderer, index int, opts RenderOptions) error {
	anim, err := s.Animation(index)
	if err != nil {
		return err
	}
	layout := s.Layout()
	view := opts.View
	if view == ([6]float64{}) {
		view = identityTransform
	}

	poses := anim.Poses()
	nodes := componentNodes(poses)

	items := make([]drawItem, 0, len(poses))
	for i, p := range poses {
		if p.Image == NoImage {
			continue
		}
		if p.Image < 0 || p.Image >= len(s.Rasters) {
			debugf("render: component %02X selects raster %d of %d", i, p.Image, len(s.Rasters))
			continue
		}
		face := s.Rasters[p.Image].Face(opts.Back && s.HasBack)
		if face.Image == nil {
			continue
		}
		region, ok := layout.Region(face.Image.Filename)
		if !ok {
			continue
		}
		pal := opts.Palette
		if pal == nil {
			pal = s.LivePalette(p.Palette)
		}
		if pal == nil {
			pal = face.Palette
		}
		w, h := float64(region.Width), float64(region.Height)
		items = append(items, drawItem{
			component: i,
			zIndex:    anim.Components[i].ZIndex,
			depth:     p.Position.Z,
			region:    region,
			pal:       pal,
			transform: multiplyAffine(view, multiplyAffine(nodes[i], quadAnchor(w, h))),
			w:         w,
			h:         h,
		})
	}
	sort.SliceStable(items, func(a, b int) bool {
		if items[a].zIndex != items[b].zIndex {
			return items[a].zIndex < items[b].zIndex
		}
		return items[a].depth < items[b].depth
	})

	s.lastQuads = s.lastQuads[:0]
	s.bounds = Rect{}
	for _, it := range items {
		r.DrawQuad(it.region, it.pal, it.transform)
		s.lastQuads = append(s.lastQuads, placedQuad{component: it.component, transform: it.transform, w: it.w, h: it.h})
		s.bounds = s.bounds.union(transformRect(it.transform, it.w, it.h))
	}
	return nil
}

// componentNodes resolves each pose's node transform through its parent
// chain. Links to missing components and cycles fall back to the root.
func componentNodes(poses []Pose) [][6]float64 {
	const (
		unvisited = iota
		visiting
		done
	)
	nodes := make([][6]float64, len(poses))
	state := make([]uint8, len(poses))
	var resolve func(i int) [6]float64
	resolve = func(i int) [6]float64 {
		switch state[i] {
		case done:
			return nodes[i]
		case visiting:
			debugf("render: parent cycle through component %02X", i)
			return identityTransform
		}
		state[i] = visiting
		parent := identityTransform
		p := poses[i]
		if p.HasParent && p.Parent.Kind == ParentComponent {
			if j := p.Parent.Index; j >= 0 && j < len(poses) && j != i {
				parent = resolve(j)
			}
		}
		nodes[i] = multiplyAffine(parent, poseTransform(p))
		state[i] = done
		return nodes[i]
	}
	for i := range poses {
		resolve(i)
	}
	return nodes
}

// Bounds returns the screen-space bounds of everything the last Render drew.
func (s *Sprite) Bounds() Rect {
	return s.bounds
}

// PickComponent returns the topmost component drawn by the last Render at
// target point (x, y).
func (s *Sprite) PickComponent(x, y float64) (int, bool) {
	for i := len(s.lastQuads) - 1; i >= 0; i-- {
		q := s.lastQuads[i]
		inv, ok := invertAffine(q.transform)
		if !ok {
			continue
		}
		lx, ly := transformPoint(inv, x, y)
		if lx >= 0 && lx <= q.w && ly >= 0 && ly <= q.h {
			return q.component, true
		}
	}
	return -1, false
}

// EbitenRenderer draws quads from a TextureSet onto an ebiten image.
type EbitenRenderer struct {
	Target   *ebiten.Image
	Textures *TextureSet
	Filter   ebiten.Filter
}

// NewEbitenRenderer returns a renderer drawing s's active textures onto
// target. The sprite must be activated.
func NewEbitenRenderer(target *ebiten.Image, s *Sprite) (*EbitenRenderer, error) {
	if s.TextureState() != TexturesLoaded {
		return nil, fmt.Errorf("spritekit: sprite %q textures are not loaded", s.Name)
	}
	return &EbitenRenderer{Target: target, Textures: s.Textures()}, nil
}

// DrawQuad implements Renderer.
func (r *EbitenRenderer) DrawQuad(region TextureRegion, pal *Palette, transform [6]float64) {
	page := r.Textures.Page(pal)
	if page == nil {
		return
	}
	x, y := int(region.X), int(region.Y)
	sub := page.SubImage(image.Rect(x, y, x+int(region.Width), y+int(region.Height))).(*ebiten.Image)

	var op ebiten.DrawImageOptions
	op.GeoM = affineGeoM(transform)
	op.Filter = r.Filter
	r.Target.DrawImage(sub, &op)
}

// affineGeoM converts a [6]float64 transform into an ebiten.GeoM.
func affineGeoM(m [6]float64) ebiten.GeoM {
	var g ebiten.GeoM
	g.SetElement(0, 0, m[0])
	g.SetElement(1, 0, m[1])
	g.SetElement(0, 1, m[2])
	g.SetElement(1, 1, m[3])
	g.SetElement(0, 2, m[4])
	g.SetElement(1, 2, m[5])
	return g
}
