package spritekit

import (
	"math"
	"testing"
)

type drawnQuad struct {
	region    TextureRegion
	pal       *Palette
	transform [6]float64
}

type recorder struct {
	quads []drawnQuad
}

func (r *recorder) DrawQuad(region TextureRegion, pal *Palette, transform [6]float64) {
	r.quads = append(r.quads, drawnQuad{region, pal, transform})
}

func mustEncode(t *testing.T, cmds ...Command) RawSequence {
	t.Helper()
	seq, err := EncodeSequence(cmds)
	if err != nil {
		t.Fatal(err)
	}
	return seq
}

// newRenderSprite has an 8x16 raster 0 and a 4x4 raster 1, and one animation
// whose second component is parented to the first.
func newRenderSprite(t *testing.T, body, hat RawSequence) *Sprite {
	t.Helper()
	s := NewSprite("r")
	p := s.AddPalette("normal.png")
	s.AddPalette("shiny.png")
	s.AddRaster("body", "body.png", p)
	s.AddRaster("hat", "hat.png", p)
	s.Image("body.png").Pixels = testPixels(8, 16)
	s.Image("hat.png").Pixels = testPixels(4, 4)
	a := s.AddAnimation("A")
	if _, err := a.AddComponent("body", body); err != nil {
		t.Fatal(err)
	}
	if _, err := a.AddComponent("hat", hat); err != nil {
		t.Fatal(err)
	}
	if err := s.Bind(); err != nil {
		t.Fatal(err)
	}
	if err := s.UpdateAnimation(0); err != nil {
		t.Fatal(err)
	}
	return s
}

func TestRenderParentChain(t *testing.T) {
	s := newRenderSprite(t,
		mustEncode(t, SetImage(0), SetPosition(false, 10, 20, 0), Delay(1)),
		mustEncode(t, SetParent(ParentComponent, 0), SetImage(1), SetPosition(false, 5, 0, 0), Delay(1)),
	)
	var r recorder
	if err := s.Render(&r, 0, RenderOptions{}); err != nil {
		t.Fatal(err)
	}
	if len(r.quads) != 2 {
		t.Fatalf("drew %d quads, want 2", len(r.quads))
	}
	assertMatrix(t, "body", r.quads[0].transform, [6]float64{1, 0, 0, 1, 6, -36})
	assertMatrix(t, "hat", r.quads[1].transform, [6]float64{1, 0, 0, 1, 13, -24})
	if r.quads[0].region.Width != 8 || r.quads[0].region.Height != 16 {
		t.Errorf("body region = %+v", r.quads[0].region)
	}
	if r.quads[0].pal != s.Palettes[0] {
		t.Errorf("palette = %v, want raster palette", r.quads[0].pal)
	}

	if b := s.Bounds(); b != (Rect{X: 6, Y: -36, Width: 11, Height: 16}) {
		t.Errorf("Bounds = %+v", b)
	}

	if c, ok := s.PickComponent(8, -30); !ok || c != 0 {
		t.Errorf("pick body = %d, %v", c, ok)
	}
	if c, ok := s.PickComponent(14, -22); !ok || c != 1 {
		t.Errorf("pick overlap = %d, %v, want topmost 1", c, ok)
	}
	if _, ok := s.PickComponent(100, 100); ok {
		t.Error("picked empty space")
	}
}

func TestRenderHiddenParentStillMoves(t *testing.T) {
	s := newRenderSprite(t,
		mustEncode(t, SetPosition(false, 10, 20, 0), Delay(1)),
		mustEncode(t, SetParent(ParentComponent, 0), SetImage(1), Delay(1)),
	)
	var r recorder
	if err := s.Render(&r, 0, RenderOptions{}); err != nil {
		t.Fatal(err)
	}
	if len(r.quads) != 1 {
		t.Fatalf("drew %d quads, want 1", len(r.quads))
	}
	assertMatrix(t, "hat", r.quads[0].transform, [6]float64{1, 0, 0, 1, 8, -24})
}

func TestRenderOrder(t *testing.T) {
	s := newRenderSprite(t,
		mustEncode(t, SetImage(0), Delay(1)),
		mustEncode(t, SetImage(1), SetPosition(false, 0, 0, -1), Delay(1)),
	)
	var r recorder
	if err := s.Render(&r, 0, RenderOptions{}); err != nil {
		t.Fatal(err)
	}
	if r.quads[0].region.Width != 4 {
		t.Errorf("deeper component drawn second")
	}

	s.Animations[0].Components[1].ZIndex = 1
	r = recorder{}
	if err := s.Render(&r, 0, RenderOptions{}); err != nil {
		t.Fatal(err)
	}
	if r.quads[1].region.Width != 4 {
		t.Errorf("higher ZIndex drawn first")
	}
}

func TestRenderPalettes(t *testing.T) {
	s := newRenderSprite(t,
		mustEncode(t, SetImage(0), SetPalette(1), Delay(1)),
		mustEncode(t, SetImage(1), Delay(1)),
	)
	var r recorder
	if err := s.Render(&r, 0, RenderOptions{}); err != nil {
		t.Fatal(err)
	}
	if r.quads[0].pal != s.Palettes[1] {
		t.Errorf("SetPalette ignored: %v", r.quads[0].pal)
	}
	if r.quads[1].pal != s.Palettes[0] {
		t.Errorf("raster palette ignored: %v", r.quads[1].pal)
	}

	override := NewPalette("preview.png")
	r = recorder{}
	if err := s.Render(&r, 0, RenderOptions{Palette: override}); err != nil {
		t.Fatal(err)
	}
	for i, q := range r.quads {
		if q.pal != override {
			t.Errorf("quad %d palette = %v, want override", i, q.pal)
		}
	}
}

func TestRenderView(t *testing.T) {
	s := newRenderSprite(t,
		mustEncode(t, SetImage(0), Delay(1)),
		mustEncode(t, Delay(1)),
	)
	var r recorder
	view := [6]float64{2, 0, 0, 2, 100, 50}
	if err := s.Render(&r, 0, RenderOptions{View: view}); err != nil {
		t.Fatal(err)
	}
	assertMatrix(t, "viewed", r.quads[0].transform, [6]float64{2, 0, 0, 2, 92, 18})
}

func TestRenderUnknownAnimation(t *testing.T) {
	s := newRenderSprite(t, mustEncode(t, Delay(1)), mustEncode(t, Delay(1)))
	if err := s.Render(&recorder{}, 3, RenderOptions{}); err == nil {
		t.Error("Render of missing animation succeeded")
	}
}

func TestComponentNodesCycle(t *testing.T) {
	poses := []Pose{IdentityPose(), IdentityPose()}
	poses[0].HasParent, poses[0].Parent = true, ParentLink{ParentComponent, 1}
	poses[1].HasParent, poses[1].Parent = true, ParentLink{ParentComponent, 0}
	poses[1].Position = Vec3{3, 0, 0}
	nodes := componentNodes(poses)
	for i, n := range nodes {
		if math.IsNaN(n[4]) {
			t.Errorf("node %d = %v", i, n)
		}
	}
}
