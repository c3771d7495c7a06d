package spritekit

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const goombaYAML = `name: goomba
max_components: 4
variations: [Normal, Gold]
has_back: true
palettes:
  - source: normal.png
  - source: gold.png
    front_only: true
  - source: old.png
    disabled: true
images: [spare.png]
rasters:
  - name: idle
    source: idle.png
    palette: 0
    back: idle_back.png
  - name: walk
    source: walk.png
    palette: 1
    back_palette: 0
    back_size: {w: 24, h: 32}
animations:
  - name: Idle
    components:
      - name: body
        sequence: "1000 0005 1001 0005 2000"
      - name: shadow
        z: -1
        sequence: "6001 0001"
`

func TestReadDocument(t *testing.T) {
	s, err := ReadDocument(strings.NewReader(goombaYAML))
	if err != nil {
		t.Fatalf("ReadDocument: %v", err)
	}
	if s.Name != "goomba" || s.MaxComponents != 4 || !s.HasBack || s.NumVariations != 2 {
		t.Errorf("header = %q %d %v %d", s.Name, s.MaxComponents, s.HasBack, s.NumVariations)
	}
	if len(s.Palettes) != 3 || !s.Palettes[1].FrontOnly || !s.Palettes[2].Disabled {
		t.Errorf("palettes = %+v", s.Palettes)
	}
	if len(s.LivePalettes()) != 2 {
		t.Errorf("live palettes = %d", len(s.LivePalettes()))
	}
	walk := s.Rasters[1]
	if walk.Front.Palette != s.Palettes[1] || walk.Back.Palette != s.Palettes[0] {
		t.Errorf("walk palettes = %v / %v", walk.Front.Palette, walk.Back.Palette)
	}
	if walk.BackSize == nil || *walk.BackSize != (Size{Width: 24, Height: 32}) {
		t.Errorf("walk back size = %v", walk.BackSize)
	}
	if idle := s.Rasters[0]; idle.Back.Filename != "idle_back.png" || idle.Back.Palette != s.Palettes[0] {
		t.Errorf("idle back = %+v", idle.Back)
	}
	comps := s.Animations[0].Components
	if len(comps) != 2 || comps[1].ZIndex != -1 {
		t.Fatalf("components = %+v", comps)
	}
	if got := comps[0].Sequence.String(); got != "1000 0005 1001 0005 2000" {
		t.Errorf("sequence = %q", got)
	}
	if s.Image("spare.png") == nil || s.InUse(s.Image("spare.png")) {
		t.Error("spare image missing or in use")
	}
	if err := s.Bind(); err != nil {
		t.Errorf("Bind: %v", err)
	}
}

func TestWriteDocumentRoundTrip(t *testing.T) {
	s, err := ReadDocument(strings.NewReader(goombaYAML))
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := s.WriteDocument(&buf); err != nil {
		t.Fatal(err)
	}
	again, err := ReadDocument(&buf)
	if err != nil {
		t.Fatalf("re-read: %v\n%s", err, buf.String())
	}

	var first, second bytes.Buffer
	if err := s.WriteDocument(&first); err != nil {
		t.Fatal(err)
	}
	if err := again.WriteDocument(&second); err != nil {
		t.Fatal(err)
	}
	if first.String() != second.String() {
		t.Errorf("documents differ:\n%s\n---\n%s", first.String(), second.String())
	}
}

func TestReadDocumentErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"palette range", "palettes: []\nrasters:\n  - {name: a, source: a.png, palette: 1}\n", "palette 1 out of range"},
		{"back palette range", "has_back: true\npalettes: [{source: p.png}]\nrasters:\n  - {name: a, source: a.png, palette: 0, back_palette: 4}\n", "palette 4 out of range"},
		{"bad hex", "animations:\n  - name: A\n    components:\n      - {name: c, sequence: \"10G0\"}\n", "bad command word"},
		{"unknown field", "colour: red\n", "colour"},
		{"not yaml", "[", "parse sprite document"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadDocument(strings.NewReader(tt.doc))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want %q", err, tt.want)
			}
		})
	}
}

func TestReadDocumentKeepsBadBytecodeForBind(t *testing.T) {
	doc := "palettes: [{source: p.png}]\nanimations:\n  - name: A\n    components:\n      - {name: c, sequence: \"0000\"}\n"
	s, err := ReadDocument(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("ReadDocument: %v", err)
	}
	if err := s.Bind(); !errors.Is(err, ErrMalformedBytecode) {
		t.Errorf("Bind = %v, want ErrMalformedBytecode", err)
	}
}

func TestLoadDocumentFiles(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "goomba.yaml")
	unnamed := filepath.Join(dir, "koopa.yaml")
	bad := filepath.Join(dir, "broken.yaml")
	if err := os.WriteFile(good, []byte(goombaYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(unnamed, []byte("palettes: []\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(bad, []byte("rasters: {"), 0o644); err != nil {
		t.Fatal(err)
	}

	sprites, errs := LoadDocumentFiles([]string{good, bad, unnamed, filepath.Join(dir, "missing.yaml")})
	if errs[0] != nil || sprites[0] == nil || sprites[0].Source != dir {
		t.Errorf("good: %v %+v", errs[0], sprites[0])
	}
	if errs[1] == nil || sprites[1] != nil {
		t.Errorf("bad file loaded: %v", errs[1])
	}
	if errs[2] != nil || sprites[2].Name != "koopa" {
		t.Errorf("unnamed: %v", errs[2])
	}
	if errs[3] == nil {
		t.Error("missing file loaded")
	}
}
