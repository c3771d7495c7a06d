package cli

import (
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phanxgames/spritekit"
)

const heroYAML = `name: hero
palettes:
  - source: normal.png
  - source: night.png
rasters:
  - name: idle
    source: idle.png
    palette: 0
  - name: walk
    source: walk.png
    palette: 0
images: [spare.png]
animations:
  - name: Walk
    components:
      - name: body
        sequence: "1000 0002 1001 0002 2000"
      - name: shadow
        z: -1
        sequence: "6001 0001"
`

var testPalette = color.Palette{color.NRGBA{}, color.NRGBA{R: 200, G: 40, B: 40, A: 255}}

func writeTestPNG(t *testing.T, path string, img image.Image) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func filledPaletted(w, h int) *image.Paletted {
	img := image.NewPaletted(image.Rect(0, 0, w, h), testPalette)
	for i := range img.Pix {
		img.Pix[i] = 1
	}
	return img
}

// writeHero lays out a sprite document with its rasters and palettes.
func writeHero(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "hero.yaml")
	require.NoError(t, os.WriteFile(path, []byte(heroYAML), 0o644))
	writeTestPNG(t, filepath.Join(dir, "rasters", "idle.png"), filledPaletted(8, 12))
	writeTestPNG(t, filepath.Join(dir, "rasters", "walk.png"), filledPaletted(10, 12))
	writeTestPNG(t, filepath.Join(dir, "rasters", "spare.png"), filledPaletted(4, 4))
	writeTestPNG(t, filepath.Join(dir, "palettes", "normal.png"), image.NewPaletted(image.Rect(0, 0, 1, 1), testPalette))
	writeTestPNG(t, filepath.Join(dir, "palettes", "night.png"), image.NewPaletted(image.Rect(0, 0, 1, 1), testPalette))
	return path
}

func TestPackCommand_Listing(t *testing.T) {
	path := writeHero(t)

	output, err := runCommand(t, packCmd, runPack, "", path)
	require.NoError(t, err)

	assert.Contains(t, output, "3 images")
	assert.Contains(t, output, "idle.png")
	assert.Contains(t, output, "walk.png")
	assert.Regexp(t, `spare\.png.*\(unused\)`, output)
	assert.NotRegexp(t, `idle\.png.*\(unused\)`, output)
}

func TestPackCommand_WritesAtlas(t *testing.T) {
	path := writeHero(t)
	outDir := t.TempDir()
	packOut = filepath.Join(outDir, "hero.png")
	packJSON = filepath.Join(outDir, "hero.json")
	defer func() {
		packOut = ""
		packJSON = ""
	}()

	_, err := runCommand(t, packCmd, runPack, "", path)
	require.NoError(t, err)

	f, err := os.Open(packOut)
	require.NoError(t, err)
	defer f.Close()
	atlas, err := png.Decode(f)
	require.NoError(t, err)

	data, err := os.ReadFile(packJSON)
	require.NoError(t, err)
	var doc struct {
		Meta struct {
			Image string `json:"image"`
			Size  struct {
				W int `json:"w"`
				H int `json:"h"`
			} `json:"size"`
		} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "hero.png", doc.Meta.Image)
	assert.Equal(t, atlas.Bounds().Dx(), doc.Meta.Size.W)
	assert.Equal(t, atlas.Bounds().Dy(), doc.Meta.Size.H)

	regions, err := spritekit.LoadRegions(data)
	require.NoError(t, err)
	idle, ok := regions["idle.png"]
	require.True(t, ok)
	assert.Equal(t, uint16(8), idle.Width)
	assert.Equal(t, uint16(12), idle.Height)

	// used pixels are opaque palette red
	_, _, _, a := atlas.At(int(idle.X)+1, int(idle.Y)+1).RGBA()
	assert.Equal(t, uint32(0xffff), a)
}

func TestPackCommand_Compare(t *testing.T) {
	path := writeHero(t)
	dir := t.TempDir()
	packJSON = filepath.Join(dir, "hero.json")
	_, err := runCommand(t, packCmd, runPack, "", path)
	packJSON = ""
	require.NoError(t, err)

	packCompare = filepath.Join(dir, "hero.json")
	defer func() { packCompare = "" }()
	output, err := runCommand(t, packCmd, runPack, "", path)
	require.NoError(t, err)
	assert.Contains(t, output, "atlas matches hero.json")

	stale := `{"frames": {
		"idle.png": {"frame": {"x": 0, "y": 0, "w": 8, "h": 12}},
		"gone.png": {"frame": {"x": 20, "y": 0, "w": 4, "h": 4}}
	}}`
	packCompare = filepath.Join(dir, "stale.json")
	require.NoError(t, os.WriteFile(packCompare, []byte(stale), 0o644))
	output, err = runCommand(t, packCmd, runPack, "", path)
	require.NoError(t, err)
	assert.Regexp(t, `changed  idle\.png 0,0 8x12 -> `, output)
	assert.Contains(t, output, "added    walk.png")
	assert.Contains(t, output, "added    spare.png")
	assert.Contains(t, output, "removed  gone.png")
	assert.Contains(t, output, "4 placements differ from stale.json")

	packCompare = filepath.Join(dir, "missing.json")
	_, err = runCommand(t, packCmd, runPack, "", path)
	require.Error(t, err)
}

func TestPackCommand_BadPalette(t *testing.T) {
	path := writeHero(t)
	packOut = filepath.Join(t.TempDir(), "x.png")
	packPalette = 5
	defer func() {
		packOut = ""
		packPalette = 0
	}()

	_, err := runCommand(t, packCmd, runPack, "", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "palette 5 out of range")
}

func TestValidateCommand(t *testing.T) {
	path := writeHero(t)

	output, err := runCommand(t, validateCmd, runValidate, "", path)
	require.NoError(t, err)

	assert.Contains(t, output, "ok    "+path+" (hero)")
	assert.Contains(t, output, "2 palettes (2 live), 2 rasters, 1 animations")
	assert.Regexp(t, `body\s+z=0\s+words=5\s+cycle=4`, output)
	assert.Regexp(t, `shadow\s+z=-1\s+words=2`, output)
}

func TestValidateCommand_Failures(t *testing.T) {
	dir := t.TempDir()
	dangling := filepath.Join(dir, "dangling.yaml")
	doc := "palettes: [{source: p.png}]\nanimations:\n  - name: A\n    components:\n      - {name: c, sequence: \"1005 0001\"}\n"
	require.NoError(t, os.WriteFile(dangling, []byte(doc), 0o644))
	good := writeHero(t)

	output, err := runCommand(t, validateCmd, runValidate, "", dangling, good, filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
	assert.Equal(t, "2 of 3 sprites failed validation", err.Error())

	assert.Contains(t, output, "FAIL  "+dangling)
	assert.Contains(t, output, "ok    "+good)
	assert.Contains(t, output, "missing.yaml")
}
