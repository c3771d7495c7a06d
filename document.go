package spritekit

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Sprite definition document, one YAML file per sprite.

type spriteDoc struct {
	Name          string         `yaml:"name,omitempty"`
	MaxComponents int            `yaml:"max_components,omitempty"`
	Variations    []string       `yaml:"variations,omitempty"`
	NumVariations int            `yaml:"num_variations,omitempty"`
	HasBack       bool           `yaml:"has_back,omitempty"`
	Palettes      []paletteDoc   `yaml:"palettes"`
	Images        []string       `yaml:"images,omitempty"`
	Rasters       []rasterDoc    `yaml:"rasters"`
	Animations    []animationDoc `yaml:"animations"`
}

type paletteDoc struct {
	Source    string `yaml:"source"`
	FrontOnly bool   `yaml:"front_only,omitempty"`
	Disabled  bool   `yaml:"disabled,omitempty"`
}

type rasterDoc struct {
	Name        string `yaml:"name"`
	Source      string `yaml:"source"`
	Palette     int    `yaml:"palette"`
	Back        string `yaml:"back,omitempty"`
	BackPalette *int   `yaml:"back_palette,omitempty"`
	BackSize    *Size  `yaml:"back_size,omitempty"`
}

type animationDoc struct {
	Name       string         `yaml:"name"`
	Components []componentDoc `yaml:"components"`
}

type componentDoc struct {
	Name     string `yaml:"name"`
	Z        int    `yaml:"z,omitempty"`
	Sequence string `yaml:"sequence"`
}

// ReadDocument parses a sprite document. Structural problems (bad hex, palette
// indices out of range) are errors; bytecode and cross-references are
// checked later by Bind.
func ReadDocument(r io.Reader) (*Sprite, error) {
	var doc spriteDoc
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("spritekit: parse sprite document: %w", err)
	}

	s := NewSprite(doc.Name)
	s.MaxComponents = doc.MaxComponents
	s.Variations = doc.Variations
	s.NumVariations = max(doc.NumVariations, len(doc.Variations))
	s.HasBack = doc.HasBack

	for _, pd := range doc.Palettes {
		p := NewPalette(pd.Source)
		p.FrontOnly = pd.FrontOnly
		p.Disabled = pd.Disabled
		s.Palettes = append(s.Palettes, p)
	}
	palette := func(raster string, i int) (*Palette, error) {
		if i < 0 || i >= len(s.Palettes) {
			return nil, fmt.Errorf("spritekit: raster %q: palette %d out of range [0, %d)", raster, i, len(s.Palettes))
		}
		return s.Palettes[i], nil
	}

	for _, rd := range doc.Rasters {
		pal, err := palette(rd.Name, rd.Palette)
		if err != nil {
			return nil, err
		}
		r := &Raster{Name: rd.Name, Front: RasterFace{Filename: rd.Source, Palette: pal}}
		if s.HasBack {
			r.Back.Filename = rd.Back
			r.BackSize = rd.BackSize
			r.Back.Palette = pal
			if rd.BackPalette != nil {
				if r.Back.Palette, err = palette(rd.Name, *rd.BackPalette); err != nil {
					return nil, err
				}
			}
		}
		s.Rasters = append(s.Rasters, r)
	}

	for ai, ad := range doc.Animations {
		a := s.AddAnimation(ad.Name)
		for ci, cd := range ad.Components {
			seq, err := ParseSequenceHex(cd.Sequence)
			if err != nil {
				return nil, fmt.Errorf("spritekit: animation %02X component %02X: %w", ai, ci, err)
			}
			c := NewComponent(cd.Name, seq)
			c.ZIndex = cd.Z
			a.Components = append(a.Components, c)
		}
	}

	s.syncImages()
	for _, name := range doc.Images {
		s.AddImage(name)
	}
	s.RecalculateIndices()
	return s, nil
}

// WriteDocument encodes s as a sprite document.
func (s *Sprite) WriteDocument(w io.Writer) error {
	s.syncImages()
	doc := spriteDoc{
		Name:          s.Name,
		MaxComponents: s.MaxComponents,
		Variations:    s.Variations,
		NumVariations: s.NumVariations,
		HasBack:       s.HasBack,
	}
	for _, p := range s.Palettes {
		doc.Palettes = append(doc.Palettes, paletteDoc{Source: p.Filename, FrontOnly: p.FrontOnly, Disabled: p.Disabled})
	}
	for _, ia := range s.images {
		if !s.InUse(ia) {
			doc.Images = append(doc.Images, ia.Filename)
		}
	}
	for _, r := range s.Rasters {
		rd := rasterDoc{Name: r.Name, Source: r.Front.Filename, Palette: s.paletteIndex(r.Front.Palette)}
		if s.HasBack {
			rd.Back = r.Back.Filename
			rd.BackSize = r.BackSize
			if r.Back.Palette != nil && r.Back.Palette != r.Front.Palette {
				i := s.paletteIndex(r.Back.Palette)
				rd.BackPalette = &i
			}
		}
		doc.Rasters = append(doc.Rasters, rd)
	}
	for _, a := range s.Animations {
		ad := animationDoc{Name: a.Name}
		for _, c := range a.Components {
			ad.Components = append(ad.Components, componentDoc{Name: c.Name, Z: c.ZIndex, Sequence: c.Sequence.String()})
		}
		doc.Animations = append(doc.Animations, ad)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("spritekit: write sprite document: %w", err)
	}
	return enc.Close()
}

// LoadDocumentFile reads the sprite document at path. The sprite is named
// after the file when the document has no name, and its assets resolve
// against the file's directory.
func LoadDocumentFile(path string) (*Sprite, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("spritekit: open sprite: %w", err)
	}
	defer f.Close()

	s, err := ReadDocument(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if s.Name == "" {
		s.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	s.Source = filepath.Dir(path)
	return s, nil
}

// LoadDocumentFiles loads several sprites. A failing file leaves its slot nil
// and records its error at the same index; the others still load.
func LoadDocumentFiles(paths []string) ([]*Sprite, []error) {
	sprites := make([]*Sprite, len(paths))
	errs := make([]error, len(paths))
	for i, p := range paths {
		sprites[i], errs[i] = LoadDocumentFile(p)
	}
	return sprites, errs
}
