package spritekit

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sync/errgroup"
)

// AssetSource resolves image and palette files by name.
type AssetSource interface {
	LoadImage(name string) (*image.Paletted, error)
	LoadPalette(name string) (color.Palette, error)
}

// DirSource reads indexed PNGs from Root/rasters and palette PNGs from
// Root/palettes. A palette file is any indexed PNG; only its color table is
// used.
type DirSource struct {
	Root string
}

// LoadImage implements AssetSource.
func (d DirSource) LoadImage(name string) (*image.Paletted, error) {
	return readPaletted(filepath.Join(d.Root, "rasters", name))
}

// LoadPalette implements AssetSource.
func (d DirSource) LoadPalette(name string) (color.Palette, error) {
	img, err := readPaletted(filepath.Join(d.Root, "palettes", name))
	if err != nil {
		return nil, err
	}
	return img.Palette, nil
}

func readPaletted(path string) (*image.Paletted, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMissingAsset, err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("spritekit: decode %s: %w", path, err)
	}
	pal, ok := img.(*image.Paletted)
	if !ok {
		return nil, fmt.Errorf("spritekit: %s is not an indexed-color image", path)
	}
	return pal, nil
}

// AssetResult is the outcome of LoadAssets. Failures are per file and never
// abort the other loads.
type AssetResult struct {
	Images   map[string]*image.Paletted
	Palettes map[string]color.Palette
	Failed   map[string]error
	// Err is set when the load was canceled.
	Err error
}

// maxConcurrentLoads bounds file reads in flight per LoadAssets call.
const maxConcurrentLoads = 8

// LoadAssets reads the named files on background goroutines and delivers one
// AssetResult on the returned channel. The caller applies it on its own
// goroutine with Sprite.ApplyAssets.
func LoadAssets(ctx context.Context, src AssetSource, images, palettes []string) <-chan AssetResult {
	out := make(chan AssetResult, 1)
	go func() {
		res := AssetResult{
			Images:   make(map[string]*image.Paletted, len(images)),
			Palettes: make(map[string]color.Palette, len(palettes)),
			Failed:   make(map[string]error),
		}
		var mu sync.Mutex
		g, ctx := errgroup.WithContext(ctx)
		g.SetLimit(maxConcurrentLoads)

		for _, name := range images {
			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}
				img, err := src.LoadImage(name)
				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					res.Failed[name] = err
					return nil
				}
				res.Images[name] = img
				return nil
			})
		}
		for _, name := range palettes {
			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}
				pal, err := src.LoadPalette(name)
				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					res.Failed[name] = err
					return nil
				}
				res.Palettes[name] = pal
				return nil
			})
		}
		res.Err = g.Wait()
		out <- res
		close(out)
	}()
	return out
}

// AssetNames returns the image and palette files the sprite needs.
func (s *Sprite) AssetNames() (images, palettes []string) {
	s.syncImages()
	for _, ia := range s.images {
		images = append(images, ia.Filename)
	}
	seen := make(map[string]bool)
	for _, p := range s.Palettes {
		if !seen[p.Filename] {
			seen[p.Filename] = true
			palettes = append(palettes, p.Filename)
		}
	}
	return images, palettes
}

// LoadAssetsAsync starts loading every asset the sprite names from src.
func (s *Sprite) LoadAssetsAsync(ctx context.Context, src AssetSource) <-chan AssetResult {
	images, palettes := s.AssetNames()
	return LoadAssets(ctx, src, images, palettes)
}

// LoadAssetsSync loads and applies every asset, blocking until done.
func (s *Sprite) LoadAssetsSync(ctx context.Context, src AssetSource) error {
	res := <-s.LoadAssetsAsync(ctx, src)
	s.ApplyAssets(res)
	return res.Err
}

// ApplyAssets installs loaded data. Files that failed keep their previous
// state and are logged as missing; playback is unaffected.
func (s *Sprite) ApplyAssets(res AssetResult) {
	for _, p := range s.Palettes {
		if colors, ok := res.Palettes[p.Filename]; ok {
			p.Colors = colors
		} else if err, failed := res.Failed[p.Filename]; failed {
			warnf("sprite %q: palette %q: %v", s.Name, p.Filename, missing(err))
		}
	}
	for _, ia := range s.images {
		if img, ok := res.Images[ia.Filename]; ok {
			ia.Pixels = img
		} else if err, failed := res.Failed[ia.Filename]; failed {
			warnf("sprite %q: image %q: %v", s.Name, ia.Filename, missing(err))
		}
	}
	s.invalidateLayout()
	debugf("assets: sprite %q applied %d images, %d palettes, %d failed",
		s.Name, len(res.Images), len(res.Palettes), len(res.Failed))
}

func missing(err error) error {
	if err == nil {
		return ErrMissingAsset
	}
	return err
}
