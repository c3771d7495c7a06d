package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/phanxgames/spritekit"
)

var (
	packOut     string
	packJSON    string
	packPalette int
	packCompare string
)

var packCmd = &cobra.Command{
	Use:   "pack <sprite.yaml>",
	Short: "Pack a sprite's images into a texture atlas",
	Long: `Loads a sprite document and its assets, packs every image into one
atlas and lists the placements.

With --out, writes the atlas colored with the chosen live palette as PNG.
Images no raster uses are drawn dimmed. With --json, writes the placements
in TexturePacker hash format. With --compare, reads an atlas JSON written
earlier and reports every image whose placement no longer matches.`,
	Args: cobra.ExactArgs(1),
	RunE: runPack,
}

func init() {
	packCmd.Flags().StringVarP(&packOut, "out", "o", "", "Write the atlas image as PNG")
	packCmd.Flags().StringVar(&packJSON, "json", "", "Write TexturePacker JSON")
	packCmd.Flags().StringVar(&packCompare, "compare", "", "Report placements that differ from an existing atlas JSON")
	packCmd.Flags().IntVarP(&packPalette, "palette", "p", 0, "Live palette index for --out, -1 for grayscale")
	rootCmd.AddCommand(packCmd)
}

func runPack(cmd *cobra.Command, args []string) error {
	c := currentConfig()
	s, err := spritekit.LoadDocumentFile(args[0])
	if err != nil {
		return err
	}
	s.Packing = c.Atlas.PackOptions()

	root := s.Source
	if c.Assets.Root != "" {
		root = c.Assets.Root
	}
	if err := s.LoadAssetsSync(context.Background(), spritekit.DirSource{Root: root}); err != nil {
		return fmt.Errorf("failed to load assets: %w", err)
	}

	layout := s.MakeAtlas()
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "atlas %dx%d, %d images\n", layout.Width, layout.Height, len(layout.Entries))
	for _, name := range layout.SortedNames() {
		e, _ := layout.Lookup(name)
		used := ""
		if !s.InUse(s.Image(name)) {
			used = "  (unused)"
		}
		fmt.Fprintf(out, "  %-24s %4d,%-4d %3dx%-3d%s\n", name, e.X, e.Y, int(e.Bounds.Width), int(e.Bounds.Height), used)
	}
	for _, name := range layout.Skipped {
		fmt.Fprintf(out, "  %-24s skipped (empty)\n", name)
	}

	if packCompare != "" {
		if err := compareAtlas(out, layout, packCompare); err != nil {
			return err
		}
	}

	if packOut != "" {
		var pal *spritekit.Palette
		if packPalette >= 0 {
			pal = s.LivePalette(packPalette)
			if pal == nil {
				return fmt.Errorf("palette %d out of range (%d live)", packPalette, len(s.LivePalettes()))
			}
		}
		if err := s.SaveAtlas(packOut, pal); err != nil {
			return err
		}
	}

	if packJSON != "" {
		imageName := "atlas.png"
		if packOut != "" {
			imageName = filepath.Base(packOut)
		}
		data, err := layout.MarshalTexturePacker(imageName)
		if err != nil {
			return fmt.Errorf("failed to encode atlas json: %w", err)
		}
		if err := os.WriteFile(packJSON, data, 0o644); err != nil {
			return fmt.Errorf("failed to write atlas json: %w", err)
		}
	}
	return nil
}

// compareAtlas reports images that were added, removed, moved or resized
// relative to the TexturePacker JSON at path.
func compareAtlas(out io.Writer, layout *spritekit.AtlasLayout, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read atlas json: %w", err)
	}
	old, err := spritekit.LoadRegions(data)
	if err != nil {
		return err
	}

	diffs := 0
	for _, name := range layout.SortedNames() {
		e, _ := layout.Lookup(name)
		w, h := int(e.Bounds.Width), int(e.Bounds.Height)
		r, ok := old[name]
		switch {
		case !ok:
			fmt.Fprintf(out, "  added    %s\n", name)
			diffs++
		case int(r.X) != e.X || int(r.Y) != e.Y || int(r.Width) != w || int(r.Height) != h:
			fmt.Fprintf(out, "  changed  %s %d,%d %dx%d -> %d,%d %dx%d\n",
				name, r.X, r.Y, r.Width, r.Height, e.X, e.Y, w, h)
			diffs++
		}
	}
	var removed []string
	for name := range old {
		if _, ok := layout.Lookup(name); !ok {
			removed = append(removed, name)
		}
	}
	sort.Strings(removed)
	for _, name := range removed {
		fmt.Fprintf(out, "  removed  %s\n", name)
		diffs++
	}

	if diffs == 0 {
		fmt.Fprintf(out, "atlas matches %s\n", filepath.Base(path))
	} else {
		fmt.Fprintf(out, "%d placements differ from %s\n", diffs, filepath.Base(path))
	}
	return nil
}
