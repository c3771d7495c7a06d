package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/phanxgames/spritekit"
)

var validateCmd = &cobra.Command{
	Use:   "validate <sprite.yaml>...",
	Short: "Check sprite documents for bad bytecode and references",
	Long: `Loads each sprite document and binds it: every component sequence is
decoded, and raster, palette and parent references are checked against the
sprite. Prints each animation with its components and cycle lengths.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	sprites, errs := spritekit.LoadDocumentFiles(args)

	failed := 0
	for i, path := range args {
		if errs[i] != nil {
			failed++
			fmt.Fprintf(out, "FAIL  %s\n      %v\n", path, errs[i])
			continue
		}
		s := sprites[i]
		if err := s.Bind(); err != nil {
			failed++
			fmt.Fprintf(out, "FAIL  %s\n      %v\n", path, err)
			continue
		}
		fmt.Fprintf(out, "ok    %s (%s)\n", path, s.Name)
		describeSprite(out, s)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d sprites failed validation", failed, len(args))
	}
	return nil
}

func describeSprite(out io.Writer, s *spritekit.Sprite) {
	limit := currentConfig().Playback.CycleLimit
	fmt.Fprintf(out, "      %d palettes (%d live), %d rasters, %d animations\n",
		len(s.Palettes), len(s.LivePalettes()), len(s.Rasters), len(s.Animations))
	for _, anim := range s.Animations {
		fmt.Fprintf(out, "      %s\n", anim.Name)
		for _, comp := range anim.Components {
			cycle := "-"
			if a, err := comp.Animator(); err == nil {
				if poses, err := a.Cycle(limit); err != nil {
					cycle = err.Error()
				} else if len(poses) < limit {
					cycle = fmt.Sprint(len(poses))
				}
				a.Reset()
			}
			fmt.Fprintf(out, "        %-16s z=%-3d words=%-4d cycle=%s\n", comp.Name, comp.ZIndex, len(comp.Sequence), cycle)
		}
	}
}
