package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/phanxgames/spritekit"
)

var (
	playTicks  int
	playCycle  bool
	playBinary string
)

var playCmd = &cobra.Command{
	Use:   "play [words...]",
	Short: "Run a bytecode sequence tick by tick",
	Long: `Runs a command sequence through the interpreter and prints the pose
after every tick.

With --cycle, ticks until the interpreter state repeats and reports the
cycle length instead of a fixed tick count.`,
	RunE: runPlay,
}

func init() {
	playCmd.Flags().IntVarP(&playTicks, "ticks", "n", 0, "Ticks to run (default from config)")
	playCmd.Flags().BoolVar(&playCycle, "cycle", false, "Run until the state repeats")
	playCmd.Flags().StringVar(&playBinary, "binary", "", "Read a big-endian binary sequence file")
	rootCmd.AddCommand(playCmd)
}

func runPlay(cmd *cobra.Command, args []string) error {
	seq, err := readSequence(cmd, args, playBinary)
	if err != nil {
		return err
	}
	a, err := spritekit.NewAnimator(seq)
	if err != nil {
		return err
	}

	c := currentConfig()
	out := cmd.OutOrStdout()
	if playCycle {
		poses, err := a.Cycle(c.Playback.CycleLimit)
		printPoses(out, poses)
		if err != nil {
			return err
		}
		if len(poses) == c.Playback.CycleLimit {
			fmt.Fprintf(out, "no repeat within %d ticks\n", c.Playback.CycleLimit)
			return nil
		}
		fmt.Fprintf(out, "cycle length: %d\n", len(poses))
		return nil
	}

	ticks := playTicks
	if ticks <= 0 {
		ticks = c.Playback.Ticks
	}
	printPoseHeader(out)
	a.Reset()
	for i := 1; i <= ticks; i++ {
		if err := a.Tick(); err != nil {
			if errors.Is(err, spritekit.ErrNoDelay) {
				return fmt.Errorf("tick %d: %w", i, err)
			}
			return err
		}
		fmt.Fprintf(out, "%4d  %4d  %5d  %s\n", i, a.ProgramCounter(), a.DelayRemaining(), formatPose(a.Pose()))
	}
	return nil
}

func printPoseHeader(out io.Writer) {
	fmt.Fprintf(out, "%4s  %4s  %5s  %s\n", "TICK", "PC", "DELAY", "POSE")
}

func printPoses(out io.Writer, poses []spritekit.Pose) {
	fmt.Fprintf(out, "%4s  %s\n", "TICK", "POSE")
	for i, p := range poses {
		fmt.Fprintf(out, "%4d  %s\n", i+1, formatPose(p))
	}
}

func formatPose(p spritekit.Pose) string {
	image := "-"
	if p.Image != spritekit.NoImage {
		image = fmt.Sprint(p.Image)
	}
	palette := "-"
	if p.Palette != spritekit.InheritPalette {
		palette = fmt.Sprint(p.Palette)
	}
	s := fmt.Sprintf("image=%s pos=(%d,%d,%d) rot=(%d,%d,%d) scale=(%d,%d,%d) palette=%s",
		image,
		p.Position.X, p.Position.Y, p.Position.Z,
		p.Rotation.X, p.Rotation.Y, p.Rotation.Z,
		p.Scale.X, p.Scale.Y, p.Scale.Z,
		palette)
	if p.HasParent {
		s += fmt.Sprintf(" parent=%s:%d", p.Parent.Kind, p.Parent.Index)
	}
	return s
}
