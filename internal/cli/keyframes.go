package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/phanxgames/spritekit"
)

var keyframesBinary string

var keyframesCmd = &cobra.Command{
	Use:   "keyframes [words...]",
	Short: "Convert a bytecode sequence to keyframes",
	Long: `Groups a command sequence into keyframes, one per Delay, and prints
them as YAML. The output can be edited and fed back to compile.`,
	RunE: runKeyframes,
}

var compileCmd = &cobra.Command{
	Use:   "compile <keyframes.yaml|->",
	Short: "Convert keyframes back to a bytecode sequence",
	Long: `Reads keyframes as YAML and prints the command sequence as hex words.
Fields already in effect on every path into a keyframe are not emitted
again.`,
	Args: cobra.ExactArgs(1),
	RunE: runCompile,
}

func init() {
	keyframesCmd.Flags().StringVar(&keyframesBinary, "binary", "", "Read a big-endian binary sequence file")
	rootCmd.AddCommand(keyframesCmd)
	rootCmd.AddCommand(compileCmd)
}

func runKeyframes(cmd *cobra.Command, args []string) error {
	seq, err := readSequence(cmd, args, keyframesBinary)
	if err != nil {
		return err
	}
	kfs, err := spritekit.ToKeyframes(seq)
	if err != nil {
		return err
	}

	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	if err := enc.Encode(kfs); err != nil {
		return fmt.Errorf("failed to write keyframes: %w", err)
	}
	return enc.Close()
}

func runCompile(cmd *cobra.Command, args []string) error {
	var (
		data []byte
		err  error
	)
	if args[0] == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		return fmt.Errorf("failed to read keyframes: %w", err)
	}

	var kfs []spritekit.Keyframe
	if err := yaml.Unmarshal(data, &kfs); err != nil {
		return fmt.Errorf("failed to parse keyframes: %w", err)
	}
	seq, err := spritekit.ToCommands(kfs)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), seq)
	return nil
}
