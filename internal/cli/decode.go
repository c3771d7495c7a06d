package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/phanxgames/spritekit"
)

var decodeBinary string

var decodeCmd = &cobra.Command{
	Use:   "decode [words...]",
	Short: "List the commands in a bytecode sequence",
	Long: `Decodes a command sequence and prints one instruction per line with its
word offset and raw words.

Words are given as hex arguments, read from stdin with "-", or read as
big-endian binary with --binary.`,
	RunE: runDecode,
}

func init() {
	decodeCmd.Flags().StringVar(&decodeBinary, "binary", "", "Read a big-endian binary sequence file")
	rootCmd.AddCommand(decodeCmd)
}

func runDecode(cmd *cobra.Command, args []string) error {
	seq, err := readSequence(cmd, args, decodeBinary)
	if err != nil {
		return err
	}
	prog, err := spritekit.DecodeSequence(seq)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, ins := range prog {
		words := seq[ins.Offset : ins.Offset+ins.Size()]
		fmt.Fprintf(out, "%04d  %-19s  %s\n", ins.Offset, words, ins.Command)
	}
	fmt.Fprintf(out, "%d words, %d commands\n", len(seq), len(prog))
	return nil
}
