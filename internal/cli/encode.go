package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/phanxgames/spritekit"
)

var encodeOut string

var encodeCmd = &cobra.Command{
	Use:   "encode [words...]",
	Short: "Write a checked sequence as big-endian binary",
	Long: `Validates a hex command sequence and writes it as big-endian 16-bit
words, to --out or stdout.`,
	RunE: runEncode,
}

func init() {
	encodeCmd.Flags().StringVarP(&encodeOut, "out", "o", "", "Output file (default stdout)")
	rootCmd.AddCommand(encodeCmd)
}

func runEncode(cmd *cobra.Command, args []string) error {
	seq, err := readSequence(cmd, args, "")
	if err != nil {
		return err
	}
	if _, err := spritekit.DecodeSequence(seq); err != nil {
		return err
	}

	if encodeOut == "" {
		return spritekit.WriteSequence(cmd.OutOrStdout(), seq)
	}
	f, err := os.Create(encodeOut)
	if err != nil {
		return fmt.Errorf("failed to create output: %w", err)
	}
	if err := spritekit.WriteSequence(f, seq); err != nil {
		f.Close()
		return fmt.Errorf("failed to write sequence: %w", err)
	}
	return f.Close()
}
