package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/phanxgames/spritekit"
	"github.com/phanxgames/spritekit/internal/config"
)

// Version is set at build time via ldflags.
var Version = "dev"

var (
	verbose    bool
	configPath string

	// cfg is loaded before every command runs. Tests may set it directly.
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "spritekit",
	Short: "Inspect, convert and pack sprite animation data",
	Long: `Spritekit works with sprite documents and their animation bytecode.

It decodes and encodes command sequences, converts them to and from
keyframes, plays them tick by tick, packs texture atlases and validates
whole sprite documents.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

func init() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("spritekit version {{.Version}}\n")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ./"+config.FileName+")")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func loadConfig(cmd *cobra.Command, args []string) error {
	var (
		c   *config.Config
		err error
	)
	if configPath != "" {
		c, err = config.LoadConfigFile(configPath)
	} else {
		cwd, werr := os.Getwd()
		if werr != nil {
			return fmt.Errorf("failed to get current directory: %w", werr)
		}
		c, err = config.LoadConfig(cwd)
	}
	if err != nil {
		return err
	}
	cfg = c
	spritekit.SetDebugMode(verbose || cfg.Verbose)
	return nil
}

func currentConfig() *config.Config {
	if cfg == nil {
		def := config.DefaultConfig()
		return &def
	}
	return cfg
}

// readSequence takes command words from a binary file, from stdin when the
// only argument is "-", or from hex arguments.
func readSequence(cmd *cobra.Command, args []string, binaryPath string) (spritekit.RawSequence, error) {
	if binaryPath != "" {
		f, err := os.Open(binaryPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open sequence: %w", err)
		}
		defer f.Close()
		info, err := f.Stat()
		if err != nil {
			return nil, fmt.Errorf("failed to stat sequence: %w", err)
		}
		if info.Size()%2 != 0 {
			return nil, fmt.Errorf("%s: odd byte count %d", binaryPath, info.Size())
		}
		return spritekit.ReadSequence(f, int(info.Size()/2))
	}
	if len(args) == 1 && args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return spritekit.ParseSequenceHex(string(data))
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("no command words given")
	}
	return spritekit.ParseSequenceHex(strings.Join(args, " "))
}
