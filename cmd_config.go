package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sugallat/squarebg/internal/pattern"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the configuration",
}

var configDumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Print the resolved configuration as YAML",
	Long: `Print defaults, presets, the config file and SQUAREBG_* environment
overrides merged into one YAML document. The output is a valid config file.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return cfg.Dump(cmd.OutOrStdout())
	},
}

var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List the built-in section presets",
	Args:  cobra.NoArgs,
	Run:   runPresets,
}

func init() {
	configCmd.AddCommand(configDumpCmd)
}

func runPresets(cmd *cobra.Command, _ []string) {
	out := cmd.OutOrStdout()
	names := pattern.PresetNames()

	maxLen := len("NAME")
	for _, name := range names {
		maxLen = max(maxLen, len(name))
	}

	fmt.Fprintf(out, "  %-*s  %s\n", maxLen, "NAME", "LAYOUT")
	for _, name := range names {
		opts, err := pattern.Preset(name)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			continue
		}
		cfg := opts.Resolve()
		layout := fmt.Sprintf("%s, grid %g, tile %g, seed %q", cfg.Strategy.Name(), cfg.BaseGrid, cfg.TileSize, cfg.Seed.String())
		fmt.Fprintf(out, "  %-*s  %s\n", maxLen, name, layout)
	}
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Override any key under sections.<name> in %s.\n", flagConfig)
}
