// squarebg renders deterministic tiled square-pattern backgrounds.
//
// Usage:
//
//	squarebg render            - Render one background to a PNG file
//	squarebg tiles             - Export a block of tiles as PNG files
//	squarebg serve             - Serve backgrounds and tiles over HTTP
//	squarebg display           - Show a section full screen on the framebuffer
//	squarebg config dump       - Print the resolved configuration
//	squarebg presets           - List the built-in section presets
//
// Global flags:
//
//	--config <path>     - YAML config file (default: squarebg.yaml)
//	--debug             - Debug logging, also written to ./squarebg-debug.log
//	--stdio-log <path>  - Redirect stdout+stderr to a file (or SQUAREBG_STDIO_LOG)
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sugallat/squarebg/internal/app"
	"github.com/sugallat/squarebg/internal/config"
	"github.com/sugallat/squarebg/internal/pattern"
)

const debugLogPath = "./squarebg-debug.log"

var (
	// Global flags
	flagConfig   string
	flagDebug    bool
	flagStdioLog string

	logger app.Logger = app.NoopLogger{}
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "squarebg",
	Short: "Deterministic square-pattern backgrounds",
	Long: `squarebg draws the tiled rounded-square backgrounds used behind page
sections. The same seed and options always produce the same pixels, and
every tile can be rendered on its own.

Examples:
  squarebg render --section hero --width 1920 --height 1080 --dpr 2
  squarebg tiles --section footer --cols 8 --rows 4 --out ./tiles
  squarebg serve --listen :8080
  squarebg display --caption "Sugallat"`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", config.DefaultPath, "YAML config file (missing file means defaults)")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "enable debug logging, also to "+debugLogPath)
	rootCmd.PersistentFlags().StringVar(&flagStdioLog, "stdio-log", "", "redirect stdout+stderr (including panics) to this file; also configurable via SQUAREBG_STDIO_LOG")

	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(tilesCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(displayCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(presetsCmd)
}

func setup(cmd *cobra.Command, _ []string) error {
	// Best-effort: redirect all stdout/stderr output (including panic stack traces)
	// to a file so crashes are diagnosable even when the console is left in graphics mode.
	logPath := flagStdioLog
	if logPath == "" {
		logPath = os.Getenv("SQUAREBG_STDIO_LOG")
	}
	if logPath != "" {
		if err := redirectStdIO(logPath); err != nil {
			fmt.Fprintln(os.Stderr, "stdio log redirect error:", err)
		}
	}

	charm := app.NewCharmLogger(os.Stderr, flagDebug)
	logger = charm
	if flagDebug {
		f, err := openAppendLog(debugLogPath)
		if err != nil {
			charm.Errorf("main", "debug log open error: %v", err)
			return nil
		}
		logger = app.Tee(charm, app.NewFileLogger(f))
		logger.Infof("main", "debug logging enabled")
	}
	return nil
}

// loadConfig reads and validates --config.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s:\n%w", flagConfig, err)
	}
	return cfg, nil
}

// sectionOptions picks a section from cfg and applies a --seed override.
func sectionOptions(cfg *config.Config, section, seed string, seedSet bool) (pattern.Options, error) {
	if section == "" {
		section = cfg.DefaultSection
	}
	opts, ok := cfg.Sections[section]
	if !ok {
		return pattern.Options{}, fmt.Errorf("unknown section %q (configured: %v)", section, cfg.SectionNames())
	}
	if seedSet {
		opts.Seed = pattern.Ptr(pattern.StringSeed(seed))
	}
	return opts, nil
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func openAppendLog(path string) (*os.File, error) {
	return os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
}

func configFileExists() bool {
	_, err := os.Stat(flagConfig)
	return err == nil
}
