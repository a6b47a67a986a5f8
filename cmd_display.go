package main

import (
	"github.com/spf13/cobra"

	"github.com/sugallat/squarebg/internal/display"
	"github.com/sugallat/squarebg/internal/state"
	"github.com/sugallat/squarebg/internal/system"
	"github.com/sugallat/squarebg/internal/web"
)

var (
	flagDevice       string
	flagDisplaySect  string
	flagCaption      string
	flagQRURL        string
	flagDisplayServe bool
	flagKeepConsole  bool
)

var displayCmd = &cobra.Command{
	Use:   "display",
	Short: "Show a section full screen on the framebuffer",
	Long: `Draw a section's background over the whole Linux framebuffer, with an
optional centred caption and a QR code in the bottom-right corner.

The console is switched to graphics mode and the cursor hidden until exit.
Press F4 or send SIGINT/SIGTERM to quit. Config edits redraw the screen.

Examples:
  squarebg display
  squarebg display --section footer --caption "Sugallat" --qr-url https://example.com
  squarebg display --serve`,
	Args: cobra.NoArgs,
	RunE: runDisplay,
}

func init() {
	displayCmd.Flags().StringVar(&flagDevice, "device", "", "framebuffer device (default: display.device)")
	displayCmd.Flags().StringVar(&flagDisplaySect, "section", "", "section to show (default: display.section, then default_section)")
	displayCmd.Flags().StringVar(&flagCaption, "caption", "", "caption text (default: display.caption)")
	displayCmd.Flags().StringVar(&flagQRURL, "qr-url", "", "URL encoded in the QR code (default: display.qr_url)")
	displayCmd.Flags().BoolVar(&flagDisplayServe, "serve", false, "also run the HTTP server")
	displayCmd.Flags().BoolVar(&flagKeepConsole, "keep-console", false, "leave the console mode and cursor alone")
}

func runDisplay(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("device") {
		cfg.Display.Device = flagDevice
	}
	if flags.Changed("section") {
		cfg.Display.Section = flagDisplaySect
	}
	if flags.Changed("caption") {
		cfg.Display.Caption = flagCaption
	}
	if flags.Changed("qr-url") {
		cfg.Display.QRURL = flagQRURL
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	overlay, err := display.NewOverlay(cfg.Display.Caption, cfg.Display.QRURL)
	if err != nil {
		logger.Errorf("fb", "caption font parse failed, using basicfont: %v", err)
	}
	fb := display.NewFBDisplay(cfg.Display.Device, cfg.Display.DPR)
	fb.Overlay = overlay
	fb.Logger = logger

	store := state.NewStore()
	var server web.Server
	if flagDisplayServe {
		httpServer := web.NewHTTPServer(cfg.Server, store)
		httpServer.Logger = logger
		server = httpServer
	}
	a := newApp(store, server, fb, cfg)

	if !flagKeepConsole {
		restore := system.TakeConsole(logger)
		defer restore()
	}

	ctx, stop := signalContext()
	defer stop()
	system.StartExitOnF4(ctx, logger, func() { a.Exit(nil) })
	return a.Start(ctx)
}
