package main

import (
	"github.com/spf13/cobra"

	"github.com/sugallat/squarebg/internal/app"
	"github.com/sugallat/squarebg/internal/config"
	"github.com/sugallat/squarebg/internal/state"
	"github.com/sugallat/squarebg/internal/web"
)

var (
	flagListen string
	flagDev    bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve backgrounds and tiles over HTTP",
	Long: `Start the HTTP server:

  GET /api/v1/background.png?section=&width=&height=&dpr=&seed=
  GET /api/v1/tiles/{tx}/{ty}.png?section=&dpr=
  GET /api/v1/sections, /api/v1/sections/{name}
  GET /healthz, /metrics
  GET /  (preview page)

Any pattern option can be overridden with a query parameter of the same
snake_case name. The config file is watched and reloaded while serving.

Examples:
  squarebg serve
  squarebg serve --listen 127.0.0.1:9000 --dev`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagListen, "listen", "", "listen address (default: server.listen)")
	serveCmd.Flags().BoolVar(&flagDev, "dev", false, "allow cross-origin requests")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("listen") {
		cfg.Server.Listen = flagListen
	}
	if cmd.Flags().Changed("dev") {
		cfg.Server.Dev = flagDev
	}
	if err := cfg.Server.Validate(); err != nil {
		return err
	}

	store := state.NewStore()
	server := web.NewHTTPServer(cfg.Server, store)
	server.Logger = logger

	a := newApp(store, server, nil, cfg)
	ctx, stop := signalContext()
	defer stop()
	return a.Start(ctx)
}

// newApp wires the shared pieces of serve and display.
func newApp(store *state.Store, server web.Server, display app.Display, cfg *config.Config) *app.App {
	a := app.New(store, server, display)
	a.Logger = logger
	a.ConfigPath = flagConfig
	a.Watch = configFileExists()
	a.Apply(cfg)
	return a
}
