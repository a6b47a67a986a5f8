package app

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sugallat/squarebg/internal/config"
	"github.com/sugallat/squarebg/internal/debounce"
	"github.com/sugallat/squarebg/internal/pattern"
	"github.com/sugallat/squarebg/internal/state"
	"github.com/sugallat/squarebg/internal/web"
)

// Display is a full-screen output that shows one section.
type Display interface {
	Start(ctx context.Context) error
	Stop() error
	Redraw(opts pattern.Options) error
}

type App struct {
	Store   *state.Store
	Web     web.Server
	Display Display
	Logger  Logger

	// ConfigPath is reloaded on change when Watch is set. Bursts of edits
	// within ReloadDelay are applied once.
	ConfigPath  string
	Watch       bool
	ReloadDelay time.Duration

	mu             sync.Mutex
	displaySection string
	displayOn      atomic.Bool
	pending        atomic.Pointer[config.Config]

	exitOnce atomic.Bool
	exitCh   chan error
}

func New(store *state.Store, webServer web.Server, display Display) *App {
	return &App{Store: store, Web: webServer, Display: display, Logger: NoopLogger{}, exitCh: make(chan error, 1)}
}

// Exit requests the app to stop running.
func (app *App) Exit(err error) {
	if app.exitCh == nil {
		return
	}
	if !app.exitOnce.CompareAndSwap(false, true) {
		return
	}
	select {
	case app.exitCh <- err:
	default:
	}
}

// Apply makes cfg the active configuration and redraws the display.
func (app *App) Apply(cfg *config.Config) {
	gen := app.Store.Replace(cfg.Sections, cfg.DefaultSection)
	app.mu.Lock()
	app.displaySection = cfg.DisplaySection()
	app.mu.Unlock()
	app.Logger.Infof("app", "config generation %d: %d sections, default %q", gen, len(cfg.Sections), cfg.DefaultSection)
	app.redraw()
}

// Start runs the web server, the display and the config watcher until ctx
// is done or Exit is called.
func (app *App) Start(ctx context.Context) error {
	if app.exitCh == nil {
		app.exitCh = make(chan error, 1)
	}
	if app.Logger == nil {
		app.Logger = NoopLogger{}
	}
	app.exitOnce.Store(false)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	if app.Web != nil {
		if err := app.Web.Start(runCtx); err != nil {
			app.Logger.Errorf("app", "web server start error: %v", err)
			return err
		}
		defer app.Web.Stop()
	}

	if app.Display != nil {
		if err := app.Display.Start(runCtx); err != nil {
			app.Logger.Errorf("app", "display start error: %v", err)
			return err
		}
		app.displayOn.Store(true)
		defer func() {
			app.displayOn.Store(false)
			_ = app.Display.Stop()
		}()
		app.redraw()
	}

	app.Store.SetPhase(state.READY)
	defer app.Store.SetPhase(state.STOPPED)

	group, gctx := errgroup.WithContext(runCtx)
	if app.Watch && app.ConfigPath != "" {
		reload := debounce.New(app.ReloadDelay, app.applyPending)
		defer reload.Stop()
		group.Go(func() error {
			return config.Watch(gctx, app.ConfigPath, app.Logger, func(cfg *config.Config) {
				app.pending.Store(cfg)
				app.Store.SetPhase(state.RELOADING)
				reload.Trigger()
			})
		})
	}
	group.Go(func() error {
		defer cancel()
		select {
		case <-gctx.Done():
			return nil
		case err := <-app.exitCh:
			return err
		}
	})
	return group.Wait()
}

func (app *App) applyPending() {
	cfg := app.pending.Swap(nil)
	if cfg == nil {
		return
	}
	app.Apply(cfg)
	app.Store.SetPhase(state.READY)
}

func (app *App) redraw() {
	if app.Display == nil || !app.displayOn.Load() {
		return
	}
	app.mu.Lock()
	name := app.displaySection
	app.mu.Unlock()

	opts, ok := app.Store.Snapshot().Section(name)
	if !ok {
		app.Logger.Errorf("app", "display section %q is not configured", name)
		return
	}
	if err := app.Display.Redraw(opts); err != nil {
		app.Logger.Errorf("app", "display redraw error: %v", err)
	}
}
