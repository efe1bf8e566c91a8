package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/sync/errgroup"

	"clock-overlay/internal/cache"
	"clock-overlay/internal/clock"
	"clock-overlay/internal/config"
	"clock-overlay/internal/display"
	"clock-overlay/internal/fonts"
	"clock-overlay/internal/monitor"
	"clock-overlay/internal/overlay"
	"clock-overlay/internal/render"
)

var errDisplayClosed = errors.New("display connection closed")

// surface is the part of display.Surface the render loop draws on
type surface interface {
	Clear()
	Present(data []byte) error
	ByteOrderLSBFirst() bool
	LookupColor(name string) (color.RGBA, error)
	Events(ctx context.Context) <-chan display.Event
	Close()
}

// App holds everything the overlay needs while it runs
type App struct {
	config   *config.Service
	logger   *slog.Logger
	clock    clock.Clock
	cache    *cache.Service
	overlay  *overlay.Service
	ticker   *clock.Ticker
	face     font.Face
	renderer *render.Renderer
	surface  surface
}

// NewApp creates a new App application struct
func NewApp(configSvc *config.Service, logger *slog.Logger) *App {
	return &App{
		config: configSvc,
		logger: logger,
		clock:  clock.Real,
	}
}

// OnStartup connects to the display, creates the window and loads the
// font and colors. Any failure is fatal.
func (a *App) OnStartup(ctx context.Context) error {
	cfg := a.config.Get()
	oc := cfg.Overlay

	conn, err := display.Connect(cfg.Display, a.logger)
	if err != nil {
		return err
	}

	q, err := monitor.NewRandR(conn, display.Root(conn))
	origin := a.monitorOrigin(q, err, oc.Monitor)

	s, err := display.New(conn, display.Options{
		Origin: origin,
		Width:  oc.Width,
		Height: oc.Height,
	}, a.logger)
	if err != nil {
		return err
	}
	a.surface = s

	loaded, err := fonts.New(oc.FontPath, a.logger).Load(ctx, oc.FontFamily, oc.FontSize)
	if err != nil {
		return err
	}
	a.face = loaded.Face

	textColor, err := a.resolveColor(oc.TextColor)
	if err != nil {
		return err
	}
	strokeColor, err := a.resolveColor(oc.StrokeColor)
	if err != nil {
		return err
	}

	a.renderer = render.New(render.Options{
		Width:       oc.Width,
		Height:      oc.Height,
		Face:        a.face,
		TextColor:   textColor,
		StrokeColor: strokeColor,
		StrokeWidth: oc.StrokeWidth,
	})
	a.cache = cache.New(oc.CacheSize)
	a.overlay = overlay.New()
	a.ticker = clock.NewTicker(a.clock, a.overlay, oc.Interval, a.logger)

	a.logger.Info("overlay started",
		"x", origin.X, "y", origin.Y, "width", oc.Width, "height", oc.Height,
		"font", loaded.Source, "size", oc.FontSize)
	return nil
}

// monitorOrigin returns the window position for monitor index. Lookup
// failures are logged and leave the window at the screen origin.
func (a *App) monitorOrigin(q monitor.Querier, qerr error, index int) image.Point {
	var origin image.Point
	if qerr != nil {
		a.logger.Error("monitor lookup failed", "error", qerr)
		return origin
	}
	monitor.Apply(q, index, &origin, a.logger)
	return origin
}

// Run drives the ticker and the render loop until ctx is cancelled
func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return a.ticker.Run(gctx)
	})
	g.Go(func() error {
		return a.renderLoop(gctx)
	})

	return g.Wait()
}

// OnShutdown releases everything OnStartup acquired
func (a *App) OnShutdown() {
	if a.surface != nil {
		a.surface.Close()
	}
	if a.face != nil {
		a.face.Close()
	}
	if a.cache != nil {
		stats := a.cache.Stats()
		a.logger.Debug("frame cache", "size", stats.Size, "hits", stats.Hits, "misses", stats.Misses)
	}
	a.logger.Info("overlay stopped")
}

// renderLoop owns every drawing call. It closes the surface on exit so
// the event pump sees the connection close and stops.
func (a *App) renderLoop(ctx context.Context) error {
	defer a.surface.Close()
	events := a.surface.Events(ctx)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-a.ticker.Ticks():
			a.redraw()
		case ev, ok := <-events:
			if !ok {
				return errDisplayClosed
			}
			a.handleEvent(ev)
		}
	}
}

func (a *App) handleEvent(ev display.Event) {
	switch ev.Kind {
	case display.EventExpose:
		if ev.Last {
			a.redraw()
		}
	case display.EventEnter, display.EventLeave:
		a.overlay.SetPointerInside(ev.Kind == display.EventEnter)
		a.logger.Debug("pointer crossing", "event", ev.Kind)
	case display.EventError:
		a.logger.Error("X protocol error", "error", ev.Err)
	}
}

func (a *App) redraw() {
	frame := a.cache.GetOrCreate(a.overlay.Text(), a.buildFrame)
	a.surface.Clear()
	if err := a.surface.Present(frame.Data); err != nil {
		a.logger.Error("failed to present frame", "error", err)
		return
	}
	a.overlay.MarkRedrawn()
}

func (a *App) buildFrame(text string) *cache.Frame {
	return &cache.Frame{
		Text: text,
		Data: render.EncodeZPixmap(a.renderer.Frame(text), a.surface.ByteOrderLSBFirst()),
	}
}

// resolveColor asks the X server first so names match the X color
// database, then falls back to built-in names and hex values.
func (a *App) resolveColor(name string) (color.RGBA, error) {
	c, err := a.surface.LookupColor(name)
	if err == nil {
		return c, nil
	}
	a.logger.Debug("server color lookup failed", "color", name, "error", err)

	c, perr := render.ParseColor(name)
	if perr != nil {
		return color.RGBA{}, fmt.Errorf("failed to resolve color %q: %w", name, errors.Join(err, perr))
	}
	return c, nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
