package clock

import (
	"context"
	"log/slog"
	"time"

	"clock-overlay/internal/overlay"
)

// Ticker publishes the formatted time to the overlay once per interval
// and signals the render loop through Ticks.
type Ticker struct {
	clock    Clock
	overlay  *overlay.Service
	interval time.Duration
	ticks    chan struct{}
	logger   *slog.Logger
}

// NewTicker creates a ticker. A zero interval means one second.
func NewTicker(clk Clock, overlaySvc *overlay.Service, interval time.Duration, logger *slog.Logger) *Ticker {
	if interval <= 0 {
		interval = time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Ticker{
		clock:    clk,
		overlay:  overlaySvc,
		interval: interval,
		ticks:    make(chan struct{}, 1),
		logger:   logger.With("component", "ticker"),
	}
}

// Ticks delivers one value per published update. Pending ticks coalesce,
// so a slow reader sees at most one queued tick.
func (t *Ticker) Ticks() <-chan struct{} {
	return t.ticks
}

// Run ticks until ctx is cancelled. The first update happens immediately.
func (t *Ticker) Run(ctx context.Context) error {
	t.logger.Debug("ticker started", "interval", t.interval)
	defer t.logger.Debug("ticker stopped")

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	t.tick()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			t.tick()
		}
	}
}

func (t *Ticker) tick() {
	text := Format(t.clock.Now())
	if t.overlay.SetText(text) {
		t.logger.Debug("time changed", "text", text)
	}

	select {
	case t.ticks <- struct{}{}:
	default:
	}
}
