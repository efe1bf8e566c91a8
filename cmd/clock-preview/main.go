// Command clock-preview renders one overlay frame to a PNG file without
// an X server. It uses the same config file, font chain and renderer as
// the overlay, so it is handy for tuning colors and sizes.
package main

import (
	"context"
	"fmt"
	"image/png"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"clock-overlay/internal/clock"
	"clock-overlay/internal/config"
	"clock-overlay/internal/fonts"
	"clock-overlay/internal/render"
)

type options struct {
	configPath string
	output     string
	at         string
	verbose    bool
}

func main() {
	if err := newCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:           "clock-preview",
		Short:         "Render a clock overlay frame to PNG",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.configPath, "config", "", "config file (default ~/.clock-overlay/config.yaml)")
	f.StringVarP(&opts.output, "output", "o", "clock.png", "output file, - for stdout")
	f.StringVar(&opts.at, "time", "", "time to render as HH:MM (default now)")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "log font resolution")
	return cmd
}

func run(cmd *cobra.Command, opts *options) error {
	configSvc, err := config.New(opts.configPath)
	if err != nil {
		return err
	}

	text, err := previewText(opts.at, clock.Real)
	if err != nil {
		return err
	}

	level := slog.LevelWarn
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	var w io.Writer = cmd.OutOrStdout()
	if opts.output != "-" {
		file, err := os.Create(opts.output)
		if err != nil {
			return fmt.Errorf("failed to create output: %w", err)
		}
		defer file.Close()
		w = file
	}

	if err := writePreview(cmd.Context(), w, configSvc.Get().Overlay, text, logger); err != nil {
		return err
	}
	if opts.output != "-" {
		logger.Info("wrote preview", "file", opts.output, "text", text)
	}
	return nil
}

// previewText validates an explicit HH:MM value or formats the clock's
// current time.
func previewText(at string, clk clock.Clock) (string, error) {
	if at == "" {
		return clock.Format(clk.Now()), nil
	}
	t, err := time.Parse(clock.Layout, at)
	if err != nil {
		return "", fmt.Errorf("invalid --time %q: want HH:MM", at)
	}
	return t.Format(clock.Layout), nil
}

func writePreview(ctx context.Context, w io.Writer, oc config.OverlayConfig, text string, logger *slog.Logger) error {
	loaded, err := fonts.New(oc.FontPath, logger).Load(ctx, oc.FontFamily, oc.FontSize)
	if err != nil {
		return err
	}
	defer loaded.Face.Close()
	logger.Debug("font loaded", "source", loaded.Source)

	textColor, err := render.ParseColor(oc.TextColor)
	if err != nil {
		return err
	}
	strokeColor, err := render.ParseColor(oc.StrokeColor)
	if err != nil {
		return err
	}

	r := render.New(render.Options{
		Width:       oc.Width,
		Height:      oc.Height,
		Face:        loaded.Face,
		TextColor:   textColor,
		StrokeColor: strokeColor,
		StrokeWidth: oc.StrokeWidth,
	})
	return png.Encode(w, r.Frame(text))
}
