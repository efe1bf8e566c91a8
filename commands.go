package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"clock-overlay/internal/config"
	"clock-overlay/internal/display"
	"clock-overlay/internal/monitor"
)

const (
	appName = "clock-overlay"
	version = "0.1.0"
)

type rootOptions struct {
	configPath string
	logLevel   string
	display    string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Always-on-top transparent clock overlay for X11",
		Long: `clock-overlay shows the current time (HH:MM) in a small borderless,
click-through window that stays above other windows at a monitor's origin.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOverlay(cmd, opts)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "config file (default ~/.clock-overlay/config.yaml)")
	pf.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.StringVar(&opts.display, "display", "", "X display to connect to (default $DISPLAY)")

	f := cmd.Flags()
	f.Int("monitor", 0, "RandR output index, -1 for the primary output")
	f.String("font", "", "font family")
	f.String("font-file", "", "font file, tried before the family")
	f.Float64("font-size", 0, "font size in points")
	f.String("color", "", "text color name or #rrggbb")
	f.String("stroke-color", "", "outline color name or #rrggbb")
	f.Int("stroke-width", 0, "outline width in pixels")

	cmd.AddCommand(newMonitorsCmd(opts), newConfigCmd(opts), newVersionCmd())
	return cmd
}

// loadConfig reads the config file and applies persistent flag overrides
func loadConfig(opts *rootOptions) (*config.Service, error) {
	svc, err := config.New(opts.configPath)
	if err != nil {
		return nil, err
	}
	cfg := svc.Get()
	if opts.display != "" {
		cfg.Display = opts.display
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	return svc, nil
}

// applyFlags copies explicitly set overlay flags over the config
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	f := cmd.Flags()
	o := &cfg.Overlay
	var err error

	if f.Changed("monitor") {
		o.Monitor, err = f.GetInt("monitor")
	}
	if err == nil && f.Changed("font") {
		o.FontFamily, err = f.GetString("font")
	}
	if err == nil && f.Changed("font-file") {
		o.FontPath, err = f.GetString("font-file")
	}
	if err == nil && f.Changed("font-size") {
		o.FontSize, err = f.GetFloat64("font-size")
	}
	if err == nil && f.Changed("color") {
		o.TextColor, err = f.GetString("color")
	}
	if err == nil && f.Changed("stroke-color") {
		o.StrokeColor, err = f.GetString("stroke-color")
	}
	if err == nil && f.Changed("stroke-width") {
		o.StrokeWidth, err = f.GetInt("stroke-width")
	}
	if err != nil {
		return err
	}
	return cfg.Validate()
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

func runOverlay(cmd *cobra.Command, opts *rootOptions) error {
	configSvc, err := loadConfig(opts)
	if err != nil {
		return err
	}
	if err := applyFlags(cmd, configSvc.Get()); err != nil {
		return err
	}

	logger := newLogger(configSvc.Get().Log.Level)
	slog.SetDefault(logger)

	ctx, stop := notifyContext(cmd.Context())
	defer stop()

	app := NewApp(configSvc, logger)
	defer app.OnShutdown()

	if err := app.OnStartup(ctx); err != nil {
		return err
	}
	return app.Run(ctx)
}

func newMonitorsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "monitors",
		Short: "List RandR outputs and their origins",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			configSvc, err := loadConfig(opts)
			if err != nil {
				return err
			}
			logger := newLogger(configSvc.Get().Log.Level)

			conn, err := display.Connect(configSvc.Get().Display, logger)
			if err != nil {
				return err
			}
			defer conn.Close()

			q, err := monitor.NewRandR(conn, display.Root(conn))
			if err != nil {
				return err
			}
			monitors, err := monitor.List(q)
			if err != nil {
				return err
			}

			writeMonitors(cmd.OutOrStdout(), monitors)
			return nil
		},
	}
}

// writeMonitors prints one tab-separated line per output: index, name,
// connection state and geometry.
func writeMonitors(w io.Writer, monitors []monitor.Monitor) {
	for _, m := range monitors {
		conn := "disconnected"
		if m.Connected {
			conn = "connected"
		}
		geometry := "inactive"
		if m.Active {
			geometry = fmt.Sprintf("%dx%d+%d+%d", m.Bounds.Dx(), m.Bounds.Dy(), m.Bounds.Min.X, m.Bounds.Min.Y)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", m.Index, m.Name, conn, geometry)
	}
}

func newConfigCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create the configuration file",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the effective configuration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				configSvc, err := loadConfig(opts)
				if err != nil {
					return err
				}
				return yaml.NewEncoder(cmd.OutOrStdout()).Encode(configSvc.Get())
			},
		},
		&cobra.Command{
			Use:   "path",
			Short: "Print the configuration file location",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				configSvc, err := loadConfig(opts)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), configSvc.Path())
				return nil
			},
		},
		&cobra.Command{
			Use:   "init",
			Short: "Write the default configuration if none exists",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				configSvc, err := loadConfig(opts)
				if err != nil {
					return err
				}
				if _, err := os.Stat(configSvc.Path()); err == nil {
					return fmt.Errorf("config already exists at %s", configSvc.Path())
				}
				if err := configSvc.Save(); err != nil {
					return fmt.Errorf("failed to write config: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", configSvc.Path())
				return nil
			},
		},
	)
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", appName, version)
		},
	}
}
