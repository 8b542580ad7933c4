package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"chartline-trader/internal/analysis"
	"chartline-trader/internal/config"
	"chartline-trader/internal/extract"
	"chartline-trader/internal/logging"
	"chartline-trader/internal/store"
)

// Version information
const (
	Version   = "0.1.0"
	BuildDate = "2026-10-01"
)

// App holds the application dependencies.
type App struct {
	Config    *config.Config
	ConfigDir string
	Logger    zerolog.Logger
	Store     store.DataStore
	Extractor *extract.Extractor
	Pipeline  *analysis.Pipeline

	storeMu sync.Mutex
}

// NewApp wires the extractor and pipeline from cfg. The store is opened
// lazily by commands that need it.
func NewApp(cfg *config.Config, configDir string, logger zerolog.Logger) (*App, error) {
	exCfg, err := cfg.ExtractorConfig()
	if err != nil {
		return nil, err
	}
	return &App{
		Config:    cfg,
		ConfigDir: configDir,
		Logger:    logger,
		Extractor: extract.NewExtractor(exCfg, logger),
		Pipeline:  analysis.NewPipeline(cfg.Pipeline, logger),
	}, nil
}

// OpenStore opens the run store on first use. [store] enabled only decides
// whether runs are saved without --save.
func (a *App) OpenStore() (store.DataStore, error) {
	a.storeMu.Lock()
	defer a.storeMu.Unlock()
	if a.Store != nil {
		return a.Store, nil
	}
	if a.Config.Store.Path == "" {
		return nil, fmt.Errorf("run store path is not configured")
	}
	s, err := store.NewSQLiteStore(a.Config.Store.Path)
	if err != nil {
		return nil, err
	}
	a.Store = s
	a.Logger.Debug().Str("path", a.Config.Store.Path).Msg("SQLite store initialized")
	return s, nil
}

// Close releases the store.
func (a *App) Close() error {
	a.storeMu.Lock()
	defer a.storeMu.Unlock()
	if a.Store == nil {
		return nil
	}
	err := a.Store.Close()
	a.Store = nil
	return err
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "chartline",
		Short: "Chart snapshot to trendline contract pipeline",
		Long: `chartline reads a candlestick chart snapshot, finds swing highs and lows,
chains them into validated trendlines and emits one trade contract per
trendline with its breakout, order parent and order status.

Use 'chartline analyze <snapshot>' to process a single image or candle CSV.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("config")
			if dir != "" && dir != app.ConfigDir {
				if err := app.reload(dir); err != nil {
					return err
				}
			}
			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				logging.SetDebugLevel()
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return app.Close()
		},
	}

	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/chartline)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	rootCmd.AddCommand(newVersionCmd(app))
	rootCmd.AddCommand(newConfigCmd(app))
	rootCmd.AddCommand(newAnalyzeCmd(app))
	rootCmd.AddCommand(newExportCmd(app))
	rootCmd.AddCommand(newBatchCmd(app))
	rootCmd.AddCommand(newWatchCmd(app))
	rootCmd.AddCommand(newHistoryCmd(app))

	return rootCmd
}

// reload swaps in the configuration found in dir.
func (a *App) reload(dir string) error {
	cfg, err := config.Load(dir)
	if err != nil {
		return err
	}
	next, err := NewApp(cfg, dir, a.Logger)
	if err != nil {
		return err
	}
	_ = a.Close()
	a.Config = next.Config
	a.ConfigDir = next.ConfigDir
	a.Extractor = next.Extractor
	a.Pipeline = next.Pipeline
	return nil
}

func newVersionCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				return app.writeJSON(output, "version", map[string]string{
					"version":    Version,
					"build_date": BuildDate,
				})
			}
			output.Printf("chartline v%s\n", Version)
			output.Dim("Build date: %s", BuildDate)
			return nil
		},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "View and validate application configuration.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(app.Config)
			}
			showConfig(output, app.Config)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			path := filepath.Join(app.configDir(), "config.toml")
			if output.IsJSON() {
				return app.writeJSON(output, "config path", map[string]string{"path": path})
			}
			output.Println(path)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := app.Config.Validate(); err != nil {
				output.Error("Configuration validation failed: %v", err)
				return err
			}
			if _, err := app.Config.ExtractorConfig(); err != nil {
				output.Error("Configuration validation failed: %v", err)
				return err
			}
			if output.IsJSON() {
				return output.JSON(map[string]bool{"valid": true})
			}
			output.Success("Configuration is valid")
			return nil
		},
	})

	return cmd
}

// writeJSON writes v as JSON and logs a failed write.
func (a *App) writeJSON(output *Output, what string, v interface{}) error {
	if err := output.JSON(v); err != nil {
		a.Logger.Error().Err(err).Str("output", what).Msg("Failed to write JSON")
		return err
	}
	return nil
}

// logger returns the logger carried by ctx, or the app logger.
func (a *App) logger(ctx context.Context) zerolog.Logger {
	if logger, ok := logging.LoggerFrom(ctx); ok {
		return logger
	}
	return a.Logger
}

func (a *App) configDir() string {
	if a.ConfigDir != "" {
		return a.ConfigDir
	}
	return config.DefaultConfigDir()
}

func showConfig(output *Output, cfg *config.Config) {
	p := cfg.Pipeline
	output.Bold("Pipeline")
	output.Printf("  Start Number:      %d\n", p.StartNumber)
	output.Printf("  Left Required:     %d\n", p.LeftRequired)
	output.Printf("  Right Required:    %d\n", p.RightRequired)
	output.Printf("  Trendline Pos:     %d\n", p.MainTrendlinePosition)
	output.Printf("  Distance:          %d\n", p.DistanceThreshold)
	output.Printf("  Num Contracts:     %d\n", p.NumContracts)
	output.Printf("  Allow Trailing:    %v\n", p.AllowTrailing)
	output.Println()

	e := cfg.Extract
	output.Bold("Extraction")
	output.Printf("  Finder:            %s\n", e.Finder)
	output.Printf("  Red / Green:       %s / %s\n", e.RedColor, e.GreenColor)
	output.Printf("  Tolerance:         %d\n", e.Tolerance)
	output.Printf("  Min Area:          %d\n", e.MinArea)
	if e.CropWidth > 0 && e.CropHeight > 0 {
		output.Printf("  Crop:              %dx%d+%d+%d\n", e.CropWidth, e.CropHeight, e.CropX, e.CropY)
	}
	output.Println()

	output.Bold("Store")
	output.Printf("  Enabled:           %v\n", cfg.Store.Enabled)
	output.Printf("  Path:              %s\n", cfg.Store.Path)
	output.Println()

	output.Bold("Logging")
	output.Printf("  Level:             %s\n", cfg.Logging.Level)
	output.Printf("  File:              %v (%s)\n", cfg.Logging.File, cfg.Logging.FilePath)
	output.Printf("  Batch Workers:     %d\n", cfg.Batch.Workers)
}
