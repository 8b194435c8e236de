package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/imhyo/lg-foss/internal/config"
	"github.com/imhyo/lg-foss/internal/engine"
	"github.com/imhyo/lg-foss/internal/server"
	"github.com/imhyo/lg-foss/internal/source"
)

var (
	configPath string
	logger     *zap.Logger
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "workhours",
		Short: "Weekly working-hours dashboard",
		Long:  "Aggregate calendar events into a per-week actual vs. expected working-hours report",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load config to get log file path
			cfg, err := config.Load(configPath)
			if err == nil && cfg.Log.File != "" {
				logger, err = initFileLogger(cfg.Log.File, cfg.Log.Level)
				if err != nil {
					initLogger() // Fallback to console
				}
			} else {
				initLogger() // Default console logger
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "Config file path")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(reportCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			handler, err := initializeHandler(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			router := server.NewRouter(handler, cfg.Server.AllowedOrigins)
			srv := &http.Server{
				Addr:         cfg.Server.ListenAddr,
				Handler:      router,
				ReadTimeout:  10 * time.Second,
				WriteTimeout: 30 * time.Second,
			}

			logger.Info("Starting dashboard server",
				zap.String("addr", cfg.Server.ListenAddr),
				zap.String("source", cfg.Calendar.Source))

			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.ListenAndServe()
			}()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("server failed: %w", err)
				}
			case sig := <-sigCh:
				logger.Info("Shutting down", zap.String("signal", sig.String()))
				ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if err := srv.Shutdown(ctx); err != nil {
					return fmt.Errorf("shutdown failed: %w", err)
				}
			}

			return nil
		},
	}
}

func reportCmd() *cobra.Command {
	var user string
	var year int

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the week calendar for a user and year",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			if user == "" {
				user = cfg.Report.DefaultUser
			}
			if year == 0 {
				year = time.Now().Year()
			}

			agg, err := initializeAggregator(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			weeks, err := agg.WeekCalendar(cmd.Context(), user, year)
			if err != nil {
				return fmt.Errorf("aggregation failed: %w", err)
			}

			fmt.Printf("Week calendar for %s, %d\n", user, year)
			fmt.Println("  Week start | Week end   | Actual | Expected")
			fmt.Println("-------------+------------+--------+----------")
			var totalActual, totalExpected float64
			for _, w := range weeks {
				fmt.Printf("  %s | %s | %6.1f | %8.1f\n",
					w.Start.Format("2006-01-02"),
					w.End.Format("2006-01-02"),
					w.ActualHours,
					w.ExpectedHours)
				totalActual += w.ActualHours
				totalExpected += w.ExpectedHours
			}
			fmt.Println("-------------+------------+--------+----------")
			fmt.Printf("  Total                    | %6.1f | %8.1f\n", totalActual, totalExpected)

			return nil
		},
	}

	cmd.Flags().StringVarP(&user, "user", "u", "", "Nickname to report on (default from config)")
	cmd.Flags().IntVarP(&year, "year", "y", 0, "Year to report on (default current year)")

	return cmd
}

// initializeHandler builds the dashboard handler. The reserved fixture
// user is always served from the built-in fixture, even when the live
// calendar source is configured.
func initializeHandler(ctx context.Context, cfg *config.Config) (*server.Handler, error) {
	live, err := initializeAggregator(ctx, cfg)
	if err != nil {
		return nil, err
	}

	fixture := engine.NewAggregator(
		source.NewFixtureSource(source.Fixture2015(), cfg.Calendar.PageSize, logger),
		cfg.Calendar.CalendarID,
		logger,
	)

	authorize := server.AllowList(cfg.Server.AllowedUsers)

	return server.NewHandler(live, fixture, authorize, logger), nil
}

func initializeAggregator(ctx context.Context, cfg *config.Config) (*engine.Aggregator, error) {
	var src source.Source

	switch cfg.Calendar.Source {
	case config.SourceFixture:
		logger.Info("Using built-in fixture calendar")
		src = source.NewFixtureSource(source.Fixture2015(), cfg.Calendar.PageSize, logger)

	case config.SourceGoogle:
		logger.Info("Using Google Calendar API",
			zap.String("calendar_id", cfg.Calendar.CalendarID))
		googleSrc, err := source.NewGoogleSource(ctx, cfg.Calendar.CredentialsFile, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize google calendar: %w", err)
		}
		src = googleSrc

	case config.SourceICS:
		logger.Info("Using ICS file calendar",
			zap.String("file", cfg.Calendar.ICSFile))
		icsSrc := source.NewICSSource(cfg.Calendar.ICSFile, cfg.Calendar.PageSize, logger)
		if err := icsSrc.Load(); err != nil {
			return nil, fmt.Errorf("failed to load ics file: %w", err)
		}
		src = icsSrc

	default:
		return nil, fmt.Errorf("unknown calendar source: %s", cfg.Calendar.Source)
	}

	return engine.NewAggregator(src, cfg.Calendar.CalendarID, logger), nil
}

func initLogger() {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	var err error
	logger, err = config.Build()
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
}

func initFileLogger(logFile string, level string) (*zap.Logger, error) {
	// Setup lumberjack for log rotation
	logWriter := &lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    100,  // MB
		MaxBackups: 3,    // Keep max 3 old log files
		MaxAge:     28,   // days
		Compress:   true, // Compress old logs with gzip
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		zapLevel = zapcore.InfoLevel
	}

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(logWriter),
		zapLevel,
	)

	return zap.New(core), nil
}
