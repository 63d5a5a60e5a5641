package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/rovshanmuradov/pairdash/internal/api"
	"github.com/rovshanmuradov/pairdash/internal/config"
	"github.com/rovshanmuradov/pairdash/internal/dashboard"
	"github.com/rovshanmuradov/pairdash/internal/export"
	"github.com/rovshanmuradov/pairdash/internal/logger"
	"github.com/rovshanmuradov/pairdash/internal/metrics"
	"github.com/rovshanmuradov/pairdash/internal/ui"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "", "Path to config file (yaml or json)")
	pairID := flag.Int("pair", 0, "Pair id to open on start")
	flag.Parse()

	// Create context with signal handling
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *pairID != 0 {
		cfg.DefaultPairID = *pairID
	}

	// Initialize logger; the terminal belongs to the TUI
	logBuffer := logger.NewLogBuffer(cfg.LogBufferSize)
	logFile := logger.NewRotatingFile(logger.DefaultRotationConfig(cfg.LogFile))
	defer logFile.Close()

	appLogger, err := logger.CreateTUILogger(cfg.DebugLogging, logBuffer, logFile)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer func() {
		_ = appLogger.Sync()
	}()

	appLogger.Info("Starting pairdash", zap.String("base_url", cfg.BaseURL))

	var (
		apiRecorder     api.Recorder
		refreshRecorder dashboard.Recorder
	)
	if cfg.MetricsAddr != "" {
		collector := metrics.NewCollector()
		apiRecorder, refreshRecorder = collector, collector
		go func() {
			if err := collector.Serve(rootCtx, cfg.MetricsAddr, appLogger.Named("metrics")); err != nil {
				appLogger.Error("Metrics endpoint failed", zap.Error(err))
			}
		}()
	}

	client := api.New(cfg, appLogger, apiRecorder)
	controller := dashboard.NewController(client, appLogger, refreshRecorder, cfg.OrdersLimit)
	sender := ui.NewUpdateSender(ui.Bus, appLogger.Named("ui_updates"))
	defer sender.Close()

	services := ui.NewRealServiceProvider(
		rootCtx,
		cfg,
		appLogger,
		controller,
		export.NewExporter(appLogger),
		logBuffer,
		sender.SendResult,
	)
	defer services.StopWatching()

	handler := ui.NewRecoveryHandler(appLogger, func() (tea.Model, []tea.ProgramOption) {
		app := NewAppModel(services, cfg.DefaultPairID)
		return ui.NewSafeUIWrapper(app, appLogger), []tea.ProgramOption{
			tea.WithAltScreen(),
			// signals are handled by rootCtx below
			tea.WithoutSignalHandler(),
		}
	})

	// Quit the program on shutdown signal
	go func() {
		<-rootCtx.Done()
		handler.Stop()
	}()

	if err := handler.RunWithRecovery(); err != nil {
		appLogger.Error("TUI application failed", zap.Error(err))
		log.Fatalf("TUI application failed: %v", err)
	}

	sent, dropped := sender.GetStats()
	appLogger.Info("Shutting down pairdash",
		zap.Uint64("updates_sent", sent),
		zap.Uint64("updates_dropped", dropped))

	// The alternate screen hid the log pane; repeat the last errors
	for _, entry := range logBuffer.GetByLevel(zapcore.ErrorLevel, 5) {
		fmt.Fprintf(os.Stderr, "%s  %s\n", entry.Timestamp.Format("15:04:05"), entry.Message)
	}
}
