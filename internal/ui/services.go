package ui

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/rovshanmuradov/pairdash/internal/config"
	"github.com/rovshanmuradov/pairdash/internal/dashboard"
	"github.com/rovshanmuradov/pairdash/internal/export"
	"github.com/rovshanmuradov/pairdash/internal/logger"
)

// ServiceProvider gives screens access to the dashboard and its helpers
type ServiceProvider interface {
	GetDashboard() *dashboard.Controller
	GetExporter() *export.Exporter
	GetLogBuffer() *logger.LogBuffer
	GetLogger() *zap.Logger
	GetConfig() *config.Config
	GetContext() context.Context

	// Watch keeps a poller running for the given selection generation.
	// Calling it again for the same generation is a no-op; a new
	// generation replaces the running poller.
	Watch(generation uint64)
	// Restart replaces the running poller with a fresh one, which
	// refreshes immediately and starts with the base interval.
	Restart()
	// StopWatching stops the running poller, if any.
	StopWatching()
}

// RealServiceProvider implements ServiceProvider
type RealServiceProvider struct {
	ctx        context.Context
	cfg        *config.Config
	logger     *zap.Logger
	controller *dashboard.Controller
	exporter   *export.Exporter
	logs       *logger.LogBuffer
	onResult   func(dashboard.Result)

	mu         sync.Mutex
	cancel     context.CancelFunc
	done       chan struct{}
	generation uint64
}

// NewRealServiceProvider creates a service provider. Poller results are
// handed to onResult, normally UpdateSender.SendResult.
func NewRealServiceProvider(
	ctx context.Context,
	cfg *config.Config,
	logger *zap.Logger,
	controller *dashboard.Controller,
	exporter *export.Exporter,
	logs *logger.LogBuffer,
	onResult func(dashboard.Result),
) *RealServiceProvider {
	return &RealServiceProvider{
		ctx:        ctx,
		cfg:        cfg,
		logger:     logger.Named("ui_services"),
		controller: controller,
		exporter:   exporter,
		logs:       logs,
		onResult:   onResult,
	}
}

func (p *RealServiceProvider) GetDashboard() *dashboard.Controller { return p.controller }
func (p *RealServiceProvider) GetExporter() *export.Exporter       { return p.exporter }
func (p *RealServiceProvider) GetLogBuffer() *logger.LogBuffer     { return p.logs }
func (p *RealServiceProvider) GetLogger() *zap.Logger              { return p.logger }
func (p *RealServiceProvider) GetConfig() *config.Config           { return p.cfg }
func (p *RealServiceProvider) GetContext() context.Context         { return p.ctx }

// Watch implements ServiceProvider
func (p *RealServiceProvider) Watch(generation uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cancel != nil && p.generation == generation {
		return
	}
	p.startLocked(generation)
}

// Restart implements ServiceProvider
func (p *RealServiceProvider) Restart() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.startLocked(p.generation)
}

// StopWatching implements ServiceProvider
func (p *RealServiceProvider) StopWatching() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopLocked()
}

func (p *RealServiceProvider) stopLocked() {
	if p.cancel == nil {
		return
	}
	p.cancel()
	<-p.done
	p.cancel = nil
	p.done = nil
}

func (p *RealServiceProvider) startLocked(generation uint64) {
	p.stopLocked()

	ctx, cancel := context.WithCancel(p.ctx)
	done := make(chan struct{})
	p.cancel = cancel
	p.done = done
	p.generation = generation

	poller := dashboard.NewPoller(
		p.controller,
		p.cfg.Interval(),
		p.cfg.MaxInterval(),
		p.logger,
		p.onResult,
	)

	p.logger.Debug("Poller started", zap.Uint64("generation", generation))
	go func() {
		defer close(done)
		if err := poller.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			p.logger.Warn("Poller stopped", zap.Error(err))
			PublishError(err, "Polling stopped")
		}
	}()
}
