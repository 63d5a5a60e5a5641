// Package dashboard owns the dashboard state: which pair is selected, the
// latest reconciled dataset and the refresh cycle that keeps it current.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rovshanmuradov/pairdash/internal/api"
	"github.com/rovshanmuradov/pairdash/internal/indicator"
	"github.com/rovshanmuradov/pairdash/internal/metrics"
	"github.com/rovshanmuradov/pairdash/internal/model"
	"github.com/rovshanmuradov/pairdash/internal/reconcile"
	"github.com/rovshanmuradov/pairdash/internal/settings"
)

var (
	// ErrNoSelection is returned by operations that need a selected pair.
	ErrNoSelection = errors.New("no pair selected")
	// ErrStale is returned by Refresh when the selection changed while it
	// was running. Its results are discarded.
	ErrStale = errors.New("selection changed during refresh")
	// ErrUnknownPair is returned by Select for an id not in the pair list.
	ErrUnknownPair = errors.New("unknown pair")
	// ErrNoPrice is returned by Sell when no current price is known.
	ErrNoPrice = errors.New("current price unknown")
	// ErrOrderClosed is returned by Sell for an order that is not open.
	ErrOrderClosed = errors.New("order is not open")
)

// API is the subset of the trading API the dashboard uses. *api.Client
// satisfies it.
type API interface {
	Pairs(ctx context.Context) ([]model.TradingPair, error)
	Prices(ctx context.Context, pairID int) (model.PriceSeries, error)
	Orders(ctx context.Context, pairID, limit, offset int) ([]model.Order, error)
	Sell(ctx context.Context, req api.SellRequest) (*api.SellResult, error)
	UpdateSettings(ctx context.Context, settingsID int, req api.UpdateSettingsRequest) error
	ToggleActive(ctx context.Context, pairID int, isActive bool) error
}

// Recorder receives refresh outcomes. *metrics.Collector satisfies it.
type Recorder interface {
	RecordRefresh(result string, duration time.Duration)
}

// Controller serialises access to the ViewModel. It is safe for concurrent
// use.
type Controller struct {
	api      API
	logger   *zap.Logger
	recorder Recorder
	limit    int

	mu       sync.Mutex
	vm       ViewModel
	previous *float64
	inflight map[uint64]context.CancelFunc
	nextID   uint64
}

// NewController creates a controller that pages orders limit at a time.
// recorder may be nil.
func NewController(client API, logger *zap.Logger, recorder Recorder, limit int) *Controller {
	if limit <= 0 {
		limit = 10
	}
	return &Controller{
		api:      client,
		logger:   logger.Named("dashboard"),
		recorder: recorder,
		limit:    limit,
		vm:       ViewModel{Limit: limit},
		inflight: make(map[uint64]context.CancelFunc),
	}
}

// Snapshot returns a copy of the current view model.
func (c *Controller) Snapshot() ViewModel {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.vm.clone()
}

// LoadPairs fetches the pair list and refreshes the selected pair and its
// settings form from it.
func (c *Controller) LoadPairs(ctx context.Context) (ViewModel, error) {
	pairs, err := c.api.Pairs(ctx)
	if err != nil {
		return c.Snapshot(), fmt.Errorf("load pairs: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.vm.Pairs = pairs
	if len(pairs) == 0 {
		c.vm.Warning = "no trading pairs available"
		c.logger.Warn("Pair list is empty")
	}
	if c.vm.HasSelection {
		if pair, ok := c.vm.Pair(c.vm.Selected.ID); ok {
			c.vm.Selected = pair
			c.vm.Settings = c.settingsFor(pair)
		}
	}
	return c.vm.clone(), nil
}

// settingsFor must be called with mu held.
func (c *Controller) settingsFor(pair model.TradingPair) settings.Form {
	if pair.TradingSetting == nil {
		c.logger.Warn("No trading settings for pair", zap.Int("pair_id", pair.ID))
		c.vm.Warning = fmt.Sprintf("no trading settings for %s", pair.Label())
	}
	return settings.FromSetting(pair.TradingSetting)
}

// Select switches the dashboard to another pair. Data of the previous pair
// is cleared and any refresh still running for it is cancelled.
func (c *Controller) Select(pairID int) (ViewModel, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	pair, ok := c.vm.Pair(pairID)
	if !ok {
		return c.vm.clone(), fmt.Errorf("%w: %d", ErrUnknownPair, pairID)
	}

	for id, cancel := range c.inflight {
		cancel()
		delete(c.inflight, id)
	}

	c.vm.Generation++
	c.vm.Selected = pair
	c.vm.HasSelection = true
	c.vm.Dataset = reconcile.Dataset{Label: pair.Label()}
	c.vm.Change = reconcile.Change{}
	c.vm.Indicators = indicator.Snapshot{}
	c.vm.Limit = c.limit
	c.vm.Offset = 0
	c.vm.LastRefresh = time.Time{}
	c.vm.Warning = ""
	c.vm.Settings = c.settingsFor(pair)
	c.previous = nil

	c.logger.Info("Pair selected",
		zap.Int("pair_id", pair.ID),
		zap.String("pair", pair.Label()),
		zap.Uint64("generation", c.vm.Generation))
	return c.vm.clone(), nil
}

// LoadMore doubles the number of orders fetched by the next refresh.
func (c *Controller) LoadMore() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vm.Limit += c.vm.Limit
	return c.vm.Limit
}

type refreshJob struct {
	id         uint64
	generation uint64
	pair       model.TradingPair
	limit      int
	offset     int
}

func (c *Controller) begin(ctx context.Context) (refreshJob, context.Context, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.vm.HasSelection {
		c.vm.Warning = "select a pair first"
		c.logger.Warn("Refresh requested without a selected pair")
		return refreshJob{}, nil, ErrNoSelection
	}

	c.nextID++
	job := refreshJob{
		id:         c.nextID,
		generation: c.vm.Generation,
		pair:       clonePair(c.vm.Selected),
		limit:      c.vm.Limit,
		offset:     c.vm.Offset,
	}
	refreshCtx, cancel := context.WithCancel(ctx)
	c.inflight[job.id] = cancel
	return job, refreshCtx, nil
}

func (c *Controller) finish(id uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cancel, ok := c.inflight[id]; ok {
		cancel()
		delete(c.inflight, id)
	}
}

// Refresh fetches prices and orders for the selected pair, reconciles them
// and commits the result. If the selection changes before it finishes the
// result is discarded and ErrStale is returned.
func (c *Controller) Refresh(ctx context.Context) (ViewModel, error) {
	job, refreshCtx, err := c.begin(ctx)
	if err != nil {
		return c.Snapshot(), err
	}
	defer c.finish(job.id)

	start := time.Now()
	log := c.logger.With(
		zap.String("refresh_id", uuid.NewString()),
		zap.Int("pair_id", job.pair.ID),
		zap.Uint64("generation", job.generation))
	log.Debug("Refresh started", zap.Int("limit", job.limit), zap.Int("offset", job.offset))

	var (
		series model.PriceSeries
		orders []model.Order
	)
	g, gctx := errgroup.WithContext(refreshCtx)
	g.Go(func() error {
		var err error
		series, err = c.api.Prices(gctx, job.pair.ID)
		return err
	})
	g.Go(func() error {
		var err error
		orders, err = c.api.Orders(gctx, job.pair.ID, job.limit, job.offset)
		return err
	})
	fetchErr := g.Wait()

	dataset := reconcile.Reconcile(series, orders, job.pair.Label())
	snapshot := indicator.Compute(series, job.pair.TradingSetting)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.vm.Generation != job.generation {
		log.Debug("Discarding stale refresh")
		c.record(metrics.ResultStale, start)
		return c.vm.clone(), ErrStale
	}
	if ctx.Err() != nil {
		log.Debug("Refresh cancelled")
		return c.vm.clone(), ctx.Err()
	}
	if fetchErr != nil {
		log.Warn("Refresh failed", zap.Error(fetchErr))
		c.record(metrics.ResultError, start)
		return c.vm.clone(), fmt.Errorf("refresh pair %d: %w", job.pair.ID, fetchErr)
	}

	c.vm.Change = reconcile.PriceChange(c.previous, dataset.CurrentPrice, dataset.HasPrice)
	if dataset.HasPrice {
		price := dataset.CurrentPrice
		c.previous = &price
	}
	c.vm.Dataset = dataset
	c.vm.Indicators = snapshot
	c.vm.LastRefresh = time.Now()

	if dataset.Empty() {
		c.vm.Warning = fmt.Sprintf("no data for %s", job.pair.Label())
		log.Warn("Refresh returned no data")
		c.record(metrics.ResultEmpty, start)
	} else {
		c.vm.Warning = ""
		log.Debug("Refresh committed",
			zap.Int("points", len(dataset.PriceLine)),
			zap.Int("orders", len(dataset.Rows)),
			zap.Int("dropped_buys", dataset.DroppedBuys),
			zap.Int("dropped_sells", dataset.DroppedSells),
			zap.Duration("took", time.Since(start)))
		c.record(metrics.ResultOK, start)
	}
	return c.vm.clone(), nil
}

func (c *Controller) record(result string, start time.Time) {
	if c.recorder == nil {
		return
	}
	c.recorder.RecordRefresh(result, time.Since(start))
}

// Sell closes an open order of the selected pair at the current price.
func (c *Controller) Sell(ctx context.Context, orderID int) (*api.SellResult, error) {
	c.mu.Lock()
	if !c.vm.HasSelection {
		c.mu.Unlock()
		c.logger.Warn("Sell requested without a selected pair", zap.Int("order_id", orderID))
		return nil, ErrNoSelection
	}
	pairID := c.vm.Selected.ID
	price, hasPrice := c.vm.Dataset.CurrentPrice, c.vm.Dataset.HasPrice
	var (
		row   reconcile.Row
		found bool
	)
	for _, r := range c.vm.Dataset.Rows {
		if r.OrderID == orderID {
			row, found = r, true
			break
		}
	}
	c.mu.Unlock()

	switch {
	case !found:
		return nil, fmt.Errorf("order %d not in view", orderID)
	case row.Closed:
		return nil, fmt.Errorf("order %d: %w", orderID, ErrOrderClosed)
	case !hasPrice:
		return nil, fmt.Errorf("order %d: %w", orderID, ErrNoPrice)
	}

	result, err := c.api.Sell(ctx, api.SellRequest{
		OrderID:      orderID,
		Amount:       row.Amount,
		PairID:       pairID,
		CurrentPrice: price,
	})
	if err != nil {
		c.logger.Error("Sell failed", zap.Int("order_id", orderID), zap.Error(err))
		return nil, err
	}
	c.logger.Info("Order sold",
		zap.Int("order_id", orderID),
		zap.Int("sell_id", result.ID),
		zap.Float64("price", result.Price))
	return result, nil
}

// SaveSettings validates the form, submits it and reloads the pair list.
func (c *Controller) SaveSettings(ctx context.Context, form settings.Form) error {
	req, err := form.Request()
	if err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	if err := c.api.UpdateSettings(ctx, form.SettingID, req); err != nil {
		c.logger.Error("Settings update failed", zap.Int("setting_id", form.SettingID), zap.Error(err))
		return err
	}
	c.logger.Info("Settings updated", zap.Int("setting_id", form.SettingID))
	_, err = c.LoadPairs(ctx)
	return err
}

// ToggleActive flips the is_active flag of the selected pair and returns
// the new value.
func (c *Controller) ToggleActive(ctx context.Context) (bool, error) {
	c.mu.Lock()
	if !c.vm.HasSelection {
		c.mu.Unlock()
		c.logger.Warn("Toggle requested without a selected pair")
		return false, ErrNoSelection
	}
	pairID := c.vm.Selected.ID
	active := !c.vm.Selected.IsActive
	c.mu.Unlock()

	if err := c.api.ToggleActive(ctx, pairID, active); err != nil {
		c.logger.Error("Toggle active failed", zap.Int("pair_id", pairID), zap.Error(err))
		return !active, err
	}
	c.logger.Info("Pair activity changed", zap.Int("pair_id", pairID), zap.Bool("is_active", active))
	if _, err := c.LoadPairs(ctx); err != nil {
		return active, err
	}
	return active, nil
}
