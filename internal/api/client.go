// internal/api/client.go
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/rovshanmuradov/pairdash/internal/config"
	"github.com/rovshanmuradov/pairdash/internal/model"
)

const apiPrefix = "/api/v1"

// Recorder receives the timing of every request. *metrics.Collector
// satisfies it.
type Recorder interface {
	RecordAPI(method, endpoint, status string, duration time.Duration)
}

// StatusError is returned by mutations when the server answers with a
// non-success status.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s %s: unexpected status code %d", e.Method, e.Path, e.StatusCode)
	}
	return fmt.Sprintf("%s %s: unexpected status code %d, body: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

// SellRequest is the form submitted to close an open order.
type SellRequest struct {
	OrderID      int
	Amount       float64
	PairID       int
	CurrentPrice float64
}

// SellResult is the sell fill created by the server.
type SellResult struct {
	ID         int       `json:"id"`
	Created    time.Time `json:"-"`
	Status     string    `json:"status"`
	Token      string    `json:"token"`
	Action     string    `json:"action"`
	Amount     float64   `json:"amount"`
	Price      float64   `json:"price"`
	BuyOrderID int       `json:"buy_order_id"`
}

// UpdateSettingsRequest is the PATCH body for a trading setting.
type UpdateSettingsRequest struct {
	BuyAmount                float64 `json:"buy_amount"`
	BuyMaxOrdersThreshold    int     `json:"buy_max_orders_threshold"`
	BuyMaxOrdersInLastPeriod int     `json:"buy_max_orders_in_last_period"`
	BuyCheckPeriodMinutes    int     `json:"buy_check_period_minutes"`
	LongEMATimePeriod        int     `json:"long_ema_time_period"`
	RSIBuyThreshold          int     `json:"rsi_buy_threshold"`
	RSISellThreshold         int     `json:"rsi_sell_threshold"`
	RSITimePeriod            int     `json:"rsi_time_period"`
	ShortEMATimePeriod       int     `json:"short_ema_time_period"`
	StopLossPercentage       float64 `json:"stop_loss_percentage"`
	TakeProfitPercentage     float64 `json:"take_profit_percentage"`
	AutoBuyEnabled           bool    `json:"auto_buy_enabled"`
	AutoSellEnabled          bool    `json:"auto_sell_enabled"`
}

// Client talks to the trading REST API. The read endpoints degrade every
// failure except cancellation into an empty result and a warning.
type Client struct {
	baseURL   string
	userAgent string
	minutes   int
	client    *http.Client
	logger    *zap.Logger
	recorder  Recorder
}

// New creates a client from configuration. recorder may be nil.
func New(cfg *config.Config, logger *zap.Logger, recorder Recorder) *Client {
	return &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		userAgent: cfg.UserAgent,
		minutes:   cfg.PriceMinutes,
		client: &http.Client{
			Timeout: cfg.Timeout(),
		},
		logger:   logger.Named("api"),
		recorder: recorder,
	}
}

// Pairs returns every trading pair with its tokens and settings.
func (c *Client) Pairs(ctx context.Context) ([]model.TradingPair, error) {
	var pairs []model.TradingPair
	ok, err := c.getJSON(ctx, apiPrefix+"/pairs", "/pairs", nil, &pairs)
	if err != nil {
		return nil, err
	}
	if !ok || pairs == nil {
		return []model.TradingPair{}, nil
	}
	return pairs, nil
}

// Prices returns the recent price history of a pair. The window is the
// configured price_minutes, or the server default when that is zero.
func (c *Client) Prices(ctx context.Context, pairID int) (model.PriceSeries, error) {
	query := url.Values{}
	if c.minutes > 0 {
		query.Set("minutes", strconv.Itoa(c.minutes))
	}

	var series model.PriceSeries
	ok, err := c.getJSON(ctx, fmt.Sprintf("%s/prices/%d", apiPrefix, pairID), "/prices/{id}", query, &series)
	if err != nil {
		return model.PriceSeries{}, err
	}
	if !ok {
		return model.PriceSeries{}, nil
	}
	return series, nil
}

// Orders returns one page of buy orders for a pair, each with its sells.
func (c *Client) Orders(ctx context.Context, pairID int, limit, offset int) ([]model.Order, error) {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))
	query.Set("offset", strconv.Itoa(offset))

	var orders []model.Order
	ok, err := c.getJSON(ctx, fmt.Sprintf("%s/orders/%d", apiPrefix, pairID), "/orders/{id}", query, &orders)
	if err != nil {
		return nil, err
	}
	if !ok || orders == nil {
		return []model.Order{}, nil
	}
	return orders, nil
}

// Sell asks the server to close an order at the current price.
func (c *Client) Sell(ctx context.Context, req SellRequest) (*SellResult, error) {
	form := url.Values{}
	form.Set("order_id", strconv.Itoa(req.OrderID))
	form.Set("amount", strconv.FormatFloat(req.Amount, 'f', -1, 64))
	form.Set("pair", strconv.Itoa(req.PairID))
	form.Set("current_price", strconv.FormatFloat(req.CurrentPrice, 'f', -1, 64))

	body, err := c.mutate(ctx, http.MethodPost, apiPrefix+"/orders/sell", "/orders/sell",
		"application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("sell order %d: %w", req.OrderID, err)
	}

	var raw struct {
		SellResult
		Created string `json:"created"`
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return &SellResult{}, nil
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decode sell response: %w", err)
	}
	result := raw.SellResult
	if raw.Created != "" {
		if ts, err := model.ParseTime(raw.Created); err == nil {
			result.Created = ts
		}
	}
	return &result, nil
}

// UpdateSettings replaces the values of a trading setting.
func (c *Client) UpdateSettings(ctx context.Context, settingsID int, req UpdateSettingsRequest) error {
	payload, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	path := fmt.Sprintf("%s/pairs/settings/%d", apiPrefix, settingsID)
	if _, err := c.mutate(ctx, http.MethodPatch, path, "/pairs/settings/{id}", "application/json", bytes.NewReader(payload)); err != nil {
		return fmt.Errorf("update settings %d: %w", settingsID, err)
	}
	return nil
}

// ToggleActive sets the is_active flag of a pair.
func (c *Client) ToggleActive(ctx context.Context, pairID int, isActive bool) error {
	payload, err := json.Marshal(map[string]bool{"is_active": isActive})
	if err != nil {
		return fmt.Errorf("encode active flag: %w", err)
	}
	path := fmt.Sprintf("%s/pairs/change_active/%d", apiPrefix, pairID)
	if _, err := c.mutate(ctx, http.MethodPatch, path, "/pairs/change_active/{id}", "application/json", bytes.NewReader(payload)); err != nil {
		return fmt.Errorf("toggle pair %d: %w", pairID, err)
	}
	return nil
}

// getJSON decodes a successful response into out. It reports false with a
// nil error when the request failed in any way other than cancellation.
func (c *Client) getJSON(ctx context.Context, path, endpoint string, query url.Values, out interface{}) (bool, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		c.logger.Warn("Failed to create request", zap.String("path", path), zap.Error(err))
		return false, nil
	}
	c.decorate(req)

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		c.record(http.MethodGet, endpoint, "error", start)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return false, ctxErr
		}
		c.logger.Warn("Request failed", zap.String("path", path), zap.Error(err))
		return false, nil
	}
	defer resp.Body.Close()
	c.record(http.MethodGet, endpoint, strconv.Itoa(resp.StatusCode), start)

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("Unexpected status code",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode))
		return false, nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return false, ctxErr
		}
		c.logger.Warn("Malformed response body", zap.String("path", path), zap.Error(err))
		return false, nil
	}
	return true, nil
}

func (c *Client) mutate(ctx context.Context, method, path, endpoint, contentType string, body io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	c.decorate(req)
	req.Header.Set("Content-Type", contentType)

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		c.record(method, endpoint, "error", start)
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()
	c.record(method, endpoint, strconv.Itoa(resp.StatusCode), start)

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("Mutation rejected",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode))
		return nil, &StatusError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(data)),
		}
	}

	c.logger.Info("Mutation accepted",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode))
	return data, nil
}

func (c *Client) decorate(req *http.Request) {
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
}

func (c *Client) record(method, endpoint, status string, start time.Time) {
	if c.recorder == nil {
		return
	}
	c.recorder.RecordAPI(method, endpoint, status, time.Since(start))
}

// IsStatus reports whether err carries a StatusError with the given code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == code
}
