package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/rovshanmuradov/pairdash/internal/reconcile"
)

// Format represents the export file format
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts csv, json, yaml or yml.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unsupported format: %s", s)
}

// Options configures the export behavior
type Options struct {
	Format     Format
	StartTime  time.Time
	EndTime    time.Time
	OnlyOpen   bool // Only export orders without a sell
	OnlyClosed bool
	PairLabel  string
	OutputDir  string
}

// Exporter writes reconciled order rows to files
type Exporter struct {
	logger *zap.Logger
	now    func() time.Time
}

// NewExporter creates a new order exporter
func NewExporter(logger *zap.Logger) *Exporter {
	return &Exporter{
		logger: logger.Named("export"),
		now:    time.Now,
	}
}

// Export writes the dataset rows matching options and returns the file path.
func (e *Exporter) Export(dataset reconcile.Dataset, options Options) (string, error) {
	filtered := filterRows(dataset.Rows, options)
	if len(filtered) == 0 {
		return "", fmt.Errorf("no orders match the export criteria")
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].Created.Before(filtered[j].Created)
	})

	if options.PairLabel == "" {
		options.PairLabel = dataset.Label
	}
	if options.OutputDir == "" {
		options.OutputDir = "."
	}

	outputPath := filepath.Join(options.OutputDir, e.generateFilename(options))
	if err := os.MkdirAll(options.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	report := Report{
		ExportTime:   e.now().UTC(),
		Pair:         options.PairLabel,
		CurrentPrice: dataset.CurrentPrice,
		HasPrice:     dataset.HasPrice,
		OrderCount:   len(filtered),
		Orders:       filtered,
		Summary:      calculateSummary(filtered),
	}

	file, err := os.Create(outputPath)
	if err != nil {
		return "", fmt.Errorf("failed to create %s file: %w", options.Format, err)
	}
	defer file.Close()

	switch options.Format {
	case FormatCSV:
		err = writeCSV(file, filtered)
	case FormatJSON:
		err = writeJSON(file, report)
	case FormatYAML:
		err = writeYAML(file, report)
	default:
		err = fmt.Errorf("unsupported format: %s", options.Format)
	}
	if err != nil {
		_ = file.Close()
		_ = os.Remove(outputPath)
		return "", err
	}

	e.logger.Info("Orders exported",
		zap.String("file", outputPath),
		zap.Int("count", len(filtered)),
		zap.String("format", string(options.Format)))

	return outputPath, nil
}

func filterRows(rows []reconcile.Row, options Options) []reconcile.Row {
	filtered := make([]reconcile.Row, 0, len(rows))
	for _, row := range rows {
		if !options.StartTime.IsZero() && row.Created.Before(options.StartTime) {
			continue
		}
		if !options.EndTime.IsZero() && !row.Created.Before(options.EndTime) {
			continue
		}
		if options.OnlyOpen && row.Closed {
			continue
		}
		if options.OnlyClosed && !row.Closed {
			continue
		}
		filtered = append(filtered, row)
	}
	return filtered
}

func (e *Exporter) generateFilename(options Options) string {
	timestamp := e.now().Format("20060102_150405")

	prefix := "orders_all"
	switch {
	case options.OnlyOpen:
		prefix = "orders_open"
	case options.OnlyClosed:
		prefix = "orders_closed"
	}
	if slug := slugify(options.PairLabel); slug != "" {
		prefix += "_" + slug
	}

	return fmt.Sprintf("%s_%s.%s", prefix, timestamp, options.Format)
}

func slugify(label string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(label) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// CSVHeaders returns the column names written by the CSV export.
func CSVHeaders() []string {
	return []string{"order_id", "created", "token", "amount", "buy_price", "sell_price", "status", "profit", "priced"}
}

func csvRecord(row reconcile.Row) []string {
	status := "open"
	if row.Closed {
		status = "closed"
	}
	return []string{
		strconv.Itoa(row.OrderID),
		row.Created.UTC().Format(time.RFC3339),
		row.Token,
		strconv.FormatFloat(row.Amount, 'f', -1, 64),
		strconv.FormatFloat(row.BuyPrice, 'f', -1, 64),
		strconv.FormatFloat(row.SellPrice, 'f', -1, 64),
		status,
		strconv.FormatFloat(row.Profit, 'f', 2, 64),
		strconv.FormatBool(row.Priced),
	}
}

func writeCSV(w io.Writer, rows []reconcile.Row) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(CSVHeaders()); err != nil {
		return fmt.Errorf("failed to write CSV headers: %w", err)
	}
	for _, row := range rows {
		if err := writer.Write(csvRecord(row)); err != nil {
			return fmt.Errorf("failed to write order: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

func writeJSON(w io.Writer, report Report) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(report); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

func writeYAML(w io.Writer, report Report) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(report); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	return encoder.Close()
}

// Report is the document written by the JSON and YAML exports
type Report struct {
	ExportTime   time.Time       `json:"export_time" yaml:"export_time"`
	Pair         string          `json:"pair" yaml:"pair"`
	CurrentPrice float64         `json:"current_price" yaml:"current_price"`
	HasPrice     bool            `json:"has_price" yaml:"has_price"`
	OrderCount   int             `json:"order_count" yaml:"order_count"`
	Summary      Summary         `json:"summary" yaml:"summary"`
	Orders       []reconcile.Row `json:"orders" yaml:"orders"`
}

// Summary contains statistics over the exported orders
type Summary struct {
	TotalOrders      int       `json:"total_orders" yaml:"total_orders"`
	OpenCount        int       `json:"open_count" yaml:"open_count"`
	ClosedCount      int       `json:"closed_count" yaml:"closed_count"`
	UnpricedCount    int       `json:"unpriced_count" yaml:"unpriced_count"`
	TotalProfit      float64   `json:"total_profit" yaml:"total_profit"`
	RealizedProfit   float64   `json:"realized_profit" yaml:"realized_profit"`
	UnrealizedProfit float64   `json:"unrealized_profit" yaml:"unrealized_profit"`
	WinCount         int       `json:"win_count" yaml:"win_count"`
	LossCount        int       `json:"loss_count" yaml:"loss_count"`
	WinRate          float64   `json:"win_rate" yaml:"win_rate"`
	StartDate        time.Time `json:"start_date" yaml:"start_date"`
	EndDate          time.Time `json:"end_date" yaml:"end_date"`
}

// calculateSummary expects rows sorted by creation time.
func calculateSummary(rows []reconcile.Row) Summary {
	summary := Summary{TotalOrders: len(rows)}
	if len(rows) == 0 {
		return summary
	}

	summary.StartDate = rows[0].Created
	summary.EndDate = rows[len(rows)-1].Created

	realized := decimal.Zero
	unrealized := decimal.Zero
	for _, row := range rows {
		profit := decimal.NewFromFloat(row.Profit)
		if row.Closed {
			summary.ClosedCount++
			realized = realized.Add(profit)
			switch {
			case row.Profit > 0:
				summary.WinCount++
			case row.Profit < 0:
				summary.LossCount++
			}
			continue
		}
		summary.OpenCount++
		if !row.Priced {
			summary.UnpricedCount++
		}
		unrealized = unrealized.Add(profit)
	}

	summary.RealizedProfit = realized.InexactFloat64()
	summary.UnrealizedProfit = unrealized.InexactFloat64()
	summary.TotalProfit = realized.Add(unrealized).InexactFloat64()
	if summary.ClosedCount > 0 {
		summary.WinRate = float64(summary.WinCount) / float64(summary.ClosedCount) * 100
	}
	return summary
}

// DailyReport groups one day of orders by hour
type DailyReport struct {
	Date            time.Time       `json:"date"`
	Pair            string          `json:"pair"`
	OrderCount      int             `json:"order_count"`
	Summary         Summary         `json:"summary"`
	HourlyBreakdown []HourlyStats   `json:"hourly_breakdown"`
	Orders          []reconcile.Row `json:"orders"`
}

// HourlyStats represents order statistics for an hour
type HourlyStats struct {
	Hour        int     `json:"hour"`
	OrderCount  int     `json:"order_count"`
	OpenCount   int     `json:"open_count"`
	ClosedCount int     `json:"closed_count"`
	Volume      float64 `json:"volume"`
	Profit      float64 `json:"profit"`
}

// ExportDailyReport writes the orders created on date (UTC) as a JSON
// report. It returns an empty path when there is nothing to report.
func (e *Exporter) ExportDailyReport(dataset reconcile.Dataset, date time.Time, outputDir string) (string, error) {
	date = date.UTC()
	startOfDay := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	endOfDay := startOfDay.Add(24 * time.Hour)

	filtered := filterRows(dataset.Rows, Options{StartTime: startOfDay, EndTime: endOfDay})
	if len(filtered) == 0 {
		e.logger.Info("No orders for daily report", zap.Time("date", startOfDay))
		return "", nil
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].Created.Before(filtered[j].Created)
	})

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	name := "daily_report"
	if slug := slugify(dataset.Label); slug != "" {
		name += "_" + slug
	}
	outputPath := filepath.Join(outputDir, fmt.Sprintf("%s_%s.json", name, startOfDay.Format("20060102")))

	report := DailyReport{
		Date:            startOfDay,
		Pair:            dataset.Label,
		OrderCount:      len(filtered),
		Summary:         calculateSummary(filtered),
		HourlyBreakdown: calculateHourlyBreakdown(filtered),
		Orders:          filtered,
	}

	file, err := os.Create(outputPath)
	if err != nil {
		return "", fmt.Errorf("failed to create report file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(report); err != nil {
		return "", fmt.Errorf("failed to encode report: %w", err)
	}

	e.logger.Info("Daily report exported",
		zap.String("file", outputPath),
		zap.Time("date", startOfDay),
		zap.Int("orders", len(filtered)))

	return outputPath, nil
}

func calculateHourlyBreakdown(rows []reconcile.Row) []HourlyStats {
	hourlyMap := make(map[int]*HourlyStats)

	for _, row := range rows {
		hour := row.Created.UTC().Hour()

		stats, exists := hourlyMap[hour]
		if !exists {
			stats = &HourlyStats{Hour: hour}
			hourlyMap[hour] = stats
		}

		stats.OrderCount++
		stats.Volume += row.BuyPrice
		stats.Profit += row.Profit
		if row.Closed {
			stats.ClosedCount++
		} else {
			stats.OpenCount++
		}
	}

	var breakdown []HourlyStats
	for hour := 0; hour < 24; hour++ {
		if stats, exists := hourlyMap[hour]; exists {
			breakdown = append(breakdown, *stats)
		}
	}
	return breakdown
}
