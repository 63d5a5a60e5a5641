// Command snapshot refreshes one pair once and prints the reconciled order
// table, optionally exporting it.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/pairdash/internal/api"
	"github.com/rovshanmuradov/pairdash/internal/config"
	"github.com/rovshanmuradov/pairdash/internal/dashboard"
	"github.com/rovshanmuradov/pairdash/internal/export"
	"github.com/rovshanmuradov/pairdash/internal/logger"
	"github.com/rovshanmuradov/pairdash/internal/ui/component"
	"github.com/rovshanmuradov/pairdash/internal/ui/style"
)

type options struct {
	configPath string
	pairID     int
	limit      int
	format     string
	onlyOpen   bool
	report     bool
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "Path to config file (yaml or json)")
	flag.IntVar(&opts.pairID, "pair", 0, "Pair id (defaults to default_pair_id)")
	flag.IntVar(&opts.limit, "limit", 0, "Number of orders (defaults to orders_limit)")
	flag.StringVar(&opts.format, "export", "", "Also export rows as csv, json or yaml")
	flag.BoolVar(&opts.onlyOpen, "open", false, "Export open orders only")
	flag.BoolVar(&opts.report, "report", false, "Also write today's hourly report")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig(opts.configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger, err := logger.CreatePrettyLogger(cfg.DebugLogging)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer func() {
		_ = appLogger.Sync()
	}()

	if err := run(ctx, cfg, opts, appLogger, os.Stdout); err != nil {
		appLogger.Error("Snapshot failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, opts options, appLogger *zap.Logger, out io.Writer) error {
	if opts.pairID == 0 {
		opts.pairID = cfg.DefaultPairID
	}
	if opts.pairID == 0 {
		return fmt.Errorf("no pair given: use -pair or default_pair_id")
	}
	if opts.limit <= 0 {
		opts.limit = cfg.OrdersLimit
	}

	controller := dashboard.NewController(api.New(cfg, appLogger, nil), appLogger, nil, opts.limit)
	if _, err := controller.LoadPairs(ctx); err != nil {
		return err
	}
	if _, err := controller.Select(opts.pairID); err != nil {
		return err
	}
	view, err := controller.Refresh(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, render(view))

	exporter := export.NewExporter(appLogger)
	if opts.format != "" {
		format, err := export.ParseFormat(opts.format)
		if err != nil {
			return err
		}
		path, err := exporter.Export(view.Dataset, export.Options{
			Format:    format,
			OutputDir: cfg.ExportDir,
			OnlyOpen:  opts.onlyOpen,
			PairLabel: view.Label(),
		})
		if err != nil {
			return err
		}
		appLogger.Info("Exported orders", zap.String("path", path))
	}
	if opts.report {
		path, err := exporter.ExportDailyReport(view.Dataset, time.Now(), cfg.ExportDir)
		if err != nil {
			return err
		}
		appLogger.Info("Wrote daily report", zap.String("path", path))
	}
	return nil
}

// render draws the header line and the order table
func render(view dashboard.ViewModel) string {
	dataset := view.Dataset

	price := "—"
	if dataset.HasPrice {
		price = component.FormatPrice(dataset.CurrentPrice)
	}
	header := fmt.Sprintf("%s  price %s  profit %s  orders %d (%d open)",
		view.Label(), price, component.FormatSigned(dataset.TotalProfit), len(dataset.Rows), len(dataset.OpenRows()))
	if view.Warning != "" {
		header += "  (" + view.Warning + ")"
	}

	rows := make([]component.TableRow, len(dataset.Rows))
	for i, row := range dataset.Rows {
		sell, profit, status := "—", "—", "open"
		if row.Closed {
			sell, status = component.FormatPrice(row.SellPrice), "closed"
		}
		if row.Priced {
			profit = component.FormatSigned(row.Profit)
		}
		rows[i] = component.TableRow{Data: []string{
			fmt.Sprint(row.OrderID),
			row.Created.UTC().Format("2006-01-02 15:04"),
			component.FormatPrice(row.Amount),
			component.FormatPrice(row.BuyPrice),
			sell,
			profit,
			status,
		}}
	}

	table := component.NewTable().
		SetColumns([]component.TableColumn{
			{Header: "Order", Width: 7, Align: lipgloss.Right},
			{Header: "Created (UTC)", Width: 18, Align: lipgloss.Left},
			{Header: "Amount", Width: 12, Align: lipgloss.Right},
			{Header: "Buy", Width: 12, Align: lipgloss.Right},
			{Header: "Sell", Width: 12, Align: lipgloss.Right},
			{Header: "Profit", Width: 12, Align: lipgloss.Right},
			{Header: "Status", Width: 8, Align: lipgloss.Left},
		}).
		SetRows(rows).
		SetFooter([]string{"", "", "", "", "Total", component.FormatSigned(dataset.TotalProfit), ""}).
		SetSelectable(false).
		SetEmptyText("no orders").
		SetSize(100, 0)

	return lipgloss.JoinVertical(lipgloss.Left, style.SubHeaderStyle.Render(header), table.View())
}
