// RFQ Engine CLI - Spec Matching & Pricing Allocation
//
// Usage:
//   rfqengine quote --request request.json --catalog catalog.csv --unit-prices prices.csv
//   rfqengine pricing load --unit-prices prices.csv --service-prices services.csv
//   rfqengine pricing snapshots
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v2"

	"rfq-engine/db/clickhouse"
	"rfq-engine/db/ingestion"
	"rfq-engine/db/postgres"
	"rfq-engine/decision/pricing"
	"rfq-engine/decision/quote"
	"rfq-engine/decision/ranking"
	"rfq-engine/decision/specmatch"
	"rfq-engine/internal/fileio"
	"rfq-engine/internal/retrieval"
	"rfq-engine/pkg/api"
	"rfq-engine/pkg/platform"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	app := &cli.App{
		Name:    "rfqengine",
		Usage:   "Spec Matching & Pricing Allocation Engine for supplier quotations",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),

		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Usage:   "Path to config file",
				EnvVars: []string{"RFQ_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"RFQ_LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:    "clickhouse-host",
				Value:   "localhost",
				Usage:   "ClickHouse host",
				EnvVars: []string{"CLICKHOUSE_HOST"},
			},
			&cli.IntFlag{
				Name:    "clickhouse-port",
				Value:   9000,
				Usage:   "ClickHouse native port",
				EnvVars: []string{"CLICKHOUSE_PORT"},
			},
			&cli.StringFlag{
				Name:    "clickhouse-database",
				Value:   "rfq",
				Usage:   "ClickHouse database",
				EnvVars: []string{"CLICKHOUSE_DATABASE"},
			},
			&cli.StringFlag{
				Name:    "clickhouse-user",
				Value:   "default",
				Usage:   "ClickHouse user",
				EnvVars: []string{"CLICKHOUSE_USER"},
			},
			&cli.StringFlag{
				Name:    "clickhouse-password",
				Value:   "",
				Usage:   "ClickHouse password",
				EnvVars: []string{"CLICKHOUSE_PASSWORD"},
			},
		},

		Commands: []*cli.Command{
			quoteCommand(),
			pricingCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// QUOTE COMMAND
// =============================================================================

func quoteCommand() *cli.Command {
	return &cli.Command{
		Name:  "quote",
		Usage: "Match a buyer request against the catalog and price the result",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "request",
				Aliases:  []string{"r"},
				Usage:    "Path to the quote request JSON",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "catalog",
				Aliases: []string{"c"},
				Usage:   "Path to the product catalog (CSV or XLSX); ignored when --postgres-dsn is set",
			},
			&cli.StringFlag{
				Name:    "postgres-dsn",
				Usage:   "Load the catalog from PostgreSQL instead of a file",
				EnvVars: []string{"RFQ_POSTGRES_DSN"},
			},
			&cli.StringFlag{
				Name:  "unit-prices",
				Usage: "Path to the SKU price table (CSV or XLSX)",
			},
			&cli.StringFlag{
				Name:  "service-prices",
				Usage: "Path to the ancillary service price table (CSV or XLSX)",
			},
			&cli.BoolFlag{
				Name:  "use-clickhouse",
				Usage: "Read prices from the active ClickHouse snapshot instead of files",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Value:   "table",
				Usage:   "Output format (table, json)",
			},
		},
		Action: runQuote,
	}
}

func runQuote(c *cli.Context) error {
	ctx := context.Background()

	cfg, err := platform.LoadConfig(c.String("config"))
	if err != nil {
		return err
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}
	logger := platform.NewLogger(cfg.LogLevel, cfg.LogJSON)

	req, err := loadRequest(c.String("request"))
	if err != nil {
		return err
	}

	catalog, err := loadCatalog(ctx, c)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Loaded %d catalog products\n", len(catalog))

	table, warnings, err := loadPrices(ctx, c)
	if err != nil {
		return err
	}
	for _, w := range warnings {
		logger.Warn().Msg(w)
	}

	comparator := specmatch.NewComparator(cfg.NumericTolerance, specmatch.NewSynonymTable(cfg.Synonyms))
	ranker := ranking.NewRanker(specmatch.NewEngine(comparator), cfg.TopK, logger)
	allocator := pricing.NewAllocator(logger)
	retriever := retrieval.NewMemoryRetriever(catalog, logger)

	runner := quote.NewRunner(retriever, ranker, allocator, table, quote.Options{
		Workers:         cfg.Workers,
		RetrieveTimeout: cfg.RetrieveTimeout,
	}, logger)

	result, err := runner.Run(ctx, req)
	if err != nil {
		return err
	}

	switch c.String("format") {
	case "json":
		return outputJSON(result)
	default:
		return outputTable(result)
	}
}

func loadRequest(path string) (api.QuoteRequest, error) {
	var req api.QuoteRequest
	data, err := os.ReadFile(path)
	if err != nil {
		return req, fmt.Errorf("failed to read request %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &req); err != nil {
		return req, fmt.Errorf("failed to parse request %s: %w", path, err)
	}
	return req, nil
}

func loadCatalog(ctx context.Context, c *cli.Context) ([]api.CandidateProduct, error) {
	if dsn := c.String("postgres-dsn"); dsn != "" {
		store, err := postgres.NewCatalogStore(dsn)
		if err != nil {
			return nil, err
		}
		defer store.Close()
		return store.LoadCatalog(ctx)
	}
	path := c.String("catalog")
	if path == "" {
		return nil, fmt.Errorf("either --catalog or --postgres-dsn is required")
	}
	return fileio.LoadCatalog(path)
}

func loadPrices(ctx context.Context, c *cli.Context) (api.PricingTableProvider, []string, error) {
	if c.Bool("use-clickhouse") {
		store, err := newClickHouseStore(c)
		if err != nil {
			return nil, nil, err
		}
		defer store.Close()
		table, err := store.LoadTable(ctx)
		return table, nil, err
	}

	var warnings []string

	units, unitWarnings, err := loadPriceFile(c.String("unit-prices"), fileio.LoadUnitPrices)
	if err != nil {
		return nil, nil, err
	}
	warnings = append(warnings, unitWarnings...)

	services, serviceWarnings, err := loadPriceFile(c.String("service-prices"), fileio.LoadServicePrices)
	if err != nil {
		return nil, nil, err
	}
	warnings = append(warnings, serviceWarnings...)

	return pricing.NewTable(units, services), warnings, nil
}

// loadPriceFile applies a price loader when a path was given; an empty path
// yields an empty table rather than an error so both price files stay
// optional.
func loadPriceFile(path string, load func(string) (map[string]decimal.Decimal, []string, error)) (map[string]decimal.Decimal, []string, error) {
	if path == "" {
		return nil, nil, nil
	}
	return load(path)
}

func newClickHouseStore(c *cli.Context) (*clickhouse.Store, error) {
	return clickhouse.NewStore(&clickhouse.Config{
		Host:     c.String("clickhouse-host"),
		Port:     c.Int("clickhouse-port"),
		Database: c.String("clickhouse-database"),
		Username: c.String("clickhouse-user"),
		Password: c.String("clickhouse-password"),
	})
}

// =============================================================================
// PRICING COMMANDS
// =============================================================================

func pricingCommand() *cli.Command {
	return &cli.Command{
		Name:  "pricing",
		Usage: "Manage price snapshots in ClickHouse",
		Subcommands: []*cli.Command{
			{
				Name:  "load",
				Usage: "Load price tables into a fresh snapshot and activate it",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "unit-prices",
						Usage:    "Path to the SKU price table (CSV or XLSX)",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "service-prices",
						Usage: "Path to the ancillary service price table (CSV or XLSX)",
					},
					&cli.StringFlag{
						Name:  "source",
						Value: "file",
						Usage: "Label recorded on the snapshot",
					},
				},
				Action: runPricingLoad,
			},
			{
				Name:   "snapshots",
				Usage:  "List price snapshots",
				Action: runPricingSnapshots,
			},
		},
	}
}

func runPricingLoad(c *cli.Context) error {
	ctx := context.Background()

	units, warnings, err := fileio.LoadUnitPrices(c.String("unit-prices"))
	if err != nil {
		return err
	}
	services, serviceWarnings, err := loadPriceFile(c.String("service-prices"), fileio.LoadServicePrices)
	if err != nil {
		return err
	}
	warnings = append(warnings, serviceWarnings...)
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", w)
	}

	store, err := newClickHouseStore(c)
	if err != nil {
		return err
	}
	defer store.Close()

	adapter := ingestion.NewClickHouseAdapter(store)
	result, err := adapter.IngestPrices(ctx, &ingestion.Input{
		Source:        c.String("source"),
		LoadedAt:      time.Now(),
		UnitPrices:    units,
		ServicePrices: services,
	})
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	fmt.Printf("Snapshot %s activated: %d unit prices, %d service prices (%s)\n",
		result.SnapshotID, result.UnitPriceCount, result.ServicePriceCount, result.Duration.Round(time.Millisecond))
	return nil
}

func runPricingSnapshots(c *cli.Context) error {
	store, err := newClickHouseStore(c)
	if err != nil {
		return err
	}
	defer store.Close()

	snapshots, err := store.ListSnapshots(context.Background())
	if err != nil {
		return err
	}
	if len(snapshots) == 0 {
		fmt.Println("No snapshots found")
		return nil
	}
	for _, snap := range snapshots {
		marker := " "
		if snap.IsActive {
			marker = "*"
		}
		fmt.Printf("%s %s  %-12s  %s\n", marker, snap.ID, snap.Source, snap.LoadedAt.Format(time.RFC3339))
	}
	return nil
}

// =============================================================================
// OUTPUT FORMATTERS
// =============================================================================

func outputJSON(result api.QuoteResult) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func outputTable(result api.QuoteResult) error {
	fmt.Printf("\nQuotation %s (run %s)\n", result.RequestID, result.RunID)
	fmt.Println("==================================================================")

	for _, item := range result.Items {
		fmt.Printf("\nItem %s [%s]\n", item.ItemID, item.Status)
		if item.Error != "" {
			fmt.Printf("  rejected: %s\n", item.Error)
			continue
		}
		if item.Recommendation != nil {
			fmt.Printf("  selected: %s\n", item.Recommendation.SelectedSKUID)
			for i, cand := range item.Recommendation.TopCandidates {
				if cand.SKUID == api.ValueUnavailable {
					fmt.Printf("  #%d %-20s %s\n", i+1, api.ValueUnavailable, api.ValueUnavailable)
					continue
				}
				fmt.Printf("  #%d %-20s %6.2f%%  %s\n", i+1, cand.SKUID, cand.MatchPercent, truncate(cand.ProductName, 30))
			}
		}
		for _, w := range item.Warnings {
			fmt.Printf("  warning: %s\n", w)
		}
	}

	if result.Pricing != nil {
		fmt.Println("\nPricing")
		fmt.Println("------------------------------------------------------------------")
		fmt.Printf("%-12s %-14s %10s %12s %12s %12s\n", "ITEM", "SKU", "QTY", "MATERIAL", "ALLOCATED", "TOTAL")
		for _, line := range result.Pricing.Lines {
			fmt.Printf("%-12s %-14s %10.2f %12s %12s %12s\n",
				line.ItemID, line.SKUID, line.Quantity,
				line.MaterialCost.StringFixed(2),
				line.AllocatedCost.StringFixed(2),
				line.TotalCost.StringFixed(2))
		}
		fmt.Println("------------------------------------------------------------------")
		fmt.Printf("Material total:  %s\n", result.Pricing.TotalMaterialCost.StringFixed(2))
		fmt.Printf("Ancillary total: %s\n", result.Pricing.TotalAncillaryCost.StringFixed(2))
		fmt.Printf("Grand total:     %s\n", result.Pricing.GrandTotal.StringFixed(2))
		for _, w := range result.Pricing.Warnings {
			fmt.Printf("Warning: %s\n", w)
		}
	}
	return nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
