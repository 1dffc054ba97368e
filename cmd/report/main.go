// Package main generates a portfolio performance report from the
// tracked registry: return since recommendation per entry, plus summary
// statistics, written as Markdown and CSV.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"influencer-stock-lab/internal/config"
	"influencer-stock-lab/internal/prices"
	"influencer-stock-lab/internal/reporting"
	"influencer-stock-lab/internal/storage"
	"influencer-stock-lab/internal/storage/file"
	"influencer-stock-lab/internal/storage/postgres"
)

func main() {
	// Parse flags
	outputDir := flag.String("output-dir", "", "Output directory for generated files (defaults to OUTPUT_DIR)")
	offline := flag.Bool("offline", false, "Skip live quotes and use last analyzed prices")
	flag.Parse()

	cfg, err := config.LoadFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	if *outputDir == "" {
		*outputDir = cfg.OutputDir
	}

	ctx := context.Background()

	var registryStore storage.RegistryStore = file.NewRegistryStore(filepath.Join(cfg.DataDir, "stocks.json"))
	if cfg.DatabaseURL != "" {
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "PostgreSQL error: %v\n", err)
			os.Exit(1)
		}
		defer pool.Close()
		registryStore = postgres.NewRegistryStore(pool)
	}

	var quoter reporting.Quoter
	if !*offline {
		providers := []prices.Provider{prices.NewYahoo()}
		if cfg.AlphaVantageAPIKey != "" {
			providers = append(providers, prices.NewAlphaVantage(cfg.AlphaVantageAPIKey))
		}
		if cfg.FMPAPIKey != "" {
			providers = append(providers, prices.NewFMP(cfg.FMPAPIKey))
		}
		quoter = prices.NewService(prices.ServiceOptions{
			Chain: prices.NewChain(nil, providers...),
		})
	}

	report, err := reporting.NewGenerator(registryStore, quoter).Generate(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Report error: %v\n", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(*outputDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Output dir error: %v\n", err)
		os.Exit(1)
	}

	mdPath := filepath.Join(*outputDir, "PERFORMANCE.md")
	if err := os.WriteFile(mdPath, []byte(reporting.RenderMarkdown(report)), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Write error: %v\n", err)
		os.Exit(1)
	}
	csvPath := filepath.Join(*outputDir, "performance.csv")
	if err := os.WriteFile(csvPath, []byte(reporting.RenderCSV(report.Rows)), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Write error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Performance report generated:")
	fmt.Printf("  - %s\n", mdPath)
	fmt.Printf("  - %s\n", csvPath)
	fmt.Printf("  Entries: %d, priced: %d, mean return: %.2f%%\n",
		report.Summary.TotalEntries, report.Summary.Priced, report.Summary.MeanReturnPct)
}
