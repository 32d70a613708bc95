package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"sheetview/internal/testkit"
)

func main() {
	out := flag.String("out", "sales_sample.xlsx", "output file path")
	days := flag.Int("days", 30, "number of days")
	regions := flag.String("regions", "North,South,East,West", "comma-separated region names")
	seed := flag.Int64("seed", 42, "RNG seed (deterministic)")
	start := flag.String("start", "2025-01-01", "start date (YYYY-MM-DD)")
	missing := flag.Float64("missing", 0.02, "share of revenue cells left blank")
	flag.Parse()

	if *days <= 0 {
		fmt.Fprintln(os.Stderr, "days must be > 0")
		os.Exit(2)
	}

	startDate, err := time.ParseInLocation("2006-01-02", *start, time.UTC)
	if err != nil {
		fmt.Fprintln(os.Stderr, "invalid -start (expected YYYY-MM-DD):", err)
		os.Exit(2)
	}

	cfg := testkit.DefaultSalesConfig()
	cfg.Days = *days
	cfg.Seed = *seed
	cfg.StartDate = startDate
	cfg.MissingRate = *missing
	cfg.Regions = nil
	for _, r := range strings.Split(*regions, ",") {
		if r = strings.TrimSpace(r); r != "" {
			cfg.Regions = append(cfg.Regions, r)
		}
	}

	rows, err := testkit.NewSalesDataGenerator(cfg).Rows()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error generating dataset:", err)
		os.Exit(1)
	}
	if err := testkit.WriteXLSX(*out, rows); err != nil {
		fmt.Fprintln(os.Stderr, "error writing xlsx:", err)
		os.Exit(1)
	}

	fmt.Printf("Sample workbook created: %s\n", *out)
	fmt.Printf("Total Columns: %d | Total Rows: %d\n", len(testkit.SalesHeaders), len(rows)-1)
}
