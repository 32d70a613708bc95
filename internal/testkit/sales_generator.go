package testkit

import (
	"fmt"
	"math"
	"math/rand"
	"os"
	"time"
)

// SalesGeneratorConfig configures the demo sales workbook
type SalesGeneratorConfig struct {
	Days      int       `json:"days"`
	Regions   []string  `json:"regions"`
	Products  []string  `json:"products"`
	StartDate time.Time `json:"start_date"`
	Seed      int64     `json:"seed"`
	// MissingRate is the share of revenue cells left blank
	MissingRate float64 `json:"missing_rate"`
}

// DefaultSalesConfig returns a month of data across four regions
func DefaultSalesConfig() SalesGeneratorConfig {
	return SalesGeneratorConfig{
		Days:        30,
		Regions:     []string{"North", "South", "East", "West"},
		Products:    []string{"Widget", "Gadget", "Gizmo"},
		StartDate:   time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		Seed:        42,
		MissingRate: 0.02,
	}
}

// SalesHeaders are the generated column names, one per column kind
var SalesHeaders = []string{"date", "day", "region", "product", "units", "revenue", "promo", "note"}

// SalesDataGenerator produces deterministic sales rows
type SalesDataGenerator struct {
	config SalesGeneratorConfig
	rng    *rand.Rand
}

// NewSalesDataGenerator creates a generator for the given config
func NewSalesDataGenerator(config SalesGeneratorConfig) *SalesDataGenerator {
	return &SalesDataGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// Rows returns the header followed by one row per day and region.
// Dates repeat across regions, so the date column has duplicate x values.
func (g *SalesDataGenerator) Rows() ([][]interface{}, error) {
	if g.config.Days <= 0 {
		return nil, fmt.Errorf("days must be > 0, got %d", g.config.Days)
	}
	if len(g.config.Regions) == 0 || len(g.config.Products) == 0 {
		return nil, fmt.Errorf("at least one region and one product are required")
	}

	header := make([]interface{}, len(SalesHeaders))
	for i, h := range SalesHeaders {
		header[i] = h
	}
	rows := [][]interface{}{header}

	for d := 0; d < g.config.Days; d++ {
		date := g.config.StartDate.AddDate(0, 0, d)
		// weekly seasonality
		season := 1 + 0.25*math.Sin(2*math.Pi*float64(d)/7)
		for r, region := range g.config.Regions {
			product := g.config.Products[g.rng.Intn(len(g.config.Products))]
			units := int(math.Round(float64(20+5*r) * season * (0.8 + 0.4*g.rng.Float64())))
			promo := g.rng.Float64() < 0.2
			price := 9.5 + float64(len(product))
			if promo {
				price *= 0.85
			}

			var revenue interface{}
			if g.rng.Float64() >= g.config.MissingRate {
				revenue = math.Round(float64(units)*price*100) / 100
			}

			rows = append(rows, []interface{}{
				date,
				d + 1,
				region,
				product,
				units,
				revenue,
				promo,
				fmt.Sprintf("%s order batch %03d", region, d*len(g.config.Regions)+r+1),
			})
		}
	}
	return rows, nil
}

// WriteXLSX writes generated rows to path
func WriteXLSX(path string, rows [][]interface{}) error {
	data, err := Workbook(rows)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
