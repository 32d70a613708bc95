package main

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"

	"sheetview/adapters/excel"
	"sheetview/adapters/render"
	"sheetview/domain/chart"
	"sheetview/domain/table"
	"sheetview/internal/filter"
	"sheetview/internal/plot"
	"sheetview/internal/summary"
	"sheetview/internal/testkit"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "sheetview-dev",
		Short: "SheetView development tools",
	}

	rootCmd.AddCommand(
		newSmokeTestCmd(),
		newDeterminismTestCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newSmokeTestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "smoke",
		Short: "Run the load, describe, filter and plot pipeline on generated data",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSmokeTests(cmd.Context())
		},
	}
	return cmd
}

func newDeterminismTestCmd() *cobra.Command {
	var seed int64

	cmd := &cobra.Command{
		Use:   "determinism",
		Short: "Check that two passes over the same workbook produce identical charts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return testDeterminism(cmd.Context(), seed)
		},
	}

	cmd.Flags().Int64Var(&seed, "seed", 42, "Generator seed")
	return cmd
}

// loadSample generates the demo workbook and loads it through the upload path
func loadSample(ctx context.Context, seed int64) (*table.Table, error) {
	cfg := testkit.DefaultSalesConfig()
	cfg.Seed = seed
	rows, err := testkit.NewSalesDataGenerator(cfg).Rows()
	if err != nil {
		return nil, err
	}
	data, err := testkit.Workbook(rows)
	if err != nil {
		return nil, err
	}
	return excel.NewLoader(excel.DefaultExcelConfig()).Load(ctx, bytes.NewReader(data), "sample.xlsx")
}

func runSmokeTests(ctx context.Context) error {
	fmt.Println("Running smoke tests...")

	t, err := loadSample(ctx, 42)
	if err != nil {
		return fmt.Errorf("failed to load sample workbook: %w", err)
	}
	stage := plot.NewStage(render.NewRenderer(640, 320))

	tests := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"describe", func(ctx context.Context) error {
			sum, err := summary.NewEngine().Describe(t)
			if err != nil {
				return err
			}
			if len(sum.NumericColumns()) == 0 || len(sum.ObjectColumns()) == 0 {
				return fmt.Errorf("expected both numeric and object columns")
			}
			return nil
		}},
		{"filter", func(ctx context.Context) error {
			f, err := filter.ApplyKey(t, "region", "North")
			if err != nil {
				return err
			}
			if f.Count() == 0 {
				return fmt.Errorf("no rows matched")
			}
			return nil
		}},
		{"plot_line", func(ctx context.Context) error {
			out, err := stage.Plot(table.Unfiltered(t), chart.Spec{X: "date", Y: "revenue", Kind: chart.KindLine})
			if err != nil {
				return err
			}
			if out.NoData {
				return fmt.Errorf("nothing rendered")
			}
			return nil
		}},
		{"plot_bar", func(ctx context.Context) error {
			_, err := stage.Plot(table.Unfiltered(t), chart.Spec{X: "region", Y: "units", Kind: chart.KindBar})
			return err
		}},
		{"reject_text_y", func(ctx context.Context) error {
			_, err := stage.Plot(table.Unfiltered(t), chart.Spec{X: "date", Y: "note", Kind: chart.KindLine})
			if !errors.Is(err, table.ErrNotNumeric) {
				return fmt.Errorf("expected not-numeric rejection, got %v", err)
			}
			return nil
		}},
	}

	passed := 0
	for _, test := range tests {
		fmt.Printf("  Running %s...", test.name)
		if err := test.fn(ctx); err != nil {
			fmt.Printf(" FAILED: %v\n", err)
		} else {
			fmt.Println(" PASSED")
			passed++
		}
	}

	fmt.Printf("\nSmoke tests: %d/%d passed\n", passed, len(tests))
	if passed < len(tests) {
		return fmt.Errorf("some smoke tests failed")
	}

	return nil
}

func testDeterminism(ctx context.Context, seed int64) error {
	fmt.Printf("Testing determinism for seed %d...\n", seed)

	digest := func() (string, error) {
		t, err := loadSample(ctx, seed)
		if err != nil {
			return "", err
		}
		out, err := plot.NewStage(render.NewRenderer(640, 320)).
			Plot(table.Unfiltered(t), chart.Spec{X: "date", Y: "revenue", Kind: chart.KindLine})
		if err != nil {
			return "", err
		}
		sum := sha256.Sum256(out.Data)
		return hex.EncodeToString(sum[:]), nil
	}

	original, err := digest()
	if err != nil {
		return fmt.Errorf("original pass failed: %w", err)
	}
	replay, err := digest()
	if err != nil {
		return fmt.Errorf("replay pass failed: %w", err)
	}

	if original != replay {
		return fmt.Errorf("chart digests differ: %s vs %s", original, replay)
	}
	fmt.Printf("Determinism test PASSED (%s)\n", original[:16])
	return nil
}
