package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"sheetview/adapters/excel"
	"sheetview/adapters/render"
	"sheetview/domain/chart"
	"sheetview/domain/table"
	"sheetview/internal/filter"
	"sheetview/internal/plot"
	"sheetview/internal/summary"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "sheetview-cli",
		Short:         "SheetView CLI for inspecting, filtering and plotting workbooks offline",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newColumnsCmd(),
		newDescribeCmd(),
		newFilterCmd(),
		newPlotCmd(),
	)
	return rootCmd
}

func loadWorkbook(ctx context.Context, path, sheet string) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cfg := excel.DefaultExcelConfig()
	cfg.SheetName = sheet
	return excel.NewLoader(cfg).Load(ctx, f, path)
}

func newColumnsCmd() *cobra.Command {
	var sheet string

	cmd := &cobra.Command{
		Use:   "columns [file.xlsx]",
		Short: "List columns with their detected kinds",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := loadWorkbook(cmd.Context(), args[0], sheet)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "COLUMN\tKIND\tNUMERICAL")
			for _, name := range t.Columns() {
				kind, _ := t.Kind(name)
				fmt.Fprintf(w, "%s\t%s\t%t\n", name, kind, kind.IsNumeric())
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&sheet, "sheet", "", "Sheet to read (default: first sheet)")
	return cmd
}

func newDescribeCmd() *cobra.Command {
	var sheet string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "describe [file.xlsx]",
		Short: "Print summary statistics for every column",
		Long: `Print summary statistics for every column of the first sheet.

Numerical columns report count, mean, std, min, quartiles and max.
Other columns report count, unique, top and freq.

Example: sheetview-cli describe sales.xlsx --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := loadWorkbook(cmd.Context(), args[0], sheet)
			if err != nil {
				return err
			}
			sum, err := summary.NewEngine().Describe(t)
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(sum)
			}
			printSummary(cmd, sum)
			return nil
		},
	}

	cmd.Flags().StringVar(&sheet, "sheet", "", "Sheet to read (default: first sheet)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of a table")
	return cmd
}

func printSummary(cmd *cobra.Command, sum *summary.Summary) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "rows: %d\n\n", sum.Rows)
	if numeric := sum.NumericColumns(); len(numeric) > 0 {
		fmt.Fprintln(w, "COLUMN\tCOUNT\tMEAN\tSTD\tMIN\t25%\t50%\t75%\tMAX")
		for _, c := range numeric {
			n := c.Numeric
			fmt.Fprintf(w, "%s\t%d\t%g\t%g\t%g\t%g\t%g\t%g\t%g\n", c.Name, n.Count, n.Mean, n.Std, n.Min, n.P25, n.P50, n.P75, n.Max)
		}
		fmt.Fprintln(w)
	}
	if object := sum.ObjectColumns(); len(object) > 0 {
		fmt.Fprintln(w, "COLUMN\tKIND\tCOUNT\tUNIQUE\tTOP\tFREQ")
		for _, c := range object {
			o := c.Object
			fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\t%d\n", c.Name, c.Kind, o.Count, o.Unique, o.Top, o.Freq)
		}
	}
	w.Flush()
}

func newFilterCmd() *cobra.Command {
	var sheet string
	var out string

	cmd := &cobra.Command{
		Use:   "filter [file.xlsx] [column] [value]",
		Short: "Keep the rows where column equals value",
		Long: `Keep the rows where column equals value and print them, or write them
to a new workbook with --out. The value is matched against the column's
observed values; use "(missing)" to select empty cells.

Example: sheetview-cli filter sales.xlsx region North --out north.xlsx`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := loadWorkbook(cmd.Context(), args[0], sheet)
			if err != nil {
				return err
			}
			f, err := filter.ApplyKey(t, args[1], args[2])
			if err != nil {
				return err
			}

			if out != "" {
				file, err := os.Create(out)
				if err != nil {
					return err
				}
				defer file.Close()
				if err := excel.NewExporter().Export(file, f.Table, "Filtered"); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %d rows to %s\n", f.Count(), out)
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, strings.Join(f.Table.Columns(), "\t"))
			for _, row := range f.Table.Rows() {
				cells := make([]string, len(row))
				for i, v := range row {
					cells[i] = v.String()
				}
				fmt.Fprintln(w, strings.Join(cells, "\t"))
			}
			fmt.Fprintf(w, "\nRows: %d\n", f.Count())
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&sheet, "sheet", "", "Sheet to read (default: first sheet)")
	cmd.Flags().StringVar(&out, "out", "", "Write the matching rows to this .xlsx file")
	return cmd
}

func newPlotCmd() *cobra.Command {
	var sheet string
	var kind string
	var out string
	var width, height int
	var column, value string

	cmd := &cobra.Command{
		Use:   "plot [file.xlsx] [x-column] [y-column]",
		Short: "Render a line or bar chart of y by x to a PNG",
		Long: `Render a line or bar chart of a numerical y column indexed by x.

Optionally restrict the rows first with --column and --value.

Example: sheetview-cli plot sales.xlsx date revenue --kind line --out revenue.png`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			chartKind, err := chart.ParseKind(kind)
			if err != nil {
				return err
			}
			t, err := loadWorkbook(cmd.Context(), args[0], sheet)
			if err != nil {
				return err
			}

			f := table.Unfiltered(t)
			if column != "" {
				if f, err = filter.ApplyKey(t, column, value); err != nil {
					return err
				}
			}

			stage := plot.NewStage(render.NewRenderer(width, height))
			rendered, err := stage.Plot(f, chart.Spec{X: args[1], Y: args[2], Kind: chartKind})
			if err != nil {
				return err
			}
			if rendered.NoData {
				fmt.Fprintf(cmd.OutOrStdout(), "no data to plot for %s\n", args[2])
				return nil
			}
			if err := os.WriteFile(out, rendered.Data, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s of %s by %s to %s\n", chartKind.Label(), args[2], args[1], out)
			return nil
		},
	}

	cmd.Flags().StringVar(&sheet, "sheet", "", "Sheet to read (default: first sheet)")
	cmd.Flags().StringVar(&kind, "kind", "line", "Chart kind: line or bar")
	cmd.Flags().StringVar(&out, "out", "chart.png", "Output PNG path")
	cmd.Flags().IntVar(&width, "width", 960, "Image width in pixels")
	cmd.Flags().IntVar(&height, "height", 480, "Image height in pixels")
	cmd.Flags().StringVar(&column, "column", "", "Filter column")
	cmd.Flags().StringVar(&value, "value", "", "Filter value")
	return cmd
}
