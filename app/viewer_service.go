package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"sheetview/domain/chart"
	"sheetview/domain/table"
	"sheetview/internal"
	"sheetview/internal/filter"
	"sheetview/internal/metrics"
	"sheetview/internal/plot"
	"sheetview/internal/session"
	"sheetview/internal/summary"
	"sheetview/ports"
)

// ViewerConfig holds the per-pass settings of the viewer
type ViewerConfig struct {
	PreviewRows int
	LoadDelay   time.Duration
	PlotDelay   time.Duration
}

// ViewerService runs one synchronous pass of the pipeline per interaction
type ViewerService struct {
	loader   ports.TableLoader
	exporter ports.TableExporter
	summary  *summary.Engine
	plotter  *plot.Stage
	sessions *session.Manager
	config   ViewerConfig
}

// NewViewerService wires the pipeline stages together
func NewViewerService(
	loader ports.TableLoader,
	exporter ports.TableExporter,
	renderer ports.ChartRenderer,
	sessions *session.Manager,
	config ViewerConfig,
) *ViewerService {
	if config.PreviewRows <= 0 {
		config.PreviewRows = table.DefaultPreviewRows
	}
	return &ViewerService{
		loader:   loader,
		exporter: exporter,
		summary:  summary.NewEngine(),
		plotter:  plot.NewStage(renderer),
		sessions: sessions,
		config:   config,
	}
}

// ColumnInfo describes one column for selectors
type ColumnInfo struct {
	Name      string     `json:"name"`
	Kind      table.Kind `json:"kind"`
	Numerical bool       `json:"numerical"`
}

// FilterRequest names one column and the canonical key of one of its values.
// An empty column means no filter.
type FilterRequest struct {
	Column string `json:"column" form:"column"`
	Value  string `json:"value" form:"value"`
}

// Active reports whether the request filters anything
func (r FilterRequest) Active() bool {
	return r.Column != ""
}

// Upload parses a workbook and opens a session for it. A failed load opens nothing.
func (s *ViewerService) Upload(ctx context.Context, r io.Reader, fileName string) (*session.Session, error) {
	if err := pause(ctx, s.config.LoadDelay); err != nil {
		return nil, err
	}

	t, err := s.loader.Load(ctx, r, fileName)
	if err != nil {
		metrics.ObserveOperation(metrics.OpLoad, metrics.StatusError)
		internal.DefaultLogger.Warn("[Viewer] load of %s failed: %v", fileName, err)
		return nil, err
	}

	sess, err := s.sessions.Create(fileName, t)
	if err != nil {
		return nil, fmt.Errorf("failed to open session: %w", err)
	}
	metrics.ObserveOperation(metrics.OpLoad, metrics.StatusOK)
	metrics.LoadedRows.Observe(float64(t.NumRows()))
	metrics.ActiveSessions.Set(float64(s.sessions.Len()))
	return sess, nil
}

// Session looks up a live session
func (s *ViewerService) Session(id string) (*session.Session, error) {
	sess, err := s.sessions.Get(id)
	metrics.ActiveSessions.Set(float64(s.sessions.Len()))
	return sess, err
}

// Columns lists the loaded columns in file order with their kinds
func (s *ViewerService) Columns(sess *session.Session) []ColumnInfo {
	t := sess.Table()
	cols := make([]ColumnInfo, 0, t.NumColumns())
	for _, name := range t.Columns() {
		kind, _ := t.Kind(name)
		cols = append(cols, ColumnInfo{Name: name, Kind: kind, Numerical: kind.IsNumeric()})
	}
	return cols
}

// Preview returns the first n rows of the table; n <= 0 uses the configured size
func (s *ViewerService) Preview(sess *session.Session, n int) (*table.Table, error) {
	if n <= 0 {
		n = s.config.PreviewRows
	}
	var out *table.Table
	err := sess.Exclusive(func() error {
		out = sess.Table().Preview(n)
		return sess.Transition(session.StatePreviewed)
	})
	return out, err
}

// Summary describes every column of the table
func (s *ViewerService) Summary(sess *session.Session) (*summary.Summary, error) {
	var out *summary.Summary
	err := sess.Exclusive(func() error {
		var err error
		if out, err = s.summary.Describe(sess.Table()); err != nil {
			return err
		}
		return sess.Transition(session.StateSummarized)
	})
	return out, err
}

// UniqueValues lists the values a filter on column can select
func (s *ViewerService) UniqueValues(sess *session.Session, column string) ([]table.Value, error) {
	return sess.Table().UniqueValues(column)
}

// Filter applies the request to the loaded table and records it on the session.
// An inactive request clears the filter and returns the whole table.
func (s *ViewerService) Filter(sess *session.Session, req FilterRequest) (*table.Filtered, error) {
	var out *table.Filtered
	err := sess.Exclusive(func() error {
		f, err := s.filtered(sess, req)
		if err != nil {
			metrics.ObserveOperation(metrics.OpFilter, metrics.StatusRejected)
			return err
		}
		out = f
		if req.Active() {
			p := f.Predicate
			sess.SetPredicate(&p)
		} else {
			sess.SetPredicate(nil)
		}
		metrics.ObserveOperation(metrics.OpFilter, metrics.StatusOK)
		return sess.Transition(session.StateFiltered)
	})
	return out, err
}

func (s *ViewerService) filtered(sess *session.Session, req FilterRequest) (*table.Filtered, error) {
	if !req.Active() {
		return table.Unfiltered(sess.Table()), nil
	}
	return filter.ApplyKey(sess.Table(), req.Column, req.Value)
}

// Series builds the plot series without rendering, for clients that draw their own charts
func (s *ViewerService) Series(sess *session.Session, spec chart.Spec, req FilterRequest) (chart.Series, error) {
	f, err := s.filtered(sess, req)
	if err != nil {
		return chart.Series{}, err
	}
	if !plot.ValidateNumeric(f, spec.Y) {
		if !f.HasColumn(spec.Y) {
			return chart.Series{}, table.NewUnknownColumnError(spec.Y)
		}
		return chart.Series{}, table.NewNotNumericError(spec.Y)
	}
	return plot.BuildSeries(f, spec.X, spec.Y)
}

// Plot filters, validates and renders in one pass. The session ends in
// PlotRendered on success and PlotRejected on any failure.
func (s *ViewerService) Plot(ctx context.Context, sess *session.Session, spec chart.Spec, req FilterRequest) (*chart.Rendered, error) {
	var out *chart.Rendered
	err := sess.Exclusive(func() error {
		if err := sess.Transition(session.StatePlotRequested); err != nil {
			return err
		}
		sess.RecordPlot(spec)

		rendered, err := s.plot(ctx, sess, spec, req)
		if err != nil {
			status := metrics.StatusError
			if table.IsSelectionError(err) {
				status = metrics.StatusRejected
			}
			metrics.ObserveOperation(metrics.OpPlot, status)
			internal.DefaultLogger.Debug("[Viewer] plot %s of %s by %s rejected: %v", spec.Kind, spec.Y, spec.X, err)
			return errors.Join(err, sess.Transition(session.StatePlotRejected))
		}

		out = rendered
		if rendered.NoData {
			metrics.ObserveOperation(metrics.OpPlot, metrics.StatusNoData)
		} else {
			metrics.ObserveOperation(metrics.OpPlot, metrics.StatusOK)
		}
		return sess.Transition(session.StatePlotRendered)
	})
	return out, err
}

func (s *ViewerService) plot(ctx context.Context, sess *session.Session, spec chart.Spec, req FilterRequest) (*chart.Rendered, error) {
	f, err := s.filtered(sess, req)
	if err != nil {
		return nil, err
	}
	if err := pause(ctx, s.config.PlotDelay); err != nil {
		return nil, err
	}
	return s.plotter.Plot(f, spec)
}

// Export writes the (optionally filtered) table as a workbook
func (s *ViewerService) Export(sess *session.Session, req FilterRequest, w io.Writer) error {
	f, err := s.filtered(sess, req)
	if err != nil {
		metrics.ObserveOperation(metrics.OpExport, metrics.StatusRejected)
		return err
	}
	if err := s.exporter.Export(w, f.Table, "Data"); err != nil {
		metrics.ObserveOperation(metrics.OpExport, metrics.StatusError)
		return err
	}
	metrics.ObserveOperation(metrics.OpExport, metrics.StatusOK)
	return nil
}

// ExportContentType is the MIME type written by Export
func (s *ViewerService) ExportContentType() string {
	return s.exporter.ContentType()
}

// pause waits d, returning early if ctx is cancelled
func pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
