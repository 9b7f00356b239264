// Package results persists backtest reports: report.json, stats.yaml and
// parquet tables of orders, fills and snapshots exported through DuckDB.
package results

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/rxtech-lab/meshetar/internal/backtest/engine"
	"github.com/rxtech-lab/meshetar/internal/logger"
	"github.com/rxtech-lab/meshetar/internal/types"
	"github.com/rxtech-lab/meshetar/pkg/errors"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const (
	ReportFile    = "report.json"
	StatsFile     = "stats.yaml"
	OrdersFile    = "orders.parquet"
	FillsFile     = "fills.parquet"
	SnapshotsFile = "snapshots.parquet"
)

// insertBatch bounds the rows per INSERT statement.
const insertBatch = 500

// Stats is the content of stats.yaml.
type Stats struct {
	RunID         string        `yaml:"run_id"`
	EngineVersion string        `yaml:"engine_version"`
	Strategy      string        `yaml:"strategy"`
	State         engine.State  `yaml:"state"`
	Sharpe        *float64      `yaml:"sharpe"`
	Diagnostics   int           `yaml:"diagnostics"`
	Summary       types.Summary `yaml:"summary"`
}

// NewStats flattens the report summary for stats.yaml.
func NewStats(report *engine.Report) Stats {
	var sharpe *float64

	if report.Summary.Sharpe.IsSome() {
		value := report.Summary.Sharpe.Unwrap()
		sharpe = &value
	}

	return Stats{
		RunID:         report.RunID,
		EngineVersion: report.EngineVersion,
		Strategy:      report.Strategy,
		State:         report.State,
		Sharpe:        sharpe,
		Diagnostics:   len(report.Diagnostics),
		Summary:       report.Summary,
	}
}

// WriteStats writes stats as YAML to path.
func WriteStats(path string, stats Stats) error {
	data, err := yaml.Marshal(stats)
	if err != nil {
		return fmt.Errorf("failed to marshal stats to YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write stats to file: %w", err)
	}

	return nil
}

// ReadStats reads a stats.yaml file.
func ReadStats(path string) (Stats, error) {
	var stats Stats

	data, err := os.ReadFile(path)
	if err != nil {
		return stats, errors.Wrapf(errors.ErrCodeDataNotFound, err, "failed to read stats %s", path)
	}

	if err := yaml.Unmarshal(data, &stats); err != nil {
		return stats, errors.Wrapf(errors.ErrCodeDataParseFailed, err, "failed to parse stats %s", path)
	}

	return stats, nil
}

// Writer stages report tables in an in-memory DuckDB and exports them.
// A Writer is not safe for concurrent use.
type Writer struct {
	db     *sql.DB
	logger *logger.Logger
	sq     squirrel.StatementBuilderType
}

func NewWriter(logger *logger.Logger) (*Writer, error) {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		logger.Error("Failed to open database", zap.Error(err))

		return nil, errors.Wrap(errors.ErrCodeBacktestResultsFailed, "failed to open database", err)
	}

	if err := db.Ping(); err != nil {
		logger.Error("Failed to connect to database", zap.Error(err))
		db.Close()

		return nil, errors.Wrap(errors.ErrCodeBacktestResultsFailed, "failed to connect to database", err)
	}

	return &Writer{
		db:     db,
		logger: logger,
		sq:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}, nil
}

// Write saves every result file of report into dir.
func (w *Writer) Write(ctx context.Context, dir string, report *engine.Report) error {
	if report == nil {
		return errors.New(errors.ErrCodeBacktestResultsFailed, "report is nil")
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrap(errors.ErrCodeBacktestResultsFailed, "failed to create results directory", err)
	}

	if err := writeReport(filepath.Join(dir, ReportFile), report); err != nil {
		return err
	}

	if err := WriteStats(filepath.Join(dir, StatsFile), NewStats(report)); err != nil {
		return errors.Wrap(errors.ErrCodeBacktestResultsFailed, "failed to write stats", err)
	}

	if err := w.reset(ctx); err != nil {
		return err
	}

	if err := w.insertOrders(ctx, report.Orders); err != nil {
		return err
	}

	if err := w.insertFills(ctx, report.Fills); err != nil {
		return err
	}

	if err := w.insertSnapshots(ctx, report.Snapshots); err != nil {
		return err
	}

	for table, file := range map[string]string{"orders": OrdersFile, "fills": FillsFile, "snapshots": SnapshotsFile} {
		if err := w.export(ctx, table, filepath.Join(dir, file)); err != nil {
			return err
		}
	}

	w.logger.Info("Successfully wrote backtest results",
		zap.String("dir", dir),
		zap.String("run_id", report.RunID),
		zap.Int("fills", len(report.Fills)),
	)

	return nil
}

// Close closes the database connection.
func (w *Writer) Close() error {
	if w == nil || w.db == nil {
		return nil
	}

	return w.db.Close()
}

func writeReport(path string, report *engine.Report) error {
	data, err := report.MarshalIndent()
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrap(errors.ErrCodeBacktestResultsFailed, "failed to write report", err)
	}

	return nil
}

var tableSchemas = []string{
	`CREATE TABLE orders (
		id TEXT,
		symbol TEXT,
		side TEXT,
		order_type TEXT,
		quantity DOUBLE,
		limit_price DOUBLE,
		issued_index INTEGER,
		issued_at TIMESTAMP,
		status TEXT,
		reason TEXT,
		message TEXT
	)`,
	`CREATE TABLE fills (
		order_id TEXT,
		symbol TEXT,
		side TEXT,
		quantity DOUBLE,
		price DOUBLE,
		fee DOUBLE,
		bar_index INTEGER,
		bar_time TIMESTAMP
	)`,
	`CREATE TABLE snapshots (
		bar_index INTEGER,
		bar_time TIMESTAMP,
		close DOUBLE,
		cash DOUBLE,
		quantity DOUBLE,
		average_entry_price DOUBLE,
		unrealized_pnl DOUBLE,
		realized_pnl DOUBLE,
		fees DOUBLE,
		equity DOUBLE
	)`,
}

// reset recreates the staging tables. Squirrel has no DDL support.
func (w *Writer) reset(ctx context.Context) error {
	for _, table := range []string{"orders", "fills", "snapshots"} {
		if _, err := w.db.ExecContext(ctx, "DROP TABLE IF EXISTS "+table); err != nil {
			return errors.Wrapf(errors.ErrCodeBacktestResultsFailed, err, "failed to drop %s", table)
		}
	}

	for _, schema := range tableSchemas {
		if _, err := w.db.ExecContext(ctx, schema); err != nil {
			return errors.Wrap(errors.ErrCodeBacktestResultsFailed, "failed to create result tables", err)
		}
	}

	return nil
}

func (w *Writer) insertOrders(ctx context.Context, orders []types.Order) error {
	rows := make([][]any, len(orders))

	for i, o := range orders {
		var limit any
		if o.LimitPrice.IsSome() {
			limit = o.LimitPrice.Unwrap()
		}

		rows[i] = []any{
			o.ID, o.Symbol, string(o.Side), string(o.Type), o.Quantity, limit,
			o.IssuedIndex, o.IssuedAt, string(o.Status), o.Reason.Reason, o.Reason.Message,
		}
	}

	return w.insert(ctx, "orders", []string{
		"id", "symbol", "side", "order_type", "quantity", "limit_price",
		"issued_index", "issued_at", "status", "reason", "message",
	}, rows)
}

func (w *Writer) insertFills(ctx context.Context, fills []types.Fill) error {
	rows := make([][]any, len(fills))

	for i, f := range fills {
		rows[i] = []any{f.OrderID, f.Symbol, string(f.Side), f.Quantity, f.Price, f.Fee, f.Index, f.Time}
	}

	return w.insert(ctx, "fills", []string{
		"order_id", "symbol", "side", "quantity", "price", "fee", "bar_index", "bar_time",
	}, rows)
}

func (w *Writer) insertSnapshots(ctx context.Context, snapshots []types.LedgerSnapshot) error {
	rows := make([][]any, len(snapshots))

	for i, s := range snapshots {
		rows[i] = []any{
			s.Index, s.Time, s.Close, s.Cash, s.Quantity, s.AverageEntryPrice,
			s.UnrealizedPnL, s.RealizedPnL, s.Fees, s.Equity,
		}
	}

	return w.insert(ctx, "snapshots", []string{
		"bar_index", "bar_time", "close", "cash", "quantity", "average_entry_price",
		"unrealized_pnl", "realized_pnl", "fees", "equity",
	}, rows)
}

func (w *Writer) insert(ctx context.Context, table string, columns []string, rows [][]any) error {
	for start := 0; start < len(rows); start += insertBatch {
		end := min(start+insertBatch, len(rows))
		query := w.sq.Insert(table).Columns(columns...)

		for _, row := range rows[start:end] {
			query = query.Values(row...)
		}

		sqlQuery, args, err := query.ToSql()
		if err != nil {
			return errors.Wrapf(errors.ErrCodeBacktestResultsFailed, err, "failed to build %s insert", table)
		}

		if _, err := w.db.ExecContext(ctx, sqlQuery, args...); err != nil {
			return errors.Wrapf(errors.ErrCodeBacktestResultsFailed, err, "failed to insert into %s", table)
		}
	}

	return nil
}

// export copies table to a parquet file. Squirrel has no COPY support.
func (w *Writer) export(ctx context.Context, table, path string) error {
	query := fmt.Sprintf(`COPY %s TO '%s' (FORMAT PARQUET)`, table, quote(path))

	if _, err := w.db.ExecContext(ctx, query); err != nil {
		return errors.Wrapf(errors.ErrCodeBacktestResultsFailed, err, "failed to export %s to %s", table, path)
	}

	return nil
}

// ReadSnapshots loads snapshots.parquet from a results directory in bar order.
func (w *Writer) ReadSnapshots(ctx context.Context, dir string) ([]types.LedgerSnapshot, error) {
	path := filepath.Join(dir, SnapshotsFile)
	if _, err := os.Stat(path); err != nil {
		return nil, errors.Wrapf(errors.ErrCodeDataNotFound, err, "missing %s", path)
	}

	query, args, err := w.sq.
		Select("bar_index", "bar_time", "close", "cash", "quantity", "average_entry_price",
			"unrealized_pnl", "realized_pnl", "fees", "equity").
		From(fmt.Sprintf("read_parquet('%s')", quote(path))).
		OrderBy("bar_index").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build snapshot query", err)
	}

	rows, err := w.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query snapshots", err)
	}
	defer rows.Close()

	snapshots := []types.LedgerSnapshot{}

	for rows.Next() {
		var (
			s types.LedgerSnapshot
			t time.Time
		)

		if err := rows.Scan(&s.Index, &t, &s.Close, &s.Cash, &s.Quantity, &s.AverageEntryPrice,
			&s.UnrealizedPnL, &s.RealizedPnL, &s.Fees, &s.Equity); err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan snapshot", err)
		}

		s.Time = t.UTC()
		snapshots = append(snapshots, s)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to iterate snapshots", err)
	}

	return snapshots, nil
}

func quote(path string) string {
	return strings.ReplaceAll(path, "'", "''")
}

// Folder returns the results directory of one run:
// <root>/<strategy>/<config name>/<data file name>.
func Folder(root, strategyName, configPath, dataPath string) string {
	configName := strings.TrimSuffix(filepath.Base(configPath), filepath.Ext(configPath))
	dataName := strings.TrimSuffix(filepath.Base(dataPath), filepath.Ext(dataPath))

	return filepath.Join(root, sanitize(strategyName), configName, dataName)
}

func sanitize(name string) string {
	return strings.NewReplacer("/", "_", "(", "_", ")", "", ",", "_", "+", "_", " ", "_").Replace(name)
}
