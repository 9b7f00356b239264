package datasource

import (
	"context"
	"database/sql"
	"fmt"
	"iter"
	"os"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/meshetar/internal/logger"
	"github.com/rxtech-lab/meshetar/internal/types"
	"github.com/rxtech-lab/meshetar/pkg/errors"
	"go.uber.org/zap"
)

// Parquet reads bars from a parquet file through an in-memory DuckDB view.
// The file must have time, symbol, open, high, low, close and volume columns.
type Parquet struct {
	db     *sql.DB
	logger *logger.Logger
	sq     squirrel.StatementBuilderType
	start  optional.Option[time.Time]
	end    optional.Option[time.Time]
}

// NewParquet opens an in-memory DuckDB database and creates the market_data
// view over path. Glob patterns read several files as one.
func NewParquet(path string, logger *logger.Logger) (*Parquet, error) {
	if !strings.ContainsAny(path, "*?[") {
		if _, err := os.Stat(path); err != nil {
			return nil, errors.Wrapf(errors.ErrCodeDataNotFound, err, "parquet file %s not found", path)
		}
	}

	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDataSourceUnavailable, "failed to open duckdb", err)
	}

	// Using raw SQL as Squirrel doesn't support CREATE VIEW
	query := fmt.Sprintf(`CREATE VIEW market_data AS SELECT * FROM read_parquet('%s');`, strings.ReplaceAll(path, "'", "''"))
	if _, err := db.Exec(query); err != nil {
		db.Close()

		return nil, errors.Wrapf(errors.ErrCodeDataNotFound, err, "failed to read parquet %s", path)
	}

	logger.Debug("Opened parquet data source", zap.String("path", path))

	return &Parquet{
		db:     db,
		logger: logger,
		sq:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		start:  optional.None[time.Time](),
		end:    optional.None[time.Time](),
	}, nil
}

// SetRange limits reads to bars with start <= time <= end. Either bound may be None.
func (p *Parquet) SetRange(start, end optional.Option[time.Time]) {
	p.start = start
	p.end = end
}

func (p *Parquet) filter(builder squirrel.SelectBuilder) squirrel.SelectBuilder {
	if p.start.IsSome() {
		builder = builder.Where(squirrel.GtOrEq{"time": p.start.Unwrap()})
	}

	if p.end.IsSome() {
		builder = builder.Where(squirrel.LtOrEq{"time": p.end.Unwrap()})
	}

	return builder
}

// Count returns the number of bars in range.
func (p *Parquet) Count(ctx context.Context) (int, error) {
	query, args, err := p.filter(p.sq.Select("COUNT(*)").From("market_data")).ToSql()
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build count query", err)
	}

	var count int
	if err := p.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, errors.Wrap(errors.ErrCodeQueryFailed, "failed to count bars", err)
	}

	return count, nil
}

// ReadAll yields bars in file order. Rows are not sorted so that out of order
// files are caught by validation instead of being silently repaired.
func (p *Parquet) ReadAll(ctx context.Context) iter.Seq2[types.Bar, error] {
	return func(yield func(types.Bar, error) bool) {
		query, args, err := p.filter(
			p.sq.Select("time", "symbol", "open", "high", "low", "close", "volume").From("market_data"),
		).ToSql()
		if err != nil {
			yield(types.Bar{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build bar query", err))

			return
		}

		rows, err := p.db.QueryContext(ctx, query, args...)
		if err != nil {
			yield(types.Bar{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query bars", err))

			return
		}
		defer rows.Close()

		index := 0

		for rows.Next() {
			var bar types.Bar

			if err := rows.Scan(&bar.Time, &bar.Symbol, &bar.Open, &bar.High, &bar.Low, &bar.Close, &bar.Volume); err != nil {
				yield(types.Bar{}, errors.NewDataErrorf(errors.ErrCodeDataParseFailed, index, "failed to scan bar: %v", err))

				return
			}

			bar.Time = bar.Time.UTC()

			if !yield(bar, nil) {
				return
			}

			index++
		}

		if err := rows.Err(); err != nil {
			yield(types.Bar{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to iterate bars", err))
		}
	}
}

// Close releases the DuckDB connection.
func (p *Parquet) Close() error {
	return p.db.Close()
}
