package datasource

import (
	"bufio"
	"context"
	"io"
	"iter"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/rxtech-lab/meshetar/internal/logger"
	"github.com/rxtech-lab/meshetar/internal/types"
	"github.com/rxtech-lab/meshetar/pkg/errors"
	"go.uber.org/zap"
)

var requiredColumns = []string{"time", "open", "high", "low", "close", "volume"}

// CSVTime is a time cell decoded with types.ParseTime.
type CSVTime struct {
	time.Time
}

func (t *CSVTime) UnmarshalCSV(value string) error {
	parsed, err := types.ParseTime(value)
	if err != nil {
		return err
	}

	t.Time = parsed

	return nil
}

type barRow struct {
	Symbol string  `csv:"symbol"`
	Time   CSVTime `csv:"time"`
	Open   float64 `csv:"open"`
	High   float64 `csv:"high"`
	Low    float64 `csv:"low"`
	Close  float64 `csv:"close"`
	Volume float64 `csv:"volume"`
}

// CSV reads bars from a file with a header row. Required columns are time,
// open, high, low, close and volume; symbol is optional. Column order is free.
type CSV struct {
	path   string
	logger *logger.Logger
}

func NewCSV(path string, logger *logger.Logger) *CSV {
	return &CSV{
		path:   path,
		logger: logger,
	}
}

func (c *CSV) ReadAll(ctx context.Context) iter.Seq2[types.Bar, error] {
	return func(yield func(types.Bar, error) bool) {
		c.logger.Debug("Reading bars from csv", zap.String("path", c.path))

		file, err := os.Open(c.path)
		if err != nil {
			yield(types.Bar{}, errors.Wrapf(errors.ErrCodeDataNotFound, err, "failed to open %s", c.path))

			return
		}
		defer file.Close()

		for bar, err := range ReadCSV(ctx, file) {
			if !yield(bar, err) || err != nil {
				return
			}
		}
	}
}

// ReadCSV parses bars from r with the same rules as the CSV source.
func ReadCSV(ctx context.Context, r io.Reader) iter.Seq2[types.Bar, error] {
	return func(yield func(types.Bar, error) bool) {
		rows := DecodeCSV[barRow](ctx, r, nil, func(columns []string) error {
			for _, name := range requiredColumns {
				if !slices.Contains(columns, name) {
					return errors.Newf(errors.ErrCodeDataParseFailed, "csv is missing column %q", name)
				}
			}

			return nil
		})

		for row, err := range rows {
			if err != nil {
				yield(types.Bar{}, err)

				return
			}

			bar := types.Bar{
				Symbol: strings.TrimSpace(row.Symbol),
				Time:   row.Time.Time,
				Open:   row.Open,
				High:   row.High,
				Low:    row.Low,
				Close:  row.Close,
				Volume: row.Volume,
			}

			if !yield(bar, nil) {
				return
			}
		}
	}
}

// DecodeCSV streams rows of r into T with gocsv. Header names are trimmed,
// lower cased and renamed through aliases before check sees them. A row
// that fails to decode ends the sequence with a DataError carrying its
// zero based index.
func DecodeCSV[T any](ctx context.Context, r io.Reader, aliases map[string]string, check func(columns []string) error) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		var zero T

		body, columns, err := normalizeHeader(r, aliases)
		if err != nil {
			yield(zero, err)

			return
		}

		if check != nil {
			if err := check(columns); err != nil {
				yield(zero, err)

				return
			}
		}

		rows := make(chan T)
		done := make(chan error, 1)

		go func() {
			done <- gocsv.UnmarshalToChan(body, rows)
		}()

		for index := 0; ; {
			select {
			case row, ok := <-rows:
				if !ok {
					if err := <-done; err != nil {
						yield(zero, errors.NewDataErrorf(errors.ErrCodeDataParseFailed, index, "malformed csv row: %v", err))
					}

					return
				}

				if ctx.Err() != nil || !yield(row, nil) {
					go drain(rows, done)

					return
				}

				index++
			case err := <-done:
				// rows is unbuffered, so every decoded row has been received
				if err != nil {
					yield(zero, errors.NewDataErrorf(errors.ErrCodeDataParseFailed, index, "malformed csv row: %v", err))
				}

				return
			}
		}
	}
}

// drain unblocks the decoder after the consumer stopped early.
func drain[T any](rows <-chan T, done <-chan error) {
	for {
		select {
		case _, ok := <-rows:
			if !ok {
				return
			}
		case <-done:
			return
		}
	}
}

// normalizeHeader rewrites the header line and returns a reader over the
// whole input with the rewritten header.
func normalizeHeader(r io.Reader, aliases map[string]string) (io.Reader, []string, error) {
	reader := bufio.NewReader(r)

	line, err := reader.ReadString('\n')
	if err != nil && (err != io.EOF || strings.TrimSpace(line) == "") {
		return nil, nil, errors.Newf(errors.ErrCodeDataParseFailed, "failed to read csv header: %v", err)
	}

	line = strings.TrimPrefix(strings.TrimRight(line, "\r\n"), "\ufeff")

	columns := strings.Split(line, ",")
	for i, name := range columns {
		name = strings.ToLower(strings.Trim(strings.TrimSpace(name), `"`))
		if alias, ok := aliases[name]; ok {
			name = alias
		}

		columns[i] = name
	}

	header := strings.NewReader(strings.Join(columns, ",") + "\n")

	return io.MultiReader(header, reader), columns, nil
}
