package model

import (
	"context"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/meshetar/internal/datasource"
	"github.com/rxtech-lab/meshetar/internal/types"
	"github.com/rxtech-lab/meshetar/pkg/errors"
)

// Label values written by classifier style models.
const (
	LabelBuy  = "buy"
	LabelSell = "sell"
	LabelHold = "hold"
)

// LabelScore maps a buy/sell/hold label to 1, -1 or 0.
func LabelScore(label string) (float64, bool) {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case LabelBuy:
		return 1, true
	case LabelSell:
		return -1, true
	case LabelHold:
		return 0, true
	default:
		return 0, false
	}
}

// LoadScoreFile reads a CSV score file and aligns it to series by timestamp.
// The header must have a time column and either a score or a label column.
// Bars without a row get no score. A row whose time is not a bar of the
// series is an error.
func LoadScoreFile(path string, series types.Series) (*Static, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeDataNotFound, err, "failed to open score file %s", path)
	}
	defer file.Close()

	return ReadScores(file, series)
}

type scoreRow struct {
	Time  datasource.CSVTime `csv:"time"`
	Score string             `csv:"score"`
	Label string             `csv:"label"`
}

var scoreAliases = map[string]string{
	"timestamp": "time",
	"signal":    "label",
}

// ReadScores is LoadScoreFile over a reader.
func ReadScores(r io.Reader, series types.Series) (*Static, error) {
	hasScore := false

	rows := datasource.DecodeCSV[scoreRow](context.Background(), r, scoreAliases, func(columns []string) error {
		hasScore = slices.Contains(columns, "score")

		if !slices.Contains(columns, "time") || (!hasScore && !slices.Contains(columns, "label")) {
			return errors.Newf(errors.ErrCodeDataParseFailed, "score file needs a time column and a score or label column, got %v", columns)
		}

		return nil
	})

	index := make(map[int64]int, series.Len())
	for i, bar := range series.Bars {
		index[bar.Time.UnixNano()] = i
	}

	scores := make([]optional.Option[float64], series.Len())
	for i := range scores {
		scores[i] = optional.None[float64]()
	}

	row := 0

	for record, err := range rows {
		if err != nil {
			return nil, err
		}

		score, err := parseScore(record, hasScore)
		if err != nil {
			return nil, errors.NewDataErrorf(errors.ErrCodeDataParseFailed, row, "%v", err)
		}

		t := record.Time.Time

		i, ok := index[t.UnixNano()]
		if !ok {
			return nil, errors.NewDataErrorf(errors.ErrCodeScoreMisaligned, row, "score time %s matches no bar", t.Format(time.RFC3339))
		}

		scores[i] = score
		row++
	}

	return NewStatic(scores), nil
}

// parseScore reads the score column when present, the label column otherwise.
func parseScore(record scoreRow, hasScore bool) (optional.Option[float64], error) {
	if hasScore {
		raw := strings.TrimSpace(record.Score)
		if raw == "" {
			return optional.None[float64](), nil
		}

		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return optional.None[float64](), err
		}

		return optional.Some(v), nil
	}

	raw := strings.TrimSpace(record.Label)
	if raw == "" {
		return optional.None[float64](), nil
	}

	v, ok := LabelScore(raw)
	if !ok {
		return optional.None[float64](), errors.Newf(errors.ErrCodeDataParseFailed, "unknown label %q", raw)
	}

	return optional.Some(v), nil
}
