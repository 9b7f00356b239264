package engine

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/rxtech-lab/meshetar/internal/config"
	"github.com/rxtech-lab/meshetar/internal/types"
	"github.com/rxtech-lab/meshetar/internal/version"
	"github.com/rxtech-lab/meshetar/pkg/errors"
)

// Report is everything a run produced, in bar order. Two runs over the same
// series, config and scores encode to identical bytes.
type Report struct {
	// RunID identifies the run in stats.yaml. It is random, so it is left out of the JSON.
	RunID         string                 `json:"-" yaml:"run_id"`
	EngineVersion string                 `json:"engine_version" yaml:"engine_version"`
	Strategy      string                 `json:"strategy" yaml:"strategy"`
	State         State                  `json:"state" yaml:"state"`
	Config        config.StrategyConfig  `json:"config" yaml:"config"`
	Summary       types.Summary          `json:"summary" yaml:"summary"`
	Signals       []types.Signal         `json:"signals" yaml:"signals"`
	Orders        []types.Order          `json:"orders" yaml:"orders"`
	Fills         []types.Fill           `json:"fills" yaml:"fills"`
	Trades        []types.ClosedTrade    `json:"trades" yaml:"trades"`
	Snapshots     []types.LedgerSnapshot `json:"snapshots" yaml:"snapshots"`
	Diagnostics   []types.Diagnostic     `json:"diagnostics" yaml:"diagnostics"`
}

// Encode writes the report as indented JSON.
func (r *Report) Encode(w io.Writer) error {
	data, err := r.MarshalIndent()
	if err != nil {
		return err
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	return nil
}

// MarshalIndent returns the JSON encoding used for report.json.
func (r *Report) MarshalIndent() ([]byte, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeBacktestResultsFailed, "failed to encode report", err)
	}

	return append(data, '\n'), nil
}

// DecodeReport reads a report and checks that this engine can interpret it.
func DecodeReport(r io.Reader) (*Report, error) {
	var report Report

	if err := json.NewDecoder(r).Decode(&report); err != nil {
		return nil, errors.Wrap(errors.ErrCodeDataParseFailed, "failed to decode report", err)
	}

	if err := version.CheckReportCompatibility(version.GetVersion(), report.EngineVersion); err != nil {
		return nil, errors.Wrap(errors.ErrCodeReportIncompatible, "report version is not supported", err)
	}

	return &report, nil
}

// LoadReport opens and decodes a report.json file.
func LoadReport(path string) (*Report, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeDataNotFound, err, "failed to open report %s", path)
	}
	defer file.Close()

	return DecodeReport(file)
}

// Equity returns the equity curve of the run.
func (r *Report) Equity() []float64 {
	equity := make([]float64, len(r.Snapshots))
	for i, snapshot := range r.Snapshots {
		equity[i] = snapshot.Equity
	}

	return equity
}
