package batch

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/rs/zerolog"
)

// Writer renders output records in the requested format: "jsonl" streams one
// JSON object per line, "summary" accumulates counts and writes a single
// JSON document on Close.
type Writer struct {
	out     io.Writer
	format  string
	logger  *zerolog.Logger
	summary summaryStats
}

type summaryStats struct {
	Total      int            `json:"total"`
	ByStatus   map[string]int `json:"by_status"`
	Errors     int            `json:"errors"`
	ScoreSum   float64        `json:"-"`
	MeanScore  float64        `json:"mean_score"`
	Acceptable int            `json:"acceptable"`
}

func NewWriter(out io.Writer, format string, logger *zerolog.Logger) (*Writer, error) {
	switch format {
	case "jsonl", "summary":
	default:
		return nil, fmt.Errorf("unsupported output format %q", format)
	}
	return &Writer{
		out:     out,
		format:  format,
		logger:  logger,
		summary: summaryStats{ByStatus: make(map[string]int)},
	}, nil
}

func (w *Writer) Write(record OutputRecord, threshold float64) error {
	w.tally(record, threshold)
	if w.format != "jsonl" {
		return nil
	}
	body, err := json.Marshal(record)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w.out, string(body))
	return err
}

func (w *Writer) tally(record OutputRecord, threshold float64) {
	w.summary.Total++
	if record.Result == nil {
		w.summary.Errors++
		return
	}
	w.summary.ByStatus[string(record.Result.Status)]++
	w.summary.ScoreSum += record.Result.Score
	if record.Result.Acceptable(threshold) {
		w.summary.Acceptable++
	}
}

// Close flushes the summary document when the writer runs in summary mode.
func (w *Writer) Close() error {
	if w.format != "summary" {
		return nil
	}
	scored := w.summary.Total - w.summary.Errors
	if scored > 0 {
		w.summary.MeanScore = w.summary.ScoreSum / float64(scored)
	}
	body, err := json.MarshalIndent(w.summary, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w.out, string(body))
	return err
}

// Stats exposes the running tallies, mainly for logging at shutdown.
func (w *Writer) Stats() (total, errors int) {
	return w.summary.Total, w.summary.Errors
}
