package batch

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/panverse/rules-agent/internal/models"
)

func scoredRecord(line int, status models.Status, score float64) OutputRecord {
	return OutputRecord{
		LineNumber: line,
		Result: &models.Result{
			ContentType: models.CategoryMonster,
			Status:      status,
			Score:       score,
		},
	}
}

func TestWriter_RejectsUnknownFormat(t *testing.T) {
	if _, err := NewWriter(&bytes.Buffer{}, "xml", newTestLogger()); err == nil {
		t.Fatal("unknown format must be rejected")
	}
}

func TestWriter_JSONLStreamsOneObjectPerLine(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf, "jsonl", newTestLogger())
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}

	if err := w.Write(scoredRecord(1, models.StatusValid, 0.95), 0.7); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := w.Write(OutputRecord{LineNumber: 2, Error: "line 2: bad json"}, 0.7); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	var first OutputRecord
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("first line is not JSON: %v", err)
	}
	if first.LineNumber != 1 || first.Result == nil || first.Result.Score != 0.95 {
		t.Errorf("first line = %+v", first)
	}
	if !strings.Contains(lines[1], "bad json") {
		t.Errorf("second line = %q, want the error carried through", lines[1])
	}
}

func TestWriter_SummaryAggregates(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf, "summary", newTestLogger())
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}

	records := []OutputRecord{
		scoredRecord(1, models.StatusValid, 0.9),
		scoredRecord(2, models.StatusWarning, 0.7),
		scoredRecord(3, models.StatusInvalid, 0.4),
		{LineNumber: 4, Error: "line 4: bad json"},
	}
	for _, record := range records {
		if err := w.Write(record, 0.7); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}

	if buf.Len() != 0 {
		t.Fatal("summary mode must not emit per-record output")
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	var summary struct {
		Total      int            `json:"total"`
		ByStatus   map[string]int `json:"by_status"`
		Errors     int            `json:"errors"`
		MeanScore  float64        `json:"mean_score"`
		Acceptable int            `json:"acceptable"`
	}
	if err := json.Unmarshal(buf.Bytes(), &summary); err != nil {
		t.Fatalf("summary is not JSON: %v", err)
	}
	if summary.Total != 4 || summary.Errors != 1 {
		t.Errorf("total = %d, errors = %d; want 4 and 1", summary.Total, summary.Errors)
	}
	if summary.ByStatus["valid"] != 1 || summary.ByStatus["warning"] != 1 || summary.ByStatus["invalid"] != 1 {
		t.Errorf("by_status = %v", summary.ByStatus)
	}
	if want := (0.9 + 0.7 + 0.4) / 3; summary.MeanScore != want {
		t.Errorf("mean_score = %v, want %v", summary.MeanScore, want)
	}
	if summary.Acceptable != 2 {
		t.Errorf("acceptable = %d, want 2 (scores at or above 0.7)", summary.Acceptable)
	}

	total, errors := w.Stats()
	if total != 4 || errors != 1 {
		t.Errorf("Stats = %d, %d; want 4 and 1", total, errors)
	}
}
