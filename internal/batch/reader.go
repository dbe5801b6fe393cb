package batch

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/panverse/rules-agent/internal/models"
	"github.com/rs/zerolog"
)

// InputRecord is one parsed line of a JSONL input file. A malformed line
// carries its parse error instead of a request; the reader never drops
// lines silently.
type InputRecord struct {
	LineNumber int
	Request    models.Request
	Error      error
}

// Reader streams validation requests from a JSONL source one line at a time.
type Reader struct {
	source io.Reader
	logger *zerolog.Logger
}

func NewReader(source io.Reader, logger *zerolog.Logger) *Reader {
	return &Reader{source: source, logger: logger}
}

// ReadAll emits one record per non-empty line until the source is exhausted
// or the context is cancelled. The channel closes when reading stops.
func (r *Reader) ReadAll(ctx context.Context) <-chan InputRecord {
	out := make(chan InputRecord)

	go func() {
		defer close(out)

		scanner := bufio.NewScanner(r.source)
		scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

		lineNumber := 0
		for scanner.Scan() {
			lineNumber++
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}

			record := InputRecord{LineNumber: lineNumber}
			if err := json.Unmarshal([]byte(line), &record.Request); err != nil {
				record.Error = fmt.Errorf("line %d: %w", lineNumber, err)
				r.logger.Warn().Int("line", lineNumber).Err(err).Msg("Skipping malformed record")
			}

			select {
			case out <- record:
			case <-ctx.Done():
				return
			}
		}

		if err := scanner.Err(); err != nil {
			r.logger.Error().Err(err).Msg("Input read failed")
		}
	}()

	return out
}
