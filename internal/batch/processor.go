package batch

import (
	"context"
	"sync"

	"github.com/panverse/rules-agent/internal/dispatch"
	"github.com/panverse/rules-agent/internal/models"
	"github.com/rs/zerolog"
)

// OutputRecord pairs a validation result with the line it came from.
// Records that never reached the dispatcher (parse failures, dispatch
// errors) carry the error instead.
type OutputRecord struct {
	LineNumber int            `json:"line"`
	Result     *models.Result `json:"result,omitempty"`
	Error      string         `json:"error,omitempty"`
}

// Processor fans records out to a fixed pool of workers, each running the
// shared dispatcher. Validation is read-only over the rule snapshot, so
// workers need no coordination beyond the channels.
type Processor struct {
	dispatcher *dispatch.Dispatcher
	workers    int
	logger     *zerolog.Logger
}

func NewProcessor(dispatcher *dispatch.Dispatcher, workers int, logger *zerolog.Logger) *Processor {
	if workers < 1 {
		workers = 1
	}
	return &Processor{dispatcher: dispatcher, workers: workers, logger: logger}
}

// Process validates every record and emits one output per input. The output
// channel closes when all workers finish.
func (p *Processor) Process(ctx context.Context, records <-chan InputRecord) <-chan OutputRecord {
	out := make(chan OutputRecord)

	var wg sync.WaitGroup
	wg.Add(p.workers)
	for i := 0; i < p.workers; i++ {
		go func() {
			defer wg.Done()
			for record := range records {
				output := p.processOne(record)
				select {
				case out <- output:
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(out)
	}()

	return out
}

func (p *Processor) processOne(record InputRecord) OutputRecord {
	if record.Error != nil {
		return OutputRecord{LineNumber: record.LineNumber, Error: record.Error.Error()}
	}
	result, err := p.dispatcher.Validate(record.Request)
	if err != nil {
		p.logger.Error().Err(err).
			Int("line", record.LineNumber).
			Str("request_id", record.Request.RequestID).
			Msg("Validation failed")
		return OutputRecord{LineNumber: record.LineNumber, Error: err.Error()}
	}
	return OutputRecord{LineNumber: record.LineNumber, Result: &result}
}
