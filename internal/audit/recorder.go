// Package audit records pipeline outcomes to external sinks. Recording is
// strictly fire-and-forget: a slow or dead sink never blocks or fails the
// pipeline.
package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Outcomes recorded by the dispatcher.
const (
	OutcomeDuplicate = "duplicate_skip"
	OutcomeDelivered = "delivered"
	OutcomeError     = "error"
)

type Record struct {
	ID         string    `json:"id"`
	EventType  string    `json:"event_type"`
	GroupID    int64     `json:"group_id"`
	Outcome    string    `json:"outcome"`
	Detail     string    `json:"detail,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Sink persists a single record.
type Sink interface {
	Record(ctx context.Context, rec Record) error
}

const recordTimeout = 5 * time.Second

type Recorder struct {
	sinks []Sink
	log   *slog.Logger
	wg    sync.WaitGroup
}

func NewRecorder(log *slog.Logger, sinks ...Sink) *Recorder {
	return &Recorder{sinks: sinks, log: log}
}

// Record fans the record out to every sink in a detached goroutine.
// Sink failures are logged and dropped.
func (r *Recorder) Record(eventType string, groupID int64, outcome, detail string) {
	rec := Record{
		ID:         uuid.New().String(),
		EventType:  eventType,
		GroupID:    groupID,
		Outcome:    outcome,
		Detail:     detail,
		OccurredAt: time.Now().UTC(),
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
		defer cancel()

		for _, sink := range r.sinks {
			if err := sink.Record(ctx, rec); err != nil {
				r.log.Warn("audit sink failed", "outcome", rec.Outcome, "event_type", rec.EventType, "error", err)
			}
		}
	}()
}

// Close waits for in-flight records, bounded by the per-record timeout.
func (r *Recorder) Close() {
	r.wg.Wait()
}
