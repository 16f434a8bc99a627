// Package audit persists presence transitions off the hot path.
package audit

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/roomsignal/internal/core"
	"github.com/vovakirdan/roomsignal/internal/metrics"
	"github.com/vovakirdan/roomsignal/internal/store"
)

const maxBatch = 64

// Recorder is a core.PresenceObserver that queues changes and writes them to
// a store.PresenceLog from its own goroutine. When the queue is full the
// change is dropped; presence never waits on storage.
type Recorder struct {
	log   store.PresenceLog
	queue chan store.PresenceRecord
	l     *zerolog.Logger
}

// NewRecorder creates a recorder with the given queue size.
func NewRecorder(log store.PresenceLog, size int, logger *zerolog.Logger) *Recorder {
	if size <= 0 {
		size = 256
	}
	return &Recorder{
		log:   log,
		queue: make(chan store.PresenceRecord, size),
		l:     logger,
	}
}

// ObservePresence implements core.PresenceObserver.
func (r *Recorder) ObservePresence(change core.PresenceChange) {
	rec := store.PresenceRecord{
		RoomID:        string(change.Room),
		ParticipantID: string(change.Participant),
		Kind:          store.PresenceKind(change.Kind),
		At:            change.At,
	}
	select {
	case r.queue <- rec:
	default:
		metrics.AuditDropped.Inc()
		r.l.Warn().Str("room_id", rec.RoomID).Msg("audit queue full, dropping presence record")
	}
}

// Run drains the queue until ctx is cancelled, then flushes what is left.
func (r *Recorder) Run(ctx context.Context) error {
	batch := make([]store.PresenceRecord, 0, maxBatch)
	for {
		select {
		case rec := <-r.queue:
			batch = append(batch[:0], rec)
			batch = r.collect(batch)
			r.write(ctx, batch)
		case <-ctx.Done():
			batch = r.collect(batch[:0])
			// The parent context is gone; give the final flush its own deadline.
			flushCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			r.write(flushCtx, batch)
			cancel()
			return nil
		}
	}
}

// collect appends whatever is immediately available, up to maxBatch.
func (r *Recorder) collect(batch []store.PresenceRecord) []store.PresenceRecord {
	for len(batch) < maxBatch {
		select {
		case rec := <-r.queue:
			batch = append(batch, rec)
		default:
			return batch
		}
	}
	return batch
}

func (r *Recorder) write(ctx context.Context, batch []store.PresenceRecord) {
	if len(batch) == 0 {
		return
	}
	if err := r.log.RecordPresence(ctx, batch...); err != nil {
		r.l.Error().Err(err).Int("records", len(batch)).Msg("failed to write presence records")
	}
}
