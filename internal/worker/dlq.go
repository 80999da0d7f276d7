package worker

// Dead letter queue: one Redis list per source queue, keyed dlq:{queue}.
// Jobs land here after exhausting their retries (PDF rendering, email) or
// when a queue has no registered handler. Entries stay for manual
// inspection and re-enqueueing from redis-cli; nothing consumes them
// automatically.

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const DLQPrefix = "dlq:"

// DLQEntry is the envelope stored in the dead letter list. FailedAt is
// RFC 3339 UTC.
type DLQEntry struct {
	OriginalQueue string          `json:"original_queue"`
	JobType       string          `json:"job_type"`
	Payload       json.RawMessage `json:"payload"`
	Reason        string          `json:"reason"`
	FailedAt      string          `json:"failed_at"`
	Attempts      int             `json:"attempts"`
}

// SendToDLQ parks a failed job. Best-effort: a Redis error here is only
// logged, the job is already lost to its queue either way.
func SendToDLQ(ctx context.Context, rdb *redis.Client, queue, jobType string, payload json.RawMessage, reason string, attempts int) {
	data, err := json.Marshal(DLQEntry{
		OriginalQueue: queue,
		JobType:       jobType,
		Payload:       payload,
		Reason:        reason,
		FailedAt:      time.Now().UTC().Format(time.RFC3339),
		Attempts:      attempts,
	})
	if err != nil {
		log.Error().Err(err).Str("queue", queue).Msg("dlq: no se pudo serializar la entrada")
		return
	}
	if err := rdb.LPush(ctx, DLQPrefix+queue, data).Err(); err != nil {
		log.Error().Err(err).Str("queue", queue).Msg("dlq: no se pudo encolar la entrada")
		return
	}
	log.Warn().
		Str("queue", queue).
		Str("job_type", jobType).
		Str("reason", reason).
		Int("attempts", attempts).
		Msg("dlq: job movido a la cola de descarte")
}

// DLQLength reports the backlog of one dead letter list.
func DLQLength(ctx context.Context, rdb *redis.Client, queue string) (int64, error) {
	return rdb.LLen(ctx, DLQPrefix+queue).Result()
}

// DLQBacklog sums the dead letter backlog across the known job queues.
// Surfaced by the health endpoint so a growing backlog is visible without
// poking Redis by hand.
func DLQBacklog(ctx context.Context, rdb *redis.Client) int64 {
	var total int64
	for _, q := range []string{QueueFacturaPDF, QueueEmail} {
		n, err := DLQLength(ctx, rdb, q)
		if err != nil {
			continue
		}
		total += n
	}
	return total
}
