package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueFacturaPDF = "jobs:factura_pdf"
	QueueEmail      = "jobs:email"

	// Pub/sub channels for the station screens.
	CanalCocina   = "eventos:cocina"
	CanalCaja     = "eventos:caja"
	CanalDelivery = "eventos:delivery"
)

// Job is the generic envelope for all async tasks.
type Job struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// EventoPedido is published to a station channel when an order changes state.
type EventoPedido struct {
	Tipo     string `json:"tipo"`
	PedidoID string `json:"pedido_id"`
	Numero   int    `json:"numero"`
	Estado   string `json:"estado"`
}

// Dispatcher enqueues async jobs into Redis lists and publishes station
// events. The worker pool dequeues jobs via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueueFacturaPDF pushes an invoice rendering job to Redis.
func (d *Dispatcher) EnqueueFacturaPDF(ctx context.Context, payload interface{}) error {
	return d.enqueue(ctx, QueueFacturaPDF, "factura_pdf", payload)
}

// EnqueueEmail pushes an email job to Redis.
func (d *Dispatcher) EnqueueEmail(ctx context.Context, payload interface{}) error {
	return d.enqueue(ctx, QueueEmail, "email", payload)
}

// PublicarEvento notifies the station screens subscribed to canal.
func (d *Dispatcher) PublicarEvento(ctx context.Context, canal string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return d.rdb.Publish(ctx, canal, data).Err()
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	encoded, err := json.Marshal(Job{Type: jobType, Payload: data})
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, queue, encoded).Err()
}

// WorkerHandlers routes dequeued jobs to their processors.
type WorkerHandlers struct {
	FacturaPDF *FacturaPDFWorker
	Email      *EmailWorker
}

// StartWorkerPool launches numWorkers goroutines consuming both queues.
// Consumers block on BRPOP with a short timeout so context cancellation is
// noticed within seconds.
func StartWorkerPool(ctx context.Context, rdb *redis.Client, numWorkers int, handlers WorkerHandlers) {
	for i := 0; i < numWorkers; i++ {
		go consumir(ctx, rdb, i, handlers)
	}
	log.Info().Int("workers", numWorkers).Msg("pool de workers iniciado")
}

func consumir(ctx context.Context, rdb *redis.Client, id int, handlers WorkerHandlers) {
	queues := []string{QueueFacturaPDF, QueueEmail}
	for ctx.Err() == nil {
		result, err := rdb.BRPop(ctx, 5*time.Second, queues...).Result()
		if err != nil || len(result) < 2 {
			// redis.Nil on timeout, or the context was cancelled
			continue
		}
		procesarJob(ctx, rdb, handlers, result[0], result[1])
	}
	log.Info().Int("worker", id).Msg("worker detenido")
}

func procesarJob(ctx context.Context, rdb *redis.Client, handlers WorkerHandlers, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("job ilegible, descartado")
		return
	}

	switch {
	case queue == QueueFacturaPDF && handlers.FacturaPDF != nil:
		handlers.FacturaPDF.Process(ctx, job.Payload)
	case queue == QueueEmail && handlers.Email != nil:
		handlers.Email.Process(ctx, job.Payload)
	default:
		log.Warn().Str("type", job.Type).Str("queue", queue).Msg("job sin handler registrado")
		SendToDLQ(ctx, rdb, queue, job.Type, job.Payload, "no handler registered", 0)
	}
}
