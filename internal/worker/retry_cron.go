package worker

// retry_cron.go
// Background goroutine that periodically re-enqueues rendering jobs for
// facturas still missing their PDF. Covers the crash window between COMMIT
// and the original enqueue, and DLQ'd jobs whose transient cause cleared.

import (
	"context"
	"time"

	"github.com/FrancoGarayBenitez/buensabor-backend-sub000/internal/repository"

	"github.com/rs/zerolog/log"
)

const (
	retryTickInterval = 60 * time.Second
	retryBatchSize    = 10

	// Facturas younger than this are likely still in-flight on the queue.
	retryMinAge = 2 * time.Minute
)

// RetryCronConfig holds all dependencies for the retry goroutine.
type RetryCronConfig struct {
	FacturaRepo repository.FacturaRepository
	PedidoRepo  repository.PedidoRepository
	ClienteRepo repository.ClienteRepository
	Dispatcher  *Dispatcher
}

// StartRetryCron launches a background goroutine that ticks every minute and
// re-enqueues rendering jobs for facturas without a PDF. It respects the
// context for graceful shutdown.
func StartRetryCron(ctx context.Context, cfg RetryCronConfig) {
	go func() {
		ticker := time.NewTicker(retryTickInterval)
		defer ticker.Stop()

		log.Info().Msg("retry_cron: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("retry_cron: shutting down")
				return
			case <-ticker.C:
				processRetries(ctx, cfg)
			}
		}
	}()
}

func processRetries(ctx context.Context, cfg RetryCronConfig) {
	facturas, err := cfg.FacturaRepo.ListSinPDF(ctx, retryBatchSize)
	if err != nil {
		log.Error().Err(err).Msg("retry_cron: failed to query facturas sin PDF")
		return
	}

	enqueued := 0
	for i := range facturas {
		f := &facturas[i]
		if time.Since(f.CreatedAt) < retryMinAge {
			continue
		}

		email := ""
		if pedido, err := cfg.PedidoRepo.FindByID(ctx, f.PedidoID); err == nil {
			if cliente, err := cfg.ClienteRepo.FindByID(ctx, pedido.ClienteID); err == nil {
				email = cliente.Email
			}
		}

		job := FacturaPDFJobPayload{
			FacturaID:    f.ID.String(),
			PedidoID:     f.PedidoID.String(),
			ClienteEmail: email,
		}
		if err := cfg.Dispatcher.EnqueueFacturaPDF(ctx, job); err != nil {
			log.Warn().Err(err).Str("factura", f.NumeroComprobante).
				Msg("retry_cron: failed to re-enqueue")
			continue
		}
		enqueued++
	}

	if enqueued > 0 {
		log.Info().Int("count", enqueued).Msg("retry_cron: re-enqueued facturas sin PDF")
	}
}
