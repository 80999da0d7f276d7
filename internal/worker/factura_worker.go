package worker

// factura_worker.go
// Renders the invoice PDF off the request path. Invoice emission already
// happened inside the placement transaction; this worker only produces the
// file, stamps factura.pdf_path and hands off to the email queue.

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/FrancoGarayBenitez/buensabor-backend-sub000/internal/infra"
	"github.com/FrancoGarayBenitez/buensabor-backend-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// FacturaPDFJobPayload is the job envelope sent to QueueFacturaPDF.
type FacturaPDFJobPayload struct {
	FacturaID    string `json:"factura_id"`
	PedidoID     string `json:"pedido_id"`
	ClienteEmail string `json:"cliente_email,omitempty"`
}

type FacturaPDFWorker struct {
	facturaRepo    repository.FacturaRepository
	pedidoRepo     repository.PedidoRepository
	dispatcher     *Dispatcher
	rdb            *redis.Client
	pdfStoragePath string
}

func NewFacturaPDFWorker(
	facturaRepo repository.FacturaRepository,
	pedidoRepo repository.PedidoRepository,
	dispatcher *Dispatcher,
	rdb *redis.Client,
	pdfStoragePath string,
) *FacturaPDFWorker {
	return &FacturaPDFWorker{
		facturaRepo:    facturaRepo,
		pedidoRepo:     pedidoRepo,
		dispatcher:     dispatcher,
		rdb:            rdb,
		pdfStoragePath: pdfStoragePath,
	}
}

// Process handles a single rendering job:
//  1. Parse FacturaPDFJobPayload from the job envelope
//  2. Fetch factura and pedido (with detalles)
//  3. Render the PDF with backoff (max 3 attempts)
//  4. Stamp factura.pdf_path
//  5. Enqueue the email job when the customer has an address
func (w *FacturaPDFWorker) Process(ctx context.Context, raw json.RawMessage) {
	var payload FacturaPDFJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("factura_worker: invalid payload")
		return
	}

	facturaID, err := uuid.Parse(payload.FacturaID)
	if err != nil {
		log.Error().Str("factura_id", payload.FacturaID).Msg("factura_worker: invalid factura_id")
		return
	}
	pedidoID, err := uuid.Parse(payload.PedidoID)
	if err != nil {
		log.Error().Str("pedido_id", payload.PedidoID).Msg("factura_worker: invalid pedido_id")
		return
	}

	factura, err := w.facturaRepo.FindByID(ctx, facturaID)
	if err != nil {
		log.Error().Err(err).Str("factura_id", payload.FacturaID).Msg("factura_worker: factura not found")
		return
	}
	pedido, err := w.pedidoRepo.FindByID(ctx, pedidoID)
	if err != nil {
		log.Error().Err(err).Str("pedido_id", payload.PedidoID).Msg("factura_worker: pedido not found")
		return
	}

	var pdfPath string
	renderErr := withRetry(ctx, 3, func(attempt int) error {
		path, err := infra.GenerarFacturaPDF(factura, pedido, w.pdfStoragePath)
		if err != nil {
			log.Warn().Err(err).Int("attempt", attempt+1).
				Str("factura_id", payload.FacturaID).
				Msg("factura_worker: render attempt failed, retrying")
			return err
		}
		pdfPath = path
		return nil
	})
	if renderErr != nil {
		log.Error().Err(renderErr).Str("factura_id", payload.FacturaID).
			Msg("factura_worker: render failed after all retries")
		SendToDLQ(ctx, w.rdb, QueueFacturaPDF, "factura_pdf", raw,
			fmt.Sprintf("render failed: %v", renderErr), 3)
		return
	}

	factura.PDFPath = &pdfPath
	if err := w.facturaRepo.Update(ctx, factura); err != nil {
		log.Error().Err(err).Str("factura_id", payload.FacturaID).
			Msg("factura_worker: failed to stamp pdf_path")
		return
	}
	log.Info().Str("pdf", pdfPath).Str("factura", factura.NumeroComprobante).
		Msg("factura_worker: PDF generated")

	if payload.ClienteEmail != "" {
		emailJob := EmailJobPayload{
			ToEmail:           payload.ClienteEmail,
			NumeroComprobante: factura.NumeroComprobante,
			NumeroPedido:      pedido.Numero,
			Total:             factura.Total.StringFixed(2),
			PDFPath:           pdfPath,
		}
		if err := w.dispatcher.EnqueueEmail(ctx, emailJob); err != nil {
			log.Warn().Err(err).Str("email", payload.ClienteEmail).
				Msg("factura_worker: failed to enqueue email")
		}
	}
}

// withRetry calls fn up to maxAttempts times with exponential backoff.
// Backoff schedule: attempt 1 = immediate, 2 = 1s, 3 = 2s.
// Returns nil if any attempt succeeds; last error otherwise.
func withRetry(ctx context.Context, maxAttempts int, fn func(attempt int) error) error {
	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		if i > 0 {
			wait := time.Duration(1<<uint(i-1)) * time.Second
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}
		if err := fn(i); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return lastErr
}
