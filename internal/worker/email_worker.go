package worker

// Consumes QueueEmail: mails the invoice to the customer with the rendered
// PDF attached. A missing address is a skip, not a failure — the invoice is
// always reachable through the API regardless.

import (
	"context"
	"encoding/json"

	"github.com/FrancoGarayBenitez/buensabor-backend-sub000/internal/infra"

	"github.com/rs/zerolog/log"
)

// EmailJobPayload is the job envelope sent to QueueEmail.
type EmailJobPayload struct {
	ToEmail           string `json:"to_email"`
	NumeroComprobante string `json:"numero_comprobante"`
	NumeroPedido      int    `json:"numero_pedido"`
	Total             string `json:"total"`
	PDFPath           string `json:"pdf_path"`
}

type EmailWorker struct {
	mailer *infra.Mailer
}

func NewEmailWorker(mailer *infra.Mailer) *EmailWorker {
	return &EmailWorker{mailer: mailer}
}

func (w *EmailWorker) Process(_ context.Context, raw json.RawMessage) {
	var payload EmailJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("email_worker: payload invalido")
		return
	}
	if payload.ToEmail == "" {
		log.Warn().Str("factura", payload.NumeroComprobante).
			Msg("email_worker: cliente sin email, se omite el envio")
		return
	}

	err := w.mailer.SendFactura(infra.FacturaMail{
		To:                payload.ToEmail,
		NumeroComprobante: payload.NumeroComprobante,
		NumeroPedido:      payload.NumeroPedido,
		Total:             payload.Total,
		PDFPath:           payload.PDFPath,
	})
	if err != nil {
		log.Error().Err(err).Str("to", payload.ToEmail).Msg("email_worker: fallo el envio")
		return
	}
	log.Info().Str("to", payload.ToEmail).Str("factura", payload.NumeroComprobante).
		Msg("email_worker: factura enviada")
}
