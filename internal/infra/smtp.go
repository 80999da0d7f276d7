package infra

import (
	"fmt"
	"net/smtp"

	"github.com/FrancoGarayBenitez/buensabor-backend-sub000/internal/config"

	"github.com/jordan-wright/email"
)

// Mailer sends the invoice message to the customer. The message text is
// owned here so every caller produces the same mail regardless of which
// queue the job came from.
type Mailer struct {
	host     string
	user     string
	password string
	addr     string
}

func NewMailer(cfg *config.Config) *Mailer {
	return &Mailer{
		host:     cfg.SMTPHost,
		user:     cfg.SMTPUser,
		password: cfg.SMTPPassword,
		addr:     fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
	}
}

// FacturaMail carries what the invoice message needs.
type FacturaMail struct {
	To                string
	NumeroComprobante string
	NumeroPedido      int
	Total             string // already formatted, two decimals
	PDFPath           string
}

// SendFactura mails the invoice, attaching the PDF when it was rendered.
func (m *Mailer) SendFactura(f FacturaMail) error {
	e := email.NewEmail()
	e.From = fmt.Sprintf("El Buen Sabor <%s>", m.user)
	e.To = []string{f.To}
	e.Subject = fmt.Sprintf("Factura El Buen Sabor — %s", f.NumeroComprobante)
	e.Text = []byte(fmt.Sprintf(
		"Adjuntamos la factura de tu pedido #%d.\nTotal: $%s\n\nGracias por tu compra.\nEl Buen Sabor",
		f.NumeroPedido, f.Total))

	if f.PDFPath != "" {
		if _, err := e.AttachFile(f.PDFPath); err != nil {
			return fmt.Errorf("mailer: adjuntar PDF: %w", err)
		}
	}
	return e.Send(m.addr, smtp.PlainAuth("", m.user, m.password, m.host))
}
