package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// PreferenciaPago is sent to the payment gateway sidecar when an order is
// placed. The sidecar talks to the external processor and calls back with the
// outcome via the /v1/pagos/webhook endpoint.
type PreferenciaPago struct {
	PedidoID     string  `json:"pedido_id"`
	Monto        float64 `json:"monto"`
	Descripcion  string  `json:"descripcion"`
	ClienteEmail string  `json:"cliente_email"`
}

// PreferenciaResponse is returned by the sidecar with the checkout link.
type PreferenciaResponse struct {
	PreferenciaID string `json:"preferencia_id"`
	CheckoutURL   string `json:"checkout_url"`
}

// PagosClient is an HTTP client that delegates payment processing to the
// gateway sidecar. Gateway failures never block order placement: preference
// creation is best-effort and the circuit breaker fast-fails while the
// sidecar is down.
type PagosClient struct {
	gatewayURL string
	httpClient *http.Client
	cb         *CircuitBreaker
}

func NewPagosClient(gatewayURL string, cb *CircuitBreaker) *PagosClient {
	return &PagosClient{
		gatewayURL: gatewayURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		cb:         cb,
	}
}

// CircuitState exposes the breaker state for the health endpoint.
func (c *PagosClient) CircuitState() CBState { return c.cb.State() }

// CrearPreferencia posts a checkout preference to the sidecar.
func (c *PagosClient) CrearPreferencia(ctx context.Context, pref PreferenciaPago) (*PreferenciaResponse, error) {
	var result PreferenciaResponse
	err := c.cb.Execute(func() error {
		body, err := json.Marshal(pref)
		if err != nil {
			return fmt.Errorf("pagos: marshal preferencia: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.gatewayURL+"/preferencias", bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("pagos: create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("pagos: gateway unreachable: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
			return fmt.Errorf("pagos: gateway returned %d", resp.StatusCode)
		}
		return json.NewDecoder(resp.Body).Decode(&result)
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}
