package handler

import (
	"net/http"

	"github.com/FrancoGarayBenitez/buensabor-backend-sub000/internal/apierror"
	"github.com/FrancoGarayBenitez/buensabor-backend-sub000/internal/dto"
	"github.com/FrancoGarayBenitez/buensabor-backend-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

type PedidosHandler struct{ svc service.PedidoService }

func NewPedidosHandler(svc service.PedidoService) *PedidosHandler {
	return &PedidosHandler{svc: svc}
}

// RegistrarPedido godoc
// @Summary      Registrar un nuevo pedido
// @Description  Crea un pedido atomico: evalua promociones, aplica la politica take-away/delivery, verifica disponibilidad y emite la factura en la misma transaccion.
// @Tags         pedidos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.RegistrarPedidoRequest true "Detalle del pedido"
// @Success      201  {object} dto.PedidoResponse
// @Failure      409  {object} apierror.Error
// @Failure      422  {object} apierror.Error
// @Router       /v1/pedidos [post]
func (h *PedidosHandler) RegistrarPedido(c *gin.Context) {
	var req dto.RegistrarPedidoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.RegistrarPedido(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Transicionar godoc
// @Summary      Avanzar el estado de un pedido
// @Description  pendiente → en_preparacion descuenta stock; los demas avances solo registran el evento. Nunca retrocede.
// @Tags         pedidos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string               true "UUID del pedido"
// @Param        body body dto.TransicionRequest true "Estado destino"
// @Success      200  {object} dto.PedidoResponse
// @Failure      409  {object} apierror.Error
// @Router       /v1/pedidos/{id}/transicion [post]
func (h *PedidosHandler) Transicionar(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.TransicionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Transicionar(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Cancelar godoc
// @Summary      Cancelar un pedido
// @Description  Cancela desde pendiente, en_preparacion o listo; restaura stock si ya fue descontado. Un pedido entregado no se cancela.
// @Tags         pedidos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string                    true "UUID del pedido"
// @Param        body body dto.CancelarPedidoRequest false "Motivo"
// @Success      200  {object} dto.PedidoResponse
// @Failure      409  {object} apierror.Error
// @Router       /v1/pedidos/{id} [delete]
func (h *PedidosHandler) Cancelar(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.CancelarPedidoRequest
	// Body is optional on cancel
	_ = c.ShouldBindJSON(&req)

	resp, err := h.svc.Cancelar(c.Request.Context(), id, req.Motivo)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// PagoWebhook godoc
// @Summary      Webhook de pago
// @Description  Registra el resultado informado por la pasarela de pagos. Idempotente: reenviar el mismo resultado no tiene efecto adicional.
// @Tags         pedidos
// @Accept       json
// @Produce      json
// @Param        body body dto.PagoWebhookRequest true "Resultado del pago"
// @Success      204
// @Failure      404  {object} apierror.Error
// @Router       /v1/pagos/webhook [post]
func (h *PedidosHandler) PagoWebhook(c *gin.Context) {
	var req dto.PagoWebhookRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.svc.ConfirmarPago(c.Request.Context(), req); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ObtenerPedido godoc
// @Summary      Obtener un pedido
// @Tags         pedidos
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "UUID del pedido"
// @Success      200 {object} dto.PedidoResponse
// @Failure      404 {object} apierror.Error
// @Router       /v1/pedidos/{id} [get]
func (h *PedidosHandler) ObtenerPedido(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	resp, err := h.svc.ObtenerPorID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListarPedidos godoc
// @Summary      Listar pedidos
// @Description  Lista paginada filtrada por fecha (default hoy) y estado.
// @Tags         pedidos
// @Produce      json
// @Security     BearerAuth
// @Param        fecha  query string false "Fecha YYYY-MM-DD (default: hoy)"
// @Param        estado query string false "pendiente | en_preparacion | listo | entregado | cancelado | all"
// @Param        page   query int    false "Pagina (default 1)"
// @Param        limit  query int    false "Registros por pagina (default 50)"
// @Success      200    {object} dto.PedidoListResponse
// @Router       /v1/pedidos [get]
func (h *PedidosHandler) ListarPedidos(c *gin.Context) {
	var filter dto.PedidoFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest,
			apierror.New(apierror.CodeValidation, "%s", err.Error()))
		return
	}
	resp, err := h.svc.ListPedidos(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
