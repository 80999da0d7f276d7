package handler

import (
	"net/http"

	"github.com/FrancoGarayBenitez/buensabor-backend-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

type FacturasHandler struct{ svc service.FacturaService }

func NewFacturasHandler(svc service.FacturaService) *FacturasHandler {
	return &FacturasHandler{svc: svc}
}

// ObtenerFacturaDePedido godoc
// @Summary      Obtener la factura de un pedido
// @Tags         facturas
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "UUID del pedido"
// @Success      200 {object} dto.FacturaResponse
// @Failure      404 {object} apierror.Error
// @Router       /v1/pedidos/{id}/factura [get]
func (h *FacturasHandler) ObtenerFacturaDePedido(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	resp, err := h.svc.ObtenerPorPedido(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// DescargarPDF godoc
// @Summary      Descargar el PDF de una factura
// @Description  404 mientras el worker no haya terminado de renderizar.
// @Tags         facturas
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        id path string true "UUID de la factura"
// @Success      200 {file} binary
// @Failure      404 {object} apierror.Error
// @Router       /v1/facturas/pdf/{id} [get]
func (h *FacturasHandler) DescargarPDF(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	path, err := h.svc.ObtenerPDFPath(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Type", "application/pdf")
	c.Status(http.StatusOK)
	c.File(path)
}
