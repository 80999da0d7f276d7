package handler

import (
	"net/http"

	"github.com/FrancoGarayBenitez/buensabor-backend-sub000/internal/dto"
	"github.com/FrancoGarayBenitez/buensabor-backend-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

type ComprasHandler struct{ stock service.StockService }

func NewComprasHandler(stock service.StockService) *ComprasHandler {
	return &ComprasHandler{stock: stock}
}

// RegistrarCompra godoc
// @Summary      Registrar compra de insumo
// @Description  Unica via de ingreso de stock. Mueve el costo promedio ponderado y deja un registro inmutable; no existe edicion ni borrado de compras.
// @Tags         compras
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.RegistrarCompraRequest true "Compra"
// @Success      201  {object} dto.CompraResponse
// @Failure      422  {object} apierror.Error
// @Router       /v1/compras [post]
func (h *ComprasHandler) RegistrarCompra(c *gin.Context) {
	var req dto.RegistrarCompraRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.stock.RegistrarCompra(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}
