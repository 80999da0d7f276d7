package handler

import (
	"net/http"

	"github.com/FrancoGarayBenitez/buensabor-backend-sub000/internal/dto"
	"github.com/FrancoGarayBenitez/buensabor-backend-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

type PromocionesHandler struct{ svc service.PromocionService }

func NewPromocionesHandler(svc service.PromocionService) *PromocionesHandler {
	return &PromocionesHandler{svc: svc}
}

// CrearPromocion godoc
// @Summary      Crear promocion
// @Description  Define un descuento (porcentaje o monto fijo) con doble ventana de vigencia: rango de fechas y franja horaria diaria.
// @Tags         promociones
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CrearPromocionRequest true "Datos de la promocion"
// @Success      201  {object} dto.PromocionResponse
// @Failure      422  {object} apierror.Error
// @Router       /v1/promociones [post]
func (h *PromocionesHandler) CrearPromocion(c *gin.Context) {
	var req dto.CrearPromocionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Crear(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ListarPromociones godoc
// @Summary      Listar promociones
// @Tags         promociones
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} dto.PromocionResponse
// @Router       /v1/promociones [get]
func (h *PromocionesHandler) ListarPromociones(c *gin.Context) {
	resp, err := h.svc.Listar(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// DesactivarPromocion godoc
// @Summary      Desactivar promocion
// @Description  Baja logica: la promocion deja de aplicar a pedidos nuevos; los descuentos ya asentados no cambian.
// @Tags         promociones
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "UUID de la promocion"
// @Success      204
// @Failure      404 {object} apierror.Error
// @Router       /v1/promociones/{id} [delete]
func (h *PromocionesHandler) DesactivarPromocion(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.svc.Desactivar(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
