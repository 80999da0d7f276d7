package handler

import (
	"net/http"

	"github.com/FrancoGarayBenitez/buensabor-backend-sub000/internal/apierror"
	"github.com/FrancoGarayBenitez/buensabor-backend-sub000/internal/dto"
	"github.com/FrancoGarayBenitez/buensabor-backend-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

type ArticulosHandler struct {
	svc   service.ArticuloService
	stock service.StockService
}

func NewArticulosHandler(svc service.ArticuloService, stock service.StockService) *ArticulosHandler {
	return &ArticulosHandler{svc: svc, stock: stock}
}

// CrearArticulo godoc
// @Summary      Crear articulo
// @Description  Alta de insumo o manufacturado. La receta solo aplica a manufacturados y sus lineas deben referenciar insumos existentes, sin repetidos.
// @Tags         articulos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CrearArticuloRequest true "Datos del articulo"
// @Success      201  {object} dto.ArticuloResponse
// @Failure      422  {object} apierror.Error
// @Router       /v1/articulos [post]
func (h *ArticulosHandler) CrearArticulo(c *gin.Context) {
	var req dto.CrearArticuloRequest
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

// ActualizarArticulo godoc
// @Summary      Actualizar articulo
// @Tags         articulos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string                       true "UUID del articulo"
// @Param        body body dto.ActualizarArticuloRequest true "Datos a actualizar"
// @Success      200  {object} dto.ArticuloResponse
// @Failure      404  {object} apierror.Error
// @Router       /v1/articulos/{id} [put]
func (h *ArticulosHandler) ActualizarArticulo(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.ActualizarArticuloRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Actualizar(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ObtenerArticulo godoc
// @Summary      Obtener articulo
// @Description  Incluye receta y max_preparable para manufacturados, estado de stock para insumos.
// @Tags         articulos
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "UUID del articulo"
// @Success      200 {object} dto.ArticuloResponse
// @Failure      404 {object} apierror.Error
// @Router       /v1/articulos/{id} [get]
func (h *ArticulosHandler) ObtenerArticulo(c *gin.Context) {
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

// ListarArticulos godoc
// @Summary      Listar articulos
// @Tags         articulos
// @Produce      json
// @Security     BearerAuth
// @Param        tipo         query string false "insumo | manufacturado | all"
// @Param        denominacion query string false "Busqueda parcial por nombre"
// @Param        activo       query string false "false | all (default: activos)"
// @Param        page         query int    false "Pagina (default 1)"
// @Param        limit        query int    false "Registros por pagina (default 50)"
// @Success      200 {object} dto.ArticuloListResponse
// @Router       /v1/articulos [get]
func (h *ArticulosHandler) ListarArticulos(c *gin.Context) {
	var filter dto.ArticuloFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest,
			apierror.New(apierror.CodeValidation, "%s", err.Error()))
		return
	}
	resp, err := h.svc.ListArticulos(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// DesactivarArticulo godoc
// @Summary      Dar de baja un articulo
// @Description  Baja logica. Un insumo referenciado por alguna receta no puede darse de baja.
// @Tags         articulos
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "UUID del articulo"
// @Success      204
// @Failure      409 {object} apierror.Error
// @Router       /v1/articulos/{id} [delete]
func (h *ArticulosHandler) DesactivarArticulo(c *gin.Context) {
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

// AlertasStock godoc
// @Summary      Alertas de stock
// @Description  Insumos activos en estado critico o bajo, ordenados por severidad.
// @Tags         articulos
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} dto.AlertaStockResponse
// @Router       /v1/articulos/alertas [get]
func (h *ArticulosHandler) AlertasStock(c *gin.Context) {
	alertas, err := h.stock.Alertas(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, alertas)
}
