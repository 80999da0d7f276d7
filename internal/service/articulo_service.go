package service

import (
	"context"

	"github.com/FrancoGarayBenitez/buensabor-backend-sub000/internal/apierror"
	"github.com/FrancoGarayBenitez/buensabor-backend-sub000/internal/dto"
	"github.com/FrancoGarayBenitez/buensabor-backend-sub000/internal/model"
	"github.com/FrancoGarayBenitez/buensabor-backend-sub000/internal/repository"

	"github.com/google/uuid"
)

type ArticuloService interface {
	Crear(ctx context.Context, req dto.CrearArticuloRequest) (*dto.ArticuloResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarArticuloRequest) (*dto.ArticuloResponse, error)
	ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.ArticuloResponse, error)
	ListArticulos(ctx context.Context, filter dto.ArticuloFilter) (*dto.ArticuloListResponse, error)
	Desactivar(ctx context.Context, id uuid.UUID) error
}

type articuloService struct {
	repo  repository.ArticuloRepository
	stock StockService
}

func NewArticuloService(repo repository.ArticuloRepository, stock StockService) ArticuloService {
	return &articuloService{repo: repo, stock: stock}
}

func (s *articuloService) Crear(ctx context.Context, req dto.CrearArticuloRequest) (*dto.ArticuloResponse, error) {
	tipo := model.TipoArticulo(req.Tipo)
	if req.PrecioVenta.IsNegative() {
		return nil, apierror.Validation("el precio de venta no puede ser negativo")
	}

	articulo := &model.Articulo{
		Denominacion: req.Denominacion,
		Tipo:         tipo,
		PrecioVenta:  req.PrecioVenta,
		Activo:       true,
	}

	switch tipo {
	case model.TipoInsumo:
		if len(req.Receta) > 0 {
			return nil, apierror.Validation("un insumo no puede tener receta")
		}
		articulo.StockMaximo = req.StockMaximo
		articulo.EstadoStock = model.ClasificarStock(0, req.StockMaximo)

	case model.TipoManufacturado:
		receta, err := s.construirReceta(ctx, req.Receta)
		if err != nil {
			return nil, err
		}
		articulo.Receta = receta
	}

	if err := s.repo.Create(ctx, articulo); err != nil {
		return nil, err
	}
	creado, err := s.repo.FindByID(ctx, articulo.ID)
	if err != nil {
		creado = articulo
	}
	return s.articuloToResponse(creado), nil
}

// construirReceta validates every line: the referenced article must exist and
// be an insumo, and an insumo may appear at most once per recipe.
func (s *articuloService) construirReceta(ctx context.Context, lineas []dto.DetalleRecetaRequest) ([]model.DetalleReceta, error) {
	receta := make([]model.DetalleReceta, 0, len(lineas))
	vistos := make(map[uuid.UUID]bool, len(lineas))
	for i, l := range lineas {
		insumoID, err := uuid.Parse(l.InsumoID)
		if err != nil {
			return nil, apierror.Validation("receta linea %d: insumo_id invalido", i+1)
		}
		if l.Cantidad <= 0 {
			return nil, apierror.Validation("receta linea %d: la cantidad debe ser mayor a cero", i+1)
		}
		if vistos[insumoID] {
			return nil, apierror.Validation("receta linea %d: insumo repetido", i+1)
		}
		vistos[insumoID] = true

		insumo, err := s.repo.FindByID(ctx, insumoID)
		if err != nil {
			return nil, apierror.NotFound("insumo %s no encontrado", l.InsumoID)
		}
		if insumo.Tipo != model.TipoInsumo {
			return nil, apierror.Validation("el articulo %q no es un insumo y no puede formar parte de una receta", insumo.Denominacion)
		}
		receta = append(receta, model.DetalleReceta{
			InsumoID: insumoID,
			Cantidad: l.Cantidad,
		})
	}
	return receta, nil
}

func (s *articuloService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarArticuloRequest) (*dto.ArticuloResponse, error) {
	articulo, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apierror.NotFound("articulo %s no encontrado", id)
	}
	if req.PrecioVenta.IsNegative() {
		return nil, apierror.Validation("el precio de venta no puede ser negativo")
	}

	articulo.Denominacion = req.Denominacion
	articulo.PrecioVenta = req.PrecioVenta
	if articulo.Tipo == model.TipoInsumo {
		articulo.StockMaximo = req.StockMaximo
		articulo.EstadoStock = model.ClasificarStock(articulo.StockActual, req.StockMaximo)
	}

	if err := s.repo.Update(ctx, articulo); err != nil {
		return nil, err
	}
	return s.articuloToResponse(articulo), nil
}

func (s *articuloService) ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.ArticuloResponse, error) {
	articulo, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apierror.NotFound("articulo %s no encontrado", id)
	}
	return s.articuloToResponse(articulo), nil
}

func (s *articuloService) ListArticulos(ctx context.Context, filter dto.ArticuloFilter) (*dto.ArticuloListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	articulos, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.ArticuloResponse, 0, len(articulos))
	for i := range articulos {
		data = append(data, *s.articuloToResponse(&articulos[i]))
	}
	return &dto.ArticuloListResponse{
		Data:  data,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

// Desactivar is a soft delete. An insumo referenced by any recipe cannot be
// deactivated: the recipe would silently stop being preparable.
func (s *articuloService) Desactivar(ctx context.Context, id uuid.UUID) error {
	articulo, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return apierror.NotFound("articulo %s no encontrado", id)
	}
	if articulo.Tipo == model.TipoInsumo {
		referenciado, err := s.repo.ExisteRecetaConInsumo(ctx, id)
		if err != nil {
			return err
		}
		if referenciado {
			return apierror.Integrity("el insumo %q forma parte de al menos una receta y no puede darse de baja", articulo.Denominacion)
		}
	}
	return s.repo.SoftDelete(ctx, id)
}

func (s *articuloService) articuloToResponse(a *model.Articulo) *dto.ArticuloResponse {
	resp := &dto.ArticuloResponse{
		ID:           a.ID.String(),
		Denominacion: a.Denominacion,
		Tipo:         string(a.Tipo),
		PrecioVenta:  a.PrecioVenta,
		Activo:       a.Activo,
	}
	switch a.Tipo {
	case model.TipoInsumo:
		resp.PrecioCosto = a.PrecioCosto
		resp.StockActual = a.StockActual
		resp.StockMaximo = a.StockMaximo
		resp.EstadoStock = string(a.EstadoStock)
	case model.TipoManufacturado:
		resp.MaxPreparable = s.stock.MaxPreparable(a)
		for _, det := range a.Receta {
			insumo := ""
			if det.Insumo != nil {
				insumo = det.Insumo.Denominacion
			}
			resp.Receta = append(resp.Receta, dto.DetalleRecetaResponse{
				Insumo:   insumo,
				InsumoID: det.InsumoID.String(),
				Cantidad: det.Cantidad,
			})
		}
	}
	return resp
}
