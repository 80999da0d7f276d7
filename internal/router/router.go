package router

import (
	"time"

	"github.com/FrancoGarayBenitez/buensabor-backend-sub000/internal/config"
	"github.com/FrancoGarayBenitez/buensabor-backend-sub000/internal/handler"
	"github.com/FrancoGarayBenitez/buensabor-backend-sub000/internal/infra"
	"github.com/FrancoGarayBenitez/buensabor-backend-sub000/internal/middleware"
	"github.com/FrancoGarayBenitez/buensabor-backend-sub000/internal/repository"
	"github.com/FrancoGarayBenitez/buensabor-backend-sub000/internal/service"
	"github.com/FrancoGarayBenitez/buensabor-backend-sub000/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Deps carries the externally constructed infrastructure the router wires
// into services. Cmd/server owns their lifecycle.
type Deps struct {
	DB         *gorm.DB
	RDB        *redis.Client
	Pagos      *infra.PagosClient
	Dispatcher *worker.Dispatcher
	Locker     *infra.ArticuloLocker
}

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, deps Deps) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	articuloRepo := repository.NewArticuloRepository(deps.DB)
	promocionRepo := repository.NewPromocionRepository(deps.DB)
	pedidoRepo := repository.NewPedidoRepository(deps.DB)
	facturaRepo := repository.NewFacturaRepository(deps.DB)
	compraRepo := repository.NewCompraRepository(deps.DB)
	movimientoRepo := repository.NewMovimientoStockRepository(deps.DB)
	clienteRepo := repository.NewClienteRepository(deps.DB)
	sucursalRepo := repository.NewSucursalRepository(deps.DB)

	// ── Services ─────────────────────────────────────────────────────────────
	politica := service.PoliticaPrecios{
		DescuentoTakeAway: cfg.DescuentoTakeAway(),
		RecargoDelivery:   cfg.RecargoDelivery(),
	}

	stockSvc := service.NewStockService(articuloRepo, compraRepo, movimientoRepo, deps.Locker)
	promocionSvc := service.NewPromocionService(promocionRepo, articuloRepo)
	facturaSvc := service.NewFacturaService(facturaRepo, politica)
	articuloSvc := service.NewArticuloService(articuloRepo, stockSvc)
	pedidoSvc := service.NewPedidoService(
		pedidoRepo, articuloRepo, clienteRepo, sucursalRepo,
		stockSvc, promocionSvc, facturaSvc,
		deps.Dispatcher, deps.Pagos, politica,
	)

	// ── Handlers ─────────────────────────────────────────────────────────────
	pedidosH := handler.NewPedidosHandler(pedidoSvc)
	articulosH := handler.NewArticulosHandler(articuloSvc, stockSvc)
	promocionesH := handler.NewPromocionesHandler(promocionSvc)
	facturasH := handler.NewFacturasHandler(facturaSvc)
	comprasH := handler.NewComprasHandler(stockSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(deps.DB, deps.RDB, deps.Pagos))

	// Payment gateway callback — authenticated by the gateway's shared secret
	// at the reverse proxy, rate-limited here.
	r.POST("/v1/pagos/webhook", middleware.WebhookRateLimiter(), pedidosH.PagoWebhook)

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		staff := []string{middleware.RolCajero, middleware.RolCocinero,
			middleware.RolDelivery, middleware.RolAdministrador}

		// Pedidos — clientes place and view; staff run the lifecycle
		v1.POST("/pedidos", middleware.RequireRole(middleware.RolCliente, middleware.RolCajero, middleware.RolAdministrador), pedidosH.RegistrarPedido)
		v1.GET("/pedidos", middleware.RequireRole(staff...), pedidosH.ListarPedidos)
		v1.GET("/pedidos/:id", pedidosH.ObtenerPedido)
		v1.POST("/pedidos/:id/transicion", middleware.RequireRole(staff...), pedidosH.Transicionar)
		v1.DELETE("/pedidos/:id", middleware.RequireRole(middleware.RolCliente, middleware.RolCajero, middleware.RolAdministrador), pedidosH.Cancelar)
		v1.GET("/pedidos/:id/factura", facturasH.ObtenerFacturaDePedido)

		// Facturas
		v1.GET("/facturas/pdf/:id", facturasH.DescargarPDF)

		// Articulos — every authenticated role reads the catalog
		v1.GET("/articulos", articulosH.ListarArticulos)
		v1.GET("/articulos/alertas", middleware.RequireRole(middleware.RolCajero, middleware.RolAdministrador), articulosH.AlertasStock)
		v1.GET("/articulos/:id", articulosH.ObtenerArticulo)
		arts := v1.Group("/articulos", middleware.RequireRole(middleware.RolAdministrador))
		{
			arts.POST("", articulosH.CrearArticulo)
			arts.PUT("/:id", articulosH.ActualizarArticulo)
			arts.DELETE("/:id", articulosH.DesactivarArticulo)
		}

		// Promociones
		v1.GET("/promociones", promocionesH.ListarPromociones)
		promos := v1.Group("/promociones", middleware.RequireRole(middleware.RolAdministrador))
		{
			promos.POST("", promocionesH.CrearPromocion)
			promos.DELETE("/:id", promocionesH.DesactivarPromocion)
		}

		// Compras — administrador only
		v1.POST("/compras", middleware.RequireRole(middleware.RolAdministrador), comprasH.RegistrarCompra)
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
