package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/FrancoGarayBenitez/buensabor-backend-sub000/internal/config"
	"github.com/FrancoGarayBenitez/buensabor-backend-sub000/internal/infra"
	"github.com/FrancoGarayBenitez/buensabor-backend-sub000/internal/repository"
	"github.com/FrancoGarayBenitez/buensabor-backend-sub000/internal/router"
	"github.com/FrancoGarayBenitez/buensabor-backend-sub000/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("configuracion invalida")
	}
	configurarLogger(cfg.Env)

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("no se pudo conectar a postgres")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("no se pudo conectar a redis")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Composition root: infrastructure shared by the HTTP layer and the
	// background workers is built here once.
	pagosCB := infra.NewCircuitBreaker(infra.DefaultCBConfig())
	pagos := infra.NewPagosClient(cfg.PagosGatewayURL, pagosCB)
	mailer := infra.NewMailer(cfg)
	locker := infra.NewArticuloLocker(rdb)
	dispatcher := worker.NewDispatcher(rdb)

	facturaRepo := repository.NewFacturaRepository(db)
	pedidoRepo := repository.NewPedidoRepository(db)
	clienteRepo := repository.NewClienteRepository(db)

	handlers := worker.WorkerHandlers{
		FacturaPDF: worker.NewFacturaPDFWorker(facturaRepo, pedidoRepo, dispatcher, rdb, cfg.PDFStoragePath),
		Email:      worker.NewEmailWorker(mailer),
	}
	worker.StartWorkerPool(ctx, rdb, cfg.WorkerPoolSize, handlers)
	worker.StartRetryCron(ctx, worker.RetryCronConfig{
		FacturaRepo: facturaRepo,
		PedidoRepo:  pedidoRepo,
		ClienteRepo: clienteRepo,
		Dispatcher:  dispatcher,
	})

	r := router.New(cfg, router.Deps{
		DB:         db,
		RDB:        rdb,
		Pagos:      pagos,
		Dispatcher: dispatcher,
		Locker:     locker,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Int("port", cfg.Port).Msg("backend El Buen Sabor escuchando")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("error del servidor http")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("apagando servidor")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("apagado forzado")
	}
	log.Info().Msg("servidor detenido")
}

// configurarLogger emits pretty console output in development and plain
// JSON in production.
func configurarLogger(env string) {
	if env == "production" {
		zerolog.TimeFieldFormat = time.RFC3339
		return
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
}
