package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/FrancoGarayBenitez/buensabor-backend-sub000/internal/infra"
	"github.com/FrancoGarayBenitez/buensabor-backend-sub000/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Health returns a JSON health check response.
// Checks DB and Redis connectivity plus the payment gateway breaker state;
// never exposes credentials or internals.
func Health(db *gorm.DB, rdb *redis.Client, pagos *infra.PagosClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		dbStatus := "connected"
		if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
			dbStatus = "error"
		}

		redisStatus, dlqBacklog := "connected", int64(0)
		if rdb.Ping(ctx).Err() != nil {
			redisStatus = "error"
		} else {
			dlqBacklog = worker.DLQBacklog(ctx, rdb)
		}

		status := http.StatusOK
		if dbStatus != "connected" || redisStatus != "connected" {
			status = http.StatusServiceUnavailable
		}

		body := gin.H{
			"ok":          status == http.StatusOK,
			"db":          dbStatus,
			"redis":       redisStatus,
			"dlq_backlog": dlqBacklog,
		}
		if pagos != nil {
			body["pagos_circuit"] = pagos.CircuitState().String()
		}
		c.JSON(status, body)
	}
}
