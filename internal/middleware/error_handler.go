package middleware

import (
	"net/http"
	"time"

	"github.com/FrancoGarayBenitez/buensabor-backend-sub000/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// RequestIDKey is the gin context key under which the request id travels.
const RequestIDKey = "request_id"

// RequestID tags the request with an id, reusing the client's X-Request-ID
// when present so ids correlate across the frontend and these logs.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(RequestIDKey, id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

// conRequest stamps id and route fields onto a log event.
func conRequest(e *zerolog.Event, c *gin.Context) *zerolog.Event {
	return e.
		Str("request_id", c.GetString(RequestIDKey)).
		Str("method", c.Request.Method).
		Str("path", c.Request.URL.Path)
}

func responderInterno(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusInternalServerError,
		apierror.New(apierror.CodeInternal, "Error interno del servidor"))
}

// ErrorHandler turns errors attached via c.Error into a generic 500.
// Internal detail goes to the log only, never to the client.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if last := c.Errors.Last(); last != nil {
			conRequest(log.Error(), c).Err(last.Err).Msg("error no manejado")
			responderInterno(c)
		}
	}
}

// Recovery converts handler panics into 500 responses.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				conRequest(log.Error(), c).Interface("panic", r).Msg("panic recuperado")
				responderInterno(c)
			}
		}()
		c.Next()
	}
}

// Logger emits one structured line per request.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		inicio := time.Now()
		c.Next()
		conRequest(log.Info(), c).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(inicio)).
			Msg("request")
	}
}
