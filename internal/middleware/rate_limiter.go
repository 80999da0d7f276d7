package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/FrancoGarayBenitez/buensabor-backend-sub000/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// cupo is one IP's consumption inside the current window.
type cupo struct {
	usados int
	hasta  time.Time
}

// limitador is a fixed-window per-IP request limiter. Each middleware
// instance owns its own map, so the global API limiter and the webhook
// limiter never contend on the same lock.
type limitador struct {
	mu      sync.Mutex
	cupos   map[string]*cupo
	limite  int
	ventana time.Duration
	mensaje string
}

func nuevoLimitador(limite int, ventana time.Duration, mensaje string) *limitador {
	l := &limitador{
		cupos:   make(map[string]*cupo),
		limite:  limite,
		ventana: ventana,
		mensaje: mensaje,
	}
	go l.depurar()
	return l
}

// admitir consumes one request slot for ip. When the window is exhausted it
// returns false along with the instant the window resets.
func (l *limitador) admitir(ip string) (bool, time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	ahora := time.Now()
	c, ok := l.cupos[ip]
	if !ok || ahora.After(c.hasta) {
		c = &cupo{hasta: ahora.Add(l.ventana)}
		l.cupos[ip] = c
	}
	c.usados++
	return c.usados <= l.limite, c.hasta
}

// depurar drops IPs whose window already expired so the map does not grow
// with one-off clients.
func (l *limitador) depurar() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		ahora := time.Now()
		depurados := 0

		l.mu.Lock()
		for ip, c := range l.cupos {
			if ahora.After(c.hasta) {
				delete(l.cupos, ip)
				depurados++
			}
		}
		l.mu.Unlock()

		if depurados > 0 {
			log.Debug().Int("entradas", depurados).Msg("rate limiter: entradas vencidas depuradas")
		}
	}
}

func (l *limitador) handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, hasta := l.admitir(c.ClientIP())
		if !ok {
			c.Header("Retry-After", hasta.Format(time.RFC1123))
			c.AbortWithStatusJSON(http.StatusTooManyRequests,
				apierror.New(apierror.CodeRateLimited, l.mensaje))
			return
		}
		c.Next()
	}
}

// RateLimiter limits all API traffic to limit requests per window per IP.
func RateLimiter(limit int, window time.Duration) gin.HandlerFunc {
	return nuevoLimitador(limit, window,
		"Demasiadas solicitudes. Intente nuevamente en un momento.").handler()
}

// WebhookRateLimiter caps payment webhook notifications at 30 per minute per
// IP. The webhook route skips auth, so this is its only abuse guard.
func WebhookRateLimiter() gin.HandlerFunc {
	return nuevoLimitador(30, time.Minute,
		"Demasiadas notificaciones. Intente en 1 minuto.").handler()
}
