package system

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"webcalc/internal/pkg/health"
)

// Controller - системные маршруты: liveness, readiness, метрики.
type Controller struct {
	checker *health.Checker
	log     *slog.Logger
}

// New создаёт системный контроллер.
func New(checker *health.Checker, log *slog.Logger) *Controller {
	return &Controller{checker: checker, log: log}
}

// RegisterRoutes реализует http.Controller: регистрирует маршруты на роутере.
func (c *Controller) RegisterRoutes(r *gin.Engine) {
	r.GET("/liveness", c.live)
	r.GET("/readyness", c.ready)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

func (c *Controller) live(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "alive"})
}

func (c *Controller) ready(ctx *gin.Context) {
	failed := c.checker.Check(ctx.Request.Context())
	if len(failed) == 0 {
		ctx.JSON(http.StatusOK, gin.H{"status": "ready", "checks": c.checker.Names()})
		return
	}

	// наружу только имена зависимостей, текст ошибок (адреса, ответы драйверов) - в лог
	names := make([]string, 0, len(failed))
	for _, name := range c.checker.Names() {
		if err, ok := failed[name]; ok {
			c.log.Warn("ready check failed", "dependency", name, "error", err)
			names = append(names, name)
		}
	}
	ctx.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "failed": names})
}
