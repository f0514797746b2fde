package calculator

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"webcalc/internal/api/http/middlewares"
	"webcalc/internal/api/http/views"
	"webcalc/internal/domain"
	"webcalc/internal/ports"
)

// Исходы вычисления для метрики calculations_total.
const (
	outcomeOK           = "ok"
	outcomeError        = "error"
	outcomeStorageError = "storage_error"
)

// Controller - страница калькулятора (/, /calculate, /clear-history) и JSON API под /api/v1.
type Controller struct {
	uc           ports.ICalculatorUseCase
	log          *slog.Logger
	historyLimit int
}

// New создаёт контроллер калькулятора. historyLimit <= 0 означает domain.DefaultHistoryLimit.
func New(uc ports.ICalculatorUseCase, log *slog.Logger, historyLimit int) *Controller {
	if historyLimit <= 0 {
		historyLimit = domain.DefaultHistoryLimit
	}
	return &Controller{uc: uc, log: log, historyLimit: historyLimit}
}

// RegisterRoutes реализует http.Controller: регистрирует маршруты на роутере.
func (c *Controller) RegisterRoutes(r *gin.Engine) {
	r.GET("/", c.index)
	r.POST("/calculate", c.calculatePage)
	r.POST("/clear-history", c.clearHistoryPage)

	api := r.Group("/api/v1")
	api.POST("/calculate", c.calculate)
	api.GET("/history", c.history)
	api.DELETE("/history", c.clearHistory)
}

func (c *Controller) index(ctx *gin.Context) {
	c.render(ctx, http.StatusOK, views.NewPage(""))
}

func (c *Controller) calculatePage(ctx *gin.Context) {
	var form CalculateForm
	bindErr := ctx.ShouldBind(&form)

	page := views.NewPage(form.Operator)
	page.Operand1, page.Operand2 = form.Operand1, form.Operand2

	if bindErr != nil {
		c.log.Warn("calculate form rejected", "error", bindErr)
		page.Error = validationMessage(bindErr)
		c.render(ctx, http.StatusBadRequest, page)
		return
	}
	a, b, err := form.operands()
	if err != nil {
		c.log.Warn("calculate form rejected", "error", err)
		page.Error = err.Error()
		c.render(ctx, http.StatusBadRequest, page)
		return
	}

	rec, err := c.uc.Calculate(ctx.Request.Context(), a, b, form.Operator)
	status := http.StatusOK
	switch {
	case err == nil:
		page.HasResult, page.Result = true, *rec
		middlewares.CalculationsTotal.WithLabelValues(form.Operator, outcomeOK).Inc()
	case isUserError(err):
		page.Error = err.Error()
		middlewares.CalculationsTotal.WithLabelValues(form.Operator, outcomeError).Inc()
	case errors.Is(err, domain.ErrStorage) && rec != nil:
		page.HasResult, page.Result = true, *rec
		page.Warning = msgNotSaved + "."
		middlewares.CalculationsTotal.WithLabelValues(form.Operator, outcomeStorageError).Inc()
	default:
		c.log.Error("calculate failed", "error", err)
		page.Error = middlewares.UnexpectedErrorMessage
		status = http.StatusInternalServerError
	}
	c.render(ctx, status, page)
}

func (c *Controller) clearHistoryPage(ctx *gin.Context) {
	if err := c.uc.ClearHistory(ctx.Request.Context()); err != nil {
		c.log.Error("clear history failed", "error", err)
		page := views.NewPage("")
		page.Error = middlewares.UnexpectedErrorMessage
		c.render(ctx, http.StatusInternalServerError, page)
		return
	}
	ctx.Redirect(http.StatusFound, "/")
}

// render дочитывает последние записи истории и отдаёт страницу.
// Недоступная история не мешает показать результат: выводится предупреждение.
func (c *Controller) render(ctx *gin.Context, status int, page views.PageData) {
	list, err := c.uc.RecentHistory(ctx.Request.Context(), c.historyLimit)
	if err != nil {
		c.log.Error("history read failed", "error", err)
		if page.Warning != "" {
			page.Warning += " "
		}
		page.Warning += msgHistoryDown
	}
	page.History = list
	ctx.HTML(status, views.PageTemplate, page)
}

// isUserError - ошибки вычисления, которые показываются пользователю как есть.
func isUserError(err error) bool {
	return errors.Is(err, domain.ErrDivisionByZero) || errors.Is(err, domain.ErrInvalidOperator)
}
