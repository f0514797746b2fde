package calculator

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"webcalc/internal/api/http/middlewares"
	"webcalc/internal/domain"
)

// maxHistoryLimit - верхняя граница ?limit= для GET /api/v1/history.
const maxHistoryLimit = 100

// @Summary Выполнить вычисление
// @Description Принимает два числа и оператор (add, subtract, multiply, divide), возвращает результат и пишет его в историю.
// @Tags calculator
// @Accept json
// @Produce json
// @Param request body CalculateRequest true "Параметры вычисления"
// @Success 200 {object} CalculateResponse "Результат вычисления"
// @Failure 400 {object} CalculateResponse "Невалидный запрос, деление на ноль или неизвестный оператор"
// @Failure 500 {object} CalculateResponse "Внутренняя ошибка сервера"
// @Router /api/v1/calculate [post]
func (c *Controller) calculate(ctx *gin.Context) {
	var req CalculateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		c.log.Warn("calculate bind failed", "error", err)
		ctx.JSON(http.StatusBadRequest, errorResponse(validationMessage(err)))
		return
	}

	rec, err := c.uc.Calculate(ctx.Request.Context(), *req.Operand1, *req.Operand2, req.Operator)
	switch {
	case err == nil:
		middlewares.CalculationsTotal.WithLabelValues(req.Operator, outcomeOK).Inc()
		ctx.JSON(http.StatusOK, successResponse(rec.Result, msgSuccess))
	case isUserError(err):
		middlewares.CalculationsTotal.WithLabelValues(req.Operator, outcomeError).Inc()
		ctx.JSON(http.StatusBadRequest, errorResponse(err.Error()))
	case errors.Is(err, domain.ErrStorage) && rec != nil:
		middlewares.CalculationsTotal.WithLabelValues(req.Operator, outcomeStorageError).Inc()
		ctx.JSON(http.StatusOK, successResponse(rec.Result, msgNotSaved))
	default:
		c.log.Error("calculate failed", "error", err)
		ctx.JSON(http.StatusInternalServerError, errorResponse(middlewares.UnexpectedErrorMessage))
	}
}

// @Summary Получить историю вычислений
// @Description Возвращает последние limit вычислений, новые первыми (по умолчанию 10, не больше 100)
// @Tags calculator
// @Produce json
// @Param limit query int false "Сколько записей вернуть"
// @Success 200 {object} HistoryResponse "Список вычислений"
// @Failure 400 {object} CalculateResponse "Невалидный limit"
// @Failure 500 {object} CalculateResponse "Внутренняя ошибка сервера"
// @Router /api/v1/history [get]
func (c *Controller) history(ctx *gin.Context) {
	limit := c.historyLimit
	if raw := ctx.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			ctx.JSON(http.StatusBadRequest, errorResponse("limit must be a positive integer"))
			return
		}
		limit = min(n, maxHistoryLimit)
	}

	list, err := c.uc.RecentHistory(ctx.Request.Context(), limit)
	if err != nil {
		c.log.Error("history failed", "error", err)
		ctx.JSON(http.StatusInternalServerError, errorResponse(middlewares.UnexpectedErrorMessage))
		return
	}
	ctx.JSON(http.StatusOK, newHistoryResponse(list))
}

// @Summary Очистить историю
// @Tags calculator
// @Success 204
// @Failure 500 {object} CalculateResponse "Внутренняя ошибка сервера"
// @Router /api/v1/history [delete]
func (c *Controller) clearHistory(ctx *gin.Context) {
	if err := c.uc.ClearHistory(ctx.Request.Context()); err != nil {
		c.log.Error("clear history failed", "error", err)
		ctx.JSON(http.StatusInternalServerError, errorResponse(middlewares.UnexpectedErrorMessage))
		return
	}
	ctx.Status(http.StatusNoContent)
}
