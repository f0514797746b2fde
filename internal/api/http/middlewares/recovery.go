package middlewares

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// UnexpectedErrorMessage - единственное, что пользователь видит о непредвиденной ошибке.
const UnexpectedErrorMessage = "An unexpected error occurred. Please try again."

// Recovery перехватывает панику, пишет детали в лог и отдаёт обезличенный ответ:
// JSON для /api/, страницу (через render) для остального.
func Recovery(log *slog.Logger, render func(c *gin.Context, status int, message string)) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, recovered any) {
		log.Error("panic recovered", "method", c.Request.Method, "path", c.Request.URL.Path, "panic", recovered)
		if strings.HasPrefix(c.Request.URL.Path, "/api/") || render == nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": UnexpectedErrorMessage, "success": false})
			return
		}
		render(c, http.StatusInternalServerError, UnexpectedErrorMessage)
		c.Abort()
	})
}
