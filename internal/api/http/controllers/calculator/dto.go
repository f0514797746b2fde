package calculator

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"webcalc/internal/domain"
)

// Сообщения валидации, которые видит пользователь.
const (
	msgOperand1Required = "First operand is required"
	msgOperand2Required = "Second operand is required"
	msgOperand1NaN      = "First operand must be a number"
	msgOperand2NaN      = "Second operand must be a number"
	msgInvalidBody      = "Invalid request body"
	msgSuccess          = "Calculation successful"
	msgNotSaved         = "Calculation successful, but it was not saved to history"
	msgHistoryDown      = "History is temporarily unavailable."
)

var msgOperator = "Operator must be one of: " + strings.Join(domain.Operators, ", ")

// CalculateForm - поля HTML-формы POST /calculate. Операнды приходят строками и разбираются в operands().
type CalculateForm struct {
	Operand1 string `form:"operand1" binding:"required"`
	Operand2 string `form:"operand2" binding:"required"`
	Operator string `form:"operator" binding:"required,oneof=add subtract multiply divide"`
}

// operands разбирает числа формы. Бесконечности и NaN числом не считаются.
func (f CalculateForm) operands() (float64, float64, error) {
	a, errA := parseOperand(f.Operand1)
	b, errB := parseOperand(f.Operand2)
	var msgs []string
	if errA != nil {
		msgs = append(msgs, msgOperand1NaN)
	}
	if errB != nil {
		msgs = append(msgs, msgOperand2NaN)
	}
	if len(msgs) > 0 {
		return 0, 0, errors.New(strings.Join(msgs, "; "))
	}
	return a, b, nil
}

func parseOperand(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("not a finite number: %q", s)
	}
	return v, nil
}

// CalculateRequest - тело POST /api/v1/calculate.
type CalculateRequest struct {
	Operand1 *float64 `json:"operand1" binding:"required"`
	Operand2 *float64 `json:"operand2" binding:"required"`
	Operator string   `json:"operator" binding:"required,oneof=add subtract multiply divide"`
}

// CalculateResponse - ответ API; result == null при ошибке.
// Переполнение отдаётся строкой "Infinity" или "-Infinity" (см. domain.JSONFloat).
type CalculateResponse struct {
	Result  *domain.JSONFloat `json:"result"`
	Message string            `json:"message"`
	Success bool              `json:"success"`
}

func successResponse(result float64, message string) CalculateResponse {
	r := domain.JSONFloat(result)
	return CalculateResponse{Result: &r, Message: message, Success: true}
}

func errorResponse(message string) CalculateResponse {
	return CalculateResponse{Message: message}
}

// HistoryItem - одна запись в истории (для GET /api/v1/history).
type HistoryItem struct {
	ID        int64            `json:"id"`
	Operand1  domain.JSONFloat `json:"operand1"`
	Operand2  domain.JSONFloat `json:"operand2"`
	Operator  string           `json:"operator"`
	Result    domain.JSONFloat `json:"result"`
	Timestamp time.Time        `json:"timestamp"`
}

// HistoryResponse - ответ со списком вычислений, новые первыми.
type HistoryResponse struct {
	Items []HistoryItem `json:"items"`
}

func newHistoryResponse(list []domain.CalculationRecord) HistoryResponse {
	items := make([]HistoryItem, len(list))
	for i, rec := range list {
		items[i] = HistoryItem{
			ID:        rec.ID,
			Operand1:  domain.JSONFloat(rec.Operand1),
			Operand2:  domain.JSONFloat(rec.Operand2),
			Operator:  rec.Operator,
			Result:    domain.JSONFloat(rec.Result),
			Timestamp: rec.Timestamp,
		}
	}
	return HistoryResponse{Items: items}
}

// validationMessage переводит ошибку биндинга в текст для пользователя.
// Ошибки разбора тела (не JSON, строка вместо числа) сводятся к msgInvalidBody.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return msgInvalidBody
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		var m string
		switch fe.Field() {
		case "Operand1":
			m = msgOperand1Required
		case "Operand2":
			m = msgOperand2Required
		case "Operator":
			m = msgOperator
		default:
			m = fe.Error()
		}
		msgs = append(msgs, m)
	}
	return strings.Join(msgs, "; ")
}
