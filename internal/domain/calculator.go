package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrDivisionByZero возвращается при делении на ноль.
	ErrDivisionByZero = errors.New("Cannot divide by zero")
	// ErrInvalidOperator возвращается, когда оператор не поддерживается. Текст дополняется самим оператором.
	ErrInvalidOperator = errors.New("Invalid operator")
	// ErrStorage оборачивает любые ошибки хранилища истории.
	ErrStorage = errors.New("storage error")
)

// Константы арифметических операторов.
const (
	OpAdd      = "add"
	OpSubtract = "subtract"
	OpMultiply = "multiply"
	OpDivide   = "divide"
)

// DefaultHistoryLimit - сколько последних записей показывается по умолчанию.
const DefaultHistoryLimit = 10

// Operators - все поддерживаемые операторы в порядке отображения.
var Operators = []string{OpAdd, OpSubtract, OpMultiply, OpDivide}

// IsOperator сообщает, поддерживается ли оператор.
func IsOperator(op string) bool {
	for _, o := range Operators {
		if o == op {
			return true
		}
	}
	return false
}

// Symbol возвращает знак оператора для вывода ("+", "-", "×", "÷").
func Symbol(op string) string {
	switch op {
	case OpAdd:
		return "+"
	case OpSubtract:
		return "-"
	case OpMultiply:
		return "×"
	case OpDivide:
		return "÷"
	default:
		return op
	}
}

// Calculate - чистая функция калькулятора: без побочных эффектов, арифметика float64 по IEEE-754.
func Calculate(operand1, operand2 float64, operator string) (float64, error) {
	switch operator {
	case OpAdd:
		return operand1 + operand2, nil
	case OpSubtract:
		return operand1 - operand2, nil
	case OpMultiply:
		return operand1 * operand2, nil
	case OpDivide:
		if operand2 == 0 {
			return 0, ErrDivisionByZero
		}
		return operand1 / operand2, nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrInvalidOperator, operator)
	}
}

// CalculationRecord - запись истории об одном успешном вычислении. ID и Timestamp выставляет хранилище.
type CalculationRecord struct {
	ID        int64
	Operand1  float64
	Operand2  float64
	Operator  string
	Result    float64
	Timestamp time.Time
}
