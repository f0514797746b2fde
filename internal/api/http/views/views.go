// Package views - HTML-шаблоны страницы калькулятора (встраиваются в бинарник).
package views

import (
	"embed"
	"html/template"
	"strconv"
	"time"

	"webcalc/internal/domain"
)

// PageTemplate - имя шаблона страницы калькулятора.
const PageTemplate = "calculator.html"

//go:embed templates/*.html
var files embed.FS

// Funcs - функции, доступные в шаблонах.
var Funcs = template.FuncMap{
	"num":    FormatNumber,
	"symbol": domain.Symbol,
	"ts": func(t time.Time) string {
		return t.Local().Format("2006-01-02 15:04:05")
	},
}

// FormatNumber печатает float64 кратчайшим представлением без потери точности ("15", "26.25", "0.30000000000000004").
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// OperatorOption - пункт выпадающего списка операторов.
type OperatorOption struct {
	Value    string
	Label    string
	Selected bool
}

// PageData - модель страницы калькулятора.
type PageData struct {
	Operators []OperatorOption
	Operand1  string
	Operand2  string
	HasResult bool
	Result    domain.CalculationRecord
	History   []domain.CalculationRecord
	Error     string
	Warning   string
}

// NewPage возвращает пустую страницу с выбранным оператором (по умолчанию - первый).
func NewPage(selected string) PageData {
	if !domain.IsOperator(selected) {
		selected = domain.Operators[0]
	}
	opts := make([]OperatorOption, len(domain.Operators))
	for i, op := range domain.Operators {
		opts[i] = OperatorOption{Value: op, Label: domain.Symbol(op), Selected: op == selected}
	}
	return PageData{Operators: opts}
}

// Templates разбирает встроенные шаблоны. Паникует при ошибке разбора: шаблоны проверяются тестами.
func Templates() *template.Template {
	return template.Must(template.New("").Funcs(Funcs).ParseFS(files, "templates/*.html"))
}
