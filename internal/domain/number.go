package domain

import (
	"encoding/json"
	"fmt"
	"math"
)

// Строки, которыми в JSON передаются значения, непредставимые числом.
const (
	jsonInf    = "Infinity"
	jsonNegInf = "-Infinity"
	jsonNaN    = "NaN"
)

// JSONFloat - float64, который переживает JSON: конечные значения пишутся числом,
// ±Inf и NaN - строками "Infinity", "-Infinity", "NaN".
// Переполнение (например, 1e308 * 10) - законный результат вычисления.
type JSONFloat float64

// MarshalJSON реализует json.Marshaler.
func (f JSONFloat) MarshalJSON() ([]byte, error) {
	v := float64(f)
	switch {
	case math.IsInf(v, 1):
		return []byte(`"` + jsonInf + `"`), nil
	case math.IsInf(v, -1):
		return []byte(`"` + jsonNegInf + `"`), nil
	case math.IsNaN(v):
		return []byte(`"` + jsonNaN + `"`), nil
	}
	return json.Marshal(v)
}

// UnmarshalJSON принимает число или одну из строк "Infinity", "-Infinity", "NaN".
func (f *JSONFloat) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		switch s {
		case jsonInf:
			*f = JSONFloat(math.Inf(1))
		case jsonNegInf:
			*f = JSONFloat(math.Inf(-1))
		case jsonNaN:
			*f = JSONFloat(math.NaN())
		default:
			return fmt.Errorf("invalid number %q", s)
		}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = JSONFloat(v)
	return nil
}
