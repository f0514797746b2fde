package domain

import (
	"encoding/json"
	"time"
)

// CalculationEvent - сообщение в Kafka о сохранённом вычислении (его же читает консьюмер аналитики).
type CalculationEvent struct {
	ID        int64
	Operand1  float64
	Operand2  float64
	Operator  string
	Result    float64
	Timestamp time.Time
}

// eventJSON - проводной формат события; числа через JSONFloat, чтобы переполнение не ломало сериализацию.
type eventJSON struct {
	ID        int64     `json:"id"`
	Operand1  JSONFloat `json:"operand1"`
	Operand2  JSONFloat `json:"operand2"`
	Operator  string    `json:"operator"`
	Result    JSONFloat `json:"result"`
	Timestamp time.Time `json:"timestamp"`
}

// MarshalJSON реализует json.Marshaler.
func (e CalculationEvent) MarshalJSON() ([]byte, error) {
	return json.Marshal(eventJSON{
		ID:        e.ID,
		Operand1:  JSONFloat(e.Operand1),
		Operand2:  JSONFloat(e.Operand2),
		Operator:  e.Operator,
		Result:    JSONFloat(e.Result),
		Timestamp: e.Timestamp,
	})
}

// UnmarshalJSON реализует json.Unmarshaler.
func (e *CalculationEvent) UnmarshalJSON(data []byte) error {
	var w eventJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*e = CalculationEvent{
		ID:        w.ID,
		Operand1:  float64(w.Operand1),
		Operand2:  float64(w.Operand2),
		Operator:  w.Operator,
		Result:    float64(w.Result),
		Timestamp: w.Timestamp,
	}
	return nil
}

// NewCalculationEvent собирает событие из записи истории.
func NewCalculationEvent(rec CalculationRecord) CalculationEvent {
	return CalculationEvent{
		ID:        rec.ID,
		Operand1:  rec.Operand1,
		Operand2:  rec.Operand2,
		Operator:  rec.Operator,
		Result:    rec.Result,
		Timestamp: rec.Timestamp,
	}
}
