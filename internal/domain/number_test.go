package domain

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONFloat_Marshal(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want string
	}{
		{name: "целое", in: 15, want: `15`},
		{name: "дробное", in: 0.1 + 0.2, want: `0.30000000000000004`},
		{name: "плюс бесконечность", in: math.Inf(1), want: `"Infinity"`},
		{name: "минус бесконечность", in: math.Inf(-1), want: `"-Infinity"`},
		{name: "NaN", in: math.NaN(), want: `"NaN"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := json.Marshal(JSONFloat(tt.in))
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestJSONFloat_Unmarshal(t *testing.T) {
	var f JSONFloat
	require.NoError(t, json.Unmarshal([]byte(`"-Infinity"`), &f))
	assert.True(t, math.IsInf(float64(f), -1))

	require.NoError(t, json.Unmarshal([]byte(`2.5`), &f))
	assert.Equal(t, JSONFloat(2.5), f)

	require.NoError(t, json.Unmarshal([]byte(`"NaN"`), &f))
	assert.True(t, math.IsNaN(float64(f)))

	assert.Error(t, json.Unmarshal([]byte(`"lots"`), &f))
}

func TestCalculationEvent_JSONOverflow(t *testing.T) {
	result, err := Calculate(1e308, 10, OpMultiply)
	require.NoError(t, err)
	require.True(t, math.IsInf(result, 1), "переполнение даёт +Inf")

	ev := CalculationEvent{ID: 3, Operand1: 1e308, Operand2: 10, Operator: OpMultiply, Result: result, Timestamp: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	data, err := json.Marshal(ev)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":3,"operand1":1e+308,"operand2":10,"operator":"multiply","result":"Infinity","timestamp":"2026-01-01T00:00:00Z"}`, string(data))

	var got CalculationEvent
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, ev, got)
}
