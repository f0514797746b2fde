package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"webcalc/internal/domain"
	"webcalc/internal/mocks"
)

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

// fakeReader отдаёт сообщения по очереди, затем ждёт отмены ctx.
type fakeReader struct {
	msgs      []kafka.Message
	committed []int64
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	if len(r.msgs) == 0 {
		<-ctx.Done()
		return kafka.Message{}, ctx.Err()
	}
	m := r.msgs[0]
	r.msgs = r.msgs[1:]
	return m, nil
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func (r *fakeReader) Close() error { return nil }

func TestProducer_Publish(t *testing.T) {
	w := &fakeWriter{}
	p := &Producer{w: w}
	ev := domain.CalculationEvent{ID: 42, Operand1: 10, Operand2: 5, Operator: "add", Result: 15, Timestamp: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}

	require.NoError(t, p.Publish(context.Background(), ev))

	require.Len(t, w.msgs, 1)
	assert.Equal(t, "42", string(w.msgs[0].Key))
	var got domain.CalculationEvent
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &got))
	assert.Equal(t, ev, got)
}

func TestProducer_PublishError(t *testing.T) {
	p := &Producer{w: &fakeWriter{err: errors.New("broker unavailable")}}
	assert.Error(t, p.Publish(context.Background(), domain.CalculationEvent{ID: 1}))
}

func TestConsumer_Run(t *testing.T) {
	ctrl := gomock.NewController(t)

	goodEv := domain.CalculationEvent{ID: 1, Operator: "add", Result: 2}
	flakyEv := domain.CalculationEvent{ID: 2, Operator: "add", Result: 3}
	good, _ := json.Marshal(goodEv)
	flaky, _ := json.Marshal(flakyEv)

	r := &fakeReader{msgs: []kafka.Message{
		{Offset: 10, Value: good},
		{Offset: 11, Value: []byte("{not json")},
		{Offset: 12, Value: flaky},
	}}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	uc := mocks.NewMockICalculatorUseCase(ctrl)
	gomock.InOrder(
		uc.EXPECT().HandleCalculationEvent(gomock.Any(), goodEv).Return(nil),
		uc.EXPECT().HandleCalculationEvent(gomock.Any(), flakyEv).Return(errors.New("clickhouse down")),
		uc.EXPECT().HandleCalculationEvent(gomock.Any(), flakyEv).
			DoAndReturn(func(context.Context, domain.CalculationEvent) error {
				// повтор идёт до коммита: offset 12 ещё не подтверждён
				assert.Equal(t, []int64{10, 11}, r.committed)
				cancel()
				return nil
			}),
	)

	c := &Consumer{r: r, uc: uc, log: slog.New(slog.NewTextHandler(io.Discard, nil)), retryMin: time.Millisecond}

	err := c.Run(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	// битое сообщение коммитится, упавшее - только после успешного повтора
	assert.Equal(t, []int64{10, 11, 12}, r.committed)
}

func TestConsumer_RunRetriesUntilCanceled(t *testing.T) {
	ctrl := gomock.NewController(t)

	ev := domain.CalculationEvent{ID: 7, Operator: "divide", Result: 0.5}
	value, _ := json.Marshal(ev)
	r := &fakeReader{msgs: []kafka.Message{{Offset: 12, Value: value}, {Offset: 13, Value: value}}}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	calls := 0
	uc := mocks.NewMockICalculatorUseCase(ctrl)
	uc.EXPECT().HandleCalculationEvent(gomock.Any(), ev).
		DoAndReturn(func(context.Context, domain.CalculationEvent) error {
			calls++
			if calls == 3 {
				cancel()
			}
			return errors.New("clickhouse down")
		}).Times(3)

	c := &Consumer{r: r, uc: uc, log: slog.New(slog.NewTextHandler(io.Discard, nil)), retryMin: time.Millisecond, retryMax: 2 * time.Millisecond}

	err := c.Run(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, r.committed, "необработанное сообщение не коммитится")
	assert.Len(t, r.msgs, 1, "следующее сообщение не читается, пока текущее не обработано")
}

func TestProducer_PublishOverflow(t *testing.T) {
	w := &fakeWriter{}
	p := &Producer{w: w}
	ev := domain.CalculationEvent{ID: 9, Operand1: 1e308, Operand2: 10, Operator: "multiply", Result: math.Inf(1), Timestamp: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}

	require.NoError(t, p.Publish(context.Background(), ev))

	require.Len(t, w.msgs, 1)
	assert.Contains(t, string(w.msgs[0].Value), `"result":"Infinity"`)
	var got domain.CalculationEvent
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &got))
	assert.Equal(t, ev, got)
}

func TestClient_ProducerBatchTimeout(t *testing.T) {
	p := New(&Config{Brokers: "k:9092", Topic: "t", BatchTimeout: 5 * time.Millisecond}).Producer()
	w, ok := p.w.(*kafka.Writer)
	require.True(t, ok)
	assert.Equal(t, 5*time.Millisecond, w.BatchTimeout)

	p = New(&Config{Brokers: "k:9092", Topic: "t"}).Producer()
	assert.Equal(t, defaultBatchTimeout, p.w.(*kafka.Writer).BatchTimeout)
}

func TestConfig_BrokersSlice(t *testing.T) {
	cfg := &Config{Brokers: " a:9092, b:9092 ,,"}
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.brokersSlice())

	var empty *Config
	assert.Equal(t, []string{"localhost:9092"}, empty.brokersSlice())
}
