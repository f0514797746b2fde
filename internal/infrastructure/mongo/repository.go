package mongo

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"webcalc/internal/domain"
	"webcalc/internal/ports"
)

var _ ports.IHistoryRepository = (*HistoryRepo)(nil)

const historyCounter = "calculation_history"

// calculationDoc - документ в коллекции истории. _id - числовой, выдаётся счётчиком.
type calculationDoc struct {
	ID           int64     `bson:"_id"`
	Operand1     float64   `bson:"operand1"`
	Operand2     float64   `bson:"operand2"`
	Operator     string    `bson:"operator"`
	Result       float64   `bson:"result"`
	CalculatedAt time.Time `bson:"calculated_at"`
}

// counterDoc хранит последний выданный ID и время последней вставки.
type counterDoc struct {
	Seq int64     `bson:"seq"`
	At  time.Time `bson:"at"`
}

// HistoryRepo реализует ports.IHistoryRepository для MongoDB.
type HistoryRepo struct {
	client *Client
	log    *slog.Logger
}

// NewHistoryRepo возвращает репозиторий истории.
func NewHistoryRepo(client *Client, log *slog.Logger) *HistoryRepo {
	return &HistoryRepo{client: client, log: log}
}

// nextIDPipeline одним атомарным обновлением счётчика выдаёт следующий ID и время по часам сервера ($$NOW).
// Время не меньше предыдущего, поэтому порядок по (calculated_at, _id) совпадает с порядком ID
// при параллельных вставках и при расхождении часов у разных экземпляров сервиса.
var nextIDPipeline = mongo.Pipeline{
	{{Key: "$set", Value: bson.D{
		{Key: "seq", Value: bson.D{{Key: "$add", Value: bson.A{
			bson.D{{Key: "$ifNull", Value: bson.A{"$seq", int64(0)}}}, int64(1),
		}}}},
		{Key: "at", Value: bson.D{{Key: "$max", Value: bson.A{
			bson.D{{Key: "$ifNull", Value: bson.A{"$at", "$$NOW"}}}, "$$NOW",
		}}}},
	}}},
}

// nextID атомарно увеличивает счётчик (upsert) и возвращает ID с временем вставки. Очистка истории счётчик не сбрасывает.
func (r *HistoryRepo) nextID(ctx context.Context) (counterDoc, error) {
	var c counterDoc
	err := r.client.CountersColl().FindOneAndUpdate(ctx,
		bson.M{"_id": historyCounter},
		nextIDPipeline,
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&c)
	return c, err
}

// Save сохраняет запись; ID и время (точность BSON - миллисекунды) выдаёт счётчик.
func (r *HistoryRepo) Save(ctx context.Context, rec domain.CalculationRecord) (domain.CalculationRecord, error) {
	next, err := r.nextID(ctx)
	if err != nil {
		r.log.Debug("Save: next id failed", "error", err)
		return domain.CalculationRecord{}, fmt.Errorf("%w: next id: %w", domain.ErrStorage, err)
	}
	rec.ID = next.Seq
	rec.Timestamp = next.At.UTC()

	_, err = r.client.Coll().InsertOne(ctx, calculationDoc{
		ID:           rec.ID,
		Operand1:     rec.Operand1,
		Operand2:     rec.Operand2,
		Operator:     rec.Operator,
		Result:       rec.Result,
		CalculatedAt: rec.Timestamp,
	})
	if err != nil {
		r.log.Debug("Save failed", "error", err)
		return domain.CalculationRecord{}, fmt.Errorf("%w: insert history: %w", domain.ErrStorage, err)
	}
	return rec, nil
}

// Recent возвращает последние limit записей (новые сначала).
func (r *HistoryRepo) Recent(ctx context.Context, limit int) ([]domain.CalculationRecord, error) {
	if limit <= 0 {
		limit = domain.DefaultHistoryLimit
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "calculated_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(int64(limit))
	cursor, err := r.client.Coll().Find(ctx, bson.M{}, opts)
	if err != nil {
		r.log.Debug("Recent failed", "error", err)
		return nil, fmt.Errorf("%w: find history: %w", domain.ErrStorage, err)
	}
	defer cursor.Close(ctx)

	var docs []calculationDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("%w: decode history: %w", domain.ErrStorage, err)
	}
	list := make([]domain.CalculationRecord, 0, len(docs))
	for _, d := range docs {
		list = append(list, domain.CalculationRecord{
			ID:        d.ID,
			Operand1:  d.Operand1,
			Operand2:  d.Operand2,
			Operator:  d.Operator,
			Result:    d.Result,
			Timestamp: d.CalculatedAt.UTC(),
		})
	}
	return list, nil
}

// Clear удаляет все документы истории.
func (r *HistoryRepo) Clear(ctx context.Context) error {
	res, err := r.client.Coll().DeleteMany(ctx, bson.M{})
	if err != nil {
		r.log.Debug("Clear failed", "error", err)
		return fmt.Errorf("%w: clear history: %w", domain.ErrStorage, err)
	}
	r.log.Debug("history documents deleted", "count", res.DeletedCount)
	return nil
}

// Ping проверяет доступность БД.
func (r *HistoryRepo) Ping(ctx context.Context) error {
	return r.client.Ping(ctx, nil)
}
