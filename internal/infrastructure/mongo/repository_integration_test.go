package mongo_test

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webcalc/internal/domain"
	"webcalc/internal/infrastructure/mongo"
	"webcalc/internal/pkg/testutil"
)

var mongoContainer *testutil.MongoContainer

func TestMain(m *testing.M) {
	flag.Parse()
	if testing.Short() {
		os.Exit(m.Run())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	var err error
	mongoContainer, err = testutil.NewMongoContainer(ctx)
	if err != nil {
		log.Fatalf("mongo container: %v", err)
	}

	code := m.Run()

	if err := mongoContainer.Terminate(ctx); err != nil {
		log.Printf("mongo terminate: %v", err)
	}
	os.Exit(code)
}

// setupRepo подключается к тестовой MongoDB и очищает коллекции.
func setupRepo(t *testing.T) *mongo.HistoryRepo {
	t.Helper()
	if testing.Short() {
		t.Skip("пропускаем интеграционный тест в short режиме")
	}

	ctx := context.Background()
	cfg := mongoContainer.Config
	client, err := mongo.New(ctx, &cfg)
	require.NoError(t, err, "не удалось подключиться к MongoDB")
	t.Cleanup(func() { _ = client.Close() })

	// коллекции могло не быть - ошибку Drop игнорируем
	_ = client.Coll().Drop(ctx)
	_ = client.CountersColl().Drop(ctx)
	require.NoError(t, client.EnsureIndexes(ctx))

	return mongo.NewHistoryRepo(client, slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})))
}

func TestHistoryRepo_SaveAndRecent(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	for i := 1; i <= 12; i++ {
		rec, err := repo.Save(ctx, domain.CalculationRecord{Operand1: float64(i), Operand2: 1, Operator: "add", Result: float64(i + 1)})
		require.NoError(t, err)
		assert.Equal(t, int64(i), rec.ID, "ID выдаются счётчиком по порядку")
	}

	list, err := repo.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, list, 10)
	assert.Equal(t, int64(12), list[0].ID)
	assert.Equal(t, 13.0, list[0].Result)
	assert.Equal(t, int64(3), list[9].ID)
}

func TestHistoryRepo_ClearKeepsCounter(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Clear(ctx))
	_, err := repo.Save(ctx, domain.CalculationRecord{Operator: "add"})
	require.NoError(t, err)
	require.NoError(t, repo.Clear(ctx))

	list, err := repo.Recent(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, list)

	rec, err := repo.Save(ctx, domain.CalculationRecord{Operator: "add"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), rec.ID)
}

func TestHistoryRepo_ConcurrentSavesKeepOrder(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	const n = 40
	var wg sync.WaitGroup
	saved := make([]domain.CalculationRecord, n)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec, err := repo.Save(ctx, domain.CalculationRecord{Operand1: float64(i), Operator: "add"})
			assert.NoError(t, err)
			saved[i] = rec
		}()
	}
	wg.Wait()

	// больший ID никогда не получает более раннее время
	sort.Slice(saved, func(i, j int) bool { return saved[i].ID < saved[j].ID })
	for i := 1; i < n; i++ {
		assert.Equal(t, saved[i-1].ID+1, saved[i].ID)
		assert.False(t, saved[i].Timestamp.Before(saved[i-1].Timestamp), "id %d раньше id %d", saved[i].ID, saved[i-1].ID)
	}

	list, err := repo.Recent(ctx, n)
	require.NoError(t, err)
	require.Len(t, list, n)
	for i, rec := range list {
		assert.Equal(t, int64(n-i), rec.ID, "порядок выдачи совпадает с порядком ID")
	}
}
