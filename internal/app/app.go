package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	apigrpc "webcalc/internal/api/grpc"
	apihttp "webcalc/internal/api/http"
	"webcalc/internal/api/http/controllers/calculator"
	"webcalc/internal/api/http/controllers/system"
	"webcalc/internal/infrastructure/click"
	"webcalc/internal/infrastructure/kafka"
	"webcalc/internal/infrastructure/memory"
	"webcalc/internal/infrastructure/mongo"
	"webcalc/internal/infrastructure/pg"
	"webcalc/internal/infrastructure/redis"
	"webcalc/internal/pkg/health"
	"webcalc/internal/pkg/logger"
	"webcalc/internal/ports"
	calcUsecase "webcalc/internal/usecase/calculator"
)

// App - приложение, хранит только конфиг.
type App struct {
	cfg Config
}

// New создаёт приложение с конфигом (подключения открываются в Run).
func New(cfg Config) *App {
	return &App{cfg: cfg}
}

// closer - ресурс, который нужно закрыть при остановке.
type closer struct {
	name string
	fn   func() error
}

// Run подключает хранилище и необязательные бэкенды, запускает HTTP- и gRPC-серверы и консьюмер Kafka.
// Блокируется до SIGINT/SIGTERM или ошибки одного из компонентов.
func (a *App) Run() error {
	log := logger.New(a.cfg.Log)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var closers []closer
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i].fn(); err != nil {
				log.Warn("close failed", "resource", closers[i].name, "error", err)
			}
		}
	}()
	checker := health.NewChecker(2 * time.Second)

	connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	repo, err := a.historyRepo(connectCtx, log, checker, &closers)
	if err != nil {
		return err
	}

	var cache ports.ICache
	if a.cfg.Redis.Enabled {
		rdb, err := redis.New(connectCtx, &a.cfg.Redis)
		if err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		closers = append(closers, closer{"redis", rdb.Close})
		checker.Add("redis", rdb)
		cache = redis.NewCache(rdb, &a.cfg.Redis, log)
	}

	var broker ports.IEventPublisher
	if a.cfg.Kafka.Enabled {
		producer := kafka.NewProducer(&a.cfg.Kafka)
		closers = append(closers, closer{"kafka producer", producer.Close})
		broker = producer
	}

	var analytics ports.ICalculationAnalytics
	if a.cfg.ClickHouse.Enabled {
		ch, err := click.New(connectCtx, &a.cfg.ClickHouse)
		if err != nil {
			return fmt.Errorf("clickhouse: %w", err)
		}
		closers = append(closers, closer{"clickhouse", ch.Close})
		checker.Add("clickhouse", ch)
		writer := click.NewCalculationWriter(ch)
		if err := writer.EnsureTable(connectCtx); err != nil {
			return fmt.Errorf("clickhouse table: %w", err)
		}
		analytics = writer
	}

	uc := calcUsecase.New(repo, cache, broker, analytics, log)

	srv := apihttp.NewServer(a.cfg.Server, log)
	srv.AddController(
		system.New(checker, log),
		calculator.New(uc, log, a.cfg.HistoryLimit))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Start(gctx)
	})
	if a.cfg.Grpc.Enabled {
		grpcSrv := apigrpc.NewServer(a.cfg.Grpc, checker, log)
		g.Go(func() error {
			return grpcSrv.Start(gctx)
		})
	}
	// Консьюмер нужен только для переноса событий в ClickHouse.
	if a.cfg.Kafka.Enabled && analytics != nil {
		consumer := kafka.NewConsumer(&a.cfg.Kafka, uc, log)
		closers = append(closers, closer{"kafka consumer", consumer.Close})
		g.Go(func() error {
			if err := consumer.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("kafka consumer: %w", err)
			}
			return nil
		})
	}

	log.Info("application started",
		"http", a.cfg.Server.Addr(),
		"grpc", a.cfg.Grpc.Enabled,
		"storage", a.cfg.Storage,
		"redis", a.cfg.Redis.Enabled,
		"kafka", a.cfg.Kafka.Enabled,
		"clickhouse", a.cfg.ClickHouse.Enabled,
		"checks", checker.Names())

	err = g.Wait()
	log.Info("application stopped", "error", err)
	return err
}

// historyRepo подключает хранилище истории по cfg.Storage и регистрирует его в readiness.
func (a *App) historyRepo(ctx context.Context, log *slog.Logger, checker *health.Checker, closers *[]closer) (ports.IHistoryRepository, error) {
	switch a.cfg.Storage {
	case StorageMongo:
		cli, err := mongo.New(ctx, &a.cfg.Mongo)
		if err != nil {
			return nil, fmt.Errorf("mongo: %w", err)
		}
		*closers = append(*closers, closer{"mongo", cli.Close})
		if err := cli.EnsureIndexes(ctx); err != nil {
			return nil, fmt.Errorf("mongo indexes: %w", err)
		}
		repo := mongo.NewHistoryRepo(cli, log)
		checker.Add("mongo", repo)
		return repo, nil
	case StorageMemory:
		repo := memory.NewHistoryRepo()
		checker.Add("memory", repo)
		return repo, nil
	default:
		db, err := pg.New(ctx, &a.cfg.DB)
		if err != nil {
			return nil, fmt.Errorf("db: %w", err)
		}
		*closers = append(*closers, closer{"postgres", db.Close})
		if err := pg.Migrate(ctx, db); err != nil {
			return nil, fmt.Errorf("migrate: %w", err)
		}
		repo := pg.NewHistoryRepo(db, log)
		checker.Add("postgres", repo)
		return repo, nil
	}
}
