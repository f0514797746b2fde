// Package health собирает проверки доступности зависимостей для readiness (HTTP и gRPC).
package health

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"webcalc/internal/ports"
)

// Checker пингует все зарегистрированные зависимости параллельно.
type Checker struct {
	timeout time.Duration
	checks  map[string]ports.Pinger
}

// NewChecker создаёт проверку с таймаутом на каждый пинг.
func NewChecker(timeout time.Duration) *Checker {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &Checker{timeout: timeout, checks: make(map[string]ports.Pinger)}
}

// Add регистрирует зависимость под именем (например, "postgres", "redis").
func (c *Checker) Add(name string, p ports.Pinger) *Checker {
	c.checks[name] = p
	return c
}

// Names возвращает имена зависимостей по алфавиту.
func (c *Checker) Names() []string {
	names := make([]string, 0, len(c.checks))
	for n := range c.checks {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Check возвращает ошибки по именам недоступных зависимостей. Пустая карта - всё доступно.
func (c *Checker) Check(ctx context.Context) map[string]error {
	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		failed = make(map[string]error)
	)
	for name, p := range c.checks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			pctx, cancel := context.WithTimeout(ctx, c.timeout)
			defer cancel()
			if err := p.Ping(pctx); err != nil {
				mu.Lock()
				failed[name] = err
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	return failed
}

// Ready сворачивает результат Check в одну ошибку.
func (c *Checker) Ready(ctx context.Context) error {
	failed := c.Check(ctx)
	if len(failed) == 0 {
		return nil
	}
	errs := make([]error, 0, len(failed))
	for _, name := range c.Names() {
		if err, ok := failed[name]; ok {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}
