package ports

import "context"

// Pinger - всё, что умеет проверить своё соединение (для readiness).
type Pinger interface {
	Ping(ctx context.Context) error
}
