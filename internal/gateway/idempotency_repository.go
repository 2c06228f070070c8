package gateway

import (
	"context"
	"time"
)

// CachedResponse representa o que salvamos no Redis para repetir uma
// resposta já processada sem reexecutar o envio.
type CachedResponse struct {
	StatusCode int
	Body       []byte
}

type IdempotencyRepository interface {
	// Get retorna a resposta cacheada, ou nil em cache miss.
	Get(ctx context.Context, key string) (*CachedResponse, error)

	// Save armazena a resposta com um TTL.
	Save(ctx context.Context, key string, response CachedResponse, ttl time.Duration) error
}
