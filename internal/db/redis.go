package db

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient crea el cliente y hace ping; devuelve el cliente aun si el ping falla.
func NewRedisClient(ctx context.Context, addr, password string, database int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       database,
	})
	ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return client, client.Ping(ctxPing).Err()
}
