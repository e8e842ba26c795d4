package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

var Client *redis.Client

// Init connects the package-level Redis client. An empty addr or a failed
// ping leaves the client nil; every helper degrades to a no-op so the bot
// runs without Redis.
func Init(addr string) {
	if addr == "" {
		slog.Info("redis disabled, running without cache")
		return
	}

	Client = redis.NewClient(&redis.Options{
		Addr: addr,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := Client.Ping(ctx).Err(); err != nil {
		slog.Warn("redis connection failed, continuing without cache", "error", err)
		Client = nil
		return
	}
	slog.Info("redis connected", "addr", addr)
}

func Close() {
	if Client != nil {
		_ = Client.Close()
	}
}
