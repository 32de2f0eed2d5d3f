package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Redis holds keys across service replicas with SET NX PX and a token-checked release.
type Redis struct {
	Client redis.UniversalClient
	Prefix string
	TTL    time.Duration
	Retry  time.Duration
}

func NewRedis(client redis.UniversalClient) *Redis {
	return &Redis{
		Client: client,
		Prefix: "LOCK:",
		TTL:    30 * time.Second,
		Retry:  25 * time.Millisecond,
	}
}

func (r *Redis) Lock(ctx context.Context, key string) (func(), error) {
	name := r.Prefix + key
	token := uuid.NewString()
	ticker := time.NewTicker(r.Retry)
	defer ticker.Stop()

	for {
		ok, err := r.Client.SetNX(ctx, name, token, r.TTL).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire %s: %w", name, err)
		}
		if ok {
			return func() {
				releaseScript.Run(context.Background(), r.Client, []string{name}, token)
			}, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
