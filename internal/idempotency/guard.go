// Package idempotency rejects replays of a request carrying the same
// Idempotency-Key.
package idempotency

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/Galaktikon/trust-cart/internal/auth"
)

const (
	Header = "Idempotency-Key"

	KeyFormat = "idem:%s:%s:%s"
	TTL       = 24 * time.Hour

	clientTimeout = 2 * time.Second
)

func NewClient(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  clientTimeout,
		ReadTimeout:  clientTimeout,
		WriteTimeout: clientTimeout,
	})
}

// Guard claims the key before the handler runs. Requests without the header
// pass through, as does everything when rdb is nil. A failed handler (5xx)
// releases the key so the client may retry.
func Guard(rdb *redis.Client, scope string, ttl time.Duration, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(Header)
		if rdb == nil || key == "" {
			c.Next()
			return
		}

		user := "anonymous"
		if id, ok := auth.IdentityFrom(c); ok {
			user = id.UserID
		}
		redisKey := fmt.Sprintf(KeyFormat, scope, user, key)

		ctx := c.Request.Context()
		ok, err := rdb.SetNX(ctx, redisKey, time.Now().UTC().Format(time.RFC3339), ttl).Result()
		if err != nil {
			log.Warn("idempotency check skipped", "key", redisKey, "error", err)
			c.Next()
			return
		}
		if !ok {
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "duplicate request"})
			return
		}

		c.Next()

		if c.Writer.Status() >= http.StatusInternalServerError {
			// the request context may already be cancelled by now
			if err := rdb.Del(context.WithoutCancel(ctx), redisKey).Err(); err != nil {
				log.Warn("idempotency key release failed", "key", redisKey, "error", err)
			}
		}
	}
}
