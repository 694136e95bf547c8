package gateway

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Counter is the fixed-window counter backing a rate limit. The first
// increment of a window sets its expiry.
type Counter interface {
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
}

type redisCounter struct {
	rdb *redis.Client
}

func NewRedisCounter(rdb *redis.Client) Counter {
	return &redisCounter{rdb: rdb}
}

func (c *redisCounter) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	pipe := c.rdb.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

// Rule is one rate-limit group.
type Rule struct {
	Name    string
	Limit   int64
	Window  time.Duration
	Message string
}

// Route groups ship fixed defaults; windows restart on expiry rather
// than sliding.
var (
	RuleAPI = Rule{
		Name:    "api",
		Limit:   100,
		Window:  15 * time.Minute,
		Message: "Too many requests from this IP, please try again later",
	}
	RuleAuth = Rule{
		Name:    "auth",
		Limit:   50,
		Window:  15 * time.Minute,
		Message: "Too many authentication attempts, please try again later",
	}
	RuleInterview = Rule{
		Name:    "interview",
		Limit:   30,
		Window:  time.Hour,
		Message: "Interview request limit reached, please try again later",
	}
)

// RateLimit rejects requests over the rule's fixed-window budget, keyed
// by client IP. A counter outage fails open: the request proceeds.
func RateLimit(counter Counter, rule Rule, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		window := time.Now().UTC().Unix() / int64(rule.Window.Seconds())
		key := fmt.Sprintf("ratelimit:%s:%s:%d", rule.Name, c.ClientIP(), window)

		n, err := counter.Incr(c.Request.Context(), key, rule.Window)
		if err != nil {
			log.WithError(err).WithField("group", rule.Name).Warn("rate limit counter unavailable")
			c.Next()
			return
		}
		if n > rule.Limit {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"error":   rule.Message,
			})
			return
		}
		c.Next()
	}
}
