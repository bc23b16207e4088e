package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	redis_rate "github.com/go-redis/redis_rate/v10"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	resp "course-management-api/internal/transport/http/response"
)

func tooManyRequests(c *gin.Context) {
	httpRejected.WithLabelValues("rate_limit").Inc()
	resp.Abort(c, http.StatusTooManyRequests, "")
}

type ipBuckets struct {
	mu    sync.Mutex
	rps   rate.Limit
	burst int
	m     map[string]*rate.Limiter
}

func (b *ipBuckets) get(ip string) *rate.Limiter {
	b.mu.Lock()
	defer b.mu.Unlock()
	lim, ok := b.m[ip]
	if !ok {
		lim = rate.NewLimiter(b.rps, b.burst)
		b.m[ip] = lim
	}
	return lim
}

// RateLimitPerIP 每 IP 一个令牌桶（单实例）
func RateLimitPerIP(rps rate.Limit, burst int) gin.HandlerFunc {
	b := &ipBuckets{rps: rps, burst: burst, m: make(map[string]*rate.Limiter)}
	return func(c *gin.Context) {
		if b.get(c.ClientIP()).Allow() {
			c.Next()
			return
		}
		tooManyRequests(c)
	}
}

// RedisRateLimit 多实例共享的每 IP 限速（GCRA，redis_rate）。
// Redis 不可用时退回进程内限速，不影响请求。
func RedisRateLimit(rdb *redis.Client, rps, burst int, l *zap.Logger) gin.HandlerFunc {
	limiter := redis_rate.NewLimiter(rdb)
	limit := redis_rate.Limit{Rate: rps, Burst: burst, Period: time.Second}
	local := &ipBuckets{rps: rate.Limit(rps), burst: burst, m: make(map[string]*rate.Limiter)}

	return func(c *gin.Context) {
		ip := c.ClientIP()
		res, err := limiter.Allow(c.Request.Context(), "ratelimit:ip:"+ip, limit)
		if err != nil {
			l.Warn("redis rate limit unavailable", zap.Error(err))
			if local.get(ip).Allow() {
				c.Next()
				return
			}
			tooManyRequests(c)
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(limit.Rate))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
		if res.Allowed == 0 {
			retry := int(res.RetryAfter.Seconds())
			if retry < 1 {
				retry = 1
			}
			c.Header("Retry-After", strconv.Itoa(retry))
			tooManyRequests(c)
			return
		}
		c.Next()
	}
}
