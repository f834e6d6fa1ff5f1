package middleware

import (
	"context"
	"fmt"
	"log"
	"math"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RateLimitAlgorithm selects how requests are counted.
type RateLimitAlgorithm string

const (
	TokenBucket RateLimitAlgorithm = "token_bucket"
	LeakyBucket RateLimitAlgorithm = "leaky_bucket"
	FixedWindow RateLimitAlgorithm = "fixed_window"
)

// RateLimitType selects what a limit is keyed on.
type RateLimitType string

const (
	RateLimitByIP       RateLimitType = "ip"
	RateLimitByUser     RateLimitType = "user"
	RateLimitByEndpoint RateLimitType = "endpoint"
)

// RateLimitConfig is one limit rule.
type RateLimitConfig struct {
	// Path is the request path prefix the rule applies to.
	Path      string
	Limit     int
	Window    time.Duration
	Algorithm RateLimitAlgorithm
	Type      RateLimitType
	// KeyFunc overrides the key derived from Type.
	KeyFunc func(*gin.Context) string
}

func (c *RateLimitConfig) windowSeconds() int {
	s := int(math.Ceil(c.Window.Seconds()))
	if s < 1 {
		return 1
	}
	return s
}

// RateLimiter decides whether a request identified by key may proceed.
type RateLimiter interface {
	Allow(ctx context.Context, key string, config *RateLimitConfig) (*RateLimitResult, error)
}

// RateLimitResult is the outcome of one Allow call.
type RateLimitResult struct {
	Allowed   bool
	Remaining int
	// ResetAt is a Unix timestamp.
	ResetAt int64
	Limit   int
}

var (
	tokenBucketScript = redis.NewScript(`
		local bucket = redis.call('HMGET', KEYS[1], 'tokens', 'last_update')
		local capacity = tonumber(ARGV[1])
		local rate = tonumber(ARGV[2])
		local now = tonumber(ARGV[3])
		local requested = tonumber(ARGV[4])

		local tokens = tonumber(bucket[1]) or capacity
		local last_update = tonumber(bucket[2]) or now

		local elapsed = now - last_update
		local new_tokens = math.min(capacity, tokens + elapsed * rate)

		local allowed = new_tokens >= requested
		local remaining = 0
		if allowed then
			new_tokens = new_tokens - requested
			remaining = math.floor(new_tokens)
		end

		redis.call('HMSET', KEYS[1], 'tokens', new_tokens, 'last_update', now)
		redis.call('EXPIRE', KEYS[1], math.ceil(capacity / rate) + 1)

		return {allowed and 1 or 0, remaining, capacity}
	`)

	leakyBucketScript = redis.NewScript(`
		local capacity = tonumber(ARGV[1])
		local leak_rate = tonumber(ARGV[2])
		local now = tonumber(ARGV[3])
		local window = tonumber(ARGV[4])

		local last_leak = tonumber(redis.call('GET', KEYS[1] .. ':last_leak') or now)
		local leaked = math.floor((now - last_leak) * leak_rate / 1000)
		if leaked > 0 then
			redis.call('LTRIM', KEYS[1], leaked, -1)
			redis.call('SET', KEYS[1] .. ':last_leak', now)
		end

		local size = redis.call('LLEN', KEYS[1])
		local allowed = size < capacity
		local remaining = capacity - size
		if allowed then
			redis.call('RPUSH', KEYS[1], now)
			remaining = capacity - size - 1
		end

		redis.call('EXPIRE', KEYS[1], window + 1)
		redis.call('EXPIRE', KEYS[1] .. ':last_leak', window + 1)

		return {allowed and 1 or 0, remaining, capacity}
	`)

	fixedWindowScript = redis.NewScript(`
		local current = tonumber(redis.call('GET', KEYS[1]) or 0)
		local limit = tonumber(ARGV[1])
		local ttl = tonumber(ARGV[2])

		local allowed = current < limit
		local remaining = limit - current - 1
		if allowed then
			redis.call('INCR', KEYS[1])
			if current == 0 then
				redis.call('EXPIRE', KEYS[1], ttl)
			end
		else
			remaining = 0
		end

		return {allowed and 1 or 0, remaining, limit}
	`)
)

// RedisRateLimiter keeps counters in Redis so limits hold across replicas.
type RedisRateLimiter struct {
	redis *redis.Client
}

func NewRedisRateLimiter(client *redis.Client) *RedisRateLimiter {
	return &RedisRateLimiter{redis: client}
}

func (r *RedisRateLimiter) Allow(ctx context.Context, key string, config *RateLimitConfig) (*RateLimitResult, error) {
	window := config.windowSeconds()
	now := time.Now()

	var (
		res     any
		err     error
		resetAt = now.Unix() + int64(window)
	)
	switch config.Algorithm {
	case LeakyBucket:
		leakPerSecond := float64(config.Limit) / float64(window)
		res, err = leakyBucketScript.Run(ctx, r.redis, []string{"ratelimit:leaky:" + key},
			config.Limit, leakPerSecond, now.UnixMilli(), window).Result()
	case FixedWindow:
		slot := now.Unix() / int64(window)
		resetAt = (slot + 1) * int64(window)
		res, err = fixedWindowScript.Run(ctx, r.redis, []string{fmt.Sprintf("ratelimit:fixed:%s:%d", key, slot)},
			config.Limit, window+1).Result()
	default:
		perSecond := float64(config.Limit) / float64(window)
		res, err = tokenBucketScript.Run(ctx, r.redis, []string{"ratelimit:token:" + key},
			config.Limit, perSecond, now.Unix(), 1).Result()
	}
	if err != nil {
		return nil, err
	}
	return parseScriptResult(res, resetAt)
}

func parseScriptResult(res any, resetAt int64) (*RateLimitResult, error) {
	values, ok := res.([]interface{})
	if !ok || len(values) != 3 {
		return nil, fmt.Errorf("unexpected rate limit reply %T", res)
	}
	nums := make([]int64, 3)
	for i, v := range values {
		n, ok := v.(int64)
		if !ok {
			return nil, fmt.Errorf("unexpected rate limit value %T", v)
		}
		nums[i] = n
	}
	return &RateLimitResult{
		Allowed:   nums[0] == 1,
		Remaining: int(nums[1]),
		ResetAt:   resetAt,
		Limit:     int(nums[2]),
	}, nil
}

// RateLimitGroup applies the rule with the longest matching path prefix,
// falling back to the default rule.
type RateLimitGroup struct {
	limiter       RateLimiter
	defaultConfig *RateLimitConfig
	rules         []*RateLimitConfig
}

func NewRateLimitGroup(limiter RateLimiter, defaultConfig *RateLimitConfig, rules ...*RateLimitConfig) *RateLimitGroup {
	g := &RateLimitGroup{limiter: limiter, defaultConfig: defaultConfig}
	for _, r := range rules {
		g.AddRule(r)
	}
	return g
}

// AddRule registers a path prefix rule.
func (g *RateLimitGroup) AddRule(rule *RateLimitConfig) {
	g.rules = append(g.rules, rule)
	sort.SliceStable(g.rules, func(i, j int) bool { return len(g.rules[i].Path) > len(g.rules[j].Path) })
}

func (g *RateLimitGroup) ruleFor(path string) *RateLimitConfig {
	for _, r := range g.rules {
		if r.Path != "" && strings.HasPrefix(path, r.Path) {
			return r
		}
	}
	return g.defaultConfig
}

// Middleware enforces the limits. Limiter errors let the request through.
func (g *RateLimitGroup) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		config := g.ruleFor(c.Request.URL.Path)
		if config == nil || config.Limit <= 0 {
			c.Next()
			return
		}

		key := rateLimitKey(c, config)
		result, err := g.limiter.Allow(c.Request.Context(), key, config)
		if err != nil {
			log.Printf("[RateLimit] limiter unavailable, allowing %s: %v", c.Request.URL.Path, err)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(result.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt, 10))

		if !result.Allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate limit exceeded",
				"retry_after": result.ResetAt - time.Now().Unix(),
			})
			return
		}
		c.Next()
	}
}

func rateLimitKey(c *gin.Context, config *RateLimitConfig) string {
	if config.KeyFunc != nil {
		return config.KeyFunc(c)
	}
	prefix := config.Path
	if prefix == "" {
		prefix = "*"
	}
	switch config.Type {
	case RateLimitByUser:
		if userID, ok := c.Get(ContextUserID); ok {
			return fmt.Sprintf("%s:user:%v", prefix, userID)
		}
		return prefix + ":ip:" + clientIP(c)
	case RateLimitByEndpoint:
		return fmt.Sprintf("%s:endpoint:%s:%s", prefix, c.Request.Method, c.FullPath())
	default:
		return prefix + ":ip:" + clientIP(c)
	}
}

func clientIP(c *gin.Context) string {
	if xff := c.GetHeader("X-Forwarded-For"); xff != "" {
		return strings.TrimSpace(strings.Split(xff, ",")[0])
	}
	if xri := c.GetHeader("X-Real-Ip"); xri != "" {
		return xri
	}
	if ip := c.ClientIP(); ip != "" {
		return ip
	}
	return "unknown"
}
