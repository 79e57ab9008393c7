package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"workforce/internal/transport/http/api"
	"workforce/internal/transport/http/shared"
)

// RateLimitKeyFunc picks the bucket a request is counted against.
type RateLimitKeyFunc func(r *http.Request) string

type RateLimitOption func(*rateLimiter)

func WithKeyFunc(fn RateLimitKeyFunc) RateLimitOption {
	return func(rl *rateLimiter) {
		if fn != nil {
			rl.keyFn = fn
		}
	}
}

// RateLimit counts requests per caller in fixed windows. Authenticated callers
// are keyed by tenant and user, everyone else by client IP.
func RateLimit(limit int, window time.Duration, opts ...RateLimitOption) func(http.Handler) http.Handler {
	rl := newRateLimiter(limit, window, actorOrIPKey)
	for _, opt := range opts {
		opt(rl)
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if rl.enforce(w, r) {
				next.ServeHTTP(w, r)
			}
		})
	}
}

// SensitiveMutationRateLimit applies tighter limits to login and to the
// mutations that fan out into heavy work: sweeps, renewals, onboarding and
// PDF generation. Login is limited per IP and per submitted email.
func SensitiveMutationRateLimit(baseLimit int, window time.Duration) func(http.Handler) http.Handler {
	authLimit := max(baseLimit/4, 1)
	authLimiters := []*rateLimiter{
		newRateLimiter(authLimit, window, clientIPKey),
		newRateLimiter(authLimit, window, AuthEmailOrIPKey("email")),
	}
	actorLimiters := []*rateLimiter{
		newRateLimiter(max(baseLimit/2, 1), window, actorOrIPKey),
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var limiters []*rateLimiter
			switch sensitiveRateScope(r) {
			case sensitiveScopeAuth:
				limiters = authLimiters
			case sensitiveScopeActor:
				limiters = actorLimiters
			}
			for _, rl := range limiters {
				if !rl.enforce(w, r) {
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// AuthEmailOrIPKey keys login attempts by the email in the JSON body so one
// address cannot be brute-forced from many IPs.
func AuthEmailOrIPKey(field string) RateLimitKeyFunc {
	field = strings.TrimSpace(field)
	if field == "" {
		field = "email"
	}
	return func(r *http.Request) string {
		if email := jsonStringField(r, field); email != "" {
			return "email:" + strings.ToLower(email)
		}
		return clientIPKey(r)
	}
}

func actorOrIPKey(r *http.Request) string {
	if user, ok := GetUser(r.Context()); ok && user.UserID != "" {
		return "user:" + user.TenantID + ":" + user.UserID
	}
	return clientIPKey(r)
}

func clientIPKey(r *http.Request) string {
	return shared.ClientIP(r)
}

type rateBucket struct {
	count int
	reset time.Time
}

type rateDecision struct {
	allowed   bool
	remaining int
	resetIn   int
}

type rateLimiter struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	keyFn   RateLimitKeyFunc
	buckets map[string]*rateBucket
	hits    int
}

// pruneEvery is how many hits pass between sweeps of expired buckets.
const pruneEvery = 1024

func newRateLimiter(limit int, window time.Duration, keyFn RateLimitKeyFunc) *rateLimiter {
	if keyFn == nil {
		keyFn = actorOrIPKey
	}
	return &rateLimiter{
		limit:   limit,
		window:  window,
		keyFn:   keyFn,
		buckets: map[string]*rateBucket{},
	}
}

func (rl *rateLimiter) take(key string, now time.Time) rateDecision {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.hits++
	if rl.hits%pruneEvery == 0 {
		for k, b := range rl.buckets {
			if now.After(b.reset) {
				delete(rl.buckets, k)
			}
		}
	}

	bucket, ok := rl.buckets[key]
	if !ok || now.After(bucket.reset) {
		bucket = &rateBucket{reset: now.Add(rl.window)}
		rl.buckets[key] = bucket
	}
	bucket.count++
	return rateDecision{
		allowed:   bucket.count <= rl.limit,
		remaining: max(rl.limit-bucket.count, 0),
		resetIn:   ceilSeconds(bucket.reset.Sub(now)),
	}
}

func (rl *rateLimiter) enforce(w http.ResponseWriter, r *http.Request) bool {
	if rl.limit <= 0 {
		return true
	}
	key := rl.keyFn(r)
	if key == "" {
		key = clientIPKey(r)
	}
	d := rl.take(key, time.Now())

	h := w.Header()
	h.Set("X-RateLimit-Limit", strconv.Itoa(rl.limit))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(d.remaining))
	h.Set("X-RateLimit-Reset", strconv.Itoa(d.resetIn))
	if d.allowed {
		return true
	}

	h.Set("Retry-After", strconv.Itoa(max(d.resetIn, 1)))
	slog.Warn("rate limit exceeded",
		"key", key,
		"path", r.URL.Path,
		"method", r.Method,
		"limit", rl.limit,
		"windowSec", int(rl.window.Seconds()),
	)
	api.Fail(w, http.StatusTooManyRequests, "rate_limited", "too many requests", GetRequestID(r.Context()))
	return false
}

func ceilSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int((d + time.Second - 1) / time.Second)
}

// jsonStringField peeks at a top-level string in a JSON body and restores the
// body for the next handler.
func jsonStringField(r *http.Request, field string) string {
	if r == nil || r.Body == nil {
		return ""
	}
	if !strings.Contains(strings.ToLower(r.Header.Get("Content-Type")), "application/json") {
		return ""
	}
	raw, err := io.ReadAll(io.LimitReader(r.Body, 64*1024))
	if err != nil {
		return ""
	}
	r.Body = io.NopCloser(bytes.NewReader(raw))

	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return ""
	}
	value, _ := payload[field].(string)
	return strings.TrimSpace(value)
}

type sensitiveScope string

const (
	sensitiveScopeNone  sensitiveScope = ""
	sensitiveScopeAuth  sensitiveScope = "auth"
	sensitiveScopeActor sensitiveScope = "actor"
)

// sensitiveRoutes lists mutating routes under /api/v1. A "*" segment matches
// any single path segment.
var sensitiveRoutes = []struct {
	pattern string
	scope   sensitiveScope
}{
	{"/auth/login", sensitiveScopeAuth},
	{"/auth/refresh", sensitiveScopeAuth},
	{"/jobs/compliance-sweep", sensitiveScopeActor},
	{"/reports/compliance.pdf", sensitiveScopeActor},
	{"/reports/roster.pdf", sensitiveScopeActor},
	{"/compliance/records/*/renew", sensitiveScopeActor},
	{"/employees/*/onboarding", sensitiveScopeActor},
}

func sensitiveRateScope(r *http.Request) sensitiveScope {
	if r == nil {
		return sensitiveScopeNone
	}
	switch r.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
	default:
		return sensitiveScopeNone
	}

	path := strings.TrimPrefix(strings.TrimSpace(r.URL.Path), "/api/v1")
	for _, route := range sensitiveRoutes {
		if matchSegments(route.pattern, path) {
			return route.scope
		}
	}
	return sensitiveScopeNone
}

func matchSegments(pattern, path string) bool {
	want := strings.Split(strings.Trim(pattern, "/"), "/")
	got := strings.Split(strings.Trim(path, "/"), "/")
	if len(want) != len(got) {
		return false
	}
	for i := range want {
		if want[i] != "*" && want[i] != got[i] {
			return false
		}
	}
	return true
}
