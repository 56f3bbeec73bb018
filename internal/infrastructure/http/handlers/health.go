package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
)

// Pinger is satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

type pingFunc func(context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

// HealthHandler serves /health. The database check reads "memory" in seed-file mode;
// Redis is only checked when configured.
type HealthHandler struct {
	checks []namedCheck
}

type namedCheck struct {
	name string
	ping Pinger // nil: reported as "memory", always healthy
}

// NewHealthHandler creates a health handler (db and redis optional).
func NewHealthHandler(db Pinger, redisClient *redis.Client) *HealthHandler {
	h := &HealthHandler{checks: []namedCheck{{name: "database", ping: db}}}
	if redisClient != nil {
		h.checks = append(h.checks, namedCheck{name: "redis", ping: pingFunc(func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})})
	}
	return h
}

type healthResponse struct {
	Status  string            `json:"status"`
	Checks  map[string]string `json:"checks,omitempty"`
	Message string            `json:"message,omitempty"`
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	resp := healthResponse{Status: "ok", Checks: make(map[string]string, len(h.checks))}
	for _, c := range h.checks {
		switch {
		case c.ping == nil:
			resp.Checks[c.name] = "memory"
		default:
			if err := c.ping.Ping(ctx); err != nil {
				resp.Checks[c.name] = "down: " + err.Error()
				resp.Status = "unhealthy"
				continue
			}
			resp.Checks[c.name] = "ok"
		}
	}
	if resp.Status != "ok" {
		resp.Message = "one or more checks failed"
		writeJSON(w, http.StatusServiceUnavailable, resp)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
