package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type ClosedChecker interface {
	IsClosed() bool
}

// PingFunc adapts a plain function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

type HealthHandler struct {
	Mongo     Pinger
	Postgres  Pinger
	Redis     Pinger
	RabbitMQ  ClosedChecker
	StartTime time.Time
}

type HealthResponse struct {
	Status       string            `json:"status"`
	Version      string            `json:"version"`
	Uptime       string            `json:"uptime"`
	Dependencies map[string]string `json:"dependencies"`
}

func NewHealthHandler(mongo, postgres, redis Pinger, rabbitMQ ClosedChecker) *HealthHandler {
	return &HealthHandler{
		Mongo:     mongo,
		Postgres:  postgres,
		Redis:     redis,
		RabbitMQ:  rabbitMQ,
		StartTime: time.Now(),
	}
}

func (h *HealthHandler) Handle(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	deps := map[string]string{
		"mongodb":  ping(ctx, h.Mongo),
		"postgres": ping(ctx, h.Postgres),
		"redis":    ping(ctx, h.Redis),
	}

	if h.RabbitMQ != nil {
		if h.RabbitMQ.IsClosed() {
			deps["rabbitmq"] = "unhealthy: connection closed"
		} else {
			deps["rabbitmq"] = "healthy"
		}
	} else {
		deps["rabbitmq"] = "not configured"
	}

	status := "healthy"
	for _, v := range deps {
		if v != "healthy" && v != "not configured" {
			status = "degraded"
			break
		}
	}

	response := HealthResponse{
		Status:       status,
		Version:      "1.0.0",
		Uptime:       time.Since(h.StartTime).Round(time.Second).String(),
		Dependencies: deps,
	}

	w.Header().Set("Content-Type", "application/json")
	if status == "degraded" {
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}

	json.NewEncoder(w).Encode(response)
}

func ping(ctx context.Context, p Pinger) string {
	if p == nil {
		return "not configured"
	}
	if err := p.Ping(ctx); err != nil {
		return fmt.Sprintf("unhealthy: %v", err)
	}
	return "healthy"
}
