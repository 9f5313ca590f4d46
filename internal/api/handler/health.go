package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const rootMessage = "Server is running!"

// HealthHandler serves the plain-text root and the JSON liveness check.
type HealthHandler struct{}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// Root handles GET /.
func (h *HealthHandler) Root(c echo.Context) error {
	return c.String(http.StatusOK, rootMessage)
}

// Liveness handles GET /health.
func (h *HealthHandler) Liveness(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// Check reports whether a dependency is reachable.
type Check func(ctx context.Context) error

// MongoCheck pings the server and runs a ping command against db.
func MongoCheck(db *mongo.Database) Check {
	return func(ctx context.Context) error {
		if err := db.Client().Ping(ctx, nil); err != nil {
			return err
		}
		return db.RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Err()
	}
}

// RedisCheck pings rdb.
func RedisCheck(rdb *redis.Client) Check {
	return func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	}
}

// HealthDependenciesHandler handles GET /health/ready.
type HealthDependenciesHandler struct {
	checks  map[string]Check
	timeout time.Duration
}

func NewHealthDependenciesHandler(checks map[string]Check) *HealthDependenciesHandler {
	return &HealthDependenciesHandler{checks: checks, timeout: 3 * time.Second}
}

type dependencyStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type readinessResponse struct {
	Status       string                      `json:"status"`
	Dependencies map[string]dependencyStatus `json:"dependencies"`
}

func (h *HealthDependenciesHandler) Readiness(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	deps := make(map[string]dependencyStatus, len(h.checks))
	healthy := true

	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			deps[name] = dependencyStatus{Status: "unhealthy", Error: err.Error()}
			healthy = false
			continue
		}
		deps[name] = dependencyStatus{Status: "ok"}
	}

	status := "ok"
	httpStatus := http.StatusOK
	if !healthy {
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable
	}

	return c.JSON(httpStatus, readinessResponse{
		Status:       status,
		Dependencies: deps,
	})
}
