package api

import (
	"context"
	"time"

	"github.com/kp666/twitter-stream/internal/services/database"
	"github.com/kp666/twitter-stream/internal/services/stream/handlers"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

const (
	statusHealthy   = "healthy"
	statusUnhealthy = "unhealthy"
)

// StreamStatus is the part of a stream the health check reads
type StreamStatus interface {
	State() handlers.State
	SessionID() string
	Timeout() time.Duration
}

// HealthHandler handles health check requests
type HealthHandler struct {
	stream      StreamStatus
	redisClient redis.Cmdable
	db          *database.DB
}

// NewHealthHandler creates a new health check handler. redisClient and db may
// be nil when those sinks are not configured.
func NewHealthHandler(stream StreamStatus, redisClient redis.Cmdable, db *database.DB) *HealthHandler {
	return &HealthHandler{
		stream:      stream,
		redisClient: redisClient,
		db:          db,
	}
}

// HealthCheck returns the health status of the stream and its sinks
func (h *HealthHandler) HealthCheck(c *fiber.Ctx) error {
	checks := fiber.Map{}
	overallStatus := statusHealthy
	statusCode := fiber.StatusOK

	state := h.stream.State()
	if state != handlers.Active {
		overallStatus = "degraded"
		statusCode = fiber.StatusServiceUnavailable
	}

	if h.redisClient != nil {
		redisStatus := h.checkRedis(c.UserContext())
		checks["redis"] = redisStatus
		if redisStatus != statusHealthy {
			overallStatus = "degraded"
			statusCode = fiber.StatusServiceUnavailable
		}
	}

	if h.db != nil {
		dbStatus := h.checkDatabase()
		checks["database"] = dbStatus
		if dbStatus != statusHealthy {
			overallStatus = "degraded"
			statusCode = fiber.StatusServiceUnavailable
		}
	}

	response := fiber.Map{
		"status":    overallStatus,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"stream": fiber.Map{
			"session_id": h.stream.SessionID(),
			"state":      state.String(),
			"timeout":    h.stream.Timeout().String(),
		},
		"checks": checks,
	}

	return c.Status(statusCode).JSON(response)
}

// checkRedis verifies Redis connectivity
func (h *HealthHandler) checkRedis(ctx context.Context) string {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := h.redisClient.Ping(ctx).Err(); err != nil {
		return statusUnhealthy
	}

	return statusHealthy
}

func (h *HealthHandler) checkDatabase() string {
	if err := h.db.Ping(); err != nil {
		return statusUnhealthy
	}
	return statusHealthy
}
