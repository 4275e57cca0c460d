package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/pdch/pdch-server/internal/api/dto"
	"github.com/pdch/pdch-server/internal/observability"
	"github.com/pdch/pdch-server/internal/persistence"
)

// Pinger is implemented by every store backend that has a remote dependency.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler responds to liveness and readiness probes.
type HealthHandler struct {
	serviceName string
	version     string
	storeName   string
	store       Pinger
	redis       *persistence.Redis
	metrics     fiber.Handler
	now         func() time.Time
}

// HealthDependencies bundles what the probes inspect.
type HealthDependencies struct {
	ServiceName string
	Version     string
	StoreName   string
	// Store may be nil for the in-memory backend.
	Store   Pinger
	Redis   *persistence.Redis
	Metrics *observability.Metrics
}

// NewHealthHandler returns a new handler instance.
func NewHealthHandler(deps HealthDependencies) *HealthHandler {
	return &HealthHandler{
		serviceName: deps.ServiceName,
		version:     deps.Version,
		storeName:   deps.StoreName,
		store:       deps.Store,
		redis:       deps.Redis,
		metrics:     metricsHandler(deps.Metrics),
		now:         time.Now,
	}
}

// Root handles GET /.
func (h *HealthHandler) Root(c *fiber.Ctx) error {
	return c.JSON(dto.LivenessResponse{
		Message:   "Server is running smoothly",
		Timestamp: h.now().UTC(),
	})
}

// Live reports service liveness.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "alive",
		"service": h.serviceName,
		"version": h.version,
	})
}

// Ready reports service readiness by checking dependencies.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	depStatus := fiber.Map{}
	ready := true

	switch {
	case h.store == nil:
		depStatus[h.storeName] = "ok"
	default:
		if err := h.store.Ping(ctx); err != nil {
			depStatus[h.storeName] = err.Error()
			ready = false
		} else {
			depStatus[h.storeName] = "ok"
		}
	}

	if !h.redis.Enabled() {
		depStatus["redis"] = "disabled"
	} else if err := h.redis.Ping(ctx); err != nil {
		depStatus["redis"] = err.Error()
		ready = false
	} else {
		depStatus["redis"] = "ok"
	}

	if ready {
		return c.JSON(fiber.Map{
			"status":       "ready",
			"dependencies": depStatus,
		})
	}

	return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
		"success": false,
		"code":    "DEPENDENCY_UNAVAILABLE",
		"message": "one or more dependencies unavailable",
		"details": depStatus,
	})
}

// Metrics exposes the request collectors in the Prometheus text format.
func (h *HealthHandler) Metrics(c *fiber.Ctx) error {
	return h.metrics(c)
}

func metricsHandler(m *observability.Metrics) fiber.Handler {
	if m == nil {
		m = observability.NewMetrics(nil)
	}
	return adaptor.HTTPHandler(m.Handler())
}
