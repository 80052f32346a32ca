package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	domrepo "github.com/pbtrad/balancing-market/internal/domain/repository"
	pkghttp "github.com/pbtrad/balancing-market/pkg/http"
)

// HealthHandler reports process and store liveness.
type HealthHandler struct {
	store domrepo.SeriesStore
}

// NewHealthHandler creates the health handler.
func NewHealthHandler(store domrepo.SeriesStore) *HealthHandler {
	return &HealthHandler{store: store}
}

// RegisterRoutes registers the health routes.
func (h *HealthHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.Health)
	e.GET("/ready", h.Ready)
}

func (h *HealthHandler) Health(c echo.Context) error {
	return pkghttp.SuccessResponse(c, map[string]string{"status": "ok"})
}

func (h *HealthHandler) Ready(c echo.Context) error {
	if err := h.store.Health(c.Request().Context()); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status": "unavailable",
			"error":  err.Error(),
		})
	}
	return pkghttp.SuccessResponse(c, map[string]string{"status": "ready"})
}
