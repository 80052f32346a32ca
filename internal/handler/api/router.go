package api

import (
	"github.com/labstack/echo/v4"

	pkghttp "github.com/pbtrad/balancing-market/pkg/http"
)

// Router registers every API handler on the server.
type Router struct {
	forecast *ForecastHandler
	health   *HealthHandler
}

// NewRouter creates the route registrar.
func NewRouter(forecast *ForecastHandler, health *HealthHandler) *Router {
	return &Router{forecast: forecast, health: health}
}

func (r *Router) RegisterRoutes(e *echo.Echo) {
	r.health.RegisterRoutes(e)
	r.forecast.RegisterRoutes(e)
}

var _ pkghttp.Handler = (*Router)(nil)
