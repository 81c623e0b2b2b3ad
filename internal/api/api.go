// Package api assembles the API module with all domain systems and route registration.
package api

import (
	"net/http"

	"github.com/claimsight/claimsight/internal/config"
	"github.com/claimsight/claimsight/internal/infrastructure"
	"github.com/claimsight/claimsight/pkg/middleware"
	"github.com/claimsight/claimsight/pkg/module"
)

// NewModule creates the API module with all domain handlers and middleware.
func NewModule(cfg *config.Config, infra *infrastructure.Infrastructure) (*module.Module, error) {
	runtime := NewRuntime(cfg, infra)
	domain := NewDomain(cfg, runtime)

	mux := http.NewServeMux()
	if err := registerRoutes(mux, domain, cfg, runtime); err != nil {
		return nil, err
	}

	m := module.New(cfg.API.BasePath, mux)
	m.Use(middleware.CORS(&cfg.API.CORS))
	m.Use(middleware.Logger(runtime.Infrastructure.Logger))

	return m, nil
}
