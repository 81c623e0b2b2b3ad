package api

import (
	"net/http"

	"github.com/claimsight/claimsight/internal/config"
	"github.com/claimsight/claimsight/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	cfg *config.Config,
	runtime *Runtime,
) error {
	routes.Register(
		mux,
		domain.Claims.Handler(cfg.API.MaxUploadSizeBytes()).Routes(),
	)

	routes.Register(
		mux,
		domain.Reports.Handler().Routes(),
	)

	storage := newStorageHandler(
		runtime.Storage,
		runtime.Logger,
		cfg.Storage.MaxListSize,
	)
	routes.Register(mux, storage.routes())

	return serveSpec(mux, cfg)
}
