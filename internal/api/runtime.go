package api

import (
	"github.com/claimsight/claimsight/internal/config"
	"github.com/claimsight/claimsight/internal/detection"
	"github.com/claimsight/claimsight/internal/infrastructure"
	"github.com/claimsight/claimsight/pkg/pagination"
)

// Runtime extends Infrastructure with API-scoped configuration and the deep
// detector shared by the domain systems.
type Runtime struct {
	*infrastructure.Infrastructure
	Pagination pagination.Config
	Detector   detection.DeepDetector
}

// NewRuntime creates an API runtime with a module-scoped logger.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) *Runtime {
	logger := infra.Logger.With("module", "api")

	return &Runtime{
		Infrastructure: &infrastructure.Infrastructure{
			Lifecycle: infra.Lifecycle,
			Logger:    logger,
			Database:  infra.Database,
			Storage:   infra.Storage,
			Publisher: infra.Publisher,
		},
		Pagination: cfg.API.Pagination,
		Detector: detection.NewScriptDetector(
			cfg.Detector.Python,
			cfg.Detector.ImageScript,
			cfg.Detector.VideoScript,
			cfg.Detector.TimeoutDuration(),
			logger,
		),
	}
}
