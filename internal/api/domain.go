package api

import (
	"github.com/claimsight/claimsight/internal/claims"
	"github.com/claimsight/claimsight/internal/config"
	"github.com/claimsight/claimsight/internal/reports"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Claims  claims.System
	Reports reports.System
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(cfg *config.Config, runtime *Runtime) *Domain {
	claimsSystem := claims.New(
		runtime.Database.Connection(),
		runtime.Storage,
		runtime.Publisher,
		runtime.Logger,
		runtime.Pagination,
	)

	reportsSystem := reports.New(
		runtime.Database.Connection(),
		runtime.Storage,
		claimsSystem,
		runtime.Detector,
		cfg.Pipeline,
		runtime.Logger,
		runtime.Pagination,
	)

	return &Domain{
		Claims:  claimsSystem,
		Reports: reportsSystem,
	}
}
