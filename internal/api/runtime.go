package api

import (
	"github.com/IonMich/instructor-pilot/internal/config"
	"github.com/IonMich/instructor-pilot/internal/infrastructure"
	"github.com/IonMich/instructor-pilot/pkg/pagination"
)

// Runtime extends Infrastructure with API-specific configuration.
type Runtime struct {
	*infrastructure.Infrastructure
	Pagination pagination.Config
	Clusterer  config.ClustererConfig
	BasePath   string
}

// NewRuntime creates an API runtime with a module-scoped logger.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) *Runtime {
	return &Runtime{
		Infrastructure: &infrastructure.Infrastructure{
			Lifecycle: infra.Lifecycle,
			Logger:    infra.Logger.With("module", "api"),
			Database:  infra.Database,
			Storage:   infra.Storage,
		},
		Pagination: cfg.API.Pagination,
		Clusterer:  cfg.Clusterer,
		BasePath:   cfg.API.BasePath,
	}
}
