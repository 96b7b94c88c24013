// Package api assembles the API module with all domain systems and route registration.
package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/IonMich/instructor-pilot/internal/config"
	"github.com/IonMich/instructor-pilot/internal/infrastructure"
	"github.com/IonMich/instructor-pilot/pkg/middleware"
	"github.com/IonMich/instructor-pilot/pkg/module"
)

// NewModule creates the API module with all domain handlers and middleware.
// The context is used for OIDC provider discovery when auth is enabled.
func NewModule(
	ctx context.Context,
	cfg *config.Config,
	infra *infrastructure.Infrastructure,
) (*module.Module, error) {
	runtime := NewRuntime(cfg, infra)
	domain := NewDomain(runtime)

	mux := http.NewServeMux()
	registerRoutes(mux, domain, cfg, runtime)

	auth, err := middleware.Auth(ctx, &cfg.API.Auth, runtime.Infrastructure.Logger)
	if err != nil {
		return nil, fmt.Errorf("auth middleware init failed: %w", err)
	}

	m := module.New(cfg.API.BasePath, mux)
	m.Use(middleware.CORS(&cfg.API.CORS))
	m.Use(auth)
	m.Use(middleware.Logger(runtime.Infrastructure.Logger))

	return m, nil
}
