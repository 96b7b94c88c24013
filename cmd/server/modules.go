package main

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/IonMich/instructor-pilot/internal/api"
	"github.com/IonMich/instructor-pilot/internal/config"
	"github.com/IonMich/instructor-pilot/internal/infrastructure"
	"github.com/IonMich/instructor-pilot/pkg/middleware"
	"github.com/IonMich/instructor-pilot/pkg/module"
	"github.com/IonMich/instructor-pilot/pkg/openapi"
	"github.com/IonMich/instructor-pilot/web/scalar"
)

type Modules struct {
	API    *module.Module
	Scalar *module.Module
}

func NewModules(
	ctx context.Context,
	infra *infrastructure.Infrastructure,
	cfg *config.Config,
) (*Modules, error) {
	apiModule, err := api.NewModule(ctx, cfg, infra)
	if err != nil {
		return nil, err
	}

	scalarModule := scalar.NewModule("/scalar")
	scalarModule.Use(middleware.Logger(infra.Logger))

	return &Modules{
		API:    apiModule,
		Scalar: scalarModule,
	}, nil
}

func (m *Modules) Mount(router *module.Router) {
	router.Mount(m.API)
	router.Mount(m.Scalar)
}

func buildRouter(infra *infrastructure.Infrastructure, cfg *config.Config) *module.Router {
	router := module.NewRouter()

	router.HandleNative("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	router.HandleNative("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if !infra.Lifecycle.Ready() {
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]string{"status": "not ready"})
			return
		}
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"status": "ready"})
	})

	if specBytes, err := openapi.MarshalJSON(api.BuildSpec(cfg)); err != nil {
		infra.Logger.Warn("openapi spec generation failed", "error", err)
	} else {
		router.HandleNative("GET /openapi.json", openapi.ServeSpec(specBytes))
	}

	return router
}
