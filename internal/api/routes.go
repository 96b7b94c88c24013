package api

import (
	"net/http"

	"github.com/IonMich/instructor-pilot/internal/config"
	"github.com/IonMich/instructor-pilot/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	cfg *config.Config,
	runtime *Runtime,
) {
	maxUpload := cfg.API.MaxUploadSizeBytes()

	storage := newStorageHandler(
		runtime.Storage,
		runtime.Logger,
		cfg.Storage.MaxListSize,
	)

	routes.Register(
		mux,
		domain.Assignments.Handler().Routes(),
		domain.Submissions.Handler().Routes(),
		domain.Versions.Handler(maxUpload).Routes(),
		domain.Review.Handler(maxUpload).Routes(),
		storage.routes(),
	)
}
