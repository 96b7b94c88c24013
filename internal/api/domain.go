package api

import (
	"github.com/IonMich/instructor-pilot/internal/assignments"
	"github.com/IonMich/instructor-pilot/internal/clustering"
	"github.com/IonMich/instructor-pilot/internal/review"
	"github.com/IonMich/instructor-pilot/internal/submissions"
	"github.com/IonMich/instructor-pilot/internal/versions"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Assignments assignments.System
	Submissions submissions.System
	Versions    versions.System
	Clusterer   clustering.Client
	Review      *review.Manager
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(runtime *Runtime) *Domain {
	assignmentsSystem := assignments.New(
		runtime.Database.Connection(),
		runtime.Logger,
		runtime.Pagination,
	)

	submissionsSystem := submissions.New(
		runtime.Database.Connection(),
		runtime.Storage,
		runtime.Logger,
		runtime.Pagination,
	)

	versionsSystem := versions.New(
		runtime.Database.Connection(),
		runtime.Storage,
		runtime.Logger,
		runtime.BasePath+"/storage/download",
	)

	clusterer := clustering.New(&runtime.Clusterer, runtime.Logger)

	backend := review.NewBackend(
		submissionsSystem,
		versionsSystem,
		clusterer,
		runtime.Logger,
	)

	return &Domain{
		Assignments: assignmentsSystem,
		Submissions: submissionsSystem,
		Versions:    versionsSystem,
		Clusterer:   clusterer,
		Review:      review.NewManager(assignmentsSystem, backend, runtime.Logger),
	}
}
