// Package submissions implements the scanned-submission domain. A submission
// is one student's scanned paper: an ordered list of page-image blob keys plus
// an optional reference to the version the clustering pass assigned it to.
package submissions

import (
	"time"

	"github.com/google/uuid"
)

// Submission represents one scanned paper within an assignment. Images holds
// page-image storage keys indexable by page (Images[p-1] is page p). Version
// is nil when the submission is unassigned — an outlier, or clustering has
// never run for its assignment.
type Submission struct {
	ID           uuid.UUID   `json:"id"`
	AssignmentID uuid.UUID   `json:"assignment_id"`
	Student      string      `json:"student"`
	Images       []string    `json:"images"`
	Version      *VersionRef `json:"version"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// VersionRef is the version projection embedded in a submission snapshot.
type VersionRef struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	VersionImage *string   `json:"version_image,omitempty"`
}

// Assigned reports whether the submission belongs to a version.
func (s *Submission) Assigned() bool {
	return s.Version != nil
}
