// Package clustering wraps the external similarity-clustering service. The
// algorithm itself is opaque: this package only knows how to ship page images
// to the service and read back the version membership it computes.
package clustering

import (
	"github.com/google/uuid"

	"github.com/IonMich/instructor-pilot/internal/versions"
)

// ComputeRequest carries everything the clusterer needs for one pass: the
// assignment, the 1-based page numbers to cluster on, and each submission's
// page-image storage keys.
type ComputeRequest struct {
	AssignmentID uuid.UUID `json:"assignment_id"`
	Pages        []int     `json:"pages"`
	Items        []Item    `json:"items"`
}

// Item is one submission's input to the clustering pass.
type Item struct {
	SubmissionID uuid.UUID `json:"submission_id"`
	Images       []string  `json:"images"`
}

// Result is the clusterer's output: the computed version set with membership.
// Submissions absent from every version are outliers.
type Result struct {
	Versions []versions.VersionSpec `json:"versions"`
}
