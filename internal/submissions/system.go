package submissions

import (
	"context"

	"github.com/google/uuid"

	"github.com/IonMich/instructor-pilot/pkg/pagination"
)

// System defines the public contract for submission domain operations.
type System interface {
	Handler() *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Submission], error)

	Find(ctx context.Context, id uuid.UUID) (*Submission, error)

	// Snapshot returns every submission for an assignment ordered by student.
	// This is the membership snapshot the review surface re-derives from
	// after each mutation.
	Snapshot(ctx context.Context, assignmentID uuid.UUID) ([]Submission, error)

	// SetVersion moves a submission to the given version and returns a fresh
	// snapshot of the submission's assignment. The version must belong to the
	// same assignment as the submission.
	SetVersion(ctx context.Context, submissionID, versionID uuid.UUID) ([]Submission, error)

	// AuditImages verifies that every page-image blob referenced by the
	// assignment's submissions exists in storage.
	AuditImages(ctx context.Context, assignmentID uuid.UUID) (*ImageAudit, error)
}

// ImageAudit reports the result of a page-image existence check.
type ImageAudit struct {
	AssignmentID uuid.UUID `json:"assignment_id"`
	Checked      int       `json:"checked"`
	Missing      []string  `json:"missing"`
}

// SetVersionResponse is the wire shape returned by the set-version mutation.
type SetVersionResponse struct {
	Success     bool         `json:"success"`
	Submissions []Submission `json:"submissions"`
}
