package versions

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// System defines the public contract for version domain operations.
type System interface {
	Handler(maxUploadSize int64) *Handler

	ListForAssignment(ctx context.Context, assignmentID uuid.UUID) ([]Version, error)
	Find(ctx context.Context, id uuid.UUID) (*Version, error)

	// Comments returns every comment for an assignment grouped by version.
	Comments(ctx context.Context, assignmentID uuid.UUID) (*CommentSets, error)

	// Attach adds a text comment and/or file attachments to a version. The
	// command must carry at least one non-blank field after filtering.
	Attach(ctx context.Context, versionID uuid.UUID, cmd AttachCommand) error

	DeleteTextComment(ctx context.Context, id uuid.UUID) error
	DeleteFileComment(ctx context.Context, id uuid.UUID) error

	// Apply replaces the assignment's version set with a clustering result:
	// existing versions (and their comments) are dropped, the new versions are
	// inserted, and submission membership is rewritten in one transaction.
	Apply(ctx context.Context, assignmentID uuid.UUID, specs []VersionSpec) error

	// Reset drops every version for the assignment and clears submission
	// membership, returning the assignment to its unclustered state.
	Reset(ctx context.Context, assignmentID uuid.UUID) error
}

// AttachCommand carries the payload for a comment attach. Text and Files are
// expected to be pre-filtered: blank text and zero-byte files are dropped
// before the command is built.
type AttachCommand struct {
	Author string
	Text   string
	Files  []FileUpload
}

// FileUpload is one attachment in an attach command. PageCount is populated
// for PDF uploads before the command reaches the repository.
type FileUpload struct {
	Name        string
	ContentType string
	Data        []byte
	PageCount   *int
}

// Empty reports whether the command carries no content at all.
func (c AttachCommand) Empty() bool {
	return strings.TrimSpace(c.Text) == "" && len(c.Files) == 0
}
