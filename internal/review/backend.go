package review

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/IonMich/instructor-pilot/internal/clustering"
	"github.com/IonMich/instructor-pilot/internal/submissions"
	"github.com/IonMich/instructor-pilot/internal/versions"
)

// Backend is the server boundary the review session calls through. Every
// membership mutation returns a fresh snapshot; the session always trusts
// the returned snapshot as the new source of truth rather than reconciling
// a local optimistic edit.
type Backend interface {
	Snapshot(ctx context.Context, assignmentID uuid.UUID) ([]submissions.Submission, error)
	Comments(ctx context.Context, assignmentID uuid.UUID) (*versions.CommentSets, error)

	SetSubmissionVersion(
		ctx context.Context,
		submissionID, versionID uuid.UUID,
	) ([]submissions.Submission, error)

	AttachComment(ctx context.Context, versionID uuid.UUID, cmd versions.AttachCommand) error
	DeleteTextComment(ctx context.Context, id uuid.UUID) error
	DeleteFileComment(ctx context.Context, id uuid.UUID) error

	TriggerClustering(
		ctx context.Context,
		assignmentID uuid.UUID,
		pages []int,
	) ([]submissions.Submission, error)

	ResetClustering(ctx context.Context, assignmentID uuid.UUID) error
}

type backend struct {
	subs   submissions.System
	vers   versions.System
	client clustering.Client
	logger *slog.Logger
}

// NewBackend wires the review boundary over the domain systems and the
// clustering client.
func NewBackend(
	subs submissions.System,
	vers versions.System,
	client clustering.Client,
	logger *slog.Logger,
) Backend {
	return &backend{
		subs:   subs,
		vers:   vers,
		client: client,
		logger: logger.With("system", "review"),
	}
}

func (b *backend) Snapshot(ctx context.Context, assignmentID uuid.UUID) ([]submissions.Submission, error) {
	return b.subs.Snapshot(ctx, assignmentID)
}

func (b *backend) Comments(ctx context.Context, assignmentID uuid.UUID) (*versions.CommentSets, error) {
	return b.vers.Comments(ctx, assignmentID)
}

func (b *backend) SetSubmissionVersion(
	ctx context.Context,
	submissionID, versionID uuid.UUID,
) ([]submissions.Submission, error) {
	return b.subs.SetVersion(ctx, submissionID, versionID)
}

func (b *backend) AttachComment(
	ctx context.Context,
	versionID uuid.UUID,
	cmd versions.AttachCommand,
) error {
	return b.vers.Attach(ctx, versionID, cmd)
}

func (b *backend) DeleteTextComment(ctx context.Context, id uuid.UUID) error {
	return b.vers.DeleteTextComment(ctx, id)
}

func (b *backend) DeleteFileComment(ctx context.Context, id uuid.UUID) error {
	return b.vers.DeleteFileComment(ctx, id)
}

// TriggerClustering runs a full pass: snapshot the assignment, ship the
// selected pages to the clusterer, apply the computed version set, and
// return the refreshed snapshot.
func (b *backend) TriggerClustering(
	ctx context.Context,
	assignmentID uuid.UUID,
	pages []int,
) ([]submissions.Submission, error) {
	snapshot, err := b.subs.Snapshot(ctx, assignmentID)
	if err != nil {
		return nil, err
	}

	req := clustering.ComputeRequest{
		AssignmentID: assignmentID,
		Pages:        pages,
		Items:        make([]clustering.Item, len(snapshot)),
	}
	for i, sub := range snapshot {
		req.Items[i] = clustering.Item{
			SubmissionID: sub.ID,
			Images:       sub.Images,
		}
	}

	result, err := b.client.Compute(ctx, req)
	if err != nil {
		return nil, err
	}

	if err := b.vers.Apply(ctx, assignmentID, result.Versions); err != nil {
		return nil, fmt.Errorf("apply clustering result: %w", err)
	}

	b.logger.Info(
		"clustering applied",
		"assignment", assignmentID,
		"versions", len(result.Versions),
	)

	return b.subs.Snapshot(ctx, assignmentID)
}

func (b *backend) ResetClustering(ctx context.Context, assignmentID uuid.UUID) error {
	return b.vers.Reset(ctx, assignmentID)
}
