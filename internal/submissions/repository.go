package submissions

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/IonMich/instructor-pilot/pkg/pagination"
	"github.com/IonMich/instructor-pilot/pkg/query"
	"github.com/IonMich/instructor-pilot/pkg/repository"
	"github.com/IonMich/instructor-pilot/pkg/storage"
)

// auditConcurrency bounds parallel blob existence probes during an image audit.
const auditConcurrency = 8

type repo struct {
	db         *sql.DB
	storage    storage.System
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a submission repository implementing the System interface.
func New(
	db *sql.DB,
	store storage.System,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &repo{
		db:         db,
		storage:    store,
		logger:     logger.With("system", "submissions"),
		pagination: pagination,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Submission], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Student")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count submissions: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	subs, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanSubmission)
	if err != nil {
		return nil, fmt.Errorf("query submissions: %w", err)
	}

	result := pagination.NewPageResult(subs, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Submission, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	s, err := repository.QueryOne(ctx, r.db, q, args, scanSubmission)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &s, nil
}

func (r *repo) Snapshot(ctx context.Context, assignmentID uuid.UUID) ([]Submission, error) {
	q, args := query.
		NewBuilder(projection, defaultSort).
		WhereEquals("AssignmentID", assignmentID).
		Build()

	subs, err := repository.QueryMany(ctx, r.db, q, args, scanSubmission)
	if err != nil {
		return nil, fmt.Errorf("snapshot submissions: %w", err)
	}
	return subs, nil
}

func (r *repo) SetVersion(
	ctx context.Context,
	submissionID, versionID uuid.UUID,
) ([]Submission, error) {
	sub, err := r.Find(ctx, submissionID)
	if err != nil {
		return nil, err
	}

	// The joined update only matches when the target version belongs to the
	// submission's assignment, so a cross-assignment move affects zero rows.
	q := `
		UPDATE submissions s
		SET version_id = $2, updated_at = now()
		FROM versions v
		WHERE s.id = $1 AND v.id = $2 AND v.assignment_id = s.assignment_id`

	_, err = repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		if err := repository.ExecExpectOne(ctx, tx, q, submissionID, versionID); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, nil
	})

	if err != nil {
		return nil, repository.MapError(err, ErrVersionMismatch, ErrDuplicate)
	}

	r.logger.Info(
		"submission reassigned",
		"submission", submissionID,
		"version", versionID,
	)

	return r.Snapshot(ctx, sub.AssignmentID)
}

func (r *repo) AuditImages(ctx context.Context, assignmentID uuid.UUID) (*ImageAudit, error) {
	subs, err := r.Snapshot(ctx, assignmentID)
	if err != nil {
		return nil, err
	}

	var keys []string
	for _, s := range subs {
		keys = append(keys, s.Images...)
	}

	var (
		mu      sync.Mutex
		missing []string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(auditConcurrency)

	for _, key := range keys {
		g.Go(func() error {
			exists, err := r.storage.Exists(gctx, key)
			if err != nil {
				return fmt.Errorf("probe %s: %w", key, err)
			}
			if !exists {
				mu.Lock()
				missing = append(missing, key)
				mu.Unlock()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Strings(missing)

	if len(missing) > 0 {
		r.logger.Warn(
			"image audit found missing blobs",
			"assignment", assignmentID,
			"missing", len(missing),
		)
	}

	return &ImageAudit{
		AssignmentID: assignmentID,
		Checked:      len(keys),
		Missing:      missing,
	}, nil
}
