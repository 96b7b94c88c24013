package versions

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/IonMich/instructor-pilot/pkg/query"
	"github.com/IonMich/instructor-pilot/pkg/repository"
	"github.com/IonMich/instructor-pilot/pkg/storage"
)

// uploadConcurrency bounds parallel blob uploads during a comment attach.
const uploadConcurrency = 4

type repo struct {
	db             *sql.DB
	storage        storage.System
	logger         *slog.Logger
	downloadPrefix string
}

// New creates a version repository implementing the System interface.
// downloadPrefix is the route prefix file-comment URLs are built from,
// e.g. "/api/storage/download".
func New(
	db *sql.DB,
	store storage.System,
	logger *slog.Logger,
	downloadPrefix string,
) System {
	return &repo{
		db:             db,
		storage:        store,
		logger:         logger.With("system", "versions"),
		downloadPrefix: strings.TrimRight(downloadPrefix, "/"),
	}
}

func (r *repo) Handler(maxUploadSize int64) *Handler {
	return NewHandler(r, r.logger, maxUploadSize)
}

func (r *repo) ListForAssignment(ctx context.Context, assignmentID uuid.UUID) ([]Version, error) {
	q, args := query.
		NewBuilder(projection, defaultSort).
		WhereEquals("AssignmentID", assignmentID).
		Build()

	results, err := repository.QueryMany(ctx, r.db, q, args, scanVersion)
	if err != nil {
		return nil, fmt.Errorf("query versions: %w", err)
	}
	return results, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Version, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	v, err := repository.QueryOne(ctx, r.db, q, args, scanVersion)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &v, nil
}

func (r *repo) Comments(ctx context.Context, assignmentID uuid.UUID) (*CommentSets, error) {
	textSQL, textArgs := query.
		NewBuilder(textProjection, commentSort).
		WhereEquals("v.assignment_id", assignmentID).
		Build()

	texts, err := repository.QueryMany(ctx, r.db, textSQL, textArgs, scanTextComment)
	if err != nil {
		return nil, fmt.Errorf("query text comments: %w", err)
	}

	fileSQL, fileArgs := query.
		NewBuilder(fileProjection, commentSort).
		WhereEquals("v.assignment_id", assignmentID).
		Build()

	files, err := repository.QueryMany(ctx, r.db, fileSQL, fileArgs, scanFileComment)
	if err != nil {
		return nil, fmt.Errorf("query file comments: %w", err)
	}

	sets := &CommentSets{
		Texts: make(map[uuid.UUID][]TextComment),
		Files: make(map[uuid.UUID][]FileComment),
	}

	for _, t := range texts {
		sets.Texts[t.VersionID] = append(sets.Texts[t.VersionID], t)
	}

	for _, f := range files {
		f.URL = r.downloadPrefix + "/" + f.StorageKey
		sets.Files[f.VersionID] = append(sets.Files[f.VersionID], f)
	}

	return sets, nil
}

func (r *repo) Attach(ctx context.Context, versionID uuid.UUID, cmd AttachCommand) error {
	if cmd.Empty() {
		return ErrEmptyComment
	}

	if _, err := r.Find(ctx, versionID); err != nil {
		return err
	}

	uploads := make([]stagedUpload, len(cmd.Files))
	for i, f := range cmd.Files {
		id := uuid.New()
		uploads[i] = stagedUpload{
			id:   id,
			key:  buildStorageKey(versionID, id, sanitizeFilename(f.Name)),
			file: f,
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uploadConcurrency)

	for _, u := range uploads {
		g.Go(func() error {
			if err := r.storage.Upload(
				gctx, u.key,
				bytes.NewReader(u.file.Data),
				u.file.ContentType,
			); err != nil {
				return fmt.Errorf("upload comment blob %s: %w", u.key, err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		r.cleanupBlobs(ctx, uploads)
		return err
	}

	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		if strings.TrimSpace(cmd.Text) != "" {
			q := `
				INSERT INTO version_text_comments(id, version_id, author, text)
				VALUES ($1, $2, $3, $4)`

			if _, err := tx.ExecContext(
				ctx, q,
				uuid.New(), versionID, cmd.Author, cmd.Text,
			); err != nil {
				return struct{}{}, err
			}
		}

		q := `
			INSERT INTO version_file_comments(id, version_id, author, name, storage_key, content_type, size_bytes, page_count)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

		for _, u := range uploads {
			if _, err := tx.ExecContext(
				ctx, q,
				u.id,
				versionID,
				cmd.Author,
				u.file.Name,
				u.key,
				u.file.ContentType,
				int64(len(u.file.Data)),
				u.file.PageCount,
			); err != nil {
				return struct{}{}, err
			}
		}

		return struct{}{}, nil
	})

	if err != nil {
		r.cleanupBlobs(ctx, uploads)
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info(
		"comment attached",
		"version", versionID,
		"text", strings.TrimSpace(cmd.Text) != "",
		"files", len(uploads),
	)
	return nil
}

func (r *repo) DeleteTextComment(ctx context.Context, id uuid.UUID) error {
	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		if err := repository.ExecExpectOne(
			ctx, tx,
			"DELETE FROM version_text_comments WHERE id = $1",
			id,
		); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, nil
	})

	if err != nil {
		return repository.MapError(err, ErrCommentNotFound, ErrDuplicate)
	}

	r.logger.Info("text comment deleted", "id", id)
	return nil
}

func (r *repo) DeleteFileComment(ctx context.Context, id uuid.UUID) error {
	var key string
	err := r.db.QueryRowContext(
		ctx,
		"SELECT storage_key FROM version_file_comments WHERE id = $1",
		id,
	).Scan(&key)
	if err != nil {
		return repository.MapError(err, ErrCommentNotFound, ErrDuplicate)
	}

	_, err = repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		if err := repository.ExecExpectOne(
			ctx, tx,
			"DELETE FROM version_file_comments WHERE id = $1",
			id,
		); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, nil
	})

	if err != nil {
		return repository.MapError(err, ErrCommentNotFound, ErrDuplicate)
	}

	if delErr := r.storage.Delete(ctx, key); delErr != nil {
		r.logger.Warn(
			"blob delete failed after DB delete",
			"key", key,
			"error", delErr,
		)
	}

	r.logger.Info("file comment deleted", "id", id)
	return nil
}

func (r *repo) Apply(ctx context.Context, assignmentID uuid.UUID, specs []VersionSpec) error {
	orphaned, err := r.commentStorageKeys(ctx, assignmentID)
	if err != nil {
		return err
	}

	_, err = repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		if err := clearAssignment(ctx, tx, assignmentID); err != nil {
			return struct{}{}, err
		}

		insertVersion := `
			INSERT INTO versions(id, assignment_id, name, version_image)
			VALUES ($1, $2, $3, $4)`

		assignMember := `
			UPDATE submissions
			SET version_id = $1, updated_at = now()
			WHERE id = $2 AND assignment_id = $3`

		for _, spec := range specs {
			versionID := uuid.New()

			if _, err := tx.ExecContext(
				ctx, insertVersion,
				versionID, assignmentID, spec.Name, spec.VersionImage,
			); err != nil {
				return struct{}{}, err
			}

			for _, member := range spec.Members {
				if err := repository.ExecExpectOne(
					ctx, tx, assignMember,
					versionID, member, assignmentID,
				); err != nil {
					return struct{}{}, err
				}
			}
		}

		return struct{}{}, nil
	})

	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.deleteOrphanedBlobs(ctx, orphaned)

	r.logger.Info(
		"clustering result applied",
		"assignment", assignmentID,
		"versions", len(specs),
	)
	return nil
}

func (r *repo) Reset(ctx context.Context, assignmentID uuid.UUID) error {
	orphaned, err := r.commentStorageKeys(ctx, assignmentID)
	if err != nil {
		return err
	}

	_, err = repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		if err := clearAssignment(ctx, tx, assignmentID); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, nil
	})

	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.deleteOrphanedBlobs(ctx, orphaned)

	r.logger.Info("versioning reset", "assignment", assignmentID)
	return nil
}

// clearAssignment detaches every submission and drops every version for the
// assignment. Comment rows go with their versions via FK cascade.
func clearAssignment(ctx context.Context, tx *sql.Tx, assignmentID uuid.UUID) error {
	if _, err := tx.ExecContext(
		ctx,
		"UPDATE submissions SET version_id = NULL, updated_at = now() WHERE assignment_id = $1",
		assignmentID,
	); err != nil {
		return err
	}

	if _, err := tx.ExecContext(
		ctx,
		"DELETE FROM versions WHERE assignment_id = $1",
		assignmentID,
	); err != nil {
		return err
	}

	return nil
}

func (r *repo) commentStorageKeys(ctx context.Context, assignmentID uuid.UUID) ([]string, error) {
	sets, err := r.Comments(ctx, assignmentID)
	if err != nil {
		return nil, err
	}

	var keys []string
	for _, files := range sets.Files {
		for _, f := range files {
			keys = append(keys, f.StorageKey)
		}
	}
	return keys, nil
}

func (r *repo) deleteOrphanedBlobs(ctx context.Context, keys []string) {
	for _, key := range keys {
		if err := r.storage.Delete(ctx, key); err != nil {
			r.logger.Warn("orphaned blob delete failed", "key", key, "error", err)
		}
	}
}

// stagedUpload pairs an attach-command file with its generated comment id
// and storage key while the blob upload and row insert are in flight.
type stagedUpload struct {
	id   uuid.UUID
	key  string
	file FileUpload
}

func (r *repo) cleanupBlobs(ctx context.Context, uploads []stagedUpload) {
	for _, u := range uploads {
		if err := r.storage.Delete(ctx, u.key); err != nil {
			r.logger.Warn("compensating blob delete failed", "key", u.key, "error", err)
		}
	}
}

func buildStorageKey(versionID, commentID uuid.UUID, filename string) string {
	return fmt.Sprintf("comments/%s/%s/%s", versionID, commentID, filename)
}

func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	if name == "." || name == "" {
		name = "attachment"
	}
	return url.PathEscape(name)
}
