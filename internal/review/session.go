package review

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/IonMich/instructor-pilot/internal/assignments"
	"github.com/IonMich/instructor-pilot/internal/submissions"
	"github.com/IonMich/instructor-pilot/internal/versions"
)

// Session holds one assignment's open review surface: the membership model,
// tab and carousel state, the reassignment workflow, and the comment cache.
// State lives only while the surface is open; closing the session discards
// it. A mutex serializes state transitions, mirroring the one-event-at-a-time
// model the surface assumes, but it is never held across a backend call so
// a slow mutation cannot freeze the rest of the session.
type Session struct {
	assignmentID uuid.UUID
	maxPage      int

	mu        sync.Mutex
	model     *Model
	tabs      *TabController
	carousels map[GroupID]*Carousel
	workflow  *Workflow
	comments  *CommentStore

	backend Backend
	logger  *slog.Logger
}

func newSession(
	assignment *assignments.Assignment,
	snapshot []submissions.Submission,
	sets *versions.CommentSets,
	backend Backend,
	logger *slog.Logger,
) *Session {
	s := &Session{
		assignmentID: assignment.ID,
		maxPage:      assignment.MaxPageNumber,
		model:        NewModel(snapshot),
		carousels:    make(map[GroupID]*Carousel),
		workflow:     NewWorkflow(),
		comments:     NewCommentStore(sets),
		backend:      backend,
		logger:       logger.With("session", assignment.ID),
	}
	s.tabs = NewTabController(s.model)
	s.syncCarousels()
	return s
}

// syncCarousels aligns pane carousels with the model's rendered groups:
// surviving panes keep their position, new panes start fresh, and panes for
// dropped groups are discarded. Callers hold the session mutex.
func (s *Session) syncCarousels() {
	rendered := make(map[GroupID]bool)

	for _, group := range s.model.Groups() {
		rendered[group.ID] = true
		if c, ok := s.carousels[group.ID]; ok {
			c.Sync(group)
		} else {
			s.carousels[group.ID] = NewCarousel(group, s.maxPage)
		}
	}

	for id := range s.carousels {
		if !rendered[id] {
			delete(s.carousels, id)
		}
	}
}

// View renders the current session state.
func (s *Session) View() *View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return render(s)
}

// SelectTab activates a tab. A stale id after a concurrent refresh is
// absorbed as a no-op.
func (s *Session) SelectTab(id GroupID) *View {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.tabs.Select(id) {
		s.logger.Debug("stale tab selection ignored", "tab", id)
	}
	return render(s)
}

// NextSubmission centers the next member of a pane's carousel.
func (s *Session) NextSubmission(id GroupID) (*View, error) {
	return s.navigate(id, func(c *Carousel) { c.Next() })
}

// PrevSubmission centers the previous member of a pane's carousel.
func (s *Session) PrevSubmission(id GroupID) (*View, error) {
	return s.navigate(id, func(c *Carousel) { c.Prev() })
}

func (s *Session) navigate(id GroupID, move func(*Carousel)) (*View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.carousels[id]
	if !ok {
		return nil, ErrNotFound
	}

	move(c)
	return render(s), nil
}

// SetPage displays the given page across a pane's viewers.
func (s *Session) SetPage(id GroupID, page int) (*View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.carousels[id]
	if !ok {
		return nil, ErrNotFound
	}

	if err := c.SetPage(page); err != nil {
		return nil, err
	}
	return render(s), nil
}

// SelectTarget picks the version the outliers pane's active submission will
// be reassigned into.
func (s *Session) SelectTarget(versionID uuid.UUID) (*View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.model.Empty() {
		return nil, ErrEmptyModel
	}
	if _, ok := s.model.byVersion[versionID]; !ok {
		return nil, ErrNotFound
	}

	if err := s.workflow.SelectTarget(versionID); err != nil {
		return nil, err
	}
	return render(s), nil
}

// SubmitReassignment sends the active outlier to the chosen target version.
// The server's returned snapshot replaces the model wholesale; the active
// tab stays on Outliers while any remain, otherwise jumps to the first
// version.
func (s *Session) SubmitReassignment(ctx context.Context) (*View, error) {
	s.mu.Lock()

	if s.model.Empty() {
		s.mu.Unlock()
		return nil, ErrEmptyModel
	}

	carousel, ok := s.carousels[OutliersGroupID]
	if !ok || carousel.Active() == uuid.Nil {
		s.mu.Unlock()
		return nil, ErrNoActiveOutlier
	}
	submissionID := carousel.Active()

	target, err := s.workflow.Begin()
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.mu.Unlock()

	snapshot, err := s.backend.SetSubmissionVersion(ctx, submissionID, target)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.workflow.Fail(err)
		s.logger.Warn(
			"reassignment failed",
			"submission", submissionID,
			"target", target,
			"error", err,
		)
		return nil, err
	}

	s.workflow.Succeed()
	s.model.Replace(snapshot, HintOutliers)
	s.syncCarousels()

	s.logger.Info(
		"outlier reassigned",
		"submission", submissionID,
		"target", target,
	)
	return render(s), nil
}

// AttachComment filters and submits a comment draft for a version. A draft
// that filters down to nothing is rejected before any network call. On
// success the comment cache is refreshed from the server.
func (s *Session) AttachComment(
	ctx context.Context,
	versionID uuid.UUID,
	draft CommentDraft,
) (*View, error) {
	cmd := draft.Filter()
	if cmd.Empty() {
		return nil, ErrEmptyPayload
	}

	if err := s.backend.AttachComment(ctx, versionID, cmd); err != nil {
		return nil, err
	}

	sets, err := s.backend.Comments(ctx, s.assignmentID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.comments.Replace(sets)
	return render(s), nil
}

// DeleteComment optimistically prunes a comment and then tells the server.
// A duplicate delete is a no-op. A server failure is logged but does not
// restore the pruned item; the next full refresh reconciles.
func (s *Session) DeleteComment(
	ctx context.Context,
	kind CommentKind,
	commentID uuid.UUID,
) *View {
	s.mu.Lock()
	pruned := s.comments.Prune(kind, commentID)
	s.mu.Unlock()

	if pruned {
		var err error
		switch kind {
		case CommentText:
			err = s.backend.DeleteTextComment(ctx, commentID)
		case CommentFile:
			err = s.backend.DeleteFileComment(ctx, commentID)
		}
		if err != nil {
			s.logger.Warn(
				"comment delete failed after local prune",
				"kind", kind,
				"id", commentID,
				"error", err,
			)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return render(s)
}

// TriggerClustering runs a clustering pass on the selected pages and
// replaces the model with the server's answer.
func (s *Session) TriggerClustering(ctx context.Context, pages []int) (*View, error) {
	if len(pages) == 0 {
		return nil, ErrInvalidPage
	}
	for _, p := range pages {
		if p < 1 || p > s.maxPage {
			return nil, ErrInvalidPage
		}
	}

	snapshot, err := s.backend.TriggerClustering(ctx, s.assignmentID, pages)
	if err != nil {
		return nil, err
	}

	sets, err := s.backend.Comments(ctx, s.assignmentID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.model.Replace(snapshot, HintFirst)
	s.syncCarousels()
	s.comments.Replace(sets)
	return render(s), nil
}

// Reset clears the server-side version assignments and returns the session
// to the empty, call-to-action state.
func (s *Session) Reset(ctx context.Context) (*View, error) {
	if err := s.backend.ResetClustering(ctx, s.assignmentID); err != nil {
		return nil, err
	}

	snapshot, err := s.backend.Snapshot(ctx, s.assignmentID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.model.Replace(snapshot, HintFirst)
	s.syncCarousels()
	s.comments.Replace(nil)
	return render(s), nil
}

// Manager tracks open review sessions keyed by assignment. Reopening an
// assignment's session refetches from the server; session state never leaks
// across assignments or across open/close cycles.
type Manager struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session

	assignments assignments.System
	backend     Backend
	logger      *slog.Logger
}

// NewManager creates a session manager over the assignment system and the
// review backend.
func NewManager(
	assign assignments.System,
	backend Backend,
	logger *slog.Logger,
) *Manager {
	return &Manager{
		sessions:    make(map[uuid.UUID]*Session),
		assignments: assign,
		backend:     backend,
		logger:      logger.With("system", "review"),
	}
}

// Handler returns the HTTP surface for review sessions.
func (m *Manager) Handler(maxUploadSize int64) *Handler {
	return NewHandler(m, m.backend, m.logger, maxUploadSize)
}

// Open fetches the assignment's current snapshot and comments and starts a
// fresh session, replacing any session already open for the assignment.
func (m *Manager) Open(ctx context.Context, assignmentID uuid.UUID) (*Session, error) {
	assignment, err := m.assignments.Find(ctx, assignmentID)
	if err != nil {
		return nil, fmt.Errorf("%w: assignment %s", ErrNotFound, assignmentID)
	}

	snapshot, err := m.backend.Snapshot(ctx, assignmentID)
	if err != nil {
		return nil, err
	}

	sets, err := m.backend.Comments(ctx, assignmentID)
	if err != nil {
		return nil, err
	}

	session := newSession(assignment, snapshot, sets, m.backend, m.logger)

	m.mu.Lock()
	m.sessions[assignmentID] = session
	m.mu.Unlock()

	m.logger.Info(
		"review session opened",
		"assignment", assignmentID,
		"submissions", len(snapshot),
	)
	return session, nil
}

// Get returns the open session for an assignment.
func (m *Manager) Get(assignmentID uuid.UUID) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, ok := m.sessions[assignmentID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// Close discards an assignment's session state.
func (m *Manager) Close(assignmentID uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[assignmentID]; ok {
		delete(m.sessions, assignmentID)
		m.logger.Info("review session closed", "assignment", assignmentID)
	}
}
