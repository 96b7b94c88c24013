package review_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"

	"github.com/IonMich/instructor-pilot/internal/assignments"
	"github.com/IonMich/instructor-pilot/internal/review"
	"github.com/IonMich/instructor-pilot/internal/submissions"
	"github.com/IonMich/instructor-pilot/internal/versions"
	"github.com/IonMich/instructor-pilot/pkg/pagination"
)

type mockAssignments struct {
	findFn func(ctx context.Context, id uuid.UUID) (*assignments.Assignment, error)
}

func (m *mockAssignments) Handler() *assignments.Handler { return nil }

func (m *mockAssignments) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters assignments.Filters,
) (*pagination.PageResult[assignments.Assignment], error) {
	return nil, errors.New("not implemented")
}

func (m *mockAssignments) Find(ctx context.Context, id uuid.UUID) (*assignments.Assignment, error) {
	return m.findFn(ctx, id)
}

func (m *mockAssignments) Create(ctx context.Context, cmd assignments.CreateCommand) (*assignments.Assignment, error) {
	return nil, errors.New("not implemented")
}

func (m *mockAssignments) Delete(ctx context.Context, id uuid.UUID) error {
	return errors.New("not implemented")
}

type mockBackend struct {
	snapshotFn   func(ctx context.Context, assignmentID uuid.UUID) ([]submissions.Submission, error)
	commentsFn   func(ctx context.Context, assignmentID uuid.UUID) (*versions.CommentSets, error)
	setVersionFn func(ctx context.Context, submissionID, versionID uuid.UUID) ([]submissions.Submission, error)
	attachFn     func(ctx context.Context, versionID uuid.UUID, cmd versions.AttachCommand) error
	deleteTextFn func(ctx context.Context, id uuid.UUID) error
	deleteFileFn func(ctx context.Context, id uuid.UUID) error
	clusterFn    func(ctx context.Context, assignmentID uuid.UUID, pages []int) ([]submissions.Submission, error)
	resetFn      func(ctx context.Context, assignmentID uuid.UUID) error
}

func (m *mockBackend) Snapshot(ctx context.Context, assignmentID uuid.UUID) ([]submissions.Submission, error) {
	return m.snapshotFn(ctx, assignmentID)
}

func (m *mockBackend) Comments(ctx context.Context, assignmentID uuid.UUID) (*versions.CommentSets, error) {
	if m.commentsFn == nil {
		return nil, nil
	}
	return m.commentsFn(ctx, assignmentID)
}

func (m *mockBackend) SetSubmissionVersion(
	ctx context.Context,
	submissionID, versionID uuid.UUID,
) ([]submissions.Submission, error) {
	return m.setVersionFn(ctx, submissionID, versionID)
}

func (m *mockBackend) AttachComment(ctx context.Context, versionID uuid.UUID, cmd versions.AttachCommand) error {
	return m.attachFn(ctx, versionID, cmd)
}

func (m *mockBackend) DeleteTextComment(ctx context.Context, id uuid.UUID) error {
	return m.deleteTextFn(ctx, id)
}

func (m *mockBackend) DeleteFileComment(ctx context.Context, id uuid.UUID) error {
	return m.deleteFileFn(ctx, id)
}

func (m *mockBackend) TriggerClustering(
	ctx context.Context,
	assignmentID uuid.UUID,
	pages []int,
) ([]submissions.Submission, error) {
	return m.clusterFn(ctx, assignmentID, pages)
}

func (m *mockBackend) ResetClustering(ctx context.Context, assignmentID uuid.UUID) error {
	return m.resetFn(ctx, assignmentID)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testAssignment(id uuid.UUID) *assignments.Assignment {
	return &assignments.Assignment{
		ID:            id,
		Name:          "Exam 1",
		Course:        "PHY2048",
		MaxPageNumber: 4,
	}
}

func openSession(t *testing.T, snapshot []submissions.Submission, backend *mockBackend) *review.Session {
	t.Helper()

	assignmentID := uuid.New()
	if backend.snapshotFn == nil {
		backend.snapshotFn = func(ctx context.Context, id uuid.UUID) ([]submissions.Submission, error) {
			return snapshot, nil
		}
	}

	assign := &mockAssignments{
		findFn: func(ctx context.Context, id uuid.UUID) (*assignments.Assignment, error) {
			return testAssignment(id), nil
		},
	}

	manager := review.NewManager(assign, backend, testLogger())
	session, err := manager.Open(context.Background(), assignmentID)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	return session
}

func TestManagerOpenUnknownAssignment(t *testing.T) {
	assign := &mockAssignments{
		findFn: func(ctx context.Context, id uuid.UUID) (*assignments.Assignment, error) {
			return nil, assignments.ErrNotFound
		},
	}
	manager := review.NewManager(assign, &mockBackend{}, testLogger())

	_, err := manager.Open(context.Background(), uuid.New())
	if !errors.Is(err, review.ErrNotFound) {
		t.Errorf("Open() error = %v, want ErrNotFound", err)
	}
}

func TestManagerGetAndClose(t *testing.T) {
	assignmentID := uuid.New()
	assign := &mockAssignments{
		findFn: func(ctx context.Context, id uuid.UUID) (*assignments.Assignment, error) {
			return testAssignment(id), nil
		},
	}
	backend := &mockBackend{
		snapshotFn: func(ctx context.Context, id uuid.UUID) ([]submissions.Submission, error) {
			return nil, nil
		},
	}
	manager := review.NewManager(assign, backend, testLogger())

	if _, err := manager.Get(assignmentID); !errors.Is(err, review.ErrSessionNotFound) {
		t.Errorf("Get() before open error = %v, want ErrSessionNotFound", err)
	}

	if _, err := manager.Open(context.Background(), assignmentID); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if _, err := manager.Get(assignmentID); err != nil {
		t.Errorf("Get() after open error = %v", err)
	}

	manager.Close(assignmentID)
	if _, err := manager.Get(assignmentID); !errors.Is(err, review.ErrSessionNotFound) {
		t.Errorf("Get() after close error = %v, want ErrSessionNotFound", err)
	}
}

func TestSessionViewEmptyModelCallToAction(t *testing.T) {
	session := openSession(t, snapshot(nil, 0, 3), &mockBackend{})

	view := session.View()
	if !view.Empty {
		t.Error("view should be empty with no computed versions")
	}
	if view.CallToAction == "" {
		t.Error("empty view should carry the call to action")
	}
	if view.Tabs != nil || view.Panes != nil {
		t.Error("empty view should render no tabs or panes")
	}
	if view.Submissions != 3 {
		t.Errorf("submissions: got %d, want 3", view.Submissions)
	}
}

func TestSessionViewRendersPanes(t *testing.T) {
	vA := makeVersion("Version A")
	subs := snapshot([]*submissions.VersionRef{vA}, 2, 1)
	session := openSession(t, subs, &mockBackend{})

	view := session.View()
	if view.Empty {
		t.Fatal("view should not be empty")
	}
	if len(view.Tabs) != 2 {
		t.Fatalf("tabs: got %d, want 2", len(view.Tabs))
	}
	if len(view.Panes) != 2 {
		t.Fatalf("panes: got %d, want 2", len(view.Panes))
	}

	pane := view.Panes[0]
	if pane.Count != 2 || len(pane.Viewers) != 2 {
		t.Errorf("first pane: count %d viewers %d, want 2/2", pane.Count, len(pane.Viewers))
	}
	if !pane.Viewers[0].Centered {
		t.Error("first viewer should be centered initially")
	}
	if pane.Page != 1 {
		t.Errorf("page: got %d, want 1", pane.Page)
	}
	if pane.MaxPage != 4 {
		t.Errorf("max page: got %d, want 4", pane.MaxPage)
	}
	if pane.Viewers[0].PageImage != subs[0].Images[0] {
		t.Errorf("page image: got %s, want %s", pane.Viewers[0].PageImage, subs[0].Images[0])
	}

	if !view.Panes[1].Outliers {
		t.Error("second pane should be the outliers pool")
	}
}

func TestSessionNavigation(t *testing.T) {
	vA := makeVersion("Version A")
	subs := snapshot([]*submissions.VersionRef{vA}, 3, 0)
	session := openSession(t, subs, &mockBackend{})
	groupID := review.GroupID(vA.ID.String())

	view, err := session.NextSubmission(groupID)
	if err != nil {
		t.Fatalf("NextSubmission() error = %v", err)
	}
	if view.Panes[0].ActiveSubmission != subs[1].ID {
		t.Errorf("active submission: got %s, want %s", view.Panes[0].ActiveSubmission, subs[1].ID)
	}

	view, err = session.PrevSubmission(groupID)
	if err != nil {
		t.Fatalf("PrevSubmission() error = %v", err)
	}
	if view.Panes[0].ActiveSubmission != subs[0].ID {
		t.Errorf("active submission: got %s, want %s", view.Panes[0].ActiveSubmission, subs[0].ID)
	}

	if _, err := session.NextSubmission(review.GroupID("missing")); !errors.Is(err, review.ErrNotFound) {
		t.Errorf("unknown pane error = %v, want ErrNotFound", err)
	}
}

func TestSessionSetPage(t *testing.T) {
	vA := makeVersion("Version A")
	session := openSession(t, snapshot([]*submissions.VersionRef{vA}, 1, 0), &mockBackend{})
	groupID := review.GroupID(vA.ID.String())

	view, err := session.SetPage(groupID, 3)
	if err != nil {
		t.Fatalf("SetPage() error = %v", err)
	}
	if view.Panes[0].Page != 3 {
		t.Errorf("page: got %d, want 3", view.Panes[0].Page)
	}

	if _, err := session.SetPage(groupID, 5); !errors.Is(err, review.ErrInvalidPage) {
		t.Errorf("page beyond max error = %v, want ErrInvalidPage", err)
	}
	if _, err := session.SetPage(groupID, 0); !errors.Is(err, review.ErrInvalidPage) {
		t.Errorf("page zero error = %v, want ErrInvalidPage", err)
	}
}

func TestSessionSelectTargetUnknownVersion(t *testing.T) {
	vA := makeVersion("Version A")
	session := openSession(t, snapshot([]*submissions.VersionRef{vA}, 1, 1), &mockBackend{})

	if _, err := session.SelectTarget(uuid.New()); !errors.Is(err, review.ErrNotFound) {
		t.Errorf("SelectTarget() error = %v, want ErrNotFound", err)
	}
}

func TestSessionSubmitReassignment(t *testing.T) {
	vA := makeVersion("Version A")
	vB := makeVersion("Version B")
	subs := snapshot([]*submissions.VersionRef{vA, vB}, 2, 3)
	outlier := subs[4]

	backend := &mockBackend{}
	backend.setVersionFn = func(ctx context.Context, submissionID, versionID uuid.UUID) ([]submissions.Submission, error) {
		if submissionID != outlier.ID {
			t.Errorf("submission: got %s, want %s", submissionID, outlier.ID)
		}
		if versionID != vA.ID {
			t.Errorf("version: got %s, want %s", versionID, vA.ID)
		}

		refreshed := snapshot([]*submissions.VersionRef{vA, vB}, 2, 0)
		moved := outlier
		moved.Version = vA
		refreshed = append(refreshed, moved, subs[5], subs[6])
		return refreshed, nil
	}

	session := openSession(t, subs, backend)
	session.SelectTab(review.OutliersGroupID)

	if _, err := session.SelectTarget(vA.ID); err != nil {
		t.Fatalf("SelectTarget() error = %v", err)
	}

	view, err := session.SubmitReassignment(context.Background())
	if err != nil {
		t.Fatalf("SubmitReassignment() error = %v", err)
	}

	if view.Workflow.State != review.WorkflowSucceeded {
		t.Errorf("workflow state: got %s, want succeeded", view.Workflow.State)
	}
	if view.Submissions != 7 {
		t.Errorf("submissions: got %d, want 7", view.Submissions)
	}

	// Outliers remain, so the outliers tab stays selected.
	var outliersPane *review.Pane
	for i := range view.Panes {
		if view.Panes[i].Outliers {
			outliersPane = &view.Panes[i]
		}
	}
	if outliersPane == nil {
		t.Fatal("outliers pane missing")
	}
	if !outliersPane.Active {
		t.Error("outliers pane should stay active after reassignment")
	}
	if outliersPane.Count != 2 {
		t.Errorf("outliers count: got %d, want 2", outliersPane.Count)
	}
}

func TestSessionSubmitLastOutlierSelectsFirstVersion(t *testing.T) {
	vA := makeVersion("Version A")
	subs := snapshot([]*submissions.VersionRef{vA}, 2, 1)
	outlier := subs[2]

	backend := &mockBackend{}
	backend.setVersionFn = func(ctx context.Context, submissionID, versionID uuid.UUID) ([]submissions.Submission, error) {
		refreshed := snapshot([]*submissions.VersionRef{vA}, 2, 0)
		moved := outlier
		moved.Version = vA
		return append(refreshed, moved), nil
	}

	session := openSession(t, subs, backend)
	session.SelectTab(review.OutliersGroupID)
	if _, err := session.SelectTarget(vA.ID); err != nil {
		t.Fatalf("SelectTarget() error = %v", err)
	}

	view, err := session.SubmitReassignment(context.Background())
	if err != nil {
		t.Fatalf("SubmitReassignment() error = %v", err)
	}

	if len(view.Panes) != 1 {
		t.Fatalf("panes: got %d, want 1", len(view.Panes))
	}
	if !view.Panes[0].Active {
		t.Error("the sole version pane should be active once outliers empty")
	}
	if view.Panes[0].Count != 3 {
		t.Errorf("version count: got %d, want 3", view.Panes[0].Count)
	}
}

func TestSessionSubmitWithoutTarget(t *testing.T) {
	vA := makeVersion("Version A")
	session := openSession(t, snapshot([]*submissions.VersionRef{vA}, 1, 1), &mockBackend{})

	if _, err := session.SubmitReassignment(context.Background()); !errors.Is(err, review.ErrNoTarget) {
		t.Errorf("SubmitReassignment() error = %v, want ErrNoTarget", err)
	}
}

func TestSessionReassignmentOnEmptyModel(t *testing.T) {
	session := openSession(t, snapshot(nil, 0, 3), &mockBackend{})

	if _, err := session.SelectTarget(uuid.New()); !errors.Is(err, review.ErrEmptyModel) {
		t.Errorf("SelectTarget() error = %v, want ErrEmptyModel", err)
	}
	if _, err := session.SubmitReassignment(context.Background()); !errors.Is(err, review.ErrEmptyModel) {
		t.Errorf("SubmitReassignment() error = %v, want ErrEmptyModel", err)
	}
}

func TestSessionSubmitWithoutOutliers(t *testing.T) {
	vA := makeVersion("Version A")
	session := openSession(t, snapshot([]*submissions.VersionRef{vA}, 2, 0), &mockBackend{})

	if _, err := session.SubmitReassignment(context.Background()); !errors.Is(err, review.ErrNoActiveOutlier) {
		t.Errorf("SubmitReassignment() error = %v, want ErrNoActiveOutlier", err)
	}
}

func TestSessionDuplicateSubmitRejected(t *testing.T) {
	vA := makeVersion("Version A")
	subs := snapshot([]*submissions.VersionRef{vA}, 1, 1)

	release := make(chan struct{})
	entered := make(chan struct{})

	backend := &mockBackend{}
	backend.setVersionFn = func(ctx context.Context, submissionID, versionID uuid.UUID) ([]submissions.Submission, error) {
		close(entered)
		<-release
		refreshed := snapshot([]*submissions.VersionRef{vA}, 1, 0)
		moved := subs[1]
		moved.Version = vA
		return append(refreshed, moved), nil
	}

	session := openSession(t, subs, backend)
	if _, err := session.SelectTarget(vA.ID); err != nil {
		t.Fatalf("SelectTarget() error = %v", err)
	}

	done := make(chan error, 1)
	go func() {
		_, err := session.SubmitReassignment(context.Background())
		done <- err
	}()

	<-entered
	if _, err := session.SubmitReassignment(context.Background()); !errors.Is(err, review.ErrAlreadyInProgress) {
		t.Errorf("duplicate submit error = %v, want ErrAlreadyInProgress", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Errorf("first submit error = %v", err)
	}
}

func TestSessionSubmitFailureRecordsReason(t *testing.T) {
	vA := makeVersion("Version A")
	subs := snapshot([]*submissions.VersionRef{vA}, 1, 1)

	backend := &mockBackend{}
	backend.setVersionFn = func(ctx context.Context, submissionID, versionID uuid.UUID) ([]submissions.Submission, error) {
		return nil, submissions.ErrVersionMismatch
	}

	session := openSession(t, subs, backend)
	if _, err := session.SelectTarget(vA.ID); err != nil {
		t.Fatalf("SelectTarget() error = %v", err)
	}

	if _, err := session.SubmitReassignment(context.Background()); !errors.Is(err, submissions.ErrVersionMismatch) {
		t.Errorf("SubmitReassignment() error = %v, want ErrVersionMismatch", err)
	}

	view := session.View()
	if view.Workflow.State != review.WorkflowFailed {
		t.Errorf("workflow state: got %s, want failed", view.Workflow.State)
	}
	if view.Workflow.Reason == "" {
		t.Error("failure reason should be recorded")
	}
	// Membership is untouched on failure.
	if view.Submissions != 2 {
		t.Errorf("submissions: got %d, want 2", view.Submissions)
	}
}

func TestSessionAttachCommentEmptyDraft(t *testing.T) {
	vA := makeVersion("Version A")
	called := false
	backend := &mockBackend{}
	backend.attachFn = func(ctx context.Context, versionID uuid.UUID, cmd versions.AttachCommand) error {
		called = true
		return nil
	}

	session := openSession(t, snapshot([]*submissions.VersionRef{vA}, 1, 0), backend)

	draft := review.CommentDraft{
		Text:  "   ",
		Files: []versions.FileUpload{{Name: "empty.pdf"}},
	}
	if _, err := session.AttachComment(context.Background(), vA.ID, draft); !errors.Is(err, review.ErrEmptyPayload) {
		t.Errorf("AttachComment() error = %v, want ErrEmptyPayload", err)
	}
	if called {
		t.Error("backend should not be called for an empty draft")
	}
}

func TestSessionAttachCommentRefreshesComments(t *testing.T) {
	vA := makeVersion("Version A")
	text := versions.TextComment{ID: uuid.New(), VersionID: vA.ID, Text: "watch the signs"}

	backend := &mockBackend{}
	var attached *versions.AttachCommand
	backend.attachFn = func(ctx context.Context, versionID uuid.UUID, cmd versions.AttachCommand) error {
		attached = &cmd
		return nil
	}
	backend.commentsFn = func(ctx context.Context, assignmentID uuid.UUID) (*versions.CommentSets, error) {
		if attached == nil {
			return nil, nil
		}
		return makeCommentSets(vA.ID, []versions.TextComment{text}, nil), nil
	}

	session := openSession(t, snapshot([]*submissions.VersionRef{vA}, 1, 0), backend)

	view, err := session.AttachComment(context.Background(), vA.ID, review.CommentDraft{Text: "watch the signs"})
	if err != nil {
		t.Fatalf("AttachComment() error = %v", err)
	}
	if attached == nil || attached.Text != "watch the signs" {
		t.Fatalf("attach command: got %+v", attached)
	}

	if view.Panes[0].Comments == nil {
		t.Fatal("version pane should render comments after attach")
	}
	if len(view.Panes[0].Comments.Texts) != 1 {
		t.Errorf("texts: got %d, want 1", len(view.Panes[0].Comments.Texts))
	}
}

func TestSessionDeleteCommentDuplicateNoOp(t *testing.T) {
	vA := makeVersion("Version A")
	text := versions.TextComment{ID: uuid.New(), VersionID: vA.ID, Text: "old note"}

	deletes := 0
	backend := &mockBackend{}
	backend.commentsFn = func(ctx context.Context, assignmentID uuid.UUID) (*versions.CommentSets, error) {
		return makeCommentSets(vA.ID, []versions.TextComment{text}, nil), nil
	}
	backend.deleteTextFn = func(ctx context.Context, id uuid.UUID) error {
		deletes++
		return nil
	}

	session := openSession(t, snapshot([]*submissions.VersionRef{vA}, 1, 0), backend)

	view := session.DeleteComment(context.Background(), review.CommentText, text.ID)
	if view.Panes[0].Comments != nil {
		t.Error("comments section should disappear once the last comment is pruned")
	}

	session.DeleteComment(context.Background(), review.CommentText, text.ID)
	if deletes != 1 {
		t.Errorf("backend deletes: got %d, want 1", deletes)
	}
}

func TestSessionTriggerClustering(t *testing.T) {
	vA := makeVersion("Version A")
	vB := makeVersion("Version B")

	backend := &mockBackend{}
	backend.clusterFn = func(ctx context.Context, assignmentID uuid.UUID, pages []int) ([]submissions.Submission, error) {
		if len(pages) != 2 || pages[0] != 1 || pages[1] != 2 {
			t.Errorf("pages: got %v, want [1 2]", pages)
		}
		return snapshot([]*submissions.VersionRef{vA, vB}, 2, 1), nil
	}

	session := openSession(t, snapshot(nil, 0, 5), backend)

	view, err := session.TriggerClustering(context.Background(), []int{1, 2})
	if err != nil {
		t.Fatalf("TriggerClustering() error = %v", err)
	}

	if view.Empty {
		t.Fatal("view should not be empty after clustering")
	}
	if len(view.Tabs) != 3 {
		t.Errorf("tabs: got %d, want 3", len(view.Tabs))
	}
	if !view.Tabs[0].Active {
		t.Error("first version tab should be active after clustering")
	}
}

func TestSessionTriggerClusteringInvalidPages(t *testing.T) {
	session := openSession(t, snapshot(nil, 0, 2), &mockBackend{})

	for _, pages := range [][]int{nil, {0}, {5}, {1, 9}} {
		if _, err := session.TriggerClustering(context.Background(), pages); !errors.Is(err, review.ErrInvalidPage) {
			t.Errorf("TriggerClustering(%v) error = %v, want ErrInvalidPage", pages, err)
		}
	}
}

func TestSessionReset(t *testing.T) {
	vA := makeVersion("Version A")

	resetCalled := false
	backend := &mockBackend{}
	backend.resetFn = func(ctx context.Context, assignmentID uuid.UUID) error {
		resetCalled = true
		return nil
	}
	backend.snapshotFn = func(ctx context.Context, id uuid.UUID) ([]submissions.Submission, error) {
		if resetCalled {
			return snapshot(nil, 0, 3), nil
		}
		return snapshot([]*submissions.VersionRef{vA}, 2, 1), nil
	}

	session := openSession(t, nil, backend)

	view, err := session.Reset(context.Background())
	if err != nil {
		t.Fatalf("Reset() error = %v", err)
	}

	if !resetCalled {
		t.Error("backend reset was not called")
	}
	if !view.Empty {
		t.Error("view should be empty after reset")
	}
	if view.CallToAction == "" {
		t.Error("reset view should carry the call to action")
	}
}
