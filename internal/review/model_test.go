package review_test

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/IonMich/instructor-pilot/internal/review"
	"github.com/IonMich/instructor-pilot/internal/submissions"
)

func makeVersion(name string) *submissions.VersionRef {
	return &submissions.VersionRef{
		ID:   uuid.New(),
		Name: name,
	}
}

func makeSubmission(student string, version *submissions.VersionRef) submissions.Submission {
	return submissions.Submission{
		ID:           uuid.New(),
		AssignmentID: uuid.New(),
		Student:      student,
		Images:       []string{"scans/page1.png"},
		Version:      version,
	}
}

// snapshot builds n assigned submissions per version plus outliers
// unassigned ones, in version order.
func snapshot(versions []*submissions.VersionRef, perVersion, outliers int) []submissions.Submission {
	var subs []submissions.Submission
	for _, v := range versions {
		for i := 0; i < perVersion; i++ {
			subs = append(subs, makeSubmission("student", v))
		}
	}
	for i := 0; i < outliers; i++ {
		subs = append(subs, makeSubmission("student", nil))
	}
	return subs
}

func totalMembers(m *review.Model) int {
	total := 0
	for _, g := range m.Groups() {
		total += g.Count()
	}
	return total
}

func TestNewModelGroupsByVersion(t *testing.T) {
	vA := makeVersion("Version A")
	vB := makeVersion("Version B")
	subs := snapshot([]*submissions.VersionRef{vA, vB}, 2, 3)

	m := review.NewModel(subs)

	groups := m.Groups()
	if len(groups) != 3 {
		t.Fatalf("groups: got %d, want 3", len(groups))
	}
	if groups[0].Name() != "Version A" {
		t.Errorf("first group: got %s, want Version A", groups[0].Name())
	}
	if groups[1].Name() != "Version B" {
		t.Errorf("second group: got %s, want Version B", groups[1].Name())
	}
	if !groups[2].IsOutliers() {
		t.Error("last group should be outliers")
	}
	if groups[2].Count() != 3 {
		t.Errorf("outliers count: got %d, want 3", groups[2].Count())
	}
	if m.Submissions() != 7 {
		t.Errorf("total submissions: got %d, want 7", m.Submissions())
	}
}

func TestOutliersTabOnlyWhenNonEmpty(t *testing.T) {
	vA := makeVersion("Version A")

	m := review.NewModel(snapshot([]*submissions.VersionRef{vA}, 2, 0))
	for _, g := range m.Groups() {
		if g.IsOutliers() {
			t.Fatal("outliers group rendered with zero members")
		}
	}

	m = review.NewModel(snapshot([]*submissions.VersionRef{vA}, 2, 1))
	groups := m.Groups()
	if !groups[len(groups)-1].IsOutliers() {
		t.Fatal("outliers group missing with one unassigned submission")
	}
}

func TestEmptyModel(t *testing.T) {
	m := review.NewModel(nil)
	if !m.Empty() {
		t.Error("model with no submissions should be empty")
	}
	if m.Groups() != nil {
		t.Error("empty model should render no groups")
	}
	if m.ActiveTab() != "" {
		t.Errorf("empty model active tab: got %q, want empty", m.ActiveTab())
	}

	// Unassigned submissions alone do not make a clustering result.
	m = review.NewModel(snapshot(nil, 0, 4))
	if !m.Empty() {
		t.Error("model with only unassigned submissions should be empty")
	}
}

func TestMoveSubmissionConservesCount(t *testing.T) {
	vA := makeVersion("Version A")
	vB := makeVersion("Version B")
	subs := snapshot([]*submissions.VersionRef{vA, vB}, 3, 2)

	m := review.NewModel(subs)
	before := totalMembers(m)

	outlier := subs[len(subs)-1]
	if err := m.MoveSubmission(outlier.ID, vA.ID); err != nil {
		t.Fatalf("MoveSubmission() error = %v", err)
	}

	if got := totalMembers(m); got != before {
		t.Errorf("total members after move: got %d, want %d", got, before)
	}

	target := m.Group(review.GroupID(vA.ID.String()))
	if target.Count() != 4 {
		t.Errorf("target count: got %d, want 4", target.Count())
	}
	outliers := m.Group(review.OutliersGroupID)
	if outliers.Count() != 1 {
		t.Errorf("outliers count: got %d, want 1", outliers.Count())
	}
}

func TestMoveSubmissionIdempotent(t *testing.T) {
	vA := makeVersion("Version A")
	vB := makeVersion("Version B")
	subs := snapshot([]*submissions.VersionRef{vA, vB}, 3, 2)

	m := review.NewModel(subs)
	outlier := subs[len(subs)-1]

	if err := m.MoveSubmission(outlier.ID, vA.ID); err != nil {
		t.Fatalf("first move: %v", err)
	}
	if err := m.MoveSubmission(outlier.ID, vA.ID); err != nil {
		t.Fatalf("second move: %v", err)
	}

	target := m.Group(review.GroupID(vA.ID.String()))
	if target.Count() != 4 {
		t.Errorf("target count after duplicate move: got %d, want 4", target.Count())
	}
	if got := totalMembers(m); got != 8 {
		t.Errorf("total members: got %d, want 8", got)
	}
}

func TestMoveSubmissionUnknownIDs(t *testing.T) {
	vA := makeVersion("Version A")
	subs := snapshot([]*submissions.VersionRef{vA}, 2, 1)
	m := review.NewModel(subs)

	if err := m.MoveSubmission(uuid.New(), vA.ID); !errors.Is(err, review.ErrNotFound) {
		t.Errorf("unknown submission: got %v, want ErrNotFound", err)
	}
	if err := m.MoveSubmission(subs[0].ID, uuid.New()); !errors.Is(err, review.ErrNotFound) {
		t.Errorf("unknown version: got %v, want ErrNotFound", err)
	}
}

func TestMoveDropsEmptiedVersionGroup(t *testing.T) {
	vA := makeVersion("Version A")
	vB := makeVersion("Version B")
	subs := snapshot([]*submissions.VersionRef{vA}, 1, 0)
	subs = append(subs, snapshot([]*submissions.VersionRef{vB}, 2, 0)...)

	m := review.NewModel(subs)
	if err := m.MoveSubmission(subs[0].ID, vB.ID); err != nil {
		t.Fatalf("MoveSubmission() error = %v", err)
	}

	if m.Group(review.GroupID(vA.ID.String())) != nil {
		t.Error("emptied version group should be dropped from rendering")
	}
	if got := len(m.Groups()); got != 1 {
		t.Errorf("groups: got %d, want 1", got)
	}
}

func TestMoveRedirectsActiveTabFromDroppedGroup(t *testing.T) {
	vA := makeVersion("Version A")
	vB := makeVersion("Version B")
	subs := snapshot([]*submissions.VersionRef{vA}, 1, 0)
	subs = append(subs, snapshot([]*submissions.VersionRef{vB}, 2, 1)...)

	m := review.NewModel(subs)
	if !m.SelectTab(review.GroupID(vA.ID.String())) {
		t.Fatal("selecting version A failed")
	}

	if err := m.MoveSubmission(subs[0].ID, vB.ID); err != nil {
		t.Fatalf("MoveSubmission() error = %v", err)
	}

	// Active group vanished: fall back to outliers since it has members.
	if got := m.ActiveTab(); got != review.OutliersGroupID {
		t.Errorf("active tab: got %s, want outliers", got)
	}
}

func TestSelectTabStaleIDKeepsSelection(t *testing.T) {
	vA := makeVersion("Version A")
	m := review.NewModel(snapshot([]*submissions.VersionRef{vA}, 2, 0))

	want := m.ActiveTab()
	if m.SelectTab(review.GroupID(uuid.New().String())) {
		t.Error("stale tab id should not select")
	}
	if got := m.ActiveTab(); got != want {
		t.Errorf("active tab: got %s, want %s", got, want)
	}
}

func TestReplaceHintOutliers(t *testing.T) {
	vA := makeVersion("Version A")
	m := review.NewModel(snapshot([]*submissions.VersionRef{vA}, 1, 0))

	vB := makeVersion("Version B")
	m.Replace(snapshot([]*submissions.VersionRef{vB}, 2, 3), review.HintOutliers)

	if got := m.ActiveTab(); got != review.OutliersGroupID {
		t.Errorf("active tab: got %s, want outliers", got)
	}
}

func TestReplaceHintOutliersFallsBackToFirst(t *testing.T) {
	vA := makeVersion("Version A")
	m := review.NewModel(snapshot([]*submissions.VersionRef{vA}, 1, 1))

	// Refresh after the last outlier was reassigned: outliers is empty,
	// so the hint falls back to the first version group.
	vB := makeVersion("Version B")
	m.Replace(snapshot([]*submissions.VersionRef{vB, vA}, 2, 0), review.HintOutliers)

	if got := m.ActiveTab(); got != review.GroupID(vB.ID.String()) {
		t.Errorf("active tab: got %s, want first version group %s", got, vB.ID)
	}
}

func TestReplaceHintFirst(t *testing.T) {
	vA := makeVersion("Version A")
	vB := makeVersion("Version B")
	m := review.NewModel(nil)

	m.Replace(snapshot([]*submissions.VersionRef{vA, vB}, 1, 2), review.HintFirst)

	if got := m.ActiveTab(); got != review.GroupID(vA.ID.String()) {
		t.Errorf("active tab: got %s, want %s", got, vA.ID)
	}
}

func TestReplaceEmptySnapshot(t *testing.T) {
	vA := makeVersion("Version A")
	m := review.NewModel(snapshot([]*submissions.VersionRef{vA}, 2, 1))

	m.Replace(nil, review.HintOutliers)

	if !m.Empty() {
		t.Error("model should be empty after replacing with empty snapshot")
	}
	if got := m.ActiveTab(); got != "" {
		t.Errorf("active tab: got %q, want empty", got)
	}
}

// Reassigning one of three outliers keeps the remaining two in the pool and
// keeps the outliers tab selected after the refresh.
func TestReassignmentScenario(t *testing.T) {
	vA := makeVersion("Version A")
	vB := makeVersion("Version B")

	out1 := makeSubmission("ana", nil)
	out2 := makeSubmission("ben", nil)
	out3 := makeSubmission("carla", nil)

	subs := snapshot([]*submissions.VersionRef{vA, vB}, 2, 0)
	subs = append(subs, out1, out2, out3)

	m := review.NewModel(subs)
	m.SelectTab(review.OutliersGroupID)

	// Server confirms the reassignment and we refresh from its snapshot.
	refreshed := snapshot([]*submissions.VersionRef{vA, vB}, 2, 0)
	moved := out2
	moved.Version = vA
	refreshed = append(refreshed, moved, out1, out3)
	m.Replace(refreshed, review.HintOutliers)

	if got := m.ActiveTab(); got != review.OutliersGroupID {
		t.Errorf("active tab: got %s, want outliers", got)
	}
	outliers := m.Group(review.OutliersGroupID)
	if outliers.Count() != 2 {
		t.Errorf("outliers count: got %d, want 2", outliers.Count())
	}
	target := m.Group(review.GroupID(vA.ID.String()))
	if target.Count() != 3 {
		t.Errorf("target count: got %d, want 3", target.Count())
	}
	if got := totalMembers(m); got != 7 {
		t.Errorf("total members: got %d, want 7", got)
	}
}
