// Package review implements the submission version review surface: the
// per-assignment session that groups a submission snapshot by version,
// synchronizes tab and carousel state across mutations, and drives outlier
// reassignment and version comments against the backing domain systems.
package review

import (
	"github.com/google/uuid"

	"github.com/IonMich/instructor-pilot/internal/submissions"
)

// GroupID identifies a pane in the review surface: a version's UUID string,
// or the synthetic outliers pool.
type GroupID string

// OutliersGroupID is the synthetic pane holding unassigned submissions.
const OutliersGroupID GroupID = "outliers"

// TabHint steers active-tab selection after a wholesale model refresh.
// HintFirst activates the first version group, HintOutliers the outliers
// pool, and any positive value activates the group at that render index.
// A hint that resolves to a missing group falls back to outliers if
// non-empty, else the first group, else no selection.
type TabHint int

const (
	HintFirst    TabHint = 0
	HintOutliers TabHint = -1
)

// Group is one membership bucket: a version and its submissions, or the
// outliers pool. Version is nil only for the outliers group.
type Group struct {
	ID      GroupID
	Version *submissions.VersionRef
	Members []submissions.Submission
}

// Count returns the group's current member count.
func (g *Group) Count() int {
	return len(g.Members)
}

// IsOutliers reports whether this is the synthetic outliers pool.
func (g *Group) IsOutliers() bool {
	return g.ID == OutliersGroupID
}

// Name returns the pane display name.
func (g *Group) Name() string {
	if g.IsOutliers() {
		return "Outliers"
	}
	return g.Version.Name
}

// Model is the in-memory representation of the current clustering result:
// version groups in first-seen order, the outliers pool, and the active tab.
// It is the single source of truth for membership; panes re-derive from it
// after every mutation.
type Model struct {
	versionGroups []*Group
	outliers      *Group
	byVersion     map[uuid.UUID]*Group
	bySubmission  map[uuid.UUID]*Group
	active        GroupID
}

// NewModel builds a model from a submission snapshot. Submissions with no
// version land in the outliers pool; version groups keep the order in which
// their versions were first seen in the snapshot.
func NewModel(snapshot []submissions.Submission) *Model {
	m := &Model{
		outliers:     &Group{ID: OutliersGroupID},
		byVersion:    make(map[uuid.UUID]*Group),
		bySubmission: make(map[uuid.UUID]*Group),
	}
	m.load(snapshot)

	if groups := m.Groups(); len(groups) > 0 {
		m.active = groups[0].ID
	}

	return m
}

func (m *Model) load(snapshot []submissions.Submission) {
	m.versionGroups = m.versionGroups[:0]
	m.outliers = &Group{ID: OutliersGroupID}
	clear(m.byVersion)
	clear(m.bySubmission)

	for _, sub := range snapshot {
		group := m.outliers
		if sub.Version != nil {
			var ok bool
			group, ok = m.byVersion[sub.Version.ID]
			if !ok {
				group = &Group{
					ID:      GroupID(sub.Version.ID.String()),
					Version: sub.Version,
				}
				m.byVersion[sub.Version.ID] = group
				m.versionGroups = append(m.versionGroups, group)
			}
		}
		group.Members = append(group.Members, sub)
		m.bySubmission[sub.ID] = group
	}
}

// Empty reports whether the clustering result has no versions at all. An
// empty model renders the initiate-clustering call to action instead of tabs.
func (m *Model) Empty() bool {
	return len(m.versionGroups) == 0
}

// Groups returns the renderable groups: version groups in first-seen order,
// outliers last iff non-empty. Recomputed on every call, never cached.
func (m *Model) Groups() []*Group {
	if m.Empty() {
		return nil
	}

	groups := make([]*Group, 0, len(m.versionGroups)+1)
	groups = append(groups, m.versionGroups...)
	if m.outliers.Count() > 0 {
		groups = append(groups, m.outliers)
	}
	return groups
}

// Group returns the renderable group with the given id, or nil.
func (m *Model) Group(id GroupID) *Group {
	for _, g := range m.Groups() {
		if g.ID == id {
			return g
		}
	}
	return nil
}

// Submissions returns the total submission count across all groups.
func (m *Model) Submissions() int {
	return len(m.bySubmission)
}

// ActiveTab returns the currently selected group id, or "" when nothing is
// selected (empty model).
func (m *Model) ActiveTab() GroupID {
	return m.active
}

// SelectTab activates the given group. A stale id (group no longer rendered)
// is a no-op; the caller keeps its current selection.
func (m *Model) SelectTab(id GroupID) bool {
	if m.Group(id) == nil {
		return false
	}
	m.active = id
	return true
}

// MoveSubmission reassigns a submission to the target version group. Moving
// a submission to the group it is already in is a no-op. The source group is
// dropped from rendering when the move empties it; the outliers pool simply
// stops rendering until it has members again.
func (m *Model) MoveSubmission(submissionID, targetVersionID uuid.UUID) error {
	source, ok := m.bySubmission[submissionID]
	if !ok {
		return ErrNotFound
	}

	target, ok := m.byVersion[targetVersionID]
	if !ok {
		return ErrNotFound
	}

	if source == target {
		return nil
	}

	var moved submissions.Submission
	for i, sub := range source.Members {
		if sub.ID == submissionID {
			moved = sub
			source.Members = append(source.Members[:i], source.Members[i+1:]...)
			break
		}
	}

	moved.Version = target.Version
	target.Members = append(target.Members, moved)
	m.bySubmission[submissionID] = target

	if source.Count() == 0 && !source.IsOutliers() {
		m.dropVersionGroup(source)
	}

	if m.Group(m.active) == nil {
		m.active = m.fallbackTab()
	}

	return nil
}

// Replace refreshes the model wholesale from a fresh server snapshot and
// resolves the active tab from the hint.
func (m *Model) Replace(snapshot []submissions.Submission, hint TabHint) {
	m.load(snapshot)
	m.active = m.resolveHint(hint)
}

func (m *Model) resolveHint(hint TabHint) GroupID {
	groups := m.Groups()
	if len(groups) == 0 {
		return ""
	}

	if hint == HintOutliers {
		if m.outliers.Count() > 0 {
			return OutliersGroupID
		}
		return m.fallbackTab()
	}

	if hint >= 0 && int(hint) < len(groups) {
		return groups[hint].ID
	}

	return m.fallbackTab()
}

func (m *Model) fallbackTab() GroupID {
	if m.outliers.Count() > 0 {
		return OutliersGroupID
	}
	if groups := m.Groups(); len(groups) > 0 {
		return groups[0].ID
	}
	return ""
}

func (m *Model) dropVersionGroup(group *Group) {
	for i, g := range m.versionGroups {
		if g == group {
			m.versionGroups = append(m.versionGroups[:i], m.versionGroups[i+1:]...)
			break
		}
	}
	if group.Version != nil {
		delete(m.byVersion, group.Version.ID)
	}
}
