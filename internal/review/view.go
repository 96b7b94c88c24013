package review

import (
	"github.com/google/uuid"

	"github.com/IonMich/instructor-pilot/internal/versions"
)

// View is the complete render of a review session, rebuilt from the model
// after every mutation. Nothing in a View is patched incrementally; a stale
// node can never outlive a membership change.
type View struct {
	AssignmentID uuid.UUID     `json:"assignment_id"`
	Submissions  int           `json:"submissions"`
	Empty        bool          `json:"empty"`
	CallToAction string        `json:"call_to_action,omitempty"`
	Tabs         []Tab         `json:"tabs,omitempty"`
	Panes        []Pane        `json:"panes,omitempty"`
	Workflow     *WorkflowView `json:"workflow,omitempty"`
}

// Pane is the rendered surface for one group: a viewer per member plus the
// pane's carousel and, for version panes, its comments.
type Pane struct {
	GroupID          GroupID       `json:"group_id"`
	Label            string        `json:"label"`
	Count            int           `json:"count"`
	Outliers         bool          `json:"outliers"`
	Active           bool          `json:"active"`
	Viewers          []Viewer      `json:"viewers"`
	ActiveSubmission uuid.UUID     `json:"active_submission"`
	AtFirst          bool          `json:"at_first"`
	AtLast           bool          `json:"at_last"`
	Page             int           `json:"page"`
	MaxPage          int           `json:"max_page"`
	Comments         *CommentsView `json:"comments,omitempty"`
}

// Viewer is one submission's paged image viewer within a pane.
type Viewer struct {
	SubmissionID uuid.UUID `json:"submission_id"`
	Student      string    `json:"student"`
	Images       []string  `json:"images"`
	PageImage    string    `json:"page_image,omitempty"`
	Centered     bool      `json:"centered"`
}

// CommentsView carries a version pane's current comments. It is omitted
// entirely when the version has none: absence, not an empty list, is the
// signal to skip the old-comments section.
type CommentsView struct {
	VersionID uuid.UUID              `json:"version_id"`
	Texts     []versions.TextComment `json:"texts,omitempty"`
	Files     []versions.FileComment `json:"files,omitempty"`
}

// WorkflowView exposes the reassignment state machine for the outliers pane.
type WorkflowView struct {
	State  WorkflowState `json:"state"`
	Target uuid.UUID     `json:"target,omitempty"`
	Reason string        `json:"reason,omitempty"`
}

// callToAction is shown in place of the review surface when no clustering
// result exists yet.
const callToAction = "No versions computed yet. Select the pages to cluster on and initiate versioning."

func render(s *Session) *View {
	view := &View{
		AssignmentID: s.assignmentID,
		Submissions:  s.model.Submissions(),
	}

	if s.model.Empty() {
		view.Empty = true
		view.CallToAction = callToAction
		return view
	}

	view.Tabs = s.tabs.Render()
	view.Workflow = &WorkflowView{
		State:  s.workflow.State(),
		Target: s.workflow.Target(),
		Reason: s.workflow.Reason(),
	}

	active := s.model.ActiveTab()
	for _, group := range s.model.Groups() {
		view.Panes = append(view.Panes, renderPane(s, group, group.ID == active))
	}

	return view
}

func renderPane(s *Session, group *Group, active bool) Pane {
	carousel := s.carousels[group.ID]

	pane := Pane{
		GroupID:          group.ID,
		Label:            group.Name(),
		Count:            group.Count(),
		Outliers:         group.IsOutliers(),
		Active:           active,
		ActiveSubmission: carousel.Active(),
		AtFirst:          carousel.AtFirst(),
		AtLast:           carousel.AtLast(),
		Page:             carousel.Page(),
		MaxPage:          s.maxPage,
	}

	centered := carousel.Active()
	for _, sub := range group.Members {
		viewer := Viewer{
			SubmissionID: sub.ID,
			Student:      sub.Student,
			Images:       sub.Images,
			Centered:     sub.ID == centered,
		}
		if idx := carousel.Page() - 1; idx >= 0 && idx < len(sub.Images) {
			viewer.PageImage = sub.Images[idx]
		}
		pane.Viewers = append(pane.Viewers, viewer)
	}

	if !group.IsOutliers() {
		texts, files := s.comments.ForVersion(group.Version.ID)
		if len(texts) > 0 || len(files) > 0 {
			pane.Comments = &CommentsView{
				VersionID: group.Version.ID,
				Texts:     texts,
				Files:     files,
			}
		}
	}

	return pane
}
