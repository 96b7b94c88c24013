package review

import (
	"github.com/google/uuid"
)

// WorkflowState is the outlier-reassignment state machine's current phase.
type WorkflowState string

// Workflow states. Failed resets to Idle on the next target selection; the
// previously chosen target is not preserved across a failure.
const (
	WorkflowIdle           WorkflowState = "idle"
	WorkflowTargetSelected WorkflowState = "target_selected"
	WorkflowSubmitting     WorkflowState = "submitting"
	WorkflowSucceeded      WorkflowState = "succeeded"
	WorkflowFailed         WorkflowState = "failed"
)

// Workflow is the manual outlier-reassignment mini state machine. One
// reassignment may be in flight at a time; the session serializes access.
type Workflow struct {
	state  WorkflowState
	target uuid.UUID
	reason string
}

// NewWorkflow creates an idle workflow.
func NewWorkflow() *Workflow {
	return &Workflow{state: WorkflowIdle}
}

// State returns the current phase.
func (w *Workflow) State() WorkflowState {
	return w.state
}

// Target returns the chosen target version, or uuid.Nil.
func (w *Workflow) Target() uuid.UUID {
	return w.target
}

// Reason returns the failure reason for a Failed workflow.
func (w *Workflow) Reason() string {
	return w.reason
}

// SelectTarget picks the version the active outlier will be moved into.
// Rejected while a submit is in flight.
func (w *Workflow) SelectTarget(versionID uuid.UUID) error {
	if w.state == WorkflowSubmitting {
		return ErrAlreadyInProgress
	}
	if versionID == uuid.Nil {
		return ErrNoTarget
	}

	w.state = WorkflowTargetSelected
	w.target = versionID
	w.reason = ""
	return nil
}

// Begin transitions to Submitting and returns the target to send. A submit
// without a chosen target is a validation failure and never reaches the
// network; a duplicate submit while one is in flight is rejected.
func (w *Workflow) Begin() (uuid.UUID, error) {
	if w.state == WorkflowSubmitting {
		return uuid.Nil, ErrAlreadyInProgress
	}
	if w.state != WorkflowTargetSelected {
		return uuid.Nil, ErrNoTarget
	}

	w.state = WorkflowSubmitting
	return w.target, nil
}

// Succeed records a confirmed reassignment and clears the target.
func (w *Workflow) Succeed() {
	w.state = WorkflowSucceeded
	w.target = uuid.Nil
	w.reason = ""
}

// Fail records a terminal failure. The target is dropped: the user re-picks
// before retrying.
func (w *Workflow) Fail(err error) {
	w.state = WorkflowFailed
	w.target = uuid.Nil
	if err != nil {
		w.reason = err.Error()
	}
}
