package service

import "errors"

// Precondition violations: rejected outright, never retried.
var (
	// ErrInvalidDocumentStatus is returned when a document is submitted
	// from a status other than DRAFT or REJECTED, or posted/cancelled from
	// the wrong status.
	ErrInvalidDocumentStatus = errors.New("document status does not permit this action")

	// ErrNotPending is returned when acting on a closed approval instance
	ErrNotPending = errors.New("approval instance is not pending")

	// ErrStepMismatch is returned when an action names a step other than
	// the instance's current step
	ErrStepMismatch = errors.New("action step does not match current step")
)

// Authorization violations: hard stops, logged for audit.
var (
	// ErrNotAuthorized is returned when the acting identity is not in the
	// current step's approver set
	ErrNotAuthorized = errors.New("actor is not an eligible approver for this step")

	// ErrTargetNotEligible is returned when a caller-supplied target
	// approver is not in the step's approver set
	ErrTargetNotEligible = errors.New("target approver is not in the step approver set")

	// ErrTargetRequired is returned when a step has multiple eligible
	// approvers and the caller did not choose one
	ErrTargetRequired = errors.New("step has multiple approvers, target must be chosen explicitly")

	// ErrWorkflowMismatch is returned when a caller-supplied workflow
	// override disagrees with the resolved workflow
	ErrWorkflowMismatch = errors.New("workflow override does not match resolved workflow")
)
