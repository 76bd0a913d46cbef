package workflow

import "context"

// NewDocumentStateMachine builds the document lifecycle machine at the
// given initial state. lastStep decides, at fire time, whether an approval
// closes the workflow (last step reached) or advances to the next step.
// Pass nil when the machine is only used for non-approval transitions.
func NewDocumentStateMachine(initialState State, lastStep GuardFunc) StateMachine {
	builder := NewBuilder()

	if lastStep == nil {
		lastStep = alwaysTrue
	}

	builder.Configure(StateDraft).
		Permit(TriggerSubmit, StatePendingApproval).
		Permit(TriggerCancel, StateCancelled)

	builder.Configure(StatePendingApproval).
		PermitIf(TriggerApprove, StateApproved, lastStep).
		PermitIf(TriggerApprove, StatePendingApproval, negate(lastStep)).
		Permit(TriggerReject, StateRejected)

	// Resubmission after rejection obtains a new approval instance.
	builder.Configure(StateRejected).
		Permit(TriggerSubmit, StatePendingApproval)

	// Posting is performed by the owning document module after approval.
	builder.Configure(StateApproved).
		Permit(TriggerPost, StatePosted)

	// POSTED and CANCELLED are terminal, no outgoing transitions.

	return builder.Build(initialState)
}

func alwaysTrue(ctx context.Context) bool { return true }

func negate(g GuardFunc) GuardFunc {
	return func(ctx context.Context) bool { return !g(ctx) }
}
