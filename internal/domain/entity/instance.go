package entity

import "time"

// ApprovalInstance is the live record tracking a specific document's
// progress through a workflow. Created exactly once per successful
// submission; superseded instances (after rejection-and-resubmit) are
// retained for audit.
type ApprovalInstance struct {
	ID               int64      `json:"id"`
	Reference        string     `json:"reference"`
	DocumentID       int64      `json:"document_id"`
	WorkflowID       int64      `json:"workflow_id"`
	CurrentStepOrder int        `json:"current_step_order"`
	TargetApproverID string     `json:"target_approver_id"`
	AmountCents      *int64     `json:"amount_cents,omitempty"`
	Status           string     `json:"status"`
	SubmittedBy      string     `json:"submitted_by"`
	SubmittedAt      time.Time  `json:"submitted_at"`
	ClosedAt         *time.Time `json:"closed_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// ApprovalAction is one append-only audit record of an action taken on a
// document or its approval instance.
type ApprovalAction struct {
	ID             int64     `json:"id"`
	DocumentID     int64     `json:"document_id"`
	InstanceID     *int64    `json:"instance_id,omitempty"`
	ActorUserID    string    `json:"actor_user_id"`
	ActionType     string    `json:"action_type"`
	StepOrder      *int      `json:"step_order,omitempty"`
	PreviousStatus string    `json:"previous_status"`
	NewStatus      string    `json:"new_status"`
	Remarks        string    `json:"remarks,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}
