package entity

import "time"

// WorkflowDefinition is an ordered chain of approval steps applicable to a
// class of documents. Definitions are reference data edited by
// administrators; the engine treats them as immutable during a single
// resolution.
type WorkflowDefinition struct {
	ID            int64          `json:"id"`
	Name          string         `json:"name"`
	DocumentType  string         `json:"document_type"`
	DocumentRoute string         `json:"document_route"`
	IsActive      bool           `json:"is_active"`
	Steps         []WorkflowStep `json:"steps,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// WorkflowStep is one stage in a workflow. StepOrder is 1-based and unique
// within a workflow; steps are processed in ascending order, gaps allowed.
// ApprovalLimitCents is a nullable monetary ceiling; nil means no ceiling.
type WorkflowStep struct {
	ID                 int64      `json:"id"`
	WorkflowID         int64      `json:"workflow_id"`
	StepOrder          int        `json:"step_order"`
	StepName           string     `json:"step_name"`
	ApprovalLimitCents *int64     `json:"approval_limit_cents,omitempty"`
	Approvers          []Approver `json:"approvers"`
}

// Approver is one eligible approver identity within a step.
type Approver struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
}

// HasApprover reports whether userID is in the step's approver set.
func (s *WorkflowStep) HasApprover(userID string) bool {
	for _, a := range s.Approvers {
		if a.UserID == userID {
			return true
		}
	}
	return false
}

// LimitExceeded reports whether amountCents is strictly above the step's
// approval limit. An absent limit means any amount clears.
func (s *WorkflowStep) LimitExceeded(amountCents *int64) bool {
	if s.ApprovalLimitCents == nil || amountCents == nil {
		return false
	}
	return *amountCents > *s.ApprovalLimitCents
}
