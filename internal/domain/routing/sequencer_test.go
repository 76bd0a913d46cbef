package routing

import (
	"testing"

	"github.com/nimbuserp/approval-engine/internal/domain/entity"
)

func twoStepWorkflow() *entity.WorkflowDefinition {
	limit := int64(1000000) // 10,000.00
	return &entity.WorkflowDefinition{
		ID:            1,
		Name:          "GRN two-level",
		DocumentType:  "GRN",
		DocumentRoute: "inventory/grn-local",
		IsActive:      true,
		Steps: []entity.WorkflowStep{
			// Deliberately out of order and with a gap in step orders.
			{ID: 12, StepOrder: 5, StepName: "Finance Review", Approvers: []entity.Approver{
				{UserID: "u-bob", DisplayName: "Bob"},
				{UserID: "u-carol", DisplayName: "Carol"},
			}},
			{ID: 11, StepOrder: 1, StepName: "Store Supervisor", ApprovalLimitCents: &limit, Approvers: []entity.Approver{
				{UserID: "u-alice", DisplayName: "Alice"},
			}},
		},
	}
}

func TestFirstStep(t *testing.T) {
	def := twoStepWorkflow()

	step, ok := FirstStep(def)
	if !ok {
		t.Fatal("FirstStep() returned no step")
	}
	if step.StepOrder != 1 {
		t.Errorf("FirstStep().StepOrder = %d, want 1", step.StepOrder)
	}

	empty := &entity.WorkflowDefinition{ID: 2}
	if _, ok := FirstStep(empty); ok {
		t.Error("FirstStep() on an empty workflow should return false")
	}
}

func TestNextStep_SkipsGaps(t *testing.T) {
	def := twoStepWorkflow()

	next, ok := NextStep(def, 1)
	if !ok {
		t.Fatal("NextStep(1) returned no step")
	}
	// Next in ascending order, not +1 numerically.
	if next.StepOrder != 5 {
		t.Errorf("NextStep(1).StepOrder = %d, want 5", next.StepOrder)
	}

	if _, ok := NextStep(def, 5); ok {
		t.Error("NextStep(5) should return false past the last step")
	}
}

func TestIsLastStep(t *testing.T) {
	def := twoStepWorkflow()

	if IsLastStep(def, 1) {
		t.Error("IsLastStep(1) = true, want false")
	}
	if !IsLastStep(def, 5) {
		t.Error("IsLastStep(5) = false, want true")
	}
}

func TestDefaultApprover(t *testing.T) {
	def := twoStepWorkflow()

	first, _ := StepAt(def, 1)
	approver, ok := DefaultApprover(first)
	if !ok {
		t.Fatal("DefaultApprover() on singleton set should return the member")
	}
	if approver.UserID != "u-alice" {
		t.Errorf("DefaultApprover().UserID = %q, want %q", approver.UserID, "u-alice")
	}

	// A true multi-approver set has no silent default.
	second, _ := StepAt(def, 5)
	if _, ok := DefaultApprover(second); ok {
		t.Error("DefaultApprover() on multi-member set should return false")
	}
}

func TestStepLimitExceeded(t *testing.T) {
	def := twoStepWorkflow()
	first, _ := StepAt(def, 1)

	under := int64(500000)
	over := int64(1000001)
	exactly := int64(1000000)

	if first.LimitExceeded(&under) {
		t.Error("LimitExceeded(5,000.00) = true, want false")
	}
	if !first.LimitExceeded(&over) {
		t.Error("LimitExceeded(10,000.01) = false, want true")
	}
	// Comparison is strict >, the exact limit clears.
	if first.LimitExceeded(&exactly) {
		t.Error("LimitExceeded(10,000.00) = true, want false")
	}
	if first.LimitExceeded(nil) {
		t.Error("LimitExceeded(nil amount) = true, want false")
	}

	second, _ := StepAt(def, 5)
	if second.LimitExceeded(&over) {
		t.Error("absent limit means any amount clears")
	}
}
