package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nimbuserp/approval-engine/internal/application/port"
	"github.com/nimbuserp/approval-engine/internal/domain/entity"
)

func pendingInstance(step int, target string) *entity.ApprovalInstance {
	amount := int64(500000)
	return &entity.ApprovalInstance{
		ID:               1,
		Reference:        "ref-1",
		DocumentID:       1,
		WorkflowID:       1,
		CurrentStepOrder: step,
		TargetApproverID: target,
		AmountCents:      &amount,
		Status:           entity.InstanceStatusPending,
		SubmittedBy:      "u-author",
	}
}

func newApprovalFixture(instance *entity.ApprovalInstance) (ApprovalService, *mockDocumentRepo, *mockInstanceRepo, *mockActionRepo) {
	def := twoStepDefinition()
	doc := grnDraft(1)
	doc.Status = entity.DocStatusPendingApproval

	docRepo := newMockDocumentRepo(doc)
	instRepo := newMockInstanceRepo(instance)
	actionRepo := &mockActionRepo{}
	wfRepo := newMockWorkflowRepo(&def)

	svc := NewApprovalService(instRepo, docRepo, wfRepo, actionRepo, &mockTxManager{}, nopLogger{})
	return svc, docRepo, instRepo, actionRepo
}

func TestApprove_NonLastStepAdvances(t *testing.T) {
	svc, docRepo, instRepo, actionRepo := newApprovalFixture(pendingInstance(1, "u-alice"))

	result, err := svc.Approve(context.Background(), "ref-1", ActionRequest{
		ActorUserID:  "u-alice",
		StepOrder:    1,
		TargetUserID: "u-bob",
	})
	require.NoError(t, err)

	// Document stays pending, instance advances to step 2.
	assert.Equal(t, entity.DocStatusPendingApproval, docRepo.docs[1].Status)
	assert.Equal(t, entity.InstanceStatusPending, result.Status)
	assert.Equal(t, 2, result.CurrentStepOrder)
	assert.Equal(t, "u-bob", result.TargetApproverID)
	assert.Equal(t, []int{2}, instRepo.advanced)
	assert.Empty(t, instRepo.closed)

	require.Len(t, actionRepo.actions, 1)
	assert.Equal(t, entity.ActionAdvance, actionRepo.actions[0].ActionType)
}

func TestApprove_AdvanceIntoMultiApproverStepRequiresTarget(t *testing.T) {
	svc, _, _, _ := newApprovalFixture(pendingInstance(1, "u-alice"))

	// Step 2 has approvers {u-bob, u-carol}; the target must be chosen.
	_, err := svc.Approve(context.Background(), "ref-1", ActionRequest{
		ActorUserID: "u-alice",
		StepOrder:   1,
	})
	assert.ErrorIs(t, err, ErrTargetRequired)

	_, err = svc.Approve(context.Background(), "ref-1", ActionRequest{
		ActorUserID:  "u-alice",
		StepOrder:    1,
		TargetUserID: "u-alice",
	})
	assert.ErrorIs(t, err, ErrTargetNotEligible)
}

func TestApprove_LastStepClosesAndApproves(t *testing.T) {
	svc, docRepo, instRepo, actionRepo := newApprovalFixture(pendingInstance(2, "u-bob"))

	result, err := svc.Approve(context.Background(), "ref-1", ActionRequest{
		ActorUserID: "u-bob",
		StepOrder:   2,
	})
	require.NoError(t, err)

	assert.Equal(t, entity.DocStatusApproved, docRepo.docs[1].Status)
	assert.Equal(t, entity.InstanceStatusApproved, result.Status)
	assert.Equal(t, []string{entity.InstanceStatusApproved}, instRepo.closed)

	require.Len(t, actionRepo.actions, 1)
	assert.Equal(t, entity.ActionApprove, actionRepo.actions[0].ActionType)
}

func TestApprove_ActorOutsideStepSetRejected(t *testing.T) {
	svc, docRepo, _, actionRepo := newApprovalFixture(pendingInstance(1, "u-alice"))

	_, err := svc.Approve(context.Background(), "ref-1", ActionRequest{
		ActorUserID: "u-bob", // eligible at step 2, not step 1
		StepOrder:   1,
	})
	assert.ErrorIs(t, err, ErrNotAuthorized)

	// Operation error, not a state change.
	assert.Equal(t, entity.DocStatusPendingApproval, docRepo.docs[1].Status)
	assert.Empty(t, actionRepo.actions)
}

func TestApprove_StepMismatchRejected(t *testing.T) {
	svc, _, _, _ := newApprovalFixture(pendingInstance(1, "u-alice"))

	_, err := svc.Approve(context.Background(), "ref-1", ActionRequest{
		ActorUserID: "u-bob",
		StepOrder:   2,
	})
	assert.ErrorIs(t, err, ErrStepMismatch)
}

func TestApprove_ClosedInstanceRejected(t *testing.T) {
	instance := pendingInstance(2, "u-bob")
	instance.Status = entity.InstanceStatusApproved
	svc, _, _, _ := newApprovalFixture(instance)

	_, err := svc.Approve(context.Background(), "ref-1", ActionRequest{
		ActorUserID: "u-bob",
		StepOrder:   2,
	})
	assert.ErrorIs(t, err, ErrNotPending)
}

func TestReject_AnyStepClosesRejected(t *testing.T) {
	svc, docRepo, instRepo, actionRepo := newApprovalFixture(pendingInstance(1, "u-alice"))

	result, err := svc.Reject(context.Background(), "ref-1", ActionRequest{
		ActorUserID: "u-alice",
		StepOrder:   1,
		Remarks:     "quantity mismatch with delivery order",
	})
	require.NoError(t, err)

	assert.Equal(t, entity.DocStatusRejected, docRepo.docs[1].Status)
	assert.Equal(t, entity.InstanceStatusRejected, result.Status)
	assert.Equal(t, []string{entity.InstanceStatusRejected}, instRepo.closed)

	require.Len(t, actionRepo.actions, 1)
	assert.Equal(t, entity.ActionReject, actionRepo.actions[0].ActionType)
	assert.Equal(t, "quantity mismatch with delivery order", actionRepo.actions[0].Remarks)
}

func TestApprove_UnknownReference(t *testing.T) {
	svc, _, _, _ := newApprovalFixture(pendingInstance(1, "u-alice"))

	_, err := svc.Approve(context.Background(), "ref-missing", ActionRequest{
		ActorUserID: "u-alice",
		StepOrder:   1,
	})
	assert.ErrorIs(t, err, port.ErrInstanceNotFound)
}

func TestTwoStepWalkthrough(t *testing.T) {
	// Step1: single approver Alice, limit 10,000; Step2: {Bob, Carol}.
	// Submit 5,000 → Alice by default; Alice approves → still pending at
	// step 2, explicit choice of Bob; Bob approves → APPROVED, closed.
	def := twoStepDefinition()
	doc := grnDraft(1)

	docRepo := newMockDocumentRepo(doc)
	instRepo := newMockInstanceRepo()
	actionRepo := &mockActionRepo{}
	wfRepo := newMockWorkflowRepo(&def)
	cache := &mockDefinitionCache{defs: []entity.WorkflowDefinition{def}}

	submission := NewSubmissionService(docRepo, instRepo, actionRepo, cache, &mockTxManager{}, entity.FallbackPending, nopLogger{})
	approval := NewApprovalService(instRepo, docRepo, wfRepo, actionRepo, &mockTxManager{}, nopLogger{})

	amount := int64(500000)
	submitted, err := submission.Submit(context.Background(), 1, SubmitRequest{
		AmountCents: &amount,
		SubmittedBy: "u-author",
	})
	require.NoError(t, err)
	assert.Equal(t, "u-alice", submitted.TargetApproverID)

	mid, err := approval.Approve(context.Background(), submitted.Reference, ActionRequest{
		ActorUserID:  "u-alice",
		StepOrder:    1,
		TargetUserID: "u-bob",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.DocStatusPendingApproval, docRepo.docs[1].Status)
	assert.Equal(t, 2, mid.CurrentStepOrder)

	final, err := approval.Approve(context.Background(), submitted.Reference, ActionRequest{
		ActorUserID: "u-bob",
		StepOrder:   2,
	})
	require.NoError(t, err)
	assert.Equal(t, entity.DocStatusApproved, docRepo.docs[1].Status)
	assert.Equal(t, entity.InstanceStatusApproved, final.Status)
}

func TestListPendingFor(t *testing.T) {
	svc, _, instRepo, _ := newApprovalFixture(pendingInstance(1, "u-alice"))
	instRepo.instances["other"] = &entity.ApprovalInstance{
		ID: 2, Reference: "other", DocumentID: 2, Status: entity.InstanceStatusPending, TargetApproverID: "u-bob",
	}

	pending, err := svc.ListPendingFor(context.Background(), "u-alice", 50)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "ref-1", pending[0].Reference)
}
