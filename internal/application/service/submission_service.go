package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nimbuserp/approval-engine/internal/application/port"
	"github.com/nimbuserp/approval-engine/internal/domain/entity"
	"github.com/nimbuserp/approval-engine/internal/domain/routing"
	"github.com/nimbuserp/approval-engine/internal/domain/workflow"
)

// SubmitRequest carries a document author's routing request. WorkflowID and
// TargetUserID are optional overrides of the resolver's default pick; the
// engine validates them against the resolved workflow rather than trusting
// them blindly.
type SubmitRequest struct {
	AmountCents  *int64
	SubmittedBy  string
	WorkflowID   *int64
	TargetUserID string
}

// SubmitResult is the routing decision returned to the document UI.
type SubmitResult struct {
	InstanceID       int64  `json:"instance_id,omitempty"`
	Reference        string `json:"reference,omitempty"`
	Status           string `json:"status"`
	WorkflowID       int64  `json:"workflow_id,omitempty"`
	TargetApproverID string `json:"target_approver_id,omitempty"`
	// NoWorkflow is set when no active workflow matched and the fallback
	// policy was applied. Not an error: the document still has a submit path.
	NoWorkflow bool `json:"no_workflow,omitempty"`
	// LimitExceeded flags that the amount is above the first step's
	// approval limit. Display-only hint, no step is skipped.
	LimitExceeded bool `json:"limit_exceeded,omitempty"`
}

// SubmissionService is the entry point invoked when a document author
// requests routing: resolve the workflow, pick the first step and target
// approver, create the approval instance and transition the document, all
// within one transaction.
type SubmissionService interface {
	Submit(ctx context.Context, documentID int64, req SubmitRequest) (*SubmitResult, error)
}

type submissionServiceImpl struct {
	documentRepo   port.DocumentRepository
	instanceRepo   port.InstanceRepository
	actionRepo     port.ActionRepository
	cache          port.DefinitionCache
	txManager      port.TransactionManager
	fallbackPolicy string
	logger         Logger
}

// NewSubmissionService creates a new SubmissionService. fallbackPolicy is
// the deployment's no-workflow policy: entity.FallbackDirectApprove or
// entity.FallbackPending.
func NewSubmissionService(
	documentRepo port.DocumentRepository,
	instanceRepo port.InstanceRepository,
	actionRepo port.ActionRepository,
	cache port.DefinitionCache,
	txManager port.TransactionManager,
	fallbackPolicy string,
	logger Logger,
) SubmissionService {
	return &submissionServiceImpl{
		documentRepo:   documentRepo,
		instanceRepo:   instanceRepo,
		actionRepo:     actionRepo,
		cache:          cache,
		txManager:      txManager,
		fallbackPolicy: fallbackPolicy,
		logger:         logger,
	}
}

func (s *submissionServiceImpl) Submit(ctx context.Context, documentID int64, req SubmitRequest) (*SubmitResult, error) {
	doc, err := s.documentRepo.GetByID(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, port.ErrDocumentNotFound
	}

	if doc.Status != entity.DocStatusDraft && doc.Status != entity.DocStatusRejected {
		return nil, fmt.Errorf("%w: cannot submit from %s", ErrInvalidDocumentStatus, doc.Status)
	}

	// Refuse a second submission while one is open. The unique index on
	// open instances backstops this check under concurrency.
	if open, err := s.instanceRepo.GetOpenByDocumentID(ctx, documentID); err != nil {
		return nil, err
	} else if open != nil {
		return nil, port.ErrSubmissionPending
	}

	defs, err := s.cache.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	resolution, err := routing.Resolve(defs, doc.DocumentRoute, doc.DocumentType)
	if errors.Is(err, routing.ErrNoWorkflowMatch) {
		return s.applyFallback(ctx, doc, req)
	}
	if err != nil {
		return nil, err
	}

	if resolution.Ambiguous {
		// Configuration fault: surfaced to administrators, not silently
		// disambiguated per-request.
		s.logger.Warn("Multiple active workflows match route, picked lowest id",
			"route", doc.DocumentRoute,
			"workflow_id", resolution.Definition.ID)
	}

	def := resolution.Definition
	if req.WorkflowID != nil && *req.WorkflowID != def.ID {
		return nil, fmt.Errorf("%w: requested %d, resolved %d", ErrWorkflowMismatch, *req.WorkflowID, def.ID)
	}

	firstStep, ok := routing.FirstStep(def)
	if !ok {
		s.logger.Warn("Active workflow has no steps, applying fallback policy",
			"workflow_id", def.ID, "route", doc.DocumentRoute)
		return s.applyFallback(ctx, doc, req)
	}

	target, err := chooseTarget(firstStep, req.TargetUserID)
	if err != nil {
		return nil, err
	}

	instance := &entity.ApprovalInstance{
		Reference:        uuid.NewString(),
		DocumentID:       doc.ID,
		WorkflowID:       def.ID,
		CurrentStepOrder: firstStep.StepOrder,
		TargetApproverID: target,
		AmountCents:      req.AmountCents,
		Status:           entity.InstanceStatusPending,
		SubmittedBy:      req.SubmittedBy,
		SubmittedAt:      time.Now(),
	}

	machine := workflow.NewDocumentStateMachine(workflow.State(doc.Status), nil)
	if err := machine.Fire(ctx, workflow.TriggerSubmit); err != nil {
		return nil, err
	}
	newStatus := machine.State().String()

	actionType := entity.ActionSubmit
	if doc.Status == entity.DocStatusRejected {
		actionType = entity.ActionResubmit
	}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.instanceRepo.Create(txCtx, instance); err != nil {
			return err
		}
		if err := s.documentRepo.UpdateStatus(txCtx, doc.ID, newStatus); err != nil {
			return err
		}
		return s.actionRepo.Create(txCtx, &entity.ApprovalAction{
			DocumentID:     doc.ID,
			InstanceID:     &instance.ID,
			ActorUserID:    req.SubmittedBy,
			ActionType:     actionType,
			StepOrder:      &firstStep.StepOrder,
			PreviousStatus: doc.Status,
			NewStatus:      newStatus,
			Timestamp:      time.Now(),
		})
	})
	if err != nil {
		s.logger.Error("Failed to submit document", "error", err, "document_id", doc.ID)
		return nil, err
	}

	limitExceeded := firstStep.LimitExceeded(req.AmountCents)
	if limitExceeded {
		s.logger.Warn("Document amount exceeds first step approval limit",
			"document_id", doc.ID,
			"workflow_id", def.ID,
			"step_order", firstStep.StepOrder)
	}

	s.logger.Info("Document submitted for approval",
		"document_id", doc.ID,
		"instance_id", instance.ID,
		"workflow_id", def.ID,
		"matched_by", resolution.MatchedBy,
		"target", target)

	return &SubmitResult{
		InstanceID:       instance.ID,
		Reference:        instance.Reference,
		Status:           newStatus,
		WorkflowID:       def.ID,
		TargetApproverID: target,
		LimitExceeded:    limitExceeded,
	}, nil
}

// applyFallback handles the no-workflow case. The policy is a deployment
// choice: direct-approve moves the document straight to APPROVED, pending
// parks it in PENDING_APPROVAL with no workflow attached. Deterministic for
// repeated calls with identical input.
func (s *submissionServiceImpl) applyFallback(ctx context.Context, doc *entity.Document, req SubmitRequest) (*SubmitResult, error) {
	newStatus := entity.DocStatusPendingApproval
	if s.fallbackPolicy == entity.FallbackDirectApprove {
		newStatus = entity.DocStatusApproved
	}

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.documentRepo.UpdateStatus(txCtx, doc.ID, newStatus); err != nil {
			return err
		}
		return s.actionRepo.Create(txCtx, &entity.ApprovalAction{
			DocumentID:     doc.ID,
			ActorUserID:    req.SubmittedBy,
			ActionType:     entity.ActionSubmit,
			PreviousStatus: doc.Status,
			NewStatus:      newStatus,
			Remarks:        "no active workflow matched, fallback policy applied",
			Timestamp:      time.Now(),
		})
	})
	if err != nil {
		s.logger.Error("Failed to apply no-workflow fallback", "error", err, "document_id", doc.ID)
		return nil, err
	}

	s.logger.Info("No workflow matched, fallback applied",
		"document_id", doc.ID,
		"route", doc.DocumentRoute,
		"policy", s.fallbackPolicy,
		"status", newStatus)

	return &SubmitResult{
		Status:     newStatus,
		NoWorkflow: true,
	}, nil
}

// chooseTarget picks the target approver for a step. A singleton approver
// set yields its member and refuses any other identity; a multi-member set
// requires an explicit caller choice from within the set.
func chooseTarget(step *entity.WorkflowStep, requested string) (string, error) {
	if requested != "" {
		if !step.HasApprover(requested) {
			return "", fmt.Errorf("%w: %s at step %d", ErrTargetNotEligible, requested, step.StepOrder)
		}
		return requested, nil
	}

	if approver, ok := routing.DefaultApprover(step); ok {
		return approver.UserID, nil
	}
	return "", fmt.Errorf("%w: step %d", ErrTargetRequired, step.StepOrder)
}
