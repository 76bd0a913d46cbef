package service

import (
	"context"
	"fmt"
	"time"

	"github.com/nimbuserp/approval-engine/internal/application/port"
	"github.com/nimbuserp/approval-engine/internal/domain/entity"
	"github.com/nimbuserp/approval-engine/internal/domain/routing"
	"github.com/nimbuserp/approval-engine/internal/domain/workflow"
)

// ActionRequest carries an approver's decision on a pending instance.
// TargetUserID names the next step's approver when advancing into a
// multi-approver step; it is validated against that step's approver set.
type ActionRequest struct {
	ActorUserID  string
	StepOrder    int
	TargetUserID string
	Remarks      string
}

// ApprovalService owns the per-step lifecycle of submitted instances:
// approve advances or closes, reject closes. Every action executes in one
// transaction.
type ApprovalService interface {
	Approve(ctx context.Context, reference string, req ActionRequest) (*entity.ApprovalInstance, error)
	Reject(ctx context.Context, reference string, req ActionRequest) (*entity.ApprovalInstance, error)
	GetByReference(ctx context.Context, reference string) (*entity.ApprovalInstance, error)
	ListPendingFor(ctx context.Context, approverID string, limit int) ([]*entity.ApprovalInstance, error)
}

type approvalServiceImpl struct {
	instanceRepo port.InstanceRepository
	documentRepo port.DocumentRepository
	workflowRepo port.WorkflowRepository
	actionRepo   port.ActionRepository
	txManager    port.TransactionManager
	logger       Logger
}

// NewApprovalService creates a new ApprovalService
func NewApprovalService(
	instanceRepo port.InstanceRepository,
	documentRepo port.DocumentRepository,
	workflowRepo port.WorkflowRepository,
	actionRepo port.ActionRepository,
	txManager port.TransactionManager,
	logger Logger,
) ApprovalService {
	return &approvalServiceImpl{
		instanceRepo: instanceRepo,
		documentRepo: documentRepo,
		workflowRepo: workflowRepo,
		actionRepo:   actionRepo,
		txManager:    txManager,
		logger:       logger,
	}
}

func (s *approvalServiceImpl) Approve(ctx context.Context, reference string, req ActionRequest) (*entity.ApprovalInstance, error) {
	return s.act(ctx, reference, req, workflow.TriggerApprove)
}

func (s *approvalServiceImpl) Reject(ctx context.Context, reference string, req ActionRequest) (*entity.ApprovalInstance, error) {
	return s.act(ctx, reference, req, workflow.TriggerReject)
}

func (s *approvalServiceImpl) GetByReference(ctx context.Context, reference string) (*entity.ApprovalInstance, error) {
	instance, err := s.instanceRepo.GetByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	if instance == nil {
		return nil, port.ErrInstanceNotFound
	}
	return instance, nil
}

func (s *approvalServiceImpl) ListPendingFor(ctx context.Context, approverID string, limit int) ([]*entity.ApprovalInstance, error) {
	return s.instanceRepo.ListPendingByApprover(ctx, approverID, limit)
}

// act validates the actor and step, fires the state machine and persists
// the outcome. Shared by Approve and Reject: the two differ only in the
// trigger and in what happens on a non-last step.
func (s *approvalServiceImpl) act(ctx context.Context, reference string, req ActionRequest, trigger workflow.Trigger) (*entity.ApprovalInstance, error) {
	var result *entity.ApprovalInstance

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		instance, err := s.instanceRepo.GetByReference(txCtx, reference)
		if err != nil {
			return err
		}
		if instance == nil {
			return port.ErrInstanceNotFound
		}
		if instance.Status != entity.InstanceStatusPending {
			return fmt.Errorf("%w: instance %s is %s", ErrNotPending, reference, instance.Status)
		}
		if req.StepOrder != instance.CurrentStepOrder {
			return fmt.Errorf("%w: acting on step %d, current step is %d",
				ErrStepMismatch, req.StepOrder, instance.CurrentStepOrder)
		}

		doc, err := s.documentRepo.GetByID(txCtx, instance.DocumentID)
		if err != nil {
			return err
		}
		if doc == nil {
			return port.ErrDocumentNotFound
		}

		// The instance stays pinned to the definition it was resolved
		// against; admin edits after submission do not reroute it.
		def, err := s.workflowRepo.GetByID(txCtx, instance.WorkflowID)
		if err != nil {
			return err
		}
		if def == nil {
			return port.ErrWorkflowNotFound
		}

		step, ok := routing.StepAt(def, instance.CurrentStepOrder)
		if !ok {
			return fmt.Errorf("workflow %d has no step with order %d", def.ID, instance.CurrentStepOrder)
		}

		if !step.HasApprover(req.ActorUserID) {
			s.logger.Warn("Unauthorized approval action attempted",
				"instance", reference,
				"actor", req.ActorUserID,
				"step_order", step.StepOrder)
			return fmt.Errorf("%w: %s at step %d", ErrNotAuthorized, req.ActorUserID, step.StepOrder)
		}

		last := routing.IsLastStep(def, instance.CurrentStepOrder)
		machine := workflow.NewDocumentStateMachine(workflow.State(doc.Status), func(context.Context) bool {
			return last
		})
		if err := machine.Fire(txCtx, trigger); err != nil {
			return err
		}
		newDocStatus := machine.State().String()

		switch {
		case trigger == workflow.TriggerReject:
			if err := s.instanceRepo.Close(txCtx, instance.ID, entity.InstanceStatusRejected); err != nil {
				return err
			}
			if err := s.documentRepo.UpdateStatus(txCtx, doc.ID, newDocStatus); err != nil {
				return err
			}
			instance.Status = entity.InstanceStatusRejected
			if err := s.recordAction(txCtx, doc, instance, req, entity.ActionReject, doc.Status, newDocStatus); err != nil {
				return err
			}

		case last:
			if err := s.instanceRepo.Close(txCtx, instance.ID, entity.InstanceStatusApproved); err != nil {
				return err
			}
			if err := s.documentRepo.UpdateStatus(txCtx, doc.ID, newDocStatus); err != nil {
				return err
			}
			instance.Status = entity.InstanceStatusApproved
			if err := s.recordAction(txCtx, doc, instance, req, entity.ActionApprove, doc.Status, newDocStatus); err != nil {
				return err
			}

		default:
			next, _ := routing.NextStep(def, instance.CurrentStepOrder)
			target, err := chooseTarget(next, req.TargetUserID)
			if err != nil {
				return err
			}
			if err := s.instanceRepo.Advance(txCtx, instance.ID, next.StepOrder, target); err != nil {
				return err
			}
			instance.CurrentStepOrder = next.StepOrder
			instance.TargetApproverID = target
			if err := s.recordAction(txCtx, doc, instance, req, entity.ActionAdvance, doc.Status, newDocStatus); err != nil {
				return err
			}
		}

		result = instance
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Approval action processed",
		"instance", reference,
		"actor", req.ActorUserID,
		"trigger", trigger.String(),
		"instance_status", result.Status,
		"current_step", result.CurrentStepOrder)

	return result, nil
}

func (s *approvalServiceImpl) recordAction(ctx context.Context, doc *entity.Document, instance *entity.ApprovalInstance, req ActionRequest, actionType, previous, current string) error {
	stepOrder := req.StepOrder
	return s.actionRepo.Create(ctx, &entity.ApprovalAction{
		DocumentID:     doc.ID,
		InstanceID:     &instance.ID,
		ActorUserID:    req.ActorUserID,
		ActionType:     actionType,
		StepOrder:      &stepOrder,
		PreviousStatus: previous,
		NewStatus:      current,
		Remarks:        req.Remarks,
		Timestamp:      time.Now(),
	})
}
