package service

import (
	"context"
	"fmt"
	"time"

	"github.com/nimbuserp/approval-engine/internal/application/port"
	"github.com/nimbuserp/approval-engine/internal/domain/entity"
	"github.com/nimbuserp/approval-engine/internal/domain/workflow"
)

// DocumentService hosts the document registry on behalf of the owning
// modules: registering drafts, reading state, the post/cancel transitions
// the modules perform after approval, and the audit trail.
type DocumentService interface {
	Register(ctx context.Context, doc *entity.Document) error
	Get(ctx context.Context, id int64) (*entity.Document, error)
	Post(ctx context.Context, id int64, actorUserID string) (*entity.Document, error)
	Cancel(ctx context.Context, id int64, actorUserID string) (*entity.Document, error)
	History(ctx context.Context, id int64) ([]*entity.ApprovalAction, error)
}

type documentServiceImpl struct {
	documentRepo port.DocumentRepository
	actionRepo   port.ActionRepository
	txManager    port.TransactionManager
	logger       Logger
}

// NewDocumentService creates a new DocumentService
func NewDocumentService(
	documentRepo port.DocumentRepository,
	actionRepo port.ActionRepository,
	txManager port.TransactionManager,
	logger Logger,
) DocumentService {
	return &documentServiceImpl{
		documentRepo: documentRepo,
		actionRepo:   actionRepo,
		txManager:    txManager,
		logger:       logger,
	}
}

func (s *documentServiceImpl) Register(ctx context.Context, doc *entity.Document) error {
	if doc.Module == "" || doc.DocumentType == "" {
		return fmt.Errorf("document module and type are required")
	}
	doc.Status = entity.DocStatusDraft

	if err := s.documentRepo.Create(ctx, doc); err != nil {
		s.logger.Error("Failed to register document", "error", err, "module", doc.Module)
		return err
	}

	s.logger.Info("Document registered",
		"id", doc.ID,
		"module", doc.Module,
		"type", doc.DocumentType,
		"route", doc.DocumentRoute)
	return nil
}

func (s *documentServiceImpl) Get(ctx context.Context, id int64) (*entity.Document, error) {
	doc, err := s.documentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, port.ErrDocumentNotFound
	}
	return doc, nil
}

func (s *documentServiceImpl) Post(ctx context.Context, id int64, actorUserID string) (*entity.Document, error) {
	return s.transition(ctx, id, actorUserID, workflow.TriggerPost, entity.ActionPost)
}

func (s *documentServiceImpl) Cancel(ctx context.Context, id int64, actorUserID string) (*entity.Document, error) {
	return s.transition(ctx, id, actorUserID, workflow.TriggerCancel, entity.ActionCancel)
}

func (s *documentServiceImpl) History(ctx context.Context, id int64) ([]*entity.ApprovalAction, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.actionRepo.ListByDocumentID(ctx, id)
}

func (s *documentServiceImpl) transition(ctx context.Context, id int64, actorUserID string, trigger workflow.Trigger, actionType string) (*entity.Document, error) {
	var result *entity.Document

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		doc, err := s.documentRepo.GetByID(txCtx, id)
		if err != nil {
			return err
		}
		if doc == nil {
			return port.ErrDocumentNotFound
		}

		machine := workflow.NewDocumentStateMachine(workflow.State(doc.Status), nil)
		if err := machine.Fire(txCtx, trigger); err != nil {
			return fmt.Errorf("%w: %s from %s", ErrInvalidDocumentStatus, trigger, doc.Status)
		}
		newStatus := machine.State().String()

		if err := s.documentRepo.UpdateStatus(txCtx, id, newStatus); err != nil {
			return err
		}
		if err := s.actionRepo.Create(txCtx, &entity.ApprovalAction{
			DocumentID:     id,
			ActorUserID:    actorUserID,
			ActionType:     actionType,
			PreviousStatus: doc.Status,
			NewStatus:      newStatus,
			Timestamp:      time.Now(),
		}); err != nil {
			return err
		}

		doc.Status = newStatus
		result = doc
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Document transitioned",
		"id", id,
		"trigger", trigger.String(),
		"status", result.Status,
		"actor", actorUserID)
	return result, nil
}
