package service

import (
	"context"
	"fmt"

	"github.com/nimbuserp/approval-engine/internal/application/port"
	"github.com/nimbuserp/approval-engine/internal/domain/entity"
)

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// WorkflowService manages workflow definitions: the admin edit path and
// the read path consumed by UIs. Writes bust the definition cache so the
// resolver never routes against stale configuration.
type WorkflowService interface {
	List(ctx context.Context) ([]entity.WorkflowDefinition, error)
	Get(ctx context.Context, id int64) (*entity.WorkflowDefinition, error)
	Create(ctx context.Context, def *entity.WorkflowDefinition) error
	Update(ctx context.Context, def *entity.WorkflowDefinition) error
}

type workflowServiceImpl struct {
	workflowRepo port.WorkflowRepository
	cache        port.DefinitionCache
	logger       Logger
}

// NewWorkflowService creates a new WorkflowService
func NewWorkflowService(workflowRepo port.WorkflowRepository, cache port.DefinitionCache, logger Logger) WorkflowService {
	return &workflowServiceImpl{
		workflowRepo: workflowRepo,
		cache:        cache,
		logger:       logger,
	}
}

func (s *workflowServiceImpl) List(ctx context.Context) ([]entity.WorkflowDefinition, error) {
	defs, err := s.workflowRepo.List(ctx)
	if err != nil {
		s.logger.Error("Failed to list workflow definitions", "error", err)
		return nil, err
	}
	return defs, nil
}

func (s *workflowServiceImpl) Get(ctx context.Context, id int64) (*entity.WorkflowDefinition, error) {
	def, err := s.workflowRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("Failed to get workflow definition", "error", err, "id", id)
		return nil, err
	}
	return def, nil
}

func (s *workflowServiceImpl) Create(ctx context.Context, def *entity.WorkflowDefinition) error {
	if err := validateDefinition(def); err != nil {
		return err
	}

	if err := s.workflowRepo.Create(ctx, def); err != nil {
		s.logger.Error("Failed to create workflow definition", "error", err, "name", def.Name)
		return err
	}

	s.cache.Invalidate()
	s.logger.Info("Workflow definition created", "id", def.ID, "name", def.Name, "route", def.DocumentRoute)
	return nil
}

func (s *workflowServiceImpl) Update(ctx context.Context, def *entity.WorkflowDefinition) error {
	if err := validateDefinition(def); err != nil {
		return err
	}

	if err := s.workflowRepo.Update(ctx, def); err != nil {
		s.logger.Error("Failed to update workflow definition", "error", err, "id", def.ID)
		return err
	}

	s.cache.Invalidate()
	s.logger.Info("Workflow definition updated", "id", def.ID, "name", def.Name, "active", def.IsActive)
	return nil
}

// validateDefinition enforces the structural invariants of a workflow:
// steps ordered 1-based with unique orders, every step with a non-empty
// approver set.
func validateDefinition(def *entity.WorkflowDefinition) error {
	if def.Name == "" {
		return fmt.Errorf("workflow name is required")
	}
	if def.DocumentType == "" && def.DocumentRoute == "" {
		return fmt.Errorf("workflow must carry a document type or a document route")
	}

	seen := make(map[int]bool, len(def.Steps))
	for i := range def.Steps {
		step := &def.Steps[i]
		if step.StepOrder < 1 {
			return fmt.Errorf("step %q: order must be 1-based, got %d", step.StepName, step.StepOrder)
		}
		if seen[step.StepOrder] {
			return fmt.Errorf("step order %d is duplicated", step.StepOrder)
		}
		seen[step.StepOrder] = true
		if len(step.Approvers) == 0 {
			return fmt.Errorf("step %q: approver set must not be empty", step.StepName)
		}
	}
	return nil
}
