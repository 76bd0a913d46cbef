package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/nimbuserp/approval-engine/internal/application/port"
	"github.com/nimbuserp/approval-engine/internal/domain/entity"
	"github.com/nimbuserp/approval-engine/internal/infrastructure/persistence/sqlite"
)

// WorkflowRepository implements port.WorkflowRepository over the
// workflow_definitions, workflow_steps and workflow_step_approvers tables.
type WorkflowRepository struct {
	db     *sqlite.DB
	logger *zap.Logger
}

// NewWorkflowRepository creates a new workflow repository
func NewWorkflowRepository(db *sqlite.DB, logger *zap.Logger) port.WorkflowRepository {
	return &WorkflowRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a definition with its steps and approver sets atomically.
func (r *WorkflowRepository) Create(ctx context.Context, def *entity.WorkflowDefinition) error {
	return r.db.WithTransaction(ctx, func(txCtx context.Context) error {
		query := `
			INSERT INTO workflow_definitions (name, document_type, document_route, is_active)
			VALUES (?, ?, ?, ?)
		`
		result, err := r.db.Executor(txCtx).ExecContext(txCtx, query,
			def.Name, def.DocumentType, def.DocumentRoute, def.IsActive)
		if err != nil {
			r.logger.Error("Failed to create workflow definition", zap.Error(err))
			return fmt.Errorf("failed to create workflow definition: %w", err)
		}

		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get last insert id: %w", err)
		}
		def.ID = id

		return r.insertSteps(txCtx, def)
	})
}

// Update rewrites a definition and replaces its step list. Open instances
// are unaffected: they stay pinned to the definition by id, and the step
// rows they reference are replaced in the same transaction.
func (r *WorkflowRepository) Update(ctx context.Context, def *entity.WorkflowDefinition) error {
	return r.db.WithTransaction(ctx, func(txCtx context.Context) error {
		query := `
			UPDATE workflow_definitions
			SET name = ?, document_type = ?, document_route = ?, is_active = ?,
				updated_at = CURRENT_TIMESTAMP
			WHERE id = ?
		`
		result, err := r.db.Executor(txCtx).ExecContext(txCtx, query,
			def.Name, def.DocumentType, def.DocumentRoute, def.IsActive, def.ID)
		if err != nil {
			r.logger.Error("Failed to update workflow definition", zap.Int64("id", def.ID), zap.Error(err))
			return fmt.Errorf("failed to update workflow definition: %w", err)
		}
		if n, err := result.RowsAffected(); err == nil && n == 0 {
			return port.ErrWorkflowNotFound
		}

		// Approver rows go with their steps via ON DELETE CASCADE.
		if _, err := r.db.Executor(txCtx).ExecContext(txCtx,
			`DELETE FROM workflow_steps WHERE workflow_id = ?`, def.ID); err != nil {
			return fmt.Errorf("failed to clear workflow steps: %w", err)
		}

		return r.insertSteps(txCtx, def)
	})
}

func (r *WorkflowRepository) insertSteps(ctx context.Context, def *entity.WorkflowDefinition) error {
	for i := range def.Steps {
		step := &def.Steps[i]
		result, err := r.db.Executor(ctx).ExecContext(ctx, `
			INSERT INTO workflow_steps (workflow_id, step_order, step_name, approval_limit_cents)
			VALUES (?, ?, ?, ?)
		`, def.ID, step.StepOrder, step.StepName, step.ApprovalLimitCents)
		if err != nil {
			return fmt.Errorf("failed to create workflow step: %w", err)
		}

		stepID, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get last insert id: %w", err)
		}
		step.ID = stepID
		step.WorkflowID = def.ID

		for pos, approver := range step.Approvers {
			if _, err := r.db.Executor(ctx).ExecContext(ctx, `
				INSERT INTO workflow_step_approvers (step_id, user_id, display_name, position)
				VALUES (?, ?, ?, ?)
			`, stepID, approver.UserID, approver.DisplayName, pos); err != nil {
				return fmt.Errorf("failed to create step approver: %w", err)
			}
		}
	}
	return nil
}

// GetByID retrieves a definition with its ordered steps and approver sets.
func (r *WorkflowRepository) GetByID(ctx context.Context, id int64) (*entity.WorkflowDefinition, error) {
	query := `
		SELECT id, name, document_type, document_route, is_active, created_at, updated_at
		FROM workflow_definitions
		WHERE id = ?
	`

	var def entity.WorkflowDefinition
	err := r.db.Executor(ctx).QueryRowContext(ctx, query, id).Scan(
		&def.ID,
		&def.Name,
		&def.DocumentType,
		&def.DocumentRoute,
		&def.IsActive,
		&def.CreatedAt,
		&def.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get workflow definition", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get workflow definition: %w", err)
	}

	if err := r.loadSteps(ctx, &def); err != nil {
		return nil, err
	}
	return &def, nil
}

// List returns all definitions, active and inactive.
func (r *WorkflowRepository) List(ctx context.Context) ([]entity.WorkflowDefinition, error) {
	return r.list(ctx, `
		SELECT id, name, document_type, document_route, is_active, created_at, updated_at
		FROM workflow_definitions
		ORDER BY id ASC
	`)
}

// ListActive returns active definitions only.
func (r *WorkflowRepository) ListActive(ctx context.Context) ([]entity.WorkflowDefinition, error) {
	return r.list(ctx, `
		SELECT id, name, document_type, document_route, is_active, created_at, updated_at
		FROM workflow_definitions
		WHERE is_active = 1
		ORDER BY id ASC
	`)
}

func (r *WorkflowRepository) list(ctx context.Context, query string) ([]entity.WorkflowDefinition, error) {
	rows, err := r.db.Executor(ctx).QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list workflow definitions", zap.Error(err))
		return nil, fmt.Errorf("failed to list workflow definitions: %w", err)
	}
	defer rows.Close()

	var defs []entity.WorkflowDefinition
	for rows.Next() {
		var def entity.WorkflowDefinition
		if err := rows.Scan(
			&def.ID,
			&def.Name,
			&def.DocumentType,
			&def.DocumentRoute,
			&def.IsActive,
			&def.CreatedAt,
			&def.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan workflow definition: %w", err)
		}
		defs = append(defs, def)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range defs {
		if err := r.loadSteps(ctx, &defs[i]); err != nil {
			return nil, err
		}
	}
	return defs, nil
}

func (r *WorkflowRepository) loadSteps(ctx context.Context, def *entity.WorkflowDefinition) error {
	rows, err := r.db.Executor(ctx).QueryContext(ctx, `
		SELECT id, workflow_id, step_order, step_name, approval_limit_cents
		FROM workflow_steps
		WHERE workflow_id = ?
		ORDER BY step_order ASC
	`, def.ID)
	if err != nil {
		return fmt.Errorf("failed to load workflow steps: %w", err)
	}
	defer rows.Close()

	def.Steps = nil
	for rows.Next() {
		var step entity.WorkflowStep
		var limit sql.NullInt64
		if err := rows.Scan(&step.ID, &step.WorkflowID, &step.StepOrder, &step.StepName, &limit); err != nil {
			return fmt.Errorf("failed to scan workflow step: %w", err)
		}
		if limit.Valid {
			step.ApprovalLimitCents = &limit.Int64
		}
		def.Steps = append(def.Steps, step)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for i := range def.Steps {
		if err := r.loadApprovers(ctx, &def.Steps[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *WorkflowRepository) loadApprovers(ctx context.Context, step *entity.WorkflowStep) error {
	rows, err := r.db.Executor(ctx).QueryContext(ctx, `
		SELECT user_id, display_name
		FROM workflow_step_approvers
		WHERE step_id = ?
		ORDER BY position ASC
	`, step.ID)
	if err != nil {
		return fmt.Errorf("failed to load step approvers: %w", err)
	}
	defer rows.Close()

	step.Approvers = nil
	for rows.Next() {
		var approver entity.Approver
		if err := rows.Scan(&approver.UserID, &approver.DisplayName); err != nil {
			return fmt.Errorf("failed to scan step approver: %w", err)
		}
		step.Approvers = append(step.Approvers, approver)
	}
	return rows.Err()
}

// Verify interface compliance
var _ port.WorkflowRepository = (*WorkflowRepository)(nil)
