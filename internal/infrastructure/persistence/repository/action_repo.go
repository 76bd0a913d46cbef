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

// ActionRepository implements port.ActionRepository. Rows are append-only
// audit records and are never updated or deleted.
type ActionRepository struct {
	db     *sqlite.DB
	logger *zap.Logger
}

// NewActionRepository creates a new action repository
func NewActionRepository(db *sqlite.DB, logger *zap.Logger) port.ActionRepository {
	return &ActionRepository{
		db:     db,
		logger: logger,
	}
}

// Create appends an audit record
func (r *ActionRepository) Create(ctx context.Context, action *entity.ApprovalAction) error {
	query := `
		INSERT INTO approval_actions (document_id, instance_id, actor_user_id,
			action_type, step_order, previous_status, new_status, remarks, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.Executor(ctx).ExecContext(ctx, query,
		action.DocumentID,
		action.InstanceID,
		action.ActorUserID,
		action.ActionType,
		action.StepOrder,
		action.PreviousStatus,
		action.NewStatus,
		action.Remarks,
		action.Timestamp,
	)
	if err != nil {
		r.logger.Error("Failed to create approval action", zap.Error(err))
		return fmt.Errorf("failed to create approval action: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	action.ID = id
	return nil
}

// ListByDocumentID returns a document's audit trail in action order
func (r *ActionRepository) ListByDocumentID(ctx context.Context, documentID int64) ([]*entity.ApprovalAction, error) {
	query := `
		SELECT id, document_id, instance_id, actor_user_id, action_type,
			step_order, previous_status, new_status, remarks, timestamp
		FROM approval_actions
		WHERE document_id = ?
		ORDER BY timestamp ASC, id ASC
	`

	rows, err := r.db.Executor(ctx).QueryContext(ctx, query, documentID)
	if err != nil {
		r.logger.Error("Failed to list approval actions", zap.Int64("document_id", documentID), zap.Error(err))
		return nil, fmt.Errorf("failed to list approval actions: %w", err)
	}
	defer rows.Close()

	var actions []*entity.ApprovalAction
	for rows.Next() {
		var action entity.ApprovalAction
		var instanceID sql.NullInt64
		var stepOrder sql.NullInt64

		if err := rows.Scan(
			&action.ID,
			&action.DocumentID,
			&instanceID,
			&action.ActorUserID,
			&action.ActionType,
			&stepOrder,
			&action.PreviousStatus,
			&action.NewStatus,
			&action.Remarks,
			&action.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("failed to scan approval action: %w", err)
		}

		if instanceID.Valid {
			action.InstanceID = &instanceID.Int64
		}
		if stepOrder.Valid {
			order := int(stepOrder.Int64)
			action.StepOrder = &order
		}
		actions = append(actions, &action)
	}
	return actions, rows.Err()
}

// Verify interface compliance
var _ port.ActionRepository = (*ActionRepository)(nil)
