package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/nimbuserp/approval-engine/internal/application/port"
	"github.com/nimbuserp/approval-engine/internal/domain/entity"
	"github.com/nimbuserp/approval-engine/internal/infrastructure/persistence/sqlite"
)

// InstanceRepository implements port.InstanceRepository
type InstanceRepository struct {
	db     *sqlite.DB
	logger *zap.Logger
}

// NewInstanceRepository creates a new instance repository
func NewInstanceRepository(db *sqlite.DB, logger *zap.Logger) port.InstanceRepository {
	return &InstanceRepository{
		db:     db,
		logger: logger,
	}
}

const instanceColumns = `id, reference, document_id, workflow_id, current_step_order,
	target_approver_id, amount_cents, status, submitted_by, submitted_at,
	closed_at, created_at, updated_at`

// Create inserts a new PENDING instance. The partial unique index on
// (document_id) WHERE status = 'PENDING' makes the second of two
// concurrent submissions fail here, which surfaces as
// port.ErrSubmissionPending.
func (r *InstanceRepository) Create(ctx context.Context, instance *entity.ApprovalInstance) error {
	query := `
		INSERT INTO approval_instances (reference, document_id, workflow_id,
			current_step_order, target_approver_id, amount_cents, status,
			submitted_by, submitted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.Executor(ctx).ExecContext(ctx, query,
		instance.Reference,
		instance.DocumentID,
		instance.WorkflowID,
		instance.CurrentStepOrder,
		instance.TargetApproverID,
		instance.AmountCents,
		instance.Status,
		instance.SubmittedBy,
		instance.SubmittedAt,
	)
	if err != nil {
		// Only the partial unique index on open instances means "already
		// pending". Any other constraint failure (foreign key, NOT NULL,
		// reference collision) is a store fault and must surface as one.
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) &&
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique &&
			strings.Contains(sqliteErr.Error(), "approval_instances.document_id") {
			return port.ErrSubmissionPending
		}
		r.logger.Error("Failed to create approval instance", zap.Error(err))
		return fmt.Errorf("failed to create approval instance: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	instance.ID = id
	return nil
}

// GetByReference retrieves an instance by its UUID reference, nil when absent
func (r *InstanceRepository) GetByReference(ctx context.Context, reference string) (*entity.ApprovalInstance, error) {
	query := fmt.Sprintf(`SELECT %s FROM approval_instances WHERE reference = ?`, instanceColumns)

	instance, err := r.scanOne(r.db.Executor(ctx).QueryRowContext(ctx, query, reference))
	if err != nil {
		r.logger.Error("Failed to get instance by reference", zap.String("reference", reference), zap.Error(err))
		return nil, err
	}
	return instance, nil
}

// GetOpenByDocumentID retrieves the document's single PENDING instance,
// nil when none is open.
func (r *InstanceRepository) GetOpenByDocumentID(ctx context.Context, documentID int64) (*entity.ApprovalInstance, error) {
	query := fmt.Sprintf(`SELECT %s FROM approval_instances WHERE document_id = ? AND status = ?`, instanceColumns)

	instance, err := r.scanOne(r.db.Executor(ctx).QueryRowContext(ctx, query, documentID, entity.InstanceStatusPending))
	if err != nil {
		r.logger.Error("Failed to get open instance", zap.Int64("document_id", documentID), zap.Error(err))
		return nil, err
	}
	return instance, nil
}

// Advance moves an open instance to the next step and retargets it
func (r *InstanceRepository) Advance(ctx context.Context, id int64, stepOrder int, targetApproverID string) error {
	query := `
		UPDATE approval_instances
		SET current_step_order = ?, target_approver_id = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND status = ?
	`

	result, err := r.db.Executor(ctx).ExecContext(ctx, query, stepOrder, targetApproverID, id, entity.InstanceStatusPending)
	if err != nil {
		r.logger.Error("Failed to advance instance", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to advance instance: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return port.ErrInstanceNotFound
	}
	return nil
}

// Close sets a terminal status and stamps the closing time
func (r *InstanceRepository) Close(ctx context.Context, id int64, status string) error {
	query := `
		UPDATE approval_instances
		SET status = ?, closed_at = CURRENT_TIMESTAMP, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND status = ?
	`

	result, err := r.db.Executor(ctx).ExecContext(ctx, query, status, id, entity.InstanceStatusPending)
	if err != nil {
		r.logger.Error("Failed to close instance", zap.Int64("id", id), zap.String("status", status), zap.Error(err))
		return fmt.Errorf("failed to close instance: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return port.ErrInstanceNotFound
	}
	return nil
}

// ListPendingByApprover returns the open instances targeting an approver,
// newest first.
func (r *InstanceRepository) ListPendingByApprover(ctx context.Context, approverID string, limit int) ([]*entity.ApprovalInstance, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM approval_instances
		WHERE target_approver_id = ? AND status = ?
		ORDER BY submitted_at DESC
		LIMIT ?
	`, instanceColumns)

	rows, err := r.db.Executor(ctx).QueryContext(ctx, query, approverID, entity.InstanceStatusPending, limit)
	if err != nil {
		r.logger.Error("Failed to list pending instances", zap.String("approver", approverID), zap.Error(err))
		return nil, fmt.Errorf("failed to list pending instances: %w", err)
	}
	defer rows.Close()

	var instances []*entity.ApprovalInstance
	for rows.Next() {
		instance, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		instances = append(instances, instance)
	}
	return instances, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *InstanceRepository) scanOne(row *sql.Row) (*entity.ApprovalInstance, error) {
	instance, err := r.scanRow(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return instance, nil
}

func (r *InstanceRepository) scanRow(row rowScanner) (*entity.ApprovalInstance, error) {
	var instance entity.ApprovalInstance
	var amount sql.NullInt64
	var closedAt sql.NullTime

	err := row.Scan(
		&instance.ID,
		&instance.Reference,
		&instance.DocumentID,
		&instance.WorkflowID,
		&instance.CurrentStepOrder,
		&instance.TargetApproverID,
		&amount,
		&instance.Status,
		&instance.SubmittedBy,
		&instance.SubmittedAt,
		&closedAt,
		&instance.CreatedAt,
		&instance.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan approval instance: %w", err)
	}

	if amount.Valid {
		instance.AmountCents = &amount.Int64
	}
	if closedAt.Valid {
		instance.ClosedAt = &closedAt.Time
	}
	return &instance, nil
}

// Verify interface compliance
var _ port.InstanceRepository = (*InstanceRepository)(nil)
