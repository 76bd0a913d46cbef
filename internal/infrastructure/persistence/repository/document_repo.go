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

// DocumentRepository implements port.DocumentRepository
type DocumentRepository struct {
	db     *sqlite.DB
	logger *zap.Logger
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(db *sqlite.DB, logger *zap.Logger) port.DocumentRepository {
	return &DocumentRepository{
		db:     db,
		logger: logger,
	}
}

// Create registers a document row
func (r *DocumentRepository) Create(ctx context.Context, doc *entity.Document) error {
	query := `
		INSERT INTO documents (module, document_type, document_route, document_number,
			amount_cents, status, created_by)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.Executor(ctx).ExecContext(ctx, query,
		doc.Module,
		doc.DocumentType,
		doc.DocumentRoute,
		doc.DocumentNumber,
		doc.AmountCents,
		doc.Status,
		doc.CreatedBy,
	)
	if err != nil {
		r.logger.Error("Failed to create document", zap.Error(err))
		return fmt.Errorf("failed to create document: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	doc.ID = id
	return nil
}

// GetByID retrieves a document by ID, nil when absent
func (r *DocumentRepository) GetByID(ctx context.Context, id int64) (*entity.Document, error) {
	query := `
		SELECT id, module, document_type, document_route, document_number,
			amount_cents, status, created_by, created_at, updated_at
		FROM documents
		WHERE id = ?
	`

	var doc entity.Document
	var amount sql.NullInt64

	err := r.db.Executor(ctx).QueryRowContext(ctx, query, id).Scan(
		&doc.ID,
		&doc.Module,
		&doc.DocumentType,
		&doc.DocumentRoute,
		&doc.DocumentNumber,
		&amount,
		&doc.Status,
		&doc.CreatedBy,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get document", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get document: %w", err)
	}

	if amount.Valid {
		doc.AmountCents = &amount.Int64
	}
	return &doc, nil
}

// UpdateStatus sets the document status
func (r *DocumentRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	query := `UPDATE documents SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`

	result, err := r.db.Executor(ctx).ExecContext(ctx, query, status, id)
	if err != nil {
		r.logger.Error("Failed to update document status",
			zap.Int64("id", id), zap.String("status", status), zap.Error(err))
		return fmt.Errorf("failed to update document status: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return port.ErrDocumentNotFound
	}
	return nil
}

// Verify interface compliance
var _ port.DocumentRepository = (*DocumentRepository)(nil)
