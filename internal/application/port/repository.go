package port

import (
	"context"

	"github.com/nimbuserp/approval-engine/internal/domain/entity"
)

// WorkflowRepository defines persistence operations for workflow
// definitions, their steps and approver sets. Definitions are long-lived
// reference data edited by administrators.
type WorkflowRepository interface {
	Create(ctx context.Context, def *entity.WorkflowDefinition) error
	Update(ctx context.Context, def *entity.WorkflowDefinition) error
	GetByID(ctx context.Context, id int64) (*entity.WorkflowDefinition, error)
	// List returns all definitions, active and inactive, steps included.
	List(ctx context.Context) ([]entity.WorkflowDefinition, error)
	// ListActive returns only active definitions, steps included.
	ListActive(ctx context.Context) ([]entity.WorkflowDefinition, error)
}

// DefinitionCache fronts WorkflowRepository reads of active definitions
// with a read-through cache. Administrators editing a workflow must bust
// the cache through Invalidate.
type DefinitionCache interface {
	ListActive(ctx context.Context) ([]entity.WorkflowDefinition, error)
	Invalidate()
}

// DocumentRepository defines persistence operations for the document
// registry rows owned by the originating document modules.
type DocumentRepository interface {
	Create(ctx context.Context, doc *entity.Document) error
	GetByID(ctx context.Context, id int64) (*entity.Document, error)
	UpdateStatus(ctx context.Context, id int64, status string) error
}

// InstanceRepository defines persistence operations for ApprovalInstance.
// Rows are append/mutate-in-place audit records: one open row per pending
// approval plus historical closed rows, never deleted.
type InstanceRepository interface {
	// Create inserts a new PENDING instance. Returns ErrSubmissionPending
	// when the document already has an open instance (enforced by a
	// uniqueness constraint, not application-level locking).
	Create(ctx context.Context, instance *entity.ApprovalInstance) error
	GetByReference(ctx context.Context, reference string) (*entity.ApprovalInstance, error)
	GetOpenByDocumentID(ctx context.Context, documentID int64) (*entity.ApprovalInstance, error)
	// Advance moves an open instance to the next step and retargets it.
	Advance(ctx context.Context, id int64, stepOrder int, targetApproverID string) error
	// Close sets a terminal instance status and stamps the closing time.
	Close(ctx context.Context, id int64, status string) error
	ListPendingByApprover(ctx context.Context, approverID string, limit int) ([]*entity.ApprovalInstance, error)
}

// ActionRepository defines persistence for the append-only audit trail.
type ActionRepository interface {
	Create(ctx context.Context, action *entity.ApprovalAction) error
	ListByDocumentID(ctx context.Context, documentID int64) ([]*entity.ApprovalAction, error)
}

// TransactionManager executes a function within a storage transaction.
// Nested calls reuse the surrounding transaction.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
