package service

import (
	"context"
	"time"

	"github.com/nimbuserp/approval-engine/internal/domain/entity"
)

// Hand-rolled mocks over the port interfaces. Unset funcs fall back to
// benign defaults so each test only wires what it cares about.

type mockDocumentRepo struct {
	docs             map[int64]*entity.Document
	updateStatusFunc func(ctx context.Context, id int64, status string) error
	statusUpdates    []string
}

func newMockDocumentRepo(docs ...*entity.Document) *mockDocumentRepo {
	m := &mockDocumentRepo{docs: make(map[int64]*entity.Document)}
	for _, d := range docs {
		m.docs[d.ID] = d
	}
	return m
}

func (m *mockDocumentRepo) Create(ctx context.Context, doc *entity.Document) error {
	doc.ID = int64(len(m.docs) + 1)
	m.docs[doc.ID] = doc
	return nil
}

func (m *mockDocumentRepo) GetByID(ctx context.Context, id int64) (*entity.Document, error) {
	return m.docs[id], nil
}

func (m *mockDocumentRepo) UpdateStatus(ctx context.Context, id int64, status string) error {
	if m.updateStatusFunc != nil {
		return m.updateStatusFunc(ctx, id, status)
	}
	if doc, ok := m.docs[id]; ok {
		doc.Status = status
	}
	m.statusUpdates = append(m.statusUpdates, status)
	return nil
}

type mockInstanceRepo struct {
	instances  map[string]*entity.ApprovalInstance
	createFunc func(ctx context.Context, instance *entity.ApprovalInstance) error
	advanced   []int
	closed     []string
}

func newMockInstanceRepo(instances ...*entity.ApprovalInstance) *mockInstanceRepo {
	m := &mockInstanceRepo{instances: make(map[string]*entity.ApprovalInstance)}
	for _, in := range instances {
		m.instances[in.Reference] = in
	}
	return m
}

func (m *mockInstanceRepo) Create(ctx context.Context, instance *entity.ApprovalInstance) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, instance)
	}
	instance.ID = int64(len(m.instances) + 1)
	m.instances[instance.Reference] = instance
	return nil
}

func (m *mockInstanceRepo) GetByReference(ctx context.Context, reference string) (*entity.ApprovalInstance, error) {
	return m.instances[reference], nil
}

func (m *mockInstanceRepo) GetOpenByDocumentID(ctx context.Context, documentID int64) (*entity.ApprovalInstance, error) {
	for _, in := range m.instances {
		if in.DocumentID == documentID && in.Status == entity.InstanceStatusPending {
			return in, nil
		}
	}
	return nil, nil
}

func (m *mockInstanceRepo) Advance(ctx context.Context, id int64, stepOrder int, targetApproverID string) error {
	m.advanced = append(m.advanced, stepOrder)
	for _, in := range m.instances {
		if in.ID == id {
			in.CurrentStepOrder = stepOrder
			in.TargetApproverID = targetApproverID
		}
	}
	return nil
}

func (m *mockInstanceRepo) Close(ctx context.Context, id int64, status string) error {
	m.closed = append(m.closed, status)
	now := time.Now()
	for _, in := range m.instances {
		if in.ID == id {
			in.Status = status
			in.ClosedAt = &now
		}
	}
	return nil
}

func (m *mockInstanceRepo) ListPendingByApprover(ctx context.Context, approverID string, limit int) ([]*entity.ApprovalInstance, error) {
	var out []*entity.ApprovalInstance
	for _, in := range m.instances {
		if in.Status == entity.InstanceStatusPending && in.TargetApproverID == approverID {
			out = append(out, in)
		}
	}
	return out, nil
}

type mockActionRepo struct {
	actions []*entity.ApprovalAction
}

func (m *mockActionRepo) Create(ctx context.Context, action *entity.ApprovalAction) error {
	action.ID = int64(len(m.actions) + 1)
	m.actions = append(m.actions, action)
	return nil
}

func (m *mockActionRepo) ListByDocumentID(ctx context.Context, documentID int64) ([]*entity.ApprovalAction, error) {
	var out []*entity.ApprovalAction
	for _, a := range m.actions {
		if a.DocumentID == documentID {
			out = append(out, a)
		}
	}
	return out, nil
}

type mockWorkflowRepo struct {
	defs       map[int64]*entity.WorkflowDefinition
	createFunc func(ctx context.Context, def *entity.WorkflowDefinition) error
	updateFunc func(ctx context.Context, def *entity.WorkflowDefinition) error
}

func newMockWorkflowRepo(defs ...*entity.WorkflowDefinition) *mockWorkflowRepo {
	m := &mockWorkflowRepo{defs: make(map[int64]*entity.WorkflowDefinition)}
	for _, d := range defs {
		m.defs[d.ID] = d
	}
	return m
}

func (m *mockWorkflowRepo) Create(ctx context.Context, def *entity.WorkflowDefinition) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, def)
	}
	def.ID = int64(len(m.defs) + 1)
	m.defs[def.ID] = def
	return nil
}

func (m *mockWorkflowRepo) Update(ctx context.Context, def *entity.WorkflowDefinition) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, def)
	}
	m.defs[def.ID] = def
	return nil
}

func (m *mockWorkflowRepo) GetByID(ctx context.Context, id int64) (*entity.WorkflowDefinition, error) {
	return m.defs[id], nil
}

func (m *mockWorkflowRepo) List(ctx context.Context) ([]entity.WorkflowDefinition, error) {
	var out []entity.WorkflowDefinition
	for _, d := range m.defs {
		out = append(out, *d)
	}
	return out, nil
}

func (m *mockWorkflowRepo) ListActive(ctx context.Context) ([]entity.WorkflowDefinition, error) {
	var out []entity.WorkflowDefinition
	for _, d := range m.defs {
		if d.IsActive {
			out = append(out, *d)
		}
	}
	return out, nil
}

type mockDefinitionCache struct {
	defs        []entity.WorkflowDefinition
	invalidated int
}

func (m *mockDefinitionCache) ListActive(ctx context.Context) ([]entity.WorkflowDefinition, error) {
	return m.defs, nil
}

func (m *mockDefinitionCache) Invalidate() {
	m.invalidated++
}

// mockTxManager runs the function directly, no transaction semantics.
type mockTxManager struct{}

func (m *mockTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// nopLogger satisfies the service Logger without output.
type nopLogger struct{}

func (nopLogger) Info(msg string, keysAndValues ...interface{})  {}
func (nopLogger) Warn(msg string, keysAndValues ...interface{})  {}
func (nopLogger) Error(msg string, keysAndValues ...interface{}) {}
