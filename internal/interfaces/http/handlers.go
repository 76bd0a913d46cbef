package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nimbuserp/approval-engine/internal/application/port"
	"github.com/nimbuserp/approval-engine/internal/application/service"
	"github.com/nimbuserp/approval-engine/internal/domain/entity"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	workflowService   service.WorkflowService
	documentService   service.DocumentService
	submissionService service.SubmissionService
	approvalService   service.ApprovalService
	logger            Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	workflowService service.WorkflowService,
	documentService service.DocumentService,
	submissionService service.SubmissionService,
	approvalService service.ApprovalService,
	logger Logger,
) *Handlers {
	return &Handlers{
		workflowService:   workflowService,
		documentService:   documentService,
		submissionService: submissionService,
		approvalService:   approvalService,
		logger:            logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// RegisterDocumentRequest is the body for POST /api/documents
type RegisterDocumentRequest struct {
	Module         string `json:"module" binding:"required"`
	DocumentType   string `json:"document_type" binding:"required"`
	DocumentRoute  string `json:"document_route"`
	DocumentNumber string `json:"document_number"`
	AmountCents    *int64 `json:"amount_cents"`
	CreatedBy      string `json:"created_by" binding:"required"`
}

// SubmitDocumentRequest is the body for POST /api/documents/:id/submit
type SubmitDocumentRequest struct {
	AmountCents  *int64 `json:"amount_cents"`
	SubmittedBy  string `json:"submitted_by" binding:"required"`
	WorkflowID   *int64 `json:"workflow_id"`
	TargetUserID string `json:"target_user_id"`
}

// ActionInstanceRequest is the body for approve/reject on an instance
type ActionInstanceRequest struct {
	ActorUserID  string `json:"actor_user_id" binding:"required"`
	StepOrder    int    `json:"step_order" binding:"required"`
	TargetUserID string `json:"target_user_id"`
	Remarks      string `json:"remarks"`
}

// TransitionDocumentRequest is the body for post/cancel on a document
type TransitionDocumentRequest struct {
	ActorUserID string `json:"actor_user_id" binding:"required"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: HealthResponse{
			Status:    "healthy",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Version:   "1.0.0",
		},
	})
}

// ListWorkflows handles GET /api/workflows
func (h *Handlers) ListWorkflows(c *gin.Context) {
	defs, err := h.workflowService.List(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: defs})
}

// GetWorkflow handles GET /api/workflows/:id
func (h *Handlers) GetWorkflow(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	def, err := h.workflowService.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	if def == nil {
		h.fail(c, port.ErrWorkflowNotFound)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: def})
}

// CreateWorkflow handles POST /api/workflows
func (h *Handlers) CreateWorkflow(c *gin.Context) {
	var def entity.WorkflowDefinition
	if err := c.ShouldBindJSON(&def); err != nil {
		h.badRequest(c, err)
		return
	}

	if err := h.workflowService.Create(c.Request.Context(), &def); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, Response{Success: true, Data: def})
}

// UpdateWorkflow handles PUT /api/workflows/:id
func (h *Handlers) UpdateWorkflow(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	var def entity.WorkflowDefinition
	if err := c.ShouldBindJSON(&def); err != nil {
		h.badRequest(c, err)
		return
	}
	def.ID = id

	if err := h.workflowService.Update(c.Request.Context(), &def); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: def})
}

// RegisterDocument handles POST /api/documents
func (h *Handlers) RegisterDocument(c *gin.Context) {
	var req RegisterDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	doc := &entity.Document{
		Module:         req.Module,
		DocumentType:   req.DocumentType,
		DocumentRoute:  req.DocumentRoute,
		DocumentNumber: req.DocumentNumber,
		AmountCents:    req.AmountCents,
		CreatedBy:      req.CreatedBy,
	}
	if err := h.documentService.Register(c.Request.Context(), doc); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, Response{Success: true, Data: doc})
}

// GetDocument handles GET /api/documents/:id
func (h *Handlers) GetDocument(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	doc, err := h.documentService.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: doc})
}

// DocumentHistory handles GET /api/documents/:id/history
func (h *Handlers) DocumentHistory(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	history, err := h.documentService.History(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: history})
}

// SubmitDocument handles POST /api/documents/:id/submit
func (h *Handlers) SubmitDocument(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	var req SubmitDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	result, err := h.submissionService.Submit(c.Request.Context(), id, service.SubmitRequest{
		AmountCents:  req.AmountCents,
		SubmittedBy:  req.SubmittedBy,
		WorkflowID:   req.WorkflowID,
		TargetUserID: req.TargetUserID,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: result})
}

// PostDocument handles POST /api/documents/:id/post
func (h *Handlers) PostDocument(c *gin.Context) {
	h.transitionDocument(c, h.documentService.Post)
}

// CancelDocument handles POST /api/documents/:id/cancel
func (h *Handlers) CancelDocument(c *gin.Context) {
	h.transitionDocument(c, h.documentService.Cancel)
}

func (h *Handlers) transitionDocument(c *gin.Context, fn func(ctx context.Context, id int64, actorUserID string) (*entity.Document, error)) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	var req TransitionDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	doc, err := fn(c.Request.Context(), id, req.ActorUserID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: doc})
}

// GetApproval handles GET /api/approvals/:reference
func (h *Handlers) GetApproval(c *gin.Context) {
	instance, err := h.approvalService.GetByReference(c.Request.Context(), c.Param("reference"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: instance})
}

// ListPendingApprovals handles GET /api/approvals/pending
func (h *Handlers) ListPendingApprovals(c *gin.Context) {
	approverID := c.Query("approver_id")
	if approverID == "" {
		h.badRequest(c, errors.New("approver_id is required"))
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	pending, err := h.approvalService.ListPendingFor(c.Request.Context(), approverID, limit)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: pending})
}

// ApproveInstance handles POST /api/approvals/:reference/approve
func (h *Handlers) ApproveInstance(c *gin.Context) {
	h.actOnInstance(c, h.approvalService.Approve)
}

// RejectInstance handles POST /api/approvals/:reference/reject
func (h *Handlers) RejectInstance(c *gin.Context) {
	h.actOnInstance(c, h.approvalService.Reject)
}

func (h *Handlers) actOnInstance(c *gin.Context, fn func(ctx context.Context, reference string, req service.ActionRequest) (*entity.ApprovalInstance, error)) {
	var req ActionInstanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	instance, err := fn(c.Request.Context(), c.Param("reference"), service.ActionRequest{
		ActorUserID:  req.ActorUserID,
		StepOrder:    req.StepOrder,
		TargetUserID: req.TargetUserID,
		Remarks:      req.Remarks,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: instance})
}

func (h *Handlers) pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		h.badRequest(c, errors.New("invalid id"))
		return 0, false
	}
	return id, true
}

func (h *Handlers) badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
}

// fail maps engine errors onto the HTTP taxonomy: precondition violations
// are conflicts, authorization violations are forbidden, store failures
// are retryable internal errors.
func (h *Handlers) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, port.ErrDocumentNotFound),
		errors.Is(err, port.ErrWorkflowNotFound),
		errors.Is(err, port.ErrInstanceNotFound):
		status = http.StatusNotFound
	case errors.Is(err, port.ErrSubmissionPending),
		errors.Is(err, service.ErrInvalidDocumentStatus),
		errors.Is(err, service.ErrNotPending),
		errors.Is(err, service.ErrStepMismatch):
		status = http.StatusConflict
	case errors.Is(err, service.ErrNotAuthorized),
		errors.Is(err, service.ErrTargetNotEligible),
		errors.Is(err, service.ErrTargetRequired),
		errors.Is(err, service.ErrWorkflowMismatch):
		status = http.StatusForbidden
	}

	if status == http.StatusInternalServerError {
		h.logger.Error("Request failed", "error", err, "path", c.Request.URL.Path)
	}

	c.JSON(status, Response{Success: false, Error: err.Error()})
}
