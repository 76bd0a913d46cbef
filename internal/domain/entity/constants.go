package entity

// Document status constants. The engine owns the
// PENDING_APPROVAL/APPROVED/REJECTED transitions; POSTED and CANCELLED are
// set by the owning document module after approval.
const (
	DocStatusDraft           = "DRAFT"
	DocStatusPendingApproval = "PENDING_APPROVAL"
	DocStatusApproved        = "APPROVED"
	DocStatusRejected        = "REJECTED"
	DocStatusPosted          = "POSTED"
	DocStatusCancelled       = "CANCELLED"
)

// Approval instance status constants
const (
	InstanceStatusPending  = "PENDING"
	InstanceStatusApproved = "APPROVED"
	InstanceStatusRejected = "REJECTED"
)

// Action type constants for the approval_actions audit trail
const (
	ActionSubmit   = "SUBMIT"
	ActionResubmit = "RESUBMIT"
	ActionApprove  = "APPROVE"
	ActionAdvance  = "ADVANCE"
	ActionReject   = "REJECT"
	ActionPost     = "POST"
	ActionCancel   = "CANCEL"
)

// Canonical document kinds used for type-alias workflow matching
const (
	KindGoodsReceiptNote    = "GOODS_RECEIPT_NOTE"
	KindMaterialRequisition = "MATERIAL_REQUISITION"
	KindStockReturnAdvice   = "STOCK_RETURN_ADVICE"
	KindPurchaseOrder       = "PURCHASE_ORDER"
	KindDeliveryOrder       = "DELIVERY_ORDER"
)

// Fallback policy values applied when no active workflow matches a document
const (
	FallbackDirectApprove = "direct-approve"
	FallbackPending       = "pending"
)
