package port

import "errors"

var (
	// ErrDocumentNotFound is returned when a document id resolves to nothing
	ErrDocumentNotFound = errors.New("document not found")

	// ErrWorkflowNotFound is returned when a workflow definition id resolves to nothing
	ErrWorkflowNotFound = errors.New("workflow definition not found")

	// ErrInstanceNotFound is returned when an approval instance reference resolves to nothing
	ErrInstanceNotFound = errors.New("approval instance not found")

	// ErrSubmissionPending is returned when a document already has an open
	// PENDING approval instance
	ErrSubmissionPending = errors.New("submission already pending for document")
)
