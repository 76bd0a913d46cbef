package entity

import "time"

// Document is a business document registered by an owning module
// (inventory, purchase, sales, ...) and routed through the engine. The
// engine reads the route/type/amount and writes the status.
type Document struct {
	ID             int64     `json:"id"`
	Module         string    `json:"module"`
	DocumentType   string    `json:"document_type"`
	DocumentRoute  string    `json:"document_route"`
	DocumentNumber string    `json:"document_number"`
	AmountCents    *int64    `json:"amount_cents,omitempty"`
	Status         string    `json:"status"`
	CreatedBy      string    `json:"created_by"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
