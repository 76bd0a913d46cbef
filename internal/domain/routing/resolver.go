// Package routing selects the applicable workflow for a document and walks
// its ordered steps. It is pure domain logic: definitions are supplied by
// the caller, nothing here touches storage.
package routing

import (
	"errors"
	"strings"

	"github.com/nimbuserp/approval-engine/internal/domain/entity"
)

// ErrNoWorkflowMatch signals that no active workflow applies to a document.
// This is not a failure: it tells the submission coordinator to apply the
// deployment's no-workflow fallback policy.
var ErrNoWorkflowMatch = errors.New("no active workflow matches document")

// MatchedBy values reported in a resolution result.
const (
	MatchedByRoute     = "route"
	MatchedByTypeAlias = "type-alias"
)

// Resolution is the outcome of resolving a document against the active
// workflow definitions.
type Resolution struct {
	Definition *entity.WorkflowDefinition
	MatchedBy  string

	// Ambiguous is set when more than one active definition matched, by
	// route or by type-alias kind. The lowest-id definition wins
	// deterministically; the caller must surface the misconfiguration to
	// administrators.
	Ambiguous bool
}

// typeAliases maps normalized historical type labels to canonical document
// kinds. Documents filed under any alias of a kind match workflows filed
// under any other alias of the same kind.
var typeAliases = map[string]string{
	"GOODS RECEIPT NOTE":       entity.KindGoodsReceiptNote,
	"GOODS RECEIPT":            entity.KindGoodsReceiptNote,
	"GRN":                      entity.KindGoodsReceiptNote,
	"GRN LOCAL":                entity.KindGoodsReceiptNote,
	"GOODS RECEIPT NOTE LOCAL": entity.KindGoodsReceiptNote,

	"MATERIAL REQUISITION":      entity.KindMaterialRequisition,
	"MATERIAL REQUISITION NOTE": entity.KindMaterialRequisition,
	"MRN":                       entity.KindMaterialRequisition,
	"STORES REQUISITION":        entity.KindMaterialRequisition,

	"STOCK RETURN ADVICE": entity.KindStockReturnAdvice,
	"STOCK RETURN":        entity.KindStockReturnAdvice,
	"RETURN ADVICE":       entity.KindStockReturnAdvice,
	"SRA":                 entity.KindStockReturnAdvice,

	"PURCHASE ORDER":       entity.KindPurchaseOrder,
	"LOCAL PURCHASE ORDER": entity.KindPurchaseOrder,
	"PO":                   entity.KindPurchaseOrder,
	"LPO":                  entity.KindPurchaseOrder,

	"DELIVERY ORDER": entity.KindDeliveryOrder,
	"DO":             entity.KindDeliveryOrder,
}

// NormalizeType trims, uppercases and collapses internal whitespace runs to
// a single space, so historical labels compare equal regardless of casing
// and spacing.
func NormalizeType(documentType string) string {
	return strings.Join(strings.Fields(strings.ToUpper(documentType)), " ")
}

// CanonicalKind maps a raw document type label to its canonical kind. An
// unknown label canonicalizes to its own normalized form, so two unknown
// labels still match each other exactly.
func CanonicalKind(documentType string) string {
	normalized := NormalizeType(documentType)
	if kind, ok := typeAliases[normalized]; ok {
		return kind
	}
	return normalized
}

// Resolve picks the single applicable active workflow for a document.
// Precedence is strict: an exact documentRoute match always wins over a
// type-alias match, regardless of definition ordering. Inactive
// definitions never match. Returns ErrNoWorkflowMatch when nothing applies.
func Resolve(definitions []entity.WorkflowDefinition, documentRoute, documentType string) (*Resolution, error) {
	var routeMatches []*entity.WorkflowDefinition
	for i := range definitions {
		def := &definitions[i]
		if !def.IsActive {
			continue
		}
		if def.DocumentRoute != "" && def.DocumentRoute == documentRoute {
			routeMatches = append(routeMatches, def)
		}
	}

	if len(routeMatches) > 0 {
		winner := routeMatches[0]
		for _, def := range routeMatches[1:] {
			if def.ID < winner.ID {
				winner = def
			}
		}
		return &Resolution{
			Definition: winner,
			MatchedBy:  MatchedByRoute,
			Ambiguous:  len(routeMatches) > 1,
		}, nil
	}

	kind := CanonicalKind(documentType)
	var kindMatches []*entity.WorkflowDefinition
	for i := range definitions {
		def := &definitions[i]
		if !def.IsActive {
			continue
		}
		if CanonicalKind(def.DocumentType) == kind {
			kindMatches = append(kindMatches, def)
		}
	}

	if len(kindMatches) > 0 {
		winner := kindMatches[0]
		for _, def := range kindMatches[1:] {
			if def.ID < winner.ID {
				winner = def
			}
		}
		return &Resolution{
			Definition: winner,
			MatchedBy:  MatchedByTypeAlias,
			Ambiguous:  len(kindMatches) > 1,
		}, nil
	}

	return nil, ErrNoWorkflowMatch
}
