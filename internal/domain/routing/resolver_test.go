package routing

import (
	"errors"
	"testing"

	"github.com/nimbuserp/approval-engine/internal/domain/entity"
)

func TestNormalizeType(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"lowercase", "goods receipt note", "GOODS RECEIPT NOTE"},
		{"padded", "  GRN  ", "GRN"},
		{"internal runs", "Goods   Receipt\tNote", "GOODS RECEIPT NOTE"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeType(tt.input); got != tt.expected {
				t.Errorf("NormalizeType(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestCanonicalKind(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"GRN", entity.KindGoodsReceiptNote},
		{"goods receipt", entity.KindGoodsReceiptNote},
		{"Goods Receipt Note Local", entity.KindGoodsReceiptNote},
		{"stores requisition", entity.KindMaterialRequisition},
		{"SRA", entity.KindStockReturnAdvice},
		{"lpo", entity.KindPurchaseOrder},
		{"petty cash voucher", "PETTY CASH VOUCHER"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := CanonicalKind(tt.input); got != tt.expected {
				t.Errorf("CanonicalKind(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func defs() []entity.WorkflowDefinition {
	return []entity.WorkflowDefinition{
		{ID: 1, DocumentType: "GRN", DocumentRoute: "inventory/grn-local", IsActive: true},
		{ID: 2, DocumentType: "Material Requisition", DocumentRoute: "inventory/mrn", IsActive: true},
		{ID: 3, DocumentType: "Goods Receipt Note", DocumentRoute: "", IsActive: true},
		{ID: 4, DocumentType: "GRN", DocumentRoute: "inventory/grn-import", IsActive: false},
	}
}

func TestResolve_RouteMatchWinsOverAlias(t *testing.T) {
	// Definition 3 matches by type alias, but definition 1 matches the
	// route exactly and must win regardless of ordering.
	res, err := Resolve(defs(), "inventory/grn-local", "Goods Receipt Note")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if res.Definition.ID != 1 {
		t.Errorf("Resolve() picked definition %d, want 1", res.Definition.ID)
	}
	if res.MatchedBy != MatchedByRoute {
		t.Errorf("MatchedBy = %q, want %q", res.MatchedBy, MatchedByRoute)
	}
	if res.Ambiguous {
		t.Error("Ambiguous should be false for a single route match")
	}
}

func TestResolve_TypeAliasFallback(t *testing.T) {
	res, err := Resolve(defs(), "inventory/grn-unknown-route", "goods   receipt")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if res.Definition.ID != 1 {
		t.Errorf("Resolve() picked definition %d, want 1", res.Definition.ID)
	}
	if res.MatchedBy != MatchedByTypeAlias {
		t.Errorf("MatchedBy = %q, want %q", res.MatchedBy, MatchedByTypeAlias)
	}
}

func TestResolve_InactiveNeverMatches(t *testing.T) {
	_, err := Resolve(defs(), "inventory/grn-import", "Delivery Order")
	if !errors.Is(err, ErrNoWorkflowMatch) {
		t.Errorf("Resolve() error = %v, want %v", err, ErrNoWorkflowMatch)
	}
}

func TestResolve_NoMatch(t *testing.T) {
	_, err := Resolve(defs(), "finance/journal", "Journal Voucher")
	if !errors.Is(err, ErrNoWorkflowMatch) {
		t.Errorf("Resolve() error = %v, want %v", err, ErrNoWorkflowMatch)
	}
}

func TestResolve_AmbiguousAliasMatchIsDeterministic(t *testing.T) {
	// Two active definitions filed under different aliases of the same
	// kind: the lowest id wins and the ambiguity is reported.
	ambiguous := []entity.WorkflowDefinition{
		{ID: 7, DocumentType: "Goods Receipt Note", IsActive: true},
		{ID: 3, DocumentType: "GRN Local", IsActive: true},
	}

	for i := 0; i < 3; i++ {
		res, err := Resolve(ambiguous, "inventory/unrouted", "goods receipt")
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if res.Definition.ID != 3 {
			t.Errorf("Resolve() picked definition %d, want lowest id 3", res.Definition.ID)
		}
		if res.MatchedBy != MatchedByTypeAlias {
			t.Errorf("MatchedBy = %q, want %q", res.MatchedBy, MatchedByTypeAlias)
		}
		if !res.Ambiguous {
			t.Error("Ambiguous should be true when multiple active definitions share the kind")
		}
	}
}

func TestResolve_AmbiguousRouteMatchIsDeterministic(t *testing.T) {
	ambiguous := []entity.WorkflowDefinition{
		{ID: 9, DocumentType: "GRN", DocumentRoute: "inventory/grn-local", IsActive: true},
		{ID: 2, DocumentType: "GRN", DocumentRoute: "inventory/grn-local", IsActive: true},
	}

	for i := 0; i < 3; i++ {
		res, err := Resolve(ambiguous, "inventory/grn-local", "GRN")
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if res.Definition.ID != 2 {
			t.Errorf("Resolve() picked definition %d, want lowest id 2", res.Definition.ID)
		}
		if !res.Ambiguous {
			t.Error("Ambiguous should be true when multiple active definitions match the route")
		}
	}
}
