package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// orderClause builds a whitelisted ORDER BY clause. The id tiebreaker keeps
// pagination stable when the sort column has duplicates.
func orderClause(sortField, sortDir string, allowedFields map[string]bool, defaultField string) string {
	field := ValidateSortField(sortField, allowedFields, defaultField)
	return field + " " + ValidateSortOrder(sortDir) + ", id ASC"
}

// PurchaseOrderSortFields contains allowed sort fields for purchase orders
var PurchaseOrderSortFields = map[string]bool{
	"created_at":    true,
	"updated_at":    true,
	"order_date":    true,
	"order_number":  true,
	"supplier_name": true,
	"status":        true,
	"total":         true,
}

// ExpenseSortFields contains allowed sort fields for expenses
var ExpenseSortFields = map[string]bool{
	"installment_number": true,
	"due_date":           true,
	"amount":             true,
	"status":             true,
	"created_at":         true,
}
