package persistence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateSortOrder(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"asc lowercase", "asc", "ASC"},
		{"asc uppercase", "ASC", "ASC"},
		{"asc with spaces", "  asc  ", "ASC"},
		{"desc lowercase", "desc", "DESC"},
		{"desc uppercase", "DESC", "DESC"},
		{"empty defaults to desc", "", "DESC"},
		{"garbage defaults to desc", "sideways", "DESC"},
		{"injection attempt defaults to desc", "ASC; DROP TABLE invoices", "DESC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ValidateSortOrder(tt.input))
		})
	}
}

func TestValidateSortField(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		allowed  map[string]bool
		expected string
	}{
		{"allowed field passes", "due_date", InvoiceSortFields, "due_date"},
		{"allowed with spaces", "  invoice_number  ", InvoiceSortFields, "invoice_number"},
		{"empty falls back", "", InvoiceSortFields, "created_at"},
		{"unknown falls back", "secret_column", InvoiceSortFields, "created_at"},
		{"injection falls back", "due_date; DELETE FROM invoices", InvoiceSortFields, "created_at"},
		{"common fields", "updated_at", CommonSortFields, "updated_at"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ValidateSortField(tt.input, tt.allowed, "created_at"))
		})
	}
}

func TestSortFieldWhitelists(t *testing.T) {
	// Every whitelist must allow the shared base columns so pagination
	// defaults work for each aggregate.
	whitelists := map[string]map[string]bool{
		"accounts": AccountSortFields,
		"journals": JournalSortFields,
		"invoices": InvoiceSortFields,
		"expenses": ExpenseSortFields,
		"students": StudentSortFields,
		"users":    UserSortFields,
		"schools":  SchoolSortFields,
	}

	for name, allowed := range whitelists {
		t.Run(name, func(t *testing.T) {
			assert.True(t, allowed["id"])
			assert.True(t, allowed["created_at"])
			assert.True(t, allowed["updated_at"])
		})
	}
}
