package event

import (
	"context"

	"github.com/elimu/backend/internal/domain/accounting"
	"github.com/elimu/backend/internal/domain/finance"
	"github.com/elimu/backend/internal/domain/shared"
	"github.com/elimu/backend/internal/infrastructure/telemetry"
)

// LedgerMetricsHandler feeds the ledger counters from domain events so
// the application services stay free of telemetry concerns.
type LedgerMetricsHandler struct {
	metrics *telemetry.LedgerMetrics
}

// NewLedgerMetricsHandler creates a new LedgerMetricsHandler
func NewLedgerMetricsHandler(metrics *telemetry.LedgerMetrics) *LedgerMetricsHandler {
	return &LedgerMetricsHandler{metrics: metrics}
}

// EventTypes returns the event types this handler is interested in
func (h *LedgerMetricsHandler) EventTypes() []string {
	return []string{"JournalPosted", "InvoiceIssued", "PaymentReceived"}
}

// Handle records the counter matching the event
func (h *LedgerMetricsHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *accounting.JournalPostedEvent:
		h.metrics.RecordJournalPosted(ctx, e.SchoolID(), string(e.JournalType), e.TotalAmount)
	case *finance.InvoiceIssuedEvent:
		h.metrics.RecordInvoiceIssued(ctx, e.SchoolID())
	case *finance.PaymentReceivedEvent:
		h.metrics.RecordPayment(ctx, e.SchoolID(), string(e.Method), e.Amount)
	}
	return nil
}

var _ shared.EventHandler = (*LedgerMetricsHandler)(nil)
