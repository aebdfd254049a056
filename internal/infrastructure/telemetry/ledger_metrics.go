// Package telemetry provides OpenTelemetry integration for metrics collection.
package telemetry

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// LedgerMetrics tracks the financial activity of the platform: journal
// postings, invoice issuance, payment receipts and the receivables
// position per school.
type LedgerMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	// Counter metrics (monotonically increasing)
	journalPostedTotal *Counter
	journalAmountTotal *Counter
	invoiceIssuedTotal *Counter
	paymentTotal       *Counter
	paymentAmountTotal *Counter

	// Gauge metrics (point-in-time values)
	outstandingReceivables *Gauge
	overdueInstalmentCount *Gauge

	// Periodic collector
	stopChan    chan struct{}
	stopOnce    sync.Once
	collectOnce sync.Once

	receivablesProvider ReceivablesMetricsProvider
}

// ReceivablesMetricsProvider provides receivables data for periodic
// collection. The interface keeps the telemetry layer from depending on
// the finance domain directly.
type ReceivablesMetricsProvider interface {
	// GetOutstandingReceivables returns the unpaid invoice balance for a
	// school in minor currency units (cents).
	GetOutstandingReceivables(ctx context.Context, schoolID uuid.UUID) (int64, error)

	// GetOverdueInstalmentCount returns the number of overdue payment
	// plan instalments for a school.
	GetOverdueInstalmentCount(ctx context.Context, schoolID uuid.UUID) (int64, error)
}

// LedgerMetricsConfig holds configuration for ledger metrics.
type LedgerMetricsConfig struct {
	Meter               metric.Meter
	Logger              *zap.Logger
	CollectInterval     time.Duration // Default: 5 minutes
	ReceivablesProvider ReceivablesMetricsProvider
}

// NewLedgerMetrics creates a new LedgerMetrics instance.
func NewLedgerMetrics(cfg LedgerMetricsConfig) (*LedgerMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	lm := &LedgerMetrics{
		meter:               cfg.Meter,
		logger:              logger,
		stopChan:            make(chan struct{}),
		receivablesProvider: cfg.ReceivablesProvider,
	}

	var err error

	lm.journalPostedTotal, err = NewCounter(
		cfg.Meter,
		"elimu_journal_posted_total",
		"Total number of journal entries posted",
		"{entries}",
	)
	if err != nil {
		return nil, err
	}

	lm.journalAmountTotal, err = NewCounter(
		cfg.Meter,
		"elimu_journal_amount_total",
		"Total posted journal debit volume in cents",
		"{cents}",
	)
	if err != nil {
		return nil, err
	}

	lm.invoiceIssuedTotal, err = NewCounter(
		cfg.Meter,
		"elimu_invoice_issued_total",
		"Total number of invoices issued",
		"{invoices}",
	)
	if err != nil {
		return nil, err
	}

	lm.paymentTotal, err = NewCounter(
		cfg.Meter,
		"elimu_payment_total",
		"Total number of payments recorded",
		"{payments}",
	)
	if err != nil {
		return nil, err
	}

	lm.paymentAmountTotal, err = NewCounter(
		cfg.Meter,
		"elimu_payment_amount_total",
		"Total payment volume in cents",
		"{cents}",
	)
	if err != nil {
		return nil, err
	}

	lm.outstandingReceivables, err = NewGauge(
		cfg.Meter,
		"elimu_outstanding_receivables",
		"Unpaid invoice balance in cents",
		"{cents}",
	)
	if err != nil {
		return nil, err
	}

	lm.overdueInstalmentCount, err = NewGauge(
		cfg.Meter,
		"elimu_overdue_instalment_count",
		"Number of overdue payment plan instalments",
		"{instalments}",
	)
	if err != nil {
		return nil, err
	}

	return lm, nil
}

// =============================================================================
// Journal Metrics
// =============================================================================

// RecordJournalPosted records a posted journal entry with its total debit
// volume. Called from the application layer after a successful post.
func (lm *LedgerMetrics) RecordJournalPosted(ctx context.Context, schoolID uuid.UUID, journalType string, debitTotal decimal.Decimal) {
	lm.journalPostedTotal.Inc(ctx,
		AttrSchoolID.String(schoolID.String()),
		AttrJournalType.String(journalType),
	)

	// Convert to cents
	cents := debitTotal.Mul(decimal.NewFromInt(100)).IntPart()
	lm.journalAmountTotal.Add(ctx, cents,
		AttrSchoolID.String(schoolID.String()),
		AttrJournalType.String(journalType),
	)
}

// =============================================================================
// Invoice and Payment Metrics
// =============================================================================

// RecordInvoiceIssued records an invoice issuance event.
func (lm *LedgerMetrics) RecordInvoiceIssued(ctx context.Context, schoolID uuid.UUID) {
	lm.invoiceIssuedTotal.Inc(ctx,
		AttrSchoolID.String(schoolID.String()),
	)
}

// RecordPayment records a payment with its method and amount.
func (lm *LedgerMetrics) RecordPayment(ctx context.Context, schoolID uuid.UUID, method string, amount decimal.Decimal) {
	lm.paymentTotal.Inc(ctx,
		AttrSchoolID.String(schoolID.String()),
		AttrPaymentMethod.String(method),
	)

	cents := amount.Mul(decimal.NewFromInt(100)).IntPart()
	lm.paymentAmountTotal.Add(ctx, cents,
		AttrSchoolID.String(schoolID.String()),
		AttrPaymentMethod.String(method),
	)
}

// =============================================================================
// Receivables Gauges
// =============================================================================

// RecordOutstandingReceivables records the current unpaid invoice balance
// for a school. Updated periodically.
func (lm *LedgerMetrics) RecordOutstandingReceivables(ctx context.Context, schoolID uuid.UUID, cents int64) {
	lm.outstandingReceivables.Record(ctx, cents,
		AttrSchoolID.String(schoolID.String()),
	)
}

// RecordOverdueInstalmentCount records the number of overdue instalments
// for a school. Updated periodically.
func (lm *LedgerMetrics) RecordOverdueInstalmentCount(ctx context.Context, schoolID uuid.UUID, count int64) {
	lm.overdueInstalmentCount.Record(ctx, count,
		AttrSchoolID.String(schoolID.String()),
	)
}

// =============================================================================
// Periodic Collection
// =============================================================================

// SchoolProvider provides school IDs for periodic metrics collection.
type SchoolProvider interface {
	GetActiveSchoolIDs(ctx context.Context) ([]uuid.UUID, error)
}

// StartPeriodicCollection starts periodic collection of gauge metrics.
// Non-blocking; use Stop() to stop collection.
func (lm *LedgerMetrics) StartPeriodicCollection(ctx context.Context, schoolProvider SchoolProvider, interval time.Duration) {
	lm.collectOnce.Do(func() {
		if interval <= 0 {
			interval = 5 * time.Minute
		}

		go lm.runPeriodicCollection(ctx, schoolProvider, interval)
	})
}

func (lm *LedgerMetrics) runPeriodicCollection(ctx context.Context, schoolProvider SchoolProvider, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Collect immediately on start
	lm.collectReceivablesMetrics(ctx, schoolProvider)

	for {
		select {
		case <-lm.stopChan:
			lm.logger.Info("Stopping periodic ledger metrics collection")
			return
		case <-ctx.Done():
			lm.logger.Info("Context cancelled, stopping periodic ledger metrics collection")
			return
		case <-ticker.C:
			lm.collectReceivablesMetrics(ctx, schoolProvider)
		}
	}
}

func (lm *LedgerMetrics) collectReceivablesMetrics(ctx context.Context, schoolProvider SchoolProvider) {
	if lm.receivablesProvider == nil {
		lm.logger.Debug("No receivables provider configured, skipping receivables metrics collection")
		return
	}

	schoolIDs, err := schoolProvider.GetActiveSchoolIDs(ctx)
	if err != nil {
		lm.logger.Error("Failed to get school IDs for metrics collection", zap.Error(err))
		return
	}

	for _, schoolID := range schoolIDs {
		lm.collectSchoolReceivables(ctx, schoolID)
	}
}

func (lm *LedgerMetrics) collectSchoolReceivables(ctx context.Context, schoolID uuid.UUID) {
	outstanding, err := lm.receivablesProvider.GetOutstandingReceivables(ctx, schoolID)
	if err != nil {
		lm.logger.Warn("Failed to get outstanding receivables for school",
			zap.String("school_id", schoolID.String()),
			zap.Error(err),
		)
	} else {
		lm.RecordOutstandingReceivables(ctx, schoolID, outstanding)
	}

	overdue, err := lm.receivablesProvider.GetOverdueInstalmentCount(ctx, schoolID)
	if err != nil {
		lm.logger.Warn("Failed to get overdue instalment count for school",
			zap.String("school_id", schoolID.String()),
			zap.Error(err),
		)
	} else {
		lm.RecordOverdueInstalmentCount(ctx, schoolID, overdue)
	}
}

// Stop stops the periodic collection.
func (lm *LedgerMetrics) Stop() {
	lm.stopOnce.Do(func() {
		close(lm.stopChan)
	})
}

// =============================================================================
// Error Types
// =============================================================================

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewLedgerMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}
