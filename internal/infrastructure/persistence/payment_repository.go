package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/elimu/backend/internal/domain/finance"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormPaymentRepository implements PaymentRepository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

func (r *GormPaymentRepository) FindByIDForSchool(ctx context.Context, schoolID, id uuid.UUID) (*finance.Payment, error) {
	var payment finance.Payment
	if err := r.db.WithContext(ctx).
		Where("school_id = ? AND id = ?", schoolID, id).
		First(&payment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &payment, nil
}

// FindByReference looks up a payment by its external reference (Mpesa code,
// cheque number). Used for duplicate detection on capture.
func (r *GormPaymentRepository) FindByReference(ctx context.Context, schoolID uuid.UUID, reference string) (*finance.Payment, error) {
	var payment finance.Payment
	if err := r.db.WithContext(ctx).
		Where("school_id = ? AND reference = ?", schoolID, reference).
		First(&payment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &payment, nil
}

func (r *GormPaymentRepository) FindAllForSchool(ctx context.Context, schoolID uuid.UUID, filter finance.PaymentFilter) ([]finance.Payment, error) {
	var payments []finance.Payment
	query := r.applyFilter(r.db.WithContext(ctx).Model(&finance.Payment{}).
		Where("school_id = ?", schoolID), filter).
		Order("received_at DESC, payment_number DESC")
	query = applyPagination(query, filter.Filter)

	if err := query.Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

func (r *GormPaymentRepository) CountForSchool(ctx context.Context, schoolID uuid.UUID, filter finance.PaymentFilter) (int64, error) {
	var count int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&finance.Payment{}).
		Where("school_id = ?", schoolID), filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// GeneratePaymentNumber produces the next number in PAY-YYYY-NNNNN format
func (r *GormPaymentRepository) GeneratePaymentNumber(ctx context.Context, schoolID uuid.UUID) (string, error) {
	prefix := fmt.Sprintf("PAY-%d-", time.Now().Year())
	return nextDocumentNumber(ctx, r.db, &finance.Payment{}, "payment_number", schoolID, prefix)
}

func (r *GormPaymentRepository) Save(ctx context.Context, payment *finance.Payment) error {
	return r.db.WithContext(ctx).Save(payment).Error
}

func (r *GormPaymentRepository) applyFilter(query *gorm.DB, filter finance.PaymentFilter) *gorm.DB {
	if filter.InvoiceID != nil {
		query = query.Where("invoice_id = ?", *filter.InvoiceID)
	}
	if filter.StudentID != nil {
		query = query.Where("student_id = ?", *filter.StudentID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Method != nil {
		query = query.Where("method = ?", *filter.Method)
	}
	if filter.FromDate != nil {
		query = query.Where("received_at >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("received_at <= ?", *filter.ToDate)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("payment_number ILIKE ? OR reference ILIKE ?", pattern, pattern)
	}
	return query
}

// GormCreditNoteRepository implements CreditNoteRepository using GORM
type GormCreditNoteRepository struct {
	db *gorm.DB
}

// NewGormCreditNoteRepository creates a new GormCreditNoteRepository
func NewGormCreditNoteRepository(db *gorm.DB) *GormCreditNoteRepository {
	return &GormCreditNoteRepository{db: db}
}

func (r *GormCreditNoteRepository) FindByIDForSchool(ctx context.Context, schoolID, id uuid.UUID) (*finance.CreditNote, error) {
	var note finance.CreditNote
	if err := r.db.WithContext(ctx).
		Where("school_id = ? AND id = ?", schoolID, id).
		First(&note).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &note, nil
}

func (r *GormCreditNoteRepository) FindByInvoice(ctx context.Context, schoolID, invoiceID uuid.UUID) ([]finance.CreditNote, error) {
	var notes []finance.CreditNote
	if err := r.db.WithContext(ctx).
		Where("school_id = ? AND invoice_id = ?", schoolID, invoiceID).
		Order("issued_at ASC").
		Find(&notes).Error; err != nil {
		return nil, err
	}
	return notes, nil
}

// GenerateCreditNoteNumber produces the next number in CRN-YYYY-NNNNN format
func (r *GormCreditNoteRepository) GenerateCreditNoteNumber(ctx context.Context, schoolID uuid.UUID) (string, error) {
	prefix := fmt.Sprintf("CRN-%d-", time.Now().Year())
	return nextDocumentNumber(ctx, r.db, &finance.CreditNote{}, "credit_note_number", schoolID, prefix)
}

func (r *GormCreditNoteRepository) Save(ctx context.Context, note *finance.CreditNote) error {
	return r.db.WithContext(ctx).Save(note).Error
}

// Ensure interface compliance
var (
	_ finance.PaymentRepository    = (*GormPaymentRepository)(nil)
	_ finance.CreditNoteRepository = (*GormCreditNoteRepository)(nil)
)
