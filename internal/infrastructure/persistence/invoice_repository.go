package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/elimu/backend/internal/domain/finance"
	"github.com/elimu/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormInvoiceRepository implements InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

func (r *GormInvoiceRepository) FindByIDForSchool(ctx context.Context, schoolID, id uuid.UUID) (*finance.Invoice, error) {
	var invoice finance.Invoice
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("school_id = ? AND id = ?", schoolID, id).
		First(&invoice).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &invoice, nil
}

func (r *GormInvoiceRepository) FindByInvoiceNumber(ctx context.Context, schoolID uuid.UUID, invoiceNumber string) (*finance.Invoice, error) {
	var invoice finance.Invoice
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("school_id = ? AND invoice_number = ?", schoolID, invoiceNumber).
		First(&invoice).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &invoice, nil
}

func (r *GormInvoiceRepository) FindByStudent(ctx context.Context, schoolID, studentID uuid.UUID, filter finance.InvoiceFilter) ([]finance.Invoice, error) {
	sid := studentID
	filter.StudentID = &sid
	return r.FindAllForSchool(ctx, schoolID, filter)
}

func (r *GormInvoiceRepository) FindAllForSchool(ctx context.Context, schoolID uuid.UUID, filter finance.InvoiceFilter) ([]finance.Invoice, error) {
	var invoices []finance.Invoice
	query := r.applyFilter(r.db.WithContext(ctx).Model(&finance.Invoice{}).
		Where("school_id = ?", schoolID), filter).
		Preload("Items")
	query = applyOrdering(query, filter.Filter, InvoiceSortFields, "due_date DESC, invoice_number DESC")
	query = applyPagination(query, filter.Filter)

	if err := query.Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}

func (r *GormInvoiceRepository) CountForSchool(ctx context.Context, schoolID uuid.UUID, filter finance.InvoiceFilter) (int64, error) {
	var count int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&finance.Invoice{}).
		Where("school_id = ?", schoolID), filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// GenerateInvoiceNumber produces the next number in INV-YYYY-NNNNN format
func (r *GormInvoiceRepository) GenerateInvoiceNumber(ctx context.Context, schoolID uuid.UUID) (string, error) {
	prefix := fmt.Sprintf("INV-%d-", time.Now().Year())
	return nextDocumentNumber(ctx, r.db, &finance.Invoice{}, "invoice_number", schoolID, prefix)
}

func (r *GormInvoiceRepository) Save(ctx context.Context, invoice *finance.Invoice) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items").Save(invoice).Error; err != nil {
			return err
		}
		return saveInvoiceItems(tx, invoice)
	})
}

// SaveWithLock saves with optimistic locking. Payments and credit notes
// both settle against PaidAmount/CreditedAmount, so concurrent settlement
// must fail rather than lose an update.
func (r *GormInvoiceRepository) SaveWithLock(ctx context.Context, invoice *finance.Invoice) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		currentVersion := invoice.Version
		invoice.Version++
		invoice.UpdatedAt = time.Now()

		result := tx.Model(&finance.Invoice{}).
			Where("id = ? AND school_id = ? AND version = ?", invoice.ID, invoice.SchoolID, currentVersion).
			Updates(map[string]interface{}{
				"status":           invoice.Status,
				"issue_date":       invoice.IssueDate,
				"due_date":         invoice.DueDate,
				"total_amount":     invoice.TotalAmount,
				"tax_total":        invoice.TaxTotal,
				"paid_amount":      invoice.PaidAmount,
				"credited_amount":  invoice.CreditedAmount,
				"notes":            invoice.Notes,
				"journal_entry_id": invoice.JournalEntryID,
				"cancelled_at":     invoice.CancelledAt,
				"cancel_reason":    invoice.CancelReason,
				"version":          invoice.Version,
				"updated_at":       invoice.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.NewDomainError("CONCURRENT_MODIFICATION",
				"The invoice has been modified by another user")
		}
		return saveInvoiceItems(tx, invoice)
	})
}

func saveInvoiceItems(tx *gorm.DB, invoice *finance.Invoice) error {
	itemIDs := make([]uuid.UUID, len(invoice.Items))
	for i := range invoice.Items {
		itemIDs[i] = invoice.Items[i].ID
	}

	cleanup := tx.Where("invoice_id = ?", invoice.ID)
	if len(itemIDs) > 0 {
		cleanup = cleanup.Where("id NOT IN ?", itemIDs)
	}
	if err := cleanup.Delete(&finance.InvoiceItem{}).Error; err != nil {
		return err
	}

	for i := range invoice.Items {
		invoice.Items[i].InvoiceID = invoice.ID
		if err := tx.Save(&invoice.Items[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *GormInvoiceRepository) applyFilter(query *gorm.DB, filter finance.InvoiceFilter) *gorm.DB {
	if filter.StudentID != nil {
		query = query.Where("student_id = ?", *filter.StudentID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.DueFrom != nil {
		query = query.Where("due_date >= ?", *filter.DueFrom)
	}
	if filter.DueTo != nil {
		query = query.Where("due_date <= ?", *filter.DueTo)
	}
	if filter.Overdue != nil && *filter.Overdue {
		query = query.Where("status IN ? AND due_date < ?",
			[]finance.InvoiceStatus{finance.InvoiceStatusIssued, finance.InvoiceStatusPartiallyPaid},
			time.Now())
	}
	if filter.Search != "" {
		query = query.Where("invoice_number ILIKE ?", "%"+filter.Search+"%")
	}
	return query
}

// Ensure interface compliance
var _ finance.InvoiceRepository = (*GormInvoiceRepository)(nil)
