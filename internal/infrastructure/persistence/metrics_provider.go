package persistence

import (
	"context"

	"github.com/elimu/backend/internal/domain/finance"
	"github.com/elimu/backend/internal/domain/identity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormReceivablesProvider answers the aggregate receivables queries the
// telemetry collector polls. Sums are computed in SQL so the collector
// never pulls invoice rows into memory.
type GormReceivablesProvider struct {
	db *gorm.DB
}

// NewGormReceivablesProvider creates a new GormReceivablesProvider
func NewGormReceivablesProvider(db *gorm.DB) *GormReceivablesProvider {
	return &GormReceivablesProvider{db: db}
}

// GetOutstandingReceivables returns the unpaid invoice balance for a
// school in minor currency units (cents).
func (p *GormReceivablesProvider) GetOutstandingReceivables(ctx context.Context, schoolID uuid.UUID) (int64, error) {
	var cents int64
	err := p.db.WithContext(ctx).
		Model(&finance.Invoice{}).
		Select("COALESCE(SUM(ROUND((total_amount - paid_amount - credited_amount) * 100)), 0)").
		Where("school_id = ? AND status IN ?", schoolID,
			[]finance.InvoiceStatus{finance.InvoiceStatusIssued, finance.InvoiceStatusPartiallyPaid}).
		Scan(&cents).Error
	if err != nil {
		return 0, err
	}
	return cents, nil
}

// GetOverdueInstalmentCount returns the number of overdue payment plan
// instalments for a school.
func (p *GormReceivablesProvider) GetOverdueInstalmentCount(ctx context.Context, schoolID uuid.UUID) (int64, error) {
	var count int64
	err := p.db.WithContext(ctx).
		Model(&finance.Instalment{}).
		Joins("JOIN payment_plans ON payment_plans.id = payment_plan_instalments.payment_plan_id").
		Where("payment_plans.school_id = ? AND payment_plan_instalments.status = ?",
			schoolID, finance.InstalmentStatusOverdue).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// GetActiveSchoolIDs lists the schools the periodic collector iterates
func (p *GormReceivablesProvider) GetActiveSchoolIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := p.db.WithContext(ctx).
		Model(&identity.School{}).
		Where("status = ?", identity.SchoolStatusActive).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
