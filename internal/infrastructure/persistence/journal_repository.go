package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/elimu/backend/internal/domain/accounting"
	"github.com/elimu/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormJournalEntryRepository implements JournalEntryRepository using GORM
type GormJournalEntryRepository struct {
	db *gorm.DB
}

// NewGormJournalEntryRepository creates a new GormJournalEntryRepository
func NewGormJournalEntryRepository(db *gorm.DB) *GormJournalEntryRepository {
	return &GormJournalEntryRepository{db: db}
}

// FindByIDForSchool finds a journal entry by ID within a school
func (r *GormJournalEntryRepository) FindByIDForSchool(ctx context.Context, schoolID, id uuid.UUID) (*accounting.JournalEntry, error) {
	var entry accounting.JournalEntry
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("school_id = ? AND id = ?", schoolID, id).
		First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

// FindByEntryNumber finds a journal entry by its number within a school
func (r *GormJournalEntryRepository) FindByEntryNumber(ctx context.Context, schoolID uuid.UUID, entryNumber string) (*accounting.JournalEntry, error) {
	var entry accounting.JournalEntry
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("school_id = ? AND entry_number = ?", schoolID, entryNumber).
		First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

// FindBySource finds entries synthesized from a source document
func (r *GormJournalEntryRepository) FindBySource(ctx context.Context, schoolID uuid.UUID, sourceType string, sourceID uuid.UUID) ([]accounting.JournalEntry, error) {
	var entries []accounting.JournalEntry
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("school_id = ? AND source_type = ? AND source_id = ?", schoolID, sourceType, sourceID).
		Order("entry_date ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// FindReversalOf finds the reversal entry for a posted entry, if any
func (r *GormJournalEntryRepository) FindReversalOf(ctx context.Context, schoolID, journalID uuid.UUID) (*accounting.JournalEntry, error) {
	var entry accounting.JournalEntry
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("school_id = ? AND reverses_journal_id = ?", schoolID, journalID).
		First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

// FindAllForSchool lists journal entries for a school with filtering
func (r *GormJournalEntryRepository) FindAllForSchool(ctx context.Context, schoolID uuid.UUID, filter accounting.JournalFilter) ([]accounting.JournalEntry, error) {
	var entries []accounting.JournalEntry
	query := r.applyFilter(r.db.WithContext(ctx).Model(&accounting.JournalEntry{}).
		Where("school_id = ?", schoolID), filter).
		Preload("Lines")
	query = applyOrdering(query, filter.Filter, JournalSortFields, "entry_date DESC, entry_number DESC")
	query = applyPagination(query, filter.Filter)

	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// CountForSchool counts journal entries matching the filter
func (r *GormJournalEntryRepository) CountForSchool(ctx context.Context, schoolID uuid.UUID, filter accounting.JournalFilter) (int64, error) {
	var count int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&accounting.JournalEntry{}).
		Where("school_id = ?", schoolID), filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// SumPostedByAccount sums posted line amounts per account over a date range.
// Balances are never stored: this aggregate over posted lines is the single
// source of truth for account balances and budget actuals.
func (r *GormJournalEntryRepository) SumPostedByAccount(ctx context.Context, schoolID uuid.UUID, accountIDs []uuid.UUID, from, to time.Time) ([]accounting.AccountBalance, error) {
	query := r.db.WithContext(ctx).
		Table("journal_entry_lines AS l").
		Select(`l.account_id,
			MAX(l.account_code) AS account_code,
			COALESCE(SUM(CASE WHEN l.side = ? THEN l.amount ELSE 0 END), 0) AS total_debit,
			COALESCE(SUM(CASE WHEN l.side = ? THEN l.amount ELSE 0 END), 0) AS total_credit`,
			accounting.SideDebit, accounting.SideCredit).
		Joins("JOIN journal_entries AS e ON e.id = l.journal_entry_id").
		Where("e.school_id = ? AND e.status = ?", schoolID, accounting.JournalStatusPosted).
		Group("l.account_id")

	if len(accountIDs) > 0 {
		query = query.Where("l.account_id IN ?", accountIDs)
	}
	if !from.IsZero() {
		query = query.Where("e.entry_date >= ?", from)
	}
	if !to.IsZero() {
		query = query.Where("e.entry_date <= ?", to)
	}

	var balances []accounting.AccountBalance
	if err := query.Scan(&balances).Error; err != nil {
		return nil, err
	}
	return balances, nil
}

// GenerateEntryNumber produces the next sequential entry number for a school.
// Format: <prefix>-YYYY-NNNNN, prefix by journal type (e.g. JRN-2026-00001).
func (r *GormJournalEntryRepository) GenerateEntryNumber(ctx context.Context, schoolID uuid.UUID, journalType accounting.JournalType) (string, error) {
	prefix := fmt.Sprintf("%s-%d-", entryNumberPrefix(journalType), time.Now().Year())
	return nextDocumentNumber(ctx, r.db, &accounting.JournalEntry{}, "entry_number", schoolID, prefix)
}

func entryNumberPrefix(journalType accounting.JournalType) string {
	switch journalType {
	case accounting.JournalTypeSystem:
		return "SYS"
	case accounting.JournalTypeReversal:
		return "REV"
	default:
		return "JRN"
	}
}

// Save creates or updates a journal entry with its lines
func (r *GormJournalEntryRepository) Save(ctx context.Context, entry *accounting.JournalEntry) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Lines").Save(entry).Error; err != nil {
			return err
		}
		return saveJournalLines(tx, entry)
	})
}

// SaveWithLock saves with optimistic locking (version check)
func (r *GormJournalEntryRepository) SaveWithLock(ctx context.Context, entry *accounting.JournalEntry) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		currentVersion := entry.Version
		entry.Version++
		entry.UpdatedAt = time.Now()

		result := tx.Model(&accounting.JournalEntry{}).
			Where("id = ? AND school_id = ? AND version = ?", entry.ID, entry.SchoolID, currentVersion).
			Updates(map[string]interface{}{
				"status":              entry.Status,
				"entry_date":          entry.EntryDate,
				"description":         entry.Description,
				"period_id":           entry.PeriodID,
				"reverses_journal_id": entry.ReversesJournalID,
				"posted_at":           entry.PostedAt,
				"posted_by":           entry.PostedBy,
				"version":             entry.Version,
				"updated_at":          entry.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.NewDomainError("CONCURRENT_MODIFICATION",
				"The journal entry has been modified by another user")
		}
		return saveJournalLines(tx, entry)
	})
}

func saveJournalLines(tx *gorm.DB, entry *accounting.JournalEntry) error {
	lineIDs := make([]uuid.UUID, len(entry.Lines))
	for i := range entry.Lines {
		lineIDs[i] = entry.Lines[i].ID
	}

	cleanup := tx.Where("journal_entry_id = ?", entry.ID)
	if len(lineIDs) > 0 {
		cleanup = cleanup.Where("id NOT IN ?", lineIDs)
	}
	if err := cleanup.Delete(&accounting.JournalEntryLine{}).Error; err != nil {
		return err
	}

	for i := range entry.Lines {
		entry.Lines[i].JournalEntryID = entry.ID
		if err := tx.Save(&entry.Lines[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *GormJournalEntryRepository) applyFilter(query *gorm.DB, filter accounting.JournalFilter) *gorm.DB {
	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.PeriodID != nil {
		query = query.Where("period_id = ?", *filter.PeriodID)
	}
	if filter.SourceType != nil {
		query = query.Where("source_type = ?", *filter.SourceType)
	}
	if filter.SourceID != nil {
		query = query.Where("source_id = ?", *filter.SourceID)
	}
	if filter.AccountID != nil {
		query = query.Where(
			"id IN (SELECT journal_entry_id FROM journal_entry_lines WHERE account_id = ?)",
			*filter.AccountID)
	}
	if filter.FromDate != nil {
		query = query.Where("entry_date >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("entry_date <= ?", *filter.ToDate)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("entry_number ILIKE ? OR description ILIKE ?", pattern, pattern)
	}
	return query
}

// nextDocumentNumber scans the highest existing number with the given prefix
// and returns prefix + zero-padded next sequence. Uniqueness is backed by the
// per-school unique index on the number column, so a rare concurrent clash
// surfaces as a constraint violation rather than a silent duplicate.
func nextDocumentNumber(ctx context.Context, db *gorm.DB, model interface{}, column string, schoolID uuid.UUID, prefix string) (string, error) {
	var last string
	err := db.WithContext(ctx).
		Model(model).
		Select(column).
		Where("school_id = ? AND "+column+" LIKE ?", schoolID, prefix+"%").
		Order(column + " DESC").
		Limit(1).
		Scan(&last).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	var next int64 = 1
	if last != "" {
		parts := strings.Split(last, "-")
		var num int64
		if _, parseErr := fmt.Sscanf(parts[len(parts)-1], "%d", &num); parseErr == nil {
			next = num + 1
		}
	}
	return fmt.Sprintf("%s%05d", prefix, next), nil
}

// Ensure interface compliance
var _ accounting.JournalEntryRepository = (*GormJournalEntryRepository)(nil)
