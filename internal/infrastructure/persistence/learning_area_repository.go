package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/elimu/backend/internal/domain/school"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormLearningAreaRepository implements LearningAreaRepository using GORM.
// The full strand/sub-strand/outcome hierarchy is loaded with nested
// preloads and saved with a child diff per level.
type GormLearningAreaRepository struct {
	db *gorm.DB
}

// NewGormLearningAreaRepository creates a new GormLearningAreaRepository
func NewGormLearningAreaRepository(db *gorm.DB) *GormLearningAreaRepository {
	return &GormLearningAreaRepository{db: db}
}

func (r *GormLearningAreaRepository) withHierarchy(query *gorm.DB) *gorm.DB {
	sorted := func(db *gorm.DB) *gorm.DB {
		return db.Order("sort_order ASC")
	}
	return query.
		Preload("Strands", sorted).
		Preload("Strands.SubStrands", sorted).
		Preload("Strands.SubStrands.Outcomes", sorted)
}

func (r *GormLearningAreaRepository) FindByIDForSchool(ctx context.Context, schoolID, id uuid.UUID) (*school.LearningArea, error) {
	var area school.LearningArea
	if err := r.withHierarchy(r.db.WithContext(ctx)).
		Where("school_id = ? AND id = ?", schoolID, id).
		First(&area).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &area, nil
}

func (r *GormLearningAreaRepository) FindByCode(ctx context.Context, schoolID uuid.UUID, code string) (*school.LearningArea, error) {
	var area school.LearningArea
	if err := r.withHierarchy(r.db.WithContext(ctx)).
		Where("school_id = ? AND code = ?", schoolID, strings.TrimSpace(code)).
		First(&area).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &area, nil
}

func (r *GormLearningAreaRepository) FindAllForSchool(ctx context.Context, schoolID uuid.UUID, filter school.LearningAreaFilter) ([]school.LearningArea, error) {
	var areas []school.LearningArea
	query := r.applyFilter(r.db.WithContext(ctx).Model(&school.LearningArea{}).
		Where("school_id = ?", schoolID), filter).
		Order("sort_order ASC, code ASC")
	query = r.withHierarchy(query)
	query = applyPagination(query, filter.Filter)

	if err := query.Find(&areas).Error; err != nil {
		return nil, err
	}
	return areas, nil
}

func (r *GormLearningAreaRepository) CountForSchool(ctx context.Context, schoolID uuid.UUID, filter school.LearningAreaFilter) (int64, error) {
	var count int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&school.LearningArea{}).
		Where("school_id = ?", schoolID), filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormLearningAreaRepository) Save(ctx context.Context, area *school.LearningArea) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Strands").Save(area).Error; err != nil {
			return err
		}

		strandIDs := make([]uuid.UUID, len(area.Strands))
		for i := range area.Strands {
			strandIDs[i] = area.Strands[i].ID
		}
		if err := r.deleteOrphanedStrands(tx, area.ID, strandIDs); err != nil {
			return err
		}

		for i := range area.Strands {
			strand := &area.Strands[i]
			strand.LearningAreaID = area.ID
			if err := tx.Omit("SubStrands").Save(strand).Error; err != nil {
				return err
			}

			subStrandIDs := make([]uuid.UUID, len(strand.SubStrands))
			for j := range strand.SubStrands {
				subStrandIDs[j] = strand.SubStrands[j].ID
			}
			if err := deleteOrphans(tx, &school.SubStrand{}, "strand_id", strand.ID, subStrandIDs); err != nil {
				return err
			}

			for j := range strand.SubStrands {
				sub := &strand.SubStrands[j]
				sub.StrandID = strand.ID
				if err := tx.Omit("Outcomes").Save(sub).Error; err != nil {
					return err
				}

				outcomeIDs := make([]uuid.UUID, len(sub.Outcomes))
				for k := range sub.Outcomes {
					outcomeIDs[k] = sub.Outcomes[k].ID
				}
				if err := deleteOrphans(tx, &school.LearningOutcome{}, "sub_strand_id", sub.ID, outcomeIDs); err != nil {
					return err
				}

				for k := range sub.Outcomes {
					sub.Outcomes[k].SubStrandID = sub.ID
					if err := tx.Save(&sub.Outcomes[k]).Error; err != nil {
						return err
					}
				}
			}
		}
		return nil
	})
}

func (r *GormLearningAreaRepository) DeleteForSchool(ctx context.Context, schoolID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(`DELETE FROM learning_outcomes WHERE sub_strand_id IN (
				SELECT ss.id FROM sub_strands ss
				JOIN strands s ON s.id = ss.strand_id
				WHERE s.learning_area_id = ?)`, id).Error; err != nil {
			return err
		}
		if err := tx.Exec(`DELETE FROM sub_strands WHERE strand_id IN (
				SELECT id FROM strands WHERE learning_area_id = ?)`, id).Error; err != nil {
			return err
		}
		if err := tx.Where("learning_area_id = ?", id).
			Delete(&school.Strand{}).Error; err != nil {
			return err
		}
		return tx.Where("school_id = ? AND id = ?", schoolID, id).
			Delete(&school.LearningArea{}).Error
	})
}

// deleteOrphanedStrands removes strands dropped from the aggregate along
// with their sub-strands and outcomes.
func (r *GormLearningAreaRepository) deleteOrphanedStrands(tx *gorm.DB, areaID uuid.UUID, keepIDs []uuid.UUID) error {
	var orphanIDs []uuid.UUID
	query := tx.Model(&school.Strand{}).
		Select("id").
		Where("learning_area_id = ?", areaID)
	if len(keepIDs) > 0 {
		query = query.Where("id NOT IN ?", keepIDs)
	}
	if err := query.Scan(&orphanIDs).Error; err != nil {
		return err
	}
	if len(orphanIDs) == 0 {
		return nil
	}

	if err := tx.Exec(`DELETE FROM learning_outcomes WHERE sub_strand_id IN (
			SELECT id FROM sub_strands WHERE strand_id IN ?)`, orphanIDs).Error; err != nil {
		return err
	}
	if err := tx.Where("strand_id IN ?", orphanIDs).
		Delete(&school.SubStrand{}).Error; err != nil {
		return err
	}
	return tx.Where("id IN ?", orphanIDs).Delete(&school.Strand{}).Error
}

// deleteOrphans removes child rows of one parent that are no longer in the
// aggregate
func deleteOrphans(tx *gorm.DB, model interface{}, parentColumn string, parentID uuid.UUID, keepIDs []uuid.UUID) error {
	cleanup := tx.Where(parentColumn+" = ?", parentID)
	if len(keepIDs) > 0 {
		cleanup = cleanup.Where("id NOT IN ?", keepIDs)
	}
	return cleanup.Delete(model).Error
}

func (r *GormLearningAreaRepository) applyFilter(query *gorm.DB, filter school.LearningAreaFilter) *gorm.DB {
	if filter.Level != nil {
		query = query.Where("level = ?", *filter.Level)
	}
	if filter.Active != nil {
		query = query.Where("active = ?", *filter.Active)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("code ILIKE ? OR name ILIKE ?", pattern, pattern)
	}
	return query
}

// Ensure interface compliance
var _ school.LearningAreaRepository = (*GormLearningAreaRepository)(nil)
