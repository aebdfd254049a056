package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/elimu/backend/internal/domain/school"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormStudentRepository implements StudentRepository using GORM
type GormStudentRepository struct {
	db *gorm.DB
}

// NewGormStudentRepository creates a new GormStudentRepository
func NewGormStudentRepository(db *gorm.DB) *GormStudentRepository {
	return &GormStudentRepository{db: db}
}

func (r *GormStudentRepository) FindByIDForSchool(ctx context.Context, schoolID, id uuid.UUID) (*school.Student, error) {
	var student school.Student
	if err := r.db.WithContext(ctx).
		Preload("Guardians").
		Where("school_id = ? AND id = ?", schoolID, id).
		First(&student).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &student, nil
}

func (r *GormStudentRepository) FindByAdmissionNumber(ctx context.Context, schoolID uuid.UUID, admissionNumber string) (*school.Student, error) {
	var student school.Student
	if err := r.db.WithContext(ctx).
		Preload("Guardians").
		Where("school_id = ? AND admission_number = ?", schoolID, strings.TrimSpace(admissionNumber)).
		First(&student).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &student, nil
}

func (r *GormStudentRepository) FindAllForSchool(ctx context.Context, schoolID uuid.UUID, filter school.StudentFilter) ([]school.Student, error) {
	var students []school.Student
	query := r.applyFilter(r.db.WithContext(ctx).Model(&school.Student{}).
		Where("school_id = ?", schoolID), filter).
		Preload("Guardians")
	query = applyOrdering(query, filter.Filter, StudentSortFields, "last_name ASC, first_name ASC")
	query = applyPagination(query, filter.Filter)

	if err := query.Find(&students).Error; err != nil {
		return nil, err
	}
	return students, nil
}

func (r *GormStudentRepository) CountForSchool(ctx context.Context, schoolID uuid.UUID, filter school.StudentFilter) (int64, error) {
	var count int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&school.Student{}).
		Where("school_id = ?", schoolID), filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormStudentRepository) Save(ctx context.Context, student *school.Student) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Guardians").Save(student).Error; err != nil {
			return err
		}

		guardianIDs := make([]uuid.UUID, len(student.Guardians))
		for i := range student.Guardians {
			guardianIDs[i] = student.Guardians[i].ID
		}
		cleanup := tx.Where("student_id = ?", student.ID)
		if len(guardianIDs) > 0 {
			cleanup = cleanup.Where("id NOT IN ?", guardianIDs)
		}
		if err := cleanup.Delete(&school.Guardian{}).Error; err != nil {
			return err
		}

		for i := range student.Guardians {
			student.Guardians[i].StudentID = student.ID
			if err := tx.Save(&student.Guardians[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *GormStudentRepository) DeleteForSchool(ctx context.Context, schoolID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("student_id = ?", id).
			Delete(&school.Guardian{}).Error; err != nil {
			return err
		}
		return tx.Where("school_id = ? AND id = ?", schoolID, id).
			Delete(&school.Student{}).Error
	})
}

func (r *GormStudentRepository) applyFilter(query *gorm.DB, filter school.StudentFilter) *gorm.DB {
	if filter.Level != nil {
		query = query.Where("level = ?", *filter.Level)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Name != "" {
		pattern := filter.Name + "%"
		query = query.Where("first_name ILIKE ? OR last_name ILIKE ?", pattern, pattern)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("admission_number ILIKE ? OR first_name ILIKE ? OR last_name ILIKE ?",
			pattern, pattern, pattern)
	}
	return query
}

// Ensure interface compliance
var _ school.StudentRepository = (*GormStudentRepository)(nil)
