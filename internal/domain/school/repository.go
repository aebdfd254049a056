package school

import (
	"context"

	"github.com/elimu/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// StudentFilter defines filtering options for student queries
type StudentFilter struct {
	shared.Filter
	Level  *CBCLevel
	Status *StudentStatus
	// Name matches against normalized first/last name prefixes
	Name string
}

// StudentRepository defines the interface for student persistence
type StudentRepository interface {
	// FindByIDForSchool finds a student by ID within a school
	FindByIDForSchool(ctx context.Context, schoolID, id uuid.UUID) (*Student, error)

	// FindByAdmissionNumber finds a student by admission number within a school
	FindByAdmissionNumber(ctx context.Context, schoolID uuid.UUID, admissionNumber string) (*Student, error)

	// FindAllForSchool lists students for a school with filtering
	FindAllForSchool(ctx context.Context, schoolID uuid.UUID, filter StudentFilter) ([]Student, error)

	// CountForSchool counts students matching the filter
	CountForSchool(ctx context.Context, schoolID uuid.UUID, filter StudentFilter) (int64, error)

	// Save creates or updates a student with guardians
	Save(ctx context.Context, student *Student) error

	// DeleteForSchool deletes a student within a school
	DeleteForSchool(ctx context.Context, schoolID, id uuid.UUID) error
}

// LearningAreaFilter defines filtering options for curriculum queries
type LearningAreaFilter struct {
	shared.Filter
	Level  *CBCLevel
	Active *bool
}

// LearningAreaRepository defines the interface for curriculum persistence
type LearningAreaRepository interface {
	// FindByIDForSchool finds a learning area with its full hierarchy
	FindByIDForSchool(ctx context.Context, schoolID, id uuid.UUID) (*LearningArea, error)

	// FindByCode finds a learning area by its code within a school
	FindByCode(ctx context.Context, schoolID uuid.UUID, code string) (*LearningArea, error)

	// FindAllForSchool lists learning areas ordered by sort order
	FindAllForSchool(ctx context.Context, schoolID uuid.UUID, filter LearningAreaFilter) ([]LearningArea, error)

	// CountForSchool counts learning areas matching the filter
	CountForSchool(ctx context.Context, schoolID uuid.UUID, filter LearningAreaFilter) (int64, error)

	// Save creates or updates a learning area with its hierarchy
	Save(ctx context.Context, area *LearningArea) error

	// DeleteForSchool deletes a learning area within a school
	DeleteForSchool(ctx context.Context, schoolID, id uuid.UUID) error
}
