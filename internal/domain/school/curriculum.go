package school

import (
	"strings"

	"github.com/elimu/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// LearningArea is a CBC subject, e.g. Mathematics or Environmental
// Activities. It owns an ordered hierarchy of strands, sub-strands and
// learning outcomes.
type LearningArea struct {
	shared.SchoolAggregateRoot
	Code      string   `gorm:"type:varchar(20);not null;uniqueIndex:idx_learning_area_school_code,priority:2"`
	Name      string   `gorm:"type:varchar(200);not null"`
	Level     CBCLevel `gorm:"type:varchar(20);not null;index"`
	SortOrder int      `gorm:"not null;default:0"`
	Active    bool     `gorm:"not null;default:true"`
	Strands   []Strand `gorm:"foreignKey:LearningAreaID;references:ID"`
}

// TableName returns the table name for GORM
func (LearningArea) TableName() string {
	return "learning_areas"
}

// Strand is a top-level topic within a learning area
type Strand struct {
	ID             uuid.UUID   `gorm:"type:uuid;primary_key"`
	LearningAreaID uuid.UUID   `gorm:"type:uuid;not null;index"`
	Name           string      `gorm:"type:varchar(200);not null"`
	SortOrder      int         `gorm:"not null;default:0"`
	SubStrands     []SubStrand `gorm:"foreignKey:StrandID;references:ID"`
}

// TableName returns the table name for GORM
func (Strand) TableName() string {
	return "strands"
}

// SubStrand subdivides a strand
type SubStrand struct {
	ID        uuid.UUID         `gorm:"type:uuid;primary_key"`
	StrandID  uuid.UUID         `gorm:"type:uuid;not null;index"`
	Name      string            `gorm:"type:varchar(200);not null"`
	SortOrder int               `gorm:"not null;default:0"`
	Outcomes  []LearningOutcome `gorm:"foreignKey:SubStrandID;references:ID"`
}

// TableName returns the table name for GORM
func (SubStrand) TableName() string {
	return "sub_strands"
}

// LearningOutcome is the assessable unit at the bottom of the hierarchy
type LearningOutcome struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key"`
	SubStrandID uuid.UUID `gorm:"type:uuid;not null;index"`
	Description string    `gorm:"type:text;not null"`
	SortOrder   int       `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (LearningOutcome) TableName() string {
	return "learning_outcomes"
}

// NewLearningArea creates a new learning area for a CBC level
func NewLearningArea(schoolID uuid.UUID, code, name string, level CBCLevel, sortOrder int) (*LearningArea, error) {
	if strings.TrimSpace(code) == "" {
		return nil, shared.NewDomainError("INVALID_CODE", "Learning area code cannot be empty")
	}
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Learning area name cannot be empty")
	}
	if !level.IsValid() {
		return nil, shared.NewDomainError("INVALID_LEVEL", "Unknown CBC level")
	}

	return &LearningArea{
		SchoolAggregateRoot: shared.NewSchoolAggregateRoot(schoolID),
		Code:                strings.ToUpper(strings.TrimSpace(code)),
		Name:                strings.TrimSpace(name),
		Level:               level,
		SortOrder:           sortOrder,
		Active:              true,
		Strands:             make([]Strand, 0),
	}, nil
}

// AddStrand appends a strand, ordered after the existing ones
func (la *LearningArea) AddStrand(name string) (*Strand, error) {
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Strand name cannot be empty")
	}
	for _, s := range la.Strands {
		if strings.EqualFold(s.Name, name) {
			return nil, shared.NewDomainError("DUPLICATE_STRAND", "A strand with this name already exists")
		}
	}

	strand := Strand{
		ID:             uuid.New(),
		LearningAreaID: la.ID,
		Name:           strings.TrimSpace(name),
		SortOrder:      len(la.Strands) + 1,
		SubStrands:     make([]SubStrand, 0),
	}
	la.Strands = append(la.Strands, strand)
	la.Touch()
	return &la.Strands[len(la.Strands)-1], nil
}

// AddSubStrand appends a sub-strand under a strand by ID
func (la *LearningArea) AddSubStrand(strandID uuid.UUID, name string) (*SubStrand, error) {
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Sub-strand name cannot be empty")
	}
	for i := range la.Strands {
		if la.Strands[i].ID != strandID {
			continue
		}
		for _, ss := range la.Strands[i].SubStrands {
			if strings.EqualFold(ss.Name, name) {
				return nil, shared.NewDomainError("DUPLICATE_SUB_STRAND", "A sub-strand with this name already exists")
			}
		}
		sub := SubStrand{
			ID:        uuid.New(),
			StrandID:  strandID,
			Name:      strings.TrimSpace(name),
			SortOrder: len(la.Strands[i].SubStrands) + 1,
			Outcomes:  make([]LearningOutcome, 0),
		}
		la.Strands[i].SubStrands = append(la.Strands[i].SubStrands, sub)
		la.Touch()
		return &la.Strands[i].SubStrands[len(la.Strands[i].SubStrands)-1], nil
	}
	return nil, shared.NewDomainError("NOT_FOUND", "Strand not found in this learning area")
}

// AddLearningOutcome appends an outcome under a sub-strand by ID
func (la *LearningArea) AddLearningOutcome(subStrandID uuid.UUID, description string) (*LearningOutcome, error) {
	if strings.TrimSpace(description) == "" {
		return nil, shared.NewDomainError("INVALID_DESCRIPTION", "Outcome description cannot be empty")
	}
	for i := range la.Strands {
		for j := range la.Strands[i].SubStrands {
			sub := &la.Strands[i].SubStrands[j]
			if sub.ID != subStrandID {
				continue
			}
			outcome := LearningOutcome{
				ID:          uuid.New(),
				SubStrandID: subStrandID,
				Description: strings.TrimSpace(description),
				SortOrder:   len(sub.Outcomes) + 1,
			}
			sub.Outcomes = append(sub.Outcomes, outcome)
			la.Touch()
			return &sub.Outcomes[len(sub.Outcomes)-1], nil
		}
	}
	return nil, shared.NewDomainError("NOT_FOUND", "Sub-strand not found in this learning area")
}

// Rename updates the learning area's display name
func (la *LearningArea) Rename(name string) error {
	if strings.TrimSpace(name) == "" {
		return shared.NewDomainError("INVALID_NAME", "Learning area name cannot be empty")
	}
	la.Name = strings.TrimSpace(name)
	la.Touch()
	la.IncrementVersion()
	return nil
}

// Deactivate retires the learning area from the active curriculum
func (la *LearningArea) Deactivate() {
	la.Active = false
	la.Touch()
	la.IncrementVersion()
}
