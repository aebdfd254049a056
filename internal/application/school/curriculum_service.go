package school

import (
	"context"
	"time"

	"github.com/elimu/backend/internal/domain/school"
	"github.com/elimu/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// CurriculumService manages the CBC learning area hierarchy
type CurriculumService struct {
	areaRepo school.LearningAreaRepository
}

// NewCurriculumService creates a new curriculum service
func NewCurriculumService(areaRepo school.LearningAreaRepository) *CurriculumService {
	return &CurriculumService{areaRepo: areaRepo}
}

// LearningOutcomeResponse is the assessable unit
type LearningOutcomeResponse struct {
	ID          uuid.UUID `json:"id"`
	Description string    `json:"description"`
	SortOrder   int       `json:"sort_order"`
}

// SubStrandResponse is a subdivision of a strand
type SubStrandResponse struct {
	ID        uuid.UUID                 `json:"id"`
	Name      string                    `json:"name"`
	SortOrder int                       `json:"sort_order"`
	Outcomes  []LearningOutcomeResponse `json:"outcomes"`
}

// StrandResponse is a top-level topic
type StrandResponse struct {
	ID         uuid.UUID           `json:"id"`
	Name       string              `json:"name"`
	SortOrder  int                 `json:"sort_order"`
	SubStrands []SubStrandResponse `json:"sub_strands"`
}

// LearningAreaResponse represents a learning area and its hierarchy
type LearningAreaResponse struct {
	ID        uuid.UUID        `json:"id"`
	SchoolID  uuid.UUID        `json:"school_id"`
	Code      string           `json:"code"`
	Name      string           `json:"name"`
	Level     string           `json:"level"`
	SortOrder int              `json:"sort_order"`
	Active    bool             `json:"active"`
	Strands   []StrandResponse `json:"strands"`
	CreatedAt time.Time        `json:"created_at"`
	Version   int              `json:"version"`
}

// CreateLearningAreaRequest registers a learning area for a level
type CreateLearningAreaRequest struct {
	Code      string `json:"code" binding:"required,max=20"`
	Name      string `json:"name" binding:"required,max=200"`
	Level     string `json:"level" binding:"required"`
	SortOrder int    `json:"sort_order"`
}

// RenameLearningAreaRequest renames a learning area
type RenameLearningAreaRequest struct {
	Name string `json:"name" binding:"required,max=200"`
}

// AddStrandRequest appends a strand to a learning area
type AddStrandRequest struct {
	Name string `json:"name" binding:"required,max=200"`
}

// AddSubStrandRequest appends a sub-strand to a strand
type AddSubStrandRequest struct {
	StrandID uuid.UUID `json:"strand_id" binding:"required"`
	Name     string    `json:"name" binding:"required,max=200"`
}

// AddLearningOutcomeRequest appends an outcome to a sub-strand
type AddLearningOutcomeRequest struct {
	SubStrandID uuid.UUID `json:"sub_strand_id" binding:"required"`
	Description string    `json:"description" binding:"required"`
}

// LearningAreaListFilter defines filtering options for learning area queries
type LearningAreaListFilter struct {
	Level    string `form:"level"`
	Active   *bool  `form:"active"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

// CreateLearningArea registers a learning area with a unique code
func (s *CurriculumService) CreateLearningArea(ctx context.Context, schoolID uuid.UUID, req CreateLearningAreaRequest) (*LearningAreaResponse, error) {
	existing, err := s.areaRepo.FindByCode(ctx, schoolID, req.Code)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, shared.NewDomainError("DUPLICATE", "learning area code already in use")
	}

	area, err := school.NewLearningArea(schoolID, req.Code, req.Name, school.CBCLevel(req.Level), req.SortOrder)
	if err != nil {
		return nil, err
	}
	if err := s.areaRepo.Save(ctx, area); err != nil {
		return nil, err
	}
	return toLearningAreaResponse(area), nil
}

// GetLearningAreaByID retrieves a learning area with its full hierarchy
func (s *CurriculumService) GetLearningAreaByID(ctx context.Context, schoolID, id uuid.UUID) (*LearningAreaResponse, error) {
	area, err := s.findArea(ctx, schoolID, id)
	if err != nil {
		return nil, err
	}
	return toLearningAreaResponse(area), nil
}

// RenameLearningArea renames a learning area
func (s *CurriculumService) RenameLearningArea(ctx context.Context, schoolID, id uuid.UUID, req RenameLearningAreaRequest) (*LearningAreaResponse, error) {
	area, err := s.findArea(ctx, schoolID, id)
	if err != nil {
		return nil, err
	}
	if err := area.Rename(req.Name); err != nil {
		return nil, err
	}
	if err := s.areaRepo.Save(ctx, area); err != nil {
		return nil, err
	}
	return toLearningAreaResponse(area), nil
}

// DeactivateLearningArea retires a learning area
func (s *CurriculumService) DeactivateLearningArea(ctx context.Context, schoolID, id uuid.UUID) (*LearningAreaResponse, error) {
	area, err := s.findArea(ctx, schoolID, id)
	if err != nil {
		return nil, err
	}
	area.Deactivate()
	if err := s.areaRepo.Save(ctx, area); err != nil {
		return nil, err
	}
	return toLearningAreaResponse(area), nil
}

// AddStrand appends a strand to a learning area
func (s *CurriculumService) AddStrand(ctx context.Context, schoolID, areaID uuid.UUID, req AddStrandRequest) (*LearningAreaResponse, error) {
	area, err := s.findArea(ctx, schoolID, areaID)
	if err != nil {
		return nil, err
	}
	if _, err := area.AddStrand(req.Name); err != nil {
		return nil, err
	}
	if err := s.areaRepo.Save(ctx, area); err != nil {
		return nil, err
	}
	return toLearningAreaResponse(area), nil
}

// AddSubStrand appends a sub-strand to a strand
func (s *CurriculumService) AddSubStrand(ctx context.Context, schoolID, areaID uuid.UUID, req AddSubStrandRequest) (*LearningAreaResponse, error) {
	area, err := s.findArea(ctx, schoolID, areaID)
	if err != nil {
		return nil, err
	}
	if _, err := area.AddSubStrand(req.StrandID, req.Name); err != nil {
		return nil, err
	}
	if err := s.areaRepo.Save(ctx, area); err != nil {
		return nil, err
	}
	return toLearningAreaResponse(area), nil
}

// AddLearningOutcome appends an outcome to a sub-strand
func (s *CurriculumService) AddLearningOutcome(ctx context.Context, schoolID, areaID uuid.UUID, req AddLearningOutcomeRequest) (*LearningAreaResponse, error) {
	area, err := s.findArea(ctx, schoolID, areaID)
	if err != nil {
		return nil, err
	}
	if _, err := area.AddLearningOutcome(req.SubStrandID, req.Description); err != nil {
		return nil, err
	}
	if err := s.areaRepo.Save(ctx, area); err != nil {
		return nil, err
	}
	return toLearningAreaResponse(area), nil
}

// ListLearningAreas lists learning areas with filtering
func (s *CurriculumService) ListLearningAreas(ctx context.Context, schoolID uuid.UUID, filter LearningAreaListFilter) ([]LearningAreaResponse, int64, error) {
	domainFilter := school.LearningAreaFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
		},
		Active: filter.Active,
	}
	if filter.Level != "" {
		l := school.CBCLevel(filter.Level)
		domainFilter.Level = &l
	}

	areas, err := s.areaRepo.FindAllForSchool(ctx, schoolID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.areaRepo.CountForSchool(ctx, schoolID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]LearningAreaResponse, 0, len(areas))
	for i := range areas {
		responses = append(responses, *toLearningAreaResponse(&areas[i]))
	}
	return responses, total, nil
}

func (s *CurriculumService) findArea(ctx context.Context, schoolID, id uuid.UUID) (*school.LearningArea, error) {
	area, err := s.areaRepo.FindByIDForSchool(ctx, schoolID, id)
	if err != nil {
		return nil, err
	}
	if area == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "learning area not found")
	}
	return area, nil
}

func toLearningAreaResponse(la *school.LearningArea) *LearningAreaResponse {
	strands := make([]StrandResponse, 0, len(la.Strands))
	for _, st := range la.Strands {
		subStrands := make([]SubStrandResponse, 0, len(st.SubStrands))
		for _, ss := range st.SubStrands {
			outcomes := make([]LearningOutcomeResponse, 0, len(ss.Outcomes))
			for _, o := range ss.Outcomes {
				outcomes = append(outcomes, LearningOutcomeResponse{
					ID:          o.ID,
					Description: o.Description,
					SortOrder:   o.SortOrder,
				})
			}
			subStrands = append(subStrands, SubStrandResponse{
				ID:        ss.ID,
				Name:      ss.Name,
				SortOrder: ss.SortOrder,
				Outcomes:  outcomes,
			})
		}
		strands = append(strands, StrandResponse{
			ID:         st.ID,
			Name:       st.Name,
			SortOrder:  st.SortOrder,
			SubStrands: subStrands,
		})
	}
	return &LearningAreaResponse{
		ID:        la.ID,
		SchoolID:  la.SchoolID,
		Code:      la.Code,
		Name:      la.Name,
		Level:     string(la.Level),
		Active:    la.Active,
		SortOrder: la.SortOrder,
		Strands:   strands,
		CreatedAt: la.CreatedAt,
		Version:   la.Version,
	}
}
