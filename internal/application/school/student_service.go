package school

import (
	"context"
	"time"

	"github.com/elimu/backend/internal/domain/school"
	"github.com/elimu/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// StudentService handles student enrollment and lifecycle use cases
type StudentService struct {
	studentRepo school.StudentRepository
	eventBus    shared.EventPublisher
}

// NewStudentService creates a new student service
func NewStudentService(studentRepo school.StudentRepository, eventBus shared.EventPublisher) *StudentService {
	return &StudentService{studentRepo: studentRepo, eventBus: eventBus}
}

// GuardianResponse represents one guardian contact
type GuardianResponse struct {
	ID           uuid.UUID `json:"id"`
	FullName     string    `json:"full_name"`
	Relationship string    `json:"relationship"`
	Phone        string    `json:"phone"`
	Email        string    `json:"email,omitempty"`
	IsPrimary    bool      `json:"is_primary"`
}

// StudentResponse represents student data returned to clients
type StudentResponse struct {
	ID              uuid.UUID          `json:"id"`
	SchoolID        uuid.UUID          `json:"school_id"`
	AdmissionNumber string             `json:"admission_number"`
	FirstName       string             `json:"first_name"`
	MiddleName      string             `json:"middle_name,omitempty"`
	LastName        string             `json:"last_name"`
	FullName        string             `json:"full_name"`
	DateOfBirth     time.Time          `json:"date_of_birth"`
	Gender          string             `json:"gender,omitempty"`
	Level           string             `json:"level"`
	Status          string             `json:"status"`
	Guardians       []GuardianResponse `json:"guardians"`
	AdmittedAt      time.Time          `json:"admitted_at"`
	GraduatedAt     *time.Time         `json:"graduated_at,omitempty"`
	WithdrawnAt     *time.Time         `json:"withdrawn_at,omitempty"`
	WithdrawReason  string             `json:"withdraw_reason,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
	Version         int                `json:"version"`
}

// EnrollStudentRequest admits a new learner
type EnrollStudentRequest struct {
	AdmissionNumber string    `json:"admission_number" binding:"required,max=50"`
	FirstName       string    `json:"first_name" binding:"required,max=100"`
	LastName        string    `json:"last_name" binding:"required,max=100"`
	DateOfBirth     time.Time `json:"date_of_birth" binding:"required"`
	Level           string    `json:"level" binding:"required"`
}

// UpdateStudentRequest updates profile details
type UpdateStudentRequest struct {
	FirstName   string    `json:"first_name" binding:"required,max=100"`
	MiddleName  string    `json:"middle_name" binding:"max=100"`
	LastName    string    `json:"last_name" binding:"required,max=100"`
	Gender      string    `json:"gender" binding:"max=10"`
	DateOfBirth time.Time `json:"date_of_birth" binding:"required"`
}

// AddGuardianRequest attaches a guardian contact
type AddGuardianRequest struct {
	FullName     string `json:"full_name" binding:"required,max=200"`
	Relationship string `json:"relationship" binding:"required,max=50"`
	Phone        string `json:"phone" binding:"required,max=30"`
	Email        string `json:"email" binding:"omitempty,email"`
}

// WithdrawStudentRequest carries the mandatory withdrawal reason
type WithdrawStudentRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

// StudentListFilter defines filtering options for student list queries
type StudentListFilter struct {
	Level    string `form:"level"`
	Status   string `form:"status"`
	Name     string `form:"name"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir"`
}

// EnrollStudent admits a new student with a unique admission number
func (s *StudentService) EnrollStudent(ctx context.Context, schoolID uuid.UUID, req EnrollStudentRequest) (*StudentResponse, error) {
	existing, err := s.studentRepo.FindByAdmissionNumber(ctx, schoolID, req.AdmissionNumber)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, shared.NewDomainError("DUPLICATE", "admission number already in use")
	}

	student, err := school.NewStudent(schoolID, req.AdmissionNumber, req.FirstName, req.LastName, req.DateOfBirth, school.CBCLevel(req.Level))
	if err != nil {
		return nil, err
	}

	if err := s.studentRepo.Save(ctx, student); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, student.GetDomainEvents())
	student.ClearDomainEvents()

	return toStudentResponse(student), nil
}

// GetStudentByID retrieves a student by ID
func (s *StudentService) GetStudentByID(ctx context.Context, schoolID, id uuid.UUID) (*StudentResponse, error) {
	student, err := s.findStudent(ctx, schoolID, id)
	if err != nil {
		return nil, err
	}
	return toStudentResponse(student), nil
}

// UpdateStudent updates a student's profile
func (s *StudentService) UpdateStudent(ctx context.Context, schoolID, id uuid.UUID, req UpdateStudentRequest) (*StudentResponse, error) {
	student, err := s.findStudent(ctx, schoolID, id)
	if err != nil {
		return nil, err
	}
	if err := student.UpdateProfile(req.FirstName, req.MiddleName, req.LastName, req.Gender, req.DateOfBirth); err != nil {
		return nil, err
	}
	if err := s.studentRepo.Save(ctx, student); err != nil {
		return nil, err
	}
	return toStudentResponse(student), nil
}

// AddGuardian attaches a guardian; the first becomes the primary contact
func (s *StudentService) AddGuardian(ctx context.Context, schoolID, id uuid.UUID, req AddGuardianRequest) (*StudentResponse, error) {
	student, err := s.findStudent(ctx, schoolID, id)
	if err != nil {
		return nil, err
	}
	if err := student.AddGuardian(req.FullName, req.Relationship, req.Phone, req.Email); err != nil {
		return nil, err
	}
	if err := s.studentRepo.Save(ctx, student); err != nil {
		return nil, err
	}
	return toStudentResponse(student), nil
}

// PromoteStudent advances an active student one CBC level
func (s *StudentService) PromoteStudent(ctx context.Context, schoolID, id uuid.UUID) (*StudentResponse, error) {
	return s.mutate(ctx, schoolID, id, func(st *school.Student) error { return st.Promote() })
}

// SuspendStudent suspends an active student
func (s *StudentService) SuspendStudent(ctx context.Context, schoolID, id uuid.UUID) (*StudentResponse, error) {
	return s.mutate(ctx, schoolID, id, func(st *school.Student) error { return st.Suspend() })
}

// ReinstateStudent lifts a suspension
func (s *StudentService) ReinstateStudent(ctx context.Context, schoolID, id uuid.UUID) (*StudentResponse, error) {
	return s.mutate(ctx, schoolID, id, func(st *school.Student) error { return st.Reinstate() })
}

// GraduateStudent graduates a student at the final level
func (s *StudentService) GraduateStudent(ctx context.Context, schoolID, id uuid.UUID) (*StudentResponse, error) {
	return s.mutate(ctx, schoolID, id, func(st *school.Student) error { return st.Graduate() })
}

// WithdrawStudent withdraws a student with a reason
func (s *StudentService) WithdrawStudent(ctx context.Context, schoolID, id uuid.UUID, req WithdrawStudentRequest) (*StudentResponse, error) {
	return s.mutate(ctx, schoolID, id, func(st *school.Student) error { return st.Withdraw(req.Reason) })
}

// ListStudents lists students with filtering
func (s *StudentService) ListStudents(ctx context.Context, schoolID uuid.UUID, filter StudentListFilter) ([]StudentResponse, int64, error) {
	domainFilter := school.StudentFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  filter.OrderBy,
			OrderDir: filter.OrderDir,
		},
		Name: filter.Name,
	}
	if filter.Level != "" {
		l := school.CBCLevel(filter.Level)
		domainFilter.Level = &l
	}
	if filter.Status != "" {
		st := school.StudentStatus(filter.Status)
		domainFilter.Status = &st
	}

	students, err := s.studentRepo.FindAllForSchool(ctx, schoolID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.studentRepo.CountForSchool(ctx, schoolID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]StudentResponse, 0, len(students))
	for i := range students {
		responses = append(responses, *toStudentResponse(&students[i]))
	}
	return responses, total, nil
}

func (s *StudentService) mutate(ctx context.Context, schoolID, id uuid.UUID, op func(*school.Student) error) (*StudentResponse, error) {
	student, err := s.findStudent(ctx, schoolID, id)
	if err != nil {
		return nil, err
	}
	if err := op(student); err != nil {
		return nil, err
	}
	if err := s.studentRepo.Save(ctx, student); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, student.GetDomainEvents())
	student.ClearDomainEvents()
	return toStudentResponse(student), nil
}

func (s *StudentService) findStudent(ctx context.Context, schoolID, id uuid.UUID) (*school.Student, error) {
	student, err := s.studentRepo.FindByIDForSchool(ctx, schoolID, id)
	if err != nil {
		return nil, err
	}
	if student == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "student not found")
	}
	return student, nil
}

func (s *StudentService) publishEvents(ctx context.Context, events []shared.DomainEvent) {
	if s.eventBus == nil || len(events) == 0 {
		return
	}
	_ = s.eventBus.Publish(ctx, events...)
}

func toStudentResponse(st *school.Student) *StudentResponse {
	guardians := make([]GuardianResponse, 0, len(st.Guardians))
	for _, g := range st.Guardians {
		guardians = append(guardians, GuardianResponse{
			ID:           g.ID,
			FullName:     g.FullName,
			Relationship: g.Relationship,
			Phone:        g.Phone,
			Email:        g.Email,
			IsPrimary:    g.IsPrimary,
		})
	}
	return &StudentResponse{
		ID:              st.ID,
		SchoolID:        st.SchoolID,
		AdmissionNumber: st.AdmissionNumber,
		FirstName:       st.FirstName,
		MiddleName:      st.MiddleName,
		LastName:        st.LastName,
		FullName:        st.FullName(),
		DateOfBirth:     st.DateOfBirth,
		Gender:          st.Gender,
		Level:           string(st.Level),
		Status:          string(st.Status),
		Guardians:       guardians,
		AdmittedAt:      st.AdmittedAt,
		GraduatedAt:     st.GraduatedAt,
		WithdrawnAt:     st.WithdrawnAt,
		WithdrawReason:  st.WithdrawReason,
		CreatedAt:       st.CreatedAt,
		Version:         st.Version,
	}
}
