package school

import (
	"github.com/elimu/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// StudentEnrolledEvent is raised when a new student is enrolled
type StudentEnrolledEvent struct {
	shared.BaseDomainEvent
	StudentID       uuid.UUID `json:"student_id"`
	AdmissionNumber string    `json:"admission_number"`
	Level           CBCLevel  `json:"level"`
}

// EventType returns the event type name
func (e *StudentEnrolledEvent) EventType() string {
	return "StudentEnrolled"
}

// NewStudentEnrolledEvent creates a new StudentEnrolledEvent
func NewStudentEnrolledEvent(s *Student) *StudentEnrolledEvent {
	return &StudentEnrolledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("StudentEnrolled", "Student", s.ID, s.SchoolID),
		StudentID:       s.ID,
		AdmissionNumber: s.AdmissionNumber,
		Level:           s.Level,
	}
}

// StudentGraduatedEvent is raised when a student graduates
type StudentGraduatedEvent struct {
	shared.BaseDomainEvent
	StudentID       uuid.UUID `json:"student_id"`
	AdmissionNumber string    `json:"admission_number"`
}

// EventType returns the event type name
func (e *StudentGraduatedEvent) EventType() string {
	return "StudentGraduated"
}

// NewStudentGraduatedEvent creates a new StudentGraduatedEvent
func NewStudentGraduatedEvent(s *Student) *StudentGraduatedEvent {
	return &StudentGraduatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("StudentGraduated", "Student", s.ID, s.SchoolID),
		StudentID:       s.ID,
		AdmissionNumber: s.AdmissionNumber,
	}
}

// StudentWithdrawnEvent is raised when a student is withdrawn from the roll.
// Finance subscribes to stop issuing invoices for the student.
type StudentWithdrawnEvent struct {
	shared.BaseDomainEvent
	StudentID       uuid.UUID `json:"student_id"`
	AdmissionNumber string    `json:"admission_number"`
	Reason          string    `json:"reason"`
}

// EventType returns the event type name
func (e *StudentWithdrawnEvent) EventType() string {
	return "StudentWithdrawn"
}

// NewStudentWithdrawnEvent creates a new StudentWithdrawnEvent
func NewStudentWithdrawnEvent(s *Student, reason string) *StudentWithdrawnEvent {
	return &StudentWithdrawnEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("StudentWithdrawn", "Student", s.ID, s.SchoolID),
		StudentID:       s.ID,
		AdmissionNumber: s.AdmissionNumber,
		Reason:          reason,
	}
}
