package school

import (
	"strings"
	"time"

	"github.com/elimu/backend/internal/domain/shared"
	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// CBCLevel is the class level in the Kenyan Competency-Based Curriculum,
// pre-primary through senior school.
type CBCLevel string

const (
	CBCLevelPP1     CBCLevel = "PP1"
	CBCLevelPP2     CBCLevel = "PP2"
	CBCLevelGrade1  CBCLevel = "GRADE_1"
	CBCLevelGrade2  CBCLevel = "GRADE_2"
	CBCLevelGrade3  CBCLevel = "GRADE_3"
	CBCLevelGrade4  CBCLevel = "GRADE_4"
	CBCLevelGrade5  CBCLevel = "GRADE_5"
	CBCLevelGrade6  CBCLevel = "GRADE_6"
	CBCLevelGrade7  CBCLevel = "GRADE_7"
	CBCLevelGrade8  CBCLevel = "GRADE_8"
	CBCLevelGrade9  CBCLevel = "GRADE_9"
	CBCLevelGrade10 CBCLevel = "GRADE_10"
	CBCLevelGrade11 CBCLevel = "GRADE_11"
	CBCLevelGrade12 CBCLevel = "GRADE_12"
)

var cbcLevelOrder = []CBCLevel{
	CBCLevelPP1, CBCLevelPP2,
	CBCLevelGrade1, CBCLevelGrade2, CBCLevelGrade3, CBCLevelGrade4,
	CBCLevelGrade5, CBCLevelGrade6, CBCLevelGrade7, CBCLevelGrade8,
	CBCLevelGrade9, CBCLevelGrade10, CBCLevelGrade11, CBCLevelGrade12,
}

// IsValid checks if the level is a known CBC level
func (l CBCLevel) IsValid() bool {
	for _, known := range cbcLevelOrder {
		if l == known {
			return true
		}
	}
	return false
}

// Next returns the level a student promotes into, or false at GRADE_12
func (l CBCLevel) Next() (CBCLevel, bool) {
	for i, known := range cbcLevelOrder {
		if l == known && i+1 < len(cbcLevelOrder) {
			return cbcLevelOrder[i+1], true
		}
	}
	return l, false
}

// StudentStatus represents the enrolment status of a student
type StudentStatus string

const (
	StudentStatusActive    StudentStatus = "ACTIVE"
	StudentStatusSuspended StudentStatus = "SUSPENDED"
	StudentStatusGraduated StudentStatus = "GRADUATED"
	StudentStatusWithdrawn StudentStatus = "WITHDRAWN"
)

// studentTransitions: suspension is reversible, graduation and withdrawal
// are terminal
var studentTransitions = shared.TransitionTable[StudentStatus]{
	StudentStatusActive:    {StudentStatusSuspended, StudentStatusGraduated, StudentStatusWithdrawn},
	StudentStatusSuspended: {StudentStatusActive, StudentStatusWithdrawn},
}

var nameCaser = cases.Title(language.English)

// NormalizeName canonicalizes a person name for storage and search
func NormalizeName(name string) string {
	return nameCaser.String(strings.ToLower(strings.TrimSpace(name)))
}

// Guardian is a parent or guardian contact for a student
type Guardian struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key"`
	StudentID    uuid.UUID `gorm:"type:uuid;not null;index"`
	FullName     string    `gorm:"type:varchar(200);not null"`
	Relationship string    `gorm:"type:varchar(50);not null"` // Mother, Father, Guardian
	Phone        string    `gorm:"type:varchar(30);not null"`
	Email        string    `gorm:"type:varchar(255)"`
	IsPrimary    bool      `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (Guardian) TableName() string {
	return "guardians"
}

// Student is an enrolled learner
type Student struct {
	shared.SchoolAggregateRoot
	AdmissionNumber string        `gorm:"type:varchar(50);not null;uniqueIndex:idx_student_school_admission,priority:2"`
	FirstName       string        `gorm:"type:varchar(100);not null"`
	MiddleName      string        `gorm:"type:varchar(100)"`
	LastName        string        `gorm:"type:varchar(100);not null"`
	DateOfBirth     time.Time     `gorm:"not null"`
	Gender          string        `gorm:"type:varchar(10)"`
	Level           CBCLevel      `gorm:"type:varchar(20);not null;index"`
	Status          StudentStatus `gorm:"type:varchar(20);not null;default:'ACTIVE';index"`
	Guardians       []Guardian    `gorm:"foreignKey:StudentID;references:ID"`
	AdmittedAt      time.Time     `gorm:"not null"`
	GraduatedAt     *time.Time
	WithdrawnAt     *time.Time
	WithdrawReason  string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (Student) TableName() string {
	return "students"
}

// NewStudent enrols a new student
func NewStudent(schoolID uuid.UUID, admissionNumber, firstName, lastName string, dateOfBirth time.Time, level CBCLevel) (*Student, error) {
	if admissionNumber == "" {
		return nil, shared.NewDomainError("INVALID_ADMISSION_NUMBER", "Admission number cannot be empty")
	}
	if strings.TrimSpace(firstName) == "" || strings.TrimSpace(lastName) == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "First and last name are required")
	}
	if dateOfBirth.IsZero() || !dateOfBirth.Before(time.Now()) {
		return nil, shared.NewDomainError("INVALID_DATE_OF_BIRTH", "Date of birth must be in the past")
	}
	if !level.IsValid() {
		return nil, shared.NewDomainError("INVALID_LEVEL", "Unknown CBC level")
	}

	s := &Student{
		SchoolAggregateRoot: shared.NewSchoolAggregateRoot(schoolID),
		AdmissionNumber:     admissionNumber,
		FirstName:           NormalizeName(firstName),
		LastName:            NormalizeName(lastName),
		DateOfBirth:         dateOfBirth,
		Level:               level,
		Status:              StudentStatusActive,
		Guardians:           make([]Guardian, 0),
		AdmittedAt:          time.Now(),
	}

	s.AddDomainEvent(NewStudentEnrolledEvent(s))

	return s, nil
}

// FullName returns the student's display name
func (s *Student) FullName() string {
	if s.MiddleName != "" {
		return s.FirstName + " " + s.MiddleName + " " + s.LastName
	}
	return s.FirstName + " " + s.LastName
}

// UpdateProfile updates the student's personal details
func (s *Student) UpdateProfile(firstName, middleName, lastName, gender string, dateOfBirth time.Time) error {
	if strings.TrimSpace(firstName) == "" || strings.TrimSpace(lastName) == "" {
		return shared.NewDomainError("INVALID_NAME", "First and last name are required")
	}
	if dateOfBirth.IsZero() || !dateOfBirth.Before(time.Now()) {
		return shared.NewDomainError("INVALID_DATE_OF_BIRTH", "Date of birth must be in the past")
	}

	s.FirstName = NormalizeName(firstName)
	s.MiddleName = NormalizeName(middleName)
	s.LastName = NormalizeName(lastName)
	s.Gender = gender
	s.DateOfBirth = dateOfBirth
	s.Touch()
	s.IncrementVersion()
	return nil
}

// AddGuardian attaches a guardian contact. The first guardian becomes the
// primary contact.
func (s *Student) AddGuardian(fullName, relationship, phone, email string) error {
	if strings.TrimSpace(fullName) == "" {
		return shared.NewDomainError("INVALID_NAME", "Guardian name cannot be empty")
	}
	if strings.TrimSpace(phone) == "" {
		return shared.NewDomainError("INVALID_PHONE", "Guardian phone cannot be empty")
	}

	s.Guardians = append(s.Guardians, Guardian{
		ID:           uuid.New(),
		StudentID:    s.ID,
		FullName:     NormalizeName(fullName),
		Relationship: relationship,
		Phone:        phone,
		Email:        email,
		IsPrimary:    len(s.Guardians) == 0,
	})
	s.Touch()
	return nil
}

// Promote moves an active student to the next CBC level
func (s *Student) Promote() error {
	if s.Status != StudentStatusActive {
		return shared.NewDomainError("INVALID_STATE", "Only active students can be promoted")
	}
	next, ok := s.Level.Next()
	if !ok {
		return shared.NewDomainError("INVALID_LEVEL", "Student is already at the final level")
	}
	s.Level = next
	s.Touch()
	s.IncrementVersion()
	return nil
}

// Suspend suspends an active student
func (s *Student) Suspend() error {
	if err := studentTransitions.Guard(s.Status, StudentStatusSuspended); err != nil {
		return err
	}
	s.Status = StudentStatusSuspended
	s.Touch()
	s.IncrementVersion()
	return nil
}

// Reinstate returns a suspended student to active
func (s *Student) Reinstate() error {
	if err := studentTransitions.Guard(s.Status, StudentStatusActive); err != nil {
		return err
	}
	s.Status = StudentStatusActive
	s.Touch()
	s.IncrementVersion()
	return nil
}

// Graduate marks an active student as graduated
func (s *Student) Graduate() error {
	if err := studentTransitions.Guard(s.Status, StudentStatusGraduated); err != nil {
		return err
	}
	now := time.Now()
	s.Status = StudentStatusGraduated
	s.GraduatedAt = &now
	s.UpdatedAt = now
	s.IncrementVersion()

	s.AddDomainEvent(NewStudentGraduatedEvent(s))

	return nil
}

// Withdraw removes a student from the roll
func (s *Student) Withdraw(reason string) error {
	if err := studentTransitions.Guard(s.Status, StudentStatusWithdrawn); err != nil {
		return err
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Withdrawal reason is required")
	}
	now := time.Now()
	s.Status = StudentStatusWithdrawn
	s.WithdrawnAt = &now
	s.WithdrawReason = reason
	s.UpdatedAt = now
	s.IncrementVersion()

	s.AddDomainEvent(NewStudentWithdrawnEvent(s, reason))

	return nil
}
