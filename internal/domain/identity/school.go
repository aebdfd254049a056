package identity

import (
	"regexp"
	"strings"
	"time"

	"github.com/elimu/backend/internal/domain/shared"
)

// SchoolStatus represents the status of a tenant school
type SchoolStatus string

const (
	SchoolStatusActive    SchoolStatus = "ACTIVE"
	SchoolStatusSuspended SchoolStatus = "SUSPENDED"
	SchoolStatusClosed    SchoolStatus = "CLOSED"
)

var subdomainRegex = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]{1,61}[a-z0-9])?$`)

// School is the tenant: every other aggregate in the system is scoped to
// one school. It is identified on the wire by its subdomain.
type School struct {
	shared.BaseAggregateRoot
	Name      string       `gorm:"type:varchar(200);not null"`
	Subdomain string       `gorm:"type:varchar(63);not null;uniqueIndex"`
	Email     string       `gorm:"type:varchar(255);not null"`
	Phone     string       `gorm:"type:varchar(30)"`
	Address   string       `gorm:"type:varchar(500)"`
	Status    SchoolStatus `gorm:"type:varchar(20);not null;default:'ACTIVE';index"`
	ClosedAt  *time.Time
}

// TableName returns the table name for GORM
func (School) TableName() string {
	return "schools"
}

// NewSchool registers a new tenant school
func NewSchool(name, subdomain, email string) (*School, error) {
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "School name cannot be empty")
	}
	subdomain = strings.ToLower(strings.TrimSpace(subdomain))
	if !subdomainRegex.MatchString(subdomain) {
		return nil, shared.NewDomainError("INVALID_SUBDOMAIN", "Subdomain must be lowercase letters, digits and hyphens")
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}

	s := &School{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              strings.TrimSpace(name),
		Subdomain:         subdomain,
		Email:             strings.ToLower(strings.TrimSpace(email)),
		Status:            SchoolStatusActive,
	}

	s.AddDomainEvent(NewSchoolRegisteredEvent(s))

	return s, nil
}

// UpdateContact updates the school's contact details
func (s *School) UpdateContact(email, phone, address string) error {
	if err := validateEmail(email); err != nil {
		return err
	}
	s.Email = strings.ToLower(strings.TrimSpace(email))
	s.Phone = strings.TrimSpace(phone)
	s.Address = strings.TrimSpace(address)
	s.Touch()
	s.IncrementVersion()
	return nil
}

// Rename changes the school's display name
func (s *School) Rename(name string) error {
	if strings.TrimSpace(name) == "" {
		return shared.NewDomainError("INVALID_NAME", "School name cannot be empty")
	}
	s.Name = strings.TrimSpace(name)
	s.Touch()
	s.IncrementVersion()
	return nil
}

// Suspend blocks all logins for the school, typically for non-payment
func (s *School) Suspend() error {
	if s.Status == SchoolStatusClosed {
		return shared.NewDomainError("INVALID_STATE", "A closed school cannot be suspended")
	}
	s.Status = SchoolStatusSuspended
	s.Touch()
	s.IncrementVersion()
	return nil
}

// Reactivate restores a suspended school
func (s *School) Reactivate() error {
	if s.Status != SchoolStatusSuspended {
		return shared.NewDomainError("INVALID_STATE", "Only a suspended school can be reactivated")
	}
	s.Status = SchoolStatusActive
	s.Touch()
	s.IncrementVersion()
	return nil
}

// Close permanently closes the tenant
func (s *School) Close() error {
	if s.Status == SchoolStatusClosed {
		return shared.NewDomainError("INVALID_STATE", "School is already closed")
	}
	now := time.Now()
	s.Status = SchoolStatusClosed
	s.ClosedAt = &now
	s.UpdatedAt = now
	s.IncrementVersion()
	return nil
}

// IsActive returns true if the school can be used
func (s *School) IsActive() bool {
	return s.Status == SchoolStatusActive
}
