package identity

import (
	"github.com/elimu/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// SchoolRegisteredEvent is raised when a new tenant school is registered.
// Seeding subscribers create the default chart of accounts and roles.
type SchoolRegisteredEvent struct {
	shared.BaseDomainEvent
	Name      string `json:"name"`
	Subdomain string `json:"subdomain"`
}

// EventType returns the event type name
func (e *SchoolRegisteredEvent) EventType() string {
	return "SchoolRegistered"
}

// NewSchoolRegisteredEvent creates a new SchoolRegisteredEvent
func NewSchoolRegisteredEvent(s *School) *SchoolRegisteredEvent {
	return &SchoolRegisteredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("SchoolRegistered", "School", s.ID, s.ID),
		Name:            s.Name,
		Subdomain:       s.Subdomain,
	}
}

// UserCreatedEvent is raised when a user account is created
type UserCreatedEvent struct {
	shared.BaseDomainEvent
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
}

// EventType returns the event type name
func (e *UserCreatedEvent) EventType() string {
	return "UserCreated"
}

// NewUserCreatedEvent creates a new UserCreatedEvent
func NewUserCreatedEvent(u *User) *UserCreatedEvent {
	var schoolID uuid.UUID
	if u.SchoolID != nil {
		schoolID = *u.SchoolID
	}
	return &UserCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("UserCreated", "User", u.ID, schoolID),
		UserID:          u.ID,
		Email:           u.Email,
	}
}
