package identity

import (
	"context"
	"time"

	"github.com/elimu/backend/internal/domain/identity"
	"github.com/elimu/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TenantSeeder provisions a new school's domain defaults (chart of
// accounts, posting rules). Implemented by the persistence layer.
type TenantSeeder interface {
	SeedDefaults(ctx context.Context, schoolID uuid.UUID) error
}

// SchoolService handles tenant registration and lifecycle
type SchoolService struct {
	schoolRepo       identity.SchoolRepository
	userRepo         identity.UserRepository
	roleRepo         identity.RoleRepository
	subscriptionRepo identity.SubscriptionRepository
	registry         *identity.PermissionRegistry
	seeder           TenantSeeder
	eventBus         shared.EventPublisher
}

// NewSchoolService creates a new school service
func NewSchoolService(
	schoolRepo identity.SchoolRepository,
	userRepo identity.UserRepository,
	roleRepo identity.RoleRepository,
	subscriptionRepo identity.SubscriptionRepository,
	registry *identity.PermissionRegistry,
	seeder TenantSeeder,
	eventBus shared.EventPublisher,
) *SchoolService {
	return &SchoolService{
		schoolRepo:       schoolRepo,
		userRepo:         userRepo,
		roleRepo:         roleRepo,
		subscriptionRepo: subscriptionRepo,
		registry:         registry,
		seeder:           seeder,
		eventBus:         eventBus,
	}
}

// SchoolResponse represents tenant data returned to clients
type SchoolResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Subdomain string    `json:"subdomain"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Address   string    `json:"address,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// RegisterSchoolRequest provisions a new tenant with its first admin
type RegisterSchoolRequest struct {
	Name          string          `json:"name" binding:"required,max=200"`
	Subdomain     string          `json:"subdomain" binding:"required,max=63"`
	Email         string          `json:"email" binding:"required,email"`
	AdminEmail    string          `json:"admin_email" binding:"required,email"`
	AdminPassword string          `json:"admin_password" binding:"required"`
	AdminFullName string          `json:"admin_full_name" binding:"required,max=200"`
	Plan          string          `json:"plan" binding:"required,oneof=STARTER STANDARD ENTERPRISE"`
	MonthlyPrice  decimal.Decimal `json:"monthly_price" binding:"required"`
	TrialDays     int             `json:"trial_days" binding:"required,min=1,max=90"`
}

// UpdateSchoolRequest updates tenant contact details
type UpdateSchoolRequest struct {
	Name    string `json:"name" binding:"required,max=200"`
	Email   string `json:"email" binding:"required,email"`
	Phone   string `json:"phone" binding:"max=30"`
	Address string `json:"address" binding:"max=500"`
}

// SchoolListFilter defines filtering options for tenant list queries
type SchoolListFilter struct {
	Status   string `form:"status"`
	Search   string `form:"search"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

// RegisterSchool provisions a tenant: the school record, a trial
// subscription, the system roles, the first admin user holding the
// admin role, and the seeded accounting defaults.
func (s *SchoolService) RegisterSchool(ctx context.Context, req RegisterSchoolRequest) (*SchoolResponse, error) {
	existing, err := s.schoolRepo.FindBySubdomain(ctx, req.Subdomain)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, shared.NewDomainError("DUPLICATE", "subdomain already in use")
	}

	school, err := identity.NewSchool(req.Name, req.Subdomain, req.Email)
	if err != nil {
		return nil, err
	}
	if err := s.schoolRepo.Save(ctx, school); err != nil {
		return nil, err
	}

	subscription, err := identity.NewTrialSubscription(school.ID, identity.SubscriptionPlan(req.Plan), req.MonthlyPrice, req.TrialDays)
	if err != nil {
		return nil, err
	}
	if err := s.subscriptionRepo.Save(ctx, subscription); err != nil {
		return nil, err
	}

	adminRole, err := s.seedSystemRoles(ctx, school.ID)
	if err != nil {
		return nil, err
	}

	admin, err := identity.NewUser(school.ID, req.AdminEmail, req.AdminPassword, req.AdminFullName)
	if err != nil {
		return nil, err
	}
	if err := admin.AssignRole(adminRole.ID); err != nil {
		return nil, err
	}
	if err := s.userRepo.Save(ctx, admin); err != nil {
		return nil, err
	}

	if s.seeder != nil {
		if err := s.seeder.SeedDefaults(ctx, school.ID); err != nil {
			return nil, err
		}
	}

	s.publishEvents(ctx, school.GetDomainEvents())
	school.ClearDomainEvents()
	s.publishEvents(ctx, admin.GetDomainEvents())
	admin.ClearDomainEvents()

	return toSchoolResponse(school), nil
}

// GetSchoolByID retrieves a tenant by ID
func (s *SchoolService) GetSchoolByID(ctx context.Context, id uuid.UUID) (*SchoolResponse, error) {
	school, err := s.findSchool(ctx, id)
	if err != nil {
		return nil, err
	}
	return toSchoolResponse(school), nil
}

// UpdateSchool updates a tenant's name and contact details
func (s *SchoolService) UpdateSchool(ctx context.Context, id uuid.UUID, req UpdateSchoolRequest) (*SchoolResponse, error) {
	school, err := s.findSchool(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := school.Rename(req.Name); err != nil {
		return nil, err
	}
	if err := school.UpdateContact(req.Email, req.Phone, req.Address); err != nil {
		return nil, err
	}
	if err := s.schoolRepo.Save(ctx, school); err != nil {
		return nil, err
	}
	return toSchoolResponse(school), nil
}

// SuspendSchool suspends a tenant; its users can no longer log in
func (s *SchoolService) SuspendSchool(ctx context.Context, id uuid.UUID) (*SchoolResponse, error) {
	return s.transition(ctx, id, (*identity.School).Suspend)
}

// ReactivateSchool lifts a suspension
func (s *SchoolService) ReactivateSchool(ctx context.Context, id uuid.UUID) (*SchoolResponse, error) {
	return s.transition(ctx, id, (*identity.School).Reactivate)
}

// CloseSchool permanently closes a tenant
func (s *SchoolService) CloseSchool(ctx context.Context, id uuid.UUID) (*SchoolResponse, error) {
	return s.transition(ctx, id, (*identity.School).Close)
}

// ListSchools lists tenants with filtering
func (s *SchoolService) ListSchools(ctx context.Context, filter SchoolListFilter) ([]SchoolResponse, int64, error) {
	domainFilter := identity.SchoolFilter{
		Filter: shared.Filter{
			Search:   filter.Search,
			Page:     filter.Page,
			PageSize: filter.PageSize,
		},
	}
	if filter.Status != "" {
		st := identity.SchoolStatus(filter.Status)
		domainFilter.Status = &st
	}

	schools, err := s.schoolRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.schoolRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]SchoolResponse, 0, len(schools))
	for i := range schools {
		responses = append(responses, *toSchoolResponse(&schools[i]))
	}
	return responses, total, nil
}

// seedSystemRoles creates the built-in roles and returns the admin role.
// The admin role is granted the entire permission catalogue; the others
// get their slice of it by resource.
func (s *SchoolService) seedSystemRoles(ctx context.Context, schoolID uuid.UUID) (*identity.Role, error) {
	admin, err := identity.NewSystemRole(schoolID, "admin", "Administrator")
	if err != nil {
		return nil, err
	}
	if err := admin.SetPermissions(s.registry, s.registry.All()); err != nil {
		return nil, err
	}
	if err := s.roleRepo.Save(ctx, admin); err != nil {
		return nil, err
	}

	seeds := []struct {
		code, name string
		resources  []string
	}{
		{"bursar", "Bursar", []string{"accounting", "invoices", "payments", "expenses", "budgets"}},
		{"registrar", "Registrar", []string{"students", "curriculum"}},
		{"teacher", "Teacher", []string{"students"}},
	}
	for _, seed := range seeds {
		role, err := identity.NewSystemRole(schoolID, seed.code, seed.name)
		if err != nil {
			return nil, err
		}
		var perms []identity.Permission
		for _, resource := range seed.resources {
			for _, def := range s.registry.ForResource(resource) {
				perms = append(perms, def.Code)
			}
		}
		if err := role.SetPermissions(s.registry, perms); err != nil {
			return nil, err
		}
		if err := s.roleRepo.Save(ctx, role); err != nil {
			return nil, err
		}
	}
	return admin, nil
}

func (s *SchoolService) transition(ctx context.Context, id uuid.UUID, op func(*identity.School) error) (*SchoolResponse, error) {
	school, err := s.findSchool(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := op(school); err != nil {
		return nil, err
	}
	if err := s.schoolRepo.Save(ctx, school); err != nil {
		return nil, err
	}
	return toSchoolResponse(school), nil
}

func (s *SchoolService) findSchool(ctx context.Context, id uuid.UUID) (*identity.School, error) {
	school, err := s.schoolRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if school == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "school not found")
	}
	return school, nil
}

func (s *SchoolService) publishEvents(ctx context.Context, events []shared.DomainEvent) {
	if s.eventBus == nil || len(events) == 0 {
		return
	}
	_ = s.eventBus.Publish(ctx, events...)
}

func toSchoolResponse(sc *identity.School) *SchoolResponse {
	return &SchoolResponse{
		ID:        sc.ID,
		Name:      sc.Name,
		Subdomain: sc.Subdomain,
		Email:     sc.Email,
		Phone:     sc.Phone,
		Address:   sc.Address,
		Status:    string(sc.Status),
		CreatedAt: sc.CreatedAt,
	}
}
