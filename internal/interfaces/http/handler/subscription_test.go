package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	appidentity "github.com/elimu/backend/internal/application/identity"
	"github.com/elimu/backend/internal/domain/identity"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockSubscriptionRepository implements identity.SubscriptionRepository for testing
type MockSubscriptionRepository struct {
	mock.Mock
}

func (m *MockSubscriptionRepository) FindByIDForSchool(ctx context.Context, schoolID, id uuid.UUID) (*identity.Subscription, error) {
	args := m.Called(ctx, schoolID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Subscription), args.Error(1)
}

func (m *MockSubscriptionRepository) FindCurrentForSchool(ctx context.Context, schoolID uuid.UUID) (*identity.Subscription, error) {
	args := m.Called(ctx, schoolID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Subscription), args.Error(1)
}

func (m *MockSubscriptionRepository) FindExpiring(ctx context.Context, cutoff time.Time) ([]identity.Subscription, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).([]identity.Subscription), args.Error(1)
}

func (m *MockSubscriptionRepository) Save(ctx context.Context, subscription *identity.Subscription) error {
	args := m.Called(ctx, subscription)
	return args.Error(0)
}

func newSubscriptionRouter(repo *MockSubscriptionRepository, schoolID uuid.UUID) *gin.Engine {
	service := appidentity.NewSubscriptionService(repo)
	h := NewSubscriptionHandler(service)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		setJWTContext(c, schoolID, uuid.New())
		c.Next()
	})
	router.GET("/subscription", h.GetCurrent)
	router.POST("/subscriptions/:id/activate", h.Activate)
	router.POST("/subscriptions/:id/cancel", h.Cancel)
	return router
}

func trialSubscription(t *testing.T, schoolID uuid.UUID) *identity.Subscription {
	t.Helper()
	sub, err := identity.NewTrialSubscription(schoolID, identity.PlanStandard,
		decimal.NewFromInt(4500), 30)
	require.NoError(t, err)
	return sub
}

func TestSubscriptionHandlerGetCurrent(t *testing.T) {
	schoolID := uuid.New()

	repo := new(MockSubscriptionRepository)
	repo.On("FindCurrentForSchool", mock.Anything, schoolID).Return(trialSubscription(t, schoolID), nil)

	router := newSubscriptionRouter(repo, schoolID)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/subscription", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data appidentity.SubscriptionResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "TRIAL", resp.Data.Status)
	assert.Equal(t, "STANDARD", resp.Data.Plan)
	assert.NotNil(t, resp.Data.TrialEndsAt)
}

func TestSubscriptionHandlerActivate(t *testing.T) {
	schoolID := uuid.New()
	sub := trialSubscription(t, schoolID)

	repo := new(MockSubscriptionRepository)
	repo.On("FindByIDForSchool", mock.Anything, schoolID, sub.ID).Return(sub, nil)
	repo.On("Save", mock.Anything, mock.AnythingOfType("*identity.Subscription")).Return(nil)

	router := newSubscriptionRouter(repo, schoolID)

	body, _ := json.Marshal(gin.H{"payment_reference": "MPESA-QX12AB34"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/subscriptions/"+sub.ID.String()+"/activate", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data appidentity.SubscriptionResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ACTIVE", resp.Data.Status)
	assert.NotNil(t, resp.Data.LastPaymentAt)
}

func TestSubscriptionHandlerActivateRequiresReference(t *testing.T) {
	schoolID := uuid.New()
	router := newSubscriptionRouter(new(MockSubscriptionRepository), schoolID)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/subscriptions/"+uuid.NewString()+"/activate", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubscriptionHandlerCancelledTwice(t *testing.T) {
	schoolID := uuid.New()
	sub := trialSubscription(t, schoolID)
	require.NoError(t, sub.Cancel("switching providers"))

	repo := new(MockSubscriptionRepository)
	repo.On("FindByIDForSchool", mock.Anything, schoolID, sub.ID).Return(sub, nil)

	router := newSubscriptionRouter(repo, schoolID)

	body, _ := json.Marshal(gin.H{"reason": "second attempt"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/subscriptions/"+sub.ID.String()+"/cancel", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}
