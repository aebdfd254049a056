package auth

import (
	"errors"
	"time"

	appidentity "github.com/elimu/backend/internal/application/identity"
	"github.com/elimu/backend/internal/domain/identity"
	"github.com/elimu/backend/internal/infrastructure/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Common errors
var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrInvalidClaims    = errors.New("invalid token claims")
	ErrTokenNotYetValid = errors.New("token is not yet valid")
	ErrTokenRevoked     = errors.New("token has been revoked")
	ErrMissingUserID    = errors.New("missing user_id in claims")
)

// Claims represents custom JWT claims. SchoolID is absent for super
// admins, whose tokens are not bound to a tenant.
type Claims struct {
	jwt.RegisteredClaims
	UserID       string   `json:"user_id"`
	SchoolID     string   `json:"school_id,omitempty"`
	Email        string   `json:"email"`
	IsSuperAdmin bool     `json:"is_super_admin,omitempty"`
	Permissions  []string `json:"permissions,omitempty"`
}

// JWTService mints and validates signed access tokens
type JWTService struct {
	secret     []byte
	expiration time.Duration
	issuer     string
}

// NewJWTService creates a new JWT service
func NewJWTService(cfg config.JWTConfig) *JWTService {
	return &JWTService{
		secret:     []byte(cfg.Secret),
		expiration: cfg.Expiration,
		issuer:     cfg.Issuer,
	}
}

// Issue mints a signed access token for the given claims
func (s *JWTService) Issue(tc appidentity.TokenClaims) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(s.expiration)

	permissions := make([]string, len(tc.Permissions))
	for i, p := range tc.Permissions {
		permissions[i] = string(p)
	}

	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Issuer:    s.issuer,
			Subject:   tc.UserID.String(),
			Audience:  jwt.ClaimStrings{s.issuer},
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		UserID:       tc.UserID.String(),
		Email:        tc.Email,
		IsSuperAdmin: tc.IsSuperAdmin,
		Permissions:  permissions,
	}
	if tc.SchoolID != nil {
		claims.SchoolID = tc.SchoolID.String()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Validate parses and validates an access token
func (s *JWTService) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		if errors.Is(err, jwt.ErrTokenNotValidYet) {
			return nil, ErrTokenNotYetValid
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidClaims
	}
	if claims.UserID == "" {
		return nil, ErrMissingUserID
	}

	return claims, nil
}

// GetUserUUID extracts and parses the user ID from claims
func (c *Claims) GetUserUUID() (uuid.UUID, error) {
	return uuid.Parse(c.UserID)
}

// GetSchoolUUID extracts and parses the school ID from claims. Returns nil
// for super admin tokens.
func (c *Claims) GetSchoolUUID() (*uuid.UUID, error) {
	if c.SchoolID == "" {
		return nil, nil
	}
	id, err := uuid.Parse(c.SchoolID)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// HasPermission checks if the claims contain a specific permission. Super
// admin tokens implicitly hold every permission.
func (c *Claims) HasPermission(permission identity.Permission) bool {
	if c.IsSuperAdmin {
		return true
	}
	for _, p := range c.Permissions {
		if p == string(permission) {
			return true
		}
	}
	return false
}

// HasAnyPermission checks if the claims contain any of the specified permissions
func (c *Claims) HasAnyPermission(permissions ...identity.Permission) bool {
	for _, required := range permissions {
		if c.HasPermission(required) {
			return true
		}
	}
	return false
}

// GetExpiresAtTime returns the token's expiration time as time.Time
func (c *Claims) GetExpiresAtTime() time.Time {
	if c.ExpiresAt != nil {
		return c.ExpiresAt.Time
	}
	return time.Time{}
}

// GetRemainingTTL returns the remaining time until the token expires
func (c *Claims) GetRemainingTTL() time.Duration {
	if c.ExpiresAt == nil {
		return 0
	}
	remaining := time.Until(c.ExpiresAt.Time)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Ensure interface compliance
var _ appidentity.TokenIssuer = (*JWTService)(nil)
