package devicetoken

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shiftflow/shiftflow-backend/pkg/config"
	"github.com/shiftflow/shiftflow-backend/pkg/errors"
)

// Claims represents the claims carried by a device token
type Claims struct {
	jwt.RegisteredClaims
	DeviceID   string `json:"device_id"`
	DeviceName string `json:"device_name"`

	// Tenant context - a device belongs to exactly one tenant
	TenantID     string `json:"tenant_id"`
	TenantSlug   string `json:"tenant_slug"`
	TenantSchema string `json:"tenant_schema"`
}

// Manager issues and validates short-lived device tokens.
// Devices exchange their registration secret for a token and use it
// for punch submissions until it expires.
type Manager struct {
	config *config.DeviceTokenConfig
}

// NewManager creates a new device token manager
func NewManager(cfg *config.DeviceTokenConfig) *Manager {
	return &Manager{config: cfg}
}

// DeviceInfo contains device information for token generation
type DeviceInfo struct {
	ID   string
	Name string

	// Tenant context - populated during device authentication
	TenantID     string
	TenantSlug   string
	TenantSchema string
}

// Token is an issued device token
type Token struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
	TokenType   string    `json:"token_type"`
}

// Generate generates a device token
func (m *Manager) Generate(dev *DeviceInfo) (*Token, error) {
	now := time.Now()
	expiry := now.Add(m.config.TokenExpiry)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.config.Issuer,
			Subject:   dev.ID,
			ExpiresAt: jwt.NewNumericDate(expiry),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        uuid.New().String(),
		},
		DeviceID:   dev.ID,
		DeviceName: dev.Name,

		TenantID:     dev.TenantID,
		TenantSlug:   dev.TenantSlug,
		TenantSchema: dev.TenantSchema,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(m.config.Secret))
	if err != nil {
		return nil, err
	}

	return &Token{
		AccessToken: tokenString,
		ExpiresAt:   expiry,
		TokenType:   "Bearer",
	}, nil
}

// Validate validates a device token and returns the claims
func (m *Manager) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.TokenInvalid()
		}
		return []byte(m.config.Secret), nil
	})

	if err != nil {
		if err.Error() == "token has invalid claims: token is expired" {
			return nil, errors.TokenExpired()
		}
		return nil, errors.TokenInvalid()
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.TokenInvalid()
	}

	return claims, nil
}

// GetTokenExpiry returns the token expiry duration
func (m *Manager) GetTokenExpiry() time.Duration {
	return m.config.TokenExpiry
}
