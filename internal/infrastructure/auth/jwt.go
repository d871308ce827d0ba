package auth

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	appidentity "github.com/voyago/backend/internal/application/identity"
	"github.com/voyago/backend/internal/domain/access"
	"github.com/voyago/backend/internal/domain/identity"
	"github.com/voyago/backend/internal/domain/module"
	"github.com/voyago/backend/internal/infrastructure/config"
)

// TokenType represents the type of JWT token
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// Common errors
var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrInvalidTokenType = errors.New("invalid token type")
	ErrInvalidClaims    = errors.New("invalid token claims")
	ErrTokenNotYetValid = errors.New("token is not yet valid")
	ErrMissingUserID    = errors.New("missing user_id in claims")
	ErrMissingRole      = errors.New("missing role in claims")
)

// Claims carries the caller identity: role, owning agency for agency users,
// and the per-module grants for agents. The resolver rebuilds the Identity
// value from these on every request without touching the user table.
type Claims struct {
	jwt.RegisteredClaims
	UserID      string          `json:"user_id"`
	Role        string          `json:"role"`
	AgencyID    string          `json:"agency_id,omitempty"`
	Permissions json.RawMessage `json:"permissions,omitempty"`
	TokenType   TokenType       `json:"token_type"`
}

// JWTService mints and validates tokens
type JWTService struct {
	secret            []byte
	accessExpiration  time.Duration
	refreshExpiration time.Duration
	issuer            string
}

// NewJWTService creates a new JWT service
func NewJWTService(cfg config.JWTConfig) *JWTService {
	return &JWTService{
		secret:            []byte(cfg.Secret),
		accessExpiration:  cfg.AccessTokenExpiration,
		refreshExpiration: cfg.RefreshTokenExpiration,
		issuer:            cfg.Issuer,
	}
}

// Issue implements the application layer's TokenIssuer port
func (s *JWTService) Issue(user *identity.User) (appidentity.TokenPair, error) {
	now := time.Now()

	agencyID := ""
	if user.AgencyID != nil {
		agencyID = user.AgencyID.String()
	}

	var perms json.RawMessage
	if user.Role == module.RoleAgent && len(user.Permissions) > 0 {
		encoded, err := json.Marshal(user.Permissions)
		if err != nil {
			return appidentity.TokenPair{}, err
		}
		perms = encoded
	}

	accessClaims := &Claims{
		RegisteredClaims: s.registeredClaims(user.ID, now, s.accessExpiration),
		UserID:           user.ID.String(),
		Role:             string(user.Role),
		AgencyID:         agencyID,
		Permissions:      perms,
		TokenType:        TokenTypeAccess,
	}
	accessToken, err := s.sign(accessClaims)
	if err != nil {
		return appidentity.TokenPair{}, err
	}

	// The refresh token carries no role or grants; they are re-read from the
	// user record when it is redeemed.
	refreshClaims := &Claims{
		RegisteredClaims: s.registeredClaims(user.ID, now, s.refreshExpiration),
		UserID:           user.ID.String(),
		TokenType:        TokenTypeRefresh,
	}
	refreshToken, err := s.sign(refreshClaims)
	if err != nil {
		return appidentity.TokenPair{}, err
	}

	return appidentity.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    now.Add(s.accessExpiration),
	}, nil
}

func (s *JWTService) registeredClaims(userID uuid.UUID, now time.Time, ttl time.Duration) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		ID:        uuid.New().String(),
		Issuer:    s.issuer,
		Subject:   userID.String(),
		Audience:  jwt.ClaimStrings{s.issuer},
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		NotBefore: jwt.NewNumericDate(now),
		IssuedAt:  jwt.NewNumericDate(now),
	}
}

func (s *JWTService) sign(claims *Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ValidateRefresh implements the application layer's TokenIssuer port: it
// validates a refresh token and returns the user it was issued to.
func (s *JWTService) ValidateRefresh(tokenString string) (uuid.UUID, error) {
	claims, err := s.ValidateRefreshToken(tokenString)
	if err != nil {
		return uuid.Nil, err
	}
	return claims.GetUserUUID()
}

// ValidateAccessToken validates an access token and returns its claims
func (s *JWTService) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.validate(tokenString, TokenTypeAccess)
}

// ValidateRefreshToken validates a refresh token and returns its claims
func (s *JWTService) ValidateRefreshToken(tokenString string) (*Claims, error) {
	return s.validate(tokenString, TokenTypeRefresh)
}

func (s *JWTService) validate(tokenString string, expectedType TokenType) (*Claims, error) {
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

	if claims.TokenType != expectedType {
		return nil, ErrInvalidTokenType
	}
	if claims.UserID == "" {
		return nil, ErrMissingUserID
	}
	if expectedType == TokenTypeAccess && claims.Role == "" {
		return nil, ErrMissingRole
	}

	return claims, nil
}

// ToIdentity rebuilds the caller identity from the access token claims
func (c *Claims) ToIdentity() (access.Identity, error) {
	userID, err := uuid.Parse(c.UserID)
	if err != nil {
		return nil, ErrInvalidClaims
	}

	switch module.Role(c.Role) {
	case module.RoleSuperadmin:
		return access.Superadmin{UserID: userID}, nil
	case module.RoleAgence:
		agencyID, err := uuid.Parse(c.AgencyID)
		if err != nil {
			return nil, ErrInvalidClaims
		}
		return access.AgencyAdmin{UserID: userID, AgencyID: agencyID}, nil
	case module.RoleAgent:
		agencyID, err := uuid.Parse(c.AgencyID)
		if err != nil {
			return nil, ErrInvalidClaims
		}
		var perms []access.ModulePermission
		if len(c.Permissions) > 0 {
			if err := json.Unmarshal(c.Permissions, &perms); err != nil {
				return nil, ErrInvalidClaims
			}
		}
		return access.Agent{UserID: userID, AgencyID: agencyID, Permissions: perms}, nil
	default:
		return nil, ErrInvalidClaims
	}
}

// GetUserUUID extracts and parses the user ID from claims
func (c *Claims) GetUserUUID() (uuid.UUID, error) {
	return uuid.Parse(c.UserID)
}

// GetAgencyUUID extracts and parses the agency ID from claims
func (c *Claims) GetAgencyUUID() (uuid.UUID, error) {
	return uuid.Parse(c.AgencyID)
}
