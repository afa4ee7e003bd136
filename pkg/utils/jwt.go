package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Roles carried by bearer tokens
const (
	RoleTerminal = "terminal"
	RoleStaff    = "staff"
	RoleManager  = "manager"
)

// JWTClaims identifies the register terminal or staff member behind a request
type JWTClaims struct {
	SubjectID uuid.UUID `json:"subject_id"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	jwt.RegisteredClaims
}

// JWTManager handles JWT token generation and validation
type JWTManager struct {
	secretKey []byte
	expiry    time.Duration
	issuer    string
	now       func() time.Time
}

// NewJWTManager creates a new JWT manager
func NewJWTManager(secret string, expiry time.Duration, issuer string) *JWTManager {
	return &JWTManager{
		secretKey: []byte(secret),
		expiry:    expiry,
		issuer:    issuer,
		now:       time.Now,
	}
}

// GenerateToken signs a token for a terminal or staff member
func (m *JWTManager) GenerateToken(subjectID uuid.UUID, name, role string) (string, error) {
	if subjectID == uuid.Nil {
		return "", errors.New("subject id is required")
	}
	if !ValidRole(role) {
		return "", errors.New("unknown role " + role)
	}

	now := m.now()
	claims := &JWTClaims{
		SubjectID: subjectID,
		Name:      name,
		Role:      role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    m.issuer,
			Subject:   subjectID.String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secretKey)
}

// ValidateToken validates a token and returns the claims
func (m *JWTManager) ValidateToken(tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secretKey, nil
	}, jwt.WithIssuer(m.issuer), jwt.WithTimeFunc(m.now))

	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.SubjectID == uuid.Nil {
		return nil, errors.New("invalid subject in token")
	}

	return claims, nil
}

func ValidRole(role string) bool {
	switch role {
	case RoleTerminal, RoleStaff, RoleManager:
		return true
	}
	return false
}
