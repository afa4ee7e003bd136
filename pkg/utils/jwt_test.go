package utils

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTManager_RoundTrip(t *testing.T) {
	m := NewJWTManager("secret", time.Hour, "pos-api")
	id := uuid.New()

	token, err := m.GenerateToken(id, "Register 1", RoleTerminal)
	require.NoError(t, err)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, id, claims.SubjectID)
	assert.Equal(t, "Register 1", claims.Name)
	assert.Equal(t, RoleTerminal, claims.Role)
	assert.Equal(t, id.String(), claims.Subject)
}

func TestJWTManager_Rejects(t *testing.T) {
	m := NewJWTManager("secret", time.Hour, "pos-api")

	_, err := m.GenerateToken(uuid.Nil, "x", RoleStaff)
	assert.Error(t, err)

	_, err = m.GenerateToken(uuid.New(), "x", "owner")
	assert.Error(t, err)

	token, err := m.GenerateToken(uuid.New(), "x", RoleStaff)
	require.NoError(t, err)

	other := NewJWTManager("other-secret", time.Hour, "pos-api")
	_, err = other.ValidateToken(token)
	assert.Error(t, err, "wrong secret")

	foreign := NewJWTManager("secret", time.Hour, "someone-else")
	_, err = foreign.ValidateToken(token)
	assert.Error(t, err, "wrong issuer")
}

func TestJWTManager_Expired(t *testing.T) {
	m := NewJWTManager("secret", time.Minute, "pos-api")
	issued := time.Date(2024, 3, 7, 8, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return issued }

	token, err := m.GenerateToken(uuid.New(), "x", RoleManager)
	require.NoError(t, err)

	m.now = func() time.Time { return issued.Add(2 * time.Minute) }
	_, err = m.ValidateToken(token)
	assert.Error(t, err)
}
