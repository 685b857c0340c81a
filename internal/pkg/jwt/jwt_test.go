package jwt

import (
	"testing"

	"github.com/cmlabs-hris/absence-backend-go/internal/domain/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) Service {
	t.Helper()
	svc, err := NewJWTService("test-secret-key-for-jwt", "1h")
	require.NoError(t, err)
	return svc
}

func TestNewJWTService_InvalidExpiration(t *testing.T) {
	_, err := NewJWTService("secret", "forever")
	assert.Error(t, err)
}

func TestGenerateAccessToken_RoundTrip(t *testing.T) {
	svc := newTestService(t)
	employeeID := "0190f3a2-7c4e-7b1a-9d2e-000000000001"

	token, expiresAt, err := svc.GenerateAccessToken("user-1", &employeeID, user.RoleEmployee)
	require.NoError(t, err)
	assert.NotZero(t, expiresAt)

	decoded, err := svc.JWTAuth().Decode(token)
	require.NoError(t, err)

	actor, err := ActorFromClaims(decoded.PrivateClaims())
	require.NoError(t, err)
	assert.Equal(t, user.Actor{UserID: "user-1", EmployeeID: employeeID, Role: user.RoleEmployee}, actor)
	assert.Equal(t, TokenTypeAccess, decoded.PrivateClaims()["type"])
}

func TestStreamToken(t *testing.T) {
	svc := newTestService(t)
	actor := user.Actor{UserID: "user-hr", Role: user.RoleHR}

	token, expiresIn, err := svc.GenerateStreamToken(actor)
	require.NoError(t, err)
	assert.Equal(t, 300, expiresIn)

	got, err := svc.ValidateStreamToken(token)
	require.NoError(t, err)
	assert.Equal(t, actor, got)

	access, _, err := svc.GenerateAccessToken("user-hr", nil, user.RoleHR)
	require.NoError(t, err)
	_, err = svc.ValidateStreamToken(access)
	assert.Error(t, err)
}

func TestActorFromClaims_RejectsUnknownRole(t *testing.T) {
	tests := []struct {
		name   string
		claims map[string]interface{}
	}{
		{"mixed case role", map[string]interface{}{"user_id": "u", "role": "HR"}},
		{"legacy spelling", map[string]interface{}{"user_id": "u", "role": "human_resources"}},
		{"missing role", map[string]interface{}{"user_id": "u"}},
		{"missing user", map[string]interface{}{"role": "admin"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ActorFromClaims(tt.claims)
			assert.Error(t, err)
		})
	}
}
