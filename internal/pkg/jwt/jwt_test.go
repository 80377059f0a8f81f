package jwt

import (
	"testing"

	"github.com/cmlabs-hris/salon-payroll-go/internal/domain/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAccessToken_RoundTrip(t *testing.T) {
	svc := NewJWTService("test-secret", "1h")

	token, expiresAt, err := svc.GenerateAccessToken("admin-1", true)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Positive(t, expiresAt)

	decoded, err := svc.JWTAuth().Decode(token)
	require.NoError(t, err)

	claims, err := decoded.AsMap(t.Context())
	require.NoError(t, err)

	parsed, err := svc.ParseClaims(claims)
	require.NoError(t, err)
	assert.Equal(t, "admin-1", parsed.UserID)
	assert.True(t, parsed.IsAdmin)
}

func TestGenerateAccessToken_InvalidExpiration(t *testing.T) {
	svc := NewJWTService("test-secret", "tomorrow")

	_, _, err := svc.GenerateAccessToken("admin-1", true)
	assert.Error(t, err)
}

func TestDecode_WrongSecret(t *testing.T) {
	token, _, err := NewJWTService("secret-a", "1h").GenerateAccessToken("admin-1", true)
	require.NoError(t, err)

	_, err = NewJWTService("secret-b", "1h").JWTAuth().Decode(token)
	assert.Error(t, err)
}

func TestParseClaims(t *testing.T) {
	svc := NewJWTService("test-secret", "1h")

	cases := []struct {
		name    string
		claims  map[string]interface{}
		want    Claims
		wantErr error
	}{
		{"non admin", map[string]interface{}{"user_id": "u1", "type": "access"}, Claims{UserID: "u1"}, nil},
		{"admin", map[string]interface{}{"user_id": "u1", "is_admin": true}, Claims{UserID: "u1", IsAdmin: true}, nil},
		{"refresh token", map[string]interface{}{"user_id": "u1", "type": "refresh"}, Claims{}, auth.ErrInvalidToken},
		{"missing user", map[string]interface{}{"is_admin": true}, Claims{}, auth.ErrInvalidToken},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := svc.ParseClaims(c.claims)
			if c.wantErr != nil {
				assert.ErrorIs(t, err, c.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, c.want, got)
		})
	}
}
