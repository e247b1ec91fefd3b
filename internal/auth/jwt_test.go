package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParse(t *testing.T) {
	token, err := Issue("secret", "cust-1", RoleCustomer, time.Hour)
	require.NoError(t, err)

	claims, err := ParseAuth("Bearer "+token, "secret")
	require.NoError(t, err)
	assert.Equal(t, "cust-1", claims.Subject)
	assert.Equal(t, RoleCustomer, claims.Role)
}

func TestParseAuth_Rejects(t *testing.T) {
	valid, err := Issue("secret", "cust-1", RoleCustomer, time.Hour)
	require.NoError(t, err)
	expired, err := Issue("secret", "cust-1", RoleCustomer, -time.Minute)
	require.NoError(t, err)
	noSubject, err := Issue("secret", "", RoleAdmin, time.Hour)
	require.NoError(t, err)
	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{Role: RoleAdmin}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name    string
		header  string
		wantErr error
	}{
		{"empty", "", ErrMissingToken},
		{"bearer only", "Bearer ", ErrMissingToken},
		{"wrong secret", "Bearer " + valid, ErrInvalidToken},
		{"expired", "Bearer " + expired, ErrInvalidToken},
		{"no subject", "Bearer " + noSubject, ErrInvalidToken},
		{"alg none", "Bearer " + none, ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			secret := "secret"
			if tt.name == "wrong secret" {
				secret = "other"
			}
			_, err := ParseAuth(tt.header, secret)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
