package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTokenManager() *TokenManager {
	return NewTokenManager("access-secret", "refresh-secret", 15*time.Minute, 24*time.Hour)
}

func TestTokenManager_GenerateTokenPair(t *testing.T) {
	tm := newTestTokenManager()
	userID := uuid.New().String()

	pair, err := tm.GenerateTokenPair(userID, "alice")
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, int64(900), pair.ExpiresIn)

	access, err := tm.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, userID, access.UserID)
	assert.Equal(t, "alice", access.Username)
	assert.Equal(t, TokenTypeAccess, access.Type)

	refresh, err := tm.ValidateRefreshToken(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, TokenTypeRefresh, refresh.Type)
	assert.NotEqual(t, access.ID, refresh.ID)
}

func TestTokenManager_RejectsWrongType(t *testing.T) {
	tm := newTestTokenManager()

	pair, err := tm.GenerateTokenPair(uuid.New().String(), "alice")
	require.NoError(t, err)

	_, err = tm.ValidateAccessToken(pair.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = tm.ValidateRefreshToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_RejectsForeignSignature(t *testing.T) {
	other := NewTokenManager("other-access", "other-refresh", time.Minute, time.Hour)
	pair, err := other.GenerateTokenPair(uuid.New().String(), "mallory")
	require.NoError(t, err)

	_, err = newTestTokenManager().ValidateAccessToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_Expired(t *testing.T) {
	tm := newTestTokenManager()
	issued := time.Now().Add(-time.Hour)
	tm.now = func() time.Time { return issued }

	pair, err := tm.GenerateTokenPair(uuid.New().String(), "alice")
	require.NoError(t, err)

	tm.now = time.Now
	_, err = tm.ValidateAccessToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestTokenManager_RefreshAccessToken(t *testing.T) {
	tm := newTestTokenManager()
	pair, err := tm.GenerateTokenPair(uuid.New().String(), "alice")
	require.NoError(t, err)

	claims, err := tm.ValidateRefreshToken(pair.RefreshToken)
	require.NoError(t, err)

	access, expiresIn, err := tm.RefreshAccessToken(claims)
	require.NoError(t, err)
	assert.Equal(t, int64(900), expiresIn)

	accessClaims, err := tm.ValidateAccessToken(access)
	require.NoError(t, err)
	assert.Equal(t, claims.UserID, accessClaims.UserID)
}

func TestExtractTokenFromHeader(t *testing.T) {
	tests := []struct {
		header  string
		want    string
		wantErr bool
	}{
		{header: "Bearer abc.def.ghi", want: "abc.def.ghi"},
		{header: "bearer abc", wantErr: true},
		{header: "Bearer ", wantErr: true},
		{header: "", wantErr: true},
		{header: "Token abc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			got, err := ExtractTokenFromHeader(tt.header)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
