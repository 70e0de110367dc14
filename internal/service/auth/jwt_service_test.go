package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kerrian/notely-api/internal/config"
	"github.com/kerrian/notely-api/internal/domain"
)

const testJWTSecret = "test-jwt-secret-that-is-32-chars-long"

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:                   testJWTSecret,
		TokenLifetimeMinutes:        60,
		RefreshTokenLifetimeMinutes: 1440,
	}
}

// newServiceAt builds a JWT service whose clock is pinned to the given time.
func newServiceAt(t *testing.T, secret string, now time.Time) JWTService {
	t.Helper()

	cfg := testAuthConfig()
	cfg.JWTSecret = secret
	svc, err := NewJWTService(cfg)
	require.NoError(t, err)

	impl, ok := svc.(*hmacJWTService)
	require.True(t, ok)
	impl.timeFunc = func() time.Time { return now }
	return svc
}

func TestNewJWTService(t *testing.T) {
	t.Parallel()

	t.Run("accepts a sufficiently long secret", func(t *testing.T) {
		t.Parallel()
		svc, err := NewJWTService(testAuthConfig())
		require.NoError(t, err)
		assert.NotNil(t, svc)
	})

	t.Run("rejects a short secret", func(t *testing.T) {
		t.Parallel()
		cfg := testAuthConfig()
		cfg.JWTSecret = "too-short"
		svc, err := NewJWTService(cfg)
		assert.Error(t, err)
		assert.Nil(t, svc)
	})
}

func TestGenerateToken(t *testing.T) {
	t.Parallel()

	fixedTime := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	userID := uuid.New()
	svc := newServiceAt(t, testJWTSecret, fixedTime)

	token, err := svc.GenerateToken(context.Background(), userID, domain.RoleAdmin)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(context.Background(), token)
	require.NoError(t, err)

	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, domain.RoleAdmin, claims.Role)
	assert.Equal(t, "access", claims.TokenType)
	assert.Equal(t, userID.String(), claims.Subject)
	assert.Equal(t, fixedTime.Unix(), claims.IssuedAt.Unix())
	assert.Equal(t, fixedTime.Add(60*time.Minute).Unix(), claims.ExpiresAt.Unix())
	assert.NotEmpty(t, claims.ID)
}

func TestValidateToken(t *testing.T) {
	t.Parallel()

	fixedTime := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	userID := uuid.New()

	tests := []struct {
		name      string
		setupFunc func(t *testing.T) (JWTService, string)
		wantErr   error
	}{
		{
			name: "valid token",
			setupFunc: func(t *testing.T) (JWTService, string) {
				svc := newServiceAt(t, testJWTSecret, fixedTime)
				token, err := svc.GenerateToken(context.Background(), userID, domain.RoleAgent)
				require.NoError(t, err)
				return svc, token
			},
			wantErr: nil,
		},
		{
			name: "token within clock skew still accepted",
			setupFunc: func(t *testing.T) (JWTService, string) {
				genSvc := newServiceAt(t, testJWTSecret, fixedTime)
				token, err := genSvc.GenerateToken(context.Background(), userID, domain.RoleAgent)
				require.NoError(t, err)

				// Expired by one minute, inside the two minute skew allowance.
				valSvc := newServiceAt(t, testJWTSecret, fixedTime.Add(61*time.Minute))
				return valSvc, token
			},
			wantErr: nil,
		},
		{
			name: "expired token",
			setupFunc: func(t *testing.T) (JWTService, string) {
				genSvc := newServiceAt(t, testJWTSecret, fixedTime)
				token, err := genSvc.GenerateToken(context.Background(), userID, domain.RoleAgent)
				require.NoError(t, err)

				valSvc := newServiceAt(t, testJWTSecret, fixedTime.Add(63*time.Minute))
				return valSvc, token
			},
			wantErr: ErrExpiredToken,
		},
		{
			name: "wrong signing secret",
			setupFunc: func(t *testing.T) (JWTService, string) {
				genSvc := newServiceAt(t, testJWTSecret, fixedTime)
				token, err := genSvc.GenerateToken(context.Background(), userID, domain.RoleAgent)
				require.NoError(t, err)

				valSvc := newServiceAt(t, "another-secret-that-is-also-32-chars", fixedTime)
				return valSvc, token
			},
			wantErr: ErrInvalidToken,
		},
		{
			name: "malformed token",
			setupFunc: func(t *testing.T) (JWTService, string) {
				return newServiceAt(t, testJWTSecret, fixedTime), "not.a.jwt"
			},
			wantErr: ErrInvalidToken,
		},
		{
			name: "refresh token rejected as access token",
			setupFunc: func(t *testing.T) (JWTService, string) {
				svc := newServiceAt(t, testJWTSecret, fixedTime)
				token, err := svc.GenerateRefreshToken(context.Background(), userID, domain.RoleAgent)
				require.NoError(t, err)
				return svc, token
			},
			wantErr: ErrWrongTokenType,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			svc, token := tc.setupFunc(t)

			claims, err := svc.ValidateToken(context.Background(), token)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				assert.Nil(t, claims)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, userID, claims.UserID)
			assert.Equal(t, domain.RoleAgent, claims.Role)
		})
	}
}

func TestValidateRefreshToken(t *testing.T) {
	t.Parallel()

	fixedTime := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	userID := uuid.New()

	t.Run("valid refresh token carries identity and role", func(t *testing.T) {
		t.Parallel()
		svc := newServiceAt(t, testJWTSecret, fixedTime)

		token, err := svc.GenerateRefreshToken(context.Background(), userID, domain.RoleAdmin)
		require.NoError(t, err)

		claims, err := svc.ValidateRefreshToken(context.Background(), token)
		require.NoError(t, err)
		assert.Equal(t, userID, claims.UserID)
		assert.Equal(t, domain.RoleAdmin, claims.Role)
		assert.Equal(t, "refresh", claims.TokenType)
		assert.Equal(t, fixedTime.Add(1440*time.Minute).Unix(), claims.ExpiresAt.Unix())
	})

	t.Run("access token rejected as refresh token", func(t *testing.T) {
		t.Parallel()
		svc := newServiceAt(t, testJWTSecret, fixedTime)

		token, err := svc.GenerateToken(context.Background(), userID, domain.RoleAgent)
		require.NoError(t, err)

		claims, err := svc.ValidateRefreshToken(context.Background(), token)
		assert.ErrorIs(t, err, ErrWrongTokenType)
		assert.Nil(t, claims)
	})

	t.Run("expired refresh token", func(t *testing.T) {
		t.Parallel()
		genSvc := newServiceAt(t, testJWTSecret, fixedTime)
		token, err := genSvc.GenerateRefreshToken(context.Background(), userID, domain.RoleAgent)
		require.NoError(t, err)

		valSvc := newServiceAt(t, testJWTSecret, fixedTime.Add(1443*time.Minute))
		claims, err := valSvc.ValidateRefreshToken(context.Background(), token)
		assert.ErrorIs(t, err, ErrExpiredRefreshToken)
		assert.Nil(t, claims)
	})

	t.Run("garbage refresh token", func(t *testing.T) {
		t.Parallel()
		svc := newServiceAt(t, testJWTSecret, fixedTime)

		claims, err := svc.ValidateRefreshToken(context.Background(), "garbage")
		assert.ErrorIs(t, err, ErrInvalidRefreshToken)
		assert.Nil(t, claims)
	})
}
