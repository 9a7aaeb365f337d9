package auth_test

import (
	"testing"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-loja/internal/auth"
	"github.com/noah-isme/backend-loja/internal/common"
)

func newService(t *testing.T, ttl time.Duration) *auth.Service {
	t.Helper()
	hash, err := argon2id.CreateHash("segredo-forte", argon2id.DefaultParams)
	require.NoError(t, err)

	svc, err := auth.NewService(auth.Config{
		AdminEmail:        "Admin@Example.com",
		AdminPasswordHash: hash,
		Secret:            "test-signing-secret",
		AccessTokenTTL:    ttl,
	})
	require.NoError(t, err)
	return svc
}

func TestLoginRoundTrip(t *testing.T) {
	svc := newService(t, time.Minute)

	res, err := svc.Login("admin@example.com", "segredo-forte")
	require.NoError(t, err)
	require.NotEmpty(t, res.AccessToken)
	require.WithinDuration(t, time.Now().Add(time.Minute), res.AccessExpiry, 5*time.Second)

	subject, err := svc.ParseAccessToken(res.AccessToken)
	require.NoError(t, err)
	require.Equal(t, "admin@example.com", subject)
}

func TestLoginEmailIsCaseInsensitive(t *testing.T) {
	svc := newService(t, time.Minute)

	_, err := svc.Login("ADMIN@EXAMPLE.COM", "segredo-forte")
	require.NoError(t, err)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc := newService(t, time.Minute)

	for _, tc := range []struct{ email, password string }{
		{"admin@example.com", "senha-errada"},
		{"outro@example.com", "segredo-forte"},
		{"", "segredo-forte"},
		{"admin@example.com", ""},
	} {
		_, err := svc.Login(tc.email, tc.password)
		var appErr *common.AppError
		require.ErrorAs(t, err, &appErr)
		require.Equal(t, "UNAUTHORIZED", appErr.Code)
	}
}

func TestParseAccessTokenRejectsGarbage(t *testing.T) {
	svc := newService(t, time.Minute)

	for _, token := range []string{"", "nem.um.jwt", "a.b"} {
		_, err := svc.ParseAccessToken(token)
		var appErr *common.AppError
		require.ErrorAs(t, err, &appErr)
		require.Equal(t, "UNAUTHORIZED", appErr.Code)
	}
}

func TestParseAccessTokenRejectsExpired(t *testing.T) {
	svc := newService(t, time.Nanosecond)

	res, err := svc.Login("admin@example.com", "segredo-forte")
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)
	_, err = svc.ParseAccessToken(res.AccessToken)
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, "UNAUTHORIZED", appErr.Code)
}

func TestParseAccessTokenRejectsForeignSignature(t *testing.T) {
	svc := newService(t, time.Minute)

	hash, err := argon2id.CreateHash("segredo-forte", argon2id.DefaultParams)
	require.NoError(t, err)
	other, err := auth.NewService(auth.Config{
		AdminEmail:        "admin@example.com",
		AdminPasswordHash: hash,
		Secret:            "another-signing-secret",
	})
	require.NoError(t, err)

	res, err := other.Login("admin@example.com", "segredo-forte")
	require.NoError(t, err)

	// same admin, different signing secret
	_, err = svc.ParseAccessToken(res.AccessToken)
	require.Error(t, err)
}

func TestNewServiceRequiresConfig(t *testing.T) {
	_, err := auth.NewService(auth.Config{AdminEmail: "a@b.c", AdminPasswordHash: "x"})
	require.Error(t, err, "secret is required")

	_, err = auth.NewService(auth.Config{Secret: "s", AdminPasswordHash: "x"})
	require.Error(t, err, "admin email is required")

	_, err = auth.NewService(auth.Config{Secret: "s", AdminEmail: "a@b.c"})
	require.Error(t, err, "password hash is required")
}
