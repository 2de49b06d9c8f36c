package admin_test

import (
	"net/http"
	"rightfit/internal/admin"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestSessions_Login(t *testing.T) {
	hash, err := admin.HashPassword("correct horse")
	require.NoError(t, err)

	s, err := admin.NewSessions("session-secret", hash, time.Hour)
	require.NoError(t, err)

	token, expires, err := s.Login("correct horse")
	require.NoError(t, err)
	require.WithinDuration(t, time.Now().Add(time.Hour), expires, time.Minute)

	subject, err := s.Verify(token)
	require.NoError(t, err)
	require.Equal(t, admin.Subject, subject)

	_, _, err = s.Login("wrong")
	require.ErrorIs(t, err, admin.ErrInvalidCredentials)
	_, _, err = s.Login("")
	require.ErrorIs(t, err, admin.ErrInvalidCredentials)
}

func TestSessions_LoginDisabledWithoutHash(t *testing.T) {
	s, err := admin.NewSessions("session-secret", "", 0)
	require.NoError(t, err)
	require.Equal(t, 24*time.Hour, s.TTL())

	_, _, err = s.Login("anything")
	require.ErrorIs(t, err, admin.ErrInvalidCredentials)

	token, _, err := s.Issue("ops", time.Minute)
	require.NoError(t, err)
	subject, err := s.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "ops", subject)
}

func TestSessions_Verify(t *testing.T) {
	_, err := admin.NewSessions("", "", time.Hour)
	require.ErrorIs(t, err, admin.ErrNoSecret)

	s, err := admin.NewSessions("session-secret", "", time.Hour)
	require.NoError(t, err)
	other, err := admin.NewSessions("other-secret", "", time.Hour)
	require.NoError(t, err)

	forged, _, err := other.Issue(admin.Subject, time.Hour)
	require.NoError(t, err)
	_, err = s.Verify(forged)
	require.ErrorIs(t, err, admin.ErrInvalidSession)

	_, err = s.Verify("")
	require.ErrorIs(t, err, admin.ErrInvalidSession)
	_, err = s.Verify("not.a.jwt")
	require.ErrorIs(t, err, admin.ErrInvalidSession)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   admin.Subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = s.Verify(unsigned)
	require.ErrorIs(t, err, admin.ErrInvalidSession)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject: admin.Subject,
	}).SignedString([]byte("session-secret"))
	require.NoError(t, err)
	_, err = s.Verify(noExpiry)
	require.ErrorIs(t, err, admin.ErrInvalidSession)
}

func TestSessions_Expiry(t *testing.T) {
	s, err := admin.NewSessions("session-secret", "", time.Hour)
	require.NoError(t, err)

	issuedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.SetClock(func() time.Time { return issuedAt })
	token, _, err := s.Issue(admin.Subject, time.Hour)
	require.NoError(t, err)

	s.SetClock(func() time.Time { return issuedAt.Add(59 * time.Minute) })
	_, err = s.Verify(token)
	require.NoError(t, err)

	s.SetClock(func() time.Time { return issuedAt.Add(61 * time.Minute) })
	_, err = s.Verify(token)
	require.ErrorIs(t, err, admin.ErrInvalidSession)
}

func TestCookie(t *testing.T) {
	c := admin.Cookie("tkn", time.Now().Add(time.Hour), true)
	require.Equal(t, admin.CookieName, c.Name)
	require.Equal(t, "tkn", c.Value)
	require.True(t, c.HttpOnly)
	require.True(t, c.Secure)
	require.Equal(t, http.SameSiteLaxMode, c.SameSite)
	require.Positive(t, c.MaxAge)

	cleared := admin.ClearCookie(false)
	require.Equal(t, -1, cleared.MaxAge)
	require.False(t, cleared.Secure)
	require.Empty(t, cleared.Value)
}
