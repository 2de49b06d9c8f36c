package serrors_test

import (
	"errors"
	"fmt"
	"rightfit/pkg/serrors"
	"testing"

	"github.com/stretchr/testify/require"
)

type customError struct{ msg string }

func (e customError) Error() string { return e.msg }

func TestDefaultKindsDistinct(t *testing.T) {
	kinds := []serrors.Kind{
		serrors.ErrNotFound,
		serrors.ErrUnauthorized,
		serrors.ErrForbidden,
		serrors.ErrBadRequest,
		serrors.ErrConflict,
		serrors.ErrInternal,
		serrors.ErrTimeout,
		serrors.ErrUnavailable,
		serrors.ErrRateLimited,
		serrors.ErrPaymentRequired,
		serrors.ErrTooLarge,
	}
	seen := map[serrors.Kind]bool{}
	for i, k := range kinds {
		require.NotNil(t, k, "kind at index %d is nil", i)
		require.False(t, seen[k], "kind at index %d is duplicate: %v", i, k)
		seen[k] = true
	}

	// Ensure some expected inequalities
	require.NotEqual(t, serrors.ErrNotFound, serrors.ErrUnauthorized, "NotFound should not equal Unauthorized")
}

func TestErrorFormatting(t *testing.T) {
	base := errors.New("db down")

	e1 := serrors.With(serrors.ErrNotFound, "submission %d not found", 42)
	require.Equal(t, "submission 42 not found", e1.Error(), "With() Error() mismatch")

	e2 := serrors.Wrap(serrors.ErrNotFound, base, "getting submission")
	require.Equal(t, "getting submission: db down", e2.Error(), "Wrap() Error() mismatch")

	e3 := serrors.KindOnly(serrors.ErrNotFound)
	require.Equal(t, "NOT_FOUND", e3.Error(), "KindOnly Error() mismatch")
}

func TestIsMatchesKindAndWrapped(t *testing.T) {
	base := customError{"root cause"}
	e := serrors.Wrap(serrors.ErrNotFound, base, "reading")

	require.ErrorIs(t, e, serrors.ErrNotFound)
	require.ErrorIs(t, e, base)
	require.NotErrorIs(t, e, serrors.ErrUnauthorized, "errors.Is should not match a different kind")
}

func TestAsMatchesKindAndWrapped(t *testing.T) {
	base := &customError{"root cause"}
	e := serrors.Wrap(serrors.ErrNotFound, base, "reading")

	var k serrors.Kind
	require.ErrorAs(t, e, &k, "errors.As should extract Kind")
	require.Equal(t, serrors.ErrNotFound, k)

	var ce *customError
	require.ErrorAs(t, e, &ce, "errors.As should extract wrapped error type")
	require.Equal(t, base, ce, "extracted cause pointer mismatch")
}

func TestAccessors(t *testing.T) {
	base := errors.New("boom")
	e := serrors.Wrap(serrors.ErrUnauthorized, base, "no token")
	require.Equal(t, serrors.ErrUnauthorized, e.Kind())
	require.Equal(t, "no token", e.Message())
	require.Equal(t, base, e.Cause())
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		kind   serrors.Kind
		msg    string
	}{
		{"plain error is internal", errors.New("db down"), 500, serrors.ErrInternal, "internal error"},
		{"kind only uses default message", serrors.KindOnly(serrors.ErrNotFound), 404, serrors.ErrNotFound, "resource not found"},
		{"message is kept", serrors.With(serrors.ErrBadRequest, "email is required"), 400, serrors.ErrBadRequest, "email is required"},
		{
			"wrapped cause is hidden",
			serrors.Wrap(serrors.ErrUnauthorized, errors.New("bad signature"), "invalid session"),
			401, serrors.ErrUnauthorized, "invalid session",
		},
		{
			"kind survives fmt wrapping",
			fmt.Errorf("could not refund: %w", serrors.With(serrors.ErrConflict, "already refunded")),
			409, serrors.ErrConflict, "already refunded",
		},
		{"internal message is hidden", serrors.With(serrors.ErrInternal, "secret detail"), 500, serrors.ErrInternal, "internal error"},
		{"unavailable keeps message", serrors.With(serrors.ErrUnavailable, "payments are disabled"), 503, serrors.ErrUnavailable, "payments are disabled"},
		{"payment required", serrors.KindOnly(serrors.ErrPaymentRequired), 402, serrors.ErrPaymentRequired, "payment required"},
		{"too large", serrors.With(serrors.ErrTooLarge, "cv exceeds 10 MiB"), 413, serrors.ErrTooLarge, "cv exceeds 10 MiB"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, kind, msg := serrors.Describe(tt.err)
			require.Equal(t, tt.status, status)
			require.Equal(t, tt.kind, kind)
			require.Equal(t, tt.msg, msg)
		})
	}
}

func TestKindOf(t *testing.T) {
	require.Nil(t, serrors.KindOf(errors.New("plain")))
	require.Nil(t, serrors.KindOf(nil))

	err := fmt.Errorf("regrading: %w", serrors.With(serrors.ErrConflict, "a grade is already queued"))
	require.Equal(t, serrors.ErrConflict, serrors.KindOf(err))
	require.Equal(t, 409, serrors.KindOf(err).Status())
}

func TestDescribe_CustomKind(t *testing.T) {
	gone := serrors.NewKind("GONE", 410, "")
	status, kind, msg := serrors.Describe(serrors.KindOnly(gone))
	require.Equal(t, 410, status)
	require.Equal(t, gone, kind)
	require.Equal(t, "GONE", msg)

	teapot := serrors.NewKind("TEAPOT", 599, "brewing")
	status, kind, _ = serrors.Describe(serrors.KindOnly(teapot))
	require.Equal(t, 500, status)
	require.Equal(t, serrors.ErrInternal, kind)
}
