package v1handler

import (
	"context"
	"errors"
	"net/http"
	"rightfit/internal/admin"
	"rightfit/pkg/logger"
	"rightfit/pkg/serrors"

	"go.uber.org/zap"
)

type ctxKey string

// ActorKey holds the admin subject of an authenticated request.
const ActorKey ctxKey = "actor"

// GetActorFromContext returns the admin subject stored by RequireSession.
func GetActorFromContext(ctx context.Context) string {
	actor, _ := ctx.Value(ActorKey).(string)

	return actor
}

// RequireSession rejects requests without a valid admin session cookie and
// stores the session subject in the request context.
func (h *Handler) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.deps.Sessions == nil {
			writeError(r.Context(), w, serrors.With(serrors.ErrUnavailable, "admin is not configured"))

			return
		}

		c, err := r.Cookie(admin.CookieName)
		if err != nil || c.Value == "" {
			writeError(r.Context(), w, serrors.With(serrors.ErrUnauthorized, "not signed in"))

			return
		}

		actor, err := h.deps.Sessions.Verify(c.Value)
		if err != nil {
			http.SetCookie(w, admin.ClearCookie(h.options.SecureCookies))
			writeError(r.Context(), w, serrors.With(serrors.ErrUnauthorized, "session expired"))

			return
		}

		ctx := context.WithValue(r.Context(), ActorKey, actor)
		ctx = logger.WithFields(ctx, zap.String("actor", actor))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type loginRequest struct {
	Password string `json:"password"`
}

type sessionResponse struct {
	Authenticated bool   `json:"authenticated"`
	Actor         string `json:"actor,omitempty"`
}

// Login exchanges the admin password for a session cookie.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.deps.Sessions == nil {
		writeError(ctx, w, serrors.With(serrors.ErrUnavailable, "admin is not configured"))

		return
	}

	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(ctx, w, err)

		return
	}

	token, expires, err := h.deps.Sessions.Login(req.Password)
	if err != nil {
		if errors.Is(err, admin.ErrInvalidCredentials) {
			logger.Warn(ctx, "failed admin login")
			writeError(ctx, w, serrors.With(serrors.ErrUnauthorized, "invalid password"))

			return
		}
		writeError(ctx, w, err)

		return
	}

	http.SetCookie(w, admin.Cookie(token, expires, h.options.SecureCookies))
	writeJSON(ctx, w, http.StatusOK, sessionResponse{Authenticated: true, Actor: admin.Subject})
}

// Logout clears the session cookie.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, admin.ClearCookie(h.options.SecureCookies))
	writeJSON(r.Context(), w, http.StatusOK, sessionResponse{})
}

// Session reports the signed-in admin. It runs behind RequireSession.
func (h *Handler) Session(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, sessionResponse{
		Authenticated: true,
		Actor:         GetActorFromContext(r.Context()),
	})
}
