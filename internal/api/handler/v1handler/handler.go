// Package v1handler implements the HTTP handlers of the public and admin
// APIs on top of the intake, grading and admin services.
package v1handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"rightfit/internal/admin"
	"rightfit/internal/config"
	"rightfit/internal/grading"
	"rightfit/internal/intake"
	"rightfit/pkg/blob"
	"rightfit/pkg/logger"
	"rightfit/pkg/serrors"
	"strconv"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultLimit is the page size used when a list request does not set one.
	DefaultLimit = 20
	// MaxLimit caps the page size of list requests.
	MaxLimit = 100

	maxJSONBytes    = 1 << 20
	maxWebhookBytes = 1 << 20
	// multipartOverhead is allowed on top of the file size for the other
	// form fields and part headers.
	multipartOverhead = 1 << 20
)

// Deps are the services the handlers delegate to.
type Deps struct {
	Intake   intake.Service
	Grading  grading.Service
	Admin    admin.Service
	Sessions *admin.Sessions
}

// Options configure the handlers.
type Options struct {
	// SecureCookies sets the Secure flag on the admin session cookie.
	SecureCookies bool
	// MaxUploadBytes caps uploaded CV files.
	MaxUploadBytes int64
}

// NewOptions constructs an Options value from the provided application config.
func NewOptions(cfg *config.Config) Options {
	return Options{
		SecureCookies:  cfg.Environment != "development",
		MaxUploadBytes: cfg.Blob.MaxUploadBytes,
	}
}

type Handler struct {
	deps    Deps
	options Options
}

func New(deps Deps, options Options) *Handler {
	if options.MaxUploadBytes <= 0 {
		options.MaxUploadBytes = blob.DefaultMaxSize
	}

	return &Handler{deps: deps, options: options}
}

type errorBody struct {
	Error  string `json:"error"`
	Code   string `json:"code"`
	Status int    `json:"status"`
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn(ctx, "could not write response", zap.Error(err))
	}
}

// writeError serves err with the status of its semantic kind. Causes of 5xx
// errors are logged but never returned to the client.
func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	status, kind, msg := serrors.Describe(err)
	if status >= http.StatusInternalServerError {
		logger.Error(ctx, "request failed", zap.Error(err))
	}

	writeJSON(ctx, w, status, errorBody{Error: msg, Code: kind.Error(), Status: status})
}

// NotFound serves unmatched routes in the JSON error shape.
func NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(r.Context(), w, serrors.With(serrors.ErrNotFound, "route not found"))
}

// MethodNotAllowed serves routes matched with the wrong method.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusMethodNotAllowed, errorBody{
		Error:  "method not allowed",
		Code:   "METHOD_NOT_ALLOWED",
		Status: http.StatusMethodNotAllowed,
	})
}

// decodeJSON reads a bounded JSON body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBytes))
	if err := dec.Decode(dst); err != nil {
		var mbe *http.MaxBytesError
		switch {
		case errors.As(err, &mbe):
			return serrors.With(serrors.ErrTooLarge, "request body too large")
		case errors.Is(err, io.EOF):
			return serrors.With(serrors.ErrBadRequest, "request body is empty")
		default:
			return serrors.Wrap(serrors.ErrBadRequest, err, "invalid JSON body")
		}
	}

	return nil
}

// pageParams reads the cursor and limit query parameters of list endpoints.
func pageParams(r *http.Request) (time.Time, uint, error) {
	q := r.URL.Query()

	var cursor time.Time
	if c := q.Get("cursor"); c != "" {
		t, err := time.Parse(time.RFC3339Nano, c)
		if err != nil {
			return time.Time{}, 0, serrors.With(serrors.ErrBadRequest, "invalid cursor")
		}
		cursor = t
	}

	limit := uint(DefaultLimit)
	if l := q.Get("limit"); l != "" {
		n, err := strconv.ParseUint(l, 10, 32)
		if err != nil || n == 0 {
			return time.Time{}, 0, serrors.With(serrors.ErrBadRequest, "invalid limit")
		}
		limit = uint(min(n, MaxLimit))
	}

	return cursor, limit, nil
}

// serveObject streams a stored file as an attachment.
func serveObject(ctx context.Context, w http.ResponseWriter, obj *blob.Object, name string) {
	defer func() { _ = obj.Close() }()

	h := w.Header()
	ct := obj.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	h.Set("Content-Type", ct)
	h.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	if obj.Size > 0 {
		h.Set("Content-Length", strconv.FormatInt(obj.Size, 10))
	}
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, obj); err != nil {
		logger.Warn(ctx, "could not stream file", zap.String("name", name), zap.Error(err))
	}
}
