package v1handler

import (
	"errors"
	"net/http"
	"rightfit/internal/admin"
	"rightfit/pkg/domain"
	"rightfit/pkg/serrors"
	"rightfit/pkg/storage"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
)

func submissionID(r *http.Request) (domain.SubmissionID, error) {
	id, err := domain.ParseSubmissionID(chi.URLParam(r, "id"))
	if err != nil {
		return domain.SubmissionID{}, serrors.With(serrors.ErrBadRequest, "invalid submission id")
	}

	return id, nil
}

type submissionList struct {
	Items      []domain.Submission `json:"items"`
	NextCursor *string             `json:"nextCursor"`
}

type leadList struct {
	Items      []domain.Lead `json:"items"`
	NextCursor *string       `json:"nextCursor"`
}

func cursorString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339Nano)

	return &s
}

// ListSubmissions serves GET /api/admin/submissions.
func (h *Handler) ListSubmissions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	cursor, limit, err := pageParams(r)
	if err != nil {
		writeError(ctx, w, err)

		return
	}

	page, err := h.deps.Admin.ListSubmissions(ctx, storage.SubmissionFilter{
		Status: domain.SubmissionStatus(r.URL.Query().Get("status")),
		Query:  r.URL.Query().Get("q"),
		Cursor: cursor,
		Limit:  limit,
	})
	if err != nil {
		writeError(ctx, w, err)

		return
	}

	items := page.Submissions
	if items == nil {
		items = []domain.Submission{}
	}
	writeJSON(ctx, w, http.StatusOK, submissionList{Items: items, NextCursor: cursorString(page.NextCursor)})
}

// GetSubmission serves GET /api/admin/submissions/{id}.
func (h *Handler) GetSubmission(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := submissionID(r)
	if err != nil {
		writeError(ctx, w, err)

		return
	}

	detail, err := h.deps.Admin.Submission(ctx, id)
	if err != nil {
		writeError(ctx, w, err)

		return
	}

	writeJSON(ctx, w, http.StatusOK, detail)
}

// PatchSubmission serves PATCH /api/admin/submissions/{id}.
func (h *Handler) PatchSubmission(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := submissionID(r)
	if err != nil {
		writeError(ctx, w, err)

		return
	}

	var patch admin.SubmissionPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeError(ctx, w, err)

		return
	}

	sub, err := h.deps.Admin.UpdateSubmission(ctx, id, GetActorFromContext(ctx), patch)
	if err != nil {
		writeError(ctx, w, err)

		return
	}

	writeJSON(ctx, w, http.StatusOK, sub)
}

// DeleteSubmission serves DELETE /api/admin/submissions/{id}.
func (h *Handler) DeleteSubmission(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := submissionID(r)
	if err != nil {
		writeError(ctx, w, err)

		return
	}

	if err := h.deps.Admin.DeleteSubmission(ctx, id, GetActorFromContext(ctx)); err != nil {
		writeError(ctx, w, err)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type noteRequest struct {
	Body string `json:"body"`
}

// AddNote serves POST /api/admin/submissions/{id}/notes.
func (h *Handler) AddNote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := submissionID(r)
	if err != nil {
		writeError(ctx, w, err)

		return
	}

	var req noteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(ctx, w, err)

		return
	}

	note, err := h.deps.Admin.AddNote(ctx, id, GetActorFromContext(ctx), req.Body)
	if err != nil {
		writeError(ctx, w, err)

		return
	}

	writeJSON(ctx, w, http.StatusCreated, note)
}

// Deliver serves POST /api/admin/submissions/{id}/deliver. The rewritten CV
// is sent as the "file" part of a multipart form.
func (h *Handler) Deliver(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := submissionID(r)
	if err != nil {
		writeError(ctx, w, err)

		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.options.MaxUploadBytes+multipartOverhead)
	if err := r.ParseMultipartForm(h.options.MaxUploadBytes); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			writeError(ctx, w, serrors.With(serrors.ErrTooLarge, "upload too large"))
		} else {
			writeError(ctx, w, serrors.Wrap(serrors.ErrBadRequest, err, "invalid form"))
		}

		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	fh := formFile(r.MultipartForm, "file")
	if fh == nil {
		writeError(ctx, w, serrors.With(serrors.ErrBadRequest, "file is required"))

		return
	}
	file, err := fh.Open()
	if err != nil {
		writeError(ctx, w, serrors.Wrap(serrors.ErrBadRequest, err, "could not read file"))

		return
	}
	defer func() { _ = file.Close() }()

	sub, err := h.deps.Admin.Deliver(ctx, id, GetActorFromContext(ctx), admin.Upload{
		Name: fh.Filename,
		Size: fh.Size,
		Body: file,
	})
	if err != nil {
		writeError(ctx, w, err)

		return
	}

	writeJSON(ctx, w, http.StatusOK, sub)
}

type refundRequest struct {
	Reason string `json:"reason"`
}

// Refund serves POST /api/admin/submissions/{id}/refund. The body is optional.
func (h *Handler) Refund(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := submissionID(r)
	if err != nil {
		writeError(ctx, w, err)

		return
	}

	var req refundRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(ctx, w, err)

			return
		}
	}

	sub, err := h.deps.Admin.Refund(ctx, id, GetActorFromContext(ctx), req.Reason)
	if err != nil {
		writeError(ctx, w, err)

		return
	}

	writeJSON(ctx, w, http.StatusOK, sub)
}

// Regrade serves POST /api/admin/submissions/{id}/regrade.
func (h *Handler) Regrade(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := submissionID(r)
	if err != nil {
		writeError(ctx, w, err)

		return
	}

	if err := h.deps.Admin.Regrade(ctx, id, GetActorFromContext(ctx)); err != nil {
		writeError(ctx, w, err)

		return
	}

	writeJSON(ctx, w, http.StatusAccepted, okResponse{OK: true})
}

// File serves GET /api/admin/submissions/{id}/files/{kind}.
func (h *Handler) File(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := submissionID(r)
	if err != nil {
		writeError(ctx, w, err)

		return
	}

	obj, name, err := h.deps.Admin.File(ctx, id, admin.FileKind(chi.URLParam(r, "kind")))
	if err != nil {
		writeError(ctx, w, err)

		return
	}

	serveObject(ctx, w, obj, name)
}

// ListLeads serves GET /api/admin/leads.
func (h *Handler) ListLeads(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	cursor, limit, err := pageParams(r)
	if err != nil {
		writeError(ctx, w, err)

		return
	}

	page, err := h.deps.Admin.ListLeads(ctx, storage.LeadFilter{
		Source: domain.LeadSource(r.URL.Query().Get("source")),
		Cursor: cursor,
		Limit:  limit,
	})
	if err != nil {
		writeError(ctx, w, err)

		return
	}

	items := page.Leads
	if items == nil {
		items = []domain.Lead{}
	}
	writeJSON(ctx, w, http.StatusOK, leadList{Items: items, NextCursor: cursorString(page.NextCursor)})
}

// RecentActivity serves GET /api/admin/activity.
func (h *Handler) RecentActivity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var limit uint
	if l := r.URL.Query().Get("limit"); l != "" {
		n, err := strconv.ParseUint(l, 10, 32)
		if err != nil {
			writeError(ctx, w, serrors.With(serrors.ErrBadRequest, "invalid limit"))

			return
		}
		limit = uint(n)
	}

	logs, err := h.deps.Admin.RecentActivity(ctx, limit)
	if err != nil {
		writeError(ctx, w, err)

		return
	}
	if logs == nil {
		logs = []domain.ActivityLog{}
	}

	writeJSON(ctx, w, http.StatusOK, map[string]any{"items": logs})
}

// Stats serves GET /api/admin/stats.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	stats, err := h.deps.Admin.Stats(ctx)
	if err != nil {
		writeError(ctx, w, err)

		return
	}

	writeJSON(ctx, w, http.StatusOK, stats)
}
