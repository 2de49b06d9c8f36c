package v1handler

import (
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"rightfit/internal/grading"
	"rightfit/internal/intake"
	"rightfit/pkg/domain"
	"rightfit/pkg/serrors"
	"strings"
)

// Healthz reports liveness.
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
}

// splitList reads a query or form list given either as repeated keys or as a
// single comma-separated value.
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}

	return out
}

func addOnList(values []string) []domain.AddOn {
	parts := splitList(values)
	out := make([]domain.AddOn, len(parts))
	for i, p := range parts {
		out[i] = domain.AddOn(p)
	}

	return out
}

// Quote prices a package and add-ons.
func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	addOns := q["addOns"]
	if len(addOns) == 0 {
		addOns = q["addons"]
	}

	quote, err := h.deps.Intake.Quote(domain.Package(q.Get("package")), addOnList(addOns))
	if err != nil {
		writeError(r.Context(), w, err)

		return
	}

	writeJSON(r.Context(), w, http.StatusOK, quote)
}

// CreatePaymentIntent starts a checkout.
func (h *Handler) CreatePaymentIntent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req intake.PaymentIntentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(ctx, w, err)

		return
	}

	pi, err := h.deps.Intake.CreatePaymentIntent(ctx, req)
	if err != nil {
		writeError(ctx, w, err)

		return
	}

	writeJSON(ctx, w, http.StatusOK, pi)
}

// SubmitIntake accepts the intake form either as multipart/form-data with a
// cvFile part or as a JSON body carrying cvText.
func (h *Handler) SubmitIntake(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var (
		req intake.IntakeRequest
		err error
	)
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		var cleanup func()
		req, cleanup, err = h.parseIntakeForm(w, r)
		if cleanup != nil {
			defer cleanup()
		}
	} else {
		err = decodeJSON(w, r, &req)
	}
	if err != nil {
		writeError(ctx, w, err)

		return
	}

	res, err := h.deps.Intake.SubmitIntake(ctx, req)
	if err != nil {
		writeError(ctx, w, err)

		return
	}

	writeJSON(ctx, w, http.StatusCreated, res)
}

func (h *Handler) parseIntakeForm(w http.ResponseWriter, r *http.Request) (intake.IntakeRequest, func(), error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.options.MaxUploadBytes+multipartOverhead)
	if err := r.ParseMultipartForm(h.options.MaxUploadBytes); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return intake.IntakeRequest{}, nil, serrors.With(serrors.ErrTooLarge, "upload too large")
		}

		return intake.IntakeRequest{}, nil, serrors.Wrap(serrors.ErrBadRequest, err, "invalid form")
	}
	cleanup := func() { _ = r.MultipartForm.RemoveAll() }

	f := r.MultipartForm.Value
	get := func(key string) string {
		if v := f[key]; len(v) > 0 {
			return v[0]
		}

		return ""
	}

	req := intake.IntakeRequest{
		FullName:        get("fullName"),
		Email:           get("email"),
		Phone:           get("phone"),
		TargetRole:      get("targetRole"),
		Industry:        get("industry"),
		ExperienceLevel: get("experienceLevel"),
		CareerGoals:     get("careerGoals"),
		AdditionalNotes: get("additionalNotes"),
		LinkedInURL:     get("linkedinUrl"),
		Package:         domain.Package(get("package")),
		AddOns:          addOnList(f["addOns"]),
		PaymentIntentID: get("paymentIntentId"),
		CVText:          get("cvText"),
	}

	if fh := formFile(r.MultipartForm, "cvFile", "cv"); fh != nil {
		file, err := fh.Open()
		if err != nil {
			return intake.IntakeRequest{}, cleanup, serrors.Wrap(serrors.ErrBadRequest, err, "could not read cvFile")
		}
		prev := cleanup
		cleanup = func() {
			_ = file.Close()
			prev()
		}
		req.CVFile = &intake.Upload{Name: fh.Filename, Size: fh.Size, Body: file}
	}

	return req, cleanup, nil
}

func formFile(form *multipart.Form, keys ...string) *multipart.FileHeader {
	for _, k := range keys {
		if files := form.File[k]; len(files) > 0 {
			return files[0]
		}
	}

	return nil
}

// GradeCV runs the free CV audit.
func (h *Handler) GradeCV(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req grading.FreeAuditRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(ctx, w, err)

		return
	}

	grade, err := h.deps.Grading.GradeCV(ctx, req)
	if err != nil {
		writeError(ctx, w, err)

		return
	}

	writeJSON(ctx, w, http.StatusOK, grade)
}

// CaptureLead records a newsletter signup or an abandoned checkout step.
func (h *Handler) CaptureLead(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req intake.LeadRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(ctx, w, err)

		return
	}

	lead, err := h.deps.Intake.CaptureLead(ctx, req)
	if err != nil {
		writeError(ctx, w, err)

		return
	}

	writeJSON(ctx, w, http.StatusOK, lead)
}

// orderQuery reads the tokenized order link parameters.
func orderQuery(r *http.Request) (domain.SubmissionID, string, string, error) {
	q := r.URL.Query()
	id, err := domain.ParseSubmissionID(q.Get("orderId"))
	if err != nil {
		return domain.SubmissionID{}, "", "", serrors.With(serrors.ErrBadRequest, "invalid orderId")
	}
	if q.Get("email") == "" || q.Get("token") == "" {
		return domain.SubmissionID{}, "", "", serrors.With(serrors.ErrBadRequest, "email and token are required")
	}

	return id, q.Get("email"), q.Get("token"), nil
}

// OrderStatus serves the customer's order view.
func (h *Handler) OrderStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, email, token, err := orderQuery(r)
	if err != nil {
		writeError(ctx, w, err)

		return
	}

	status, err := h.deps.Intake.OrderStatus(ctx, id, email, token)
	if err != nil {
		writeError(ctx, w, err)

		return
	}

	writeJSON(ctx, w, http.StatusOK, status)
}

// DeliveredFile downloads the rewritten CV of an order.
func (h *Handler) DeliveredFile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, email, token, err := orderQuery(r)
	if err != nil {
		writeError(ctx, w, err)

		return
	}

	obj, name, err := h.deps.Intake.DeliveredFile(ctx, id, email, token)
	if err != nil {
		writeError(ctx, w, err)

		return
	}

	serveObject(ctx, w, obj, name)
}

type resendRequest struct {
	OrderID string `json:"orderId"`
	Email   string `json:"email"`
}

type okResponse struct {
	OK bool `json:"ok"`
}

// ResendOrderLink emails the status link of an order.
func (h *Handler) ResendOrderLink(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req resendRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(ctx, w, err)

		return
	}

	if err := h.deps.Intake.ResendOrderLink(ctx, req.OrderID, req.Email); err != nil {
		writeError(ctx, w, err)

		return
	}

	writeJSON(ctx, w, http.StatusAccepted, okResponse{OK: true})
}

// StripeWebhook applies a signed payment event. The raw body is required for
// signature verification.
func (h *Handler) StripeWebhook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBytes))
	if err != nil {
		writeError(ctx, w, serrors.With(serrors.ErrTooLarge, "payload too large"))

		return
	}

	if err := h.deps.Intake.HandlePaymentEvent(ctx, payload, r.Header.Get("Stripe-Signature")); err != nil {
		writeError(ctx, w, err)

		return
	}

	writeJSON(ctx, w, http.StatusOK, map[string]bool{"received": true})
}
