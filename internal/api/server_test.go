package api_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"rightfit/internal/admin"
	mockadmin "rightfit/internal/admin/mock"
	"rightfit/internal/api"
	"rightfit/internal/api/handler/v1handler"
	"rightfit/internal/grading"
	mockgrading "rightfit/internal/grading/mock"
	"rightfit/internal/intake"
	mockintake "rightfit/internal/intake/mock"
	"rightfit/pkg/blob"
	"rightfit/pkg/domain"
	"rightfit/pkg/ratelimit"
	"rightfit/pkg/serrors"
	"rightfit/pkg/storage"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const adminPassword = "correct horse battery staple"

type fixture struct {
	handler  http.Handler
	intake   *mockintake.MockService
	grading  *mockgrading.MockService
	admin    *mockadmin.MockService
	sessions *admin.Sessions
}

func newFixture(t *testing.T, mutate ...func(*api.Deps, *api.Options)) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	hash, err := admin.HashPassword(adminPassword)
	require.NoError(t, err)
	sessions, err := admin.NewSessions("test-secret", hash, time.Hour)
	require.NoError(t, err)

	f := &fixture{
		intake:   mockintake.NewMockService(ctrl),
		grading:  mockgrading.NewMockService(ctrl),
		admin:    mockadmin.NewMockService(ctrl),
		sessions: sessions,
	}

	reg := prometheus.NewRegistry()
	deps := api.Deps{
		Deps: v1handler.Deps{
			Intake:   f.intake,
			Grading:  f.grading,
			Admin:    f.admin,
			Sessions: sessions,
		},
		Registerer: reg,
		Gatherer:   reg,
	}
	opts := api.Options{
		HandlerOptions: v1handler.Options{MaxUploadBytes: 1 << 20},
		MetricsPath:    "/metrics",
		AllowedOrigins: []string{"https://rightfitcv.com"},
	}
	for _, m := range mutate {
		m(&deps, &opts)
	}

	f.handler, err = api.NewRouter(deps, opts)
	require.NoError(t, err)

	return f
}

func (f *fixture) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	return rec
}

func (f *fixture) adminRequest(t *testing.T, method, target string, body io.Reader) *http.Request {
	t.Helper()
	token, expires, err := f.sessions.Issue(admin.Subject, time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(method, target, body)
	req.AddCookie(admin.Cookie(token, expires, false))

	return req
}

func jsonBody(t *testing.T, v any) io.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)

	return bytes.NewReader(b)
}

func requireError(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	require.Equal(t, status, rec.Code, rec.Body.String())
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body struct {
		Error  string `json:"error"`
		Code   string `json:"code"`
		Status int    `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, code, body.Code)
	require.Equal(t, status, body.Status)
	require.NotEmpty(t, body.Error)
}

func TestHealthzAndUnknownRoutes(t *testing.T) {
	f := newFixture(t)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	requireError(t, f.do(httptest.NewRequest(http.MethodGet, "/api/nope", nil)), http.StatusNotFound, "NOT_FOUND")
	requireError(t, f.do(httptest.NewRequest(http.MethodDelete, "/api/quote", nil)),
		http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED")
}

func TestOpsRoutes(t *testing.T) {
	f := newFixture(t, func(_ *api.Deps, o *api.Options) { o.EnablePprof = true })

	rec := f.do(httptest.NewRequest(http.MethodGet, "/specs/v1.yaml", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/yaml", rec.Header().Get("Content-Type"))
	require.Contains(t, rec.Body.String(), "openapi: 3.0.3")

	rec = f.do(httptest.NewRequest(http.MethodGet, "/v1/docs/", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	f.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	rec = f.do(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `rightfit_http_request_duration_seconds_count{method="GET",route="/healthz",status="200"} 1`)

	rec = f.do(httptest.NewRequest(http.MethodGet, "/debug/pprof/cmdline", nil))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestPprofDisabledByDefault(t *testing.T) {
	f := newFixture(t)
	requireError(t, f.do(httptest.NewRequest(http.MethodGet, "/debug/pprof/", nil)), http.StatusNotFound, "NOT_FOUND")
}

func TestCORSPreflight(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/create-payment-intent", nil)
	req.Header.Set("Origin", "https://rightfitcv.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := f.do(req)

	require.Equal(t, "https://rightfitcv.com", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestQuote(t *testing.T) {
	f := newFixture(t)

	q := domain.Quote{
		Package:      domain.PackageProfessional,
		AddOns:       []domain.AddOn{domain.AddOnCoverLetter, domain.AddOnRush},
		PackageCents: 9900,
		TotalCents:   15300,
		Currency:     "usd",
	}
	f.intake.EXPECT().
		Quote(domain.PackageProfessional, []domain.AddOn{domain.AddOnCoverLetter, domain.AddOnRush}).
		Return(q, nil)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/api/quote?package=professional&addOns=cover_letter,%20rush", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var got domain.Quote
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, int64(15300), got.TotalCents)
}

func TestQuote_BadRequest(t *testing.T) {
	f := newFixture(t)

	f.intake.EXPECT().Quote(domain.Package("gold"), gomock.Any()).
		Return(domain.Quote{}, serrors.With(serrors.ErrBadRequest, "invalid order"))

	rec := f.do(httptest.NewRequest(http.MethodGet, "/api/quote?package=gold", nil))
	require.JSONEq(t, `{"error":"invalid order","code":"BAD_REQUEST","status":400}`, rec.Body.String())
}

func TestInternalErrorsAreHidden(t *testing.T) {
	f := newFixture(t)

	f.intake.EXPECT().CreatePaymentIntent(gomock.Any(), gomock.Any()).
		Return(nil, errors.New("stripe: connection reset by peer"))

	rec := f.do(httptest.NewRequest(http.MethodPost, "/api/create-payment-intent",
		strings.NewReader(`{"package":"essential","email":"ada@example.com"}`)))
	require.JSONEq(t, `{"error":"internal error","code":"INTERNAL","status":500}`, rec.Body.String())
}

func TestCreatePaymentIntent(t *testing.T) {
	f := newFixture(t)

	f.intake.EXPECT().CreatePaymentIntent(gomock.Any(), intake.PaymentIntentRequest{
		Package: domain.PackageExecutive,
		AddOns:  []domain.AddOn{domain.AddOnLinkedIn},
		Email:   "ada@example.com",
		Name:    "Ada",
	}).Return(&intake.PaymentIntent{ClientSecret: "pi_1_secret", PaymentIntentID: "pi_1"}, nil)

	rec := f.do(httptest.NewRequest(http.MethodPost, "/api/create-payment-intent", jsonBody(t, map[string]any{
		"package": "executive",
		"addOns":  []string{"linkedin"},
		"email":   "ada@example.com",
		"name":    "Ada",
	})))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"clientSecret":"pi_1_secret"`)
}

func TestCreatePaymentIntent_InvalidJSON(t *testing.T) {
	f := newFixture(t)

	requireError(t, f.do(httptest.NewRequest(http.MethodPost, "/api/create-payment-intent", strings.NewReader("{"))),
		http.StatusBadRequest, "BAD_REQUEST")
	requireError(t, f.do(httptest.NewRequest(http.MethodPost, "/api/create-payment-intent", http.NoBody)),
		http.StatusBadRequest, "BAD_REQUEST")
}

func multipartBody(t *testing.T, fields map[string][]string, fileField, fileName, content string) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, vs := range fields {
		for _, v := range vs {
			require.NoError(t, mw.WriteField(k, v))
		}
	}
	if fileField != "" {
		fw, err := mw.CreateFormFile(fileField, fileName)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	return &buf, mw.FormDataContentType()
}

func TestSubmitIntake_Multipart(t *testing.T) {
	f := newFixture(t)

	id := domain.NewSubmissionID()
	f.intake.EXPECT().SubmitIntake(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ any, req intake.IntakeRequest) (*intake.IntakeResult, error) {
			require.Equal(t, "Ada Lovelace", req.FullName)
			require.Equal(t, "ada@example.com", req.Email)
			require.Equal(t, domain.PackageProfessional, req.Package)
			require.Equal(t, []domain.AddOn{domain.AddOnCoverLetter, domain.AddOnRush}, req.AddOns)
			require.Equal(t, "pi_123", req.PaymentIntentID)
			require.NotNil(t, req.CVFile)
			require.Equal(t, "My CV.pdf", req.CVFile.Name)
			require.Equal(t, int64(len("%PDF-1.4 cv")), req.CVFile.Size)
			b, err := io.ReadAll(req.CVFile.Body)
			require.NoError(t, err)
			require.Equal(t, "%PDF-1.4 cv", string(b))

			return &intake.IntakeResult{
				Submission: &domain.Submission{ID: id, Email: req.Email},
				StatusURL:  "https://rightfitcv.com/order-status?orderId=" + id.String(),
				Token:      "tok",
			}, nil
		})

	body, ct := multipartBody(t, map[string][]string{
		"fullName":        {"Ada Lovelace"},
		"email":           {"ada@example.com"},
		"targetRole":      {"Engineer"},
		"package":         {"professional"},
		"addOns":          {"cover_letter", "rush"},
		"paymentIntentId": {"pi_123"},
	}, "cvFile", "My CV.pdf", "%PDF-1.4 cv")
	req := httptest.NewRequest(http.MethodPost, "/api/submit-intake", body)
	req.Header.Set("Content-Type", ct)

	rec := f.do(req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.Contains(t, rec.Body.String(), id.String())
	require.Contains(t, rec.Body.String(), `"token":"tok"`)
}

func TestSubmitIntake_JSON(t *testing.T) {
	f := newFixture(t)

	f.intake.EXPECT().SubmitIntake(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ any, req intake.IntakeRequest) (*intake.IntakeResult, error) {
			require.Nil(t, req.CVFile)
			require.Equal(t, "plain text cv", req.CVText)

			return nil, serrors.With(serrors.ErrPaymentRequired, "payment has not completed")
		})

	rec := f.do(httptest.NewRequest(http.MethodPost, "/api/submit-intake", jsonBody(t, map[string]any{
		"fullName":   "Ada",
		"email":      "ada@example.com",
		"targetRole": "Engineer",
		"package":    "essential",
		"cvText":     "plain text cv",
	})))
	requireError(t, rec, http.StatusPaymentRequired, "PAYMENT_REQUIRED")
}

func TestSubmitIntake_UploadTooLarge(t *testing.T) {
	f := newFixture(t, func(_ *api.Deps, o *api.Options) { o.HandlerOptions.MaxUploadBytes = 16 })

	body, ct := multipartBody(t, map[string][]string{"fullName": {"Ada"}},
		"cvFile", "cv.pdf", strings.Repeat("x", 3<<20))
	req := httptest.NewRequest(http.MethodPost, "/api/submit-intake", body)
	req.Header.Set("Content-Type", ct)

	requireError(t, f.do(req), http.StatusRequestEntityTooLarge, "TOO_LARGE")
}

func TestGradeCV_RateLimited(t *testing.T) {
	limiter := ratelimit.NewMemory()
	defer limiter.Close()

	f := newFixture(t, func(d *api.Deps, o *api.Options) {
		d.Limiter = limiter
		o.RateLimits = api.RateLimits{Window: time.Hour, GradeCV: 1}
	})

	f.grading.EXPECT().GradeCV(gomock.Any(), grading.FreeAuditRequest{CVText: "cv", Email: "ada@example.com"}).
		Return(&domain.AIGrade{Overall: 72, Summary: "Solid"}, nil).
		Times(1)

	newReq := func() *http.Request {
		req := httptest.NewRequest(http.MethodPost, "/api/grade-cv",
			strings.NewReader(`{"cvText":"cv","email":"ada@example.com"}`))
		req.RemoteAddr = "203.0.113.7:4000"

		return req
	}

	rec := f.do(newReq())
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"overall":72`)

	rec = f.do(newReq())
	requireError(t, rec, http.StatusTooManyRequests, "RATE_LIMITED")
	require.NotEmpty(t, rec.Header().Get("Retry-After"))
}

func TestCaptureLead(t *testing.T) {
	f := newFixture(t)

	f.intake.EXPECT().CaptureLead(gomock.Any(), intake.LeadRequest{
		Email:  "ada@example.com",
		Source: domain.LeadSourceNewsletter,
	}).Return(&domain.Lead{Email: "ada@example.com", Source: domain.LeadSourceNewsletter}, nil)

	rec := f.do(httptest.NewRequest(http.MethodPost, "/api/leads",
		strings.NewReader(`{"email":"ada@example.com","source":"newsletter"}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"source":"newsletter"`)
}

func TestOrderStatus(t *testing.T) {
	f := newFixture(t)
	id := domain.NewSubmissionID()

	f.intake.EXPECT().OrderStatus(gomock.Any(), id, "ada@example.com", "tok").
		Return(&intake.OrderStatus{ID: id, Status: domain.SubmissionStatusInProgress}, nil)

	rec := f.do(httptest.NewRequest(http.MethodGet,
		"/api/order-status?orderId="+id.String()+"&email=ada@example.com&token=tok", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"status":"in_progress"`)

	f.intake.EXPECT().OrderStatus(gomock.Any(), id, "ada@example.com", "forged").
		Return(nil, serrors.With(serrors.ErrUnauthorized, "invalid order link"))
	rec = f.do(httptest.NewRequest(http.MethodGet,
		"/api/order-status?orderId="+id.String()+"&email=ada@example.com&token=forged", nil))
	requireError(t, rec, http.StatusUnauthorized, "UNAUTHORIZED")
}

func TestOrderStatus_MalformedQuery(t *testing.T) {
	f := newFixture(t)

	requireError(t, f.do(httptest.NewRequest(http.MethodGet, "/api/order-status?orderId=nope&email=a&token=b", nil)),
		http.StatusBadRequest, "BAD_REQUEST")
	requireError(t, f.do(httptest.NewRequest(http.MethodGet,
		"/api/order-status?orderId="+domain.NewSubmissionID().String(), nil)),
		http.StatusBadRequest, "BAD_REQUEST")
}

func TestDeliveredFile(t *testing.T) {
	f := newFixture(t)
	id := domain.NewSubmissionID()

	f.intake.EXPECT().DeliveredFile(gomock.Any(), id, "ada@example.com", "tok").
		Return(&blob.Object{
			ReadCloser:  io.NopCloser(strings.NewReader("rewritten")),
			ContentType: "application/pdf",
			Size:        9,
		}, "Ada_CV.pdf", nil)

	rec := f.do(httptest.NewRequest(http.MethodGet,
		"/api/order-status/file?orderId="+id.String()+"&email=ada@example.com&token=tok", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	require.Equal(t, `attachment; filename="Ada_CV.pdf"`, rec.Header().Get("Content-Disposition"))
	require.Equal(t, "9", rec.Header().Get("Content-Length"))
	require.Equal(t, "rewritten", rec.Body.String())
}

func TestResendOrderLink(t *testing.T) {
	f := newFixture(t)

	f.intake.EXPECT().ResendOrderLink(gomock.Any(), "abc", "ada@example.com").Return(nil)

	rec := f.do(httptest.NewRequest(http.MethodPost, "/api/order-status/resend",
		strings.NewReader(`{"orderId":"abc","email":"ada@example.com"}`)))
	require.Equal(t, http.StatusAccepted, rec.Code)
	require.JSONEq(t, `{"ok":true}`, rec.Body.String())
}

func TestStripeWebhook(t *testing.T) {
	f := newFixture(t)
	payload := `{"id":"evt_1","type":"payment_intent.succeeded"}`

	f.intake.EXPECT().HandlePaymentEvent(gomock.Any(), []byte(payload), "t=1,v1=abc").Return(nil)

	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/stripe", strings.NewReader(payload))
	req.Header.Set("Stripe-Signature", "t=1,v1=abc")
	rec := f.do(req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"received":true}`, rec.Body.String())

	f.intake.EXPECT().HandlePaymentEvent(gomock.Any(), gomock.Any(), "").
		Return(serrors.With(serrors.ErrBadRequest, "invalid webhook signature"))
	rec = f.do(httptest.NewRequest(http.MethodPost, "/api/webhooks/stripe", strings.NewReader(payload)))
	requireError(t, rec, http.StatusBadRequest, "BAD_REQUEST")
}

func TestAdmin_RequiresSession(t *testing.T) {
	f := newFixture(t)

	requireError(t, f.do(httptest.NewRequest(http.MethodGet, "/api/admin/stats", nil)),
		http.StatusUnauthorized, "UNAUTHORIZED")

	req := httptest.NewRequest(http.MethodGet, "/api/admin/stats", nil)
	req.AddCookie(&http.Cookie{Name: admin.CookieName, Value: "forged.token.value"})
	rec := f.do(req)
	requireError(t, rec, http.StatusUnauthorized, "UNAUTHORIZED")
	require.Contains(t, rec.Header().Get("Set-Cookie"), admin.CookieName+"=;")

	other, err := admin.NewSessions("another-secret", "", time.Hour)
	require.NoError(t, err)
	token, _, err := other.Issue(admin.Subject, time.Hour)
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/api/admin/stats", nil)
	req.AddCookie(&http.Cookie{Name: admin.CookieName, Value: token})
	requireError(t, f.do(req), http.StatusUnauthorized, "UNAUTHORIZED")
}

func TestAdmin_NotConfigured(t *testing.T) {
	f := newFixture(t, func(d *api.Deps, _ *api.Options) { d.Sessions = nil })

	requireError(t, f.do(httptest.NewRequest(http.MethodGet, "/api/admin/stats", nil)),
		http.StatusServiceUnavailable, "UNAVAILABLE")
	requireError(t, f.do(httptest.NewRequest(http.MethodPost, "/api/admin/login",
		strings.NewReader(`{"password":"x"}`))), http.StatusServiceUnavailable, "UNAVAILABLE")
}

func TestAdmin_LoginFlow(t *testing.T) {
	f := newFixture(t)

	rec := f.do(httptest.NewRequest(http.MethodPost, "/api/admin/login", strings.NewReader(`{"password":"wrong"}`)))
	requireError(t, rec, http.StatusUnauthorized, "UNAUTHORIZED")
	require.Empty(t, rec.Result().Cookies())

	rec = f.do(httptest.NewRequest(http.MethodPost, "/api/admin/login", jsonBody(t, map[string]string{"password": adminPassword})))
	require.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, admin.CookieName, cookies[0].Name)
	require.True(t, cookies[0].HttpOnly)
	require.Equal(t, http.SameSiteLaxMode, cookies[0].SameSite)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/session", nil)
	req.AddCookie(cookies[0])
	rec = f.do(req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"authenticated":true,"actor":"admin"}`, rec.Body.String())

	f.admin.EXPECT().Stats(gomock.Any()).Return(&admin.Stats{Total: 3, PaidCents: 14800}, nil)
	req = httptest.NewRequest(http.MethodGet, "/api/admin/stats", nil)
	req.AddCookie(cookies[0])
	rec = f.do(req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"paidCents":14800`)

	rec = f.do(httptest.NewRequest(http.MethodPost, "/api/admin/logout", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, -1, rec.Result().Cookies()[0].MaxAge)
}

func TestAdmin_ListSubmissions(t *testing.T) {
	f := newFixture(t)

	cursor := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	next := cursor.Add(-time.Hour)
	f.admin.EXPECT().ListSubmissions(gomock.Any(), storage.SubmissionFilter{
		Status: domain.SubmissionStatusReview,
		Query:  "ada",
		Cursor: cursor,
		Limit:  v1handler.MaxLimit,
	}).Return(storage.SubmissionPage{
		Submissions: []domain.Submission{{ID: domain.NewSubmissionID(), FullName: "Ada"}},
		NextCursor:  &next,
	}, nil)

	rec := f.do(f.adminRequest(t, http.MethodGet,
		"/api/admin/submissions?status=review&q=ada&limit=500&cursor="+cursor.Format(time.RFC3339Nano), nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var got struct {
		Items      []domain.Submission `json:"items"`
		NextCursor *string             `json:"nextCursor"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got.Items, 1)
	require.NotNil(t, got.NextCursor)
	require.Equal(t, next.Format(time.RFC3339Nano), *got.NextCursor)

	requireError(t, f.do(f.adminRequest(t, http.MethodGet, "/api/admin/submissions?cursor=yesterday", nil)),
		http.StatusBadRequest, "BAD_REQUEST")
	requireError(t, f.do(f.adminRequest(t, http.MethodGet, "/api/admin/submissions?limit=0", nil)),
		http.StatusBadRequest, "BAD_REQUEST")
}

func TestAdmin_ListLeadsEmptyPage(t *testing.T) {
	f := newFixture(t)

	f.admin.EXPECT().ListLeads(gomock.Any(), storage.LeadFilter{Limit: v1handler.DefaultLimit}).
		Return(storage.LeadPage{}, nil)

	rec := f.do(f.adminRequest(t, http.MethodGet, "/api/admin/leads", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"items":[],"nextCursor":null}`, rec.Body.String())
}

func TestAdmin_SubmissionActions(t *testing.T) {
	f := newFixture(t)
	id := domain.NewSubmissionID()
	base := "/api/admin/submissions/" + id.String()

	f.admin.EXPECT().Submission(gomock.Any(), id).
		Return(&admin.SubmissionDetail{Submission: &domain.Submission{ID: id}}, nil)
	require.Equal(t, http.StatusOK, f.do(f.adminRequest(t, http.MethodGet, base, nil)).Code)

	status := domain.SubmissionStatusReview
	f.admin.EXPECT().UpdateSubmission(gomock.Any(), id, admin.Subject, admin.SubmissionPatch{Status: &status}).
		Return(&domain.Submission{ID: id, Status: status}, nil)
	rec := f.do(f.adminRequest(t, http.MethodPatch, base, strings.NewReader(`{"status":"review"}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"status":"review"`)

	f.admin.EXPECT().UpdateSubmission(gomock.Any(), id, admin.Subject, gomock.Any()).
		Return(nil, serrors.With(serrors.ErrConflict, "cannot move from pending to delivered"))
	requireError(t, f.do(f.adminRequest(t, http.MethodPatch, base, strings.NewReader(`{"status":"delivered"}`))),
		http.StatusConflict, "CONFLICT")

	f.admin.EXPECT().AddNote(gomock.Any(), id, admin.Subject, "Call the customer").
		Return(&domain.ReviewNote{Body: "Call the customer"}, nil)
	rec = f.do(f.adminRequest(t, http.MethodPost, base+"/notes", strings.NewReader(`{"body":"Call the customer"}`)))
	require.Equal(t, http.StatusCreated, rec.Code)

	f.admin.EXPECT().Refund(gomock.Any(), id, admin.Subject, "duplicate order").
		Return(&domain.Submission{ID: id, Status: domain.SubmissionStatusRefunded}, nil)
	rec = f.do(f.adminRequest(t, http.MethodPost, base+"/refund", strings.NewReader(`{"reason":"duplicate order"}`)))
	require.Equal(t, http.StatusOK, rec.Code)

	f.admin.EXPECT().Refund(gomock.Any(), id, admin.Subject, "").
		Return(&domain.Submission{ID: id, Status: domain.SubmissionStatusRefunded}, nil)
	require.Equal(t, http.StatusOK, f.do(f.adminRequest(t, http.MethodPost, base+"/refund", nil)).Code)

	f.admin.EXPECT().Regrade(gomock.Any(), id, admin.Subject).Return(nil)
	require.Equal(t, http.StatusAccepted, f.do(f.adminRequest(t, http.MethodPost, base+"/regrade", nil)).Code)

	f.admin.EXPECT().DeleteSubmission(gomock.Any(), id, admin.Subject).Return(nil)
	require.Equal(t, http.StatusNoContent, f.do(f.adminRequest(t, http.MethodDelete, base, nil)).Code)

	requireError(t, f.do(f.adminRequest(t, http.MethodGet, "/api/admin/submissions/not-a-uuid", nil)),
		http.StatusBadRequest, "BAD_REQUEST")
}

func TestAdmin_Deliver(t *testing.T) {
	f := newFixture(t)
	id := domain.NewSubmissionID()

	f.admin.EXPECT().Deliver(gomock.Any(), id, admin.Subject, gomock.Any()).
		DoAndReturn(func(_ any, _ domain.SubmissionID, _ string, up admin.Upload) (*domain.Submission, error) {
			require.Equal(t, "Ada Final.docx", up.Name)
			b, err := io.ReadAll(up.Body)
			require.NoError(t, err)
			require.Equal(t, "docx bytes", string(b))

			return &domain.Submission{ID: id, Status: domain.SubmissionStatusDelivered}, nil
		})

	body, ct := multipartBody(t, nil, "file", "Ada Final.docx", "docx bytes")
	req := f.adminRequest(t, http.MethodPost, "/api/admin/submissions/"+id.String()+"/deliver", body)
	req.Header.Set("Content-Type", ct)
	rec := f.do(req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Contains(t, rec.Body.String(), `"status":"delivered"`)

	body, ct = multipartBody(t, map[string][]string{"note": {"x"}}, "", "", "")
	req = f.adminRequest(t, http.MethodPost, "/api/admin/submissions/"+id.String()+"/deliver", body)
	req.Header.Set("Content-Type", ct)
	requireError(t, f.do(req), http.StatusBadRequest, "BAD_REQUEST")
}

func TestAdmin_FileAndActivity(t *testing.T) {
	f := newFixture(t)
	id := domain.NewSubmissionID()

	f.admin.EXPECT().File(gomock.Any(), id, admin.FileCV).
		Return(&blob.Object{ReadCloser: io.NopCloser(strings.NewReader("cv")), ContentType: "text/plain"}, "cv.txt", nil)
	rec := f.do(f.adminRequest(t, http.MethodGet, "/api/admin/submissions/"+id.String()+"/files/cv", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "cv", rec.Body.String())

	f.admin.EXPECT().RecentActivity(gomock.Any(), uint(10)).Return(nil, nil)
	rec = f.do(f.adminRequest(t, http.MethodGet, "/api/admin/activity?limit=10", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"items":[]}`, rec.Body.String())
}

func TestRiverUIBehindSession(t *testing.T) {
	ui := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("river"))
	})
	f := newFixture(t, func(d *api.Deps, _ *api.Options) { d.RiverUI = ui })

	requireError(t, f.do(httptest.NewRequest(http.MethodGet, api.RiverUIPrefix+"/jobs", nil)),
		http.StatusUnauthorized, "UNAUTHORIZED")

	rec := f.do(f.adminRequest(t, http.MethodGet, api.RiverUIPrefix+"/jobs", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "river", rec.Body.String())
}
