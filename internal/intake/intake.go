// Package intake implements the customer-facing order flow: quoting,
// checkout, intake submission, payment webhooks and the order-status portal.
package intake

import (
	"context"
	"fmt"
	"io"
	"rightfit/internal/config"
	"rightfit/pkg/blob"
	"rightfit/pkg/domain"
	"rightfit/pkg/metrics"
	"rightfit/pkg/ordertoken"
	"rightfit/pkg/payments"
	"rightfit/pkg/serrors"
	"rightfit/pkg/storage"
	"strings"
	"time"
)

// Options configure the intake service.
type Options struct {
	// PublicURL is the website base URL used in order-status links.
	PublicURL string
	// AdminEmail receives new-order alerts. Empty disables them.
	AdminEmail string
	// MaxUploadBytes caps uploaded CV files.
	MaxUploadBytes int64
}

// NewOptions constructs an Options value from the provided application config.
func NewOptions(cfg *config.Config) Options {
	return Options{
		PublicURL:      strings.TrimRight(cfg.PublicURL, "/"),
		AdminEmail:     cfg.Email.AdminEmail,
		MaxUploadBytes: cfg.Blob.MaxUploadBytes,
	}
}

// PaymentIntentRequest is the input of CreatePaymentIntent.
type PaymentIntentRequest struct {
	Package domain.Package `json:"package"`
	AddOns  []domain.AddOn `json:"addOns"`
	Email   string         `json:"email"`
	Name    string         `json:"name"`
}

// PaymentIntent is returned to the browser to confirm the card payment.
type PaymentIntent struct {
	ClientSecret    string       `json:"clientSecret"`
	PaymentIntentID string       `json:"paymentIntentId"`
	Quote           domain.Quote `json:"quote"`
}

// Upload is a CV file received with the intake form.
type Upload struct {
	Name string
	Size int64
	Body io.Reader
}

// IntakeRequest is the intake form.
type IntakeRequest struct {
	FullName        string         `json:"fullName"`
	Email           string         `json:"email"`
	Phone           string         `json:"phone"`
	TargetRole      string         `json:"targetRole"`
	Industry        string         `json:"industry"`
	ExperienceLevel string         `json:"experienceLevel"`
	CareerGoals     string         `json:"careerGoals"`
	AdditionalNotes string         `json:"additionalNotes"`
	LinkedInURL     string         `json:"linkedinUrl"`
	Package         domain.Package `json:"package"`
	AddOns          []domain.AddOn `json:"addOns"`
	PaymentIntentID string         `json:"paymentIntentId"`
	CVText          string         `json:"cvText"`
	CVFile          *Upload        `json:"-"`
}

// IntakeResult is returned after a successful submission.
type IntakeResult struct {
	Submission *domain.Submission `json:"submission"`
	StatusURL  string             `json:"statusUrl"`
	Token      string             `json:"token"`
}

// LeadRequest is the input of CaptureLead.
type LeadRequest struct {
	Email  string            `json:"email"`
	Name   string            `json:"name"`
	Source domain.LeadSource `json:"source"`
	Step   string            `json:"step"`
}

// TimelineEntry is one customer-visible event of an order.
type TimelineEntry struct {
	Action  domain.ActivityAction `json:"action"`
	Details string                `json:"details,omitempty"`
	At      time.Time             `json:"at"`
}

// GradeSummary is the latest AI grade shown on the status page.
type GradeSummary struct {
	Overall      int                   `json:"overall"`
	Breakdown    domain.GradeBreakdown `json:"breakdown"`
	Summary      string                `json:"summary"`
	Strengths    []string              `json:"strengths"`
	Improvements []string              `json:"improvements"`
	Demo         bool                  `json:"demo"`
}

// OrderStatus is the customer's view of an order.
type OrderStatus struct {
	ID                domain.SubmissionID     `json:"id"`
	FullName          string                  `json:"fullName"`
	Status            domain.SubmissionStatus `json:"status"`
	PaymentStatus     domain.PaymentStatus    `json:"paymentStatus"`
	Package           domain.Package          `json:"package"`
	AddOns            []domain.AddOn          `json:"addOns"`
	TargetRole        string                  `json:"targetRole"`
	AmountCents       int64                   `json:"amountCents"`
	Currency          string                  `json:"currency"`
	CreatedAt         time.Time               `json:"createdAt"`
	UpdatedAt         time.Time               `json:"updatedAt"`
	DeliveredAt       *time.Time              `json:"deliveredAt,omitempty"`
	Timeline          []TimelineEntry         `json:"timeline"`
	Grade             *GradeSummary           `json:"grade,omitempty"`
	DeliveredFile     bool                    `json:"deliveredFile"`
	DeliveredFileName string                  `json:"deliveredFileName,omitempty"`
}

//go:generate mockgen -package mockintake -source=intake.go -destination=mock/mockintake.go Service
type Service interface {
	// Quote prices a package and its add-ons.
	Quote(pkg domain.Package, addOns []domain.AddOn) (domain.Quote, error)
	// CreatePaymentIntent prices the order server-side, creates the provider
	// intent and stores a pending payment.
	CreatePaymentIntent(ctx context.Context, req PaymentIntentRequest) (*PaymentIntent, error)
	// SubmitIntake stores the CV and the order and queues its emails and grading.
	SubmitIntake(ctx context.Context, req IntakeRequest) (*IntakeResult, error)
	// HandlePaymentEvent applies a signed provider webhook. Replays are no-ops.
	HandlePaymentEvent(ctx context.Context, payload []byte, signature string) error
	// OrderStatus returns the order behind a tokenized status link.
	OrderStatus(ctx context.Context, id domain.SubmissionID, email, token string) (*OrderStatus, error)
	// DeliveredFile opens the rewritten CV behind a tokenized status link and
	// returns it with its file name. Callers must close the object.
	DeliveredFile(ctx context.Context, id domain.SubmissionID, email, token string) (*blob.Object, string, error)
	// ResendOrderLink emails the status link when orderID and email match an
	// order. It reports success either way.
	ResendOrderLink(ctx context.Context, orderID, email string) error
	// CaptureLead upserts a lead by (email, source).
	CaptureLead(ctx context.Context, req LeadRequest) (*domain.Lead, error)
}

type service struct {
	options  Options
	storage  storage.Storage
	payments payments.Provider
	blobs    blob.Store
	tokens   *ordertoken.Signer
	metrics  *metrics.Business
}

// New creates an intake Service.
func New(options Options,
	storage storage.Storage,
	provider payments.Provider,
	blobs blob.Store,
	tokens *ordertoken.Signer,
	m *metrics.Business) Service {
	if m == nil {
		m = metrics.Noop()
	}
	if options.MaxUploadBytes <= 0 {
		options.MaxUploadBytes = blob.DefaultMaxSize
	}

	return &service{
		options:  options,
		storage:  storage,
		payments: provider,
		blobs:    blobs,
		tokens:   tokens,
		metrics:  m,
	}
}

func (s *service) Quote(pkg domain.Package, addOns []domain.AddOn) (domain.Quote, error) {
	q, err := domain.NewQuote(pkg, addOns)
	if err != nil {
		return domain.Quote{}, serrors.Wrap(serrors.ErrBadRequest, err, "invalid order")
	}

	return q, nil
}

func (s *service) CreatePaymentIntent(ctx context.Context, req PaymentIntentRequest) (*PaymentIntent, error) {
	q, err := s.Quote(req.Package, req.AddOns)
	if err != nil {
		return nil, err
	}
	email := domain.NormalizeEmail(req.Email)
	if !domain.ValidEmail(email) {
		return nil, serrors.With(serrors.ErrBadRequest, "a valid email is required")
	}

	addOns := make([]string, len(q.AddOns))
	for i, a := range q.AddOns {
		addOns[i] = string(a)
	}
	intent, err := s.payments.CreateIntent(ctx, payments.IntentParams{
		AmountCents: q.TotalCents,
		Currency:    q.Currency,
		Email:       email,
		Description: fmt.Sprintf("RightFit CV %s package", q.Package),
		Metadata: map[string]string{
			"package": string(q.Package),
			"addons":  strings.Join(addOns, ","),
			"email":   email,
			"name":    strings.TrimSpace(req.Name),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("could not create payment intent: %w", err)
	}

	if _, err := s.storage.StorePayment(ctx, domain.Payment{
		ProviderID:  intent.ID,
		AmountCents: q.TotalCents,
		Currency:    q.Currency,
		Status:      domain.PaymentStatusPending,
		Email:       email,
	}); err != nil {
		return nil, fmt.Errorf("could not store payment: %w", err)
	}

	return &PaymentIntent{ClientSecret: intent.ClientSecret, PaymentIntentID: intent.ID, Quote: q}, nil
}

func (s *service) CaptureLead(ctx context.Context, req LeadRequest) (*domain.Lead, error) {
	email := domain.NormalizeEmail(req.Email)
	if !domain.ValidEmail(email) {
		return nil, serrors.With(serrors.ErrBadRequest, "a valid email is required")
	}
	if req.Source == "" {
		req.Source = domain.LeadSourceNewsletter
	}
	if !req.Source.Valid() {
		return nil, serrors.With(serrors.ErrBadRequest, "unknown lead source %q", req.Source)
	}

	lead, err := s.storage.UpsertLead(ctx, domain.Lead{
		Email:  email,
		Name:   strings.TrimSpace(req.Name),
		Source: req.Source,
		Step:   strings.TrimSpace(req.Step),
	})
	if err != nil {
		return nil, fmt.Errorf("could not store lead: %w", err)
	}
	s.metrics.LeadCaptured(ctx, string(req.Source))

	return lead, nil
}
