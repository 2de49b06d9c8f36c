package postgres

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"rightfit/pkg/domain"
	"time"

	"github.com/google/uuid"
)

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}

func nullUUID(id uuid.UUID) uuid.NullUUID {
	return uuid.NullUUID{UUID: id, Valid: id != uuid.Nil}
}

func newID(id uuid.UUID) uuid.UUID {
	if id == uuid.Nil {
		return uuid.New()
	}

	return id
}

type PgSubmission struct {
	ID uuid.UUID `db:"id"`

	FullName        string `db:"full_name"`
	Email           string `db:"email"`
	Phone           string `db:"phone"`
	TargetRole      string `db:"target_role"`
	Industry        string `db:"industry"`
	ExperienceLevel string `db:"experience_level"`
	CareerGoals     string `db:"career_goals"`
	AdditionalNotes string `db:"additional_notes"`
	LinkedInURL     string `db:"linkedin_url"`

	Package         string          `db:"package"`
	AddOns          json.RawMessage `db:"add_ons"`
	Status          string          `db:"status"`
	PaymentStatus   string          `db:"payment_status"`
	PaymentIntentID sql.NullString  `db:"payment_intent_id"`
	AmountCents     int64           `db:"amount_cents"`
	Currency        string          `db:"currency"`

	CVFileKey         string `db:"cv_file_key"`
	CVFileName        string `db:"cv_file_name"`
	CVContentType     string `db:"cv_content_type"`
	CVText            string `db:"cv_text"`
	DeliveredFileKey  string `db:"delivered_file_key"`
	DeliveredFileName string `db:"delivered_file_name"`
	AssignedTo        string `db:"assigned_to"`

	CreatedAt   time.Time    `db:"created_at"   goqu:"skipinsert"`
	UpdatedAt   sql.NullTime `db:"updated_at"   goqu:"skipinsert"`
	DeliveredAt sql.NullTime `db:"delivered_at" goqu:"skipinsert"`
	DeletedAt   sql.NullTime `db:"deleted_at"   goqu:"skipinsert"`
}

func (p *PgSubmission) ToDomain() (*domain.Submission, error) {
	var addOns []domain.AddOn
	if len(p.AddOns) > 0 {
		if err := json.Unmarshal(p.AddOns, &addOns); err != nil {
			return nil, fmt.Errorf("could not unmarshal add-ons: %w", err)
		}
	}
	if addOns == nil {
		addOns = []domain.AddOn{}
	}

	return &domain.Submission{
		ID:              domain.SubmissionID(p.ID),
		FullName:        p.FullName,
		Email:           p.Email,
		Phone:           p.Phone,
		TargetRole:      p.TargetRole,
		Industry:        p.Industry,
		ExperienceLevel: p.ExperienceLevel,
		CareerGoals:     p.CareerGoals,
		AdditionalNotes: p.AdditionalNotes,
		LinkedInURL:     p.LinkedInURL,
		Package:         domain.Package(p.Package),
		AddOns:          addOns,
		Status:          domain.SubmissionStatus(p.Status),
		PaymentStatus:   domain.PaymentStatus(p.PaymentStatus),
		PaymentIntentID: p.PaymentIntentID.String,
		AmountCents:     p.AmountCents,
		Currency:        p.Currency,
		CVFileKey:       p.CVFileKey,
		CVFileName:      p.CVFileName,
		CVContentType:   p.CVContentType,
		CVText:          p.CVText,
		DeliveredKey:    p.DeliveredFileKey,
		DeliveredName:   p.DeliveredFileName,
		AssignedTo:      p.AssignedTo,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt.Time,
		DeliveredAt:     p.DeliveredAt.Time,
		DeletedAt:       p.DeletedAt.Time,
	}, nil
}

func (p *PgSubmission) FromDomain(s domain.Submission) error {
	addOns := s.AddOns
	if addOns == nil {
		addOns = []domain.AddOn{}
	}
	rawAddOns, err := json.Marshal(addOns)
	if err != nil {
		return fmt.Errorf("could not marshal add-ons: %w", err)
	}

	status := s.Status
	if status == "" {
		status = domain.SubmissionStatusPending
	}
	paymentStatus := s.PaymentStatus
	if paymentStatus == "" {
		paymentStatus = domain.PaymentStatusUnpaid
	}
	currency := s.Currency
	if currency == "" {
		currency = domain.DefaultCurrency
	}

	*p = PgSubmission{
		ID:              newID(uuid.UUID(s.ID)),
		FullName:        s.FullName,
		Email:           s.Email,
		Phone:           s.Phone,
		TargetRole:      s.TargetRole,
		Industry:        s.Industry,
		ExperienceLevel: s.ExperienceLevel,
		CareerGoals:     s.CareerGoals,
		AdditionalNotes: s.AdditionalNotes,
		LinkedInURL:     s.LinkedInURL,
		Package:         string(s.Package),
		AddOns:          rawAddOns,
		Status:          string(status),
		PaymentStatus:   string(paymentStatus),
		PaymentIntentID: sql.NullString{
			String: s.PaymentIntentID,
			Valid:  s.PaymentIntentID != "",
		},
		AmountCents:       s.AmountCents,
		Currency:          currency,
		CVFileKey:         s.CVFileKey,
		CVFileName:        s.CVFileName,
		CVContentType:     s.CVContentType,
		CVText:            s.CVText,
		DeliveredFileKey:  s.DeliveredKey,
		DeliveredFileName: s.DeliveredName,
		AssignedTo:        s.AssignedTo,
		CreatedAt:         s.CreatedAt,
		UpdatedAt:         nullTime(s.UpdatedAt),
		DeliveredAt:       nullTime(s.DeliveredAt),
		DeletedAt:         nullTime(s.DeletedAt),
	}

	return nil
}

func pgSubmissionsToDomain(rows []PgSubmission) ([]domain.Submission, error) {
	out := make([]domain.Submission, 0, len(rows))
	for _, row := range rows {
		d, err := row.ToDomain()
		if err != nil {
			return nil, err
		}

		out = append(out, *d)
	}

	return out, nil
}

type PgPayment struct {
	ID           uuid.UUID     `db:"id"`
	SubmissionID uuid.NullUUID `db:"submission_id"`

	ProviderID     string `db:"provider_id"`
	AmountCents    int64  `db:"amount_cents"`
	Currency       string `db:"currency"`
	Status         string `db:"status"`
	Email          string `db:"email"`
	RefundID       string `db:"refund_id"`
	FailureMessage string `db:"failure_message"`

	CreatedAt time.Time    `db:"created_at" goqu:"skipinsert"`
	UpdatedAt sql.NullTime `db:"updated_at" goqu:"skipinsert"`
}

func (p *PgPayment) ToDomain() *domain.Payment {
	return &domain.Payment{
		ID:             domain.PaymentID(p.ID),
		SubmissionID:   domain.SubmissionID(p.SubmissionID.UUID),
		ProviderID:     p.ProviderID,
		AmountCents:    p.AmountCents,
		Currency:       p.Currency,
		Status:         domain.PaymentStatus(p.Status),
		Email:          p.Email,
		RefundID:       p.RefundID,
		FailureMessage: p.FailureMessage,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt.Time,
	}
}

func (p *PgPayment) FromDomain(payment domain.Payment) {
	*p = PgPayment{
		ID:             newID(uuid.UUID(payment.ID)),
		SubmissionID:   nullUUID(uuid.UUID(payment.SubmissionID)),
		ProviderID:     payment.ProviderID,
		AmountCents:    payment.AmountCents,
		Currency:       payment.Currency,
		Status:         string(payment.Status),
		Email:          payment.Email,
		RefundID:       payment.RefundID,
		FailureMessage: payment.FailureMessage,
		CreatedAt:      payment.CreatedAt,
		UpdatedAt:      nullTime(payment.UpdatedAt),
	}
}

type PgLead struct {
	ID        uuid.UUID `db:"id"`
	Email     string    `db:"email"`
	Name      string    `db:"name"`
	Source    string    `db:"source"`
	Step      string    `db:"step"`
	Converted bool      `db:"converted"`

	CreatedAt time.Time    `db:"created_at" goqu:"skipinsert"`
	UpdatedAt sql.NullTime `db:"updated_at" goqu:"skipinsert"`
}

func (p *PgLead) ToDomain() *domain.Lead {
	return &domain.Lead{
		ID:        domain.LeadID(p.ID),
		Email:     p.Email,
		Name:      p.Name,
		Source:    domain.LeadSource(p.Source),
		Step:      p.Step,
		Converted: p.Converted,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt.Time,
	}
}

func (p *PgLead) FromDomain(lead domain.Lead) {
	*p = PgLead{
		ID:        newID(uuid.UUID(lead.ID)),
		Email:     lead.Email,
		Name:      lead.Name,
		Source:    string(lead.Source),
		Step:      lead.Step,
		Converted: lead.Converted,
	}
}

type PgActivity struct {
	ID           uuid.UUID `db:"id"`
	SubmissionID uuid.UUID `db:"submission_id"`
	Actor        string    `db:"actor"`
	Action       string    `db:"action"`
	Details      string    `db:"details"`
	CreatedAt    time.Time `db:"created_at" goqu:"skipinsert"`
}

func (p *PgActivity) ToDomain() domain.ActivityLog {
	return domain.ActivityLog{
		ID:           domain.ActivityID(p.ID),
		SubmissionID: domain.SubmissionID(p.SubmissionID),
		Actor:        p.Actor,
		Action:       domain.ActivityAction(p.Action),
		Details:      p.Details,
		CreatedAt:    p.CreatedAt,
	}
}

func (p *PgActivity) FromDomain(log domain.ActivityLog) {
	*p = PgActivity{
		ID:           newID(uuid.UUID(log.ID)),
		SubmissionID: uuid.UUID(log.SubmissionID),
		Actor:        log.Actor,
		Action:       string(log.Action),
		Details:      log.Details,
	}
}

type PgNote struct {
	ID           uuid.UUID `db:"id"`
	SubmissionID uuid.UUID `db:"submission_id"`
	Author       string    `db:"author"`
	Body         string    `db:"body"`
	CreatedAt    time.Time `db:"created_at" goqu:"skipinsert"`
}

func (p *PgNote) ToDomain() domain.ReviewNote {
	return domain.ReviewNote{
		ID:           domain.NoteID(p.ID),
		SubmissionID: domain.SubmissionID(p.SubmissionID),
		Author:       p.Author,
		Body:         p.Body,
		CreatedAt:    p.CreatedAt,
	}
}

func (p *PgNote) FromDomain(note domain.ReviewNote) {
	*p = PgNote{
		ID:           newID(uuid.UUID(note.ID)),
		SubmissionID: uuid.UUID(note.SubmissionID),
		Author:       note.Author,
		Body:         note.Body,
	}
}

type PgGrade struct {
	ID           uuid.UUID     `db:"id"`
	SubmissionID uuid.NullUUID `db:"submission_id"`
	Email        string        `db:"email"`
	TargetRole   string        `db:"target_role"`

	Overall      int             `db:"overall"`
	Breakdown    json.RawMessage `db:"breakdown"`
	Strengths    json.RawMessage `db:"strengths"`
	Improvements json.RawMessage `db:"improvements"`
	Summary      string          `db:"summary"`
	Model        string          `db:"model"`
	Demo         bool            `db:"demo"`

	CreatedAt time.Time `db:"created_at" goqu:"skipinsert"`
}

func (p *PgGrade) ToDomain() (*domain.AIGrade, error) {
	g := domain.AIGrade{
		ID:           domain.GradeID(p.ID),
		SubmissionID: domain.SubmissionID(p.SubmissionID.UUID),
		Email:        p.Email,
		TargetRole:   p.TargetRole,
		Overall:      p.Overall,
		Summary:      p.Summary,
		Model:        p.Model,
		Demo:         p.Demo,
		CreatedAt:    p.CreatedAt,
	}
	if err := json.Unmarshal(p.Breakdown, &g.Breakdown); err != nil {
		return nil, fmt.Errorf("could not unmarshal grade breakdown: %w", err)
	}
	if err := json.Unmarshal(p.Strengths, &g.Strengths); err != nil {
		return nil, fmt.Errorf("could not unmarshal grade strengths: %w", err)
	}
	if err := json.Unmarshal(p.Improvements, &g.Improvements); err != nil {
		return nil, fmt.Errorf("could not unmarshal grade improvements: %w", err)
	}

	return &g, nil
}

func (p *PgGrade) FromDomain(g domain.AIGrade) error {
	breakdown, err := json.Marshal(g.Breakdown)
	if err != nil {
		return fmt.Errorf("could not marshal grade breakdown: %w", err)
	}
	strengths, err := json.Marshal(nonNil(g.Strengths))
	if err != nil {
		return fmt.Errorf("could not marshal grade strengths: %w", err)
	}
	improvements, err := json.Marshal(nonNil(g.Improvements))
	if err != nil {
		return fmt.Errorf("could not marshal grade improvements: %w", err)
	}

	*p = PgGrade{
		ID:           newID(uuid.UUID(g.ID)),
		SubmissionID: nullUUID(uuid.UUID(g.SubmissionID)),
		Email:        g.Email,
		TargetRole:   g.TargetRole,
		Overall:      g.Overall,
		Breakdown:    breakdown,
		Strengths:    strengths,
		Improvements: improvements,
		Summary:      g.Summary,
		Model:        g.Model,
		Demo:         g.Demo,
	}

	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}

	return s
}
