// Package notify renders the transactional emails sent to customers and to
// the business owner, and defines the River job that delivers them.
package notify

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"rightfit/pkg/domain"
	"rightfit/pkg/mailer"
	"strings"
)

// Template names one transactional email.
type Template string

const (
	TemplateOrderConfirmation Template = "order_confirmation"
	TemplatePaymentReceipt    Template = "payment_receipt"
	TemplateOrderLink         Template = "order_link"
	TemplateDelivery          Template = "delivery"
	TemplateRefund            Template = "refund"
	TemplateStatusUpdate      Template = "status_update"
	TemplateAdminNewOrder     Template = "admin_new_order"
)

// ErrUnknownTemplate is returned for templates that are not embedded. Jobs
// failing with it can never succeed.
var ErrUnknownTemplate = errors.New("unknown email template")

//go:embed templates/*.html
var templateFS embed.FS

var subjects = map[Template]func(Data) string{ //nolint: gochecknoglobals
	TemplateOrderConfirmation: func(d Data) string { return "We received your order " + d.ShortID() },
	TemplatePaymentReceipt:    func(d Data) string { return "Payment received: " + d.Amount() },
	TemplateOrderLink:         func(d Data) string { return "Your order status link" },
	TemplateDelivery:          func(d Data) string { return "Your rewritten CV is ready" },
	TemplateRefund:            func(d Data) string { return "Your refund for order " + d.ShortID() },
	TemplateStatusUpdate:      func(d Data) string { return "Order update: " + statusLabel(d.Status) },
	TemplateAdminNewOrder: func(d Data) string {
		return fmt.Sprintf("New order: %s (%s, %s)", d.Name, d.Package, d.Amount())
	},
}

// Data is the payload of every template. Fields a template does not use are
// left empty.
type Data struct {
	Name          string   `json:"name,omitempty"`
	OrderID       string   `json:"orderId,omitempty"`
	Package       string   `json:"package,omitempty"`
	AddOns        []string `json:"addOns,omitempty"`
	TargetRole    string   `json:"targetRole,omitempty"`
	AmountCents   int64    `json:"amountCents,omitempty"`
	Currency      string   `json:"currency,omitempty"`
	Status        string   `json:"status,omitempty"`
	PaymentStatus string   `json:"paymentStatus,omitempty"`
	StatusURL     string   `json:"statusUrl,omitempty"`
	CustomerEmail string   `json:"customerEmail,omitempty"`
	Reason        string   `json:"reason,omitempty"`
}

// OrderData fills the fields shared by every order email.
func OrderData(sub *domain.Submission, statusURL string) Data {
	addOns := make([]string, len(sub.AddOns))
	for i, a := range sub.AddOns {
		addOns[i] = string(a)
	}

	return Data{
		Name:          sub.FullName,
		OrderID:       sub.ID.String(),
		Package:       string(sub.Package),
		AddOns:        addOns,
		TargetRole:    sub.TargetRole,
		AmountCents:   sub.AmountCents,
		Currency:      sub.Currency,
		Status:        string(sub.Status),
		PaymentStatus: string(sub.PaymentStatus),
		StatusURL:     statusURL,
		CustomerEmail: sub.Email,
	}
}

// Amount formats AmountCents, e.g. "$99.00" or "12.50 EUR".
func (d Data) Amount() string {
	v := fmt.Sprintf("%d.%02d", d.AmountCents/100, d.AmountCents%100)
	if d.Currency == "" || strings.EqualFold(d.Currency, "usd") {
		return "$" + v
	}

	return v + " " + strings.ToUpper(d.Currency)
}

// ShortID is the first block of the order ID, used in subjects.
func (d Data) ShortID() string {
	if i := strings.IndexByte(d.OrderID, '-'); i > 0 {
		return "#" + strings.ToUpper(d.OrderID[:i])
	}

	return d.OrderID
}

func statusLabel(s string) string {
	switch s {
	case "in_progress":
		return "in progress"
	case "review":
		return "in final review"
	case "":
		return "updated"
	default:
		return strings.ReplaceAll(s, "_", " ")
	}
}

// Renderer turns job arguments into mail messages.
type Renderer struct {
	sets    map[Template]*template.Template
	from    string
	replyTo string
}

// NewRenderer parses the embedded templates.
func NewRenderer(from, replyTo string) (*Renderer, error) {
	funcs := template.FuncMap{
		"join":        strings.Join,
		"statusLabel": statusLabel,
	}
	layout, err := template.New("layout.html").Funcs(funcs).ParseFS(templateFS, "templates/layout.html")
	if err != nil {
		return nil, fmt.Errorf("could not parse layout: %w", err)
	}

	r := &Renderer{sets: make(map[Template]*template.Template, len(subjects)), from: from, replyTo: replyTo}
	for name := range subjects {
		base, err := layout.Clone()
		if err != nil {
			return nil, fmt.Errorf("could not clone layout: %w", err)
		}
		t, err := base.ParseFS(templateFS, "templates/"+string(name)+".html")
		if err != nil {
			return nil, fmt.Errorf("could not parse template %s: %w", name, err)
		}
		r.sets[name] = t
	}

	return r, nil
}

// Render builds the message for args.
func (r *Renderer) Render(args JobArgs) (mailer.Message, error) {
	t, ok := r.sets[args.Template]
	if !ok {
		return mailer.Message{}, fmt.Errorf("%w: %q", ErrUnknownTemplate, args.Template)
	}

	var body bytes.Buffer
	if err := t.ExecuteTemplate(&body, "layout", args.Data); err != nil {
		return mailer.Message{}, fmt.Errorf("could not render %s: %w", args.Template, err)
	}

	msg := mailer.Message{
		From:    r.from,
		To:      []string{args.To},
		ReplyTo: r.replyTo,
		Subject: subjects[args.Template](args.Data),
		HTML:    body.String(),
		Tags:    map[string]string{"template": string(args.Template)},
	}
	if args.Data.OrderID != "" {
		msg.Tags["order_id"] = args.Data.OrderID
	}

	return msg, nil
}
