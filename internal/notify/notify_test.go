package notify_test

import (
	"rightfit/internal/notify"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func newRenderer(t *testing.T) *notify.Renderer {
	t.Helper()
	r, err := notify.NewRenderer("RightFit <orders@example.com>", "help@example.com")
	require.NoError(t, err)

	return r
}

func TestRenderer_AllTemplates(t *testing.T) {
	r := newRenderer(t)
	data := notify.Data{
		Name:          "Ada <script>",
		OrderID:       "3f2a9c1e-0000-4000-8000-000000000000",
		Package:       "professional",
		AddOns:        []string{"cover_letter", "rush"},
		TargetRole:    "Data Engineer",
		AmountCents:   15300,
		Currency:      "usd",
		Status:        "in_progress",
		PaymentStatus: "paid",
		StatusURL:     "https://rightfitcv.com/order-status?orderId=x&token=y",
		CustomerEmail: "ada@example.com",
	}

	for _, tpl := range []notify.Template{
		notify.TemplateOrderConfirmation,
		notify.TemplatePaymentReceipt,
		notify.TemplateOrderLink,
		notify.TemplateDelivery,
		notify.TemplateRefund,
		notify.TemplateStatusUpdate,
		notify.TemplateAdminNewOrder,
	} {
		t.Run(string(tpl), func(t *testing.T) {
			msg, err := r.Render(notify.JobArgs{Template: tpl, To: "ada@example.com", Data: data})
			require.NoError(t, err)
			require.NoError(t, msg.Validate())
			require.Equal(t, []string{"ada@example.com"}, msg.To)
			require.Equal(t, "help@example.com", msg.ReplyTo)
			require.Equal(t, string(tpl), msg.Tags["template"])
			require.NotEmpty(t, msg.Subject)
			require.Contains(t, msg.HTML, "RightFit CV")
			require.NotContains(t, msg.HTML, "<script>", "names are escaped")
		})
	}
}

func TestRenderer_Content(t *testing.T) {
	r := newRenderer(t)

	msg, err := r.Render(notify.JobArgs{
		Template: notify.TemplateOrderConfirmation,
		To:       "ada@example.com",
		Data: notify.Data{
			Name:        "Ada",
			OrderID:     "3f2a9c1e-0000-4000-8000-000000000000",
			Package:     "executive",
			AddOns:      []string{"linkedin"},
			AmountCents: 21800,
			StatusURL:   "https://rightfitcv.com/order-status?orderId=1&token=2",
		},
	})
	require.NoError(t, err)
	require.Equal(t, "We received your order #3F2A9C1E", msg.Subject)
	require.Contains(t, msg.HTML, "$218.00")
	require.Contains(t, msg.HTML, "linkedin")
	require.Contains(t, msg.HTML, `href="https://rightfitcv.com/order-status?orderId=1&amp;token=2"`)
	require.Equal(t, "3f2a9c1e-0000-4000-8000-000000000000", msg.Tags["order_id"])

	msg, err = r.Render(notify.JobArgs{
		Template: notify.TemplateStatusUpdate,
		To:       "ada@example.com",
		Data:     notify.Data{Name: "Ada", Status: "review"},
	})
	require.NoError(t, err)
	require.Equal(t, "Order update: in final review", msg.Subject)
	require.True(t, strings.Contains(msg.HTML, "in final review"))
}

func TestRenderer_UnknownTemplate(t *testing.T) {
	_, err := newRenderer(t).Render(notify.JobArgs{Template: "nope", To: "a@b.co"})
	require.ErrorIs(t, err, notify.ErrUnknownTemplate)
}

func TestData_Amount(t *testing.T) {
	require.Equal(t, "$49.00", notify.Data{AmountCents: 4900}.Amount())
	require.Equal(t, "12.05 EUR", notify.Data{AmountCents: 1205, Currency: "eur"}.Amount())
}

func TestJobArgs_InsertOpts(t *testing.T) {
	require.Equal(t, "SendEmailJob", notify.JobArgs{}.Kind())
	require.False(t, notify.JobArgs{}.InsertOpts().UniqueOpts.ByArgs)

	opts := notify.JobArgs{Key: "receipt:pi_1"}.InsertOpts()
	require.True(t, opts.UniqueOpts.ByArgs)
	require.Equal(t, 8, opts.MaxAttempts)
}
