package intake

import (
	"rightfit/internal/notify"
	"rightfit/pkg/domain"
)

// emailData fills the template payload shared by every order email.
func (s *service) emailData(sub *domain.Submission) notify.Data {
	return notify.OrderData(sub, s.tokens.StatusURL(s.options.PublicURL, sub.ID, sub.Email))
}
