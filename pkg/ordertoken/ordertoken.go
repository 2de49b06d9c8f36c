// Package ordertoken issues and verifies the bearer tokens that give customers
// access to their order status page without an account.
//
// A token is hex(sha256(orderID + ":" + email + ":" + secret)) where email is
// trimmed and lower-cased. Tokens never expire; rotating the secret
// invalidates every link that was sent out.
package ordertoken

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"net/url"
	"rightfit/pkg/domain"
)

// ErrEmptySecret is returned by New when no secret is configured.
var ErrEmptySecret = errors.New("order token secret is empty")

// Signer issues and verifies order tokens with a fixed secret.
type Signer struct {
	secret string
}

// New returns a Signer for the given secret.
func New(secret string) (*Signer, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}

	return &Signer{secret: secret}, nil
}

// Token returns the token for the given order and email.
func (s *Signer) Token(id domain.SubmissionID, email string) string {
	sum := sha256.Sum256([]byte(id.String() + ":" + domain.NormalizeEmail(email) + ":" + s.secret))

	return hex.EncodeToString(sum[:])
}

// Verify reports whether token matches the order and email. The comparison is
// constant-time.
func (s *Signer) Verify(id domain.SubmissionID, email, token string) bool {
	expected := s.Token(id, email)

	return subtle.ConstantTimeCompare([]byte(expected), []byte(token)) == 1
}

// StatusURL builds the customer-facing order status link under baseURL.
func (s *Signer) StatusURL(baseURL string, id domain.SubmissionID, email string) string {
	q := url.Values{}
	q.Set("orderId", id.String())
	q.Set("email", domain.NormalizeEmail(email))
	q.Set("token", s.Token(id, email))

	return baseURL + "/order-status?" + q.Encode()
}
