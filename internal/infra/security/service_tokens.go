package security

import "time"

// ServiceTokens mints the short-lived elevated tokens the booking service
// presents on internal inventory calls. Both services trust the same secret,
// so the inventory side verifies them with its regular token middleware.
type ServiceTokens struct {
	Provider *TokenProvider
	Subject  string
	Role     string
}

func (s ServiceTokens) ServiceToken(ttl time.Duration) (string, error) {
	subject := s.Subject
	if subject == "" {
		subject = "booking-service"
	}
	role := s.Role
	if role == "" {
		role = "ADMIN"
	}
	return s.Provider.Issue(subject, role, ttl)
}
