package ginserver

import (
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"

	"stayflow/internal/app/fault"
	domainuser "stayflow/internal/domain/user"
	"stayflow/internal/infra/security"
)

const principalContextKey = "stayflow.principal"

type principal struct {
	Subject string
	Role    string
	Token   string
}

func (p principal) HasRole(role string) bool {
	return strings.EqualFold(p.Role, role)
}

// AuthMiddleware verifies bearer tokens and attaches the principal. A missing
// or bad token is not an error here; protected routes enforce presence via
// requireAuth/requireRole.
type AuthMiddleware struct {
	Tokens *security.TokenProvider
}

func (m AuthMiddleware) Handle(c *gin.Context) {
	token := extractBearerToken(c.GetHeader("Authorization"))
	if token == "" || m.Tokens == nil {
		c.Next()
		return
	}
	claims, err := m.Tokens.Verify(token)
	if err != nil {
		c.Next()
		return
	}
	setPrincipal(c, principal{Subject: claims.Subject, Role: claims.Role, Token: token})
	c.Next()
}

func setPrincipal(c *gin.Context, p principal) {
	c.Set(principalContextKey, p)
}

func currentPrincipal(c *gin.Context) (principal, bool) {
	val, exists := c.Get(principalContextKey)
	if !exists {
		return principal{}, false
	}
	p, ok := val.(principal)
	return p, ok
}

func requireAuth(c *gin.Context) (principal, bool) {
	p, ok := currentPrincipal(c)
	if !ok {
		f := fault.New("AUTH_REQUIRED", http.StatusUnauthorized, "Authentication required")
		c.JSON(f.Status, newEnvelope(c, f))
		return principal{}, false
	}
	return p, true
}

func requireRole(c *gin.Context, role string) (principal, bool) {
	p, ok := requireAuth(c)
	if !ok {
		return principal{}, false
	}
	if role != "" && !p.HasRole(role) {
		f := fault.Forbidden()
		c.JSON(f.Status, newEnvelope(c, f))
		return principal{}, false
	}
	return p, true
}

func requireAdmin(c *gin.Context) (principal, bool) {
	return requireRole(c, string(domainuser.RoleAdmin))
}

func extractBearerToken(header string) string {
	if header == "" {
		return ""
	}
	if !strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}
