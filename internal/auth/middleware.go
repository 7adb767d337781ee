package auth

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/lcs-staffing/admin-console/pkg/util"
)

const sessionKey = "auth_session"

// Middleware runs the gate for protected routes.
type Middleware struct {
	gate *Gate
}

// NewMiddleware constructs middleware.
func NewMiddleware(gate *Gate) *Middleware {
	return &Middleware{gate: gate}
}

// Handle rejects requests that do not pass the gate and stores the session otherwise.
func (m *Middleware) Handle(c *fiber.Ctx) error {
	res := m.gate.Check(c.UserContext(), BearerToken(c))
	if res.Decision != DecisionAuthorized {
		return apperrors.NewDomainError(apperrors.CodeUnauth, res.Reason, http.StatusUnauthorized,
			map[string]any{"decision": string(res.Decision)})
	}
	c.Locals(sessionKey, res.Session)
	return c.Next()
}

// BearerToken extracts the token from the Authorization header, or "".
func BearerToken(c *fiber.Ctx) string {
	parts := strings.SplitN(c.Get(fiber.HeaderAuthorization), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// SessionFromContext retrieves the authorized session.
func SessionFromContext(c *fiber.Ctx) (*Session, bool) {
	val := c.Locals(sessionKey)
	if val == nil {
		return nil, false
	}
	session, ok := val.(*Session)
	return session, ok
}
