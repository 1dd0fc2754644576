package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/VanillaLatte1/project-ant/internal/logger"
	"github.com/VanillaLatte1/project-ant/internal/token"
	"github.com/VanillaLatte1/project-ant/internal/user"
)

const (
	bearerPrefix = "Bearer "

	// RoleUser is the single fixed role every authenticated request
	// carries. There is no authorization model beyond it.
	RoleUser = "ROLE_USER"
)

// unexported, collision-proof context key
type principalContextKeyType struct{}

var principalKey = principalContextKeyType{}

// Principal is the request-scoped authenticated identity, established
// once by Authenticate and never mutated afterwards.
type Principal struct {
	User *user.User
	Role string
}

// Email returns the principal's email or "" when absent.
func (p *Principal) Email() string {
	if p.User.Email.Valid {
		return p.User.Email.String
	}
	return ""
}

// PrincipalFromContext extracts the authenticated identity, if any.
func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey).(*Principal)
	return p, ok
}

// Authenticate resolves a bearer access token into a request-scoped
// Principal. It never aborts: every failure leaves the request
// unauthenticated and lets route-level policy decide (fail-closed).
func Authenticate(codec *token.Codec, store user.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := extractBearer(c.Request)
		if raw == "" {
			c.Next()
			return
		}

		subject, err := codec.Verify(raw)
		if err != nil {
			// Expired, malformed and bad-signature all deny the
			// same way; only the log line differs.
			logger.Warn("access token rejected", map[string]any{
				"error": err.Error(),
			})
			c.Next()
			return
		}

		provider, providerID, ok := token.SplitUserKey(subject)
		if !ok {
			logger.Warn("malformed access token subject", map[string]any{
				"subject": subject,
			})
			c.Next()
			return
		}

		u, err := store.FindByProviderAndID(c.Request.Context(), provider, providerID)
		if err != nil {
			// Valid token for an identity that no longer exists,
			// or a store fault. Either way: unauthenticated.
			logger.Warn("access token user not resolved", map[string]any{
				"provider":    provider,
				"provider_id": providerID,
				"error":       err.Error(),
			})
			c.Next()
			return
		}

		ctx := context.WithValue(c.Request.Context(), principalKey, &Principal{
			User: u,
			Role: RoleUser,
		})
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// RequireAuth rejects requests that carry no authenticated identity.
// Failures are a bare 401: nothing about which check failed leaks.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := PrincipalFromContext(c.Request.Context()); !ok {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		c.Next()
	}
}

func extractBearer(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, bearerPrefix) {
		return ""
	}
	return header[len(bearerPrefix):]
}
