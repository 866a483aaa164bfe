package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"fileforge/internal/model"
	"fileforge/internal/service"
)

const (
	// UserLocalKey holds the authenticated *model.User for session requests.
	UserLocalKey = "auth_user"
	// UserIDLocalKey holds the authenticated user's ID for both auth modes.
	UserIDLocalKey = "auth_user_id"
	// APIKeyLocalKey holds the *model.APIKey when the request used one.
	APIKeyLocalKey = "auth_api_key"

	// APIKeyHeader is the alternative header for passing an API key.
	APIKeyHeader = "X-API-Key"
)

// Auth authenticates a request either by API key (Authorization: Bearer or
// X-API-Key header) or by session cookie. Requests without valid credentials
// are rejected with 401.
func Auth(authSvc service.AuthService, keySvc service.APIKeyService, cookieName string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if raw := apiKeyFromRequest(c); raw != "" {
			key, err := keySvc.Authenticate(c.UserContext(), raw)
			if err != nil {
				return fiber.NewError(fiber.StatusUnauthorized, "invalid api key")
			}
			c.Locals(APIKeyLocalKey, key)
			c.Locals(UserIDLocalKey, key.UserID)
			return c.Next()
		}

		token := c.Cookies(cookieName)
		if token == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
		}
		user, err := authSvc.Authenticate(c.UserContext(), token)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "session expired or invalid")
		}
		c.Locals(UserLocalKey, user)
		c.Locals(UserIDLocalKey, user.ID)
		return c.Next()
	}
}

// SessionOnly restricts a route to cookie-based sessions. API key management
// in particular must not be driven by another API key.
func SessionOnly() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Locals(UserLocalKey) == nil {
			return fiber.NewError(fiber.StatusForbidden, "this endpoint requires a browser session")
		}
		return c.Next()
	}
}

func apiKeyFromRequest(c *fiber.Ctx) string {
	if h := c.Get(fiber.HeaderAuthorization); h != "" {
		parts := strings.SplitN(h, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") && strings.HasPrefix(parts[1], "ff_live_") {
			return parts[1]
		}
	}
	return c.Get(APIKeyHeader)
}

// UserID returns the authenticated user's ID stored by Auth.
func UserID(c *fiber.Ctx) string {
	if v, ok := c.Locals(UserIDLocalKey).(string); ok {
		return v
	}
	return ""
}

// SessionUser returns the session user, or nil for API key requests.
func SessionUser(c *fiber.Ctx) *model.User {
	if u, ok := c.Locals(UserLocalKey).(*model.User); ok {
		return u
	}
	return nil
}

// RequestAPIKey returns the API key used for the request, or nil.
func RequestAPIKey(c *fiber.Ctx) *model.APIKey {
	if k, ok := c.Locals(APIKeyLocalKey).(*model.APIKey); ok {
		return k
	}
	return nil
}
