package middleware

import (
	"strings"

	"comply-rag/pkg/auth"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Locals keys set for authenticated requests.
const (
	LocalUserID         = "userID"
	LocalOrganizationID = "organizationID"
)

func unauthorized(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"code":  fiber.StatusUnauthorized,
		"error": msg,
	})
}

// bearerToken extracts the token from an "Authorization: Bearer <token>" header.
func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// AuthMiddleware admits requests carrying a valid token whose user and
// organization claims are UUIDs.
func AuthMiddleware(jwtManager *auth.JWTManager, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if header == "" {
			logger.Warn("Missing authorization token", zap.String("path", c.Path()))
			return unauthorized(c, "Authorization token required")
		}

		token, ok := bearerToken(header)
		if !ok {
			logger.Warn("Malformed authorization header", zap.String("path", c.Path()))
			return unauthorized(c, "Bearer token required")
		}

		claims, err := jwtManager.ValidateToken(token)
		if err != nil {
			logger.Warn("Invalid token", zap.Error(err))
			return unauthorized(c, "Invalid or expired token")
		}

		if _, err := uuid.Parse(claims.UserID); err != nil {
			logger.Warn("Token user is not a UUID", zap.String("user_id", claims.UserID))
			return unauthorized(c, "Invalid or expired token")
		}
		if _, err := uuid.Parse(claims.OrganizationID); err != nil {
			logger.Warn("Token organization is not a UUID", zap.String("organization_id", claims.OrganizationID))
			return unauthorized(c, "Invalid or expired token")
		}

		c.Locals(LocalUserID, claims.UserID)
		c.Locals(LocalOrganizationID, claims.OrganizationID)

		return c.Next()
	}
}
