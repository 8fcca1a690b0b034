package handlers

import (
	"comply-rag/pkg/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func localUUID(c *fiber.Ctx, key string) (uuid.UUID, error) {
	s, ok := c.Locals(key).(string)
	if !ok {
		return uuid.Nil, fiber.ErrUnauthorized
	}
	return uuid.Parse(s)
}

func getUserID(c *fiber.Ctx) (uuid.UUID, error) {
	return localUUID(c, middleware.LocalUserID)
}

func getOrganizationID(c *fiber.Ctx) (uuid.UUID, error) {
	return localUUID(c, middleware.LocalOrganizationID)
}
