package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// GetUserID reads the authenticated user id placed in locals by the auth
// middleware. Unauthenticated requests never reach here.
func GetUserID(c *fiber.Ctx) int64 {
	raw, _ := c.Locals("user_id").(string)
	id, _ := strconv.ParseInt(raw, 10, 64)
	return id
}
