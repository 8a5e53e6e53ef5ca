package middleware

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"

	"github.com/classmark/classmark/internal/domain"
)

// HeaderAPIKey carries the shared secret on agent requests.
const HeaderAPIKey = "X-API-Key"

// Auth is a shared-secret API key check. An empty configured key
// disables the check entirely (development mode). This is a stub, not
// an identity system; agents all present the same key.
func Auth(apiKey string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if apiKey == "" {
			return c.Next()
		}

		presented := c.Get(HeaderAPIKey)
		if presented == "" {
			return domain.ErrUnauthorized
		}

		if subtle.ConstantTimeCompare([]byte(presented), []byte(apiKey)) != 1 {
			return domain.ErrUnauthorized
		}

		return c.Next()
	}
}
