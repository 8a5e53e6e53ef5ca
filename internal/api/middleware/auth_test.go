package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classmark/classmark/internal/domain"
)

func newAuthApp(apiKey string) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if appErr, ok := err.(*domain.AppError); ok {
				return c.Status(appErr.StatusCode).JSON(appErr)
			}
			return c.SendStatus(fiber.StatusInternalServerError)
		},
	})
	app.Use(Auth(apiKey))
	app.Get("/ping", func(c *fiber.Ctx) error {
		return c.SendString("pong")
	})
	return app
}

func TestAuth(t *testing.T) {
	tests := []struct {
		name       string
		configured string
		presented  string
		wantStatus int
	}{
		{"disabled check lets everything through", "", "", 200},
		{"valid key accepted", "cm_secret", "cm_secret", 200},
		{"missing key rejected", "cm_secret", "", 401},
		{"wrong key rejected", "cm_secret", "cm_wrong", 401},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newAuthApp(tt.configured)

			req := httptest.NewRequest("GET", "/ping", nil)
			if tt.presented != "" {
				req.Header.Set(HeaderAPIKey, tt.presented)
			}

			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
		})
	}
}
