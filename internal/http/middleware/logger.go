package middleware

import (
	"encoding/json"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Logger writes one JSON object per request to stdout with request_id,
// method, path, status and latency in milliseconds.
func Logger() fiber.Handler {
	enc := json.NewEncoder(os.Stdout)

	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		rid, _ := c.Locals(RequestIDLocalKey).(string)
		_ = enc.Encode(map[string]any{
			"request_id": rid,
			"method":     c.Method(),
			"path":       c.Path(),
			"status":     c.Response().StatusCode(),
			"latency":    float64(time.Since(start).Milliseconds()),
		})

		return err
	}
}
