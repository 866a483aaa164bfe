package handler

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"fileforge/internal/http/middleware"
	"fileforge/internal/model"
	"fileforge/internal/repository"
	"fileforge/internal/service"
)

type createKeyRequest struct {
	Name      string     `json:"name"`
	ExpiresAt *time.Time `json:"expires_at"`
}

type updateKeyRequest struct {
	Name         *string `json:"name"`
	Status       *string `json:"status"`
	RateLimitRPM *int    `json:"rate_limit_rpm"`
	RateLimitRPD *int    `json:"rate_limit_rpd"`
}

// registerAPIKeyRoutes attaches key management endpoints. r must already be
// guarded by the session-only middleware.
func registerAPIKeyRoutes(r fiber.Router, d Deps) {
	r.Post("", func(c *fiber.Ctx) error {
		var req createKeyRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		created, err := d.APIKeys.Create(c.UserContext(), middleware.UserID(c), req.Name, req.ExpiresAt)
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		// The full key is returned once; only its hash survives.
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"api_key": created.Key,
			"key":     created.FullKey,
		})
	})

	r.Get("", func(c *fiber.Ctx) error {
		keys, err := d.APIKeys.List(c.UserContext(), middleware.UserID(c))
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(fiber.Map{"data": keys, "total": len(keys)})
	})

	r.Get("/:id", func(c *fiber.Ctx) error {
		id, ok := keyID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		key, err := d.APIKeys.Get(c.UserContext(), middleware.UserID(c), id)
		if err != nil {
			return keyError(c, err)
		}
		return c.JSON(key)
	})

	r.Patch("/:id", func(c *fiber.Ctx) error {
		id, ok := keyID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		var req updateKeyRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		upd := repository.APIKeyUpdate{
			Name:         req.Name,
			RateLimitRPM: req.RateLimitRPM,
			RateLimitRPD: req.RateLimitRPD,
		}
		if req.Status != nil {
			status := model.APIKeyStatus(*req.Status)
			switch status {
			case model.APIKeyActive, model.APIKeyRevoked:
				upd.Status = &status
			default:
				return writeError(c, fiber.StatusBadRequest, "INVALID_STATUS", "status must be active or revoked")
			}
		}
		key, err := d.APIKeys.Update(c.UserContext(), middleware.UserID(c), id, upd)
		if err != nil {
			return keyError(c, err)
		}
		return c.JSON(key)
	})

	r.Delete("/:id", func(c *fiber.Ctx) error {
		id, ok := keyID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		if err := d.APIKeys.Delete(c.UserContext(), middleware.UserID(c), id); err != nil {
			return keyError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}

func keyID(c *fiber.Ctx) (string, bool) {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return "", false
	}
	return id, true
}

func keyError(c *fiber.Ctx, err error) error {
	if errors.Is(err, service.ErrKeyNotFound) {
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "api key not found")
	}
	return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
}
