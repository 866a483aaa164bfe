package handler

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"fileforge/internal/http/middleware"
	"fileforge/internal/model"
	"fileforge/internal/service"
)

type signupRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type verifyRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type resendRequest struct {
	Email string `json:"email"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func registerAuthRoutes(r fiber.Router, d Deps) {
	auth := r.Group("/auth")

	auth.Post("/signup", func(c *fiber.Ctx) error {
		var req signupRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		user, err := d.Auth.Signup(c.UserContext(), req.Email, req.Name, req.Password)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrEmailTaken):
				return writeError(c, fiber.StatusConflict, "EMAIL_TAKEN", err.Error())
			case errors.Is(err, service.ErrInvalidCredentials):
				return writeError(c, fiber.StatusBadRequest, "INVALID_INPUT", err.Error())
			default:
				return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
			}
		}
		return c.Status(fiber.StatusCreated).JSON(user)
	})

	auth.Post("/verify", func(c *fiber.Ctx) error {
		var req verifyRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		user, err := d.Auth.VerifyEmail(c.UserContext(), req.Email, req.Code)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrAlreadyVerified):
				return writeError(c, fiber.StatusConflict, "ALREADY_VERIFIED", err.Error())
			case errors.Is(err, service.ErrInvalidCode), errors.Is(err, service.ErrCodeExpired):
				return writeError(c, fiber.StatusBadRequest, "INVALID_CODE", err.Error())
			default:
				return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
			}
		}
		return c.JSON(user)
	})

	auth.Post("/resend", func(c *fiber.Ctx) error {
		var req resendRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		if err := d.Auth.ResendCode(c.UserContext(), req.Email); err != nil {
			if errors.Is(err, service.ErrAlreadyVerified) {
				return writeError(c, fiber.StatusConflict, "ALREADY_VERIFIED", err.Error())
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.SendStatus(fiber.StatusAccepted)
	})

	auth.Post("/login", func(c *fiber.Ctx) error {
		var req loginRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		user, token, err := d.Auth.Login(c.UserContext(), req.Email, req.Password, service.SessionMeta{
			IPAddress: c.IP(),
			UserAgent: c.Get(fiber.HeaderUserAgent),
		})
		if err != nil {
			switch {
			case errors.Is(err, service.ErrInvalidCredentials):
				return writeError(c, fiber.StatusUnauthorized, "INVALID_CREDENTIALS", err.Error())
			case errors.Is(err, service.ErrNotVerified):
				return writeError(c, fiber.StatusForbidden, "NOT_VERIFIED", err.Error())
			case errors.Is(err, service.ErrAccountDisabled):
				return writeError(c, fiber.StatusForbidden, "ACCOUNT_DISABLED", err.Error())
			default:
				return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
			}
		}
		c.Cookie(&fiber.Cookie{
			Name:     d.SessionCookieName,
			Value:    token,
			Expires:  time.Now().Add(model.SessionExpiry),
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
		})
		return c.JSON(user)
	})

	auth.Post("/logout", func(c *fiber.Ctx) error {
		token := c.Cookies(d.SessionCookieName)
		if err := d.Auth.Logout(c.UserContext(), token); err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		c.Cookie(&fiber.Cookie{
			Name:     d.SessionCookieName,
			Value:    "",
			Expires:  time.Now().Add(-time.Hour),
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
		})
		return c.SendStatus(fiber.StatusNoContent)
	})

	auth.Get("/me", middleware.Auth(d.Auth, d.APIKeys, d.SessionCookieName), func(c *fiber.Ctx) error {
		if u := middleware.SessionUser(c); u != nil {
			return c.JSON(u)
		}
		// API key callers get the owning user's ID only.
		return c.JSON(fiber.Map{"user_id": middleware.UserID(c)})
	})
}
