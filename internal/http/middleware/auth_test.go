package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"fileforge/internal/model"
	"fileforge/internal/service"
	"fileforge/internal/service/mocks"
)

const testCookieName = "ff_session"

func newAuthApp(authSvc *mocks.MockAuthService, keySvc *mocks.MockAPIKeyService) *fiber.App {
	app := fiber.New()
	app.Get("/protected", Auth(authSvc, keySvc, testCookieName), func(c *fiber.Ctx) error {
		return c.SendString(UserID(c))
	})
	app.Get("/session-only", Auth(authSvc, keySvc, testCookieName), SessionOnly(), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	return app
}

func TestAuth_APIKey(t *testing.T) {
	key := &model.APIKey{ID: "k1", UserID: "u1", Status: model.APIKeyActive}

	t.Run("bearer header", func(t *testing.T) {
		authSvc := new(mocks.MockAuthService)
		keySvc := new(mocks.MockAPIKeyService)
		keySvc.On("Authenticate", mock.Anything, "ff_live_secret").Return(key, nil)

		app := newAuthApp(authSvc, keySvc)
		req := httptest.NewRequest("GET", "/protected", nil)
		req.Header.Set("Authorization", "Bearer ff_live_secret")

		resp, err := app.Test(req)

		assert.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		keySvc.AssertExpectations(t)
		authSvc.AssertNotCalled(t, "Authenticate", mock.Anything, mock.Anything)
	})

	t.Run("x-api-key header", func(t *testing.T) {
		authSvc := new(mocks.MockAuthService)
		keySvc := new(mocks.MockAPIKeyService)
		keySvc.On("Authenticate", mock.Anything, "ff_live_secret").Return(key, nil)

		app := newAuthApp(authSvc, keySvc)
		req := httptest.NewRequest("GET", "/protected", nil)
		req.Header.Set(APIKeyHeader, "ff_live_secret")

		resp, err := app.Test(req)

		assert.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("rejected key", func(t *testing.T) {
		authSvc := new(mocks.MockAuthService)
		keySvc := new(mocks.MockAPIKeyService)
		keySvc.On("Authenticate", mock.Anything, "ff_live_bad").Return(nil, service.ErrKeyInvalid)

		app := newAuthApp(authSvc, keySvc)
		req := httptest.NewRequest("GET", "/protected", nil)
		req.Header.Set(APIKeyHeader, "ff_live_bad")

		resp, err := app.Test(req)

		assert.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("bearer without key prefix falls through to cookie", func(t *testing.T) {
		authSvc := new(mocks.MockAuthService)
		keySvc := new(mocks.MockAPIKeyService)

		app := newAuthApp(authSvc, keySvc)
		req := httptest.NewRequest("GET", "/protected", nil)
		req.Header.Set("Authorization", "Bearer some-jwt-token")

		resp, err := app.Test(req)

		assert.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
		keySvc.AssertNotCalled(t, "Authenticate", mock.Anything, mock.Anything)
	})
}

func TestAuth_Session(t *testing.T) {
	user := &model.User{ID: "u1", Email: "a@b.c", Verified: true, Active: true}

	t.Run("valid cookie", func(t *testing.T) {
		authSvc := new(mocks.MockAuthService)
		keySvc := new(mocks.MockAPIKeyService)
		authSvc.On("Authenticate", mock.Anything, "tok").Return(user, nil)

		app := newAuthApp(authSvc, keySvc)
		req := httptest.NewRequest("GET", "/protected", nil)
		req.AddCookie(&http.Cookie{Name: testCookieName, Value: "tok"})

		resp, err := app.Test(req)

		assert.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("expired session", func(t *testing.T) {
		authSvc := new(mocks.MockAuthService)
		keySvc := new(mocks.MockAPIKeyService)
		authSvc.On("Authenticate", mock.Anything, "old").Return(nil, service.ErrSessionInvalid)

		app := newAuthApp(authSvc, keySvc)
		req := httptest.NewRequest("GET", "/protected", nil)
		req.AddCookie(&http.Cookie{Name: testCookieName, Value: "old"})

		resp, err := app.Test(req)

		assert.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("no credentials at all", func(t *testing.T) {
		app := newAuthApp(new(mocks.MockAuthService), new(mocks.MockAPIKeyService))

		resp, err := app.Test(httptest.NewRequest("GET", "/protected", nil))

		assert.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})
}

func TestSessionOnly(t *testing.T) {
	t.Run("session passes", func(t *testing.T) {
		authSvc := new(mocks.MockAuthService)
		keySvc := new(mocks.MockAPIKeyService)
		authSvc.On("Authenticate", mock.Anything, "tok").
			Return(&model.User{ID: "u1"}, nil)

		app := newAuthApp(authSvc, keySvc)
		req := httptest.NewRequest("GET", "/session-only", nil)
		req.AddCookie(&http.Cookie{Name: testCookieName, Value: "tok"})

		resp, err := app.Test(req)

		assert.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("api key is forbidden", func(t *testing.T) {
		authSvc := new(mocks.MockAuthService)
		keySvc := new(mocks.MockAPIKeyService)
		keySvc.On("Authenticate", mock.Anything, "ff_live_secret").
			Return(&model.APIKey{ID: "k1", UserID: "u1"}, nil)

		app := newAuthApp(authSvc, keySvc)
		req := httptest.NewRequest("GET", "/session-only", nil)
		req.Header.Set(APIKeyHeader, "ff_live_secret")

		resp, err := app.Test(req)

		assert.NoError(t, err)
		assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	})
}
