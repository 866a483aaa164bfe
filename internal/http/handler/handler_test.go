package handler

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"fileforge/internal/model"
	"fileforge/internal/service"
	svcMocks "fileforge/internal/service/mocks"
)

const testCookie = "ff_session"

type testMocks struct {
	auth    *svcMocks.MockAuthService
	keys    *svcMocks.MockAPIKeyService
	docs    *svcMocks.MockDocumentService
	convert *svcMocks.MockConvertService
}

func newTestApp(t *testing.T) (*fiber.App, testMocks) {
	t.Helper()
	db, _, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	m := testMocks{
		auth:    new(svcMocks.MockAuthService),
		keys:    new(svcMocks.MockAPIKeyService),
		docs:    new(svcMocks.MockDocumentService),
		convert: new(svcMocks.MockConvertService),
	}
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler()})
	RegisterRoutes(app, Deps{
		DB:                db,
		Auth:              m.auth,
		APIKeys:           m.keys,
		Documents:         m.docs,
		Convert:           m.convert,
		SessionCookieName: testCookie,
	})
	return app, m
}

var stdCookie = http.Cookie{Name: testCookie, Value: "tok"}

// sessionUser wires the auth mock so requests carrying the test cookie
// authenticate as the given user.
func sessionUser(m testMocks, user *model.User) {
	m.auth.On("Authenticate", mock.Anything, "tok").Return(user, nil)
}

func TestHealthz(t *testing.T) {
	app, _ := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/healthz", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestDocuments_Unauthorized(t *testing.T) {
	app, m := newTestApp(t)
	m.auth.On("Authenticate", mock.Anything, mock.Anything).Return(nil, service.ErrSessionInvalid).Maybe()

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/documents", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "UNAUTHORIZED", body.Error.Code)
}

func TestDocuments_List(t *testing.T) {
	app, m := newTestApp(t)
	sessionUser(m, &model.User{ID: "u1"})
	m.docs.On("List", mock.Anything, 5, 0, mock.Anything).Return(&service.DocumentListResult{
		Items: []model.Document{{ID: "d1"}},
		Total: 1,
	}, nil)

	req := httptest.NewRequest("GET", "/api/v1/documents?limit=5", nil)
	req.AddCookie(&stdCookie)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body service.DocumentListResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, 1, body.Total)
	m.docs.AssertExpectations(t)
}

func TestDocuments_Get_InvalidID(t *testing.T) {
	app, m := newTestApp(t)
	sessionUser(m, &model.User{ID: "u1"})

	req := httptest.NewRequest("GET", "/api/v1/documents/not-a-uuid", nil)
	req.AddCookie(&stdCookie)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestDocuments_Get_NotFound(t *testing.T) {
	app, m := newTestApp(t)
	sessionUser(m, &model.User{ID: "u1"})
	id := "0b2e54a2-73a9-4bcf-9769-89a95df65b58"
	m.docs.On("Get", mock.Anything, id).Return(nil, service.ErrNotFound)

	req := httptest.NewRequest("GET", "/api/v1/documents/"+id, nil)
	req.AddCookie(&stdCookie)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestConvert_UnsupportedFormat(t *testing.T) {
	app, m := newTestApp(t)
	sessionUser(m, &model.User{ID: "u1"})
	m.convert.On("Upload", mock.Anything, mock.Anything, "evil.exe", mock.Anything, mock.Anything, "u1", mock.Anything).
		Return(nil, service.ErrUnsupportedFormat)

	req := multipartUpload(t, "/api/v1/convert", "evil.exe", []byte("MZ"), nil)
	req.AddCookie(&stdCookie)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnsupportedMediaType, resp.StatusCode)
}

func TestConvert_SyncHappyPath(t *testing.T) {
	app, m := newTestApp(t)
	sessionUser(m, &model.User{ID: "u1"})

	m.convert.On("Upload", mock.Anything, mock.Anything, "note.txt", mock.Anything, mock.Anything, "u1",
		service.ConvertParams{ChunkStrategy: "fixed", ChunkSize: 500}).
		Return(&model.Document{ID: "d1", Status: model.StatusPending}, nil)
	m.convert.On("Process", mock.Anything, "d1").
		Return(&model.Document{ID: "d1", Status: model.StatusCompleted, TotalChunks: 2}, nil)

	req := multipartUpload(t, "/api/v1/convert", "note.txt", []byte("hello"), map[string]string{
		"chunk_strategy": "fixed",
		"chunk_size":     "500",
	})
	req.AddCookie(&stdCookie)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var doc model.Document
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&doc))
	assert.Equal(t, model.StatusCompleted, doc.Status)
	m.convert.AssertExpectations(t)
}

func TestAPIKeys_SessionOnly(t *testing.T) {
	app, m := newTestApp(t)
	// API key auth succeeds but key management must still be refused.
	m.keys.On("Authenticate", mock.Anything, "ff_live_abc").
		Return(&model.APIKey{ID: "k1", UserID: "u1", Status: model.APIKeyActive, RateLimitRPM: 60}, nil)

	req := httptest.NewRequest("GET", "/api/v1/apikeys", nil)
	req.Header.Set("Authorization", "Bearer ff_live_abc")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestAPIKeys_CreateReturnsFullKeyOnce(t *testing.T) {
	app, m := newTestApp(t)
	sessionUser(m, &model.User{ID: "u1"})
	m.keys.On("Create", mock.Anything, "u1", "ci", mock.Anything).Return(&service.CreatedAPIKey{
		Key:     &model.APIKey{ID: "k1", KeyPrefix: "ff_live_abcd"},
		FullKey: "ff_live_abcdef",
	}, nil)

	body, _ := json.Marshal(map[string]string{"name": "ci"})
	req := httptest.NewRequest("POST", "/api/v1/apikeys", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(&stdCookie)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var out struct {
		Key string `json:"key"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "ff_live_abcdef", out.Key)
}

func TestAuth_SignupLoginFlow(t *testing.T) {
	app, m := newTestApp(t)

	m.auth.On("Signup", mock.Anything, "a@example.com", "Ada", "password123").
		Return(&model.User{ID: "u1", Email: "a@example.com"}, nil)
	m.auth.On("Login", mock.Anything, "a@example.com", "password123", mock.Anything).
		Return(&model.User{ID: "u1", Email: "a@example.com", Verified: true}, "tok", nil)

	body, _ := json.Marshal(map[string]string{"email": "a@example.com", "name": "Ada", "password": "password123"})
	req := httptest.NewRequest("POST", "/api/v1/auth/signup", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	body, _ = json.Marshal(map[string]string{"email": "a@example.com", "password": "password123"})
	req = httptest.NewRequest("POST", "/api/v1/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var sessionSet bool
	for _, c := range resp.Cookies() {
		if c.Name == testCookie && c.Value == "tok" {
			sessionSet = true
			assert.True(t, c.HttpOnly)
		}
	}
	assert.True(t, sessionSet, "login should set the session cookie")
}

func TestAuth_LoginRejectsUnverified(t *testing.T) {
	app, m := newTestApp(t)
	m.auth.On("Login", mock.Anything, "a@example.com", "password123", mock.Anything).
		Return(nil, "", service.ErrNotVerified)

	body, _ := json.Marshal(map[string]string{"email": "a@example.com", "password": "password123"})
	req := httptest.NewRequest("POST", "/api/v1/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func multipartUpload(t *testing.T, target, filename string, content []byte, fields map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", target, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}
