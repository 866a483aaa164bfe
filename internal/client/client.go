// Package client is the Go SDK for the FileForge API. It mirrors the server
// contract, keeps the session cookie between calls and surfaces server
// errors as typed APIError values.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"fileforge/internal/model"
	"fileforge/internal/resilience"
)

// APIError is the server's error envelope plus the HTTP status it came with.
type APIError struct {
	Status    int
	Code      string
	Message   string
	RequestID string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (%d): %s", e.Code, e.Status, e.Message)
}

// IsNotFound reports whether err is an APIError with a 404 status.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// Client talks to one FileForge server.
type Client struct {
	baseURL  *url.URL
	http     *http.Client
	apiKey   string
	executor *resilience.Executor
}

// Option configures a Client.
type Option func(*Client)

// WithAPIKey authenticates every request with an API key instead of a session.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

// WithHTTPClient substitutes the underlying http.Client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithExecutor guards requests with retry and a circuit breaker.
func WithExecutor(e *resilience.Executor) Option {
	return func(c *Client) { c.executor = e }
}

// New creates a Client for the given base URL. The transport is traced via
// otelhttp and a cookie jar keeps the session across calls.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	c := &Client{
		baseURL: u,
		http: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Jar:       jar,
			Timeout:   5 * time.Minute,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := *c.baseURL
	u.Path = path
	u.RawQuery = query.Encode()
	return u.String()
}

// do runs req, decodes a 2xx JSON body into out (when out is non-nil) and
// turns anything else into an APIError.
func (c *Client) do(req *http.Request, out any) error {
	call := func(ctx context.Context) error {
		resp, err := c.http.Do(req.WithContext(ctx))
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			if out == nil || resp.StatusCode == http.StatusNoContent {
				return nil
			}
			if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
				return fmt.Errorf("decode response: %w", err)
			}
			return nil
		}

		apiErr := &APIError{Status: resp.StatusCode, Code: "INTERNAL_ERROR"}
		var envelope struct {
			RequestID string `json:"request_id"`
			Error     struct {
				Code    string `json:"code"`
				Message string `json:"message"`
			} `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&envelope); err == nil && envelope.Error.Code != "" {
			apiErr.Code = envelope.Error.Code
			apiErr.Message = envelope.Error.Message
			apiErr.RequestID = envelope.RequestID
		}
		return apiErr
	}

	if c.executor != nil && (req.Method == http.MethodGet || req.Body == nil) {
		return c.executor.Execute(req.Context(), "api."+req.Method, call, classifyAPIError)
	}
	return call(req.Context())
}

// classifyAPIError retries transport failures and 5xx; client errors are final.
func classifyAPIError(err error) resilience.Classification {
	if err == nil {
		return resilience.Classification{}
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.Status >= 500 {
			return resilience.Classification{Retryable: true, RecordFailure: true}
		}
		return resilience.Classification{}
	}
	return resilience.Classification{Retryable: true, RecordFailure: true}
}

func (c *Client) newJSONRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		r = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, nil), r)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	return req, nil
}

// --- auth ---

// Signup registers an account. The server emails a 6-digit code.
func (c *Client) Signup(ctx context.Context, email, name, password string) (*model.User, error) {
	req, err := c.newJSONRequest(ctx, http.MethodPost, "/api/v1/auth/signup", map[string]string{
		"email": email, "name": name, "password": password,
	})
	if err != nil {
		return nil, err
	}
	var user model.User
	if err := c.do(req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// VerifyEmail submits a 6-digit verification code.
func (c *Client) VerifyEmail(ctx context.Context, email, code string) (*model.User, error) {
	req, err := c.newJSONRequest(ctx, http.MethodPost, "/api/v1/auth/verify", map[string]string{
		"email": email, "code": code,
	})
	if err != nil {
		return nil, err
	}
	var user model.User
	if err := c.do(req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ResendCode requests a fresh verification code.
func (c *Client) ResendCode(ctx context.Context, email string) error {
	req, err := c.newJSONRequest(ctx, http.MethodPost, "/api/v1/auth/resend", map[string]string{"email": email})
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

// Login authenticates and stores the session cookie in the client's jar.
func (c *Client) Login(ctx context.Context, email, password string) (*model.User, error) {
	req, err := c.newJSONRequest(ctx, http.MethodPost, "/api/v1/auth/login", map[string]string{
		"email": email, "password": password,
	})
	if err != nil {
		return nil, err
	}
	var user model.User
	if err := c.do(req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Logout revokes the current session.
func (c *Client) Logout(ctx context.Context) error {
	req, err := c.newJSONRequest(ctx, http.MethodPost, "/api/v1/auth/logout", nil)
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

// Me returns the authenticated user.
func (c *Client) Me(ctx context.Context) (*model.User, error) {
	req, err := c.newJSONRequest(ctx, http.MethodGet, "/api/v1/auth/me", nil)
	if err != nil {
		return nil, err
	}
	var user model.User
	if err := c.do(req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// --- documents ---

// ListOptions narrow and paginate document listings.
type ListOptions struct {
	Limit    int
	Offset   int
	Status   string
	FileType string
}

// DocumentList is a page of documents.
type DocumentList struct {
	Items []model.Document `json:"data"`
	Total int              `json:"total"`
}

// ChunkList is the chunk listing payload.
type ChunkList struct {
	Items []model.Chunk `json:"data"`
	Total int           `json:"total"`
}

// LLMDocument is the LLM-ready export payload.
type LLMDocument struct {
	ID          string           `json:"id"`
	Filename    string           `json:"filename"`
	FileType    string           `json:"file_type"`
	TotalChunks int              `json:"total_chunks"`
	TotalTokens int              `json:"total_tokens"`
	Chunks      []model.LLMChunk `json:"chunks"`
	RawText     string           `json:"raw_text,omitempty"`
}

// Documents lists documents.
func (c *Client) Documents(ctx context.Context, opts ListOptions) (*DocumentList, error) {
	q := url.Values{}
	if opts.Limit > 0 {
		q.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Offset > 0 {
		q.Set("offset", strconv.Itoa(opts.Offset))
	}
	if opts.Status != "" {
		q.Set("status", opts.Status)
	}
	if opts.FileType != "" {
		q.Set("file_type", opts.FileType)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint("/api/v1/documents", q), nil)
	if err != nil {
		return nil, err
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	var list DocumentList
	if err := c.do(req, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// Document fetches one document by ID.
func (c *Client) Document(ctx context.Context, id string) (*model.Document, error) {
	req, err := c.newJSONRequest(ctx, http.MethodGet, "/api/v1/documents/"+id, nil)
	if err != nil {
		return nil, err
	}
	var doc model.Document
	if err := c.do(req, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Chunks fetches the chunks of a document in index order.
func (c *Client) Chunks(ctx context.Context, id string) (*ChunkList, error) {
	req, err := c.newJSONRequest(ctx, http.MethodGet, "/api/v1/documents/"+id+"/chunks", nil)
	if err != nil {
		return nil, err
	}
	var list ChunkList
	if err := c.do(req, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// LLMFormat fetches the LLM-ready projection of a document.
func (c *Client) LLMFormat(ctx context.Context, id string, includeRaw bool) (*LLMDocument, error) {
	q := url.Values{}
	if includeRaw {
		q.Set("raw", "true")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint("/api/v1/documents/"+id+"/llm", q), nil)
	if err != nil {
		return nil, err
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	var out LLMDocument
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteDocument removes a document, its chunks and the stored original.
func (c *Client) DeleteDocument(ctx context.Context, id string) error {
	req, err := c.newJSONRequest(ctx, http.MethodDelete, "/api/v1/documents/"+id, nil)
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

// Reprocess re-runs conversion for a document.
func (c *Client) Reprocess(ctx context.Context, id string) (*model.Document, error) {
	req, err := c.newJSONRequest(ctx, http.MethodPost, "/api/v1/documents/"+id+"/reprocess", nil)
	if err != nil {
		return nil, err
	}
	var doc model.Document
	if err := c.do(req, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// --- convert ---

// ConvertOptions configure an upload.
type ConvertOptions struct {
	ChunkStrategy string
	ChunkSize     int
	ChunkOverlap  int
	Async         bool

	// Progress, when set, receives the cumulative number of bytes read
	// from the file as the upload streams.
	Progress func(read int64)
}

// Convert uploads a file for conversion. filename decides the extractor on
// the server side; size must be the exact content length.
func (c *Client) Convert(ctx context.Context, filename string, content io.Reader, size int64, opts ConvertOptions) (*model.Document, error) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		var src io.Reader = content
		if opts.Progress != nil {
			src = NewCountingReader(content, opts.Progress)
		}
		fw, err := mw.CreateFormFile("file", filename)
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(fw, src); err != nil {
			pw.CloseWithError(err)
			return
		}
		writeField := func(name, value string) {
			if value != "" {
				_ = mw.WriteField(name, value)
			}
		}
		writeField("chunk_strategy", opts.ChunkStrategy)
		if opts.ChunkSize > 0 {
			writeField("chunk_size", strconv.Itoa(opts.ChunkSize))
		}
		if opts.ChunkOverlap > 0 {
			writeField("chunk_overlap", strconv.Itoa(opts.ChunkOverlap))
		}
		if opts.Async {
			writeField("mode", "async")
		}
		pw.CloseWithError(mw.Close())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("/api/v1/convert", nil), pr)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	var doc model.Document
	if err := c.do(req, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Formats lists the file extensions the server accepts.
func (c *Client) Formats(ctx context.Context) ([]string, error) {
	req, err := c.newJSONRequest(ctx, http.MethodGet, "/api/v1/formats", nil)
	if err != nil {
		return nil, err
	}
	var out struct {
		Extensions []string `json:"extensions"`
	}
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return out.Extensions, nil
}

// --- api keys ---

// CreatedKey pairs the stored key with the full secret, shown once.
type CreatedKey struct {
	Key     *model.APIKey `json:"api_key"`
	FullKey string        `json:"key"`
}

// KeyList is the API key listing payload.
type KeyList struct {
	Items []model.APIKey `json:"data"`
	Total int            `json:"total"`
}

// KeyUpdate carries optional API key changes; nil fields stay unchanged.
type KeyUpdate struct {
	Name         *string `json:"name,omitempty"`
	Status       *string `json:"status,omitempty"`
	RateLimitRPM *int    `json:"rate_limit_rpm,omitempty"`
	RateLimitRPD *int    `json:"rate_limit_rpd,omitempty"`
}

// CreateKey mints a new API key. The FullKey in the response is the only
// time the secret is available.
func (c *Client) CreateKey(ctx context.Context, name string, expiresAt *time.Time) (*CreatedKey, error) {
	req, err := c.newJSONRequest(ctx, http.MethodPost, "/api/v1/apikeys", map[string]any{
		"name": name, "expires_at": expiresAt,
	})
	if err != nil {
		return nil, err
	}
	var out CreatedKey
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Keys lists the caller's API keys.
func (c *Client) Keys(ctx context.Context) (*KeyList, error) {
	req, err := c.newJSONRequest(ctx, http.MethodGet, "/api/v1/apikeys", nil)
	if err != nil {
		return nil, err
	}
	var list KeyList
	if err := c.do(req, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// UpdateKey applies changes to an API key.
func (c *Client) UpdateKey(ctx context.Context, id string, upd KeyUpdate) (*model.APIKey, error) {
	req, err := c.newJSONRequest(ctx, http.MethodPatch, "/api/v1/apikeys/"+id, upd)
	if err != nil {
		return nil, err
	}
	var key model.APIKey
	if err := c.do(req, &key); err != nil {
		return nil, err
	}
	return &key, nil
}

// DeleteKey removes an API key.
func (c *Client) DeleteKey(ctx context.Context, id string) error {
	req, err := c.newJSONRequest(ctx, http.MethodDelete, "/api/v1/apikeys/"+id, nil)
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

// Health checks server readiness.
func (c *Client) Health(ctx context.Context) error {
	req, err := c.newJSONRequest(ctx, http.MethodGet, "/health", nil)
	if err != nil {
		return err
	}
	return c.do(req, nil)
}
