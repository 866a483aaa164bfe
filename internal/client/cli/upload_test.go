package cli

import (
	"bufio"
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fileforge/internal/client"
	"fileforge/internal/client/config"
	"fileforge/internal/client/preview"
	"fileforge/internal/extract"
	"fileforge/internal/model"
)

func newTestApp(t *testing.T, serverURL string) (*App, *bytes.Buffer) {
	t.Helper()
	api, err := client.New(serverURL)
	require.NoError(t, err)

	cfg := &config.Config{Path: filepath.Join(t.TempDir(), "cfg.json")}
	cfg.LoadDefaults()
	cfg.ServerURL = serverURL

	out := &bytes.Buffer{}
	return &App{
		config:  cfg,
		store:   client.NewStore(api),
		preview: preview.NewDispatcher(),
		pending: client.NewPendingStore(),
		formats: extract.NewRegistry(),
		reader:  bufio.NewReader(strings.NewReader("")),
		out:     out,
	}, out
}

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestPick_RejectsUnsupportedType(t *testing.T) {
	app, out := newTestApp(t, "http://unused:0")
	path := writeTempFile(t, "payload.exe", "MZ")

	err := app.Pick([]string{path})

	require.Error(t, err)
	assert.Contains(t, out.String(), "unsupported file type")
	_, staged := app.pending.Peek()
	assert.False(t, staged, "rejected file must not be staged")
}

func TestUpload_UnsupportedTypeNeverReachesNetwork(t *testing.T) {
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusTeapot)
	}))
	defer srv.Close()

	app, _ := newTestApp(t, srv.URL)
	path := writeTempFile(t, "payload.exe", "MZ")

	err := app.Upload(context.Background(), []string{path})

	require.Error(t, err)
	assert.EqualValues(t, 0, requests.Load(), "nothing may be uploaded for an unsupported type")
}

func TestUpload_SupportedTypeConverts(t *testing.T) {
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/convert", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"d1","status":"completed","filename":"notes.txt"}`))
	}))
	defer srv.Close()

	app, out := newTestApp(t, srv.URL)
	path := writeTempFile(t, "notes.txt", "hello world")

	err := app.Upload(context.Background(), []string{path})

	require.NoError(t, err)
	assert.EqualValues(t, 1, requests.Load())
	assert.Contains(t, out.String(), "Uploaded as d1")
	assert.Contains(t, out.String(), string(model.StatusCompleted))
}
