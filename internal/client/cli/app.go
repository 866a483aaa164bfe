// Package cli implements the interactive forge command line: auth,
// uploads with progress and status watching, document browsing, local
// previews and API key management on top of the FileForge SDK.
package cli

import (
	"bufio"
	"io"
	"os"

	"fileforge/internal/client"
	"fileforge/internal/client/config"
	"fileforge/internal/client/preview"
	"fileforge/internal/extract"
	"fileforge/internal/model"
	"fileforge/internal/resilience"
)

// App wires the SDK, cache and interactive helpers behind the REPL.
type App struct {
	config  *config.Config
	store   *client.Store
	preview *preview.Dispatcher
	pending *client.PendingStore
	formats *extract.Registry

	reader *bufio.Reader
	out    io.Writer

	user *model.User
}

// NewApp builds the CLI against the configured API endpoint.
func NewApp(c *config.Config) (*App, error) {
	opts := []client.Option{
		// Reads retry through the breaker; uploads are never replayed.
		client.WithExecutor(resilience.NewExecutor(resilience.DefaultConfig())),
	}
	if c.APIKey != "" {
		opts = append(opts, client.WithAPIKey(c.APIKey))
	}
	api, err := client.New(c.ServerURL, opts...)
	if err != nil {
		return nil, err
	}

	return &App{
		config:  c,
		store:   client.NewStore(api),
		preview: preview.NewDispatcher(),
		pending: client.NewPendingStore(),
		formats: extract.NewRegistry(),
		reader:  bufio.NewReader(os.Stdin),
		out:     os.Stdout,
	}, nil
}

func (a *App) isLoggedIn() bool {
	return a.user != nil || a.config.APIKey != ""
}

func (a *App) status() string {
	switch {
	case a.user != nil:
		return "(" + a.user.Email + ")"
	case a.config.APIKey != "":
		return "(api-key)"
	default:
		return ""
	}
}
