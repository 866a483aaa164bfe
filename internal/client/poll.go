package client

import (
	"context"
	"time"

	"fileforge/internal/model"
)

// Poll intervals are variables so tests can shorten them.
var (
	pollInitialInterval = 2 * time.Second
	pollMaxInterval     = 30 * time.Second
)

// StatusUpdate is one observation from a status watch.
type StatusUpdate struct {
	Document *model.Document
	Err      error
}

// Watch is a cancellable subscription to a document's processing status.
type Watch struct {
	updates chan StatusUpdate
	cancel  context.CancelFunc
}

// Updates delivers one update per poll. The channel is closed after a
// terminal status, a polling error, or Stop.
func (w *Watch) Updates() <-chan StatusUpdate { return w.updates }

// Stop cancels the watch. Safe to call more than once.
func (w *Watch) Stop() { w.cancel() }

// WatchStatus polls a document until it reaches completed or failed. The
// interval starts at two seconds and doubles up to thirty; once a terminal
// status is seen no further requests are made. Polling errors end the watch.
func (c *Client) WatchStatus(ctx context.Context, id string) *Watch {
	ctx, cancel := context.WithCancel(ctx)
	w := &Watch{
		updates: make(chan StatusUpdate, 1),
		cancel:  cancel,
	}

	go func() {
		defer close(w.updates)
		defer cancel()

		interval := pollInitialInterval
		timer := time.NewTimer(0)
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-timer.C:
			}

			doc, err := c.Document(ctx, id)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				select {
				case w.updates <- StatusUpdate{Err: err}:
				case <-ctx.Done():
				}
				return
			}

			select {
			case w.updates <- StatusUpdate{Document: doc}:
			case <-ctx.Done():
				return
			}

			if doc.Status.Terminal() {
				return
			}

			timer.Reset(interval)
			if interval < pollMaxInterval {
				interval *= 2
				if interval > pollMaxInterval {
					interval = pollMaxInterval
				}
			}
		}
	}()

	return w
}
