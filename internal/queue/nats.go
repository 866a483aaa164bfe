// Package queue publishes and consumes async conversion jobs over NATS.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"fileforge/internal/resilience"
)

// Job is the payload of one conversion task.
type Job struct {
	DocumentID    string `json:"document_id"`
	ChunkStrategy string `json:"chunk_strategy"`
	ChunkSize     int    `json:"chunk_size"`
	ChunkOverlap  int    `json:"chunk_overlap"`
}

// Queue is a NATS-backed job queue for document conversion.
type Queue struct {
	conn     *nats.Conn
	subject  string
	executor *resilience.Executor
}

// Options tune the NATS connection.
type Options struct {
	ConnectTimeout time.Duration
	ReconnectWait  time.Duration
	MaxReconnects  int
	Executor       *resilience.Executor
}

// New connects to NATS with sensible defaults.
func New(url, subject string) (*Queue, error) {
	return NewWithOptions(url, subject, Options{})
}

// NewWithOptions connects to NATS with explicit options.
func NewWithOptions(url, subject string, options Options) (*Queue, error) {
	connectTimeout := options.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = 2 * time.Second
	}
	reconnectWait := options.ReconnectWait
	if reconnectWait <= 0 {
		reconnectWait = 2 * time.Second
	}
	maxReconnects := options.MaxReconnects
	if maxReconnects <= 0 {
		maxReconnects = 60
	}

	conn, err := nats.Connect(
		url,
		nats.Name("fileforge"),
		nats.Timeout(connectTimeout),
		nats.ReconnectWait(reconnectWait),
		nats.MaxReconnects(maxReconnects),
		nats.RetryOnFailedConnect(true),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			slog.Warn("nats_disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			slog.Info("nats_reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return &Queue{
		conn:     conn,
		subject:  subject,
		executor: options.Executor,
	}, nil
}

// Close drops the NATS connection.
func (q *Queue) Close() {
	if q.conn != nil {
		q.conn.Close()
	}
}

// Publish enqueues a conversion job.
func (q *Queue) Publish(ctx context.Context, job Job) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}

	call := func(context.Context) error {
		if err := q.conn.Publish(q.subject, data); err != nil {
			return fmt.Errorf("nats publish: %w", err)
		}
		return nil
	}

	if q.executor != nil {
		return q.executor.Execute(ctx, "nats.publish", call, classifyNATSError)
	}
	return call(ctx)
}

// Subscribe consumes jobs until ctx is cancelled. All workers share the
// "workers" queue group so each job is handled once.
func (q *Queue) Subscribe(ctx context.Context, handler func(context.Context, Job) error) error {
	sub, err := q.conn.QueueSubscribe(q.subject, "workers", func(msg *nats.Msg) {
		if errors.Is(ctx.Err(), context.Canceled) {
			return
		}
		var job Job
		if err := json.Unmarshal(msg.Data, &job); err != nil {
			slog.Error("worker_bad_job", "error", err)
			return
		}
		handlerCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		if err := handler(handlerCtx, job); err != nil {
			slog.Error("worker_handler_error", "document_id", job.DocumentID, "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("nats subscribe: %w", err)
	}

	if err := q.conn.Flush(); err != nil {
		return fmt.Errorf("nats flush: %w", err)
	}

	<-ctx.Done()
	if err := sub.Drain(); err != nil {
		return fmt.Errorf("nats drain subscription: %w", err)
	}
	if err := q.conn.FlushTimeout(5 * time.Second); err != nil {
		return fmt.Errorf("nats flush after drain: %w", err)
	}
	return nil
}

// classifyNATSError marks connection-level problems as retryable.
func classifyNATSError(err error) resilience.Classification {
	if err == nil {
		return resilience.Classification{}
	}
	if errors.Is(err, nats.ErrConnectionClosed) ||
		errors.Is(err, nats.ErrConnectionDraining) ||
		errors.Is(err, nats.ErrTimeout) ||
		strings.Contains(err.Error(), "no responders") {
		return resilience.Classification{Retryable: true, RecordFailure: true}
	}
	return resilience.Classification{Retryable: false, RecordFailure: true}
}
