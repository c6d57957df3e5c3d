package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/valkey-io/valkey-go"
)

const (
	// StreamName is the Valkey stream an indexer run request is published
	// to; GroupName is the consumer group worker processes join to pull
	// from it.
	StreamName   = "polyglotdex:runs"
	GroupName    = "polyglotdex-workers"
	MaxRetries   = 3
	ClaimTimeout = 5 * time.Minute
)

// RunRequest is the payload enqueued for an out-of-process indexer run,
// carrying exactly the options spec.md §6's configuration surface names.
type RunRequest struct {
	RunID          uuid.UUID `json:"run_id"`
	ProjectName    string    `json:"project_name"`
	ProjectPath    string    `json:"project_path"`
	Languages      []string  `json:"languages,omitempty"`
	ForceReindex   bool      `json:"force_reindex"`
	Trigger        string    `json:"trigger"` // "manual", "webhook", "schedule"
}

// Producer enqueues run requests onto the Valkey stream.
type Producer struct {
	client valkey.Client
}

func NewProducer(client valkey.Client) *Producer {
	return &Producer{client: client}
}

// Enqueue publishes req and returns the stream entry id Valkey assigned it.
func (p *Producer) Enqueue(ctx context.Context, req RunRequest) (string, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal run request: %w", err)
	}

	resp := p.client.Do(ctx, p.client.B().Xadd().
		Key(StreamName).Id("*").
		FieldValue().FieldValue("data", string(data)).
		Build())
	if err := resp.Error(); err != nil {
		return "", fmt.Errorf("xadd: %w", err)
	}

	id, err := resp.ToString()
	if err != nil {
		return "", fmt.Errorf("parse xadd response: %w", err)
	}
	return id, nil
}

// Consumer reads run requests from the Valkey stream under GroupName.
type Consumer struct {
	client     valkey.Client
	consumerID string
	logger     *slog.Logger
}

func NewConsumer(client valkey.Client, consumerID string, logger *slog.Logger) *Consumer {
	return &Consumer{client: client, consumerID: consumerID, logger: logger}
}

// EnsureGroup creates the consumer group if it doesn't already exist.
func (c *Consumer) EnsureGroup(ctx context.Context) error {
	resp := c.client.Do(ctx, c.client.B().XgroupCreate().
		Key(StreamName).Group(GroupName).Id("0").Mkstream().Build())
	if err := resp.Error(); err != nil {
		if err.Error() != "BUSYGROUP Consumer Group name already exists" {
			return fmt.Errorf("xgroup create: %w", err)
		}
	}
	return nil
}

// Consume blocks reading new stream entries, dispatching each to handler
// and ACKing on success. A handler error leaves the entry unacknowledged
// in the group's pending list; this package does not reclaim or retry
// pending entries. This function itself only returns on ctx cancellation.
func (c *Consumer) Consume(ctx context.Context, handler func(context.Context, RunRequest) error) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		resp := c.client.Do(ctx, c.client.B().Xreadgroup().
			Group(GroupName, c.consumerID).
			Count(1).Block(5000).
			Streams().Key(StreamName).Id(">").
			Build())

		if err := resp.Error(); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			continue // BLOCK timeout is normal
		}

		results, err := resp.AsXRead()
		if err != nil {
			continue
		}

		for _, messages := range results {
			for _, msg := range messages {
				dataStr, ok := msg.FieldValues["data"]
				if !ok {
					c.logger.Warn("run request missing data field", slog.String("id", msg.ID))
					c.ack(ctx, msg.ID)
					continue
				}

				var req RunRequest
				if err := json.Unmarshal([]byte(dataStr), &req); err != nil {
					c.logger.Error("unmarshal run request", slog.String("error", err.Error()), slog.String("id", msg.ID))
					c.ack(ctx, msg.ID)
					continue
				}

				if err := handler(ctx, req); err != nil {
					c.logger.Error("handle run request", slog.String("error", err.Error()),
						slog.String("id", msg.ID), slog.String("run_id", req.RunID.String()))
				} else {
					c.ack(ctx, msg.ID)
				}
			}
		}
	}
}

func (c *Consumer) ack(ctx context.Context, msgID string) {
	resp := c.client.Do(ctx, c.client.B().Xack().
		Key(StreamName).Group(GroupName).Id(msgID).Build())
	if err := resp.Error(); err != nil {
		c.logger.Error("xack failed", slog.String("error", err.Error()), slog.String("id", msgID))
	}
}
