package queue

import (
	"context"
	"fmt"

	"github.com/valkey-io/valkey-go"
)

// ProgressStreamPrefix namespaces the per-run progress stream a
// ProgressPublisher writes to; the full key is "polyglotdex:progress:<run_id>".
const ProgressStreamPrefix = "polyglotdex:progress:"

// ProgressPublisher carries orchestrator progress events to subscribers
// over a per-run Valkey stream, per SPEC_FULL.md §2's "Distributed Run
// Queue ... carries progress events to subscribers". It takes pre-encoded
// JSON rather than a concrete event type so internal/orchestrator doesn't
// need to import internal/queue.
type ProgressPublisher struct {
	client valkey.Client
}

func NewProgressPublisher(client valkey.Client) *ProgressPublisher {
	return &ProgressPublisher{client: client}
}

// Publish appends one progress event to the run's stream.
func (p *ProgressPublisher) Publish(ctx context.Context, runID string, eventJSON []byte) error {
	resp := p.client.Do(ctx, p.client.B().Xadd().
		Key(ProgressStreamPrefix+runID).Id("*").
		FieldValue().FieldValue("data", string(eventJSON)).
		Build())
	if err := resp.Error(); err != nil {
		return fmt.Errorf("publish progress: %w", err)
	}
	return nil
}
