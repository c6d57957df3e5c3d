// Package queue is the distributed run queue from SPEC_FULL.md §2/§6: a
// Valkey stream through which a Producer hands a project run to an
// out-of-process Consumer. cmd/indexer does not use it; it runs the
// orchestrator inline.
package queue

import (
	"context"
	"fmt"

	"github.com/valkey-io/valkey-go"

	"github.com/polyglotdex/polyglotdex/internal/config"
)

// NewClient connects to Valkey and verifies connectivity with a PING
// before returning, so a misconfigured address fails fast at startup
// rather than on the first Enqueue/Consume call.
func NewClient(cfg config.ValkeyConfig) (valkey.Client, error) {
	opts := valkey.ClientOption{
		InitAddress: []string{cfg.Addr},
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}

	client, err := valkey.NewClient(opts)
	if err != nil {
		return nil, fmt.Errorf("create valkey client: %w", err)
	}

	ctx := context.Background()
	resp := client.Do(ctx, client.B().Ping().Build())
	if err := resp.Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping valkey: %w", err)
	}

	return client, nil
}
