package convai

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// DefaultPollInterval is how often a processing conversation is refetched.
const DefaultPollInterval = 2 * time.Second

// Fetcher is the subset of the client the watcher needs. Satisfied by *Client.
type Fetcher interface {
	GetConversation(ctx context.Context, conversationID string) (*ConversationRecord, error)
}

// Watcher polls a conversation until it leaves the processing state. Each
// Await call owns exactly one polling loop; cancelling the caller's context
// tears the loop down deterministically. There is no retry budget and no
// backoff: a fetch failure is terminal for that Await, and a conversation
// that never leaves processing polls until the context is cancelled.
type Watcher struct {
	fetcher  Fetcher
	interval time.Duration
	logger   *zap.Logger
}

// NewWatcher creates a Watcher. A non-positive interval falls back to
// DefaultPollInterval.
func NewWatcher(fetcher Fetcher, interval time.Duration, logger *zap.Logger) *Watcher {
	if fetcher == nil {
		panic("nil Fetcher provided to NewWatcher")
	}
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{
		fetcher:  fetcher,
		interval: interval,
		logger:   logger.Named("convai-watcher"),
	}
}

// Await fetches the conversation immediately and then at the configured
// interval until its status is terminal. It returns the terminal record;
// callers branch on record.Status for done versus error. Any fetch failure
// ends the loop with an error.
func (w *Watcher) Await(ctx context.Context, conversationID string) (*ConversationRecord, error) {
	fetches := 0
	for {
		record, err := w.fetcher.GetConversation(ctx, conversationID)
		if err != nil {
			return nil, fmt.Errorf("poll conversation %s: %w", conversationID, err)
		}
		fetches++

		if record.Status.Terminal() {
			w.logger.Info("conversation reached terminal status",
				zap.String("conversation_id", conversationID),
				zap.String("status", string(record.Status)),
				zap.Int("fetches", fetches))
			return record, nil
		}

		w.logger.Debug("conversation still processing",
			zap.String("conversation_id", conversationID),
			zap.Int("fetches", fetches))

		timer := time.NewTimer(w.interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}
