// Package convai is the client for the remote conversational-voice platform:
// fetching conversation records, retrieving the API credential, and polling a
// conversation until its analysis reaches a terminal status.
package convai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pulsato/pulsato-server/internal/wellbeing"
)

const defaultBaseURL = "https://api.elevenlabs.io"

var (
	ErrConversationNotFound = errors.New("conversation not found")
	ErrRemoteAPI            = errors.New("conversation api failure")
)

// Client fetches conversation records over HTTP.
type Client struct {
	baseURL    string
	keys       KeyProvider
	httpClient *http.Client
}

// NewClient creates a conversation API client. baseURL falls back to the
// platform default when empty.
func NewClient(baseURL string, keys KeyProvider) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if keys == nil {
		panic("nil KeyProvider provided to NewClient")
	}
	return &Client{
		baseURL:    baseURL,
		keys:       keys,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// GetConversation fetches the current record for a conversation id. The
// credential is obtained from the key provider on every call. Unknown topic
// keys in the analysis payload are dropped before the record is returned.
func (c *Client) GetConversation(ctx context.Context, conversationID string) (*ConversationRecord, error) {
	if conversationID == "" {
		return nil, fmt.Errorf("%w: empty conversation id", ErrConversationNotFound)
	}

	key, err := c.keys.APIKey(ctx)
	if err != nil {
		return nil, fmt.Errorf("retrieve api key: %w", err)
	}

	url := fmt.Sprintf("%s/v1/convai/conversations/%s", c.baseURL, conversationID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create conversation request: %w", err)
	}
	req.Header.Set("xi-api-key", key)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRemoteAPI, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrConversationNotFound, conversationID)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: status %d: %s", ErrRemoteAPI, resp.StatusCode, string(body))
	}

	var record ConversationRecord
	if err := json.NewDecoder(resp.Body).Decode(&record); err != nil {
		return nil, fmt.Errorf("decode conversation response: %w", err)
	}

	sanitizeAnalysis(&record)
	return &record, nil
}

// sanitizeAnalysis removes data-collection keys that are not part of the
// wellbeing topic catalog. The remote payload is an open map; everything
// downstream assumes catalog-validated keys.
func sanitizeAnalysis(record *ConversationRecord) {
	if record.Analysis == nil {
		return
	}
	for key := range record.Analysis.DataCollectionResults {
		if !wellbeing.Known(key) {
			delete(record.Analysis.DataCollectionResults, key)
		}
	}
}
