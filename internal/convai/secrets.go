package convai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// KeyProvider hands out the short-lived credential used to authenticate
// against the conversation API. The client calls it once per request; keys
// are never cached across unrelated flows.
type KeyProvider interface {
	APIKey(ctx context.Context) (string, error)
}

var ErrNoAPIKey = errors.New("conversation api key unavailable")

// StaticKeyProvider returns a key fixed at startup. Used in development and
// tests.
type StaticKeyProvider string

func (p StaticKeyProvider) APIKey(_ context.Context) (string, error) {
	if p == "" {
		return "", ErrNoAPIKey
	}
	return string(p), nil
}

// FunctionKeyProvider retrieves the key from a secret-retrieval endpoint
// that responds with {"apiKey": "..."}.
type FunctionKeyProvider struct {
	url        string
	authToken  string
	httpClient *http.Client
}

// NewFunctionKeyProvider creates a provider for the given endpoint. authToken
// is sent as a bearer token when non-empty.
func NewFunctionKeyProvider(url, authToken string) *FunctionKeyProvider {
	return &FunctionKeyProvider{
		url:        url,
		authToken:  authToken,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (p *FunctionKeyProvider) APIKey(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, nil)
	if err != nil {
		return "", fmt.Errorf("create key request: %w", err)
	}
	if p.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+p.authToken)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoAPIKey, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("%w: key endpoint returned status %d: %s", ErrNoAPIKey, resp.StatusCode, string(body))
	}

	var payload struct {
		APIKey string `json:"apiKey"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode key response: %w", err)
	}
	if payload.APIKey == "" {
		return "", ErrNoAPIKey
	}
	return payload.APIKey, nil
}
