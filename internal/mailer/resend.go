// Package mailer sends transactional email through a Resend-style REST API.
package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const defaultBaseURL = "https://api.resend.com"

// InviteEmail is the payload for a company invitation message.
type InviteEmail struct {
	Email       string
	CompanyName string
	InviteLink  string
}

// Client sends email via the provider's HTTP API.
type Client struct {
	baseURL    string
	apiKey     string
	from       string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a mailer client. baseURL falls back to the provider
// default when empty.
func NewClient(baseURL, apiKey, from string, logger *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		from:       from,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     logger.Named("mailer"),
	}
}

// SendInvite delivers a company invitation email. The caller treats delivery
// as fire-and-forget; there is no retry here.
func (c *Client) SendInvite(ctx context.Context, invite InviteEmail) error {
	body := map[string]any{
		"from":    c.from,
		"to":      []string{invite.Email},
		"subject": fmt.Sprintf("Join %s on Pulsato", invite.CompanyName),
		"html":    inviteHTML(invite),
	}

	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal invite email: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/emails", bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("create email request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send invite email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("email provider returned status %d: %s", resp.StatusCode, string(respBody))
	}

	c.logger.Info("invite email sent",
		zap.String("email", invite.Email),
		zap.String("company", invite.CompanyName))
	return nil
}

func inviteHTML(invite InviteEmail) string {
	return fmt.Sprintf(`<div style="font-family: sans-serif; max-width: 600px; margin: 0 auto;">
  <h1>You've been invited to join %s!</h1>
  <p>You've been invited to join %s on Pulsato. Click the link below to accept the invitation:</p>
  <p style="margin: 24px 0;">
    <a href="%s" style="background-color: #7c3aed; color: white; padding: 12px 24px; text-decoration: none; border-radius: 4px;">Accept Invitation</a>
  </p>
  <p>If you didn't expect this invitation, you can safely ignore this email.</p>
</div>`, invite.CompanyName, invite.CompanyName, invite.InviteLink)
}
