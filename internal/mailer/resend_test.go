package mailer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSendInvite(t *testing.T) {
	ctx := context.Background()

	t.Run("posts invite payload with bearer key", func(t *testing.T) {
		var got map[string]any
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/emails", r.URL.Path)
			assert.Equal(t, "Bearer re-key", r.Header.Get("Authorization"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			_, _ = w.Write([]byte(`{"id": "email-1"}`))
		}))
		defer server.Close()

		client := NewClient(server.URL, "re-key", "Pulsato <hello@pulsato.app>", zap.NewNop())
		err := client.SendInvite(ctx, InviteEmail{
			Email:       "new@example.com",
			CompanyName: "Acme",
			InviteLink:  "https://app.example.com/auth?invite=tok",
		})

		require.NoError(t, err)
		assert.Equal(t, "Pulsato <hello@pulsato.app>", got["from"])
		assert.Equal(t, []any{"new@example.com"}, got["to"])
		assert.Contains(t, got["subject"], "Acme")
		assert.Contains(t, got["html"], "https://app.example.com/auth?invite=tok")
	})

	t.Run("non-2xx is an error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer server.Close()

		client := NewClient(server.URL, "bad-key", "hello@pulsato.app", zap.NewNop())
		err := client.SendInvite(ctx, InviteEmail{Email: "new@example.com"})

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "401")
	})
}
