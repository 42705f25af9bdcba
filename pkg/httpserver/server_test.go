package httpserver

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
)

func TestNewValidation(t *testing.T) {
	t.Run("rejects missing handler", func(t *testing.T) {
		_, err := New(WithPort(0))
		if err == nil {
			t.Fatal("Expected an error, got nil")
		}
	})

	t.Run("rejects invalid port", func(t *testing.T) {
		_, err := New(WithPort(70000), WithHandler(http.NewServeMux()))
		if err == nil {
			t.Fatal("Expected an error, got nil")
		}
	})
}

func TestServerServesRequests(t *testing.T) {
	logger := zaptest.NewLogger(t)

	mux := http.NewServeMux()
	mux.HandleFunc("/ping", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "pong")
	})

	server, err := New(
		WithPort(0),
		WithLogger(logger),
		WithHandler(mux),
		WithLogging(true),
	)
	if err != nil {
		t.Fatalf("Failed to create server: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			t.Logf("Server shutdown error: %v", err)
		}
	}()

	server.Start()

	resp, err := http.Get(fmt.Sprintf("http://%s/ping", server.Addr()))
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Failed to read body: %v", err)
	}
	if string(body) != "pong" {
		t.Errorf("Expected 'pong', got %q", string(body))
	}
}

func TestLoggingMiddleware(t *testing.T) {
	logger := zaptest.NewLogger(t)

	t.Run("successful request", func(t *testing.T) {
		handler := LoggingMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusCreated)
		}))

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Errorf("Expected status 201, got %d", rec.Code)
		}
	})

	t.Run("error request", func(t *testing.T) {
		handler := LoggingMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusInternalServerError {
			t.Errorf("Expected status 500, got %d", rec.Code)
		}
	})
}
