package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
)

func TestErrorHandlerNoPanic(t *testing.T) {
	t.Parallel()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	mw := ErrorHandler(zap.NewNop())(handler)

	req := httptest.NewRequest("GET", "/aimee-chat", nil)
	w := httptest.NewRecorder()

	mw.ServeHTTP(w, req)

	resp := w.Result()
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}
}

func TestErrorHandlerPanicRecovery(t *testing.T) {
	t.Parallel()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("handler blew up")
	})

	mw := ErrorHandler(zap.NewNop())(handler)

	req := httptest.NewRequest("POST", "/aimee-chat", nil)
	w := httptest.NewRecorder()

	mw.ServeHTTP(w, req)

	resp := w.Result()
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("Expected status 500, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Expected Content-Type 'application/json', got %q", ct)
	}

	var body ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if body.Success {
		t.Error("Expected success=false in error response")
	}
	if body.Message != "An unexpected error occurred" {
		t.Errorf("panic detail must not leak to the client, got %q", body.Message)
	}
	if body.Path != "/aimee-chat" {
		t.Errorf("Expected path '/aimee-chat', got %q", body.Path)
	}
}

func TestErrorHandlerPanicWithNil(t *testing.T) {
	t.Parallel()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(nil) //nolint:govet // exercises the nil-panic recovery path
	})

	mw := ErrorHandler(zap.NewNop())(handler)

	req := httptest.NewRequest("GET", "/healthz", nil)
	w := httptest.NewRecorder()

	mw.ServeHTTP(w, req)

	resp := w.Result()
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("Expected status 500, got %d", resp.StatusCode)
	}
}
