package log

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newBufferLogger(level slog.Level) (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return New(Config{Level: level, Component: ComponentRecurring, Output: &buf}), &buf
}

func TestLoggerAddsComponent(t *testing.T) {
	logger, buf := newBufferLogger(slog.LevelInfo)
	logger.InfoContext(context.Background(), "Wallet created", "id", "w1")

	out := buf.String()
	if !strings.Contains(out, "component=recurring") {
		t.Errorf("missing component in %q", out)
	}
	if !strings.Contains(out, "id=w1") {
		t.Errorf("missing attribute in %q", out)
	}

	buf.Reset()
	logger.DebugContext(context.Background(), "hidden")
	if buf.Len() != 0 {
		t.Errorf("debug line written at info level: %q", buf.String())
	}
}

func TestAccessLogLevels(t *testing.T) {
	tests := []struct {
		status int
		level  string
	}{
		{http.StatusOK, "level=INFO"},
		{http.StatusNotFound, "level=WARN"},
		{http.StatusInternalServerError, "level=ERROR"},
	}

	for _, tt := range tests {
		logger, buf := newBufferLogger(slog.LevelInfo)
		h := Middleware(logger)(
			RequestIDMiddleware(func(*http.Request) string { return "req-1" })(
				AccessLog(func(*http.Request) string { return "10.0.0.1" })(
					http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
						w.WriteHeader(tt.status)
					}))))

		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/wallets?limit=1", nil))

		out := buf.String()
		for _, want := range []string{tt.level, "request_id=req-1", "client_ip=10.0.0.1", "component=http", "path=/api/v1/wallets", `query="limit=1"`, fmt.Sprintf("status=%d", tt.status)} {
			if !strings.Contains(out, want) {
				t.Errorf("status %d: %q missing from %q", tt.status, want, out)
			}
		}
	}
}

func TestLogError(t *testing.T) {
	logger, buf := newBufferLogger(slog.LevelInfo)
	NewStructuredLogger(logger).LogError(context.Background(), "Budget check failed",
		errors.New("boom"), ErrorTypeInternal, ComponentNotify, "evaluate")

	out := buf.String()
	for _, want := range []string{"error=boom", "error_type=internal_error", "component=notify", "operation=evaluate"} {
		if !strings.Contains(out, want) {
			t.Errorf("%q missing from %q", want, out)
		}
	}
}

func TestFromContextFallsBack(t *testing.T) {
	if got := FromContext(context.Background()); got.Component() != "unknown" {
		t.Errorf("Component() = %q, want unknown", got.Component())
	}
}
