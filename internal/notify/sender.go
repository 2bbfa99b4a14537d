package notify

import (
	"context"
	"log/slog"
	"sync"
)

// LogSender writes notifications to the structured log. It stands in for a
// mail transport.
type LogSender struct {
	Logger *slog.Logger
}

func (s LogSender) Send(ctx context.Context, n Notification) error {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "Notification delivered",
		"id", n.ID,
		"kind", n.Kind,
		"recipient", n.Recipient,
		"subject", n.Subject)
	return nil
}

// MemorySender records notifications. Used in tests and dry runs.
type MemorySender struct {
	mu   sync.Mutex
	sent []Notification
	Err  error
}

func (s *MemorySender) Send(_ context.Context, n Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.sent = append(s.sent, n)
	return nil
}

func (s *MemorySender) Sent() []Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Notification, len(s.sent))
	copy(out, s.sent)
	return out
}
