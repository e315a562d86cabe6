package mail

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type stubSender struct {
	sent []Message
	id   string
	err  error
}

func (s *stubSender) Send(ctx context.Context, msg Message) (string, error) {
	s.sent = append(s.sent, msg)
	return s.id, s.err
}

func TestToolExecuteSends(t *testing.T) {
	sender := &stubSender{id: "msg-123"}
	tool := NewTool(sender)

	out, err := tool.Execute(context.Background(), map[string]any{
		"to":      []any{"finn@example.com"},
		"cc":      []any{"max@example.com"},
		"subject": "Q3 report",
		"body":    "12% growth",
	})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !strings.Contains(out, "msg-123") {
		t.Errorf("Expected message id in result, got %q", out)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("Expected 1 send, got %d", len(sender.sent))
	}
	msg := sender.sent[0]
	if msg.To[0] != "finn@example.com" || msg.CC[0] != "max@example.com" {
		t.Errorf("Unexpected recipients: %+v", msg)
	}
	if msg.Subject != "Q3 report" || msg.Body != "12% growth" {
		t.Errorf("Unexpected content: %+v", msg)
	}
}

func TestToolExecuteReportsFailureInBand(t *testing.T) {
	tool := NewTool(&stubSender{err: errors.New("quota exceeded")})

	out, err := tool.Execute(context.Background(), map[string]any{
		"to":      []any{"finn@example.com"},
		"subject": "s",
		"body":    "b",
	})
	if err != nil {
		t.Fatalf("Send failures must not surface as errors, got: %v", err)
	}
	if !strings.Contains(out, "quota exceeded") {
		t.Errorf("Expected failure description in result, got %q", out)
	}
}

func TestToolExecuteRejectsMissingRecipients(t *testing.T) {
	sender := &stubSender{}
	tool := NewTool(sender)

	out, err := tool.Execute(context.Background(), map[string]any{
		"subject": "s",
		"body":    "b",
	})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !strings.Contains(out, "no recipients") {
		t.Errorf("Expected no-recipients message, got %q", out)
	}
	if len(sender.sent) != 0 {
		t.Error("Expected no send attempt without recipients")
	}
}

func TestBuildRFC822(t *testing.T) {
	raw := buildRFC822(Message{
		To:      []string{"a@example.com", "b@example.com"},
		Subject: "hello",
		Body:    "world",
	})
	if !strings.HasPrefix(raw, "To: a@example.com, b@example.com\r\n") {
		t.Errorf("Unexpected To header: %q", raw)
	}
	if strings.Contains(raw, "Cc:") {
		t.Error("Cc header should be omitted when empty")
	}
	if !strings.HasSuffix(raw, "\r\nworld") {
		t.Errorf("Expected body after blank line, got %q", raw)
	}
}
