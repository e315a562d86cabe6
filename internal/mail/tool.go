package mail

import (
	"context"
	"encoding/json"
	"fmt"
)

// Tool exposes email sending to reasoning engines. Failures come back as
// descriptive strings so the engine can fold them into its final answer
// instead of aborting the turn.
type Tool struct {
	sender Sender
}

// NewTool wraps a sender as an engine tool.
func NewTool(sender Sender) *Tool {
	return &Tool{sender: sender}
}

// Name returns the tool identifier presented to the engine.
func (t *Tool) Name() string { return "send_email" }

// Description tells the engine what the tool is for.
func (t *Tool) Description() string {
	return "Sends an email on the user's behalf. Use only when the user explicitly asks to send one."
}

// Parameters returns the argument schema.
func (t *Tool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"to": {"type": "array", "items": {"type": "string"}, "description": "Recipient addresses"},
			"cc": {"type": "array", "items": {"type": "string"}, "description": "CC addresses"},
			"subject": {"type": "string"},
			"body": {"type": "string"}
		},
		"required": ["to", "subject", "body"]
	}`)
}

// Execute sends the email. The returned string is always human readable;
// send failures are reported in-band rather than as errors.
func (t *Tool) Execute(ctx context.Context, args map[string]any) (string, error) {
	msg := Message{
		To:      stringSlice(args["to"]),
		CC:      stringSlice(args["cc"]),
		Subject: stringArg(args, "subject"),
		Body:    stringArg(args, "body"),
	}
	if len(msg.To) == 0 {
		return "email not sent: no recipients given", nil
	}

	id, err := t.sender.Send(ctx, msg)
	if err != nil {
		return fmt.Sprintf("email not sent: %v", err), nil
	}
	return fmt.Sprintf("email sent (message id %s)", id), nil
}

func stringArg(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return s
}

func stringSlice(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}
