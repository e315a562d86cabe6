package llm

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/sashabaranov/go-openai"

	"notewire/internal/session"
)

type stubTool struct {
	name   string
	output string
	err    error
	gotArgs map[string]any
}

func (t *stubTool) Name() string                { return t.name }
func (t *stubTool) Description() string         { return "stub" }
func (t *stubTool) Parameters() json.RawMessage { return json.RawMessage(`{"type":"object"}`) }

func (t *stubTool) Execute(ctx context.Context, args map[string]any) (string, error) {
	t.gotArgs = args
	return t.output, t.err
}

func TestBuildMessagesIncludesSystemHistoryAndInput(t *testing.T) {
	req := Request{
		SystemPrompt: "You are a helpful assistant",
		History: []session.Turn{
			{Role: session.RoleUser, Content: "My pet is named Max"},
			{Role: session.RoleAssistant, Content: "Noted!"},
		},
		Input: "What is my pet's name?",
	}

	messages := buildMessages(req)
	if len(messages) != 4 {
		t.Fatalf("Expected 4 messages, got %d", len(messages))
	}
	if messages[0].Role != openai.ChatMessageRoleSystem {
		t.Errorf("Expected system message first, got role %q", messages[0].Role)
	}
	if messages[1].Role != openai.ChatMessageRoleUser || messages[1].Content != "My pet is named Max" {
		t.Errorf("Unexpected history turn: %+v", messages[1])
	}
	if messages[2].Role != openai.ChatMessageRoleAssistant {
		t.Errorf("Expected assistant role for second history turn, got %q", messages[2].Role)
	}
	if messages[3].Content != "What is my pet's name?" {
		t.Errorf("Expected new input last, got %q", messages[3].Content)
	}
}

func TestBuildMessagesOmitsEmptySystemPrompt(t *testing.T) {
	messages := buildMessages(Request{Input: "hi"})
	if len(messages) != 1 {
		t.Fatalf("Expected 1 message, got %d", len(messages))
	}
	if messages[0].Role != openai.ChatMessageRoleUser {
		t.Errorf("Expected user role, got %q", messages[0].Role)
	}
}

func TestExecuteToolCallPassesArguments(t *testing.T) {
	tool := &stubTool{name: "get_prompt_context", output: "Source: source\nContent: hi\n---"}
	call := openai.ToolCall{
		Function: openai.FunctionCall{
			Name:      "get_prompt_context",
			Arguments: `{"query":"weather"}`,
		},
	}

	out := executeToolCall(context.Background(), []Tool{tool}, call)
	if out != tool.output {
		t.Errorf("Expected tool output, got %q", out)
	}
	if tool.gotArgs["query"] != "weather" {
		t.Errorf("Expected query argument to be passed, got %v", tool.gotArgs)
	}
}

func TestExecuteToolCallConvertsFailuresToStrings(t *testing.T) {
	tests := []struct {
		name string
		tools []Tool
		call openai.ToolCall
		want string
	}{
		{
			name:  "unknown tool",
			tools: nil,
			call:  openai.ToolCall{Function: openai.FunctionCall{Name: "nope"}},
			want:  "unknown tool",
		},
		{
			name:  "malformed arguments",
			tools: []Tool{&stubTool{name: "t"}},
			call:  openai.ToolCall{Function: openai.FunctionCall{Name: "t", Arguments: "{not json"}},
			want:  "malformed arguments",
		},
		{
			name:  "tool failure",
			tools: []Tool{&stubTool{name: "t", err: errors.New("smtp down")}},
			call:  openai.ToolCall{Function: openai.FunctionCall{Name: "t", Arguments: "{}"}},
			want:  "smtp down",
		},
	}

	for _, tt := range tests {
		out := executeToolCall(context.Background(), tt.tools, tt.call)
		if !strings.HasPrefix(out, "tool error:") {
			t.Errorf("%s: expected tool error string, got %q", tt.name, out)
		}
		if !strings.Contains(out, tt.want) {
			t.Errorf("%s: expected %q in output, got %q", tt.name, tt.want, out)
		}
	}
}

func TestConvertToolsMapsDefinitions(t *testing.T) {
	tools := convertTools([]Tool{&stubTool{name: "send_email"}})
	if len(tools) != 1 {
		t.Fatalf("Expected 1 tool, got %d", len(tools))
	}
	if tools[0].Type != openai.ToolTypeFunction {
		t.Errorf("Expected function tool type, got %q", tools[0].Type)
	}
	if tools[0].Function.Name != "send_email" {
		t.Errorf("Expected tool name preserved, got %q", tools[0].Function.Name)
	}
}
