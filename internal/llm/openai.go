package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sashabaranov/go-openai"

	"notewire/internal/session"
)

// maxToolRounds bounds the tool-calling loop so a model that keeps asking
// for tools cannot spin forever.
const maxToolRounds = 8

// OpenAIEngine is a tool-calling reasoning engine backed by the OpenAI chat
// completions API with JSON-schema constrained output.
type OpenAIEngine struct {
	client *openai.Client
	model  string
}

// NewOpenAIEngine creates an engine for the given model.
func NewOpenAIEngine(apiKey, model string) *OpenAIEngine {
	if model == "" {
		model = "gpt-4.1"
	}
	return &OpenAIEngine{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

// Model returns the model identifier.
func (e *OpenAIEngine) Model() string {
	return e.model
}

// Invoke runs the tool-calling loop: the model may request tool executions
// any number of times before emitting its final schema-constrained answer.
// Tool failures are converted to descriptive strings and fed back to the
// model rather than aborting the invocation.
func (e *OpenAIEngine) Invoke(ctx context.Context, req Request) (json.RawMessage, error) {
	messages := buildMessages(req)

	chatReq := openai.ChatCompletionRequest{
		Model:    e.model,
		Messages: messages,
		Tools:    convertTools(req.Tools),
	}
	if req.Schema.Definition != nil {
		chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   req.Schema.Name,
				Schema: req.Schema.Definition,
				Strict: true,
			},
		}
	}

	for round := 0; round < maxToolRounds; round++ {
		resp, err := e.client.CreateChatCompletion(ctx, chatReq)
		if err != nil {
			return nil, fmt.Errorf("openai api error: %w", err)
		}
		if len(resp.Choices) == 0 {
			return nil, fmt.Errorf("openai returned no choices")
		}

		choice := resp.Choices[0].Message
		if len(choice.ToolCalls) == 0 {
			if !json.Valid([]byte(choice.Content)) {
				return nil, fmt.Errorf("engine produced non-JSON final answer")
			}
			return json.RawMessage(choice.Content), nil
		}

		chatReq.Messages = append(chatReq.Messages, choice)
		for _, call := range choice.ToolCalls {
			chatReq.Messages = append(chatReq.Messages, openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				Content:    executeToolCall(ctx, req.Tools, call),
				ToolCallID: call.ID,
			})
		}
	}

	return nil, fmt.Errorf("engine exceeded %d tool rounds without a final answer", maxToolRounds)
}

// executeToolCall runs one requested tool and returns its output as text.
// Every failure mode degrades to a descriptive string for the model.
func executeToolCall(ctx context.Context, tools []Tool, call openai.ToolCall) string {
	var tool Tool
	for _, t := range tools {
		if t.Name() == call.Function.Name {
			tool = t
			break
		}
	}
	if tool == nil {
		return fmt.Sprintf("tool error: unknown tool %q", call.Function.Name)
	}

	args := make(map[string]any)
	if call.Function.Arguments != "" {
		if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
			return fmt.Sprintf("tool error: malformed arguments for %q: %v", call.Function.Name, err)
		}
	}

	output, err := tool.Execute(ctx, args)
	if err != nil {
		return fmt.Sprintf("tool error: %s failed: %v", call.Function.Name, err)
	}
	return output
}

func buildMessages(req Request) []openai.ChatCompletionMessage {
	messages := make([]openai.ChatCompletionMessage, 0, len(req.History)+2)
	if req.SystemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.SystemPrompt,
		})
	}
	for _, turn := range req.History {
		role := openai.ChatMessageRoleUser
		if turn.Role == session.RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    role,
			Content: turn.Content,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Input,
	})
	return messages
}

func convertTools(tools []Tool) []openai.Tool {
	if len(tools) == 0 {
		return nil
	}
	out := make([]openai.Tool, 0, len(tools))
	for _, t := range tools {
		out = append(out, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        t.Name(),
				Description: t.Description(),
				Parameters:  t.Parameters(),
			},
		})
	}
	return out
}
