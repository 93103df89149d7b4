package llm

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sashabaranov/go-openai"
)

// Client talks to an OpenAI-compatible chat completions API.
type Client struct {
	Model       string
	Temperature float32
	api         *openai.Client
}

// NewClient creates a new LLM client. baseURL must include the API version
// prefix, e.g. https://api.openai.com/v1.
func NewClient(baseURL, apiKey, model string, temperature float32) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &Client{
		Model:       model,
		Temperature: temperature,
		api:         openai.NewClientWithConfig(cfg),
	}
}

// Complete sends a non-streamed chat completion and returns the reply text.
func (c *Client) Complete(ctx context.Context, messages []Message) (string, error) {
	return c.ChatWithMessages(ctx, messages, ChatParams{})
}

// ChatWithMessages sends a non-streamed chat completion with explicit parameters.
func (c *Client) ChatWithMessages(ctx context.Context, messages []Message, params ChatParams) (string, error) {
	if len(messages) == 0 {
		return "", fmt.Errorf("no messages provided")
	}

	resp, err := c.api.CreateChatCompletion(ctx, c.request(messages, params))
	if err != nil {
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices returned")
	}
	return resp.Choices[0].Message.Content, nil
}

// OpenStream starts a streamed chat completion. The returned stream must be closed.
func (c *Client) OpenStream(ctx context.Context, messages []Message) (DeltaStream, error) {
	if len(messages) == 0 {
		return nil, fmt.Errorf("no messages provided")
	}

	req := c.request(messages, ChatParams{})
	req.Stream = true

	stream, err := c.api.CreateChatCompletionStream(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to open chat stream: %w", err)
	}
	return &chatStream{stream: stream}, nil
}

func (c *Client) request(messages []Message, params ChatParams) openai.ChatCompletionRequest {
	model := params.Model
	if model == "" {
		model = c.Model
	}
	temperature := params.Temperature
	if temperature == 0 {
		temperature = c.Temperature
	}

	req := openai.ChatCompletionRequest{
		Model:       model,
		Messages:    make([]openai.ChatCompletionMessage, 0, len(messages)),
		Temperature: temperature,
	}
	if params.MaxTokens > 0 {
		req.MaxCompletionTokens = params.MaxTokens
	}
	for _, m := range messages {
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}
	return req
}

type chatStream struct {
	stream *openai.ChatCompletionStream
}

// Recv returns the next content delta. Chunks without content (role headers,
// finish markers) come back as empty strings.
func (s *chatStream) Recv() (string, error) {
	resp, err := s.stream.Recv()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return "", io.EOF
		}
		return "", fmt.Errorf("failed to read chat stream: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Delta.Content, nil
}

func (s *chatStream) Close() error {
	return s.stream.Close()
}
