package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"carechat-backend/internal/llm"
	"carechat-backend/internal/models"
)

const (
	defaultModel   = "gpt-4o-mini"
	defaultTimeout = 60 * time.Second
)

// Compile-time check to ensure Client implements llm.Client
var _ llm.Client = (*Client)(nil)

// Client calls the OpenAI Chat Completions API.
type Client struct {
	client openai.Client
	model  string
}

type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("openai: api key is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(&http.Client{Timeout: timeout}),
	}
	if baseURL := strings.TrimSpace(cfg.BaseURL); baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModel
	}
	return &Client{client: openai.NewClient(opts...), model: model}, nil
}

func (c *Client) Complete(ctx context.Context, messages []models.Message) (string, error) {
	if len(messages) == 0 {
		return "", errors.New("openai: messages are required")
	}

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(c.model),
		Messages: make([]openai.ChatCompletionMessageParamUnion, 0, len(messages)),
	}
	for _, msg := range messages {
		param, err := toChatMessageParam(msg)
		if err != nil {
			return "", err
		}
		params.Messages = append(params.Messages, param)
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai: chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai: no choices in response")
	}
	return resp.Choices[0].Message.Content, nil
}

func toChatMessageParam(msg models.Message) (openai.ChatCompletionMessageParamUnion, error) {
	switch msg.Role {
	case models.RoleSystem:
		return openai.SystemMessage(msg.Content), nil
	case models.RoleUser:
		return openai.UserMessage(msg.Content), nil
	case models.RoleAssistant:
		return openai.AssistantMessage(msg.Content), nil
	default:
		return openai.ChatCompletionMessageParamUnion{}, fmt.Errorf("openai: unsupported role: %s", msg.Role)
	}
}
