package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"carechat-backend/internal/llm"
	"carechat-backend/internal/models"
)

const (
	defaultModel   = "gemini-2.5-flash"
	defaultTimeout = 60 * time.Second
)

// Compile-time check to ensure Client implements llm.Client
var _ llm.Client = (*Client)(nil)

// Client calls the Gemini API through the official genai SDK.
type Client struct {
	models  *genai.Models
	model   string
	timeout time.Duration
}

type Config struct {
	APIKey  string
	Model   string
	Timeout time.Duration
}

func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("gemini: api key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{models: client.Models, model: model, timeout: timeout}, nil
}

func (c *Client) Complete(ctx context.Context, messages []models.Message) (string, error) {
	contents, systemInstruction, err := buildContents(messages)
	if err != nil {
		return "", err
	}

	callCtx, cancel := c.withTimeout(ctx)
	defer cancel()

	resp, err := c.models.GenerateContent(callCtx, c.model, contents, &genai.GenerateContentConfig{
		SystemInstruction: systemInstruction,
	})
	if err != nil {
		return "", fmt.Errorf("gemini: generate content: %w", err)
	}

	text := extractText(resp)
	if text == "" {
		return "", errors.New("gemini: empty completion")
	}
	return text, nil
}

// buildContents maps role-tagged messages onto the genai request shape.
// System entries are folded into a single SystemInstruction rather than
// sent as conversation turns.
func buildContents(messages []models.Message) ([]*genai.Content, *genai.Content, error) {
	contents := make([]*genai.Content, 0, len(messages))
	systemParts := make([]string, 0, 1)

	for _, msg := range messages {
		switch msg.Role {
		case models.RoleSystem:
			if content := strings.TrimSpace(msg.Content); content != "" {
				systemParts = append(systemParts, content)
			}
		case models.RoleAssistant:
			contents = append(contents, &genai.Content{
				Role:  genai.RoleModel,
				Parts: []*genai.Part{{Text: msg.Content}},
			})
		default:
			contents = append(contents, &genai.Content{
				Role:  genai.RoleUser,
				Parts: []*genai.Part{{Text: msg.Content}},
			})
		}
	}
	if len(contents) == 0 {
		return nil, nil, errors.New("gemini: at least one user or assistant message is required")
	}

	var systemInstruction *genai.Content
	if len(systemParts) > 0 {
		systemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: strings.Join(systemParts, "\n\n")}},
		}
	}
	return contents, systemInstruction, nil
}

func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var sb strings.Builder
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part == nil || part.Thought {
				continue
			}
			sb.WriteString(part.Text)
		}
	}
	return strings.TrimSpace(sb.String())
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.timeout)
}
