package quotes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// ErrNoQuotes 远端没有返回可用语录
// ErrNoQuotes is returned when the remote reply holds no usable quote
var ErrNoQuotes = errors.New("no quotes in response")

// RemoteConfig 远端语录源配置
// RemoteConfig configures an OpenAI-compatible quote source
type RemoteConfig struct {
	BaseURL   string
	APIKey    string
	Model     string
	TimeoutMS int
}

// RemoteSource 通过 chat completion 生成语录
// RemoteSource asks an OpenAI-compatible endpoint for fresh quotes
type RemoteSource struct {
	client *openai.Client
	model  string
}

func NewRemoteSource(cfg RemoteConfig) *RemoteSource {
	config := openai.DefaultConfig(cfg.APIKey)
	if base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"); base != "" {
		config.BaseURL = base
	}
	httpClient := &http.Client{}
	if cfg.TimeoutMS > 0 {
		httpClient.Timeout = time.Duration(cfg.TimeoutMS) * time.Millisecond
	}
	config.HTTPClient = httpClient

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = openai.GPT4oMini
	}
	return &RemoteSource{client: openai.NewClientWithConfig(config), model: model}
}

const systemPrompt = "You supply short motivational quotes for a focus timer. " +
	"Reply with only a JSON array of objects with \"text\" and \"author\" fields."

// Fetch 拉取 n 条语录 / Fetch requests n quotes
func (s *RemoteSource) Fetch(ctx context.Context, n int) ([]Quote, error) {
	if n <= 0 {
		n = 5
	}
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf("Give me %d quotes.", n)},
		},
		Temperature: 0.9,
	})
	if err != nil {
		return nil, fmt.Errorf("fetch quotes: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, ErrNoQuotes
	}
	out := parseQuotes(resp.Choices[0].Message.Content)
	if len(out) == 0 {
		return nil, ErrNoQuotes
	}
	if len(out) > n {
		out = out[:n]
	}
	return out, nil
}

// parseQuotes 优先解析 JSON，失败时按行解析 "text - author"
// parseQuotes accepts a JSON array, optionally fenced, or one quote per line
func parseQuotes(content string) []Quote {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(strings.TrimSpace(content), "```")
		content = strings.TrimSpace(content)
	}

	var parsed []Quote
	if err := json.Unmarshal([]byte(content), &parsed); err == nil {
		return cleanQuotes(parsed)
	}

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "-*0123456789.) "))
		line = strings.Trim(line, "\"")
		if line == "" {
			continue
		}
		q := Quote{Text: line}
		for _, sep := range []string{" — ", " – ", " - "} {
			if i := strings.LastIndex(line, sep); i > 0 {
				q.Text = strings.Trim(strings.TrimSpace(line[:i]), "\"")
				q.Author = strings.TrimSpace(line[i+len(sep):])
				break
			}
		}
		parsed = append(parsed, q)
	}
	return cleanQuotes(parsed)
}

func cleanQuotes(in []Quote) []Quote {
	out := make([]Quote, 0, len(in))
	for _, q := range in {
		q.Text = strings.TrimSpace(q.Text)
		q.Author = strings.TrimSpace(q.Author)
		if q.Text != "" {
			out = append(out, q)
		}
	}
	return out
}
