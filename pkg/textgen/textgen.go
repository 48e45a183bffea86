// Package textgen wraps an OpenAI-compatible chat endpoint behind a
// single Generate call. The defaults point at a local Ollama server so
// the companion keeps working without any cloud account; any endpoint
// speaking the same protocol works.
package textgen

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	openaimodel "github.com/cloudwego/eino-ext/components/model/openai"
	einomodel "github.com/cloudwego/eino/components/model"
	einoprompt "github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

type Config struct {
	BaseURL            string        `envconfig:"BASE_URL" split_words:"true" default:"http://127.0.0.1:11434/v1"`
	APIKey             string        `envconfig:"API_KEY" split_words:"true" default:"ollama"`
	Model              string        `envconfig:"MODEL" split_words:"true" default:"llama3.2"`
	MaxCompletionToken *int          `envconfig:"MAX_COMPLETION_TOKEN" split_words:"true" default:"400"`
	Temperature        float32       `envconfig:"TEMPERATURE" split_words:"true" default:"0.4"`
	Timeout            time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"30s"`
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.BaseURL) == "" {
		return errors.New("textgen: base url is required")
	}
	if strings.TrimSpace(c.Model) == "" {
		return errors.New("textgen: model name is required")
	}
	return nil
}

func (c Config) newChatModel(ctx context.Context) (einomodel.ToolCallingChatModel, error) {
	conf := &openaimodel.ChatModelConfig{
		BaseURL:     strings.TrimRight(c.BaseURL, "/"),
		APIKey:      strings.TrimSpace(c.APIKey),
		Model:       strings.TrimSpace(c.Model),
		MaxTokens:   c.MaxCompletionToken,
		Temperature: &c.Temperature,
		Timeout:     c.Timeout,
	}

	m, err := openaimodel.NewChatModel(ctx, conf)
	if err != nil {
		return nil, fmt.Errorf("textgen: create chat model: %w", err)
	}
	return m, nil
}

// Client runs single-turn completions through a compiled prompt+model
// graph and keeps a raw SDK client around for endpoint probes.
type Client struct {
	cfg    Config
	runner compose.Runnable[map[string]any, *schema.Message]
	api    *openaisdk.Client
}

func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	chatModel, err := cfg.newChatModel(ctx)
	if err != nil {
		return nil, err
	}
	runner, err := compileGenerateGraph(ctx, chatModel)
	if err != nil {
		return nil, err
	}

	return &Client{
		cfg:    cfg,
		runner: runner,
		api:    newAPIClient(cfg),
	}, nil
}

// Generate fills the prompt template with the system and user turns and
// invokes the model once. An empty completion is reported as an error so
// callers can fall back deterministically.
func (c *Client) Generate(ctx context.Context, system, user string) (string, error) {
	out, err := c.runner.Invoke(ctx, map[string]any{
		"system": system,
		"query":  user,
	})
	if err != nil {
		return "", fmt.Errorf("textgen: invoke model: %w", err)
	}
	if out == nil {
		return "", errors.New("textgen: model returned no message")
	}

	text := strings.TrimSpace(out.Content)
	if text == "" {
		return "", errors.New("textgen: model returned an empty completion")
	}
	return text, nil
}

// Probe verifies the endpoint answers and serves at least one model.
func (c *Client) Probe(ctx context.Context) error {
	page, err := c.api.Models.List(ctx)
	if err != nil {
		return fmt.Errorf("textgen: model endpoint unreachable: %w", err)
	}
	if page == nil || len(page.Data) == 0 {
		return errors.New("textgen: model endpoint lists no models")
	}
	return nil
}

func compileGenerateGraph(
	ctx context.Context,
	chatModel einomodel.BaseChatModel,
) (compose.Runnable[map[string]any, *schema.Message], error) {
	template := einoprompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.UserMessage("{query}"),
	)

	graph := compose.NewGraph[map[string]any, *schema.Message]()
	if err := graph.AddChatTemplateNode("prompt", template); err != nil {
		return nil, fmt.Errorf("add generate prompt node: %w", err)
	}
	if err := graph.AddChatModelNode("model", chatModel); err != nil {
		return nil, fmt.Errorf("add generate model node: %w", err)
	}
	if err := graph.AddEdge(compose.START, "prompt"); err != nil {
		return nil, fmt.Errorf("add generate edge start->prompt: %w", err)
	}
	if err := graph.AddEdge("prompt", "model"); err != nil {
		return nil, fmt.Errorf("add generate edge prompt->model: %w", err)
	}
	if err := graph.AddEdge("model", compose.END); err != nil {
		return nil, fmt.Errorf("add generate edge model->end: %w", err)
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("textgen.generate"))
	if err != nil {
		return nil, fmt.Errorf("compile generate graph: %w", err)
	}
	return runner, nil
}

func newAPIClient(cfg Config) *openaisdk.Client {
	opts := []option.RequestOption{
		option.WithAPIKey(strings.TrimSpace(cfg.APIKey)),
	}
	if trimmed := strings.TrimRight(cfg.BaseURL, "/"); trimmed != "" {
		opts = append(opts, option.WithBaseURL(trimmed))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}

	client := openaisdk.NewClient(opts...)
	return &client
}
