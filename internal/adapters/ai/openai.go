package ai

import (
	"context"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"golang.org/x/time/rate"

	"fincoach/pkg/errors"
	"fincoach/pkg/logger"
)

// Ensure OpenAIClient implements CompletionClient
var _ CompletionClient = (*OpenAIClient)(nil)

// OpenAIClient generates chat completions using the official OpenAI Go SDK
type OpenAIClient struct {
	client      openai.Client // NewClient returns Client (not *Client)
	model       openai.ChatModel
	temperature float64
	maxTokens   int
	timeout     time.Duration
	limiter     *rate.Limiter
	log         *logger.Logger
}

// NewOpenAIClient creates a new OpenAI completion client.
// reqPerMinute bounds outbound calls so parallel agents cannot blow
// through the provider quota.
func NewOpenAIClient(apiKey, model string, temperature float64, maxTokens int, timeout time.Duration, reqPerMinute int) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "openai API key is required")
	}

	if model == "" {
		model = openai.ChatModelGPT4oMini
	}
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	if reqPerMinute <= 0 {
		reqPerMinute = 60
	}

	client := openai.NewClient(
		option.WithAPIKey(apiKey),
	)

	burst := reqPerMinute / 10
	if burst < 1 {
		burst = 1
	}

	return &OpenAIClient{
		client:      client,
		model:       openai.ChatModel(model),
		temperature: temperature,
		maxTokens:   maxTokens,
		timeout:     timeout,
		limiter:     rate.NewLimiter(rate.Limit(float64(reqPerMinute)/60.0), burst),
		log:         logger.Get().With("component", "openai_chat", "model", model),
	}, nil
}

// Complete sends a chat completion request and returns the first choice.
func (c *OpenAIClient) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	if req.Prompt == "" {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "prompt cannot be empty")
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, errors.Wrap(err, "rate limiter wait")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}
	messages = append(messages, openai.UserMessage(req.Prompt))

	temperature := c.temperature
	if req.Temperature > 0 {
		temperature = req.Temperature
	}
	maxTokens := c.maxTokens
	if req.MaxTokens > 0 {
		maxTokens = req.MaxTokens
	}

	response, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       c.model,
		Messages:    messages,
		Temperature: openai.Float(temperature),
		MaxTokens:   openai.Int(int64(maxTokens)),
	})
	if err != nil {
		return nil, errors.Wrap(err, "openai API call failed")
	}

	if len(response.Choices) == 0 {
		return nil, errors.Wrapf(errors.ErrInternal, "no completion choices returned")
	}

	c.log.Debugw("Generated completion",
		"prompt_length", len(req.Prompt),
		"tokens_used", response.Usage.TotalTokens)

	return &CompletionResponse{
		Text:       response.Choices[0].Message.Content,
		TokensUsed: int(response.Usage.TotalTokens),
		Model:      string(c.model),
	}, nil
}

// Model returns the configured model name
func (c *OpenAIClient) Model() string {
	return string(c.model)
}
