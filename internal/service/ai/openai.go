package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIOptions configure the Responses API generator.
type OpenAIOptions struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// OpenAIGenerator calls the OpenAI Responses API.
type OpenAIGenerator struct {
	client *openai.Client
}

// NewOpenAIGenerator creates a generator with SDK retries disabled; every
// failure is reported once to the caller.
func NewOpenAIGenerator(optFns ...func(o *OpenAIOptions)) *OpenAIGenerator {
	var opts OpenAIOptions
	for _, fn := range optFns {
		fn(&opts)
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(opts.APIKey),
		option.WithMaxRetries(0),
	}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
	}
	if opts.Timeout > 0 {
		reqOpts = append(reqOpts, option.WithRequestTimeout(opts.Timeout))
	}

	client := openai.NewClient(reqOpts...)
	return NewOpenAIGeneratorFromClient(&client)
}

// NewOpenAIGeneratorFromClient wraps an existing client.
func NewOpenAIGeneratorFromClient(client *openai.Client) *OpenAIGenerator {
	return &OpenAIGenerator{client: client}
}

type responsesInput struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responsesRequest struct {
	Model string           `json:"model"`
	Input []responsesInput `json:"input"`
	Tools []Tool           `json:"tools,omitempty"`
}

// Generate posts the request to /responses and returns the raw payload.
func (g *OpenAIGenerator) Generate(ctx context.Context, req *Request) (*Reply, error) {
	body := responsesRequest{
		Model: req.Model,
		Input: make([]responsesInput, 0, len(req.Messages)),
		Tools: req.Tools,
	}
	for _, msg := range req.Messages {
		body.Input = append(body.Input, responsesInput{Role: string(msg.Role), Content: msg.Content})
	}

	var raw json.RawMessage
	if err := g.client.Post(ctx, "responses", body, &raw); err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return nil, &UpstreamError{
				StatusCode: apiErr.StatusCode,
				Details:    DecodeDetails(apiErr.RawJSON()),
				Err:        err,
			}
		}
		return nil, &UpstreamError{Details: err.Error(), Err: err}
	}

	return NewReply(raw, http.StatusOK)
}
