package bedrock

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
)

const contentTypeJSON = "application/json"

// invokeModelAPI is the minimal Bedrock Runtime interface required by Client.
// *bedrockruntime.Client from aws-sdk-go-v2 satisfies this interface.
type invokeModelAPI interface {
	InvokeModel(ctx context.Context, in *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

// llamaRequest is the request body accepted by the Meta Llama 2 chat models.
type llamaRequest struct {
	Prompt      string  `json:"prompt"`
	MaxGenLen   int     `json:"max_gen_len"`
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p"`
}

// llamaResponse is the response body returned by the Meta Llama 2 chat models.
type llamaResponse struct {
	Generation           *string `json:"generation"`
	PromptTokenCount     int     `json:"prompt_token_count"`
	GenerationTokenCount int     `json:"generation_token_count"`
	StopReason           string  `json:"stop_reason"`
}

// Sampling holds the fixed inference parameters sent with every request.
type Sampling struct {
	MaxGenLen   int
	Temperature float64
	TopP        float64
}

// DefaultSampling mirrors the parameters the function was tuned with.
var DefaultSampling = Sampling{MaxGenLen: 512, Temperature: 0.7, TopP: 0.9}

// Client generates text through the Bedrock Runtime InvokeModel API.
type Client struct {
	api      invokeModelAPI
	sampling Sampling
}

type Option func(*Client)

func WithSampling(s Sampling) Option {
	return func(c *Client) {
		c.sampling = s
	}
}

// NewClient creates a Client. Timeouts and retry attempts belong to the
// underlying bedrockruntime client.
func NewClient(api invokeModelAPI, opts ...Option) (*Client, error) {
	if api == nil {
		return nil, errors.New("bedrock: api must not be nil")
	}
	c := &Client{api: api, sampling: DefaultSampling}
	for _, opt := range opts {
		opt(c)
	}
	if c.sampling.MaxGenLen <= 0 {
		return nil, errors.New("bedrock: max generation length must be positive")
	}
	return c, nil
}

// Generate sends prompt to modelID and returns the generated text.
func (c *Client) Generate(ctx context.Context, modelID, prompt string) (string, error) {
	modelID = strings.TrimSpace(modelID)
	if modelID == "" {
		return "", errors.New("bedrock: model id must not be empty")
	}

	body, err := json.Marshal(llamaRequest{
		Prompt:      prompt,
		MaxGenLen:   c.sampling.MaxGenLen,
		Temperature: c.sampling.Temperature,
		TopP:        c.sampling.TopP,
	})
	if err != nil {
		return "", fmt.Errorf("bedrock: marshal request: %w", err)
	}

	out, err := c.api.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(modelID),
		Body:        body,
		ContentType: aws.String(contentTypeJSON),
		Accept:      aws.String(contentTypeJSON),
	})
	if err != nil {
		return "", fmt.Errorf("bedrock: invoke model %q: %w", modelID, err)
	}
	if out == nil || len(out.Body) == 0 {
		return "", errors.New("bedrock: empty response body")
	}

	var payload llamaResponse
	if err := json.Unmarshal(out.Body, &payload); err != nil {
		return "", fmt.Errorf("bedrock: decode response: %w", err)
	}
	if payload.Generation == nil {
		return "", errors.New("bedrock: response missing generation")
	}
	generation := strings.TrimSpace(*payload.Generation)
	if generation == "" {
		return "", fmt.Errorf("bedrock: empty generation (stop_reason=%q)", payload.StopReason)
	}
	return generation, nil
}
