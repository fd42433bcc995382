package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"

	"blog-generator/internal/usecase"
)

const (
	correlationHeader = "X-Correlation-Id"
	completedMessage  = "Blog generation completed"
)

type Generator interface {
	Generate(ctx context.Context, in usecase.GenerateInput) (usecase.GenerateOutput, error)
}

type generateRequest struct {
	BlogTopic *string `json:"blog_topic"`
}

type generateResponse struct {
	Message   string `json:"message"`
	Generated bool   `json:"generated"`
	Stored    bool   `json:"stored"`
	Key       string `json:"key,omitempty"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type Handler struct {
	generator Generator
	logger    *slog.Logger
}

func NewHandler(g Generator, logger *slog.Logger) (*Handler, error) {
	if g == nil {
		return nil, errors.New("handler: generator must not be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{generator: g, logger: logger}, nil
}

// Handle serves one API Gateway proxy request. Every outcome, including a
// failed request, is reported as an HTTP response and never as a Lambda error.
func (h *Handler) Handle(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	corrID := correlationID(event.Headers)
	logger := h.logger.With("correlation_id", corrID)

	topic, err := parseTopic(event)
	if err != nil {
		logger.WarnContext(ctx, "invalid request body", "err", err)
		return errorResult(corrID, usecase.ErrorInvalidInput, err), nil
	}

	out, err := h.generator.Generate(ctx, usecase.GenerateInput{Topic: topic})
	if err != nil {
		code := usecase.ErrorInternal
		var ucErr *usecase.Error
		if errors.As(err, &ucErr) {
			code = ucErr.Code
		}
		logger.ErrorContext(ctx, "blog generation request failed", "code", code, "err", err)
		return errorResult(corrID, code, err), nil
	}
	if !out.Generated {
		logger.InfoContext(ctx, "no blog generated")
	}

	return jsonResult(http.StatusOK, corrID, generateResponse{
		Message:   completedMessage,
		Generated: out.Generated,
		Stored:    out.Stored,
		Key:       out.Key,
	}), nil
}

func parseTopic(event events.APIGatewayProxyRequest) (string, error) {
	body := event.Body
	if event.IsBase64Encoded {
		raw, err := base64.StdEncoding.DecodeString(body)
		if err != nil {
			return "", fmt.Errorf("decode base64 body: %w", err)
		}
		body = string(raw)
	}
	var req generateRequest
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		return "", fmt.Errorf("decode body: %w", err)
	}
	if req.BlogTopic == nil {
		return "", errors.New("missing blog_topic")
	}
	return *req.BlogTopic, nil
}

func correlationID(headers map[string]string) string {
	for k, v := range headers {
		if strings.EqualFold(k, correlationHeader) && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return newCorrelationID()
}

var newCorrelationID = func() string {
	return uuid.NewString()
}

func errorResult(corrID string, code usecase.ErrorCode, err error) events.APIGatewayProxyResponse {
	return jsonResult(http.StatusInternalServerError, corrID, errorResponse{
		Error:   string(code),
		Message: "Error: " + err.Error(),
	})
}

func jsonResult(status int, corrID string, payload any) events.APIGatewayProxyResponse {
	body, err := json.Marshal(payload)
	if err != nil {
		status = http.StatusInternalServerError
		body = []byte(`{"error":"INTERNAL_ERROR","message":"Error: encode response"}`)
	}
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers: map[string]string{
			"Content-Type":    "application/json",
			correlationHeader: corrID,
		},
		Body: string(body),
	}
}
