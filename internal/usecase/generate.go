package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"blog-generator/internal/domain"
	"blog-generator/internal/storage"
)

const (
	defaultMaxTopic    = 200
	defaultKeyPrefix   = "blog_output"
	modelIDParamSuffix = "/config/model_id"
)

type ParamLookup interface {
	Lookup(ctx context.Context, name string) (string, bool, error)
}

type TextGenerator interface {
	Generate(ctx context.Context, modelID, prompt string) (string, error)
}

type ObjectWriter interface {
	Put(ctx context.Context, key, body string) error
}

type PostIndex interface {
	Record(ctx context.Context, post domain.Post, bucket, key string) error
}

// Config holds the fixed settings of a BlogService.
type Config struct {
	ModelID        string
	Bucket         string
	KeyPrefix      string
	MaxTopicLength int
	// ParamPrefix enables the SSM model override when non-empty.
	ParamPrefix string
}

type BlogService struct {
	llm    TextGenerator
	store  ObjectWriter
	params ParamLookup
	index  PostIndex
	cfg    Config
	logger *slog.Logger

	modelMu     sync.Mutex
	modelLoaded bool
	modelID     string
}

type GenerateInput struct {
	Topic string
}

type GenerateOutput struct {
	// Generated is false when the model produced nothing; nothing is stored then.
	Generated bool
	Stored    bool
	Key       string
}

type Option func(*BlogService)

// WithParams enables the model override read from cfg.ParamPrefix.
func WithParams(p ParamLookup) Option {
	return func(s *BlogService) {
		s.params = p
	}
}

// WithIndex records every stored post in idx.
func WithIndex(idx PostIndex) Option {
	return func(s *BlogService) {
		s.index = idx
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *BlogService) {
		s.logger = l
	}
}

func NewBlogService(llm TextGenerator, store ObjectWriter, cfg Config, opts ...Option) (*BlogService, error) {
	if llm == nil {
		return nil, errors.New("usecase: text generator must not be nil")
	}
	if store == nil {
		return nil, errors.New("usecase: object writer must not be nil")
	}
	cfg.ModelID = strings.TrimSpace(cfg.ModelID)
	if cfg.ModelID == "" {
		return nil, errors.New("usecase: model id must not be empty")
	}
	cfg.KeyPrefix = strings.Trim(strings.TrimSpace(cfg.KeyPrefix), "/")
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = defaultKeyPrefix
	}
	if cfg.MaxTopicLength <= 0 {
		cfg.MaxTopicLength = defaultMaxTopic
	}
	cfg.ParamPrefix = strings.TrimRight(strings.TrimSpace(cfg.ParamPrefix), "/")

	s := &BlogService{llm: llm, store: store, cfg: cfg}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.params != nil && cfg.ParamPrefix == "" {
		return nil, errors.New("usecase: parameter prefix must not be empty when params are set")
	}
	return s, nil
}

// Generate asks the model for a post on in.Topic and stores it. Generation,
// storage and index failures are logged and reported through the output, not
// returned; only invalid input and config load failures are errors.
func (s *BlogService) Generate(ctx context.Context, in GenerateInput) (GenerateOutput, error) {
	topic := strings.TrimSpace(in.Topic)
	if topic == "" {
		return GenerateOutput{}, newError(ErrorInvalidInput, "empty_topic", nil)
	}
	if utf8.RuneCountInString(topic) > s.cfg.MaxTopicLength {
		return GenerateOutput{}, newError(ErrorInvalidInput, "topic_too_long", nil)
	}

	modelID, err := s.resolveModelID(ctx)
	if err != nil {
		return GenerateOutput{}, newError(ErrorInternal, "ssm_load_error", err)
	}

	body, err := s.llm.Generate(ctx, modelID, buildBlogPrompt(topic))
	if err != nil {
		s.logger.ErrorContext(ctx, "error generating blog", "model_id", modelID, "err", err)
		return GenerateOutput{}, nil
	}
	if strings.TrimSpace(body) == "" {
		s.logger.WarnContext(ctx, "no blog generated", "model_id", modelID)
		return GenerateOutput{}, nil
	}

	key := storage.ObjectKey(s.cfg.KeyPrefix, now())
	out := GenerateOutput{Generated: true, Key: key}
	if err := s.store.Put(ctx, key, body); err != nil {
		s.logger.ErrorContext(ctx, "error saving blog to object store", "key", key, "err", err)
		return out, nil
	}
	out.Stored = true
	s.logger.InfoContext(ctx, "blog saved", "bucket", s.cfg.Bucket, "key", key, "length", len(body))

	if s.index != nil {
		post := domain.Post{Topic: topic, ModelID: modelID, Body: body}
		if err := s.index.Record(ctx, post, s.cfg.Bucket, key); err != nil {
			s.logger.ErrorContext(ctx, "error recording blog in index", "key", key, "err", err)
		}
	}
	return out, nil
}

// resolveModelID returns the SSM override when one exists, else the configured
// model. A successful lookup is cached for the life of the process; a failed
// one is retried on the next request.
func (s *BlogService) resolveModelID(ctx context.Context) (string, error) {
	if s.params == nil {
		return s.cfg.ModelID, nil
	}

	s.modelMu.Lock()
	defer s.modelMu.Unlock()
	if s.modelLoaded {
		return s.modelID, nil
	}

	name := s.cfg.ParamPrefix + modelIDParamSuffix
	v, found, err := s.params.Lookup(ctx, name)
	if err != nil {
		return "", fmt.Errorf("usecase: load model id: %w", err)
	}
	modelID := s.cfg.ModelID
	if v = strings.TrimSpace(v); found && v != "" {
		modelID = v
	}
	s.modelID = modelID
	s.modelLoaded = true
	return modelID, nil
}

var now = time.Now
