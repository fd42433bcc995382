package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsbedrock "github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"

	"blog-generator/handler"
	"blog-generator/internal/config"
	"blog-generator/internal/integrations/bedrock"
	"blog-generator/internal/integrations/paramstore"
	"blog-generator/internal/repository"
	"blog-generator/internal/storage"
	"blog-generator/internal/usecase"
)

func main() {
	ctx := context.Background()

	// ---- Configuration (read only here) ----
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	level, _ := cfg.SlogLevel()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	// ---- AWS SDK config ----
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		logger.Error("failed to load AWS config", "err", err)
		os.Exit(1)
	}

	// ---- Clients ----
	runtime := awsbedrock.NewFromConfig(awsCfg, func(o *awsbedrock.Options) {
		o.Region = cfg.BedrockRegion
		o.RetryMaxAttempts = cfg.MaxAttempts
		o.HTTPClient = awshttp.NewBuildableClient().WithTimeout(cfg.ReadTimeout)
	})
	generator, err := bedrock.NewClient(runtime, bedrock.WithSampling(bedrock.Sampling{
		MaxGenLen:   cfg.MaxGenLen,
		Temperature: cfg.Temperature,
		TopP:        cfg.TopP,
	}))
	if err != nil {
		logger.Error("failed to create Bedrock client", "err", err)
		os.Exit(1)
	}

	store, err := storage.New(awss3.NewFromConfig(awsCfg), cfg.Bucket)
	if err != nil {
		logger.Error("failed to create storage client", "err", err)
		os.Exit(1)
	}

	opts := []usecase.Option{usecase.WithLogger(logger)}
	if cfg.ParamPrefix != "" {
		params, err := paramstore.New(awsssm.NewFromConfig(awsCfg))
		if err != nil {
			logger.Error("failed to create SSM client", "err", err)
			os.Exit(1)
		}
		opts = append(opts, usecase.WithParams(params))
	}
	if cfg.IndexTable != "" {
		index, err := repository.New(awsdynamodb.NewFromConfig(awsCfg), cfg.IndexTable)
		if err != nil {
			logger.Error("failed to create index client", "err", err)
			os.Exit(1)
		}
		opts = append(opts, usecase.WithIndex(index))
	}

	// ---- Handler ----
	blogService, err := usecase.NewBlogService(generator, store, usecase.Config{
		ModelID:        cfg.ModelID,
		Bucket:         store.Bucket(),
		KeyPrefix:      cfg.KeyPrefix,
		MaxTopicLength: cfg.MaxTopicLength,
		ParamPrefix:    cfg.ParamPrefix,
	}, opts...)
	if err != nil {
		logger.Error("failed to create blog service", "err", err)
		os.Exit(1)
	}

	h, err := handler.NewHandler(blogService, logger)
	if err != nil {
		logger.Error("failed to create handler", "err", err)
		os.Exit(1)
	}

	lambda.Start(h.Handle)
}
