package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/maggie-r-m-88/commonscapes/internal/config"
	"github.com/maggie-r-m-88/commonscapes/internal/logger"
	"github.com/maggie-r-m-88/commonscapes/internal/repository"
	"github.com/maggie-r-m-88/commonscapes/internal/service"
)

func main() {
	var (
		job        = flag.String("job", "", "job to run: seed-categories | normalize-tags | backfill-category-vectors | backfill-image-vectors")
		configPath = flag.String("config", os.Getenv("CONFIG_PATH"), "path to config file")
	)
	flag.Parse()

	if *job == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger := logger.New(&logger.Config{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		ServiceName: "commonscapes-worker",
		LogFile:     cfg.Log.File,
	})
	logger.SetDefaultLogger(appLogger)

	db, err := repository.InitDB(&cfg.Database)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize database")
	}

	imageRepo := repository.NewImageRepository(db)
	tagRepo := repository.NewTagRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)

	chatService := service.NewChatService(&service.ChatConfig{
		APIKey:      cfg.OpenAI.APIKey,
		BaseURL:     cfg.OpenAI.BaseURL,
		Model:       cfg.OpenAI.TagModel,
		Temperature: cfg.OpenAI.Temperature,
	})
	tagService := service.NewTagService(chatService, &service.TagServiceConfig{
		MaxRetries:    cfg.Import.MaxRetries,
		RetryInterval: cfg.Import.RetryInterval,
	})
	embeddingService := service.NewEmbeddingService(&service.EmbeddingConfig{
		APIKey:        cfg.OpenAI.APIKey,
		BaseURL:       cfg.OpenAI.BaseURL,
		Model:         cfg.Embedding.Model,
		Dimensions:    cfg.Embedding.Dimensions,
		MaxRetries:    cfg.Import.MaxRetries,
		RetryInterval: cfg.Import.RetryInterval,
	})

	// Cancel the run on SIGINT/SIGTERM so a half-finished walk can resume
	// cleanly next time.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ctx = logger.WithField(ctx, logger.FieldJobID, *job)

	switch *job {
	case "seed-categories":
		inserted, err := service.SeedCategories(ctx, categoryRepo)
		if err != nil {
			appLogger.WithError(err).Fatal("Seeding categories failed")
		}
		logger.CtxInfo(ctx, "Seeding complete: inserted=%d", inserted)

	case "normalize-tags":
		normalizer := service.NewTagNormalizer(tagRepo, tagService, &service.TagNormalizerConfig{
			PageSize:  cfg.Normalizer.PageSize,
			BatchSize: cfg.Normalizer.BatchSize,
			RateLimit: cfg.Normalizer.RateLimit,
		})
		processed, err := normalizer.Run(ctx)
		if err != nil {
			appLogger.WithError(err).Fatal("Tag normalization failed")
		}
		logger.CtxInfo(ctx, "Tag normalization complete: processed=%d", processed)

	case "backfill-category-vectors":
		backfill := service.NewVectorBackfill(categoryRepo, imageRepo, tagRepo, embeddingService, &service.VectorBackfillConfig{
			RateLimit: cfg.Backfill.RateLimit,
		})
		done, failures, err := backfill.RunCategories(ctx)
		if err != nil {
			appLogger.WithError(err).Fatal("Category backfill failed")
		}
		logger.CtxInfo(ctx, "Category backfill complete: embedded=%d failed=%d", done, len(failures))

	case "backfill-image-vectors":
		backfill := service.NewVectorBackfill(categoryRepo, imageRepo, tagRepo, embeddingService, &service.VectorBackfillConfig{
			RateLimit: cfg.Backfill.RateLimit,
		})
		done, failures, err := backfill.RunImages(ctx)
		if err != nil {
			appLogger.WithError(err).Fatal("Image backfill failed")
		}
		logger.CtxInfo(ctx, "Image backfill complete: embedded=%d failed=%d", done, len(failures))

	default:
		fmt.Fprintf(os.Stderr, "Unknown job: %s\n", *job)
		flag.Usage()
		os.Exit(2)
	}
}
