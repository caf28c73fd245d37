package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/maggie-r-m-88/commonscapes/internal/api"
	"github.com/maggie-r-m-88/commonscapes/internal/config"
	"github.com/maggie-r-m-88/commonscapes/internal/logger"
	"github.com/maggie-r-m-88/commonscapes/internal/repository"
	"github.com/maggie-r-m-88/commonscapes/internal/service"
	"github.com/maggie-r-m-88/commonscapes/internal/source/wikimedia"
)

func main() {
	// Support CONFIG_PATH environment variable for production deployments
	configPath := os.Getenv("CONFIG_PATH")
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger := logger.New(&logger.Config{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		ServiceName: "commonscapes-api",
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

	commonsClient := wikimedia.NewClient(&wikimedia.ClientConfig{
		APIEndpoint: cfg.Wikimedia.APIEndpoint,
	})

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

	importService := service.NewImportService(
		commonsClient,
		imageRepo,
		tagRepo,
		tagService,
		embeddingService,
		&service.ImportServiceConfig{
			PromptVersion: cfg.Import.PromptVersion,
		},
	)

	searchService := service.NewSearchService(
		imageRepo,
		categoryRepo,
		embeddingService,
		&service.SearchServiceConfig{
			DefaultPageSize:   cfg.Search.DefaultPageSize,
			CategoryThreshold: cfg.Search.CategoryThreshold,
			RelatedCount:      cfg.Search.RelatedCount,
			TaxonomyCount:     cfg.Search.TaxonomyCount,
			ThumbWidth:        cfg.Search.ThumbWidth,
			HeroWidth:         cfg.Search.HeroWidth,
		},
	)

	router := api.SetupRouter(importService, searchService, appLogger, &cfg.Server)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		appLogger.WithFields(logger.Fields{
			"port": cfg.Server.Port,
			"mode": cfg.Server.Mode,
		}).Info("Starting API server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.WithError(err).Fatal("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.WithError(err).Fatal("Server forced to shutdown")
	}

	appLogger.Info("Server exited")
}
