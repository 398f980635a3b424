package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/liquidationblitz/backend/config"
	httpDelivery "github.com/liquidationblitz/backend/internal/delivery/http"
	"github.com/liquidationblitz/backend/internal/infrastructure/cache"
	"github.com/liquidationblitz/backend/internal/infrastructure/excel"
	"github.com/liquidationblitz/backend/internal/infrastructure/pdf"
	"github.com/liquidationblitz/backend/internal/infrastructure/s3"
	"github.com/liquidationblitz/backend/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting Liquidation Blitz Backend v1.0.0")
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Port: %s", cfg.Server.Port)
	log.Printf("Catalog: s3://%s/%s", cfg.AWS.CatalogBucket, cfg.CatalogKey())

	// Initialize infrastructure dependencies
	store, err := s3.NewStore(context.Background(), s3.Config{
		Region:           cfg.AWS.Region,
		AccessKeyID:      cfg.AWS.AccessKeyID,
		SecretAccessKey:  cfg.AWS.SecretAccessKey,
		CatalogBucket:    cfg.AWS.CatalogBucket,
		PDFBucket:        cfg.AWS.PDFBucket,
		ImageBucket:      cfg.AWS.ImageBucket,
		CatalogKey:       cfg.CatalogKey(),
		PDFPrefix:        cfg.AWS.PDFPrefix,
		ImagePrefix:      cfg.AWS.ImagePrefix,
		ImageConcurrency: cfg.Images.Concurrency,
		ImageRatePerSec:  cfg.Images.RatePerSec,
	})
	if err != nil {
		log.Fatalf("Failed to initialize S3 store: %v", err)
	}

	memoryCache := cache.NewMemoryCache()
	log.Printf("Cache TTL: %s", cfg.Cache.TTL)

	// Initialize usecase layer
	aggregator := usecase.NewAggregator(usecase.AggregatorConfig{
		CategoryMapping: cfg.Catalog.CategoryMapping,
		DefaultCategory: cfg.Catalog.DefaultCategory,
	})
	syncService := usecase.NewSyncService(store, aggregator)
	batchService := usecase.NewBatchService(
		excel.NewParser(),
		store,
		pdf.NewRenderer(),
		store,
		syncService,
		usecase.BatchServiceConfig{OutputDir: cfg.Catalog.OutputDir},
	)

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(batchService, syncService, memoryCache, cfg.Cache.TTL)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Server listening on %s", addr)

	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func init() {
	// Set log flags for better debugging
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}
