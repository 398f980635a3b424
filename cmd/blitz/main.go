package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/liquidationblitz/backend/config"
	"github.com/liquidationblitz/backend/internal/infrastructure/excel"
	"github.com/liquidationblitz/backend/internal/infrastructure/pdf"
	"github.com/liquidationblitz/backend/internal/infrastructure/s3"
	"github.com/liquidationblitz/backend/internal/usecase"
)

func main() {
	markup := flag.Float64("markup", 0, "markup percentage added to the batch price (e.g. 25 for 25%)")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] <batch.xlsx>\n\nProcesses one liquidation batch spreadsheet and prints the published\nPDF report URL and catalog URL.\n\nFlags:\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()
	store, err := s3.NewStore(ctx, s3.Config{
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

	result, err := batchService.ProcessFile(ctx, flag.Arg(0), *markup)
	if err != nil {
		log.Fatalf("Batch processing failed: %v", err)
	}

	fmt.Printf("Batch #%s processed successfully\n", result.LotNumber)
	fmt.Printf("  Category:    %s\n", result.Category)
	fmt.Printf("  Units:       %d\n", result.Units)
	fmt.Printf("  Base price:  $%.2f\n", result.BasePrice)
	fmt.Printf("  Markup:      %.1f%%\n", result.MarkupPct)
	fmt.Printf("  Final price: $%.2f\n", result.FinalPrice)
	fmt.Printf("PDF URL:     %s\n", result.PDFURL)
	fmt.Printf("Catalog URL: %s\n", result.CatalogURL)
}

func init() {
	log.SetFlags(log.Ldate | log.Ltime)
	log.SetOutput(os.Stderr)
}
