package usecase

import (
	"context"
	"fmt"
	"log"
	"path/filepath"

	"github.com/liquidationblitz/backend/internal/domain"
)

// BatchServiceConfig holds configuration for the batch pipeline
type BatchServiceConfig struct {
	// OutputDir is where rendered PDF reports are written before upload
	OutputDir string
}

// BatchService runs the full per-batch pipeline: parse the spreadsheet,
// mirror item images, render and publish the PDF report, then synchronize
// the catalog. Image and report uploads complete before Synchronize starts,
// since the catalog record needs the finalized report link.
type BatchService struct {
	parser    domain.BatchParser
	images    domain.ImageStore
	renderer  domain.ReportRenderer
	reports   domain.ReportPublisher
	sync      *SyncService
	outputDir string
}

// NewBatchService creates a new batch pipeline service with dependencies
func NewBatchService(
	parser domain.BatchParser,
	images domain.ImageStore,
	renderer domain.ReportRenderer,
	reports domain.ReportPublisher,
	sync *SyncService,
	config BatchServiceConfig,
) *BatchService {
	return &BatchService{
		parser:    parser,
		images:    images,
		renderer:  renderer,
		reports:   reports,
		sync:      sync,
		outputDir: config.OutputDir,
	}
}

// ProcessResult summarizes one completed batch run
type ProcessResult struct {
	LotNumber  string  `json:"lotNumber"`
	Category   string  `json:"category"`
	Units      int     `json:"units"`
	BasePrice  float64 `json:"basePrice"`
	MarkupPct  float64 `json:"markupPct"`
	FinalPrice float64 `json:"finalPrice"`
	PDFURL     string  `json:"pdfUrl"`
	CatalogURL string  `json:"catalogUrl"`
}

// ProcessFile runs the pipeline for one spreadsheet file
func (b *BatchService) ProcessFile(ctx context.Context, path string, markupPct float64) (*ProcessResult, error) {
	log.Printf("[PIPELINE] Parsing %s", path)
	batch, err := b.parser.ParseFile(path)
	if err != nil {
		return nil, err
	}

	return b.ProcessBatch(ctx, batch, markupPct)
}

// ProcessBatch runs the pipeline for an already-parsed batch
func (b *BatchService) ProcessBatch(ctx context.Context, batch *domain.Batch, markupPct float64) (*ProcessResult, error) {
	if batch == nil || len(batch.Items) == 0 {
		return nil, domain.ErrEmptyBatch
	}
	if markupPct < 0 {
		return nil, domain.ErrInvalidMarkup
	}

	lot := batch.Summary.LotNumber
	log.Printf("[PIPELINE] Processing batch #%s (%s, %d items)", lot, batch.Summary.Category, len(batch.Items))

	// Mirror images on a copy; the parsed batch stays immutable
	mirrored := b.mirrorImages(ctx, batch)

	pdfPath := filepath.Join(b.outputDir, fmt.Sprintf("batch_%s.pdf", lot))
	if err := b.renderer.RenderReport(mirrored, pdfPath); err != nil {
		return nil, fmt.Errorf("rendering report for batch %s: %w", lot, err)
	}

	pdfURL, err := b.reports.UploadReport(ctx, pdfPath, lot)
	if err != nil {
		return nil, fmt.Errorf("publishing report for batch %s: %w", lot, err)
	}
	log.Printf("[PIPELINE] Report published: %s", pdfURL)

	snapshot, catalogURL, err := b.sync.Synchronize(ctx, mirrored, markupPct, pdfURL)
	if err != nil {
		return nil, err
	}
	log.Printf("[PIPELINE] Catalog published: %s (%d records)", catalogURL, len(snapshot.Records))

	basePrice := mirrored.TotalValue()
	return &ProcessResult{
		LotNumber:  lot,
		Category:   batch.Summary.Category,
		Units:      batch.Summary.TotalUnits,
		BasePrice:  roundTo2(basePrice),
		MarkupPct:  markupPct,
		FinalPrice: roundTo2(basePrice * (1 + markupPct/100)),
		PDFURL:     pdfURL,
		CatalogURL: catalogURL,
	}, nil
}

// mirrorImages returns a copy of the batch whose item image URLs point at our
// own storage. Mirroring failures keep the source URL; a missing image never
// fails the batch.
func (b *BatchService) mirrorImages(ctx context.Context, batch *domain.Batch) *domain.Batch {
	urls := make([]string, len(batch.Items))
	count := 0
	for i, item := range batch.Items {
		urls[i] = item.ImageURL
		if item.ImageURL != "" {
			count++
		}
	}

	out := &domain.Batch{
		Summary: batch.Summary,
		Items:   make([]domain.LineItem, len(batch.Items)),
	}
	copy(out.Items, batch.Items)

	if count == 0 {
		return out
	}

	log.Printf("[PIPELINE] Mirroring %d images for batch #%s", count, batch.Summary.LotNumber)
	mirrored, err := b.images.MirrorImages(ctx, urls, batch.Summary.LotNumber)
	if err != nil {
		log.Printf("[PIPELINE] Image mirroring failed, keeping source URLs: %v", err)
		return out
	}

	for i := range out.Items {
		if i < len(mirrored) && mirrored[i] != "" {
			out.Items[i].ImageURL = mirrored[i]
		}
	}
	return out
}
