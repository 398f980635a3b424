package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) (interface{}, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// CatalogStore defines the interface to the remotely stored catalog file.
// Load returns an empty snapshot when no remote catalog exists yet; callers
// never have to special-case a first run. Save replaces the remote catalog
// wholesale and returns its public URL.
type CatalogStore interface {
	Load(ctx context.Context) (CatalogSnapshot, error)
	Save(ctx context.Context, snapshot CatalogSnapshot) (string, error)
}

// ReportPublisher uploads a rendered batch report and returns its public URL
type ReportPublisher interface {
	UploadReport(ctx context.Context, pdfPath, lotNumber string) (string, error)
}

// ImageStore re-hosts source images under our own storage. The result slice is
// aligned with the input; entries that could not be mirrored keep the source URL.
type ImageStore interface {
	MirrorImages(ctx context.Context, urls []string, lotNumber string) ([]string, error)
}

// BatchParser turns a spreadsheet file into a Batch
type BatchParser interface {
	ParseFile(path string) (*Batch, error)
}

// ReportRenderer writes a PDF report for a batch to the given path
type ReportRenderer interface {
	RenderReport(batch *Batch, outPath string) error
}
