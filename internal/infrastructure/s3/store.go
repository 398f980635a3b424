package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"golang.org/x/time/rate"

	"github.com/liquidationblitz/backend/internal/domain"
)

// Config holds S3 store configuration
type Config struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string

	CatalogBucket string
	PDFBucket     string
	ImageBucket   string

	CatalogKey  string // full key of the catalog file, e.g. "liquidationblitzcatalog.csv"
	PDFPrefix   string // e.g. "pdfs/"
	ImagePrefix string // e.g. "images/"

	// ImageConcurrency bounds parallel image mirroring; ImageRatePerSec
	// throttles source-site downloads
	ImageConcurrency int
	ImageRatePerSec  float64
}

// Store talks to AWS S3 for catalog, PDF report and image objects. Buckets are
// assumed publicly readable via bucket policy, matching the feed use case.
type Store struct {
	client      *awss3.Client
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	config      Config
}

// NewStore creates a new S3 store. When no static credentials are configured,
// the SDK's default credential chain is used.
func NewStore(ctx context.Context, config Config) (*Store, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(config.Region),
	}
	if config.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(config.AccessKeyID, config.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	concurrency := config.ImageConcurrency
	if concurrency <= 0 {
		concurrency = 4
	}
	config.ImageConcurrency = concurrency

	ratePerSec := config.ImageRatePerSec
	if ratePerSec <= 0 {
		ratePerSec = 5
	}

	log.Printf("[S3] Store initialized (region=%s, catalog=%s, pdfs=%s, images=%s)",
		config.Region, config.CatalogBucket, config.PDFBucket, config.ImageBucket)

	return &Store{
		client: awss3.NewFromConfig(awsCfg),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		rateLimiter: rate.NewLimiter(rate.Limit(ratePerSec), concurrency),
		config:      config,
	}, nil
}

// Load fetches the current catalog snapshot. A missing catalog object is not
// an error: the first-ever batch starts from an empty snapshot.
func (s *Store) Load(ctx context.Context) (domain.CatalogSnapshot, error) {
	out, err := s.client.GetObject(ctx, &awss3.GetObjectInput{
		Bucket: aws.String(s.config.CatalogBucket),
		Key:    aws.String(s.config.CatalogKey),
	})
	if err != nil {
		if isNotFound(err) {
			log.Printf("[S3] Catalog %s not found, starting with empty snapshot", s.config.CatalogKey)
			return domain.NewCatalogSnapshot(), nil
		}
		return domain.CatalogSnapshot{}, fmt.Errorf("%w: downloading catalog: %v", domain.ErrStorageFailure, err)
	}
	defer out.Body.Close()

	snapshot, err := DecodeSnapshot(out.Body)
	if err != nil {
		return domain.CatalogSnapshot{}, fmt.Errorf("%w: %v", domain.ErrStorageFailure, err)
	}

	log.Printf("[S3] Loaded catalog with %d records", len(snapshot.Records))
	return snapshot, nil
}

// Save replaces the remote catalog wholesale and returns its public URL
func (s *Store) Save(ctx context.Context, snapshot domain.CatalogSnapshot) (string, error) {
	body, err := EncodeSnapshot(snapshot)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrStorageFailure, err)
	}

	_, err = s.client.PutObject(ctx, &awss3.PutObjectInput{
		Bucket:      aws.String(s.config.CatalogBucket),
		Key:         aws.String(s.config.CatalogKey),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("text/csv"),
	})
	if err != nil {
		return "", fmt.Errorf("%w: uploading catalog: %v", domain.ErrStorageFailure, err)
	}

	url := s.publicURL(s.config.CatalogBucket, s.config.CatalogKey)
	log.Printf("[S3] Catalog uploaded (%d records): %s", len(snapshot.Records), url)
	return url, nil
}

// UploadReport uploads a rendered PDF report and returns its public URL
func (s *Store) UploadReport(ctx context.Context, pdfPath, lotNumber string) (string, error) {
	file, err := os.Open(pdfPath)
	if err != nil {
		return "", fmt.Errorf("opening report %s: %w", pdfPath, err)
	}
	defer file.Close()

	key := fmt.Sprintf("%sbatch-%s.pdf", s.config.PDFPrefix, lotNumber)
	_, err = s.client.PutObject(ctx, &awss3.PutObjectInput{
		Bucket:      aws.String(s.config.PDFBucket),
		Key:         aws.String(key),
		Body:        file,
		ContentType: aws.String("application/pdf"),
	})
	if err != nil {
		return "", fmt.Errorf("%w: uploading report: %v", domain.ErrStorageFailure, err)
	}

	url := s.publicURL(s.config.PDFBucket, key)
	log.Printf("[S3] Report uploaded: %s", url)
	return url, nil
}

// isNotFound reports whether an S3 error means the object does not exist
func isNotFound(err error) bool {
	var noSuchKey *types.NoSuchKey
	var notFound *types.NotFound
	return errors.As(err, &noSuchKey) || errors.As(err, &notFound)
}

func (s *Store) publicURL(bucket, key string) string {
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", bucket, s.config.Region, key)
}

// imageKey builds the object key for a mirrored image, keeping the source
// file extension when it has one
func (s *Store) imageKey(srcURL, lotNumber string, index int) string {
	ext := path.Ext(srcURL)
	if len(ext) > 5 || ext == "" {
		ext = ".jpg"
	}
	return fmt.Sprintf("%s%s/item-%d%s", s.config.ImagePrefix, lotNumber, index, ext)
}
