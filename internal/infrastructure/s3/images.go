package s3

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"golang.org/x/sync/errgroup"
)

// MirrorImages downloads the source images and re-hosts them in the image
// bucket, so catalog rows never depend on third-party image hosts staying up.
// Downloads run with bounded concurrency behind a shared rate limiter. The
// returned slice is aligned with urls; entries that fail to mirror keep their
// source URL so the catalog row is still complete.
func (s *Store) MirrorImages(ctx context.Context, urls []string, lotNumber string) ([]string, error) {
	results := make([]string, len(urls))
	copy(results, urls)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.ImageConcurrency)

	for i, srcURL := range urls {
		if strings.TrimSpace(srcURL) == "" {
			continue
		}

		i, srcURL := i, srcURL
		g.Go(func() error {
			url, err := s.mirrorImage(gctx, srcURL, lotNumber, i)
			if err != nil {
				// Degrade to the source URL instead of failing the batch
				log.Printf("[S3] Failed to mirror image %s: %v", srcURL, err)
				return nil
			}
			results[i] = url
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}

	log.Printf("[S3] Mirrored images for batch #%s", lotNumber)
	return results, nil
}

// mirrorImage fetches one source image and uploads it under the image prefix
func (s *Store) mirrorImage(ctx context.Context, srcURL, lotNumber string, index int) (string, error) {
	if err := s.rateLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter error: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srcURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("downloading image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("downloading image: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 20<<20))
	if err != nil {
		return "", fmt.Errorf("reading image body: %w", err)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/jpeg"
	}

	key := s.imageKey(srcURL, lotNumber, index)
	_, err = s.client.PutObject(ctx, &awss3.PutObjectInput{
		Bucket:      aws.String(s.config.ImageBucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("uploading image: %w", err)
	}

	return s.publicURL(s.config.ImageBucket, key), nil
}
