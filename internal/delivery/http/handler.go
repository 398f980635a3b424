package http

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/liquidationblitz/backend/internal/domain"
	"github.com/liquidationblitz/backend/internal/usecase"
)

const catalogCacheKey = "catalog:snapshot"

// Handler holds dependencies for HTTP handlers
type Handler struct {
	pipeline *usecase.BatchService
	sync     *usecase.SyncService
	cache    domain.CacheRepository
	cacheTTL time.Duration
}

// NewHandler creates a new HTTP handler
func NewHandler(pipeline *usecase.BatchService, sync *usecase.SyncService, cache domain.CacheRepository, cacheTTL time.Duration) *Handler {
	return &Handler{
		pipeline: pipeline,
		sync:     sync,
		cache:    cache,
		cacheTTL: cacheTTL,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "liquidationblitz-backend",
		"version": "1.0.0",
	})
}

// ProcessBatch accepts an uploaded spreadsheet plus a markup percentage, runs
// the full pipeline and returns the published URLs
func (h *Handler) ProcessBatch(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing spreadsheet upload (form field 'file')"})
		return
	}

	markupPct := 0.0
	if raw := c.PostForm("markup"); raw != "" {
		markupPct, err = strconv.ParseFloat(raw, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "markup must be a number"})
			return
		}
	}

	tmpPath := filepath.Join(os.TempDir(), "blitz-upload-"+uuid.NewString()+".xlsx")
	if err := c.SaveUploadedFile(file, tmpPath); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store upload"})
		return
	}
	defer os.Remove(tmpPath)

	result, err := h.pipeline.ProcessFile(c.Request.Context(), tmpPath, markupPct)
	if err != nil {
		h.writeError(c, err)
		return
	}

	// The catalog changed remotely; drop the cached view
	h.cache.Delete(c.Request.Context(), catalogCacheKey)

	c.JSON(http.StatusOK, result)
}

// GetCatalog returns the catalog records, served from cache unless refresh=true
func (h *Handler) GetCatalog(c *gin.Context) {
	refresh := c.Query("refresh") == "true"

	if !refresh {
		if cached, err := h.cache.Get(c.Request.Context(), catalogCacheKey); err == nil {
			if snapshot, ok := cached.(domain.CatalogSnapshot); ok {
				c.JSON(http.StatusOK, gin.H{"records": snapshot.Records, "cached": true})
				return
			}
		}
	}

	snapshot, err := h.sync.LoadCatalog(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}

	h.cache.Set(c.Request.Context(), catalogCacheKey, snapshot, h.cacheTTL)
	c.JSON(http.StatusOK, gin.H{"records": snapshot.Records, "cached": false})
}

// GetCatalogStats returns batch count and total value of the catalog
func (h *Handler) GetCatalogStats(c *gin.Context) {
	snapshot, err := h.currentSnapshot(c)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, usecase.SnapshotStats(snapshot))
}

// deleteBatchesRequest is the body of a catalog delete call
type deleteBatchesRequest struct {
	IDs []string `json:"ids" binding:"required"`
}

// DeleteBatches removes the given batch ids from the remote catalog
func (h *Handler) DeleteBatches(c *gin.Context) {
	var req deleteBatchesRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.IDs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "body must contain a non-empty 'ids' array"})
		return
	}

	snapshot, catalogURL, err := h.sync.DeleteBatches(c.Request.Context(), req.IDs)
	if err != nil {
		h.writeError(c, err)
		return
	}

	h.cache.Set(c.Request.Context(), catalogCacheKey, snapshot, h.cacheTTL)
	c.JSON(http.StatusOK, gin.H{
		"remaining":  len(snapshot.Records),
		"catalogUrl": catalogURL,
	})
}

// currentSnapshot serves the cached snapshot when fresh, loading otherwise
func (h *Handler) currentSnapshot(c *gin.Context) (domain.CatalogSnapshot, error) {
	if cached, err := h.cache.Get(c.Request.Context(), catalogCacheKey); err == nil {
		if snapshot, ok := cached.(domain.CatalogSnapshot); ok {
			return snapshot, nil
		}
	}

	snapshot, err := h.sync.LoadCatalog(c.Request.Context())
	if err != nil {
		return domain.CatalogSnapshot{}, err
	}
	h.cache.Set(c.Request.Context(), catalogCacheKey, snapshot, h.cacheTTL)
	return snapshot, nil
}

// writeError maps domain errors onto HTTP statuses. Validation problems are
// the caller's to fix; sync failures surface the failed phase so the client
// knows the remote catalog was not updated and the call is safe to retry.
func (h *Handler) writeError(c *gin.Context, err error) {
	var syncErr *domain.SyncError
	switch {
	case errors.Is(err, domain.ErrEmptyBatch),
		errors.Is(err, domain.ErrInvalidMarkup),
		errors.Is(err, domain.ErrInvalidSpreadsheet):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &syncErr):
		c.JSON(http.StatusBadGateway, gin.H{
			"error": syncErr.Error(),
			"phase": string(syncErr.Phase),
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
