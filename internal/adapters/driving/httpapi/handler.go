package httpapi

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/custodia-labs/hybridq/internal/core/domain"
	"github.com/custodia-labs/hybridq/internal/core/ports/driving"
	"github.com/custodia-labs/hybridq/internal/logger"
)

// Handler serves the API routes.
type Handler struct {
	query     driving.QueryService
	ingestion driving.IngestionService
	schema    driving.SchemaService
	index     driving.IndexInfo
	uploadDir string
}

// IngestDatabase connects the form's connection_string and returns its catalog.
func (h *Handler) IngestDatabase(c *gin.Context) {
	dsn := c.PostForm("connection_string")
	if strings.TrimSpace(dsn) == "" {
		handleError(c, fmt.Errorf("%w: connection_string is required", domain.ErrInvalidInput))
		return
	}

	catalog, err := h.schema.Connect(c.Request.Context(), dsn)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "schema": catalog})
}

// IngestDocuments persists the uploaded files and starts an ingestion job.
func (h *Handler) IngestDocuments(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		handleError(c, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err))
		return
	}
	files := form.File["files"]
	if len(files) == 0 {
		handleError(c, fmt.Errorf("%w: files are required", domain.ErrInvalidInput))
		return
	}

	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		handleError(c, fmt.Errorf("create upload dir: %w", err))
		return
	}

	paths := make([]string, 0, len(files))
	names := make([]string, 0, len(files))
	for _, f := range files {
		base := filepath.Base(f.Filename)
		dst := filepath.Join(h.uploadDir, uuid.NewString()+"_"+base)
		if err := c.SaveUploadedFile(f, dst); err != nil {
			handleError(c, fmt.Errorf("save %s: %w", base, err))
			return
		}
		paths = append(paths, dst)
		names = append(names, base)
	}

	jobID, err := h.ingestion.Submit(c.Request.Context(), paths)
	if err != nil {
		handleError(c, err)
		return
	}

	logger.Zap().Info("ingestion started", zap.String("job_id", jobID), zap.Int("files", len(paths)))
	c.JSON(http.StatusOK, gin.H{"status": "started", "job_id": jobID, "files": names})
}

// IngestStatus reports an ingestion job.
func (h *Handler) IngestStatus(c *gin.Context) {
	job, ok := h.ingestion.Status(c.Param("id"))
	if !ok {
		handleError(c, fmt.Errorf("job id %w", domain.ErrNotFound))
		return
	}
	c.JSON(http.StatusOK, job)
}

// Query answers the form's query. Error envelopes are returned with 200,
// as the envelope itself is the failure shape.
func (h *Handler) Query(c *gin.Context) {
	text := c.PostForm("query")
	if strings.TrimSpace(text) == "" {
		handleError(c, fmt.Errorf("%w: query is required", domain.ErrInvalidInput))
		return
	}
	c.JSON(http.StatusOK, h.query.Query(c.Request.Context(), text))
}

// History returns the recent queries, oldest first.
func (h *Handler) History(c *gin.Context) {
	entries, err := h.query.History(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	if entries == nil {
		entries = []domain.HistoryEntry{}
	}
	c.JSON(http.StatusOK, gin.H{"history": entries})
}

// Schema returns the current catalog, or an empty object.
func (h *Handler) Schema(c *gin.Context) {
	if catalog := h.schema.Current(); catalog != nil {
		c.JSON(http.StatusOK, gin.H{"schema": catalog})
		return
	}
	c.JSON(http.StatusOK, gin.H{"schema": gin.H{}})
}

// Health reports liveness with the index mode and database state.
func (h *Handler) Health(c *gin.Context) {
	resp := gin.H{"status": "ok", "database": h.schema != nil && h.schema.Current() != nil}
	if h.index != nil {
		resp["index_mode"] = h.index.Mode()
		resp["chunks"] = h.index.Len()
	}
	c.JSON(http.StatusOK, resp)
}
