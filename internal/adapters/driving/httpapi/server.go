// Package httpapi exposes the query engine over a JSON HTTP API built on gin.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/custodia-labs/hybridq/internal/core/ports/driving"
	"github.com/custodia-labs/hybridq/internal/logger"
)

// Deps holds the driving ports the API serves.
type Deps struct {
	Query     driving.QueryService
	Ingestion driving.IngestionService
	Schema    driving.SchemaService
	Index     driving.IndexInfo

	// MCP, when set, is mounted at /mcp.
	MCP http.Handler
}

// Options configures the router.
type Options struct {
	// UploadDir receives uploaded documents before ingestion.
	UploadDir string

	// RateLimit is the sustained requests per second per client IP.
	// Zero disables limiting.
	RateLimit float64

	// MaxUploadBytes bounds the multipart form kept in memory.
	MaxUploadBytes int64
}

// NewRouter builds the gin engine with every route registered.
func NewRouter(deps Deps, opts Options) *gin.Engine {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 32 << 20
	}

	r := gin.New()
	r.MaxMultipartMemory = opts.MaxUploadBytes
	r.Use(gin.Recovery(), RequestLogger(), CORS())

	h := &Handler{
		query:     deps.Query,
		ingestion: deps.Ingestion,
		schema:    deps.Schema,
		index:     deps.Index,
		uploadDir: opts.UploadDir,
	}

	api := r.Group("/api")
	api.GET("/health", h.Health)

	limited := api.Group("")
	limited.Use(RateLimit(opts.RateLimit))
	RegisterRoutes(limited, h)

	if deps.MCP != nil {
		r.Any("/mcp", gin.WrapH(deps.MCP))
	}
	return r
}

// RegisterRoutes wires the handler into group.
func RegisterRoutes(group *gin.RouterGroup, h *Handler) {
	group.POST("/ingest/database", h.IngestDatabase)
	group.POST("/ingest/documents", h.IngestDocuments)
	group.GET("/ingest/status/:id", h.IngestStatus)
	group.POST("/query", h.Query)
	group.GET("/query/history", h.History)
	group.GET("/schema", h.Schema)
}

// Serve runs handler on addr until ctx is cancelled, then shuts down gracefully.
func Serve(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Zap().Info("http listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Zap().Info("http stopped")
	return nil
}
