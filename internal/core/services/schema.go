package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/custodia-labs/hybridq/internal/core/domain"
	"github.com/custodia-labs/hybridq/internal/core/ports/driven"
	"github.com/custodia-labs/hybridq/internal/core/ports/driving"
	"github.com/custodia-labs/hybridq/internal/logger"
)

// Ensure SchemaManager implements the interface.
var _ driving.SchemaService = (*SchemaManager)(nil)

// SchemaManager owns the structured source connection and its catalog.
// The database and catalog are always swapped together.
type SchemaManager struct {
	connector driven.DatabaseConnector
	provider  driven.SchemaProvider

	mu         sync.RWMutex
	db         driven.Database
	catalog    *domain.SchemaCatalog
	generation uint64
}

// NewSchemaManager creates a manager with no database connected.
func NewSchemaManager(connector driven.DatabaseConnector, provider driven.SchemaProvider) *SchemaManager {
	return &SchemaManager{connector: connector, provider: provider}
}

// Connect opens dsn, discovers its catalog and makes both current.
// The previous connection, if any, is closed.
func (s *SchemaManager) Connect(ctx context.Context, dsn string) (*domain.SchemaCatalog, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("%w: connection string is required", domain.ErrInvalidInput)
	}

	db, err := s.connector.Connect(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrSchemaDiscovery, err)
	}

	catalog, err := s.provider.Discover(ctx, db)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %w", domain.ErrSchemaDiscovery, err)
	}

	s.mu.Lock()
	prev := s.db
	s.db = db
	s.catalog = catalog
	s.generation++
	s.mu.Unlock()

	if prev != nil {
		if err := prev.Close(); err != nil {
			logger.Warn("Schema: failed to close previous database: %v", err)
		}
	}

	logger.Info("Schema: connected %s database with %d tables", catalog.Dialect, len(catalog.Tables))
	return catalog, nil
}

// Current returns the current catalog, or nil if no database is connected.
func (s *SchemaManager) Current() *domain.SchemaCatalog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalog
}

// Database returns the current connection and the catalog discovered from it.
func (s *SchemaManager) Database() (driven.Database, *domain.SchemaCatalog) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.db, s.catalog
}

// Generation counts connection changes. Answers computed under one
// generation are stale under any other.
func (s *SchemaManager) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}

// MapTerms maps query tokens onto the current catalog.
func (s *SchemaManager) MapTerms(query string) domain.TermMapping {
	catalog := s.Current()
	if catalog.IsEmpty() {
		return domain.TermMapping{}
	}
	return s.provider.MapTerms(query, catalog)
}

// Refresh rediscovers the catalog of the current connection.
// It returns ErrNoDatabase when nothing is connected.
func (s *SchemaManager) Refresh(ctx context.Context) error {
	db, _ := s.Database()
	if db == nil {
		return domain.ErrNoDatabase
	}

	if err := db.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrSchemaDiscovery, err)
	}
	catalog, err := s.provider.Discover(ctx, db)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrSchemaDiscovery, err)
	}

	s.mu.Lock()
	// A concurrent Connect wins over a refresh of the old connection.
	if s.db == db {
		s.catalog = catalog
	}
	s.mu.Unlock()

	logger.Debug("Schema: refreshed catalog, %d tables", len(catalog.Tables))
	return nil
}

// Close releases the current connection.
func (s *SchemaManager) Close() error {
	s.mu.Lock()
	db := s.db
	s.db = nil
	s.catalog = nil
	if db != nil {
		s.generation++
	}
	s.mu.Unlock()

	if db == nil {
		return nil
	}
	return db.Close()
}
