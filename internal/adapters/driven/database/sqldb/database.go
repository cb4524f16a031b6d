// Package sqldb connects to SQLite and PostgreSQL structured sources through
// a pooled sqlx handle.
package sqldb

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"  // PostgreSQL driver
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/hybridq/internal/core/domain"
	"github.com/custodia-labs/hybridq/internal/core/ports/driven"
)

// Ensure implementations satisfy the interfaces.
var (
	_ driven.DatabaseConnector = (*Connector)(nil)
	_ driven.Database          = (*Database)(nil)
)

// Pool defaults.
const (
	DefaultMaxOpenConns    = 4
	DefaultConnMaxIdleTime = 5 * time.Minute
)

// Connector opens pooled connections from connection strings.
type Connector struct {
	maxOpenConns    int
	connMaxIdleTime time.Duration
}

// NewConnector creates a connector. Zero values use the defaults.
func NewConnector(maxOpenConns int, connMaxIdleTime time.Duration) *Connector {
	if maxOpenConns <= 0 {
		maxOpenConns = DefaultMaxOpenConns
	}
	if connMaxIdleTime <= 0 {
		connMaxIdleTime = DefaultConnMaxIdleTime
	}
	return &Connector{maxOpenConns: maxOpenConns, connMaxIdleTime: connMaxIdleTime}
}

// Connect opens dsn and verifies a connection can be acquired.
func (c *Connector) Connect(ctx context.Context, dsn string) (driven.Database, error) {
	dialect, driver, source, err := ParseDSN(dsn)
	if err != nil {
		return nil, err
	}

	db, err := sqlx.Open(driver, source)
	if err != nil {
		return nil, fmt.Errorf("opening %s database: %w", dialect, err)
	}
	db.SetMaxOpenConns(c.maxOpenConns)
	db.SetConnMaxIdleTime(c.connMaxIdleTime)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to %s database: %w", dialect, err)
	}
	return &Database{db: db, dialect: dialect}, nil
}

// ParseDSN returns the dialect, driver name and driver data source for dsn.
//
// postgres:// and postgresql:// URLs select PostgreSQL. Anything else is
// SQLite: sqlite:///path and sqlite://path URLs are reduced to the path,
// and file: URIs or bare paths are passed through.
func ParseDSN(dsn string) (dialect domain.Dialect, driver, source string, err error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return "", "", "", fmt.Errorf("%w: empty connection string", domain.ErrInvalidInput)
	}

	lower := strings.ToLower(dsn)
	switch {
	case strings.HasPrefix(lower, "postgres://"), strings.HasPrefix(lower, "postgresql://"):
		return domain.DialectPostgres, "postgres", dsn, nil
	case strings.HasPrefix(lower, "sqlite:///"):
		source = dsn[len("sqlite:///"):]
	case strings.HasPrefix(lower, "sqlite://"):
		source = dsn[len("sqlite://"):]
	case strings.Contains(lower, "://"):
		return "", "", "", fmt.Errorf("%w: connection string %q", domain.ErrUnsupportedType, redact(dsn))
	default:
		source = dsn
	}
	if source == "" {
		return "", "", "", fmt.Errorf("%w: sqlite connection string has no path", domain.ErrInvalidInput)
	}
	return domain.DialectSQLite, "sqlite", source, nil
}

// redact drops URL userinfo so passwords stay out of errors and logs.
func redact(dsn string) string {
	scheme, rest, ok := strings.Cut(dsn, "://")
	if !ok {
		return dsn
	}
	if at := strings.LastIndex(rest, "@"); at >= 0 {
		rest = rest[at+1:]
	}
	return scheme + "://" + rest
}

// Database is a pooled connection to a structured source.
type Database struct {
	db      *sqlx.DB
	dialect domain.Dialect
}

// Dialect returns the SQL flavour used for identifier quoting.
func (d *Database) Dialect() domain.Dialect {
	return d.dialect
}

// Query runs a read-only statement and returns each row as a column map.
// Placeholders are written as ? and rebound for the driver. Byte slices
// are returned as strings.
func (d *Database) Query(ctx context.Context, query string, args ...any) ([]map[string]any, error) {
	rows, err := d.db.QueryxContext(ctx, d.db.Rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []map[string]any{}
	for rows.Next() {
		row := make(map[string]any)
		if err := rows.MapScan(row); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		for k, v := range row {
			if b, ok := v.([]byte); ok {
				row[k] = string(b)
			}
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rows: %w", err)
	}
	return out, nil
}

// Ping checks a pooled connection is healthy.
func (d *Database) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

// Close releases the pool.
func (d *Database) Close() error {
	return d.db.Close()
}
