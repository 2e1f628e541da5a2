package marketdata

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/lib/pq" // postgres driver

	"github.com/meenmo/curvelib/bootstrap"
)

// PostgresConfig locates the market data database. Zero-valued fields fall
// back to lib/pq defaults, so a bare DSN-equivalent config still connects.
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// DSN renders the config as a lib/pq connection string.
func (c PostgresConfig) DSN() string {
	dsn := ""
	add := func(key, val string) {
		if val == "" {
			return
		}
		if dsn != "" {
			dsn += " "
		}
		dsn += key + "=" + val
	}
	add("host", c.Host)
	if c.Port != 0 {
		add("port", fmt.Sprintf("%d", c.Port))
	}
	add("user", c.User)
	add("password", c.Password)
	add("dbname", c.Database)
	add("sslmode", c.SSLMode)
	return dsn
}

// PostgresSource reads quote sets from the market_data.swap table. Each row
// stores a full quote set as JSON; the newest row per (date, type, index,
// source) wins.
type PostgresSource struct {
	db *sql.DB
}

// OpenPostgres connects and verifies the database is reachable.
func OpenPostgres(ctx context.Context, cfg PostgresConfig) (*PostgresSource, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("OpenPostgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("OpenPostgres: ping: %w", err)
	}
	return &PostgresSource{db: db}, nil
}

// NewPostgresSource wraps an existing handle, for callers that pool
// connections themselves.
func NewPostgresSource(db *sql.DB) *PostgresSource {
	return &PostgresSource{db: db}
}

const quoteQuery = `
SELECT quotes
FROM market_data.swap
WHERE curve_date = $1
  AND curve_type = $2
  AND reference_index = $3
  AND source = $4
ORDER BY created_at DESC
LIMIT 1`

func (s *PostgresSource) Quotes(ctx context.Context, req Request) ([]bootstrap.Quote, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx, quoteQuery,
		req.Date.Format("2006-01-02"), string(req.Type), string(req.Index), req.Source,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("PostgresSource: %s: %w", req, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("PostgresSource: %s: %w", req, err)
	}

	var p payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("PostgresSource: %s: %w", req, err)
	}
	quotes, err := p.toQuotes()
	if err != nil {
		return nil, fmt.Errorf("PostgresSource: %s: %w", req, err)
	}
	return quotes, nil
}

// Close releases the underlying handle.
func (s *PostgresSource) Close() error {
	return s.db.Close()
}
