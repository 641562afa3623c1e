package backup

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql" // MySQL driver

	"github.com/imedwei/mysql-pitr-backup/internal/config"
)

// ConnectionPool manages database connections for metadata queries and
// health probes. Dumps themselves go through the external tool, not this
// pool.
type ConnectionPool struct {
	db       *sql.DB
	database string
}

// NewConnectionPool opens a small connection pool against the configured
// database.
func NewConnectionPool(cfg *config.Config) (*ConnectionPool, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?timeout=10s&readTimeout=30s",
		cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(1 * time.Minute)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &ConnectionPool{db: db, database: cfg.DBName}, nil
}

// Ping checks database connectivity.
func (p *ConnectionPool) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

// GetDatabaseInfo retrieves database metadata.
func (p *ConnectionPool) GetDatabaseInfo(ctx context.Context) (*DatabaseInfo, error) {
	info := &DatabaseInfo{Name: p.database}

	if err := p.db.QueryRowContext(ctx, `SELECT VERSION()`).Scan(&info.Version); err != nil {
		return nil, fmt.Errorf("failed to get server version: %w", err)
	}

	err := p.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(data_length + index_length), 0)
		FROM information_schema.tables
		WHERE table_schema = ?
	`, p.database).Scan(&info.Size)
	if err != nil {
		return nil, fmt.Errorf("failed to get database size: %w", err)
	}

	return info, nil
}

// Close closes the connection pool.
func (p *ConnectionPool) Close() error {
	return p.db.Close()
}

// DatabaseInfo holds database metadata.
type DatabaseInfo struct {
	Name    string
	Version string
	Size    int64
}
