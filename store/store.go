// Package store persists extraction requests and their records in Postgres.
// It backs the bot worker queue: requests move created -> in_progress ->
// done/failed, and extracted records are kept for audit.
package store

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	_ "github.com/lib/pq"
)

// DB wraps the database connection
type DB struct {
	conn *sql.DB
}

// NewDB creates a new database connection
func NewDB() (*DB, error) {
	// Get connection string from environment variable
	connStr := os.Getenv("DATABASE_URL")
	if connStr == "" {
		// Try to build from individual components
		host := getEnvOrDefault("DB_HOST", "localhost")
		port := getEnvOrDefault("DB_PORT", "5432")
		user := getEnvOrDefault("DB_USER", "rain_papa")
		password := getEnvOrDefault("DB_PASSWORD", "")
		dbname := getEnvOrDefault("DB_NAME", "rain_papa")
		sslmode := getEnvOrDefault("DB_SSLMODE", "disable")

		connStr = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s search_path=rain_papa",
			host, port, user, password, dbname, sslmode)
	}

	conn, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return db, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// initSchema creates the necessary tables if they don't exist
func (db *DB) initSchema() error {
	// The schema should already exist; creating it is only a safety check
	// and permission failures are not fatal.
	_, err := db.conn.Exec(`CREATE SCHEMA IF NOT EXISTS rain_papa`)
	if err != nil {
		log.Printf("Note: Could not create schema (may already exist): %v\n", err)
	}

	_, err = db.conn.Exec(`SET search_path TO rain_papa`)
	if err != nil {
		return fmt.Errorf("failed to set search path: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS extraction_requests (
			id SERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL,
			telegram_message_id INTEGER NOT NULL,
			url TEXT NOT NULL,
			status VARCHAR(20) NOT NULL DEFAULT 'created',
			records_count INTEGER DEFAULT 0,
			pages_count INTEGER DEFAULT 0,
			aborted BOOLEAN NOT NULL DEFAULT FALSE,
			sheet_name VARCHAR(255),
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			CONSTRAINT valid_status CHECK (status IN ('created', 'in_progress', 'done', 'failed'))
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create extraction_requests table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS extraction_records (
			id SERIAL PRIMARY KEY,
			request_id INTEGER NOT NULL REFERENCES extraction_requests(id) ON DELETE CASCADE,
			parcel_id VARCHAR(64),
			property_address TEXT,
			owner_name TEXT,
			fields JSONB NOT NULL,
			page_number INTEGER,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create extraction_records table: %w", err)
	}

	_, err = db.conn.Exec(`CREATE INDEX IF NOT EXISTS idx_extraction_requests_status ON extraction_requests(status)`)
	if err != nil {
		log.Printf("Warning: Failed to create index on extraction_requests.status: %v\n", err)
	}

	_, err = db.conn.Exec(`CREATE INDEX IF NOT EXISTS idx_extraction_requests_user_id ON extraction_requests(user_id)`)
	if err != nil {
		log.Printf("Warning: Failed to create index on extraction_requests.user_id: %v\n", err)
	}

	_, err = db.conn.Exec(`CREATE INDEX IF NOT EXISTS idx_extraction_records_request_id ON extraction_records(request_id)`)
	if err != nil {
		log.Printf("Warning: Failed to create index on extraction_records.request_id: %v\n", err)
	}

	_, err = db.conn.Exec(`CREATE INDEX IF NOT EXISTS idx_extraction_records_parcel_id ON extraction_records(parcel_id)`)
	if err != nil {
		log.Printf("Warning: Failed to create index on extraction_records.parcel_id: %v\n", err)
	}

	log.Println("Database schema initialized successfully")
	return nil
}

// GetConn returns the underlying database connection
func (db *DB) GetConn() *sql.DB {
	return db.conn
}
