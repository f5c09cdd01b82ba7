package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/xthemadgenius/rain-papa/models"
)

// Request represents a queued extraction request
type Request struct {
	ID                int
	UserID            int64
	TelegramMessageID int
	URL               string
	Status            string // "created", "in_progress", "done", "failed"
	RecordsCount      int
	PagesCount        int
	Aborted           bool
	SheetName         sql.NullString
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// CreateRequest queues a new extraction request
func (db *DB) CreateRequest(userID int64, telegramMessageID int, url string) (*Request, error) {
	var req Request
	var sheetName sql.NullString
	err := db.conn.QueryRow(`
		INSERT INTO extraction_requests (user_id, telegram_message_id, url, status)
		VALUES ($1, $2, $3, 'created')
		RETURNING id, user_id, telegram_message_id, url, status, records_count, pages_count, aborted, sheet_name, created_at, updated_at
	`, userID, telegramMessageID, url).Scan(
		&req.ID, &req.UserID, &req.TelegramMessageID, &req.URL, &req.Status,
		&req.RecordsCount, &req.PagesCount, &req.Aborted, &sheetName, &req.CreatedAt, &req.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	req.SheetName = sheetName
	return &req, nil
}

// GetNextCreatedRequest gets the oldest request with status 'created'.
// Returns nil, nil when the queue is empty.
func (db *DB) GetNextCreatedRequest() (*Request, error) {
	var req Request
	var sheetName sql.NullString
	err := db.conn.QueryRow(`
		SELECT id, user_id, telegram_message_id, url, status, records_count, pages_count, aborted, sheet_name, created_at, updated_at
		FROM extraction_requests
		WHERE status = 'created'
		ORDER BY created_at ASC
		LIMIT 1
		FOR UPDATE SKIP LOCKED
	`).Scan(
		&req.ID, &req.UserID, &req.TelegramMessageID, &req.URL, &req.Status,
		&req.RecordsCount, &req.PagesCount, &req.Aborted, &sheetName, &req.CreatedAt, &req.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	req.SheetName = sheetName
	return &req, nil
}

// UpdateRequestStatus updates the status of a request
func (db *DB) UpdateRequestStatus(requestID int, status string) error {
	_, err := db.conn.Exec(`
		UPDATE extraction_requests
		SET status = $1, updated_at = CURRENT_TIMESTAMP
		WHERE id = $2
	`, status, requestID)
	return err
}

// UpdateRequestCounts records how the run went
func (db *DB) UpdateRequestCounts(requestID int, recordsCount, pagesCount int, aborted bool) error {
	_, err := db.conn.Exec(`
		UPDATE extraction_requests
		SET records_count = $1, pages_count = $2, aborted = $3, updated_at = CURRENT_TIMESTAMP
		WHERE id = $4
	`, recordsCount, pagesCount, aborted, requestID)
	return err
}

// UpdateRequestSheetName stores the Google Sheets tab the results went to
func (db *DB) UpdateRequestSheetName(requestID int, sheetName string) error {
	_, err := db.conn.Exec(`
		UPDATE extraction_requests
		SET sheet_name = $1, updated_at = CURRENT_TIMESTAMP
		WHERE id = $2
	`, sheetName, requestID)
	return err
}

// SaveRecord persists one extracted property record. The key fields are
// duplicated into their own columns for indexed lookup; the full canonical
// field map goes into fields as JSONB.
func (db *DB) SaveRecord(requestID int, rec models.PropertyRecord) error {
	fieldsJSON, err := json.Marshal(rec.Fields)
	if err != nil {
		return fmt.Errorf("failed to marshal record fields: %w", err)
	}

	_, err = db.conn.Exec(`
		INSERT INTO extraction_records (request_id, parcel_id, property_address, owner_name, fields, page_number)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, requestID,
		nullIfEmpty(rec.Get("parcel_id")),
		nullIfEmpty(rec.Get("property_address")),
		nullIfEmpty(rec.Get("owner_name")),
		fieldsJSON, rec.PageNumber)
	return err
}

// SaveRecords persists a whole result set inside one transaction.
func (db *DB) SaveRecords(requestID int, records []models.PropertyRecord) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO extraction_records (request_id, parcel_id, property_address, owner_name, fields, page_number)
		VALUES ($1, $2, $3, $4, $5, $6)
	`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		fieldsJSON, err := json.Marshal(rec.Fields)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to marshal record fields: %w", err)
		}
		if _, err := stmt.Exec(requestID,
			nullIfEmpty(rec.Get("parcel_id")),
			nullIfEmpty(rec.Get("property_address")),
			nullIfEmpty(rec.Get("owner_name")),
			fieldsJSON, rec.PageNumber); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to insert record: %w", err)
		}
	}

	return tx.Commit()
}

func nullIfEmpty(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
