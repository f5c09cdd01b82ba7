package export

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/xthemadgenius/rain-papa/models"
)

// SheetsWriter handles writing property records to Google Sheets
type SheetsWriter struct {
	service       *sheets.Service
	spreadsheetID string
}

// NewSheetsWriter creates a new Google Sheets writer
func NewSheetsWriter(spreadsheetID string, credentialsPath string) (*SheetsWriter, error) {
	ctx := context.Background()

	// Read credentials from file or environment variable
	var credsJSON []byte
	var err error

	if credentialsPath != "" {
		credsJSON, err = os.ReadFile(credentialsPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read credentials file: %w", err)
		}
	} else {
		credsEnv := strings.TrimSpace(os.Getenv("GOOGLE_SHEETS_CREDENTIALS"))
		if credsEnv == "" {
			return nil, fmt.Errorf("credentials not found: GOOGLE_SHEETS_CREDENTIALS environment variable is empty or not set")
		}
		log.Printf("Reading credentials from GOOGLE_SHEETS_CREDENTIALS environment variable (%d bytes)\n", len(credsEnv))
		credsJSON = []byte(credsEnv)
	}

	// Parse and validate JSON
	var creds map[string]interface{}
	if err := json.Unmarshal(credsJSON, &creds); err != nil {
		return nil, fmt.Errorf("invalid credentials JSON (check if JSON is properly formatted): %w", err)
	}
	if creds["type"] != "service_account" {
		return nil, fmt.Errorf("credentials must be a service account JSON file (type: service_account), got type: %v", creds["type"])
	}

	service, err := sheets.NewService(ctx, option.WithCredentialsJSON(credsJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return &SheetsWriter{
		service:       service,
		spreadsheetID: spreadsheetID,
	}, nil
}

// WriteRecords writes records to Sheet1, optionally clearing existing data first
func (w *SheetsWriter) WriteRecords(records []models.PropertyRecord, clearFirst bool) error {
	if len(records) == 0 {
		log.Println("No records to write")
		return nil
	}

	values := recordValues(records, "")

	range_ := "Sheet1!A1"
	if clearFirst {
		clearReq := &sheets.ClearValuesRequest{}
		if _, err := w.service.Spreadsheets.Values.Clear(w.spreadsheetID, range_, clearReq).Do(); err != nil {
			log.Printf("Warning: Failed to clear existing data: %v\n", err)
			// Continue anyway
		}
	}

	valueRange := &sheets.ValueRange{Values: values}
	_, err := w.service.Spreadsheets.Values.Update(w.spreadsheetID, range_, valueRange).
		ValueInputOption("RAW").
		Do()
	if err != nil {
		return fmt.Errorf("failed to write to sheets: %w", err)
	}

	log.Printf("Successfully wrote %d records to Google Sheets\n", len(records))
	return nil
}

// CreateSheetAndWriteRecords creates a new sheet at index 0 and writes records
// to it. sourceURL, when non-empty, becomes a metadata row above the header.
// Returns the sheet name and sheet ID (gid) that was created.
func (w *SheetsWriter) CreateSheetAndWriteRecords(sheetName string, records []models.PropertyRecord, sourceURL string) (string, int64, error) {
	sheetName = sanitizeSheetName(sheetName)
	if len(sheetName) > 100 {
		sheetName = sheetName[:100]
	}

	addSheetRequest := &sheets.AddSheetRequest{
		Properties: &sheets.SheetProperties{
			Title: sheetName,
			Index: 0,
		},
	}
	batchUpdateRequest := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{
			{AddSheet: addSheetRequest},
		},
	}

	batchUpdateResp, err := w.service.Spreadsheets.BatchUpdate(w.spreadsheetID, batchUpdateRequest).Do()
	if err != nil {
		return "", 0, fmt.Errorf("failed to create sheet: %w", err)
	}

	var sheetID int64
	if len(batchUpdateResp.Replies) > 0 && batchUpdateResp.Replies[0].AddSheet != nil {
		sheetID = batchUpdateResp.Replies[0].AddSheet.Properties.SheetId
	}
	log.Printf("Created sheet '%s' with ID %d\n", sheetName, sheetID)

	values := recordValues(records, sourceURL)
	range_ := fmt.Sprintf("%s!A1", sheetName)
	valueRange := &sheets.ValueRange{Values: values}

	_, err = w.service.Spreadsheets.Values.Update(w.spreadsheetID, range_, valueRange).
		ValueInputOption("RAW").
		Do()
	if err != nil {
		return "", 0, fmt.Errorf("failed to write to sheet: %w", err)
	}

	log.Printf("Successfully wrote %d records to sheet '%s'\n", len(records), sheetName)
	return sheetName, sheetID, nil
}

// recordValues builds the sheet rows: optional metadata row, friendly header,
// then one row per record in canonical field order.
func recordValues(records []models.PropertyRecord, sourceURL string) [][]interface{} {
	var values [][]interface{}

	if sourceURL != "" {
		values = append(values, []interface{}{"Source URL", sourceURL})
	}

	header := make([]interface{}, len(models.FieldNames))
	for i, name := range models.FieldNames {
		header[i] = models.FriendlyHeaders[name]
	}
	values = append(values, header)

	for _, rec := range records {
		row := make([]interface{}, 0, len(models.FieldNames))
		for _, v := range rec.Row() {
			row = append(row, v)
		}
		values = append(values, row)
	}

	return values
}

// sanitizeSheetName removes characters Google Sheets rejects in sheet names.
func sanitizeSheetName(name string) string {
	invalidChars := []string{"/", "\\", "?", "*", "[", "]"}
	result := name
	for _, char := range invalidChars {
		result = strings.ReplaceAll(result, char, "_")
	}
	result = strings.TrimSpace(result)
	if result == "" {
		result = "Sheet1"
	}
	return result
}

// ExtractSpreadsheetID extracts the spreadsheet ID from a Google Sheets URL
func ExtractSpreadsheetID(url string) string {
	parts := strings.Split(url, "/d/")
	if len(parts) < 2 {
		return ""
	}

	idPart := parts[1]
	if idx := strings.Index(idPart, "/"); idx != -1 {
		idPart = idPart[:idx]
	}
	if idx := strings.Index(idPart, "?"); idx != -1 {
		idPart = idPart[:idx]
	}

	return strings.TrimSpace(idPart)
}
