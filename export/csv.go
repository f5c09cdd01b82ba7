// Package export writes extraction results to CSV, JSON, and Google Sheets.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/xthemadgenius/rain-papa/models"
)

// utf8BOM makes Excel open the CSV as UTF-8 instead of guessing.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// WriteCSV writes records to a timestamped CSV file in outputDir and returns
// the path written.
func WriteCSV(records []models.PropertyRecord, outputDir string) (string, error) {
	if outputDir == "" {
		outputDir = "."
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output dir: %w", err)
	}

	path := filepath.Join(outputDir,
		fmt.Sprintf("property_records_%s.csv", time.Now().Format("20060102_150405")))

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create csv file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(utf8BOM); err != nil {
		return "", fmt.Errorf("failed to write bom: %w", err)
	}

	w := csv.NewWriter(f)

	header := make([]string, len(models.FieldNames))
	for i, name := range models.FieldNames {
		header[i] = models.FriendlyHeaders[name]
	}
	if err := w.Write(header); err != nil {
		return "", fmt.Errorf("failed to write header: %w", err)
	}

	for _, rec := range records {
		if err := w.Write(rec.Row()); err != nil {
			return "", fmt.Errorf("failed to write record: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("failed to flush csv: %w", err)
	}

	return path, nil
}
