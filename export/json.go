package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/xthemadgenius/rain-papa/models"
)

// jsonDocument is the on-disk shape of a JSON backup.
type jsonDocument struct {
	ExtractedAt      string              `json:"extracted_at"`
	PagesVisited     int                 `json:"pages_visited"`
	ValidRecords     int                 `json:"valid_records"`
	DroppedRecords   int                 `json:"dropped_records"`
	DuplicateRecords int                 `json:"duplicate_records"`
	Aborted          bool                `json:"aborted,omitempty"`
	PageErrors       []string            `json:"page_errors,omitempty"`
	Records          []map[string]string `json:"records"`
}

// WriteJSON writes the full session report to a timestamped JSON file and
// returns the path written. The JSON carries the run counters alongside the
// records, so an aborted partial run is recognizable from the file alone.
func WriteJSON(report *models.SessionReport, outputDir string) (string, error) {
	if outputDir == "" {
		outputDir = "."
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output dir: %w", err)
	}

	doc := jsonDocument{
		ExtractedAt:      time.Now().Format(time.RFC3339),
		PagesVisited:     report.PagesVisited,
		ValidRecords:     report.ValidRecords,
		DroppedRecords:   report.DroppedRecords,
		DuplicateRecords: report.DuplicateRecords,
		Aborted:          report.Aborted,
		PageErrors:       report.PageErrors,
		Records:          make([]map[string]string, 0, len(report.Records)),
	}
	for _, rec := range report.Records {
		doc.Records = append(doc.Records, rec.Fields)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal records: %w", err)
	}

	path := filepath.Join(outputDir,
		fmt.Sprintf("property_records_%s.json", time.Now().Format("20060102_150405")))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write json file: %w", err)
	}

	return path, nil
}
