// Package scheduler processes queued extraction requests from the database
// and reports progress back over Telegram.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/xthemadgenius/rain-papa/config"
	"github.com/xthemadgenius/rain-papa/export"
	"github.com/xthemadgenius/rain-papa/fetcher"
	"github.com/xthemadgenius/rain-papa/filter"
	"github.com/xthemadgenius/rain-papa/session"
	"github.com/xthemadgenius/rain-papa/store"
)

// Scheduler polls the request queue and runs one extraction at a time
type Scheduler struct {
	db             *store.DB
	bot            *tgbotapi.BotAPI
	writer         *export.SheetsWriter
	cfg            *config.Config
	spreadsheetURL string
	ctx            context.Context
	cancel         context.CancelFunc
}

// NewScheduler creates a new scheduler
func NewScheduler(database *store.DB, bot *tgbotapi.BotAPI, writer *export.SheetsWriter, cfg *config.Config, spreadsheetURL string) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		db:             database,
		bot:            bot,
		writer:         writer,
		cfg:            cfg,
		spreadsheetURL: spreadsheetURL,
		ctx:            ctx,
		cancel:         cancel,
	}
}

// Start starts the scheduler in a goroutine
func (s *Scheduler) Start() {
	go s.run()
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.cancel()
	log.Println("Scheduler stopped")
}

func (s *Scheduler) run() {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			log.Println("Scheduler stopped")
			return
		case <-ticker.C:
			s.processNextRequest()
		}
	}
}

// processNextRequest processes the oldest request with status 'created'
func (s *Scheduler) processNextRequest() {
	req, err := s.db.GetNextCreatedRequest()
	if err != nil {
		log.Printf("Error getting next request: %v\n", err)
		return
	}
	if req == nil {
		return
	}

	log.Printf("Processing request ID %d for user %d\n", req.ID, req.UserID)

	if err := s.db.UpdateRequestStatus(req.ID, "in_progress"); err != nil {
		log.Printf("Error updating request status to in_progress: %v\n", err)
		return
	}

	s.sendStatusUpdate(req.TelegramMessageID, req.UserID, "🔄 Processing request... Fetching result pages...")

	nav, err := fetcher.New(req.URL)
	if err != nil {
		log.Printf("Error fetching first page: %v\n", err)
		s.handleRequestError(req, err)
		return
	}

	sess, err := session.New(s.cfg)
	if err != nil {
		log.Printf("Error building session: %v\n", err)
		s.handleRequestError(req, err)
		return
	}

	report := sess.Run(s.ctx, nav)
	if report.Aborted {
		s.sendStatusUpdate(req.TelegramMessageID, req.UserID,
			fmt.Sprintf("⚠️ Pagination stopped early after %d page(s); keeping partial results.", report.PagesVisited))
	}

	if report.ValidRecords == 0 {
		err := fmt.Errorf("no property records found in the result pages")
		log.Printf("Error: %v\n", err)
		s.handleRequestError(req, err)
		return
	}

	filtered := filter.NewFilter(s.cfg).ApplyFilters(report.Records)

	if err := s.db.SaveRecords(req.ID, filtered); err != nil {
		log.Printf("Warning: Failed to save records to database: %v\n", err)
	}
	if err := s.db.UpdateRequestCounts(req.ID, len(filtered), report.PagesVisited, report.Aborted); err != nil {
		log.Printf("Error updating request counts: %v\n", err)
	}

	sheetName := fmt.Sprintf("Request_%d_%s", req.ID, time.Now().Format("20060102_150405"))
	createdSheetName, sheetID, err := s.writer.CreateSheetAndWriteRecords(sheetName, filtered, req.URL)
	if err != nil {
		log.Printf("Error writing to Google Sheets: %v\n", err)
		s.handleRequestError(req, err)
		return
	}

	if err := s.db.UpdateRequestSheetName(req.ID, createdSheetName); err != nil {
		log.Printf("Warning: Failed to update sheet name: %v\n", err)
	}
	if err := s.db.UpdateRequestStatus(req.ID, "done"); err != nil {
		log.Printf("Error updating request status to done: %v\n", err)
		return
	}

	successMsg := fmt.Sprintf(
		"✅ Successfully extracted %d property records to Google Sheets!\n\n"+
			"Found %d records before filtering (%d duplicate(s) removed).\n"+
			"Pages visited: %d\n\n"+
			"View spreadsheet: %s",
		len(filtered), report.ValidRecords, report.DuplicateRecords,
		report.PagesVisited, s.createSheetURL(sheetID))
	s.sendStatusUpdate(req.TelegramMessageID, req.UserID, successMsg)
}

// handleRequestError handles errors during request processing
func (s *Scheduler) handleRequestError(req *store.Request, err error) {
	if updateErr := s.db.UpdateRequestStatus(req.ID, "failed"); updateErr != nil {
		log.Printf("Error updating request status to failed: %v\n", updateErr)
	}

	errorMsg := fmt.Sprintf("❌ Error processing request: %v", err)
	s.sendStatusUpdate(req.TelegramMessageID, req.UserID, errorMsg)
}

// createSheetURL creates a URL that opens a specific sheet in the spreadsheet
func (s *Scheduler) createSheetURL(sheetID int64) string {
	spreadsheetID := export.ExtractSpreadsheetID(s.spreadsheetURL)
	if spreadsheetID == "" {
		return s.spreadsheetURL
	}
	return fmt.Sprintf("https://docs.google.com/spreadsheets/d/%s/edit#gid=%d", spreadsheetID, sheetID)
}

// sendStatusUpdate sends a status update message to Telegram
func (s *Scheduler) sendStatusUpdate(messageID int, userID int64, text string) {
	msg := tgbotapi.NewMessage(userID, text)
	msg.ReplyToMessageID = messageID
	msg.ParseMode = "HTML"
	if _, err := s.bot.Send(msg); err != nil {
		log.Printf("Error sending status update: %v\n", err)
	}
}
