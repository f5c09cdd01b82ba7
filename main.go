package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/xthemadgenius/rain-papa/browser"
	"github.com/xthemadgenius/rain-papa/config"
	"github.com/xthemadgenius/rain-papa/export"
	"github.com/xthemadgenius/rain-papa/fetcher"
	"github.com/xthemadgenius/rain-papa/filter"
	"github.com/xthemadgenius/rain-papa/models"
	"github.com/xthemadgenius/rain-papa/paginate"
	"github.com/xthemadgenius/rain-papa/scheduler"
	"github.com/xthemadgenius/rain-papa/session"
	"github.com/xthemadgenius/rain-papa/store"
)

func main() {
	urlFlag := flag.String("url", "", "Result page URL to fetch over HTTP (server-rendered portals)")
	attach := flag.Bool("attach", false, "Attach to a running Chrome debug session with the results already on screen")
	attachAddr := flag.String("attach-addr", browser.DefaultDebugAddress, "Chrome remote debugging address")
	configPath := flag.String("config", "", "Path to configuration file")
	pages := flag.Int("pages", 0, "Maximum number of result pages to walk (overrides config)")
	debug := flag.Bool("debug", false, "Log per-fragment classifier and mapper decisions")
	outDir := flag.String("out", "", "Output directory for CSV and JSON files (overrides config)")
	spreadsheetURL := flag.String("spreadsheet", "", "Google Sheets URL to write results to (overrides config)")
	credentialsPath := flag.String("credentials", "", "Path to Google service account credentials JSON file (or use GOOGLE_SHEETS_CREDENTIALS env var)")
	flag.Parse()

	cfg := loadConfig(*configPath)
	if *pages > 0 {
		cfg.MaxPages = *pages
	}
	if *debug {
		cfg.DebugMode = true
	}
	if *outDir != "" {
		cfg.Export.OutputDir = *outDir
	}
	if *spreadsheetURL != "" {
		cfg.Export.SpreadsheetURL = *spreadsheetURL
	}
	if *credentialsPath != "" {
		cfg.Export.CredentialsPath = *credentialsPath
	}

	if *attach || *urlFlag != "" {
		runCLIMode(cfg, *urlFlag, *attach, *attachAddr)
		return
	}

	runTelegramBot(cfg)
}

func loadConfig(path string) *config.Config {
	if path == "" {
		return config.GetDefaultConfig()
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		log.Fatalf("Error: Failed to load config: %v\n", err)
	}
	return cfg
}

// runCLIMode extracts one result set and writes it to disk (and optionally
// to Google Sheets).
func runCLIMode(cfg *config.Config, urlStr string, attach bool, attachAddr string) {
	var nav paginate.Navigator
	var sourceURL string

	if attach {
		fmt.Println("Attaching to your Chrome session. Make sure the search results")
		fmt.Println("are on screen in the active tab.")
		fmt.Print("Continue? [y/N]: ")
		line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
		if answer := strings.ToLower(strings.TrimSpace(line)); answer != "y" && answer != "yes" {
			fmt.Println("Cancelled.")
			return
		}

		bn, err := browser.Attach(attachAddr)
		if err != nil {
			log.Fatalf("Error: %v\n", err)
		}
		defer bn.Close()
		nav = bn
	} else {
		fn, err := fetcher.New(urlStr)
		if err != nil {
			log.Fatalf("Error: %v\n", err)
		}
		nav = fn
		sourceURL = urlStr
	}

	sess, err := session.New(cfg)
	if err != nil {
		log.Fatalf("Error: %v\n", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report := sess.Run(ctx, nav)
	printSummary(report)

	if report.ValidRecords == 0 {
		fmt.Println("No property records extracted.")
		return
	}

	filtered := filter.NewFilter(cfg).ApplyFilters(report.Records)
	if len(filtered) < report.ValidRecords {
		fmt.Printf("%d record(s) remain after filtering\n", len(filtered))
	}

	csvPath, err := export.WriteCSV(filtered, cfg.Export.OutputDir)
	if err != nil {
		log.Printf("Warning: Failed to write CSV: %v\n", err)
	} else {
		fmt.Printf("CSV written to %s\n", csvPath)
	}

	jsonPath, err := export.WriteJSON(report, cfg.Export.OutputDir)
	if err != nil {
		log.Printf("Warning: Failed to write JSON backup: %v\n", err)
	} else {
		fmt.Printf("JSON backup written to %s\n", jsonPath)
	}

	if cfg.Export.SpreadsheetURL != "" {
		writeToSheets(cfg, filtered, sourceURL)
	}
}

func writeToSheets(cfg *config.Config, records []models.PropertyRecord, sourceURL string) {
	spreadsheetID := export.ExtractSpreadsheetID(cfg.Export.SpreadsheetURL)
	if spreadsheetID == "" {
		log.Printf("Warning: Could not extract spreadsheet ID from URL: %s\n", cfg.Export.SpreadsheetURL)
		return
	}

	writer, err := export.NewSheetsWriter(spreadsheetID, cfg.Export.CredentialsPath)
	if err != nil {
		log.Printf("Warning: Failed to initialize Google Sheets writer: %v\n", err)
		return
	}

	sheetName := fmt.Sprintf("CLI_%s", time.Now().Format("20060102_150405"))
	if _, _, err := writer.CreateSheetAndWriteRecords(sheetName, records, sourceURL); err != nil {
		log.Printf("Warning: Failed to write to Google Sheets: %v\n", err)
		return
	}
	fmt.Printf("Successfully wrote %d records to Google Sheets\n", len(records))
}

func printSummary(report *models.SessionReport) {
	fmt.Println("---")
	fmt.Printf("Pages visited:     %d\n", report.PagesVisited)
	fmt.Printf("Fragments seen:    %d\n", report.FragmentsSeen)
	fmt.Printf("Valid records:     %d\n", report.ValidRecords)
	fmt.Printf("Dropped fragments: %d\n", report.DroppedRecords)
	fmt.Printf("Duplicates merged: %d\n", report.DuplicateRecords)
	if report.Aborted {
		fmt.Println("Run aborted early; results above are partial.")
		for _, e := range report.PageErrors {
			fmt.Printf("  %s\n", e)
		}
	}
	fmt.Println("---")
}

// runTelegramBot accepts portal URLs over Telegram and processes them through
// the scheduler queue.
func runTelegramBot(cfg *config.Config) {
	botToken := os.Getenv("PAPA_BOT_TOKEN")
	if botToken == "" {
		log.Fatalf("Error: PAPA_BOT_TOKEN environment variable is not set")
	}

	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		log.Fatalf("Failed to initialize bot: %v\n", err)
	}
	log.Printf("Authorized on account %s\n", bot.Self.UserName)

	database, err := store.NewDB()
	if err != nil {
		log.Fatalf("Error: Failed to initialize database: %v\n", err)
	}
	defer database.Close()
	log.Println("Database initialized successfully")

	if cfg.Export.SpreadsheetURL == "" {
		log.Fatalf("Error: bot mode requires a spreadsheet URL (config export.spreadsheet_url or -spreadsheet)")
	}
	spreadsheetID := export.ExtractSpreadsheetID(cfg.Export.SpreadsheetURL)
	if spreadsheetID == "" {
		log.Fatalf("Error: Could not extract spreadsheet ID from URL: %s\n", cfg.Export.SpreadsheetURL)
	}

	writer, err := export.NewSheetsWriter(spreadsheetID, cfg.Export.CredentialsPath)
	if err != nil {
		log.Fatalf("Error: Failed to initialize Google Sheets writer: %v\n", err)
	}
	log.Printf("Google Sheets writer initialized for spreadsheet: %s\n", spreadsheetID)

	sched := scheduler.NewScheduler(database, bot, writer, cfg, cfg.Export.SpreadsheetURL)
	sched.Start()
	defer sched.Stop()
	log.Println("Scheduler started")

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updateConfig.Offset = -1 // skip updates sent while the bot was down

	for update := range bot.GetUpdatesChan(updateConfig) {
		if update.Message == nil {
			continue
		}

		chatID := update.Message.Chat.ID
		userID := update.Message.From.ID

		if update.Message.IsCommand() {
			switch update.Message.Command() {
			case "start", "help":
				bot.Send(tgbotapi.NewMessage(chatID,
					"Send me a property search results URL and I will extract the records into Google Sheets."))
			default:
				bot.Send(tgbotapi.NewMessage(chatID, "Unknown command. Send a results URL to start an extraction."))
			}
			continue
		}

		text := strings.TrimSpace(update.Message.Text)
		if !strings.HasPrefix(text, "http://") && !strings.HasPrefix(text, "https://") {
			bot.Send(tgbotapi.NewMessage(chatID, "That doesn't look like a URL. Send the results page link."))
			continue
		}

		req, err := database.CreateRequest(userID, update.Message.MessageID, text)
		if err != nil {
			log.Printf("Error creating request: %v\n", err)
			bot.Send(tgbotapi.NewMessage(chatID, "Failed to queue your request, please try again."))
			continue
		}

		msg := tgbotapi.NewMessage(chatID, fmt.Sprintf("📋 Request #%d queued.", req.ID))
		msg.ReplyToMessageID = update.Message.MessageID
		bot.Send(msg)
	}
}
