package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/example/quizbot/internal/bot"
	"github.com/example/quizbot/internal/database"
	"github.com/example/quizbot/internal/ingest"
	"github.com/joho/godotenv"
)

func main() {
	importFile := flag.String("import", "", "Import questions from an Excel or CSV file and exit")
	importSheet := flag.String("sheet", "", "Sheet name for Excel imports (default Sheet1)")
	flag.Parse()

	// Load .env if present; real environment variables win
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	if err := database.Connect(); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	// Import mode: load the file and exit
	if *importFile != "" {
		runImport(*importFile, *importSheet)
		return
	}

	b, err := bot.New()
	if err != nil {
		log.Fatalf("Failed to create bot: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		log.Printf("Received signal: %v", sig)
		cancel()
	}()

	log.Println("Bot started. Press Ctrl+C to stop.")
	if err := b.Start(ctx); err != nil && err != context.Canceled {
		log.Printf("Bot error: %v", err)
	}
	log.Println("Bot stopped successfully")
}

// runImport loads questions from a spreadsheet into the store
func runImport(path, sheet string) {
	config := ingest.DefaultImportConfig()
	config.FilePath = path
	if sheet != "" {
		config.SheetName = sheet
	}

	result, err := ingest.ImportQuestions(config)
	if err != nil {
		log.Fatalf("Import failed: %v", err)
	}

	log.Printf("Import finished: %d rows processed, %d inserted, %d skipped",
		result.TotalProcessed, result.Inserted, result.Skipped)
	for _, e := range result.Errors {
		log.Printf("  %s", e)
	}
}
