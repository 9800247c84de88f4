// Command test-sheets-webhook appends one sample lead through the configured
// spreadsheet webhook, to check a new Apps Script deployment end to end.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/xavierca1/nesthome-leads/internal/entity"
	"github.com/xavierca1/nesthome-leads/internal/infra/integration/sheets"
	"github.com/xavierca1/nesthome-leads/internal/logging"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn(".env not found, using the process environment")
	}
	logging.Setup(os.Getenv("LOG_LEVEL"))

	webhookURL := os.Getenv("GOOGLE_SHEETS_WEBHOOK_URL")
	if webhookURL == "" {
		logging.Fatal("GOOGLE_SHEETS_WEBHOOK_URL must be set")
	}

	client := sheets.NewClient(webhookURL, os.Getenv("GOOGLE_SPREADSHEET_URL"), 15*time.Second)
	lead := entity.NewLead("Test Lead", "9876543210", "Indore", "exploring", time.Now())

	fmt.Printf("Appending lead %s (%s, %s)\n", lead.ID, lead.Name, lead.City)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := client.SyncOne(ctx, *lead); err != nil {
		logging.Fatal("append failed", "error", err)
	}

	fmt.Println("Lead appended.")
	if url := client.SpreadsheetURL(); url != "" {
		fmt.Printf("Sheet: %s\n", url)
	}
}
