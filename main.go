package main

import (
	"log"
	"os"

	"github.com/slack-go/slack"
)

func main() {
	cfg := LoadConfig()

	db, err := InitDB(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to init database: %v", err)
	}
	defer db.Close()

	os.MkdirAll(cfg.ReportOutputDir, 0755)

	var api *slack.Client
	if cfg.SlackConfigured() {
		api = slack.New(cfg.SlackBotToken)
	}

	log.Println("Starting Attendance Dashboard Bot...")
	if last, err := LastRunAt(db); err == nil && !last.IsZero() {
		log.Printf("Previous dashboard run: %s", last.Format("2006-01-02 15:04"))
	}
	result, err := RunDashboard(cfg, db)
	if err != nil {
		log.Fatalf("Dashboard run error: %v", err)
	}
	log.Println(FormatRunSummary(result))

	refreshing := StartRefreshScheduler(cfg, db, api)
	following := StartFollowupScheduler(cfg, db, api)
	if !refreshing && !following {
		return
	}
	select {}
}
