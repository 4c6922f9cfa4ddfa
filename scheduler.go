package main

import (
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/slack-go/slack"
)

// StartRefreshScheduler periodically re-runs the dashboard and posts a
// summary to the report channel. The schedule is a standard 5-field cron
// expression (minute hour day-of-month month day-of-week).
// Examples: "0 7 * * *" (daily 7am), "0 7 * * 1" (Mondays 7am).
func StartRefreshScheduler(cfg Config, db *sql.DB, api *slack.Client) bool {
	schedule := strings.TrimSpace(cfg.RefreshSchedule)
	if schedule == "" {
		log.Println("Auto-refresh disabled (refresh_schedule not set)")
		return false
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	sched, err := parser.Parse(schedule)
	if err != nil {
		log.Printf("Invalid refresh_schedule '%s': %v, auto-refresh disabled", schedule, err)
		return false
	}

	log.Printf("Auto-refresh scheduled (cron: %s) for %d report sources", schedule, len(cfg.Reports))

	go func() {
		for {
			now := time.Now().In(cfg.Location)
			next := sched.Next(now)
			wait := next.Sub(now)
			log.Printf("Next refresh at %s (in %s)", next.Format("Mon Jan 2 15:04"), wait.Round(time.Minute))

			time.Sleep(wait)

			result, runErr := RunDashboard(cfg, db)
			summary := FormatRunSummary(result)
			if runErr != nil {
				log.Printf("Auto-refresh error: %v", runErr)
			}
			log.Printf("Auto-refresh complete: %s", summary)

			if api != nil && cfg.ReportChannelID != "" {
				_, _, postErr := api.PostMessage(cfg.ReportChannelID, slack.MsgOptionText(summary, false))
				if postErr != nil {
					log.Printf("Auto-refresh post error: %v", postErr)
				}
			}
		}
	}()
	return true
}

var dayMap = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

func nextWeekday(now time.Time, day time.Weekday, hour, min int) time.Time {
	daysUntil := (day - now.Weekday() + 7) % 7
	if daysUntil == 0 {
		target := time.Date(now.Year(), now.Month(), now.Day(), hour, min, 0, 0, now.Location())
		if now.Before(target) {
			return target
		}
		daysUntil = 7
	}
	return time.Date(now.Year(), now.Month(), now.Day()+int(daysUntil), hour, min, 0, 0, now.Location())
}

func parseWeekday(name string, fallback time.Weekday) time.Weekday {
	if day, ok := dayMap[strings.ToLower(strings.TrimSpace(name))]; ok {
		return day
	}
	log.Printf("Invalid weekday '%s', using %s", name, fallback)
	return fallback
}

func formatNextRun(next time.Time, wait time.Duration) string {
	return fmt.Sprintf("%s (in %s)", next.Format("Mon Jan 2 15:04"), wait.Round(time.Minute))
}
