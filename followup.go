package main

import (
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/slack-go/slack"
)

// StartFollowupScheduler posts a weekly follow-up to the report channel
// listing group members who missed their last few meetings, so leaders can
// check in with them.
func StartFollowupScheduler(cfg Config, db *sql.DB, api *slack.Client) bool {
	if api == nil || cfg.ReportChannelID == "" {
		log.Println("Follow-up disabled (Slack not configured)")
		return false
	}

	day := parseWeekday(cfg.FollowupDay, time.Monday)
	hour, min, err := parseClock(cfg.FollowupTime)
	if err != nil {
		log.Printf("Invalid followup_time '%s': %v, using 09:00", cfg.FollowupTime, err)
		hour, min = 9, 0
	}

	log.Printf("Follow-up scheduled every %s at %02d:%02d", day, hour, min)

	go func() {
		for {
			now := time.Now().In(cfg.Location)
			next := nextWeekday(now, day, hour, min)
			wait := next.Sub(now)
			log.Printf("Next follow-up at %s", formatNextRun(next, wait))

			time.Sleep(wait)
			sendFollowup(cfg, db, api)
		}
	}()
	return true
}

func sendFollowup(cfg Config, db *sql.DB, api *slack.Client) {
	msg, flagged := buildFollowupMessage(cfg, db)
	if flagged == 0 {
		log.Println("Follow-up: nobody flagged this week")
		return
	}
	_, _, err := api.PostMessage(cfg.ReportChannelID, slack.MsgOptionText(msg, false))
	if err != nil {
		log.Printf("Error sending follow-up: %v", err)
		return
	}
	log.Printf("Sent follow-up (%d people flagged)", flagged)
}

// buildFollowupMessage runs a fresh extraction pass per source and formats
// the people who had opportunities but no attendances across their
// section's last few meetings.
func buildFollowupMessage(cfg Config, db *sql.DB) (string, int) {
	roster, vocab, _ := loadRosterContext(cfg)

	var b strings.Builder
	fmt.Fprintf(&b, "People who missed their group's last %d meetings:\n", cfg.RecentAbsenceWindow)

	flagged := 0
	for _, source := range cfg.Reports {
		report, err := processReport(cfg, db, source, roster, vocab)
		if err != nil {
			log.Printf("Follow-up: report %s failed: %v", source.Name, err)
			continue
		}
		for _, section := range report.Sections {
			if len(section.MissedRecent) == 0 {
				continue
			}
			flagged += len(section.MissedRecent)
			names := section.MissedRecent
			if roster != nil {
				names = displayNames(roster, names)
			}
			fmt.Fprintf(&b, "- %s: %s\n", section.Title, strings.Join(names, ", "))
		}
	}
	return b.String(), flagged
}

// displayNames swaps register spellings for roster names where the person
// resolves; unresolved names pass through as written.
func displayNames(roster *RosterIndex, raw []string) []string {
	out := make([]string, len(raw))
	for i, name := range raw {
		out[i] = name
		if person, outcome := roster.Resolve(name); outcome == ResolveMatched {
			out[i] = person.DisplayName()
		}
	}
	return out
}
