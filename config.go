package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ReportSource is one attendance report the dashboard ingests.
type ReportSource struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
	Kind string `yaml:"kind"` // "congregation" or "prayer"
	Year int    `yaml:"year"`
}

// ExpectedWeekday returns the weekday constraint for this report's date
// columns: congregation services meet on Sundays, prayer meetings on
// Saturdays. Unknown kinds carry no constraint.
func (s ReportSource) ExpectedWeekday() *time.Weekday {
	var day time.Weekday
	switch s.Kind {
	case "congregation":
		day = time.Sunday
	case "prayer":
		day = time.Saturday
	default:
		return nil
	}
	return &day
}

type Config struct {
	RosterAPIURL string `yaml:"roster_api_url"`
	RosterAPIKey string `yaml:"roster_api_key"`

	Reports       []ReportSource `yaml:"reports"`
	ReportingYear int            `yaml:"reporting_year"`

	RollingWindow         int     `yaml:"rolling_window"`
	MinAttendance         int     `yaml:"min_attendance"`
	ProRataDefaultRatio   float64 `yaml:"pro_rata_default_ratio"`
	RecentAbsenceWindow   int     `yaml:"recent_absence_window"`
	TargetIncrementPoints float64 `yaml:"target_increment_points"`
	TargetIncrementCount  float64 `yaml:"target_increment_count"`
	CongregationSize      int     `yaml:"congregation_size"`

	DBPath          string `yaml:"db_path"`
	ReportOutputDir string `yaml:"report_output_dir"`
	VocabularyPath  string `yaml:"vocabulary_path"`
	ChurchName      string `yaml:"church_name"`
	EmailDrafts     bool   `yaml:"email_drafts"`

	RefreshSchedule string `yaml:"refresh_schedule"`
	FollowupDay     string `yaml:"followup_day"`
	FollowupTime    string `yaml:"followup_time"`
	SlackBotToken   string `yaml:"slack_bot_token"`
	ReportChannelID string `yaml:"report_channel_id"`

	AnthropicAPIKey string `yaml:"anthropic_api_key"`
	AnthropicModel  string `yaml:"anthropic_model"`

	Timezone string `yaml:"timezone"`

	// Resolved at load time, not read from YAML.
	Location   *time.Location `yaml:"-"`
	Vocabulary *Vocabulary    `yaml:"-"`
}

func LoadConfig() Config {
	var cfg Config

	// Load from config.yaml if it exists
	configPath := "config.yaml"
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		configPath = envPath
	}
	if data, err := os.ReadFile(configPath); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			log.Fatalf("Error parsing %s: %v", configPath, err)
		}
		log.Printf("Loaded config from %s", configPath)
	}

	// Env vars override YAML values
	envOverride(&cfg.RosterAPIURL, "ROSTER_API_URL")
	envOverride(&cfg.RosterAPIKey, "ROSTER_API_KEY")
	envOverrideInt(&cfg.ReportingYear, "REPORTING_YEAR")
	envOverrideInt(&cfg.RollingWindow, "ROLLING_WINDOW")
	envOverrideInt(&cfg.MinAttendance, "MIN_ATTENDANCE")
	envOverrideFloat(&cfg.ProRataDefaultRatio, "PRO_RATA_DEFAULT_RATIO")
	envOverrideInt(&cfg.RecentAbsenceWindow, "RECENT_ABSENCE_WINDOW")
	envOverrideFloat(&cfg.TargetIncrementPoints, "TARGET_INCREMENT_POINTS")
	envOverrideFloat(&cfg.TargetIncrementCount, "TARGET_INCREMENT_COUNT")
	envOverrideInt(&cfg.CongregationSize, "CONGREGATION_SIZE")
	envOverride(&cfg.DBPath, "DB_PATH")
	envOverride(&cfg.ReportOutputDir, "REPORT_OUTPUT_DIR")
	envOverride(&cfg.VocabularyPath, "VOCABULARY_PATH")
	envOverride(&cfg.ChurchName, "CHURCH_NAME")
	envOverride(&cfg.RefreshSchedule, "REFRESH_SCHEDULE")
	envOverride(&cfg.FollowupDay, "FOLLOWUP_DAY")
	envOverride(&cfg.FollowupTime, "FOLLOWUP_TIME")
	envOverride(&cfg.SlackBotToken, "SLACK_BOT_TOKEN")
	envOverride(&cfg.ReportChannelID, "REPORT_CHANNEL_ID")
	envOverride(&cfg.AnthropicAPIKey, "ANTHROPIC_API_KEY")
	envOverride(&cfg.AnthropicModel, "ANTHROPIC_MODEL")
	envOverride(&cfg.Timezone, "TIMEZONE")

	// Defaults
	if cfg.ReportingYear == 0 {
		cfg.ReportingYear = time.Now().Year()
	}
	if cfg.RollingWindow == 0 {
		cfg.RollingWindow = 4
	}
	if cfg.MinAttendance == 0 {
		cfg.MinAttendance = 2
	}
	if cfg.ProRataDefaultRatio == 0 {
		cfg.ProRataDefaultRatio = 0.4
	}
	if cfg.RecentAbsenceWindow == 0 {
		cfg.RecentAbsenceWindow = 3
	}
	if cfg.DBPath == "" {
		cfg.DBPath = "./attendancebot.db"
	}
	if cfg.ReportOutputDir == "" {
		cfg.ReportOutputDir = "./reports"
	}
	if cfg.ChurchName == "" {
		cfg.ChurchName = "Attendance"
	}
	if cfg.FollowupDay == "" {
		cfg.FollowupDay = "Monday"
	}
	if cfg.FollowupTime == "" {
		cfg.FollowupTime = "09:00"
	}
	if cfg.AnthropicModel == "" {
		cfg.AnthropicModel = defaultAnthropicModel
	}
	if cfg.Timezone == "" {
		cfg.Timezone = "Local"
	}

	// Validate required fields
	required := map[string]string{
		"roster_api_url": cfg.RosterAPIURL,
		"roster_api_key": cfg.RosterAPIKey,
	}
	for name, val := range required {
		if val == "" {
			log.Fatalf("Required config '%s' is not set (via config.yaml or env var)", name)
		}
	}
	if len(cfg.Reports) == 0 {
		log.Fatalf("At least one entry under 'reports' is required")
	}
	for i, source := range cfg.Reports {
		if source.Name == "" || source.URL == "" {
			log.Fatalf("reports[%d] must have both name and url", i)
		}
		if source.Kind != "" && source.Kind != "congregation" && source.Kind != "prayer" {
			log.Fatalf("reports[%d] kind must be 'congregation' or 'prayer', got '%s'", i, source.Kind)
		}
		if cfg.Reports[i].Year == 0 {
			cfg.Reports[i].Year = cfg.ReportingYear
		}
	}

	if cfg.RollingWindow != 4 && cfg.RollingWindow != 6 {
		log.Fatalf("invalid rolling_window '%d': must be 4 or 6", cfg.RollingWindow)
	}
	if cfg.MinAttendance < 1 {
		log.Fatalf("invalid min_attendance '%d': must be >= 1", cfg.MinAttendance)
	}
	if cfg.ProRataDefaultRatio <= 0 {
		log.Fatalf("invalid pro_rata_default_ratio '%f': must be > 0", cfg.ProRataDefaultRatio)
	}
	if cfg.RecentAbsenceWindow < 1 {
		log.Fatalf("invalid recent_absence_window '%d': must be >= 1", cfg.RecentAbsenceWindow)
	}
	if _, _, err := parseClock(cfg.FollowupTime); err != nil {
		log.Fatalf("invalid followup_time '%s': %v", cfg.FollowupTime, err)
	}

	if strings.EqualFold(cfg.Timezone, "Local") {
		cfg.Location = time.Local
	} else {
		loc, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			log.Fatalf("invalid timezone '%s': %v", cfg.Timezone, err)
		}
		cfg.Location = loc
	}

	cfg.Vocabulary = DefaultVocabulary()
	if cfg.VocabularyPath != "" {
		vocab, err := LoadVocabulary(cfg.VocabularyPath)
		if err != nil {
			log.Fatalf("invalid vocabulary_path '%s': %v", cfg.VocabularyPath, err)
		}
		cfg.Vocabulary = vocab
	}

	return cfg
}

func envOverride(field *string, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		*field = val
	}
}

func envOverrideInt(field *int, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		parsed, err := strconv.Atoi(val)
		if err != nil {
			log.Fatalf("invalid %s '%s': %v", envKey, val, err)
		}
		*field = parsed
	}
}

func envOverrideFloat(field *float64, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		parsed, err := strconv.ParseFloat(val, 64)
		if err != nil {
			log.Fatalf("invalid %s '%s': %v", envKey, val, err)
		}
		*field = parsed
	}
}

// SlackConfigured reports whether channel notifications are enabled.
func (c Config) SlackConfigured() bool {
	return c.SlackBotToken != "" && c.ReportChannelID != ""
}

// CommentaryConfigured reports whether the trends commentary is enabled.
func (c Config) CommentaryConfigured() bool {
	return c.AnthropicAPIKey != ""
}

func parseClock(s string) (int, int, error) {
	var hour, min int
	_, err := fmt.Sscanf(s, "%d:%d", &hour, &min)
	if err != nil {
		return 0, 0, err
	}
	if hour < 0 || hour > 23 || min < 0 || min > 59 {
		return 0, 0, fmt.Errorf("time out of range: %02d:%02d", hour, min)
	}
	return hour, min, nil
}
