package main

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const defaultAnthropicModel = "claude-sonnet-4-5-20250929"

type LLMUsage struct {
	InputTokens  int64
	OutputTokens int64
}

func (u LLMUsage) TotalTokens() int64 {
	return u.InputTokens + u.OutputTokens
}

// maybeCommentary generates the trends commentary when configured. A
// commentary failure never fails the dashboard pass.
func maybeCommentary(cfg Config, data DashboardData) string {
	if !cfg.CommentaryConfigured() {
		return ""
	}
	commentary, usage, err := GenerateCommentary(cfg, data)
	if err != nil {
		log.Printf("commentary error: %v", err)
		return ""
	}
	log.Printf("commentary generated tokens_in=%d tokens_out=%d", usage.InputTokens, usage.OutputTokens)
	return commentary
}

// GenerateCommentary asks the model for a short narrative over the
// computed aggregates. The prompt contains only derived counts and means,
// never personal names.
func GenerateCommentary(cfg Config, data DashboardData) (string, LLMUsage, error) {
	systemPrompt := "You write brief, factual commentary for a church attendance dashboard. " +
		"Two to four sentences, plain language, no speculation beyond the numbers given."
	userPrompt := buildCommentaryPrompt(data)
	return callAnthropic(cfg.AnthropicAPIKey, cfg.AnthropicModel, systemPrompt, userPrompt)
}

func buildCommentaryPrompt(data DashboardData) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Reporting year: %d\n", data.Year)
	for _, report := range data.Reports {
		fmt.Fprintf(&b, "\nReport: %s\n", report.Source.Name)
		for i, series := range report.Services {
			fmt.Fprintf(&b, "- %s service: yearly mean %.1f over %d weeks\n",
				series.Cohort, report.Means[i].Numerator, len(series.Points))
		}
		if n := len(report.Combined.Points); n > 0 {
			fmt.Fprintf(&b, "- latest combined count: %.0f (year to date %.0f)\n",
				report.Combined.Points[n-1].Value, report.YearToDate.Points[n-1].Value)
		}
		for _, section := range report.Sections {
			fmt.Fprintf(&b, "- group %q: %d regulars, %d flagged absent recently\n",
				section.Title, len(section.Attendees), len(section.MissedRecent))
		}
	}
	b.WriteString("\nWrite the commentary.")
	return b.String()
}

func callAnthropic(apiKey, model, systemPrompt, userPrompt string) (string, LLMUsage, error) {
	client := anthropic.NewClient(option.WithAPIKey(apiKey))

	message, err := client.Messages.New(context.Background(), anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: 1024,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
		},
	})
	if err != nil {
		return "", LLMUsage{}, fmt.Errorf("Anthropic API error: %w", err)
	}
	usage := LLMUsage{
		InputTokens:  message.Usage.InputTokens,
		OutputTokens: message.Usage.OutputTokens,
	}

	for _, block := range message.Content {
		if block.Type == "text" {
			return strings.TrimSpace(block.Text), usage, nil
		}
	}
	return "", usage, fmt.Errorf("no text content in Anthropic response")
}
