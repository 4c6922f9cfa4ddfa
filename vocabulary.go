package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Vocabulary maps program keywords to program families. The segmenter uses
// it both to recognize section header rows and to classify section kinds.
type Vocabulary struct {
	Terms []VocabularyTerm `yaml:"terms"`
}

type VocabularyTerm struct {
	Phrase string `yaml:"phrase"`
	Kind   string `yaml:"kind"`
}

// DefaultVocabulary covers the program families the reports are known to
// include. A YAML vocabulary file replaces it entirely when configured.
func DefaultVocabulary() *Vocabulary {
	return &Vocabulary{Terms: []VocabularyTerm{
		{Phrase: "bible study", Kind: "bible_study"},
		{Phrase: "growth group", Kind: "bible_study"},
		{Phrase: "home group", Kind: "bible_study"},
		{Phrase: "youth group", Kind: "youth"},
		{Phrase: "kids club", Kind: "kids"},
		{Phrase: "sunday school", Kind: "kids"},
		{Phrase: "playgroup", Kind: "kids"},
		{Phrase: "prayer meeting", Kind: "prayer"},
	}}
}

func LoadVocabulary(path string) (*Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read vocabulary: %w", err)
	}
	var v Vocabulary
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("parse vocabulary yaml: %w", err)
	}
	if len(v.Terms) == 0 {
		return nil, fmt.Errorf("vocabulary %s has no terms", path)
	}
	for i, t := range v.Terms {
		if strings.TrimSpace(t.Phrase) == "" || strings.TrimSpace(t.Kind) == "" {
			return nil, fmt.Errorf("vocabulary %s: term %d is missing phrase or kind", path, i)
		}
	}
	return &v, nil
}

// WithGroupNames returns a copy of the vocabulary extended with roster
// group names as section keywords of kind "group". Registers often title
// their sections after the roster group, so these names make the sections
// segment even without a program-family phrase. Existing terms come first,
// so known phrases keep their family.
func (v *Vocabulary) WithGroupNames(groups map[string]string) *Vocabulary {
	out := &Vocabulary{Terms: append([]VocabularyTerm(nil), v.Terms...)}
	names := make([]string, 0, len(groups))
	for _, name := range groups {
		if name = normalizeTextToken(name); name != "" {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	for _, name := range names {
		out.Terms = append(out.Terms, VocabularyTerm{Phrase: name, Kind: "group"})
	}
	return out
}

func normalizeTextToken(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// MatchesKeyword reports whether the text contains any vocabulary phrase.
func (v *Vocabulary) MatchesKeyword(text string) bool {
	return v.Classify(text) != ""
}

// Classify returns the program family for a section title, or "" when no
// phrase matches. The first matching term wins, so more specific phrases
// should be listed first in a custom vocabulary.
func (v *Vocabulary) Classify(title string) string {
	normalized := normalizeTextToken(title)
	if normalized == "" {
		return ""
	}
	for _, t := range v.Terms {
		if strings.Contains(normalized, normalizeTextToken(t.Phrase)) {
			return t.Kind
		}
	}
	return ""
}
