package main

import (
	"regexp"
	"strings"
)

// ResolveOutcome distinguishes a clean miss from an ambiguous fallback
// match; both leave the display name without a fact, but they are counted
// separately.
type ResolveOutcome int

const (
	ResolveMatched ResolveOutcome = iota
	ResolveUnmatched
	ResolveAmbiguous
)

// RosterIndex is a read-only lookup over one roster snapshot, keyed by the
// normalized "first last" and "last first" orderings of every person.
type RosterIndex struct {
	exact  map[string]*Person
	people []Person
}

var rolePattern = regexp.MustCompile(`\([^)]*\)|（[^）]*）`)

// normalizeName strips parenthesised role suffixes like "(Leader)", folds
// case and reduces the string to space-separated letter/digit tokens.
func normalizeName(s string) []string {
	if s == "" {
		return nil
	}
	s = rolePattern.ReplaceAllString(s, " ")
	s = strings.ToLower(s)
	var b strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	return strings.Fields(b.String())
}

func nameKey(parts ...string) string {
	var tokens []string
	for _, p := range parts {
		tokens = append(tokens, normalizeName(p)...)
	}
	return strings.Join(tokens, " ")
}

// NewRosterIndex indexes a roster snapshot for one resolution pass.
func NewRosterIndex(people []Person) *RosterIndex {
	ix := &RosterIndex{
		exact:  make(map[string]*Person, len(people)*2),
		people: people,
	}
	for i := range ix.people {
		p := &ix.people[i]
		addKey := func(key string) {
			if key == "" {
				return
			}
			if _, exists := ix.exact[key]; !exists {
				ix.exact[key] = p
			}
		}
		addKey(nameKey(p.FirstName, p.LastName))
		addKey(nameKey(p.LastName, p.FirstName))
	}
	return ix
}

// Resolve maps a report-scraped display name to a roster person. It tries
// the normalized name as-is, then its "Last, First" ⇄ "First Last"
// transposition, then a conservative partial match. Multiple partial
// candidates are ambiguous and resolve to nil rather than guessing.
func (ix *RosterIndex) Resolve(raw string) (*Person, ResolveOutcome) {
	asIs := nameKey(raw)
	if asIs == "" {
		return nil, ResolveUnmatched
	}
	if p, ok := ix.exact[asIs]; ok {
		return p, ResolveMatched
	}
	if transposed := transposeName(raw); transposed != "" {
		if p, ok := ix.exact[transposed]; ok {
			return p, ResolveMatched
		}
	}
	return ix.resolvePartial(asIs)
}

// transposeName swaps name order: on the first comma when present,
// otherwise by treating the last token of a 2-token name as the family
// name. Returns "" when no transposition applies.
func transposeName(raw string) string {
	if idx := strings.Index(raw, ","); idx >= 0 {
		return nameKey(raw[idx+1:], raw[:idx])
	}
	tokens := normalizeName(raw)
	if len(tokens) != 2 {
		return ""
	}
	return tokens[1] + " " + tokens[0]
}

// resolvePartial is the fallback: the name's first token must equal a
// prefix of a candidate's first name, and the candidate's last name must
// appear somewhere in the normalized name.
func (ix *RosterIndex) resolvePartial(normalized string) (*Person, ResolveOutcome) {
	tokens := strings.Fields(normalized)
	if len(tokens) == 0 {
		return nil, ResolveUnmatched
	}
	first := tokens[0]

	var hit *Person
	for i := range ix.people {
		p := &ix.people[i]
		candFirst := strings.Join(normalizeName(p.FirstName), " ")
		candLast := strings.Join(normalizeName(p.LastName), " ")
		if candFirst == "" || candLast == "" {
			continue
		}
		if !strings.HasPrefix(candFirst, first) {
			continue
		}
		if !strings.Contains(normalized, candLast) {
			continue
		}
		if hit != nil && hit != p {
			return nil, ResolveAmbiguous
		}
		hit = p
	}
	if hit == nil {
		return nil, ResolveUnmatched
	}
	return hit, ResolveMatched
}

func uniqueStrings(vals []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, v := range vals {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
