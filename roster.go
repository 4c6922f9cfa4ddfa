package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
)

type rosterResponse struct {
	People  []rosterPerson `json:"people"`
	Total   int            `json:"total"`
	Page    int            `json:"page"`
	PerPage int            `json:"per_page"`
}

type rosterPerson struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Category  string `json:"category"`
}

type groupsResponse struct {
	Groups []rosterGroup `json:"groups"`
}

type rosterGroup struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// FetchRoster pulls the full people list from the roster API, one page at
// a time. The result is a read-only snapshot for a single pass.
func FetchRoster(cfg Config) ([]Person, error) {
	var people []Person
	page := 1

	for {
		body, err := rosterGet(cfg, fmt.Sprintf("/people?per_page=100&page=%d", page))
		if err != nil {
			return nil, fmt.Errorf("fetching roster page %d: %w", page, err)
		}
		var resp rosterResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, fmt.Errorf("parsing roster page %d: %w", page, err)
		}
		for _, p := range resp.People {
			people = append(people, Person{
				ID:        p.ID,
				FirstName: p.FirstName,
				LastName:  p.LastName,
				Category:  p.Category,
			})
		}
		if len(resp.People) < 100 {
			break
		}
		page++
	}

	log.Printf("roster fetch done people=%d", len(people))
	return people, nil
}

// FetchGroups returns the group/category name index keyed by ID.
func FetchGroups(cfg Config) (map[string]string, error) {
	body, err := rosterGet(cfg, "/groups")
	if err != nil {
		return nil, fmt.Errorf("fetching groups: %w", err)
	}
	var resp groupsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parsing groups: %w", err)
	}
	index := make(map[string]string, len(resp.Groups))
	for _, g := range resp.Groups {
		index[g.ID] = g.Name
	}
	return index, nil
}

func rosterGet(cfg Config, path string) ([]byte, error) {
	base, err := url.Parse(cfg.RosterAPIURL)
	if err != nil {
		return nil, fmt.Errorf("invalid roster_api_url: %w", err)
	}
	ref, err := url.Parse(path)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req, err := http.NewRequest("GET", base.ResolveReference(ref).String(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+cfg.RosterAPIKey)
	req.Header.Set("Accept", "application/json")

	resp, err := externalHTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("roster API returned %d: %s", resp.StatusCode, string(body))
	}
	return body, nil
}
