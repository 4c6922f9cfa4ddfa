package main

import (
	"fmt"
	"io"
	"net/http"
	"time"
)

const externalHTTPTimeout = 30 * time.Second

var externalHTTPClient = &http.Client{
	Timeout: externalHTTPTimeout,
}

// FetchDocument retrieves raw report markup. Transport failures propagate
// to the caller unchanged; the pipeline never retries, callers fall back
// to cached or estimated data.
func FetchDocument(url string) ([]byte, error) {
	resp, err := externalHTTPClient.Get(url)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", url, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %s: status %d", url, resp.StatusCode)
	}
	return body, nil
}
