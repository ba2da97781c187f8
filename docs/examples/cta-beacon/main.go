// Fiberpulse CTA Beacon Example
//
// A minimal client that reports a CTA click the same way the marketing
// site's beacon script does: fetch a short-lived ingest token, then
// POST the event with the token in the X-Metrics-Token header.
//
// Usage:
//
//	export FIBERPULSE_URL="http://localhost:8080"
//	go run main.go -target-id 42 -reference "https://fiberlite.example/products/rebar"
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"
)

type tokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in"`
}

type eventRequest struct {
	Type      string            `json:"type"`
	TargetID  int64             `json:"target_id,omitempty"`
	Reference string            `json:"reference,omitempty"`
	Extra     map[string]string `json:"extra,omitempty"`
}

func main() {
	targetID := flag.Int64("target-id", 0, "Page id the CTA lives on")
	reference := flag.String("reference", "", "Referrer URL fallback")
	subtype := flag.String("subtype", "", "Optional CTA subtype (e.g. floating, inline)")
	flag.Parse()

	baseURL := os.Getenv("FIBERPULSE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	client := &http.Client{Timeout: 5 * time.Second}

	token, err := fetchToken(client, baseURL)
	if err != nil {
		log.Fatalf("fetch token: %v", err)
	}

	event := eventRequest{
		Type:      "cta_click",
		TargetID:  *targetID,
		Reference: *reference,
	}
	if *subtype != "" {
		event.Extra = map[string]string{"subtype": *subtype}
	}

	if err := postEvent(client, baseURL, token, event); err != nil {
		log.Fatalf("post event: %v", err)
	}

	fmt.Println("event recorded")
}

func fetchToken(client *http.Client, baseURL string) (string, error) {
	resp, err := client.Get(baseURL + "/api/v1/metrics/token")
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", err
	}
	return tr.Token, nil
}

func postEvent(client *http.Client, baseURL, token string, event eventRequest) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, baseURL+"/api/v1/metrics", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Metrics-Token", token)

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}
