//go:build e2e

// Package e2e smoke-tests a running fiberpulse instance end to end:
// token issuance, beacon ingestion, dashboard summary and export.
//
// Required environment:
//
//	FIBERPULSE_BASE_URL  (default http://localhost:8080)
//	ADMIN_API_KEY        the running instance's admin key
package e2e

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"
)

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func TestE2ESmoke(t *testing.T) {
	baseURL := envOrDefault("FIBERPULSE_BASE_URL", "http://localhost:8080")
	adminKey := os.Getenv("ADMIN_API_KEY")
	if adminKey == "" {
		t.Fatalf("ADMIN_API_KEY is required for e2e tests")
	}

	client := &http.Client{Timeout: 10 * time.Second}

	waitForReady(t, client, baseURL)

	// Fetch an ingest token like the beacon script does.
	token := fetchToken(t, client, baseURL)

	// Record a click against a unique reference so we can find it again.
	reference := fmt.Sprintf("https://fiberlite.example/e2e/%d", time.Now().UnixNano())
	ingestEvent(t, client, baseURL, token, reference)

	// The summary must now include the click.
	summary := fetchSummary(t, client, baseURL, adminKey)
	if summary.Total < 1 {
		t.Errorf("summary total = %d, want >= 1", summary.Total)
	}
	found := false
	for _, top := range summary.Top {
		if top.Reference == reference {
			found = true
			break
		}
	}
	if !found {
		t.Errorf("summary top does not include reference %s", reference)
	}

	// The CSV export must include the event row.
	csvBody := fetchExport(t, client, baseURL, adminKey, fetchToken(t, client, baseURL))
	if !strings.Contains(csvBody, reference) {
		t.Errorf("csv export does not include reference %s", reference)
	}
}

func waitForReady(t *testing.T, client *http.Client, baseURL string) {
	t.Helper()

	deadline := time.Now().Add(30 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := client.Get(baseURL + "/readyz")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(time.Second)
	}
	t.Fatalf("server at %s not ready within 30s", baseURL)
}

func fetchToken(t *testing.T, client *http.Client, baseURL string) string {
	t.Helper()

	resp, err := client.Get(baseURL + "/api/v1/metrics/token")
	if err != nil {
		t.Fatalf("fetch token: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("token status = %d, want 200", resp.StatusCode)
	}

	var body struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode token: %v", err)
	}
	return body.Token
}

func ingestEvent(t *testing.T, client *http.Client, baseURL, token, reference string) {
	t.Helper()

	payload := fmt.Sprintf(`{"type":"cta_click","reference":%q}`, reference)
	req, err := http.NewRequest(http.MethodPost, baseURL+"/api/v1/metrics", strings.NewReader(payload))
	if err != nil {
		t.Fatalf("build ingest request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Metrics-Token", token)

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("ingest status = %d, want 201 (body %s)", resp.StatusCode, body)
	}
}

type summaryResponse struct {
	Range string `json:"range"`
	Total int    `json:"total"`
	Top   []struct {
		TargetID  int64  `json:"target_id"`
		Reference string `json:"reference"`
		Count     int    `json:"count"`
	} `json:"top"`
}

func fetchSummary(t *testing.T, client *http.Client, baseURL, adminKey string) summaryResponse {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, baseURL+"/api/v1/metrics?range=today", nil)
	if err != nil {
		t.Fatalf("build summary request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+adminKey)

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("fetch summary: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("summary status = %d, want 200", resp.StatusCode)
	}

	var summary summaryResponse
	if err := json.NewDecoder(resp.Body).Decode(&summary); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	return summary
}

func fetchExport(t *testing.T, client *http.Client, baseURL, adminKey, token string) string {
	t.Helper()

	form := url.Values{
		"token":  {token},
		"format": {"csv"},
		"range":  {"today"},
	}
	req, err := http.NewRequest(http.MethodPost, baseURL+"/api/v1/metrics/export",
		strings.NewReader(form.Encode()))
	if err != nil {
		t.Fatalf("build export request: %v", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+adminKey)

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("export status = %d, want 200", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read export body: %v", err)
	}
	return string(body)
}
