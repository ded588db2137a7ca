package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

func main() {
	baseURL := os.Getenv("DUPSCAN_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	// Wait for server to start
	time.Sleep(2 * time.Second)

	fmt.Println("Starting Integration Test...")

	fmt.Println("1. Health check...")
	if _, ok := sendRequest(baseURL, "GET", "/healthz", nil); !ok {
		fmt.Println("FAILED: Health check")
		os.Exit(1)
	}
	fmt.Println("PASSED: Health check")

	fmt.Println("2. Self scan...")
	selfPayload := map[string]interface{}{
		"threshold": 0.8,
		"records": []map[string]interface{}{
			{"id": "1", "fields": map[string]string{"name": "Customer Risk Dashboard - Compliance"}},
			{"id": "2", "fields": map[string]string{"name": "Customer Risk Dashboard Compliance"}},
			{"id": "3", "fields": map[string]string{"name": "Vendor Onboarding Tracker"}},
		},
	}
	body, ok := sendRequest(baseURL, "POST", "/scan", selfPayload)
	if !ok || clusterCount(body) != 1 {
		fmt.Println("FAILED: Self scan")
		os.Exit(1)
	}
	fmt.Println("PASSED: Self scan")

	fmt.Println("3. Cross scan...")
	crossPayload := map[string]interface{}{
		"mode":      "cross",
		"threshold": 0.7,
		"records": []map[string]interface{}{
			{"id": "A1", "source": "A", "fields": map[string]string{"name": "Quarterly Audit Report"}},
			{"id": "B7", "source": "B", "fields": map[string]string{"name": "Quarterly Audit Report v2"}},
		},
	}
	body, ok = sendRequest(baseURL, "POST", "/scan", crossPayload)
	if !ok || clusterCount(body) != 1 {
		fmt.Println("FAILED: Cross scan")
		os.Exit(1)
	}
	fmt.Println("PASSED: Cross scan")
}

func clusterCount(body []byte) int {
	var resp struct {
		Clusters []json.RawMessage `json:"clusters"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		fmt.Printf("Error decoding response: %v\n", err)
		return -1
	}
	return len(resp.Clusters)
}

func sendRequest(baseURL, method, endpoint string, payload interface{}) ([]byte, bool) {
	var body io.Reader
	if payload != nil {
		jsonBytes, _ := json.Marshal(payload)
		body = bytes.NewBuffer(jsonBytes)
	}

	req, err := http.NewRequest(method, baseURL+endpoint, body)
	if err != nil {
		fmt.Printf("Error creating request: %v\n", err)
		return nil, false
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		fmt.Printf("Error sending request: %v\n", err)
		return nil, false
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		fmt.Printf("Request failed with status %d: %s\n", resp.StatusCode, string(respBody))
		return nil, false
	}

	fmt.Printf("Response: %s\n", string(respBody))
	return respBody, true
}
