package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

type scriptInfo struct {
	Name      string `json:"name"`
	Published bool   `json:"published"`
}

type scriptResponse struct {
	Name string `json:"name"`
	Text string `json:"text"`
}

func testConnection(client *http.Client, baseURL string) bool {
	resp, err := client.Get(baseURL + "/health")
	if err != nil {
		return false
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()
	return resp.StatusCode == http.StatusOK
}

func listScripts(client *http.Client, baseURL string) ([]scriptInfo, error) {
	body, err := getJSON(client, baseURL+"/v1/scripts")
	if err != nil {
		return nil, fmt.Errorf("failed to list scripts: %w", err)
	}

	var scripts []scriptInfo
	if err := json.Unmarshal(body, &scripts); err != nil {
		return nil, fmt.Errorf("failed to parse script list: %w", err)
	}
	return scripts, nil
}

func getScript(client *http.Client, baseURL, name string) (string, error) {
	body, err := getJSON(client, baseURL+"/v1/scripts/"+url.PathEscape(name))
	if err != nil {
		return "", fmt.Errorf("failed to get script: %w", err)
	}

	var s scriptResponse
	if err := json.Unmarshal(body, &s); err != nil {
		return "", fmt.Errorf("failed to parse script response: %w", err)
	}
	return s.Text, nil
}

func getJSON(client *http.Client, u string) ([]byte, error) {
	resp, err := client.Get(u)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errorResp ErrorResponse
		if err := json.Unmarshal(body, &errorResp); err != nil || errorResp.Error == "" {
			return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
		}
		return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, errorResp.Error)
	}
	return body, nil
}
