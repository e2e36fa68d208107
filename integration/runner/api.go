package runner

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

type scriptResponse struct {
	Name      string   `json:"name"`
	Text      string   `json:"text"`
	SubScenes int      `json:"subscenes"`
	Pages     int      `json:"pages"`
	Warnings  []string `json:"warnings"`
}

// PublishScript uploads a script under name and returns the API's summary.
func PublishScript(ctx context.Context, client *http.Client, baseURL, name, text string) (*scriptResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, baseURL+"/v1/scripts/"+name, strings.NewReader(text))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	return doScript(client, req)
}

// FetchScript reads a published script back from the API.
func FetchScript(ctx context.Context, client *http.Client, baseURL, name string) (*scriptResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/v1/scripts/"+name, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return doScript(client, req)
}

// DeleteScript removes a published script. A missing script is not an error.
func DeleteScript(ctx context.Context, client *http.Client, baseURL, name string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, baseURL+"/v1/scripts/"+name, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to delete script: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusNotFound {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("delete returned status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

func doScript(client *http.Client, req *http.Request) (*scriptResponse, error) {
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s %s returned status %d: %s", req.Method, req.URL.Path, resp.StatusCode, string(body))
	}

	var out scriptResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &out, nil
}
