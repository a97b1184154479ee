package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const (
	envAPIURL    = "FINRAG_API_URL"
	envSessionID = "FINRAG_SESSION_ID"

	defaultAPIURL = "http://localhost:8080"
)

type APIClient struct {
	baseURL    string
	sessionID  string
	httpClient *http.Client
}

// NewAPIClientWithCmd creates an APIClient with config cascade: flag → env → global config → default
// If cmd is nil, skips flag checking and goes directly to env → global config
func NewAPIClientWithCmd(cmd *cobra.Command) (*APIClient, error) {
	var baseURL, sessionID string

	// Priority 1: Check flags if cmd is provided
	if cmd != nil {
		if flagURL, err := cmd.Flags().GetString("api-url"); err == nil && flagURL != "" {
			baseURL = flagURL
		}
		if flagSession, err := cmd.Flags().GetString("session"); err == nil && flagSession != "" {
			sessionID = flagSession
		}
	}

	// Priority 2: Check environment variables (only if not found in flags)
	if baseURL == "" {
		baseURL = os.Getenv(envAPIURL)
	}
	if sessionID == "" {
		sessionID = os.Getenv(envSessionID)
	}

	// Priority 3: Check global config (only if not found in env)
	if baseURL == "" || sessionID == "" {
		globalConfig, err := LoadGlobalConfig()
		if err != nil {
			return nil, err
		}
		if globalConfig != nil {
			if baseURL == "" && globalConfig.APIURL != "" {
				baseURL = globalConfig.APIURL
			}
			if sessionID == "" && globalConfig.SessionID != "" {
				sessionID = globalConfig.SessionID
			}
		}
	}

	if baseURL == "" {
		baseURL = defaultAPIURL
	}

	return NewAPIClientWithConfig(baseURL, sessionID)
}

func NewAPIClient() (*APIClient, error) {
	_ = godotenv.Load()
	return NewAPIClientWithCmd(nil)
}

// NewAPIClientWithConfig creates an APIClient with an explicit base URL and session ID.
func NewAPIClientWithConfig(baseURL, sessionID string) (*APIClient, error) {
	return &APIClient{
		baseURL:   baseURL,
		sessionID: sessionID,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}, nil
}

// APIResponse represents the standard API response format.
type APIResponse struct {
	Data  json.RawMessage `json:"data,omitempty"`
	Error string          `json:"error,omitempty"`
	Code  string          `json:"code,omitempty"`
}

// APIError represents an error from the API.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("API error (%d, %s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("API error (%d): %s", e.StatusCode, e.Message)
}

// Get performs a GET request.
func (c *APIClient) Get(path string) (*APIResponse, error) {
	return c.do("GET", path, nil)
}

// Post performs a POST request with JSON body.
func (c *APIClient) Post(path string, body interface{}) (*APIResponse, error) {
	return c.do("POST", path, body)
}

// Delete performs a DELETE request.
func (c *APIClient) Delete(path string) (*APIResponse, error) {
	return c.do("DELETE", path, nil)
}

func (c *APIClient) do(method, path string, body interface{}) (*APIResponse, error) {
	url := c.baseURL + path

	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.sessionID != "" {
		req.Header.Set("X-Session-ID", c.sessionID)
	}

	return c.send(req)
}

// PostFile uploads a file as multipart/form-data under the given field name.
func (c *APIClient) PostFile(path, fieldName, filePath string, onProgress ProgressFunc) (*APIResponse, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile(fieldName, filepath.Base(filePath))
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}

	reader := io.Reader(file)
	if onProgress != nil {
		reader = &progressReader{
			reader:     file,
			total:      stat.Size(),
			onProgress: onProgress,
		}
	}
	if _, err := io.Copy(part, reader); err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize form: %w", err)
	}

	req, err := http.NewRequest("POST", c.baseURL+path, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", writer.FormDataContentType())
	if c.sessionID != "" {
		req.Header.Set("X-Session-ID", c.sessionID)
	}

	return c.send(req)
}

func (c *APIClient) send(req *http.Request) (*APIResponse, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	// DELETE returns 204 with no body.
	if len(respBody) == 0 {
		if resp.StatusCode >= 400 {
			return nil, &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		}
		return &APIResponse{}, nil
	}

	var apiResp APIResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		if resp.StatusCode >= 400 {
			return nil, &APIError{
				StatusCode: resp.StatusCode,
				Message:    string(respBody),
			}
		}
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Code:       apiResp.Code,
			Message:    apiResp.Error,
		}
	}

	return &apiResp, nil
}

// ProgressFunc is a callback for reporting upload progress.
type ProgressFunc func(current, total int64)

// progressReader wraps an io.Reader and reports progress.
type progressReader struct {
	reader     io.Reader
	total      int64
	current    int64
	onProgress ProgressFunc
}

func (pr *progressReader) Read(p []byte) (int, error) {
	n, err := pr.reader.Read(p)
	pr.current += int64(n)
	if pr.onProgress != nil {
		pr.onProgress(pr.current, pr.total)
	}
	return n, err
}
