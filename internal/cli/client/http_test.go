package client

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIClient_Get_ParsesEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/reports/abc", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"id":"abc","filename":"q3.pdf"}}`))
	}))
	defer srv.Close()

	api, err := NewAPIClientWithConfig(srv.URL, "")
	require.NoError(t, err)

	resp, err := api.Get("/reports/abc")
	require.NoError(t, err)
	assert.Contains(t, string(resp.Data), "q3.pdf")
}

func TestAPIClient_Get_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"report not found","code":"NOT_FOUND"}`))
	}))
	defer srv.Close()

	api, err := NewAPIClientWithConfig(srv.URL, "")
	require.NoError(t, err)

	_, err = api.Get("/reports/missing")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "NOT_FOUND", apiErr.Code)
	assert.Equal(t, "report not found", apiErr.Message)
}

func TestAPIClient_Delete_NoContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	api, err := NewAPIClientWithConfig(srv.URL, "")
	require.NoError(t, err)

	resp, err := api.Delete("/reports/abc")
	require.NoError(t, err)
	assert.Empty(t, resp.Data)
}

func TestAPIClient_SessionHeader(t *testing.T) {
	var gotSession string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSession = r.Header.Get("X-Session-ID")
		_, _ = w.Write([]byte(`{"data":{}}`))
	}))
	defer srv.Close()

	api, err := NewAPIClientWithConfig(srv.URL, "analyst-7")
	require.NoError(t, err)

	_, err = api.Post("/ask", map[string]string{"query": "q"})
	require.NoError(t, err)
	assert.Equal(t, "analyst-7", gotSession)
}

func TestAPIClient_PostFile(t *testing.T) {
	filePath := filepath.Join(t.TempDir(), "report.txt")
	require.NoError(t, os.WriteFile(filePath, []byte("revenue up 12%"), 0644))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()

		assert.Equal(t, "report.txt", header.Filename)
		content, err := io.ReadAll(file)
		require.NoError(t, err)
		assert.Equal(t, "revenue up 12%", string(content))

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{"id":"new-report"}}`))
	}))
	defer srv.Close()

	api, err := NewAPIClientWithConfig(srv.URL, "")
	require.NoError(t, err)

	var lastCurrent, lastTotal int64
	resp, err := api.PostFile("/reports", "file", filePath, func(current, total int64) {
		lastCurrent, lastTotal = current, total
	})
	require.NoError(t, err)
	assert.Contains(t, string(resp.Data), "new-report")
	assert.Equal(t, lastTotal, lastCurrent)
	assert.Equal(t, int64(len("revenue up 12%")), lastTotal)
}

func TestNewAPIClientWithCmd_EnvCascade(t *testing.T) {
	t.Setenv(envAPIURL, "http://env-host:8081")
	t.Setenv(envSessionID, "env-session")

	api, err := NewAPIClientWithCmd(nil)
	require.NoError(t, err)
	assert.Equal(t, "http://env-host:8081", api.baseURL)
	assert.Equal(t, "env-session", api.sessionID)
}

func TestNewAPIClientWithCmd_Default(t *testing.T) {
	t.Setenv(envAPIURL, "")
	t.Setenv(envSessionID, "")
	withConfigPath(t, filepath.Join(t.TempDir(), "config.json"))

	api, err := NewAPIClientWithCmd(nil)
	require.NoError(t, err)
	assert.Equal(t, defaultAPIURL, api.baseURL)
}

func TestProgressReader_ReportsProgress(t *testing.T) {
	data := []byte("hello world this is test data")
	reader := bytes.NewReader(data)

	var progressCalls []struct{ current, total int64 }
	pr := &progressReader{
		reader: reader,
		total:  int64(len(data)),
		onProgress: func(current, total int64) {
			progressCalls = append(progressCalls, struct{ current, total int64 }{current, total})
		},
	}

	result, err := io.ReadAll(pr)
	require.NoError(t, err)
	assert.Equal(t, data, result)

	// Progress should have been called at least once
	assert.NotEmpty(t, progressCalls)

	// Final progress should equal total
	lastCall := progressCalls[len(progressCalls)-1]
	assert.Equal(t, int64(len(data)), lastCall.current)
	assert.Equal(t, int64(len(data)), lastCall.total)
}

func TestProgressReader_NilCallback(t *testing.T) {
	data := []byte("hello world")
	reader := bytes.NewReader(data)

	pr := &progressReader{
		reader:     reader,
		total:      int64(len(data)),
		onProgress: nil, // No callback
	}

	result, err := io.ReadAll(pr)
	require.NoError(t, err)
	assert.Equal(t, data, result)
}

func TestProgressReader_SmallReads(t *testing.T) {
	data := []byte("hello world")
	reader := bytes.NewReader(data)

	var progressValues []int64
	pr := &progressReader{
		reader: reader,
		total:  int64(len(data)),
		onProgress: func(current, total int64) {
			progressValues = append(progressValues, current)
		},
	}

	// Read one byte at a time
	buf := make([]byte, 1)
	for {
		n, err := pr.Read(buf)
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	}

	// Progress should increase monotonically
	for i := 1; i < len(progressValues); i++ {
		assert.GreaterOrEqual(t, progressValues[i], progressValues[i-1])
	}
}
