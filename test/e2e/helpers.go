//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"mime/multipart"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/finsight-labs/finrag/internal/agents"
	"github.com/finsight-labs/finrag/internal/api/handlers"
	"github.com/finsight-labs/finrag/internal/chunker"
	"github.com/finsight-labs/finrag/internal/domain"
	"github.com/finsight-labs/finrag/internal/jobs"
	"github.com/finsight-labs/finrag/internal/llm"
	"github.com/finsight-labs/finrag/internal/repository"
	"github.com/finsight-labs/finrag/internal/search"
	"github.com/finsight-labs/finrag/internal/server"
	"github.com/finsight-labs/finrag/internal/service"
	"github.com/finsight-labs/finrag/internal/storage"
	"github.com/finsight-labs/finrag/internal/testutil"
)

const embeddingDimensions = 1536

// E2ETestEnv holds all resources needed for E2E tests
type E2ETestEnv struct {
	T            *testing.T
	Ctx          context.Context
	PostgresC    *testutil.PostgresContainer
	RustFSC      *testutil.RustFSContainer
	Pool         *pgxpool.Pool
	ServerURL    string
	ServerCloser func()
	S3Client     *storage.S3Client
	BinaryDir    string
	HTTPClient   *http.Client
}

// SetupE2EEnv creates a full E2E test environment with containers and server
func SetupE2EEnv(t *testing.T) *E2ETestEnv {
	ctx := context.Background()

	pgC := testutil.NewPostgresContainer(ctx, t)
	s3C := testutil.NewRustFSContainer(ctx, t)

	pool := testutil.NewTestPool(ctx, t, pgC, "../../migrations")

	s3Client, err := storage.NewS3Client(ctx, storage.S3ClientConfig{
		Endpoint:        s3C.Endpoint(),
		Region:          "us-east-1",
		AccessKeyID:     "rustfsadmin",
		SecretAccessKey: "rustfsadmin",
		Bucket:          "finrag-reports",
		UsePathStyle:    true,
	})
	if err != nil {
		t.Fatalf("failed to create S3 client: %v", err)
	}

	if err := s3Client.EnsureBucket(ctx); err != nil {
		t.Fatalf("failed to create bucket: %v", err)
	}

	port, err := getFreePort()
	if err != nil {
		t.Fatalf("failed to get free port: %v", err)
	}

	serverURL, serverCloser := startServer(t, pool, s3Client, port)

	return &E2ETestEnv{
		T:            t,
		Ctx:          ctx,
		PostgresC:    pgC,
		RustFSC:      s3C,
		Pool:         pool,
		ServerURL:    serverURL,
		ServerCloser: serverCloser,
		S3Client:     s3Client,
		HTTPClient:   &http.Client{Timeout: 30 * time.Second},
	}
}

// Cleanup releases all resources
func (e *E2ETestEnv) Cleanup() {
	if e.ServerCloser != nil {
		e.ServerCloser()
	}
	if e.Pool != nil {
		e.Pool.Close()
	}
	if e.RustFSC != nil {
		e.RustFSC.Terminate(e.Ctx)
	}
	if e.PostgresC != nil {
		e.PostgresC.Terminate(e.Ctx)
	}
	if e.BinaryDir != "" {
		os.RemoveAll(e.BinaryDir)
	}
}

// BuildBinaries builds the finrag and finragd binaries
func (e *E2ETestEnv) BuildBinaries() {
	tmpDir, err := os.MkdirTemp("", "finrag-e2e-*")
	if err != nil {
		e.T.Fatalf("failed to create temp dir: %v", err)
	}
	e.BinaryDir = tmpDir

	cmd := exec.Command("go", "build", "-o", filepath.Join(tmpDir, "finragd"), "./cmd/finragd")
	cmd.Dir = "../.."
	if out, err := cmd.CombinedOutput(); err != nil {
		e.T.Fatalf("failed to build finragd: %v\n%s", err, out)
	}

	cmd = exec.Command("go", "build", "-o", filepath.Join(tmpDir, "finrag"), "./cmd/finrag")
	cmd.Dir = "../.."
	if out, err := cmd.CombinedOutput(); err != nil {
		e.T.Fatalf("failed to build finrag: %v\n%s", err, out)
	}
}

// RunFinrag runs the finrag CLI command against the test server
func (e *E2ETestEnv) RunFinrag(workDir string, args ...string) (string, error) {
	cmd := exec.Command(filepath.Join(e.BinaryDir, "finrag"), args...)
	cmd.Dir = workDir
	cmd.Env = append(os.Environ(),
		fmt.Sprintf("FINRAG_API_URL=%s", e.ServerURL),
	)
	out, err := cmd.CombinedOutput()
	return string(out), err
}

// APIResponse represents a standard API response
type APIResponse struct {
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error,omitempty"`
	Code  string          `json:"code,omitempty"`
}

// Get performs a GET request
func (e *E2ETestEnv) Get(path string) (*APIResponse, error) {
	return e.doRequest("GET", path, nil)
}

// Post performs a POST request
func (e *E2ETestEnv) Post(path string, body interface{}) (*APIResponse, error) {
	return e.doRequest("POST", path, body)
}

// Delete performs a DELETE request
func (e *E2ETestEnv) Delete(path string) (*APIResponse, error) {
	return e.doRequest("DELETE", path, nil)
}

// UploadReport uploads a document as multipart/form-data
func (e *E2ETestEnv) UploadReport(filename string, content []byte) (*APIResponse, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(content); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequest("POST", e.ServerURL+"/reports", &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := e.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	return parseResponse(resp)
}

// WaitForReportStatus polls until the report reaches the wanted status
func (e *E2ETestEnv) WaitForReportStatus(reportID, status string, timeout time.Duration) map[string]interface{} {
	deadline := time.Now().Add(timeout)
	var last map[string]interface{}
	for time.Now().Before(deadline) {
		resp, err := e.Get("/reports/" + reportID)
		if err == nil {
			var report map[string]interface{}
			if err := json.Unmarshal(resp.Data, &report); err == nil {
				last = report
				if report["processing_status"] == status {
					return report
				}
				if report["processing_status"] == "failed" && status != "failed" {
					e.T.Fatalf("report %s failed: %v", reportID, report["error_message"])
				}
			}
		}
		time.Sleep(200 * time.Millisecond)
	}
	e.T.Fatalf("report %s did not reach status %q within %v (last: %v)", reportID, status, timeout, last)
	return nil
}

func (e *E2ETestEnv) doRequest(method, path string, body interface{}) (*APIResponse, error) {
	url := e.ServerURL + path

	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal body: %w", err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	return parseResponse(resp)
}

func parseResponse(resp *http.Response) (*APIResponse, error) {
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if len(respBody) == 0 {
		if resp.StatusCode >= 400 {
			return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
		}
		return &APIResponse{}, nil
	}

	var apiResp APIResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		if resp.StatusCode >= 400 {
			return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(respBody))
		}
		return nil, err
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, apiResp.Error)
	}

	return &apiResp, nil
}

// startServer starts the HTTP server with the full service stack, an
// ingest worker, and a deterministic in-process LLM provider.
func startServer(t *testing.T, pool *pgxpool.Pool, s3Client *storage.S3Client, port int) (string, func()) {
	reportRepo := repository.NewReportRepository(pool)
	chunkRepo := repository.NewChunkRepository(pool)
	auditRepo := repository.NewAuditLogRepository(pool)
	jobRepo := repository.NewIngestJobRepository(pool)
	txRunner := repository.NewTxRunner(pool)

	uploader := storage.NewUploader(s3Client, "finrag-reports", "")
	source := storage.NewSource(s3Client)

	provider := &stubProvider{}
	indexSvc := service.NewIndexService(txRunner, chunkRepo)
	ingestSvc := service.NewIngestServiceWithQueue(
		reportRepo, source, nil, provider, indexSvc, jobRepo,
		chunker.Options{ChunkSize: 400, Overlap: 80}, embeddingDimensions,
	)
	reportSvc := service.NewReportService(reportRepo, chunkRepo)

	orchestrator := agents.NewOrchestrator(
		agents.NewRouter(),
		agents.NewDocumentAgent(provider),
		agents.NewMetricsAgent(provider),
		agents.NewTrendAgent(provider),
	)
	engine := search.NewEngine(chunkRepo)
	querySvc := service.NewQueryService(provider, engine, orchestrator, auditRepo, "stub-chat")

	worker := jobs.NewWorker(jobs.NewIngestWorker(jobRepo, ingestSvc), 200*time.Millisecond)
	go worker.Start(context.Background())

	router := server.NewRouter(server.RouterConfig{
		ReportHandler: handlers.NewReportHandler(reportSvc, ingestSvc, uploader),
		QueryHandler:  handlers.NewQueryHandler(querySvc),
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			t.Logf("server error: %v", err)
		}
	}()

	serverURL := fmt.Sprintf("http://localhost:%d", port)
	waitForServer(t, serverURL, 10*time.Second)

	return serverURL, func() {
		worker.Stop()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}
}

func waitForServer(t *testing.T, url string, timeout time.Duration) {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		resp, err := http.Get(url + "/health")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(100 * time.Millisecond)
	}
	t.Fatalf("server did not start within %v", timeout)
}

func getFreePort() (int, error) {
	addr, err := net.ResolveTCPAddr("tcp", "localhost:0")
	if err != nil {
		return 0, err
	}

	l, err := net.ListenTCP("tcp", addr)
	if err != nil {
		return 0, err
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}

// stubProvider is a deterministic LLM backend. Embeddings share a large
// fixed component so every chunk clears the similarity threshold, with a
// small text-dependent tail so vectors are still distinguishable.
type stubProvider struct{}

func (p *stubProvider) Name() domain.Provider { return domain.ProviderOpenAI }

func (p *stubProvider) EmbeddingModel() string { return "stub-embed" }

func (p *stubProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	vec := make([]float32, embeddingDimensions)
	vec[0] = 1.0

	sum := sha256.Sum256([]byte(strings.ToLower(text)))
	for i, b := range sum {
		vec[i+1] = float32(b) / (255.0 * 16.0)
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	scale := float32(1.0 / math.Sqrt(norm))
	for i := range vec {
		vec[i] *= scale
	}
	return vec, nil
}

func (p *stubProvider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	question := ""
	for _, m := range req.Messages {
		if m.Role == llm.RoleUser {
			question = m.Content
		}
	}
	text := fmt.Sprintf("Answer to %q based on %d characters of context.", question, len(req.Context))
	return &llm.CompletionResponse{
		Text:       text,
		Model:      "stub-chat",
		Provider:   domain.ProviderOpenAI,
		TokensUsed: len(text) / 4,
	}, nil
}
