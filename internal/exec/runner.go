package exec

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/PrajwalNP160/major-project-sub001/internal/models"
)

// ErrExecUnavailable marks a non-success response from the execution
// collaborator.
var ErrExecUnavailable = errors.New("execution service unavailable")

// Runner is the HTTP client for the external code-execution
// collaborator. An empty base URL puts it in stub mode: requests are
// answered locally with a description of the would-be execution.
type Runner struct {
	client  *http.Client
	baseURL string
}

func NewRunner(baseURL string) *Runner {
	return &Runner{
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: baseURL,
	}
}

type execRequest struct {
	Source   string `json:"source"`
	Language string `json:"language"`
	Stdin    string `json:"stdin,omitempty"`
}

type execResponse struct {
	Stdout        string `json:"stdout"`
	Stderr        string `json:"stderr"`
	CompileOutput string `json:"compileOutput,omitempty"`
	Error         string `json:"error,omitempty"`
}

// Run submits the request to the collaborator and returns its output.
// The caller bounds the call with ctx; a timeout surfaces as an error.
func (r *Runner) Run(ctx context.Context, req models.ExecuteRequest) (models.ExecutionResult, error) {
	if r.baseURL == "" {
		return r.stub(req), nil
	}

	body, err := json.Marshal(execRequest{
		Source:   req.SourceCode,
		Language: req.LanguageID,
		Stdin:    req.Stdin,
	})
	if err != nil {
		return models.ExecutionResult{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/run", bytes.NewReader(body))
	if err != nil {
		return models.ExecutionResult{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(httpReq)
	if err != nil {
		return models.ExecutionResult{}, fmt.Errorf("call execution service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return models.ExecutionResult{}, fmt.Errorf("%w: status %d: %s", ErrExecUnavailable, resp.StatusCode, bytes.TrimSpace(msg))
	}

	var out execResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return models.ExecutionResult{}, fmt.Errorf("decode execution response: %w", err)
	}
	if out.Error != "" {
		return models.ExecutionResult{}, fmt.Errorf("%w: %s", ErrExecUnavailable, out.Error)
	}

	stderr := out.Stderr
	if stderr == "" {
		stderr = out.CompileOutput
	}
	return models.ExecutionResult{Stdout: out.Stdout, Stderr: stderr}, nil
}

// stub answers an execution request without running anything.
func (r *Runner) stub(req models.ExecuteRequest) models.ExecutionResult {
	return models.ExecutionResult{
		Stdout: fmt.Sprintf(
			"execution service not configured: would run %d bytes of %s with stdin %q",
			len(req.SourceCode), req.LanguageID, req.Stdin,
		),
	}
}
