package specloader

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/SocAIty/fastsdk-go/pkg/apperror"
)

// runpodProxyTimeout is the spec-fetch timeout for the Runpod path,
// spec.md §5's "1800s for spec fetch through Runpod" - generous because a
// cold serverless worker can take a while to boot before it can even
// report "/openapi.json".
const runpodProxyTimeout = 1800 * time.Second

const runpodPollInterval = 2 * time.Second

// RunpodProxyOption configures a single LoadURL call's Runpod Spec Proxy
// behavior.
type RunpodProxyOption func(*runpodProxyConfig)

type runpodProxyConfig struct {
	apiKey  string
	runsync bool
}

// WithAPIKey sets the bearer token sent to the Runpod serverless endpoint.
func WithAPIKey(key string) RunpodProxyOption {
	return func(c *runpodProxyConfig) { c.apiKey = key }
}

// WithRunSync selects submitting through Runpod's /runsync endpoint
// first (cheaper than run+poll for a small payload), falling back to
// /run + poll when runsync responds IN_QUEUE or IN_PROGRESS (recovered
// from the original's RunpodOpenApiLoader, SPEC_FULL.md §5). runsync is
// already the default, so the option does not change behaviour.
func WithRunSync() RunpodProxyOption {
	return func(c *runpodProxyConfig) { c.runsync = true }
}

// loadViaRunpodProxy submits a job with {"input": {"path": "/openapi.json"}}
// to the Runpod serverless endpoint and awaits the result, since Runpod
// hosts don't expose the spec as a static file.
func (l *Loader) loadViaRunpodProxy(ctx context.Context, baseURL string, opts ...RunpodProxyOption) (map[string]any, error) {
	cfg := &runpodProxyConfig{runsync: true}
	for _, o := range opts {
		o(cfg)
	}

	base := strings.TrimSuffix(baseURL, "/")
	base = strings.TrimSuffix(base, "/run")
	base = strings.TrimSuffix(base, "/runsync")

	if cached, ok := l.fromCache(base + "/openapi.json"); ok {
		return cached, nil
	}

	ctx, cancel := context.WithTimeout(ctx, runpodProxyTimeout)
	defer cancel()

	payload, _ := json.Marshal(map[string]any{
		"input": map[string]any{"path": "/openapi.json"},
	})

	var output map[string]any
	var err error
	if cfg.runsync {
		output, err = l.runpodSubmit(ctx, base+"/runsync", payload, cfg.apiKey)
		if err == errRunpodInQueue {
			output, err = l.runpodRunAndPoll(ctx, base, payload, cfg.apiKey)
		}
	} else {
		output, err = l.runpodRunAndPoll(ctx, base, payload, cfg.apiKey)
	}
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeSpecNotFound,
			fmt.Sprintf("could not fetch spec via runpod proxy at %s", base))
	}

	spec, err := extractSpecFromRunpodOutput(output)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeSpecMalformed, "runpod proxy returned a malformed spec")
	}

	l.toCache(base+"/openapi.json", spec)
	return spec, nil
}

var errRunpodInQueue = fmt.Errorf("runpod: runsync responded IN_QUEUE")

// runpodSubmit posts to /runsync and returns the job's "output" field, or
// errRunpodInQueue if runpod answered IN_QUEUE or IN_PROGRESS instead of
// a finished result.
func (l *Loader) runpodSubmit(ctx context.Context, url string, payload []byte, apiKey string) (map[string]any, error) {
	body, err := l.runpodPost(ctx, url, payload, apiKey)
	if err != nil {
		return nil, err
	}
	status, _ := body["status"].(string)
	if status == "IN_QUEUE" || status == "IN_PROGRESS" {
		return nil, errRunpodInQueue
	}
	if status == "FAILED" {
		return nil, fmt.Errorf("runpod job failed: %v", body["error"])
	}
	out, _ := body["output"].(map[string]any)
	return out, nil
}

// runpodRunAndPoll submits the job asynchronously via /run, then polls
// /status/{id} until the job reaches a terminal state.
func (l *Loader) runpodRunAndPoll(ctx context.Context, base string, payload []byte, apiKey string) (map[string]any, error) {
	body, err := l.runpodPost(ctx, base+"/run", payload, apiKey)
	if err != nil {
		return nil, err
	}
	jobID, _ := body["id"].(string)
	if jobID == "" {
		return nil, fmt.Errorf("runpod /run response has no job id")
	}

	ticker := time.NewTicker(runpodPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
			statusBody, err := l.runpodGet(ctx, fmt.Sprintf("%s/status/%s", base, jobID), apiKey)
			if err != nil {
				return nil, err
			}
			status, _ := statusBody["status"].(string)
			switch status {
			case "COMPLETED":
				out, _ := statusBody["output"].(map[string]any)
				return out, nil
			case "FAILED", "CANCELLED", "TIMED_OUT":
				return nil, fmt.Errorf("runpod job ended with status %s", status)
			}
		}
	}
}

func (l *Loader) runpodPost(ctx context.Context, url string, payload []byte, apiKey string) (map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}
	return l.runpodDo(req)
}

func (l *Loader) runpodGet(ctx context.Context, url, apiKey string) (map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}
	return l.runpodDo(req)
}

func (l *Loader) runpodDo(req *http.Request) (map[string]any, error) {
	resp, err := l.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("runpod proxy http %d: %s", resp.StatusCode, string(data))
	}
	var body map[string]any
	if err := json.Unmarshal(data, &body); err != nil {
		return nil, fmt.Errorf("runpod proxy returned malformed json: %w", err)
	}
	return body, nil
}

// extractSpecFromRunpodOutput recovers the spec document from a Runpod
// job's "output" field, which may either be the spec object directly or a
// JSON-encoded string carrying it.
func extractSpecFromRunpodOutput(output map[string]any) (map[string]any, error) {
	if output == nil {
		return nil, fmt.Errorf("runpod job output is empty")
	}
	if _, hasPaths := output["paths"]; hasPaths {
		return output, nil
	}
	if _, hasComponents := output["components"]; hasComponents {
		return output, nil
	}
	if raw, ok := output["output"].(string); ok {
		var spec map[string]any
		if err := json.Unmarshal([]byte(raw), &spec); err == nil {
			return spec, nil
		}
	}
	return output, nil
}
