package runtime

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SocAIty/fastsdk-go/model"
	"github.com/SocAIty/fastsdk-go/pkg/apperror"
	"github.com/SocAIty/fastsdk-go/pkg/config"
	"github.com/SocAIty/fastsdk-go/pkg/audit"
	"github.com/SocAIty/fastsdk-go/registry"
)

func testRuntime(t *testing.T, server *httptest.Server) *Runtime {
	t.Helper()

	cfg := &config.Config{}
	cfg.App.Name = "test"
	cfg.Poll.Interval = 10 * time.Millisecond
	cfg.Poll.MaxDuration = time.Second
	cfg.Poll.MaxTransientFails = 1

	reg := registry.New(nil)
	svc := &model.ServiceDefinition{
		ID:             "echo-svc",
		DisplayName:    "Echo Service",
		Specification:  model.SpecOpenAPI,
		ServiceAddress: model.NewGenericAddress(server.URL),
		Endpoints: []model.EndpointDefinition{
			{ID: "echo", Path: "/echo", Method: model.MethodPost},
		},
	}
	require.NoError(t, reg.Add(context.Background(), svc))

	return &Runtime{Config: cfg, Registry: reg, Audit: &audit.NoopLogger{}}
}

func TestRuntime_SubmitSynchronousEndpoint(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"answer": 42})
	}))
	defer server.Close()

	rt := testRuntime(t, server)

	jc, err := rt.Submit(context.Background(), "echo-svc", "echo", map[string]any{})
	require.NoError(t, err)

	resp, err := jc.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.JobFinished, jc.Job.State)
	assert.Equal(t, float64(42), resp.Output.(map[string]any)["answer"])
}

func TestRuntime_SubmitUnknownService(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer server.Close()

	rt := testRuntime(t, server)
	_, err := rt.Submit(context.Background(), "does-not-exist", "echo", map[string]any{})
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.CodeNotFound))
}

func TestRuntime_SubmitUnknownEndpoint(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer server.Close()

	rt := testRuntime(t, server)
	_, err := rt.Submit(context.Background(), "echo-svc", "nope", map[string]any{})
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.CodeNotFound))
}

func TestJobContext_ProgressReachesOneOnSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{})
	}))
	defer server.Close()

	rt := testRuntime(t, server)
	jc, err := rt.Submit(context.Background(), "echo-svc", "echo", map[string]any{})
	require.NoError(t, err)

	_, err = jc.Wait(context.Background())
	require.NoError(t, err)
	progress, _ := jc.Progress()
	assert.Equal(t, 1.0, progress)
}
