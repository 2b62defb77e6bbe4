package response

import (
	"bytes"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SocAIty/fastsdk-go/model"
	"github.com/SocAIty/fastsdk-go/pkg/apperror"
)

func httpResp(status int, body string) *http.Response {
	return &http.Response{StatusCode: status, Body: io.NopCloser(bytes.NewBufferString(body))}
}

func TestParse_Socaity(t *testing.T) {
	raw := map[string]any{
		"endpoint_protocol": "socaity",
		"id":                "job-1",
		"status":            "processing",
		"progress":          0.5,
		"refresh_job_url":   "https://svc.example.com/jobs/job-1",
	}
	resp, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, model.StatusProcessing, resp.Status)
	assert.Equal(t, "job-1", resp.JobID)
	assert.Equal(t, "https://svc.example.com/jobs/job-1", resp.RefreshURL)
	require.NotNil(t, resp.Progress)
	assert.Equal(t, 0.5, *resp.Progress)
}

func TestParse_Runpod_StatusMapping(t *testing.T) {
	raw := map[string]any{"id": "rp-1", "status": "IN_PROGRESS"}
	resp, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, model.StatusProcessing, resp.Status)
	assert.Equal(t, "rp-1", resp.JobID)
}

func TestParse_Runpod_FinishedForcesFullProgress(t *testing.T) {
	raw := map[string]any{"id": "rp-1", "status": "COMPLETED", "output": map[string]any{"text": "done"}}
	resp, err := Parse(raw)
	require.NoError(t, err)
	require.NotNil(t, resp.Progress)
	assert.Equal(t, 1.0, *resp.Progress)
}

func TestParse_Runpod_NestedRecovery(t *testing.T) {
	nested := `{"id":"rp-1","status":"COMPLETED","output":{"file_name":"a.png","content_type":"image/png","content":"aGVsbG8="}}`
	raw := map[string]any{"id": "rp-1", "status": "IN_PROGRESS", "output": nested}
	resp, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, model.StatusFinished, resp.Status, "the recovered inner status overrides the outer status")
	media, ok := resp.Output.(DecodedMedia)
	require.True(t, ok)
	assert.Equal(t, MediaImage, media.Kind)
}

func TestParse_Replicate_DetectsByNestedURL(t *testing.T) {
	raw := map[string]any{
		"id":     "rep-1",
		"status": "succeeded",
		"urls":   map[string]any{"get": "https://api.replicate.com/v1/predictions/rep-1"},
		"output": "https://replicate.delivery/pbxt/abc/out.png",
	}
	resp, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, model.StatusFinished, resp.Status)
	assert.Equal(t, "https://api.replicate.com/v1/predictions/rep-1", resp.RefreshURL)
	lazy, ok := resp.Output.(LazyMediaURL)
	require.True(t, ok)
	assert.Equal(t, "https://replicate.delivery/pbxt/abc/out.png", lazy.URL)
}

func TestParse_GenericFallback(t *testing.T) {
	raw := map[string]any{"answer": 42}
	resp, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, model.StatusFinished, resp.Status)
}

func TestParseHTTPResponse_Unauthorized(t *testing.T) {
	_, err := ParseHTTPResponse(httpResp(http.StatusUnauthorized, `{}`))
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.CodeUnauthorized))
}

func TestParseHTTPResponse_NotFound(t *testing.T) {
	_, err := ParseHTTPResponse(httpResp(http.StatusNotFound, `{}`))
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.CodeNotFound))
}

func TestParseHTTPResponse_ServerError(t *testing.T) {
	_, err := ParseHTTPResponse(httpResp(http.StatusInternalServerError, `oops`))
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.CodeHttpError))
}

func TestParseHTTPResponse_OKDispatchesToParse(t *testing.T) {
	resp, err := ParseHTTPResponse(httpResp(http.StatusOK, `{"endpoint_protocol":"socaity","id":"j1","status":"finished","result":"hi"}`))
	require.NoError(t, err)
	assert.Equal(t, model.StatusFinished, resp.Status)
	assert.Equal(t, "hi", resp.Output)
}

func TestBaseJobResponse_ErrClassification(t *testing.T) {
	failed := model.BaseJobResponse{Status: model.StatusFailed, Error: "boom"}
	require.Error(t, failed.Err())
	assert.Equal(t, "boom", failed.Err().Error())

	finished := model.BaseJobResponse{Status: model.StatusFinished}
	assert.NoError(t, finished.Err())
	assert.True(t, finished.Succeeded())
}
