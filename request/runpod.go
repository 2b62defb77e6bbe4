package request

import (
	"context"
	"net/http"
	"strings"

	"github.com/SocAIty/fastsdk-go/filehandler"
	"github.com/SocAIty/fastsdk-go/model"
	"github.com/SocAIty/fastsdk-go/pkg/apperror"
)

// RunpodClient is the variant for Runpod serverless endpoints: every
// endpoint hits the single {base}/run route, with the endpoint's own path
// folded into the body instead, the whole input wrapped under "input",
// and status polled with POST (spec.md §4.6 table).
type RunpodClient struct {
	*BaseClient
}

// NewRunpodClient builds a Runpod client over the shared BaseClient.
func NewRunpodClient(cfg Config) (*RunpodClient, error) {
	base, err := NewBaseClient(cfg)
	if err != nil {
		return nil, err
	}
	return &RunpodClient{BaseClient: base}, nil
}

// ValidateApiKey requires a key starting "rpa_", or "r8_" in one revision.
func (c *RunpodClient) ValidateApiKey() error {
	if c.apiKey == "" {
		return apperror.New(apperror.CodeApiKeyMissing, "runpod requires an API key").
			WithDetails("signup_url", "https://www.runpod.io")
	}
	if !strings.HasPrefix(c.apiKey, "rpa_") && !strings.HasPrefix(c.apiKey, "r8_") {
		return apperror.New(apperror.CodeApiKeyInvalid, `runpod API keys must start with "rpa_" (or "r8_" in one revision)`).
			WithDetails("signup_url", "https://www.runpod.io")
	}
	return nil
}

// FormatRequest folds query-location parameters into the body; everything
// else is the usual partitioning.
func (c *RunpodClient) FormatRequest(endpoint *model.EndpointDefinition, input map[string]any) (*RequestData, error) {
	data, err := c.BaseClient.FormatRequest(endpoint, input)
	if err != nil {
		return nil, err
	}
	for k, v := range data.Query {
		data.Body[k] = v
	}
	data.Query = make(map[string]string)
	return data, nil
}

// BuildURL always returns {base}/run; the endpoint's own path travels in
// the body instead.
func (c *RunpodClient) BuildURL(endpoint *model.EndpointDefinition, data *RequestData) (string, error) {
	return c.baseURL + "/run", nil
}

// Send resolves file parameters to base64 or URLs, wraps everything under
// "input" with the endpoint path folded in, and POSTs as JSON.
func (c *RunpodClient) Send(ctx context.Context, endpoint *model.EndpointDefinition, data *RequestData) (*http.Response, error) {
	targetURL, err := c.BuildURL(endpoint, data)
	if err != nil {
		return nil, err
	}

	if len(data.File) > 0 {
		attachments, err := filehandler.Process(ctx, data.File, c.fileProfile)
		if err != nil {
			return nil, err
		}
		for name, att := range attachments {
			if att.URL != "" {
				data.Body[name] = att.URL
			} else {
				data.Body[name] = att.Base64
			}
		}
	}

	input := make(map[string]any, len(data.Body)+1)
	for k, v := range data.Body {
		input[k] = v
	}
	input["path"] = endpoint.Path

	req, err := c.buildJSONRequest(ctx, http.MethodPost, targetURL, map[string]any{"input": input})
	if err != nil {
		return nil, err
	}
	return c.doRequest(req, endpoint, data)
}

// StatusURL builds Runpod's status route from its job id: Runpod never
// embeds a refresh URL in the response body.
func (c *RunpodClient) StatusURL(jobID string) string {
	return c.baseURL + "/status/" + jobID
}

// PollStatus polls with POST, per the Runpod row of the table.
func (c *RunpodClient) PollStatus(ctx context.Context, refreshURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, refreshURL, nil)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeRequestFailed, "failed to build poll request")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeRequestFailed, "poll request transport failed")
	}
	return resp, nil
}
