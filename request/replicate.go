package request

import (
	"context"
	"net/http"
	"strings"

	"github.com/SocAIty/fastsdk-go/filehandler"
	"github.com/SocAIty/fastsdk-go/model"
	"github.com/SocAIty/fastsdk-go/pkg/apperror"
)

// ReplicateConfig is Config plus the model version Replicate's /predictions
// route needs injected into the body (spec.md §4.6 table's "version
// injection" row); it comes from the service's ServiceAddress.Version.
type ReplicateConfig struct {
	Config
	Version string
}

// ReplicateClient is the variant for Replicate's single-endpoint API: the
// whole input is wrapped under "input", a pinned version is injected for
// /predictions calls, and polling uses GET, inherited unchanged from
// BaseClient (spec.md §4.6 table).
type ReplicateClient struct {
	*BaseClient
	version string
}

// NewReplicateClient builds a Replicate client over the shared BaseClient.
func NewReplicateClient(cfg ReplicateConfig) (*ReplicateClient, error) {
	base, err := NewBaseClient(cfg.Config)
	if err != nil {
		return nil, err
	}
	return &ReplicateClient{BaseClient: base, version: cfg.Version}, nil
}

// ValidateApiKey requires a key starting "r8_".
func (c *ReplicateClient) ValidateApiKey() error {
	if c.apiKey == "" {
		return apperror.New(apperror.CodeApiKeyMissing, "replicate requires an API key").
			WithDetails("signup_url", "https://replicate.com/account/api-tokens")
	}
	if !strings.HasPrefix(c.apiKey, "r8_") {
		return apperror.New(apperror.CodeApiKeyInvalid, `replicate API keys must start with "r8_"`).
			WithDetails("signup_url", "https://replicate.com/account/api-tokens")
	}
	return nil
}

// FormatRequest folds query-location parameters into the body; everything
// else is the usual partitioning.
func (c *ReplicateClient) FormatRequest(endpoint *model.EndpointDefinition, input map[string]any) (*RequestData, error) {
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

// BuildURL always returns the bare base URL: Replicate exposes one
// endpoint per model version, not a path per operation.
func (c *ReplicateClient) BuildURL(endpoint *model.EndpointDefinition, data *RequestData) (string, error) {
	return c.baseURL, nil
}

// Send resolves file parameters to base64 or URLs, wraps the result under
// "input", injects a pinned "version" when the target is a /predictions
// route and one is configured, and POSTs as JSON.
func (c *ReplicateClient) Send(ctx context.Context, endpoint *model.EndpointDefinition, data *RequestData) (*http.Response, error) {
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

	wrapped := map[string]any{"input": data.Body}
	if c.version != "" && strings.Contains(targetURL, "/predictions") {
		wrapped["version"] = c.version
	}

	req, err := c.buildJSONRequest(ctx, http.MethodPost, targetURL, wrapped)
	if err != nil {
		return nil, err
	}
	return c.doRequest(req, endpoint, data)
}
