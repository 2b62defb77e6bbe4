package request

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/SocAIty/fastsdk-go/filehandler"
	"github.com/SocAIty/fastsdk-go/model"
	"github.com/SocAIty/fastsdk-go/pkg/apperror"
)

const socaityHostedHost = "api.socaity.ai"

// SocaityClient is the variant for the hosted Socaity protocol: the key
// requirement tightens when the host is api.socaity.ai, query parameters
// fold into the body, the body always frames as multipart, and polling
// uses POST instead of GET (spec.md §4.6 table).
type SocaityClient struct {
	*BaseClient
}

// NewSocaityClient builds a Socaity client over the shared BaseClient.
func NewSocaityClient(cfg Config) (*SocaityClient, error) {
	base, err := NewBaseClient(cfg)
	if err != nil {
		return nil, err
	}
	return &SocaityClient{BaseClient: base}, nil
}

// ValidateApiKey enforces the key format only when the base URL is the
// hosted Socaity host; self-hosted services keep the key optional.
func (c *SocaityClient) ValidateApiKey() error {
	u, err := url.Parse(c.baseURL)
	if err != nil || u.Hostname() != socaityHostedHost {
		return nil
	}
	if c.apiKey == "" {
		return apperror.New(apperror.CodeApiKeyMissing, "api.socaity.ai requires an API key").
			WithDetails("signup_url", "https://www.socaity.ai")
	}
	if !strings.HasPrefix(c.apiKey, "sk_") || len(c.apiKey) < 67 {
		return apperror.New(apperror.CodeApiKeyInvalid, "socaity API keys must start with \"sk_\" and be at least 67 characters").
			WithDetails("signup_url", "https://www.socaity.ai")
	}
	return nil
}

// FormatRequest folds query-location parameters into the body, matching
// the table's "query params folded into body" row; everything else is the
// same partitioning BaseClient.FormatRequest does.
func (c *SocaityClient) FormatRequest(endpoint *model.EndpointDefinition, input map[string]any) (*RequestData, error) {
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

// Send always frames the body as multipart, even when the endpoint has no
// file parameters.
func (c *SocaityClient) Send(ctx context.Context, endpoint *model.EndpointDefinition, data *RequestData) (*http.Response, error) {
	method := string(endpoint.Method)
	if method == "" {
		method = string(model.MethodPost)
	}
	targetURL, err := c.BuildURL(endpoint, data)
	if err != nil {
		return nil, err
	}

	attachments := map[string]filehandler.Attachment{}
	if len(data.File) > 0 {
		attachments, err = filehandler.Process(ctx, data.File, c.fileProfile)
		if err != nil {
			return nil, err
		}
	}

	req, err := c.buildMultipartRequest(ctx, method, targetURL, data.Body, attachments)
	if err != nil {
		return nil, err
	}
	return c.doRequest(req, endpoint, data)
}

// PollStatus polls with POST, per the Socaity row of the table.
func (c *SocaityClient) PollStatus(ctx context.Context, refreshURL string) (*http.Response, error) {
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
