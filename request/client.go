// Package request implements the provider-adapted request layer
// (spec.md §4.6): a base HTTP client shared by four provider variants that
// differ in URL composition, body framing, authentication, file encoding,
// and polling method.
package request

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"

	"github.com/SocAIty/fastsdk-go/filehandler"
	"github.com/SocAIty/fastsdk-go/model"
	"github.com/SocAIty/fastsdk-go/pkg/apperror"
	"github.com/SocAIty/fastsdk-go/pkg/logger"
	"github.com/SocAIty/fastsdk-go/pkg/middleware"
	"github.com/SocAIty/fastsdk-go/pkg/ratelimit"
)

// DefaultTimeout is the per-request timeout used when neither the config
// nor the endpoint override it (spec.md §5).
const DefaultTimeout = 60 * time.Second

// ProviderClient is the contract every provider variant fulfills, as
// called by the job orchestrator.
type ProviderClient interface {
	FormatRequest(endpoint *model.EndpointDefinition, input map[string]any) (*RequestData, error)
	BuildURL(endpoint *model.EndpointDefinition, data *RequestData) (string, error)
	Send(ctx context.Context, endpoint *model.EndpointDefinition, data *RequestData) (*http.Response, error)
	PollStatus(ctx context.Context, refreshURL string) (*http.Response, error)
	ValidateApiKey() error

	// StatusURL derives the poll URL from a provider-assigned job id, for
	// providers whose response doesn't embed one (e.g. Runpod). Providers
	// that always embed a refresh URL in the response body return "".
	StatusURL(jobID string) string
}

// Config builds a BaseClient (or a provider variant embedding one).
type Config struct {
	BaseURL     string
	APIKey      string
	Timeout     time.Duration
	Limiter     ratelimit.Limiter
	FileProfile filehandler.Profile
}

// BaseClient owns the reusable HTTP connection pool, cookie jar, and API
// key every provider variant shares, plus the default implementations of
// the ProviderClient contract (spec.md §4.6).
type BaseClient struct {
	baseURL     string
	apiKey      string
	http        *http.Client
	jar         http.CookieJar
	fileProfile filehandler.Profile
	timeout     time.Duration
}

// NewBaseClient builds the shared HTTP client: a cookie jar so
// location:cookie parameters round-trip across Send/Poll calls on the same
// job (recovered necessity - spec.md §3 lists cookie as a valid location
// but doesn't say how it survives the poll loop), and a transport wrapped
// by the middleware chain (recovery, rate limit, tracing, metrics, logging).
func NewBaseClient(cfg Config) (*BaseClient, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInternal, "failed to build cookie jar")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &BaseClient{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		jar:     jar,
		http: &http.Client{
			Jar:       jar,
			Timeout:   timeout,
			Transport: middleware.Default(http.DefaultTransport, cfg.Limiter),
		},
		fileProfile: cfg.FileProfile,
		timeout:     timeout,
	}, nil
}

// ValidateApiKey is a no-op for the generic variant: an API key is
// optional (spec.md §4.6 table).
func (c *BaseClient) ValidateApiKey() error {
	return nil
}

// FormatRequest partitions input by each parameter's location, applies
// defaults, fails MissingParameter for an absent required parameter, and
// routes any media-format parameter into the File bucket regardless of its
// declared location.
func (c *BaseClient) FormatRequest(endpoint *model.EndpointDefinition, input map[string]any) (*RequestData, error) {
	data := NewRequestData()

	for _, p := range endpoint.Parameters {
		val, ok := input[p.Name]
		if !ok {
			if p.Default != nil {
				val, ok = p.Default, true
			} else if p.Required {
				return nil, apperror.New(apperror.CodeMissingParameter,
					fmt.Sprintf("missing required parameter %q", p.Name)).WithField(p.Name)
			}
		}
		if !ok {
			continue
		}

		if p.HasMediaFormat() {
			data.File[p.Name] = val
			continue
		}

		switch p.Location {
		case model.LocationPath:
			data.Path[p.Name] = fmt.Sprintf("%v", val)
		case model.LocationQuery:
			data.Query[p.Name] = fmt.Sprintf("%v", val)
		case model.LocationHeader:
			data.Headers[p.Name] = fmt.Sprintf("%v", val)
		case model.LocationCookie:
			data.Cookies[p.Name] = fmt.Sprintf("%v", val)
		default:
			data.Body[p.Name] = val
		}
	}

	if c.apiKey != "" {
		data.Headers["Authorization"] = "Bearer " + c.apiKey
	}
	return data, nil
}

// BuildURL is the default shape: {base}/{path}?{query}, with path
// parameters substituted into the route template.
func (c *BaseClient) BuildURL(endpoint *model.EndpointDefinition, data *RequestData) (string, error) {
	path := endpoint.Path
	for name, val := range data.Path {
		path = strings.ReplaceAll(path, "{"+name+"}", val)
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	u := c.baseURL + path
	if len(data.Query) > 0 {
		q := url.Values{}
		for k, v := range data.Query {
			q.Set(k, v)
		}
		u += "?" + q.Encode()
	}
	return u, nil
}

// Send performs the default POST: multipart when the endpoint has file
// parameters and the file profile attaches as multipart, JSON otherwise.
// Upload and attach is delegated to the file handler's three-stage
// pipeline before the request body is built.
func (c *BaseClient) Send(ctx context.Context, endpoint *model.EndpointDefinition, data *RequestData) (*http.Response, error) {
	method := string(endpoint.Method)
	if method == "" {
		method = string(model.MethodPost)
	}
	targetURL, err := c.BuildURL(endpoint, data)
	if err != nil {
		return nil, err
	}

	var req *http.Request
	if len(data.File) > 0 {
		req, err = c.buildFileRequest(ctx, method, targetURL, data)
	} else {
		req, err = c.buildJSONRequest(ctx, method, targetURL, data.Body)
	}
	if err != nil {
		return nil, err
	}
	return c.doRequest(req, endpoint, data)
}

// doRequest is the shared transport step every provider variant's Send
// calls once it has built its own *http.Request and resolved its own URL
// (each variant may override FormatRequest/BuildURL and the body framing;
// cookie application, header injection, per-endpoint timeout, and the
// actual round trip stay the same regardless).
func (c *BaseClient) doRequest(req *http.Request, endpoint *model.EndpointDefinition, data *RequestData) (*http.Response, error) {
	if len(data.Cookies) > 0 {
		c.applyCookies(req.URL.String(), data.Cookies)
	}
	for k, v := range data.Headers {
		req.Header.Set(k, v)
	}

	httpClient := c.http
	if endpoint.TimeoutSeconds != nil {
		override := *c.http
		override.Timeout = time.Duration(*endpoint.TimeoutSeconds) * time.Second
		httpClient = &override
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeRequestFailed, "request transport failed")
	}
	return resp, nil
}

// buildFileRequest runs the file handler pipeline and, depending on the
// resolved attach format, either builds a multipart request or folds the
// attachments into the JSON body.
func (c *BaseClient) buildFileRequest(ctx context.Context, method, targetURL string, data *RequestData) (*http.Request, error) {
	attachments, err := filehandler.Process(ctx, data.File, c.fileProfile)
	if err != nil {
		return nil, err
	}

	if c.fileProfile.AttachFormat == filehandler.AttachBase64 {
		for name, att := range attachments {
			switch {
			case att.URL != "":
				data.Body[name] = att.URL
			default:
				data.Body[name] = att.Base64
			}
		}
		return c.buildJSONRequest(ctx, method, targetURL, data.Body)
	}

	return c.buildMultipartRequest(ctx, method, targetURL, data.Body, attachments)
}

func (c *BaseClient) buildJSONRequest(ctx context.Context, method, targetURL string, body map[string]any) (*http.Request, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInvalidParameterValue, "failed to marshal request body")
	}
	req, err := http.NewRequestWithContext(ctx, method, targetURL, bytes.NewReader(payload))
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeRequestFailed, "failed to build request")
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func (c *BaseClient) buildMultipartRequest(ctx context.Context, method, targetURL string, body map[string]any, attachments map[string]filehandler.Attachment) (*http.Request, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	for k, v := range body {
		if err := w.WriteField(k, fmt.Sprintf("%v", v)); err != nil {
			return nil, apperror.Wrap(err, apperror.CodeInternal, "failed to write multipart field")
		}
	}
	for name, att := range attachments {
		if att.URL != "" {
			if err := w.WriteField(name, att.URL); err != nil {
				return nil, apperror.Wrap(err, apperror.CodeInternal, "failed to write multipart url field")
			}
			continue
		}
		if att.Multipart == nil {
			continue
		}
		part, err := w.CreateFormFile(att.Multipart.FieldName, att.Multipart.FileName)
		if err != nil {
			return nil, apperror.Wrap(err, apperror.CodeInternal, "failed to create multipart file field")
		}
		if _, err := part.Write(att.Multipart.Bytes); err != nil {
			return nil, apperror.Wrap(err, apperror.CodeInternal, "failed to write multipart file bytes")
		}
	}
	if err := w.Close(); err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInternal, "failed to close multipart writer")
	}

	req, err := http.NewRequestWithContext(ctx, method, targetURL, buf)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeRequestFailed, "failed to build multipart request")
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req, nil
}

func (c *BaseClient) applyCookies(targetURL string, cookies map[string]string) {
	u, err := url.Parse(targetURL)
	if err != nil {
		logger.Log.Warn("could not parse url to apply cookie-location parameters", "url", targetURL, "error", err)
		return
	}
	httpCookies := make([]*http.Cookie, 0, len(cookies))
	for name, val := range cookies {
		httpCookies = append(httpCookies, &http.Cookie{Name: name, Value: val})
	}
	c.jar.SetCookies(u, httpCookies)
}

// StatusURL returns "" by default: the generic variant's provider always
// embeds its own refresh URL in the response body.
func (c *BaseClient) StatusURL(jobID string) string {
	return ""
}

// PollStatus is the default poll call: GET on refreshURL.
func (c *BaseClient) PollStatus(ctx context.Context, refreshURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, refreshURL, nil)
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

// GenericClient is the provider-agnostic variant: every method defers to
// BaseClient's defaults.
type GenericClient struct {
	*BaseClient
}

// NewGenericClient builds a client with no provider-specific auth or
// framing rules; the file profile typically attaches multipart.
func NewGenericClient(cfg Config) (*GenericClient, error) {
	base, err := NewBaseClient(cfg)
	if err != nil {
		return nil, err
	}
	return &GenericClient{BaseClient: base}, nil
}

var (
	_ ProviderClient = (*GenericClient)(nil)
	_ ProviderClient = (*SocaityClient)(nil)
	_ ProviderClient = (*RunpodClient)(nil)
	_ ProviderClient = (*ReplicateClient)(nil)
)
