package request

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SocAIty/fastsdk-go/filehandler"
	"github.com/SocAIty/fastsdk-go/model"
	"github.com/SocAIty/fastsdk-go/pkg/apperror"
)

func testEndpoint() *model.EndpointDefinition {
	return &model.EndpointDefinition{
		ID:     "predict",
		Path:   "/predict",
		Method: model.MethodPost,
		Parameters: []model.EndpointParameter{
			{Name: "prompt", Location: model.LocationBody, Required: true},
			{Name: "seed", Location: model.LocationQuery, Default: 0},
			{Name: "image", Definition: []model.ParameterDefinition{{Format: model.FormatImage}}, Location: model.LocationBody},
		},
	}
}

func newClient(t *testing.T, baseURL string) *GenericClient {
	t.Helper()
	c, err := NewGenericClient(Config{BaseURL: baseURL, FileProfile: filehandler.Profile{AttachFormat: filehandler.AttachMultipart}})
	require.NoError(t, err)
	return c
}

func TestFormatRequest_MissingRequired(t *testing.T) {
	c := newClient(t, "https://example.com")
	_, err := c.FormatRequest(testEndpoint(), map[string]any{})
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.CodeMissingParameter))
}

func TestFormatRequest_AppliesDefaultAndRoutesMedia(t *testing.T) {
	c := newClient(t, "https://example.com")
	data, err := c.FormatRequest(testEndpoint(), map[string]any{"prompt": "a cat", "image": []byte("bytes")})
	require.NoError(t, err)
	assert.Equal(t, "a cat", data.Body["prompt"])
	assert.Equal(t, "0", data.Query["seed"])
	assert.Contains(t, data.File, "image")
	assert.NotContains(t, data.Body, "image")
}

func TestFormatRequest_AddsBearerHeader(t *testing.T) {
	c, err := NewGenericClient(Config{BaseURL: "https://example.com", APIKey: "key123"})
	require.NoError(t, err)
	data, err := c.FormatRequest(testEndpoint(), map[string]any{"prompt": "hi"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer key123", data.Headers["Authorization"])
}

func TestBuildURL_SubstitutesPathAndQuery(t *testing.T) {
	c := newClient(t, "https://example.com")
	endpoint := &model.EndpointDefinition{Path: "/services/{id}/predict"}
	data := NewRequestData()
	data.Path["id"] = "svc-1"
	data.Query["n"] = "3"

	u, err := c.BuildURL(endpoint, data)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/services/svc-1/predict?n=3", u)
}

func TestSend_JSONBody(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := newClient(t, srv.URL)
	data := NewRequestData()
	data.Body["prompt"] = "hello"
	resp, err := c.Send(t.Context(), &model.EndpointDefinition{Path: "/predict", Method: model.MethodPost}, data)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "hello", gotBody["prompt"])
}

func TestSend_MultipartWithFile(t *testing.T) {
	var gotContentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		require.NoError(t, r.ParseMultipartForm(1<<20))
		_, _, err := r.FormFile("image")
		require.NoError(t, err)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := newClient(t, srv.URL)
	data := NewRequestData()
	data.File["image"] = []byte("pixels")
	resp, err := c.Send(t.Context(), &model.EndpointDefinition{Path: "/predict", Method: model.MethodPost}, data)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, gotContentType, "multipart/form-data")
}

func TestSocaity_ValidateApiKey_HostedRequiresFormat(t *testing.T) {
	c, err := NewSocaityClient(Config{BaseURL: "https://api.socaity.ai", APIKey: "bad"})
	require.NoError(t, err)
	assert.True(t, apperror.Is(c.ValidateApiKey(), apperror.CodeApiKeyInvalid))

	valid := "sk_" + string(make([]byte, 64))
	c2, err := NewSocaityClient(Config{BaseURL: "https://api.socaity.ai", APIKey: valid})
	require.NoError(t, err)
	assert.NoError(t, c2.ValidateApiKey())
}

func TestSocaity_ValidateApiKey_SelfHostedOptional(t *testing.T) {
	c, err := NewSocaityClient(Config{BaseURL: "https://my-service.example.com"})
	require.NoError(t, err)
	assert.NoError(t, c.ValidateApiKey())
}

func TestSocaity_FormatRequest_FoldsQueryIntoBody(t *testing.T) {
	c, err := NewSocaityClient(Config{BaseURL: "https://example.com"})
	require.NoError(t, err)
	data, err := c.FormatRequest(testEndpoint(), map[string]any{"prompt": "hi"})
	require.NoError(t, err)
	assert.Empty(t, data.Query)
	assert.Equal(t, "0", data.Body["seed"])
}

func TestRunpod_ValidateApiKey(t *testing.T) {
	c, err := NewRunpodClient(Config{BaseURL: "https://api.runpod.ai/v2/x", APIKey: "wrong"})
	require.NoError(t, err)
	assert.True(t, apperror.Is(c.ValidateApiKey(), apperror.CodeApiKeyInvalid))

	c2, err := NewRunpodClient(Config{BaseURL: "https://api.runpod.ai/v2/x", APIKey: "rpa_abc"})
	require.NoError(t, err)
	assert.NoError(t, c2.ValidateApiKey())
}

func TestRunpod_BuildURL_AlwaysRun(t *testing.T) {
	c, err := NewRunpodClient(Config{BaseURL: "https://api.runpod.ai/v2/x"})
	require.NoError(t, err)
	u, err := c.BuildURL(&model.EndpointDefinition{Path: "/predict"}, NewRequestData())
	require.NoError(t, err)
	assert.Equal(t, "https://api.runpod.ai/v2/x/run", u)
}

func TestRunpod_Send_WrapsInputAndFoldsPath(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/run", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c, err := NewRunpodClient(Config{BaseURL: srv.URL, APIKey: "rpa_x"})
	require.NoError(t, err)
	data := NewRequestData()
	data.Body["prompt"] = "hi"
	_, err = c.Send(t.Context(), &model.EndpointDefinition{Path: "/predict", Method: model.MethodPost}, data)
	require.NoError(t, err)

	input, ok := gotBody["input"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "hi", input["prompt"])
	assert.Equal(t, "/predict", input["path"])
}

func TestReplicate_ValidateApiKey(t *testing.T) {
	c, err := NewReplicateClient(ReplicateConfig{Config: Config{BaseURL: "https://api.replicate.com", APIKey: "bad"}})
	require.NoError(t, err)
	assert.True(t, apperror.Is(c.ValidateApiKey(), apperror.CodeApiKeyInvalid))
}

func TestReplicate_BuildURL_IgnoresPath(t *testing.T) {
	c, err := NewReplicateClient(ReplicateConfig{Config: Config{BaseURL: "https://api.replicate.com/v1/predictions"}})
	require.NoError(t, err)
	u, err := c.BuildURL(&model.EndpointDefinition{Path: "/ignored"}, NewRequestData())
	require.NoError(t, err)
	assert.Equal(t, "https://api.replicate.com/v1/predictions", u)
}

func TestReplicate_Send_InjectsVersionOnPredictions(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c, err := NewReplicateClient(ReplicateConfig{
		Config:  Config{BaseURL: srv.URL + "/v1/predictions", APIKey: "r8_x"},
		Version: "abcd1234",
	})
	require.NoError(t, err)
	data := NewRequestData()
	data.Body["prompt"] = "hi"
	_, err = c.Send(t.Context(), &model.EndpointDefinition{Path: "/predict", Method: model.MethodPost}, data)
	require.NoError(t, err)

	assert.Equal(t, "abcd1234", gotBody["version"])
	input, ok := gotBody["input"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "hi", input["prompt"])
}

func TestSend_HTTPStatusSurfacedByCaller(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := newClient(t, srv.URL)
	data := NewRequestData()
	resp, err := c.Send(t.Context(), &model.EndpointDefinition{Path: "/predict", Method: model.MethodPost}, data)
	require.NoError(t, err, "transport-level Send does not interpret status codes; that's the response parser's job")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
