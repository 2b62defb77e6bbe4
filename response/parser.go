// Package response implements the protocol-detecting response parser
// (spec.md §4.7): a raw provider body is tried against the Socaity,
// Runpod, and Replicate strategies in order, first match wins, falling
// back to treating the body as an already-finished synchronous result.
package response

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/SocAIty/fastsdk-go/model"
	"github.com/SocAIty/fastsdk-go/pkg/apperror"
)

// ParseHTTPResponse classifies resp's status code per spec.md §4.7's HTTP
// status table, then - for a successful response - decodes and dispatches
// the JSON body to the first matching protocol strategy.
func ParseHTTPResponse(resp *http.Response) (*model.BaseJobResponse, error) {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeRequestFailed, "failed to read response body")
	}

	if appErr := apperror.FromHTTPStatus(resp.StatusCode, string(body)); appErr != nil {
		return nil, appErr
	}

	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, apperror.Wrap(err, apperror.CodeHttpError, "response body is not a json object")
	}
	return Parse(raw)
}

// Parse dispatches a decoded JSON body to the first protocol strategy
// that matches it: Socaity, then Runpod, then Replicate, falling back to
// a synchronous generic response when none match.
func Parse(raw map[string]any) (*model.BaseJobResponse, error) {
	switch {
	case isSocaity(raw):
		return parseSocaity(raw)
	case isRunpod(raw):
		return parseRunpod(raw)
	case isReplicate(raw):
		return parseReplicate(raw)
	default:
		return parseGeneric(raw), nil
	}
}

// parseGeneric treats an unrecognized body as an already-finished
// synchronous result: the whole body is the output.
func parseGeneric(raw map[string]any) *model.BaseJobResponse {
	return &model.BaseJobResponse{
		Status: model.StatusFinished,
		Output: DecodeMedia(raw),
		Extra:  map[string]any{"generic": raw},
	}
}
