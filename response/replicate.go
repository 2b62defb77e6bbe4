package response

import (
	"strings"

	"github.com/SocAIty/fastsdk-go/model"
)

// isReplicate matches a body with a nested urls.get that points at
// api.replicate.com (spec.md §4.7 rule 3).
func isReplicate(raw map[string]any) bool {
	urls, ok := raw["urls"].(map[string]any)
	if !ok {
		return false
	}
	get, ok := urls["get"].(string)
	if !ok {
		return false
	}
	return strings.Contains(get, "api.replicate.com")
}

// parseReplicate decodes a Replicate response. Its poll URL rides in the
// body itself (urls.get), unlike Runpod's which the caller must derive.
func parseReplicate(raw map[string]any) (*model.BaseJobResponse, error) {
	id, _ := raw["id"].(string)
	status := mapReplicateStatus(asString(raw["status"]))
	if status == model.StatusUnknown && isSuccessfulStatusCode(raw) {
		status = model.StatusFinished
	}
	progress, msg := extractProgress(raw, status)

	var refreshURL string
	if urls, ok := raw["urls"].(map[string]any); ok {
		refreshURL = asString(urls["get"])
	}

	resp := &model.BaseJobResponse{
		Status:     status,
		JobID:      id,
		RefreshURL: refreshURL,
		Message:    msg,
		Progress:   progress,
		Output:     DecodeReplicateMedia(raw["output"]),
		Extra:      map[string]any{"replicate": raw},
	}
	if errMsg, ok := raw["error"].(string); ok {
		resp.Error = errMsg
	}
	return resp, nil
}

// isSuccessfulStatusCode handles Replicate bodies whose "status" field maps
// to nothing recognized but that otherwise self-report a successful HTTP
// outcome via status_code/is_error, both of which default to the
// successful case when absent (spec.md §8 boundary behaviors).
func isSuccessfulStatusCode(raw map[string]any) bool {
	statusCode := 200.0
	if sc, ok := raw["status_code"].(float64); ok {
		statusCode = sc
	}
	isError, _ := raw["is_error"].(bool)
	return statusCode == 200 && !isError
}
