package response

import "github.com/SocAIty/fastsdk-go/model"

// isRunpod matches a body carrying both id and status where status maps
// under the Runpod table (spec.md §4.7 rule 2).
func isRunpod(raw map[string]any) bool {
	_, hasID := raw["id"]
	if !hasID {
		return false
	}
	statusStr, hasStatus := raw["status"].(string)
	if !hasStatus {
		return false
	}
	_, known := runpodStatusMap[statusStr]
	return known
}

// parseRunpod decodes a Runpod response and recovers a nested job
// response when the output is itself a JSON-encoded job response
// (spec.md §4.7's nested recovery rule).
func parseRunpod(raw map[string]any) (*model.BaseJobResponse, error) {
	id, _ := raw["id"].(string)
	status := mapRunpodStatus(asString(raw["status"]))
	progress, msg := extractProgress(raw, status)

	resp := &model.BaseJobResponse{
		Status:   status,
		JobID:    id,
		Message:  msg,
		Progress: progress,
		Output:   DecodeMedia(raw["output"]),
		Extra:    map[string]any{"runpod": raw},
	}
	if errMsg, ok := raw["error"].(string); ok {
		resp.Error = errMsg
	}

	if nested, ok := recoverNested(raw["output"]); ok {
		resp = mergeOuterInner(resp, nested)
	}
	return resp, nil
}
