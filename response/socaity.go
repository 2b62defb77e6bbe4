package response

import (
	"strings"

	"github.com/SocAIty/fastsdk-go/model"
)

// isSocaity matches a body tagged with the Socaity endpoint protocol that
// also carries both fields every job response needs (spec.md §4.7 rule 1).
func isSocaity(raw map[string]any) bool {
	proto, _ := raw["endpoint_protocol"].(string)
	_, hasID := raw["id"]
	_, hasStatus := raw["status"]
	return proto == "socaity" && hasID && hasStatus
}

// parseSocaity decodes a Socaity response. Socaity sends its status
// vocabulary uppercase ("QUEUED", "FINISHED", ...); the unified enum's
// values are lowercase, so the raw string is lowercased before the cast,
// the same normalization api_job_status.py's from_str applies.
func parseSocaity(raw map[string]any) (*model.BaseJobResponse, error) {
	id, _ := raw["id"].(string)
	status := model.JobStatus(strings.ToLower(asString(raw["status"])))
	progress, msg := extractProgress(raw, status)

	resp := &model.BaseJobResponse{
		Status:   status,
		JobID:    id,
		Message:  msg,
		Progress: progress,
		Output:   DecodeMedia(raw["result"]),
		Extra:    map[string]any{"socaity": raw},
	}
	if refresh, ok := raw["refresh_job_url"].(string); ok {
		resp.RefreshURL = refresh
	}
	if errMsg, ok := raw["error"].(string); ok {
		resp.Error = errMsg
	}
	return resp, nil
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}
