package response

import (
	"encoding/json"

	"github.com/SocAIty/fastsdk-go/model"
)

// recoverNested attempts to treat value as a JSON-encoded string that
// itself matches one of the three protocol strategies - Runpod's nested
// recovery rule (spec.md §4.7): its job result can itself be a serialized
// job response from the underlying service.
func recoverNested(value any) (*model.BaseJobResponse, bool) {
	s, ok := value.(string)
	if !ok {
		return nil, false
	}
	var inner map[string]any
	if err := json.Unmarshal([]byte(s), &inner); err != nil {
		return nil, false
	}
	if !isSocaity(inner) && !isRunpod(inner) && !isReplicate(inner) {
		return nil, false
	}
	parsed, err := Parse(inner)
	if err != nil {
		return nil, false
	}
	return parsed, true
}

// mergeOuterInner layers the recovered inner response over the outer one:
// inner fields win wherever inner sets them, outer fields survive only
// where inner is absent (spec.md §4.7).
func mergeOuterInner(outer, inner *model.BaseJobResponse) *model.BaseJobResponse {
	merged := *outer
	if inner.Status != "" && inner.Status != model.StatusUnknown {
		merged.Status = inner.Status
	}
	if inner.JobID != "" {
		merged.JobID = inner.JobID
	}
	if inner.RefreshURL != "" {
		merged.RefreshURL = inner.RefreshURL
	}
	if inner.Message != "" {
		merged.Message = inner.Message
	}
	if inner.Progress != nil {
		merged.Progress = inner.Progress
	}
	if inner.Output != nil {
		merged.Output = inner.Output
	}
	if inner.Error != "" {
		merged.Error = inner.Error
	}
	return &merged
}
