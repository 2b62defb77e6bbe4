package response

import (
	"strings"

	"github.com/SocAIty/fastsdk-go/model"
)

// runpodStatusMap reduces Runpod's native status vocabulary to the
// unified one (spec.md §4.7).
var runpodStatusMap = map[string]model.JobStatus{
	"IN_QUEUE":    model.StatusQueued,
	"IN_PROGRESS": model.StatusProcessing,
	"COMPLETED":   model.StatusFinished,
	"FAILED":      model.StatusFailed,
	"CANCELLED":   model.StatusCancelled,
	"TIMED_OUT":   model.StatusTimeout,
}

func mapRunpodStatus(s string) model.JobStatus {
	if v, ok := runpodStatusMap[strings.ToUpper(s)]; ok {
		return v
	}
	return model.StatusUnknown
}

// replicateStatusMap reduces Replicate's native status vocabulary to the
// unified one (spec.md §4.7).
var replicateStatusMap = map[string]model.JobStatus{
	"STARTING":   model.StatusQueued,
	"BOOTING":    model.StatusProcessing,
	"PROCESSING": model.StatusProcessing,
	"SUCCEEDED":  model.StatusFinished,
	"FAILED":     model.StatusFailed,
	"CANCELED":   model.StatusCancelled,
}

func mapReplicateStatus(s string) model.JobStatus {
	if v, ok := replicateStatusMap[strings.ToUpper(s)]; ok {
		return v
	}
	return model.StatusUnknown
}

// extractProgress is tolerant of progress being a plain number, a
// {progress, message} sub-object, or absent; on a finished status,
// progress is forced to 1.0 regardless of what the body says (spec.md §4.7).
func extractProgress(raw map[string]any, status model.JobStatus) (*float64, string) {
	if status == model.StatusFinished {
		done := 1.0
		return &done, ""
	}

	switch p := raw["progress"].(type) {
	case float64:
		return &p, ""
	case map[string]any:
		msg, _ := p["message"].(string)
		if pv, ok := p["progress"].(float64); ok {
			return &pv, msg
		}
		return nil, msg
	default:
		return nil, ""
	}
}
