// Package orchestrator drives one job through its task plan: Preparing,
// optionally LoadFiles and Uploading, Sending, optionally Polling, and
// Processing (spec.md §4.8).
package orchestrator

import "github.com/SocAIty/fastsdk-go/model"

// BuildPlan computes a job's task plan before scheduling, per spec.md
// §4.8's five inclusion rules. The plan is frozen at job creation so
// progress reporting has a fixed denominator (model.APIJob.RecordStage).
func BuildPlan(endpoint *model.EndpointDefinition, service *model.ServiceDefinition, hasUploader bool) model.TaskPlan {
	stages := []model.StageName{model.StagePreparing}

	if endpoint.HasMediaParameter() {
		stages = append(stages, model.StageLoadFiles)
	}
	if hasUploader {
		stages = append(stages, model.StageUploading)
	}

	stages = append(stages, model.StageSending)

	if service.Specification.IsAsync() {
		stages = append(stages, model.StagePolling)
	}

	stages = append(stages, model.StageProcessed)

	return model.TaskPlan{Stages: stages}
}
