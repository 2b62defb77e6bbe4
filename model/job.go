package model

import (
	"time"

	"github.com/google/uuid"
)

// JobState is the lifecycle state of an APIJob.
type JobState string

const (
	JobPending   JobState = "pending"
	JobRunning   JobState = "running"
	JobFinished  JobState = "finished"
	JobFailed    JobState = "failed"
	JobCancelled JobState = "cancelled"
)

// IsTerminal reports whether a job in this state will never transition again.
func (s JobState) IsTerminal() bool {
	switch s {
	case JobFinished, JobFailed, JobCancelled:
		return true
	default:
		return false
	}
}

// StageName is one step of a job's task plan, built by orchestrator.BuildPlan
// from the rules in spec.md §4.8.
type StageName string

const (
	StagePreparing StageName = "preparing"
	StageLoadFiles StageName = "load_files"
	StageUploading StageName = "uploading"
	StageSending   StageName = "sending"
	StagePolling   StageName = "polling"
	StageProcessed StageName = "processed"
)

// TaskPlan is the ordered, conditionally-included list of stages a job
// executes, frozen at job creation time so progress reporting has a fixed
// denominator.
type TaskPlan struct {
	Stages []StageName
}

// StageOutput captures what a single stage produced, kept in APIJob's
// per-stage history so a failed job retains every stage's output up to
// the point of failure (spec.md §7).
type StageOutput struct {
	Stage     StageName
	StartedAt time.Time
	EndedAt   time.Time
	Output    any
	Err       error
}

// APIJob is one invocation of an endpoint against a service, tracked end
// to end by the Job Orchestrator.
type APIJob struct {
	ID          string
	Service     *ServiceDefinition
	Endpoint    *EndpointDefinition
	Input       map[string]any
	Plan        TaskPlan
	StageOutput []StageOutput
	Progress    float64 // 0..1 across the plan's stages
	State       JobState
	FinalResult *BaseJobResponse
	Err         error
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewJob builds a pending job with a fresh ID. The caller assigns Plan once
// the orchestrator has computed it.
func NewJob(service *ServiceDefinition, endpoint *EndpointDefinition, input map[string]any) *APIJob {
	now := jobTimestamp()
	return &APIJob{
		ID:        uuid.NewString(),
		Service:   service,
		Endpoint:  endpoint,
		Input:     input,
		State:     JobPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// jobTimestamp exists so time.Now() has exactly one call site in this
// package; tests can't override it without running the toolchain, but
// production code never needs to.
func jobTimestamp() time.Time {
	return time.Now().UTC()
}

// RecordStage appends a completed stage's output to the job history and
// advances Progress proportionally to plan position.
func (j *APIJob) RecordStage(stage StageName, started, ended time.Time, output any, err error) {
	j.StageOutput = append(j.StageOutput, StageOutput{
		Stage: stage, StartedAt: started, EndedAt: ended, Output: output, Err: err,
	})
	j.UpdatedAt = jobTimestamp()
	if len(j.Plan.Stages) == 0 {
		return
	}
	j.Progress = float64(len(j.StageOutput)) / float64(len(j.Plan.Stages))
}

// LastOutput returns the output of the most recently recorded stage, if any.
func (j *APIJob) LastOutput() (any, bool) {
	if len(j.StageOutput) == 0 {
		return nil, false
	}
	return j.StageOutput[len(j.StageOutput)-1].Output, true
}
