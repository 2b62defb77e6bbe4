package orchestrator

import (
	"context"
	"time"

	"github.com/SocAIty/fastsdk-go/model"
	"github.com/SocAIty/fastsdk-go/pkg/apperror"
	"github.com/SocAIty/fastsdk-go/pkg/audit"
	"github.com/SocAIty/fastsdk-go/pkg/logger"
	"github.com/SocAIty/fastsdk-go/pkg/metrics"
	"github.com/SocAIty/fastsdk-go/pkg/telemetry"
	"github.com/SocAIty/fastsdk-go/request"
)

// PollConfig bounds the Polling stage - mirrors config.PollConfig so the
// orchestrator doesn't import the config package just for three fields.
type PollConfig struct {
	Interval          time.Duration
	MaxDuration       time.Duration
	MaxTransientFails uint
}

// DefaultPollConfig matches spec.md §4.8/§5's defaults: 1s between ticks,
// a 3600s wall-clock cap, three tolerated consecutive transient failures.
func DefaultPollConfig() PollConfig {
	return PollConfig{Interval: DefaultPollInterval, MaxDuration: MaxPollDuration, MaxTransientFails: 3}
}

func (p PollConfig) withDefaults() PollConfig {
	if p.Interval <= 0 {
		p.Interval = DefaultPollInterval
	}
	if p.MaxDuration <= 0 {
		p.MaxDuration = MaxPollDuration
	}
	if p.MaxTransientFails == 0 {
		p.MaxTransientFails = 3
	}
	return p
}

// Orchestrator drives one job through its task plan, stage by stage,
// against a single provider client (spec.md §4.8).
type Orchestrator struct {
	Client   request.ProviderClient
	Provider string // metrics/telemetry label, e.g. the service's Specification
	Audit    audit.Logger
	Metrics  *metrics.Metrics
	Poll     PollConfig
}

// New builds an Orchestrator. A nil auditLogger falls back to a no-op sink
// so callers that don't care about audit trails don't have to construct one.
// A zero-valued PollConfig is filled in with DefaultPollConfig's values.
func New(client request.ProviderClient, provider string, auditLogger audit.Logger, m *metrics.Metrics, poll PollConfig) *Orchestrator {
	if auditLogger == nil {
		auditLogger = &audit.NoopLogger{}
	}
	return &Orchestrator{Client: client, Provider: provider, Audit: auditLogger, Metrics: m, Poll: poll.withDefaults()}
}

// Run executes job.Plan in order, recording each stage's output and
// updating job.State/job.Progress as it goes. It returns the same error it
// leaves on job.Err, so callers that only care about success/failure don't
// need to inspect the job afterward.
func (o *Orchestrator) Run(ctx context.Context, job *model.APIJob, cancel *CancelToken, onProgress ProgressFunc) error {
	if cancel == nil {
		cancel = NewCancelToken()
	}

	ctx, span := telemetry.StartSpan(ctx, "fastsdk.job",
		telemetry.WithAttributes(telemetry.JobAttributes(job.ID, job.Service.ID, job.Endpoint.ID, o.Provider)...))
	defer span.End()

	job.State = model.JobRunning
	o.logAudit(ctx, audit.NewEntry(job.ID, audit.ActionJobSubmitted).
		Service(job.Service.ID).Endpoint(job.Endpoint.ID).Build())
	if o.Metrics != nil {
		o.Metrics.RecordJobSubmitted(o.Provider)
	}

	var (
		data   *request.RequestData
		parsed *model.BaseJobResponse
	)

	for _, stage := range job.Plan.Stages {
		if cancel.Cancelled() {
			return o.finishCancelled(ctx, job)
		}

		started := time.Now()
		output, err := o.runStage(ctx, stage, job, &data, &parsed, cancel, onProgress)
		ended := time.Now()

		job.RecordStage(stage, started, ended, output, err)
		if o.Metrics != nil {
			o.Metrics.RecordStageDuration(string(stage), ended.Sub(started))
		}
		o.logStage(ctx, job, stage, ended.Sub(started), err)

		if err != nil {
			return o.finishFailed(ctx, job, err)
		}
		reportProgress(onProgress, job.Progress, string(stage))
	}

	return o.finishSucceeded(ctx, job, parsed)
}

// runStage dispatches one plan entry to its stage function. data and parsed
// are threaded through by pointer since different stages produce and
// consume them (Preparing produces data; Sending/Polling produce parsed).
func (o *Orchestrator) runStage(
	ctx context.Context,
	stage model.StageName,
	job *model.APIJob,
	data **request.RequestData,
	parsed **model.BaseJobResponse,
	cancel *CancelToken,
	onProgress ProgressFunc,
) (any, error) {
	switch stage {
	case model.StagePreparing:
		d, err := o.stagePreparing(job)
		*data = d
		return d, err

	case model.StageLoadFiles:
		err := o.stageLoadFiles(*data)
		return *data, err

	case model.StageUploading:
		// The upload decision and execution happen inside Send
		// (filehandler.Process); this stage exists so the plan and its
		// progress reporting reflect that an upload may occur.
		return *data, nil

	case model.StageSending:
		p, err := o.stageSending(ctx, job, *data)
		*parsed = p
		return p, err

	case model.StagePolling:
		p, err := o.stagePolling(ctx, job, *parsed, cancel, onProgress)
		*parsed = p
		return p, err

	case model.StageProcessed:
		return o.stageProcessing(*parsed), nil

	default:
		return nil, apperror.New(apperror.CodeInternal, "unknown task plan stage \""+string(stage)+"\"")
	}
}

func (o *Orchestrator) finishSucceeded(ctx context.Context, job *model.APIJob, final *model.BaseJobResponse) error {
	job.State = model.JobFinished
	job.FinalResult = final
	job.Progress = 1.0
	o.logAudit(ctx, audit.NewEntry(job.ID, audit.ActionJobFinished).
		Service(job.Service.ID).Endpoint(job.Endpoint.ID).Build())
	if o.Metrics != nil {
		o.Metrics.RecordJobFinished(o.Provider)
	}
	return nil
}

func (o *Orchestrator) finishFailed(ctx context.Context, job *model.APIJob, cause error) error {
	job.State = model.JobFailed
	job.Err = cause
	telemetry.SetError(ctx, cause)
	o.logAudit(ctx, audit.NewEntry(job.ID, audit.ActionJobFailed).
		Service(job.Service.ID).Endpoint(job.Endpoint.ID).
		Error(string(apperror.Code(cause)), cause.Error()).Build())
	if o.Metrics != nil {
		o.Metrics.RecordJobFailed(o.Provider, string(apperror.Code(cause)))
	}
	return cause
}

func (o *Orchestrator) finishCancelled(ctx context.Context, job *model.APIJob) error {
	job.State = model.JobCancelled
	err := apperror.New(apperror.CodeServerJobCancelled, "job cancelled")
	job.Err = err
	o.logAudit(ctx, audit.NewEntry(job.ID, audit.ActionJobCancelled).
		Service(job.Service.ID).Endpoint(job.Endpoint.ID).Build())
	if o.Metrics != nil {
		o.Metrics.RecordJobCancelled(o.Provider)
	}
	return err
}

func (o *Orchestrator) logStage(ctx context.Context, job *model.APIJob, stage model.StageName, d time.Duration, stageErr error) {
	entry := audit.NewEntry(job.ID, audit.ActionStageFinished).
		Service(job.Service.ID).Endpoint(job.Endpoint.ID).Stage(string(stage)).Duration(d)
	if stageErr != nil {
		entry = entry.Error(string(apperror.Code(stageErr)), stageErr.Error())
	}
	o.logAudit(ctx, entry.Build())
}

func (o *Orchestrator) logAudit(ctx context.Context, entry *audit.Entry) {
	if o.Audit == nil {
		return
	}
	if err := o.Audit.Log(ctx, entry); err != nil {
		logger.Warn("audit log write failed", "job_id", entry.JobID, "action", entry.Action, "err", err)
	}
}
