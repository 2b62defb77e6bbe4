package orchestrator

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/SocAIty/fastsdk-go/filehandler"
	"github.com/SocAIty/fastsdk-go/model"
	"github.com/SocAIty/fastsdk-go/pkg/apperror"
	"github.com/SocAIty/fastsdk-go/pkg/telemetry"
	"github.com/SocAIty/fastsdk-go/request"
	"github.com/SocAIty/fastsdk-go/response"
)

// DefaultPollInterval is the time between poll ticks when the service
// definition doesn't override it.
const DefaultPollInterval = time.Second

// MaxPollDuration is the wall-clock cap on the Polling stage: a job whose
// provider never reaches a terminal status within this window fails with
// PollTimeout (spec.md §4.8).
const MaxPollDuration = time.Hour

// stagePreparing validates the API key and formats the job's input into
// the provider's RequestData shape.
func (o *Orchestrator) stagePreparing(job *model.APIJob) (*request.RequestData, error) {
	if err := o.Client.ValidateApiKey(); err != nil {
		return nil, err
	}
	return o.Client.FormatRequest(job.Endpoint, job.Input)
}

// stageLoadFiles materializes every file parameter into a MediaFile eagerly
// - reading local paths and validating URLs - so an unreadable file fails
// fast during LoadFiles rather than deep inside Send's own pipeline. The
// upload decision itself (spec.md §4.5) stays inside Send: deciding here
// too would mean uploading the batch twice.
func (o *Orchestrator) stageLoadFiles(data *request.RequestData) error {
	for name, raw := range data.File {
		mf, err := filehandler.Load(raw)
		if err != nil {
			return apperror.Wrap(err, apperror.CodeFileNotReadable, "could not load file parameter \""+name+"\"")
		}
		data.File[name] = mf
	}
	return nil
}

// stageSending issues the job's first HTTP call and decodes the response.
// A non-2xx status or transport failure is fatal: the task plan has no
// retry for Sending, only Polling tolerates transient failure.
func (o *Orchestrator) stageSending(ctx context.Context, job *model.APIJob, data *request.RequestData) (*model.BaseJobResponse, error) {
	resp, err := o.Client.Send(ctx, job.Endpoint, data)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeRequestFailed, "request failed")
	}
	return response.ParseHTTPResponse(resp)
}

// stagePolling repeats every pollInterval until the response reaches a
// terminal status or MaxPollDuration elapses. Each tick is itself wrapped
// in backoff.Retry so up to MaxTransientFails consecutive transient
// failures (connection errors, 5xx) don't fail the job outright. The
// backoff waits between those retries run in real time and count toward
// the MaxPollDuration deadline, which is checked before each tick.
func (o *Orchestrator) stagePolling(ctx context.Context, job *model.APIJob, first *model.BaseJobResponse, cancel *CancelToken, onProgress ProgressFunc) (*model.BaseJobResponse, error) {
	if first.Status.IsTerminal() {
		return terminalResult(first)
	}

	refreshURL := first.RefreshURL
	if refreshURL == "" {
		refreshURL = o.Client.StatusURL(first.JobID)
	}
	if refreshURL == "" {
		return nil, apperror.New(apperror.CodeInternal, "provider response carries no refresh url or job id to poll")
	}

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = o.Poll.Interval
	eb.MaxInterval = 10 * o.Poll.Interval

	deadline := time.Now().Add(o.Poll.MaxDuration)
	attempt := 0

	for {
		if cancel.Cancelled() {
			return nil, apperror.New(apperror.CodeServerJobCancelled, "job cancelled before polling completed")
		}
		if time.Now().After(deadline) {
			return nil, apperror.New(apperror.CodePollTimeout, "polling exceeded the maximum duration")
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(o.Poll.Interval):
		}

		attempt++
		telemetry.AddEvent(ctx, "fastsdk.poll_attempt", telemetry.PollAttributes(attempt)...)

		tries := 0
		resp, err := backoff.Retry(ctx, func() (*model.BaseJobResponse, error) {
			tries++
			httpResp, err := o.Client.PollStatus(ctx, refreshURL)
			if err != nil {
				if isTransientPollError(err) {
					return nil, err
				}
				return nil, backoff.Permanent(err)
			}
			parsed, err := response.ParseHTTPResponse(httpResp)
			if err != nil {
				if isTransientPollError(err) {
					return nil, err
				}
				return nil, backoff.Permanent(err)
			}
			return parsed, nil
		}, backoff.WithBackOff(eb), backoff.WithMaxTries(o.Poll.MaxTransientFails+1))

		if o.Metrics != nil {
			o.Metrics.RecordPollTick(o.Provider, tries > 1)
		}
		if err != nil {
			return nil, apperror.Wrap(err, apperror.CodeRequestFailed, "polling failed after repeated transient errors")
		}

		if resp.RefreshURL != "" {
			refreshURL = resp.RefreshURL
		}

		progress := 0.0
		if resp.Progress != nil {
			progress = *resp.Progress
		}
		reportProgress(onProgress, progress, resp.Message)

		if resp.Status.IsTerminal() {
			return terminalResult(resp)
		}
	}
}

// terminalResult turns a terminal, unsuccessful response into a job-level
// error (spec.md §4.8: "on cancelled/failed, the job fails with the
// server's error message"); a finished response passes through unchanged.
func terminalResult(resp *model.BaseJobResponse) (*model.BaseJobResponse, error) {
	if resp.Status == model.StatusFinished {
		return resp, nil
	}

	code := apperror.CodeServerJobFailed
	switch resp.Status {
	case model.StatusCancelled:
		code = apperror.CodeServerJobCancelled
	case model.StatusTimeout:
		code = apperror.CodePollTimeout
	}
	return nil, apperror.Wrap(resp.Err(), code, resp.Err().Error())
}

// isTransientPollError reports whether err is worth retrying a poll tick
// for: a transport failure, or a 5xx from the provider. Authentication and
// not-found errors are permanent - retrying them wastes the poll budget.
func isTransientPollError(err error) bool {
	var appErr *apperror.Error
	if !errors.As(err, &appErr) {
		return false
	}
	switch appErr.Code {
	case apperror.CodeRequestFailed:
		return true
	case apperror.CodeHttpError:
		status, _ := appErr.Details["status"].(int)
		return status >= 500
	default:
		return false
	}
}

// stageProcessing returns the job's final output: response parsing already
// decoded any media payload (response.DecodeMedia / DecodeReplicateMedia),
// so this stage is a pass-through recorded as its own plan entry for
// progress-reporting symmetry with the other stages.
func (o *Orchestrator) stageProcessing(final *model.BaseJobResponse) any {
	return final.Output
}
