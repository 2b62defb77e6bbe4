package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Span attribute keys for a job's "fastsdk.job" span and its
// "fastsdk.poll_attempt" events.
const (
	AttrJobID      = "fastsdk.job_id"
	AttrServiceID  = "fastsdk.service_id"
	AttrEndpointID = "fastsdk.endpoint_id"
	AttrProvider   = "fastsdk.provider"
	AttrStage      = "fastsdk.stage"
	AttrPollTry    = "fastsdk.poll_attempt"
)

// JobAttributes returns the attributes common to every stage span of a job.
func JobAttributes(jobID, serviceID, endpointID, provider string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrJobID, jobID),
		attribute.String(AttrServiceID, serviceID),
		attribute.String(AttrEndpointID, endpointID),
		attribute.String(AttrProvider, provider),
	}
}

// PollAttributes returns attributes describing one poll attempt.
func PollAttributes(attempt int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int(AttrPollTry, attempt),
	}
}
