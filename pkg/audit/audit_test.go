// Package audit provides tests for the audit logging components.
package audit

import (
	"encoding/json"
	"testing"
	"time"
)

// TestNewEntry verifies that the Builder correctly constructs an Entry with all fields set.
func TestNewEntry(t *testing.T) {
	entry := NewEntry("job-1", ActionJobSubmitted).
		Service("svc-1").
		Endpoint("predict").
		Stage("sending").
		Outcome(OutcomeSuccess).
		Duration(100 * time.Millisecond).
		Detail("job submitted").
		Meta("key1", "value1").
		Build()

	if entry.JobID != "job-1" {
		t.Errorf("expected jobID 'job-1', got %s", entry.JobID)
	}
	if entry.ServiceID != "svc-1" {
		t.Errorf("expected serviceID 'svc-1', got %s", entry.ServiceID)
	}
	if entry.EndpointID != "predict" {
		t.Errorf("expected endpointID 'predict', got %s", entry.EndpointID)
	}
	if entry.Stage != "sending" {
		t.Errorf("expected stage 'sending', got %s", entry.Stage)
	}
	if entry.Action != ActionJobSubmitted {
		t.Errorf("expected action job.submitted, got %s", entry.Action)
	}
	if entry.Outcome != OutcomeSuccess {
		t.Errorf("expected outcome SUCCESS, got %s", entry.Outcome)
	}
	if entry.DurationMs != 100 {
		t.Errorf("expected durationMs 100, got %d", entry.DurationMs)
	}
	if entry.Detail != "job submitted" {
		t.Errorf("expected detail 'job submitted', got %s", entry.Detail)
	}
	if entry.Metadata["key1"] != "value1" {
		t.Errorf("expected metadata key1='value1', got %v", entry.Metadata["key1"])
	}
	if entry.ID == "" {
		t.Error("expected ID to be generated")
	}
}

// TestBuilder_Error verifies that Error sets error fields and flips the outcome to failure.
func TestBuilder_Error(t *testing.T) {
	entry := NewEntry("job-1", ActionJobFailed).
		Service("svc-1").
		Error("SERVER_JOB_FAILED", "provider reported a failure").
		Build()

	if entry.Outcome != OutcomeFailure {
		t.Errorf("expected outcome FAILURE, got %s", entry.Outcome)
	}
	if entry.ErrorCode != "SERVER_JOB_FAILED" {
		t.Errorf("expected errorCode 'SERVER_JOB_FAILED', got %s", entry.ErrorCode)
	}
	if entry.ErrorMessage != "provider reported a failure" {
		t.Errorf("expected errorMessage 'provider reported a failure', got %s", entry.ErrorMessage)
	}
}

// TestEntry_MarshalJSON verifies that Entry can be marshaled and unmarshaled to/from JSON correctly.
func TestEntry_MarshalJSON(t *testing.T) {
	entry := NewEntry("job-1", ActionStageFinished).
		Service("svc-1").
		Stage("polling").
		Outcome(OutcomeSuccess).
		Build()

	data, err := json.Marshal(entry)
	if err != nil {
		t.Fatalf("failed to marshal entry: %v", err)
	}

	var decoded Entry
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("failed to unmarshal entry: %v", err)
	}

	if decoded.ServiceID != entry.ServiceID {
		t.Errorf("expected serviceID %s, got %s", entry.ServiceID, decoded.ServiceID)
	}
	if decoded.Action != entry.Action {
		t.Errorf("expected action %s, got %s", entry.Action, decoded.Action)
	}
}

// TestDefaultConfig verifies that DefaultConfig returns a Config with expected default values.
func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if !cfg.Enabled {
		t.Error("expected enabled to be true by default")
	}
	if cfg.Backend != "logger" {
		t.Errorf("expected backend 'logger', got %s", cfg.Backend)
	}
	if cfg.BufferSize != 1000 {
		t.Errorf("expected buffer size 1000, got %d", cfg.BufferSize)
	}
	if cfg.FlushPeriod != 5*time.Second {
		t.Errorf("expected flush period 5s, got %v", cfg.FlushPeriod)
	}
	if cfg.RingBufferSize != 1000 {
		t.Errorf("expected ring buffer size 1000, got %d", cfg.RingBufferSize)
	}
}

// TestAction_Constants verifies the string representation of Action constants.
func TestAction_Constants(t *testing.T) {
	actions := []struct {
		action   Action
		expected string
	}{
		{ActionJobSubmitted, "job.submitted"},
		{ActionStageStarted, "stage.started"},
		{ActionStageFinished, "stage.finished"},
		{ActionJobFinished, "job.finished"},
		{ActionJobFailed, "job.failed"},
		{ActionJobCancelled, "job.cancelled"},
	}

	for _, tc := range actions {
		if string(tc.action) != tc.expected {
			t.Errorf("expected action %s, got %s", tc.expected, tc.action)
		}
	}
}

// TestOutcome_Constants verifies the string representation of Outcome constants.
func TestOutcome_Constants(t *testing.T) {
	outcomes := []struct {
		outcome  Outcome
		expected string
	}{
		{OutcomeSuccess, "SUCCESS"},
		{OutcomeFailure, "FAILURE"},
	}

	for _, tc := range outcomes {
		if string(tc.outcome) != tc.expected {
			t.Errorf("expected outcome %s, got %s", tc.expected, tc.outcome)
		}
	}
}

// TestQueryFilter verifies the initialization and basic fields of QueryFilter.
func TestQueryFilter(t *testing.T) {
	now := time.Now()
	filter := &QueryFilter{
		StartTime: &now,
		EndTime:   &now,
		JobID:     "job-1",
		ServiceID: "svc-1",
		Action:    ActionJobSubmitted,
		Outcome:   OutcomeSuccess,
		Limit:     100,
		Offset:    0,
	}

	if filter.JobID != "job-1" {
		t.Errorf("expected jobID 'job-1', got %s", filter.JobID)
	}
	if filter.Limit != 100 {
		t.Errorf("expected limit 100, got %d", filter.Limit)
	}
}

// TestGenerateID verifies that generateID produces a non-empty and reasonably structured ID.
func TestGenerateID(t *testing.T) {
	id1 := generateID()

	if id1 == "" {
		t.Error("expected non-empty ID")
	}
	if len(id1) < 14 {
		t.Error("expected ID to contain a timestamp prefix")
	}
}
