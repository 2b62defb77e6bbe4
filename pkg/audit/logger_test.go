// Package audit provides tests for various audit logger implementations.
package audit

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/SocAIty/fastsdk-go/pkg/logger"
)

// init sets up the global logger for testing purposes, suppressing informational logs.
func init() {
	logger.Init("error")
}

// TestLoggerSink verifies that LoggerSink routes entries through pkg/logger
// without error.
func TestLoggerSink(t *testing.T) {
	sink := NewLoggerSink(&Config{Enabled: true})
	defer sink.Close()

	entry := NewEntry("job-1", ActionJobSubmitted).
		Service("svc-1").
		Outcome(OutcomeSuccess).
		Build()

	if err := sink.Log(context.Background(), entry); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

// TestLoggerSink_Disabled ensures LoggerSink does nothing when disabled.
func TestLoggerSink_Disabled(t *testing.T) {
	sink := NewLoggerSink(&Config{Enabled: false})
	defer sink.Close()

	entry := NewEntry("job-1", ActionJobSubmitted).Build()
	if err := sink.Log(context.Background(), entry); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

// TestLoggerSink_Query verifies Query is unsupported.
func TestLoggerSink_Query(t *testing.T) {
	sink := NewLoggerSink(&Config{Enabled: true})
	defer sink.Close()

	if _, err := sink.Query(context.Background(), &QueryFilter{}); err == nil {
		t.Error("expected error for query on logger sink")
	}
}

// TestRingBuffer verifies the ring buffer retains and filters entries.
func TestRingBuffer(t *testing.T) {
	rb := NewRingBuffer(2)
	ctx := context.Background()

	e1 := NewEntry("job-1", ActionJobSubmitted).Build()
	e2 := NewEntry("job-1", ActionStageFinished).Stage("sending").Build()
	e3 := NewEntry("job-2", ActionJobFailed).Error("SERVER_JOB_FAILED", "boom").Build()

	rb.Log(ctx, e1)
	rb.Log(ctx, e2)
	rb.Log(ctx, e3) // overwrites e1, capacity is 2

	all, err := rb.Query(ctx, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 retained entries, got %d", len(all))
	}

	job1Only, err := rb.Query(ctx, &QueryFilter{JobID: "job-1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(job1Only) != 1 || job1Only[0].ID != e2.ID {
		t.Errorf("expected only e2 to survive for job-1, got %+v", job1Only)
	}

	failuresOnly, err := rb.Query(ctx, &QueryFilter{Outcome: OutcomeFailure})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(failuresOnly) != 1 || failuresOnly[0].JobID != "job-2" {
		t.Errorf("expected only job-2's failure, got %+v", failuresOnly)
	}
}

// TestStdoutLogger verifies that StdoutLogger correctly logs entries to standard output.
func TestStdoutLogger(t *testing.T) {
	cfg := &Config{
		Enabled: true,
		Backend: "stdout",
	}

	sink := NewStdoutLogger(cfg)
	defer sink.Close()

	entry := NewEntry("job-1", ActionStageFinished).
		Service("svc-1").
		Stage("sending").
		Outcome(OutcomeSuccess).
		Build()

	err := sink.Log(context.Background(), entry)
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

// TestStdoutLogger_Disabled ensures that StdoutLogger does not log when disabled.
func TestStdoutLogger_Disabled(t *testing.T) {
	cfg := &Config{
		Enabled: false,
	}

	sink := NewStdoutLogger(cfg)
	defer sink.Close()

	entry := NewEntry("job-1", ActionJobSubmitted).Build()
	err := sink.Log(context.Background(), entry)
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

// TestStdoutLogger_Query verifies that Query operations are not supported by StdoutLogger.
func TestStdoutLogger_Query(t *testing.T) {
	sink := NewStdoutLogger(&Config{Enabled: true})
	defer sink.Close()

	_, err := sink.Query(context.Background(), &QueryFilter{})
	if err == nil {
		t.Error("expected error for query on stdout logger")
	}
}

// TestFileLogger verifies that FileLogger correctly writes audit entries to a file.
func TestFileLogger(t *testing.T) {
	tmpDir := t.TempDir()
	logPath := filepath.Join(tmpDir, "audit.log")

	cfg := &Config{
		Enabled:     true,
		Backend:     "file",
		FilePath:    logPath,
		BufferSize:  100,
		FlushPeriod: 100 * time.Millisecond,
	}

	sink, err := NewFileLogger(cfg)
	if err != nil {
		t.Fatalf("failed to create file logger: %v", err)
	}

	entry := NewEntry("job-1", ActionJobSubmitted).
		Service("svc-test").
		Outcome(OutcomeSuccess).
		Build()

	err = sink.Log(context.Background(), entry)
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	// Wait for flush
	time.Sleep(200 * time.Millisecond)

	err = sink.Close()
	if err != nil {
		t.Errorf("failed to close logger: %v", err)
	}

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}

	if len(data) == 0 {
		t.Error("expected log file to have content")
	}

	if !bytes.Contains(data, []byte("svc-test")) {
		t.Error("expected log file to contain 'svc-test'")
	}
}

// TestFileLogger_DefaultPath verifies that FileLogger uses a default path when none is provided.
func TestFileLogger_DefaultPath(t *testing.T) {
	tmpDir := t.TempDir()
	origDir, _ := os.Getwd()
	os.Chdir(tmpDir)
	defer os.Chdir(origDir)

	cfg := &Config{
		Enabled:  true,
		Backend:  "file",
		FilePath: "", // Should use default
	}

	sink, err := NewFileLogger(cfg)
	if err != nil {
		t.Fatalf("failed to create file logger: %v", err)
	}
	defer sink.Close()
}

// TestFileLogger_Query verifies that Query operations are not supported by FileLogger.
func TestFileLogger_Query(t *testing.T) {
	tmpDir := t.TempDir()
	cfg := &Config{
		Enabled:  true,
		FilePath: filepath.Join(tmpDir, "audit.log"),
	}

	sink, err := NewFileLogger(cfg)
	if err != nil {
		t.Fatalf("failed to create file logger: %v", err)
	}
	defer sink.Close()

	_, err = sink.Query(context.Background(), &QueryFilter{})
	if err == nil {
		t.Error("expected error for query on file logger")
	}
}

// TestNew verifies that the New function correctly instantiates different logger backends.
func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *Config
		wantErr bool
	}{
		{
			name:    "nil config",
			cfg:     nil,
			wantErr: false,
		},
		{
			name: "disabled",
			cfg: &Config{
				Enabled: false,
			},
			wantErr: false,
		},
		{
			name: "logger backend",
			cfg: &Config{
				Enabled: true,
				Backend: "logger",
			},
			wantErr: false,
		},
		{
			name: "stdout backend",
			cfg: &Config{
				Enabled: true,
				Backend: "stdout",
			},
			wantErr: false,
		},
		{
			name: "unknown backend defaults to logger sink",
			cfg: &Config{
				Enabled: true,
				Backend: "unknown",
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink, err := New(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if sink == nil {
				t.Error("expected logger to be non-nil")
			}
			sink.Close()
		})
	}
}

// TestNoopLogger verifies that NoopLogger correctly implements the Logger interface
// without performing any actual logging operations.
func TestNoopLogger(t *testing.T) {
	sink := &NoopLogger{}

	err := sink.Log(context.Background(), &Entry{})
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	entries, err := sink.Query(context.Background(), &QueryFilter{})
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if entries != nil {
		t.Error("expected nil entries")
	}

	err = sink.Close()
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

// TestGlobalLogger verifies the functionality of setting and getting the global logger instance.
func TestGlobalLogger(t *testing.T) {
	original := Get()

	newLogger := &NoopLogger{}
	SetGlobal(newLogger)

	if Get() != newLogger {
		t.Error("expected global logger to be updated")
	}

	entry := NewEntry("job-1", ActionJobSubmitted).Build()
	err := Log(context.Background(), entry)
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	SetGlobal(original)
}
