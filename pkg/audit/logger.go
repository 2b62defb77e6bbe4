// Package audit provides components for capturing, storing, and querying
// audit logs. This file implements the logger backends: the structured
// logger sink (default), stdout, file, an in-memory ring buffer, and a
// no-operation logger.
package audit

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/SocAIty/fastsdk-go/pkg/logger"
)

// LoggerSink implements Logger by routing entries through the package-level
// structured logger (pkg/logger). This is the default backend — job
// lifecycle events show up in whatever sink the application's structured
// logging is already configured with, no separate file to manage.
type LoggerSink struct {
	config *Config
}

// NewLoggerSink creates a LoggerSink.
func NewLoggerSink(cfg *Config) *LoggerSink {
	return &LoggerSink{config: cfg}
}

func (l *LoggerSink) Log(_ context.Context, entry *Entry) error {
	if !l.config.Enabled {
		return nil
	}

	log := logger.WithJob(entry.JobID)
	attrs := []any{
		"action", string(entry.Action),
		"outcome", string(entry.Outcome),
	}
	if entry.ServiceID != "" {
		attrs = append(attrs, "service_id", entry.ServiceID)
	}
	if entry.EndpointID != "" {
		attrs = append(attrs, "endpoint_id", entry.EndpointID)
	}
	if entry.Stage != "" {
		attrs = append(attrs, "stage", entry.Stage)
	}
	if entry.DurationMs > 0 {
		attrs = append(attrs, "duration_ms", entry.DurationMs)
	}
	if entry.ErrorCode != "" {
		attrs = append(attrs, "error_code", entry.ErrorCode, "error_message", entry.ErrorMessage)
	}

	if entry.Outcome == OutcomeFailure {
		log.Error(entry.Detail, attrs...)
	} else {
		log.Info(entry.Detail, attrs...)
	}
	return nil
}

// Query is not supported by LoggerSink and will always return an error.
func (l *LoggerSink) Query(_ context.Context, _ *QueryFilter) ([]*Entry, error) {
	return nil, fmt.Errorf("query not supported for logger sink")
}

// Close for LoggerSink does nothing as there are no resources to release.
func (l *LoggerSink) Close() error {
	return nil
}

// RingBuffer is an in-memory, fixed-capacity audit sink. It backs the "a
// failed job retains every stage output observed before failure" testability
// requirement independent of whatever external Backend is configured —
// Query always works against it, which isn't true of every backend.
type RingBuffer struct {
	mu       sync.Mutex
	entries  []*Entry
	capacity int
	next     int
	full     bool
}

// NewRingBuffer creates a ring buffer with room for capacity entries.
func NewRingBuffer(capacity int) *RingBuffer {
	if capacity <= 0 {
		capacity = 1000
	}
	return &RingBuffer{
		entries:  make([]*Entry, capacity),
		capacity: capacity,
	}
}

func (r *RingBuffer) Log(_ context.Context, entry *Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries[r.next] = entry
	r.next = (r.next + 1) % r.capacity
	if r.next == 0 {
		r.full = true
	}
	return nil
}

// Query returns entries matching filter, in chronological order. Only
// JobID, ServiceID, Action, and Outcome filters are honored; Limit/Offset
// paginate the filtered result.
func (r *RingBuffer) Query(_ context.Context, filter *QueryFilter) ([]*Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ordered := make([]*Entry, 0, r.capacity)
	if r.full {
		ordered = append(ordered, r.entries[r.next:]...)
	}
	ordered = append(ordered, r.entries[:r.next]...)

	var matched []*Entry
	for _, e := range ordered {
		if e == nil {
			continue
		}
		if filter != nil {
			if filter.JobID != "" && e.JobID != filter.JobID {
				continue
			}
			if filter.ServiceID != "" && e.ServiceID != filter.ServiceID {
				continue
			}
			if filter.Action != "" && e.Action != filter.Action {
				continue
			}
			if filter.Outcome != "" && e.Outcome != filter.Outcome {
				continue
			}
		}
		matched = append(matched, e)
	}

	if filter == nil {
		return matched, nil
	}
	if filter.Offset > 0 {
		if filter.Offset >= len(matched) {
			return nil, nil
		}
		matched = matched[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(matched) {
		matched = matched[:filter.Limit]
	}
	return matched, nil
}

func (r *RingBuffer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = nil
	return nil
}

// StdoutLogger implements Logger by writing audit entries to standard
// output, one JSON object per line.
type StdoutLogger struct {
	config *Config
	mu     sync.Mutex
}

// NewStdoutLogger creates a StdoutLogger.
func NewStdoutLogger(cfg *Config) *StdoutLogger {
	return &StdoutLogger{config: cfg}
}

func (l *StdoutLogger) Log(_ context.Context, entry *Entry) error {
	if !l.config.Enabled {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	fmt.Println("[AUDIT]", string(data))
	return nil
}

// Query is not supported by StdoutLogger and will always return an error.
func (l *StdoutLogger) Query(_ context.Context, _ *QueryFilter) ([]*Entry, error) {
	return nil, fmt.Errorf("query not supported for stdout logger")
}

// Close for StdoutLogger does nothing as there are no resources to release.
func (l *StdoutLogger) Close() error {
	return nil
}

// FileLogger implements Logger by writing audit entries to a file. It uses
// a buffered channel for asynchronous writing and periodic flushing.
type FileLogger struct {
	config *Config
	file   *os.File
	writer *bufio.Writer
	mu     sync.Mutex
	buffer chan *Entry
	done   chan struct{}
}

// NewFileLogger creates a FileLogger, opening cfg.FilePath (or a default
// "audit.log") and starting a background flush goroutine.
func NewFileLogger(cfg *Config) (*FileLogger, error) {
	if cfg.FilePath == "" {
		cfg.FilePath = "audit.log"
	}

	file, err := os.OpenFile(cfg.FilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit log file: %w", err)
	}

	bufferSize := cfg.BufferSize
	if bufferSize <= 0 {
		bufferSize = 1000
	}

	l := &FileLogger{
		config: cfg,
		file:   file,
		writer: bufio.NewWriter(file),
		buffer: make(chan *Entry, bufferSize),
		done:   make(chan struct{}),
	}

	go l.processLoop()

	return l, nil
}

// Log sends an entry to the internal buffer for asynchronous writing. If
// the buffer is full, it writes the entry directly instead.
func (l *FileLogger) Log(_ context.Context, entry *Entry) error {
	if !l.config.Enabled {
		return nil
	}

	select {
	case l.buffer <- entry:
		return nil
	default:
		return l.writeEntry(entry)
	}
}

// Query is not implemented for FileLogger and will always return an error.
func (l *FileLogger) Query(_ context.Context, _ *QueryFilter) ([]*Entry, error) {
	return nil, fmt.Errorf("query not implemented for file logger")
}

// Close signals the processLoop to stop, drains and flushes any remaining
// buffered entries, then closes the file handle.
func (l *FileLogger) Close() error {
	close(l.done)

	l.mu.Lock()
	defer l.mu.Unlock()

	for {
		select {
		case entry := <-l.buffer:
			if err := l.writeEntryUnsafe(entry); err != nil {
				logger.Log.Warn("failed to write audit entry during shutdown", "error", err)
			}
		default:
			goto flush
		}
	}

flush:
	if err := l.writer.Flush(); err != nil {
		logger.Log.Warn("failed to flush audit writer", "error", err)
	}
	return l.file.Close()
}

// processLoop drains buffered entries to the file and flushes periodically.
func (l *FileLogger) processLoop() {
	flushPeriod := l.config.FlushPeriod
	if flushPeriod <= 0 {
		flushPeriod = 5 * time.Second
	}

	ticker := time.NewTicker(flushPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-l.done:
			return
		case entry := <-l.buffer:
			if err := l.writeEntry(entry); err != nil {
				logger.Log.Warn("failed to write audit entry", "error", err)
			}
		case <-ticker.C:
			l.flush()
		}
	}
}

func (l *FileLogger) writeEntry(entry *Entry) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.writeEntryUnsafe(entry)
}

// writeEntryUnsafe assumes the caller holds l.mu.
func (l *FileLogger) writeEntryUnsafe(entry *Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	_, err = l.writer.Write(append(data, '\n'))
	return err
}

func (l *FileLogger) flush() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.writer.Flush(); err != nil {
		logger.Log.Warn("failed to flush audit writer", "error", err)
	}
}

// New builds a Logger for the configured backend. If cfg is nil,
// DefaultConfig is used. If auditing is disabled, a NoopLogger is returned.
// An unknown backend falls back to the structured logger sink.
func New(cfg *Config) (Logger, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	if !cfg.Enabled {
		return &NoopLogger{}, nil
	}

	switch cfg.Backend {
	case "file":
		return NewFileLogger(cfg)
	case "stdout":
		return NewStdoutLogger(cfg), nil
	case "logger", "":
		return NewLoggerSink(cfg), nil
	default:
		logger.Log.Warn("unknown audit backend, using structured logger", "backend", cfg.Backend)
		return NewLoggerSink(cfg), nil
	}
}

// NoopLogger is a no-operation implementation of Logger.
type NoopLogger struct{}

func (l *NoopLogger) Log(_ context.Context, _ *Entry) error { return nil }

func (l *NoopLogger) Query(_ context.Context, _ *QueryFilter) ([]*Entry, error) {
	return nil, nil
}

func (l *NoopLogger) Close() error { return nil }

// globalLogger is the package-level default audit logger.
var globalLogger Logger = &NoopLogger{}

// globalMu protects access to globalLogger.
var globalMu sync.RWMutex

// SetGlobal sets the global audit logger instance.
func SetGlobal(l Logger) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalLogger = l
}

// Get returns the current global audit logger instance.
func Get() Logger {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalLogger
}

// Log records an audit entry using the global audit logger.
func Log(ctx context.Context, entry *Entry) error {
	return Get().Log(ctx, entry)
}
