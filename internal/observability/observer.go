// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package observability

import (
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// StandardObserver implements observability for all components
type StandardObserver struct {
	level         ObservabilityLevel
	logger        *zap.Logger
	DebugObserver *DebugObserver // Reference to debug observer when in debug mode
}

type ObservabilityLevel int

const (
	ObservabilityOff     ObservabilityLevel = 0
	ObservabilityMetrics ObservabilityLevel = 1
	ObservabilityDebug   ObservabilityLevel = 2
)

var requestCounter atomic.Uint64

// NewStandardObserver creates an observer that writes JSON records to writer
func NewStandardObserver(level ObservabilityLevel, writer io.Writer) *StandardObserver {
	if level == ObservabilityOff || writer == nil {
		return &StandardObserver{level: ObservabilityOff, logger: zap.NewNop()}
	}

	zapLevel := zapcore.InfoLevel
	if level == ObservabilityDebug {
		zapLevel = zapcore.DebugLevel
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), zapcore.AddSync(writer), zapLevel)
	return &StandardObserver{
		level:  level,
		logger: zap.New(core),
	}
}

// NewObserverWithLogger wraps an existing zap logger
func NewObserverWithLogger(level ObservabilityLevel, logger *zap.Logger) *StandardObserver {
	if logger == nil || level == ObservabilityOff {
		logger = zap.NewNop()
	}
	return &StandardObserver{level: level, logger: logger}
}

// Level returns the configured observability level
func (o *StandardObserver) Level() ObservabilityLevel {
	if o == nil {
		return ObservabilityOff
	}
	return o.level
}

// Logger returns the underlying zap logger, never nil
func (o *StandardObserver) Logger() *zap.Logger {
	if o == nil || o.logger == nil {
		return zap.NewNop()
	}
	return o.logger
}

// Debug returns the attached debug observer; nil when debugging is off
func (o *StandardObserver) Debug() *DebugObserver {
	if o == nil {
		return nil
	}
	return o.DebugObserver
}

// StartTiming returns a function to complete timing
func (o *StandardObserver) StartTiming(component, operation, target string) func(success bool, metadata map[string]interface{}) {
	if o == nil || o.level == ObservabilityOff {
		return func(bool, map[string]interface{}) {}
	}

	start := time.Now()

	return func(success bool, metadata map[string]interface{}) {
		o.LogOperation(StandardObservabilityData{
			Component:  component,
			Operation:  operation,
			Target:     target,
			DurationMs: time.Since(start).Milliseconds(),
			Success:    success,
			Metadata:   metadata,
		})
	}
}

// LogOperation logs operation data
func (o *StandardObserver) LogOperation(data StandardObservabilityData) {
	if o == nil || o.level == ObservabilityOff {
		return
	}

	if data.RequestID == "" {
		data.RequestID = fmt.Sprintf("req-%s-%d", time.Now().Format("20060102-150405"), requestCounter.Add(1))
	}

	fields := []zap.Field{
		zap.String("component", data.Component),
		zap.String("operation", data.Operation),
		zap.String("request_id", data.RequestID),
		zap.Bool("success", data.Success),
	}
	if data.Target != "" {
		fields = append(fields, zap.String("target", data.Target))
	}
	if data.DurationMs > 0 {
		fields = append(fields, zap.Int64("duration_ms", data.DurationMs))
	}
	if data.ContentLength > 0 {
		fields = append(fields, zap.Int("content_length", data.ContentLength))
	}
	if data.MatchCount > 0 {
		fields = append(fields, zap.Int("match_count", data.MatchCount))
	}
	if len(data.Metadata) > 0 {
		fields = append(fields, zap.Any("metadata", data.Metadata))
	}

	if data.Error != "" {
		o.logger.Warn("operation failed", append(fields, zap.String("error", data.Error))...)
		return
	}

	// Per-operation timings are only emitted in debug mode
	if o.level == ObservabilityDebug {
		o.logger.Debug("operation", fields...)
	}
}

// Sync flushes buffered log entries
func (o *StandardObserver) Sync() error {
	if o == nil || o.logger == nil {
		return nil
	}
	return o.logger.Sync()
}

// StandardObservabilityData for all components
type StandardObservabilityData struct {
	Component     string                 `json:"component"`
	Operation     string                 `json:"operation"`
	RequestID     string                 `json:"request_id"`
	Target        string                 `json:"target,omitempty"`
	DurationMs    int64                  `json:"duration_ms,omitempty"`
	Success       bool                   `json:"success"`
	Error         string                 `json:"error,omitempty"`
	ContentLength int                    `json:"content_length,omitempty"`
	MatchCount    int                    `json:"match_count,omitempty"`
	Metadata      map[string]interface{} `json:"metadata,omitempty"`
}
