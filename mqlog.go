//  Copyright 2025 Solanus Systems
//
//  Licensed under the Apache License, Version 2.0 (the "License");
//  you may not use this file except in compliance with the License.
//  You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
//  Unless required by applicable law or agreed to in writing, software
//  distributed under the License is distributed on an "AS IS" BASIS,
//  WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//  See the License for the specific language governing permissions and
//  limitations under the License.

package mqlog

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync/atomic"
	"time"
)

const (
	// DefaultCapacity is the default max number of buffered records.
	DefaultCapacity = 10
	// DefaultFlushInterval is the default idle timeout between unsignaled
	// publish cycles.
	DefaultFlushInterval = time.Second
)

var (
	// errEmptyTopic is the error returned when a handler is constructed
	// without a topic.
	errEmptyTopic = errors.New("topic must not be empty")

	// errInvalidCapacity is the error returned when a handler is constructed
	// with a negative capacity.
	errInvalidCapacity = errors.New("capacity must be a positive integer")

	// errFlushLevelTooLow is the error returned when the flush level is less
	// severe than the handler's minimum level.
	errFlushLevelTooLow = errors.New("flush level must be greater than or equal to level")
)

// Options defines the handler's behavior and setup options. The configuration
// is fixed at construction time and immutable thereafter, with the exception
// of the per-level formats (see [Handler.SetFormat]).
type Options struct {
	// Topic is the topic log records are published to. Required.
	Topic string
	// QoS is the QoS value records are published with. Defaults to 0.
	QoS byte
	// Level is the handler's minimum level; records below it are ignored.
	// Defaults to [InfoLevel].
	Level Level
	// FlushLevel is the severity threshold triggering an immediate flush.
	// It must be greater or equal to Level. Defaults to [ErrorLevel].
	FlushLevel Level
	// Capacity is the max number of buffered records. When an insertion would
	// exceed it the eviction policy is applied and a flush is requested.
	// Defaults to [DefaultCapacity].
	Capacity int
	// FlushInterval is the bounded idle timeout between unsignaled publish
	// cycles. Defaults to [DefaultFlushInterval].
	FlushInterval time.Duration
	// Eviction is the record eviction policy applied on overflow. Defaults to
	// [EvictOldest].
	Eviction EvictionPolicy
	// Batch selects between one publish per record and one joined publish per
	// cycle. Defaults to [BatchPerRecord].
	Batch BatchMode
	// Compress enables gzip compression of published payloads.
	Compress bool
	// Prefix is a string/tag prefixed to the log message. When present the
	// default formats will prefix the provided string to all log messages,
	// adding a meaningful context of the log originator when multiple
	// handlers publish to the same topic.
	Prefix string
	// OnError receives publish and formatting failures from the dispatcher.
	// When nil, failures are written to stderr as diagnostics. The callback
	// must not log back into the same handler.
	OnError func(error)
}

// Handler buffers emitted log records and dispatches them to a message-bus
// transport. Construction is explicit; there is no process-global registry.
// The publish loop is started by the host's concurrency setup with [Handler.Run].
type Handler struct {
	// opts is the handler's behavior options.
	opts Options
	// buffer is the bounded record holding area.
	buffer *Buffer
	// dispatcher is the publish loop draining buffer into the transport.
	dispatcher *Dispatcher
	// config holds the per-level format configuration.
	config *formatConfig
	// closed flags that the handler stopped accepting records.
	closed atomic.Bool
}

// New allocates and initializes a Handler publishing to transport with the
// given options. Zero-value options fall back to their defaults: level INFO,
// flush level ERROR, capacity 10.
func New(transport Transport, opts Options) (*Handler, error) {
	if opts.Topic == "" {
		return nil, errEmptyTopic
	}

	if opts.Capacity < 0 {
		return nil, errInvalidCapacity
	}

	if opts.Capacity == 0 {
		opts.Capacity = DefaultCapacity
	}

	if opts.Level == (Level{}) {
		opts.Level = InfoLevel
	}

	if opts.FlushLevel == (Level{}) {
		opts.FlushLevel = ErrorLevel
	}

	if !opts.FlushLevel.Meets(opts.Level) {
		return nil, errFlushLevelTooLow
	}

	if opts.FlushInterval <= 0 {
		opts.FlushInterval = DefaultFlushInterval
	}

	if opts.OnError == nil {
		opts.OnError = func(err error) {
			fmt.Fprintf(os.Stderr, "mqlog: %v\n", err)
		}
	}

	res := &Handler{
		opts:   opts,
		buffer: NewBuffer(opts.Capacity, opts.FlushLevel, opts.Eviction),
		config: newFormatConfig(),
	}

	res.config.SetFormat(ErrorLevel,
		`{{if .Prefix}}{{.Prefix}}: {{end}}{{.When.Format "2006-01-02T15:04:05.0000Z07:00"}} [{{.Level}}]: {{.Message}}`)
	res.config.SetFormat(DebugLevel,
		`{{if .Prefix}}{{.Prefix}}: {{end}}{{.When.Format "2006-01-02T15:04:05.0000Z07:00"}} [{{.Level}}]: ({{.File}}:{{.Line}}) {{.Message}}`)

	res.dispatcher = &Dispatcher{
		buffer:    res.buffer,
		transport: transport,
		topic:     opts.Topic,
		qos:       opts.QoS,
		interval:  opts.FlushInterval,
		signal:    make(chan struct{}, 1),
		batch:     opts.Batch,
		compress:  opts.Compress,
		render: func(rec *Record) (string, error) {
			return rec.Format(res.config.Format(rec.Level))
		},
		onError: opts.OnError,
	}

	return res, nil
}

// SetFormat sets the log format of the specified level. The format is a
// text/template string executed against [Record].
func (h *Handler) SetFormat(level Level, format string) {
	h.config.SetFormat(level, format)
}

// Run runs the handler's publish loop until ctx is cancelled. It must be
// started exactly once, on its own goroutine, by the host's concurrency
// setup:
//
//	go handler.Run(ctx)
//
// The loop is resilient by construction, no publish or formatting failure
// terminates it; every cycle is independent.
func (h *Handler) Run(ctx context.Context) {
	h.dispatcher.Run(ctx)
}

// Handle is the entry point for the logging front-end, called once per log
// record with the already formatted message. It is synchronous, it never
// blocks on the transport and returns immediately after buffering the record
// and, when the flush policy is satisfied, signaling the publish loop.
func (h *Handler) Handle(level Level, message string) {
	h.emit(level, message)
}

// emit appends a record to the buffer and raises the flush signal when the
// insertion requests it. All logging entry points go through emit so the
// captured caller depth is uniform.
func (h *Handler) emit(level Level, message string) {
	if h.closed.Load() || !level.Meets(h.opts.Level) {
		return
	}

	if h.buffer.Insert(newRecord(level, h.opts.Prefix, message)) {
		h.dispatcher.Signal()
	}
}

// Debug logs to the DEBUG log. Arguments are handled in the manner of
// fmt.Print.
func (h *Handler) Debug(args ...any) {
	h.emit(DebugLevel, fmt.Sprint(args...))
}

// Debugf logs to the DEBUG log. Arguments are handled in the manner of
// fmt.Printf.
func (h *Handler) Debugf(format string, args ...any) {
	h.emit(DebugLevel, fmt.Sprintf(format, args...))
}

// Info logs to the INFO log. Arguments are handled in the manner of
// fmt.Print.
func (h *Handler) Info(args ...any) {
	h.emit(InfoLevel, fmt.Sprint(args...))
}

// Infof logs to the INFO log. Arguments are handled in the manner of
// fmt.Printf.
func (h *Handler) Infof(format string, args ...any) {
	h.emit(InfoLevel, fmt.Sprintf(format, args...))
}

// Warn logs to the WARNING log. Arguments are handled in the manner of
// fmt.Print.
func (h *Handler) Warn(args ...any) {
	h.emit(WarningLevel, fmt.Sprint(args...))
}

// Warnf logs to the WARNING log. Arguments are handled in the manner of
// fmt.Printf.
func (h *Handler) Warnf(format string, args ...any) {
	h.emit(WarningLevel, fmt.Sprintf(format, args...))
}

// Error logs to the ERROR log. Arguments are handled in the manner of
// fmt.Print.
func (h *Handler) Error(args ...any) {
	h.emit(ErrorLevel, fmt.Sprint(args...))
}

// Errorf logs to the ERROR log. Arguments are handled in the manner of
// fmt.Printf.
func (h *Handler) Errorf(format string, args ...any) {
	h.emit(ErrorLevel, fmt.Sprintf(format, args...))
}

// Close stops the handler from accepting new records and attempts one final
// bounded publish cycle to flush out any pending buffered records. It must be
// called after the [Handler.Run] context is cancelled and the loop returned,
// the dispatcher and Close must not drain concurrently.
//
// Records that cannot be flushed within timeout, or while the transport is
// down, are lost; buffered records are held in volatile memory only.
func (h *Handler) Close(timeout time.Duration) {
	if !h.closed.CompareAndSwap(false, true) {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	h.dispatcher.cycle(ctx)
}
