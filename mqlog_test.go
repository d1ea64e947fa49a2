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
	"strings"
	"testing"
	"time"
)

func TestNewValidation(t *testing.T) {
	tests := []struct {
		desc        string
		opts        Options
		shouldError bool
	}{
		{"valid-defaults", Options{Topic: "logs"}, false},
		{"valid-explicit", Options{Topic: "logs", Level: DebugLevel, FlushLevel: WarningLevel, Capacity: 3}, false},
		{"empty-topic", Options{}, true},
		{"negative-capacity", Options{Topic: "logs", Capacity: -1}, true},
		{"flush-level-below-level", Options{Topic: "logs", Level: ErrorLevel, FlushLevel: InfoLevel}, true},
		{"flush-level-equals-level", Options{Topic: "logs", Level: WarningLevel, FlushLevel: WarningLevel}, false},
	}

	for _, tc := range tests {
		t.Run(tc.desc, func(t *testing.T) {
			_, err := New(newFakeTransport(true), tc.opts)
			if (err != nil) != tc.shouldError {
				t.Errorf("New(ft, %+v) = error %v, want error: %t", tc.opts, err, tc.shouldError)
			}
		})
	}
}

func TestNewDefaults(t *testing.T) {
	handler, err := New(newFakeTransport(true), Options{Topic: "logs"})
	if err != nil {
		t.Fatalf("New(ft, opts) = error %v, want: nil", err)
	}

	if handler.opts.Level != InfoLevel {
		t.Errorf("handler.opts.Level = %v, want: %v", handler.opts.Level, InfoLevel)
	}
	if handler.opts.FlushLevel != ErrorLevel {
		t.Errorf("handler.opts.FlushLevel = %v, want: %v", handler.opts.FlushLevel, ErrorLevel)
	}
	if handler.opts.Capacity != DefaultCapacity {
		t.Errorf("handler.opts.Capacity = %d, want: %d", handler.opts.Capacity, DefaultCapacity)
	}
	if handler.opts.FlushInterval != DefaultFlushInterval {
		t.Errorf("handler.opts.FlushInterval = %v, want: %v", handler.opts.FlushInterval, DefaultFlushInterval)
	}
	if handler.opts.OnError == nil {
		t.Error("handler.opts.OnError = nil, want: non-nil")
	}
}

func TestHandlerMinLevel(t *testing.T) {
	ft := newFakeTransport(true)
	handler := newTestHandler(t, ft, Options{Level: WarningLevel, FlushLevel: ErrorLevel, Capacity: 10})

	handler.Debug("ignored")
	handler.Info("also ignored")
	handler.Warn("kept")

	if handler.buffer.Len() != 1 {
		t.Errorf("handler.buffer.Len() = %d, want: 1", handler.buffer.Len())
	}
}

func TestHandlerLeveledCalls(t *testing.T) {
	tests := []struct {
		desc          string
		fc            func(h *Handler)
		expectedLevel Level
		expectedMsg   string
	}{
		{"debug", func(h *Handler) { h.Debug("foobar") }, DebugLevel, "foobar"},
		{"debugf", func(h *Handler) { h.Debugf("%s: %d", "foobar", 33) }, DebugLevel, "foobar: 33"},
		{"info", func(h *Handler) { h.Info("foobar") }, InfoLevel, "foobar"},
		{"infof", func(h *Handler) { h.Infof("%s: %d", "foobar", 33) }, InfoLevel, "foobar: 33"},
		{"warn", func(h *Handler) { h.Warn("foobar") }, WarningLevel, "foobar"},
		{"warnf", func(h *Handler) { h.Warnf("%s: %d", "foobar", 33) }, WarningLevel, "foobar: 33"},
		{"error", func(h *Handler) { h.Error("foobar") }, ErrorLevel, "foobar"},
		{"errorf", func(h *Handler) { h.Errorf("%s: %d", "foobar", 33) }, ErrorLevel, "foobar: 33"},
		{"handle", func(h *Handler) { h.Handle(FatalLevel, "foobar") }, FatalLevel, "foobar"},
	}

	for _, tc := range tests {
		t.Run(tc.desc, func(t *testing.T) {
			ft := newFakeTransport(true)
			handler := newTestHandler(t, ft, Options{Level: DebugLevel, FlushLevel: FatalLevel, Capacity: 10})

			tc.fc(handler)

			records := handler.buffer.Drain()
			if len(records) != 1 {
				t.Fatalf("len(handler.buffer.Drain()) = %d, want: 1", len(records))
			}
			if records[0].Level != tc.expectedLevel {
				t.Errorf("records[0].Level = %v, want: %v", records[0].Level, tc.expectedLevel)
			}
			if records[0].Message != tc.expectedMsg {
				t.Errorf("records[0].Message = %q, want: %q", records[0].Message, tc.expectedMsg)
			}
			if records[0].File == "" || records[0].Line == 0 {
				t.Errorf("records[0] caller = %s:%d, want non-empty file and line",
					records[0].File, records[0].Line)
			}
		})
	}
}

func TestHandlerDefaultFormat(t *testing.T) {
	ft := newFakeTransport(true)
	handler, err := New(ft, Options{Topic: "logs", Prefix: "sensor-7"})
	if err != nil {
		t.Fatalf("New(ft, opts) = error %v, want: nil", err)
	}

	handler.Error("probe timeout")
	handler.dispatcher.cycle(context.Background())

	messages := ft.messages()
	if len(messages) != 1 {
		t.Fatalf("len(ft.messages()) = %d, want: 1", len(messages))
	}

	payload := string(messages[0].payload)
	if !strings.HasPrefix(payload, "sensor-7: ") {
		t.Errorf("payload = %q, want prefix: %q", payload, "sensor-7: ")
	}
	if !strings.Contains(payload, "[ERROR]") {
		t.Errorf("payload = %q, should contain: %q", payload, "[ERROR]")
	}
	if !strings.HasSuffix(payload, "probe timeout") {
		t.Errorf("payload = %q, want suffix: %q", payload, "probe timeout")
	}
}

func TestHandlerClose(t *testing.T) {
	ft := newFakeTransport(true)
	handler := newTestHandler(t, ft, Options{Capacity: 10})

	handler.Info("pending one")
	handler.Info("pending two")

	handler.Close(time.Second)

	messages := ft.messages()
	if len(messages) != 2 {
		t.Fatalf("len(ft.messages()) = %d, want: 2", len(messages))
	}

	// Logging after Close is a no-op.
	handler.Error("too late")
	if handler.buffer.Len() != 0 {
		t.Errorf("handler.buffer.Len() = %d, want: 0", handler.buffer.Len())
	}

	// Close is idempotent.
	handler.Close(time.Second)
	if messages := ft.messages(); len(messages) != 2 {
		t.Errorf("len(ft.messages()) = %d, want: 2", len(messages))
	}
}

func TestHandlerCloseWhileDisconnected(t *testing.T) {
	ft := newFakeTransport(false)
	handler := newTestHandler(t, ft, Options{Capacity: 10})

	handler.Info("stranded")
	handler.Close(10 * time.Millisecond)

	if messages := ft.messages(); len(messages) != 0 {
		t.Errorf("len(ft.messages()) = %d, want: 0", len(messages))
	}
}
