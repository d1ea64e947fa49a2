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
	"testing"
	"time"
)

func TestRecordFormat(t *testing.T) {
	when := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	rec := &Record{
		Level:   ErrorLevel,
		When:    when,
		File:    "main.go",
		Line:    42,
		Message: "disk full",
		Prefix:  "agent",
	}

	tests := []struct {
		desc        string
		format      string
		want        string
		shouldError bool
	}{
		{
			desc:   "message-only",
			format: "{{.Message}}",
			want:   "disk full",
		},
		{
			desc:   "level-and-message",
			format: "[{{.Level}}]: {{.Message}}",
			want:   "[ERROR]: disk full",
		},
		{
			desc:   "caller-location",
			format: "({{.File}}:{{.Line}}) {{.Message}}",
			want:   "(main.go:42) disk full",
		},
		{
			desc:   "optional-prefix",
			format: "{{if .Prefix}}{{.Prefix}}: {{end}}{{.Message}}",
			want:   "agent: disk full",
		},
		{
			desc:   "timestamp",
			format: `{{.When.Format "2006-01-02T15:04:05Z07:00"}} {{.Message}}`,
			want:   "2025-03-14T09:26:53Z disk full",
		},
		{
			desc:        "broken-template",
			format:      "{{.Message",
			shouldError: true,
		},
		{
			desc:        "unknown-field",
			format:      "{{.NoSuchField}}",
			shouldError: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.desc, func(t *testing.T) {
			got, err := rec.Format(tc.format)
			if (err != nil) != tc.shouldError {
				t.Fatalf("rec.Format(%q) = error %v, want error: %t", tc.format, err, tc.shouldError)
			}
			if !tc.shouldError && got != tc.want {
				t.Errorf("rec.Format(%q) = %q, want: %q", tc.format, got, tc.want)
			}
		})
	}
}

func TestFormatConfigFallback(t *testing.T) {
	fc := newFormatConfig()
	fc.SetFormat(ErrorLevel, "error format")
	fc.SetFormat(DebugLevel, "debug format")

	tests := []struct {
		desc  string
		level Level
		want  string
	}{
		{"exact-error", ErrorLevel, "error format"},
		{"exact-debug", DebugLevel, "debug format"},
		// No INFO format is defined; the closest more severe format wins.
		{"info-falls-to-error", InfoLevel, "error format"},
		{"warning-falls-to-error", WarningLevel, "error format"},
		// Nothing above FATAL; falls back downward.
		{"fatal-falls-to-error", FatalLevel, "error format"},
	}

	for _, tc := range tests {
		t.Run(tc.desc, func(t *testing.T) {
			if got := fc.Format(tc.level); got != tc.want {
				t.Errorf("fc.Format(%v) = %q, want: %q", tc.level, got, tc.want)
			}
		})
	}
}

func TestFormatConfigFallbackFormat(t *testing.T) {
	fc := newFormatConfig()
	if got := fc.Format(InfoLevel); got != fallbackFormat {
		t.Errorf("fc.Format(InfoLevel) = %q, want: %q", got, fallbackFormat)
	}
}
