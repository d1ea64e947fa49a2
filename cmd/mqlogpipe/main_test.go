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

package main

import (
	"testing"

	"github.com/solanus-systems/mqlog"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		desc      string
		line      string
		wantLevel mqlog.Level
		wantMsg   string
	}{
		{"tagged-error", "ERROR: disk full", mqlog.ErrorLevel, "disk full"},
		{"tagged-warning", "WARNING: low battery", mqlog.WarningLevel, "low battery"},
		{"tagged-lowercase", "debug: probing", mqlog.DebugLevel, "probing"},
		{"tagged-padded", "  INFO : started", mqlog.InfoLevel, "started"},
		{"untagged", "plain line", mqlog.InfoLevel, "plain line"},
		{"unknown-tag", "NOTICE: odd", mqlog.InfoLevel, "NOTICE: odd"},
		{"colon-in-message", "ERROR: failed: timeout", mqlog.ErrorLevel, "failed: timeout"},
		{"empty", "", mqlog.InfoLevel, ""},
	}

	for _, tc := range tests {
		t.Run(tc.desc, func(t *testing.T) {
			level, msg := parseLine(tc.line, mqlog.InfoLevel)
			if level != tc.wantLevel {
				t.Errorf("parseLine(%q) level = %v, want: %v", tc.line, level, tc.wantLevel)
			}
			if msg != tc.wantMsg {
				t.Errorf("parseLine(%q) message = %q, want: %q", tc.line, msg, tc.wantMsg)
			}
		})
	}
}
