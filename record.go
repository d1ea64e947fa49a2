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
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"text/template"
	"time"
)

const (
	// fallbackFormat is used when the handler didn't provide the level <-> format
	// mapping.
	fallbackFormat = `{{.When.Format "2006-01-02T15:04:05.0000Z07:00"}} [{{.Level}}]: {{.Message}}`
)

// Record describes a buffered log record. Records are immutable once created;
// the buffer owns them from insertion until they are published or discarded.
type Record struct {
	// Level is the log level of the log record.
	Level Level
	// File is the file name of the log caller.
	File string
	// Line is the file's line of the log caller.
	Line int
	// Function is the function name of the log caller.
	Function string
	// When is the time when this log record was created.
	When time.Time
	// Message is the formatted final log message.
	Message string
	// Prefix is a string/tag prefixed to the log message.
	Prefix string
}

// newRecord sets up the log record for each logging call.
func newRecord(level Level, prefix string, msg string) *Record {
	pc, file, line, _ := runtime.Caller(3)
	return &Record{
		Level:    level,
		When:     time.Now(),
		File:     filepath.Base(file),
		Line:     line,
		Function: runtime.FuncForPC(pc).Name(),
		Message:  msg,
		Prefix:   prefix,
	}
}

// Format processes a template provided in format and returns it as a string.
func (rec *Record) Format(format string) (string, error) {
	tmpl, err := template.New("").Parse(format)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	buffer := new(strings.Builder)
	if err := tmpl.Execute(buffer, rec); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}

	return buffer.String(), nil
}

// FormatMap wraps the level <-> format map type.
type FormatMap map[Level]string

// formatConfig holds the per-level format configuration of a handler.
type formatConfig struct {
	// formatMap maps the log format for a given log level.
	formatMap FormatMap
}

// newFormatConfig allocates and initializes a new formatConfig instance.
func newFormatConfig() *formatConfig {
	return &formatConfig{formatMap: make(FormatMap)}
}

// SetFormat adds level and format to the format mapping.
func (fc *formatConfig) SetFormat(level Level, format string) {
	fc.formatMap[level] = format
}

// Format returns the format configured to a given level. If a format is not
// found for the requested level the closest format will be used, i.e:
//
//   - if Error is found in the mapping, Info is not defined, and level is Info
//     the format of Error will be returned.
//
// If no format could be found, meaning, the handler has never defined a valid
// format configuration, a default fallbackFormat is returned.
func (fc *formatConfig) Format(level Level) string {
	if format, found := fc.formatMap[level]; found {
		return format
	}

	for i := level.level; i < len(allLevels); i++ {
		curr := allLevels[i]
		if format, found := fc.formatMap[curr]; found {
			return format
		}
	}

	for i := level.level; i >= 0; i-- {
		curr := allLevels[i]
		if format, found := fc.formatMap[curr]; found {
			return format
		}
	}

	return fallbackFormat
}
