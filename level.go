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
	"strings"
)

// Level wraps id and tag of a log severity level. Levels are ordered by
// increasing severity: DEBUG < INFO < WARNING < ERROR < FATAL.
type Level struct {
	// level is the log level numeric id.
	level int
	// tag is the tag to be displayed when writing the log.
	tag string
}

var (
	// DebugLevel is the log level definition for Debug severity.
	DebugLevel = Level{0, "DEBUG"}

	// InfoLevel is the log level definition for Info severity.
	InfoLevel = Level{1, "INFO"}

	// WarningLevel is the log level definition for Warning severity.
	WarningLevel = Level{2, "WARNING"}

	// ErrorLevel is the log level definition for Error severity.
	ErrorLevel = Level{3, "ERROR"}

	// FatalLevel is the log level definition for Fatal severity.
	FatalLevel = Level{4, "FATAL"}

	// allLevels is the list of all supported log levels, indexed by level id.
	allLevels = []Level{DebugLevel, InfoLevel, WarningLevel, ErrorLevel, FatalLevel}
)

// String returns the string representation of a log level.
func (level Level) String() string {
	return level.tag
}

// Meets reports whether level is of equal or higher severity than threshold.
func (level Level) Meets(threshold Level) bool {
	return level.level >= threshold.level
}

// ParseLevel returns the log level object for a given level tag, matched
// case insensitively. In case of an invalid tag, an error is returned.
func ParseLevel(tag string) (Level, error) {
	for _, lvl := range allLevels {
		if strings.EqualFold(lvl.tag, tag) {
			return lvl, nil
		}
	}
	return Level{level: -1, tag: "INVALID"}, fmt.Errorf("invalid log level: %q", tag)
}

// ValidLevels returns a string representation of all the valid log levels.
func ValidLevels() string {
	var levels []string
	for _, lvl := range allLevels {
		levels = append(levels, fmt.Sprintf("%s(%d)", lvl.tag, lvl.level))
	}
	return strings.Join(levels, ", ")
}
