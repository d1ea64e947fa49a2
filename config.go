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
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the declarative configuration surface, loadable from a YAML file.
// It mirrors [Options] and [MQTTOptions] with wire-friendly types; use
// HandlerOptions and TransportOptions to convert.
type Config struct {
	// Broker is the MQTT broker address, i.e. "tcp://localhost:1883".
	Broker string `yaml:"broker"`
	// ClientID is the MQTT client identifier. Empty means generated.
	ClientID string `yaml:"client_id"`
	// Username is the optional broker authentication user name.
	Username string `yaml:"username"`
	// Password is the optional broker authentication password.
	Password string `yaml:"password"`
	// Topic is the topic log records are published to.
	Topic string `yaml:"topic"`
	// QoS is the MQTT QoS level (0, 1 or 2).
	QoS int `yaml:"qos"`
	// Level is the handler's minimum level tag, i.e. "INFO".
	Level string `yaml:"level"`
	// FlushLevel is the immediate-flush severity threshold tag, i.e. "ERROR".
	FlushLevel string `yaml:"flush_level"`
	// Capacity is the max number of buffered records.
	Capacity int `yaml:"capacity"`
	// FlushIntervalMS is the idle flush interval in milliseconds.
	FlushIntervalMS int `yaml:"flush_interval_ms"`
	// Eviction is the overflow eviction policy: "oldest" or "newest".
	Eviction string `yaml:"eviction"`
	// Batch is the publish batching mode: "per-record" or "joined".
	Batch string `yaml:"batch"`
	// Compress enables gzip compression of published payloads.
	Compress bool `yaml:"compress"`
	// Prefix is a string/tag prefixed to the log message.
	Prefix string `yaml:"prefix"`
	// Formats maps level tags to text/template format overrides.
	Formats map[string]string `yaml:"formats"`
}

// DefaultConfig returns built-in defaults, matching the option defaults of
// [New] and [NewMQTTTransport].
func DefaultConfig() Config {
	return Config{
		Topic:           "mqlog",
		Level:           InfoLevel.String(),
		FlushLevel:      ErrorLevel.String(),
		Capacity:        DefaultCapacity,
		FlushIntervalMS: int(DefaultFlushInterval / time.Millisecond),
		Eviction:        "oldest",
		Batch:           "per-record",
	}
}

// LoadConfig reads configuration from a YAML file. If path is empty, returns
// defaults. Fields absent from the file keep their default values.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config file %q: %w", path, err)
	}

	return cfg, nil
}

// HandlerOptions converts the configuration to handler options, validating
// the level tags, the eviction policy and the batching mode.
func (c Config) HandlerOptions() (Options, error) {
	level, err := ParseLevel(c.Level)
	if err != nil {
		return Options{}, fmt.Errorf("invalid level, valid levels are: %s", ValidLevels())
	}

	flushLevel, err := ParseLevel(c.FlushLevel)
	if err != nil {
		return Options{}, fmt.Errorf("invalid flush_level, valid levels are: %s", ValidLevels())
	}

	if c.QoS < 0 || c.QoS > 2 {
		return Options{}, fmt.Errorf("invalid qos: %d, must be 0, 1 or 2", c.QoS)
	}

	var eviction EvictionPolicy
	switch c.Eviction {
	case "", "oldest":
		eviction = EvictOldest
	case "newest":
		eviction = EvictNewest
	default:
		return Options{}, fmt.Errorf("invalid eviction policy: %q, must be \"oldest\" or \"newest\"", c.Eviction)
	}

	var batch BatchMode
	switch c.Batch {
	case "", "per-record":
		batch = BatchPerRecord
	case "joined":
		batch = BatchJoined
	default:
		return Options{}, fmt.Errorf("invalid batch mode: %q, must be \"per-record\" or \"joined\"", c.Batch)
	}

	return Options{
		Topic:         c.Topic,
		QoS:           byte(c.QoS),
		Level:         level,
		FlushLevel:    flushLevel,
		Capacity:      c.Capacity,
		FlushInterval: time.Duration(c.FlushIntervalMS) * time.Millisecond,
		Eviction:      eviction,
		Batch:         batch,
		Compress:      c.Compress,
		Prefix:        c.Prefix,
	}, nil
}

// Formatting returns the per-level format overrides keyed by parsed level,
// validating the level tags.
func (c Config) Formatting() (FormatMap, error) {
	formats := make(FormatMap)
	for tag, format := range c.Formats {
		level, err := ParseLevel(tag)
		if err != nil {
			return nil, fmt.Errorf("invalid format level %q, valid levels are: %s", tag, ValidLevels())
		}
		formats[level] = format
	}
	return formats, nil
}

// TransportOptions converts the configuration to MQTT transport options.
func (c Config) TransportOptions() *MQTTOptions {
	return &MQTTOptions{
		BrokerURL: c.Broker,
		ClientID:  c.ClientID,
		Username:  c.Username,
		Password:  c.Password,
	}
}
