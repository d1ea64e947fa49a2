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

// mqlogpipe reads log lines on stdin and publishes them to an MQTT topic
// through a buffering handler. Lines may carry an optional leading severity
// tag ("ERROR: disk full"); untagged lines are logged at the default level.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/solanus-systems/mqlog"
	"github.com/spf13/cobra"
)

const closeTimeout = 5 * time.Second

func main() {
	rootCmd := &cobra.Command{
		Use:   "mqlogpipe",
		Short: "Pipe log lines from stdin to an MQTT topic",
		Long: "mqlogpipe reads log lines on stdin and publishes them to an MQTT topic " +
			"through a buffering handler. Records are flushed on severity, on a full " +
			"buffer or after an idle interval, and buffered while the broker is unreachable.",
		SilenceUsage: true,
		RunE:         run,
	}

	flags := rootCmd.Flags()
	flags.String("config", "", "path to a YAML configuration file")
	flags.String("broker", "", "MQTT broker URL (i.e. tcp://localhost:1883)")
	flags.String("client-id", "", "MQTT client identifier (generated when empty)")
	flags.String("username", "", "broker authentication user name")
	flags.String("password", "", "broker authentication password")
	flags.String("topic", "", "topic to publish log records to")
	flags.Int("qos", 0, "MQTT QoS level (0, 1 or 2)")
	flags.String("level", "", fmt.Sprintf("minimum log level, one of: %s", mqlog.ValidLevels()))
	flags.String("flush-level", "", "severity triggering an immediate flush")
	flags.Int("capacity", 0, "max number of buffered records")
	flags.Int("flush-interval-ms", 0, "idle flush interval in milliseconds")
	flags.String("eviction", "", "overflow eviction policy: oldest or newest")
	flags.String("batch", "", "publish batching mode: per-record or joined")
	flags.Bool("compress", false, "gzip published payloads")
	flags.String("prefix", "", "prefix tag added to every log message")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "mqlogpipe: %v\n", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	opts, err := cfg.HandlerOptions()
	if err != nil {
		return err
	}

	formats, err := cfg.Formatting()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	transport, err := mqlog.NewMQTTTransport(ctx, mqlog.MQTTInitModeActive, cfg.TransportOptions())
	if err != nil {
		return err
	}
	defer transport.Close()

	handler, err := mqlog.New(transport, opts)
	if err != nil {
		return err
	}

	for level, format := range formats {
		handler.SetFormat(level, format)
	}

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		handler.Run(runCtx)
		close(done)
	}()

	pipe(ctx, handler, opts.Level)

	// Stop the publish loop before the final flush; the dispatcher and Close
	// must not drain concurrently.
	cancel()
	<-done
	handler.Close(closeTimeout)

	return nil
}

// pipe feeds stdin lines to the handler until EOF or cancellation.
func pipe(ctx context.Context, handler *mqlog.Handler, defaultLevel mqlog.Level) {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			level, message := parseLine(line, defaultLevel)
			handler.Handle(level, message)
		}
	}
}

// parseLine splits an optional leading severity tag ("WARNING: low battery")
// off a log line. Lines without a recognized tag are logged whole at the
// default level.
func parseLine(line string, defaultLevel mqlog.Level) (mqlog.Level, string) {
	tag, rest, found := strings.Cut(line, ":")
	if !found {
		return defaultLevel, line
	}

	level, err := mqlog.ParseLevel(strings.TrimSpace(tag))
	if err != nil {
		return defaultLevel, line
	}

	return level, strings.TrimSpace(rest)
}

// loadConfig loads the YAML configuration (or defaults) and applies any
// explicitly set command line flags on top.
func loadConfig(cmd *cobra.Command) (mqlog.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := mqlog.LoadConfig(path)
	if err != nil {
		return mqlog.Config{}, err
	}

	flags := cmd.Flags()
	if flags.Changed("broker") {
		cfg.Broker, _ = flags.GetString("broker")
	}
	if flags.Changed("client-id") {
		cfg.ClientID, _ = flags.GetString("client-id")
	}
	if flags.Changed("username") {
		cfg.Username, _ = flags.GetString("username")
	}
	if flags.Changed("password") {
		cfg.Password, _ = flags.GetString("password")
	}
	if flags.Changed("topic") {
		cfg.Topic, _ = flags.GetString("topic")
	}
	if flags.Changed("qos") {
		cfg.QoS, _ = flags.GetInt("qos")
	}
	if flags.Changed("level") {
		cfg.Level, _ = flags.GetString("level")
	}
	if flags.Changed("flush-level") {
		cfg.FlushLevel, _ = flags.GetString("flush-level")
	}
	if flags.Changed("capacity") {
		cfg.Capacity, _ = flags.GetInt("capacity")
	}
	if flags.Changed("flush-interval-ms") {
		cfg.FlushIntervalMS, _ = flags.GetInt("flush-interval-ms")
	}
	if flags.Changed("eviction") {
		cfg.Eviction, _ = flags.GetString("eviction")
	}
	if flags.Changed("batch") {
		cfg.Batch, _ = flags.GetString("batch")
	}
	if flags.Changed("compress") {
		cfg.Compress, _ = flags.GetBool("compress")
	}
	if flags.Changed("prefix") {
		cfg.Prefix, _ = flags.GetString("prefix")
	}

	if cfg.Broker == "" {
		return mqlog.Config{}, fmt.Errorf("no broker configured, set --broker or the config file's broker field")
	}

	return cfg, nil
}
