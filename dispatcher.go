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
	"fmt"
	"strings"
	"time"
)

// Dispatcher is the long-lived publish loop draining a Buffer into a
// Transport. It owns no records itself; it borrows exclusive drain access to
// the buffer for the duration of one publish cycle and is the only drainer.
type Dispatcher struct {
	// buffer is the record holding area drained on each cycle.
	buffer *Buffer
	// transport is the outbound message-bus collaborator.
	transport Transport
	// topic is the topic published to.
	topic string
	// qos is the QoS value published with.
	qos byte
	// interval is the bounded idle timeout between unsignaled cycles. It
	// catches records that never individually trigger a flush but should
	// eventually be delivered.
	interval time.Duration
	// signal is raised by the handler when an insertion requests an immediate
	// flush. It is buffered with capacity one so raising never blocks.
	signal chan struct{}
	// batch selects between one publish per record and one joined publish per
	// cycle.
	batch BatchMode
	// compress enables gzip compression of outbound payloads.
	compress bool
	// render formats a drained record into its payload string.
	render func(*Record) (string, error)
	// onError receives publish and formatting failures. Failures are never
	// propagated back to the logging caller and never terminate the loop.
	onError func(error)
}

// Signal requests an immediate publish cycle. It never blocks; a cycle
// already pending absorbs the request.
func (d *Dispatcher) Signal() {
	select {
	case d.signal <- struct{}{}:
	default:
	}
}

// Run runs the publish loop until ctx is cancelled. Each iteration waits for
// either a flush signal or the idle interval, checks transport connectivity
// and publishes the buffer's contents when connected. A cycle interrupted by
// cancellation may lose records already drained but not yet published; records
// still in the buffer are kept.
func (d *Dispatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-d.signal:
		case <-ticker.C:
		}
		d.cycle(ctx)
		// Restart the idle countdown so a tick landing right after a signaled
		// flush doesn't run a redundant cycle.
		ticker.Reset(d.interval)
	}
}

// cycle performs a single publish cycle. If the transport is down the cycle is
// skipped entirely, leaving the buffer intact for a later attempt; records are
// never discarded due to disconnection alone. On a publish failure mid-drain
// the remaining drained records are dropped for this cycle, re-inserting them
// would reorder relative to newly arriving records.
func (d *Dispatcher) cycle(ctx context.Context) {
	if !d.transport.IsConnected() {
		return
	}

	if d.buffer.Empty() {
		return
	}

	records := d.buffer.Drain()

	if d.batch == BatchJoined {
		messages := make([]string, 0, len(records))
		for _, rec := range records {
			message, err := d.render(rec)
			if err != nil {
				d.onError(fmt.Errorf("failed to format log record: %w", err))
				continue
			}
			messages = append(messages, message)
		}
		if len(messages) == 0 {
			return
		}
		if err := d.publish(ctx, strings.Join(messages, "\n")); err != nil {
			d.onError(fmt.Errorf("failed to publish %d log records to %q: %w", len(messages), d.topic, err))
		}
		return
	}

	for i, rec := range records {
		message, err := d.render(rec)
		if err != nil {
			d.onError(fmt.Errorf("failed to format log record: %w", err))
			continue
		}
		if err := d.publish(ctx, message); err != nil {
			d.onError(fmt.Errorf("failed to publish log record to %q, dropping %d drained records: %w", d.topic, len(records)-i, err))
			return
		}
	}
}

// publish sends a single payload to the configured topic, compressing it
// first when compression is enabled.
func (d *Dispatcher) publish(ctx context.Context, message string) error {
	payload := []byte(message)

	if d.compress {
		compressed, err := compressPayload(payload)
		if err != nil {
			return fmt.Errorf("failed to compress payload: %w", err)
		}
		payload = compressed
	}

	return d.transport.Publish(ctx, d.topic, payload, d.qos)
}
