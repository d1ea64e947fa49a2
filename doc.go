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

// Package mqlog implements a buffering log handler that publishes records to
// an MQTT topic. Records are accumulated in a bounded in-memory buffer and
// flushed to the broker when a record of sufficient severity arrives, when the
// buffer fills up, or after a bounded idle interval.
//
// # Construction & Running
//
// An application using mqlog constructs the transport and the handler
// explicitly and starts the publish loop in its own concurrency setup:
//
//	ctx, cancel := context.WithCancel(context.Background())
//
//	transport, err := mqlog.NewMQTTTransport(ctx, mqlog.MQTTInitModeActive, &mqlog.MQTTOptions{
//		BrokerURL: "tcp://localhost:1883",
//	})
//	if err != nil {
//		// ...
//	}
//
//	handler, err := mqlog.New(transport, mqlog.Options{Topic: "logs/app"})
//	if err != nil {
//		// ...
//	}
//	go handler.Run(ctx)
//
//	handler.Info("logger initialized")
//
// # Buffering & Flush Policy
//
// Every logged record is appended to the buffer; the logging call never blocks
// on the network. A record at or above the configured flush level (ERROR by
// default), or an insertion that fills the buffer to capacity (10 records by
// default), signals the publish loop to drain immediately. Records that never
// individually trigger a flush are delivered by the loop's idle timer.
//
// When the buffer is full the oldest record is dropped to make room, keeping
// the most recent diagnostic context. The policy is configurable, see
// [EvictOldest] and [EvictNewest]. Overflow drops are silent; buffered records
// are held in volatile memory only and carry no durability guarantee.
//
// # Connectivity
//
// The publish loop checks the transport's connectivity before every cycle.
// While the broker is unreachable cycles are skipped and the buffer is left
// intact, records are never discarded due to disconnection alone. A publish
// failure while connected drops the remainder of that cycle's drained batch
// and is reported through the [Options] OnError callback; the next cycle
// functions normally.
//
// # Shutting down
//
// To nicely shut down, cancel the Run context and call [Handler.Close], which
// attempts to flush out any pending buffered records within the given timeout.
// After calling Close all logging calls are no-op.
package mqlog
