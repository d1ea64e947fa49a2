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
)

// ErrNotConnected is the error reported when a publish is attempted while the
// transport is disconnected. The dispatcher treats it as a normal skip
// condition, never as a failure.
var ErrNotConnected = errors.New("transport is not connected")

// Transport defines the interface of the message-bus client collaborator. The
// handler only publishes through it and observes its connectivity; connection
// management, authentication and network I/O belong to the implementation.
type Transport interface {
	// Publish sends a single message payload to the given topic with the given
	// QoS. It blocks until the delivery is handed off to the broker, the
	// context is done, or the attempt fails.
	Publish(ctx context.Context, topic string, payload []byte, qos byte) error
	// IsConnected reports whether the transport currently holds a usable
	// connection. It must be side-effect free.
	IsConnected() bool
}
