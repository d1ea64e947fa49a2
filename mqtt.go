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
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
)

// MQTTInitMode is the MQTT transport initialization mode.
type MQTTInitMode int

const (
	// MQTTInitModeLazy is the lazy initialization mode. In this mode the
	// transport object is created but no connection is attempted until the
	// first call to Connect. Records logged meanwhile are buffered by the
	// handler, the dispatcher skips publish cycles while disconnected.
	MQTTInitModeLazy MQTTInitMode = iota
	// MQTTInitModeActive is the active initialization mode. In this mode the
	// transport object is created and the broker connection is established
	// immediately.
	MQTTInitModeActive
)

const (
	// DefaultConnectTimeout is the default timeout for the MQTT broker
	// connection attempt.
	DefaultConnectTimeout = 10 * time.Second

	// disconnectQuiesceMS is the grace period, in milliseconds, given to the
	// paho client to complete in-flight work on Close.
	disconnectQuiesceMS = 250
)

var (
	// errMQTTEmptyBroker is the error returned when no broker URL was
	// provided.
	errMQTTEmptyBroker = errors.New("broker URL must not be empty")

	// errMQTTAlreadyConnected is the error returned when Connect is called
	// and the transport is already connected.
	errMQTTAlreadyConnected = errors.New("mqtt transport is already connected")
)

// MQTTTransport is a Transport implementation backed by an MQTT client. It
// owns the broker connection lifecycle; the handler only publishes through it
// and observes its connectivity.
type MQTTTransport struct {
	// client is the underlying MQTT client.
	client mqtt.Client
	// opts is the transport configuration options.
	opts *MQTTOptions
}

// MQTTOptions defines the MQTT transport behavior and setup options.
type MQTTOptions struct {
	// BrokerURL is the broker address, i.e. "tcp://localhost:1883".
	BrokerURL string
	// ClientID is the MQTT client identifier presented to the broker. When
	// empty a random "mqlog-" prefixed identifier is generated.
	ClientID string
	// Username is the optional broker authentication user name.
	Username string
	// Password is the optional broker authentication password.
	Password string
	// ConnectTimeout bounds the broker connection attempt. Defaults to
	// [DefaultConnectTimeout].
	ConnectTimeout time.Duration
}

// NewMQTTTransport returns a Transport implementation that will publish to
// the configured MQTT broker.
//
// Initialization Mode:
//
// If mode is [MQTTInitModeLazy] the transport object will be allocated
// without connecting; the connection is established later with Connect.
//
// Why lazy initialization is important/needed?
//
// The broker might not be reachable at the time the application starts, i.e.
// the network is still coming up on an embedded device. In such cases early
// constructing the transport and registering the handler will result in
// records being buffered and published once Connect succeeds, that way no
// early log records are lost.
func NewMQTTTransport(ctx context.Context, mode MQTTInitMode, opts *MQTTOptions) (*MQTTTransport, error) {
	if opts == nil || opts.BrokerURL == "" {
		return nil, errMQTTEmptyBroker
	}

	if opts.ClientID == "" {
		opts.ClientID = "mqlog-" + uuid.NewString()
	}

	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = DefaultConnectTimeout
	}

	clientOptions := mqtt.NewClientOptions().
		AddBroker(opts.BrokerURL).
		SetClientID(opts.ClientID).
		SetConnectTimeout(opts.ConnectTimeout).
		SetAutoReconnect(true)

	if opts.Username != "" {
		clientOptions.SetUsername(opts.Username)
	}

	if opts.Password != "" {
		clientOptions.SetPassword(opts.Password)
	}

	res := &MQTTTransport{
		client: mqtt.NewClient(clientOptions),
		opts:   opts,
	}

	if mode == MQTTInitModeActive {
		if err := res.Connect(ctx); err != nil {
			return nil, fmt.Errorf("failed to connect mqtt transport: %w", err)
		}
	}

	return res, nil
}

// Connect establishes the broker connection, returning an error if the
// connection is already open. The attempt is bounded by ctx and by the
// configured connect timeout.
func (mt *MQTTTransport) Connect(ctx context.Context) error {
	if mt.client.IsConnectionOpen() {
		return errMQTTAlreadyConnected
	}

	token := mt.client.Connect()
	select {
	case <-token.Done():
	case <-ctx.Done():
		return ctx.Err()
	}

	if err := token.Error(); err != nil {
		return fmt.Errorf("failed to connect to broker %q: %w", mt.opts.BrokerURL, err)
	}

	return nil
}

// Publish sends a single message payload to the given topic with the given
// QoS, waiting for the broker handoff bounded by ctx.
func (mt *MQTTTransport) Publish(ctx context.Context, topic string, payload []byte, qos byte) error {
	if !mt.IsConnected() {
		return ErrNotConnected
	}

	token := mt.client.Publish(topic, qos, false, payload)
	select {
	case <-token.Done():
	case <-ctx.Done():
		return ctx.Err()
	}

	return token.Error()
}

// IsConnected reports whether the transport currently holds an open broker
// connection. A client waiting on an automatic reconnect reports false.
func (mt *MQTTTransport) IsConnected() bool {
	return mt.client.IsConnectionOpen()
}

// Close disconnects from the broker, allowing a short grace period for
// in-flight messages.
func (mt *MQTTTransport) Close() {
	mt.client.Disconnect(disconnectQuiesceMS)
}
