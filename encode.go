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
	"bytes"
	"fmt"

	"github.com/klauspost/compress/gzip"
)

// BatchMode selects how a publish cycle maps drained records to outbound
// messages.
type BatchMode int

const (
	// BatchPerRecord publishes one message per drained record, awaiting each
	// publish before issuing the next so FIFO order is preserved on the wire.
	// This is the default.
	BatchPerRecord BatchMode = iota
	// BatchJoined joins all records drained in a cycle with newlines into a
	// single published message. A publish failure loses the whole batch.
	BatchJoined
)

// compressPayload returns the gzip compressed form of payload.
func compressPayload(payload []byte) ([]byte, error) {
	buffer := new(bytes.Buffer)
	writer := gzip.NewWriter(buffer)

	if _, err := writer.Write(payload); err != nil {
		return nil, fmt.Errorf("failed to write gzip payload: %w", err)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize gzip payload: %w", err)
	}

	return buffer.Bytes(), nil
}
