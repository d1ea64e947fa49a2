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

import "sync"

// EvictionPolicy determines which record is discarded when an insertion would
// raise the buffer length above its capacity.
type EvictionPolicy int

const (
	// EvictOldest drops the oldest buffered record to make room for the new
	// one, retaining the most recent diagnostic context. This is the default.
	EvictOldest EvictionPolicy = iota
	// EvictNewest drops the incoming record, retaining the oldest buffered
	// context instead.
	EvictNewest
)

// Buffer is an ordered, capacity-bounded holding area for log records. Records
// are kept FIFO by arrival and drained oldest-first. The buffer length never
// exceeds its capacity; insertions past capacity apply the eviction policy.
//
// Insert and Drain are safe for concurrent use. The mutex is held only for the
// append+evaluate step, never across I/O, so inserting never blocks the
// logging caller on the transport.
type Buffer struct {
	// records is the slice of buffered log records, oldest first.
	records []*Record
	// mu protects access to the records variable. There will be two
	// goroutines accessing records, the logging caller inserting new records
	// and the dispatcher draining them for publishing.
	mu sync.Mutex
	// capacity is the max number of records held at any time.
	capacity int
	// flushLevel is the severity threshold that requests an immediate flush.
	flushLevel Level
	// policy determines the record dropped on overflow.
	policy EvictionPolicy
}

// NewBuffer allocates and initializes a Buffer with the given capacity, flush
// severity threshold and eviction policy.
func NewBuffer(capacity int, flushLevel Level, policy EvictionPolicy) *Buffer {
	return &Buffer{
		capacity:   max(capacity, 0),
		flushLevel: flushLevel,
		policy:     policy,
	}
}

// shouldFlush is the flush-trigger predicate: it reports whether a record of
// the given level, inserted into a buffer currently holding length records out
// of capacity, should request an immediate flush. It is a pure function of its
// arguments.
func shouldFlush(level, flushLevel Level, length, capacity int) bool {
	return level.Meets(flushLevel) || length >= capacity
}

// Insert appends rec to the buffer's tail, applying the eviction policy if the
// buffer is at capacity. The returned boolean reports whether the insertion
// should trigger an immediate flush: true iff rec's level meets the flush
// threshold or the buffer is now full.
func (b *Buffer) Insert(rec *Record) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch {
	case b.policy == EvictNewest && len(b.records) >= b.capacity:
		// The incoming record is the one dropped; the buffer is unchanged.
	default:
		b.records = append(b.records, rec)
		for len(b.records) > b.capacity {
			b.records = b.records[1:]
		}
	}

	return shouldFlush(rec.Level, b.flushLevel, len(b.records), b.capacity)
}

// Drain atomically removes and returns all currently held records in FIFO
// order, leaving the buffer empty. Draining an empty buffer returns nil.
func (b *Buffer) Drain() []*Record {
	b.mu.Lock()
	defer b.mu.Unlock()
	records := b.records
	b.records = nil
	return records
}

// Empty reports whether the buffer currently holds zero records.
func (b *Buffer) Empty() bool {
	return b.Len() == 0
}

// Len returns the number of currently buffered records.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.records)
}
