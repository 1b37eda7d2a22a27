// Copyright The Otelwire Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//       http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package model

import (
	"encoding/binary"
	"encoding/hex"
)

// TraceID is a 128-bit trace identifier stored big-endian.
type TraceID [16]byte

// NewTraceID builds a TraceID from its high and low unsigned halves.
func NewTraceID(high, low uint64) TraceID {
	var t TraceID
	binary.BigEndian.PutUint64(t[:8], high)
	binary.BigEndian.PutUint64(t[8:], low)
	return t
}

// HighLow returns the two unsigned 64-bit halves of the id.
func (t TraceID) HighLow() (high, low uint64) {
	return binary.BigEndian.Uint64(t[:8]), binary.BigEndian.Uint64(t[8:])
}

// Bytes returns the 16 fixed-width big-endian bytes of the id.
func (t TraceID) Bytes() []byte {
	b := make([]byte, 16)
	copy(b, t[:])
	return b
}

func (t TraceID) String() string {
	return hex.EncodeToString(t[:])
}

// SpanID is a 64-bit span identifier stored big-endian.
type SpanID [8]byte

// NewSpanID builds a SpanID from an unsigned 64-bit value.
func NewSpanID(id uint64) SpanID {
	var s SpanID
	binary.BigEndian.PutUint64(s[:], id)
	return s
}

// Uint64 returns the id as an unsigned integer.
func (s SpanID) Uint64() uint64 {
	return binary.BigEndian.Uint64(s[:])
}

// Bytes returns the 8 fixed-width big-endian bytes of the id.
func (s SpanID) Bytes() []byte {
	b := make([]byte, 8)
	copy(b, s[:])
	return b
}

func (s SpanID) String() string {
	return hex.EncodeToString(s[:])
}

// SpanKind is the closed set of span kinds the wire formats know about.
type SpanKind int

const (
	SpanKindInternal SpanKind = iota
	SpanKindServer
	SpanKindClient
	SpanKindProducer
	SpanKindConsumer
)

func (k SpanKind) String() string {
	switch k {
	case SpanKindInternal:
		return "INTERNAL"
	case SpanKindServer:
		return "SERVER"
	case SpanKindClient:
		return "CLIENT"
	case SpanKindProducer:
		return "PRODUCER"
	case SpanKindConsumer:
		return "CONSUMER"
	}
	return "UNKNOWN"
}

// StatusCode is the two-valued outcome a finished span reports.
type StatusCode int

const (
	StatusCodeOk StatusCode = iota
	StatusCodeError
)

func (c StatusCode) String() string {
	if c == StatusCodeError {
		return "ERROR"
	}
	return "OK"
}

// Status is the final status of a span. A nil *Status on a SpanRecord
// means the span reported none and the field is omitted on the wire.
type Status struct {
	Code    StatusCode
	Message string
}

// TraceStateEntry is one ordered key/value pair of the W3C trace state.
type TraceStateEntry struct {
	Key   string
	Value string
}

// Event is a timestamped annotation on a span.
type Event struct {
	Name       string
	Timestamp  uint64 // ns since epoch
	Attributes map[string]interface{}
}

// Link references another span.
type Link struct {
	TraceID    TraceID
	SpanID     SpanID
	Attributes map[string]interface{}
}

// SpanRecord is a finished span as handed over by the SDK. All fields
// are final; the pipeline never mutates them.
type SpanRecord struct {
	Resource Resource
	Scope    *InstrumentationScope

	TraceID      TraceID
	SpanID       SpanID
	ParentSpanID *SpanID // nil when the span has no parent

	Name      string
	Kind      SpanKind
	StartTime uint64 // ns since epoch
	EndTime   uint64 // ns since epoch

	Attributes map[string]interface{}
	Events     []Event
	Links      []Link
	Status     *Status
	TraceState []TraceStateEntry
	Sampled    bool
}
