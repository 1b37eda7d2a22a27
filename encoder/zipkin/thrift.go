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

package zipkin

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/apache/thrift/lib/go/thrift"
	"github.com/jaegertracing/jaeger/thrift-gen/zipkincore"
	"go.uber.org/zap"

	"github.com/otelwire/otelwire/model"
)

// ThriftContentType is the content type of Zipkin v1 Thrift payloads.
const ThriftContentType = "application/x-thrift"

// ThriftEncoder encodes spans as a Zipkin v1 Thrift struct list.
//
// The Thrift schema holds ids in signed 64-bit fields, so span ids are
// truncated to 63 bits and trace ids are split into a 63-bit id plus a
// 63-bit trace_id_high; entropy beyond 126 bits is dropped. Every
// truncation logs the original and truncated hex values so integrators
// can judge the collision risk.
type ThriftEncoder struct {
	base
}

// NewThriftEncoder returns a v1 Thrift encoder logging diagnostics to
// logger. A nil logger disables logging.
func NewThriftEncoder(logger *zap.Logger, opts ...Option) *ThriftEncoder {
	return &ThriftEncoder{base: newBase(logger, opts)}
}

// ContentType implements the encoder contract for the HTTP sender.
func (e *ThriftEncoder) ContentType() string {
	return ThriftContentType
}

// Serialize writes the spans as a binary-protocol Thrift list of Span
// structs, the batch shape the Zipkin v1 collector accepts.
func (e *ThriftEncoder) Serialize(spans []model.SpanRecord, local model.NodeEndpoint) ([]byte, error) {
	ctx := context.Background()
	endpoint := thriftEndpoint(local)
	buffer := thrift.NewTMemoryBuffer()
	protocol := thrift.NewTBinaryProtocolConf(buffer, nil)

	if err := protocol.WriteListBegin(ctx, thrift.STRUCT, len(spans)); err != nil {
		return nil, err
	}
	for i := range spans {
		if err := e.encodeSpan(&spans[i], endpoint).Write(ctx, protocol); err != nil {
			return nil, err
		}
	}
	if err := protocol.WriteListEnd(ctx); err != nil {
		return nil, err
	}
	if err := protocol.Flush(ctx); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

func (e *ThriftEncoder) encodeSpan(span *model.SpanRecord, endpoint *zipkincore.Endpoint) *zipkincore.Span {
	traceID, traceIDHigh := e.encodeTraceID(span.TraceID)
	timestamp := int64(nsToUsRound(span.StartTime))
	duration := int64(nsToUsRound(span.EndTime - span.StartTime))

	ts := &zipkincore.Span{
		TraceID:           traceID,
		TraceIDHigh:       traceIDHigh,
		ID:                e.encodeSpanID(span.SpanID.Uint64()),
		Name:              span.Name,
		Debug:             span.Sampled,
		Timestamp:         &timestamp,
		Duration:          &duration,
		Annotations:       e.encodeAnnotations(span, endpoint),
		BinaryAnnotations: e.encodeBinaryAnnotations(span, endpoint),
	}
	if span.ParentSpanID != nil {
		parentID := e.encodeSpanID(span.ParentSpanID.Uint64())
		ts.ParentID = &parentID
	}
	return ts
}

func (e *ThriftEncoder) encodeAnnotations(span *model.SpanRecord, endpoint *zipkincore.Endpoint) []*zipkincore.Annotation {
	annotations := e.annotations(span.Events)
	if annotations == nil {
		return nil
	}
	out := make([]*zipkincore.Annotation, 0, len(annotations))
	for _, a := range annotations {
		out = append(out, &zipkincore.Annotation{
			Timestamp: int64(a.Timestamp),
			Value:     a.Value,
			Host:      endpoint,
		})
	}
	return out
}

func (e *ThriftEncoder) encodeBinaryAnnotations(span *model.SpanRecord, endpoint *zipkincore.Endpoint) []*zipkincore.BinaryAnnotation {
	tags := e.extractTags(span)
	if tags == nil {
		return nil
	}
	out := make([]*zipkincore.BinaryAnnotation, 0, len(tags))
	for _, key := range sortedTagKeys(tags) {
		out = append(out, &zipkincore.BinaryAnnotation{
			Key:            key,
			Value:          []byte(tags[key]),
			AnnotationType: zipkincore.AnnotationType_STRING,
			Host:           endpoint,
		})
	}
	return out
}

// encodeSpanID keeps ids below 2^63 unchanged and masks larger ones to
// their low 63 bits, logging one truncation warning.
func (e *ThriftEncoder) encodeSpanID(id uint64) int64 {
	if id <= math.MaxInt64 {
		return int64(id)
	}
	truncated := id & math.MaxInt64
	e.logger.Warn("Span id truncated to fit into Thrift protocol signed integer format",
		zap.String("original", fmt.Sprintf("%016x", id)),
		zap.String("truncated", fmt.Sprintf("%016x", truncated)))
	return int64(truncated)
}

// encodeTraceID splits a 128-bit id into the Thrift schema's signed
// fields: the low 63 bits become trace_id, bits 63-125 become
// trace_id_high (nil when the id fits 63 bits). Bits beyond 126 are
// dropped with a warning.
func (e *ThriftEncoder) encodeTraceID(id model.TraceID) (int64, *int64) {
	high, low := id.HighLow()
	traceID := int64(low & math.MaxInt64)
	if high == 0 && low <= math.MaxInt64 {
		return traceID, nil
	}
	traceIDHigh := int64((high<<1 | low>>63) & math.MaxInt64)
	if high >= 1<<62 {
		e.logger.Warn("Trace id truncated to fit into Thrift protocol signed integer format",
			zap.String("original", id.String()),
			zap.String("truncated", fmt.Sprintf("%016x%016x", traceIDHigh, traceID)))
	}
	return traceID, &traceIDHigh
}

func thriftEndpoint(local model.NodeEndpoint) *zipkincore.Endpoint {
	endpoint := &zipkincore.Endpoint{
		ServiceName: local.ServiceName,
		Port:        int16(local.Port),
	}
	if ip4 := local.IPv4.To4(); ip4 != nil {
		endpoint.Ipv4 = int32(binary.BigEndian.Uint32(ip4))
	}
	if local.IPv6 != nil {
		endpoint.Ipv6 = local.IPv6.To16()
	}
	return endpoint
}
