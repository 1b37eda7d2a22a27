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

// Package otlp encodes span and metric records into OTLP protobuf
// export requests.
package otlp

import (
	"fmt"
	"strings"

	tracesvcpb "go.opentelemetry.io/proto/otlp/collector/trace/v1"
	tracepb "go.opentelemetry.io/proto/otlp/trace/v1"
	"go.uber.org/zap"
	"google.golang.org/protobuf/proto"

	"github.com/otelwire/otelwire/encoder"
	"github.com/otelwire/otelwire/model"
)

// ContentType is the HTTP content type of serialized OTLP payloads.
const ContentType = "application/x-protobuf"

// TracesEncoder translates finished spans into OTLP
// ExportTraceServiceRequest messages.
type TracesEncoder struct {
	logger *zap.Logger
}

// NewTracesEncoder returns an encoder logging diagnostics to logger.
// A nil logger disables logging.
func NewTracesEncoder(logger *zap.Logger) *TracesEncoder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TracesEncoder{logger: logger}
}

// ContentType implements the encoder contract for the HTTP sender.
func (e *TracesEncoder) ContentType() string {
	return ContentType
}

// Encode groups spans by resource and scope and encodes each group into
// the request's ResourceSpans nesting. Input order is preserved inside
// every group.
func (e *TracesEncoder) Encode(spans []model.SpanRecord) *tracesvcpb.ExportTraceServiceRequest {
	groups := encoder.NewGroups()
	for i := range spans {
		span := &spans[i]
		groups.Add(span.Resource, span.Scope, e.encodeSpan(span))
	}

	req := &tracesvcpb.ExportTraceServiceRequest{}
	for _, rg := range groups.Resources() {
		rs := &tracepb.ResourceSpans{
			Resource: encoder.Resource(rg.Resource, e.logger),
		}
		for _, sg := range rg.Scopes() {
			ils := &tracepb.InstrumentationLibrarySpans{
				InstrumentationLibrary: encoder.Scope(sg.Scope),
			}
			for _, rec := range sg.Records {
				ils.Spans = append(ils.Spans, rec.(*tracepb.Span))
			}
			rs.InstrumentationLibrarySpans = append(rs.InstrumentationLibrarySpans, ils)
		}
		req.ResourceSpans = append(req.ResourceSpans, rs)
	}
	return req
}

// Serialize returns the binary protobuf encoding of Encode(spans).
func (e *TracesEncoder) Serialize(spans []model.SpanRecord) ([]byte, error) {
	return proto.Marshal(e.Encode(spans))
}

func (e *TracesEncoder) encodeSpan(span *model.SpanRecord) *tracepb.Span {
	out := &tracepb.Span{
		TraceId:           span.TraceID.Bytes(),
		SpanId:            span.SpanID.Bytes(),
		TraceState:        encodeTraceState(span.TraceState),
		Name:              span.Name,
		Kind:              spanKind(span.Kind),
		StartTimeUnixNano: span.StartTime,
		EndTimeUnixNano:   span.EndTime,
		Attributes:        encoder.Attributes(span.Attributes, e.logger),
		Events:            e.encodeEvents(span.Events),
		Links:             e.encodeLinks(span.Links),
		Status:            encodeStatus(span.Status),
	}
	if span.ParentSpanID != nil {
		out.ParentSpanId = span.ParentSpanID.Bytes()
	}
	return out
}

// encodeEvents returns nil for an empty slice: optional repeated wire
// fields are omitted rather than sent empty.
func (e *TracesEncoder) encodeEvents(events []model.Event) []*tracepb.Span_Event {
	if len(events) == 0 {
		return nil
	}
	out := make([]*tracepb.Span_Event, 0, len(events))
	for _, ev := range events {
		out = append(out, &tracepb.Span_Event{
			TimeUnixNano: ev.Timestamp,
			Name:         ev.Name,
			Attributes:   encoder.Attributes(ev.Attributes, e.logger),
		})
	}
	return out
}

func (e *TracesEncoder) encodeLinks(links []model.Link) []*tracepb.Span_Link {
	if len(links) == 0 {
		return nil
	}
	out := make([]*tracepb.Span_Link, 0, len(links))
	for _, l := range links {
		out = append(out, &tracepb.Span_Link{
			TraceId:    l.TraceID.Bytes(),
			SpanId:     l.SpanID.Bytes(),
			Attributes: encoder.Attributes(l.Attributes, e.logger),
		})
	}
	return out
}

// spanKind is a fixed total mapping. A kind outside the closed model set
// is a programming error, not a runtime condition.
func spanKind(k model.SpanKind) tracepb.Span_SpanKind {
	switch k {
	case model.SpanKindInternal:
		return tracepb.Span_SPAN_KIND_INTERNAL
	case model.SpanKindServer:
		return tracepb.Span_SPAN_KIND_SERVER
	case model.SpanKindClient:
		return tracepb.Span_SPAN_KIND_CLIENT
	case model.SpanKindProducer:
		return tracepb.Span_SPAN_KIND_PRODUCER
	case model.SpanKindConsumer:
		return tracepb.Span_SPAN_KIND_CONSUMER
	}
	panic(fmt.Sprintf("no wire mapping for span kind %d", k))
}

func encodeStatus(status *model.Status) *tracepb.Status {
	if status == nil {
		return nil
	}
	code := tracepb.Status_STATUS_CODE_OK
	if status.Code == model.StatusCodeError {
		code = tracepb.Status_STATUS_CODE_ERROR
	}
	return &tracepb.Status{Code: code, Message: status.Message}
}

func encodeTraceState(entries []model.TraceStateEntry) string {
	if len(entries) == 0 {
		return ""
	}
	parts := make([]string, 0, len(entries))
	for _, e := range entries {
		parts = append(parts, e.Key+"="+e.Value)
	}
	return strings.Join(parts, ",")
}
