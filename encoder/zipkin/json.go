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
	"time"

	zipkinmodel "github.com/openzipkin/zipkin-go/model"
	zipkinreporter "github.com/openzipkin/zipkin-go/reporter"
	"go.uber.org/zap"

	"github.com/otelwire/otelwire/model"
)

// JSONEncoder encodes spans as Zipkin v2 JSON.
type JSONEncoder struct {
	base
	serializer zipkinreporter.JSONSerializer
}

// NewJSONEncoder returns a v2 JSON encoder logging diagnostics to
// logger. A nil logger disables logging.
func NewJSONEncoder(logger *zap.Logger, opts ...Option) *JSONEncoder {
	return &JSONEncoder{base: newBase(logger, opts)}
}

// ContentType implements the encoder contract for the HTTP sender.
func (e *JSONEncoder) ContentType() string {
	return e.serializer.ContentType()
}

// Encode converts spans to Zipkin span models carrying local as the
// batch-wide local endpoint.
func (e *JSONEncoder) Encode(spans []model.SpanRecord, local model.NodeEndpoint) []*zipkinmodel.SpanModel {
	endpoint := jsonEndpoint(local)
	out := make([]*zipkinmodel.SpanModel, 0, len(spans))
	for i := range spans {
		out = append(out, e.encodeSpan(&spans[i], endpoint))
	}
	return out
}

// Serialize returns the JSON array of encoded spans.
func (e *JSONEncoder) Serialize(spans []model.SpanRecord, local model.NodeEndpoint) ([]byte, error) {
	return e.serializer.Serialize(e.Encode(spans, local))
}

func (e *JSONEncoder) encodeSpan(span *model.SpanRecord, endpoint *zipkinmodel.Endpoint) *zipkinmodel.SpanModel {
	high, low := span.TraceID.HighLow()
	sm := &zipkinmodel.SpanModel{
		SpanContext: zipkinmodel.SpanContext{
			TraceID: zipkinmodel.TraceID{High: high, Low: low},
			ID:      zipkinmodel.ID(span.SpanID.Uint64()),
			Debug:   span.Sampled,
		},
		Name:          span.Name,
		Kind:          jsonKind(span.Kind),
		Timestamp:     usTime(nsToUsRound(span.StartTime)),
		Duration:      time.Duration(nsToUsRound(span.EndTime-span.StartTime)) * time.Microsecond,
		LocalEndpoint: endpoint,
		Tags:          e.extractTags(span),
	}
	if span.ParentSpanID != nil {
		parentID := zipkinmodel.ID(span.ParentSpanID.Uint64())
		sm.ParentID = &parentID
	}
	for _, a := range e.annotations(span.Events) {
		sm.Annotations = append(sm.Annotations, zipkinmodel.Annotation{
			Timestamp: usTime(a.Timestamp),
			Value:     a.Value,
		})
	}
	return sm
}

// jsonKind maps span kinds onto the Zipkin kind set. Internal spans
// have no Zipkin equivalent and the field is omitted.
func jsonKind(k model.SpanKind) zipkinmodel.Kind {
	switch k {
	case model.SpanKindServer:
		return zipkinmodel.Server
	case model.SpanKindClient:
		return zipkinmodel.Client
	case model.SpanKindProducer:
		return zipkinmodel.Producer
	case model.SpanKindConsumer:
		return zipkinmodel.Consumer
	}
	return zipkinmodel.Undetermined
}

func jsonEndpoint(local model.NodeEndpoint) *zipkinmodel.Endpoint {
	return &zipkinmodel.Endpoint{
		ServiceName: local.ServiceName,
		IPv4:        local.IPv4,
		IPv6:        local.IPv6,
		Port:        local.Port,
	}
}

// usTime converts half-up rounded microseconds back to a time.Time so
// the serializer's µs formatting reproduces them exactly.
func usTime(us uint64) time.Time {
	return time.Unix(0, int64(us)*int64(time.Microsecond))
}
