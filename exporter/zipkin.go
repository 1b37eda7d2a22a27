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

package exporter

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/otelwire/otelwire/config"
	"github.com/otelwire/otelwire/encoder/zipkin"
	"github.com/otelwire/otelwire/model"
	"github.com/otelwire/otelwire/sender"
)

// ZipkinEncoding selects the wire format posted to the Zipkin
// collector.
type ZipkinEncoding string

const (
	// ZipkinV2JSON is the Zipkin v2 JSON span list, the default.
	ZipkinV2JSON ZipkinEncoding = "v2/json"
	// ZipkinV1Thrift is the legacy v1 binary Thrift span list.
	ZipkinV1Thrift ZipkinEncoding = "v1/thrift"
)

// zipkinSerializer is satisfied by both Zipkin encoders.
type zipkinSerializer interface {
	ContentType() string
	Serialize(spans []model.SpanRecord, local model.NodeEndpoint) ([]byte, error)
}

// Zipkin exports spans to a Zipkin collector over HTTP. The local
// endpoint identifies the reporting service and is attached to every
// span of a batch.
type Zipkin struct {
	encoder zipkinSerializer
	sender  *sender.HTTP
	local   model.NodeEndpoint
	logger  *zap.Logger
}

// NewZipkin builds an exporter posting encoding-formatted batches to
// cfg.Endpoint on behalf of local.
func NewZipkin(cfg config.Config, encoding ZipkinEncoding, local model.NodeEndpoint, logger *zap.Logger, opts ...zipkin.Option) (*Zipkin, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var enc zipkinSerializer
	switch encoding {
	case ZipkinV2JSON, ZipkinEncoding(""):
		enc = zipkin.NewJSONEncoder(logger, opts...)
	case ZipkinV1Thrift:
		enc = zipkin.NewThriftEncoder(logger, opts...)
	default:
		return nil, fmt.Errorf("unsupported zipkin encoding %q", encoding)
	}

	s, err := sender.NewHTTP(cfg, logger)
	if err != nil {
		return nil, err
	}
	return &Zipkin{encoder: enc, sender: s, local: local, logger: logger}, nil
}

// ExportSpans encodes and posts one batch of finished spans.
func (e *Zipkin) ExportSpans(ctx context.Context, spans []model.SpanRecord) Result {
	if len(spans) == 0 {
		return Success
	}
	payload, err := e.encoder.Serialize(spans, e.local)
	if err != nil {
		e.logger.Error("Failed to serialize spans, dropping data", zap.Error(err))
		return Failure
	}
	return resultOf(e.sender.Send(ctx, payload, e.encoder.ContentType()))
}
