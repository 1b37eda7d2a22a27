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
	"github.com/otelwire/otelwire/encoder/otlp"
	"github.com/otelwire/otelwire/model"
	"github.com/otelwire/otelwire/sender"
)

// OTLP exports spans and metric points to an OTLP collector over the
// protocol named in the configuration.
type OTLP struct {
	traces  *otlp.TracesEncoder
	metrics *otlp.MetricsEncoder
	grpc    *sender.GRPC
	http    *sender.HTTP
	logger  *zap.Logger
}

// NewOTLP validates cfg and builds the exporter for cfg.Protocol. The
// gRPC connection, when selected, lives until Shutdown.
func NewOTLP(cfg config.Config, logger *zap.Logger) (*OTLP, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &OTLP{
		traces:  otlp.NewTracesEncoder(logger),
		metrics: otlp.NewMetricsEncoder(logger),
		logger:  logger,
	}

	var err error
	switch cfg.Protocol {
	case config.ProtocolGRPC, config.Protocol(""):
		e.grpc, err = sender.NewGRPC(cfg, logger)
	case config.ProtocolHTTPProtobuf:
		e.http, err = sender.NewHTTP(cfg, logger)
	default:
		err = fmt.Errorf("unsupported protocol %q", cfg.Protocol)
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

// ExportSpans encodes and delivers one batch of finished spans.
func (e *OTLP) ExportSpans(ctx context.Context, spans []model.SpanRecord) Result {
	if len(spans) == 0 {
		return Success
	}
	if e.grpc != nil {
		return resultOf(e.grpc.SendTraces(ctx, e.traces.Encode(spans)))
	}
	payload, err := e.traces.Serialize(spans)
	if err != nil {
		e.logger.Error("Failed to serialize spans, dropping data", zap.Error(err))
		return Failure
	}
	return resultOf(e.http.Send(ctx, payload, e.traces.ContentType()))
}

// ExportMetrics encodes and delivers one batch of checkpointed metric
// points. Points the wire format cannot carry are dropped during
// encoding with a warning; an all-dropped batch still succeeds.
func (e *OTLP) ExportMetrics(ctx context.Context, points []model.MetricPoint) Result {
	if len(points) == 0 {
		return Success
	}
	if e.grpc != nil {
		return resultOf(e.grpc.SendMetrics(ctx, e.metrics.Encode(points)))
	}
	payload, err := e.metrics.Serialize(points)
	if err != nil {
		e.logger.Error("Failed to serialize metrics, dropping data", zap.Error(err))
		return Failure
	}
	return resultOf(e.http.Send(ctx, payload, e.metrics.ContentType()))
}

// Shutdown releases the transport. Export calls after Shutdown fail.
func (e *OTLP) Shutdown() error {
	if e.grpc != nil {
		return e.grpc.Close()
	}
	return nil
}
