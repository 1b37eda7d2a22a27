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

package sender

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/encoding/gzip"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	metricsservicepb "go.opentelemetry.io/proto/otlp/collector/metrics/v1"
	traceservicepb "go.opentelemetry.io/proto/otlp/collector/trace/v1"

	"github.com/otelwire/otelwire/config"
)

// GRPC delivers OTLP export requests over a single client connection,
// retrying retryable gRPC status codes with exponential backoff.
type GRPC struct {
	conn          *grpc.ClientConn
	traceClient   traceservicepb.TraceServiceClient
	metricsClient metricsservicepb.MetricsServiceClient
	callOptions   []grpc.CallOption
	headers       map[string]string
	timeout       time.Duration
	retry         config.RetrySettings
	logger        *zap.Logger
}

// NewGRPC dials cfg.Endpoint and returns a sender bound to the
// connection. Dialing is lazy, so errors surface here only for invalid
// configuration such as secure mode without a certificate.
func NewGRPC(cfg config.Config, logger *zap.Logger) (*GRPC, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	dialOptions, err := cfg.ToDialOptions()
	if err != nil {
		return nil, err
	}

	var callOptions []grpc.CallOption
	switch cfg.Compression {
	case config.CompressionNone, config.Compression(""):
	case config.CompressionGzip:
		callOptions = append(callOptions, grpc.UseCompressor(gzip.Name))
	default:
		logger.Warn("Unsupported compression type, no compression will be used",
			zap.String("compression", string(cfg.Compression)))
	}

	conn, err := grpc.Dial(cfg.Endpoint, dialOptions...)
	if err != nil {
		return nil, err
	}

	return &GRPC{
		conn:          conn,
		traceClient:   traceservicepb.NewTraceServiceClient(conn),
		metricsClient: metricsservicepb.NewMetricsServiceClient(conn),
		callOptions:   callOptions,
		headers:       cfg.Headers,
		timeout:       cfg.TimeoutOrDefault(),
		retry:         cfg.Retry.OrDefault(),
		logger:        logger,
	}, nil
}

// SendTraces exports one trace request, retrying transient failures.
// It reports whether the request was eventually accepted.
func (s *GRPC) SendTraces(ctx context.Context, req *traceservicepb.ExportTraceServiceRequest) bool {
	return s.export(ctx, func(ctx context.Context) error {
		_, err := s.traceClient.Export(ctx, req, s.callOptions...)
		return err
	})
}

// SendMetrics exports one metrics request, retrying transient failures.
func (s *GRPC) SendMetrics(ctx context.Context, req *metricsservicepb.ExportMetricsServiceRequest) bool {
	return s.export(ctx, func(ctx context.Context) error {
		_, err := s.metricsClient.Export(ctx, req, s.callOptions...)
		return err
	})
}

// Close tears down the client connection. The sender must not be used
// afterwards.
func (s *GRPC) Close() error {
	return s.conn.Close()
}

func (s *GRPC) export(ctx context.Context, do func(ctx context.Context) error) bool {
	if s.headers != nil {
		ctx = metadata.NewOutgoingContext(ctx, metadata.New(s.headers))
	}

	expBackoff := backoff.ExponentialBackOff{
		InitialInterval:     s.retry.InitialInterval,
		RandomizationFactor: 0,
		Multiplier:          2,
		MaxInterval:         s.retry.MaxInterval,
		MaxElapsedTime:      0,
		Stop:                backoff.Stop,
		Clock:               backoff.SystemClock,
	}
	expBackoff.Reset()

	for {
		callCtx, cancel := context.WithTimeout(ctx, s.timeout)
		err := do(callCtx)
		cancel()

		st := status.Convert(err)
		if st.Code() == codes.OK {
			// Either a nil error or a server that attached the OK code
			// to an error value. The data was accepted.
			return true
		}
		if !retryable(st.Code()) {
			s.logger.Error("Failed to export, dropping data",
				zap.String("code", st.Code().String()),
				zap.String("message", st.Message()))
			return false
		}

		delay := expBackoff.NextBackOff()
		if delay == backoff.Stop || delay >= s.retry.MaxInterval {
			s.logger.Error("Failed to export, max retries reached, dropping data",
				zap.String("code", st.Code().String()),
				zap.String("message", st.Message()))
			return false
		}
		if throttle := throttleDelay(st); throttle > 0 {
			delay = throttle
		}

		s.logger.Warn("Transient export failure, retrying",
			zap.String("code", st.Code().String()),
			zap.String("message", st.Message()),
			zap.Duration("delay", delay))

		select {
		case <-ctx.Done():
			s.logger.Error("Export canceled while waiting to retry, dropping data",
				zap.Error(ctx.Err()))
			return false
		case <-time.After(delay):
		}
	}
}

// retryable reports whether the status code marks a transient failure
// worth retrying per the OTLP specification.
func retryable(code codes.Code) bool {
	switch code {
	case codes.Canceled,
		codes.DeadlineExceeded,
		codes.PermissionDenied,
		codes.Unauthenticated,
		codes.ResourceExhausted,
		codes.Aborted,
		codes.OutOfRange,
		codes.Unavailable,
		codes.DataLoss:
		return true
	}
	return false
}

// throttleDelay extracts the server's RetryInfo hint, if any. A
// throttling server overrides the computed backoff delay.
func throttleDelay(st *status.Status) time.Duration {
	for _, detail := range st.Details() {
		if t, ok := detail.(*errdetails.RetryInfo); ok {
			return t.RetryDelay.AsDuration()
		}
	}
	return 0
}
