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

package otlp

import (
	metricsvcpb "go.opentelemetry.io/proto/otlp/collector/metrics/v1"
	commonpb "go.opentelemetry.io/proto/otlp/common/v1"
	metricspb "go.opentelemetry.io/proto/otlp/metrics/v1"
	"go.uber.org/zap"
	"google.golang.org/protobuf/proto"

	"github.com/otelwire/otelwire/encoder"
	"github.com/otelwire/otelwire/model"
)

// MetricsEncoder translates aggregator checkpoints into OTLP
// ExportMetricsServiceRequest messages.
//
// Points that have no wire shape (value recorders, histogram and
// min-max-sum-count aggregations) are dropped one by one with a
// warning; a single unencodable point never fails the batch.
type MetricsEncoder struct {
	logger *zap.Logger
}

// NewMetricsEncoder returns an encoder logging diagnostics to logger.
// A nil logger disables logging.
func NewMetricsEncoder(logger *zap.Logger) *MetricsEncoder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MetricsEncoder{logger: logger}
}

// ContentType implements the encoder contract for the HTTP sender.
func (e *MetricsEncoder) ContentType() string {
	return ContentType
}

// Encode groups points by resource and scope and encodes each group
// into the request's ResourceMetrics nesting.
func (e *MetricsEncoder) Encode(points []model.MetricPoint) *metricsvcpb.ExportMetricsServiceRequest {
	groups := encoder.NewGroups()
	for i := range points {
		point := &points[i]
		metric, ok := e.encodeMetric(point)
		if !ok {
			continue
		}
		groups.Add(point.Resource, point.Scope, metric)
	}

	req := &metricsvcpb.ExportMetricsServiceRequest{}
	for _, rg := range groups.Resources() {
		rm := &metricspb.ResourceMetrics{
			Resource: encoder.Resource(rg.Resource, e.logger),
		}
		for _, sg := range rg.Scopes() {
			ilm := &metricspb.InstrumentationLibraryMetrics{
				InstrumentationLibrary: encoder.Scope(sg.Scope),
			}
			for _, rec := range sg.Records {
				ilm.Metrics = append(ilm.Metrics, rec.(*metricspb.Metric))
			}
			rm.InstrumentationLibraryMetrics = append(rm.InstrumentationLibraryMetrics, ilm)
		}
		req.ResourceMetrics = append(req.ResourceMetrics, rm)
	}
	return req
}

// Serialize returns the binary protobuf encoding of Encode(points).
func (e *MetricsEncoder) Serialize(points []model.MetricPoint) ([]byte, error) {
	return proto.Marshal(e.Encode(points))
}

func (e *MetricsEncoder) encodeMetric(point *model.MetricPoint) (*metricspb.Metric, bool) {
	switch point.Aggregation {
	case model.SumAggregationKind, model.LastValueAggregationKind:
	default:
		e.logger.Warn("Dropping metric point: no data-point shape for aggregation",
			zap.String("aggregation", point.Aggregation.String()),
			zap.String("metric", point.Name))
		return nil, false
	}

	metric := &metricspb.Metric{
		Name:        point.Name,
		Description: point.Description,
		Unit:        point.Unit,
	}

	switch point.InstrumentKind {
	case model.CounterInstrumentKind, model.SumObserverInstrumentKind:
		e.setSum(metric, point, true)
	case model.UpDownCounterInstrumentKind, model.UpDownSumObserverInstrumentKind:
		e.setSum(metric, point, false)
	case model.ValueObserverInstrumentKind:
		e.setGauge(metric, point)
	case model.ValueRecorderInstrumentKind:
		e.logger.Warn("Dropping metric point: value recorder instruments are not supported",
			zap.String("metric", point.Name))
		return nil, false
	default:
		e.logger.Warn("Dropping metric point: unknown instrument kind",
			zap.String("instrument", point.InstrumentKind.String()),
			zap.String("metric", point.Name))
		return nil, false
	}
	return metric, true
}

// setSum fills the Sum variant. All sum-family instruments report
// cumulative temporality, so the start time is the aggregator's
// first-seen timestamp.
func (e *MetricsEncoder) setSum(metric *metricspb.Metric, point *model.MetricPoint, monotonic bool) {
	temporality := metricspb.AggregationTemporality_AGGREGATION_TEMPORALITY_CUMULATIVE
	if point.Checkpoint.Kind() == model.Float64NumberKind {
		metric.Data = &metricspb.Metric_DoubleSum{DoubleSum: &metricspb.DoubleSum{
			DataPoints:             []*metricspb.DoubleDataPoint{e.doublePoint(point, point.FirstTime)},
			AggregationTemporality: temporality,
			IsMonotonic:            monotonic,
		}}
		return
	}
	metric.Data = &metricspb.Metric_IntSum{IntSum: &metricspb.IntSum{
		DataPoints:             []*metricspb.IntDataPoint{e.intPoint(point, point.FirstTime)},
		AggregationTemporality: temporality,
		IsMonotonic:            monotonic,
	}}
}

// setGauge fills the Gauge variant. Gauge observations are deltas, so
// the start time is the timestamp of the current checkpoint; the gauge
// wire message itself carries no temporality field.
func (e *MetricsEncoder) setGauge(metric *metricspb.Metric, point *model.MetricPoint) {
	if point.Checkpoint.Kind() == model.Float64NumberKind {
		metric.Data = &metricspb.Metric_DoubleGauge{DoubleGauge: &metricspb.DoubleGauge{
			DataPoints: []*metricspb.DoubleDataPoint{e.doublePoint(point, point.CheckpointTime)},
		}}
		return
	}
	metric.Data = &metricspb.Metric_IntGauge{IntGauge: &metricspb.IntGauge{
		DataPoints: []*metricspb.IntDataPoint{e.intPoint(point, point.CheckpointTime)},
	}}
}

func (e *MetricsEncoder) intPoint(point *model.MetricPoint, startTime uint64) *metricspb.IntDataPoint {
	return &metricspb.IntDataPoint{
		Labels:            encodeLabels(point.Labels),
		StartTimeUnixNano: startTime,
		TimeUnixNano:      point.LastUpdateTime,
		Value:             point.Checkpoint.Int64(),
	}
}

func (e *MetricsEncoder) doublePoint(point *model.MetricPoint, startTime uint64) *metricspb.DoubleDataPoint {
	return &metricspb.DoubleDataPoint{
		Labels:            encodeLabels(point.Labels),
		StartTimeUnixNano: startTime,
		TimeUnixNano:      point.LastUpdateTime,
		Value:             point.Checkpoint.Float64(),
	}
}

func encodeLabels(labels []model.Label) []*commonpb.StringKeyValue {
	if len(labels) == 0 {
		return nil
	}
	out := make([]*commonpb.StringKeyValue, 0, len(labels))
	for _, l := range labels {
		out = append(out, &commonpb.StringKeyValue{Key: l.Key, Value: l.Value})
	}
	return out
}
