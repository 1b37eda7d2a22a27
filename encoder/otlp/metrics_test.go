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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	metricspb "go.opentelemetry.io/proto/otlp/metrics/v1"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/otelwire/otelwire/model"
)

const (
	t0 = uint64(1_600_000_000_000_000_000)
	t1 = t0 + 50_000_000 // +50ms
)

func intCounterPoint() model.MetricPoint {
	return model.MetricPoint{
		Resource:       model.NewResource(map[string]interface{}{"service.name": "api"}),
		Name:           "counter",
		InstrumentKind: model.CounterInstrumentKind,
		Aggregation:    model.SumAggregationKind,
		Labels:         []model.Label{{Key: "label1_key", Value: "label1_val"}},
		Checkpoint:     model.NewInt64Number(111),
		FirstTime:      t0,
		CheckpointTime: t0,
		LastUpdateTime: t1,
	}
}

func TestEncodeIntCounter(t *testing.T) {
	req := NewMetricsEncoder(nil).Encode([]model.MetricPoint{intCounterPoint()})

	require.Len(t, req.ResourceMetrics, 1)
	require.Len(t, req.ResourceMetrics[0].InstrumentationLibraryMetrics, 1)
	metrics := req.ResourceMetrics[0].InstrumentationLibraryMetrics[0].Metrics
	require.Len(t, metrics, 1)
	assert.Equal(t, "counter", metrics[0].Name)

	sum := metrics[0].GetIntSum()
	require.NotNil(t, sum)
	assert.True(t, sum.IsMonotonic)
	assert.Equal(t, metricspb.AggregationTemporality_AGGREGATION_TEMPORALITY_CUMULATIVE, sum.AggregationTemporality)

	require.Len(t, sum.DataPoints, 1)
	dp := sum.DataPoints[0]
	assert.Equal(t, int64(111), dp.Value)
	assert.Equal(t, t0, dp.StartTimeUnixNano)
	assert.Equal(t, t1, dp.TimeUnixNano)
	require.Len(t, dp.Labels, 1)
	assert.Equal(t, "label1_key", dp.Labels[0].Key)
	assert.Equal(t, "label1_val", dp.Labels[0].Value)
}

func TestEncodeUpDownCounterNotMonotonic(t *testing.T) {
	point := intCounterPoint()
	point.InstrumentKind = model.UpDownCounterInstrumentKind

	req := NewMetricsEncoder(nil).Encode([]model.MetricPoint{point})
	sum := req.ResourceMetrics[0].InstrumentationLibraryMetrics[0].Metrics[0].GetIntSum()
	require.NotNil(t, sum)
	assert.False(t, sum.IsMonotonic)
	assert.Equal(t, metricspb.AggregationTemporality_AGGREGATION_TEMPORALITY_CUMULATIVE, sum.AggregationTemporality)
}

func TestEncodeFloatSumObserver(t *testing.T) {
	point := intCounterPoint()
	point.InstrumentKind = model.SumObserverInstrumentKind
	point.Checkpoint = model.NewFloat64Number(2.5)

	req := NewMetricsEncoder(nil).Encode([]model.MetricPoint{point})
	sum := req.ResourceMetrics[0].InstrumentationLibraryMetrics[0].Metrics[0].GetDoubleSum()
	require.NotNil(t, sum)
	assert.True(t, sum.IsMonotonic)
	assert.Equal(t, 2.5, sum.DataPoints[0].Value)
	assert.Equal(t, t0, sum.DataPoints[0].StartTimeUnixNano)
}

// Gauge observations are deltas, so the start time must be the current
// checkpoint time, not the first-seen time.
func TestEncodeValueObserverGauge(t *testing.T) {
	point := intCounterPoint()
	point.InstrumentKind = model.ValueObserverInstrumentKind
	point.Aggregation = model.LastValueAggregationKind
	point.CheckpointTime = t0 + 10_000_000

	req := NewMetricsEncoder(nil).Encode([]model.MetricPoint{point})
	gauge := req.ResourceMetrics[0].InstrumentationLibraryMetrics[0].Metrics[0].GetIntGauge()
	require.NotNil(t, gauge)
	require.Len(t, gauge.DataPoints, 1)
	assert.Equal(t, point.CheckpointTime, gauge.DataPoints[0].StartTimeUnixNano)
	assert.Equal(t, t1, gauge.DataPoints[0].TimeUnixNano)
}

func TestEncodeDropsUnsupportedPoints(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	enc := NewMetricsEncoder(zap.New(core))

	recorder := intCounterPoint()
	recorder.Name = "recorder"
	recorder.InstrumentKind = model.ValueRecorderInstrumentKind

	histogram := intCounterPoint()
	histogram.Name = "histogram"
	histogram.Aggregation = model.HistogramAggregationKind

	minMax := intCounterPoint()
	minMax.Name = "minmax"
	minMax.Aggregation = model.MinMaxSumCountAggregationKind

	req := enc.Encode([]model.MetricPoint{recorder, histogram, minMax, intCounterPoint()})

	// The encodable point survives, the rest are dropped with one
	// warning each.
	require.Len(t, req.ResourceMetrics, 1)
	metrics := req.ResourceMetrics[0].InstrumentationLibraryMetrics[0].Metrics
	require.Len(t, metrics, 1)
	assert.Equal(t, "counter", metrics[0].Name)
	assert.Equal(t, 3, logs.Len())
}

func TestEncodeAllDroppedIsEmptyRequest(t *testing.T) {
	point := intCounterPoint()
	point.Aggregation = model.HistogramAggregationKind

	req := NewMetricsEncoder(nil).Encode([]model.MetricPoint{point})
	assert.Empty(t, req.ResourceMetrics)
}
