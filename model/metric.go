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

import "strconv"

// InstrumentKind is the closed set of instruments whose checkpoints can
// reach the export pipeline.
type InstrumentKind int

const (
	CounterInstrumentKind InstrumentKind = iota
	UpDownCounterInstrumentKind
	SumObserverInstrumentKind
	UpDownSumObserverInstrumentKind
	ValueObserverInstrumentKind
	// ValueRecorderInstrumentKind has no OTLP data-point shape yet;
	// encoders drop such points with a warning.
	ValueRecorderInstrumentKind
)

func (k InstrumentKind) String() string {
	switch k {
	case CounterInstrumentKind:
		return "Counter"
	case UpDownCounterInstrumentKind:
		return "UpDownCounter"
	case SumObserverInstrumentKind:
		return "SumObserver"
	case UpDownSumObserverInstrumentKind:
		return "UpDownSumObserver"
	case ValueObserverInstrumentKind:
		return "ValueObserver"
	case ValueRecorderInstrumentKind:
		return "ValueRecorder"
	}
	return "Unknown"
}

// AggregationKind names the aggregator that produced a checkpoint.
type AggregationKind int

const (
	SumAggregationKind AggregationKind = iota
	LastValueAggregationKind
	HistogramAggregationKind
	MinMaxSumCountAggregationKind
)

func (k AggregationKind) String() string {
	switch k {
	case SumAggregationKind:
		return "Sum"
	case LastValueAggregationKind:
		return "LastValue"
	case HistogramAggregationKind:
		return "Histogram"
	case MinMaxSumCountAggregationKind:
		return "MinMaxSumCount"
	}
	return "Unknown"
}

// NumberKind discriminates the numeric type of a checkpoint value.
type NumberKind int

const (
	Int64NumberKind NumberKind = iota
	Float64NumberKind
)

// Number is a checkpoint value of either numeric kind.
type Number struct {
	kind NumberKind
	i    int64
	f    float64
}

// NewInt64Number returns an integer Number.
func NewInt64Number(v int64) Number {
	return Number{kind: Int64NumberKind, i: v}
}

// NewFloat64Number returns a floating point Number.
func NewFloat64Number(v float64) Number {
	return Number{kind: Float64NumberKind, f: v}
}

// Kind returns the numeric kind of the value.
func (n Number) Kind() NumberKind {
	return n.kind
}

// Int64 returns the integer value. Valid only for Int64NumberKind.
func (n Number) Int64() int64 {
	return n.i
}

// Float64 returns the floating point value. Valid only for
// Float64NumberKind.
func (n Number) Float64() float64 {
	return n.f
}

func (n Number) String() string {
	if n.kind == Float64NumberKind {
		return strconv.FormatFloat(n.f, 'g', -1, 64)
	}
	return strconv.FormatInt(n.i, 10)
}

// Label is one ordered key/value pair of a metric label set. Values are
// already coerced to strings by the SDK.
type Label struct {
	Key   string
	Value string
}

// MetricPoint is one aggregator checkpoint captured at export time.
type MetricPoint struct {
	Resource Resource
	Scope    *InstrumentationScope

	Name        string
	Description string
	Unit        string

	InstrumentKind InstrumentKind
	Aggregation    AggregationKind
	Labels         []Label

	// Checkpoint is the latest computed value of the aggregation. Its
	// Kind selects between the integer and floating point wire
	// families.
	Checkpoint Number

	FirstTime      uint64 // ns, first time the aggregator saw data
	CheckpointTime uint64 // ns, when the current checkpoint started
	LastUpdateTime uint64 // ns, last recorded update
}
