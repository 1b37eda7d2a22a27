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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTraceIDRoundTrip(t *testing.T) {
	id := NewTraceID(0x0102030405060708, 0x090a0b0c0d0e0f10)
	high, low := id.HighLow()
	assert.Equal(t, uint64(0x0102030405060708), high)
	assert.Equal(t, uint64(0x090a0b0c0d0e0f10), low)
	assert.Equal(t, "0102030405060708090a0b0c0d0e0f10", id.String())
	assert.Equal(t, id[:], id.Bytes())
}

func TestSpanIDRoundTrip(t *testing.T) {
	id := NewSpanID(0xfedcba9876543210)
	assert.Equal(t, uint64(0xfedcba9876543210), id.Uint64())
	assert.Equal(t, "fedcba9876543210", id.String())
	assert.Equal(t, []byte{0xfe, 0xdc, 0xba, 0x98, 0x76, 0x54, 0x32, 0x10}, id.Bytes())
}

func TestResourceEquivalence(t *testing.T) {
	a := NewResource(map[string]interface{}{"service.name": "api", "region": "eu"})
	b := NewResource(map[string]interface{}{"region": "eu", "service.name": "api"})
	c := NewResource(map[string]interface{}{"service.name": "api", "region": "us"})

	assert.Equal(t, a.Equivalent(), b.Equivalent())
	assert.True(t, a.Equal(b))
	assert.NotEqual(t, a.Equivalent(), c.Equivalent())
	assert.False(t, a.Equal(c))
}

func TestResourceSeparatorCollision(t *testing.T) {
	// "ab"+"c" vs "a"+"bc" must stay distinct.
	a := NewResource(map[string]interface{}{"ab": "c"})
	b := NewResource(map[string]interface{}{"a": "bc"})
	assert.NotEqual(t, a.Equivalent(), b.Equivalent())
}

func TestResourceCopiesInput(t *testing.T) {
	attrs := map[string]interface{}{"k": "v"}
	res := NewResource(attrs)
	attrs["k"] = "mutated"

	var got interface{}
	res.Range(func(key string, value interface{}) {
		if key == "k" {
			got = value
		}
	})
	assert.Equal(t, "v", got)
}

func TestResourceRangeSorted(t *testing.T) {
	res := NewResource(map[string]interface{}{"c": 1, "a": 2, "b": 3})
	require.Equal(t, 3, res.Len())

	var keys []string
	res.Range(func(key string, _ interface{}) {
		keys = append(keys, key)
	})
	assert.Equal(t, []string{"a", "b", "c"}, keys)
}

func TestNumberKinds(t *testing.T) {
	i := NewInt64Number(42)
	assert.Equal(t, Int64NumberKind, i.Kind())
	assert.Equal(t, int64(42), i.Int64())
	assert.Equal(t, "42", i.String())

	f := NewFloat64Number(2.5)
	assert.Equal(t, Float64NumberKind, f.Kind())
	assert.Equal(t, 2.5, f.Float64())
	assert.Equal(t, "2.5", f.String())
}

func TestEnumStrings(t *testing.T) {
	assert.Equal(t, "SERVER", SpanKindServer.String())
	assert.Equal(t, "ERROR", StatusCodeError.String())
	assert.Equal(t, "OK", StatusCodeOk.String())
	assert.Equal(t, "ValueRecorder", ValueRecorderInstrumentKind.String())
	assert.Equal(t, "MinMaxSumCount", MinMaxSumCountAggregationKind.String())
}
