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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/otelwire/otelwire/model"
)

func TestNsToUsRound(t *testing.T) {
	tests := []struct {
		ns, us uint64
	}{
		{0, 0},
		{499, 0},
		{500, 1},
		{1499, 1},
		{1500, 2},
		{1_000_000_000, 1_000_000},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.us, nsToUsRound(tt.ns))
	}
}

func TestTruncate(t *testing.T) {
	b := newBase(nil, []Option{WithMaxTagValueLength(4)})
	assert.Equal(t, "abcd", b.truncate("abcdef"))
	assert.Equal(t, "ab", b.truncate("ab"))

	disabled := newBase(nil, []Option{WithMaxTagValueLength(0)})
	long := strings.Repeat("x", 4096)
	assert.Equal(t, long, disabled.truncate(long))

	def := newBase(nil, nil)
	assert.Len(t, def.truncate(long), DefaultMaxTagValueLength)
}

func TestExtractTags(t *testing.T) {
	b := newBase(nil, nil)
	span := model.SpanRecord{
		Resource:   model.NewResource(map[string]interface{}{"service.name": "api"}),
		Scope:      &model.InstrumentationScope{Name: "lib", Version: "1.0"},
		Attributes: map[string]interface{}{"http.method": "GET", "retries": int64(3), "ok": true},
		Status:     &model.Status{Code: model.StatusCodeError, Message: "boom"},
	}

	tags := b.extractTags(&span)
	assert.Equal(t, map[string]string{
		"http.method":                          "GET",
		"retries":                              "3",
		"ok":                                   "true",
		"service.name":                         "api",
		"otel.instrumentation_library.name":    "lib",
		"otel.instrumentation_library.version": "1.0",
		"otel.status_code":                     "ERROR",
		"otel.status_description":              "boom",
	}, tags)
}

func TestExtractTagsEmpty(t *testing.T) {
	b := newBase(nil, nil)
	span := model.SpanRecord{Resource: model.NewResource(nil)}
	assert.Nil(t, b.extractTags(&span))
}

func TestExtractTagsStatusOkWithoutMessage(t *testing.T) {
	b := newBase(nil, nil)
	span := model.SpanRecord{
		Resource: model.NewResource(nil),
		Status:   &model.Status{Code: model.StatusCodeOk},
	}
	tags := b.extractTags(&span)
	assert.Equal(t, "OK", tags["otel.status_code"])
	_, ok := tags["otel.status_description"]
	assert.False(t, ok)
}

func TestAddTagUnsupportedType(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	b := newBase(zap.New(core), nil)

	tags := make(map[string]string)
	b.addTag(tags, "bad", []interface{}{"zipkin", "has", "no", "arrays"})
	assert.Empty(t, tags)
	assert.Equal(t, 1, logs.FilterMessage("Could not serialize tag").Len())
}

func TestAnnotations(t *testing.T) {
	b := newBase(nil, []Option{WithMaxTagValueLength(5)})
	events := []model.Event{
		{
			Name:      "exception",
			Timestamp: 1499,
			Attributes: map[string]interface{}{
				"exception.message": "truncate me",
				"count":             int64(2),
			},
		},
	}

	got := b.annotations(events)
	require.Len(t, got, 1)
	assert.Equal(t, uint64(1), got[0].Timestamp)
	// String attributes truncate, non-strings pass through.
	assert.JSONEq(t, `{"exception": {"exception.message": "trunc", "count": 2}}`, got[0].Value)
}

func TestAnnotationsEmpty(t *testing.T) {
	b := newBase(nil, nil)
	assert.Nil(t, b.annotations(nil))
}

func TestSortedTagKeys(t *testing.T) {
	keys := sortedTagKeys(map[string]string{"c": "", "a": "", "b": ""})
	assert.Equal(t, []string{"a", "b", "c"}, keys)
}
