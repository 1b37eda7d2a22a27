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

// Package zipkin encodes span records into the Zipkin v2 JSON and
// v1 Thrift wire formats.
package zipkin

import (
	"encoding/json"
	"sort"
	"strconv"

	"go.uber.org/zap"

	"github.com/otelwire/otelwire/model"
)

// DefaultMaxTagValueLength caps tag values unless overridden. Zero or a
// negative override disables truncation.
const DefaultMaxTagValueLength = 128

// Tag keys carrying OpenTelemetry fields that Zipkin has no native
// place for.
const (
	scopeNameTagKey         = "otel.instrumentation_library.name"
	scopeVersionTagKey      = "otel.instrumentation_library.version"
	statusCodeTagKey        = "otel.status_code"
	statusDescriptionTagKey = "otel.status_description"
)

// Option configures a Zipkin encoder.
type Option func(*base)

// WithMaxTagValueLength overrides DefaultMaxTagValueLength. Zero or
// negative disables truncation entirely.
func WithMaxTagValueLength(n int) Option {
	return func(b *base) {
		b.maxTagValueLen = n
	}
}

// base carries the preprocessing shared by the JSON and Thrift
// encoders: tag extraction, annotation building and timestamp rounding.
type base struct {
	maxTagValueLen int
	logger         *zap.Logger
}

func newBase(logger *zap.Logger, opts []Option) base {
	if logger == nil {
		logger = zap.NewNop()
	}
	b := base{maxTagValueLen: DefaultMaxTagValueLength, logger: logger}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

func (b *base) truncate(value string) string {
	if b.maxTagValueLen > 0 && len(value) > b.maxTagValueLen {
		return value[:b.maxTagValueLen]
	}
	return value
}

// extractTags flattens span attributes, resource attributes, scope
// identity and status into one string tag map. Returns nil when there
// is nothing to report so the wire field stays absent.
func (b *base) extractTags(span *model.SpanRecord) map[string]string {
	tags := make(map[string]string)
	b.addTags(tags, span.Attributes)
	span.Resource.Range(func(key string, value interface{}) {
		b.addTag(tags, key, value)
	})
	if span.Scope != nil {
		tags[scopeNameTagKey] = span.Scope.Name
		tags[scopeVersionTagKey] = span.Scope.Version
	}
	if span.Status != nil {
		tags[statusCodeTagKey] = span.Status.Code.String()
		if span.Status.Message != "" {
			tags[statusDescriptionTagKey] = span.Status.Message
		}
	}
	if len(tags) == 0 {
		return nil
	}
	return tags
}

func (b *base) addTags(tags map[string]string, attrs map[string]interface{}) {
	for key, value := range attrs {
		b.addTag(tags, key, value)
	}
}

func (b *base) addTag(tags map[string]string, key string, value interface{}) {
	var str string
	switch v := value.(type) {
	case string:
		str = v
	case bool:
		str = strconv.FormatBool(v)
	case int:
		str = strconv.Itoa(v)
	case int64:
		str = strconv.FormatInt(v, 10)
	case float64:
		str = strconv.FormatFloat(v, 'g', -1, 64)
	default:
		b.logger.Warn("Could not serialize tag", zap.String("key", key))
		return
	}
	tags[key] = b.truncate(str)
}

// annotation is an event flattened to the µs timestamp and the JSON
// payload both wire formats carry.
type annotation struct {
	Timestamp uint64 // µs since epoch
	Value     string
}

// annotations converts span events. Each value is the JSON object
// {"event name": {attributes}} with string attribute values truncated
// the same way as tags. Returns nil when there are no events.
func (b *base) annotations(events []model.Event) []annotation {
	if len(events) == 0 {
		return nil
	}
	out := make([]annotation, 0, len(events))
	for _, event := range events {
		attrs := make(map[string]interface{}, len(event.Attributes))
		for key, value := range event.Attributes {
			if s, ok := value.(string); ok {
				value = b.truncate(s)
			}
			attrs[key] = value
		}
		payload, err := json.Marshal(map[string]interface{}{event.Name: attrs})
		if err != nil {
			b.logger.Warn("Could not serialize event annotation",
				zap.String("event", event.Name), zap.Error(err))
			continue
		}
		out = append(out, annotation{
			Timestamp: nsToUsRound(event.Timestamp),
			Value:     string(payload),
		})
	}
	return out
}

func sortedTagKeys(tags map[string]string) []string {
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// nsToUsRound converts nanoseconds to microseconds rounding half up,
// the rounding Zipkin timestamps use.
func nsToUsRound(ns uint64) uint64 {
	return (ns + 500) / 1000
}
