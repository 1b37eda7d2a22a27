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

// Package encoder provides the wire model adapter shared by all
// encoders: attribute, resource and scope encoding into OTLP common
// messages, plus the resource/scope grouping accumulator.
package encoder

import (
	"fmt"
	"sort"

	commonpb "go.opentelemetry.io/proto/otlp/common/v1"
	resourcepb "go.opentelemetry.io/proto/otlp/resource/v1"
	"go.uber.org/zap"

	"github.com/otelwire/otelwire/model"
)

// Resource encodes res into its wire representation. An attribute of an
// unsupported type is logged and skipped; the remaining attributes are
// still encoded.
func Resource(res model.Resource, logger *zap.Logger) *resourcepb.Resource {
	out := &resourcepb.Resource{}
	res.Range(func(key string, value interface{}) {
		kv, err := KeyValue(key, value)
		if err != nil {
			logger.Warn("Dropping resource attribute", zap.Error(err))
			return
		}
		out.Attributes = append(out.Attributes, kv)
	})
	return out
}

// Scope encodes an instrumentation scope. A nil scope encodes as an
// empty wire record.
func Scope(scope *model.InstrumentationScope) *commonpb.InstrumentationLibrary {
	if scope == nil {
		return &commonpb.InstrumentationLibrary{}
	}
	return &commonpb.InstrumentationLibrary{
		Name:    scope.Name,
		Version: scope.Version,
	}
}

// Attributes encodes an attribute map in sorted key order. An empty or
// nil map yields nil so optional repeated wire fields stay absent.
// Unsupported values are logged and skipped one by one.
func Attributes(attrs map[string]interface{}, logger *zap.Logger) []*commonpb.KeyValue {
	if len(attrs) == 0 {
		return nil
	}
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var out []*commonpb.KeyValue
	for _, k := range keys {
		kv, err := KeyValue(k, attrs[k])
		if err != nil {
			logger.Warn("Dropping attribute", zap.Error(err))
			continue
		}
		out = append(out, kv)
	}
	return out
}

// KeyValue encodes one typed attribute. The value dispatch is a closed
// variant over bool, string, int, int64, float64, []interface{} and
// map[string]interface{}; anything else is an encoding error naming the
// offending key and type.
func KeyValue(key string, value interface{}) (*commonpb.KeyValue, error) {
	av, err := anyValue(key, value)
	if err != nil {
		return nil, err
	}
	return &commonpb.KeyValue{Key: key, Value: av}, nil
}

func anyValue(key string, value interface{}) (*commonpb.AnyValue, error) {
	switch v := value.(type) {
	case bool:
		return &commonpb.AnyValue{Value: &commonpb.AnyValue_BoolValue{BoolValue: v}}, nil
	case string:
		return &commonpb.AnyValue{Value: &commonpb.AnyValue_StringValue{StringValue: v}}, nil
	case int:
		return &commonpb.AnyValue{Value: &commonpb.AnyValue_IntValue{IntValue: int64(v)}}, nil
	case int64:
		return &commonpb.AnyValue{Value: &commonpb.AnyValue_IntValue{IntValue: v}}, nil
	case float64:
		return &commonpb.AnyValue{Value: &commonpb.AnyValue_DoubleValue{DoubleValue: v}}, nil
	case []interface{}:
		arr := &commonpb.ArrayValue{Values: make([]*commonpb.AnyValue, 0, len(v))}
		for _, elem := range v {
			enc, err := anyValue(key, elem)
			if err != nil {
				return nil, err
			}
			arr.Values = append(arr.Values, enc)
		}
		return &commonpb.AnyValue{Value: &commonpb.AnyValue_ArrayValue{ArrayValue: arr}}, nil
	case map[string]interface{}:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		kvl := &commonpb.KeyValueList{Values: make([]*commonpb.KeyValue, 0, len(v))}
		for _, k := range keys {
			enc, err := KeyValue(k, v[k])
			if err != nil {
				return nil, err
			}
			kvl.Values = append(kvl.Values, enc)
		}
		return &commonpb.AnyValue{Value: &commonpb.AnyValue_KvlistValue{KvlistValue: kvl}}, nil
	default:
		return nil, fmt.Errorf("invalid type %T of value for attribute %q", value, key)
	}
}
