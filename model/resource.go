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

// Package model defines the finalized telemetry data structures the
// encoding and delivery pipeline consumes. They are produced by an
// instrumentation SDK and are read-only once handed to this library.
package model

import (
	"fmt"
	"sort"
	"strings"
)

// Resource is the set of attributes describing the entity (process,
// service) that produced telemetry. Two resources with equal attribute
// maps are the same resource for grouping purposes, regardless of
// instance identity.
type Resource struct {
	attrs map[string]interface{}
	keys  []string
	equiv string
}

// NewResource copies attrs into an immutable Resource. Attribute values
// follow the closed set supported by the wire encoders: bool, string,
// int, int64, float64, []interface{} and map[string]interface{}.
func NewResource(attrs map[string]interface{}) Resource {
	copied := make(map[string]interface{}, len(attrs))
	keys := make([]string, 0, len(attrs))
	for k, v := range attrs {
		copied[k] = v
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for _, k := range keys {
		// 0x1e/0x1f separators keep adjacent pairs from colliding.
		fmt.Fprintf(&sb, "%s\x1f%v\x1e", k, copied[k])
	}
	return Resource{attrs: copied, keys: keys, equiv: sb.String()}
}

// Len returns the number of attributes.
func (r Resource) Len() int {
	return len(r.keys)
}

// Range calls f for every attribute in sorted key order.
func (r Resource) Range(f func(key string, value interface{})) {
	for _, k := range r.keys {
		f(k, r.attrs[k])
	}
}

// Equivalent returns an opaque string that is equal for structurally
// equal resources. It is the grouping key used by the encoders.
func (r Resource) Equivalent() string {
	return r.equiv
}

// Equal reports structural equality.
func (r Resource) Equal(o Resource) bool {
	return r.equiv == o.equiv
}

// InstrumentationScope identifies the instrumentation library that
// produced a span or metric record. A nil *InstrumentationScope means
// the record carries no scope and is encoded as an empty one.
type InstrumentationScope struct {
	Name    string
	Version string
}
