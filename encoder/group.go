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

package encoder

import "github.com/otelwire/otelwire/model"

// scope keys must keep "no scope" distinct from the empty scope.
const absentScopeKey = "\x00"

func scopeKey(scope *model.InstrumentationScope) string {
	if scope == nil {
		return absentScopeKey
	}
	return scope.Name + "\x1f" + scope.Version
}

// Groups organizes already-encoded wire records into the
// Resource -> Scope -> records nesting every OTLP export request uses.
// Records are added in a single pass; both resources and scopes keep
// their first-seen order, which makes one export call deterministic.
type Groups struct {
	resources []*ResourceGroup
	index     map[string]*ResourceGroup
}

// ResourceGroup holds every record of one structurally distinct
// resource, partitioned by scope.
type ResourceGroup struct {
	Resource model.Resource

	scopes []*ScopeGroup
	index  map[string]*ScopeGroup
}

// ScopeGroup holds the encoded records of one scope in input order.
// Scope is nil for records that carried none.
type ScopeGroup struct {
	Scope   *model.InstrumentationScope
	Records []interface{}
}

// NewGroups returns an empty accumulator.
func NewGroups() *Groups {
	return &Groups{index: make(map[string]*ResourceGroup)}
}

// Add appends one encoded record under its resource and scope, creating
// the groups on first sight. O(1) per record.
func (g *Groups) Add(res model.Resource, scope *model.InstrumentationScope, record interface{}) {
	rg, ok := g.index[res.Equivalent()]
	if !ok {
		rg = &ResourceGroup{Resource: res, index: make(map[string]*ScopeGroup)}
		g.index[res.Equivalent()] = rg
		g.resources = append(g.resources, rg)
	}

	key := scopeKey(scope)
	sg, ok := rg.index[key]
	if !ok {
		sg = &ScopeGroup{Scope: scope}
		rg.index[key] = sg
		rg.scopes = append(rg.scopes, sg)
	}
	sg.Records = append(sg.Records, record)
}

// Resources returns the groups in first-seen order.
func (g *Groups) Resources() []*ResourceGroup {
	return g.resources
}

// Scopes returns the scope groups in first-seen order.
func (rg *ResourceGroup) Scopes() []*ScopeGroup {
	return rg.scopes
}
