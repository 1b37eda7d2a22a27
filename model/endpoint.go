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

import "net"

// NodeEndpoint is the exporter-local identity attached once per Zipkin
// export batch, never per record.
type NodeEndpoint struct {
	ServiceName string
	IPv4        net.IP // nil when unknown
	IPv6        net.IP // nil when unknown
	Port        uint16 // 0 when unknown
}
