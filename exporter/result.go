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

package exporter

// Result is the outcome of exporting one batch. Failed batches are
// dropped; the exporter never buffers for a later attempt.
type Result int

const (
	// Success means the collector accepted the batch, possibly after
	// retries on the gRPC path.
	Success Result = iota
	// Failure means the batch was dropped. Details are on the logger
	// the exporter was built with.
	Failure
)

func (r Result) String() string {
	if r == Success {
		return "success"
	}
	return "failure"
}

func resultOf(ok bool) Result {
	if ok {
		return Success
	}
	return Failure
}
