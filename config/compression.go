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

package config

// Compression selects the payload compression applied by a sender.
type Compression string

const (
	// CompressionNone sends payloads uncompressed. The empty string is
	// treated the same way.
	CompressionNone Compression = "none"
	// CompressionGzip is supported by both transports.
	CompressionGzip Compression = "gzip"
	// CompressionDeflate (zlib) is supported by the HTTP transport
	// only; the gRPC sender warns and falls back to none.
	CompressionDeflate Compression = "deflate"
)

// IsCompressed reports whether c names an actual compression mode.
func (c Compression) IsCompressed() bool {
	return c != CompressionNone && c != ""
}

// IsValid reports whether c is a member of the closed compression set.
func (c Compression) IsValid() bool {
	switch c {
	case "", CompressionNone, CompressionGzip, CompressionDeflate:
		return true
	}
	return false
}
