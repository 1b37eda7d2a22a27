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

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"io/ioutil"
	"path/filepath"
)

// LoadTLSConfig builds the HTTP client TLS configuration. With no
// certificate file the returned config is nil and the system roots
// apply. An unreadable or unparsable file is a hard error.
func (c Config) LoadTLSConfig() (*tls.Config, error) {
	if c.Insecure || c.CertFile == "" {
		return nil, nil
	}
	caPEM, err := ioutil.ReadFile(filepath.Clean(c.CertFile))
	if err != nil {
		return nil, fmt.Errorf("failed to load certificate %s: %w", c.CertFile, err)
	}
	certPool := x509.NewCertPool()
	if !certPool.AppendCertsFromPEM(caPEM) {
		return nil, fmt.Errorf("failed to parse certificate %s", c.CertFile)
	}
	return &tls.Config{RootCAs: certPool}, nil
}
