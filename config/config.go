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

// Package config holds the fully resolved exporter configuration. The
// resolution cascade (environment variables, files, flags) happens in an
// external layer; this package only carries the resulting values and
// turns them into transport settings.
package config

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/multierr"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
)

// Protocol selects the delivery transport.
type Protocol string

const (
	ProtocolGRPC         Protocol = "grpc"
	ProtocolHTTPProtobuf Protocol = "http/protobuf"
)

// DefaultTimeout bounds a single delivery attempt when the caller does
// not configure one.
const DefaultTimeout = 10 * time.Second

// RetrySettings shapes the gRPC sender's exponential backoff. The delay
// starts at InitialInterval and doubles; once it reaches MaxInterval the
// sender gives up.
type RetrySettings struct {
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultRetrySettings returns the production backoff schedule. The 900
// second ceiling matches the OTLP exporter convention.
func DefaultRetrySettings() RetrySettings {
	return RetrySettings{
		InitialInterval: time.Second,
		MaxInterval:     900 * time.Second,
	}
}

// OrDefault fills zero fields from DefaultRetrySettings.
func (r RetrySettings) OrDefault() RetrySettings {
	d := DefaultRetrySettings()
	if r.InitialInterval <= 0 {
		r.InitialInterval = d.InitialInterval
	}
	if r.MaxInterval <= 0 {
		r.MaxInterval = d.MaxInterval
	}
	return r
}

// Config is the immutable configuration value consumed by senders and
// exporters. Build it once, pass it by value.
type Config struct {
	// Endpoint is the collector address: host:port for gRPC, a full URL
	// for HTTP.
	Endpoint string

	// Protocol selects the transport for the OTLP exporter.
	Protocol Protocol

	// Insecure disables transport security. When false the gRPC sender
	// requires CertFile.
	Insecure bool

	// CertFile is the path of a PEM certificate used to verify the
	// server.
	CertFile string

	// Headers are sent with every request, as gRPC metadata or HTTP
	// headers.
	Headers map[string]string

	// Timeout bounds each delivery attempt. Zero means DefaultTimeout.
	Timeout time.Duration

	// Compression is one of none, gzip or deflate.
	Compression Compression

	// Retry shapes the gRPC backoff schedule. Zero fields default.
	Retry RetrySettings
}

// Validate reports every statically detectable configuration problem.
func (c Config) Validate() error {
	var errs error
	if c.Endpoint == "" {
		errs = multierr.Append(errs, errors.New("endpoint must not be empty"))
	}
	switch c.Protocol {
	case "", ProtocolGRPC, ProtocolHTTPProtobuf:
	default:
		errs = multierr.Append(errs, fmt.Errorf("unknown protocol %q", c.Protocol))
	}
	if !c.Compression.IsValid() {
		errs = multierr.Append(errs, fmt.Errorf("unknown compression %q", c.Compression))
	}
	return errs
}

// TimeoutOrDefault returns the configured timeout or DefaultTimeout.
func (c Config) TimeoutOrDefault() time.Duration {
	if c.Timeout <= 0 {
		return DefaultTimeout
	}
	return c.Timeout
}

// ToDialOptions maps the config to gRPC dial options. Secure mode
// without a readable certificate file is a hard error so that channel
// construction fails fast instead of every later send.
func (c Config) ToDialOptions() ([]grpc.DialOption, error) {
	var opts []grpc.DialOption
	if c.Insecure {
		opts = append(opts, grpc.WithInsecure())
		return opts, nil
	}
	if c.CertFile == "" {
		return nil, errors.New("no certificate file provided in secure mode")
	}
	creds, err := credentials.NewClientTLSFromFile(c.CertFile, "")
	if err != nil {
		return nil, fmt.Errorf("unable to read credentials from file %s: %w", c.CertFile, err)
	}
	opts = append(opts, grpc.WithTransportCredentials(creds))
	return opts, nil
}
