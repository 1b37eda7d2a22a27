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

package sender

import (
	"bytes"
	"compress/gzip"
	"compress/zlib"
	"context"
	"io"
	"io/ioutil"
	"net/http"

	"go.uber.org/zap"

	"github.com/otelwire/otelwire/config"
)

// HTTP posts serialized payloads to a collector endpoint. Unlike the
// gRPC sender it makes a single attempt per batch; a non-2xx response
// is logged and the batch dropped.
type HTTP struct {
	client      *http.Client
	endpoint    string
	headers     map[string]string
	compression config.Compression
	logger      *zap.Logger
}

// NewHTTP builds a sender for cfg.Endpoint. The certificate file, when
// set on a secure endpoint, replaces the system root CA pool.
func NewHTTP(cfg config.Config, logger *zap.Logger) (*HTTP, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	tlsConfig, err := cfg.LoadTLSConfig()
	if err != nil {
		return nil, err
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = tlsConfig

	compression := cfg.Compression
	switch compression {
	case config.CompressionNone, config.Compression(""), config.CompressionGzip, config.CompressionDeflate:
	default:
		logger.Warn("Unsupported compression type, no compression will be used",
			zap.String("compression", string(compression)))
		compression = config.CompressionNone
	}

	return &HTTP{
		client: &http.Client{
			Transport: transport,
			Timeout:   cfg.TimeoutOrDefault(),
		},
		endpoint:    cfg.Endpoint,
		headers:     cfg.Headers,
		compression: compression,
		logger:      logger,
	}, nil
}

// Send posts one payload and reports whether the collector accepted it
// with a 200 or 202 response.
func (s *HTTP) Send(ctx context.Context, payload []byte, contentType string) bool {
	body, encoding, err := s.compress(payload)
	if err != nil {
		s.logger.Error("Failed to compress request body, dropping data", zap.Error(err))
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, body)
	if err != nil {
		s.logger.Error("Failed to build export request, dropping data", zap.Error(err))
		return false
	}
	req.Header.Set("Content-Type", contentType)
	if encoding != "" {
		req.Header.Set("Content-Encoding", encoding)
	}
	for k, v := range s.headers {
		req.Header.Set(k, v)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Error("Failed to export, dropping data", zap.Error(err))
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusAccepted {
		return true
	}

	respBody, _ := ioutil.ReadAll(io.LimitReader(resp.Body, 1024))
	s.logger.Error("Failed to export, collector rejected the request, dropping data",
		zap.Int("status_code", resp.StatusCode),
		zap.ByteString("response", respBody))
	return false
}

func (s *HTTP) compress(payload []byte) (io.Reader, string, error) {
	switch s.compression {
	case config.CompressionGzip:
		var buf bytes.Buffer
		w := gzip.NewWriter(&buf)
		if _, err := w.Write(payload); err != nil {
			return nil, "", err
		}
		if err := w.Close(); err != nil {
			return nil, "", err
		}
		return &buf, "gzip", nil
	case config.CompressionDeflate:
		var buf bytes.Buffer
		w := zlib.NewWriter(&buf)
		if _, err := w.Write(payload); err != nil {
			return nil, "", err
		}
		if err := w.Close(); err != nil {
			return nil, "", err
		}
		return &buf, "deflate", nil
	}
	return bytes.NewReader(payload), "", nil
}
