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

import (
	"context"
	"encoding/json"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/otelwire/otelwire/config"
	"github.com/otelwire/otelwire/model"
)

func TestZipkinJSONExport(t *testing.T) {
	type post struct {
		contentType string
		body        []byte
	}
	received := make(chan post, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := ioutil.ReadAll(r.Body)
		require.NoError(t, err)
		received <- post{contentType: r.Header.Get("Content-Type"), body: body}
		w.WriteHeader(http.StatusAccepted)
	}))
	t.Cleanup(server.Close)

	local := model.NodeEndpoint{ServiceName: "api"}
	e, err := NewZipkin(config.Config{Endpoint: server.URL, Insecure: true}, ZipkinV2JSON, local, nil)
	require.NoError(t, err)

	assert.Equal(t, Success, e.ExportSpans(context.Background(), testSpans()))

	got := <-received
	assert.Equal(t, "application/json", got.contentType)

	var decoded []map[string]interface{}
	require.NoError(t, json.Unmarshal(got.body, &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "op", decoded[0]["name"])
	endpoint, ok := decoded[0]["localEndpoint"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "api", endpoint["serviceName"])
}

func TestZipkinThriftExport(t *testing.T) {
	received := make(chan string, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		received <- r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusAccepted)
	}))
	t.Cleanup(server.Close)

	e, err := NewZipkin(config.Config{Endpoint: server.URL, Insecure: true}, ZipkinV1Thrift, model.NodeEndpoint{ServiceName: "api"}, nil)
	require.NoError(t, err)

	assert.Equal(t, Success, e.ExportSpans(context.Background(), testSpans()))
	assert.Equal(t, "application/x-thrift", <-received)
}

func TestZipkinEmptyBatch(t *testing.T) {
	e, err := NewZipkin(config.Config{Endpoint: "http://localhost:1", Insecure: true}, ZipkinV2JSON, model.NodeEndpoint{}, nil)
	require.NoError(t, err)
	assert.Equal(t, Success, e.ExportSpans(context.Background(), nil))
}

func TestZipkinRejectsUnknownEncoding(t *testing.T) {
	_, err := NewZipkin(config.Config{Endpoint: "http://localhost:9411", Insecure: true}, "v1/json", model.NodeEndpoint{}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unsupported zipkin encoding "v1/json"`)
}

func TestZipkinExportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "404", http.StatusNotFound)
	}))
	t.Cleanup(server.Close)

	e, err := NewZipkin(config.Config{Endpoint: server.URL, Insecure: true}, ZipkinV2JSON, model.NodeEndpoint{}, nil)
	require.NoError(t, err)
	assert.Equal(t, Failure, e.ExportSpans(context.Background(), testSpans()))
}
