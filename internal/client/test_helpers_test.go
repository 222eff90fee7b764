package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/shadow-nav/pkg/debank"
)

const testAPIKey = "test-key"

// NewTestClient creates a client for baseURL with fast retries.
func NewTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()

	client, err := New(&debank.Config{
		BaseURL:     baseURL,
		APIKey:      testAPIKey,
		MaxAttempts: 2,
		BackoffBase: time.Millisecond,
	})
	require.NoError(t, err)

	return client
}

// recordedCall is one request seen by a recordingServer.
type recordedCall struct {
	Path  string
	Query url.Values
}

// recordingServer answers each path with a canned body and records every call.
type recordingServer struct {
	*httptest.Server

	mu        sync.Mutex
	calls     []recordedCall
	responses map[string]interface{}
}

func newRecordingServer(t *testing.T, responses map[string]interface{}) *recordingServer {
	t.Helper()

	recorder := &recordingServer{responses: responses}
	recorder.Server = httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "GET", request.Method)
		assert.Equal(t, testAPIKey, request.Header.Get("AccessKey"))

		recorder.mu.Lock()
		recorder.calls = append(recorder.calls, recordedCall{Path: request.URL.Path, Query: request.URL.Query()})
		recorder.mu.Unlock()

		response, ok := recorder.responses[request.URL.Path]
		if !ok {
			writer.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(writer).Encode(map[string]string{"message": "unknown route"})

			return
		}

		writer.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(writer).Encode(response)
	}))
	t.Cleanup(recorder.Close)

	return recorder
}

func (s *recordingServer) Calls() []recordedCall {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]recordedCall(nil), s.calls...)
}

func (s *recordingServer) Paths() []string {
	calls := s.Calls()

	paths := make([]string, 0, len(calls))
	for _, call := range calls {
		paths = append(paths, call.Path)
	}

	return paths
}

// TestEndpointOperation represents one endpoint catalog test case.
type TestEndpointOperation struct {
	Name          string
	Call          func(context.Context, *Client) (debank.Payload, error)
	ExpectedPath  string
	ExpectedQuery url.Values
}

// RunEndpointTests checks that each operation hits its path with exactly the
// expected query and returns the unwrapped payload.
func RunEndpointTests(t *testing.T, tests []TestEndpointOperation) {
	t.Helper()

	for _, testCase := range tests {
		t.Run(testCase.Name, func(t *testing.T) {
			t.Parallel()

			server := newRecordingServer(t, map[string]interface{}{
				testCase.ExpectedPath: map[string]interface{}{"data": map[string]string{"path": testCase.ExpectedPath}},
			})
			client := NewTestClient(t, server.URL)

			payload, err := testCase.Call(context.Background(), client)
			require.NoError(t, err)

			calls := server.Calls()
			require.Len(t, calls, 1)
			assert.Equal(t, testCase.ExpectedPath, calls[0].Path)
			assert.Equal(t, testCase.ExpectedQuery, calls[0].Query)

			obj, err := payload.Object()
			require.NoError(t, err)
			assert.Equal(t, testCase.ExpectedPath, obj["path"])
		})
	}
}
