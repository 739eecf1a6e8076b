package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Client) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := NewClient(srv.URL, "lp_testkey")
	return srv, client
}

func jsonResponse(data any) []byte {
	b, _ := json.Marshal(data)
	return b
}

func TestBearerHeaderSent(t *testing.T) {
	_, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer lp_testkey", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.Write(jsonResponse(map[string]any{"id": 1, "name": "p"}))
	})

	_, err := client.GetProtocol(context.Background(), 1)
	require.NoError(t, err)
}

func TestNoAuthorizationWithoutKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		w.Write(jsonResponse([]any{}))
	}))
	t.Cleanup(srv.Close)

	client := NewClient(srv.URL+"/", "")
	_, err := client.QueryProtocols(context.Background(), nil)
	require.NoError(t, err)
}

func TestHTTPErrorNestedEnvelope(t *testing.T) {
	_, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(404)
		w.Write(jsonResponse(map[string]any{
			"error": map[string]any{
				"code":    "NOT_FOUND",
				"message": "protocol not found",
			},
		}))
	})

	_, err := client.GetProtocol(context.Background(), 99)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NOT_FOUND: protocol not found")
	assert.True(t, IsNotFound(err))
}

func TestHTTPErrorFlaskMessage(t *testing.T) {
	_, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write(jsonResponse(map[string]any{"message": "token expired"}))
	})

	_, err := client.GetProtocol(context.Background(), 1)
	require.Error(t, err)
	assert.Equal(t, "HTTP 401: token expired", err.Error())
	assert.True(t, IsUnauthorized(err))
	assert.False(t, IsNotFound(err))
}

func TestHTTPErrorPlainBody(t *testing.T) {
	_, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream down\n"))
	})

	_, err := client.GetProtocol(context.Background(), 1)
	require.Error(t, err)
	assert.Equal(t, "HTTP 502: upstream down", err.Error())
}

func TestDecodeErrorOnGarbage(t *testing.T) {
	_, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>"))
	})

	_, err := client.GetProtocol(context.Background(), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode response")
}

func TestContextCancelled(t *testing.T) {
	_, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write(jsonResponse(map[string]any{"id": 1}))
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.GetProtocol(ctx, 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBuildQuery(t *testing.T) {
	result := buildQuery("/protocol", QueryParams{"plate": "P1", "creator": "ada"})
	assert.Contains(t, result, "/protocol?")
	assert.Contains(t, result, "plate=P1")
	assert.Contains(t, result, "creator=ada")
}

func TestBuildQueryEmpty(t *testing.T) {
	assert.Equal(t, "/protocol", buildQuery("/protocol", nil))
	assert.Equal(t, "/protocol", buildQuery("/protocol", QueryParams{"plate": ""}))
}

func TestNewClientCustomTimeout(t *testing.T) {
	client := NewClient("http://example.com/", "lp_testkey", 5*time.Second)
	assert.Equal(t, 5*time.Second, client.httpClient.Timeout)
	assert.Equal(t, "http://example.com", client.BaseURL())
	assert.Equal(t, 2*time.Second, client.WithTimeout(2*time.Second).httpClient.Timeout)
}

func TestClientConcurrentRequests(t *testing.T) {
	var count atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		count.Add(1)
		w.Write(jsonResponse(map[string]any{"id": 7, "name": "protocol"}))
	}))
	t.Cleanup(srv.Close)

	client := NewClient(srv.URL, "lp_testkey")

	const workers = 20
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			_, err := client.GetProtocol(context.Background(), int64(idx))
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, int32(workers), count.Load())
}

func TestStatusErrorWithoutMessage(t *testing.T) {
	err := &StatusError{Code: 500}
	assert.Equal(t, "HTTP 500", err.Error())
	assert.True(t, IsNotFound(fmt.Errorf("wrapped: %w", &StatusError{Code: 404})))
}

func TestErrorMessageShapes(t *testing.T) {
	cases := map[string]string{
		`{"error":"name required"}`:            "name required",
		`{"error":{"code":"CONFLICT"}}`:        "CONFLICT",
		`{"error":{"message":"stale"}}`:        "stale",
		`{"detail":"bad plate id"}`:            "bad plate id",
		`{"error":"","message":"  trimmed  "}`: "trimmed",
		"  not json  ":                         "not json",
		`{"other":1}`:                          `{"other":1}`,
	}
	for body, want := range cases {
		assert.Equal(t, want, errorMessage([]byte(body)), body)
	}
}

func TestCallWithoutBodyOmitsContentType(t *testing.T) {
	_, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			assert.Empty(t, r.Header.Get("Content-Type"))
		} else {
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		}
		w.Write(jsonResponse(map[string]any{"id": 2}))
	})

	_, err := client.GetProtocol(context.Background(), 2)
	require.NoError(t, err)
	_, err = client.UpdateProtocol(context.Background(), 2, Protocol{Name: "x"})
	require.NoError(t, err)
}
