package client

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	return New(Options{
		BaseURL:    baseURL,
		AuthHeader: "Authorization",
		AuthValue:  "Bearer test-token",
		Retry: RetryPolicy{
			MaxAttempts: 3,
			MinDelay:    time.Millisecond,
			MaxDelay:    2 * time.Millisecond,
		},
	}, logger)
}

func TestClientGetDecodesResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, "100", r.URL.Query().Get("limit"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"gid":"123","name":"Onboarding"}}`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)

	var out struct {
		Data struct {
			GID  string `json:"gid"`
			Name string `json:"name"`
		} `json:"data"`
	}

	params := url.Values{}
	params.Set("limit", "100")

	err := c.Get(context.Background(), "/projects", params, &out)
	require.NoError(t, err)

	assert.Equal(t, "123", out.Data.GID)
	assert.Equal(t, "Onboarding", out.Data.Name)
}

func TestClientRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)

			return
		}

		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)

	err := c.Get(context.Background(), "/flaky", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClientGivesUpAfterMaxAttempts(t *testing.T) {
	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)

	err := c.Get(context.Background(), "/down", nil, nil)
	require.Error(t, err)
	assert.Equal(t, int32(3), calls.Load())

	var reqErr *RequestError

	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, http.StatusBadGateway, reqErr.StatusCode)
}

func TestClientRetriesRateLimits(t *testing.T) {
	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)

			return
		}

		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)

	err := c.Get(context.Background(), "/busy", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestClientDoesNotRetryAuthFailures(t *testing.T) {
	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"invalid token"}`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)

	err := c.Get(context.Background(), "/me", nil, nil)
	require.Error(t, err)
	assert.True(t, IsAuth(err))
	assert.Equal(t, int32(1), calls.Load(), "auth failures must not be retried")
}

func TestClientDoesNotRetryNotFound(t *testing.T) {
	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)

	err := c.Get(context.Background(), "/missing", nil, nil)
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.Equal(t, int32(1), calls.Load())
}

func TestClientDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"error":"name is required"}`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)

	err := c.Post(context.Background(), "/groups", map[string]string{}, nil)
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())

	var reqErr *RequestError

	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, http.StatusUnprocessableEntity, reqErr.StatusCode)
	assert.Contains(t, reqErr.Error(), "name is required")
}

func TestClientPostSendsJSONBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"grp_1"}`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)

	var out struct {
		ID string `json:"id"`
	}

	err := c.Post(context.Background(), "/groups", map[string]string{"name": "Finance"}, &out)
	require.NoError(t, err)
	assert.Equal(t, "grp_1", out.ID)
}

func TestClientSendsExtraHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2023-07-01", r.Header.Get("X-API-Version"))
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	c := New(Options{
		BaseURL:      server.URL,
		ExtraHeaders: map[string]string{"X-API-Version": "2023-07-01"},
	}, logger)

	require.NoError(t, c.Get(context.Background(), "/boards", nil, nil))
}

func TestGraphQLDecodesData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)

		_, _ = w.Write([]byte(`{"data":{"boards":[{"id":"7","name":"Tasks"}]}}`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)

	var out struct {
		Boards []struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"boards"`
	}

	err := c.GraphQL(context.Background(), `query { boards { id name } }`, nil, &out)
	require.NoError(t, err)
	require.Len(t, out.Boards, 1)
	assert.Equal(t, "Tasks", out.Boards[0].Name)
}

func TestGraphQLSurfacesEnvelopeErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":null,"errors":[{"message":"field 'bords' not found"}]}`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)

	err := c.GraphQL(context.Background(), `query { bords { id } }`, nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bords")
}
