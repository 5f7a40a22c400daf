package httpclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/sitecraft/internal/infrastructure/resilience"
)

func testConfig(url string) Config {
	cfg := DefaultConfig("test-upstream")
	cfg.BaseURL = url
	cfg.Timeout = 5 * time.Second
	cfg.MaxRetries = 1
	cfg.MinWait = time.Millisecond
	cfg.MaxWait = 5 * time.Millisecond
	return cfg
}

func get(c *Client) error {
	_, err := c.Execute(context.Background(), func(r *resty.Request) (*resty.Response, error) {
		return r.Get("/thing")
	})
	return err
}

func TestExecuteSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "sitecraft/1.0", r.Header.Get("User-Agent"))
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := New(testConfig(srv.URL))
	c.SetBearerAuth("secret")

	resp, err := c.Execute(context.Background(), func(r *resty.Request) (*resty.Response, error) {
		return r.Get("/thing")
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, resp.String())
}

func TestClientErrorsDoNotTripBreaker(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad prompt", http.StatusBadRequest)
	}))
	defer srv.Close()

	c := New(testConfig(srv.URL))
	for i := 0; i < 10; i++ {
		err := get(c)
		var se *StatusError
		require.True(t, errors.As(err, &se))
		assert.Equal(t, http.StatusBadRequest, se.StatusCode)
		assert.Contains(t, se.Body, "bad prompt")
	}
	assert.Equal(t, resilience.StateClosed, c.BreakerState())
}

func TestServerErrorsOpenBreaker(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := New(testConfig(srv.URL))
	for i := 0; i < 5; i++ {
		assert.Error(t, get(c))
	}
	require.Equal(t, resilience.StateOpen, c.BreakerState())

	before := hits.Load()
	err := get(c)
	assert.ErrorIs(t, err, resilience.ErrCircuitOpen)
	assert.Equal(t, before, hits.Load())
}

func TestIsSuccessful(t *testing.T) {
	assert.True(t, isSuccessful(nil))
	assert.True(t, isSuccessful(context.Canceled))
	assert.True(t, isSuccessful(&StatusError{StatusCode: 404}))
	assert.False(t, isSuccessful(&StatusError{StatusCode: 429}))
	assert.False(t, isSuccessful(&StatusError{StatusCode: 503}))
	assert.False(t, isSuccessful(errors.New("dial tcp: connection refused")))
}

func TestServerErrorSurfacesAfterRetries(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.Error(w, "model overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := New(testConfig(srv.URL))
	err := get(c)

	var se *StatusError
	require.True(t, errors.As(err, &se), "got %v", err)
	assert.Equal(t, http.StatusServiceUnavailable, se.StatusCode)
	assert.Contains(t, se.Body, "model overloaded")
	assert.Equal(t, int32(2), hits.Load())
}
