package http

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecute_SuccessNoRetry(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(okHandler(&calls))
	defer srv.Close()

	req := NewRequest("GET", srv.URL)
	req.RetryCount = 2

	resp, err := Execute(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, 1, calls)
}

func TestExecute_RetriesServerErrorThenSucceeds(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(flakyHandler(&calls, 2))
	defer srv.Close()

	req := NewRequest("GET", srv.URL)
	req.RetryCount = 3
	req.RetryInterval = time.Millisecond

	resp, err := Execute(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, 3, calls)
}

func TestExecute_DoesNotRetryClientError(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(notFoundHandler(&calls))
	defer srv.Close()

	req := NewRequest("GET", srv.URL)
	req.RetryCount = 3
	req.RetryInterval = time.Millisecond

	_, err := Execute(req)
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestCalculateBackoff(t *testing.T) {
	assert.Equal(t, 1*time.Second, calculateBackoff(0, "exponential", time.Second))
	assert.Equal(t, 2*time.Second, calculateBackoff(1, "exponential", time.Second))
	assert.Equal(t, 4*time.Second, calculateBackoff(2, "exponential", time.Second))
	assert.Equal(t, 2*time.Second, calculateBackoff(1, "linear", time.Second))
}
