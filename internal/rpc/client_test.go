package rpc_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/notekeeper/internal/rpc"
)

func TestClientDoesNotRetryRateLimit(t *testing.T) {
	var hits atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Retry-After", "1")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":"slow down","code":"rate_limited"}`))
	}))
	t.Cleanup(ts.Close)

	start := time.Now()
	_, err := rpc.NewClient(ts.URL, "token", time.Second).ListNotes(context.Background())

	var rpcErr *rpc.Error
	require.True(t, errors.As(err, &rpcErr))
	assert.Equal(t, http.StatusTooManyRequests, rpcErr.Status)
	assert.Equal(t, int32(1), hits.Load())
	assert.Less(t, time.Since(start), time.Second)
}

func TestSetTokenAppliesToNextCall(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()

	c := rpc.NewClient(ts.URL, "not-a-jwt", time.Second)
	_, err := c.ListNotes(ctx)
	assert.ErrorIs(t, err, rpc.ErrUnauthenticated)

	token, err := rpc.IssueToken(testSecret, testIssuer, "alice", "Alice", "", time.Hour)
	require.NoError(t, err)
	c.SetToken(token)

	u, err := c.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Alice", u.Name)
}
