package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(t *testing.T, rps float64, burst int) *Limiter {
	l := New(rps, burst)
	t.Cleanup(func() { l.Close() })
	return l
}

func TestLimiter_BurstThenThrottle(t *testing.T) {
	l := newTestLimiter(t, 1, 2)
	now := time.Now()
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow("10.0.0.1"))
	assert.True(t, l.Allow("10.0.0.1"))
	assert.False(t, l.Allow("10.0.0.1"))

	// other clients have their own bucket
	assert.True(t, l.Allow("10.0.0.2"))

	now = now.Add(time.Second)
	assert.True(t, l.Allow("10.0.0.1"))
}

func TestLimiter_ForgetIdle(t *testing.T) {
	l := newTestLimiter(t, 1, 1)
	now := time.Now()
	l.now = func() time.Time { return now }

	l.Allow("a")
	now = now.Add(IdleTTL / 2)
	l.Allow("b")
	now = now.Add(IdleTTL/2 + time.Second)
	l.forgetIdle()

	l.mu.Lock()
	defer l.mu.Unlock()
	assert.NotContains(t, l.visitors, "a")
	assert.Contains(t, l.visitors, "b")
}

func TestMiddleware(t *testing.T) {
	l := newTestLimiter(t, 0.001, 1)
	rejected := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})
	h := Middleware(l, rejected)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	call := func(addr string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/order", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusNoContent, call("192.0.2.1:5000"))
	// same host, different port
	assert.Equal(t, http.StatusTooManyRequests, call("192.0.2.1:5001"))
	assert.Equal(t, http.StatusNoContent, call("192.0.2.2:5000"))
}

func TestClose_Twice(t *testing.T) {
	l := New(1, 1)
	require.NoError(t, l.Close())
	require.NoError(t, l.Close())
}
