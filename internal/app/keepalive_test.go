package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestKeepAlive_PingsUntilCancelled(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	k := NewKeepAlive(srv.URL+"/health", 10*time.Millisecond, zap.NewNop())
	go func() {
		k.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return hits.Load() >= 2 }, 2*time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("keep-alive did not stop after cancel")
	}
}

func TestKeepAlive_Ping(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/down" {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ctx := context.Background()

	assert.NoError(t, NewKeepAlive(srv.URL+"/up", time.Minute, zap.NewNop()).ping(ctx))

	err := NewKeepAlive(srv.URL+"/down", time.Minute, zap.NewNop()).ping(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")

	assert.Error(t, NewKeepAlive("http://127.0.0.1:0", time.Minute, zap.NewNop()).ping(ctx))
}

func TestKeepAlive_TruncatedBodyIsLogged(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "100")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("short"))
	}))
	defer srv.Close()

	core, logs := observer.New(zapcore.DebugLevel)
	k := NewKeepAlive(srv.URL, time.Minute, zap.New(core))

	assert.NoError(t, k.ping(context.Background()))
	assert.Equal(t, 1, logs.FilterMessage("Failed to drain keep-alive response").Len())
}
