package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/shestoi/catalog-browser/services/feed/internal/config"
)

func testConfig() config.Config {
	return config.Config{
		AppEnv:            config.EnvLocal,
		HTTPAddr:          "127.0.0.1:0",
		Storage:           config.StorageMemory,
		SeedSize:          25,
		ShutdownTimeout:   time.Second,
		LogLevel:          "error",
		OTelSamplingRatio: 1,
	}
}

func TestBuild_MemoryStorageIsSeeded(t *testing.T) {
	a, err := Build(testConfig())
	require.NoError(t, err)
	t.Cleanup(a.shutdownMgr.Shutdown)

	srv := httptest.NewServer(a.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/products?maxItems=21&startFrom=20")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Products []struct {
			ID int64 `json:"id"`
		} `json:"products"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Products, 5)
	require.Equal(t, int64(21), body.Products[0].ID)

	health, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	health.Body.Close()
	require.Equal(t, http.StatusOK, health.StatusCode)
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	a, err := Build(testConfig())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
