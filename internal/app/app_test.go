package app

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patric-chuzhbe/usrlinks/internal/config"
	"github.com/patric-chuzhbe/usrlinks/internal/models"
)

func TestNewUsersSeedsMemoryStorage(t *testing.T) {
	t.Setenv("SEED_SAMPLE_USERS", "true")
	t.Setenv("DATABASE_DSN", "")

	app, err := NewUsers(config.WithDisableFlagsParsing(true))
	require.NoError(t, err)
	defer app.Close()

	rec := httptest.NewRecorder()
	app.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var list models.UsersResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Equal(t, 3, list.Count)

	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"email":"bob@example.com","password":"qwerty789"}`))
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	app.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestNewShortener(t *testing.T) {
	t.Setenv("BASE_URL", "http://sho.rt")

	app, err := NewShortener(config.WithDisableFlagsParsing(true), config.WithDefaultRunAddr(":5001"))
	require.NoError(t, err)
	defer app.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/shorten", strings.NewReader(`{"url":"https://example.com"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	app.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.ShortenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "http://sho.rt/"+resp.ShortCode, resp.ShortURL)
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	t.Setenv("TRUSTED_SUBNET", "not-a-subnet")

	_, err := NewShortener(config.WithDisableFlagsParsing(true))
	assert.Error(t, err)
}

func freeAddr(t *testing.T) string {
	t.Helper()
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := lis.Addr().String()
	require.NoError(t, lis.Close())
	return addr
}

func TestRunStopsOnContextCancel(t *testing.T) {
	t.Setenv("SERVER_ADDRESS", freeAddr(t))
	t.Setenv("GRPC_HEALTH_ADDRESS", freeAddr(t))

	app, err := NewShortener(config.WithDisableFlagsParsing(true))
	require.NoError(t, err)
	defer app.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- app.run(ctx)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("run did not return after cancel")
	}
}

func TestRunFailsOnBusyAddress(t *testing.T) {
	busy := httptest.NewServer(http.NotFoundHandler())
	defer busy.Close()
	t.Setenv("SERVER_ADDRESS", strings.TrimPrefix(busy.URL, "http://"))

	app, err := NewShortener(config.WithDisableFlagsParsing(true))
	require.NoError(t, err)
	defer app.Close()

	assert.Error(t, app.run(context.Background()))
}
