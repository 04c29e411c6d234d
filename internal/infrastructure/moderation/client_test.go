package moderation

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"murmurnet/pkg/retry"
)

func testClient(t *testing.T, url string) *Client {
	t.Helper()
	c := NewClient(url, "test-key", time.Second, zap.NewNop().Sugar())
	require.NotNil(t, c)
	// keep retries fast in tests
	c.retryCfg = retry.Config{MaxAttempts: 3, InitialDelay: time.Millisecond, Multiplier: 1.0}
	return c
}

func TestClassifySendsInputAndAPIKey(t *testing.T) {
	var gotKey, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-api-key")
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.Write([]byte(`{"toxic":0.1,"indecent":0.0,"threat":0.0,"offensive":0.2,"erotic":0.0,"spam":0.05}`))
	}))
	defer srv.Close()

	client := testClient(t, srv.URL)
	report, err := client.Classify(context.Background(), "hello world")

	require.NoError(t, err)
	assert.Equal(t, "test-key", gotKey)
	assert.JSONEq(t, `{"input":"hello world"}`, gotBody)
	assert.InDelta(t, 0.1, report.Toxic, 1e-9)
	assert.InDelta(t, 0.05, report.Spam, 1e-9)
	assert.True(t, report.Acceptable())
}

func TestClassifyReportsHighScores(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"toxic":0.1,"indecent":0.0,"threat":0.0,"offensive":0.2,"erotic":0.0,"spam":0.95}`))
	}))
	defer srv.Close()

	client := testClient(t, srv.URL)
	report, err := client.Classify(context.Background(), "BUY NOW!!!")

	require.NoError(t, err)
	assert.False(t, report.Acceptable())
}

func TestClassifyRetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"toxic":0,"indecent":0,"threat":0,"offensive":0,"erotic":0,"spam":0}`))
	}))
	defer srv.Close()

	client := testClient(t, srv.URL)
	report, err := client.Classify(context.Background(), "hello")

	require.NoError(t, err)
	assert.NotNil(t, report)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClassifyFailsAfterExhaustingRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := testClient(t, srv.URL)
	_, err := client.Classify(context.Background(), "hello")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "moderation classify")
}

func TestClassifyRejectsMalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	client := testClient(t, srv.URL)
	_, err := client.Classify(context.Background(), "hello")

	require.Error(t, err)
}

func TestNewClientDisabledWithoutAPIKey(t *testing.T) {
	client := NewClient("https://moderation.example", "", time.Second, zap.NewNop().Sugar())
	assert.Nil(t, client)
}
