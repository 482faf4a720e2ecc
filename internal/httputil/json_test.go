// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoBody struct {
	Prompt string `json:"prompt"`
}

func TestPostJSON_Success(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "k-123", r.Header.Get("x-api-key"))

		var in echoBody
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		json.NewEncoder(w).Encode(echoBody{Prompt: "got " + in.Prompt})
	}))
	defer ts.Close()

	var out echoBody
	err := PostJSON(context.Background(), ts.Client(), ts.URL, map[string]string{"x-api-key": "k-123"}, echoBody{Prompt: "notes"}, &out)
	require.NoError(t, err)
	assert.Equal(t, "got notes", out.Prompt)
}

func TestPostJSON_StatusError(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":"quota exceeded"}`))
	}))
	defer ts.Close()

	var out echoBody
	err := PostJSON(context.Background(), ts.Client(), ts.URL, nil, echoBody{}, &out)

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusTooManyRequests, se.StatusCode)
	assert.JSONEq(t, `{"error":"quota exceeded"}`, string(se.Body))
	assert.Contains(t, err.Error(), "HTTP 429")
	// Sent exactly once: no retry on 429.
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestPostJSON_MalformedResponse(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer ts.Close()

	var out echoBody
	err := PostJSON(context.Background(), ts.Client(), ts.URL, nil, echoBody{}, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decoding response")
}

func TestPostJSON_ContextCancelled(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.Copy(io.Discard, r.Body)
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	var out echoBody
	start := time.Now()
	err := PostJSON(ctx, ts.Client(), ts.URL, nil, echoBody{}, &out)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second, "request should stop at the context deadline")
}
