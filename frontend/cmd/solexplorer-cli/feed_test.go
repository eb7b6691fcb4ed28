package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeedOnce(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/api/activity", r.URL.Path)
		assert.Equal(t, "alice", r.URL.Query().Get("username"))
		w.Write([]byte(`{"activities":[
			{"type": "following", "profile": "alice"},
			{"type": "like",      "profile": "bob"}
		]}`))
	}))
	defer srv.Close()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"feed", "--backend", srv.URL + "/api", "--user", "alice", "--interval", "0"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
		feedUser, feedInterval = "", 0
	})

	require.NoError(t, rootCmd.Execute())

	assert.Equal(t, "{\"type\":\"following\",\"profile\":\"alice\"}\n{\"type\":\"like\",\"profile\":\"bob\"}\n", out.String())
	assert.Equal(t, int32(1), calls.Load())
}

func TestFeedOnceReportsBackendError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"tapestry is down"}`))
	}))
	defer srv.Close()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs([]string{"feed", "--backend", srv.URL + "/api", "--interval", "0"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
		feedUser, feedInterval = "", 0
	})

	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Equal(t, "tapestry is down", err.Error())
}

func TestPrintFeed(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, printFeed(&out, []byte(`{"activities":[]}`)))
	assert.Empty(t, out.String())

	assert.Error(t, printFeed(&out, []byte(`[1,2]`)))
}
