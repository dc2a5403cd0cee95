package web

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"releaseday/internal/clock"
	"releaseday/internal/countdown"
	"releaseday/internal/display"
	"releaseday/internal/share"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

var testLabels = display.Labels{
	Title:      "Release day",
	Subtitle:   "14/09/2025 13:00",
	Motivation: "soon",
	Celebrate:  "It is over!",
	ShareText:  "share me",
}

func newTestServer(t *testing.T, now time.Time) (*Server, *clock.Manual) {
	t.Helper()
	mc := clock.NewManual(now)
	srv := NewServer(Options{
		Target:     countdown.DefaultTargetValue(),
		Labels:     testLabels,
		ShareTitle: "Release",
		Clock:      mc,
		Interval:   10 * time.Millisecond,
		Version:    "1.0.0-test",
	})
	t.Cleanup(srv.Close)
	return srv, mc
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestStateEndpoint(t *testing.T) {
	tgt := countdown.DefaultTargetValue()
	srv, mc := newTestServer(t, tgt.At.Add(-(26*time.Hour + 61*time.Second)))

	w := get(t, srv.Handler(), "/api/state")
	require.Equal(t, http.StatusOK, w.Code)

	var snap countdown.Snapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	assert.Equal(t, "counting", snap.State)
	assert.Equal(t, 1, snap.Days)
	assert.Equal(t, 2, snap.Hours)
	assert.Equal(t, 1, snap.Minutes)
	assert.Equal(t, 1, snap.Seconds)
	assert.Equal(t, "Africa/Cairo", snap.Zone)

	mc.Set(tgt.At.Add(time.Second))
	w = get(t, srv.Handler(), "/api/state")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	assert.Equal(t, "finished", snap.State)
	assert.Zero(t, snap.TotalSeconds)
}

func TestShareEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, time.Now())

	w := get(t, srv.Handler(), "/api/share")
	require.Equal(t, http.StatusOK, w.Code)

	var p share.Payload
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
	assert.Equal(t, "Release", p.Title)
	assert.Equal(t, "share me", p.Text)
	assert.Equal(t, "http://example.com/", p.URL)
	assert.Equal(t, share.WhatsAppURL("share me", "http://example.com/"), p.WhatsAppURL)
}

func TestHealthEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, time.Now())

	w := get(t, srv.Handler(), "/healthz")
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
	assert.Equal(t, "1.0.0-test", resp["version"])
}

func TestPageCounting(t *testing.T) {
	tgt := countdown.DefaultTargetValue()
	srv, _ := newTestServer(t, tgt.At.Add(-(3*24*time.Hour + 4*time.Hour)))

	w := get(t, srv.Handler(), "/")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()

	assert.Contains(t, body, "Release day")
	assert.Contains(t, body, `<section id="counting">`)
	assert.Contains(t, body, `<section id="finished" hidden>`)
	assert.Contains(t, body, `data-unit="days">03<`)
	assert.Contains(t, body, `data-unit="hours">04<`)
	assert.Contains(t, body, "3 days 04:00:00 left")
}

func TestPageFinished(t *testing.T) {
	tgt := countdown.DefaultTargetValue()
	srv, _ := newTestServer(t, tgt.At)

	w := get(t, srv.Handler(), "/")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()

	assert.Contains(t, body, `<section id="counting" hidden>`)
	assert.Contains(t, body, `<section id="finished">`)
	assert.Contains(t, body, "It is over!")
	assert.Contains(t, body, `"whatsapp_url":`)
}

func TestCORS(t *testing.T) {
	srv, _ := newTestServer(t, time.Now())

	req := httptest.NewRequest(http.MethodGet, "/api/state", nil)
	req.Header.Set("Origin", "https://elsewhere.example")
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, "https://elsewhere.example", w.Header().Get("Access-Control-Allow-Origin"))
}

func dialSocket(t *testing.T, srv *Server) *websocket.Conn {
	t.Helper()
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readSnapshot(t *testing.T, conn *websocket.Conn) countdown.Snapshot {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var snap countdown.Snapshot
	require.NoError(t, conn.ReadJSON(&snap))
	return snap
}

func TestSocketStreamsTicks(t *testing.T) {
	tgt := countdown.DefaultTargetValue()
	srv, mc := newTestServer(t, tgt.At.Add(-10*time.Second))
	conn := dialSocket(t, srv)

	first := readSnapshot(t, conn)
	assert.Equal(t, "counting", first.State)
	assert.Equal(t, 10, first.Seconds)

	mc.Set(tgt.At)
	var last countdown.Snapshot
	for i := 0; i < 100 && last.State != "finished"; i++ {
		last = readSnapshot(t, conn)
	}
	assert.Equal(t, "finished", last.State)
}

func TestSocketClosedOnServerClose(t *testing.T) {
	tgt := countdown.DefaultTargetValue()
	srv, _ := newTestServer(t, tgt.At.Add(-time.Hour))
	conn := dialSocket(t, srv)

	readSnapshot(t, conn)
	srv.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		_, _, err := conn.ReadMessage()
		if err == nil {
			continue
		}
		var ne net.Error
		assert.False(t, errors.As(err, &ne) && ne.Timeout(), "socket still open: %v", err)
		break
	}
}

type stubWriter struct {
	deadlineErr error
	written     []any
}

func (w *stubWriter) SetWriteDeadline(time.Time) error { return w.deadlineErr }

func (w *stubWriter) WriteJSON(v interface{}) error {
	w.written = append(w.written, v)
	return nil
}

func TestWriteSnapshotFailsOnDeadlineError(t *testing.T) {
	snap := countdown.Snapshot{State: "counting"}

	w := &stubWriter{deadlineErr: errors.New("use of closed network connection")}
	assert.EqualError(t, writeSnapshot(w, snap), "use of closed network connection")
	assert.Empty(t, w.written)

	w = &stubWriter{}
	require.NoError(t, writeSnapshot(w, snap))
	assert.Equal(t, []any{snap}, w.written)
}

func TestListenAndServeStopsOnCancel(t *testing.T) {
	srv, _ := newTestServer(t, time.Now())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- srv.ListenAndServe(ctx, "127.0.0.1:0") }()
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
