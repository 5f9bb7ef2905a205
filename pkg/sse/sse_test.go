package sse

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_GroupAndBroadcast(t *testing.T) {
	h := NewHub(time.Minute)
	a := h.AddClient("a")
	b := h.AddClient("b")
	h.Join("a", "user:ann")

	require.NoError(t, h.SendGroupEvent("user:ann", "alert", map[string]string{"id": "1"}))
	require.NoError(t, h.BroadcastEvent("alert", map[string]string{"id": "2"}))

	assert.Equal(t, "event: alert\ndata: {\"id\":\"1\"}\n\n", <-a.ch)
	assert.Equal(t, "event: alert\ndata: {\"id\":\"2\"}\n\n", <-a.ch)
	assert.Equal(t, "event: alert\ndata: {\"id\":\"2\"}\n\n", <-b.ch)
	assert.Len(t, b.ch, 0)

	h.RemoveClient("a")
	assert.Equal(t, 1, h.ClientCount())
	assert.Empty(t, h.groups["user:ann"])
}

func TestHub_ServeStreamsEvents(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewHub(time.Minute)
	r := gin.New()
	r.GET("/stream", func(c *gin.Context) { h.Serve(c, "c1") })
	srv := httptest.NewServer(r)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/stream", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(line, "retry:"))

	require.Eventually(t, func() bool { return h.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)
	require.NoError(t, h.BroadcastEvent("alert", map[string]string{"id": "x"}))

	var got []string
	for len(got) < 2 {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		if strings.TrimSpace(line) != "" {
			got = append(got, strings.TrimSpace(line))
		}
	}
	assert.Equal(t, []string{"event: alert", `data: {"id":"x"}`}, got)
}
