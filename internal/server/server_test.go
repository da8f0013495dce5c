package server

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/jsondiagram/pkg/diagram"
	derrors "github.com/matzehuels/jsondiagram/pkg/errors"
	"github.com/matzehuels/jsondiagram/pkg/graph"
	"github.com/matzehuels/jsondiagram/pkg/layout"
)

// rowEngine places boxes on one row.
type rowEngine struct{}

func (rowEngine) Name() string { return "row" }

func (rowEngine) Place(_ context.Context, req layout.Request) (layout.Placement, error) {
	p := layout.Placement{}
	for i, b := range req.Boxes {
		p[b.ID] = graph.Point{X: 300 * float64(i+1), Y: 100}
	}
	return p, nil
}

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	s := New(Config{
		Addr:        "127.0.0.1:0",
		Direction:   layout.LeftToRight,
		Density:     layout.Medium,
		SearchDelay: 10 * time.Millisecond,
		Engine:      rowEngine{},
		Logger:      log.New(io.Discard),
	})
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

func TestHealth(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
}

func TestValidateEndpoint(t *testing.T) {
	_, ts := newTestServer(t)

	tests := []struct {
		name  string
		body  string
		valid bool
		code  derrors.Code
		line  int
	}{
		{"valid", `{"a":{"x":1},"b":{"x":1}}`, true, "", 0},
		{"duplicate", "{\"a\":1,\n\"a\":2}", false, derrors.ErrCodeDuplicateKey, 2},
		{"syntax", "{\n\n\"a\" 1}", false, derrors.ErrCodeInvalidJSON, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Post(ts.URL+"/api/validate", "text/plain", strings.NewReader(tt.body))
			require.NoError(t, err)
			defer resp.Body.Close()
			require.Equal(t, http.StatusOK, resp.StatusCode)

			var got ValidateResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
			assert.Equal(t, tt.valid, got.Valid)
			if !tt.valid {
				require.NotNil(t, got.Error)
				assert.Equal(t, tt.code, got.Error.Code)
				assert.Equal(t, tt.line, got.Error.Line)
			}
		})
	}
}

func TestLayoutEndpoint(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Post(ts.URL+"/api/layout?direction=tb&density=compact&level=1",
		"application/json", strings.NewReader(`{"fruits":[{"name":"Apple"}]}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var scene diagram.Scene
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&scene))
	assert.Equal(t, layout.TopToBottom, scene.Direction)
	assert.Equal(t, layout.Compact, scene.Density)
	assert.Equal(t, 1, scene.Level)
	require.Len(t, scene.Nodes, 3)
	assert.Len(t, scene.Edges, 2)
	assert.Len(t, scene.VisibleNodes(), 2)
}

func TestLayoutEndpointErrors(t *testing.T) {
	_, ts := newTestServer(t)

	tests := []struct {
		query string
		body  string
		code  derrors.Code
	}{
		{"direction=RL", `{}`, derrors.ErrCodeInvalidDirection},
		{"density=huge", `{}`, derrors.ErrCodeInvalidDensity},
		{"level=0", `{}`, derrors.ErrCodeInvalidInput},
		{"", `{"a":1,"a":2}`, derrors.ErrCodeDuplicateKey},
	}
	for _, tt := range tests {
		resp, err := http.Post(ts.URL+"/api/layout?"+tt.query, "application/json", strings.NewReader(tt.body))
		require.NoError(t, err)

		var body map[string]ErrorBody
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		resp.Body.Close()

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, tt.query)
		assert.Equal(t, tt.code, body["error"].Code, tt.query)
	}
}

func TestServeListenerShutdown(t *testing.T) {
	s := New(Config{Engine: rowEngine{}, Logger: log.New(io.Discard)})
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.ServeListener(ctx, ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestCORS(t *testing.T) {
	_, ts := newTestServer(t)

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/api/validate", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "POST")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "http://localhost:5173", resp.Header.Get("Access-Control-Allow-Origin"))
}

// =============================================================================
// WebSocket sessions
// =============================================================================

type wsClient struct {
	t    *testing.T
	conn *websocket.Conn
}

func dial(t *testing.T, ts *httptest.Server) *wsClient {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return &wsClient{t: t, conn: conn}
}

func (c *wsClient) send(msg Inbound) {
	c.t.Helper()
	require.NoError(c.t, c.conn.WriteJSON(msg))
}

func (c *wsClient) next() Outbound {
	c.t.Helper()
	require.NoError(c.t, c.conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	var out Outbound
	require.NoError(c.t, c.conn.ReadJSON(&out))
	return out
}

// until reads messages until one of type typ arrives.
func (c *wsClient) until(typ string) Outbound {
	c.t.Helper()
	for i := 0; i < 20; i++ {
		out := c.next()
		if out.Type == typ {
			return out
		}
	}
	c.t.Fatalf("no %s message received", typ)
	return Outbound{}
}

func TestSessionFlow(t *testing.T) {
	s, ts := newTestServer(t)
	c := dial(t, ts)

	initial := c.until(OutScene)
	assert.Empty(t, initial.Scene.Nodes)
	require.Eventually(t, func() bool { return s.Sessions() == 1 }, time.Second, 10*time.Millisecond)

	c.send(Inbound{Type: MsgEdit, Text: `{"fruits":[{"name":"Apple"}]}`})
	scene := c.until(OutScene)
	require.Len(t, scene.Scene.Nodes, 3)
	fit := c.next()
	require.Equal(t, OutFitView, fit.Type)
	assert.Equal(t, diagram.FitPadding, fit.Viewport.Padding)

	c.send(Inbound{Type: MsgToggle, ID: "node-0"})
	scene = c.until(OutScene)
	assert.Len(t, scene.Scene.VisibleNodes(), 1)

	c.send(Inbound{Type: MsgExpandAll})
	c.send(Inbound{Type: MsgSearch, Term: "apple"})
	scene = c.until(OutScene) // expandAll
	assert.Len(t, scene.Scene.VisibleNodes(), 3)

	scene = c.until(OutScene) // debounced search
	assert.Equal(t, "apple", scene.Scene.Search.Term)
	require.Len(t, scene.Scene.Search.Results, 1)
	focus := c.until(OutFitView)
	assert.Equal(t, []string{"node-2"}, focus.Viewport.NodeIDs)
	assert.Equal(t, diagram.FocusPadding, focus.Viewport.Padding)

	c.send(Inbound{Type: MsgExport})
	exp := c.until(OutExport)
	assert.Equal(t, "data.json", exp.Export.Name)
	assert.Contains(t, exp.Export.Text, "  \"fruits\": [")
}

func TestSessionErrors(t *testing.T) {
	_, ts := newTestServer(t)
	c := dial(t, ts)
	c.until(OutScene)

	c.send(Inbound{Type: "bogus"})
	out := c.until(OutError)
	assert.Equal(t, derrors.ErrCodeUnsupported, out.Error.Code)

	c.send(Inbound{Type: MsgEdit, Text: "{\"a\":1,\n\"a\":2}"})
	out = c.until(OutError)
	assert.Equal(t, derrors.ErrCodeDuplicateKey, out.Error.Code)
	assert.Equal(t, 2, out.Error.Line)
	scene := c.until(OutScene)
	require.NotNil(t, scene.Scene.Problem)

	c.send(Inbound{Type: MsgDirection, Direction: "sideways"})
	out = c.until(OutError)
	assert.Equal(t, derrors.ErrCodeInvalidDirection, out.Error.Code)
}

func TestSessionDragAndLock(t *testing.T) {
	_, ts := newTestServer(t)
	c := dial(t, ts)
	c.until(OutScene)

	c.send(Inbound{Type: MsgEdit, Text: `{"a":{"b":{}}}`})
	c.until(OutScene)

	c.send(Inbound{Type: MsgDragStart, ID: "node-1"})
	scene := c.until(OutScene)
	assert.True(t, scene.Scene.Nodes[1].Dragging)

	c.send(Inbound{Type: MsgDrag, ID: "node-1", Position: &graph.Point{X: 11, Y: 22}})
	scene = c.until(OutScene) // frame
	assert.Equal(t, graph.Point{X: 11, Y: 22}, scene.Scene.Nodes[1].Position)

	c.send(Inbound{Type: MsgDragStop, ID: "node-1", Position: &graph.Point{X: 33, Y: 44}})
	scene = c.until(OutScene)
	assert.Equal(t, graph.Point{X: 33, Y: 44}, scene.Scene.Nodes[1].Position)
	assert.False(t, scene.Scene.Nodes[1].Dragging)

	locked := true
	c.send(Inbound{Type: MsgLock, Locked: &locked})
	scene = c.until(OutScene)
	assert.True(t, scene.Scene.Locked)
	for _, n := range scene.Scene.Nodes {
		assert.False(t, n.Draggable)
	}
}
