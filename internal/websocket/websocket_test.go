package websocket

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"salespulse/internal/analytics"
	"salespulse/internal/config"
	"salespulse/internal/filter"
	"salespulse/internal/sales"
	"salespulse/internal/shared/testutil"
)

type MockQueryService struct {
	mock.Mock
}

func (m *MockQueryService) Dashboard(ctx context.Context, req filter.Request) (analytics.Dashboard, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(analytics.Dashboard), args.Error(1)
}

func (m *MockQueryService) KPIs(ctx context.Context, req filter.Request) (analytics.KPIs, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(analytics.KPIs), args.Error(1)
}

func (m *MockQueryService) Options(ctx context.Context, state string) filter.Options {
	args := m.Called(ctx, state)
	return args.Get(0).(filter.Options)
}

type stubConn struct{}

func newStubConn() *stubConn { return &stubConn{} }

func (stubConn) WriteMessage(int, []byte) error { return nil }
func (stubConn) ReadMessage() (int, []byte, error) { return 0, nil, io.EOF }
func (stubConn) Close() error { return nil }
func (stubConn) SetReadDeadline(time.Time) error { return nil }
func (stubConn) SetWriteDeadline(time.Time) error { return nil }
func (stubConn) SetReadLimit(int64) {}
func (stubConn) SetPongHandler(func(string) error) {}
func (stubConn) RemoteAddr() string { return "stub" }

type wireResponse struct {
	Type  string          `json:"type"`
	ID    string          `json:"id"`
	Data  json.RawMessage `json:"data"`
	Error *ErrorBody      `json:"error"`
}

type harness struct {
	hub     *Hub
	service *MockQueryService
	server  *httptest.Server
	url     string
}

func newHarness(t *testing.T, origins []string) *harness {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	hub := NewHub(logger, nil)
	hub.Start()
	svc := &MockQueryService{}
	cfg := config.Default().WebSocket
	h := NewHandler(hub, svc, cfg, time.Second, origins, logger, nil)
	srv := httptest.NewServer(h)
	t.Cleanup(func() {
		srv.Close()
		hub.Stop()
	})
	return &harness{
		hub:     hub,
		service: svc,
		server:  srv,
		url:     "ws" + strings.TrimPrefix(srv.URL, "http"),
	}
}

func (h *harness) dial(t *testing.T) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(h.url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	greeting := readResponse(t, conn)
	require.Equal(t, TypeConnection, greeting.Type)
	return conn
}

func readResponse(t *testing.T, conn *websocket.Conn) wireResponse {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var resp wireResponse
	require.NoError(t, conn.ReadJSON(&resp))
	return resp
}

func TestQueryReturnsDashboard(t *testing.T) {
	h := newHarness(t, nil)
	want := filter.Request{State: "California"}
	h.service.On("Dashboard", mock.Anything, want).
		Return(analytics.Dashboard{KPIs: analytics.KPIs{Revenue: sales.MustMoney("2573.90"), Orders: 5}}, nil).Once()

	conn := h.dial(t)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"query","id":"1","filter":{"state":"California"}}`)))

	resp := readResponse(t, conn)
	assert.Equal(t, TypeDashboard, resp.Type)
	assert.Equal(t, "1", resp.ID)
	assert.Nil(t, resp.Error)

	var dash struct {
		KPIs struct {
			Revenue json.Number `json:"revenue"`
			Orders  int         `json:"orders"`
		} `json:"kpis"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &dash))
	assert.Equal(t, "2573.90", dash.KPIs.Revenue.String())
	assert.Equal(t, 5, dash.KPIs.Orders)
	h.service.AssertExpectations(t)
}

func TestKPIsAndOptions(t *testing.T) {
	h := newHarness(t, nil)
	h.service.On("KPIs", mock.Anything, filter.Request{Month: "Marzo"}).
		Return(analytics.KPIs{Orders: 3}, nil).Once()
	h.service.On("Options", mock.Anything, "Texas").
		Return(filter.Options{Cities: []string{"Austin", "Dallas"}}).Once()

	conn := h.dial(t)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"kpis","id":"k","filter":{"month":"Marzo"}}`)))
	resp := readResponse(t, conn)
	assert.Equal(t, TypeKPIs, resp.Type)
	assert.Equal(t, "k", resp.ID)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"options","id":"o","state":"Texas"}`)))
	resp = readResponse(t, conn)
	assert.Equal(t, TypeOptions, resp.Type)
	var opts filter.Options
	require.NoError(t, json.Unmarshal(resp.Data, &opts))
	assert.Equal(t, []string{"Austin", "Dallas"}, opts.Cities)
	h.service.AssertExpectations(t)
}

func TestErrorReplies(t *testing.T) {
	h := newHarness(t, nil)
	invalid := &filter.InvalidRequestError{Fields: []filter.FieldError{{Field: "month", Message: "unknown month"}}}
	h.service.On("Dashboard", mock.Anything, filter.Request{Month: "Smarch"}).
		Return(analytics.Dashboard{}, invalid)
	h.service.On("Dashboard", mock.Anything, filter.Request{City: "Slow"}).
		Return(analytics.Dashboard{}, context.DeadlineExceeded)
	h.service.On("Dashboard", mock.Anything, filter.Request{City: "Broken"}).
		Return(analytics.Dashboard{}, assert.AnError)

	conn := h.dial(t)

	tests := []struct {
		name    string
		message string
		code    string
		id      string
	}{
		{"not json", `{{`, CodeBadMessage, ""},
		{"missing type", `{"id":"x"}`, CodeBadMessage, ""},
		{"unknown type", `{"type":"subscribe","id":"u"}`, CodeUnknownType, "u"},
		{"invalid filter", `{"type":"query","id":"f","filter":{"month":"Smarch"}}`, CodeInvalidFilter, "f"},
		{"timeout", `{"type":"query","id":"t","filter":{"city":"Slow"}}`, CodeTimeout, "t"},
		{"internal", `{"type":"query","id":"i","filter":{"city":"Broken"}}`, CodeInternal, "i"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(tt.message)))
			resp := readResponse(t, conn)
			assert.Equal(t, TypeError, resp.Type)
			assert.Equal(t, tt.id, resp.ID)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
			if tt.code == CodeInvalidFilter {
				assert.Equal(t, invalid.Fields, resp.Error.Fields)
			}
			if tt.code == CodeInternal {
				assert.NotContains(t, resp.Error.Message, assert.AnError.Error())
			}
		})
	}
}

func TestHeartbeatHasNoReply(t *testing.T) {
	h := newHarness(t, nil)
	h.service.On("Options", mock.Anything, "").Return(filter.Options{}).Once()

	conn := h.dial(t)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"heartbeat"}`)))
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"options","id":"after"}`)))

	// Replies come in request order, so the first reply answers the options request
	resp := readResponse(t, conn)
	assert.Equal(t, TypeOptions, resp.Type)
	assert.Equal(t, "after", resp.ID)
}

func TestHubTracksClients(t *testing.T) {
	h := newHarness(t, nil)

	conn := h.dial(t)
	assert.Eventually(t, func() bool { return h.hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, int64(1), h.hub.TotalConnections())

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return h.hub.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, int64(1), h.hub.TotalConnections())
}

func TestHubStopClosesClients(t *testing.T) {
	h := newHarness(t, nil)
	conn := h.dial(t)

	h.hub.Stop()
	assert.Equal(t, 0, h.hub.ClientCount())

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, _, err := conn.ReadMessage()
	require.Error(t, err)
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), "got %v", err)

	// A stopped hub refuses new clients
	logger, _ := testutil.NewTestLogger(t)
	client := NewClient(h.hub, newStubConn(), h.service, Settings{}, "", logger)
	assert.False(t, h.hub.Register(client))

	// Stop is idempotent
	h.hub.Stop()
}

func TestOriginCheck(t *testing.T) {
	h := newHarness(t, []string{"http://allowed.example"})

	header := http.Header{}
	header.Set("Origin", "http://evil.example")
	_, resp, err := websocket.DefaultDialer.Dial(h.url, header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "json")
	var problem struct {
		ErrorCode string `json:"error_code"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&problem))
	assert.Equal(t, "WEBSOCKET_UPGRADE_FAILED", problem.ErrorCode)

	header.Set("Origin", "http://allowed.example")
	conn, _, err := websocket.DefaultDialer.Dial(h.url, header)
	require.NoError(t, err)
	conn.Close()
}

func TestPlainHTTPRequestIsRejected(t *testing.T) {
	h := newHarness(t, nil)
	resp, err := http.Get(h.server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSettingsDefaults(t *testing.T) {
	s := Settings{PongWait: 10 * time.Second, PingPeriod: 20 * time.Second}.withDefaults()
	assert.Equal(t, 9*time.Second, s.PingPeriod)
	assert.Equal(t, int64(64*1024), s.MaxMessageSize)
	assert.Equal(t, 30*time.Second, s.QueryTimeout)
}
