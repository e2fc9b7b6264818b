package http

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"word-impostor-be/internal/config"
	"word-impostor-be/internal/service"
	"word-impostor-be/internal/service/dto"
	"word-impostor-be/internal/service/game"
	"word-impostor-be/internal/state"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type wireResponse struct {
	RespType string         `json:"response_type"`
	Data     map[string]any `json:"data"`
	ErrMsg   string         `json:"error_message"`
}

func newTestServer(t *testing.T) (*httptest.Server, *service.RoomService) {
	t.Helper()

	roomSvc := service.NewRoomService(service.RoomServiceOptions{})
	t.Cleanup(roomSvc.Close)

	app := NewApp(state.NewAppState(&config.AppConfig{}, roomSvc))
	require.NoError(t, app.Build())

	srv := httptest.NewServer(app)
	t.Cleanup(srv.Close)

	return srv, roomSvc
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/ws/join"
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { ws.Close() })

	ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	return ws
}

func readUntil(t *testing.T, ws *websocket.Conn, respType string) wireResponse {
	t.Helper()

	for {
		var resp wireResponse
		require.NoError(t, ws.ReadJSON(&resp))
		if resp.RespType == respType {
			return resp
		}
	}
}

func TestWebSocket_JoinAndStart(t *testing.T) {
	srv, roomSvc := newTestServer(t)

	created, err := roomSvc.CreateRoom(dto.CreateRoomRequest{HostName: "Alice"})
	require.NoError(t, err)

	host := dial(t, srv)
	require.NoError(t, host.WriteJSON(map[string]any{
		"request_type": game.REQ_JOIN_GAME,
		"data":         game.JoinGameRequest{RoomCode: created.RoomCode, PlayerID: created.HostID},
	}))

	joined := readUntil(t, host, game.RESP_JOIN_GAME)
	assert.Equal(t, true, joined.Data["reconnected"])

	snap := readUntil(t, host, game.RESP_GAME_STATE)
	assert.Equal(t, "WAITING", snap.Data["phase"])

	// 人数不足时只有发起者收到错误
	require.NoError(t, host.WriteJSON(map[string]any{"request_type": game.ACTION_START_GAME}))

	errResp := readUntil(t, host, game.RESP_ERROR)
	assert.NotEmpty(t, errResp.ErrMsg)
}

func TestWebSocket_FirstMessageMustBeJoin(t *testing.T) {
	srv, _ := newTestServer(t)

	ws := dial(t, srv)
	require.NoError(t, ws.WriteJSON(map[string]any{"request_type": game.ACTION_READY_UP}))

	resp := readUntil(t, ws, game.RESP_ERROR)
	assert.NotEmpty(t, resp.ErrMsg)
}

func TestWebSocket_UnknownRoom(t *testing.T) {
	srv, _ := newTestServer(t)

	ws := dial(t, srv)
	require.NoError(t, ws.WriteJSON(map[string]any{
		"request_type": game.REQ_JOIN_GAME,
		"data":         game.JoinGameRequest{RoomCode: "ZZZZZZ", PlayerName: "Bob"},
	}))

	resp := readUntil(t, ws, game.RESP_ERROR)
	assert.Contains(t, resp.ErrMsg, "ZZZZZZ")
}
