package websocket

import (
	"context"
	"encoding/json"
	"time"

	"word-impostor-be/internal/service/game"
	"word-impostor-be/internal/state"

	"github.com/gorilla/websocket"
	"github.com/kataras/iris/v12"
	"go.uber.org/zap"
)

func JoinGame(appState *state.AppState) iris.Handler {
	return func(ctx iris.Context) {
		ws, err := upgrader.Upgrade(
			ctx.ResponseWriter(),
			ctx.Request(),
			nil,
		)
		if err != nil {
			zap.L().Error("升级到WebSocket失败", zap.Error(err))
			ctx.StatusCode(iris.StatusBadRequest)
			return
		}

		defer ws.Close()

		clientIP := ctx.RemoteAddr()

		ws.SetReadDeadline(time.Now().Add(HEARTBEAT_TIMEOUT))
		ws.SetPongHandler(heartbeatHandler(ws))

		// 读取首次请求，必须是 JoinGame
		_, msg, err := ws.ReadMessage()
		if err != nil {
			zap.L().Error(
				"读取首次请求失败",
				zap.String("client_ip", clientIP),
				zap.Error(err),
			)
			return
		}

		var wrapper game.RequestWrapper

		if err := json.Unmarshal(msg, &wrapper); err != nil {
			zap.L().Error(
				"解析首次请求失败",
				zap.String("client_ip", clientIP),
				zap.Error(err),
			)
			ws.WriteJSON(game.WrapErrResponse("无效的请求格式"))
			return
		}

		req := game.TryUnwrapJoinGameRequest(wrapper)
		if req == nil {
			zap.L().Error(
				"首次请求不是JoinGame类型",
				zap.String("client_ip", clientIP),
				zap.String("request_type", wrapper.ReqType),
			)
			ws.WriteJSON(game.WrapErrResponse("首次请求必须是 JoinGame"))
			return
		}

		conn := game.NewConn(OUTBOX_SIZE)
		defer conn.Close()

		joinCtx, cancel := context.WithTimeout(ctx.Request().Context(), JOIN_TIMEOUT)
		gm, player, err := appState.RoomSvc.JoinRoom(joinCtx, *req, conn)
		cancel()

		if err != nil {
			// 写协程尚未启动，可以直接写入
			ws.WriteJSON(game.WrapErrResponse(err.Error()))
			return
		}

		playerID := player.ID

		zap.L().Info(
			"玩家成功加入房间",
			zap.String("client_ip", clientIP),
			zap.String("room_code", req.RoomCode),
			zap.String("player_id", playerID),
			zap.String("player_name", player.Name),
		)

		// 写协程的退出信号
		writeDoneCh := make(chan struct{})
		defer close(writeDoneCh)

		go writeLoop(ws, conn, clientIP, writeDoneCh)

		limiter := newRequestLimiter()

		// 读取协程（主协程）
		for {
			_, msg, err := ws.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(
					err,
					websocket.CloseGoingAway,
					websocket.CloseAbnormalClosure,
				) {
					zap.L().Error(
						"读取消息失败",
						zap.String("client_ip", clientIP),
						zap.Error(err),
					)
				}

				break
			}

			if !limiter.Allow() {
				zap.L().Warn(
					"请求过于频繁",
					zap.String("client_ip", clientIP),
					zap.String("player_id", playerID),
				)
				conn.Send(game.WrapErrResponse("请求过于频繁，请稍后再试"))
				continue
			}

			var wrapper game.RequestWrapper

			if err := json.Unmarshal(msg, &wrapper); err != nil {
				zap.L().Error(
					"解析消息失败",
					zap.String("client_ip", clientIP),
					zap.Error(err),
				)
				conn.Send(game.WrapErrResponse("无效的请求格式"))
				continue
			}

			// 玩家身份和连接以服务端记录为准
			wrapper.PlayerID = playerID
			wrapper.Conn = conn

			if err := gm.Submit(wrapper); err != nil {
				zap.L().Error(
					"发送请求到房间失败",
					zap.String("client_ip", clientIP),
					zap.String("player_id", playerID),
					zap.Error(err),
				)
				conn.Send(game.WrapErrResponse(err.Error()))
				continue
			}

			zap.L().Debug(
				"发送请求到房间",
				zap.String("client_ip", clientIP),
				zap.String("player_id", playerID),
				zap.String("request_type", wrapper.ReqType),
			)
		}

		// 读循环退出，表示客户端断开连接。
		// 房间按连接句柄查找玩家，连接已被顶替时不会影响新连接
		disconnect := game.RequestWrapper{
			ReqType:  game.REQ_DISCONNECT,
			PlayerID: playerID,
			Conn:     conn,
		}

		if err := gm.Submit(disconnect); err != nil {
			zap.L().Warn(
				"发送断开请求失败",
				zap.String("player_id", playerID),
				zap.Error(err),
			)
		}

		zap.L().Info(
			"WebSocket连接处理完成",
			zap.String("client_ip", clientIP),
			zap.String("player_id", playerID),
		)
	}
}

func writeLoop(ws *websocket.Conn, conn *game.Conn, clientIP string, writeDoneCh <-chan struct{}) {
	ticker := time.NewTicker(HEARTBEAT_INTERVAL)
	defer ticker.Stop()

	write := func(resp game.ResponseWrapper) error {
		ws.SetWriteDeadline(time.Now().Add(WRITE_TIMEOUT))
		return ws.WriteJSON(resp)
	}

	for {
		select {
		case <-writeDoneCh:
			zap.L().Debug(
				"WebSocket写入协程退出",
				zap.String("client_ip", clientIP),
			)
			return

		case <-conn.Done():
			// 连接被房间关闭（踢出、顶替或房间关闭），发送剩余消息后关闭底层连接
		drain:
			for {
				select {
				case resp := <-conn.Outbox():
					if err := write(resp); err != nil {
						break drain
					}
				default:
					break drain
				}
			}

			ws.WriteControl(
				websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second),
			)
			ws.Close()

			zap.L().Info(
				"连接已被房间关闭",
				zap.String("client_ip", clientIP),
			)
			return

		case <-ticker.C:
			ws.SetWriteDeadline(time.Now().Add(WRITE_TIMEOUT))
			if err := ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				zap.L().Error(
					"发送心跳失败",
					zap.String("client_ip", clientIP),
					zap.Error(err),
				)
				ws.Close()
				return
			}

			zap.L().Debug(
				"发送心跳",
				zap.String("client_ip", clientIP),
			)

		case resp := <-conn.Outbox():
			if err := write(resp); err != nil {
				zap.L().Error(
					"发送消息失败",
					zap.String("client_ip", clientIP),
					zap.Error(err),
				)
				ws.Close()
				return
			}

			zap.L().Debug(
				"发送消息",
				zap.String("client_ip", clientIP),
				zap.String("response_type", resp.RespType),
			)
		}
	}
}
