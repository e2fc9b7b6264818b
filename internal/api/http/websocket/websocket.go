package websocket

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// NOTE: 暂时允许所有来源
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

const (
	// 心跳间隔
	HEARTBEAT_INTERVAL = 30 * time.Second
	// 心跳超时时间
	HEARTBEAT_TIMEOUT = 45 * time.Second
	// 单条写入的超时时间
	WRITE_TIMEOUT = 10 * time.Second
	// 等待加入结果的最长时间
	JOIN_TIMEOUT = 5 * time.Second

	// 每个连接每秒最多 5 条请求，允许 10 条突发
	REQUEST_RATE  = 5
	REQUEST_BURST = 10

	// 玩家响应通道的缓冲大小
	OUTBOX_SIZE = 64
)

var heartbeatHandler = func(conn *websocket.Conn) func(string) error {
	return func(string) error {
		conn.SetReadDeadline(time.Now().Add(HEARTBEAT_TIMEOUT))
		return nil
	}
}

func newRequestLimiter() *rate.Limiter {
	return rate.NewLimiter(REQUEST_RATE, REQUEST_BURST)
}
