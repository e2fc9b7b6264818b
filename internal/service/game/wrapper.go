package game

import (
	"encoding/json"
	"fmt"
)

// 请求类型，除 JoinGame 和 Disconnect 外都是玩家操作（见 action.go）
const (
	REQ_JOIN_GAME  = "JoinGame"
	REQ_DISCONNECT = "Disconnect"
)

type RequestWrapper struct {
	ReqType string          `json:"request_type"`
	Data    json.RawMessage `json:"data"`

	// 以下字段由服务端填写，不信任客户端传入的值
	PlayerID string `json:"-"`
	Conn     *Conn  `json:"-"`
}

// TryUnwrap 把请求负载解析成指定类型，负载为空时返回零值
func TryUnwrap[T any](data json.RawMessage) (T, error) {
	var v T

	if len(data) == 0 || string(data) == "null" {
		return v, nil
	}

	if err := json.Unmarshal(data, &v); err != nil {
		return v, fmt.Errorf("%w: 无法解析请求负载: %v", ErrValidation, err)
	}

	return v, nil
}

func TryUnwrapJoinGameRequest(wrapper RequestWrapper) *JoinGameRequest {
	if wrapper.ReqType != REQ_JOIN_GAME {
		return nil
	}

	req, err := TryUnwrap[JoinGameRequest](wrapper.Data)
	if err != nil {
		return nil
	}

	return &req
}

// 响应类型
const (
	RESP_ERROR = "Error"

	RESP_JOIN_GAME   = "JoinGame"
	RESP_GAME_STATE  = "GameState"
	RESP_KICKED      = "Kicked"
	RESP_ROOM_CLOSED = "RoomClosed"
)

type ResponseWrapper struct {
	RespType string `json:"response_type"`
	Data     any    `json:"data"`
	ErrMsg   string `json:"error_message,omitempty"`
}

func WrapResponse(respType string, data any) ResponseWrapper {
	return ResponseWrapper{
		RespType: respType,
		Data:     data,
	}
}

func WrapErrResponse(errMsg string) ResponseWrapper {
	return ResponseWrapper{
		RespType: RESP_ERROR,
		ErrMsg:   errMsg,
	}
}
