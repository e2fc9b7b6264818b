package game

import (
	"fmt"

	"go.uber.org/zap"
)

// Effects 描述一次请求处理后需要发送的消息
type Effects struct {
	// StateChanged 为 true 时给所有在线玩家广播各自的快照
	StateChanged bool
	// Unicast 只发给发起请求的连接
	Unicast *ResponseWrapper
	// RoomEmpty 为 true 时房间应当被回收
	RoomEmpty bool
}

// Dispatcher 校验玩家操作并路由到房间或玩法
type Dispatcher struct {
	room *Room
}

func NewDispatcher(room *Room) *Dispatcher {
	return &Dispatcher{room: room}
}

func (d *Dispatcher) Dispatch(req RequestWrapper) Effects {
	err := d.dispatch(req)
	if err != nil {
		zap.L().Debug(
			"处理请求失败",
			zap.String("room_code", d.room.Code),
			zap.String("player_id", req.PlayerID),
			zap.String("request_type", req.ReqType),
			zap.String("phase", d.room.game.Phase().String()),
			zap.Error(err),
		)

		resp := WrapErrResponse(err.Error())
		return Effects{Unicast: &resp}
	}

	effects := Effects{StateChanged: true}

	switch req.ReqType {
	case ACTION_KICK_PLAYER, ACTION_LEAVE_ROOM:
		effects.RoomEmpty = d.closeable()
	}

	return effects
}

// closeable 房主离开或者没有真人玩家时，房间应当关闭
func (d *Dispatcher) closeable() bool {
	if _, ok := d.room.Players.Get(d.room.HostID); !ok {
		return true
	}
	return !d.room.HasHumans()
}

func (d *Dispatcher) dispatch(req RequestWrapper) error {
	if _, ok := d.room.Players.Get(req.PlayerID); !ok {
		return fmt.Errorf("%w: 玩家 %s 不在房间中", ErrNotFound, req.PlayerID)
	}

	switch req.ReqType {
	case ACTION_ADD_BOT:
		_, err := d.room.AddBot(req.PlayerID)
		return err

	case ACTION_KICK_PLAYER:
		payload, err := TryUnwrap[KickPlayerRequest](req.Data)
		if err != nil {
			return err
		}

		kicked, err := d.room.Kick(req.PlayerID, payload.PlayerID)
		if err != nil {
			return err
		}

		if kicked.Conn != nil {
			kicked.Conn.Send(WrapResponse(RESP_KICKED, KickedResponse{PlayerID: kicked.ID}))
			kicked.Conn.Close()
		}
		return nil

	case ACTION_LEAVE_ROOM:
		left, err := d.room.Leave(req.PlayerID)
		if err != nil {
			return err
		}

		if left.Conn != nil {
			left.Conn.Close()
		}
		return nil

	case ACTION_CHANGE_AVATAR:
		payload, err := TryUnwrap[ChangeAvatarRequest](req.Data)
		if err != nil {
			return err
		}
		return d.room.ChangeAvatar(req.PlayerID, payload.AvatarStyle)
	}

	return d.room.game.ApplyAction(req.PlayerID, Action{
		Name:    req.ReqType,
		Payload: req.Data,
	})
}
