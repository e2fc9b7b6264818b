package game

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Summary 是房间的公开概要，供房间列表使用
type Summary struct {
	Code        string    `json:"code"`
	GameType    string    `json:"gameType"`
	Phase       Phase     `json:"phase"`
	HostID      string    `json:"hostId"`
	PlayerCount int       `json:"playerCount"`
	MaxPlayers  int       `json:"maxPlayers"`
	CreatedAt   time.Time `json:"createdAt"`
}

type joinRequest struct {
	req   JoinGameRequest
	conn  *Conn
	resCh chan joinResult
}

type joinResult struct {
	player      Player
	reconnected bool
	err         error
}

// GameMachine 是房间的事件循环，玩家请求和计时器回调都在同一个协程中串行处理
type GameMachine struct {
	room       *Room
	game       Game
	dispatcher *Dispatcher

	// 这是所有的用户的请求汇总的通道
	reqCh  chan RequestWrapper
	joinCh chan joinRequest
	// 计时器到期后投递回调的通道
	tmoCh chan func()
	// 结束通道，用于通知事件循环退出
	doneCh   chan struct{}
	stopOnce sync.Once
	reason   string

	onEmpty func(code string)

	mu      sync.RWMutex
	summary Summary
}

// NewGameMachine 创建房间的事件循环。opts.Scheduler 为空时使用真实的计时器
func NewGameMachine(room *Room, opts Options, onEmpty func(code string)) (*GameMachine, error) {
	gm := &GameMachine{
		room:    room,
		reqCh:   make(chan RequestWrapper, 64),
		joinCh:  make(chan joinRequest),
		tmoCh:   make(chan func(), 8),
		doneCh:  make(chan struct{}),
		onEmpty: onEmpty,
	}

	if opts.Scheduler == nil {
		opts.Scheduler = newLoopScheduler(gm.post)
	}

	g, err := NewGame(room, opts)
	if err != nil {
		return nil, err
	}

	gm.game = g
	gm.dispatcher = NewDispatcher(room)
	gm.publishSummary()

	return gm, nil
}

func (gm *GameMachine) post(fn func()) {
	select {
	case gm.tmoCh <- fn:
	case <-gm.doneCh:
	}
}

func (gm *GameMachine) Start() {
	zap.L().Info("房间事件循环启动", zap.String("room_code", gm.room.Code))

	for {
		select {
		case jr := <-gm.joinCh:
			gm.handleJoin(jr)

		case req := <-gm.reqCh:
			zap.L().Debug(
				"接收到客户端请求",
				zap.String("room_code", gm.room.Code),
				zap.String("player_id", req.PlayerID),
				zap.String("request_type", req.ReqType),
			)
			gm.handleRequest(req)

		case fire := <-gm.tmoCh:
			zap.L().Debug(
				"接收到超时事件",
				zap.String("room_code", gm.room.Code),
				zap.String("phase", gm.game.Phase().String()),
			)
			fire()
			gm.room.BroadcastState()

		case <-gm.doneCh:
			gm.shutdown()
			return
		}

		gm.publishSummary()
	}
}

func (gm *GameMachine) handleJoin(jr joinRequest) {
	p, reconnected, err := gm.room.Join(jr.req, jr.conn)
	if err != nil {
		jr.resCh <- joinResult{err: err}
		return
	}

	jr.resCh <- joinResult{player: *p, reconnected: reconnected}

	gm.room.UnicastResp(p.ID, WrapResponse(RESP_JOIN_GAME, JoinGameResponse{
		Joiner:      *p,
		Reconnected: reconnected,
	}))
	gm.room.BroadcastState()
}

func (gm *GameMachine) handleRequest(req RequestWrapper) {
	if req.ReqType == REQ_DISCONNECT {
		if _, ok := gm.room.Disconnect(req.Conn); ok {
			gm.room.BroadcastState()
		}
		return
	}

	effects := gm.dispatcher.Dispatch(req)

	if effects.Unicast != nil && req.Conn != nil {
		req.Conn.Send(*effects.Unicast)
	}

	if effects.StateChanged {
		gm.room.BroadcastState()
	}

	if effects.RoomEmpty && gm.onEmpty != nil {
		gm.onEmpty(gm.room.Code)
	}
}

func (gm *GameMachine) shutdown() {
	gm.game.Close()

	gm.room.BroadcastResp(WrapResponse(RESP_ROOM_CLOSED, RoomClosedResponse{
		RoomCode: gm.room.Code,
		Reason:   gm.reason,
	}))

	for _, p := range gm.room.Players.List() {
		if p.Conn != nil {
			p.Conn.Close()
		}
	}

	zap.L().Info(
		"房间事件循环退出",
		zap.String("room_code", gm.room.Code),
		zap.String("reason", gm.reason),
	)
}

// Join 把加入请求交给事件循环处理并等待结果。ctx 只限制交接之前的等待
func (gm *GameMachine) Join(ctx context.Context, req JoinGameRequest, conn *Conn) (Player, bool, error) {
	resCh := make(chan joinResult, 1)

	select {
	case gm.joinCh <- joinRequest{req: req, conn: conn, resCh: resCh}:
	case <-gm.doneCh:
		return Player{}, false, ErrRoomClosed
	case <-ctx.Done():
		return Player{}, false, ctx.Err()
	}

	// 请求已交给事件循环，玩家可能已经加入，必须等待真实结果
	res := <-resCh
	return res.player, res.reconnected, res.err
}

var ErrRoomBusy = errors.New("房间繁忙，请稍后再试")

// Submit 不会阻塞，请求通道已满时返回 ErrRoomBusy
func (gm *GameMachine) Submit(req RequestWrapper) error {
	select {
	case <-gm.doneCh:
		return ErrRoomClosed
	default:
	}

	select {
	case gm.reqCh <- req:
		return nil
	default:
		return ErrRoomBusy
	}
}

func (gm *GameMachine) Stop(reason string) {
	gm.stopOnce.Do(func() {
		gm.reason = reason
		close(gm.doneCh)
	})
}

func (gm *GameMachine) Done() <-chan struct{} {
	return gm.doneCh
}

func (gm *GameMachine) publishSummary() {
	s := Summary{
		Code:        gm.room.Code,
		GameType:    gm.room.GameType,
		Phase:       gm.game.Phase(),
		HostID:      gm.room.HostID,
		PlayerCount: gm.room.Players.Len(),
		MaxPlayers:  gm.room.MaxPlayers,
		CreatedAt:   gm.room.CreatedAt,
	}

	gm.mu.Lock()
	gm.summary = s
	gm.mu.Unlock()
}

func (gm *GameMachine) Summary() Summary {
	gm.mu.RLock()
	defer gm.mu.RUnlock()
	return gm.summary
}
