package game

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Room 是房间中与具体玩法无关的部分：成员、房主和消息投递
type Room struct {
	Code       string
	GameType   string
	CreatedAt  time.Time
	MaxPlayers int
	HostID     string
	Players    *Registry

	AvatarStyles []string
	AvatarURL    func(playerID, style string) string

	botSeq int
	game   Game
}

type RoomOptions struct {
	Code         string
	GameType     string
	CreatedAt    time.Time
	MaxPlayers   int
	AvatarStyles []string
	AvatarURL    func(playerID, style string) string
}

func NewRoom(opts RoomOptions) *Room {
	if opts.CreatedAt.IsZero() {
		opts.CreatedAt = time.Now()
	}
	if opts.MaxPlayers <= 0 {
		opts.MaxPlayers = 8
	}
	if len(opts.AvatarStyles) == 0 {
		opts.AvatarStyles = []string{"default"}
	}
	if opts.AvatarURL == nil {
		opts.AvatarURL = func(string, string) string { return "" }
	}

	return &Room{
		Code:         opts.Code,
		GameType:     opts.GameType,
		CreatedAt:    opts.CreatedAt,
		MaxPlayers:   opts.MaxPlayers,
		Players:      NewRegistry(),
		AvatarStyles: opts.AvatarStyles,
		AvatarURL:    opts.AvatarURL,
	}
}

func (r *Room) requireHost(playerID string) error {
	if r.HostID == "" || r.HostID != playerID {
		return ErrNotHost
	}
	return nil
}

// normalizeStyle 未知或为空的头像风格回退为第一个可选风格
func (r *Room) normalizeStyle(style string) string {
	if slices.Contains(r.AvatarStyles, style) {
		return style
	}
	return r.AvatarStyles[0]
}

// AddHost 在创建房间时登记房主，房主在建立连接之前处于离线状态
func (r *Room) AddHost(id, name, style string) (*Player, error) {
	name = strings.TrimSpace(name)
	if id == "" || name == "" {
		return nil, fmt.Errorf("%w: 房主 ID 和名称不能为空", ErrValidation)
	}
	if r.HostID != "" {
		return nil, fmt.Errorf("%w: 房间已有房主", ErrValidation)
	}

	host := &Player{
		ID:          id,
		Name:        name,
		Host:        true,
		AvatarStyle: r.normalizeStyle(style),
	}

	r.Players.Add(host)
	r.HostID = id

	return host, nil
}

// Join 处理加入请求。已存在的 ID 视为重连，任何阶段都允许；
// 新玩家只能在花名册开放时加入，并且受人数上限限制
func (r *Room) Join(req JoinGameRequest, conn *Conn) (*Player, bool, error) {
	if req.PlayerID == "" {
		return nil, false, fmt.Errorf("%w: 玩家 ID 不能为空", ErrValidation)
	}

	name := strings.TrimSpace(req.PlayerName)

	if existing, ok := r.Players.Get(req.PlayerID); ok {
		if existing.Bot {
			return nil, false, fmt.Errorf("%w: 不能以机器人身份连接", ErrValidation)
		}

		if existing.Conn != nil && existing.Conn != conn {
			// 旧连接被顶替，关闭后旧的写协程会退出
			existing.Conn.Close()
		}

		p, _ := r.Players.Reconnect(req.PlayerID, conn, name)

		zap.L().Info(
			"玩家按 ID 重连",
			zap.String("room_code", r.Code),
			zap.String("player_id", p.ID),
			zap.String("player_name", p.Name),
		)

		return p, true, nil
	}

	if name == "" {
		return nil, false, fmt.Errorf("%w: 玩家名称不能为空", ErrValidation)
	}

	if err := r.game.RosterOpen(); err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrGameInProgress, err)
	}

	if r.Players.Len() >= r.MaxPlayers {
		return nil, false, fmt.Errorf("%w: 最多 %d 人", ErrRoomFull, r.MaxPlayers)
	}

	player := &Player{
		ID:          req.PlayerID,
		Name:        name,
		Connected:   true,
		AvatarStyle: r.normalizeStyle(req.AvatarStyle),
		Conn:        conn,
	}

	r.Players.Add(player)

	zap.L().Info(
		"玩家加入房间",
		zap.String("room_code", r.Code),
		zap.String("player_id", player.ID),
		zap.String("player_name", player.Name),
	)

	return player, false, nil
}

// AddBot 添加一个机器人，名称按房间内的序号递增
func (r *Room) AddBot(requestorID string) (*Player, error) {
	if err := r.requireHost(requestorID); err != nil {
		return nil, err
	}

	if err := r.game.RosterOpen(); err != nil {
		return nil, err
	}

	if r.Players.Len() >= r.MaxPlayers {
		return nil, fmt.Errorf("%w: 最多 %d 人", ErrRoomFull, r.MaxPlayers)
	}

	r.botSeq++

	bot := &Player{
		ID:          "bot-" + GenShortID(),
		Name:        fmt.Sprintf("Bot %d", r.botSeq),
		Connected:   true,
		Bot:         true,
		AvatarStyle: r.AvatarStyles[(r.botSeq-1)%len(r.AvatarStyles)],
	}

	r.Players.Add(bot)

	zap.L().Info(
		"房主添加机器人",
		zap.String("room_code", r.Code),
		zap.String("bot_id", bot.ID),
		zap.String("bot_name", bot.Name),
	)

	return bot, nil
}

func (r *Room) Kick(requestorID, targetID string) (*Player, error) {
	if err := r.requireHost(requestorID); err != nil {
		return nil, err
	}

	if err := r.game.RosterOpen(); err != nil {
		return nil, err
	}

	if targetID == requestorID {
		return nil, fmt.Errorf("%w: 房主不能踢出自己", ErrValidation)
	}

	if _, ok := r.Players.Get(targetID); !ok {
		return nil, fmt.Errorf("%w: 玩家 %s", ErrNotFound, targetID)
	}

	return r.remove(targetID), nil
}

// Leave 玩家主动离开，任何阶段都允许
func (r *Room) Leave(playerID string) (*Player, error) {
	if _, ok := r.Players.Get(playerID); !ok {
		return nil, fmt.Errorf("%w: 玩家 %s", ErrNotFound, playerID)
	}

	return r.remove(playerID), nil
}

func (r *Room) remove(playerID string) *Player {
	p, _ := r.Players.Remove(playerID)
	r.game.PlayerLeft(playerID)

	zap.L().Info(
		"玩家离开房间",
		zap.String("room_code", r.Code),
		zap.String("player_id", p.ID),
		zap.String("player_name", p.Name),
	)

	return p
}

// Disconnect 根据连接句柄找到玩家并标记离线。
// 句柄已被新连接顶替时返回 false
func (r *Room) Disconnect(conn *Conn) (*Player, bool) {
	p, ok := r.Players.FindByConn(conn)
	if !ok {
		return nil, false
	}

	r.Players.Disconnect(p.ID)
	r.game.PlayerDisconnected(p.ID)

	zap.L().Info(
		"玩家断开连接",
		zap.String("room_code", r.Code),
		zap.String("player_id", p.ID),
	)

	return p, true
}

func (r *Room) ChangeAvatar(playerID, style string) error {
	p, ok := r.Players.Get(playerID)
	if !ok {
		return fmt.Errorf("%w: 玩家 %s", ErrNotFound, playerID)
	}

	if err := r.game.RosterOpen(); err != nil {
		return err
	}

	if !slices.Contains(r.AvatarStyles, style) {
		return fmt.Errorf("%w: 不支持的头像风格 %q", ErrValidation, style)
	}

	p.AvatarStyle = style
	return nil
}

// HasHumans 房间中是否还有真人玩家
func (r *Room) HasHumans() bool {
	return len(r.Players.Humans()) > 0
}

func (r *Room) baseSnapshot(phase Phase, isReady func(string) bool, timer *TimerView) Snapshot {
	players := make([]PlayerView, 0, r.Players.Len())
	readyIDs := make([]string, 0)

	for _, p := range r.Players.List() {
		ready := isReady(p.ID)
		if ready {
			readyIDs = append(readyIDs, p.ID)
		}

		players = append(players, PlayerView{
			ID:          p.ID,
			Name:        p.Name,
			Host:        p.Host,
			Connected:   p.Connected,
			Ready:       ready,
			Bot:         p.Bot,
			AvatarStyle: p.AvatarStyle,
			AvatarURL:   r.AvatarURL(p.ID, p.AvatarStyle),
		})
	}

	styles := make([]string, len(r.AvatarStyles))
	copy(styles, r.AvatarStyles)

	return Snapshot{
		RoomCode:       r.Code,
		GameType:       r.GameType,
		Phase:          phase,
		HostID:         r.HostID,
		Players:        players,
		MaxPlayers:     r.MaxPlayers,
		AvatarStyles:   styles,
		ReadyPlayerIDs: readyIDs,
		Timer:          timer,
	}
}

// BroadcastState 给每位在线玩家发送各自视角的快照
func (r *Room) BroadcastState() {
	for _, p := range r.Players.ConnectedHumans() {
		r.UnicastResp(p.ID, WrapResponse(RESP_GAME_STATE, r.game.SnapshotFor(p.ID)))
	}
}

func (r *Room) BroadcastResp(resp ResponseWrapper) {
	for _, p := range r.Players.ConnectedHumans() {
		r.UnicastResp(p.ID, resp)
	}
}

func (r *Room) UnicastResp(playerID string, resp ResponseWrapper) {
	player, ok := r.Players.Get(playerID)
	if !ok || player.Conn == nil {
		zap.L().Debug(
			"无法找到玩家连接进行单播响应",
			zap.String("room_code", r.Code),
			zap.String("player_id", playerID),
		)
		return
	}

	if !player.Conn.Send(resp) {
		zap.L().Warn(
			"发送单播响应失败：玩家响应通道已满或已关闭",
			zap.String("room_code", r.Code),
			zap.String("player_id", playerID),
		)
		return
	}

	zap.L().Debug(
		"发送单播响应成功",
		zap.String("room_code", r.Code),
		zap.String("player_id", playerID),
		zap.String("response_type", resp.RespType),
	)
}
