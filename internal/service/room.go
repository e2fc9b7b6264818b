package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"word-impostor-be/internal/service/avatar"
	"word-impostor-be/internal/service/dto"
	"word-impostor-be/internal/service/game"

	"go.uber.org/zap"
)

type RoomServiceOptions struct {
	MaxPlayers    int
	MaxAge        time.Duration
	SweepInterval time.Duration
	CodeLength    int
	PublicBaseURL string

	Game    game.Options
	Avatars *avatar.Service

	Now          func() time.Time
	GenerateCode func(length int) string
}

// RoomService 是进程内的房间目录，每个房间对应一个独立的事件循环
type RoomService struct {
	opts  RoomServiceOptions
	state *roomServiceState
}

type roomServiceState struct {
	mu sync.RWMutex

	// 从房间码到房间事件循环的映射
	rooms map[string]*game.GameMachine

	cleanUpDone chan struct{}
	closeOnce   sync.Once
}

func NewRoomService(opts RoomServiceOptions) *RoomService {
	if opts.CodeLength <= 0 {
		opts.CodeLength = 6
	}
	if opts.MaxPlayers <= 0 {
		opts.MaxPlayers = 8
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.GenerateCode == nil {
		opts.GenerateCode = GenerateRoomCode
	}
	if opts.Avatars == nil {
		opts.Avatars = avatar.NewService("", []string{"default"})
	}

	rs := &RoomService{
		opts: opts,
		state: &roomServiceState{
			rooms:       make(map[string]*game.GameMachine),
			cleanUpDone: make(chan struct{}),
		},
	}

	// 启动一个 goroutine 定期清理过期的房间
	if opts.SweepInterval > 0 && opts.MaxAge > 0 {
		go rs.startCleanupLoop()
	}

	return rs
}

func (rs *RoomService) startCleanupLoop() {
	ticker := time.NewTicker(rs.opts.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rs.state.cleanUpDone:
			return

		case <-ticker.C:
			if n := rs.Sweep(rs.opts.Now()); n > 0 {
				zap.L().Info("清理过期房间", zap.Int("count", n))
			}
		}
	}
}

// Sweep 删除创建时间超过 MaxAge 的房间，返回删除的数量
func (rs *RoomService) Sweep(now time.Time) int {
	rs.state.mu.Lock()
	defer rs.state.mu.Unlock()

	removed := 0

	for code, gm := range rs.state.rooms {
		if now.Sub(gm.Summary().CreatedAt) <= rs.opts.MaxAge {
			continue
		}

		zap.L().Info("房间超过最大存活时间，开始清理", zap.String("room_code", code))

		delete(rs.state.rooms, code)
		gm.Stop("房间已过期")
		removed++
	}

	return removed
}

// Close 停止清理协程并关闭所有房间
func (rs *RoomService) Close() {
	rs.state.closeOnce.Do(func() {
		close(rs.state.cleanUpDone)
	})

	rs.state.mu.Lock()
	defer rs.state.mu.Unlock()

	for code, gm := range rs.state.rooms {
		delete(rs.state.rooms, code)
		gm.Stop("服务器关闭")
	}
}

func (rs *RoomService) JoinURL(code string) string {
	return strings.TrimRight(rs.opts.PublicBaseURL, "/") + "/join/" + code
}

func (rs *RoomService) CreateRoom(req dto.CreateRoomRequest) (dto.CreateRoomResponse, error) {
	if strings.TrimSpace(req.HostName) == "" {
		return dto.CreateRoomResponse{}, fmt.Errorf("%w: 房主名称不能为空", game.ErrValidation)
	}

	if req.GameType == "" {
		req.GameType = game.TYPE_WORD_IMPOSTOR
	}
	if !game.IsKnownGameType(req.GameType) {
		return dto.CreateRoomResponse{}, fmt.Errorf("%w: 不支持的玩法 %q，可选 %s", game.ErrValidation, req.GameType, strings.Join(game.GameTypes(), ", "))
	}

	hostID := req.HostID
	if hostID == "" {
		hostID = game.GenID()
	}

	rs.state.mu.Lock()
	defer rs.state.mu.Unlock()

	code := uniqueRoomCode(rs.opts.CodeLength, func(c string) bool {
		_, exists := rs.state.rooms[c]
		return exists
	}, rs.opts.GenerateCode)

	room := game.NewRoom(game.RoomOptions{
		Code:         code,
		GameType:     req.GameType,
		CreatedAt:    rs.opts.Now(),
		MaxPlayers:   rs.opts.MaxPlayers,
		AvatarStyles: rs.opts.Avatars.Styles(),
		AvatarURL:    rs.opts.Avatars.URL,
	})

	if _, err := room.AddHost(hostID, req.HostName, req.AvatarStyle); err != nil {
		return dto.CreateRoomResponse{}, err
	}

	gm, err := game.NewGameMachine(room, rs.opts.Game, rs.removeEmptyRoom)
	if err != nil {
		return dto.CreateRoomResponse{}, err
	}

	rs.state.rooms[code] = gm

	// 创建对应的独立 goroutine 来处理这个房间的事件
	go gm.Start()

	zap.L().Info(
		"房间创建",
		zap.String("room_code", code),
		zap.String("game_type", req.GameType),
		zap.String("host_id", hostID),
		zap.String("host_name", req.HostName),
	)

	return dto.CreateRoomResponse{
		RoomCode: code,
		HostID:   hostID,
		GameType: req.GameType,
		JoinURL:  rs.JoinURL(code),
	}, nil
}

func (rs *RoomService) removeEmptyRoom(code string) {
	if err := rs.DeleteRoom(code, "房间已没有玩家"); err != nil {
		zap.L().Warn("回收空房间失败", zap.String("room_code", code), zap.Error(err))
	}
}

func (rs *RoomService) machine(code string) (*game.GameMachine, error) {
	rs.state.mu.RLock()
	defer rs.state.mu.RUnlock()

	gm, ok := rs.state.rooms[strings.ToUpper(code)]
	if !ok {
		return nil, fmt.Errorf("%w: 房间 %s", game.ErrNotFound, code)
	}

	return gm, nil
}

// JoinRoom 把连接交给房间的事件循环，成功后返回事件循环以便后续投递请求
func (rs *RoomService) JoinRoom(
	ctx context.Context,
	req game.JoinGameRequest,
	conn *game.Conn,
) (*game.GameMachine, game.Player, error) {
	if req.RoomCode == "" {
		return nil, game.Player{}, fmt.Errorf("%w: 房间码不能为空", game.ErrValidation)
	}

	gm, err := rs.machine(req.RoomCode)
	if err != nil {
		return nil, game.Player{}, err
	}

	if req.PlayerID == "" {
		req.PlayerID = game.GenID()
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	player, reconnected, err := gm.Join(ctx, req, conn)
	if err != nil {
		zap.L().Warn(
			"加入房间失败",
			zap.String("room_code", req.RoomCode),
			zap.String("player_id", req.PlayerID),
			zap.Error(err),
		)
		return nil, game.Player{}, err
	}

	zap.L().Info(
		"房间接纳玩家",
		zap.String("room_code", req.RoomCode),
		zap.String("player_id", player.ID),
		zap.Bool("reconnected", reconnected),
	)

	return gm, player, nil
}

func (rs *RoomService) GetRoom(code string) (dto.RoomSummary, error) {
	gm, err := rs.machine(code)
	if err != nil {
		return dto.RoomSummary{}, err
	}

	return toRoomSummary(gm.Summary()), nil
}

func (rs *RoomService) ListRooms() []dto.RoomSummary {
	rs.state.mu.RLock()
	summaries := make([]dto.RoomSummary, 0, len(rs.state.rooms))
	for _, gm := range rs.state.rooms {
		summaries = append(summaries, toRoomSummary(gm.Summary()))
	}
	rs.state.mu.RUnlock()

	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].CreatedAt.Equal(summaries[j].CreatedAt) {
			return summaries[i].Code < summaries[j].Code
		}
		return summaries[i].CreatedAt.Before(summaries[j].CreatedAt)
	})

	return summaries
}

func (rs *RoomService) DeleteRoom(code, reason string) error {
	code = strings.ToUpper(code)

	rs.state.mu.Lock()
	gm, ok := rs.state.rooms[code]
	if ok {
		delete(rs.state.rooms, code)
	}
	rs.state.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: 房间 %s", game.ErrNotFound, code)
	}

	gm.Stop(reason)

	zap.L().Info("房间删除", zap.String("room_code", code), zap.String("reason", reason))

	return nil
}

func toRoomSummary(s game.Summary) dto.RoomSummary {
	return dto.RoomSummary{
		Code:        s.Code,
		GameType:    s.GameType,
		Phase:       s.Phase.String(),
		HostID:      s.HostID,
		PlayerCount: s.PlayerCount,
		MaxPlayers:  s.MaxPlayers,
		CreatedAt:   s.CreatedAt,
	}
}
