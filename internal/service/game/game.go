package game

import (
	"fmt"
	"math/rand/v2"
	"sort"
	"time"
)

// Game 是一种玩法需要提供的能力，房间层只通过它驱动游戏
type Game interface {
	Type() string
	Phase() Phase

	// RosterOpen 在允许增删玩家的阶段返回 nil
	RosterOpen() error

	ApplyAction(playerID string, action Action) error
	SnapshotFor(playerID string) Snapshot

	PlayerLeft(playerID string)
	PlayerDisconnected(playerID string)

	// Close 取消所有计时器
	Close()
}

// Options 是创建一局游戏所需的依赖和参数
type Options struct {
	MinPlayers         int
	WordShowDuration   time.Duration
	DiscussionDuration time.Duration
	VotingDuration     time.Duration
	WordBank           []WordPair

	Scheduler Scheduler
	Now       func() time.Time
	Rand      *rand.Rand
}

func (o Options) withDefaults() Options {
	if o.MinPlayers <= 0 {
		o.MinPlayers = 3
	}
	if o.WordShowDuration <= 0 {
		o.WordShowDuration = 5 * time.Second
	}
	if o.DiscussionDuration <= 0 {
		o.DiscussionDuration = 90 * time.Second
	}
	if o.VotingDuration <= 0 {
		o.VotingDuration = 30 * time.Second
	}
	if len(o.WordBank) == 0 {
		o.WordBank = DefaultWordBank()
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Rand == nil {
		o.Rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return o
}

type Constructor func(room *Room, opts Options) Game

var gameTypes = map[string]Constructor{}

// Register 注册一种玩法，通常在 init 中调用
func Register(gameType string, ctor Constructor) {
	if _, exists := gameTypes[gameType]; exists {
		panic("重复注册玩法: " + gameType)
	}

	gameTypes[gameType] = ctor
}

func GameTypes() []string {
	types := make([]string, 0, len(gameTypes))
	for t := range gameTypes {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

func IsKnownGameType(gameType string) bool {
	_, ok := gameTypes[gameType]
	return ok
}

// NewGame 按玩法标签创建游戏并挂到房间上
func NewGame(room *Room, opts Options) (Game, error) {
	ctor, ok := gameTypes[room.GameType]
	if !ok {
		return nil, fmt.Errorf("%w: 不支持的玩法 %q", ErrValidation, room.GameType)
	}

	if opts.Scheduler == nil {
		return nil, fmt.Errorf("%w: 缺少计时调度器", ErrValidation)
	}

	g := ctor(room, opts.withDefaults())
	room.game = g

	return g, nil
}
