package game

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type scheduledTimer struct {
	phase     Phase
	duration  time.Duration
	fire      func()
	cancelled bool
	fired     bool
}

// manualScheduler 只记录计时器，由测试决定何时触发
type manualScheduler struct {
	timers []*scheduledTimer
}

func (s *manualScheduler) Schedule(phase Phase, d time.Duration, fire func()) CancelFunc {
	t := &scheduledTimer{phase: phase, duration: d, fire: fire}
	s.timers = append(s.timers, t)

	return func() {
		t.cancelled = true
	}
}

func (s *manualScheduler) pending() []*scheduledTimer {
	out := make([]*scheduledTimer, 0)
	for _, t := range s.timers {
		if !t.cancelled && !t.fired {
			out = append(out, t)
		}
	}
	return out
}

func (s *manualScheduler) fire(t *testing.T) {
	t.Helper()

	pending := s.pending()
	require.Len(t, pending, 1, "expected exactly one pending timer")

	pending[0].fired = true
	pending[0].fire()
}

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

type testGame struct {
	room  *Room
	game  *wordImpostorGame
	sched *manualScheduler
	clock *fakeClock
	conns map[string]*Conn
}

func newTestGame(t *testing.T, humans int) *testGame {
	t.Helper()

	sched := &manualScheduler{}
	clock := &fakeClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}

	room := NewRoom(RoomOptions{
		Code:         "ABC123",
		GameType:     TYPE_WORD_IMPOSTOR,
		CreatedAt:    clock.now,
		MaxPlayers:   8,
		AvatarStyles: []string{"pixel", "bottts"},
		AvatarURL: func(id, style string) string {
			return "https://avatars.test/" + style + "/" + id
		},
	})

	_, err := room.AddHost("host", "Host", "pixel")
	require.NoError(t, err)

	g, err := NewGame(room, Options{
		MinPlayers:         3,
		WordShowDuration:   5 * time.Second,
		DiscussionDuration: 60 * time.Second,
		VotingDuration:     30 * time.Second,
		Scheduler:          sched,
		Now:                clock.Now,
		Rand:               rand.New(rand.NewPCG(1, 2)),
	})
	require.NoError(t, err)

	tg := &testGame{
		room:  room,
		game:  g.(*wordImpostorGame),
		sched: sched,
		clock: clock,
		conns: make(map[string]*Conn),
	}

	tg.connect(t, "host", "")
	for i := 1; i < humans; i++ {
		tg.connect(t, fmt.Sprintf("p%d", i), fmt.Sprintf("Player %d", i))
	}

	return tg
}

func (tg *testGame) connect(t *testing.T, id, name string) *Player {
	t.Helper()

	conn := NewConn(32)
	p, _, err := tg.room.Join(JoinGameRequest{PlayerID: id, PlayerName: name}, conn)
	require.NoError(t, err)

	tg.conns[id] = conn
	return p
}

// toDiscussion 开始游戏并跳过看词阶段
func (tg *testGame) toDiscussion(t *testing.T) {
	t.Helper()
	require.NoError(t, tg.game.StartGame("host"))
	require.NoError(t, tg.game.HostSkipWordShow("host"))
	require.Equal(t, PhaseDiscussion, tg.game.Phase())
}

func (tg *testGame) toVoting(t *testing.T) {
	t.Helper()
	tg.toDiscussion(t)
	require.NoError(t, tg.game.HostEndDiscussion("host"))
	require.Equal(t, PhaseVoting, tg.game.Phase())
}

// nonImpostors 返回除卧底外的玩家 ID，按加入顺序
func (tg *testGame) nonImpostors() []string {
	ids := make([]string, 0)
	for _, id := range tg.room.Players.IDs() {
		if id != tg.game.round.impostorID {
			ids = append(ids, id)
		}
	}
	return ids
}

func mustMarshal(v any) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		panic("Failed to marshal: " + err.Error())
	}

	return data
}
