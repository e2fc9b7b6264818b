package game

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMachine(t *testing.T, opts Options, onEmpty func(string)) *GameMachine {
	t.Helper()

	room := NewRoom(RoomOptions{Code: "LOOP42", GameType: TYPE_WORD_IMPOSTOR})
	_, err := room.AddHost("host", "Host", "")
	require.NoError(t, err)

	gm, err := NewGameMachine(room, opts, onEmpty)
	require.NoError(t, err)

	go gm.Start()
	t.Cleanup(func() { gm.Stop("test finished") })

	return gm
}

func joinMachine(t *testing.T, gm *GameMachine, id, name string) *Conn {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	conn := NewConn(64)
	_, _, err := gm.Join(ctx, JoinGameRequest{PlayerID: id, PlayerName: name}, conn)
	require.NoError(t, err)

	return conn
}

func waitForPhase(t *testing.T, gm *GameMachine, phase Phase) {
	t.Helper()

	require.Eventually(t, func() bool {
		return gm.Summary().Phase == phase
	}, 2*time.Second, 5*time.Millisecond, "phase %s not reached", phase)
}

func TestGameMachine_TimersDriveFullRound(t *testing.T) {
	gm := newTestMachine(t, Options{
		WordShowDuration:   20 * time.Millisecond,
		DiscussionDuration: 20 * time.Millisecond,
		VotingDuration:     20 * time.Millisecond,
	}, nil)

	hostConn := joinMachine(t, gm, "host", "")
	joinMachine(t, gm, "p1", "One")
	joinMachine(t, gm, "p2", "Two")

	assert.Equal(t, 3, gm.Summary().PlayerCount)

	require.NoError(t, gm.Submit(RequestWrapper{ReqType: ACTION_START_GAME, PlayerID: "host", Conn: hostConn}))

	waitForPhase(t, gm, PhaseResults)
}

func TestGameMachine_JoinRejectedMidGame(t *testing.T) {
	gm := newTestMachine(t, Options{
		WordShowDuration:   time.Minute,
		DiscussionDuration: time.Minute,
		VotingDuration:     time.Minute,
	}, nil)

	hostConn := joinMachine(t, gm, "host", "")
	joinMachine(t, gm, "p1", "One")
	joinMachine(t, gm, "p2", "Two")

	require.NoError(t, gm.Submit(RequestWrapper{ReqType: ACTION_START_GAME, PlayerID: "host", Conn: hostConn}))
	waitForPhase(t, gm, PhaseWordShow)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, _, err := gm.Join(ctx, JoinGameRequest{PlayerID: "late", PlayerName: "Late"}, NewConn(1))
	assert.ErrorIs(t, err, ErrGameInProgress)

	_, reconnected, err := gm.Join(ctx, JoinGameRequest{PlayerID: "p1"}, NewConn(8))
	require.NoError(t, err)
	assert.True(t, reconnected)
}

func TestGameMachine_ErrorGoesToRequester(t *testing.T) {
	gm := newTestMachine(t, Options{}, nil)

	joinMachine(t, gm, "host", "")
	p1 := joinMachine(t, gm, "p1", "One")

	require.NoError(t, gm.Submit(RequestWrapper{ReqType: ACTION_START_GAME, PlayerID: "p1", Conn: p1}))

	require.Eventually(t, func() bool {
		for {
			select {
			case resp := <-p1.Outbox():
				if resp.RespType == RESP_ERROR {
					return true
				}
			default:
				return false
			}
		}
	}, time.Second, 5*time.Millisecond)
}

func TestGameMachine_HostLeaveTriggersOnEmpty(t *testing.T) {
	emptied := make(chan string, 1)
	gm := newTestMachine(t, Options{}, func(code string) { emptied <- code })

	hostConn := joinMachine(t, gm, "host", "")

	require.NoError(t, gm.Submit(RequestWrapper{ReqType: ACTION_LEAVE_ROOM, PlayerID: "host", Conn: hostConn}))

	select {
	case code := <-emptied:
		assert.Equal(t, "LOOP42", code)
	case <-time.After(time.Second):
		t.Fatal("onEmpty was not called")
	}
}

func TestGameMachine_StopClosesConnections(t *testing.T) {
	gm := newTestMachine(t, Options{}, nil)
	conn := joinMachine(t, gm, "host", "")

	gm.Stop("bye")
	<-gm.Done()

	select {
	case <-conn.Done():
	case <-time.After(time.Second):
		t.Fatal("connection was not closed")
	}

	closed := false
	for len(conn.Outbox()) > 0 {
		if resp := <-conn.Outbox(); resp.RespType == RESP_ROOM_CLOSED {
			closed = true
		}
	}
	assert.True(t, closed)

	assert.ErrorIs(t, gm.Submit(RequestWrapper{ReqType: ACTION_READY_UP, PlayerID: "host"}), ErrRoomClosed)

	_, _, err := gm.Join(context.Background(), JoinGameRequest{PlayerID: "x", PlayerName: "X"}, NewConn(1))
	assert.ErrorIs(t, err, ErrRoomClosed)
}

func TestGameMachine_JoinWaitsForResultAfterHandoff(t *testing.T) {
	room := NewRoom(RoomOptions{Code: "SLOW01", GameType: TYPE_WORD_IMPOSTOR})
	_, err := room.AddHost("host", "Host", "")
	require.NoError(t, err)

	gm, err := NewGameMachine(room, Options{}, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	conn := NewConn(8)

	type joinOutcome struct {
		player Player
		err    error
	}
	outcome := make(chan joinOutcome, 1)

	go func() {
		p, _, err := gm.Join(ctx, JoinGameRequest{PlayerID: "p1", PlayerName: "One"}, conn)
		outcome <- joinOutcome{player: p, err: err}
	}()

	// 事件循环接手请求后调用方的 ctx 才到期
	jr := <-gm.joinCh
	cancel()
	gm.handleJoin(jr)

	select {
	case res := <-outcome:
		require.NoError(t, res.err)
		assert.Equal(t, "p1", res.player.ID)
	case <-time.After(time.Second):
		t.Fatal("join did not return")
	}

	p, ok := room.Players.Get("p1")
	require.True(t, ok)
	assert.Same(t, conn, p.Conn)
}
