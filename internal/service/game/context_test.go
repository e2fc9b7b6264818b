package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoomJoin_NewPlayerOnlyWhileWaiting(t *testing.T) {
	tg := newTestGame(t, 3)
	require.NoError(t, tg.game.StartGame("host"))

	_, _, err := tg.room.Join(JoinGameRequest{PlayerID: "late", PlayerName: "Late"}, NewConn(1))

	assert.ErrorIs(t, err, ErrGameInProgress)
	assert.Equal(t, 3, tg.room.Players.Len())
}

func TestRoomJoin_ReconnectMidGame(t *testing.T) {
	tg := newTestGame(t, 3)
	tg.toDiscussion(t)

	oldConn := tg.conns["p1"]
	_, ok := tg.room.Disconnect(oldConn)
	require.True(t, ok)

	p, reconnected, err := tg.room.Join(JoinGameRequest{PlayerID: "p1"}, NewConn(1))
	require.NoError(t, err)

	assert.True(t, reconnected)
	assert.True(t, p.Connected)
	assert.Equal(t, "Player 1", p.Name)
	assert.Equal(t, PhaseDiscussion, tg.game.Phase())
}

func TestRoomJoin_ReplacesOldConnection(t *testing.T) {
	tg := newTestGame(t, 2)
	oldConn := tg.conns["p1"]

	tg.connect(t, "p1", "")

	select {
	case <-oldConn.Done():
	default:
		t.Fatal("replaced connection should be closed")
	}

	// 旧连接的断开请求不能影响新连接
	_, ok := tg.room.Disconnect(oldConn)
	assert.False(t, ok)

	p, _ := tg.room.Players.Get("p1")
	assert.True(t, p.Connected)
}

func TestRoomJoin_Validation(t *testing.T) {
	tg := newTestGame(t, 1)

	_, _, err := tg.room.Join(JoinGameRequest{PlayerID: "x"}, NewConn(1))
	assert.ErrorIs(t, err, ErrValidation)

	_, _, err = tg.room.Join(JoinGameRequest{PlayerName: "No ID"}, NewConn(1))
	assert.ErrorIs(t, err, ErrValidation)

	bot, err := tg.room.AddBot("host")
	require.NoError(t, err)
	_, _, err = tg.room.Join(JoinGameRequest{PlayerID: bot.ID}, NewConn(1))
	assert.ErrorIs(t, err, ErrValidation)
}

func TestRoomJoin_Full(t *testing.T) {
	tg := newTestGame(t, 3)
	tg.room.MaxPlayers = 3

	_, _, err := tg.room.Join(JoinGameRequest{PlayerID: "p9", PlayerName: "Nine"}, NewConn(1))

	assert.ErrorIs(t, err, ErrRoomFull)
}

func TestRoomJoin_UnknownAvatarFallsBack(t *testing.T) {
	tg := newTestGame(t, 1)

	p, _, err := tg.room.Join(JoinGameRequest{PlayerID: "p1", PlayerName: "One", AvatarStyle: "bottts"}, NewConn(1))
	require.NoError(t, err)
	assert.Equal(t, "bottts", p.AvatarStyle)

	p, _, err = tg.room.Join(JoinGameRequest{PlayerID: "p2", PlayerName: "Two", AvatarStyle: "unknown"}, NewConn(1))
	require.NoError(t, err)
	assert.Equal(t, "pixel", p.AvatarStyle)
}

func TestRoomKick(t *testing.T) {
	tg := newTestGame(t, 4)

	_, err := tg.room.Kick("p1", "p2")
	assert.ErrorIs(t, err, ErrNotHost)

	_, err = tg.room.Kick("host", "host")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = tg.room.Kick("host", "ghost")
	assert.ErrorIs(t, err, ErrNotFound)

	kicked, err := tg.room.Kick("host", "p3")
	require.NoError(t, err)
	assert.Equal(t, "p3", kicked.ID)
	assert.Equal(t, []string{"host", "p1", "p2"}, tg.room.Players.IDs())

	require.NoError(t, tg.game.StartGame("host"))
	_, err = tg.room.Kick("host", "p1")
	assert.ErrorIs(t, err, ErrPhaseMismatch)
}

func TestRoomChangeAvatar(t *testing.T) {
	tg := newTestGame(t, 2)

	require.NoError(t, tg.room.ChangeAvatar("p1", "bottts"))
	p, _ := tg.room.Players.Get("p1")
	assert.Equal(t, "bottts", p.AvatarStyle)

	assert.ErrorIs(t, tg.room.ChangeAvatar("p1", "cubism"), ErrValidation)
	assert.ErrorIs(t, tg.room.ChangeAvatar("ghost", "pixel"), ErrNotFound)
}

func TestRoomBroadcastState_PerPlayerView(t *testing.T) {
	tg := newTestGame(t, 3)
	require.NoError(t, tg.game.StartGame("host"))

	tg.room.BroadcastState()

	for id, conn := range tg.conns {
		var last ResponseWrapper
	drain:
		for {
			select {
			case resp := <-conn.Outbox():
				last = resp
			default:
				break drain
			}
		}

		require.Equal(t, RESP_GAME_STATE, last.RespType, id)
		snap, ok := last.Data.(Snapshot)
		require.True(t, ok)

		view, ok := snap.Round.(WordShowRound)
		require.True(t, ok)
		assert.Equal(t, id == tg.game.round.impostorID, view.IsImpostor, id)
	}
}
