package game

import "encoding/json"

// 客户端可以发送的操作
const (
	ACTION_START_GAME          = "startGame"
	ACTION_SUBMIT_CLUE         = "submitClue"
	ACTION_SUBMIT_VOTE         = "submitVote"
	ACTION_READY_UP            = "readyUp"
	ACTION_HOST_SKIP_WORD_SHOW = "hostSkipWordShow"
	ACTION_HOST_END_DISCUSSION = "hostEndDiscussion"
	ACTION_HOST_END_VOTING     = "hostEndVoting"
	ACTION_RESET_GAME          = "resetGame"

	// 以下操作由房间层处理，与具体玩法无关
	ACTION_ADD_BOT       = "addBot"
	ACTION_KICK_PLAYER   = "kickPlayer"
	ACTION_LEAVE_ROOM    = "leaveRoom"
	ACTION_CHANGE_AVATAR = "changeAvatar"
)

// Action 是一个带负载的具名操作
type Action struct {
	Name    string
	Payload json.RawMessage
}

type JoinGameRequest struct {
	RoomCode    string `json:"room_code"`
	PlayerID    string `json:"player_id"`
	PlayerName  string `json:"player_name"`
	AvatarStyle string `json:"avatar_style"`
}

type JoinGameResponse struct {
	Joiner      Player `json:"joiner"`
	Reconnected bool   `json:"reconnected"`
}

type SubmitClueRequest struct {
	Clue string `json:"clue"`
}

type SubmitVoteRequest struct {
	VotedForPlayerID string `json:"votedForPlayerId"`
}

type KickPlayerRequest struct {
	PlayerID string `json:"playerId"`
}

type ChangeAvatarRequest struct {
	AvatarStyle string `json:"avatarStyle"`
}

type KickedResponse struct {
	PlayerID string `json:"playerId"`
}

type RoomClosedResponse struct {
	RoomCode string `json:"roomCode"`
	Reason   string `json:"reason"`
}
