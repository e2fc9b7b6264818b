package dto

import "time"

type CreateRoomRequest struct {
	// 可选，为空时由服务端生成
	HostID      string `json:"host_id"`
	HostName    string `json:"host_name"`
	GameType    string `json:"game_type"`
	AvatarStyle string `json:"avatar_style"`
}

type CreateRoomResponse struct {
	RoomCode string `json:"room_code"`
	HostID   string `json:"host_id"`
	GameType string `json:"game_type"`
	JoinURL  string `json:"join_url"`
}

type RoomSummary struct {
	Code        string    `json:"code"`
	GameType    string    `json:"game_type"`
	Phase       string    `json:"phase"`
	HostID      string    `json:"host_id"`
	PlayerCount int       `json:"player_count"`
	MaxPlayers  int       `json:"max_players"`
	CreatedAt   time.Time `json:"created_at"`
}

type ListRoomsResponse struct {
	Rooms []RoomSummary `json:"rooms"`
}
