package state

import (
	"word-impostor-be/internal/config"
	"word-impostor-be/internal/service"
)

// AppState 汇总各个处理器共享的配置和服务
type AppState struct {
	Cfg     *config.AppConfig
	RoomSvc *service.RoomService
}

func NewAppState(cfg *config.AppConfig, roomSvc *service.RoomService) *AppState {
	return &AppState{Cfg: cfg, RoomSvc: roomSvc}
}

// Close 关闭所有房间，在服务器退出时调用
func (s *AppState) Close() {
	s.RoomSvc.Close()
}
