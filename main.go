package main

import (
	"word-impostor-be/internal/api/http"
	"word-impostor-be/internal/config"
	"word-impostor-be/internal/logger"
	"word-impostor-be/internal/service"
	"word-impostor-be/internal/service/avatar"
	"word-impostor-be/internal/service/game"
	"word-impostor-be/internal/state"

	"go.uber.org/zap"
)

func main() {
	// 加载配置
	cfg := config.InitConfig()

	// 初始化日志器
	logger.InitLogger(cfg.LogLevel)
	defer zap.L().Sync()

	roomSvc := service.NewRoomService(service.RoomServiceOptions{
		MaxPlayers:    cfg.Room.MaxPlayers,
		MaxAge:        cfg.Room.MaxAge,
		SweepInterval: cfg.Room.SweepInterval,
		CodeLength:    cfg.Room.CodeLength,
		PublicBaseURL: cfg.PublicBaseURL,
		Game: game.Options{
			MinPlayers:         cfg.Game.MinPlayers,
			WordShowDuration:   cfg.Game.WordShowDuration,
			DiscussionDuration: cfg.Game.DiscussionDuration,
			VotingDuration:     cfg.Game.VotingDuration,
		},
		Avatars: avatar.NewService(cfg.Avatar.URLTemplate, cfg.Avatar.Styles),
	})

	// 组装应用状态
	appState := state.NewAppState(cfg, roomSvc)
	defer appState.Close()

	// 启动服务器
	if err := http.RunServer(appState); err != nil {
		zap.L().Error("服务器退出", zap.Error(err))
	}
}
