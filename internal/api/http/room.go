package http

import (
	"errors"

	"word-impostor-be/internal/service/dto"
	"word-impostor-be/internal/service/game"
	"word-impostor-be/internal/state"

	"github.com/kataras/iris/v12"
	"github.com/skip2/go-qrcode"
	"go.uber.org/zap"
)

const QR_CODE_SIZE = 256

func statusFor(err error) int {
	switch {
	case errors.Is(err, game.ErrNotFound):
		return iris.StatusNotFound
	case errors.Is(err, game.ErrNotHost):
		return iris.StatusForbidden
	case errors.Is(err, game.ErrRoomFull), errors.Is(err, game.ErrGameInProgress):
		return iris.StatusConflict
	case errors.Is(err, game.ErrValidation):
		return iris.StatusBadRequest
	default:
		return iris.StatusInternalServerError
	}
}

func writeError(ctx iris.Context, err error) {
	ctx.StatusCode(statusFor(err))
	ctx.JSON(iris.Map{
		"error": err.Error(),
	})
}

func CreateRoom(appState *state.AppState) iris.Handler {
	return func(ctx iris.Context) {
		var req dto.CreateRoomRequest

		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StatusCode(iris.StatusBadRequest)
			ctx.JSON(iris.Map{
				"error": "请求参数无效",
			})
			return
		}

		resp, err := appState.RoomSvc.CreateRoom(req)
		if err != nil {
			writeError(ctx, err)
			return
		}

		ctx.StatusCode(iris.StatusCreated)
		ctx.JSON(resp)
	}
}

func ListRooms(appState *state.AppState) iris.Handler {
	return func(ctx iris.Context) {
		ctx.JSON(dto.ListRoomsResponse{
			Rooms: appState.RoomSvc.ListRooms(),
		})
	}
}

func GetRoom(appState *state.AppState) iris.Handler {
	return func(ctx iris.Context) {
		summary, err := appState.RoomSvc.GetRoom(ctx.Params().Get("code"))
		if err != nil {
			writeError(ctx, err)
			return
		}

		ctx.JSON(summary)
	}
}

// DeleteRoom 只有房主可以删除房间，房主 ID 通过 host_id 查询参数传入
func DeleteRoom(appState *state.AppState) iris.Handler {
	return func(ctx iris.Context) {
		code := ctx.Params().Get("code")

		summary, err := appState.RoomSvc.GetRoom(code)
		if err != nil {
			writeError(ctx, err)
			return
		}

		if hostID := ctx.URLParam("host_id"); hostID == "" || hostID != summary.HostID {
			writeError(ctx, game.ErrNotHost)
			return
		}

		if err := appState.RoomSvc.DeleteRoom(code, "房主删除了房间"); err != nil {
			writeError(ctx, err)
			return
		}

		ctx.StatusCode(iris.StatusNoContent)
	}
}

// RoomQRCode 返回加入链接的二维码图片
func RoomQRCode(appState *state.AppState) iris.Handler {
	return func(ctx iris.Context) {
		summary, err := appState.RoomSvc.GetRoom(ctx.Params().Get("code"))
		if err != nil {
			writeError(ctx, err)
			return
		}

		png, err := qrcode.Encode(appState.RoomSvc.JoinURL(summary.Code), qrcode.Medium, QR_CODE_SIZE)
		if err != nil {
			zap.L().Error("生成二维码失败", zap.String("room_code", summary.Code), zap.Error(err))
			writeError(ctx, err)
			return
		}

		ctx.ContentType("image/png")
		ctx.Write(png)
	}
}
