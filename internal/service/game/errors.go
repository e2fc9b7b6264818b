package game

import (
	"errors"
	"fmt"
	"strings"
)

// 所有面向玩家的错误都从这些哨兵错误派生，调用方用 errors.Is 分类
var (
	ErrPhaseMismatch       = errors.New("当前阶段不允许该操作")
	ErrNotHost             = errors.New("只有房主可以执行该操作")
	ErrDuplicateSubmission = errors.New("本轮已经提交过")
	ErrNotFound            = errors.New("目标不存在")
	ErrRoomFull            = errors.New("房间已满")
	ErrGameInProgress      = errors.New("游戏进行中，无法加入")
	ErrValidation          = errors.New("请求参数无效")
	ErrNotEnoughPlayers    = errors.New("玩家数量不足")
	ErrUnknownAction       = errors.New("未知的操作")
	ErrRoomClosed          = errors.New("房间已关闭")
)

// PhaseError 描述阶段不匹配，同时给出要求的阶段和实际阶段
type PhaseError struct {
	Required []Phase
	Actual   Phase
}

func (e *PhaseError) Error() string {
	required := make([]string, 0, len(e.Required))
	for _, p := range e.Required {
		required = append(required, string(p))
	}

	return fmt.Sprintf(
		"%s：需要处于 %s 阶段，当前为 %s 阶段",
		ErrPhaseMismatch.Error(),
		strings.Join(required, " 或 "),
		e.Actual,
	)
}

func (e *PhaseError) Is(target error) bool {
	return target == ErrPhaseMismatch
}

func requirePhase(actual Phase, required ...Phase) error {
	for _, p := range required {
		if p == actual {
			return nil
		}
	}

	return &PhaseError{Required: required, Actual: actual}
}
