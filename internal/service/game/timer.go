package game

import (
	"time"

	"go.uber.org/zap"
)

// CancelFunc 取消一个尚未触发的计时器，可重复调用
type CancelFunc func()

// Scheduler 负责在指定时长后调用 fire，状态机本身不直接接触计时器原语
type Scheduler interface {
	Schedule(phase Phase, d time.Duration, fire func()) CancelFunc
}

// loopScheduler 在到期时把回调投递到房间的事件循环中执行，
// 保证回调和玩家请求在同一个协程里串行处理
type loopScheduler struct {
	post func(func())
}

func newLoopScheduler(post func(func())) *loopScheduler {
	return &loopScheduler{post: post}
}

func (ls *loopScheduler) Schedule(phase Phase, d time.Duration, fire func()) CancelFunc {
	t := time.AfterFunc(d, func() {
		ls.post(fire)
	})

	return func() {
		t.Stop()
	}
}

// PhaseTimer 是每个房间唯一的计时器槽位
type PhaseTimer struct {
	scheduler Scheduler
	now       func() time.Time

	phase     Phase
	startedAt time.Time
	duration  time.Duration
	cancel    CancelFunc
	token     uint64
}

func NewPhaseTimer(scheduler Scheduler, now func() time.Time) *PhaseTimer {
	if now == nil {
		now = time.Now
	}

	return &PhaseTimer{
		scheduler: scheduler,
		now:       now,
	}
}

// Start 先取消已有的计时器再调度新的，onExpire 只会在该计时器仍然有效时被调用
func (pt *PhaseTimer) Start(phase Phase, d time.Duration, onExpire func()) {
	pt.CancelAll()

	pt.token++
	token := pt.token

	pt.phase = phase
	pt.startedAt = pt.now()
	pt.duration = d

	pt.cancel = pt.scheduler.Schedule(phase, d, func() {
		if pt.cancel == nil || pt.token != token {
			zap.L().Warn(
				"丢弃过期的计时器回调",
				zap.String("phase", phase.String()),
				zap.Uint64("token", token),
				zap.Uint64("current_token", pt.token),
			)
			return
		}

		pt.cancel = nil
		onExpire()
	})
}

func (pt *PhaseTimer) CancelAll() {
	if pt.cancel != nil {
		pt.cancel()
		pt.cancel = nil
	}

	// 令牌递增后，已经投递但尚未执行的回调会被识别为过期
	pt.token++
	pt.duration = 0
}

func (pt *PhaseTimer) Pending() bool {
	return pt.cancel != nil
}

func (pt *PhaseTimer) Phase() Phase {
	return pt.phase
}

// Remaining 返回剩余时长和总时长，没有计时器时 ok 为 false
func (pt *PhaseTimer) Remaining() (remaining, total time.Duration, ok bool) {
	if pt.cancel == nil {
		return 0, 0, false
	}

	remaining = pt.duration - pt.now().Sub(pt.startedAt)
	if remaining < 0 {
		remaining = 0
	}

	return remaining, pt.duration, true
}
