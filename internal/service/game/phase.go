package game

// Phase 是一局游戏所处的阶段
type Phase string

// 游戏总体分为 5 个阶段，分别是：
// 1. 等待阶段（WAITING）：玩家加入房间，房主可以添加机器人，等待房主开始游戏
// 2. 看词阶段（WORD_SHOW）：每位玩家查看自己的词语（卧底只能看到提示）
// 3. 讨论阶段（DISCUSSION）：每位玩家提交一条线索
// 4. 投票阶段（VOTING）：玩家投票选出卧底
// 5. 结果阶段（RESULTS）：公布投票结果，房主可以重置回等待阶段
const (
	PhaseWaiting    Phase = "WAITING"
	PhaseWordShow   Phase = "WORD_SHOW"
	PhaseDiscussion Phase = "DISCUSSION"
	PhaseVoting     Phase = "VOTING"
	PhaseResults    Phase = "RESULTS"
)

var phaseEdges = map[Phase]Phase{
	PhaseWaiting:    PhaseWordShow,
	PhaseWordShow:   PhaseDiscussion,
	PhaseDiscussion: PhaseVoting,
	PhaseVoting:     PhaseResults,
	PhaseResults:    PhaseWaiting,
}

func (p Phase) String() string {
	return string(p)
}

// Next 返回该阶段唯一合法的后继阶段
func (p Phase) Next() (Phase, bool) {
	next, ok := phaseEdges[p]
	return next, ok
}

func (p Phase) CanTransitionTo(target Phase) bool {
	next, ok := p.Next()
	return ok && next == target
}
