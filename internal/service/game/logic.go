package game

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
)

const TYPE_WORD_IMPOSTOR = "word-impostor"

const maxClueLength = 120

func init() {
	Register(TYPE_WORD_IMPOSTOR, NewWordImpostorGame)
}

// StageHandler 负责一个阶段的进入和退出逻辑，
// 阶段内的玩家操作由 wordImpostorGame 的方法处理
type StageHandler interface {
	Stage() Phase

	OnEnter(g *wordImpostorGame)
	OnExit(g *wordImpostorGame)

	// Duration 为 0 表示该阶段没有时间限制
	Duration(g *wordImpostorGame) time.Duration
}

type wordImpostorGame struct {
	room *Room
	opts Options

	phase   Phase
	handler StageHandler
	round   *round
	timer   *PhaseTimer
	bots    *botPolicy
}

func NewWordImpostorGame(room *Room, opts Options) Game {
	g := &wordImpostorGame{
		room:    room,
		opts:    opts,
		phase:   PhaseWaiting,
		handler: stageHandlers[PhaseWaiting],
		round:   newRound(),
		timer:   NewPhaseTimer(opts.Scheduler, opts.Now),
		bots:    newBotPolicy(opts.Rand),
	}

	return g
}

func (g *wordImpostorGame) Type() string {
	return TYPE_WORD_IMPOSTOR
}

func (g *wordImpostorGame) Phase() Phase {
	return g.phase
}

func (g *wordImpostorGame) RosterOpen() error {
	return requirePhase(g.phase, PhaseWaiting)
}

func (g *wordImpostorGame) Close() {
	g.timer.CancelAll()
}

// transition 是所有阶段切换的唯一入口，无论由计时器、全员就绪还是房主触发：
// 先取消计时器，再退出旧阶段、进入新阶段，最后为新阶段调度计时器
func (g *wordImpostorGame) transition(next Phase) {
	if !g.phase.CanTransitionTo(next) {
		zap.L().Error(
			"非法的阶段切换",
			zap.String("room_code", g.room.Code),
			zap.String("from", g.phase.String()),
			zap.String("to", next.String()),
		)
		return
	}

	g.timer.CancelAll()

	prev := g.phase
	g.handler.OnExit(g)
	g.round.clearReady()

	g.phase = next
	g.handler = stageHandlers[next]
	g.handler.OnEnter(g)

	if d := g.handler.Duration(g); d > 0 {
		g.timer.Start(next, d, func() {
			g.onTimeout(next)
		})
	}

	zap.L().Info(
		"阶段切换",
		zap.String("room_code", g.room.Code),
		zap.String("from", prev.String()),
		zap.String("to", next.String()),
	)
}

func (g *wordImpostorGame) onTimeout(phase Phase) {
	if g.phase != phase {
		zap.L().Error(
			"计时器到期时房间已离开对应阶段",
			zap.String("room_code", g.room.Code),
			zap.String("timer_phase", phase.String()),
			zap.String("phase", g.phase.String()),
		)
		return
	}

	next, _ := phase.Next()
	g.transition(next)
}

func (g *wordImpostorGame) player(playerID string) (*Player, error) {
	p, ok := g.room.Players.Get(playerID)
	if !ok {
		return nil, fmt.Errorf("%w: 玩家 %s", ErrNotFound, playerID)
	}
	return p, nil
}

// hostAction 校验房主身份和阶段后执行阶段切换
func (g *wordImpostorGame) hostAction(playerID string, required Phase) error {
	if _, err := g.player(playerID); err != nil {
		return err
	}
	if err := g.room.requireHost(playerID); err != nil {
		return err
	}
	if err := requirePhase(g.phase, required); err != nil {
		return err
	}

	next, _ := required.Next()
	g.transition(next)

	return nil
}

func (g *wordImpostorGame) StartGame(playerID string) error {
	if _, err := g.player(playerID); err != nil {
		return err
	}
	if err := g.room.requireHost(playerID); err != nil {
		return err
	}
	if err := requirePhase(g.phase, PhaseWaiting); err != nil {
		return err
	}

	if n := g.room.Players.Len(); n < g.opts.MinPlayers {
		return fmt.Errorf("%w: 至少需要 %d 人，当前 %d 人", ErrNotEnoughPlayers, g.opts.MinPlayers, n)
	}

	g.transition(PhaseWordShow)

	return nil
}

func (g *wordImpostorGame) HostSkipWordShow(playerID string) error {
	return g.hostAction(playerID, PhaseWordShow)
}

func (g *wordImpostorGame) HostEndDiscussion(playerID string) error {
	return g.hostAction(playerID, PhaseDiscussion)
}

func (g *wordImpostorGame) HostEndVoting(playerID string) error {
	return g.hostAction(playerID, PhaseVoting)
}

func (g *wordImpostorGame) ResetGame(playerID string) error {
	return g.hostAction(playerID, PhaseResults)
}

func (g *wordImpostorGame) SubmitClue(playerID, text string) error {
	if err := requirePhase(g.phase, PhaseDiscussion); err != nil {
		return err
	}

	if _, err := g.player(playerID); err != nil {
		return err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return fmt.Errorf("%w: 线索不能为空", ErrValidation)
	}
	if utf8.RuneCountInString(text) > maxClueLength {
		return fmt.Errorf("%w: 线索不能超过 %d 个字", ErrValidation, maxClueLength)
	}

	if _, done := g.round.clueOf(playerID); done {
		return fmt.Errorf("%w: 每轮只能提交一条线索", ErrDuplicateSubmission)
	}

	g.round.clues = append(g.round.clues, Clue{PlayerID: playerID, Text: text})

	return nil
}

// SubmitVote 记录一票。不允许投给自己，机器人也遵守同样的规则
func (g *wordImpostorGame) SubmitVote(voterID, targetID string) error {
	if err := requirePhase(g.phase, PhaseVoting); err != nil {
		return err
	}

	if _, err := g.player(voterID); err != nil {
		return err
	}

	if _, ok := g.room.Players.Get(targetID); !ok {
		return fmt.Errorf("%w: 被投票者 %s", ErrNotFound, targetID)
	}

	if voterID == targetID {
		return fmt.Errorf("%w: 不能投票给自己", ErrValidation)
	}

	if _, done := g.round.voteOf(voterID); done {
		return fmt.Errorf("%w: 你已投票，不能重复投票", ErrDuplicateSubmission)
	}

	g.round.votes = append(g.round.votes, Vote{VoterID: voterID, TargetID: targetID})

	return nil
}

// ReadyUp 重复调用不会报错；当所有在线真人都已就绪时立即切换到下一阶段
func (g *wordImpostorGame) ReadyUp(playerID string) error {
	if err := requirePhase(g.phase, PhaseDiscussion, PhaseVoting); err != nil {
		return err
	}

	p, err := g.player(playerID)
	if err != nil {
		return err
	}

	if p.Bot {
		return fmt.Errorf("%w: 机器人不需要就绪", ErrValidation)
	}

	if g.round.isReady(playerID) {
		return nil
	}

	g.round.ready[playerID] = struct{}{}

	g.advanceIfAllReady()

	return nil
}

func (g *wordImpostorGame) allHumansReady() bool {
	humans := g.room.Players.ConnectedHumans()
	if len(humans) == 0 {
		return false
	}

	for _, h := range humans {
		if !g.round.isReady(h.ID) {
			return false
		}
	}

	return true
}

func (g *wordImpostorGame) advanceIfAllReady() {
	if g.phase != PhaseDiscussion && g.phase != PhaseVoting {
		return
	}

	if g.allHumansReady() {
		next, _ := g.phase.Next()
		g.transition(next)
	}
}

// PlayerLeft 玩家离开后，剩余的在线真人可能已经全部就绪
func (g *wordImpostorGame) PlayerLeft(playerID string) {
	g.round.forget(playerID)
	g.advanceIfAllReady()
}

func (g *wordImpostorGame) PlayerDisconnected(playerID string) {
	g.advanceIfAllReady()
}

func (g *wordImpostorGame) ApplyAction(playerID string, action Action) error {
	switch action.Name {
	case ACTION_START_GAME:
		return g.StartGame(playerID)

	case ACTION_SUBMIT_CLUE:
		req, err := TryUnwrap[SubmitClueRequest](action.Payload)
		if err != nil {
			return err
		}
		return g.SubmitClue(playerID, req.Clue)

	case ACTION_SUBMIT_VOTE:
		req, err := TryUnwrap[SubmitVoteRequest](action.Payload)
		if err != nil {
			return err
		}
		if req.VotedForPlayerID == "" {
			return fmt.Errorf("%w: 缺少 votedForPlayerId", ErrValidation)
		}
		return g.SubmitVote(playerID, req.VotedForPlayerID)

	case ACTION_READY_UP:
		return g.ReadyUp(playerID)

	case ACTION_HOST_SKIP_WORD_SHOW:
		return g.HostSkipWordShow(playerID)

	case ACTION_HOST_END_DISCUSSION:
		return g.HostEndDiscussion(playerID)

	case ACTION_HOST_END_VOTING:
		return g.HostEndVoting(playerID)

	case ACTION_RESET_GAME:
		return g.ResetGame(playerID)
	}

	return fmt.Errorf("%w: %q", ErrUnknownAction, action.Name)
}

func (g *wordImpostorGame) nameOf(playerID string) string {
	if p, ok := g.room.Players.Get(playerID); ok {
		return p.Name
	}
	return ""
}

func (g *wordImpostorGame) clueViews() []ClueView {
	views := make([]ClueView, 0, len(g.round.clues))
	for _, c := range g.round.clues {
		views = append(views, ClueView{
			PlayerID:   c.PlayerID,
			PlayerName: g.nameOf(c.PlayerID),
			Clue:       c.Text,
		})
	}
	return views
}

func (g *wordImpostorGame) SnapshotFor(playerID string) Snapshot {
	snap := g.room.baseSnapshot(g.phase, g.round.isReady, newTimerView(g.timer))

	switch g.phase {
	case PhaseWordShow:
		if _, ok := g.room.Players.Get(playerID); ok && g.round.pair != nil {
			view := WordShowRound{
				Hint:       g.round.pair.Hint,
				IsImpostor: playerID == g.round.impostorID,
			}
			if !view.IsImpostor {
				view.Word = g.round.pair.Word
			}
			snap.Round = view
		}

	case PhaseDiscussion:
		snap.Round = DiscussionRound{Clues: g.clueViews()}

	case PhaseVoting:
		voted := make([]string, 0, len(g.round.votes))
		for _, v := range g.round.votes {
			voted = append(voted, v.VoterID)
		}

		view := VotingRound{
			Clues:          g.clueViews(),
			VotedPlayerIDs: voted,
		}
		if v, ok := g.round.voteOf(playerID); ok {
			view.MyVote = v.TargetID
		}
		snap.Round = view

	case PhaseResults:
		votes := make([]VoteView, 0, len(g.round.votes))
		for _, v := range g.round.votes {
			votes = append(votes, VoteView{
				VoterID:    v.VoterID,
				VoterName:  g.nameOf(v.VoterID),
				TargetID:   v.TargetID,
				TargetName: g.nameOf(v.TargetID),
			})
		}

		view := ResultsRound{
			Clues: g.clueViews(),
			Votes: votes,
		}
		if g.round.results != nil {
			view.Outcome = *g.round.results
		}
		if g.round.pair != nil {
			view.Word = g.round.pair.Word
			view.Hint = g.round.pair.Hint
		}
		snap.Round = view
	}

	return snap
}

var stageHandlers = map[Phase]StageHandler{
	PhaseWaiting:    waitStageHandler{},
	PhaseWordShow:   wordShowStageHandler{},
	PhaseDiscussion: discussStageHandler{},
	PhaseVoting:     voteStageHandler{},
	PhaseResults:    resultStageHandler{},
}

// 等待阶段是整个游戏最初始的阶段，也是重置后回到的阶段
type waitStageHandler struct{}

func (waitStageHandler) Stage() Phase { return PhaseWaiting }

func (waitStageHandler) OnEnter(g *wordImpostorGame) {
	g.round = newRound()
}

func (waitStageHandler) OnExit(g *wordImpostorGame) {}

func (waitStageHandler) Duration(g *wordImpostorGame) time.Duration { return 0 }

// 看词阶段：抽取词语和卧底
type wordShowStageHandler struct{}

func (wordShowStageHandler) Stage() Phase { return PhaseWordShow }

func (wordShowStageHandler) OnEnter(g *wordImpostorGame) {
	g.round = newRound()

	bank := g.opts.WordBank
	pair := bank[g.opts.Rand.IntN(len(bank))]
	g.round.pair = &pair

	ids := g.room.Players.IDs()
	g.round.impostorID = ids[g.opts.Rand.IntN(len(ids))]

	zap.L().Debug(
		"抽取词语和卧底",
		zap.String("room_code", g.room.Code),
		zap.String("impostor_id", g.round.impostorID),
	)
}

func (wordShowStageHandler) OnExit(g *wordImpostorGame) {}

func (wordShowStageHandler) Duration(g *wordImpostorGame) time.Duration {
	return g.opts.WordShowDuration
}

// 讨论阶段：进入时机器人立即提交线索
type discussStageHandler struct{}

func (discussStageHandler) Stage() Phase { return PhaseDiscussion }

func (discussStageHandler) OnEnter(g *wordImpostorGame) {
	g.bots.submitClues(g)
}

func (discussStageHandler) OnExit(g *wordImpostorGame) {}

func (discussStageHandler) Duration(g *wordImpostorGame) time.Duration {
	return g.opts.DiscussionDuration
}

// 投票阶段：进入时清空投票，机器人立即投票
type voteStageHandler struct{}

func (voteStageHandler) Stage() Phase { return PhaseVoting }

func (voteStageHandler) OnEnter(g *wordImpostorGame) {
	g.round.votes = make([]Vote, 0)
	g.bots.submitVotes(g)
}

func (voteStageHandler) OnExit(g *wordImpostorGame) {}

func (voteStageHandler) Duration(g *wordImpostorGame) time.Duration {
	return g.opts.VotingDuration
}

// 结果阶段：计票并冻结结果，没有时间限制
type resultStageHandler struct{}

func (resultStageHandler) Stage() Phase { return PhaseResults }

func (resultStageHandler) OnEnter(g *wordImpostorGame) {
	results := ComputeResults(g.round.votes, g.round.impostorID)
	g.round.results = &results

	zap.L().Info(
		"投票结果",
		zap.String("room_code", g.room.Code),
		zap.String("impostor_id", results.ImpostorID),
		zap.String("most_voted_id", results.MostVotedID),
		zap.Bool("impostor_caught", results.ImpostorCaught),
	)
}

func (resultStageHandler) OnExit(g *wordImpostorGame) {}

func (resultStageHandler) Duration(g *wordImpostorGame) time.Duration { return 0 }
