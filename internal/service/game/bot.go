package game

import (
	"fmt"
	"math/rand/v2"

	"go.uber.org/zap"
)

var botFillers = []string{
	"嗯……",
	"让我想想，",
	"我觉得",
	"说实话，",
	"这个嘛，",
	"直觉告诉我，",
	"怎么说呢，",
	"依我看，",
}

var botWordClues = []string{
	"和「%s」有点关系",
	"第一反应就是「%s」",
	"大家应该都见过「%s」吧",
	"「%s」很常见",
}

var botHintClues = []string{
	"它算是一种%s",
	"跟%s有关的东西",
	"我觉得是%s那一类",
	"提到%s就会想到它",
}

// botPolicy 为机器人生成线索和投票，生成的操作走和真人相同的入口
type botPolicy struct {
	rng *rand.Rand
}

func newBotPolicy(rng *rand.Rand) *botPolicy {
	return &botPolicy{rng: rng}
}

func (bp *botPolicy) clue(pair WordPair, impostor bool) string {
	filler := botFillers[bp.rng.IntN(len(botFillers))]

	if impostor {
		tmpl := botHintClues[bp.rng.IntN(len(botHintClues))]
		return filler + fmt.Sprintf(tmpl, pair.Hint)
	}

	tmpl := botWordClues[bp.rng.IntN(len(botWordClues))]
	return filler + fmt.Sprintf(tmpl, pair.Word)
}

// submitClues 让每个尚未提交线索的在线机器人提交一条线索，同一轮内线索互不相同
func (bp *botPolicy) submitClues(g *wordImpostorGame) {
	for _, bot := range g.room.Players.Bots() {
		if !bot.Connected {
			continue
		}
		if _, done := g.round.clueOf(bot.ID); done {
			continue
		}

		text := bp.clue(*g.round.pair, bot.ID == g.round.impostorID)
		for n := 2; g.round.hasClueText(text); n++ {
			text = fmt.Sprintf("%s（%d）", text, n)
		}

		if err := g.SubmitClue(bot.ID, text); err != nil {
			zap.L().Error(
				"机器人提交线索失败",
				zap.String("room_code", g.room.Code),
				zap.String("bot_id", bot.ID),
				zap.Error(err),
			)
		}
	}
}

// submitVotes 让每个尚未投票的在线机器人在除自己以外的在线玩家中随机投一票
func (bp *botPolicy) submitVotes(g *wordImpostorGame) {
	for _, bot := range g.room.Players.Bots() {
		if !bot.Connected {
			continue
		}
		if _, done := g.round.voteOf(bot.ID); done {
			continue
		}

		candidates := make([]string, 0, g.room.Players.Len())
		for _, p := range g.room.Players.ConnectedPlayers() {
			if p.ID != bot.ID {
				candidates = append(candidates, p.ID)
			}
		}

		if len(candidates) == 0 {
			continue
		}

		target := candidates[bp.rng.IntN(len(candidates))]

		if err := g.SubmitVote(bot.ID, target); err != nil {
			zap.L().Error(
				"机器人投票失败",
				zap.String("room_code", g.room.Code),
				zap.String("bot_id", bot.ID),
				zap.Error(err),
			)
		}
	}
}
