package game

// Clue 是一名玩家在本轮提交的线索
type Clue struct {
	PlayerID string
	Text     string
}

// Vote 是一张选票，VoterID 投给 TargetID
type Vote struct {
	VoterID  string
	TargetID string
}

// round 保存一轮游戏的全部数据，每次进入 WORD_SHOW 时重新生成
type round struct {
	pair       *WordPair
	impostorID string

	// 线索和投票都按提交顺序保存，便于展示
	clues []Clue
	votes []Vote
	ready map[string]struct{}

	// 进入 RESULTS 时冻结的结果
	results *Results
}

func newRound() *round {
	return &round{
		clues: make([]Clue, 0),
		votes: make([]Vote, 0),
		ready: make(map[string]struct{}),
	}
}

func (r *round) clueOf(playerID string) (Clue, bool) {
	for _, c := range r.clues {
		if c.PlayerID == playerID {
			return c, true
		}
	}
	return Clue{}, false
}

func (r *round) hasClueText(text string) bool {
	for _, c := range r.clues {
		if c.Text == text {
			return true
		}
	}
	return false
}

func (r *round) voteOf(voterID string) (Vote, bool) {
	for _, v := range r.votes {
		if v.VoterID == voterID {
			return v, true
		}
	}
	return Vote{}, false
}

func (r *round) isReady(playerID string) bool {
	_, ok := r.ready[playerID]
	return ok
}

func (r *round) clearReady() {
	r.ready = make(map[string]struct{})
}

// forget 删除离开房间的玩家的就绪状态，线索和投票保留
func (r *round) forget(playerID string) {
	delete(r.ready, playerID)
}
