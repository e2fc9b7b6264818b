package game

import "math"

// Snapshot 是发送给某一位玩家的房间状态，Round 随阶段变化
type Snapshot struct {
	RoomCode       string       `json:"roomCode"`
	GameType       string       `json:"gameType"`
	Phase          Phase        `json:"phase"`
	HostID         string       `json:"hostId"`
	Players        []PlayerView `json:"players"`
	MaxPlayers     int          `json:"maxPlayers"`
	AvatarStyles   []string     `json:"avatarStyles"`
	ReadyPlayerIDs []string     `json:"readyPlayerIds"`
	Timer          *TimerView   `json:"timer"`
	Round          RoundView    `json:"round,omitempty"`
}

type PlayerView struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Host        bool   `json:"host"`
	Connected   bool   `json:"connected"`
	Ready       bool   `json:"ready"`
	Bot         bool   `json:"bot"`
	AvatarStyle string `json:"avatarStyle"`
	AvatarURL   string `json:"avatarUrl"`
}

type TimerView struct {
	RemainingSeconds int `json:"remainingSeconds"`
	TotalSeconds     int `json:"totalSeconds"`
}

func newTimerView(pt *PhaseTimer) *TimerView {
	remaining, total, ok := pt.Remaining()
	if !ok {
		return nil
	}

	return &TimerView{
		RemainingSeconds: int(math.Ceil(remaining.Seconds())),
		TotalSeconds:     int(math.Ceil(total.Seconds())),
	}
}

// RoundView 是按阶段区分的回合数据，每个阶段对应一个具体类型
type RoundView interface {
	RoundPhase() Phase
}

// WordShowRound 只包含请求者自己的词语，卧底只能看到提示
type WordShowRound struct {
	Word       string `json:"word,omitempty"`
	Hint       string `json:"hint"`
	IsImpostor bool   `json:"isImpostor"`
}

type ClueView struct {
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
	Clue       string `json:"clue"`
}

type DiscussionRound struct {
	Clues []ClueView `json:"clues"`
}

type VotingRound struct {
	Clues          []ClueView `json:"clues"`
	VotedPlayerIDs []string   `json:"votedPlayerIds"`
	MyVote         string     `json:"myVote,omitempty"`
}

type VoteView struct {
	VoterID    string `json:"voterId"`
	VoterName  string `json:"voterName"`
	TargetID   string `json:"targetId"`
	TargetName string `json:"targetName"`
}

type ResultsRound struct {
	Clues   []ClueView `json:"clues"`
	Outcome Results    `json:"outcome"`
	Votes   []VoteView `json:"votes"`
	Word    string     `json:"word"`
	Hint    string     `json:"hint"`
}

func (WordShowRound) RoundPhase() Phase   { return PhaseWordShow }
func (DiscussionRound) RoundPhase() Phase { return PhaseDiscussion }
func (VotingRound) RoundPhase() Phase     { return PhaseVoting }
func (ResultsRound) RoundPhase() Phase    { return PhaseResults }
