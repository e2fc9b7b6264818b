package game

// Results 是投票结束时冻结的结果
type Results struct {
	ImpostorID     string         `json:"impostorId"`
	MostVotedID    string         `json:"mostVotedId,omitempty"`
	ImpostorCaught bool           `json:"impostorCaught"`
	VoteCounts     map[string]int `json:"voteCounts"`
}

// ComputeResults 计票，得票最多者为 MostVotedID。
// 票数相同时取 ID 字典序最小的玩家；没有任何投票时 MostVotedID 为空
func ComputeResults(votes []Vote, impostorID string) Results {
	counts := make(map[string]int)
	for _, v := range votes {
		counts[v.TargetID]++
	}

	var (
		mostVotedID string
		maxVotes    int
	)

	for _, v := range votes {
		count := counts[v.TargetID]
		switch {
		case count > maxVotes:
			maxVotes = count
			mostVotedID = v.TargetID
		case count == maxVotes && v.TargetID < mostVotedID:
			mostVotedID = v.TargetID
		}
	}

	return Results{
		ImpostorID:     impostorID,
		MostVotedID:    mostVotedID,
		ImpostorCaught: mostVotedID != "" && mostVotedID == impostorID,
		VoteCounts:     counts,
	}
}
