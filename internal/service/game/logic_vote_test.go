package game

import (
	"errors"
	"testing"
)

func TestVoteAction_PreventsDuplicateVotes(t *testing.T) {
	tg := newTestGame(t, 3)
	tg.toVoting(t)

	firstReq := Action{
		Name:    ACTION_SUBMIT_VOTE,
		Payload: mustMarshal(SubmitVoteRequest{VotedForPlayerID: "p2"}),
	}

	if err := tg.game.ApplyAction("p1", firstReq); err != nil {
		t.Fatalf("first vote should succeed, got: %v", err)
	}

	v, ok := tg.game.round.voteOf("p1")
	if !ok || v.TargetID != "p2" {
		t.Fatalf("vote not recorded correctly, want p2 got %q", v.TargetID)
	}

	secondReq := Action{
		Name:    ACTION_SUBMIT_VOTE,
		Payload: mustMarshal(SubmitVoteRequest{VotedForPlayerID: "host"}),
	}

	err := tg.game.ApplyAction("p1", secondReq)
	if !errors.Is(err, ErrDuplicateSubmission) {
		t.Fatalf("duplicate vote should be rejected, got: %v", err)
	}

	if len(tg.game.round.votes) != 1 {
		t.Fatalf("duplicate vote mutated votes, want len=1 got %d", len(tg.game.round.votes))
	}
}

func TestVoteAction_RequiresTarget(t *testing.T) {
	tg := newTestGame(t, 3)
	tg.toVoting(t)

	err := tg.game.ApplyAction("p1", Action{Name: ACTION_SUBMIT_VOTE})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("vote without target should fail validation, got: %v", err)
	}

	if len(tg.game.round.votes) != 0 {
		t.Fatalf("rejected vote was recorded")
	}
}
