package domain

import "testing"

func TestAuthorPoints(t *testing.T) {
	tests := []struct {
		source   Source
		majority Guess
		want     int
	}{
		{SourceAI, GuessHuman, 3},
		{SourceAI, GuessBot, 0},
		{SourceHuman, GuessBot, 2},
		{SourceHuman, GuessHuman, 1},
	}

	for _, tt := range tests {
		if got := AuthorPoints(tt.source, tt.majority); got != tt.want {
			t.Fatalf("AuthorPoints(%s, %s) = %d, want %d", tt.source, tt.majority, got, tt.want)
		}
	}
}

func TestMajorityTieFavorsHuman(t *testing.T) {
	if (VoteTally{Human: 1, Bot: 1}).Majority() != GuessHuman {
		t.Fatal("ties should favor HUMAN")
	}
	if (VoteTally{}).Majority() != GuessHuman {
		t.Fatal("no votes should count as HUMAN")
	}
	if (VoteTally{Human: 1, Bot: 2}).Majority() != GuessBot {
		t.Fatal("expected BOT majority")
	}
}

func TestScoreRound(t *testing.T) {
	ai := NewSubmission("a", "ghost text", SourceAI, "classic_1")
	ai.Votes["b"] = GuessHuman
	ai.Votes["c"] = GuessHuman
	ai.Votes["d"] = GuessBot

	human := NewSubmission("b", "my text", SourceHuman, "")
	human.Votes["a"] = GuessBot
	human.Votes["c"] = GuessBot
	human.Votes["d"] = GuessHuman

	deltas := ScoreRound([]*Submission{ai, human})

	want := map[string]int{
		"a": 3, // fooled the majority
		"b": 2, // wrongly accused
		"c": 0,
		"d": 2, // caught the ghost and trusted the human
	}
	for id, points := range want {
		if deltas[id] != points {
			t.Fatalf("player %s: got %d, want %d (all: %v)", id, deltas[id], points, deltas)
		}
	}
}

func TestApplyScoresIgnoresDepartedPlayers(t *testing.T) {
	s := NewSession("ROOM01", DefaultSettings())
	s.Players = []*Player{NewPlayer("a", "Alice", "", 0, false)}

	s.ApplyScores(map[string]int{"a": 3, "gone": 5})

	if s.Players[0].Score != 3 {
		t.Fatalf("expected 3, got %d", s.Players[0].Score)
	}
}
