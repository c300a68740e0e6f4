package game

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/playperu/triviaroom/internal/questions"
)

func TestDrawQuestionCyclesPool(t *testing.T) {
	strands := sampleSource()["3"]
	used := make(map[string]struct{})
	rng := rand.New(rand.NewPCG(7, 7))

	seen := make(map[string]bool)
	for i := 0; i < poolSize(strands); i++ {
		q, err := drawQuestion(strands, used, rng.IntN)
		if err != nil {
			t.Fatalf("draw %d: %v", i, err)
		}
		if seen[q.ID] {
			t.Fatalf("draw %d repeated %s before the pool was exhausted", i, q.ID)
		}
		seen[q.ID] = true
	}
	if len(used) != poolSize(strands) {
		t.Fatalf("used = %d, want %d", len(used), poolSize(strands))
	}

	// Exhausted: the used set is cleared and drawing continues.
	q, err := drawQuestion(strands, used, rng.IntN)
	if err != nil {
		t.Fatalf("draw after exhaustion: %v", err)
	}
	if len(used) != 1 {
		t.Errorf("used = %d after reset, want 1", len(used))
	}
	if _, ok := used[q.ID]; !ok {
		t.Errorf("drawn question %s not marked used", q.ID)
	}
}

func TestDrawQuestionEmptyPool(t *testing.T) {
	tests := []struct {
		name    string
		strands []questions.Strand
	}{
		{"no strands", nil},
		{"empty strands", []questions.Strand{{Name: "A"}, {Name: "B"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := drawQuestion(tt.strands, map[string]struct{}{}, rand.IntN)
			if !errors.Is(err, ErrNoQuestionsAvailable) {
				t.Errorf("err = %v, want ErrNoQuestionsAvailable", err)
			}
		})
	}
}

func TestDrawQuestionCarriesBankData(t *testing.T) {
	strands := []questions.Strand{{Name: "Number", Questions: []questions.Question{
		{Text: "1 + 1?", Answers: []string{"1", "2"}, Correct: 1},
	}}}

	q, err := drawQuestion(strands, map[string]struct{}{}, rand.IntN)
	if err != nil {
		t.Fatal(err)
	}
	if q.ID != "Number#0" || q.Strand != "Number" || q.Text != "1 + 1?" || q.Correct != 1 {
		t.Errorf("question = %+v", q)
	}
}
