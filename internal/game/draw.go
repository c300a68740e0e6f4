package game

import (
	"fmt"

	"github.com/playperu/triviaroom/internal/questions"
)

type candidate struct {
	id       string
	strand   string
	question questions.Question
}

func questionID(strand string, index int) string {
	return fmt.Sprintf("%s#%d", strand, index)
}

func candidates(strands []questions.Strand, used map[string]struct{}) []candidate {
	var pool []candidate
	for _, s := range strands {
		for i, q := range s.Questions {
			id := questionID(s.Name, i)
			if _, seen := used[id]; seen {
				continue
			}
			pool = append(pool, candidate{id: id, strand: s.Name, question: q})
		}
	}
	return pool
}

// drawQuestion picks a random unused question and marks it used. When every
// question has been used the set is cleared once and the draw retried.
// Answers are returned in bank order; see Shuffle.
func drawQuestion(strands []questions.Strand, used map[string]struct{}, intn func(int) int) (Question, error) {
	for attempt := 0; attempt < 2; attempt++ {
		pool := candidates(strands, used)
		if len(pool) > 0 {
			c := pool[intn(len(pool))]
			used[c.id] = struct{}{}
			return Question{
				ID:      c.id,
				Strand:  c.strand,
				Text:    c.question.Text,
				Answers: c.question.Answers,
				Correct: c.question.Correct,
			}, nil
		}
		if len(used) == 0 {
			break
		}
		clear(used)
	}
	return Question{}, ErrNoQuestionsAvailable
}

func poolSize(strands []questions.Strand) int {
	n := 0
	for _, s := range strands {
		n += len(s.Questions)
	}
	return n
}
