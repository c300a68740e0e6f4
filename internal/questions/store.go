package questions

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

// Count returns the number of stored questions.
func Count(ctx context.Context, db *sql.DB) (int, error) {
	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM questions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting questions: %w", err)
	}
	return n, nil
}

// Import writes every question of b into the questions table in one
// transaction. Bank order is kept in grade_pos, strand_pos and position.
func Import(ctx context.Context, db *sql.DB, b *Bank) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning import: %w", err)
	}
	defer tx.Rollback()

	for gi, g := range b.grades {
		for si, s := range g.Strands {
			for qi, q := range s.Questions {
				answers, err := json.Marshal(q.Answers)
				if err != nil {
					return fmt.Errorf("encoding answers: %w", err)
				}
				_, err = tx.ExecContext(ctx, `
					INSERT INTO questions (grade, grade_pos, strand, strand_pos, position, text, answers, correct_index)
					VALUES (?, ?, ?, ?, ?, ?, ?, ?)
				`, g.Level, gi, s.Name, si, qi, q.Text, string(answers), q.Correct)
				if err != nil {
					return fmt.Errorf("inserting %s/%s question %d: %w", g.Level, s.Name, qi, err)
				}
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing import: %w", err)
	}
	return nil
}

// LoadDB rebuilds a Bank from the questions table.
func LoadDB(ctx context.Context, db *sql.DB) (*Bank, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT grade, strand, text, answers, correct_index
		FROM questions
		ORDER BY grade_pos, strand_pos, position
	`)
	if err != nil {
		return nil, fmt.Errorf("querying questions: %w", err)
	}
	defer rows.Close()

	var grades []Grade
	for rows.Next() {
		var (
			level, strand, text, answersJSON string
			q                                Question
		)
		if err := rows.Scan(&level, &strand, &text, &answersJSON, &q.Correct); err != nil {
			return nil, fmt.Errorf("scanning question: %w", err)
		}
		if err := json.Unmarshal([]byte(answersJSON), &q.Answers); err != nil {
			return nil, fmt.Errorf("decoding answers for %s/%s: %w", level, strand, err)
		}
		q.Text = text

		if len(grades) == 0 || grades[len(grades)-1].Level != level {
			grades = append(grades, Grade{Level: level})
		}
		g := &grades[len(grades)-1]
		if len(g.Strands) == 0 || g.Strands[len(g.Strands)-1].Name != strand {
			g.Strands = append(g.Strands, Strand{Name: strand})
		}
		s := &g.Strands[len(g.Strands)-1]
		s.Questions = append(s.Questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating questions: %w", err)
	}

	return NewBank(grades)
}
