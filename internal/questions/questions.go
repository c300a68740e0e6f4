// Package questions provides the question bank: grade levels, each split into
// ordered topic strands of multiple-choice questions.
package questions

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed bank.yaml
var defaultBank []byte

type Question struct {
	Text    string   `yaml:"text" json:"text"`
	Answers []string `yaml:"answers" json:"answers"`
	Correct int      `yaml:"correct" json:"correct"`
}

type Strand struct {
	Name      string     `yaml:"name" json:"name"`
	Questions []Question `yaml:"questions" json:"questions"`
}

type Grade struct {
	Level   string   `yaml:"grade" json:"grade"`
	Strands []Strand `yaml:"strands" json:"strands"`
}

// Bank is an immutable, validated set of grades. Safe for concurrent reads.
type Bank struct {
	grades []Grade
	index  map[string]int
}

var ErrInvalidBank = errors.New("invalid question bank")

func NewBank(grades []Grade) (*Bank, error) {
	b := &Bank{grades: grades, index: make(map[string]int, len(grades))}
	for i, g := range grades {
		if g.Level == "" {
			return nil, fmt.Errorf("%w: grade %d has no level", ErrInvalidBank, i)
		}
		if _, dup := b.index[g.Level]; dup {
			return nil, fmt.Errorf("%w: duplicate grade %q", ErrInvalidBank, g.Level)
		}
		b.index[g.Level] = i
		if len(g.Strands) == 0 {
			return nil, fmt.Errorf("%w: grade %q has no strands", ErrInvalidBank, g.Level)
		}
		// Question ids are strand#position, so strand names must be unique
		// within a grade. Empty strands would not survive the SQLite store.
		strands := make(map[string]struct{}, len(g.Strands))
		for _, s := range g.Strands {
			if s.Name == "" {
				return nil, fmt.Errorf("%w: grade %q has an unnamed strand", ErrInvalidBank, g.Level)
			}
			if _, dup := strands[s.Name]; dup {
				return nil, fmt.Errorf("%w: grade %q has duplicate strand %q", ErrInvalidBank, g.Level, s.Name)
			}
			strands[s.Name] = struct{}{}
			if len(s.Questions) == 0 {
				return nil, fmt.Errorf("%w: %s/%s has no questions", ErrInvalidBank, g.Level, s.Name)
			}
			for qi, q := range s.Questions {
				if q.Text == "" {
					return nil, fmt.Errorf("%w: %s/%s question %d has no text", ErrInvalidBank, g.Level, s.Name, qi)
				}
				if len(q.Answers) < 2 {
					return nil, fmt.Errorf("%w: %s/%s question %d needs at least two answers", ErrInvalidBank, g.Level, s.Name, qi)
				}
				if q.Correct < 0 || q.Correct >= len(q.Answers) {
					return nil, fmt.Errorf("%w: %s/%s question %d correct index %d out of range", ErrInvalidBank, g.Level, s.Name, qi, q.Correct)
				}
			}
		}
	}
	return b, nil
}

// Parse decodes a YAML document holding a list of grades.
func Parse(data []byte) (*Bank, error) {
	var grades []Grade
	if err := yaml.Unmarshal(data, &grades); err != nil {
		return nil, fmt.Errorf("decoding question bank: %w", err)
	}
	return NewBank(grades)
}

func LoadFile(path string) (*Bank, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading question bank: %w", err)
	}
	return Parse(data)
}

// Default returns the bank compiled into the binary.
func Default() (*Bank, error) {
	return Parse(defaultBank)
}

// Levels lists grade levels in bank order.
func (b *Bank) Levels() []string {
	out := make([]string, len(b.grades))
	for i, g := range b.grades {
		out[i] = g.Level
	}
	return out
}

// Strands returns the ordered strands for a grade level.
func (b *Bank) Strands(level string) ([]Strand, bool) {
	i, ok := b.index[level]
	if !ok {
		return nil, false
	}
	return b.grades[i].Strands, true
}

func (b *Bank) Grades() []Grade {
	return b.grades
}

// Size counts every question in the bank.
func (b *Bank) Size() int {
	n := 0
	for _, g := range b.grades {
		for _, s := range g.Strands {
			n += len(s.Questions)
		}
	}
	return n
}
