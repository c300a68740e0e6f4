package server

import (
	"net/http"

	"github.com/playperu/triviaroom/internal/questions"
)

// GradeLister exposes the loaded question bank.
type GradeLister interface {
	Grades() []questions.Grade
}

type StrandInfo struct {
	Name      string `json:"name"`
	Questions int    `json:"questions"`
}

type GradeInfo struct {
	Level   string       `json:"level"`
	Strands []StrandInfo `json:"strands"`
}

func handleGrades(bank GradeLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		grades := bank.Grades()
		resp := make([]GradeInfo, 0, len(grades))
		for _, g := range grades {
			info := GradeInfo{Level: g.Level, Strands: make([]StrandInfo, 0, len(g.Strands))}
			for _, s := range g.Strands {
				info.Strands = append(info.Strands, StrandInfo{Name: s.Name, Questions: len(s.Questions)})
			}
			resp = append(resp, info)
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
