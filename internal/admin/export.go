package admin

import (
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"
)

// QuestionBank is the exported form of the question list
type QuestionBank struct {
	ExportedAt time.Time        `yaml:"exported_at"`
	Total      int              `yaml:"total"`
	Unanswered int              `yaml:"unanswered"`
	Questions  []ExportQuestion `yaml:"questions"`
}

// ExportQuestion is one entry of a QuestionBank
type ExportQuestion struct {
	ID        string `yaml:"id"`
	Question  string `yaml:"question"`
	Answer    string `yaml:"answer,omitempty"`
	Processed bool   `yaml:"processed"`
}

// NewQuestionBank builds a QuestionBank from questions
func NewQuestionBank(questions []Question, now time.Time) QuestionBank {
	bank := QuestionBank{
		ExportedAt: now.UTC(),
		Total:      len(questions),
		Questions:  make([]ExportQuestion, 0, len(questions)),
	}
	for _, q := range questions {
		entry := ExportQuestion{ID: q.QuestionID, Question: q.Question, Processed: q.Processed}
		if q.Answered() {
			entry.Answer = *q.Answer
		} else {
			bank.Unanswered++
		}
		bank.Questions = append(bank.Questions, entry)
	}
	return bank
}

// ExportQuestions writes questions as a YAML question bank
func ExportQuestions(w io.Writer, questions []Question) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(NewQuestionBank(questions, time.Now())); err != nil {
		return fmt.Errorf("failed to encode question bank: %w", err)
	}
	return enc.Close()
}
