package models

import (
	"errors"
	"fmt"
	"strings"
)

// OptionCount is the number of choices every question carries.
const OptionCount = 4

type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

// Difficulties lists the levels in display order.
var Difficulties = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}

// ParseDifficulty matches a level case-insensitively. Unknown values fall back to Medium.
func ParseDifficulty(raw string) Difficulty {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "easy":
		return DifficultyEasy
	case "hard":
		return DifficultyHard
	default:
		return DifficultyMedium
	}
}

type Question struct {
	ID            int        `json:"id"`
	Text          string     `json:"text"`
	Options       []string   `json:"options"`
	CorrectAnswer int        `json:"correct_answer"`
	Explanation   string     `json:"explanation"`
	Difficulty    Difficulty `json:"difficulty"`
	Subject       string     `json:"subject"`
}

var ErrInvalidQuestion = errors.New("invalid question")

// Validate checks the shape a generated question must have before it can enter a session.
func (q *Question) Validate() error {
	if strings.TrimSpace(q.Text) == "" {
		return fmt.Errorf("%w: question %d has no text", ErrInvalidQuestion, q.ID)
	}
	if len(q.Options) != OptionCount {
		return fmt.Errorf("%w: question %d has %d options, want %d", ErrInvalidQuestion, q.ID, len(q.Options), OptionCount)
	}
	if q.CorrectAnswer < 0 || q.CorrectAnswer >= OptionCount {
		return fmt.Errorf("%w: question %d correct answer %d out of range", ErrInvalidQuestion, q.ID, q.CorrectAnswer)
	}
	return nil
}

// PublicQuestion is what a test taker sees while the clock is running.
type PublicQuestion struct {
	ID         int        `json:"id"`
	Text       string     `json:"text"`
	Options    []string   `json:"options"`
	Difficulty Difficulty `json:"difficulty"`
	Subject    string     `json:"subject"`
}

func (q *Question) Public() PublicQuestion {
	opts := make([]string, len(q.Options))
	copy(opts, q.Options)
	return PublicQuestion{
		ID:         q.ID,
		Text:       q.Text,
		Options:    opts,
		Difficulty: q.Difficulty,
		Subject:    q.Subject,
	}
}
