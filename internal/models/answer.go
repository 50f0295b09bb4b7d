package models

import "encoding/json"

// Answer records what the test taker chose for one question. It is either
// unanswered or answered with a correctness flag; the two cannot diverge.
type Answer struct {
	questionID int
	answered   bool
	option     int
	correct    bool
}

func Unanswered(questionID int) Answer {
	return Answer{questionID: questionID}
}

func Answered(questionID, option int, correct bool) Answer {
	return Answer{questionID: questionID, answered: true, option: option, correct: correct}
}

func (a Answer) QuestionID() int { return a.questionID }

func (a Answer) IsAnswered() bool { return a.answered }

// IsCorrect is false for unanswered questions.
func (a Answer) IsCorrect() bool { return a.answered && a.correct }

// Selected returns the chosen option, ok is false when unanswered.
func (a Answer) Selected() (int, bool) {
	if !a.answered {
		return 0, false
	}
	return a.option, true
}

// Correct returns the correctness flag, ok is false when unanswered.
func (a Answer) Correct() (bool, bool) {
	if !a.answered {
		return false, false
	}
	return a.correct, true
}

type answerJSON struct {
	QuestionID     int   `json:"question_id"`
	SelectedOption *int  `json:"selected_option"`
	IsCorrect      *bool `json:"is_correct"`
}

func (a Answer) MarshalJSON() ([]byte, error) {
	out := answerJSON{QuestionID: a.questionID}
	if a.answered {
		option, correct := a.option, a.correct
		out.SelectedOption = &option
		out.IsCorrect = &correct
	}
	return json.Marshal(out)
}

// AnswerStatus is the review label of an answer.
type AnswerStatus string

const (
	StatusCorrect   AnswerStatus = "correct"
	StatusIncorrect AnswerStatus = "incorrect"
	StatusSkipped   AnswerStatus = "skipped"
)

func (a Answer) Status() AnswerStatus {
	switch {
	case !a.answered:
		return StatusSkipped
	case a.correct:
		return StatusCorrect
	default:
		return StatusIncorrect
	}
}
