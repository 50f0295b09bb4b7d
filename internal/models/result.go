package models

type SubjectScore struct {
	Subject  string `json:"subject"`
	Correct  int    `json:"correct"`
	Total    int    `json:"total"`
	Accuracy int    `json:"accuracy"`
}

type DifficultyScore struct {
	Difficulty Difficulty `json:"difficulty"`
	Correct    int        `json:"correct"`
	Total      int        `json:"total"`
	Accuracy   int        `json:"accuracy"`
}

type ReviewItem struct {
	QuestionID     int          `json:"question_id"`
	Text           string       `json:"text"`
	Options        []string     `json:"options"`
	CorrectAnswer  int          `json:"correct_answer"`
	SelectedOption *int         `json:"selected_option"`
	Status         AnswerStatus `json:"status"`
	Explanation    string       `json:"explanation"`
	Difficulty     Difficulty   `json:"difficulty"`
	Subject        string       `json:"subject"`
}

// Result is the scored snapshot of a finished session.
type Result struct {
	Score              int               `json:"score"`
	TotalQuestions     int               `json:"total_questions"`
	CorrectAnswers     int               `json:"correct_answers"`
	IncorrectAnswers   int               `json:"incorrect_answers"`
	SkippedAnswers     int               `json:"skipped_answers"`
	Accuracy           int               `json:"accuracy"`
	SubjectAnalysis    []SubjectScore    `json:"subject_analysis"`
	DifficultyAnalysis []DifficultyScore `json:"difficulty_analysis"`
	Review             []ReviewItem      `json:"review"`
	Tips               string            `json:"tips"`
}
