package service

import (
	"mocktest-service/internal/exam"
	"mocktest-service/internal/models"
)

type MapEntry struct {
	Index      int  `json:"index"`
	QuestionID int  `json:"question_id"`
	Answered   bool `json:"answered"`
	Bookmarked bool `json:"bookmarked"`
	Current    bool `json:"current"`
}

// TestView is the testing screen. Correct answers and explanations are not part of it.
type TestView struct {
	State            exam.State            `json:"state"`
	Index            int                   `json:"index"`
	Total            int                   `json:"total"`
	Question         models.PublicQuestion `json:"question"`
	SelectedOption   *int                  `json:"selected_option"`
	Bookmarked       bool                  `json:"bookmarked"`
	IsLast           bool                  `json:"is_last"`
	RemainingSeconds int                   `json:"remaining_seconds"`
	Clock            string                `json:"clock"`
	ConfirmPending   bool                  `json:"confirm_pending"`
	Progress         exam.Progress         `json:"progress"`
	Map              []MapEntry            `json:"map"`
}

type View struct {
	AttemptID string           `json:"attempt_id"`
	Screen    Screen           `json:"screen"`
	Exam      *models.ExamType `json:"exam,omitempty"`
	Subject   *models.Subject  `json:"subject,omitempty"`
	Notice    string           `json:"notice,omitempty"`
	Test      *TestView        `json:"test,omitempty"`
	Report    *Report          `json:"report,omitempty"`
}

// View returns a snapshot for rendering. It does not count as activity.
func (o *Orchestrator) View() View {
	o.mu.Lock()
	defer o.mu.Unlock()

	v := View{
		AttemptID: o.id,
		Screen:    o.screen,
		Notice:    o.notice,
	}
	if o.exam != nil {
		e := *o.exam
		v.Exam = &e
	}
	if o.subject != nil {
		s := *o.subject
		v.Subject = &s
	}
	if o.screen == ScreenTesting && o.session != nil {
		v.Test = testView(o.session)
	}
	if o.screen == ScreenResults && o.report != nil {
		r := *o.report
		v.Report = &r
	}
	return v
}

func testView(s *exam.Session) *TestView {
	answers := s.Answers()
	questions := s.Questions()
	cursor := s.Cursor()

	entries := make([]MapEntry, len(questions))
	for i, q := range questions {
		entries[i] = MapEntry{
			Index:      i,
			QuestionID: q.ID,
			Answered:   answers[i].IsAnswered(),
			Bookmarked: s.IsBookmarked(i),
			Current:    i == cursor,
		}
	}

	var selected *int
	if opt, ok := answers[cursor].Selected(); ok {
		selected = &opt
	}
	current := questions[cursor]

	return &TestView{
		State:            s.State(),
		Index:            cursor,
		Total:            len(questions),
		Question:         current.Public(),
		SelectedOption:   selected,
		Bookmarked:       s.IsBookmarked(cursor),
		IsLast:           s.IsLast(),
		RemainingSeconds: s.Remaining(),
		Clock:            exam.FormatClock(s.Remaining()),
		ConfirmPending:   s.State() == exam.StateSubmitting,
		Progress:         s.Progress(),
		Map:              entries,
	}
}
