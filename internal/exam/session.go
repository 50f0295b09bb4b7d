package exam

import (
	"fmt"
	"sort"

	"mocktest-service/internal/models"
)

// Session is one attempt at a generated test. It is not safe for concurrent
// mutation; the owner must serialise calls.
type Session struct {
	questions  []models.Question
	answers    []models.Answer
	cursor     int
	bookmarks  map[int]struct{}
	duration   int
	remaining  int
	state      State
	completion CompletionType
}

// Start opens an active session with the default countdown.
func Start(questions []models.Question) (*Session, error) {
	return StartWithDuration(questions, DefaultDurationSeconds)
}

func StartWithDuration(questions []models.Question, seconds int) (*Session, error) {
	if len(questions) == 0 {
		return nil, fmt.Errorf("%w: cannot start a test without questions", ErrInvalidInput)
	}
	if seconds <= 0 {
		return nil, fmt.Errorf("%w: duration must be positive, got %d", ErrInvalidInput, seconds)
	}

	qs := make([]models.Question, len(questions))
	copy(qs, questions)

	answers := make([]models.Answer, len(qs))
	for i, q := range qs {
		answers[i] = models.Unanswered(q.ID)
	}

	return &Session{
		questions: qs,
		answers:   answers,
		bookmarks: make(map[int]struct{}),
		duration:  seconds,
		remaining: seconds,
		state:     StateActive,
	}, nil
}

func (s *Session) requireActive(op string) error {
	if s.state != StateActive {
		return fmt.Errorf("%w: %s not allowed while %s", ErrInvalidState, op, s.state)
	}
	return nil
}

// SelectOption answers the current question. Re-selecting the same option is a no-op.
func (s *Session) SelectOption(option int) error {
	if err := s.requireActive("select option"); err != nil {
		return err
	}
	q := s.questions[s.cursor]
	if option < 0 || option >= models.OptionCount || option >= len(q.Options) {
		return fmt.Errorf("%w: option %d out of range", ErrInvalidInput, option)
	}
	s.answers[s.cursor] = models.Answered(q.ID, option, option == q.CorrectAnswer)
	return nil
}

func (s *Session) ClearAnswer() error {
	if err := s.requireActive("clear answer"); err != nil {
		return err
	}
	s.answers[s.cursor] = models.Unanswered(s.questions[s.cursor].ID)
	return nil
}

// Navigate jumps to any question. Answers are untouched.
func (s *Session) Navigate(index int) error {
	if err := s.requireActive("navigate"); err != nil {
		return err
	}
	if index < 0 || index >= len(s.questions) {
		return fmt.Errorf("%w: question index %d out of range [0,%d)", ErrInvalidInput, index, len(s.questions))
	}
	s.cursor = index
	return nil
}

func (s *Session) Next() error {
	return s.Navigate(s.cursor + 1)
}

func (s *Session) Previous() error {
	return s.Navigate(s.cursor - 1)
}

// IsLast reports whether the cursor is on the final question.
func (s *Session) IsLast() bool {
	return s.cursor == len(s.questions)-1
}

// ToggleBookmark flips the flag on the current question and returns the new value.
func (s *Session) ToggleBookmark() (bool, error) {
	if err := s.requireActive("toggle bookmark"); err != nil {
		return false, err
	}
	if _, ok := s.bookmarks[s.cursor]; ok {
		delete(s.bookmarks, s.cursor)
		return false, nil
	}
	s.bookmarks[s.cursor] = struct{}{}
	return true, nil
}

// Tick removes one second. The tick that reaches zero finishes the session
// without confirmation and is the only one that reports expired.
func (s *Session) Tick() (expired bool, err error) {
	if s.state == StateFinished {
		return false, fmt.Errorf("%w: tick after finish", ErrInvalidState)
	}
	if s.remaining > 0 {
		s.remaining--
	}
	if s.remaining == 0 {
		s.finish(CompletionTimeout)
		return true, nil
	}
	return false, nil
}

// RequestSubmit moves to the confirmation gate.
func (s *Session) RequestSubmit() error {
	if err := s.requireActive("submit"); err != nil {
		return err
	}
	s.state = StateSubmitting
	return nil
}

// Confirm resolves the confirmation gate. Declining returns to active play
// with answers and remaining time untouched.
func (s *Session) Confirm(ok bool) error {
	if s.state != StateSubmitting {
		return fmt.Errorf("%w: nothing to confirm while %s", ErrInvalidState, s.state)
	}
	if !ok {
		s.state = StateActive
		return nil
	}
	s.finish(CompletionManual)
	return nil
}

func (s *Session) finish(how CompletionType) {
	s.state = StateFinished
	s.completion = how
}

// Finish hands the frozen answers to scoring.
func (s *Session) Finish() ([]models.Answer, error) {
	if s.state != StateFinished {
		return nil, fmt.Errorf("%w: finish while %s", ErrInvalidState, s.state)
	}
	return s.Answers(), nil
}

func (s *Session) State() State { return s.state }

func (s *Session) Completion() CompletionType { return s.completion }

func (s *Session) Cursor() int { return s.cursor }

func (s *Session) Remaining() int { return s.remaining }

func (s *Session) Duration() int { return s.duration }

func (s *Session) ElapsedSeconds() int { return s.duration - s.remaining }

func (s *Session) Len() int { return len(s.questions) }

func (s *Session) Current() models.Question { return s.questions[s.cursor] }

func (s *Session) Questions() []models.Question {
	out := make([]models.Question, len(s.questions))
	copy(out, s.questions)
	return out
}

func (s *Session) Answers() []models.Answer {
	out := make([]models.Answer, len(s.answers))
	copy(out, s.answers)
	return out
}

func (s *Session) IsBookmarked(index int) bool {
	_, ok := s.bookmarks[index]
	return ok
}

// Bookmarks returns bookmarked indices in ascending order.
func (s *Session) Bookmarks() []int {
	out := make([]int, 0, len(s.bookmarks))
	for i := range s.bookmarks {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

func (s *Session) Progress() Progress {
	answered := 0
	for _, a := range s.answers {
		if a.IsAnswered() {
			answered++
		}
	}
	return Progress{
		Total:      len(s.questions),
		Answered:   answered,
		Bookmarked: len(s.bookmarks),
		Current:    s.cursor,
	}
}

// FormatClock renders seconds as m:ss.
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
