package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"mocktest-service/internal/event"
	"mocktest-service/internal/exam"
	"mocktest-service/internal/models"
)

func makeQuestions(n int) []models.Question {
	subjects := []string{"Polity", "History"}
	qs := make([]models.Question, n)
	for i := range qs {
		qs[i] = models.Question{
			ID:            i + 1,
			Text:          fmt.Sprintf("Question %d", i+1),
			Options:       []string{"A", "B", "C", "D"},
			CorrectAnswer: 1,
			Explanation:   "secret explanation",
			Difficulty:    models.DifficultyEasy,
			Subject:       subjects[i%len(subjects)],
		}
	}
	return qs
}

type fakeQuestions struct {
	questions []models.Question
	err       error
	block     bool

	mu    sync.Mutex
	calls []string
}

func (f *fakeQuestions) GenerateQuestions(ctx context.Context, examName, subjectName string) ([]models.Question, error) {
	f.mu.Lock()
	f.calls = append(f.calls, examName+"|"+subjectName)
	f.mu.Unlock()
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return f.questions, f.err
}

type fakeTips struct {
	text string
	err  error

	mu      sync.Mutex
	summary string
	correct int
	total   int
}

func (f *fakeTips) GenerateTips(_ context.Context, correct, total int, summary string) (string, error) {
	f.mu.Lock()
	f.correct, f.total, f.summary = correct, total, summary
	f.mu.Unlock()
	return f.text, f.err
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []string
}

func (p *recordingPublisher) Publish(_ context.Context, eventType string, _ any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, eventType)
	return nil
}

func (p *recordingPublisher) has(eventType string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, e := range p.events {
		if e == eventType {
			return true
		}
	}
	return false
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("Timed out waiting for %s", what)
}

func waitScreen(t *testing.T, o *Orchestrator, want Screen) {
	t.Helper()
	waitFor(t, "screen "+string(want), func() bool { return o.Screen() == want })
}

func newTestOrchestrator(t *testing.T, q QuestionGenerator, tips TipGenerator, pub EventPublisher, duration int, tick time.Duration) *Orchestrator {
	t.Helper()
	o := NewOrchestrator("attempt-1", Deps{
		Questions:       q,
		Tips:            tips,
		Events:          pub,
		DurationSeconds: duration,
		TickInterval:    tick,
	})
	t.Cleanup(o.Close)
	return o
}

// startTest drives an orchestrator to the testing screen.
func startTest(t *testing.T, o *Orchestrator) {
	t.Helper()
	if err := o.SelectExam("ssc"); err != nil {
		t.Fatalf("SelectExam: %v", err)
	}
	if err := o.SelectSubject(context.Background(), "gk"); err != nil {
		t.Fatalf("SelectSubject: %v", err)
	}
	waitScreen(t, o, ScreenTesting)
}

func TestFullAttemptManualSubmit(t *testing.T) {
	gen := &fakeQuestions{questions: makeQuestions(4)}
	tips := &fakeTips{text: "- Revise polity"}
	pub := &recordingPublisher{}
	o := newTestOrchestrator(t, gen, tips, pub, 1800, time.Hour)

	startTest(t, o)
	if gen.calls[0] != "SSC CGL/CHSL|General Knowledge" {
		t.Errorf("Unexpected generator call %q", gen.calls[0])
	}

	v := o.View()
	if v.Test == nil || v.Test.Total != 4 || v.Test.Clock != "30:00" {
		t.Fatalf("Unexpected test view %+v", v.Test)
	}
	raw, _ := json.Marshal(v)
	if strings.Contains(string(raw), "secret explanation") || strings.Contains(string(raw), "correct_answer") {
		t.Error("Testing view must not reveal answers")
	}

	// Q1 correct, Q2 wrong, Q3 skipped, Q4 correct.
	steps := []func() error{
		func() error { return o.SelectOption(1) },
		o.Next,
		func() error { return o.SelectOption(3) },
		func() error { return o.Navigate(3) },
		func() error { return o.SelectOption(1) },
	}
	for i, step := range steps {
		if err := step(); err != nil {
			t.Fatalf("Step %d: %v", i, err)
		}
	}
	if marked, err := o.ToggleBookmark(); err != nil || !marked {
		t.Fatalf("ToggleBookmark = %v, %v", marked, err)
	}

	v = o.View()
	if v.Test.Progress.Answered != 3 || v.Test.Progress.Bookmarked != 1 || !v.Test.IsLast {
		t.Errorf("Unexpected progress %+v", v.Test.Progress)
	}
	if v.Test.SelectedOption == nil || *v.Test.SelectedOption != 1 {
		t.Error("Current question must show its selected option")
	}
	if !v.Test.Map[3].Current || !v.Test.Map[3].Bookmarked || v.Test.Map[2].Answered {
		t.Errorf("Unexpected question map %+v", v.Test.Map)
	}

	// Next on the last question asks for confirmation; declining resumes.
	if err := o.Next(); err != nil {
		t.Fatalf("Next on last: %v", err)
	}
	if !o.View().Test.ConfirmPending {
		t.Fatal("Expected confirmation prompt")
	}
	if err := o.SelectOption(0); !errors.Is(err, exam.ErrInvalidState) {
		t.Errorf("Answers are frozen while confirming, got %v", err)
	}
	if err := o.Confirm(false); err != nil {
		t.Fatalf("Decline: %v", err)
	}
	if o.View().Test.State != exam.StateActive {
		t.Fatal("Declining must resume the test")
	}

	if err := o.RequestSubmit(); err != nil {
		t.Fatalf("RequestSubmit: %v", err)
	}
	if err := o.Confirm(true); err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	waitScreen(t, o, ScreenResults)

	report := o.View().Report
	if report == nil {
		t.Fatal("Expected a report")
	}
	r := report.Result
	if r.TotalQuestions != 4 || r.CorrectAnswers != 2 || r.IncorrectAnswers != 1 || r.SkippedAnswers != 1 {
		t.Errorf("Unexpected totals %+v", r)
	}
	if r.Accuracy != 67 {
		t.Errorf("Expected accuracy 67, got %d", r.Accuracy)
	}
	if r.Tips != "- Revise polity" {
		t.Errorf("Unexpected tips %q", r.Tips)
	}
	if report.CompletionType != exam.CompletionManual || report.Exam.ID != "ssc" || report.Subject.ID != "gk" {
		t.Errorf("Unexpected report header %+v", report)
	}

	tips.mu.Lock()
	if tips.correct != 2 || tips.total != 4 || tips.summary != "Polity (1/2), History (1/2)" {
		t.Errorf("Unexpected tip request %d/%d %q", tips.correct, tips.total, tips.summary)
	}
	tips.mu.Unlock()

	for _, e := range []string{event.SessionStarted, event.SessionSubmitted, event.ResultComputed} {
		e := e
		waitFor(t, "event "+e, func() bool { return pub.has(e) })
	}
}

func TestTimeoutSubmitsAutomatically(t *testing.T) {
	gen := &fakeQuestions{questions: makeQuestions(3)}
	tips := &fakeTips{err: errors.New("model overloaded")}
	pub := &recordingPublisher{}
	o := newTestOrchestrator(t, gen, tips, pub, 3, 2*time.Millisecond)

	if err := o.SelectExam("banking"); err != nil {
		t.Fatal(err)
	}
	if err := o.SelectSubject(context.Background(), "math"); err != nil {
		t.Fatal(err)
	}
	waitScreen(t, o, ScreenResults)

	report := o.View().Report
	if report.CompletionType != exam.CompletionTimeout {
		t.Errorf("Expected time_expired, got %s", report.CompletionType)
	}
	if report.TimeSpentSeconds != 3 || report.TimeSpent != "0:03" {
		t.Errorf("Expected 3 seconds spent, got %d (%s)", report.TimeSpentSeconds, report.TimeSpent)
	}
	if report.Result.Tips != FallbackTips {
		t.Errorf("Expected fallback tips, got %q", report.Result.Tips)
	}
	if report.Result.SkippedAnswers != 3 || report.Result.Accuracy != 0 {
		t.Errorf("Unexpected result %+v", report.Result)
	}
	waitFor(t, "timed out event", func() bool { return pub.has(event.SessionTimedOut) })
}

func TestTimeoutWhileConfirming(t *testing.T) {
	gen := &fakeQuestions{questions: makeQuestions(2)}
	o := newTestOrchestrator(t, gen, &fakeTips{text: "ok"}, nil, 2, 5*time.Millisecond)

	if err := o.SelectExam("upsc"); err != nil {
		t.Fatal(err)
	}
	if err := o.SelectSubject(context.Background(), "ca"); err != nil {
		t.Fatal(err)
	}
	waitScreen(t, o, ScreenTesting)
	// The clock may already have run out; only a live session can ask.
	if err := o.RequestSubmit(); err != nil && !errors.Is(err, exam.ErrInvalidState) {
		t.Fatalf("RequestSubmit: %v", err)
	}
	waitScreen(t, o, ScreenResults)
	if got := o.View().Report.CompletionType; got != exam.CompletionTimeout {
		t.Errorf("Expected time_expired, got %s", got)
	}
}

func TestGenerationFailureReturnsToSubjects(t *testing.T) {
	testCases := []struct {
		name string
		gen  *fakeQuestions
	}{
		{"gateway error", &fakeQuestions{err: errors.New("quota exceeded")}},
		{"no questions", &fakeQuestions{}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			pub := &recordingPublisher{}
			o := newTestOrchestrator(t, tc.gen, nil, pub, 1800, time.Hour)
			if err := o.SelectExam("railway"); err != nil {
				t.Fatal(err)
			}
			if err := o.SelectSubject(context.Background(), "full"); err != nil {
				t.Fatal(err)
			}
			waitFor(t, "failure notice", func() bool { return o.View().Notice == GenerationFailedNotice })

			v := o.View()
			if v.Screen != ScreenSubjectSelection || v.Exam == nil || v.Exam.ID != "railway" {
				t.Errorf("Unexpected view after failure %+v", v)
			}
			waitFor(t, "generation failed event", func() bool { return pub.has(event.GenerationFailed) })

			if err := o.SelectExam("police"); err != nil {
				t.Fatal(err)
			}
			if o.View().Notice != "" {
				t.Error("A new selection clears the notice")
			}
		})
	}
}

func TestRestartDropsInFlightGeneration(t *testing.T) {
	gen := &fakeQuestions{block: true}
	pub := &recordingPublisher{}
	o := newTestOrchestrator(t, gen, nil, pub, 1800, time.Hour)

	if err := o.SelectExam("teacher"); err != nil {
		t.Fatal(err)
	}
	if err := o.SelectSubject(context.Background(), "english"); err != nil {
		t.Fatal(err)
	}
	if err := o.SelectSubject(context.Background(), "english"); !errors.Is(err, exam.ErrInvalidState) {
		t.Errorf("Second generation while one is in flight: expected ErrInvalidState, got %v", err)
	}
	if err := o.Restart(); err != nil {
		t.Fatal(err)
	}

	time.Sleep(30 * time.Millisecond)
	v := o.View()
	if v.Screen != ScreenExamSelection || v.Notice != "" || v.Exam != nil {
		t.Errorf("Cancelled generation must not surface, got %+v", v)
	}
	if pub.has(event.GenerationFailed) {
		t.Error("Cancelled generation must not be reported as a failure")
	}
	waitFor(t, "restart event", func() bool { return pub.has(event.AttemptRestarted) })
}

func TestRestartFromTesting(t *testing.T) {
	o := newTestOrchestrator(t, &fakeQuestions{questions: makeQuestions(2)}, &fakeTips{}, nil, 1800, time.Millisecond)
	startTest(t, o)
	if err := o.Restart(); err != nil {
		t.Fatal(err)
	}
	time.Sleep(10 * time.Millisecond)
	v := o.View()
	if v.Screen != ScreenExamSelection || v.Test != nil || v.Report != nil {
		t.Errorf("Restart must discard the test, got %+v", v)
	}
}

func TestScreenGuards(t *testing.T) {
	o := newTestOrchestrator(t, &fakeQuestions{questions: makeQuestions(1)}, nil, nil, 1800, time.Hour)

	if err := o.SelectSubject(context.Background(), "gk"); !errors.Is(err, exam.ErrInvalidState) {
		t.Errorf("Subject before exam: expected ErrInvalidState, got %v", err)
	}
	if err := o.SelectOption(0); !errors.Is(err, exam.ErrInvalidState) {
		t.Errorf("Answer before test: expected ErrInvalidState, got %v", err)
	}
	if err := o.Back(); !errors.Is(err, exam.ErrInvalidState) {
		t.Errorf("Back from exam selection: expected ErrInvalidState, got %v", err)
	}
	if err := o.SelectExam("nope"); !errors.Is(err, exam.ErrInvalidInput) {
		t.Errorf("Unknown exam: expected ErrInvalidInput, got %v", err)
	}
	if err := o.SelectExam("ssc"); err != nil {
		t.Fatal(err)
	}
	if err := o.SelectSubject(context.Background(), "nope"); !errors.Is(err, exam.ErrInvalidInput) {
		t.Errorf("Unknown subject: expected ErrInvalidInput, got %v", err)
	}
	if err := o.Back(); err != nil || o.Screen() != ScreenExamSelection {
		t.Errorf("Back: %v, screen %s", err, o.Screen())
	}

	o.Close()
	if err := o.SelectExam("ssc"); !errors.Is(err, ErrAttemptNotFound) {
		t.Errorf("Closed attempt: expected ErrAttemptNotFound, got %v", err)
	}
	if err := o.Restart(); !errors.Is(err, ErrAttemptNotFound) {
		t.Errorf("Restart closed attempt: expected ErrAttemptNotFound, got %v", err)
	}
}

func TestInvalidInputKeepsTestRunning(t *testing.T) {
	o := newTestOrchestrator(t, &fakeQuestions{questions: makeQuestions(2)}, nil, nil, 1800, time.Hour)
	startTest(t, o)

	if err := o.SelectOption(4); !errors.Is(err, exam.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}
	if err := o.Navigate(-1); !errors.Is(err, exam.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}
	if err := o.Previous(); !errors.Is(err, exam.ErrInvalidInput) {
		t.Errorf("Previous on first question: expected ErrInvalidInput, got %v", err)
	}
	if err := o.Confirm(true); !errors.Is(err, exam.ErrInvalidState) {
		t.Errorf("Confirm without request: expected ErrInvalidState, got %v", err)
	}
	if o.Screen() != ScreenTesting {
		t.Errorf("Rejected actions must not leave the test, screen %s", o.Screen())
	}
}
